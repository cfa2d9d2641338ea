// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package locator maps (law, language) pairs to source documents and to the
// relative path used when building article links.
package locator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/poiesic/lexcorpus/config"
	"github.com/poiesic/lexcorpus/source"
)

// UnknownPath is the relative path used when neither the configuration nor
// the document metadata supplies one.
const UnknownPath = "unknown"

var (
	ErrStoreRequired  = errors.New("source store is required")
	ErrConfigRequired = errors.New("config is required")
)

// formats lists the file-format path segments stripped from manifestation identifiers.
var formats = []string{"xml", "html", "pdf", "doc", "docx"}

// Location describes where a law document lives and how to link into it.
type Location struct {
	Law      string
	Language string

	// FilePath is the document path on the source store.
	FilePath string

	// ConfiguredPath is the explicit relative path from the configuration, if any.
	ConfiguredPath string
}

// Resolve returns the relative link path for the document.
// Priority: configured path, then the manifestation identifier, then UnknownPath.
func (l Location) Resolve(manifestation string) string {
	if p := strings.Trim(strings.TrimSpace(l.ConfiguredPath), "/"); p != "" {
		return p
	}
	if p := pathFromManifestation(manifestation); p != "" {
		return p
	}
	return UnknownPath
}

// pathFromManifestation keeps the portion after "/eli/" and drops a trailing
// format segment or extension, e.g.
// "https://fedlex.data.admin.ch/eli/cc/27/317_321_377/20240101/de/xml" -> "cc/27/317_321_377/20240101/de".
func pathFromManifestation(id string) string {
	id = strings.TrimSpace(id)
	if _, rest, found := strings.Cut(id, "/eli/"); found {
		id = rest
	}
	id = strings.Trim(id, "/")
	if id == "" {
		return ""
	}

	if i := strings.LastIndex(id, "/"); i >= 0 {
		last := strings.ToLower(id[i+1:])
		for _, format := range formats {
			if last == format {
				return strings.Trim(id[:i], "/")
			}
		}
	}
	for _, format := range formats {
		if strings.HasSuffix(strings.ToLower(id), "."+format) {
			return id[:len(id)-len(format)-1]
		}
	}
	return id
}

// Locator resolves ingestion units against a source store.
type Locator struct {
	store source.Store
	cfg   *config.Config
}

// New creates a Locator over store using the law paths in cfg.
func New(store source.Store, cfg *config.Config) (*Locator, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	return &Locator{store: store, cfg: cfg}, nil
}

// Locate returns the Location of a law document in a language.
// ok is false when the document is absent from the store; this is not an error.
// Store failures other than absence are returned.
func (l *Locator) Locate(ctx context.Context, law, language string) (Location, bool, error) {
	loc := Location{
		Law:      law,
		Language: language,
		FilePath: source.DocumentPath(law, language),
	}
	if p, ok := l.cfg.LawPath(law, language); ok {
		loc.ConfiguredPath = p
	}

	exists, err := l.store.Exists(ctx, loc.FilePath)
	if err != nil {
		return loc, false, fmt.Errorf("locate %s (%s): %w", law, language, err)
	}
	return loc, exists, nil
}
