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


package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/poiesic/lexcorpus/core"
	"gopkg.in/yaml.v3"
)

// Config holds the law and bucket tables driving an ingestion run.
// It is built once, validated, and then shared read-only by every component.
type Config struct {
	// BaseURL is the prefix of every article link.
	// Example: "https://www.fedlex.admin.ch/eli/"
	BaseURL string `json:"base_url" yaml:"base_url"`

	// SourceURL is the prefix used to download source documents.
	// Defaults to BaseURL when empty.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// Laws maps language -> law abbreviation -> relative document path.
	Laws map[string]map[string]string `json:"laws" yaml:"laws"`

	// Buckets maps bucket name -> language -> ordered law abbreviations.
	Buckets map[string]map[string][]string `json:"buckets" yaml:"buckets"`

	// AncestorHeading maps language -> laws whose headings sit on enclosing
	// sections rather than on the articles. Defaults to the code of obligations
	// and the civil code.
	AncestorHeading map[string][]string `json:"ancestor_heading,omitempty" yaml:"ancestor_heading,omitempty"`
}

// defaultAncestorHeading lists the code of obligations and the civil code
// under their per-language abbreviations.
var defaultAncestorHeading = map[string][]string{
	"de": {"OR", "ZGB"},
	"fr": {"CO", "CC"},
	"it": {"CO", "CC"},
	"en": {"CO", "CC"},
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithBaseURL sets the article link prefix.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithSourceURL sets the download prefix for source documents.
func WithSourceURL(url string) Option {
	return func(c *Config) {
		c.SourceURL = url
	}
}

// WithLaw registers the relative path of a law in a language.
func WithLaw(language, abbreviation, path string) Option {
	return func(c *Config) {
		if c.Laws[language] == nil {
			c.Laws[language] = make(map[string]string)
		}
		c.Laws[language][abbreviation] = path
	}
}

// WithBucket appends laws to a bucket for a language.
func WithBucket(bucket, language string, laws ...string) Option {
	return func(c *Config) {
		if c.Buckets[bucket] == nil {
			c.Buckets[bucket] = make(map[string][]string)
		}
		c.Buckets[bucket][language] = append(c.Buckets[bucket][language], laws...)
	}
}

// WithAncestorHeading replaces the near-ancestor-heading laws for a language.
func WithAncestorHeading(language string, laws ...string) Option {
	return func(c *Config) {
		if c.AncestorHeading == nil {
			c.AncestorHeading = make(map[string][]string)
		}
		c.AncestorHeading[language] = laws
	}
}

// NewConfig creates an empty Config and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBaseURL("https://www.fedlex.admin.ch/eli/"),
//	    WithLaw("de", "OR", "cc/27/317_321_377/de"),
//	    WithBucket("Corporate Law", "de", "OR", "ZGB"),
//	)
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		Laws:    make(map[string]map[string]string),
		Buckets: make(map[string]map[string][]string),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a configuration file. Files ending in .yaml or .yml are decoded
// as YAML, everything else as JSON. The result is validated before return.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}

	cfg := NewConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", core.ErrConfiguration, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize ensures the configuration is in a canonical form.
// URL prefixes get a trailing slash so relative paths can be appended directly.
func (c *Config) Normalize() {
	c.BaseURL = withTrailingSlash(strings.TrimSpace(c.BaseURL))
	c.SourceURL = withTrailingSlash(strings.TrimSpace(c.SourceURL))
	if c.SourceURL == "" {
		c.SourceURL = c.BaseURL
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url is required", core.ErrConfiguration)
	}
	if len(c.Buckets) == 0 {
		return fmt.Errorf("%w: at least one bucket is required", core.ErrConfiguration)
	}
	for bucket, byLanguage := range c.Buckets {
		if strings.TrimSpace(bucket) == "" {
			return fmt.Errorf("%w: bucket name cannot be empty", core.ErrConfiguration)
		}
		for language, laws := range byLanguage {
			if strings.TrimSpace(language) == "" {
				return fmt.Errorf("%w: bucket %q has an empty language", core.ErrConfiguration, bucket)
			}
			for _, law := range laws {
				if strings.TrimSpace(law) == "" {
					return fmt.Errorf("%w: bucket %q (%s) has an empty law abbreviation", core.ErrConfiguration, bucket, language)
				}
			}
		}
	}
	for language, laws := range c.Laws {
		for law, path := range laws {
			if strings.TrimSpace(path) == "" {
				return fmt.Errorf("%w: law %s (%s) has an empty path", core.ErrConfiguration, law, language)
			}
		}
	}
	return nil
}

// LawPath returns the configured relative path of a law in a language.
func (c *Config) LawPath(law, language string) (string, bool) {
	path, ok := c.Laws[language][law]
	return path, ok
}

// AncestorHeadingLaws returns a copy of the near-ancestor-heading table in effect.
func (c *Config) AncestorHeadingLaws() map[string][]string {
	table := defaultAncestorHeading
	if c.AncestorHeading != nil {
		table = c.AncestorHeading
	}
	out := make(map[string][]string, len(table))
	for language, laws := range table {
		out[language] = slices.Clone(laws)
	}
	return out
}

func withTrailingSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
