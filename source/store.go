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


// Package source defines the backing store holding raw legislative documents.
//
// Documents are addressed by slash-separated paths of the form
// "<language>/<abbreviation>.xml". Implementations live in the local
// (filesystem) and s3 (MinIO / S3 compatible) subpackages.
package source

import (
	"context"
	"io"
	"path"
)

// Store provides access to raw source documents.
// Implementations must be safe for concurrent use.
type Store interface {
	// Exists reports whether a document is present at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Open returns a reader over the document at path.
	// Returns an error wrapping core.ErrSourceNotFound if it is absent.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Put stores a document at path, replacing any previous content.
	Put(ctx context.Context, path string, data []byte) error
}

// DocumentPath returns the store path of a law document in a language.
func DocumentPath(law, language string) string {
	return path.Join(language, law+".xml")
}
