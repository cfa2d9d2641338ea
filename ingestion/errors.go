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


package ingestion

import "errors"

var (
	// ErrConfigRequired is returned when a configuration is not provided.
	ErrConfigRequired = errors.New("config required")

	// ErrIndexRequired is returned when a bucket index is not provided.
	ErrIndexRequired = errors.New("bucket index required")

	// ErrLocatorRequired is returned when a document locator is not provided.
	ErrLocatorRequired = errors.New("locator required")

	// ErrSourceStoreRequired is returned when a source store is not provided.
	ErrSourceStoreRequired = errors.New("source store required")

	// ErrRepositoryRequired is returned when an article repository is not provided.
	ErrRepositoryRequired = errors.New("article repository required")
)
