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


package core

import "errors"

// Ingestion error taxonomy. Configuration and storage failures are fatal for a run;
// missing and malformed sources only skip the affected (law, language) unit.
var (
	// ErrConfiguration indicates the law or bucket configuration is missing or malformed.
	ErrConfiguration = errors.New("configuration error")

	// ErrSourceNotFound indicates an expected source document is absent.
	ErrSourceNotFound = errors.New("source not found")

	// ErrMalformedDocument indicates a source document cannot be parsed.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrStorageFailure indicates the corpus store rejected a delete or insert.
	ErrStorageFailure = errors.New("storage failure")
)

// Domain validation errors
var (
	// ErrInvalidArticle indicates an Article failed validation.
	ErrInvalidArticle = errors.New("invalid article")

	// ErrEmptyLawName indicates the LawName field is empty.
	ErrEmptyLawName = errors.New("law name cannot be empty")

	// ErrEmptyLanguage indicates the Language field is empty.
	ErrEmptyLanguage = errors.New("language cannot be empty")
)
