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


package query

import "errors"

var (
	// ErrRepositoryRequired is returned when an article repository is not provided.
	ErrRepositoryRequired = errors.New("article repository required")

	// ErrExtractorRequired is returned by Ask when no reference extractor is configured.
	ErrExtractorRequired = errors.New("reference extractor required")

	// ErrInvalidCacheSize is returned when the result cache size is not positive.
	ErrInvalidCacheSize = errors.New("cache size must be positive")

	// ErrEmptyQuestion is returned by Ask for a blank question.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrNoSearchTerms is returned by AskFromArticles when the question
	// consists of stop words only.
	ErrNoSearchTerms = errors.New("question has no search terms")
)
