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

import (
	"fmt"
	"slices"
)

// ValidateArticle validates an Article according to domain rules.
//
// Validation rules:
//   - LawName must not be empty
//   - Language must not be empty
//   - Buckets must not contain duplicates
//
// NOT validated:
//   - EID (an empty eId is kept and reported as suspicious)
//   - Buckets being empty (downstream policy decides)
//   - Title and Text (an article may legitimately have no body)
func ValidateArticle(article *Article) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}

	if article.LawName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyLawName)
	}

	if article.Language == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyLanguage)
	}

	sorted := slices.Clone(article.Buckets)
	slices.Sort(sorted)
	if len(slices.Compact(sorted)) != len(article.Buckets) {
		return fmt.Errorf("%w: duplicate bucket tags", ErrInvalidArticle)
	}

	return nil
}
