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


package storage

import (
	"fmt"

	"github.com/poiesic/lexcorpus/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalArticle serializes an Article to bytes.
func MarshalArticle(article *core.Article) []byte {
	buf := make([]byte, core.ArticleMUS.Size(*article))
	core.ArticleMUS.Marshal(*article, buf)
	return buf
}

// UnmarshalArticle deserializes an Article from bytes.
func UnmarshalArticle(data []byte) (*core.Article, error) {
	article, n, err := core.ArticleMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	if len(article.Buckets) == 0 {
		article.Buckets = nil
	}
	return &article, nil
}
