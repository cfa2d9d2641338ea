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


package badger

import (
	"encoding/binary"
	"strings"

	"github.com/poiesic/lexcorpus/core"
)

// Key prefixes for different data types
const (
	articleRecordPrefix = "artrec:"
	articleIDPrefix     = "artid:"
)

const keySeparator = "\x00"

// makeArticlePartitionKey generates the scan prefix for a language and,
// optionally, a law. Law names are folded to lower case so lookups are
// case-insensitive.
// Format: prefix:language\x00[law\x00]
func makeArticlePartitionKey(language, law string) []byte {
	key := articleRecordPrefix + language + keySeparator
	if law != "" {
		key += strings.ToLower(law) + keySeparator
	}
	return []byte(key)
}

// makeArticleKey generates the primary key of an article.
// Format: prefix:language\x00law\x00ordinal
// The big-endian ordinal keeps insertion order within a (language, law) partition.
func makeArticleKey(article *core.Article, ordinal uint64) []byte {
	partition := makeArticlePartitionKey(article.Language, article.LawName)
	buf := make([]byte, len(partition)+8)
	offset := copy(buf, partition)
	binary.BigEndian.PutUint64(buf[offset:], ordinal)
	return buf
}

// makeArticleIDKey generates the key of the ID index.
// Format: prefix:id
func makeArticleIDKey(id core.ID) []byte {
	buf := make([]byte, len(articleIDPrefix)+8)
	offset := copy(buf, articleIDPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
