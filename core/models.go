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

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"slices"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// NoTitle is the title assigned to articles without a resolvable heading.
const NoTitle = "No Title"

// ID is a unique identifier for domain entities.
// Article IDs are content-based so repeated runs produce identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ArticleID returns the content ID for an article of a law in a language.
func ArticleID(law, language, eID string) ID {
	return IDFromContent(law + "\x00" + language + "\x00" + eID)
}

// ArticleNumber strips the first underscore-delimited segment of an eId.
// "art_635_a" yields "635_a". An eId without an underscore is returned as is.
func ArticleNumber(eID string) string {
	_, rest, found := strings.Cut(eID, "_")
	if !found {
		return eID
	}
	return rest
}

// Unit identifies one (law, language) ingestion unit.
type Unit struct {
	Law      string
	Language string
}

func (u Unit) String() string {
	return u.Law + "/" + u.Language
}

// LawSource is one legislative document for a (law, language) pair.
type LawSource struct {
	Abbreviation string
	Language     string
	RelativePath string // Path fragment used to build article links
	Content      []byte
}

// Article is one persisted article record.
// Articles are built once per ingestion run and never mutated afterwards.
type Article struct {
	Id       ID       `json:"-"`
	LawName  string   `json:"law_name"`
	EID      string   `json:"eId"`
	Buckets  []string `json:"bucket"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Link     string   `json:"link"`
	Language string   `json:"language"`
}

// ArticleNumber returns the article number derived from the eId.
func (a *Article) ArticleNumber() string {
	return ArticleNumber(a.EID)
}

// Unit returns the ingestion unit the article belongs to.
func (a *Article) Unit() Unit {
	return Unit{Law: a.LawName, Language: a.Language}
}

// Suspicious reports whether the article carries an empty eId.
func (a *Article) Suspicious() bool {
	return a.EID == ""
}

// HasBucket reports whether the article is tagged with the bucket.
func (a *Article) HasBucket(bucket string) bool {
	return slices.Contains(a.Buckets, bucket)
}
