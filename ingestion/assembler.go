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

import (
	"strings"

	"github.com/poiesic/lexcorpus/akn"
	"github.com/poiesic/lexcorpus/buckets"
	"github.com/poiesic/lexcorpus/core"
)

// Assembler turns extracted article content into persisted records.
// It attaches bucket tags and builds links; it performs no I/O.
type Assembler struct {
	baseURL string
	index   *buckets.Index
}

// NewAssembler creates an Assembler linking under baseURL.
// baseURL is expected to end with a slash, as config.Config.Validate ensures.
func NewAssembler(baseURL string, index *buckets.Index) *Assembler {
	return &Assembler{baseURL: baseURL, index: index}
}

// Assemble builds the Article record for one extracted article of unit.
// relativePath is the link path resolved by the locator.
func (a *Assembler) Assemble(unit core.Unit, relativePath string, extracted akn.Extracted) *core.Article {
	return &core.Article{
		Id:       core.ArticleID(unit.Law, unit.Language, extracted.EID),
		LawName:  unit.Law,
		EID:      extracted.EID,
		Buckets:  a.index.BucketsFor(unit.Law, unit.Language),
		Title:    extracted.Title,
		Text:     extracted.Text,
		Link:     a.Link(relativePath, extracted.EID),
		Language: unit.Language,
	}
}

// Link returns base + relativePath + "#art_" + articleNumber.
func (a *Assembler) Link(relativePath, eID string) string {
	return a.baseURL + strings.Trim(relativePath, "/") + "#art_" + core.ArticleNumber(eID)
}
