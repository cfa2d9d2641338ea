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


// Package akn loads Akoma Ntoso legislative documents into a parent-linked
// tree and extracts articles from it.
//
// Elements are classified once, by local name, when the tree is built.
// Everything downstream dispatches on Kind and never compares tag strings.
package akn

// Kind is the closed set of element kinds the extractor recognizes.
type Kind uint8

const (
	KindOther Kind = iota // Any unrecognized element; transparent to the walker
	KindText              // Character data
	KindBody
	KindChapter
	KindSection
	KindTitle
	KindArticle
	KindHeading
	KindParagraph
	KindContent
	KindP
	KindMeta
)

var kindNames = [...]string{
	KindOther:     "other",
	KindText:      "#text",
	KindBody:      "body",
	KindChapter:   "chapter",
	KindSection:   "section",
	KindTitle:     "title",
	KindArticle:   "article",
	KindHeading:   "heading",
	KindParagraph: "paragraph",
	KindContent:   "content",
	KindP:         "p",
	KindMeta:      "meta",
}

var kindsByName = map[string]Kind{
	"body":      KindBody,
	"chapter":   KindChapter,
	"section":   KindSection,
	"title":     KindTitle,
	"article":   KindArticle,
	"heading":   KindHeading,
	"paragraph": KindParagraph,
	"content":   KindContent,
	"p":         KindP,
	"meta":      KindMeta,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParagraphLike reports whether the kind contributes to an article's body text.
func (k Kind) ParagraphLike() bool {
	return k == KindParagraph || k == KindContent || k == KindP
}

// kindOf classifies an element by its namespace-free local name.
func kindOf(local string) Kind {
	if k, ok := kindsByName[local]; ok {
		return k
	}
	return KindOther
}
