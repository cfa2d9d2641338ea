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


package akn

import (
	"strings"

	"github.com/poiesic/lexcorpus/core"
)

// Extracted is the content of one article node.
type Extracted struct {
	EID   string
	Title string
	Text  string
}

// Strategy extracts title and body text from an article node.
type Strategy interface {
	Name() string
	Extract(article *Node) Extracted
}

// DirectHeading takes the title from the article's own heading child.
type DirectHeading struct{}

func (DirectHeading) Name() string { return "direct" }

func (DirectHeading) Extract(article *Node) Extracted {
	title := core.NoTitle
	if h := article.FirstChild(KindHeading); h != nil {
		if text := headingText(h); text != "" {
			title = text
		}
	}
	return Extracted{
		EID:   article.EID(),
		Title: title,
		Text:  bodyText(article),
	}
}

// AncestorHeading takes the title from the nearest heading, searching the
// article and then each enclosing element in turn. Within one element the
// first heading in document order wins.
type AncestorHeading struct{}

func (AncestorHeading) Name() string { return "ancestor" }

func (AncestorHeading) Extract(article *Node) Extracted {
	title := core.NoTitle
	for n := article; n != nil; n = n.Parent {
		if h := n.FirstDescendant(KindHeading); h != nil {
			if text := headingText(h); text != "" {
				title = text
			}
			break
		}
	}
	return Extracted{
		EID:   article.EID(),
		Title: title,
		Text:  bodyText(article),
	}
}

// headingText concatenates the text runs of a heading and collapses whitespace.
// Inline markup inside a word does not split it.
func headingText(h *Node) string {
	return strings.Join(strings.Fields(h.Text()), " ")
}

// bodyText joins the trimmed text of the direct paragraph-like children with newlines.
func bodyText(article *Node) string {
	var parts []string
	for _, child := range article.Children {
		if child.Kind.ParagraphLike() {
			parts = append(parts, strings.TrimSpace(child.Text()))
		}
	}
	return strings.Join(parts, "\n")
}

// Strategies selects the extraction strategy for each (law, language) unit.
// It is built once and read-only afterwards.
type Strategies struct {
	byUnit   map[core.Unit]Strategy
	fallback Strategy
}

// NewStrategies assigns AncestorHeading to the laws listed per language in
// ancestor and DirectHeading to every other unit.
func NewStrategies(ancestor map[string][]string) *Strategies {
	s := &Strategies{
		byUnit:   make(map[core.Unit]Strategy),
		fallback: DirectHeading{},
	}
	for language, laws := range ancestor {
		for _, law := range laws {
			s.byUnit[core.Unit{Law: law, Language: language}] = AncestorHeading{}
		}
	}
	return s
}

// For returns the strategy for a law in a language.
func (s *Strategies) For(law, language string) Strategy {
	if strategy, ok := s.byUnit[core.Unit{Law: law, Language: language}]; ok {
		return strategy
	}
	return s.fallback
}

// ExtractAll walks the document body and extracts every article in document order.
func ExtractAll(doc *Document, strategy Strategy) []Extracted {
	nodes := Walk(doc.Body)
	out := make([]Extracted, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, strategy.Extract(n))
	}
	return out
}
