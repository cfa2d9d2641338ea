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
	"slices"
	"strings"

	"github.com/poiesic/lexcorpus/core"
)

// Filter is a conjunctive article query. Empty fields do not constrain.
type Filter struct {
	// LawNames matches law names case-insensitively.
	LawNames []string `json:"law_names,omitempty"`

	// EIDs matches exact eIds.
	EIDs []string `json:"eids,omitempty"`

	// Buckets matches articles tagged with at least one of the buckets.
	Buckets []string `json:"buckets,omitempty"`

	// Language matches exactly.
	Language string `json:"language,omitempty"`

	// Text matches articles whose body contains every search term of Text,
	// ignoring case. See TextTerms.
	Text string `json:"text,omitempty"`
}

// Normalize trims values, lowercases law names, drops empty values and
// duplicates, and sorts every set so equal filters compare equal.
// Text is reduced to its sorted search terms.
func (f Filter) Normalize() Filter {
	normalize := func(values []string, fold bool) []string {
		var out []string
		for _, v := range values {
			v = strings.TrimSpace(v)
			if fold {
				v = strings.ToLower(v)
			}
			if v != "" && !slices.Contains(out, v) {
				out = append(out, v)
			}
		}
		slices.Sort(out)
		return out
	}
	return Filter{
		LawNames: normalize(f.LawNames, true),
		EIDs:     normalize(f.EIDs, false),
		Buckets:  normalize(f.Buckets, false),
		Language: strings.TrimSpace(f.Language),
		Text:     strings.Join(TextTerms(f.Text), " "),
	}
}

// Key returns a stable string form of the normalized filter. Every value
// is length-prefixed, so no value content can alias another filter.
func (f Filter) Key() string {
	n := f.Normalize()
	var b strings.Builder
	field := func(values ...string) {
		fmt.Fprintf(&b, "%d:", len(values))
		for _, v := range values {
			fmt.Fprintf(&b, "%d:%s", len(v), v)
		}
	}
	field(n.LawNames...)
	field(n.EIDs...)
	field(n.Buckets...)
	field(n.Language)
	field(n.Text)
	return b.String()
}

// IsEmpty reports whether the filter matches every article.
func (f Filter) IsEmpty() bool {
	n := f.Normalize()
	return len(n.LawNames) == 0 && len(n.EIDs) == 0 && len(n.Buckets) == 0 &&
		n.Language == "" && n.Text == ""
}

// TextTerms returns the search terms of the normalized filter.
func (f Filter) TextTerms() []string {
	return TextTerms(f.Text)
}

// Match reports whether article satisfies every constrained field.
// Matching happens on the normalized filter.
func (f Filter) Match(article *core.Article) bool {
	return f.Matcher()(article)
}

// Matcher normalizes the filter once and returns a predicate for scanning
// many articles.
func (f Filter) Matcher() func(*core.Article) bool {
	n := f.Normalize()
	terms := n.TextTerms()
	return func(article *core.Article) bool {
		if article == nil {
			return false
		}
		if len(n.LawNames) > 0 && !slices.Contains(n.LawNames, strings.ToLower(article.LawName)) {
			return false
		}
		if len(n.EIDs) > 0 && !slices.Contains(n.EIDs, article.EID) {
			return false
		}
		if len(n.Buckets) > 0 && !slices.ContainsFunc(n.Buckets, article.HasBucket) {
			return false
		}
		if n.Language != "" && n.Language != article.Language {
			return false
		}
		if len(terms) > 0 && !containsAllTerms(article.Text, terms) {
			return false
		}
		return true
	}
}
