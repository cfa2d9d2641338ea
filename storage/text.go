package storage

import (
	"slices"
	"strings"
)

// Words too common in the corpus languages to narrow a text search.
var stopWords = map[string]bool{
	// en
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "what": true, "how": true,
	// de
	"der": true, "die": true, "das": true, "den": true, "dem": true, "des": true,
	"ein": true, "eine": true, "und": true, "oder": true, "ist": true, "im": true,
	"zu": true, "von": true, "mit": true, "wie": true, "ich": true,
	// fr
	"le": true, "la": true, "les": true, "un": true, "une": true, "et": true,
	"ou": true, "est": true, "du": true, "de": true, "en": true,
	"je": true, "que": true, "qui": true,
	// it
	"il": true, "lo": true, "gli": true, "di": true, "e": true,
	"che": true, "per": true, "con": true, "come": true,
}

// TextTerms splits text into lowercased search terms with punctuation
// trimmed, stop words removed and duplicates dropped. Terms are sorted.
func TextTerms(text string) []string {
	var terms []string
	for _, word := range strings.Fields(text) {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"«»-()[]{}"))
		if cleaned == "" || stopWords[cleaned] || slices.Contains(terms, cleaned) {
			continue
		}
		terms = append(terms, cleaned)
	}
	slices.Sort(terms)
	return terms
}

// containsAllTerms reports whether every term occurs in document,
// ignoring case. An empty term list matches nothing.
func containsAllTerms(document string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	document = strings.ToLower(document)
	for _, term := range terms {
		if !strings.Contains(document, term) {
			return false
		}
	}
	return true
}
