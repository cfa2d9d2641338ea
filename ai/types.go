package ai

import (
	"regexp"
	"slices"
	"strings"
)

// Languages lists the languages with prompts.
var Languages = []string{"de", "en", "fr", "it"}

// References are the laws and articles a text refers to.
type References struct {
	// Laws are law abbreviations, e.g. "OR", "ZGB", "HRegV".
	Laws []string `json:"law_abbreviation_in_capitals"`

	// EIDs are article identifiers formatted as eIds, e.g. "art_4", "art_635_a".
	EIDs []string `json:"art_number_formatted_as_eId"`
}

var eIDPattern = regexp.MustCompile(`^art_[0-9]+[a-z0-9_]*$`)

// Normalize trims and dedupes both lists and drops eIds that are not
// article identifiers. Order of first appearance is kept.
func (r References) Normalize() References {
	var out References
	for _, law := range r.Laws {
		law = strings.TrimSpace(law)
		if law != "" && !slices.Contains(out.Laws, law) {
			out.Laws = append(out.Laws, law)
		}
	}
	for _, eID := range r.EIDs {
		eID = strings.ToLower(strings.TrimSpace(eID))
		if eIDPattern.MatchString(eID) && !slices.Contains(out.EIDs, eID) {
			out.EIDs = append(out.EIDs, eID)
		}
	}
	return out
}

// IsEmpty reports whether no law and no article was found.
func (r References) IsEmpty() bool {
	return len(r.Laws) == 0 && len(r.EIDs) == 0
}
