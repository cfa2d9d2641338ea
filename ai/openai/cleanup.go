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


package openai

import (
	"regexp"
	"strings"
)

var (
	// `, laws":` -> `, "laws":`
	unquotedKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)"\s*:`)
	// `["OR",]` -> `["OR"]`
	trailingComma = regexp.MustCompile(`,(\s*[\]}])`)
)

// cleanResponse turns a model reply into something json.Unmarshal can read.
// It strips markdown fences and surrounding prose, then repairs keys that lost
// their opening quote and trailing commas.
func cleanResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		s = s[start : end+1]
	}

	s = unquotedKey.ReplaceAllString(s, `$1"$2":`)
	s = trailingComma.ReplaceAllString(s, "$1")
	return s
}

// scrubString removes NUL and other control characters except newlines and tabs.
func scrubString(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r >= ' ' {
			return r
		}
		return -1
	}, s))
}
