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


package buckets

import (
	"maps"
	"slices"

	"github.com/poiesic/lexcorpus/core"
)

// Table maps bucket name -> language -> ordered law abbreviations.
type Table map[string]map[string][]string

// Index answers bucket membership for (law, language) pairs.
// The reverse index is computed once in NewIndex; an Index is never
// mutated afterwards and is safe for concurrent use without locking.
type Index struct {
	table   Table
	reverse map[core.Unit][]string
	units   []core.Unit
}

// NewIndex builds an Index from a bucket table in a single pass.
// Bucket names are visited in sorted order so every derived list is deterministic.
func NewIndex(table Table) *Index {
	idx := &Index{
		table:   make(Table, len(table)),
		reverse: make(map[core.Unit][]string),
	}

	seenUnit := make(map[core.Unit]bool)
	for _, bucket := range slices.Sorted(maps.Keys(table)) {
		byLanguage := table[bucket]
		idx.table[bucket] = make(map[string][]string, len(byLanguage))
		for _, language := range slices.Sorted(maps.Keys(byLanguage)) {
			var laws []string
			for _, law := range byLanguage[language] {
				if slices.Contains(laws, law) {
					continue
				}
				laws = append(laws, law)

				unit := core.Unit{Law: law, Language: language}
				idx.reverse[unit] = append(idx.reverse[unit], bucket)
				if !seenUnit[unit] {
					seenUnit[unit] = true
					idx.units = append(idx.units, unit)
				}
			}
			idx.table[bucket][language] = laws
		}
	}

	// Group units by language, keeping first-appearance order within a language
	slices.SortStableFunc(idx.units, func(a, b core.Unit) int {
		switch {
		case a.Language < b.Language:
			return -1
		case a.Language > b.Language:
			return 1
		}
		return 0
	})

	return idx
}

// BucketsFor returns the buckets containing law for language, sorted by name.
// An unmapped pair yields an empty slice. The result is a copy.
func (idx *Index) BucketsFor(law, language string) []string {
	buckets := idx.reverse[core.Unit{Law: law, Language: language}]
	if len(buckets) == 0 {
		return []string{}
	}
	return slices.Clone(buckets)
}

// Units returns every distinct (law, language) pair named by the table,
// ordered by language and then by first appearance.
func (idx *Index) Units() []core.Unit {
	return slices.Clone(idx.units)
}

// Languages returns the languages named by the table, sorted.
func (idx *Index) Languages() []string {
	var languages []string
	for _, unit := range idx.units {
		if !slices.Contains(languages, unit.Language) {
			languages = append(languages, unit.Language)
		}
	}
	return languages
}

// Buckets returns the bucket names, sorted.
func (idx *Index) Buckets() []string {
	return slices.Sorted(maps.Keys(idx.table))
}

// Laws returns the laws of a bucket for a language in table order.
func (idx *Index) Laws(bucket, language string) []string {
	return slices.Clone(idx.table[bucket][language])
}

// LawsInBuckets returns the distinct laws of the given buckets for a language.
func (idx *Index) LawsInBuckets(language string, buckets ...string) []string {
	var laws []string
	for _, bucket := range buckets {
		for _, law := range idx.table[bucket][language] {
			if !slices.Contains(laws, law) {
				laws = append(laws, law)
			}
		}
	}
	return laws
}
