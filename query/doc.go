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

// Package query answers article lookups against the stored corpus.
//
// Find runs a storage.Filter through an LRU cache keyed by the normalized
// filter. Ask reproduces the chat flow: an optional Responder answers the
// question with attention to the laws of the selected buckets, a
// ReferenceExtractor pulls law abbreviations and article eIds out of the
// answer (or the question when no Responder is set), and those references
// become the filter. Results are not ranked.
//
// Call Purge after the corpus is replaced.
package query
