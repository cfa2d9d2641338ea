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


// Package storage provides the storage abstraction layer for the article corpus.
//
// This package defines the repository interface that decouples the ingestion
// pipeline and the query layer from the storage backend. Two backends exist:
// BadgerDB (storage/badger) for embedded use and PostgreSQL (storage/postgres)
// for shared deployments.
//
// # Replace Semantics
//
// The corpus is rebuilt wholesale on every ingestion run. ReplaceAll deletes
// all records and then bulk-inserts the new set. Badger performs the two
// steps separately; a crash in between leaves an empty corpus. PostgreSQL
// runs both inside one transaction.
//
// # Filters
//
// Find takes a conjunctive Filter over law name (case-insensitive), eId set,
// bucket set and language. Empty fields do not constrain. There is no ranking.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	repo, err := badger.NewArticleRepository(backend)
//	...
//	articles, err := repo.Find(ctx, storage.Filter{
//	    LawNames: []string{"or"},
//	    EIDs:     []string{"art_4"},
//	    Language: "de",
//	})
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
