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


package badger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Backend owns the BadgerDB handle shared by the article repository.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLog routes badger's printf-style logging into slog.
type badgerLog struct {
	logger *slog.Logger
}

var _ badger.Logger = badgerLog{}

func (l badgerLog) log(level slog.Level, format string, args []any) {
	l.logger.Log(context.Background(), level, strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
}

func (l badgerLog) Errorf(format string, args ...any)   { l.log(slog.LevelError, format, args) }
func (l badgerLog) Warningf(format string, args ...any) { l.log(slog.LevelWarn, format, args) }
func (l badgerLog) Infof(format string, args ...any)    { l.log(slog.LevelInfo, format, args) }
func (l badgerLog) Debugf(format string, args ...any)   { l.log(slog.LevelDebug, format, args) }

// OpenBackend opens the corpus database in dir, creating dir when missing.
// With inMemory set dir is ignored and nothing touches the disk.
func OpenBackend(dir string, inMemory bool) (*Backend, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	if !inMemory {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}

	logger := slog.Default().With("component", "badger")
	opts = opts.WithLogger(badgerLog{logger: logger}).WithCompression(options.None)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", dir, err)
	}
	return &Backend{db: db, logger: logger}, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// DropPrefix deletes every key starting with one of the prefixes.
func (b *Backend) DropPrefix(prefixes ...[]byte) error {
	return b.db.DropPrefix(prefixes...)
}

// WriteBatch writes entries in bulk outside of a single transaction.
// fn stages entries with set; they are flushed when fn returns nil.
func (b *Backend) WriteBatch(fn func(set func(key, value []byte) error) error) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	if err := fn(wb.Set); err != nil {
		return err
	}
	return wb.Flush()
}
