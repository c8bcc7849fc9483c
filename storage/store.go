// Package storage implements the single transactional key-value store
// the sync driver funnels all persistent mutation through. It plays
// the role core/rawdb plays for go-ethereum: a thin, ordered-key
// schema over a generic KV engine (here github.com/cockroachdb/pebble
// instead of go-ethereum's leveldb/pebble pair), with one table helper
// per logical table this core persists.
package storage

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// Store owns the single writable connection producers and the driver
// share access to through request/reply channels rather than a shared
// handle — producers go through request-reply channels instead of
// sharing the handle directly, enforced by convention, not by this
// type, since Go has no borrow checker to do it for us.
type Store struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a durable store at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble store at %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// OpenMemory opens an in-memory store, used by tests and by any
// embedding caller that wants a scratch chain view.
func OpenMemory() (*Store, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, fmt.Errorf("open in-memory pebble store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Tx is a single atomic unit of work. Every L1/L2 mutation in the
// driver, plus the composite-head reconciliation it triggers, happens
// inside exactly one Tx — see DESIGN.md on why this matters for crash
// safety.
type Tx struct {
	batch *pebble.Batch
}

// Reader is pebble's own read-access interface, satisfied by both
// *pebble.Batch (inside a Tx) and *pebble.Snapshot (read-only views).
// Table helpers are written against it so they work unmodified in
// either context.
type Reader = pebble.Reader

// Begin starts a new read-write transaction. The returned Tx supports
// reading back writes made earlier in the same Tx (pebble's indexed
// batch), which the composite-head reconciler relies on: it reads the
// L2 block or L1 log that was just inserted earlier in the same
// transaction.
func (s *Store) Begin() *Tx {
	return &Tx{batch: s.db.NewIndexedBatch()}
}

// Commit durably applies every write made against the Tx.
func (t *Tx) Commit() error {
	if err := t.batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the Tx without applying any of its writes.
func (t *Tx) Rollback() error {
	return t.batch.Close()
}

// Reader returns the read/write handle table helpers operate against.
func (t *Tx) Reader() Reader {
	return t.batch
}

// Writer returns the write handle table helpers operate against.
func (t *Tx) Writer() pebble.Writer {
	return t.batch
}

// ReadWriter returns the combined read/write handle for table helpers
// that need to check before writing, such as ContractCodeTable.Insert's
// idempotency check.
func (t *Tx) ReadWriter() pebble.ReadWriter {
	return t.batch
}

// View runs fn against a consistent read-only snapshot of the store.
// Used by query handlers (QueryUpdate, QueryHash, QueryContractExistence)
// that must not take a write transaction.
func (s *Store) View(fn func(r Reader) error) error {
	snap := s.db.NewSnapshot()
	defer snap.Close()
	return fn(snap)
}
