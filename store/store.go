// Package store implements the undo-capable state store adapter from
// spec §6: an index store with nested undo sessions (squash/undo/push)
// layered over github.com/dgraph-io/badger/v2, driven by block revisions.
// Badger itself has no nested-transaction concept, so the session stack
// and its reversal logs are maintained here in Go, grounded on the
// teacher's storage/badger/operation transaction-closure style
// (func(*badger.Txn) error) for the primitive reads/writes.
package store

import (
	"sync"

	"github.com/dgraph-io/badger/v2"
)

// Store is the controller-facing contract spec §6 calls out for the state
// store collaborator.
type Store interface {
	StartUndoSession(enabled bool) *Session
	UndoAll()
	Revision() int64
	SetRevision(n int64)
	Commit(n int64)
	CheckMemoryAndFlushIfNeeded() (flushedPages int, err error)

	Get(key []byte) ([]byte, error)
	Set(key, val []byte) error
	Delete(key []byte) error
}

// BadgerStore is the production Store implementation.
type BadgerStore struct {
	mu sync.Mutex

	db       *badger.DB
	revision int64
	sessions []*Session

	// writtenSinceFlush is a crude heuristic byte counter driving
	// CheckMemoryAndFlushIfNeeded, since badger tracks value-log size
	// internally but doesn't expose a simple "pages dirty" count the way
	// spec §6's contract implies.
	writtenSinceFlush int64
	flushThreshold    int64
}

// NewBadgerStore opens (or creates) a badger database at dir and wraps it
// in a BadgerStore with the given flush threshold, in bytes.
func NewBadgerStore(dir string, flushThreshold int64) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db, flushThreshold: flushThreshold}, nil
}

// Close releases the underlying badger database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Get reads key directly from the underlying database, bypassing the
// undo-session bookkeeping (used by read-only query paths).
func (s *BadgerStore) Get(key []byte) ([]byte, error) {
	var val []byte
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		val = v
		return nil
	})
	return val, err
}

// Set writes key=val directly, with no undo-session recording. Prefer
// mutating through the current Session so the write can be undone.
func (s *BadgerStore) Set(key, val []byte) error {
	s.mu.Lock()
	s.writtenSinceFlush += int64(len(key) + len(val))
	s.mu.Unlock()
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Set(key, val)
	})
}

// Delete removes key directly, with no undo-session recording.
func (s *BadgerStore) Delete(key []byte) error {
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Delete(key)
	})
}

// IterateKeys calls fn for every key (and its value) whose bytes begin
// with prefix, in badger's lexicographic key order. Intended for
// diagnostics tooling; bypasses the undo-session bookkeeping entirely.
func (s *BadgerStore) IterateKeys(prefix []byte, fn func(key, val []byte) error) error {
	return s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := tx.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// StartUndoSession opens a new nested session on top of the current
// stack, tagged with a freshly incremented revision. When enabled is
// false, mutations through the returned session bypass reversal-log
// recording entirely (used when replaying blocks already known
// irreversible, spec §4.4).
func (s *BadgerStore) StartUndoSession(enabled bool) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revision++
	session := &Session{
		store:    s,
		revision: s.revision,
		enabled:  enabled,
	}
	s.sessions = append(s.sessions, session)
	return session
}

// UndoAll undoes every open session, top (most recent) to bottom, leaving
// the store as it was before the oldest open session began.
func (s *BadgerStore) UndoAll() {
	for {
		s.mu.Lock()
		if len(s.sessions) == 0 {
			s.mu.Unlock()
			return
		}
		top := s.sessions[len(s.sessions)-1]
		s.mu.Unlock()
		top.Undo()
	}
}

// Revision returns the store's current revision counter.
func (s *BadgerStore) Revision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// SetRevision forcibly sets the revision counter, used on startup/replay
// to realign the store with the block log's head.
func (s *BadgerStore) SetRevision(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revision = n
}

// Commit makes every open session with revision <= n permanent: their
// reversal logs are discarded and they are dropped from the stack, since
// the corresponding blocks are now irreversible and can never be undone.
func (s *BadgerStore) Commit(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.sessions[:0]
	for _, sess := range s.sessions {
		if sess.revision > n {
			kept = append(kept, sess)
		}
	}
	s.sessions = kept
}

// CheckMemoryAndFlushIfNeeded flattens the underlying badger database's
// value log once writtenSinceFlush crosses flushThreshold, reporting an
// approximate count of "flushed pages" (bytes written since the last
// flush, divided by a nominal page size) for observability parity with
// spec §6's contract.
func (s *BadgerStore) CheckMemoryAndFlushIfNeeded() (int, error) {
	s.mu.Lock()
	written := s.writtenSinceFlush
	s.mu.Unlock()

	if s.flushThreshold <= 0 || written < s.flushThreshold {
		return 0, nil
	}

	if err := s.db.Flatten(1); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.writtenSinceFlush = 0
	s.mu.Unlock()

	const nominalPageSize = 4096
	return int(written / nominalPageSize), nil
}

func (s *BadgerStore) popTop(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) == 0 || s.sessions[len(s.sessions)-1] != sess {
		return
	}
	s.sessions = s.sessions[:len(s.sessions)-1]
}

func (s *BadgerStore) below(sess *Session) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.sessions {
		if cur == sess && i > 0 {
			return s.sessions[i-1]
		}
	}
	return nil
}
