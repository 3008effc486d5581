package store

import (
	"github.com/dgraph-io/badger/v2"
)

// reversalEntry records the value a key held immediately before the
// first mutation a session made to it, so Undo can restore exactly that
// value (or delete the key if it didn't exist before).
type reversalEntry struct {
	key      []byte
	hadValue bool
	value    []byte
}

// Session is one undo scope on a BadgerStore. Sessions nest: Set/Delete
// record a reversal entry the first time a session touches a key, Undo
// discards a session's writes by replaying its reversal log, Squash
// merges a session into the one below it on the stack, and Push commits a
// session permanently (spec §6 glossary "Session").
type Session struct {
	store    *BadgerStore
	revision int64
	enabled  bool

	log     []reversalEntry
	touched map[string]bool
}

// Revision returns the block revision this session was opened for.
func (s *Session) Revision() int64 { return s.revision }

// Set writes key=val through the store, recording a reversal entry for
// key the first time this session touches it.
func (s *Session) Set(key, val []byte) error {
	if err := s.recordFirstTouch(key); err != nil {
		return err
	}
	s.store.mu.Lock()
	s.store.writtenSinceFlush += int64(len(key) + len(val))
	s.store.mu.Unlock()
	return s.store.db.Update(func(tx *badger.Txn) error {
		return tx.Set(append([]byte{}, key...), append([]byte{}, val...))
	})
}

// Delete removes key through the store, recording a reversal entry for
// key the first time this session touches it.
func (s *Session) Delete(key []byte) error {
	if err := s.recordFirstTouch(key); err != nil {
		return err
	}
	return s.store.db.Update(func(tx *badger.Txn) error {
		err := tx.Delete(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

func (s *Session) recordFirstTouch(key []byte) error {
	if !s.enabled {
		return nil
	}
	if s.touched == nil {
		s.touched = map[string]bool{}
	}
	k := string(key)
	if s.touched[k] {
		return nil
	}
	s.touched[k] = true

	entry := reversalEntry{key: append([]byte{}, key...)}
	err := s.store.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if err == badger.ErrKeyNotFound {
			entry.hadValue = false
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		entry.hadValue = true
		entry.value = val
		return nil
	})
	if err != nil {
		return err
	}

	s.log = append(s.log, entry)
	return nil
}

// Undo reverses every mutation this session made, in LIFO order, and pops
// it off the store's session stack. Undo may only be called on the
// top-of-stack session; calling it on any other session is a programming
// error (spec §6 sessions form a strict nesting).
func (s *Session) Undo() {
	if !s.enabled {
		s.store.popTop(s)
		return
	}

	_ = s.store.db.Update(func(tx *badger.Txn) error {
		for i := len(s.log) - 1; i >= 0; i-- {
			entry := s.log[i]
			if entry.hadValue {
				if err := tx.Set(entry.key, entry.value); err != nil {
					return err
				}
			} else {
				if err := tx.Delete(entry.key); err != nil && err != badger.ErrKeyNotFound {
					return err
				}
			}
		}
		return nil
	})
	s.store.popTop(s)
}

// Squash merges this session's reversal log into the session directly
// below it on the stack and pops itself off, leaving the combined session
// in its place. For any key both sessions touched, the lower session's
// recorded prior value is kept (it is the value from further back in
// time, which is what undoing the combined session must restore).
func (s *Session) Squash() {
	parent := s.store.below(s)
	if parent == nil {
		// No parent to squash into: behaves like a push (permanent).
		s.store.popTop(s)
		return
	}

	if parent.touched == nil {
		parent.touched = map[string]bool{}
	}
	for _, entry := range s.log {
		k := string(entry.key)
		if parent.touched[k] {
			continue
		}
		parent.touched[k] = true
		parent.log = append(parent.log, entry)
	}
	parent.revision = s.revision

	s.store.popTop(s)
}

// Push commits this session permanently: its writes are already visible
// in the store, so Push simply discards the reversal log and drops the
// session from the stack.
func (s *Session) Push() {
	s.store.popTop(s)
}
