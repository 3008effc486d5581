package controller

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/stage"
)

// Signals is the in-process observer distributor spec §9 calls for: a
// single message-passing abstraction handlers register against at
// startup, invoked synchronously on the main pipeline goroutine, grounded
// on the teacher's notifications/pubsub distributor pattern (a struct
// holding a slice of subscriber funcs per event, dispatched in
// registration order under a lock).
type Signals struct {
	mu sync.RWMutex

	blockStart        []func(blockNum uint32)
	headerAccepted    []func(header chain.Header)
	blockAccepted     []func(block *stage.CompletedBlock)
	irreversibleBlock []func(block *stage.CompletedBlock)
	voteBroadcast     []func(connectionID string, msg HSMessage)

	log zerolog.Logger
}

// NewSignals creates an empty Signals distributor.
func NewSignals(log zerolog.Logger) *Signals {
	return &Signals{log: log}
}

func (s *Signals) OnBlockStart(f func(blockNum uint32)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockStart = append(s.blockStart, f)
}

func (s *Signals) OnHeaderAccepted(f func(header chain.Header)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headerAccepted = append(s.headerAccepted, f)
}

func (s *Signals) OnBlockAccepted(f func(block *stage.CompletedBlock)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockAccepted = append(s.blockAccepted, f)
}

func (s *Signals) OnIrreversibleBlock(f func(block *stage.CompletedBlock)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.irreversibleBlock = append(s.irreversibleBlock, f)
}

// OnVoteBroadcast registers a handler invoked for every inbound HotStuff
// message notify_hs_message ingests, the hook the consensus engine
// collaborator uses to rebroadcast votes and certificates to its peers
// (spec §6 "vote-broadcast hooks").
func (s *Signals) OnVoteBroadcast(f func(connectionID string, msg HSMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voteBroadcast = append(s.voteBroadcast, f)
}

func (s *Signals) emitBlockStart(blockNum uint32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.blockStart {
		s.dispatch("block_start", func() { f(blockNum) })
	}
}

func (s *Signals) emitHeaderAccepted(header chain.Header) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.headerAccepted {
		s.dispatch("header_accepted", func() { f(header) })
	}
}

func (s *Signals) emitBlockAccepted(block *stage.CompletedBlock) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.blockAccepted {
		s.dispatch("block_accepted", func() { f(block) })
	}
}

func (s *Signals) emitIrreversibleBlock(block *stage.CompletedBlock) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.irreversibleBlock {
		s.dispatch("irreversible_block", func() { f(block) })
	}
}

func (s *Signals) emitVoteBroadcast(connectionID string, msg HSMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.voteBroadcast {
		s.dispatch("vote_broadcast", func() { f(connectionID, msg) })
	}
}

// dispatch runs a single observer call inline, recovering from and logging
// any panic so a misbehaving observer can never fork the chain (spec §5
// "failure isolation" — observer handlers catch all non-allocation
// exceptions).
func (s *Signals) dispatch(signal string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("signal", signal).Interface("panic", r).Msg("observer handler panicked, swallowing")
		}
	}()
	call()
}
