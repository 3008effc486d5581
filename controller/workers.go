package controller

import (
	"github.com/gammazero/workerpool"

	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/stage"
)

// Workers is the bounded side-effect-free pool spec §5 calls for: it
// performs only signature recovery, merkle computation, and block
// serialization, handing results back through channels the main pipeline
// goroutine awaits at the two integration barriers (finalize_block and
// apply_block). Grounded on github.com/gammazero/workerpool, the bounded
// pool the pack itself uses for exactly this kind of task fan-out
// (consensus/hotstuff/timeoutaggregator).
type Workers struct {
	pool *workerpool.WorkerPool
}

// NewWorkers creates a pool with maxWorkers concurrent goroutines.
func NewWorkers(maxWorkers int) *Workers {
	return &Workers{pool: workerpool.New(maxWorkers)}
}

// Stop waits for all queued work to drain and releases the pool's
// goroutines.
func (w *Workers) Stop() {
	w.pool.StopWait()
}

// merkleResult is the future-like result of an asynchronous merkle
// computation, delivered over a buffered channel the main thread awaits.
type merkleResult struct {
	root chain.Identifier
}

// ComputeMerkleAsync submits a merkle-root computation to the pool and
// returns a channel the caller awaits at the integration barrier inside
// finalize_block.
func (w *Workers) ComputeMerkleAsync(digests []chain.Identifier, hash stage.HashPair, canonical bool) <-chan merkleResult {
	out := make(chan merkleResult, 1)
	w.pool.Submit(func() {
		var root chain.Identifier
		if canonical {
			root = stage.CanonicalMerkleRoot(digests, hash)
		} else {
			root = stage.SymmetricMerkleRoot(digests, hash)
		}
		out <- merkleResult{root: root}
	})
	return out
}

// serializeResult is the future-like result of asynchronous block
// serialization for append to the block log.
type serializeResult struct {
	packed []byte
	err    error
}

// SerializeAsync submits block serialization to the pool, returning a
// channel the irreversibility loop awaits before appending to the block
// log (spec §5's integration barrier inside apply_block).
func (w *Workers) SerializeAsync(block *stage.CompletedBlock, marshal func(*stage.CompletedBlock) ([]byte, error)) <-chan serializeResult {
	out := make(chan serializeResult, 1)
	w.pool.Submit(func() {
		packed, err := marshal(block)
		out <- serializeResult{packed: packed, err: err}
	})
	return out
}

// signatureRecoveryResult is the future-like result of asynchronous
// signer-key recovery from a transaction signature.
type signatureRecoveryResult struct {
	signerID chain.Identifier
	err      error
}

// RecoverSignerAsync submits transaction signer recovery to the pool.
func (w *Workers) RecoverSignerAsync(recover func() (chain.Identifier, error)) <-chan signatureRecoveryResult {
	out := make(chan signatureRecoveryResult, 1)
	w.pool.Submit(func() {
		signerID, err := recover()
		out <- signatureRecoveryResult{signerID: signerID, err: err}
	})
	return out
}
