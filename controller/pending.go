package controller

import (
	"time"

	"github.com/flow-consensus/ifcore/feature"
	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/policy"
	"github.com/flow-consensus/ifcore/stage"
	"github.com/flow-consensus/ifcore/store"
)

// blockStatus mirrors the three ways a pending block can have arrived:
// produced locally, received and being validated, or already known
// irreversible (replay), matching controller.cpp's block_status enum and
// spec §3's PendingState entity.
type blockStatus int

const (
	blockStatusIncomplete blockStatus = iota
	blockStatusComplete
	blockStatusIrreversible
	blockStatusValidated
)

// PendingState is the controller's single owned in-flight block: its undo
// session, its current stage (building/assembled/completed), and the
// bookkeeping start_block recorded so abort_block and commit_block know
// what to undo or finalize. At most one PendingState exists at a time
// (spec §3 invariant).
type PendingState struct {
	session *store.Session
	status  blockStatus

	// pathID correlates every log line emitted while this block is in
	// flight, start_block through commit_block or abort_block, the way
	// the teacher's hotstuff TelemetryConsumer tags one uuid per path
	// through its state machine.
	pathID string

	// producerBlockID is set when this pending state represents a block
	// produced locally rather than received from a peer (spec §3's
	// "optional producer block id").
	producerBlockID *chain.Identifier

	building  *stage.BuildingBlock
	assembled *stage.AssembledBlock
	completed *stage.CompletedBlock

	deadline time.Time

	// proposedPolicy holds the finalizer policy this block proposed, if
	// any, captured from the building block's extension before
	// finalize_block discards it, so commit_block can seed the policy
	// transition once the block is durable.
	proposedPolicy *policy.Policy

	// report accumulates per-block bookkeeping (spec §3's "block report"):
	// total transactions applied, total elapsed, etc.
	report BlockReport
}

// BlockReport is the summary of a pending block's production, surfaced to
// callers and observers once the block commits.
type BlockReport struct {
	TotalTransactions    int
	TotalActionDigests   int
	TotalNetUsage        uint64
	TotalCPUUsageUs      uint64
	TotalElapsedNs       int64
	NewlyActivatedFeatures chain.IdentifierList
}

// Stage reports which of building/assembled/completed the pending state
// currently occupies.
func (p *PendingState) Stage() string {
	switch {
	case p.completed != nil:
		return "completed"
	case p.assembled != nil:
		return "assembled"
	default:
		return "building"
	}
}

// featureSet bundles the recognized-feature universe with the per-chain
// protocol state start_block mutates, grounded on spec §4.5's two-phase
// preactivate/activate machinery.
type featureSet struct {
	recognized *feature.Set
	state      *feature.ProtocolState
}
