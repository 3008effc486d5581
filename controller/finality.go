package controller

import (
	"sync"
	"time"

	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/policy"
	"github.com/flow-consensus/ifcore/stage"
)

// FinalizerState is the IF-regime view get_finalizer_state exposes: the
// active and any in-flight proposed/pending policy, and the two
// irreversibility pointers the controller tracks independently (spec §4.1/
// §4.2).
type FinalizerState struct {
	ActivePolicy      policy.Policy
	ProposedPolicy    *policy.Policy
	ProposedAtBlock   uint32
	PolicyPending     bool
	DPoSIrreversible  uint32
	HSIrreversible    uint32
}

// SetProposedFinalizers proposes p as the next finalizer policy, to be
// attached to the next block started in the IF regime (spec §6
// set_proposed_finalizers). It only records the proposal; the building
// block's own ProposeFinalizerPolicy call is what actually attaches it
// (spec §3: at most one proposed policy per block).
func (c *Controller) SetProposedFinalizers(p policy.Policy) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.regime != stage.RegimeIF {
		return chain.NewConfigurationErrorf("set_proposed_finalizers: controller is not running the Instant-Finality regime")
	}
	if c.pending == nil || c.pending.building == nil {
		return chain.ErrNoPendingState
	}
	return c.pending.building.ProposeFinalizerPolicy(p)
}

// SetHSIrreversibleBlockNum records the block number the HotStuff
// finalization layer has independently determined is irreversible, feeding
// the `max(dpos_irreversible, hs_irreversible)` rule the commit path applies
// (spec §4.4's "advance new_lib").
func (c *Controller) SetHSIrreversibleBlockNum(n uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > c.hsIrreversibleNum {
		c.hsIrreversibleNum = n
	}
}

// GetFinalizerState returns the controller's current finalizer policy
// bookkeeping.
func (c *Controller) GetFinalizerState() FinalizerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := FinalizerState{
		ActivePolicy:     c.activePolicy,
		DPoSIrreversible: c.dposIrreversibleNum,
		HSIrreversible:   c.hsIrreversibleNum,
	}
	if c.policyTransition != nil {
		p := c.policyTransition.policy
		st.ProposedPolicy = &p
		st.ProposedAtBlock = c.policyTransition.proposedAtBlock
		st.PolicyPending = c.policyTransition.pending
	}
	return st
}

// HSMessageKind discriminates the HotStuff wire messages notify_hs_message
// forwards into the core, grounded on the teacher's
// consensus/hotstuff/pacemaker distinction between a QC-triggered and a
// TC-triggered view change.
type HSMessageKind int

const (
	HSMessageVote HSMessageKind = iota
	HSMessageQuorumCertificate
	HSMessageTimeoutCertificate
)

// HSMessage is one inbound HotStuff protocol message, received over
// whatever out-of-scope networking transport the caller owns (spec §1
// treats gossip/ordering as non-goals; this is only the ingestion point).
type HSMessage struct {
	Kind HSMessageKind
	QC   *chain.QuorumCertificate
	Vote *HSVote
}

// HSVote is a single finalizer's vote over a block, carrying the raw BLS
// signature share the proof verifier's aggregate-verify step consumes.
type HSVote struct {
	BlockID   chain.Identifier
	View      uint64
	SignerID  chain.Identifier
	Signature []byte
	IsStrong  bool
}

// NotifyHSMessage ingests a HotStuff protocol message received from
// connectionID, updating the pacemaker's view and, for a quorum
// certificate, recording it as the controller's current HotStuff-observed
// QC. The actual vote-aggregation and quorum-threshold check belong to the
// proof-of-finality verifier (spec §4.6); this is only the message
// dispatch point the consensus engine collaborator drives.
func (c *Controller) NotifyHSMessage(connectionID string, msg HSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pacemaker == nil {
		return chain.NewConfigurationErrorf("notify_hs_message: no pacemaker created")
	}

	switch msg.Kind {
	case HSMessageQuorumCertificate:
		if msg.QC == nil {
			return chain.NewConfigurationErrorf("notify_hs_message: quorum certificate message missing QC")
		}
		c.pacemaker.ProcessQC(msg.QC)
		c.signals.emitVoteBroadcast(connectionID, msg)
	case HSMessageVote, HSMessageTimeoutCertificate:
		c.signals.emitVoteBroadcast(connectionID, msg)
	default:
		return chain.NewConfigurationErrorf("notify_hs_message: unrecognized message kind %d", msg.Kind)
	}
	return nil
}

// Pacemaker tracks the current HotStuff view and the highest quorum
// certificate observed, the minimal liveness bookkeeping spec §6's
// create_pacemaker exposes. The view-advancement and timeout-escalation
// policy itself (network round-trip estimation, exponential backoff) is an
// out-of-scope external collaborator (spec §1); this only records what the
// core's own pipeline needs to decide whether a block's QC claim is stale.
type Pacemaker struct {
	mu         sync.Mutex
	view       uint64
	highestQC  *chain.QuorumCertificate
	startedAt  time.Time
}

// CreatePacemaker returns a new Pacemaker starting at startView.
func (c *Controller) CreatePacemaker(startView uint64) *Pacemaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pacemaker = &Pacemaker{view: startView, startedAt: time.Now()}
	return c.pacemaker
}

// CurView returns the pacemaker's current view.
func (p *Pacemaker) CurView() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// HighestQC returns the highest-view quorum certificate the pacemaker has
// observed, or nil if none yet.
func (p *Pacemaker) HighestQC() *chain.QuorumCertificate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.highestQC
}

// ProcessQC fast-forwards the pacemaker's view past qc, mirroring
// ActivePaceMaker.ProcessQC's "2/3 of replicas are already past this view"
// reasoning.
func (p *Pacemaker) ProcessQC(qc *chain.QuorumCertificate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.highestQC == nil || qc.View > p.highestQC.View {
		p.highestQC = qc
	}
	if qc.View+1 > p.view {
		p.view = qc.View + 1
	}
}
