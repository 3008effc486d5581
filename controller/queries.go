package controller

import (
	"time"

	"github.com/flow-consensus/ifcore/finality"
	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/stage"
)

// HeadBlockNum returns the fork database's current (validated) head block
// number.
func (c *Controller) HeadBlockNum() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.forkDB.Get(c.forkDB.Head())
	if err != nil {
		return 0
	}
	return n.BlockNum()
}

// HeadBlockID returns the fork database's current head block id.
func (c *Controller) HeadBlockID() chain.Identifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forkDB.Head()
}

// HeadBlockTime returns the head block's timestamp.
func (c *Controller) HeadBlockTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, err := c.forkDB.GetHeader(c.forkDB.Head())
	if err != nil {
		return time.Time{}
	}
	return h.Timestamp
}

// HeadBlockProducer returns the head block's producer id.
func (c *Controller) HeadBlockProducer() chain.Identifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, err := c.forkDB.GetHeader(c.forkDB.Head())
	if err != nil {
		return chain.ZeroID
	}
	return h.ProducerID
}

// HeadBlockHeader returns the head block's full header.
func (c *Controller) HeadBlockHeader() (chain.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forkDB.GetHeader(c.forkDB.Head())
}

// HeadBlockState returns the IF-regime minimal state carried by the head
// block, or the zero value if the controller is running the DPoS regime.
func (c *Controller) HeadBlockState() finality.MinimalState {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.forkDB.Get(c.forkDB.Head())
	if err != nil {
		return finality.MinimalState{}
	}
	if cb, ok := n.Payload.(*stage.CompletedBlock); ok && cb.IFExt != nil {
		return cb.IFExt.State
	}
	return finality.MinimalState{}
}

// ForkDBHeadBlockNum returns the best candidate tip's block number,
// including unvalidated branches (spec §6 fork_db_head_block_num).
func (c *Controller) ForkDBHeadBlockNum() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.forkDB.Get(c.forkDB.PendingHead())
	if err != nil {
		return 0
	}
	return n.BlockNum()
}

// ForkDBHeadBlockID returns the best candidate tip's block id, including
// unvalidated branches.
func (c *Controller) ForkDBHeadBlockID() chain.Identifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forkDB.PendingHead()
}

// LastIrreversibleBlockNum returns the fork database root's block number.
func (c *Controller) LastIrreversibleBlockNum() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.forkDB.Get(c.forkDB.Root())
	if err != nil {
		return 0
	}
	return n.BlockNum()
}

// LastIrreversibleBlockID returns the fork database root's block id.
func (c *Controller) LastIrreversibleBlockID() chain.Identifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forkDB.Root()
}

// LastIrreversibleBlockTime returns the fork database root's timestamp.
func (c *Controller) LastIrreversibleBlockTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, err := c.forkDB.GetHeader(c.forkDB.Root())
	if err != nil {
		return time.Time{}
	}
	return h.Timestamp
}

// PendingBlockState describes the in-flight pending state's stage and the
// header it would produce if finalized now, for callers polling block
// production progress.
type PendingBlockState struct {
	Open       bool
	Stage      string
	BlockNum   uint32
	ProducerID chain.Identifier
	Report     BlockReport
}

// PendingBlockNum returns the block number of the currently pending state,
// or 0 if none is open.
func (c *Controller) PendingBlockNum() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return 0
	}
	switch {
	case c.pending.building != nil:
		return c.pending.building.ParentRef.BlockNum() + 1
	case c.pending.assembled != nil:
		return c.pending.assembled.Header.Height
	case c.pending.completed != nil:
		return c.pending.completed.Header.Height
	}
	return 0
}

// PendingBlockState returns a snapshot of the currently pending state.
func (c *Controller) PendingBlockState() PendingBlockState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return PendingBlockState{}
	}
	st := PendingBlockState{Open: true, Stage: c.pending.Stage(), Report: c.pending.report}
	switch {
	case c.pending.building != nil:
		st.BlockNum = c.pending.building.ParentRef.BlockNum() + 1
		st.ProducerID = c.pending.building.ProducerID
	case c.pending.assembled != nil:
		st.BlockNum = c.pending.assembled.Header.Height
		st.ProducerID = c.pending.assembled.Header.ProducerID
	case c.pending.completed != nil:
		st.BlockNum = c.pending.completed.Header.Height
		st.ProducerID = c.pending.completed.Header.ProducerID
	}
	return st
}

// ActiveProducers returns the regime's current active producer view: the
// DPoS active schedule, or the active finalizer policy restated as a
// producer view for the IF regime.
func (c *Controller) ActiveProducers() stage.ProducerView {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.regime == stage.RegimeIF {
		return stage.PendingProducersForIF(c.activePolicy)
	}
	return c.dposActiveProducers
}

// PendingProducers returns the regime's pending producer view: the DPoS
// pending schedule if one is promoting, or (spec §9 open question #1) the
// IF regime's active finalizer policy restated as a producer view, since
// IF carries no separate pending-producer mempool.
func (c *Controller) PendingProducers() stage.ProducerView {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.regime == stage.RegimeIF {
		return stage.PendingProducersForIF(c.activePolicy)
	}
	if c.dposPendingProducers != nil {
		return *c.dposPendingProducers
	}
	return c.dposActiveProducers
}

// ProposedProducers returns the regime's proposed producer view: the DPoS
// proposed schedule not yet promoted, or the IF-regime's in-flight
// proposed finalizer policy restated as a producer view, if any.
func (c *Controller) ProposedProducers() (stage.ProducerView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.regime == stage.RegimeIF {
		if c.policyTransition == nil {
			return stage.ProducerView{}, false
		}
		return stage.PendingProducersForIF(c.policyTransition.policy), true
	}
	if c.dposProposedProducers == nil {
		return stage.ProducerView{}, false
	}
	return *c.dposProposedProducers, true
}

// IsProtocolFeatureActivated reports whether digest is active as of the
// head block.
func (c *Controller) IsProtocolFeatureActivated(digest chain.Identifier) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.features.state.IsActivated(digest)
}

// IsBuiltinActivated reports whether digest names a recognized built-in
// feature that is currently active.
func (c *Controller) IsBuiltinActivated(digest chain.Identifier) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.features.recognized.Lookup(digest); !ok {
		return false
	}
	return c.features.state.IsActivated(digest)
}

// GetPreactivatedProtocolFeatures returns the digests preactivated but not
// yet consumed by a start_block call.
func (c *Controller) GetPreactivatedProtocolFeatures() chain.IdentifierList {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.features.state.PreactivatedDigests()
}
