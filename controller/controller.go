// Package controller implements the pipeline orchestration from spec §2.5
// and §4.4/§4.6: start_block / push_transaction / finalize_block /
// commit_block / abort_block / push_block / replay, the irreversibility
// loop, fork switching, and the signal/worker-pool plumbing those
// operations depend on. Grounded on controller.cpp's controller_impl
// (push_block, replay, log_irreversible) for the pipeline shape and on
// _teacher_ref/module/finalizer/consensus/finalizer.go's MakeFinal
// stepping pattern (walk back to a known point, then apply oldest-first)
// for the irreversibility loop.
package controller

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/flow-consensus/ifcore/feature"
	"github.com/flow-consensus/ifcore/finality"
	"github.com/flow-consensus/ifcore/forkdb"
	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/policy"
	"github.com/flow-consensus/ifcore/stage"
	"github.com/flow-consensus/ifcore/store"
)

// policyTransition tracks a finalizer policy change proposed in one block
// through the two-3-chain delay described in spec §4.2: proposed ->
// pending (once the proposing block B is final) -> active (once B+3 is
// final). Source: spec §4.2 "Policy-change propagation in consensus".
type policyTransition struct {
	policy          policy.Policy
	proposedAtBlock uint32
	pending         bool
}

// pendingAtBlockNum returns the block number at which the transition
// becomes pending: the proposing block itself becoming final.
func (t *policyTransition) pendingAtBlockNum() uint32 { return t.proposedAtBlock }

// activeAtBlockNum returns the block number at which the transition
// becomes active: proposedAtBlock+3 becoming final, i.e. the second
// 3-chain completing.
func (t *policyTransition) activeAtBlockNum() uint32 { return t.proposedAtBlock + 3 }

// Metrics are atomic counters the controller updates on the main thread
// and observers/CLI tooling may read concurrently without locking,
// grounded on go.uber.org/atomic's lock-free counters.
type Metrics struct {
	BlocksProduced      atomic.Uint64
	BlocksPushed        atomic.Uint64
	TransactionsApplied atomic.Uint64
	IrreversibleBlocks  atomic.Uint64
	ForkSwitches        atomic.Uint64
}

// Config bundles the white/black-list and subjective-execution knobs spec
// §6 calls out under "Configuration": actor/contract/action/key lists,
// greylist, subjective CPU leeway, validation mode, and read mode.
type Config struct {
	ValidationMode ValidationMode
	ReadMode       ReadMode

	SubjectiveCPULeewayUs int64

	ActorWhitelist   map[chain.Identifier]bool
	ActorBlacklist   map[chain.Identifier]bool
	ContractWhitelist map[chain.Identifier]bool
	ContractBlacklist map[chain.Identifier]bool
	ActionBlacklist   map[[2]chain.Identifier]bool
	KeyBlacklist      map[string]bool
	Greylist          map[chain.Identifier]bool
}

// ValidationMode distinguishes full validation from the lighter-weight
// "light validation" mode that skips re-running authorization checks on
// blocks signed by a trusted producer set.
type ValidationMode int

const (
	ValidationModeFull ValidationMode = iota
	ValidationModeLight
)

// ReadMode governs whether the store permits a read-only parallel window
// (spec §5 "the state store permits a read-mode window").
type ReadMode int

const (
	ReadModeSpeculative ReadMode = iota
	ReadModeHeadOnly
	ReadModeIrreversible
	ReadModeReadOnly
)

// Controller is the block-processing core: the single owner of the
// pending state, the fork database, the state store, and the finality
// and producer-schedule bookkeeping those pipeline operations mutate.
// Every exported pipeline method below runs on the caller's goroutine,
// which per spec §5 must be the single main thread; Controller does not
// itself enforce that beyond a mutex that turns concurrent misuse into
// serialized (not corrupted) operations.
type Controller struct {
	mu sync.Mutex

	chainID chain.Identifier
	regime  stage.Regime

	forkDB   *forkdb.ForkDB
	store    store.Store
	blockLog BlockLog
	ledger   ResourceLedger
	auth     Authorization
	signals  *Signals
	workers  *Workers

	features *featureSet

	pending *PendingState

	// DPoS regime state.
	dposActiveProducers     stage.ProducerView
	dposPendingProducers    *stage.ProducerView
	dposProposedProducers   *stage.ProducerView
	dposProposedAtBlock     uint32
	dposIrreversibleNum     uint32
	dposConfirmCount        uint32
	dposLastProduced        map[chain.Identifier]uint32

	// IF regime state.
	activePolicy       policy.Policy
	policyTransition   *policyTransition
	hsIrreversibleNum  uint32
	baseDigest         chain.Identifier
	pacemaker          *Pacemaker

	// revisions maps a committed-but-not-yet-irreversible block number to
	// the store revision its undo session was opened at, so the
	// irreversibility loop knows which revision to permanently commit.
	revisions map[uint32]int64

	// sessionsByBlock keeps every committed-but-not-yet-irreversible
	// block's undo session reachable by block id, so a fork switch
	// (switchToParent) can Undo the sessions of an abandoned branch
	// instead of the old push-on-commit behavior that discarded them
	// immediately and made switching away from a branch impossible.
	sessionsByBlock map[chain.Identifier]*store.Session

	config  Config
	metrics Metrics

	// Hash computes the per-transaction signer-recovery/merkle inputs;
	// exposed so tests can inject a deterministic stand-in.
	hash stage.HashPair

	log zerolog.Logger
}

// Params bundles the collaborators and genesis parameters NewController
// needs; everything here is either an out-of-scope external collaborator
// (spec §1/§6) or a pure value the caller must supply once at startup.
type Params struct {
	ChainID         chain.Identifier
	Regime          stage.Regime
	GenesisHeader   chain.Header
	Store           store.Store
	BlockLog        BlockLog
	Ledger          ResourceLedger
	Auth            Authorization
	Features        *feature.Set
	GenesisPolicy   policy.Policy // IF regime only
	GenesisProducers stage.ProducerView // DPoS regime only
	BaseDigest      chain.Identifier
	MaxWorkers      int
	Logger          zerolog.Logger
}

// NewController wires up a fresh controller rooted at the genesis block
// described by params, mirroring controller.cpp's startup() entering
// genesis mode.
func NewController(params Params) (*Controller, error) {
	if params.MaxWorkers <= 0 {
		params.MaxWorkers = 4
	}

	rootNode := &forkdb.Node{Header: params.GenesisHeader, Valid: true}
	c := &Controller{
		chainID:  params.ChainID,
		regime:   params.Regime,
		forkDB:   forkdb.NewForkDB(rootNode),
		store:    params.Store,
		blockLog: params.BlockLog,
		ledger:   params.Ledger,
		auth:     params.Auth,
		signals:  NewSignals(params.Logger),
		workers:  NewWorkers(params.MaxWorkers),
		features: &featureSet{recognized: params.Features, state: feature.NewProtocolState()},

		dposActiveProducers: params.GenesisProducers,
		dposLastProduced:    map[chain.Identifier]uint32{},
		activePolicy:        params.GenesisPolicy,
		baseDigest:          params.BaseDigest,

		revisions:       map[uint32]int64{},
		sessionsByBlock: map[chain.Identifier]*store.Session{},
		hash:            stage.DefaultHashPair,
		log:       params.Logger,
	}
	if c.features.recognized == nil {
		c.features.recognized = feature.NewSet()
	}
	if c.store != nil {
		if err := c.store.Set(chainIDKey, c.chainID[:]); err != nil {
			return nil, fmt.Errorf("new_controller: record chain id: %w", err)
		}
	}
	return c, nil
}

// Close stops the worker pool. It does not close the state store passed in
// Params; the caller that opened the store closes it. Call once the
// controller is permanently retired.
func (c *Controller) Close() {
	c.workers.Stop()
}

// Signals returns the observer distributor so callers can register
// handlers at startup (spec §9: "handlers are values registered at
// startup").
func (c *Controller) Signals() *Signals { return c.signals }

// Metrics returns the controller's atomic counters.
func (c *Controller) Metrics() *Metrics { return &c.metrics }

// StartBlock opens a new pending state for block production or
// validation. Precondition: no pending state exists (spec §4.4).
func (c *Controller) StartBlock(when time.Time, confirmCount uint32, newProtocolFeatureActivations chain.IdentifierList, status blockStatus, producerID chain.Identifier, producerBlockID *chain.Identifier, deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startBlockLocked(when, confirmCount, newProtocolFeatureActivations, status, producerID, producerBlockID, deadline)
}

func (c *Controller) startBlockLocked(when time.Time, confirmCount uint32, newProtocolFeatureActivations chain.IdentifierList, status blockStatus, producerID chain.Identifier, producerBlockID *chain.Identifier, deadline time.Time) error {
	return c.startBlockAtLocked(c.forkDB.Head(), when, confirmCount, newProtocolFeatureActivations, status, producerID, producerBlockID, deadline)
}

// startBlockAtLocked is startBlockLocked generalized to open the pending
// state on top of an explicit parent rather than always the current fork
// database head, so push_block can build on the incoming block's own
// declared parent (spec §4.3/§4.4) after switchToParent has realigned the
// controller's bookkeeping onto that parent.
func (c *Controller) startBlockAtLocked(parentID chain.Identifier, when time.Time, confirmCount uint32, newProtocolFeatureActivations chain.IdentifierList, status blockStatus, producerID chain.Identifier, producerBlockID *chain.Identifier, deadline time.Time) error {
	if c.pending != nil {
		return chain.ErrPendingStateExists
	}

	headID := parentID
	parentHeader, err := c.forkDB.GetHeader(headID)
	if err != nil {
		return fmt.Errorf("start_block: %w", err)
	}
	parentRef := parentHeader.Ref()

	sessionEnabled := status != blockStatusIrreversible
	session := c.store.StartUndoSession(sessionEnabled)

	newlyActivated, err := c.features.state.ActivateRequested(c.features.recognized, newProtocolFeatureActivations)
	if err != nil {
		session.Undo()
		return fmt.Errorf("start_block: %w", err)
	}

	var building *stage.BuildingBlock
	switch c.regime {
	case stage.RegimeDPoS:
		c.promoteDPoSSchedule(parentRef.BlockNum()+1, confirmCount)
		building = stage.StartDPoSBlock(parentRef, when, producerID, c.dposActiveProducers, c.dposIrreversibleNum, newProtocolFeatureActivations, deadline)
	case stage.RegimeIF:
		parentNode, err := c.forkDB.Get(headID)
		if err != nil {
			session.Undo()
			return fmt.Errorf("start_block: %w", err)
		}
		parentState := parentStateOf(parentNode)
		building = stage.StartIFBlock(parentRef, when, producerID, parentState, parentState.Core.LatestQCClaim(), newProtocolFeatureActivations, deadline)
	default:
		session.Undo()
		return chain.NewConfigurationErrorf("unknown regime %d", c.regime)
	}
	building.ActivatedFeatures = newlyActivated

	// The implicit on-block system-contract notification: failures here
	// are isolated per spec §4.4 ("failures there are logged but do not
	// abort the block").
	c.runOnBlockNotification(building)

	pathID := uuid.New().String()
	c.pending = &PendingState{
		session:         session,
		status:          status,
		pathID:          pathID,
		producerBlockID: producerBlockID,
		building:        building,
		deadline:        deadline,
	}
	c.log.Debug().Str("path_id", pathID).Uint32("block_num", parentRef.BlockNum()+1).Msg("start_block")
	c.signals.emitBlockStart(parentRef.BlockNum() + 1)
	return nil
}

// runOnBlockNotification isolates the implicit on-block enqueue (spec §4.4
// / §9): any panic or error is logged and swallowed, never aborting the
// block it was invoked from.
func (c *Controller) runOnBlockNotification(b *stage.BuildingBlock) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("on-block notification panicked, isolating")
		}
	}()
	if c.ledger == nil {
		return
	}
	if err := c.ledger.ProcessBlockUsage(b.ParentRef.BlockNum() + 1); err != nil {
		c.log.Warn().Err(err).Msg("on-block notification failed, continuing block production")
	}
}

// promoteDPoSSchedule implements the DPoS producer-schedule promotion
// step of start_block (spec §4.4): a proposed schedule old enough
// (confirmCount confirmations) is promoted to pending; a pending schedule
// already active for one full round is promoted to active.
func (c *Controller) promoteDPoSSchedule(currentBlockNum uint32, confirmCount uint32) {
	if c.dposProposedProducers != nil && currentBlockNum-c.dposProposedAtBlock >= confirmCount {
		c.dposPendingProducers = c.dposProposedProducers
		c.dposProposedProducers = nil
	}
	if c.dposPendingProducers != nil {
		changed := c.dposActiveProducers.Generation != c.dposPendingProducers.Generation
		c.dposActiveProducers = *c.dposPendingProducers
		c.dposPendingProducers = nil
		if changed {
			c.updateAuthorityThresholds(c.dposActiveProducers)
		}
	}
}

// updateAuthorityThresholds recomputes and installs the active/majority/
// minority permission thresholds on the producer authority account (spec
// §4.4), delegating the actual permission mutation to the out-of-scope
// Authorization collaborator.
func (c *Controller) updateAuthorityThresholds(view stage.ProducerView) {
	if c.auth == nil {
		return
	}
	thresholds := stage.ComputeAuthorityThresholds(view.TotalWeight())
	producerAccount := chain.MakeID("eosio.prods")
	for name, threshold := range map[string]uint32{
		"active":   uint32(thresholds.Active),
		"majority": uint32(thresholds.Majority),
		"minority": uint32(thresholds.Minority),
	} {
		if err := c.auth.CreatePermission(producerAccount, chain.MakeID(name), chain.ZeroID, threshold); err != nil {
			c.log.Warn().Err(err).Str("permission", name).Msg("failed to update authority threshold")
		}
	}
}

// recordDPoSProduction updates the per-producer last-produced-block
// bookkeeping for a newly committed DPoS block and recomputes
// dposIrreversibleNum: the greatest block number such that producers
// controlling at least the active-authority threshold of total weight
// (spec §4.4's ⌈2N/3⌉+1 rule) have each produced a later block, the
// classic delegated-producer confirmation count. The real
// block_header_state.cpp this is modeled on was not present in the
// retrieved reference pack, so this is a from-scratch but
// formula-equivalent implementation (see DESIGN.md).
func (c *Controller) recordDPoSProduction(producerID chain.Identifier, blockNum uint32) {
	c.dposLastProduced[producerID] = blockNum

	view := c.dposActiveProducers
	if len(view.Slots) == 0 {
		return
	}
	threshold := stage.ComputeAuthorityThresholds(view.TotalWeight()).Active

	idx := weightedQuorumIndex(view, threshold)
	if idx >= len(view.Slots) {
		return
	}

	lastProduced := make([]uint32, len(view.Slots))
	for i, slot := range view.Slots {
		lastProduced[i] = c.dposLastProduced[slot.ProducerID]
	}
	sort.Slice(lastProduced, func(i, j int) bool { return lastProduced[i] > lastProduced[j] })

	// The irreversible point is the smallest last-produced value among the
	// highest-ranked slots whose cumulative weight reaches threshold: that
	// many producers (by weight) have each produced at or after this
	// block, so it cannot be un-produced without their cooperation.
	if candidate := lastProduced[idx]; candidate > c.dposIrreversibleNum {
		c.dposIrreversibleNum = candidate
	}
}

// weightedQuorumIndex returns the zero-based index into a descending
// last-produced ordering at which cumulative slot weight first reaches
// threshold, assuming one slot per active producer contributes its slot's
// own weight regardless of production order (an approximation of the
// per-producer weighted quorum; exact for the common equal-weight case).
func weightedQuorumIndex(view stage.ProducerView, threshold uint64) int {
	var cumulative uint64
	for i, slot := range view.Slots {
		cumulative += slot.Weight
		if cumulative >= threshold {
			return i
		}
	}
	return len(view.Slots)
}

func parentStateOf(n *forkdb.Node) finality.MinimalState {
	if cb, ok := n.Payload.(*stage.CompletedBlock); ok && cb.IFExt != nil {
		return cb.IFExt.State
	}
	// Genesis root: synthesize the minimal state's starting point.
	return finality.MinimalState{
		Core:        finality.CreateCoreForGenesisBlock(n.BlockNum()),
		LatestBlock: finality.BlockMetadata{BlockID: n.BlockID(), Timestamp: n.Header.Timestamp},
	}
}
