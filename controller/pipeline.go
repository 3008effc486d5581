package controller

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/flow-consensus/ifcore/finality"
	"github.com/flow-consensus/ifcore/forkdb"
	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/stage"
)

// TransactionInput is what the controller needs to push a transaction:
// its identity/expiration, the accounts whose authorization must be
// checked, and an Execute callback representing the out-of-scope VM and
// resource-ledger collaborators actually running it (spec §1). Execute
// returns the digests the stage machine records on success.
type TransactionInput struct {
	Meta          stage.TransactionMeta
	Accounts      []chain.Identifier
	RequiredKeys  [][]byte
	Permissions   []chain.Identifier
	Delay         uint32
	SkipAuthCheck bool

	Execute func() (actionDigests []chain.Identifier, receiptDigest chain.Identifier, netUsageBytes, cpuUsageUs uint64, err error)
}

// TransactionTrace is the structured result returned to the caller for
// every pushed transaction, matching spec §7's "user-visible failure"
// contract.
type TransactionTrace struct {
	TransactionID chain.Identifier
	Elapsed       time.Duration
	NetUsage      uint64
	CPUUsageUs    uint64
	ErrorCode     uint64
	Except        error
}

// PushTransaction executes and records trx against the current building
// block, honoring the per-block deadline and per-transaction maxTime.
//
// Recoverable failures (deadline exceeded, objective/subjective
// transaction errors) are attached to the returned trace and leave the
// pending block intact for further transactions (spec §7). Fatal errors
// are returned directly and the caller must treat the pending block as
// aborted (spec §4.4 "allocation failures ... propagate up and cause
// block abort").
func (c *Controller) PushTransaction(trx TransactionInput, deadline time.Time, maxTime time.Duration) (*TransactionTrace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pushTransactionLocked(trx, deadline, maxTime)
}

func (c *Controller) pushTransactionLocked(trx TransactionInput, deadline time.Time, maxTime time.Duration) (*TransactionTrace, error) {
	if c.pending == nil || c.pending.building == nil {
		return nil, chain.ErrNoPendingState
	}
	building := c.pending.building
	start := time.Now()
	trace := &TransactionTrace{TransactionID: trx.Meta.TransactionID}

	if start.After(deadline) || start.After(c.pending.deadline) {
		trace.Except = chain.NewTransactionSubjectiveErrorf(trx.Meta.TransactionID, "block deadline exceeded")
		return trace, nil
	}

	if !trx.SkipAuthCheck && c.auth != nil {
		if err := c.auth.CheckAuthorization(nil, trx.RequiredKeys, trx.Permissions, trx.Delay, false); err != nil {
			trace.Except = chain.NewTransactionObjectiveErrorf(trx.Meta.TransactionID, "authorization check failed: %w", err)
			return trace, nil
		}
	}

	actionDigests, receiptDigest, netUsage, cpuUsage, execErr := trx.Execute()
	if execErr != nil {
		if chain.IsFatalError(execErr) {
			return nil, execErr
		}
		trace.Except = execErr
		return trace, nil
	}
	if elapsed := time.Since(start); elapsed > maxTime {
		trace.Except = chain.NewTransactionSubjectiveErrorf(trx.Meta.TransactionID, "exceeded max transaction time %s (took %s)", maxTime, elapsed)
		return trace, nil
	}

	rp := building.PushTransaction(trx.Meta, actionDigests, receiptDigest)

	if c.ledger != nil {
		if err := c.ledger.AddTransactionUsage(trx.Accounts, cpuUsage, netUsage, building.ParentRef.BlockNum()+1); err != nil {
			rp.Rollback(building)
			trace.Except = chain.NewTransactionObjectiveErrorf(trx.Meta.TransactionID, "resource usage accounting rejected transaction: %w", err)
			return trace, nil
		}
	}

	trace.Elapsed = time.Since(start)
	trace.NetUsage = netUsage
	trace.CPUUsageUs = cpuUsage
	c.pending.report.TotalTransactions++
	c.pending.report.TotalActionDigests += len(actionDigests)
	c.pending.report.TotalNetUsage += netUsage
	c.pending.report.TotalCPUUsageUs += cpuUsage
	c.pending.report.TotalElapsedNs += int64(trace.Elapsed)
	c.metrics.TransactionsApplied.Inc()
	return trace, nil
}

// FinalizeBlock computes the merkle roots and builds the immutable
// header, dispatching on regime, and advances the pending state from
// building to assembled (spec §4.4).
func (c *Controller) FinalizeBlock() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finalizeBlockLocked()
}

func (c *Controller) finalizeBlockLocked() error {
	if c.pending == nil || c.pending.building == nil {
		return chain.ErrNoPendingState
	}
	building := c.pending.building

	var assembled *stage.AssembledBlock
	var err error
	switch building.Regime {
	case stage.RegimeDPoS:
		assembled, err = stage.FinalizeDPoSBlock(building, c.hash)
	case stage.RegimeIF:
		additional, aerr := c.collectAdditionalValidityMroots(building.IFExt)
		if aerr != nil {
			return fmt.Errorf("finalize_block: %w", aerr)
		}
		assembled, err = stage.FinalizeIFBlock(building, c.hash, additional, c.activePolicy, c.baseDigest)
		if err == nil {
			c.pending.proposedPolicy = building.IFExt.ProposedPolicy
		}
	default:
		return chain.NewConfigurationErrorf("unknown regime %d", building.Regime)
	}
	if err != nil {
		return fmt.Errorf("finalize_block: %w", err)
	}

	c.pending.assembled = assembled
	c.pending.building = nil
	return nil
}

// collectAdditionalValidityMroots gathers the ancestor action-merkle
// roots finality.MinimalState.Next needs to cover the span between the
// parent state's latest QC claim and the block's most-recent-ancestor-
// with-QC claim, walking the fork database from the current head. The
// action_mroot of each ancestor stands in for its finality leaf digest,
// consistent with how FinalizeIFBlock computes action_mroot via the same
// symmetric merkle used for finality proofs (spec §4.4/§4.6).
func (c *Controller) collectAdditionalValidityMroots(ext *stage.IFBuildingExt) ([]chain.Identifier, error) {
	from := ext.ParentState.Core.LatestQCClaim().BlockNum + 1
	to := ext.MostRecentAncestorWithQC.BlockNum
	if to < from {
		return nil, nil
	}

	branch, err := c.forkDB.FetchBranch(c.forkDB.Head(), from)
	if err != nil {
		return nil, err
	}

	byNum := map[uint32]chain.Identifier{}
	for _, id := range branch {
		n, err := c.forkDB.Get(id)
		if err != nil {
			return nil, err
		}
		if n.BlockNum() >= from && n.BlockNum() <= to {
			byNum[n.BlockNum()] = n.Header.ActionMerkleRoot
		}
	}

	out := make([]chain.Identifier, 0, to-from+1)
	for num := from; num <= to; num++ {
		root, ok := byNum[num]
		if !ok {
			return nil, chain.NewForkDatabaseErrorf("missing ancestor at block %d needed for validity mroot span [%d,%d]", num, from, to)
		}
		out = append(out, root)
	}
	return out, nil
}

// CompleteBlock signs the assembled block via sign, advancing the pending
// state from assembled to completed.
func (c *Controller) CompleteBlock(sign stage.Signer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completeBlockLocked(sign)
}

func (c *Controller) completeBlockLocked(sign stage.Signer) error {
	if c.pending == nil || c.pending.assembled == nil {
		return chain.ErrNoPendingState
	}
	completed, err := stage.Complete(c.pending.assembled, sign)
	if err != nil {
		return fmt.Errorf("complete_block: %w", err)
	}
	c.pending.completed = completed
	c.pending.assembled = nil
	c.log.Debug().Str("path_id", c.pending.pathID).Msg("complete_block")
	return nil
}

// AbortBlock destroys the pending state, reversing its undo session, and
// returns the transaction metas that had been applied so the caller may
// retry them in a subsequent block (spec §4.4).
func (c *Controller) AbortBlock() []stage.TransactionMeta {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.abortBlockLocked()
}

func (c *Controller) abortBlockLocked() []stage.TransactionMeta {
	if c.pending == nil {
		return nil
	}
	var metas []stage.TransactionMeta
	switch {
	case c.pending.building != nil:
		metas = c.pending.building.PendingTransactions
	case c.pending.assembled != nil:
		metas = c.pending.assembled.PendingTransactions()
	case c.pending.completed != nil:
		metas = c.pending.completed.PendingTransactions
	}
	if c.pending.session != nil {
		c.pending.session.Undo()
	}
	c.log.Debug().Str("path_id", c.pending.pathID).Int("returned_transactions", len(metas)).Msg("abort_block")
	c.pending = nil
	return metas
}

// CommitBlock inserts the completed pending block into the fork database,
// advances the head, and runs the irreversibility loop. Precondition:
// stage is completed (spec §4.4).
func (c *Controller) CommitBlock() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commitBlockLocked()
}

func (c *Controller) commitBlockLocked() error {
	if c.pending == nil || c.pending.completed == nil {
		return chain.ErrNoPendingState
	}
	completed := c.pending.completed
	session := c.pending.session
	pathID := c.pending.pathID

	node := &forkdb.Node{Header: completed.Header, Payload: completed}
	if err := c.forkDB.Add(node); err != nil {
		c.abortBlockLocked()
		return fmt.Errorf("commit_block: %w", err)
	}
	if err := c.forkDB.MarkValid(node.BlockID()); err != nil {
		return fmt.Errorf("commit_block: %w", err)
	}

	c.revisions[completed.Header.Height] = session.Revision()
	// The session stays open on the store's undo stack, keyed by this
	// block's id, instead of being pushed permanent immediately: until the
	// block is irreversible (commitIrreversible calls store.Commit) a fork
	// switch (switchToParent) must still be able to Undo it.
	c.sessionsByBlock[completed.ID] = session

	c.applyPolicyTransition(completed)
	if completed.Regime == stage.RegimeDPoS {
		c.recordDPoSProduction(completed.Header.ProducerID, completed.Header.Height)
	}

	c.signals.emitHeaderAccepted(completed.Header)
	c.signals.emitBlockAccepted(completed)
	c.forkDB.RecomputeHead()
	c.metrics.BlocksProduced.Inc()

	c.pending = nil
	c.log.Debug().Str("path_id", pathID).Uint32("block_num", completed.Header.Height).Msg("commit_block")

	if completed.Regime == stage.RegimeIF {
		c.hsIrreversibleNum = completed.IFExt.State.Core.LastFinalBlockNum()
	}

	return c.runIrreversibilityLoop()
}

// applyPolicyTransition advances c.policyTransition through proposed ->
// pending -> active as LIB crosses the relevant block numbers (spec
// §4.2). Must be called with the lock held, after the block that may have
// proposed a new policy has been durably recorded.
func (c *Controller) applyPolicyTransition(completed *stage.CompletedBlock) {
	if completed.Regime != stage.RegimeIF || completed.Header.NewFinalizerPolicyDigest.IsZero() {
		return
	}
	if c.pending == nil || c.pending.proposedPolicy == nil {
		return
	}
	// At most one proposed policy per block; overlapping proposals before
	// the prior one resolves are a configuration error the VM
	// collaborator must prevent, so a second proposal while one is
	// already in flight is simply ignored here.
	if c.policyTransition == nil {
		c.policyTransition = &policyTransition{
			policy:          *c.pending.proposedPolicy,
			proposedAtBlock: completed.Header.Height,
		}
	}
}

// advancePolicyTransitionToLIB is invoked from the irreversibility loop
// each time LIB advances to lib, promoting the in-flight transition
// through pending/active as the corresponding blocks become final.
func (c *Controller) advancePolicyTransitionToLIB(lib uint32) {
	t := c.policyTransition
	if t == nil {
		return
	}
	if !t.pending && lib >= t.pendingAtBlockNum() {
		t.pending = true
	}
	if t.pending && lib >= t.activeAtBlockNum() {
		c.activePolicy = t.policy
		c.policyTransition = nil
	}
}

// runIrreversibilityLoop walks the head branch and, for every block whose
// number is at most max(dposIrreversible, hsIrreversible), permanently
// commits its store session, appends it to the block log, and advances
// the fork-database root — grounded on controller.cpp's log_irreversible
// and the teacher's MakeFinal walk-back-then-apply-forward pattern.
func (c *Controller) runIrreversibilityLoop() error {
	target := c.dposIrreversibleNum
	if c.hsIrreversibleNum > target {
		target = c.hsIrreversibleNum
	}

	root, err := c.forkDB.Get(c.forkDB.Root())
	if err != nil {
		return fmt.Errorf("irreversibility loop: %w", err)
	}
	if target <= root.BlockNum() {
		return nil
	}

	branch, err := c.forkDB.FetchBranch(c.forkDB.Head(), root.BlockNum()+1)
	if err != nil {
		return fmt.Errorf("irreversibility loop: %w", err)
	}

	var toApply []chain.Identifier
	for _, id := range branch {
		n, err := c.forkDB.Get(id)
		if err != nil {
			return fmt.Errorf("irreversibility loop: %w", err)
		}
		if n.BlockNum() <= target {
			toApply = append(toApply, id)
		}
	}
	for i, j := 0, len(toApply)-1; i < j; i, j = i+1, j-1 {
		toApply[i], toApply[j] = toApply[j], toApply[i]
	}

	var errs *multierror.Error
	for _, id := range toApply {
		if err := c.commitIrreversible(id); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// commitIrreversible permanently applies the single block id: commits its
// store revision, appends it to the block log, advances the fork-database
// root past it, and emits the irreversible-block signal.
func (c *Controller) commitIrreversible(id chain.Identifier) error {
	n, err := c.forkDB.Get(id)
	if err != nil {
		return err
	}
	completed, _ := n.Payload.(*stage.CompletedBlock)

	if rev, ok := c.revisions[n.BlockNum()]; ok {
		c.store.Commit(rev)
		delete(c.revisions, n.BlockNum())
	}
	delete(c.sessionsByBlock, id)

	if c.blockLog != nil && completed != nil {
		packedCh := c.workers.SerializeAsync(completed, marshalCompletedBlock)
		packed := <-packedCh
		if packed.err != nil {
			return fmt.Errorf("irreversibility loop: serialize block %d: %w", n.BlockNum(), packed.err)
		}
		if err := c.blockLog.Append(completed, packed.packed); err != nil {
			return fmt.Errorf("irreversibility loop: append block %d to log: %w", n.BlockNum(), err)
		}
	}

	if err := c.forkDB.AdvanceRoot(id); err != nil {
		return fmt.Errorf("irreversibility loop: advance root to %d: %w", n.BlockNum(), err)
	}

	c.advancePolicyTransitionToLIB(n.BlockNum())
	c.metrics.IrreversibleBlocks.Inc()
	if completed != nil {
		c.signals.emitIrreversibleBlock(completed)
	}
	return nil
}

// marshalCompletedBlock is the default block-log serializer; a real
// deployment would substitute a collaborator-provided wire codec (spec §1
// treats the on-disk block log format as out of scope), but CBOR is a
// reasonable concrete default for this core's own append path, matching
// model/chain.MakeID's choice of encoder.
func marshalCompletedBlock(b *stage.CompletedBlock) ([]byte, error) {
	return cborMarshal(b)
}

// PushedTransaction is a transaction already executed by the caller (via
// the out-of-scope VM) before being included in an externally received
// block, carrying exactly the data push_transaction needs to record it.
type PushedTransaction struct {
	Meta          stage.TransactionMeta
	ActionDigests []chain.Identifier
	ReceiptDigest chain.Identifier
	NetUsage      uint64
	CPUUsageUs    uint64
	Accounts      []chain.Identifier
}

// switchToParent realigns the fork database and store onto parentID when
// it differs from the current head, the Fork Database's "switch between
// branches atomically" contract (spec §1c/§2 item 3, §4.3). It uses
// FetchBranchFrom to split the two branches at their common ancestor:
// popBack (newest-first, matching Undo's required LIFO order) abandons
// the current branch's not-yet-irreversible blocks by undoing their
// store sessions, and applyForward (oldest-first) re-establishes the
// bookkeeping for any of parentID's ancestors the fork database already
// holds but that aren't currently live, by re-deriving controller state
// from their stored CompletedBlock payloads the same way Replay
// reconstructs it from the block log. The caller (PushBlock) then builds
// and commits the new block on top of parentID, and that commit's own
// RecomputeHead call performs the final head-selection step.
func (c *Controller) switchToParent(parentID chain.Identifier) error {
	currentHead := c.forkDB.Head()
	if parentID == currentHead {
		return nil
	}

	applyForward, popBack, err := c.forkDB.FetchBranchFrom(currentHead, parentID)
	if err != nil {
		return fmt.Errorf("fork switch: %w", err)
	}

	for _, id := range popBack {
		n, err := c.forkDB.Get(id)
		if err != nil {
			return fmt.Errorf("fork switch: %w", err)
		}
		if session, ok := c.sessionsByBlock[id]; ok {
			session.Undo()
			delete(c.sessionsByBlock, id)
		}
		delete(c.revisions, n.BlockNum())
	}

	for _, id := range applyForward {
		n, err := c.forkDB.Get(id)
		if err != nil {
			return fmt.Errorf("fork switch: %w", err)
		}
		completed, ok := n.Payload.(*stage.CompletedBlock)
		if !ok {
			return chain.NewForkDatabaseErrorf("fork switch: block %s has no completed payload to replay forward", id)
		}

		session := c.store.StartUndoSession(true)
		c.sessionsByBlock[id] = session
		c.revisions[n.BlockNum()] = session.Revision()

		// Note: a block that proposed a new finalizer policy while on an
		// abandoned branch cannot have that proposal reconstructed here;
		// CompletedBlock retains the policy digest but not the proposed
		// policy body (see DESIGN.md open question on fork switching).
		if completed.Regime == stage.RegimeDPoS {
			c.recordDPoSProduction(completed.Header.ProducerID, completed.Header.Height)
			if completed.DPoSExt != nil {
				c.dposActiveProducers = completed.DPoSExt.ActiveProducers
			}
		}
		if completed.Regime == stage.RegimeIF {
			c.hsIrreversibleNum = completed.IFExt.State.Core.LastFinalBlockNum()
		}
	}

	c.metrics.ForkSwitches.Inc()
	return nil
}

// PushBlock routes an externally received, already-signed block through
// the same start_block / push_transaction / finalize_block / commit_block
// path used for locally produced blocks (spec §2: "push routes externally
// received blocks through the same apply path"). trxs must already carry
// the VM's results; PushBlock itself only validates that replaying them
// reproduces header's claimed merkle roots before committing.
//
// Atomicity (spec §8 "fork switching atomicity"): nothing observable
// changes until the final commit step. If any stage fails, the open undo
// session is reversed and no fork-database or head mutation has occurred,
// so the controller's head and root are exactly as they were before the
// call.
func (c *Controller) PushBlock(header chain.Header, trxs []PushedTransaction, signature []byte, mostRecentAncestorWithQC chain.QcClaim) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		return chain.NewConfigurationErrorf("push_block: a pending state is already open")
	}
	if _, err := c.forkDB.GetHeader(header.ParentID); err != nil {
		return chain.ErrUnlinkableBlock
	}

	if err := c.switchToParent(header.ParentID); err != nil {
		return fmt.Errorf("push_block: %w", err)
	}

	replayDeadline := time.Now().Add(time.Hour)
	if err := c.startBlockAtLocked(header.ParentID, header.Timestamp, 0, header.ProtocolFeatureActivations, blockStatusComplete, header.ProducerID, nil, replayDeadline); err != nil {
		return fmt.Errorf("push_block: %w", err)
	}
	if c.pending.building.Regime == stage.RegimeIF {
		c.pending.building.IFExt.MostRecentAncestorWithQC = mostRecentAncestorWithQC
	}

	for _, trx := range trxs {
		result := trx
		input := TransactionInput{
			Meta:          result.Meta,
			Accounts:      result.Accounts,
			SkipAuthCheck: true,
			Execute: func() ([]chain.Identifier, chain.Identifier, uint64, uint64, error) {
				return result.ActionDigests, result.ReceiptDigest, result.NetUsage, result.CPUUsageUs, nil
			},
		}
		trace, err := c.pushTransactionLocked(input, replayDeadline, time.Hour)
		if err != nil {
			c.abortBlockLocked()
			return fmt.Errorf("push_block: %w", err)
		}
		if trace.Except != nil {
			c.abortBlockLocked()
			return chain.NewInvalidBlockErrorf(header.ID(), header.Height, "transaction %s failed during push_block replay: %s", result.Meta.TransactionID, trace.Except)
		}
	}

	if err := c.finalizeBlockLocked(); err != nil {
		c.abortBlockLocked()
		return fmt.Errorf("push_block: %w", err)
	}

	if err := c.validateAssembledAgainst(header); err != nil {
		c.abortBlockLocked()
		return err
	}

	if err := c.completeBlockLocked(func(chain.Header) ([]byte, error) { return signature, nil }); err != nil {
		c.abortBlockLocked()
		return fmt.Errorf("push_block: %w", err)
	}

	c.metrics.BlocksPushed.Inc()
	return c.commitBlockLocked()
}

// validateAssembledAgainst rejects the pending assembled block unless its
// computed merkle roots match the externally supplied header's claims,
// the check that distinguishes push_block's validating mode from local
// production (spec §4.4).
func (c *Controller) validateAssembledAgainst(header chain.Header) error {
	a := c.pending.assembled
	if a.Header.ActionMerkleRoot != header.ActionMerkleRoot {
		return chain.NewInvalidBlockErrorf(header.ID(), header.Height, "action merkle root mismatch: computed %s, header claims %s", a.Header.ActionMerkleRoot, header.ActionMerkleRoot)
	}
	if a.Header.TransactionMerkleRoot != header.TransactionMerkleRoot {
		return chain.NewInvalidBlockErrorf(header.ID(), header.Height, "transaction merkle root mismatch: computed %s, header claims %s", a.Header.TransactionMerkleRoot, header.TransactionMerkleRoot)
	}
	return nil
}

// Replay rebuilds the fork database and store revision counter from the
// block log, from its first block through its head. Blocks read from the
// log are already known irreversible, so replay reconstructs only the
// bookkeeping this core owns (fork-database root/head, revision
// counter); re-executing each block's transactions is delegated to the
// out-of-scope VM collaborator and is not repeated here (spec §1).
func (c *Controller) Replay() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.blockLog == nil {
		return nil
	}
	head, ok := c.blockLog.Head()
	if !ok {
		return nil
	}

	first := c.blockLog.FirstBlockNum()
	var last *stage.CompletedBlock
	for num := first; num <= head.Height; num++ {
		b, err := c.blockLog.ReadBlockByNum(num)
		if err != nil {
			return fmt.Errorf("replay: read block %d: %w", num, err)
		}
		last = b
		c.store.SetRevision(int64(num))
		c.store.Commit(int64(num))
	}
	if last != nil {
		c.forkDB.Reset(&forkdb.Node{Header: last.Header, Valid: true, Payload: last})
		if last.Regime == stage.RegimeIF {
			c.hsIrreversibleNum = last.IFExt.State.Core.LastFinalBlockNum()
		}
	}
	return nil
}

// CreateBlockState constructs the CompletedBlock wrapper the fork
// database stores for a block the controller has not itself assembled
// (e.g. a snapshot-loaded head), matching controller.cpp's
// create_block_state.
func (c *Controller) CreateBlockState(header chain.Header, signature []byte, regime stage.Regime, ifState finality.MinimalState) *stage.CompletedBlock {
	cb := &stage.CompletedBlock{
		ID:        header.ID(),
		Header:    header,
		Signature: signature,
		Regime:    regime,
	}
	if regime == stage.RegimeIF {
		cb.IFExt = &stage.IFCompletedExt{State: ifState}
	}
	return cb
}
