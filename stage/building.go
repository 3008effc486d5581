// Package stage implements the building → assembled → completed block
// stage machine (spec §4.4): the linear, one-way progression a block moves
// through inside a controller's pending state, with DPoS and Instant-
// Finality (IF) variants modeled as a tagged union rather than an
// interface hierarchy, per spec §9.
package stage

import (
	"time"

	"github.com/flow-consensus/ifcore/finality"
	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/policy"
)

// Regime distinguishes which consensus regime a block belongs to.
type Regime int

const (
	// RegimeDPoS is the legacy delegated-producer regime.
	RegimeDPoS Regime = iota
	// RegimeIF is the HotStuff-style Instant-Finality regime.
	RegimeIF
)

// TransactionMeta is the bookkeeping the stage machine keeps for a pushed
// transaction: enough to support restore points and replay, without the
// execution details the VM (out of scope per spec §1) owns.
type TransactionMeta struct {
	TransactionID chain.Identifier
	Expiration    time.Time
}

// DPoSBuildingExt carries the DPoS-specific extension state threaded
// through a building block: the pending producer schedule promotion and
// the irreversibility-counting inputs, grounded on controller.cpp's
// legacy (non-IF) start_block/finalize_block path.
type DPoSBuildingExt struct {
	ActiveProducers  ProducerView
	PendingProducers *ProducerView
	// DPoSIrreversibleBlockNum is the block number considered irreversible
	// under the legacy producer-confirmation counting rule.
	DPoSIrreversibleBlockNum uint32
}

// IFBuildingExt carries the Instant-Finality extension state threaded
// through a building block: the finality core inherited from the parent
// and the most recently observed ancestor-with-QC claim, grounded on
// instant_finality_core.cpp.
type IFBuildingExt struct {
	ParentState              finality.MinimalState
	MostRecentAncestorWithQC chain.QcClaim
	ProposedPolicy           *policy.Policy
}

// BuildingBlock is the mutable, exclusively-owned state of a block under
// construction. Exactly one of DPoSExt / IFExt is set, never both (spec §9
// tagged-union guidance).
type BuildingBlock struct {
	ParentID   chain.Identifier
	ParentRef  chain.BlockRef
	Timestamp  time.Time
	ProducerID chain.Identifier

	Regime  Regime
	DPoSExt *DPoSBuildingExt
	IFExt   *IFBuildingExt

	PendingTransactions []TransactionMeta
	ActionDigests       []chain.Identifier
	ReceiptDigests      []chain.Identifier

	ActivatedFeatures    chain.IdentifierList
	PreactivatedFeatures chain.IdentifierList

	Deadline time.Time
}

// StartDPoSBlock creates a building block in the DPoS regime. Precondition
// (enforced by the caller's pending-state tracking, spec §4.4): no pending
// state already exists.
func StartDPoSBlock(parent chain.BlockRef, when time.Time, producerID chain.Identifier, activeProducers ProducerView, dposIrreversible uint32, newFeatureActivations chain.IdentifierList, deadline time.Time) *BuildingBlock {
	return &BuildingBlock{
		ParentID:   parent.BlockID,
		ParentRef:  parent,
		Timestamp:  when,
		ProducerID: producerID,
		Regime:     RegimeDPoS,
		DPoSExt: &DPoSBuildingExt{
			ActiveProducers:          activeProducers,
			DPoSIrreversibleBlockNum: dposIrreversible,
		},
		PreactivatedFeatures: newFeatureActivations,
	}
}

// StartIFBlock creates a building block in the Instant-Finality regime.
func StartIFBlock(parent chain.BlockRef, when time.Time, producerID chain.Identifier, parentState finality.MinimalState, mostRecentAncestorWithQC chain.QcClaim, newFeatureActivations chain.IdentifierList, deadline time.Time) *BuildingBlock {
	return &BuildingBlock{
		ParentID:   parent.BlockID,
		ParentRef:  parent,
		Timestamp:  when,
		ProducerID: producerID,
		Regime:     RegimeIF,
		IFExt: &IFBuildingExt{
			ParentState:              parentState,
			MostRecentAncestorWithQC: mostRecentAncestorWithQC,
		},
		PreactivatedFeatures: newFeatureActivations,
	}
}

// ProposeFinalizerPolicy records a new finalizer policy to be proposed in
// this block. At most one proposed policy per block (spec §3 invariant).
func (b *BuildingBlock) ProposeFinalizerPolicy(p policy.Policy) error {
	if b.Regime != RegimeIF {
		return chain.NewConfigurationErrorf("finalizer policy proposals only apply to IF blocks")
	}
	if b.IFExt.ProposedPolicy != nil {
		return chain.NewConfigurationErrorf("block already has a proposed finalizer policy")
	}
	b.IFExt.ProposedPolicy = &p
	return nil
}

// PushTransaction applies trx's effects (already executed by the VM
// collaborator; this stage machine only records the resulting digests) to
// the building block, with a restore point that can reverse a failed push.
//
// actionDigests and receiptDigest are produced by the VM/resource-ledger
// collaborators (out of scope per spec §1); this records them and returns
// the restore point the caller uses on recoverable failure.
func (b *BuildingBlock) PushTransaction(meta TransactionMeta, actionDigests []chain.Identifier, receiptDigest chain.Identifier) RestorePoint {
	rp := CaptureRestorePoint(b)
	b.PendingTransactions = append(b.PendingTransactions, meta)
	b.ActionDigests = append(b.ActionDigests, actionDigests...)
	b.ReceiptDigests = append(b.ReceiptDigests, receiptDigest)
	return rp
}

// ClearExpiredTransactions drops transactions whose expiration is before
// now, matching start_block's dedup-table eviction (spec §4.4).
func (b *BuildingBlock) ClearExpiredTransactions(now time.Time) {
	kept := b.PendingTransactions[:0]
	for _, t := range b.PendingTransactions {
		if !t.Expiration.Before(now) {
			kept = append(kept, t)
		}
	}
	b.PendingTransactions = kept
}
