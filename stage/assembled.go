package stage

import (
	"github.com/flow-consensus/ifcore/finality"
	"github.com/flow-consensus/ifcore/model/chain"
)

// AssembledBlock is the output of finalize_block: an immutable header with
// finalized merkle roots, plus whatever carried-over bookkeeping the
// regime needs to produce a CompletedBlock after signing.
type AssembledBlock struct {
	Header chain.Header

	Regime  Regime
	DPoSExt *DPoSAssembledExt
	IFExt   *IFAssembledExt

	pendingTransactions []TransactionMeta

	// activatedFeatures is snapshotted at start_block and carried through
	// unchanged, resolving spec §9's open question about
	// is_protocol_feature_activated on assembled blocks.
	activatedFeatures chain.IdentifierList
}

// DPoSAssembledExt carries the DPoS-specific state an assembled block
// needs before it can be signed.
type DPoSAssembledExt struct {
	ActiveProducers ProducerView
}

// IFAssembledExt carries the Instant-Finality state an assembled block
// needs: the minimal state it will carry once signed.
type IFAssembledExt struct {
	NextState finality.MinimalState
}

// PendingTransactions returns the transactions carried over from this
// block's building stage, for abort_block to hand back to the caller.
func (a *AssembledBlock) PendingTransactions() []TransactionMeta {
	return a.pendingTransactions
}

// IsProtocolFeatureActivated reports whether digest is among the features
// active as of this block, resolving spec §9's open question (the
// original's assembled_block::is_protocol_feature_activated intentionally
// throws; here it answers from the snapshot taken at start_block).
func (a *AssembledBlock) IsProtocolFeatureActivated(digest chain.Identifier) bool {
	for _, d := range a.activatedFeatures {
		if d == digest {
			return true
		}
	}
	return false
}

// FinalizeDPoSBlock computes merkles with the canonical algorithm, builds
// the header, and returns the assembled block. b must be a DPoS building
// block.
func FinalizeDPoSBlock(b *BuildingBlock, hash HashPair) (*AssembledBlock, error) {
	if b.Regime != RegimeDPoS {
		return nil, chain.NewConfigurationErrorf("FinalizeDPoSBlock called on a non-DPoS building block")
	}

	actionRoot := CanonicalMerkleRoot(b.ActionDigests, hash)
	trxRoot := CanonicalMerkleRoot(b.ReceiptDigests, hash)

	header := chain.Header{
		ParentID:                   b.ParentID,
		Height:                     b.ParentRef.BlockNum() + 1,
		Timestamp:                  b.Timestamp,
		ProducerID:                 b.ProducerID,
		ActionMerkleRoot:           actionRoot,
		TransactionMerkleRoot:      trxRoot,
		ProtocolFeatureActivations: b.ActivatedFeatures,
	}

	return &AssembledBlock{
		Header:  header,
		Regime:  RegimeDPoS,
		DPoSExt: &DPoSAssembledExt{ActiveProducers: b.DPoSExt.ActiveProducers},

		pendingTransactions: b.PendingTransactions,
		activatedFeatures:   b.ActivatedFeatures,
	}, nil
}

// FinalizeIFBlock computes merkles with the symmetric algorithm, builds
// the header (including the QC claim extension and any proposed policy
// digest), advances the finality minimal state, and returns the assembled
// block. additionalValidityMroots must cover exactly the ancestor blocks
// between the parent state's latest QC claim and
// mostRecentAncestorWithQC.BlockNum, per finality.MinimalState.Next's
// precondition.
func FinalizeIFBlock(b *BuildingBlock, hash HashPair, additionalValidityMroots []chain.Identifier, policyDigester finality.PolicyDigester, baseDigest chain.Identifier) (*AssembledBlock, error) {
	if b.Regime != RegimeIF {
		return nil, chain.NewConfigurationErrorf("FinalizeIFBlock called on a non-IF building block")
	}

	actionRoot := SymmetricMerkleRoot(b.ActionDigests, hash)
	trxRoot := SymmetricMerkleRoot(b.ReceiptDigests, hash)

	header := chain.Header{
		ParentID:                   b.ParentID,
		Height:                     b.ParentRef.BlockNum() + 1,
		Timestamp:                  b.Timestamp,
		ProducerID:                 b.ProducerID,
		ActionMerkleRoot:           actionRoot,
		TransactionMerkleRoot:      trxRoot,
		ProtocolFeatureActivations: b.ActivatedFeatures,
		QCClaim:                    b.IFExt.MostRecentAncestorWithQC,
	}
	if b.IFExt.ProposedPolicy != nil {
		header.NewFinalizerPolicyDigest = b.IFExt.ProposedPolicy.ComputeDigest()
	}

	nextState := b.IFExt.ParentState.Next(header, additionalValidityMroots, b.IFExt.MostRecentAncestorWithQC, policyDigester, baseDigest)

	return &AssembledBlock{
		Header: header,
		Regime: RegimeIF,
		IFExt:  &IFAssembledExt{NextState: nextState},

		pendingTransactions: b.PendingTransactions,
		activatedFeatures:   b.ActivatedFeatures,
	}, nil
}
