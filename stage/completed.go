package stage

import (
	"github.com/flow-consensus/ifcore/finality"
	"github.com/flow-consensus/ifcore/model/chain"
)

// Signer produces the block-producer signature over header, delegating to
// the opaque cryptography collaborator (spec §1).
type Signer func(header chain.Header) (signature []byte, err error)

// CompletedBlock is a signed, immutable block ready for commit_block.
// Identity is preserved unchanged once committed (spec §3 invariant).
type CompletedBlock struct {
	ID        chain.Identifier
	Header    chain.Header
	Signature []byte

	Regime  Regime
	DPoSExt *DPoSCompletedExt
	IFExt   *IFCompletedExt

	PendingTransactions []TransactionMeta
	ActivatedFeatures   chain.IdentifierList
}

// DPoSCompletedExt carries the DPoS block-state the fork database and
// controller need once a DPoS block is signed.
type DPoSCompletedExt struct {
	ActiveProducers ProducerView
}

// IFCompletedExt carries the IF regime's block-state: the signed block
// plus its finality.MinimalState. This resolves spec §9's open question
// #2 (the original's make_completed_block returns an empty completed
// block for the IF variant); the minimal state is exactly what the
// Proof-of-Finality Verifier and subsequent blocks' FinalizeIFBlock calls
// need from this block going forward.
type IFCompletedExt struct {
	State finality.MinimalState
}

// Complete signs an assembled block and returns the resulting completed
// block, dispatching on regime.
func Complete(a *AssembledBlock, sign Signer) (*CompletedBlock, error) {
	sig, err := sign(a.Header)
	if err != nil {
		return nil, err
	}

	cb := &CompletedBlock{
		ID:                  a.Header.ID(),
		Header:              a.Header,
		Signature:           sig,
		Regime:              a.Regime,
		PendingTransactions: a.pendingTransactions,
		ActivatedFeatures:   a.activatedFeatures,
	}

	switch a.Regime {
	case RegimeDPoS:
		cb.DPoSExt = &DPoSCompletedExt{ActiveProducers: a.DPoSExt.ActiveProducers}
	case RegimeIF:
		cb.IFExt = &IFCompletedExt{State: a.IFExt.NextState}
	default:
		return nil, chain.NewConfigurationErrorf("unknown regime %d", a.Regime)
	}

	return cb, nil
}
