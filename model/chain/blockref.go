package chain

import (
	"encoding/binary"
	"time"
)

// BlockRef is a minimal reference to a block: its id and timestamp. The
// block number is recoverable from the block id's leading bytes, matching
// the "block_num is recoverable from block_id prefix" invariant.
type BlockRef struct {
	BlockID   Identifier
	Timestamp time.Time
}

// BlockNum extracts the block number encoded in the leading four bytes of
// the block id.
func (r BlockRef) BlockNum() uint32 {
	return binary.BigEndian.Uint32(r.BlockID[:4])
}

// MakeBlockID encodes blockNum into the leading four bytes of an identifier
// derived from the supplied payload digest, so that BlockNum() recovers it.
func MakeBlockID(blockNum uint32, payloadDigest Identifier) Identifier {
	var id Identifier
	binary.BigEndian.PutUint32(id[:4], blockNum)
	copy(id[4:], payloadDigest[4:])
	return id
}

// Header is the subset of block-header fields the core needs: enough to
// recompute the block id, validate the chain of parents, and carry the
// DPoS/IF-specific extensions (producer schedule, finalizer policy, QC
// claim) through the stage machine.
type Header struct {
	ParentID    Identifier
	Height      uint32
	View        uint64
	Timestamp   time.Time
	ProducerID  Identifier
	PayloadHash Identifier

	// ActionMerkleRoot and TransactionMerkleRoot are computed by
	// finalize_block from the building block's receipts and digests.
	ActionMerkleRoot      Identifier
	TransactionMerkleRoot Identifier

	// ProtocolFeatureActivations lists feature digests activated in this
	// block (spec §4.5).
	ProtocolFeatureActivations IdentifierList

	// QCClaim is the IF-regime header extension asserting a QC over one of
	// this block's ancestors (glossary: "QC claim"). Zero value for DPoS
	// blocks.
	QCClaim QcClaim

	// NewFinalizerPolicyDigest is non-zero when this block proposes a new
	// finalizer policy (spec §3: at most one proposed policy per block).
	NewFinalizerPolicyDigest Identifier
}

// ID returns the canonical identifier of the header, with the block number
// encoded into its leading bytes per BlockNum()'s contract.
func (h Header) ID() Identifier {
	digest := MakeID(h)
	return MakeBlockID(h.Height, digest)
}

// Ref returns the BlockRef view of this header.
func (h Header) Ref() BlockRef {
	return BlockRef{BlockID: h.ID(), Timestamp: h.Timestamp}
}
