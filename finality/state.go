package finality

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/flow-consensus/ifcore/model/chain"
)

// BlockMetadata carries the identity, timestamp, and finality digest of a
// block (source: instant_finality_core.cpp's block_metadata).
type BlockMetadata struct {
	BlockID        chain.Identifier
	Timestamp      time.Time
	FinalityDigest chain.Identifier
}

// Ref returns the BlockRef view of this metadata.
func (m BlockMetadata) Ref() chain.BlockRef {
	return chain.BlockRef{BlockID: m.BlockID, Timestamp: m.Timestamp}
}

// PolicyDigester is implemented by the active finalizer policy so that
// MinimalState can compute finality digests without importing the policy
// package (which itself doesn't need the finality package).
type PolicyDigester interface {
	ComputeDigest() chain.Identifier
	PolicyGeneration() uint64
}

// MinimalState is the IF-regime analogue of a block-header-state: the
// finality core plus enough history (validity merkle roots and finality
// digests) to serve proof-of-finality verification without re-walking the
// whole chain. Source: instant_finality_core.cpp's minimal_state.
type MinimalState struct {
	ProtocolVersion uint32
	Core            Core
	LatestBlock     BlockMetadata

	// ValidityMroots covers ancestor blocks, ascending by block number,
	// from Core.FinalOnStrongQCBlockNum through Core.LatestQCClaim().BlockNum.
	ValidityMroots []chain.Identifier
	// FinalityDigests covers ancestor blocks, ascending by block number,
	// from Core.LatestQCClaim().BlockNum through LatestBlock.
	FinalityDigests []chain.Identifier
}

// ComputeFinalizerDigest hashes (protocolVersion, policy.Generation(),
// finalityMroot, staticDigest) where staticDigest = SHA256(policyDigest,
// baseDigest). Source: minimal_state::compute_finalizer_digest.
func ComputeFinalizerDigest(protocolVersion uint32, policy PolicyDigester, finalityMroot, baseDigest chain.Identifier) chain.Identifier {
	policyDigest := policy.ComputeDigest()
	h := sha256.New()
	h.Write(policyDigest[:])
	h.Write(baseDigest[:])
	var staticDigest chain.Identifier
	copy(staticDigest[:], h.Sum(nil))

	h2 := sha256.New()
	_ = writeUint32(h2, protocolVersion)
	_ = writeUint64(h2, policy.PolicyGeneration())
	h2.Write(finalityMroot[:])
	h2.Write(staticDigest[:])
	var out chain.Identifier
	copy(out[:], h2.Sum(nil))
	return out
}

func writeUint32(h interface{ Write([]byte) (int, error) }, v uint32) error {
	b := []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	_, err := h.Write(b)
	return err
}

func writeUint64(h interface{ Write([]byte) (int, error) }, v uint64) error {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[7-i] = byte(v >> (8 * i))
	}
	_, err := h.Write(b)
	return err
}

// Next advances the minimal state to cover the block described by header,
// given freshly computed validity merkle roots for any newly-final blocks
// and the most recent ancestor-with-QC claim observed in header.
//
// Preconditions (fatal if violated):
//   - m.LatestBlock.Ref().Timestamp < header.Timestamp
//   - m.Core.LatestQCClaim() <= mostRecentAncestorWithQC <= (m.Core.CurrentBlockNum(), strong)
//   - additionalValidityMroots covers exactly the ancestor blocks between
//     m.Core.LatestQCClaim().BlockNum and mostRecentAncestorWithQC.BlockNum
func (m MinimalState) Next(header chain.Header, additionalValidityMroots []chain.Identifier, mostRecentAncestorWithQC chain.QcClaim, policy PolicyDigester, baseDigest chain.Identifier) MinimalState {
	if !m.LatestBlock.Ref().Timestamp.Before(header.Timestamp) {
		panic("MinimalState.Next precondition violated: header timestamp does not strictly increase")
	}

	next := MinimalState{ProtocolVersion: 0}

	// Core.Next advances from the core carried by the parent block, so the
	// block ref passed in is the parent's (m.LatestBlock), not header's:
	// m.Core.CurrentBlockNum() == m.LatestBlock.Ref().BlockNum() going in.
	next.Core = m.Core.Next(m.LatestBlock.Ref(), mostRecentAncestorWithQC)

	vmrIndex := next.Core.FinalOnStrongQCBlockNum - m.Core.FinalOnStrongQCBlockNum
	if int(vmrIndex) >= len(m.ValidityMroots)+len(additionalValidityMroots) {
		panic(fmt.Sprintf("MinimalState.Next: validity mroot index %d out of range", vmrIndex))
	}

	combined := append(append([]chain.Identifier{}, m.ValidityMroots...), additionalValidityMroots...)
	finalityMroot := combined[vmrIndex]

	next.LatestBlock = BlockMetadata{
		BlockID:        header.ID(),
		Timestamp:      header.Timestamp,
		FinalityDigest: ComputeFinalizerDigest(next.ProtocolVersion, policy, finalityMroot, baseDigest),
	}

	next.ValidityMroots = append([]chain.Identifier{}, combined[vmrIndex:]...)

	fdIndex := next.Core.LatestQCClaim().BlockNum - m.Core.LatestQCClaim().BlockNum
	if int(fdIndex) > len(m.FinalityDigests) {
		fdIndex = uint32(len(m.FinalityDigests))
	}
	next.FinalityDigests = append([]chain.Identifier{}, m.FinalityDigests[fdIndex:]...)
	next.FinalityDigests = append(next.FinalityDigests, m.LatestBlock.FinalityDigest)

	return next
}
