// Package proof implements the proof-of-finality verifier from spec §4.6:
// heavy proofs (carrying their own QC) and light proofs (relying on a
// previously cached finality merkle root), plus action-inclusion proofs
// within an already-proven block.
package proof

import (
	"fmt"
	"time"

	"github.com/flow-consensus/ifcore/finality"
	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/policy"
	"github.com/flow-consensus/ifcore/stage"
)

// QCBlock is the finalized block a heavy proof's QC certifies.
type QCBlock struct {
	Generation              uint64
	FinalOnStrongQCBlockNum uint32
	WitnessHash             chain.Identifier
	FinalityMroot           chain.Identifier

	// NewFinalizerPolicy, when non-nil, is the policy this block's
	// finality data proposes — proving this block's finality commits the
	// policy to the verifier's store at Generation+1 (spec §4.6
	// "Generation tracking").
	NewFinalizerPolicy *policy.Policy
}

// AnchorID derives the cache key a heavy proof's QCBlock is recorded
// under, so a later light proof for the same finality_mroot can find it.
func (b QCBlock) AnchorID() chain.Identifier {
	return chain.MakeID(b)
}

// QC is the aggregate signature over a QCBlock's finality digest.
type QC struct {
	Signature       []byte
	FinalizerBitset []byte
}

// ProofOfInclusion locates a target leaf within a merkle tree rooted at
// some block's finality_mroot (heavy proof) or at a previously cached
// finality_mroot (light proof).
type ProofOfInclusion struct {
	TargetBlockIndex uint32
	FinalBlockIndex  uint32
	Target           chain.Identifier
	MerkleBranches   []stage.MerkleBranch
}

// HeavyProof carries its own QC over QCBlock plus a proof of inclusion of
// Inclusion.Target within QCBlock's finality_mroot.
type HeavyProof struct {
	QCBlock   QCBlock
	QC        QC
	Inclusion ProofOfInclusion
}

// LightProof relies on a previously cached finality_mroot, identified by
// the AnchorID of the heavy proof that first established it.
type LightProof struct {
	AnchorID  chain.Identifier
	Inclusion ProofOfInclusion
}

// PolicyStore resolves a known finalizer policy by generation and commits
// newly learned policies, per spec §4.6's generation-tracking requirement.
type PolicyStore interface {
	Policy(generation uint64) (policy.Policy, bool)
	Commit(generation uint64, p policy.Policy)
}

// memPolicyStore is an in-memory PolicyStore, the production default; a
// real deployment could back this with the state store adapter, but the
// verifier only needs the interface.
type memPolicyStore struct {
	policies map[uint64]policy.Policy
}

// NewMemPolicyStore creates a PolicyStore seeded with the genesis policy
// at the genesis policy's own Generation.
func NewMemPolicyStore(genesis policy.Policy) PolicyStore {
	return &memPolicyStore{policies: map[uint64]policy.Policy{genesis.Generation: genesis}}
}

func (s *memPolicyStore) Policy(generation uint64) (policy.Policy, bool) {
	p, ok := s.policies[generation]
	return p, ok
}

func (s *memPolicyStore) Commit(generation uint64, p policy.Policy) {
	s.policies[generation] = p
}

// Verifier validates heavy and light proofs of finality.
type Verifier struct {
	bls             BLSVerifier
	cache           *MrootCache
	policies        PolicyStore
	protocolVersion uint32
	baseDigest      chain.Identifier

	quorumNum, quorumDen uint64
}

// NewVerifier creates a Verifier. quorumNum/quorumDen default to 2/3 and
// back the VerifyWeight check alongside the resolved policy's own
// Policy.StrongQuorumThreshold.
func NewVerifier(bls BLSVerifier, cache *MrootCache, policies PolicyStore, protocolVersion uint32, baseDigest chain.Identifier) *Verifier {
	return &Verifier{
		bls:             bls,
		cache:           cache,
		policies:        policies,
		protocolVersion: protocolVersion,
		baseDigest:      baseDigest,
		quorumNum:       2,
		quorumDen:       3,
	}
}

// VerifyHeavy validates a heavy proof end to end: reconstructs the finality
// digest, verifies the BLS aggregate signature over the bitset-selected
// finalizer subset achieves strong quorum, verifies the target's inclusion
// in the finality_mroot, and on success caches the proven finality_mroot.
func (v *Verifier) VerifyHeavy(p HeavyProof) error {
	pol, ok := v.policies.Policy(p.QCBlock.Generation)
	if !ok {
		return fmt.Errorf("proof-of-finality: generation %d is not yet known to this verifier", p.QCBlock.Generation)
	}

	digest := finality.ComputeFinalizerDigest(v.protocolVersion, pol, p.QCBlock.FinalityMroot, v.baseDigest)

	signers, sigWeight, err := SelectSigners(pol, p.QC.FinalizerBitset)
	if err != nil {
		return fmt.Errorf("proof-of-finality: %w", err)
	}
	if sigWeight < pol.StrongQuorumThreshold() {
		return fmt.Errorf("proof-of-finality: signer weight %d below strong quorum threshold %d", sigWeight, pol.StrongQuorumThreshold())
	}
	if !VerifyWeight(sigWeight, pol.TotalWeight(), v.quorumNum, v.quorumDen) {
		return fmt.Errorf("proof-of-finality: signer weight %d below %d/%d of total weight %d", sigWeight, v.quorumNum, v.quorumDen, pol.TotalWeight())
	}

	publicKeys := make([]policy.FinalizerKey, len(signers))
	for i, f := range signers {
		publicKeys[i] = f.PublicKey
	}
	if err := v.bls.VerifyAggregate(publicKeys, p.QC.Signature, digest); err != nil {
		return fmt.Errorf("proof-of-finality: %w", err)
	}

	if !stage.VerifyInclusion(p.Inclusion.Target, p.Inclusion.MerkleBranches, p.QCBlock.FinalityMroot, nil) {
		return fmt.Errorf("proof-of-finality: target block is not included in the proven finality_mroot")
	}

	if p.QCBlock.NewFinalizerPolicy != nil {
		v.policies.Commit(p.QCBlock.Generation+1, *p.QCBlock.NewFinalizerPolicy)
	}

	v.cache.Record(p.QCBlock.AnchorID(), p.QCBlock.FinalityMroot)
	return nil
}

// VerifyLight validates a light proof by reusing a previously cached
// finality_mroot, failing if no fresh cache entry exists for AnchorID
// (either never proven, or expired past the cache's TTL).
func (v *Verifier) VerifyLight(p LightProof) error {
	mroot, ok := v.cache.Lookup(p.AnchorID)
	if !ok {
		return fmt.Errorf("proof-of-finality: no fresh cached finality_mroot for anchor %s; a heavy proof is required", p.AnchorID)
	}
	if !stage.VerifyInclusion(p.Inclusion.Target, p.Inclusion.MerkleBranches, mroot, nil) {
		return fmt.Errorf("proof-of-finality: target block is not included in the cached finality_mroot")
	}
	return nil
}

// ActionLeaf is the leaf of an action-inclusion proof within a proven
// block's action_mroot (spec §4.6).
type ActionLeaf struct {
	Account       chain.Identifier
	Name          chain.Identifier
	Authorization []byte
	Data          []byte
	ReturnValue   []byte
	Receiver      chain.Identifier
	RecvSequence  uint64
	WitnessHash   chain.Identifier
}

// Digest computes the leaf digest for l.
func (l ActionLeaf) Digest() chain.Identifier {
	return chain.MakeID(l)
}

// VerifyActionInclusion verifies that leaf is included in actionMroot.
func VerifyActionInclusion(leaf ActionLeaf, branches []stage.MerkleBranch, actionMroot chain.Identifier) bool {
	return stage.VerifyInclusion(leaf.Digest(), branches, actionMroot, nil)
}

// defaultCacheTTL is the implementation-defined cache TTL spec §4.6 leaves
// to the implementer.
const defaultCacheTTL = 10 * time.Minute
