// Package policy implements the finalizer policy and the consensus-critical
// ordered-diff algorithm used to propagate policy changes between blocks
// with the two-3-chain activation delay (spec §4.2).
package policy

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/flow-consensus/ifcore/model/chain"
)

// FinalizerKey is a BLS public key authorized to sign quorum certificates.
type FinalizerKey []byte

// Finalizer is a single entry in a FinalizerPolicy: a public key and its
// voting weight.
type Finalizer struct {
	PublicKey FinalizerKey
	Weight    uint64
}

// Equal reports whether two finalizers have the same public key and
// weight, the equality relation the ordered-diff algorithm is defined over.
func (f Finalizer) Equal(other Finalizer) bool {
	return f.Weight == other.Weight && string(f.PublicKey) == string(other.PublicKey)
}

// Policy is an ordered, weighted list of finalizer public keys together
// with a strictly increasing generation number.
type Policy struct {
	Generation uint64
	Finalizers []Finalizer
}

// PolicyGeneration returns p's generation, satisfying finality.PolicyDigester.
func (p Policy) PolicyGeneration() uint64 { return p.Generation }

// TotalWeight returns the sum of all finalizer weights.
func (p Policy) TotalWeight() uint64 {
	var total uint64
	for _, f := range p.Finalizers {
		total += f.Weight
	}
	return total
}

// StrongQuorumThreshold returns the minimum weight required for a strong
// quorum certificate: ceil(2 * totalWeight / 3) + 1. The threshold is always
// derived from the finalizers' total weight; a Policy carries no threshold
// of its own and cannot override this formula.
func (p Policy) StrongQuorumThreshold() uint64 {
	total := p.TotalWeight()
	return (2*total+2)/3 + 1
}

// ComputeDigest hashes the generation and the ordered list of
// (public key, weight) pairs, matching finalizer_policy::compute_digest.
func (p Policy) ComputeDigest() chain.Identifier {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], p.Generation)
	h.Write(buf[:])
	for _, f := range p.Finalizers {
		binary.BigEndian.PutUint64(buf[:], f.Weight)
		h.Write(buf[:])
		h.Write(f.PublicKey)
	}
	var out chain.Identifier
	copy(out[:], h.Sum(nil))
	return out
}
