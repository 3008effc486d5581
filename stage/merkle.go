package stage

import (
	"crypto/sha256"

	"github.com/flow-consensus/ifcore/model/chain"
)

// HashPair combines two sibling digests into their parent digest. The
// concrete domain-separated leaf/node hash is treated as an opaque
// cryptographic primitive per spec §1; DefaultHashPair below is a concrete
// sha256-based instance used where no collaborator-supplied hasher is
// configured.
type HashPair func(left, right chain.Identifier) chain.Identifier

// DefaultHashPair combines two digests by hashing their concatenation with
// sha256, domain-separated with a leading 0x01 byte to distinguish internal
// nodes from leaves, matching the convention the teacher's crypto/hash
// package documents (domain separation tags per hash purpose).
func DefaultHashPair(left, right chain.Identifier) chain.Identifier {
	h := sha256.New()
	h.Write([]byte{0x01})
	h.Write(left[:])
	h.Write(right[:])
	var out chain.Identifier
	copy(out[:], h.Sum(nil))
	return out
}

// CanonicalMerkleRoot computes the legacy DPoS merkle root over digests:
// the odd node at the end of an odd-sized level is hashed together with its
// *left* sibling (the last node is never paired with itself), per spec §4.4
// "canonical merkle pads by appending the left sibling".
func CanonicalMerkleRoot(digests []chain.Identifier, hash HashPair) chain.Identifier {
	if hash == nil {
		hash = DefaultHashPair
	}
	if len(digests) == 0 {
		return chain.Identifier{}
	}
	level := append([]chain.Identifier{}, digests...)
	for len(level) > 1 {
		var next []chain.Identifier
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hash(level[i], level[i+1]))
			} else {
				// Odd node out: carried forward by pairing it with its own
				// left sibling from this level, matching the canonical
				// algorithm's "append the left sibling" padding rule.
				next = append(next, hash(level[i-1], level[i]))
			}
		}
		level = next
	}
	return level[0]
}

// SymmetricMerkleRoot computes the IF-regime merkle root over digests:
// pads the leaf list to a power of two by duplicating the last element,
// per spec §4.4 "symmetric merkle pads to power-of-two by
// duplicating the last element".
func SymmetricMerkleRoot(digests []chain.Identifier, hash HashPair) chain.Identifier {
	if hash == nil {
		hash = DefaultHashPair
	}
	if len(digests) == 0 {
		return chain.Identifier{}
	}
	level := append([]chain.Identifier{}, digests...)
	for len(level)&(len(level)-1) != 0 {
		level = append(level, level[len(level)-1])
	}
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		var next []chain.Identifier
		for i := 0; i < len(level); i += 2 {
			next = append(next, hash(level[i], level[i+1]))
		}
		level = next
	}
	return level[0]
}

// MerkleBranch is a single sibling hash plus which side it sits on, used to
// reconstruct a root from a leaf during proof-of-inclusion verification
// (spec §4.6).
type MerkleBranch struct {
	Sibling chain.Identifier
	IsRight bool
}

// VerifyInclusion recomputes the root from leaf and branches and reports
// whether it equals root.
func VerifyInclusion(leaf chain.Identifier, branches []MerkleBranch, root chain.Identifier, hash HashPair) bool {
	if hash == nil {
		hash = DefaultHashPair
	}
	cur := leaf
	for _, b := range branches {
		if b.IsRight {
			cur = hash(cur, b.Sibling)
		} else {
			cur = hash(b.Sibling, cur)
		}
	}
	return cur == root
}
