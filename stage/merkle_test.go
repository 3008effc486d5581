package stage

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/flow-consensus/ifcore/model/chain"
)

func digestList(t *rapid.T, label string) []chain.Identifier {
	n := rapid.IntRange(1, 12).Draw(t, label+"-n")
	out := make([]chain.Identifier, n)
	for i := range out {
		out[i] = chain.MakeID(rapid.IntRange(0, 1<<30).Draw(t, label+"-leaf"))
	}
	return out
}

func TestMerkleRootsAreDeterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		digests := digestList(rt, "digests")

		c1 := CanonicalMerkleRoot(digests, nil)
		c2 := CanonicalMerkleRoot(digests, nil)
		require.Equal(t, c1, c2)

		s1 := SymmetricMerkleRoot(digests, nil)
		s2 := SymmetricMerkleRoot(digests, nil)
		require.Equal(t, s1, s2)
	})
}

func TestMerkleRootsOfSingleLeaf(t *testing.T) {
	leaf := chain.MakeID("solo")
	require.Equal(t, leaf, CanonicalMerkleRoot([]chain.Identifier{leaf}, nil))
	require.Equal(t, leaf, SymmetricMerkleRoot([]chain.Identifier{leaf}, nil))
}

func TestVerifyInclusionRoundTrip(t *testing.T) {
	leaves := []chain.Identifier{chain.MakeID("a"), chain.MakeID("b"), chain.MakeID("c"), chain.MakeID("d")}
	root := SymmetricMerkleRoot(leaves, nil)

	// Manually walk the tree for leaf index 2 ("c"): level0 pairs (a,b) (c,d).
	n01 := DefaultHashPair(leaves[0], leaves[1])
	n23 := DefaultHashPair(leaves[2], leaves[3])
	require.Equal(t, DefaultHashPair(n01, n23), root)

	branches := []MerkleBranch{
		{Sibling: leaves[3], IsRight: true},
		{Sibling: n01, IsRight: false},
	}
	require.True(t, VerifyInclusion(leaves[2], branches, root, nil))

	branches[0].Sibling = chain.MakeID("wrong")
	require.False(t, VerifyInclusion(leaves[2], branches, root, nil))
}
