package forkdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flow-consensus/ifcore/model/chain"
)

func header(parent chain.Identifier, height uint32, ts time.Time, salt byte) chain.Header {
	return chain.Header{
		ParentID:  parent,
		Height:    height,
		Timestamp: ts,
		ProducerID: chain.MakeID(struct {
			Height uint32
			Salt   byte
		}{height, salt}),
	}
}

func node(h chain.Header) *Node {
	return &Node{Header: h}
}

func TestHeadDeterminismWithoutMutation(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	root := node(header(chain.ZeroID, 0, base, 0))
	db := NewForkDB(root)

	h1 := header(root.BlockID(), 1, base.Add(time.Second), 1)
	n1 := node(h1)
	require.NoError(t, db.Add(n1))
	require.NoError(t, db.MarkValid(n1.BlockID()))

	first := db.RecomputeHead()
	for i := 0; i < 5; i++ {
		require.Equal(t, first, db.Head())
	}
}

func TestHeadPrefersHigherBlockNum(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	root := node(header(chain.ZeroID, 0, base, 0))
	db := NewForkDB(root)

	n1 := node(header(root.BlockID(), 1, base.Add(time.Second), 1))
	require.NoError(t, db.Add(n1))
	require.NoError(t, db.MarkValid(n1.BlockID()))

	n2 := node(header(n1.BlockID(), 2, base.Add(2*time.Second), 2))
	require.NoError(t, db.Add(n2))
	require.NoError(t, db.MarkValid(n2.BlockID()))

	head := db.RecomputeHead()
	require.Equal(t, n2.BlockID(), head)
}

func TestForkSwitchBranches(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	root := node(header(chain.ZeroID, 0, base, 0))
	db := NewForkDB(root)

	a1 := node(header(root.BlockID(), 1, base.Add(time.Second), 1))
	require.NoError(t, db.Add(a1))
	require.NoError(t, db.MarkValid(a1.BlockID()))

	b1 := node(header(root.BlockID(), 1, base.Add(time.Second), 2))
	require.NoError(t, db.Add(b1))
	require.NoError(t, db.MarkValid(b1.BlockID()))

	a2 := node(header(a1.BlockID(), 2, base.Add(2*time.Second), 1))
	require.NoError(t, db.Add(a2))
	require.NoError(t, db.MarkValid(a2.BlockID()))

	b2 := node(header(b1.BlockID(), 2, base.Add(2*time.Second), 2))
	require.NoError(t, db.Add(b2))
	require.NoError(t, db.MarkValid(b2.BlockID()))

	applyForward, popBack, err := db.FetchBranchFrom(a2.BlockID(), b2.BlockID())
	require.NoError(t, err)
	require.Equal(t, []chain.Identifier{b1.BlockID(), b2.BlockID()}, applyForward)
	require.Equal(t, []chain.Identifier{a2.BlockID(), a1.BlockID()}, popBack)
}

func TestAdvanceRootPrunesOffBranchNodes(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	root := node(header(chain.ZeroID, 0, base, 0))
	db := NewForkDB(root)

	a1 := node(header(root.BlockID(), 1, base.Add(time.Second), 1))
	require.NoError(t, db.Add(a1))
	require.NoError(t, db.MarkValid(a1.BlockID()))

	b1 := node(header(root.BlockID(), 1, base.Add(time.Second), 2))
	require.NoError(t, db.Add(b1))
	require.NoError(t, db.MarkValid(b1.BlockID()))

	a2 := node(header(a1.BlockID(), 2, base.Add(2*time.Second), 1))
	require.NoError(t, db.Add(a2))
	require.NoError(t, db.MarkValid(a2.BlockID()))

	require.NoError(t, db.AdvanceRoot(a1.BlockID()))

	require.Equal(t, a1.BlockID(), db.Root())
	_, err := db.Get(b1.BlockID())
	require.Error(t, err)
	require.True(t, chain.IsMissingBlockError(err))

	got, err := db.Get(a2.BlockID())
	require.NoError(t, err)
	require.Equal(t, a2.BlockID(), got.BlockID())
}

func TestSearchOnBranch(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	root := node(header(chain.ZeroID, 0, base, 0))
	db := NewForkDB(root)

	n1 := node(header(root.BlockID(), 1, base.Add(time.Second), 1))
	require.NoError(t, db.Add(n1))
	n2 := node(header(n1.BlockID(), 2, base.Add(2*time.Second), 1))
	require.NoError(t, db.Add(n2))
	n3 := node(header(n2.BlockID(), 3, base.Add(3*time.Second), 1))
	require.NoError(t, db.Add(n3))

	found, err := db.SearchOnBranch(n3.BlockID(), 1)
	require.NoError(t, err)
	require.Equal(t, n1.BlockID(), found)

	_, err = db.SearchOnBranch(n3.BlockID(), 99)
	require.Error(t, err)
}

func TestAddDuplicateAndUnknownParentRejected(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	root := node(header(chain.ZeroID, 0, base, 0))
	db := NewForkDB(root)

	n1 := node(header(root.BlockID(), 1, base.Add(time.Second), 1))
	require.NoError(t, db.Add(n1))

	err := db.Add(n1)
	require.Error(t, err)
	require.True(t, chain.IsForkDatabaseError(err))

	orphan := node(header(chain.MakeID("nonexistent"), 1, base.Add(time.Second), 9))
	err = db.Add(orphan)
	require.Error(t, err)
	require.True(t, chain.IsForkDatabaseError(err))
}
