package controller

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/flow-consensus/ifcore/controller/mocks"
	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/policy"
	"github.com/flow-consensus/ifcore/stage"
	"github.com/flow-consensus/ifcore/store"
)

func newTestController(t *testing.T, producers stage.ProducerView) *Controller {
	t.Helper()
	st, err := store.NewBadgerStore(t.TempDir(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	c, err := NewController(Params{
		ChainID:          chain.MakeID("test-chain"),
		Regime:           stage.RegimeDPoS,
		GenesisHeader:    chain.Header{Height: 0, Timestamp: time.Unix(0, 0).UTC()},
		Store:            st,
		GenesisProducers: producers,
		MaxWorkers:       2,
		Logger:           zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// produceDPoSBlock drives one block through the full start/push/finalize/
// complete/commit pipeline, the shape controller.cpp's produce_block loop
// follows, and returns the committed header.
func produceDPoSBlock(t *testing.T, c *Controller, producerID chain.Identifier, when time.Time) chain.Header {
	t.Helper()
	deadline := when.Add(time.Minute)
	require.NoError(t, c.StartBlock(when, 1, nil, blockStatusComplete, producerID, nil, deadline))

	trace, err := c.PushTransaction(TransactionInput{
		Meta: stage.TransactionMeta{TransactionID: chain.MakeID(when), Expiration: when.Add(time.Hour)},
		Execute: func() ([]chain.Identifier, chain.Identifier, uint64, uint64, error) {
			return []chain.Identifier{chain.MakeID("action")}, chain.MakeID("receipt"), 10, 20, nil
		},
	}, deadline, time.Second)
	require.NoError(t, err)
	require.Nil(t, trace.Except)

	require.NoError(t, c.FinalizeBlock())
	require.NoError(t, c.CompleteBlock(func(chain.Header) ([]byte, error) { return []byte("sig"), nil }))
	require.NoError(t, c.CommitBlock())

	header, err := c.HeadBlockHeader()
	require.NoError(t, err)
	return header
}

func TestDPoSPipelineAdvancesHead(t *testing.T) {
	p1 := chain.MakeID("p1")
	producers := stage.ProducerView{Slots: []stage.ProducerSlot{{ProducerID: p1, Weight: 1}}}
	c := newTestController(t, producers)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h1 := produceDPoSBlock(t, c, p1, base)
	require.Equal(t, uint32(1), h1.Height)

	h2 := produceDPoSBlock(t, c, p1, base.Add(time.Second))
	require.Equal(t, uint32(2), h2.Height)
	require.Equal(t, h1.ID(), h2.ParentID)

	require.Equal(t, uint32(2), c.HeadBlockNum())
	require.Equal(t, uint64(2), c.Metrics().BlocksProduced.Load())
}

func TestDPoSIrreversibilityAdvancesWithQuorumOfProducers(t *testing.T) {
	p1, p2, p3 := chain.MakeID("p1"), chain.MakeID("p2"), chain.MakeID("p3")
	producers := stage.ProducerView{Slots: []stage.ProducerSlot{
		{ProducerID: p1, Weight: 1},
		{ProducerID: p2, Weight: 1},
		{ProducerID: p3, Weight: 1},
	}}
	c := newTestController(t, producers)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rotation := []chain.Identifier{p1, p2, p3, p1}
	for i, producerID := range rotation {
		produceDPoSBlock(t, c, producerID, base.Add(time.Duration(i)*time.Second))
	}

	// After 4 blocks (p1@1, p2@2, p3@3, p1@4), each producer's
	// last-produced block is {p1:4, p2:2, p3:3}; with 3 equal-weight
	// producers the ⌈2N/3⌉+1 threshold equals the full producer count, so
	// the irreversible point is the minimum of the three: block 2.
	require.Equal(t, uint32(2), c.GetFinalizerState().DPoSIrreversible)
}

func TestPushTransactionDrivesResourceLedger(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockResourceLedger(ctrl)

	p1 := chain.MakeID("p1")
	producers := stage.ProducerView{Slots: []stage.ProducerSlot{{ProducerID: p1, Weight: 1}}}
	st, err := store.NewBadgerStore(t.TempDir(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	c, err := NewController(Params{
		ChainID:          chain.MakeID("test-chain"),
		Regime:           stage.RegimeDPoS,
		GenesisHeader:    chain.Header{Height: 0, Timestamp: time.Unix(0, 0).UTC()},
		Store:            st,
		Ledger:           ledger,
		GenesisProducers: producers,
		MaxWorkers:       1,
		Logger:           zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	deadline := when.Add(time.Minute)

	accounts := []chain.Identifier{chain.MakeID("alice")}
	// ProcessBlockUsage fires as start_block's implicit on-block
	// notification, before any transaction is pushed.
	ledger.EXPECT().ProcessBlockUsage(uint32(1)).Return(nil)
	ledger.EXPECT().AddTransactionUsage(accounts, uint64(20), uint64(10), uint32(1)).Return(nil)

	require.NoError(t, c.StartBlock(when, 1, nil, blockStatusComplete, p1, nil, deadline))

	trace, err := c.PushTransaction(TransactionInput{
		Meta:     stage.TransactionMeta{TransactionID: chain.MakeID(when), Expiration: when.Add(time.Hour)},
		Accounts: accounts,
		Execute: func() ([]chain.Identifier, chain.Identifier, uint64, uint64, error) {
			return []chain.Identifier{chain.MakeID("action")}, chain.MakeID("receipt"), 10, 20, nil
		},
	}, deadline, time.Second)
	require.NoError(t, err)
	require.Nil(t, trace.Except)

	require.NoError(t, c.FinalizeBlock())
	require.NoError(t, c.CompleteBlock(func(chain.Header) ([]byte, error) { return []byte("sig"), nil }))
	require.NoError(t, c.CommitBlock())
}

// TestFinalizerPolicyRotationTiming drives policyTransition's
// proposed -> pending -> active machinery directly against LIB values,
// matching the two-3-chain delay: a policy proposed at block B becomes
// pending once B itself is final and active once B+3 is final.
func TestFinalizerPolicyRotationTiming(t *testing.T) {
	c := newTestController(t, stage.ProducerView{})

	oldPolicy := policy.Policy{Generation: 1, Finalizers: []policy.Finalizer{{PublicKey: policy.FinalizerKey("a"), Weight: 1}}}
	newPolicy := policy.Policy{Generation: 2, Finalizers: []policy.Finalizer{{PublicKey: policy.FinalizerKey("x"), Weight: 1}}}
	c.activePolicy = oldPolicy
	c.policyTransition = &policyTransition{policy: newPolicy, proposedAtBlock: 5}

	c.advancePolicyTransitionToLIB(4)
	require.Equal(t, oldPolicy, c.activePolicy)
	require.NotNil(t, c.policyTransition)
	require.False(t, c.policyTransition.pending)

	c.advancePolicyTransitionToLIB(5)
	require.NotNil(t, c.policyTransition)
	require.True(t, c.policyTransition.pending)
	require.Equal(t, oldPolicy, c.activePolicy, "querying active policy at B+5 (B pending-at-block + nothing further) still returns the old policy")

	c.advancePolicyTransitionToLIB(7)
	require.NotNil(t, c.policyTransition)
	require.True(t, c.policyTransition.pending)
	require.Equal(t, oldPolicy, c.activePolicy)

	c.advancePolicyTransitionToLIB(8)
	require.Nil(t, c.policyTransition)
	require.Equal(t, newPolicy, c.activePolicy, "querying active policy at B+6 equivalent point returns the new policy")
}

func TestPushTransactionWithoutPendingStateFails(t *testing.T) {
	c := newTestController(t, stage.ProducerView{})
	_, err := c.PushTransaction(TransactionInput{}, time.Now().Add(time.Minute), time.Second)
	require.ErrorIs(t, err, chain.ErrNoPendingState)
}

// produceDPoSBlockNoTx drives one transaction-free block through the
// pipeline and returns its header and the signature bytes used to
// complete it, so a second controller standing in for a different node
// can later replay the exact same header via PushBlock.
func produceDPoSBlockNoTx(t *testing.T, c *Controller, producerID chain.Identifier, when time.Time) (chain.Header, []byte) {
	t.Helper()
	deadline := when.Add(time.Minute)
	require.NoError(t, c.StartBlock(when, 1, nil, blockStatusComplete, producerID, nil, deadline))
	require.NoError(t, c.FinalizeBlock())
	sig := []byte("sig-" + when.String())
	require.NoError(t, c.CompleteBlock(func(chain.Header) ([]byte, error) { return sig, nil }))
	require.NoError(t, c.CommitBlock())
	header, err := c.HeadBlockHeader()
	require.NoError(t, err)
	return header, sig
}

// TestForkSwitchWithRestore models nodes {0,1} and {2,3} partitioned for
// two blocks, each producing a distinct branch from the same genesis at
// equal height; the partition then heals and node A receives node B's
// branch block by block through PushBlock. Head must switch to the
// challenger branch only once its (block_num, tiebreak) actually exceeds
// the local head, and after the heal both controllers must agree on the
// fork-database head.
func TestForkSwitchWithRestore(t *testing.T) {
	p1 := chain.MakeID("p1")
	producers := stage.ProducerView{Slots: []stage.ProducerSlot{
		{ProducerID: p1, Weight: 1},
		{ProducerID: chain.MakeID("p2"), Weight: 1},
		{ProducerID: chain.MakeID("p3"), Weight: 1},
	}}

	a := newTestController(t, producers)
	b := newTestController(t, producers)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, _ = produceDPoSBlockNoTx(t, a, p1, base)
	h2a, _ := produceDPoSBlockNoTx(t, a, p1, base.Add(time.Second))
	require.Equal(t, uint32(2), a.HeadBlockNum())

	// node B's branch is produced with strictly later timestamps, so it
	// wins the (block_num, tiebreak) comparison once heights are equal.
	laterBase := base.Add(time.Minute)
	h1b, sig1b := produceDPoSBlockNoTx(t, b, p1, laterBase)
	h2b, sig2b := produceDPoSBlockNoTx(t, b, p1, laterBase.Add(time.Second))
	require.NotEqual(t, h2a.ID(), h2b.ID())

	require.NoError(t, a.PushBlock(h1b, nil, sig1b, chain.QcClaim{}))
	require.Equal(t, h2a.ID(), a.forkDB.Head(), "challenger at height 1 must not overtake a taller local head")

	require.NoError(t, a.PushBlock(h2b, nil, sig2b, chain.QcClaim{}))
	require.Equal(t, h2b.ID(), a.forkDB.Head(), "challenger at equal height with a later timestamp must win the tiebreak")

	require.Equal(t, a.forkDB.Head(), b.forkDB.Head(), "after heal, both nodes must agree on fork_db_head_block_id")
	require.Equal(t, uint64(1), a.Metrics().ForkSwitches.Load())
}

func TestAbortBlockReturnsPendingTransactionsAndClosesPendingState(t *testing.T) {
	p1 := chain.MakeID("p1")
	producers := stage.ProducerView{Slots: []stage.ProducerSlot{{ProducerID: p1, Weight: 1}}}
	c := newTestController(t, producers)

	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.StartBlock(when, 1, nil, blockStatusComplete, p1, nil, when.Add(time.Minute)))

	meta := stage.TransactionMeta{TransactionID: chain.MakeID("trx"), Expiration: when.Add(time.Hour)}
	_, err := c.PushTransaction(TransactionInput{
		Meta: meta,
		Execute: func() ([]chain.Identifier, chain.Identifier, uint64, uint64, error) {
			return []chain.Identifier{chain.MakeID("a")}, chain.MakeID("r"), 1, 1, nil
		},
	}, when.Add(time.Minute), time.Second)
	require.NoError(t, err)

	metas := c.AbortBlock()
	require.Len(t, metas, 1)
	require.Equal(t, meta.TransactionID, metas[0].TransactionID)

	_, err = c.HeadBlockHeader()
	require.NoError(t, err)
	require.Equal(t, uint32(0), c.HeadBlockNum())
}
