package feature

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flow-consensus/ifcore/model/chain"
)

func TestPreactivateAndActivate(t *testing.T) {
	set := NewSet()
	digest := chain.MakeID("feature-a")
	activated := false
	set.Register(Descriptor{Digest: digest}, func() error {
		activated = true
		return nil
	})

	state := NewProtocolState()
	require.NoError(t, state.PreactivateFeature(set, digest, 10, false))
	require.Contains(t, state.PreactivatedDigests(), digest)
	require.False(t, state.IsActivated(digest))

	newly, err := state.ActivatePending(set)
	require.NoError(t, err)
	require.Equal(t, chain.IdentifierList{digest}, newly)
	require.True(t, state.IsActivated(digest))
	require.True(t, activated)
	require.Empty(t, state.PreactivatedDigests())
}

func TestDoublePreactivationFails(t *testing.T) {
	set := NewSet()
	digest := chain.MakeID("feature-b")
	set.Register(Descriptor{Digest: digest}, nil)

	state := NewProtocolState()
	require.NoError(t, state.PreactivateFeature(set, digest, 0, false))
	err := state.PreactivateFeature(set, digest, 0, false)
	require.Error(t, err)
	require.True(t, chain.IsProtocolFeatureBadBlockError(err))
}

func TestUnknownDigestDuringValidationRejects(t *testing.T) {
	set := NewSet()
	state := NewProtocolState()

	err := state.PreactivateFeature(set, chain.MakeID("unknown"), 0, false)
	require.Error(t, err)
	require.True(t, chain.IsProtocolFeatureBadBlockError(err))
}

func TestUnknownDigestDuringSpeculationIsSubjective(t *testing.T) {
	set := NewSet()
	state := NewProtocolState()

	err := state.PreactivateFeature(set, chain.MakeID("unknown"), 0, true)
	require.Error(t, err)
	require.True(t, chain.IsTransactionSubjectiveError(err))
	require.False(t, chain.IsProtocolFeatureBadBlockError(err))
}

func TestDependencyNotYetActiveFails(t *testing.T) {
	set := NewSet()
	dep := chain.MakeID("dep")
	main := chain.MakeID("main")
	set.Register(Descriptor{Digest: dep}, nil)
	set.Register(Descriptor{Digest: main, Dependencies: []chain.Identifier{dep}}, nil)

	state := NewProtocolState()
	err := state.PreactivateFeature(set, main, 0, false)
	require.Error(t, err)

	require.NoError(t, state.PreactivateFeature(set, dep, 0, false))
	require.NoError(t, state.PreactivateFeature(set, main, 0, false))
}

func TestTooEarlyActivationFails(t *testing.T) {
	set := NewSet()
	digest := chain.MakeID("late-feature")
	set.Register(Descriptor{Digest: digest, EarliestActivation: 100}, nil)

	state := NewProtocolState()
	err := state.PreactivateFeature(set, digest, 50, false)
	require.Error(t, err)
	require.True(t, chain.IsProtocolFeatureBadBlockError(err))

	require.NoError(t, state.PreactivateFeature(set, digest, 150, false))
}

func TestActivateRequestedMatchesPreactivated(t *testing.T) {
	set := NewSet()
	digest := chain.MakeID("feature-c")
	set.Register(Descriptor{Digest: digest, RequiresPreactivation: true}, nil)

	state := NewProtocolState()
	require.NoError(t, state.PreactivateFeature(set, digest, 0, false))

	newly, err := state.ActivateRequested(set, chain.IdentifierList{digest})
	require.NoError(t, err)
	require.Equal(t, chain.IdentifierList{digest}, newly)
	require.True(t, state.IsActivated(digest))
}

func TestActivateRequestedFailsIfPreactivatedDigestMissing(t *testing.T) {
	set := NewSet()
	digest := chain.MakeID("feature-d")
	set.Register(Descriptor{Digest: digest}, nil)

	state := NewProtocolState()
	require.NoError(t, state.PreactivateFeature(set, digest, 0, false))

	_, err := state.ActivateRequested(set, nil)
	require.Error(t, err)
	require.True(t, chain.IsProtocolFeatureBadBlockError(err))
}

func TestActivateRequestedRejectsUnpreactivatedWhenRequired(t *testing.T) {
	set := NewSet()
	digest := chain.MakeID("feature-e")
	set.Register(Descriptor{Digest: digest, RequiresPreactivation: true}, nil)

	state := NewProtocolState()
	_, err := state.ActivateRequested(set, chain.IdentifierList{digest})
	require.Error(t, err)
	require.True(t, chain.IsProtocolFeatureBadBlockError(err))
}

func TestDisabledFeatureFails(t *testing.T) {
	set := NewSet()
	digest := chain.MakeID("disabled-feature")
	set.Register(Descriptor{Digest: digest, Disabled: true}, nil)

	state := NewProtocolState()
	err := state.PreactivateFeature(set, digest, 0, false)
	require.Error(t, err)
	require.True(t, chain.IsProtocolFeatureBadBlockError(err))
}
