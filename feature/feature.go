// Package feature implements the two-phase protocol-feature preactivation
// and activation machinery from spec §4.5: preactivate_feature validates
// and records a digest, start_block consumes the preactivated list and
// moves digests into the activated set, and each built-in feature carries
// an idempotent activation handler.
package feature

import (
	"github.com/flow-consensus/ifcore/model/chain"
)

// Digest identifies a protocol feature by the hash of its specification.
type Digest = chain.Identifier

// Descriptor is a recognized protocol feature: its digest, the digests of
// features it depends on (which must already be active or preactivated),
// and an earliest
// activation block number below which it is "too early".
type Descriptor struct {
	Digest                Digest
	Dependencies          []Digest
	EarliestActivation    uint32
	Disabled              bool
	RequiresPreactivation bool
}

// ActivationHandler is the idempotent per-feature setup invoked the first
// time a feature activates. It must whitelist exactly the intrinsics the
// feature introduces and be safe to call more than once with no effect
// beyond the first (spec §4.5 "each built-in feature has an idempotent
// activation handler").
type ActivationHandler func() error

// Set is the recognized, known universe of protocol features this
// controller build understands, keyed by digest.
type Set struct {
	descriptors map[Digest]Descriptor
	handlers    map[Digest]ActivationHandler
}

// NewSet creates an empty feature set.
func NewSet() *Set {
	return &Set{
		descriptors: map[Digest]Descriptor{},
		handlers:    map[Digest]ActivationHandler{},
	}
}

// Register adds a recognized feature with its activation handler.
func (s *Set) Register(d Descriptor, handler ActivationHandler) {
	s.descriptors[d.Digest] = d
	s.handlers[d.Digest] = handler
}

// Lookup returns the descriptor for digest, and whether it is recognized.
func (s *Set) Lookup(digest Digest) (Descriptor, bool) {
	d, ok := s.descriptors[digest]
	return d, ok
}

// ProtocolState tracks the preactivated and activated feature sets for one
// chain.
type ProtocolState struct {
	preactivated map[Digest]bool
	activated    map[Digest]bool
}

// NewProtocolState creates an empty protocol state with no preactivated or
// activated features.
func NewProtocolState() *ProtocolState {
	return &ProtocolState{
		preactivated: map[Digest]bool{},
		activated:    map[Digest]bool{},
	}
}

// IsActivated reports whether digest is in the activated set.
func (p *ProtocolState) IsActivated(digest Digest) bool {
	return p.activated[digest]
}

// PreactivatedDigests returns the current preactivated list, matching
// get_preactivated_protocol_features (spec §6).
func (p *ProtocolState) PreactivatedDigests() chain.IdentifierList {
	out := make(chain.IdentifierList, 0, len(p.preactivated))
	for d := range p.preactivated {
		out = append(out, d)
	}
	return out
}

// PreactivateFeature validates digest against set and the current protocol
// state and, on success, records it in the preactivated list.
//
// Failure modes (spec §4.5, §7): unknown digest, disabled digest, digest
// whose dependencies are not yet active, double preactivation. During
// validation (speculate=false) these reject; during speculation
// (speculate=true) they are downgraded to subjective per spec §7 — the
// caller decides which by inspecting the returned error's kind.
func (p *ProtocolState) PreactivateFeature(set *Set, digest Digest, currentBlockNum uint32, speculate bool) error {
	d, ok := set.Lookup(digest)
	if !ok {
		return classify(chain.NewProtocolFeatureBadBlockErrorf("unrecognized protocol feature digest %s", digest), speculate)
	}
	if d.Disabled {
		return classify(chain.NewProtocolFeatureBadBlockErrorf("protocol feature %s is disabled", digest), speculate)
	}
	if currentBlockNum < d.EarliestActivation {
		return classify(chain.NewProtocolFeatureBadBlockErrorf("protocol feature %s preactivated too early at block %d (earliest %d)", digest, currentBlockNum, d.EarliestActivation), speculate)
	}
	for _, dep := range d.Dependencies {
		if !p.activated[dep] && !p.preactivated[dep] {
			return classify(chain.NewProtocolFeatureBadBlockErrorf("protocol feature %s depends on unsatisfied feature %s", digest, dep), speculate)
		}
	}
	if p.preactivated[digest] {
		return classify(chain.NewProtocolFeatureBadBlockErrorf("protocol feature %s already preactivated", digest), speculate)
	}
	if p.activated[digest] {
		return classify(chain.NewProtocolFeatureBadBlockErrorf("protocol feature %s already activated", digest), speculate)
	}

	p.preactivated[digest] = true
	return nil
}

// ActivatePending consumes the preactivated list at start_block, moving
// every entry into the activated set and invoking its activation handler.
// Returns the newly activated digests, in no particular order.
func (p *ProtocolState) ActivatePending(set *Set) (chain.IdentifierList, error) {
	var newlyActivated chain.IdentifierList
	for digest := range p.preactivated {
		if p.activated[digest] {
			// Double activation: drop silently from the pending set, the
			// way a no-op idempotent handler would behave.
			delete(p.preactivated, digest)
			continue
		}
		handler := set.handlers[digest]
		if handler != nil {
			if err := handler(); err != nil {
				return nil, chain.NewProtocolFeatureBadBlockErrorf("activation handler for %s failed: %w", digest, err)
			}
		}
		p.activated[digest] = true
		newlyActivated = append(newlyActivated, digest)
		delete(p.preactivated, digest)
	}
	return newlyActivated, nil
}

// ActivateRequested implements start_block's feature-activation step
// (spec §4.4): requested must account for every digest currently
// preactivated (every pending preactivation is either in requested or the
// call fails), and any digest in requested that was not preactivated must
// not require preactivation. On success every preactivated digest moves to
// activated via its handler, matching controller.cpp's
// handled_all_preactivated_features check.
func (p *ProtocolState) ActivateRequested(set *Set, requested chain.IdentifierList) (chain.IdentifierList, error) {
	requestedSet := map[Digest]bool{}
	for _, digest := range requested {
		requestedSet[digest] = true

		if !p.preactivated[digest] {
			d, ok := set.Lookup(digest)
			if !ok {
				return nil, chain.NewProtocolFeatureBadBlockErrorf("attempted to activate unrecognized protocol feature %s", digest)
			}
			if d.RequiresPreactivation {
				return nil, chain.NewProtocolFeatureBadBlockErrorf("attempted to activate protocol feature %s without prior required preactivation", digest)
			}
			if p.activated[digest] {
				return nil, chain.NewProtocolFeatureBadBlockErrorf("attempted duplicate activation of %s within a single block", digest)
			}
			p.preactivated[digest] = true
		}
	}

	for digest := range p.preactivated {
		if !requestedSet[digest] {
			return nil, chain.NewProtocolFeatureBadBlockErrorf("pre-activated protocol feature %s was not activated at the start of this block", digest)
		}
	}

	return p.ActivatePending(set)
}

// classify returns the failure unchanged during validation; during
// speculation a protocol-feature-bad-block failure is downgraded to a
// transaction-subjective-style failure so speculative block building can
// continue without rejecting the whole block (spec §4.5, §7).
func classify(err error, speculate bool) error {
	if !speculate {
		return err
	}
	return chain.NewTransactionSubjectiveErrorf(chain.ZeroID, "protocol feature preactivation downgraded to subjective: %v", err)
}
