package stage

import (
	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/policy"
)

// ProducerSlot is one entry in a ProducerView: a key authorized to produce
// (DPoS) or sign (IF, restated from a finalizer key) blocks, with its
// relative weight.
type ProducerSlot struct {
	ProducerID chain.Identifier
	Weight     uint64
}

// ProducerView is an ordered schedule of producer slots, the common shape
// both regimes expose through active_producers/pending_producers/
// proposed_producers (spec §6).
type ProducerView struct {
	Generation uint64
	Slots      []ProducerSlot
}

// PendingProducersForIF resolves spec §9's open question: the IF regime
// has no separate pending-producer mempool the way DPoS does (a proposed
// schedule promoted to pending after enough confirmations); instead its
// "pending producers" getter restates the active FinalizerPolicy as one
// producer slot per finalizer key, weighted by the finalizer's voting
// weight. Source: instant_finality_core.cpp carries no producer-schedule
// concept at all, so this is derived from the policy the way the
// surrounding controller.cpp code derives DPoS active_producers from the
// active producer schedule.
func PendingProducersForIF(activePolicy policy.Policy) ProducerView {
	slots := make([]ProducerSlot, len(activePolicy.Finalizers))
	for i, f := range activePolicy.Finalizers {
		slots[i] = ProducerSlot{
			ProducerID: chain.MakeID(f.PublicKey),
			Weight:     f.Weight,
		}
	}
	return ProducerView{Generation: activePolicy.Generation, Slots: slots}
}

// TotalWeight returns the sum of all slot weights.
func (v ProducerView) TotalWeight() uint64 {
	var total uint64
	for _, s := range v.Slots {
		total += s.Weight
	}
	return total
}

// AuthorityThresholds computes the three named thresholds over a producer
// view's total weight (spec §4.4): active (⌈2N/3⌉+1), majority (⌈N/2⌉+1),
// minority (⌈N/3⌉+1).
type AuthorityThresholds struct {
	Active   uint64
	Majority uint64
	Minority uint64
}

// ComputeAuthorityThresholds derives the three permission thresholds from
// totalWeight, using ceiling division throughout.
func ComputeAuthorityThresholds(totalWeight uint64) AuthorityThresholds {
	return AuthorityThresholds{
		Active:   (2*totalWeight+2)/3 + 1,
		Majority: (totalWeight+1)/2 + 1,
		Minority: (totalWeight+2)/3 + 1,
	}
}
