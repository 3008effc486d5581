// Package finality implements the per-block immutable finality core used
// by the Instant-Finality (HotStuff two-chain) consensus regime: a sliding
// window of QC links and block references from which the two derived
// pointers final_on_strong_qc_block_num and last_final_block_num are
// recomputed on every block.
package finality

import (
	"fmt"

	"github.com/flow-consensus/ifcore/model/chain"
)

// Core is the finality state carried by a block: the QC link chain, the
// window of block references covering unfinalized ancestors, and the
// derived final_on_strong_qc_block_num pointer. See spec §3/§4.1 for the
// nine invariants this type maintains across every Next() call.
type Core struct {
	// Links captures all relevant QC links, ascending by SourceBlockNum.
	Links []chain.QcLink
	// Refs covers ancestor blocks with block numbers >= LastFinalBlockNum,
	// ascending by BlockNum.
	Refs []chain.BlockRef
	// FinalOnStrongQCBlockNum is the highest block number known to have a
	// strong QC pointed at it, directly or transitively.
	FinalOnStrongQCBlockNum uint32
}

// CreateCoreForGenesisBlock returns the unique Core satisfying all nine
// invariants for a genesis block at blockNum, with
// FinalOnStrongQCBlockNum == LastFinalBlockNum == blockNum.
func CreateCoreForGenesisBlock(blockNum uint32) Core {
	return Core{
		Links: []chain.QcLink{{
			SourceBlockNum: blockNum,
			TargetBlockNum: blockNum,
			IsStrong:       false,
		}},
		Refs:                    nil,
		FinalOnStrongQCBlockNum: blockNum,
	}
}

// CurrentBlockNum returns the block number this core was computed for.
func (c Core) CurrentBlockNum() uint32 {
	if len(c.Links) == 0 {
		panic("finality core invariant violated: links must not be empty")
	}
	return c.Links[len(c.Links)-1].SourceBlockNum
}

// LastFinalBlockNum returns the highest block number known to be final.
func (c Core) LastFinalBlockNum() uint32 {
	if len(c.Links) == 0 {
		panic("finality core invariant violated: links must not be empty")
	}
	return c.Links[0].TargetBlockNum
}

// LatestQCClaim returns the most recent QC claim recorded in the link chain.
func (c Core) LatestQCClaim() chain.QcClaim {
	last := c.Links[len(c.Links)-1]
	return chain.QcClaim{BlockNum: last.TargetBlockNum, IsStrong: last.IsStrong}
}

// GetBlockReference returns the block reference for blockNum.
//
// Preconditions: LastFinalBlockNum() <= blockNum < CurrentBlockNum().
func (c Core) GetBlockReference(blockNum uint32) chain.BlockRef {
	lastFinal := c.LastFinalBlockNum()
	if blockNum < lastFinal || blockNum >= c.CurrentBlockNum() {
		panic(fmt.Sprintf("GetBlockReference precondition violated: %d not in [%d, %d)", blockNum, lastFinal, c.CurrentBlockNum()))
	}
	refIndex := blockNum - lastFinal
	if int(refIndex) >= len(c.Refs) {
		panic(fmt.Sprintf("finality core invariant violated: ref index %d out of range (%d refs)", refIndex, len(c.Refs)))
	}
	return c.Refs[refIndex]
}

// GetQCLinkFrom returns the QC link whose SourceBlockNum equals blockNum.
//
// Preconditions: Links[0].SourceBlockNum <= blockNum <= CurrentBlockNum().
func (c Core) GetQCLinkFrom(blockNum uint32) chain.QcLink {
	first := c.Links[0].SourceBlockNum
	if blockNum < first || blockNum > c.CurrentBlockNum() {
		panic(fmt.Sprintf("GetQCLinkFrom precondition violated: %d not in [%d, %d]", blockNum, first, c.CurrentBlockNum()))
	}
	linkIndex := blockNum - first
	if int(linkIndex) >= len(c.Links) {
		panic(fmt.Sprintf("finality core invariant violated: link index %d out of range (%d links)", linkIndex, len(c.Links)))
	}
	return c.Links[linkIndex]
}

// Next computes the finality core for the block immediately following
// currentBlock, incorporating a newly observed QC claim for one of its
// ancestors (or itself).
//
// Preconditions (fatal/programming errors if violated, per spec §4.1):
//   - currentBlock.BlockNum() == c.CurrentBlockNum()
//   - if c.Refs is non-empty: c.Refs[last].BlockNum()+1 == currentBlock.BlockNum()
//     and c.Refs[last].Timestamp < currentBlock.Timestamp
//   - c.LatestQCClaim() <= mostRecentAncestorWithQC <= (c.CurrentBlockNum(), strong)
func (c Core) Next(currentBlock chain.BlockRef, mostRecentAncestorWithQC chain.QcClaim) Core {
	currentBlockNum := c.CurrentBlockNum()
	if currentBlock.BlockNum() != currentBlockNum {
		panic(fmt.Sprintf("Next precondition violated: current block num %d != core's current block num %d", currentBlock.BlockNum(), currentBlockNum))
	}
	if len(c.Refs) > 0 {
		last := c.Refs[len(c.Refs)-1]
		if last.BlockNum()+1 != currentBlock.BlockNum() {
			panic("Next precondition violated: current block does not immediately follow last ref")
		}
		if !last.Timestamp.Before(currentBlock.Timestamp) {
			panic("Next precondition violated: current block timestamp does not strictly increase")
		}
	}
	if mostRecentAncestorWithQC.BlockNum > currentBlockNum {
		panic("Next precondition violated: most recent ancestor with QC is beyond current block")
	}
	if !c.LatestQCClaim().LessEq(mostRecentAncestorWithQC) {
		panic("Next precondition violated: most recent ancestor with QC claim regresses")
	}

	newLastFinal, newFinalOnStrongQC := c.nextFinalBlockNums(mostRecentAncestorWithQC)

	next := Core{FinalOnStrongQCBlockNum: newFinalOnStrongQC}

	// Garbage-collect links whose source predates the new
	// final-on-strong-qc pointer, then append the new link.
	linksIndex := uint32(0)
	lastFinal := c.LastFinalBlockNum()
	if lastFinal < newLastFinal {
		linksIndex = newFinalOnStrongQC - c.Links[0].SourceBlockNum
	}
	next.Links = append(next.Links, c.Links[linksIndex:]...)
	next.Links = append(next.Links, chain.QcLink{
		SourceBlockNum: currentBlockNum + 1,
		TargetBlockNum: mostRecentAncestorWithQC.BlockNum,
		IsStrong:       mostRecentAncestorWithQC.IsStrong,
	})

	// Garbage-collect refs older than the new last-final pointer, then
	// append the current block as the newest reference.
	refsIndex := newLastFinal - lastFinal
	next.Refs = append(next.Refs, c.Refs[refsIndex:]...)
	next.Refs = append(next.Refs, currentBlock)

	return next
}

// nextFinalBlockNums implements the case analysis from spec §4.1 / the
// original core::next's new_block_nums lambda.
func (c Core) nextFinalBlockNums(claim chain.QcClaim) (newLastFinal, newFinalOnStrongQC uint32) {
	lastFinal := c.LastFinalBlockNum()
	finalOnStrongQC := c.FinalOnStrongQCBlockNum

	if !claim.IsStrong {
		return lastFinal, finalOnStrongQC
	}
	if claim.BlockNum < c.Links[0].SourceBlockNum {
		return lastFinal, finalOnStrongQC
	}

	link1 := c.GetQCLinkFrom(claim.BlockNum)
	if !link1.IsStrong {
		return lastFinal, link1.TargetBlockNum
	}
	if link1.TargetBlockNum < c.Links[0].SourceBlockNum {
		return lastFinal, link1.TargetBlockNum
	}

	link2 := c.GetQCLinkFrom(link1.TargetBlockNum)
	return link2.TargetBlockNum, link1.TargetBlockNum
}
