package chain

// QcLink captures a quorum-certificate claim relating a source block to a
// target block it certifies. Per spec §3: target_block_num <= source, with
// equality only at genesis.
type QcLink struct {
	SourceBlockNum uint32
	TargetBlockNum uint32
	IsStrong       bool
}

// QcClaim asserts that a quorum certificate of a given strength exists for
// a block. QcClaims are totally ordered by (BlockNum, IsStrong), with
// strong strictly greater than weak at equal BlockNum.
type QcClaim struct {
	BlockNum uint32
	IsStrong bool
}

// Less reports whether c is strictly less than other in the QcClaim total
// order: (block_num, is_strong) with strong > weak at equal block_num.
func (c QcClaim) Less(other QcClaim) bool {
	if c.BlockNum != other.BlockNum {
		return c.BlockNum < other.BlockNum
	}
	return !c.IsStrong && other.IsStrong
}

// LessEq reports whether c <= other in the QcClaim total order.
func (c QcClaim) LessEq(other QcClaim) bool {
	return c == other || c.Less(other)
}

// QuorumCertificate is the aggregated form of a supermajority of finalizer
// votes over a block. Cryptographic verification is delegated to a
// BLSVerifier (spec §1 treats crypto as opaque); this type only carries the
// data needed to describe and replay that verification.
type QuorumCertificate struct {
	BlockID       Identifier
	View          uint64
	Generation    uint64
	IsStrong      bool
	SignerBitset  []byte
	AggregatedSig []byte
}
