package controller

import (
	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/stage"
)

// BlockLog is the append-only on-disk log of irreversible blocks (spec §6,
// out of scope: on-disk format; this is only the contract the core
// consumes).
type BlockLog interface {
	Head() (chain.Header, bool)
	FirstBlockNum() uint32
	ReadBlockByNum(n uint32) (*stage.CompletedBlock, error)
	Append(block *stage.CompletedBlock, packed []byte) error
	Reset(chainID chain.Identifier, firstBlockNum uint32) error
}

// ResourceLedger is the CPU/NET/RAM bookkeeping collaborator (spec §6,
// explicitly out of scope for this core beyond the call sites it drives).
type ResourceLedger interface {
	AddTransactionUsage(accounts []chain.Identifier, cpuUs, netBytes uint64, slot uint32) error
	AddPendingRAMUsage(account chain.Identifier, delta int64) error
	VerifyAccountRAMUsage(account chain.Identifier) error
	ProcessBlockUsage(blockNum uint32) error
	SetBlockParameters(cpuLimit, netLimit uint64)
	UpdateAccountUsage(accounts []chain.Identifier, blockNum uint32) error
}

// Authorization is the permission-graph evaluator (spec §6, explicitly out
// of scope beyond the contract below).
type Authorization interface {
	CheckAuthorization(actions []chain.Identifier, keys [][]byte, permissions []chain.Identifier, delay uint32, allowUnused bool) error
	CreatePermission(account, name chain.Identifier, parent chain.Identifier, threshold uint32) error
	GetPermission(account, name chain.Identifier) (chain.Identifier, error)
}
