package controller

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/flow-consensus/ifcore/finality"
	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/stage"
	"github.com/flow-consensus/ifcore/store"
)

const snapshotVersion = uint32(1)

// snapshotSectionOrder lists, in the fixed order spec §6's "Persisted
// state layout" requires, every section after the two this core owns.
// Each belongs entirely to an out-of-scope external collaborator
// (accounts, contract tables, authorization, resource limits, ...); the
// core only calls WriteSection/ReadSection for them in the right order, it
// never has the bytes to produce or consume.
var snapshotSectionOrder = []string{
	"accounts",
	"account_metadata",
	"global_property",
	"protocol_state",
	"dynamic_global_property",
	"block_summary",
	"transaction",
	"generated_transaction",
	"code",
	"contract_tables",
	"authorization",
	"resource_limits",
}

// SnapshotWriter is the out-of-scope collaborator write_snapshot drives:
// two sections the core produces itself (chain_snapshot_header,
// block_header_state), and a fixed-order sequence of named sections the
// collaborator fills in from state this core doesn't own.
type SnapshotWriter interface {
	WriteChainSnapshotHeader(data []byte) error
	WriteBlockHeaderState(data []byte) error
	WriteSection(name string) error
}

// SnapshotReader is SnapshotWriter's read-side counterpart, used only by
// extract_chain_id to recover the chain id from a previously written
// snapshot without replaying the whole thing.
type SnapshotReader interface {
	ReadChainSnapshotHeader() ([]byte, error)
}

type chainSnapshotHeader struct {
	Version uint32
	ChainID chain.Identifier
}

type blockHeaderStateSection struct {
	Header    chain.Header
	Signature []byte
	IFState   *finality.MinimalState
}

// WriteSnapshot serializes the controller's owned state (chain id, version,
// head block header and signature) into writer's first two sections, then
// walks the remaining out-of-scope sections in the fixed order spec §6
// requires, letting the collaborator fill each in.
func (c *Controller) WriteSnapshot(writer SnapshotWriter) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	headerBytes, err := cbor.Marshal(chainSnapshotHeader{Version: snapshotVersion, ChainID: c.chainID})
	if err != nil {
		return fmt.Errorf("write_snapshot: encode chain_snapshot_header: %w", err)
	}
	if err := writer.WriteChainSnapshotHeader(headerBytes); err != nil {
		return fmt.Errorf("write_snapshot: %w", err)
	}

	headNode, err := c.forkDB.Get(c.forkDB.Head())
	if err != nil {
		return fmt.Errorf("write_snapshot: %w", err)
	}
	section := blockHeaderStateSection{Header: headNode.Header}
	if cb, ok := headNode.Payload.(*stage.CompletedBlock); ok {
		section.Signature = cb.Signature
		if cb.IFExt != nil {
			section.IFState = &cb.IFExt.State
		}
	}
	blockBytes, err := cbor.Marshal(section)
	if err != nil {
		return fmt.Errorf("write_snapshot: encode block_header_state: %w", err)
	}
	if err := writer.WriteBlockHeaderState(blockBytes); err != nil {
		return fmt.Errorf("write_snapshot: %w", err)
	}

	for _, name := range snapshotSectionOrder {
		if err := writer.WriteSection(name); err != nil {
			return fmt.Errorf("write_snapshot: section %q: %w", name, err)
		}
	}
	return nil
}

// CalculateIntegrityHash returns a 32-byte digest over the two sections
// this core owns (chain_snapshot_header, block_header_state). The
// remaining sections belong to collaborators outside this core's scope
// and are not covered by this hash; a full cross-process integrity check
// must combine it with whatever hash those collaborators compute over
// their own sections.
func (c *Controller) CalculateIntegrityHash() ([32]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := sha256.New()
	headerBytes, err := cbor.Marshal(chainSnapshotHeader{Version: snapshotVersion, ChainID: c.chainID})
	if err != nil {
		return [32]byte{}, err
	}
	h.Write(headerBytes)

	headNode, err := c.forkDB.Get(c.forkDB.Head())
	if err != nil {
		return [32]byte{}, err
	}
	blockBytes, err := cbor.Marshal(blockHeaderStateSection{Header: headNode.Header})
	if err != nil {
		return [32]byte{}, err
	}
	h.Write(blockBytes)

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// ExtractChainID reads just the chain_snapshot_header section from reader
// and returns the chain id it carries, without touching any other
// section.
func ExtractChainID(reader SnapshotReader) (chain.Identifier, error) {
	data, err := reader.ReadChainSnapshotHeader()
	if err != nil {
		return chain.ZeroID, fmt.Errorf("extract_chain_id: %w", err)
	}
	var hdr chainSnapshotHeader
	if err := cbor.Unmarshal(data, &hdr); err != nil {
		return chain.ZeroID, fmt.Errorf("extract_chain_id: decode chain_snapshot_header: %w", err)
	}
	return hdr.ChainID, nil
}

// chainIDKey is the reserved state-store key NewController writes the
// chain id under at genesis, so extract_chain_id_from_db can recover it
// without replaying the block log.
var chainIDKey = []byte("__chain_id__")

// ExtractChainIDFromDB opens the badger database at stateDir read-only
// just long enough to recover the chain id recorded at genesis, matching
// spec §6's extract_chain_id_from_db.
func ExtractChainIDFromDB(stateDir string) (chain.Identifier, error) {
	s, err := store.NewBadgerStore(stateDir, 0)
	if err != nil {
		return chain.ZeroID, fmt.Errorf("extract_chain_id_from_db: %w", err)
	}
	defer s.Close()

	raw, err := s.Get(chainIDKey)
	if err != nil {
		return chain.ZeroID, fmt.Errorf("extract_chain_id_from_db: %w", err)
	}
	return chain.ByteSliceToId(raw)
}
