package chain

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/sha3"
)

// IdentifierLen is the number of bytes in an Identifier.
const IdentifierLen = 32

// ZeroID is the zero-value identifier, used as the parent of genesis blocks.
var ZeroID Identifier

// Identifier represents a 32-byte unique identifier for an entity.
type Identifier [IdentifierLen]byte

// String returns the hex representation of the identifier.
func (id Identifier) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalJSON implements json.Marshaler by hex-encoding the identifier.
func (id Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON implements json.Unmarshaler by hex-decoding the identifier.
func (id *Identifier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := HexStringToIdentifier(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IsZero returns whether the identifier is the zero value.
func (id Identifier) IsZero() bool {
	return id == ZeroID
}

// HexStringToIdentifier converts a hex string to an Identifier.
func HexStringToIdentifier(s string) (Identifier, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ZeroID, fmt.Errorf("could not decode hex string: %w", err)
	}
	return ByteSliceToId(b)
}

// ByteSliceToId converts a byte slice to an Identifier, erroring if the
// length does not match IdentifierLen.
func ByteSliceToId(b []byte) (Identifier, error) {
	if len(b) != IdentifierLen {
		return ZeroID, fmt.Errorf("expected %d bytes, got %d", IdentifierLen, len(b))
	}
	var id Identifier
	copy(id[:], b)
	return id, nil
}

// IdentifierList is a list of identifiers, sortable in canonical order.
type IdentifierList []Identifier

// Len implements sort.Interface.
func (l IdentifierList) Len() int { return len(l) }

// Less implements sort.Interface using byte-wise comparison, matching the
// canonical ordering used for deterministic diffs and merkle leaf ordering.
func (l IdentifierList) Less(i, j int) bool {
	for k := 0; k < IdentifierLen; k++ {
		if l[i][k] != l[j][k] {
			return l[i][k] < l[j][k]
		}
	}
	return false
}

// Swap implements sort.Interface.
func (l IdentifierList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }

// MakeID generates an Identifier by CBOR-encoding the entity in canonical
// form and hashing the result. Used as the default ID()/Fingerprint scheme
// for value types throughout this module.
func MakeID(entity interface{}) Identifier {
	data, err := cbor.Marshal(entity)
	if err != nil {
		panic(fmt.Sprintf("could not CBOR-encode entity for ID computation: %v", err))
	}
	sum := sha3.Sum256(data)
	return Identifier(sum)
}
