package controller

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/flow-consensus/ifcore/stage"
)

// cborMarshal is the controller's own block-log wire encoding, matching
// model/chain.MakeID's choice of CBOR for every other canonical encoding
// in this module.
func cborMarshal(b *stage.CompletedBlock) ([]byte, error) {
	return cbor.Marshal(b)
}
