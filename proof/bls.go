package proof

import (
	"fmt"
	"math/big"

	"github.com/luxfi/crypto/bls"

	"github.com/flow-consensus/ifcore/model/chain"
	"github.com/flow-consensus/ifcore/policy"
)

// BLSVerifier is the cryptography collaborator this verifier consumes
// (spec §1 treats BLS aggregate verification as opaque). The production
// implementation wraps github.com/luxfi/crypto/bls, the aggregate
// BLS12-381 library the pack's vms/platformvm/warp quorum-certificate
// verifier is built on, which the bitset-subset-aggregate-verify procedure
// below is grounded on.
type BLSVerifier interface {
	// VerifyAggregate verifies that sig is a valid BLS aggregate signature
	// by the given public keys over msg.
	VerifyAggregate(publicKeys []policy.FinalizerKey, sig []byte, msg chain.Identifier) error
}

// blsVerifier is the production BLSVerifier backed by luxfi/crypto/bls.
type blsVerifier struct{}

// NewBLSVerifier returns the production BLS aggregate verifier.
func NewBLSVerifier() BLSVerifier { return blsVerifier{} }

func (blsVerifier) VerifyAggregate(publicKeys []policy.FinalizerKey, sigBytes []byte, msg chain.Identifier) error {
	pks := make([]*bls.PublicKey, 0, len(publicKeys))
	for _, raw := range publicKeys {
		pk, err := bls.PublicKeyFromCompressedBytes(raw)
		if err != nil {
			return fmt.Errorf("could not parse finalizer public key: %w", err)
		}
		pks = append(pks, pk)
	}

	aggPubKey, err := bls.AggregatePublicKeys(pks)
	if err != nil {
		return fmt.Errorf("could not aggregate finalizer public keys: %w", err)
	}

	sig, err := bls.SignatureFromBytes(sigBytes)
	if err != nil {
		return fmt.Errorf("could not parse aggregate signature: %w", err)
	}

	if !bls.Verify(aggPubKey, sig, msg[:]) {
		return fmt.Errorf("BLS aggregate signature verification failed")
	}
	return nil
}

// SelectSigners filters policy down to the subset indicated by bitset,
// the set.Bits-style big-endian bit vector warp's BitSetSignature.Verify
// parses, and returns the selected finalizers plus their summed weight.
func SelectSigners(pol policy.Policy, bitset []byte) ([]policy.Finalizer, uint64, error) {
	var selected []policy.Finalizer
	var weight uint64
	for i, f := range pol.Finalizers {
		byteIndex := i / 8
		if byteIndex >= len(bitset) {
			continue
		}
		bitIndex := 7 - uint(i%8)
		if bitset[byteIndex]&(1<<bitIndex) != 0 {
			selected = append(selected, f)
			weight += f.Weight
		}
	}
	return selected, weight, nil
}

// VerifyWeight reports whether sigWeight is at least quorumNum/quorumDen
// of totalWeight, using the same integer-overflow-safe
// quorumNum*totalWeight <= quorumDen*sigWeight check as warp's
// VerifyWeight.
func VerifyWeight(sigWeight, totalWeight, quorumNum, quorumDen uint64) bool {
	lhs := new(big.Int).Mul(new(big.Int).SetUint64(totalWeight), new(big.Int).SetUint64(quorumNum))
	rhs := new(big.Int).Mul(new(big.Int).SetUint64(sigWeight), new(big.Int).SetUint64(quorumDen))
	return lhs.Cmp(rhs) <= 0
}
