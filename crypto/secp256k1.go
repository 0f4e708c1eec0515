package crypto

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Wire layout of the 65-byte compact signature this verifier consumes:
// sig[0:32] = r, sig[32:64] = s, sig[64] = recovery id (0..3). This is the
// CKB secp256k1 lock convention; btcec's RecoverCompact expects a leading
// header byte instead, so recoverCompact translates between the two.
const compactSigRecoveryIDOffset = 64

func recoverCompact(sig [65]byte, msg [32]byte) (*btcec.PublicKey, error) {
	recID := sig[compactSigRecoveryIDOffset]
	if recID > 3 {
		return nil, fmt.Errorf("crypto: invalid recovery id %d", recID)
	}
	// header byte: 27 (uncompressed base) + 4 (compressed-key flag) + recid,
	// matching btcec's compact-signature convention.
	btcecSig := make([]byte, 65)
	btcecSig[0] = 27 + 4 + recID
	copy(btcecSig[1:33], sig[0:32])
	copy(btcecSig[33:65], sig[32:64])

	pub, _, err := ecdsa.RecoverCompact(btcecSig, msg[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: secp256k1 recover: %w", err)
	}
	return pub, nil
}
