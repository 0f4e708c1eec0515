package crypto

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

func TestRecoverCompactRoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	var msg [32]byte
	msg[0] = 0xab

	btcecSig := ecdsa.SignCompact(priv, msg[:], true)
	var sig [65]byte
	recID := btcecSig[0] - 27 - 4
	copy(sig[0:32], btcecSig[1:33])
	copy(sig[32:64], btcecSig[33:65])
	sig[64] = recID

	pub, err := recoverCompact(sig, msg)
	if err != nil {
		t.Fatalf("recoverCompact: %v", err)
	}
	if !pub.IsEqual(priv.PubKey()) {
		t.Fatal("recovered public key does not match the signer")
	}
}

func TestRecoverCompactRejectsInvalidRecoveryID(t *testing.T) {
	var sig [65]byte
	sig[64] = 4 // only 0..3 are valid
	var msg [32]byte
	if _, err := recoverCompact(sig, msg); err == nil {
		t.Fatal("expected invalid recovery id to be rejected")
	}
}

func TestDefaultProviderRecoverPubkeyBlake160(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	var msg [32]byte
	msg[5] = 0x42

	btcecSig := ecdsa.SignCompact(priv, msg[:], true)
	var sig [65]byte
	recID := btcecSig[0] - 27 - 4
	copy(sig[0:32], btcecSig[1:33])
	copy(sig[32:64], btcecSig[33:65])
	sig[64] = recID

	p := DefaultProvider{}
	got, err := p.RecoverPubkeyBlake160(sig, msg)
	if err != nil {
		t.Fatalf("RecoverPubkeyBlake160: %v", err)
	}
	want := p.Blake160(priv.PubKey().SerializeCompressed())
	if got != want {
		t.Fatalf("pkhash mismatch: got %x want %x", got, want)
	}
}
