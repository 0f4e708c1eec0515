package crypto

// DefaultProvider is the production Provider backed by golang.org/x/crypto's
// blake2b and btcsuite's secp256k1 recoverable-signature implementation.
type DefaultProvider struct{}

var _ Provider = DefaultProvider{}

func (DefaultProvider) Blake2bChain(chunks ...[]byte) [32]byte {
	return blake2bChain(chunks...)
}

func (DefaultProvider) Blake160(data []byte) [20]byte {
	return blake160(data)
}

func (DefaultProvider) RecoverPubkeyBlake160(sig [65]byte, msg [32]byte) ([20]byte, error) {
	pub, err := recoverCompact(sig, msg)
	if err != nil {
		return [20]byte{}, err
	}
	return blake160(pub.SerializeCompressed()), nil
}
