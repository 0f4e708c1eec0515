// Package crypto is the narrow cryptographic surface the kabletop verifier
// consumes: a blake2b-256 rolling hash (no personalization), blake160 key
// hashing (first 20 bytes of blake2b-256), and secp256k1 compact-signature
// recovery. Kept as an interface, not package-level functions, so the
// verifier's callers can swap in a hardware/VM-native implementation
// without touching kabletop itself.
package crypto

// Provider is the crypto interface used by the kabletop verifier.
type Provider interface {
	// Blake2bChain runs blake2b-256 (empty personalization) over the
	// concatenation of chunks, in order, without an intermediate copy.
	Blake2bChain(chunks ...[]byte) [32]byte

	// Blake160 returns the first 20 bytes of Blake2bChain(data).
	Blake160(data []byte) [20]byte

	// RecoverPubkeyBlake160 recovers the compressed public key from a
	// 65-byte compact secp256k1 signature (64-byte r||s plus a 1-byte
	// recovery id) over msg, then returns its blake160 hash.
	RecoverPubkeyBlake160(sig [65]byte, msg [32]byte) ([20]byte, error)
}
