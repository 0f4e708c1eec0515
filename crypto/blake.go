package crypto

import "golang.org/x/crypto/blake2b"

func blake2bChain(chunks ...[]byte) [32]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only errors on an oversized key, and we never
		// pass one; a failure here means the blake2b package is broken.
		panic("crypto: blake2b.New256: " + err.Error())
	}
	for _, c := range chunks {
		h.Write(c) //nolint:errcheck // hash.Hash.Write never errors
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func blake160(data []byte) [20]byte {
	full := blake2bChain(data)
	var out [20]byte
	copy(out[:], full[:20])
	return out
}
