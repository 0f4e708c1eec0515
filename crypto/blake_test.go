package crypto

import "testing"

func TestBlake2bChainIsOrderSensitive(t *testing.T) {
	a := blake2bChain([]byte("foo"), []byte("bar"))
	b := blake2bChain([]byte("foobar"))
	if a != b {
		t.Fatalf("expected chained chunks to hash identically to their concatenation: %x vs %x", a, b)
	}

	c := blake2bChain([]byte("bar"), []byte("foo"))
	if a == c {
		t.Fatal("expected chunk order to change the digest")
	}
}

func TestBlake160IsPrefixOfBlake2b256(t *testing.T) {
	full := blake2bChain([]byte("hello kabletop"))
	short := blake160([]byte("hello kabletop"))
	if short != [20]byte(full[:20]) {
		t.Fatalf("blake160 is not the first 20 bytes of blake2bChain")
	}
}

func TestBlake2bChainDeterministic(t *testing.T) {
	a := blake2bChain([]byte("x"), []byte("y"), []byte("z"))
	b := blake2bChain([]byte("x"), []byte("y"), []byte("z"))
	if a != b {
		t.Fatal("expected identical inputs to produce identical digests")
	}
}
