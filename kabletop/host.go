package kabletop

import "errors"

// Source names which of the transaction's cell/witness lists a load call
// addresses.
type Source int

const (
	SourceInput      Source = iota // regular transaction inputs
	SourceOutput                   // transaction outputs
	SourceCellDep                  // cell dependencies
	SourceGroupInput                // inputs belonging to the currently-running script's group (always just the one battle cell here)
)

// ErrIndexOutOfBound is the sentinel the host VM syscalls return once an
// iteration (over cells, witnesses, ...) runs past the end of its list.
var ErrIndexOutOfBound = errors.New("kabletop: index out of bound")

// ChainContext is the narrow set of host VM syscalls the verifier consumes.
// It is passed explicitly into every component — never a package-level
// singleton — so a real CKB-VM binding, a simulator, or a test fixture can
// all implement it identically.
type ChainContext interface {
	// LoadScript returns the currently running script's own serialized
	// bytes (Script{code_hash, hash_type, args}).
	LoadScript() ([]byte, error)

	// LoadScriptHash returns the blake2b-256 hash of the currently running
	// script, used to derive the replay engine's one-time context-setup
	// PRNG seed.
	LoadScriptHash() ([32]byte, error)

	// LoadCellLockHash returns the blake2b-256 hash of the lock script of
	// the cell at index in source.
	LoadCellLockHash(source Source, index int) ([32]byte, error)

	// LoadCellLock returns the full serialized lock script of the cell at
	// index in source.
	LoadCellLock(source Source, index int) ([]byte, error)

	// LoadCellCapacity returns the capacity field of the cell at index in
	// source.
	LoadCellCapacity(source Source, index int) (uint64, error)

	// LoadCellData returns the raw data bytes of the cell at index in
	// source.
	LoadCellData(source Source, index int) ([]byte, error)

	// LoadWitness returns the raw witness bytes (a WitnessArgs table) at
	// index in source.
	LoadWitness(source Source, index int) ([]byte, error)

	// LoadInputSince returns the `since` field of the group input (always
	// index 0 of SourceGroupInput — a battle cell is always the sole input
	// of its script group).
	LoadInputSince() (uint64, error)

	// InputsLen returns the number of regular transaction inputs, used as
	// the offset at which the per-round witnesses begin.
	InputsLen() (int, error)

	// GroupInputSighashMessage returns the canonical secp256k1 sighash
	// digest covering the input group (witnesses zeroed-lock, tx-hash +
	// witness digest), computed by the host's sighash convention library.
	GroupInputSighashMessage() ([32]byte, error)

	// GroupInputLockSignature returns the 65-byte compact signature placed
	// in the group input's own unlocking witness lock field — the
	// signature that GroupInputSighashMessage is checked against.
	GroupInputLockSignature() ([65]byte, error)

	// Debug logs a diagnostic string to the host VM's debug channel.
	Debug(msg string)
}
