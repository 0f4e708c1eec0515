package kabletop

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/softprodev/ckb-nft-kabletop/crypto"
	"github.com/softprodev/ckb-nft-kabletop/script"
)

// fakeChainContext is an in-memory ChainContext used by this package's
// tests to build synthetic transactions without a real host VM.
type fakeChainContext struct {
	script     []byte
	scriptHash [32]byte

	outputLockHashes [][32]byte
	outputLocks      [][]byte
	outputCapacities []uint64
	outputData       [][]byte

	groupInputLockHash [32]byte
	groupInputCapacity uint64
	groupInputData     []byte

	cellDepData [][]byte

	witnesses [][]byte
	inputsLen int

	since        uint64
	sighashMsg   [32]byte
	sighashSig   [65]byte

	debugLog []string
}

func (c *fakeChainContext) LoadScript() ([]byte, error) { return c.script, nil }

func (c *fakeChainContext) LoadScriptHash() ([32]byte, error) { return c.scriptHash, nil }

func (c *fakeChainContext) LoadCellLockHash(source Source, index int) ([32]byte, error) {
	switch source {
	case SourceGroupInput:
		if index != 0 {
			return [32]byte{}, ErrIndexOutOfBound
		}
		return c.groupInputLockHash, nil
	case SourceOutput:
		if index < 0 || index >= len(c.outputLockHashes) {
			return [32]byte{}, ErrIndexOutOfBound
		}
		return c.outputLockHashes[index], nil
	default:
		return [32]byte{}, fmt.Errorf("unsupported source")
	}
}

func (c *fakeChainContext) LoadCellLock(source Source, index int) ([]byte, error) {
	if source != SourceOutput {
		return nil, fmt.Errorf("unsupported source")
	}
	if index < 0 || index >= len(c.outputLocks) {
		return nil, ErrIndexOutOfBound
	}
	return c.outputLocks[index], nil
}

func (c *fakeChainContext) LoadCellCapacity(source Source, index int) (uint64, error) {
	switch source {
	case SourceGroupInput:
		if index != 0 {
			return 0, ErrIndexOutOfBound
		}
		return c.groupInputCapacity, nil
	case SourceOutput:
		if index < 0 || index >= len(c.outputCapacities) {
			return 0, ErrIndexOutOfBound
		}
		return c.outputCapacities[index], nil
	default:
		return 0, fmt.Errorf("unsupported source")
	}
}

func (c *fakeChainContext) LoadCellData(source Source, index int) ([]byte, error) {
	switch source {
	case SourceGroupInput:
		if index != 0 {
			return nil, ErrIndexOutOfBound
		}
		return c.groupInputData, nil
	case SourceOutput:
		if index < 0 || index >= len(c.outputData) {
			return nil, ErrIndexOutOfBound
		}
		return c.outputData[index], nil
	case SourceCellDep:
		if index < 0 || index >= len(c.cellDepData) {
			return nil, ErrIndexOutOfBound
		}
		return c.cellDepData[index], nil
	default:
		return nil, fmt.Errorf("unsupported source")
	}
}

func (c *fakeChainContext) LoadWitness(source Source, index int) ([]byte, error) {
	if source != SourceInput {
		return nil, fmt.Errorf("unsupported source")
	}
	if index < 0 || index >= len(c.witnesses) {
		return nil, ErrIndexOutOfBound
	}
	return c.witnesses[index], nil
}

func (c *fakeChainContext) LoadInputSince() (uint64, error) { return c.since, nil }

func (c *fakeChainContext) InputsLen() (int, error) { return c.inputsLen, nil }

func (c *fakeChainContext) GroupInputSighashMessage() ([32]byte, error) { return c.sighashMsg, nil }

func (c *fakeChainContext) GroupInputLockSignature() ([65]byte, error) { return c.sighashSig, nil }

func (c *fakeChainContext) Debug(msg string) { c.debugLog = append(c.debugLog, msg) }

// testKeypair wraps a secp256k1 key for producing compact recoverable
// ECDSA signatures in tests.
type testKeypair struct {
	priv *btcec.PrivateKey
}

func newTestKeypair() *testKeypair {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		panic(err)
	}
	return &testKeypair{priv: priv}
}

func (k *testKeypair) pkhash() [20]byte {
	return crypto.DefaultProvider{}.Blake160(k.priv.PubKey().SerializeCompressed())
}

// signCompact produces the 65-byte r||s||recid signature this verifier
// expects (see crypto.recoverCompact for the wire layout).
func (k *testKeypair) signCompact(msg [32]byte) [65]byte {
	sig := ecdsa.SignCompact(k.priv, msg[:], true)
	// btcec's compact format is [header||r||s]; header = 27+4+recid.
	recID := sig[0] - 27 - 4
	var out [65]byte
	copy(out[0:32], sig[1:33])
	copy(out[32:64], sig[33:65])
	out[64] = recID
	return out
}

// battleFixture is a fully-formed, signable game: two players, N rounds
// alternating authorship, plus whatever else a test needs to mutate before
// building the transaction.
type battleFixture struct {
	user1, user2 *testKeypair
	params       BattleParams
	lockCodeHash [32]byte

	rounds []struct {
		userType UserType
		ops      [][]byte
	}
}

func newBattleFixture(stake uint64, deckSize uint8) *battleFixture {
	f := &battleFixture{
		user1: newTestKeypair(),
		user2: newTestKeypair(),
	}
	f.lockCodeHash = [32]byte{0xaa, 0xbb}
	user1Nfts := make([][]byte, deckSize)
	user2Nfts := make([][]byte, deckSize)
	for i := range user1Nfts {
		user1Nfts[i] = make([]byte, Blake160Size)
		user1Nfts[i][0] = byte(i + 1)
		user2Nfts[i] = make([]byte, Blake160Size)
		user2Nfts[i][0] = byte(i + 100)
	}
	f.params = BattleParams{
		User1Pkhash:         f.user1.pkhash(),
		User2Pkhash:         f.user2.pkhash(),
		UserStakingCapacity: stake,
		UserDeckSize:        deckSize,
		User1Nfts:           user1Nfts,
		User2Nfts:           user2Nfts,
		BeginBlocknumber:    1000,
		LockCodeHash:        f.lockCodeHash,
	}
	return f
}

func (f *battleFixture) addRound(userType UserType, ops [][]byte) {
	f.rounds = append(f.rounds, struct {
		userType UserType
		ops      [][]byte
	}{userType, ops})
}

// buildWitnesses signs the linked-hash round chain and returns the
// per-round witness bytes, ready to hand to a fakeChainContext.
func (f *battleFixture) buildWitnesses(lockHash [32]byte, capacity uint64) [][]byte {
	p := crypto.DefaultProvider{}
	capacityLE := leBytes64(capacity)

	witnesses := make([][]byte, len(f.rounds))
	var prevMsg [32]byte
	var prevSig [65]byte

	for i, r := range f.rounds {
		roundBytes := EncodeRound(r.userType, r.ops)
		var msg [32]byte
		if i == 0 {
			msg = p.Blake2bChain(lockHash[:], capacityLE, roundBytes)
		} else {
			msg = p.Blake2bChain(prevMsg[:], prevSig[:], roundBytes)
		}
		// The round's signature is the COUNTERSIGNER's — the opposite
		// player from the round's author.
		var signer *testKeypair
		if r.userType == User1 {
			signer = f.user2
		} else {
			signer = f.user1
		}
		sig := signer.signCompact(msg)
		witnesses[i] = EncodeWitnessArgs(sig[:], roundBytes, nil)
		prevMsg = msg
		prevSig = sig
	}
	return witnesses
}

// setWinnerProgram builds a tiny program that unconditionally sets
// _winner to the given value, for use as round operations or native code in
// tests.
func setWinnerProgram(winner int64) []byte {
	return []byte{
		byte(script.OpPushI64),
		byte(winner), 0, 0, 0, 0, 0, 0, 0,
		byte(script.OpStoreGlobal), byte(script.GlobalWinner),
		byte(script.OpHalt),
	}
}
