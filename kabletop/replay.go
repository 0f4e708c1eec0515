package kabletop

import (
	"bytes"
	"fmt"

	"github.com/softprodev/ckb-nft-kabletop/script"
)

// cellDepPrefix marks a cell dependency's data as a loadable rule-extension
// chunk.
var cellDepPrefix = []byte("kabletop:")

// OperationErrorPolicy decides what happens when a round operation fails to
// load or run: abort the whole verification, or log and move on. Both
// behaviors are modeled explicitly here instead of picking one implicitly.
type OperationErrorPolicy int

const (
	// PolicyStrict aborts verification on the first failing operation. This
	// is the default: silently skipping a failing operation could let a
	// forged round change _winner undetected.
	PolicyStrict OperationErrorPolicy = iota
	// PolicySkip logs the failure via ChainContext.Debug and continues.
	PolicySkip
)

// ReplayConfig configures the scripted replay engine (component D).
type ReplayConfig struct {
	// NativeCode is the game's rule library, linked into the verifier at
	// build time.
	NativeCode []byte
	Policy     OperationErrorPolicy
}

// replayRounds prepares an interpreter context and deterministically
// executes every round's operations, returning the interpreter's declared
// winner.
func replayRounds(ctx ChainContext, params *BattleParams, rounds []Round, cfg ReplayConfig) (int, error) {
	m := script.NewMachine(params.User1Nfts, params.User2Nfts, ctx.Debug)

	scriptHash, err := ctx.LoadScriptHash()
	if err != nil {
		return 0, verrf(CodeWrongLuaContextCode, "script_hash: %v", err)
	}
	secondsSeed, clockSeed := contextSeed(scriptHash)
	m.SeedRandom(secondsSeed, clockSeed)

	if len(cfg.NativeCode) > 0 {
		if err := m.Run(cfg.NativeCode); err != nil {
			return 0, verrf(CodeWrongLuaContextCode, "native code: %v", err)
		}
	}

	for i := 0; ; i++ {
		data, err := ctx.LoadCellData(SourceCellDep, i)
		if err == ErrIndexOutOfBound {
			break
		}
		if err != nil {
			return 0, verrf(CodeWrongLuaContextCode, "cell_dep(%d): %v", i, err)
		}
		if !bytes.HasPrefix(data, cellDepPrefix) {
			continue
		}
		chunk := data[len(cellDepPrefix):]
		if err := m.Run(chunk); err != nil {
			return 0, verrf(CodeWrongLuaContextCode, "cell_dep(%d): %v", i, err)
		}
	}

	for i, round := range rounds {
		m.SeedRandom(round.Seed[0], round.Seed[1])
		for n, op := range round.Operations {
			if err := m.Run(op); err != nil {
				ctx.Debug(fmt.Sprintf("invalid operation code [%d-%d]: %v", i, n, err))
				if cfg.Policy == PolicyStrict {
					return 0, verrf(CodeWrongLuaOperationCode, "operation [%d-%d]: %v", i, n, err)
				}
			}
		}
	}

	return m.Winner(), nil
}

// contextSeed derives the replay engine's one-time context-setup PRNG seed
// from the running script's own hash: the low 7 bits of each of bytes 0..7
// become the "seconds" seed, bytes 8..15 the "clock" seed, each half packed
// little-endian. This runs once per verification, before any native or
// cell-dep code, and is distinct from the per-round reseed derived from that
// round's signature.
func contextSeed(scriptHash [32]byte) (seconds, clock uint64) {
	var maskedSeconds, maskedClock [8]byte
	for i := 0; i < 8; i++ {
		maskedSeconds[i] = scriptHash[i] & 0x7F
		maskedClock[i] = scriptHash[8+i] & 0x7F
	}
	return leUint64(maskedSeconds[:]), leUint64(maskedClock[:])
}
