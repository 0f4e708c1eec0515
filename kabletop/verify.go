// Package kabletop implements the on-chain verifier for the Kabletop
// card-battle game: given a transaction attempting to spend a battle cell,
// it decides whether the spend is a valid settlement or a valid challenge.
// VerifyBattleSpend is the single entry point; every other exported symbol
// exists to let tests and host bindings assemble the ChainContext it needs.
package kabletop

import "github.com/softprodev/ckb-nft-kabletop/crypto"

// Config bundles the replay engine's configuration with the crypto
// provider, since both are cross-cutting inputs to VerifyBattleSpend.
type Config struct {
	Provider crypto.Provider
	Replay   ReplayConfig
}

// DefaultConfig returns a Config backed by crypto.DefaultProvider and the
// strict operation-error policy.
func DefaultConfig(nativeCode []byte) Config {
	return Config{
		Provider: crypto.DefaultProvider{},
		Replay: ReplayConfig{
			NativeCode: nativeCode,
			Policy:     PolicyStrict,
		},
	}
}

// VerifyBattleSpend runs the full verifier pipeline:
// A (argument decoder) → B (witness chain verifier) → C (mode detector) →
// D (scripted replay engine, both modes) → E (outcome arbiter). It returns
// the populated State and a nil error only if the spend is valid; any
// failure returns a nil State and a *VerifyError whose Code is the exit
// status a host VM would surface.
func VerifyBattleSpend(ctx ChainContext, cfg Config) (*State, error) {
	// A: argument decoder.
	scriptBytes, err := ctx.LoadScript()
	if err != nil {
		return nil, verrf(CodeScriptError, "load_script: %v", err)
	}
	argsBytes, err := DecodeScriptArgs(scriptBytes)
	if err != nil {
		return nil, err
	}
	params, err := DecodeArgs(argsBytes)
	if err != nil {
		return nil, err
	}

	// B: witness chain verifier.
	rounds, signer, err := verifyWitnessChain(ctx, cfg.Provider, params)
	if err != nil {
		return nil, err
	}

	// C: mode detector.
	mode, inputChallenge, outputChallenge, err := detectMode(ctx, len(rounds))
	if err != nil {
		return nil, err
	}
	if mode == ModeUnknown {
		return nil, verr(CodeWrongMode, "ambiguous or inconsistent challenge/settlement shape")
	}
	if inputChallenge != nil {
		if err := PopulateChallengeUserType(inputChallenge); err != nil {
			return nil, err
		}
	}

	state := &State{
		Params:          *params,
		Rounds:          rounds,
		InputChallenge:  inputChallenge,
		OutputChallenge: outputChallenge,
		Signer:          signer,
		Mode:            mode,
	}

	// D: scripted replay engine, run in both modes.
	winner, err := replayRounds(ctx, params, rounds, cfg.Replay)
	if err != nil {
		return nil, err
	}

	// E: outcome arbiter.
	switch mode {
	case ModeSettlement:
		if err := arbitrateSettlement(ctx, params, inputChallenge, signer, winner); err != nil {
			return nil, err
		}
	case ModeChallenge:
		if err := arbitrateChallenge(rounds, outputChallenge); err != nil {
			return nil, err
		}
	}

	return state, nil
}
