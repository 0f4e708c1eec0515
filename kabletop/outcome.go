package kabletop

import "bytes"

// Component E: outcome arbiter.

// capacities collected for settlement arbitration.
type capacities struct {
	Kabletop uint64
	User1    uint64
	User2    uint64
}

// collectSettlementCapacities scans transaction outputs for the two
// players' wallet cells (matched by lock_code_hash + pkhash) and the input
// battle cell's own capacity.
func collectSettlementCapacities(ctx ChainContext, params *BattleParams) (capacities, error) {
	var c capacities
	var user1Found, user2Found bool

	for i := 0; ; i++ {
		lockBytes, err := ctx.LoadCellLock(SourceOutput, i)
		if err == ErrIndexOutOfBound {
			break
		}
		if err != nil {
			return c, verrf(CodeEncoding, "output lock(%d): %v", i, err)
		}
		codeHash, args, err := decodeScriptCodeHashAndArgs(lockBytes)
		if err != nil {
			return c, verrf(CodeEncoding, "output lock(%d): %v", i, err)
		}
		if codeHash != params.LockCodeHash {
			continue
		}
		capacity, err := ctx.LoadCellCapacity(SourceOutput, i)
		if err != nil {
			return c, verrf(CodeEncoding, "output capacity(%d): %v", i, err)
		}
		switch {
		case !user1Found && len(args) >= Blake160Size && bytes.Equal(args[:Blake160Size], params.User1Pkhash[:]):
			c.User1 = capacity
			user1Found = true
		case !user2Found && len(args) >= Blake160Size && bytes.Equal(args[:Blake160Size], params.User2Pkhash[:]):
			c.User2 = capacity
			user2Found = true
		}
	}

	if !user1Found || !user2Found {
		return c, verr(CodeSettlementFormatError, "missing one or both user settlement outputs")
	}

	kabletopCapacity, err := ctx.LoadCellCapacity(SourceGroupInput, 0)
	if err != nil {
		return c, verrf(CodeEncoding, "group input capacity: %v", err)
	}
	c.Kabletop = kabletopCapacity

	return c, nil
}

// clampRoundWindow implements `n = clamp(round_offset+1, 5, 30)`.
func clampRoundWindow(roundOffset uint8) uint64 {
	n := uint64(roundOffset) + 1
	if n < 5 {
		n = 5
	}
	if n > 30 {
		n = 30
	}
	return n
}

// arbitrateSettlement decides validity of a settlement spend given the
// interpreter's declared winner.
func arbitrateSettlement(ctx ChainContext, params *BattleParams, inputChallenge *Challenge, signer UserType, winner int) error {
	caps, err := collectSettlementCapacities(ctx, params)
	if err != nil {
		return err
	}

	if winner == int(UserKabletop) {
		if inputChallenge == nil || inputChallenge.UserType == UserKabletop || inputChallenge.UserType == signer {
			return verr(CodeWrongBattleResult, "no-winner settlement requires an opposing timeout challenge")
		}
		since, err := ctx.LoadInputSince()
		if err != nil {
			return verrf(CodeEncoding, "load_input_since: %v", err)
		}
		n := clampRoundWindow(inputChallenge.RoundOffset)
		if since < params.BeginBlocknumber+n*n {
			return verr(CodeWrongSince, "since does not satisfy timeout window")
		}
		winner = int(signer)
	}

	stake := params.UserStakingCapacity
	switch UserType(winner) {
	case User1:
		if caps.User1-caps.User2 > caps.Kabletop-2*stake || caps.User1+caps.User2 < 2*stake {
			return verr(CodeResultFormatError, "settlement split violates user1-winner bounds")
		}
		return nil
	case User2:
		if caps.User2-caps.User1 > caps.Kabletop-2*stake || caps.User1+caps.User2 < 2*stake {
			return verr(CodeResultFormatError, "settlement split violates user2-winner bounds")
		}
		return nil
	default:
		return verr(CodeWrongLuaOperationCode, "winner value invalid in settlement mode")
	}
}

// arbitrateChallenge decides validity of a challenge spend: it merely
// persists the latest signed round on-chain — winner and timelock are not consulted.
func arbitrateChallenge(rounds []Round, outputChallenge *Challenge) error {
	roundCount := len(rounds)
	if int(outputChallenge.RoundOffset) != roundCount-1 {
		return verr(CodeChallengeFormatError, "output_challenge.round_offset must equal round_count-1")
	}
	last := rounds[roundCount-1]
	if last.Signature != outputChallenge.Signature {
		return verr(CodeChallengeFormatError, "output_challenge.signature does not match last round's witness")
	}
	if !bytes.Equal(last.Raw, outputChallenge.Round) {
		return verr(CodeChallengeFormatError, "output_challenge.round does not match last round's bytes")
	}
	return nil
}

// decodeScriptCodeHashAndArgs parses a Script{code_hash, hash_type, args}
// and returns the code_hash plus the raw args bytes (not further decoded —
// a user wallet lock's args is simply its 20-byte pkhash).
func decodeScriptCodeHashAndArgs(scriptBytes []byte) ([Blake2b256Size]byte, []byte, error) {
	var codeHash [Blake2b256Size]byte
	if len(scriptBytes) > MaxScriptBytes {
		return codeHash, nil, verr(CodeEncoding, "script exceeds MAX_SCRIPT_SIZE")
	}
	fields, err := decodeTable(scriptBytes, scriptFieldCount)
	if err != nil {
		return codeHash, nil, err
	}
	if len(fields[scriptFieldCodeHash]) != Blake2b256Size {
		return codeHash, nil, verr(CodeEncoding, "script.code_hash malformed")
	}
	copy(codeHash[:], fields[scriptFieldCodeHash])
	args, err := decodeBytesBlob(fields[scriptFieldArgs])
	if err != nil {
		return codeHash, nil, err
	}
	return codeHash, args, nil
}
