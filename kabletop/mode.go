package kabletop

import "bytes"

// Component C: mode detector.
//
// Compares the input cell's lock-hash against every output cell's lock-hash
// to decide Settlement vs Challenge vs reject, then cross-checks any
// carried-over challenge record.
func detectMode(ctx ChainContext, roundCount int) (Mode, *Challenge, *Challenge, error) {
	expectLockHash, err := ctx.LoadCellLockHash(SourceGroupInput, 0)
	if err != nil {
		return ModeUnknown, nil, nil, verrf(CodeEncoding, "group input lock_hash: %v", err)
	}

	var outputChallenge *Challenge
	matches := 0
	for i := 0; ; i++ {
		lockHash, err := ctx.LoadCellLockHash(SourceOutput, i)
		if err == ErrIndexOutOfBound {
			break
		}
		if err != nil {
			return ModeUnknown, nil, nil, verrf(CodeEncoding, "output lock_hash(%d): %v", i, err)
		}
		if !bytes.Equal(lockHash[:], expectLockHash[:]) {
			continue
		}
		matches++
		if matches > 1 {
			return ModeUnknown, nil, nil, nil
		}
		data, err := ctx.LoadCellData(SourceOutput, i)
		if err != nil {
			return ModeUnknown, nil, nil, verrf(CodeEncoding, "output data(%d): %v", i, err)
		}
		c, err := DecodeChallenge(data)
		if err != nil {
			return ModeUnknown, nil, nil, nil
		}
		outputChallenge = c
	}

	inputData, err := ctx.LoadCellData(SourceGroupInput, 0)
	if err != nil {
		return ModeUnknown, nil, nil, verrf(CodeEncoding, "group input data: %v", err)
	}
	var inputChallenge *Challenge
	if len(inputData) > 0 && len(inputData) < MaxChallengeDataBytes {
		c, err := DecodeChallenge(inputData)
		if err == nil {
			inputChallenge = c
		}
	}

	if matches == 1 {
		if inputChallenge != nil && outputChallenge.RoundOffset <= inputChallenge.RoundOffset {
			return ModeUnknown, nil, nil, nil
		}
		return ModeChallenge, inputChallenge, outputChallenge, nil
	}

	if inputChallenge != nil && roundCount <= int(inputChallenge.RoundOffset) {
		return ModeUnknown, nil, nil, nil
	}
	return ModeSettlement, inputChallenge, nil, nil
}
