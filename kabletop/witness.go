package kabletop

import (
	"bytes"

	"github.com/softprodev/ckb-nft-kabletop/crypto"
)

// Component B: witness chain verifier.
//
// Loads every per-round witness, identifies the signer, and verifies the
// linked-hash chain of round signatures.
func verifyWitnessChain(ctx ChainContext, provider crypto.Provider, params *BattleParams) ([]Round, UserType, error) {
	signer, err := identifySigner(ctx, provider, params)
	if err != nil {
		return nil, 0, err
	}

	inputsLen, err := ctx.InputsLen()
	if err != nil {
		return nil, 0, verrf(CodeEncoding, "inputs_len: %v", err)
	}

	var rawWitnesses [][]byte
	for i := 0; ; i++ {
		w, err := ctx.LoadWitness(SourceInput, inputsLen+i)
		if err == ErrIndexOutOfBound {
			break
		}
		if err != nil {
			return nil, 0, verrf(CodeEncoding, "load_witness(%d): %v", inputsLen+i, err)
		}
		if len(w) > MaxWitnessBytes {
			return nil, 0, verr(CodeExcessiveWitnessBytes, "witness exceeds MAX_ROUND_SIZE")
		}
		rawWitnesses = append(rawWitnesses, w)
		if len(rawWitnesses) > MaxRoundCount {
			return nil, 0, verr(CodeExcessiveRounds, "round count exceeds MAX_ROUND_COUNT")
		}
	}
	roundCount := len(rawWitnesses)
	if roundCount == 0 || roundCount > MaxRoundCount {
		return nil, 0, verr(CodeExcessiveRounds, "round count out of [1, MAX_ROUND_COUNT]")
	}

	lockHash, err := ctx.LoadCellLockHash(SourceGroupInput, 0)
	if err != nil {
		return nil, 0, verrf(CodeEncoding, "group input lock_hash: %v", err)
	}
	capacity, err := ctx.LoadCellCapacity(SourceGroupInput, 0)
	if err != nil {
		return nil, 0, verrf(CodeEncoding, "group input capacity: %v", err)
	}
	capacityLE := leBytes64(capacity)

	rounds := make([]Round, roundCount)
	var prevMessage [32]byte
	var prevSignature [SignatureSize]byte

	for i := 0; i < roundCount; i++ {
		witness := rawWitnesses[i]

		sigBytes, err := extractWitnessLock(witness)
		if err != nil {
			return nil, 0, err
		}
		if len(sigBytes) != SignatureSize {
			return nil, 0, verr(CodeRoundFormatError, "round signature size invalid")
		}
		var sig [SignatureSize]byte
		copy(sig[:], sigBytes)

		roundBytes, err := extractWitnessInputType(witness)
		if err != nil {
			return nil, 0, err
		}
		round, err := DecodeRound(roundBytes)
		if err != nil {
			return nil, 0, err
		}
		round.Signature = sig
		copy(round.Seed[:], beSeedFromSignature(sig))

		var message [32]byte
		if i == 0 {
			message = provider.Blake2bChain(lockHash[:], capacityLE, round.Raw)
		} else {
			message = provider.Blake2bChain(prevMessage[:], prevSignature[:], round.Raw)
		}

		// Selective signature verification: only the
		// last two rounds are cryptographically checked, because the
		// hash chain means tampering with any earlier round invalidates
		// every later message.
		if i+2 >= roundCount {
			recovered, err := provider.RecoverPubkeyBlake160(sig, message)
			if err != nil {
				return nil, 0, verrf(CodeWrongRoundSignature, "round %d: %v", i, err)
			}
			var expect [Blake160Size]byte
			switch round.UserType {
			case User1:
				expect = params.User2Pkhash
			case User2:
				expect = params.User1Pkhash
			}
			if !bytes.Equal(recovered[:], expect[:]) {
				return nil, 0, verrf(CodeWrongUserRound, "round %d: countersigner mismatch", i)
			}
		}

		rounds[i] = *round
		prevMessage = message
		prevSignature = sig
	}

	return rounds, signer, nil
}

// identifySigner recovers the spend's signer from the canonical sighash
// covering the input group.
func identifySigner(ctx ChainContext, provider crypto.Provider, params *BattleParams) (UserType, error) {
	msg, err := ctx.GroupInputSighashMessage()
	if err != nil {
		return 0, verrf(CodeEncoding, "group input sighash: %v", err)
	}
	sig, err := ctx.GroupInputLockSignature()
	if err != nil {
		return 0, verrf(CodeEncoding, "group input signature: %v", err)
	}
	pkhash, err := provider.RecoverPubkeyBlake160(sig, msg)
	if err != nil {
		return 0, verrf(CodePubkeyBlake160Hash, "%v", err)
	}
	switch {
	case bytes.Equal(pkhash[:], params.User1Pkhash[:]):
		return User1, nil
	case bytes.Equal(pkhash[:], params.User2Pkhash[:]):
		return User2, nil
	default:
		return 0, verr(CodePubkeyBlake160Hash, "signer does not match either player")
	}
}

// beSeedFromSignature splits the first 16 bytes of a signature into two
// little-endian uint64 halves, used to seed the replay engine's PRNG.
func beSeedFromSignature(sig [SignatureSize]byte) [2]uint64 {
	return [2]uint64{leUint64(sig[0:8]), leUint64(sig[8:16])}
}
