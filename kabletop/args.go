package kabletop

// Component A: argument decoder.
//
// Parses the running script's own bytes (a molecule Script{code_hash,
// hash_type, args: Bytes}) and then the Args table nested inside args,
// exposing the battle parameters. Purely structural: no
// cryptography here.

const (
	scriptFieldCodeHash = iota
	scriptFieldHashType
	scriptFieldArgs
	scriptFieldCount
)

const (
	argsFieldUser1Pkhash = iota
	argsFieldUser2Pkhash
	argsFieldUserStakingCapacity
	argsFieldUserDeckSize
	argsFieldUser1Nfts
	argsFieldUser2Nfts
	argsFieldBeginBlocknumber
	argsFieldLockCodeHash
	argsFieldCount
)

// DecodeScriptArgs validates the outer Script shape and returns the raw
// bytes of its nested Args table (still undecoded).
func DecodeScriptArgs(scriptBytes []byte) ([]byte, error) {
	if len(scriptBytes) > MaxScriptBytes {
		return nil, verr(CodeScriptError, "script exceeds MAX_SCRIPT_SIZE")
	}
	fields, err := decodeTable(scriptBytes, scriptFieldCount)
	if err != nil {
		return nil, verrf(CodeScriptError, "script: %v", err)
	}
	if len(fields[scriptFieldHashType]) != 1 {
		return nil, verr(CodeScriptError, "script.hash_type malformed")
	}
	if len(fields[scriptFieldCodeHash]) != Blake2b256Size {
		return nil, verr(CodeScriptError, "script.code_hash malformed")
	}
	argsBlob, err := decodeBytesBlob(fields[scriptFieldArgs])
	if err != nil {
		return nil, verrf(CodeScriptError, "script.args: %v", err)
	}
	return argsBlob, nil
}

// DecodeArgs parses the Args table into BattleParams. All slice fields of
// the result alias argsBytes.
func DecodeArgs(argsBytes []byte) (*BattleParams, error) {
	fields, err := decodeTable(argsBytes, argsFieldCount)
	if err != nil {
		return nil, verrf(CodeArgsFormatError, "args: %v", err)
	}

	var p BattleParams

	if len(fields[argsFieldUser1Pkhash]) != Blake160Size {
		return nil, verr(CodeArgsFormatError, "user1_pkhash malformed")
	}
	copy(p.User1Pkhash[:], fields[argsFieldUser1Pkhash])

	if len(fields[argsFieldUser2Pkhash]) != Blake160Size {
		return nil, verr(CodeArgsFormatError, "user2_pkhash malformed")
	}
	copy(p.User2Pkhash[:], fields[argsFieldUser2Pkhash])

	if len(fields[argsFieldUserStakingCapacity]) != 8 {
		return nil, verr(CodeArgsFormatError, "user_staking_capacity malformed")
	}
	p.UserStakingCapacity = leUint64(fields[argsFieldUserStakingCapacity])

	if len(fields[argsFieldUserDeckSize]) != 1 {
		return nil, verr(CodeArgsFormatError, "user_deck_size malformed")
	}
	p.UserDeckSize = fields[argsFieldUserDeckSize][0]

	user1Nfts, err := decodeFixvec(fields[argsFieldUser1Nfts], Blake160Size)
	if err != nil {
		return nil, verrf(CodeArgsFormatError, "user1_nfts: %v", err)
	}
	if len(user1Nfts) != int(p.UserDeckSize) {
		return nil, verr(CodeArgsFormatError, "user1_nfts length != user_deck_size")
	}
	p.User1Nfts = user1Nfts

	user2Nfts, err := decodeFixvec(fields[argsFieldUser2Nfts], Blake160Size)
	if err != nil {
		return nil, verrf(CodeArgsFormatError, "user2_nfts: %v", err)
	}
	if len(user2Nfts) != int(p.UserDeckSize) {
		return nil, verr(CodeArgsFormatError, "user2_nfts length != user_deck_size")
	}
	p.User2Nfts = user2Nfts

	if len(fields[argsFieldBeginBlocknumber]) != 8 {
		return nil, verr(CodeArgsFormatError, "begin_blocknumber malformed")
	}
	p.BeginBlocknumber = leUint64(fields[argsFieldBeginBlocknumber])

	if len(fields[argsFieldLockCodeHash]) != Blake2b256Size {
		return nil, verr(CodeArgsFormatError, "lock_code_hash malformed")
	}
	copy(p.LockCodeHash[:], fields[argsFieldLockCodeHash])

	return &p, nil
}

// EncodeArgs is the inverse of DecodeArgs. It is used only by tests and the
// fixtures/CLI tooling to build synthetic battle cells.
func EncodeArgs(p *BattleParams) []byte {
	stakingBytes := leBytes64(p.UserStakingCapacity)
	blockBytes := leBytes64(p.BeginBlocknumber)
	fields := [][]byte{
		p.User1Pkhash[:],
		p.User2Pkhash[:],
		stakingBytes,
		{p.UserDeckSize},
		encodeFixvec(p.User1Nfts),
		encodeFixvec(p.User2Nfts),
		blockBytes,
		p.LockCodeHash[:],
	}
	return encodeTable(fields)
}

// EncodeScript wraps an Args blob into a molecule Script{code_hash,
// hash_type, args}. Used by tests/fixtures only.
func EncodeScript(codeHash [Blake2b256Size]byte, hashType byte, argsBytes []byte) []byte {
	fields := [][]byte{
		codeHash[:],
		{hashType},
		encodeBytesBlob(argsBytes),
	}
	return encodeTable(fields)
}
