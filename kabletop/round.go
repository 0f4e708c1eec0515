package kabletop

// Round record: {user_type: byte, operations: dynvec of opaque byte strings}.
// Decoded from the input_type slot of a round's witness.

const (
	roundFieldUserType = iota
	roundFieldOperations
	roundFieldCount
)

// DecodeRound parses a Round table. The returned Round.Raw aliases roundBytes
// so byte-exact comparisons against a stored challenge record stay cheap.
func DecodeRound(roundBytes []byte) (*Round, error) {
	fields, err := decodeTable(roundBytes, roundFieldCount)
	if err != nil {
		return nil, verrf(CodeRoundFormatError, "round: %v", err)
	}
	if len(fields[roundFieldUserType]) != 1 {
		return nil, verr(CodeRoundFormatError, "round.user_type malformed")
	}
	ut := UserType(fields[roundFieldUserType][0])
	if ut != User1 && ut != User2 {
		return nil, verr(CodeRoundFormatError, "round.user_type invalid")
	}
	ops, err := decodeDynvec(fields[roundFieldOperations])
	if err != nil {
		return nil, verrf(CodeRoundFormatError, "round.operations: %v", err)
	}
	if len(ops) > MaxOperationsPerRound {
		return nil, verr(CodeRoundFormatError, "round.operations exceeds MAX_OPERATIONS_PER_ROUND")
	}
	return &Round{
		UserType:   ut,
		Operations: ops,
		Raw:        roundBytes,
	}, nil
}

// EncodeRound is the inverse of DecodeRound, for tests/fixtures.
func EncodeRound(userType UserType, operations [][]byte) []byte {
	fields := [][]byte{
		{byte(userType)},
		encodeDynvec(operations),
	}
	return encodeTable(fields)
}
