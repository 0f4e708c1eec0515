package kabletop

// Challenge record: {round_offset: byte, signature: [65]byte, round: bytes}
// plus an out-of-band user_type used only for the input-side timeout check,
// recovered from the matching round rather than stored redundantly — see
// DecodeChallenge.

const (
	challengeFieldRoundOffset = iota
	challengeFieldSignature
	challengeFieldRound
	challengeFieldCount
)

// DecodeChallenge parses a Challenge table from cell data. data must be
// shorter than MaxChallengeDataBytes.
func DecodeChallenge(data []byte) (*Challenge, error) {
	if len(data) == 0 || len(data) >= MaxChallengeDataBytes {
		return nil, verr(CodeChallengeFormatError, "challenge data size out of bounds")
	}
	fields, err := decodeTable(data, challengeFieldCount)
	if err != nil {
		return nil, verrf(CodeChallengeFormatError, "challenge: %v", err)
	}
	if len(fields[challengeFieldRoundOffset]) != 1 {
		return nil, verr(CodeChallengeFormatError, "challenge.round_offset malformed")
	}
	if len(fields[challengeFieldSignature]) != SignatureSize {
		return nil, verr(CodeChallengeFormatError, "challenge.signature malformed")
	}
	c := &Challenge{
		RoundOffset: fields[challengeFieldRoundOffset][0],
		Round:       fields[challengeFieldRound],
	}
	copy(c.Signature[:], fields[challengeFieldSignature])

	// The user_type of the challenged round (c.Round) is the challenge's
	// effective authoring user type, used by the settlement timeout check.
	// It is left unset here and decoded from c.Round by the caller via
	// PopulateChallengeUserType.
	return c, nil
}

// PopulateChallengeUserType fills in c.UserType by decoding c.Round, needed
// by the settlement timeout check. Call after DecodeChallenge once the
// challenge's own round payload is available.
func PopulateChallengeUserType(c *Challenge) error {
	r, err := DecodeRound(c.Round)
	if err != nil {
		return verrf(CodeChallengeFormatError, "challenge.round: %v", err)
	}
	c.UserType = r.UserType
	return nil
}

// EncodeChallenge is the inverse of DecodeChallenge, for tests/fixtures.
func EncodeChallenge(c *Challenge) []byte {
	fields := [][]byte{
		{c.RoundOffset},
		c.Signature[:],
		c.Round,
	}
	return encodeTable(fields)
}
