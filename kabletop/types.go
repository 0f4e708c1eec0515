package kabletop

// Size and count bounds enforced throughout the verifier.
const (
	MaxRoundCount          = 256
	MaxOperationsPerRound  = 32
	MaxWitnessBytes        = 2048
	MaxScriptBytes         = 32768
	MaxChallengeDataBytes  = 2048
	Blake160Size           = 20
	Blake2b256Size         = 32
	SignatureSize          = 65
)

// UserType tags who authored a round, or who the current spend's signer is.
// Zero value (UserKabletop) means "neither player" — used as a sentinel in
// the challenge record's user_type field (see outcome.go).
type UserType uint8

const (
	UserKabletop UserType = 0
	User1        UserType = 1
	User2        UserType = 2
)

func (u UserType) String() string {
	switch u {
	case User1:
		return "user1"
	case User2:
		return "user2"
	default:
		return "kabletop"
	}
}

// Opposite returns the other player. Only meaningful for User1/User2.
func (u UserType) Opposite() UserType {
	switch u {
	case User1:
		return User2
	case User2:
		return User1
	default:
		return UserKabletop
	}
}

// BattleParams are the game parameters decoded once from the battle cell's
// lock script arguments. Variable-length fields
// alias the decoder's input buffer.
type BattleParams struct {
	User1Pkhash         [Blake160Size]byte
	User2Pkhash         [Blake160Size]byte
	UserStakingCapacity uint64
	UserDeckSize        uint8
	User1Nfts           [][]byte // each Blake160Size bytes, len == UserDeckSize
	User2Nfts           [][]byte
	BeginBlocknumber    uint64
	LockCodeHash        [Blake2b256Size]byte
}

// Round is one witness's worth of scripted operations plus the signature
// and seed recovered alongside it.
type Round struct {
	UserType   UserType
	Operations [][]byte // raw bytes, up to MaxOperationsPerRound entries

	// Raw bytes of the decoded Round record, as found in the witness's
	// input_type slot. Used for byte-exact challenge comparisons.
	Raw []byte

	// Populated by the witness chain verifier (component B).
	Signature [SignatureSize]byte
	Seed      [2]uint64 // first 16 bytes of Signature, split into two uint64 halves
}

// Challenge is the optional record carried in a cell's data field, found either on the spent battle cell (input_challenge) or on its
// continuation (output_challenge).
type Challenge struct {
	RoundOffset uint8
	Signature   [SignatureSize]byte
	Round       []byte // raw bytes of the challenged round, byte-exact
	UserType    UserType
}

// Mode is the outcome of the mode detector (component C).
type Mode int

const (
	ModeSettlement Mode = iota
	ModeChallenge
	ModeUnknown
)

// State is the verifier's working state, built fresh by VerifyBattleSpend
// for each invocation and never reused.
type State struct {
	Params BattleParams
	Rounds []Round // len == RoundCount

	InputChallenge  *Challenge
	OutputChallenge *Challenge

	Signer UserType
	Mode   Mode
}

func (s *State) RoundCount() int {
	return len(s.Rounds)
}
