// Command kabletop-verify is a thin JSON-over-stdio harness around the
// kabletop verifier. One request on stdin, one response on stdout: no
// persistent state, no flags. It exists so the verifier's wire formats and
// its core VerifyBattleSpend pipeline can be exercised from shell scripts
// and conformance fixtures without embedding a CKB-VM.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/softprodev/ckb-nft-kabletop/kabletop"
)

type Request struct {
	Op string `json:"op"`

	ScriptHex          string   `json:"script_hex,omitempty"`
	NativeCodeHex      string   `json:"native_code_hex,omitempty"`
	GroupInputLockHash string   `json:"group_input_lock_hash,omitempty"`
	GroupInputCapacity uint64   `json:"group_input_capacity,omitempty"`
	GroupInputDataHex  string   `json:"group_input_data_hex,omitempty"`
	OutputLockHashes   []string `json:"output_lock_hashes,omitempty"`
	OutputLocks        []string `json:"output_locks,omitempty"`
	OutputCapacities   []uint64 `json:"output_capacities,omitempty"`
	OutputData         []string `json:"output_data,omitempty"`
	CellDepData        []string `json:"cell_dep_data,omitempty"`
	Witnesses          []string `json:"witnesses,omitempty"`
	InputsLen          int      `json:"inputs_len,omitempty"`
	Since              uint64   `json:"since,omitempty"`
	SighashMsgHex      string   `json:"sighash_msg_hex,omitempty"`
	SighashSigHex      string   `json:"sighash_sig_hex,omitempty"`

	CodeHashHex string `json:"code_hash_hex,omitempty"`
	HashType    uint8  `json:"hash_type,omitempty"`
	ArgsHex     string `json:"args_hex,omitempty"`

	User1PkhashHex      string   `json:"user1_pkhash_hex,omitempty"`
	User2PkhashHex      string   `json:"user2_pkhash_hex,omitempty"`
	UserStakingCapacity uint64   `json:"user_staking_capacity,omitempty"`
	UserDeckSize        uint8    `json:"user_deck_size,omitempty"`
	User1Nfts           []string `json:"user1_nfts,omitempty"`
	User2Nfts           []string `json:"user2_nfts,omitempty"`
	BeginBlocknumber    uint64   `json:"begin_blocknumber,omitempty"`
	LockCodeHashHex     string   `json:"lock_code_hash_hex,omitempty"`

	RoundHex   string   `json:"round_hex,omitempty"`
	UserType   uint8    `json:"user_type,omitempty"`
	Operations []string `json:"operations,omitempty"`

	LockHex       string `json:"lock_hex,omitempty"`
	InputTypeHex  string `json:"input_type_hex,omitempty"`
	OutputTypeHex string `json:"output_type_hex,omitempty"`

	ChallengeHex string `json:"challenge_hex,omitempty"`
	RoundOffset  uint8  `json:"round_offset,omitempty"`
	SignatureHex string `json:"signature_hex,omitempty"`
}

type Response struct {
	Ok  bool   `json:"ok"`
	Err string `json:"err,omitempty"`

	Mode       string   `json:"mode,omitempty"`
	Signer     string   `json:"signer,omitempty"`
	RoundCount int      `json:"round_count,omitempty"`
	DebugLog   []string `json:"debug_log,omitempty"`

	ScriptHex    string `json:"script_hex,omitempty"`
	ArgsHex      string `json:"args_hex,omitempty"`
	RoundHex     string `json:"round_hex,omitempty"`
	WitnessHex   string `json:"witness_hex,omitempty"`
	ChallengeHex string `json:"challenge_hex,omitempty"`

	UserType     string   `json:"user_type,omitempty"`
	Operations   []string `json:"operations,omitempty"`
	RoundOffset  uint8    `json:"round_offset,omitempty"`
	SignatureHex string   `json:"signature_hex,omitempty"`
}

func writeResp(w io.Writer, resp Response) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

func errResp(err error) Response {
	return Response{Ok: false, Err: err.Error()}
}

func main() {
	runFromStdin()
}

func runFromStdin() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResp(os.Stdout, Response{Ok: false, Err: fmt.Sprintf("bad request: %v", err)})
		return
	}

	switch req.Op {
	case "verify_battle_spend":
		resp, err := verifyBattleSpend(&req)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		writeResp(os.Stdout, resp)
		return

	case "encode_script":
		codeHash, err := decodeHash32(req.CodeHashHex)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		argsBytes, err := decodeHex(req.ArgsHex)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		out := kabletop.EncodeScript(codeHash, req.HashType, argsBytes)
		writeResp(os.Stdout, Response{Ok: true, ScriptHex: hex.EncodeToString(out)})
		return

	case "encode_args":
		params, err := decodeParamsRequest(&req)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		out := kabletop.EncodeArgs(params)
		writeResp(os.Stdout, Response{Ok: true, ArgsHex: hex.EncodeToString(out)})
		return

	case "encode_round":
		ops, err := decodeHexList(req.Operations)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		out := kabletop.EncodeRound(kabletop.UserType(req.UserType), ops)
		writeResp(os.Stdout, Response{Ok: true, RoundHex: hex.EncodeToString(out)})
		return

	case "decode_round":
		roundBytes, err := decodeHex(req.RoundHex)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		round, err := kabletop.DecodeRound(roundBytes)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		ops := make([]string, len(round.Operations))
		for i, op := range round.Operations {
			ops[i] = hex.EncodeToString(op)
		}
		writeResp(os.Stdout, Response{Ok: true, UserType: round.UserType.String(), Operations: ops})
		return

	case "encode_witness_args":
		lock, err := decodeOptionalHex(req.LockHex)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		inputType, err := decodeOptionalHex(req.InputTypeHex)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		outputType, err := decodeOptionalHex(req.OutputTypeHex)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		out := kabletop.EncodeWitnessArgs(lock, inputType, outputType)
		writeResp(os.Stdout, Response{Ok: true, WitnessHex: hex.EncodeToString(out)})
		return

	case "encode_challenge":
		sig, err := decodeSignature65(req.SignatureHex)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		roundBytes, err := decodeHex(req.RoundHex)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		out := kabletop.EncodeChallenge(&kabletop.Challenge{
			RoundOffset: req.RoundOffset,
			Signature:   sig,
			Round:       roundBytes,
		})
		writeResp(os.Stdout, Response{Ok: true, ChallengeHex: hex.EncodeToString(out)})
		return

	case "decode_challenge":
		data, err := decodeHex(req.ChallengeHex)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		c, err := kabletop.DecodeChallenge(data)
		if err != nil {
			writeResp(os.Stdout, errResp(err))
			return
		}
		writeResp(os.Stdout, Response{
			Ok:           true,
			RoundOffset:  c.RoundOffset,
			SignatureHex: hex.EncodeToString(c.Signature[:]),
			RoundHex:     hex.EncodeToString(c.Round),
		})
		return

	default:
		writeResp(os.Stdout, Response{Ok: false, Err: "unknown op"})
		return
	}
}

func verifyBattleSpend(req *Request) (Response, error) {
	ctx, err := newSimContext(req)
	if err != nil {
		return Response{}, err
	}

	nativeCode, err := decodeOptionalHex(req.NativeCodeHex)
	if err != nil {
		return Response{}, err
	}
	cfg := kabletop.DefaultConfig(nativeCode)

	state, err := kabletop.VerifyBattleSpend(ctx, cfg)
	if err != nil {
		if ve, ok := err.(*kabletop.VerifyError); ok {
			return Response{Ok: false, Err: ve.Code.String(), DebugLog: ctx.debugLog}, nil
		}
		return Response{Ok: false, Err: err.Error(), DebugLog: ctx.debugLog}, nil
	}

	mode := "settlement"
	if state.Mode == kabletop.ModeChallenge {
		mode = "challenge"
	}
	return Response{
		Ok:         true,
		Mode:       mode,
		Signer:     state.Signer.String(),
		RoundCount: state.RoundCount(),
		DebugLog:   ctx.debugLog,
	}, nil
}

func decodeParamsRequest(req *Request) (*kabletop.BattleParams, error) {
	user1Pkhash, err := decodeHash20(req.User1PkhashHex)
	if err != nil {
		return nil, fmt.Errorf("user1_pkhash_hex: %w", err)
	}
	user2Pkhash, err := decodeHash20(req.User2PkhashHex)
	if err != nil {
		return nil, fmt.Errorf("user2_pkhash_hex: %w", err)
	}
	lockCodeHash, err := decodeHash32(req.LockCodeHashHex)
	if err != nil {
		return nil, fmt.Errorf("lock_code_hash_hex: %w", err)
	}
	user1Nfts, err := decodeHexList(req.User1Nfts)
	if err != nil {
		return nil, fmt.Errorf("user1_nfts: %w", err)
	}
	user2Nfts, err := decodeHexList(req.User2Nfts)
	if err != nil {
		return nil, fmt.Errorf("user2_nfts: %w", err)
	}
	return &kabletop.BattleParams{
		User1Pkhash:         user1Pkhash,
		User2Pkhash:         user2Pkhash,
		UserStakingCapacity: req.UserStakingCapacity,
		UserDeckSize:        req.UserDeckSize,
		User1Nfts:           user1Nfts,
		User2Nfts:           user2Nfts,
		BeginBlocknumber:    req.BeginBlocknumber,
		LockCodeHash:        lockCodeHash,
	}, nil
}

func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bad hex: %w", err)
	}
	return b, nil
}

func decodeOptionalHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return decodeHex(s)
}

func decodeHexList(list []string) ([][]byte, error) {
	out := make([][]byte, len(list))
	for i, s := range list {
		b, err := decodeHex(s)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func decodeHash20(s string) ([20]byte, error) {
	var out [20]byte
	b, err := decodeHex(s)
	if err != nil {
		return out, err
	}
	if len(b) != 20 {
		return out, fmt.Errorf("expected 20 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func decodeHash32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := decodeHex(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func decodeSignature65(s string) ([65]byte, error) {
	var out [65]byte
	b, err := decodeHex(s)
	if err != nil {
		return out, err
	}
	if len(b) != 65 {
		return out, fmt.Errorf("expected 65 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
