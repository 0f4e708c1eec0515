package kabletop

import (
	"errors"
	"fmt"
)

// Code is the verifier's exit status. Exit codes begin at 4 because 0-3 are
// reserved by the host VM for its own outcomes (success, index-out-of-bound,
// etc.).
type Code int

const CodeOK Code = 0

const (
	CodeScriptError Code = 4 + iota
	CodeArgsFormatError
	CodeRoundFormatError
	CodeExcessiveRounds
	CodeExcessiveWitnessBytes
	CodeWrongUserRound
	CodeWrongMode
	CodeWrongRoundSignature
	CodeChallengeFormatError
	CodeSettlementFormatError
	CodeResultFormatError
	CodeWrongLuaContextCode
	CodeWrongLuaOperationCode
	CodeWrongBattleResult
	CodeWrongSince

	CodePubkeyBlake160Hash
	CodeEncoding
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeScriptError:
		return "SCRIPT_ERROR"
	case CodeArgsFormatError:
		return "ARGS_FORMAT_ERROR"
	case CodeRoundFormatError:
		return "ROUND_FORMAT_ERROR"
	case CodeExcessiveRounds:
		return "EXCESSIVE_ROUNDS"
	case CodeExcessiveWitnessBytes:
		return "EXCESSIVE_WITNESS_BYTES"
	case CodeWrongUserRound:
		return "WRONG_USER_ROUND"
	case CodeWrongMode:
		return "WRONG_MODE"
	case CodeWrongRoundSignature:
		return "WRONG_ROUND_SIGNATURE"
	case CodeChallengeFormatError:
		return "CHALLENGE_FORMAT_ERROR"
	case CodeSettlementFormatError:
		return "SETTLEMENT_FORMAT_ERROR"
	case CodeResultFormatError:
		return "RESULT_FORMAT_ERROR"
	case CodeWrongLuaContextCode:
		return "WRONG_LUA_CONTEXT_CODE"
	case CodeWrongLuaOperationCode:
		return "WRONG_LUA_OPERATION_CODE"
	case CodeWrongBattleResult:
		return "WRONG_BATTLE_RESULT"
	case CodeWrongSince:
		return "WRONG_SINCE"
	case CodePubkeyBlake160Hash:
		return "PUBKEY_BLAKE160_HASH"
	case CodeEncoding:
		return "ENCODING"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(c))
	}
}

// VerifyError is the verifier's single error type. Every non-nil error
// returned by this package can be unwrapped to one via errors.As.
type VerifyError struct {
	Code Code
	Msg  string
}

func (e *VerifyError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func verr(code Code, msg string) error {
	return &VerifyError{Code: code, Msg: msg}
}

func verrf(code Code, format string, args ...any) error {
	return &VerifyError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the Code carried by err, or CodeEncoding if err does not
// wrap a *VerifyError (a defensive default — the verifier never returns a
// bare error, but callers across a host/FFI boundary need a code no matter
// what).
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var ve *VerifyError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return CodeEncoding
}
