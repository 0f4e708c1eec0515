package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/softprodev/ckb-nft-kabletop/crypto"
	"github.com/softprodev/ckb-nft-kabletop/kabletop"
	"github.com/softprodev/ckb-nft-kabletop/script"
)

func runRequest(t *testing.T, req Request) Response {
	t.Helper()
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	rIn, wIn, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stdin: %v", err)
	}
	if _, err := wIn.Write(raw); err != nil {
		t.Fatalf("write stdin: %v", err)
	}
	_ = wIn.Close()

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stdout: %v", err)
	}

	oldIn, oldOut := os.Stdin, os.Stdout
	os.Stdin, os.Stdout = rIn, wOut

	outCh := make(chan []byte, 1)
	go func() {
		b, _ := io.ReadAll(rOut)
		outCh <- b
	}()

	runFromStdin()
	_ = wOut.Close()

	var outBytes []byte
	select {
	case outBytes = <-outCh:
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for CLI output")
	}

	os.Stdin, os.Stdout = oldIn, oldOut
	_ = rIn.Close()
	_ = rOut.Close()

	var resp Response
	if err := json.Unmarshal(bytes.TrimSpace(outBytes), &resp); err != nil {
		t.Fatalf("unmarshal resp: %v; raw=%q", err, string(outBytes))
	}
	return resp
}

func hx(b []byte) string { return hex.EncodeToString(b) }

func TestCLIEncodeDecodeRoundTrips(t *testing.T) {
	scriptResp := runRequest(t, Request{
		Op:                  "encode_args",
		User1PkhashHex:      hx(make([]byte, 20)),
		User2PkhashHex:      hx(make([]byte, 20)),
		UserStakingCapacity: 5000,
		UserDeckSize:        0,
		BeginBlocknumber:    10,
		LockCodeHashHex:     hx(make([]byte, 32)),
	})
	if !scriptResp.Ok {
		t.Fatalf("encode_args: %+v", scriptResp)
	}

	out := runRequest(t, Request{
		Op:          "encode_script",
		CodeHashHex: hx(make([]byte, 32)),
		HashType:    1,
		ArgsHex:     scriptResp.ArgsHex,
	})
	if !out.Ok {
		t.Fatalf("encode_script: %+v", out)
	}

	decoded := runRequest(t, Request{
		Op:         "encode_round",
		UserType:   uint8(kabletop.User1),
		Operations: []string{hx([]byte{1, 2, 3})},
	})
	if !decoded.Ok {
		t.Fatalf("encode_round: %+v", decoded)
	}

	back := runRequest(t, Request{Op: "decode_round", RoundHex: decoded.RoundHex})
	if !back.Ok {
		t.Fatalf("decode_round: %+v", back)
	}
	if back.UserType != "user1" {
		t.Fatalf("expected user1, got %q", back.UserType)
	}
	if len(back.Operations) != 1 || back.Operations[0] != hx([]byte{1, 2, 3}) {
		t.Fatalf("round trip lost an operation: %+v", back.Operations)
	}
}

func TestCLIRejectsMalformedHex(t *testing.T) {
	resp := runRequest(t, Request{Op: "decode_round", RoundHex: "zz"})
	if resp.Ok {
		t.Fatal("expected decode_round with bad hex to fail")
	}
}

func TestCLIUnknownOp(t *testing.T) {
	resp := runRequest(t, Request{Op: "nonsense"})
	if resp.Ok || resp.Err != "unknown op" {
		t.Fatalf("expected unknown op error, got %+v", resp)
	}
}

// testSigner is a minimal stand-in for the kabletop package's own
// unexported test fixtures, since this package can only see its exported
// surface.
type testSigner struct {
	priv *btcec.PrivateKey
}

func newTestSigner(t *testing.T) *testSigner {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	return &testSigner{priv: priv}
}

func (s *testSigner) pkhash() [20]byte {
	return crypto.DefaultProvider{}.Blake160(s.priv.PubKey().SerializeCompressed())
}

func (s *testSigner) sign(msg [32]byte) [65]byte {
	sig := ecdsa.SignCompact(s.priv, msg[:], true)
	recID := sig[0] - 27 - 4
	var out [65]byte
	copy(out[0:32], sig[1:33])
	copy(out[32:64], sig[33:65])
	out[64] = recID
	return out
}

func setWinnerProgramHex(winner int64) string {
	prog := []byte{
		byte(script.OpPushI64),
		byte(winner), 0, 0, 0, 0, 0, 0, 0,
		byte(script.OpStoreGlobal), byte(script.GlobalWinner),
		byte(script.OpHalt),
	}
	return hx(prog)
}

// TestCLIVerifyBattleSpendSettlementHappyPath exercises verify_battle_spend
// end to end: a one-round battle cell spent in settlement mode, with native
// code forcing the winner.
func TestCLIVerifyBattleSpendSettlementHappyPath(t *testing.T) {
	user1 := newTestSigner(t)
	user2 := newTestSigner(t)
	provider := crypto.DefaultProvider{}

	stake := uint64(10_000)
	kabletopCapacity := 2*stake + 1000
	lockHash := [32]byte{0x42}

	walletLockCodeHash := make([]byte, 32)
	walletLockCodeHash[0] = 0xcc

	argsResp := runRequest(t, Request{
		Op:                  "encode_args",
		User1PkhashHex:      hx(pk(user1.pkhash())),
		User2PkhashHex:      hx(pk(user2.pkhash())),
		UserStakingCapacity: stake,
		UserDeckSize:        0,
		BeginBlocknumber:    1000,
		LockCodeHashHex:     hx(walletLockCodeHash),
	})
	if !argsResp.Ok {
		t.Fatalf("encode_args: %+v", argsResp)
	}
	scriptResp := runRequest(t, Request{
		Op:          "encode_script",
		CodeHashHex: hx(make([]byte, 32)),
		HashType:    1,
		ArgsHex:     argsResp.ArgsHex,
	})
	if !scriptResp.Ok {
		t.Fatalf("encode_script: %+v", scriptResp)
	}

	user1Lock := runRequest(t, Request{Op: "encode_script", CodeHashHex: hx(walletLockCodeHash), HashType: 1, ArgsHex: hx(pk(user1.pkhash()))})
	user2Lock := runRequest(t, Request{Op: "encode_script", CodeHashHex: hx(walletLockCodeHash), HashType: 1, ArgsHex: hx(pk(user2.pkhash()))})
	if !user1Lock.Ok || !user2Lock.Ok {
		t.Fatalf("encode wallet locks: %+v / %+v", user1Lock, user2Lock)
	}

	roundResp := runRequest(t, Request{Op: "encode_round", UserType: uint8(kabletop.User1)})
	if !roundResp.Ok {
		t.Fatalf("encode_round: %+v", roundResp)
	}
	roundBytes, _ := hex.DecodeString(roundResp.RoundHex)

	msg := provider.Blake2bChain(lockHash[:], leBytes64ForTest(kabletopCapacity), roundBytes)
	sig := user2.sign(msg) // countersigner is the opposite player

	witnessResp := runRequest(t, Request{
		Op:           "encode_witness_args",
		LockHex:      hx(sig[:]),
		InputTypeHex: roundResp.RoundHex,
	})
	if !witnessResp.Ok {
		t.Fatalf("encode_witness_args: %+v", witnessResp)
	}

	spendMsg := [32]byte{0x99}
	spendSig := user1.sign(spendMsg)

	resp := runRequest(t, Request{
		Op:                 "verify_battle_spend",
		ScriptHex:          scriptResp.ScriptHex,
		NativeCodeHex:      setWinnerProgramHex(int64(kabletop.User1)),
		GroupInputLockHash: hx(lockHash[:]),
		GroupInputCapacity: kabletopCapacity,
		OutputLockHashes:   []string{hx(distinctHash(0xaa)), hx(distinctHash(0xbb))},
		OutputLocks:        []string{user1Lock.ScriptHex, user2Lock.ScriptHex},
		OutputCapacities:   []uint64{stake + 500, stake - 500},
		OutputData:         []string{"", ""},
		Witnesses:          []string{"", witnessResp.WitnessHex},
		InputsLen:          1,
		SighashMsgHex:      hx(spendMsg[:]),
		SighashSigHex:      hx(spendSig[:]),
	})
	if !resp.Ok {
		t.Fatalf("verify_battle_spend: %+v", resp)
	}
	if resp.Mode != "settlement" {
		t.Fatalf("expected settlement, got %q", resp.Mode)
	}
	if resp.RoundCount != 1 {
		t.Fatalf("expected 1 round, got %d", resp.RoundCount)
	}
}

func pk(h [20]byte) []byte { return h[:] }

func distinctHash(b byte) []byte {
	out := make([]byte, 32)
	out[0] = b
	return out
}

func leBytes64ForTest(v uint64) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}
