package main

import (
	"fmt"

	"github.com/softprodev/ckb-nft-kabletop/crypto"
	"github.com/softprodev/ckb-nft-kabletop/kabletop"
)

// simContext is a ChainContext backed entirely by a decoded Request. It
// plays the same role here that a real CKB-VM syscall binding would play in
// a deployed lock script, and the same role fakeChainContext plays in the
// kabletop package's own tests: a flat, in-memory stand-in for the cells and
// witnesses of a single transaction.
type simContext struct {
	script     []byte
	scriptHash [32]byte

	outputLockHashes [][32]byte
	outputLocks      [][]byte
	outputCapacities []uint64
	outputData       [][]byte

	groupInputLockHash [32]byte
	groupInputCapacity uint64
	groupInputData     []byte

	cellDepData [][]byte

	witnesses [][]byte
	inputsLen int

	since      uint64
	sighashMsg [32]byte
	sighashSig [65]byte

	debugLog []string
}

func newSimContext(req *Request) (*simContext, error) {
	script, err := decodeHex(req.ScriptHex)
	if err != nil {
		return nil, fmt.Errorf("script_hex: %w", err)
	}

	groupInputLockHash, err := decodeHash32(req.GroupInputLockHash)
	if err != nil {
		return nil, fmt.Errorf("group_input_lock_hash: %w", err)
	}
	groupInputData, err := decodeOptionalHex(req.GroupInputDataHex)
	if err != nil {
		return nil, fmt.Errorf("group_input_data_hex: %w", err)
	}

	outputLockHashes := make([][32]byte, len(req.OutputLockHashes))
	for i, s := range req.OutputLockHashes {
		h, err := decodeHash32(s)
		if err != nil {
			return nil, fmt.Errorf("output_lock_hashes[%d]: %w", i, err)
		}
		outputLockHashes[i] = h
	}

	outputLocks, err := decodeHexList(req.OutputLocks)
	if err != nil {
		return nil, fmt.Errorf("output_locks: %w", err)
	}
	outputData, err := decodeHexList(req.OutputData)
	if err != nil {
		return nil, fmt.Errorf("output_data: %w", err)
	}
	cellDepData, err := decodeHexList(req.CellDepData)
	if err != nil {
		return nil, fmt.Errorf("cell_dep_data: %w", err)
	}
	witnesses, err := decodeHexList(req.Witnesses)
	if err != nil {
		return nil, fmt.Errorf("witnesses: %w", err)
	}

	sighashMsg, err := decodeHash32(req.SighashMsgHex)
	if err != nil {
		return nil, fmt.Errorf("sighash_msg_hex: %w", err)
	}
	sighashSig, err := decodeSignature65(req.SighashSigHex)
	if err != nil {
		return nil, fmt.Errorf("sighash_sig_hex: %w", err)
	}

	return &simContext{
		script:             script,
		scriptHash:         crypto.DefaultProvider{}.Blake2bChain(script),
		outputLockHashes:   outputLockHashes,
		outputLocks:        outputLocks,
		outputCapacities:   req.OutputCapacities,
		outputData:         outputData,
		groupInputLockHash: groupInputLockHash,
		groupInputCapacity: req.GroupInputCapacity,
		groupInputData:     groupInputData,
		cellDepData:        cellDepData,
		witnesses:          witnesses,
		inputsLen:          req.InputsLen,
		since:              req.Since,
		sighashMsg:         sighashMsg,
		sighashSig:         sighashSig,
	}, nil
}

func (c *simContext) LoadScript() ([]byte, error) { return c.script, nil }

func (c *simContext) LoadScriptHash() ([32]byte, error) { return c.scriptHash, nil }

func (c *simContext) LoadCellLockHash(source kabletop.Source, index int) ([32]byte, error) {
	switch source {
	case kabletop.SourceGroupInput:
		if index != 0 {
			return [32]byte{}, kabletop.ErrIndexOutOfBound
		}
		return c.groupInputLockHash, nil
	case kabletop.SourceOutput:
		if index < 0 || index >= len(c.outputLockHashes) {
			return [32]byte{}, kabletop.ErrIndexOutOfBound
		}
		return c.outputLockHashes[index], nil
	default:
		return [32]byte{}, fmt.Errorf("unsupported source")
	}
}

func (c *simContext) LoadCellLock(source kabletop.Source, index int) ([]byte, error) {
	if source != kabletop.SourceOutput {
		return nil, fmt.Errorf("unsupported source")
	}
	if index < 0 || index >= len(c.outputLocks) {
		return nil, kabletop.ErrIndexOutOfBound
	}
	return c.outputLocks[index], nil
}

func (c *simContext) LoadCellCapacity(source kabletop.Source, index int) (uint64, error) {
	switch source {
	case kabletop.SourceGroupInput:
		if index != 0 {
			return 0, kabletop.ErrIndexOutOfBound
		}
		return c.groupInputCapacity, nil
	case kabletop.SourceOutput:
		if index < 0 || index >= len(c.outputCapacities) {
			return 0, kabletop.ErrIndexOutOfBound
		}
		return c.outputCapacities[index], nil
	default:
		return 0, fmt.Errorf("unsupported source")
	}
}

func (c *simContext) LoadCellData(source kabletop.Source, index int) ([]byte, error) {
	switch source {
	case kabletop.SourceGroupInput:
		if index != 0 {
			return nil, kabletop.ErrIndexOutOfBound
		}
		return c.groupInputData, nil
	case kabletop.SourceOutput:
		if index < 0 || index >= len(c.outputData) {
			return nil, kabletop.ErrIndexOutOfBound
		}
		return c.outputData[index], nil
	case kabletop.SourceCellDep:
		if index < 0 || index >= len(c.cellDepData) {
			return nil, kabletop.ErrIndexOutOfBound
		}
		return c.cellDepData[index], nil
	default:
		return nil, fmt.Errorf("unsupported source")
	}
}

func (c *simContext) LoadWitness(source kabletop.Source, index int) ([]byte, error) {
	if source != kabletop.SourceInput {
		return nil, fmt.Errorf("unsupported source")
	}
	if index < 0 || index >= len(c.witnesses) {
		return nil, kabletop.ErrIndexOutOfBound
	}
	return c.witnesses[index], nil
}

func (c *simContext) LoadInputSince() (uint64, error) { return c.since, nil }

func (c *simContext) InputsLen() (int, error) { return c.inputsLen, nil }

func (c *simContext) GroupInputSighashMessage() ([32]byte, error) { return c.sighashMsg, nil }

func (c *simContext) GroupInputLockSignature() ([65]byte, error) { return c.sighashSig, nil }

func (c *simContext) Debug(msg string) { c.debugLog = append(c.debugLog, msg) }
