package kabletop

// WitnessArgs is the molecule shape every witness takes: three optional
// byte-string slots (lock, input_type, output_type). Only lock (the round
// signature) and input_type (the round payload) are used by this verifier.

const (
	witnessArgsFieldLock = iota
	witnessArgsFieldInputType
	witnessArgsFieldOutputType
	witnessArgsFieldCount
)

// extractWitnessLock returns the lock slot's bytes, or nil if absent.
func extractWitnessLock(witness []byte) ([]byte, error) {
	fields, err := decodeTable(witness, witnessArgsFieldCount)
	if err != nil {
		return nil, verrf(CodeEncoding, "witness: %v", err)
	}
	return decodeOptionalBytes(fields[witnessArgsFieldLock])
}

// extractWitnessInputType returns the input_type slot's bytes, or nil if
// absent.
func extractWitnessInputType(witness []byte) ([]byte, error) {
	fields, err := decodeTable(witness, witnessArgsFieldCount)
	if err != nil {
		return nil, verrf(CodeEncoding, "witness: %v", err)
	}
	return decodeOptionalBytes(fields[witnessArgsFieldInputType])
}

func decodeOptionalBytes(field []byte) ([]byte, error) {
	if len(field) == 0 {
		return nil, nil
	}
	return decodeBytesBlob(field)
}

// EncodeWitnessArgs builds a WitnessArgs table, for tests/fixtures.
func EncodeWitnessArgs(lock, inputType, outputType []byte) []byte {
	encodeOpt := func(b []byte) []byte {
		if b == nil {
			return nil
		}
		return encodeBytesBlob(b)
	}
	fields := [][]byte{
		encodeOpt(lock),
		encodeOpt(inputType),
		encodeOpt(outputType),
	}
	return encodeTable(fields)
}
