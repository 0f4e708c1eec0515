package kabletop

import "encoding/binary"

// Tagged binary format.
//
// Nested records (Script, Args, Round, Challenge, Operations, nfts) use a
// fixed, self-describing, length-prefixed layout modeled on CKB's molecule
// encoding. Three shapes are used:
//
//   - table:  u32le total_size, then one u32le offset per field (relative
//     to the start of the table), then the field bodies back to back. The
//     body of field i spans [offset[i], offset[i+1]) except the last field,
//     which spans to total_size. This lets every field — fixed or
//     variable-length — be sliced out in O(1) with a single bounds check.
//   - fixvec: u32le item_count, then item_count fixed-size items packed
//     back to back (used for the 20-byte NFT identifier lists).
//   - dynvec: u32le total_size, u32le item_count, then item_count u32le
//     offsets (relative to the start of the dynvec), then the item bodies
//     (used for per-round Operations, each an opaque byte string).
//
// Every accessor below returns a slice view into the caller's buffer; none
// of them copy.

const u32size = 4

func leUint64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

func leBytes64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

func readU32le(b []byte, off int) (uint32, error) {
	if off < 0 || off+u32size > len(b) {
		return 0, verr(CodeEncoding, "unexpected EOF reading u32")
	}
	return binary.LittleEndian.Uint32(b[off : off+u32size]), nil
}

func writeU32le(v uint32) []byte {
	buf := make([]byte, u32size)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

// decodeTable splits buf into fieldCount field views. It validates that the
// declared total_size matches len(buf), that offsets are non-decreasing,
// in-bounds, and that the header itself fits.
func decodeTable(buf []byte, fieldCount int) ([][]byte, error) {
	headerLen := u32size * (1 + fieldCount)
	if len(buf) < headerLen {
		return nil, verr(CodeEncoding, "table header truncated")
	}
	totalSize, err := readU32le(buf, 0)
	if err != nil {
		return nil, err
	}
	if int(totalSize) != len(buf) {
		return nil, verr(CodeEncoding, "table total_size mismatch")
	}
	offsets := make([]int, fieldCount)
	for i := 0; i < fieldCount; i++ {
		o, err := readU32le(buf, u32size*(1+i))
		if err != nil {
			return nil, err
		}
		offsets[i] = int(o)
	}
	fields := make([][]byte, fieldCount)
	for i := 0; i < fieldCount; i++ {
		start := offsets[i]
		end := len(buf)
		if i+1 < fieldCount {
			end = offsets[i+1]
		}
		if start < headerLen || end < start || end > len(buf) {
			return nil, verr(CodeEncoding, "table field offset out of bounds")
		}
		fields[i] = buf[start:end]
	}
	return fields, nil
}

// encodeTable is the inverse of decodeTable; used only by tests and by the
// CLI to build synthetic fixtures (the verifier itself never encodes).
func encodeTable(fields [][]byte) []byte {
	headerLen := u32size * (1 + len(fields))
	total := headerLen
	for _, f := range fields {
		total += len(f)
	}
	out := make([]byte, 0, total)
	out = append(out, writeU32le(uint32(total))...)
	offset := headerLen
	for _, f := range fields {
		out = append(out, writeU32le(uint32(offset))...)
		offset += len(f)
	}
	for _, f := range fields {
		out = append(out, f...)
	}
	return out
}

// decodeFixvec reads a vector of itemSize-byte items.
func decodeFixvec(buf []byte, itemSize int) ([][]byte, error) {
	if len(buf) < u32size {
		return nil, verr(CodeEncoding, "fixvec header truncated")
	}
	count, err := readU32le(buf, 0)
	if err != nil {
		return nil, err
	}
	want := u32size + int(count)*itemSize
	if want != len(buf) {
		return nil, verr(CodeEncoding, "fixvec length mismatch")
	}
	items := make([][]byte, count)
	for i := range items {
		start := u32size + i*itemSize
		items[i] = buf[start : start+itemSize]
	}
	return items, nil
}

func encodeFixvec(items [][]byte) []byte {
	out := make([]byte, 0, u32size+len(items)*20)
	out = append(out, writeU32le(uint32(len(items)))...)
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

// decodeDynvec reads a vector of variable-length byte strings.
func decodeDynvec(buf []byte) ([][]byte, error) {
	if len(buf) < 2*u32size {
		return nil, verr(CodeEncoding, "dynvec header truncated")
	}
	totalSize, err := readU32le(buf, 0)
	if err != nil {
		return nil, err
	}
	if int(totalSize) != len(buf) {
		return nil, verr(CodeEncoding, "dynvec total_size mismatch")
	}
	count, err := readU32le(buf, u32size)
	if err != nil {
		return nil, err
	}
	headerLen := 2*u32size + int(count)*u32size
	if headerLen > len(buf) {
		return nil, verr(CodeEncoding, "dynvec offset table truncated")
	}
	items := make([][]byte, count)
	for i := 0; i < int(count); i++ {
		o, err := readU32le(buf, 2*u32size+i*u32size)
		if err != nil {
			return nil, err
		}
		start := int(o)
		end := len(buf)
		if i+1 < int(count) {
			e, err := readU32le(buf, 2*u32size+(i+1)*u32size)
			if err != nil {
				return nil, err
			}
			end = int(e)
		}
		if start < headerLen || end < start || end > len(buf) {
			return nil, verr(CodeEncoding, "dynvec item offset out of bounds")
		}
		items[i] = buf[start:end]
	}
	return items, nil
}

// decodeBytesBlob reads molecule's plain "Bytes" shape: u32le length
// followed by that many raw bytes, nothing else.
func decodeBytesBlob(buf []byte) ([]byte, error) {
	if len(buf) < u32size {
		return nil, verr(CodeEncoding, "bytes header truncated")
	}
	n, err := readU32le(buf, 0)
	if err != nil {
		return nil, err
	}
	if u32size+int(n) != len(buf) {
		return nil, verr(CodeEncoding, "bytes length mismatch")
	}
	return buf[u32size:], nil
}

func encodeBytesBlob(b []byte) []byte {
	out := make([]byte, 0, u32size+len(b))
	out = append(out, writeU32le(uint32(len(b)))...)
	out = append(out, b...)
	return out
}

func encodeDynvec(items [][]byte) []byte {
	headerLen := 2*u32size + len(items)*u32size
	total := headerLen
	for _, it := range items {
		total += len(it)
	}
	out := make([]byte, 0, total)
	out = append(out, writeU32le(uint32(total))...)
	out = append(out, writeU32le(uint32(len(items)))...)
	offset := headerLen
	for _, it := range items {
		out = append(out, writeU32le(uint32(offset))...)
		offset += len(it)
	}
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}
