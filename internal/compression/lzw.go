package compression

import "encoding/binary"

// LZW emits dictionary codes seeded with all 256 single bytes. The record
// is a little-endian u64 code count followed by that many i32 codes.
type LZW struct{}

// Name returns "LZW".
func (LZW) Name() string { return "LZW" }

// Compress encodes data with a growing dictionary.
func (l LZW) Compress(data []byte) []byte {
	if len(data) == 0 {
		return data
	}

	dict := make(map[string]int32, 512)
	for i := 0; i < 256; i++ {
		dict[string([]byte{byte(i)})] = int32(i)
	}
	next := int32(256)

	var codes []int32
	start, end := 0, 1
	for end < len(data) {
		if _, ok := dict[string(data[start:end+1])]; ok {
			end++
			continue
		}
		codes = append(codes, dict[string(data[start:end])])
		dict[string(data[start:end+1])] = next
		next++
		start, end = end, end+1
	}
	codes = append(codes, dict[string(data[start:end])])

	out := make([]byte, 8+4*len(codes))
	binary.LittleEndian.PutUint64(out, uint64(len(codes)))
	for i, code := range codes {
		binary.LittleEndian.PutUint32(out[8+4*i:], uint32(code))
	}

	return pick(l, data, out)
}

// Decompress rebuilds the dictionary while decoding. A code count that
// does not match the body, or any code that is not yet defined, means the
// input is not LZW.
func (LZW) Decompress(data []byte) []byte {
	if len(data) < 8 {
		return data
	}

	count := binary.LittleEndian.Uint64(data)
	body := data[8:]
	if count == 0 || len(body)%4 != 0 || count != uint64(len(body)/4) {
		return data
	}

	code := func(i int) int32 { return int32(binary.LittleEndian.Uint32(body[4*i:])) }

	dict := make([][]byte, 256, 256+int(count))
	for i := range dict {
		dict[i] = []byte{byte(i)}
	}

	first := code(0)
	if first < 0 || first >= 256 {
		return data
	}
	w := dict[first]
	out := append([]byte(nil), w...)

	for i := 1; i < int(count); i++ {
		c := code(i)
		var entry []byte
		switch {
		case c >= 0 && int(c) < len(dict):
			entry = dict[c]
		case int(c) == len(dict):
			entry = append(append([]byte(nil), w...), w[0])
		default:
			return data
		}
		out = append(out, entry...)

		grown := make([]byte, len(w)+1)
		copy(grown, w)
		grown[len(w)] = entry[0]
		dict = append(dict, grown)
		w = entry
	}

	return out
}
