package compression

// RLE encodes runs as (count, value) byte pairs with runs capped at 255.
type RLE struct{}

// Name returns "RLE".
func (RLE) Name() string { return "RLE" }

// Compress encodes data as run-length pairs.
func (r RLE) Compress(data []byte) []byte {
	if len(data) == 0 {
		return data
	}

	encoded := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		value := data[i]
		run := 1
		for i+run < len(data) && data[i+run] == value && run < 255 {
			run++
		}
		encoded = append(encoded, byte(run), value)
		i += run
	}

	return pick(r, data, encoded)
}

// Decompress expands run-length pairs. Odd-length input or a zero count
// is not RLE and is returned unchanged.
func (RLE) Decompress(data []byte) []byte {
	if len(data) == 0 || len(data)%2 != 0 {
		return data
	}

	total := 0
	for i := 0; i < len(data); i += 2 {
		if data[i] == 0 {
			return data
		}
		total += int(data[i])
	}

	out := make([]byte, 0, total)
	for i := 0; i < len(data); i += 2 {
		for n := 0; n < int(data[i]); n++ {
			out = append(out, data[i+1])
		}
	}
	return out
}
