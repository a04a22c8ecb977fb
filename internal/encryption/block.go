package encryption

const blockSize = 16

var (
	sBox    = [16]byte{0x9, 0x4, 0xA, 0xB, 0xD, 0x1, 0x8, 0x5, 0x6, 0x2, 0x0, 0x3, 0xC, 0xE, 0xF, 0x7}
	invSBox = [16]byte{0xA, 0x5, 0x9, 0xB, 0x1, 0x7, 0x8, 0xF, 0x6, 0x0, 0x2, 0x3, 0xC, 0x4, 0xD, 0xE}
)

// BlockCipher is the toy "AES": PKCS#7-style padding to 16-byte blocks,
// each byte substituted nibble by nibble through a 4-bit S-box and then
// XORed with the key, zero-padded or truncated to 16 bytes.
type BlockCipher struct{}

// Name returns "AES".
func (BlockCipher) Name() string { return "AES" }

func blockKey(key string) [blockSize]byte {
	var k [blockSize]byte
	copy(k[:], key)
	return k
}

// Encrypt pads and transforms data. Output length is always a multiple
// of 16 and strictly longer than the input.
func (BlockCipher) Encrypt(data []byte, key string) []byte {
	if len(data) == 0 || key == "" {
		return data
	}

	k := blockKey(key)
	pad := blockSize - len(data)%blockSize

	out := make([]byte, len(data)+pad)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(pad)
	}

	for i, b := range out {
		out[i] = (sBox[b>>4]<<4 | sBox[b&0xF]) ^ k[i%blockSize]
	}
	return out
}

// Decrypt undoes the key addition, then the substitution, then strips a
// valid pad. Input that is not whole blocks is returned unchanged; a bad
// pad is left in place.
func (BlockCipher) Decrypt(data []byte, key string) []byte {
	if len(data) == 0 || key == "" || len(data)%blockSize != 0 {
		return data
	}

	k := blockKey(key)
	out := make([]byte, len(data))
	for i, b := range data {
		b ^= k[i%blockSize]
		out[i] = invSBox[b>>4]<<4 | invSBox[b&0xF]
	}

	pad := int(out[len(out)-1])
	if pad < 1 || pad > blockSize {
		return out
	}
	for _, b := range out[len(out)-pad:] {
		if int(b) != pad {
			return out
		}
	}
	return out[:len(out)-pad]
}
