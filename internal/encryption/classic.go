package encryption

// XOR combines each byte with the key repeated cyclically.
type XOR struct{}

// Name returns "XOR".
func (XOR) Name() string { return "XOR" }

// Encrypt XORs data with the key.
func (XOR) Encrypt(data []byte, key string) []byte {
	if len(data) == 0 || key == "" {
		return data
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}

// Decrypt is Encrypt.
func (x XOR) Decrypt(data []byte, key string) []byte {
	return x.Encrypt(data, key)
}

// Caesar shifts ASCII letters by the key's byte sum modulo 26, keeping case.
type Caesar struct{}

// Name returns "Caesar".
func (Caesar) Name() string { return "Caesar" }

func (Caesar) shift(key string) int {
	sum := 0
	for i := 0; i < len(key); i++ {
		sum += int(key[i])
	}
	return sum % 26
}

// Encrypt shifts letters forward.
func (c Caesar) Encrypt(data []byte, key string) []byte {
	if len(data) == 0 || key == "" {
		return data
	}
	return rotate(data, c.shift(key))
}

// Decrypt shifts letters back.
func (c Caesar) Decrypt(data []byte, key string) []byte {
	if len(data) == 0 || key == "" {
		return data
	}
	return rotate(data, (26-c.shift(key))%26)
}

func rotate(data []byte, shift int) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		if isLetter(b) {
			base := letterBase(b)
			b = byte((int(b-base)+shift)%26) + base
		}
		out[i] = b
	}
	return out
}

// Vigenere shifts each letter by the next key letter. The key cursor only
// advances on letters of the input.
type Vigenere struct{}

// Name returns "Vigenere".
func (Vigenere) Name() string { return "Vigenere" }

// keyShift maps any key byte onto 0..25, so non-letter keys still invert.
func keyShift(k byte) int {
	return ((int(toLower(k))-'a')%26 + 26) % 26
}

// Encrypt applies the forward shifts.
func (Vigenere) Encrypt(data []byte, key string) []byte {
	return vigenere(data, key, 1)
}

// Decrypt applies the reverse shifts.
func (Vigenere) Decrypt(data []byte, key string) []byte {
	return vigenere(data, key, -1)
}

func vigenere(data []byte, key string, dir int) []byte {
	if len(data) == 0 || key == "" {
		return data
	}

	out := make([]byte, len(data))
	k := 0
	for i, b := range data {
		if isLetter(b) {
			base := letterBase(b)
			shift := dir * keyShift(key[k%len(key)])
			b = byte(((int(b-base)+shift)%26+26)%26) + base
			k++
		}
		out[i] = b
	}
	return out
}
