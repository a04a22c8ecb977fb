package encryption

import "sort"

// DefaultName is the cipher used when no algorithm is named.
const DefaultName = "AES"

// Cipher encrypts and decrypts byte strings under a string key.
type Cipher interface {
	Name() string
	Encrypt(data []byte, key string) []byte
	Decrypt(data []byte, key string) []byte
}

var (
	registry = map[string]Cipher{}
	order    []string
)

func init() {
	for _, c := range []Cipher{XOR{}, Caesar{}, Vigenere{}, BlockCipher{}} {
		registry[c.Name()] = c
		order = append(order, c.Name())
	}
}

// Lookup returns the cipher registered under name.
func Lookup(name string) (Cipher, bool) {
	c, ok := registry[name]
	return c, ok
}

// Default returns the default cipher.
func Default() Cipher {
	return registry[DefaultName]
}

// Names lists cipher names in registration order.
func Names() []string {
	names := make([]string, len(order))
	copy(names, order)
	return names
}

// Sorted lists cipher names alphabetically.
func Sorted() []string {
	names := Names()
	sort.Strings(names)
	return names
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func letterBase(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return 'a'
	}
	return 'A'
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
