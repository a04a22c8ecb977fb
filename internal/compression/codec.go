package compression

import (
	"bytes"
	"sort"
)

// DefaultName is the codec used when no algorithm is named.
const DefaultName = "Huffman"

// Codec compresses and decompresses byte strings.
type Codec interface {
	Name() string
	Compress(data []byte) []byte
	Decompress(data []byte) []byte
}

var (
	registry = map[string]Codec{}
	order    []string
)

func init() {
	register(RLE{})
	register(Huffman{})
	register(LZW{})
	register(Gzip{})
	register(Zstd{})
}

func register(c Codec) {
	registry[c.Name()] = c
	order = append(order, c.Name())
}

// Lookup returns the codec registered under name.
func Lookup(name string) (Codec, bool) {
	c, ok := registry[name]
	return c, ok
}

// Default returns the default codec.
func Default() Codec {
	return registry[DefaultName]
}

// Names lists the registered codec names in registration order.
func Names() []string {
	names := make([]string, len(order))
	copy(names, order)
	return names
}

// Sorted lists the registered codec names alphabetically.
func Sorted() []string {
	names := Names()
	sort.Strings(names)
	return names
}

// pick returns encoded when it is strictly smaller than data. Otherwise
// data is returned as-is, but only when the codec would hand it back
// unchanged on decompression; if data happens to parse as the codec's own
// format the encoded form is kept so the round trip holds.
func pick(c Codec, data, encoded []byte) []byte {
	if len(encoded) < len(data) {
		return encoded
	}
	if bytes.Equal(c.Decompress(data), data) {
		return data
	}
	return encoded
}
