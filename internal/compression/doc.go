// Package compression provides the per-file compression codecs of the VFS.
//
// This package is organized into one file per codec:
//   - rle: run-length pairs (count, value)
//   - huffman: frequency-built prefix codes with a serialized tree
//   - lzw: dictionary coding with 32-bit codes
//   - stream: gzip and zstd backed by klauspost/compress
//
// All codecs:
//   - Are stateless and safe for concurrent use
//   - Never fail: input they cannot shrink, or cannot decode, comes back unchanged
//   - Round-trip: Decompress(Compress(x)) == x for every x
//
// Example Usage:
//
//	codec, ok := compression.Lookup("Huffman")
//	packed := codec.Compress(data)
//	plain := codec.Decompress(packed)
package compression
