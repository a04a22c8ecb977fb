// Package encryption provides the keyed per-file ciphers of the VFS.
//
// These are teaching ciphers, not cryptography:
//   - XOR: cyclic key XOR, self-inverse
//   - Caesar: letter shift derived from the key's byte sum
//   - Vigenere: per-letter shift from the cyclic key
//   - AES: a 16-byte block toy with a nibble S-box and key addition
//
// Every cipher returns the input unchanged when either the input or the
// key is empty, and Decrypt(Encrypt(x, k), k) == x for non-empty k.
package encryption
