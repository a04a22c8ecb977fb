package vfs

import (
	"bytes"
	"time"

	"github.com/GriffinCanCode/vfs/internal/compression"
	"github.com/GriffinCanCode/vfs/internal/encryption"
)

// now is swapped out in tests.
var now = time.Now

// Content returns the file's plaintext. The stored bytes are decrypted
// first; when the file is also compressed that result is discarded and the
// compressed cache, built from the same plaintext, is decompressed instead.
func (n *Node) Content() []byte {
	if n.dir {
		return nil
	}

	out := n.stored
	if n.encrypted {
		out = n.cipher().Decrypt(out, n.key)
	}
	if n.compressed {
		out = n.codec().Decompress(n.cache)
	}
	return bytes.Clone(out)
}

// plaintext recovers the baseline content without touching the cache.
func (n *Node) plaintext() []byte {
	if n.encrypted {
		return n.cipher().Decrypt(n.stored, n.key)
	}
	return n.stored
}

func (n *Node) codec() compression.Codec {
	c, ok := compression.Lookup(n.compAlg)
	if !ok {
		return compression.Default()
	}
	return c
}

func (n *Node) cipher() encryption.Cipher {
	c, ok := encryption.Lookup(n.encAlg)
	if !ok {
		return encryption.Default()
	}
	return c
}

// setContent snapshots non-empty prior content and stores data.
func (n *Node) setContent(data []byte, at time.Time) error {
	if n.dir {
		return ErrIsDir
	}
	if prev := n.plaintext(); len(prev) > 0 {
		n.pushVersion(prev, at)
	}
	n.apply(bytes.Clone(data))
	n.modTime = at
	return nil
}

// apply makes plain the baseline and reapplies active transforms.
func (n *Node) apply(plain []byte) {
	n.size = len(plain)
	n.cache = nil
	if n.compressed {
		n.cache = n.codec().Compress(plain)
	}
	if n.encrypted {
		n.stored = n.cipher().Encrypt(plain, n.key)
	} else {
		n.stored = plain
	}
}

func (n *Node) pushVersion(content []byte, at time.Time) {
	v := Version{Content: bytes.Clone(content), Timestamp: at}
	n.versions = append([]Version{v}, n.versions...)
	if len(n.versions) > maxVersions {
		n.versions = n.versions[:maxVersions]
	}
}

func (n *Node) saveVersion(at time.Time) error {
	if n.dir {
		return ErrIsDir
	}
	n.pushVersion(n.plaintext(), at)
	return nil
}

// restoreVersion brings back version i. The current content is snapshotted
// after version i has been read, so indexes refer to the ledger as it was
// when the call was made.
func (n *Node) restoreVersion(i int, at time.Time) error {
	if n.dir {
		return ErrIsDir
	}
	if i < 0 || i >= len(n.versions) {
		return ErrVersionRange
	}

	target := n.versions[i].Content
	n.pushVersion(n.plaintext(), at)
	n.apply(bytes.Clone(target))
	n.modTime = at
	return nil
}

func (n *Node) setCompression(enable bool, algorithm string) error {
	if n.dir {
		return ErrIsDir
	}
	if enable == n.compressed {
		return nil
	}
	if !enable {
		n.compressed, n.compAlg, n.cache = false, "", nil
		return nil
	}

	codec, err := lookupCodec(algorithm)
	if err != nil {
		return err
	}
	n.compressed, n.compAlg = true, codec.Name()
	n.cache = codec.Compress(n.plaintext())
	return nil
}

func (n *Node) setEncryption(enable bool, key, algorithm string) error {
	if n.dir {
		return ErrIsDir
	}
	if enable == n.encrypted {
		return nil
	}
	if !enable {
		plain := n.plaintext()
		n.encrypted, n.encAlg, n.key = false, "", ""
		n.stored = plain
		return nil
	}
	if key == "" {
		return ErrInvalidKey
	}

	cipher, err := lookupCipher(algorithm)
	if err != nil {
		return err
	}
	plain := n.plaintext()
	n.encrypted, n.encAlg, n.key = true, cipher.Name(), key
	n.stored = cipher.Encrypt(plain, key)
	return nil
}

func (n *Node) changeKey(key string) error {
	if n.dir {
		return ErrIsDir
	}
	if !n.encrypted {
		return ErrNotEncrypted
	}
	if key == "" {
		return ErrInvalidKey
	}
	plain := n.plaintext()
	n.key = key
	n.stored = n.cipher().Encrypt(plain, key)
	return nil
}

// lookupCodec resolves a compression name; "" selects the default.
func lookupCodec(name string) (compression.Codec, error) {
	if name == "" {
		return compression.Default(), nil
	}
	c, ok := compression.Lookup(name)
	if !ok {
		return nil, ErrUnknownAlgorithm
	}
	return c, nil
}

// lookupCipher resolves an encryption name; "" selects the default.
func lookupCipher(name string) (encryption.Cipher, error) {
	if name == "" {
		return encryption.Default(), nil
	}
	c, ok := encryption.Lookup(name)
	if !ok {
		return nil, ErrUnknownAlgorithm
	}
	return c, nil
}
