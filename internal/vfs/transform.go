package vfs

import (
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/vfs/internal/compression"
	"github.com/GriffinCanCode/vfs/internal/encryption"
)

// CompressFile enables or disables compression on a file. An empty
// algorithm selects the default codec. Enabling an already compressed file
// keeps its current codec.
func (ns *Namespace) CompressFile(p string, enable bool, algorithm string) (err error) {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.CompressFile(rel, enable, algorithm)
	}
	defer ns.track("compress", time.Now(), &err)

	n, err := ns.file("compress", abs)
	if err != nil {
		return err
	}
	if err := n.setCompression(enable, algorithm); err != nil {
		return pathError("compress", abs, err)
	}
	ns.observeCompression(n)
	ns.logger.Debug("Compression changed",
		zap.String("path", abs),
		zap.Bool("enabled", enable),
		zap.String("algorithm", n.compAlg),
	)
	return nil
}

// IsFileCompressed reports whether p is a compressed file.
func (ns *Namespace) IsFileCompressed(p string) bool {
	n, ok := ns.ResolvePath(p)
	return ok && n.compressed
}

// FileCompressionAlgorithm returns the codec name of p, or "".
func (ns *Namespace) FileCompressionAlgorithm(p string) string {
	if n, ok := ns.ResolvePath(p); ok {
		return n.compAlg
	}
	return ""
}

// ListCompressionAlgorithms returns the available codec names.
func (ns *Namespace) ListCompressionAlgorithms() []string {
	return compression.Names()
}

// EncryptFile encrypts a file under key. An empty algorithm selects the
// default cipher. Encrypting an already encrypted file is a no-op; use
// ChangeEncryptionKey to rotate the key.
func (ns *Namespace) EncryptFile(p, key, algorithm string) (err error) {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.EncryptFile(rel, key, algorithm)
	}
	defer ns.track("encrypt", time.Now(), &err)

	n, err := ns.file("encrypt", abs)
	if err != nil {
		return err
	}
	if err := n.setEncryption(true, key, algorithm); err != nil {
		return pathError("encrypt", abs, err)
	}
	return nil
}

// DecryptFile stores a file's content as plaintext again.
func (ns *Namespace) DecryptFile(p string) (err error) {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.DecryptFile(rel)
	}
	defer ns.track("decrypt", time.Now(), &err)

	n, err := ns.file("decrypt", abs)
	if err != nil {
		return err
	}
	return n.setEncryption(false, "", "")
}

// IsFileEncrypted reports whether p is an encrypted file.
func (ns *Namespace) IsFileEncrypted(p string) bool {
	n, ok := ns.ResolvePath(p)
	return ok && n.encrypted
}

// FileEncryptionAlgorithm returns the cipher name of p, or "".
func (ns *Namespace) FileEncryptionAlgorithm(p string) string {
	if n, ok := ns.ResolvePath(p); ok {
		return n.encAlg
	}
	return ""
}

// ChangeEncryptionKey re-encrypts an encrypted file under a new key.
func (ns *Namespace) ChangeEncryptionKey(p, key string) error {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.ChangeEncryptionKey(rel, key)
	}

	n, err := ns.file("changekey", abs)
	if err != nil {
		return err
	}
	if err := n.changeKey(key); err != nil {
		return pathError("changekey", abs, err)
	}
	return nil
}

// ListEncryptionAlgorithms returns the available cipher names.
func (ns *Namespace) ListEncryptionAlgorithms() []string {
	return encryption.Names()
}

// SaveFileVersion snapshots a file's current content.
func (ns *Namespace) SaveFileVersion(p string) error {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.SaveFileVersion(rel)
	}

	n, err := ns.file("saveversion", abs)
	if err != nil {
		return err
	}
	return n.saveVersion(now())
}

// RestoreFileVersion restores version index (0 is the newest). The content
// being replaced is itself saved as a version. Restoring a larger version
// is subject to the capacity check Write applies.
func (ns *Namespace) RestoreFileVersion(p string, index int) error {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.RestoreFileVersion(rel, index)
	}

	n, err := ns.file("restoreversion", abs)
	if err != nil {
		return err
	}
	if index >= 0 && index < len(n.versions) {
		if grow := len(n.versions[index].Content) - n.size; grow > 0 {
			if err := ns.reserve("restoreversion", abs, uint64(grow)); err != nil {
				return err
			}
		}
	}
	if err := n.restoreVersion(index, now()); err != nil {
		return pathError("restoreversion", abs, err)
	}
	ns.recompute()
	return nil
}

// FileVersionCount returns the number of versions of p.
func (ns *Namespace) FileVersionCount(p string) int {
	if n, ok := ns.ResolvePath(p); ok {
		return n.VersionCount()
	}
	return 0
}

// FileVersionTimestamps lists version times of p, newest first.
func (ns *Namespace) FileVersionTimestamps(p string) []time.Time {
	if n, ok := ns.ResolvePath(p); ok {
		return n.VersionTimestamps()
	}
	return nil
}
