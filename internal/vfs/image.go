package vfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/facebookgo/atomicfile"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/vfs/internal/compression"
	"github.com/GriffinCanCode/vfs/internal/encryption"
)

// Disk image layout. Integers are little-endian u64 unless noted; strings
// and byte fields are length-prefixed.
//
//	[capacity][usedSpace] node [cwd] [mountCount] {[mountPoint][image]}*
//
//	node: [name][isDir u8]
//	  file: [stored bytes][compressed u8][compAlg][encrypted u8]
//	        {[encAlg][key]} [versionCount] [unix seconds i64]*
//	  dir:  [childCount] node*
//
// Stored bytes are ciphertext for encrypted files. Version content is not
// written; only the timestamps are.

type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) flag(v bool) {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}

func (e *encoder) bytes(b []byte) {
	e.u64(uint64(len(b)))
	e.buf.Write(b)
}

func (e *encoder) str(s string) {
	e.u64(uint64(len(s)))
	e.buf.WriteString(s)
}

func (ns *Namespace) encode() []byte {
	var e encoder
	e.u64(ns.capacity)
	e.u64(ns.used)
	ns.encodeNode(&e, ns.rootNode())

	e.str(ns.CurrentPath())
	keys := ns.mountKeys()
	e.u64(uint64(len(keys)))
	for _, key := range keys {
		e.str(key)
		e.str(ns.mounts[key].image)
	}
	return e.buf.Bytes()
}

func (ns *Namespace) encodeNode(e *encoder, n *Node) {
	e.str(n.name)
	e.flag(n.dir)

	if n.dir {
		children := n.Children()
		e.u64(uint64(len(children)))
		for _, c := range children {
			ns.encodeNode(e, c)
		}
		return
	}

	e.bytes(n.stored)
	e.flag(n.compressed)
	e.str(n.compAlg)
	e.flag(n.encrypted)
	if n.encrypted {
		e.str(n.encAlg)
		e.str(n.key)
	}
	e.u64(uint64(len(n.versions)))
	for _, v := range n.versions {
		e.u64(uint64(v.Timestamp.Unix()))
	}
}

// decoder reads fields until the first short read, after which every call
// is a no-op and err holds ErrCorruptImage.
type decoder struct {
	buf []byte
	err error
}

func (d *decoder) take(n uint64) []byte {
	if d.err != nil {
		return nil
	}
	if n > uint64(len(d.buf)) {
		d.err = ErrCorruptImage
		return nil
	}
	b := d.buf[:n:n]
	d.buf = d.buf[n:]
	return b
}

func (d *decoder) u64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *decoder) flag() bool {
	b := d.take(1)
	if b == nil {
		return false
	}
	if b[0] > 1 {
		d.err = ErrCorruptImage
	}
	return b[0] == 1
}

func (d *decoder) bytes() []byte {
	return bytes.Clone(d.take(d.u64()))
}

func (d *decoder) str() string {
	return string(d.take(d.u64()))
}

// fits reports whether count records of at least size bytes each can
// still be read.
func (d *decoder) fits(count, size uint64) bool {
	if d.err != nil {
		return false
	}
	if count > uint64(len(d.buf))/size {
		d.err = ErrCorruptImage
		return false
	}
	return true
}

type image struct {
	capacity uint64
	nodes    *arena
	root     NodeID
	cwd      string
	mounts   []MountInfo
}

func decodeImage(data []byte, at time.Time) (*image, error) {
	d := &decoder{buf: data}
	img := &image{nodes: &arena{}}

	img.capacity = d.u64()
	d.u64() // used space is recomputed from the tree

	root, err := img.decodeNode(d, nil, at)
	if err != nil {
		return nil, err
	}
	if !root.dir {
		return nil, ErrCorruptImage
	}
	root.name = "/"
	img.root = root.id

	img.cwd = d.str()
	// Images without a mount section are accepted.
	if d.err == nil && len(d.buf) > 0 {
		count := d.u64()
		if d.fits(count, 16) {
			for i := uint64(0); i < count; i++ {
				point, file := d.str(), d.str()
				img.mounts = append(img.mounts, MountInfo{MountPoint: point, Image: file})
			}
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	if len(d.buf) != 0 {
		return nil, ErrCorruptImage
	}
	return img, nil
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.Contains(name, "/")
}

func (img *image) decodeNode(d *decoder, parent *Node, at time.Time) (*Node, error) {
	name := d.str()
	dir := d.flag()
	if d.err != nil {
		return nil, d.err
	}
	if parent != nil && (!validName(name) || img.nodes.child(parent, name) != nil) {
		return nil, ErrCorruptImage
	}

	n := img.nodes.alloc(name, dir, at)
	if parent != nil {
		img.nodes.attach(parent, n)
	}

	if dir {
		count := d.u64()
		if !d.fits(count, 9) {
			return nil, ErrCorruptImage
		}
		for i := uint64(0); i < count; i++ {
			if _, err := img.decodeNode(d, n, at); err != nil {
				return nil, err
			}
		}
		return n, nil
	}

	stored := d.bytes()
	compressed := d.flag()
	compAlg := d.str()
	encrypted := d.flag()
	var encAlg, key string
	if encrypted {
		encAlg, key = d.str(), d.str()
	}
	versions := d.u64()
	if !d.fits(versions, 8) {
		return nil, ErrCorruptImage
	}
	var newest int64
	for i := uint64(0); i < versions; i++ {
		ts := int64(d.u64())
		if i == 0 {
			newest = ts
		}
	}
	if d.err != nil {
		return nil, d.err
	}

	n.stored = stored
	if encrypted {
		c, ok := encryption.Lookup(encAlg)
		if !ok || key == "" {
			return nil, ErrCorruptImage
		}
		n.encrypted, n.encAlg, n.key = true, c.Name(), key
	}
	if compressed {
		c, ok := compression.Lookup(compAlg)
		if !ok {
			return nil, ErrCorruptImage
		}
		n.compressed, n.compAlg = true, c.Name()
	}
	n.apply(n.plaintext())
	if versions > 0 {
		n.modTime = time.Unix(newest, 0)
	}
	return n, nil
}

// SaveToDisk writes the namespace to image through a temporary file and
// rename. Mounted volumes are flushed to their own images first.
func (ns *Namespace) SaveToDisk(image string) (err error) {
	defer ns.track("save", time.Now(), &err)

	var result *multierror.Error
	for _, key := range ns.mountKeys() {
		m := ns.mounts[key]
		if err := m.volume.SaveToDisk(m.image); err != nil {
			result = multierror.Append(result, fmt.Errorf("flush %s: %w", key, err))
		}
	}
	if err := writeImage(image, ns.encode()); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	ns.logger.Info("Saved disk image",
		zap.String("image", image),
		zap.Uint64("used", ns.used),
		zap.Int("mounts", len(ns.mounts)),
	)
	return nil
}

func writeImage(image string, data []byte) error {
	f, err := atomicfile.New(image, 0o644)
	if err != nil {
		return fmt.Errorf("save %s: %w", image, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Abort()
		return fmt.Errorf("save %s: %w", image, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save %s: %w", image, err)
	}
	return nil
}

// LoadFromDisk replaces the namespace with the contents of image. The image
// is fully decoded before anything changes, so a failed load leaves the
// namespace as it was. Current volumes are flushed and unmounted; volumes
// recorded in the image are remounted, skipping any that fail.
func (ns *Namespace) LoadFromDisk(image string) (err error) {
	defer ns.track("load", time.Now(), &err)

	data, err := os.ReadFile(image)
	if err != nil {
		return fmt.Errorf("load %s: %w", image, err)
	}
	img, err := decodeImage(data, now())
	if err != nil {
		return fmt.Errorf("load %s: %w", image, err)
	}

	if err := ns.Close(); err != nil {
		ns.logger.Warn("Failed to flush volumes before load", zap.Error(err))
	}
	for key, m := range ns.mounts {
		m.volume.detach()
		delete(ns.mounts, key)
		if ns.metrics != nil {
			ns.metrics.MountsActive.Dec()
		}
	}

	ns.nodes = img.nodes
	ns.root = img.root
	ns.cwd = img.root
	ns.capacity = img.capacity
	ns.tags = make(map[NodeID][]string)
	if n, ok := ns.lookup(img.cwd); ok && n.dir {
		ns.cwd = n.id
	}
	ns.recompute()

	for _, m := range img.mounts {
		if err := ns.MountVolume(m.Image, m.MountPoint); err != nil {
			ns.logger.Warn("Failed to remount volume",
				zap.String("image", m.Image),
				zap.String("mount_point", m.MountPoint),
				zap.Error(err),
			)
		}
	}

	ns.logger.Info("Loaded disk image",
		zap.String("image", image),
		zap.Int("nodes", ns.nodes.live()),
		zap.Uint64("used", ns.used),
	)
	return nil
}
