package vfs

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

type mount struct {
	image  string
	volume *Namespace
}

// MountInfo describes one entry of the mount table.
type MountInfo struct {
	MountPoint string `json:"mount_point"`
	Image      string `json:"image"`
}

// volumeFor finds the mount with the longest key equal to abs or a
// segment-boundary prefix of it, and rewrites abs relative to that mount.
// Mount points never overlap, so at most one key of each length matches.
func (ns *Namespace) volumeFor(abs string) (*mount, string, bool) {
	best := ""
	for key := range ns.mounts {
		if within(abs, key) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return nil, "", false
	}

	rel := abs[len(best):]
	if rel == "" {
		rel = "/"
	}
	return ns.mounts[best], rel, true
}

func (ns *Namespace) mountKeys() []string {
	keys := make([]string, 0, len(ns.mounts))
	for key := range ns.mounts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CreateVolume writes an empty volume of the given capacity to image.
func (ns *Namespace) CreateVolume(image string, capacity uint64) error {
	vol := New(capacity, ns.opts...)
	defer vol.detach()

	if err := vol.SaveToDisk(image); err != nil {
		return fmt.Errorf("create volume %s: %w", image, err)
	}
	ns.logger.Info("Created volume",
		zap.String("image", image),
		zap.Uint64("capacity", capacity),
	)
	return nil
}

// MountVolume loads image into a fresh namespace grafted at mountPoint.
// The mount directory is created when missing; its parent must exist.
// Mounting at the root, on top of an existing mount, or above one is
// rejected.
func (ns *Namespace) MountVolume(image, mountPoint string) (err error) {
	abs := ns.abs(mountPoint)
	if abs == "/" {
		return pathError("mount", abs, ErrInvalidPath)
	}
	if _, ok := ns.mounts[abs]; ok {
		return pathError("mount", abs, ErrExists)
	}
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.MountVolume(image, rel)
	}
	defer ns.track("mount", time.Now(), &err)

	for key := range ns.mounts {
		if within(key, abs) {
			return pathError("mount", abs, ErrBusy)
		}
	}
	if _, err := os.Stat(image); err != nil {
		return fmt.Errorf("mount %s: %w", abs, err)
	}
	canon, err := filepath.Abs(image)
	if err != nil {
		return fmt.Errorf("mount %s: %w", abs, err)
	}
	// An image that is already open further up the chain would mount itself.
	if slices.Contains(ns.ancestors, canon) {
		return pathError("mount", abs, ErrBusy)
	}

	point, ok := ns.lookup(abs)
	if !ok {
		if err := ns.Mkdir(abs); err != nil {
			return err
		}
		point, _ = ns.lookup(abs)
	}
	if !point.dir {
		return pathError("mount", abs, ErrNotDir)
	}

	vol := New(0, ns.opts...)
	vol.ancestors = append(slices.Clone(ns.ancestors), canon)
	if err := vol.LoadFromDisk(image); err != nil {
		vol.detach()
		return fmt.Errorf("mount %s: %w", abs, err)
	}

	ns.mounts[abs] = &mount{image: image, volume: vol}
	if ns.nodes.isAncestor(point, ns.nodes.get(ns.cwd)) {
		ns.cwd = point.parent
	}
	if ns.metrics != nil {
		ns.metrics.MountsActive.Inc()
	}

	ns.logger.Info("Mounted volume",
		zap.String("image", image),
		zap.String("mount_point", abs),
		zap.String("nested", vol.id.String()),
	)
	return nil
}

// UnmountVolume flushes the volume at mountPoint to its image and drops it
// from the mount table. The mount directory stays in place.
func (ns *Namespace) UnmountVolume(mountPoint string) (err error) {
	abs := ns.abs(mountPoint)
	m, ok := ns.mounts[abs]
	if !ok {
		if owner, rel, ok := ns.volumeFor(abs); ok {
			return owner.volume.UnmountVolume(rel)
		}
		return pathError("unmount", abs, ErrNotMounted)
	}
	defer ns.track("unmount", time.Now(), &err)

	if err := m.volume.SaveToDisk(m.image); err != nil {
		return fmt.Errorf("unmount %s: %w", abs, err)
	}
	m.volume.detach()
	delete(ns.mounts, abs)
	if ns.metrics != nil {
		ns.metrics.MountsActive.Dec()
	}

	ns.logger.Info("Unmounted volume",
		zap.String("image", m.image),
		zap.String("mount_point", abs),
	)
	return nil
}

// ListMountedVolumes returns this namespace's mount table sorted by mount
// point. Volumes mounted inside nested volumes are not included.
func (ns *Namespace) ListMountedVolumes() []MountInfo {
	out := make([]MountInfo, 0, len(ns.mounts))
	for _, key := range ns.mountKeys() {
		out = append(out, MountInfo{MountPoint: key, Image: ns.mounts[key].image})
	}
	return out
}

// IsMountPoint reports whether p is a mount point, in this namespace or in
// a nested volume.
func (ns *Namespace) IsMountPoint(p string) bool {
	abs := ns.abs(p)
	if _, ok := ns.mounts[abs]; ok {
		return true
	}
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.IsMountPoint(rel)
	}
	return false
}

// Close unmounts every volume, flushing each to its image. All volumes are
// attempted; failures are combined.
func (ns *Namespace) Close() error {
	var result *multierror.Error
	for _, key := range ns.mountKeys() {
		if err := ns.UnmountVolume(key); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// detach drops nested volumes without flushing them and clears this
// namespace's metric series.
func (ns *Namespace) detach() {
	for key, m := range ns.mounts {
		m.volume.detach()
		delete(ns.mounts, key)
		if ns.metrics != nil {
			ns.metrics.MountsActive.Dec()
		}
	}
	if ns.metrics != nil {
		ns.metrics.ForgetVolume(ns.id.String())
	}
}
