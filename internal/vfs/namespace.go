package vfs

import (
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/vfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/vfs/internal/shared/id"
)

// nodeOverhead is the fixed per-node charge against volume capacity.
const nodeOverhead = 128

// Namespace is one VFS tree with its cursor, mount table and tag index.
type Namespace struct {
	id       id.VolumeID
	nodes    *arena
	root     NodeID
	cwd      NodeID
	capacity uint64
	used     uint64

	mounts map[string]*mount
	tags   map[NodeID][]string

	// ancestors holds the absolute image paths of the enclosing volumes.
	ancestors []string

	opts    []Option
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// Option configures a Namespace. Mounted volumes inherit their parent's
// options.
type Option func(*Namespace)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *zap.Logger) Option {
	return func(ns *Namespace) {
		if logger != nil {
			ns.logger = logger
		}
	}
}

// WithMetrics records operation metrics on m.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(ns *Namespace) {
		ns.metrics = m
	}
}

// New creates an empty namespace with the given capacity in bytes.
func New(capacity uint64, opts ...Option) *Namespace {
	ns := &Namespace{
		id:       id.NewVolumeID(),
		nodes:    &arena{},
		capacity: capacity,
		mounts:   make(map[string]*mount),
		tags:     make(map[NodeID][]string),
		opts:     opts,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ns)
	}
	ns.logger = ns.logger.With(zap.String("volume", ns.id.String()))

	root := ns.nodes.alloc("/", true, now())
	ns.root, ns.cwd = root.id, root.id
	ns.recompute()
	return ns
}

// ID returns the namespace's volume identifier.
func (ns *Namespace) ID() id.VolumeID { return ns.id }

func (ns *Namespace) rootNode() *Node { return ns.nodes.get(ns.root) }

// abs resolves p against the cursor and cleans it lexically.
func (ns *Namespace) abs(p string) string {
	if p == "" {
		return ns.CurrentPath()
	}
	if !strings.HasPrefix(p, "/") {
		p = ns.CurrentPath() + "/" + p
	}
	return path.Clean(p)
}

func within(p, dir string) bool {
	return p == dir || dir == "/" || strings.HasPrefix(p, dir+"/")
}

// lookup walks this namespace's own tree. It never consults the mount
// table; callers forward mounted paths before getting here.
func (ns *Namespace) lookup(abs string) (*Node, bool) {
	n := ns.rootNode()
	for _, seg := range strings.Split(strings.TrimPrefix(abs, "/"), "/") {
		if seg == "" {
			continue
		}
		if !n.dir {
			return nil, false
		}
		if n = ns.nodes.child(n, seg); n == nil {
			return nil, false
		}
	}
	return n, true
}

// parentOf resolves the directory that holds (or would hold) abs.
func (ns *Namespace) parentOf(op, abs string) (*Node, string, error) {
	if abs == "/" {
		return nil, "", pathError(op, abs, ErrInvalidPath)
	}
	dir, name := path.Split(abs)
	parent, ok := ns.lookup(dir)
	if !ok {
		return nil, "", pathError(op, abs, ErrNotFound)
	}
	if !parent.dir {
		return nil, "", pathError(op, abs, ErrNotDir)
	}
	return parent, name, nil
}

// create attaches a new node under parent if capacity allows.
func (ns *Namespace) create(op string, parent *Node, name string, dir bool, content int) (*Node, error) {
	if ns.nodes.child(parent, name) != nil {
		return nil, pathError(op, path.Join(ns.pathOf(parent), name), ErrExists)
	}
	if err := ns.reserve(op, name, uint64(nodeOverhead+len(name)+content)); err != nil {
		return nil, err
	}

	at := now()
	n := ns.nodes.alloc(name, dir, at)
	ns.nodes.attach(parent, n)
	parent.modTime = at
	return n, nil
}

func (ns *Namespace) reserve(op, name string, delta uint64) error {
	if ns.capacity > 0 && ns.used+delta > ns.capacity {
		return pathError(op, name, ErrNoSpace)
	}
	return nil
}

// recompute sums overhead, name and plaintext length over the tree.
func (ns *Namespace) recompute() {
	var used uint64
	for _, n := range ns.nodes.nodes {
		if n != nil {
			used += uint64(nodeOverhead + len(n.name) + n.size)
		}
	}
	ns.used = used
	if ns.metrics != nil {
		ns.metrics.SetVolumeSpace(ns.id.String(), ns.used, ns.capacity)
	}
}

func (ns *Namespace) track(op string, start time.Time, err *error) {
	if ns.metrics == nil {
		return
	}
	ns.metrics.RecordOperation(op, *err, time.Since(start))
}

// pathOf returns the absolute path of n within this namespace.
func (ns *Namespace) pathOf(n *Node) string {
	var parts []string
	for cur := n; cur != nil && cur.id != ns.root; cur = cur.Parent() {
		parts = append(parts, cur.name)
	}
	if len(parts) == 0 {
		return "/"
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(parts[i])
	}
	return b.String()
}

// CurrentPath returns the cursor's absolute path.
func (ns *Namespace) CurrentPath() string {
	return ns.pathOf(ns.nodes.get(ns.cwd))
}

// TotalSpace returns the declared capacity in bytes.
func (ns *Namespace) TotalSpace() uint64 { return ns.capacity }

// UsedSpace returns the bytes charged against capacity.
func (ns *Namespace) UsedSpace() uint64 { return ns.used }

// FreeSpace returns the remaining capacity, never below zero.
func (ns *Namespace) FreeSpace() uint64 {
	if ns.used >= ns.capacity {
		return 0
	}
	return ns.capacity - ns.used
}

// ResolvePath finds the node at p, following mounts into nested volumes.
func (ns *Namespace) ResolvePath(p string) (*Node, bool) {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.ResolvePath(rel)
	}
	return ns.lookup(abs)
}

// Mkdir creates a directory. The parent must already exist.
func (ns *Namespace) Mkdir(p string) (err error) {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.Mkdir(rel)
	}
	defer ns.track("mkdir", time.Now(), &err)

	parent, name, err := ns.parentOf("mkdir", abs)
	if err != nil {
		return err
	}
	if _, err := ns.create("mkdir", parent, name, true, 0); err != nil {
		return err
	}
	ns.recompute()
	ns.logger.Debug("Created directory", zap.String("path", abs))
	return nil
}

// Touch creates an empty file. It fails if anything already exists at p.
func (ns *Namespace) Touch(p string) (err error) {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.Touch(rel)
	}
	defer ns.track("touch", time.Now(), &err)

	parent, name, err := ns.parentOf("touch", abs)
	if err != nil {
		return err
	}
	if _, err := ns.create("touch", parent, name, false, 0); err != nil {
		return err
	}
	ns.recompute()
	return nil
}

// Cd moves the cursor. The cursor never enters a mounted volume.
func (ns *Namespace) Cd(p string) error {
	abs := ns.abs(p)
	if _, _, ok := ns.volumeFor(abs); ok {
		return pathError("cd", abs, ErrMountBoundary)
	}

	n, ok := ns.lookup(abs)
	if !ok {
		return pathError("cd", abs, ErrNotFound)
	}
	if !n.dir {
		return pathError("cd", abs, ErrNotDir)
	}
	ns.cwd = n.id
	return nil
}

// Ls lists a directory: "name/" for directories, bare names for files,
// then "name@" for each volume mounted directly inside it.
func (ns *Namespace) Ls(p string) ([]string, error) {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.Ls(rel)
	}

	n, ok := ns.lookup(abs)
	if !ok {
		return nil, pathError("ls", abs, ErrNotFound)
	}
	if !n.dir {
		return nil, pathError("ls", abs, ErrNotDir)
	}

	entries := make([]string, 0, len(n.children))
	for _, c := range n.Children() {
		if c.dir {
			entries = append(entries, c.name+"/")
		} else {
			entries = append(entries, c.name)
		}
	}
	for _, key := range ns.mountKeys() {
		if path.Dir(key) == abs {
			entries = append(entries, path.Base(key)+"@")
		}
	}
	return entries, nil
}

// Cat returns a file's plaintext.
func (ns *Namespace) Cat(p string) (data []byte, err error) {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.Cat(rel)
	}
	defer ns.track("cat", time.Now(), &err)

	n, err := ns.file("cat", abs)
	if err != nil {
		return nil, err
	}
	return n.Content(), nil
}

// Write replaces a file's content, creating the file when its parent
// directory exists. Prior non-empty content goes to the version ledger.
func (ns *Namespace) Write(p string, data []byte) (err error) {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.Write(rel, data)
	}
	defer ns.track("write", time.Now(), &err)

	n, ok := ns.lookup(abs)
	if ok {
		if n.dir {
			return pathError("write", abs, ErrIsDir)
		}
		if len(data) > n.size {
			if err := ns.reserve("write", abs, uint64(len(data)-n.size)); err != nil {
				return err
			}
		}
	} else {
		parent, name, err := ns.parentOf("write", abs)
		if err != nil {
			return err
		}
		if n, err = ns.create("write", parent, name, false, len(data)); err != nil {
			return err
		}
	}

	if err := n.setContent(data, now()); err != nil {
		return pathError("write", abs, err)
	}
	ns.recompute()
	ns.observeCompression(n)
	return nil
}

// Remove deletes a file or a directory with everything under it. The root,
// mount points and directories containing mount points cannot be removed.
func (ns *Namespace) Remove(p string) (err error) {
	abs := ns.abs(p)
	if _, ok := ns.mounts[abs]; ok {
		return pathError("rm", abs, ErrBusy)
	}
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.Remove(rel)
	}
	defer ns.track("rm", time.Now(), &err)

	if abs == "/" {
		return pathError("rm", abs, ErrInvalidPath)
	}
	n, ok := ns.lookup(abs)
	if !ok {
		return pathError("rm", abs, ErrNotFound)
	}
	for key := range ns.mounts {
		if within(key, abs) {
			return pathError("rm", abs, ErrBusy)
		}
	}

	parent := n.Parent()
	if ns.nodes.isAncestor(n, ns.nodes.get(ns.cwd)) {
		ns.cwd = parent.id
	}
	ns.nodes.detach(n)
	for _, freed := range ns.nodes.release(n) {
		delete(ns.tags, freed)
	}
	parent.modTime = now()

	ns.recompute()
	ns.logger.Debug("Removed", zap.String("path", abs))
	return nil
}

// file resolves abs to a regular file in this namespace.
func (ns *Namespace) file(op, abs string) (*Node, error) {
	n, ok := ns.lookup(abs)
	if !ok {
		return nil, pathError(op, abs, ErrNotFound)
	}
	if n.dir {
		return nil, pathError(op, abs, ErrIsDir)
	}
	return n, nil
}

func (ns *Namespace) observeCompression(n *Node) {
	if ns.metrics == nil || !n.compressed || n.size == 0 {
		return
	}
	ns.metrics.ObserveCompression(n.compAlg, n.size, len(n.cache))
}
