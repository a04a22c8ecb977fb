package vfs

import (
	"bytes"
	"math"
	"time"
)

// NodeID addresses a node inside its Namespace's arena. IDs of removed nodes
// are recycled.
type NodeID uint32

const noParent NodeID = math.MaxUint32

// maxVersions bounds the per-file version ledger.
const maxVersions = 10

// Version is a snapshot of a file's plaintext.
type Version struct {
	Content   []byte
	Timestamp time.Time
}

// Node is a file or directory. Directories never carry content or
// versions; files never have children.
type Node struct {
	tree *arena

	id       NodeID
	name     string
	dir      bool
	parent   NodeID
	children []NodeID

	// stored is the plaintext, or its ciphertext while encrypted.
	stored []byte
	size   int

	compressed bool
	compAlg    string
	cache      []byte

	encrypted bool
	encAlg    string
	key       string

	versions []Version
	modTime  time.Time
}

// ID returns the node's arena handle.
func (n *Node) ID() NodeID { return n.id }

// Name returns the node's name. The root is named "/".
func (n *Node) Name() string { return n.name }

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.dir }

// Size returns the plaintext length of a file, or 0 for a directory.
func (n *Node) Size() int { return n.size }

// ModTime returns the last modification time.
func (n *Node) ModTime() time.Time { return n.modTime }

func (n *Node) IsCompressed() bool           { return n.compressed }
func (n *Node) CompressionAlgorithm() string { return n.compAlg }
func (n *Node) IsEncrypted() bool            { return n.encrypted }
func (n *Node) EncryptionAlgorithm() string  { return n.encAlg }

// VersionCount returns the number of saved versions.
func (n *Node) VersionCount() int { return len(n.versions) }

// VersionTimestamps lists version times, newest first.
func (n *Node) VersionTimestamps() []time.Time {
	out := make([]time.Time, len(n.versions))
	for i, v := range n.versions {
		out[i] = v.Timestamp
	}
	return out
}

// Versions returns copies of the saved versions, newest first.
func (n *Node) Versions() []Version {
	out := make([]Version, len(n.versions))
	for i, v := range n.versions {
		out[i] = Version{Content: bytes.Clone(v.Content), Timestamp: v.Timestamp}
	}
	return out
}

// Parent returns the containing directory, or nil for the root.
func (n *Node) Parent() *Node {
	if n.parent == noParent {
		return nil
	}
	return n.tree.get(n.parent)
}

// Children returns the directory's entries in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, id := range n.children {
		if c := n.tree.get(id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// arena owns every node of a Namespace. Slots of released nodes are nil
// and their IDs are reused.
type arena struct {
	nodes []*Node
	free  []NodeID
}

func (a *arena) alloc(name string, dir bool, at time.Time) *Node {
	n := &Node{tree: a, name: name, dir: dir, parent: noParent, modTime: at}
	if k := len(a.free); k > 0 {
		n.id = a.free[k-1]
		a.free = a.free[:k-1]
		a.nodes[n.id] = n
		return n
	}
	n.id = NodeID(len(a.nodes))
	a.nodes = append(a.nodes, n)
	return n
}

func (a *arena) get(id NodeID) *Node {
	if int(id) >= len(a.nodes) {
		return nil
	}
	return a.nodes[id]
}

func (a *arena) child(dir *Node, name string) *Node {
	for _, id := range dir.children {
		if c := a.nodes[id]; c.name == name {
			return c
		}
	}
	return nil
}

func (a *arena) attach(dir, child *Node) {
	child.parent = dir.id
	dir.children = append(dir.children, child.id)
}

func (a *arena) detach(child *Node) {
	dir := a.get(child.parent)
	if dir == nil {
		return
	}
	for i, id := range dir.children {
		if id == child.id {
			dir.children = append(dir.children[:i], dir.children[i+1:]...)
			break
		}
	}
	child.parent = noParent
}

// release frees n and its subtree, returning the freed IDs.
func (a *arena) release(n *Node) []NodeID {
	freed := []NodeID{n.id}
	for _, id := range n.children {
		if c := a.get(id); c != nil {
			freed = append(freed, a.release(c)...)
		}
	}
	a.nodes[n.id] = nil
	a.free = append(a.free, n.id)
	return freed
}

// isAncestor reports whether anc is n or one of n's parents.
func (a *arena) isAncestor(anc, n *Node) bool {
	for cur := n; cur != nil; {
		if cur.id == anc.id {
			return true
		}
		if cur.parent == noParent {
			return false
		}
		cur = a.get(cur.parent)
	}
	return false
}

func (a *arena) live() int {
	return len(a.nodes) - len(a.free)
}
