package vfs

import (
	"slices"
	"sort"
	"strings"
)

// AddTag labels the node at p. Tags follow the node, not its path, and are
// dropped when the node is removed. Adding a tag twice is a no-op.
func (ns *Namespace) AddTag(p, tag string) error {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.AddTag(rel, tag)
	}
	if strings.TrimSpace(tag) == "" {
		return pathError("addtag", abs, ErrInvalidTag)
	}

	n, ok := ns.lookup(abs)
	if !ok {
		return pathError("addtag", abs, ErrNotFound)
	}
	if !slices.Contains(ns.tags[n.id], tag) {
		ns.tags[n.id] = append(ns.tags[n.id], tag)
	}
	return nil
}

// RemoveTag removes a label from the node at p.
func (ns *Namespace) RemoveTag(p, tag string) error {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.RemoveTag(rel, tag)
	}

	n, ok := ns.lookup(abs)
	if !ok {
		return pathError("rmtag", abs, ErrNotFound)
	}
	tags := ns.tags[n.id]
	i := slices.Index(tags, tag)
	if i < 0 {
		return pathError("rmtag", abs, ErrInvalidTag)
	}
	tags = slices.Delete(tags, i, i+1)
	if len(tags) == 0 {
		delete(ns.tags, n.id)
	} else {
		ns.tags[n.id] = tags
	}
	return nil
}

// FileTags returns the labels of p in the order they were added.
func (ns *Namespace) FileTags(p string) []string {
	abs := ns.abs(p)
	if m, rel, ok := ns.volumeFor(abs); ok {
		return m.volume.FileTags(rel)
	}
	n, ok := ns.lookup(abs)
	if !ok {
		return nil
	}
	return slices.Clone(ns.tags[n.id])
}

// AllTags returns every distinct tag in this namespace and its mounted
// volumes, sorted.
func (ns *Namespace) AllTags() []string {
	seen := make(map[string]struct{})
	ns.collectTags(seen)

	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func (ns *Namespace) collectTags(seen map[string]struct{}) {
	for _, tags := range ns.tags {
		for _, tag := range tags {
			seen[tag] = struct{}{}
		}
	}
	for _, m := range ns.mounts {
		m.volume.collectTags(seen)
	}
}

func (ns *Namespace) hasTags(n *Node, want []string) bool {
	have := ns.tags[n.id]
	for _, tag := range want {
		if !slices.Contains(have, tag) {
			return false
		}
	}
	return true
}
