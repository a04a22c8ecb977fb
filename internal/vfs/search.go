package vfs

import (
	"bytes"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// SearchFilter selects nodes during Search. Every set condition must hold.
type SearchFilter struct {
	// Name is a substring of the node name, or a regular expression when
	// NameRegex is set.
	Name      string
	NameRegex bool

	// Glob is a doublestar pattern matched against the path relative to
	// the search root, e.g. "**/*.log".
	Glob string

	// Content is a substring of the plaintext, or a regular expression
	// when ContentRegex is set. Directories never match a content filter.
	Content      string
	ContentRegex bool

	FilesOnly       bool
	DirectoriesOnly bool

	// Size bounds are inclusive; directories have size 0. MaxSize 0
	// means no upper bound.
	MinSize int64
	MaxSize int64

	// Time bounds are inclusive; zero values are ignored.
	ModifiedAfter  time.Time
	ModifiedBefore time.Time

	// Tags must all be present on the node.
	Tags []string

	Match func(*Node) bool
}

type compiledFilter struct {
	SearchFilter
	name    *regexp.Regexp
	content *regexp.Regexp
	root    string
}

func (f SearchFilter) compile() (*compiledFilter, error) {
	c := &compiledFilter{SearchFilter: f}
	var err error
	if f.NameRegex && f.Name != "" {
		if c.name, err = regexp.Compile(f.Name); err != nil {
			return nil, pathError("search", f.Name, ErrInvalidPattern)
		}
	}
	if f.ContentRegex && f.Content != "" {
		if c.content, err = regexp.Compile(f.Content); err != nil {
			return nil, pathError("search", f.Content, ErrInvalidPattern)
		}
	}
	if f.Glob != "" && !doublestar.ValidatePattern(f.Glob) {
		return nil, pathError("search", f.Glob, ErrInvalidPattern)
	}
	return c, nil
}

// Search walks the tree under start (the current directory when empty) and
// returns the absolute paths of matching nodes in depth-first order. The
// start directory itself is not a candidate. Mounted volumes under start
// are searched too.
func (ns *Namespace) Search(filter SearchFilter, start string) (results []string, err error) {
	abs := ns.abs(start)
	if m, rel, ok := ns.volumeFor(abs); ok {
		nested, err := m.volume.Search(filter, rel)
		if err != nil {
			return nil, err
		}
		prefix := abs[:len(abs)-len(rel)]
		if rel == "/" {
			prefix = abs
		}
		for i, p := range nested {
			nested[i] = path.Join(prefix, p)
		}
		return nested, nil
	}
	defer ns.track("search", time.Now(), &err)

	c, err := filter.compile()
	if err != nil {
		return nil, err
	}
	n, ok := ns.lookup(abs)
	if !ok {
		return nil, pathError("search", abs, ErrNotFound)
	}
	if !n.dir {
		return nil, pathError("search", abs, ErrNotDir)
	}

	c.root = abs
	results = []string{}
	ns.walk(c, n, abs, "", &results)
	return results, nil
}

// walk visits dir's children. local is dir's path inside ns; prefix is the
// path of ns's root as seen by the caller of Search.
func (ns *Namespace) walk(c *compiledFilter, dir *Node, local, prefix string, out *[]string) {
	for _, child := range dir.Children() {
		childLocal := path.Join(local, child.name)
		display := path.Join("/", prefix, childLocal)
		if ns.matches(c, child, display) {
			*out = append(*out, display)
		}
		if !child.dir {
			continue
		}
		if m, ok := ns.mounts[childLocal]; ok {
			m.volume.walk(c, m.volume.rootNode(), "/", display, out)
			continue
		}
		ns.walk(c, child, childLocal, prefix, out)
	}
}

func (ns *Namespace) matches(c *compiledFilter, n *Node, display string) bool {
	if c.FilesOnly && n.dir {
		return false
	}
	if c.DirectoriesOnly && !n.dir {
		return false
	}

	if c.Name != "" {
		if c.name != nil {
			if !c.name.MatchString(n.name) {
				return false
			}
		} else if !strings.Contains(n.name, c.Name) {
			return false
		}
	}

	if c.Glob != "" {
		rel := strings.TrimPrefix(strings.TrimPrefix(display, c.root), "/")
		if ok, _ := doublestar.Match(c.Glob, rel); !ok {
			return false
		}
	}

	size := int64(n.size)
	if size < c.MinSize {
		return false
	}
	if c.MaxSize > 0 && size > c.MaxSize {
		return false
	}

	if !c.ModifiedAfter.IsZero() && n.modTime.Before(c.ModifiedAfter) {
		return false
	}
	if !c.ModifiedBefore.IsZero() && n.modTime.After(c.ModifiedBefore) {
		return false
	}

	if c.Content != "" {
		if n.dir {
			return false
		}
		data := n.Content()
		if c.content != nil {
			if !c.content.Match(data) {
				return false
			}
		} else if !bytes.Contains(data, []byte(c.Content)) {
			return false
		}
	}

	if len(c.Tags) > 0 && !ns.hasTags(n, c.Tags) {
		return false
	}
	if c.Match != nil && !c.Match(n) {
		return false
	}
	return true
}

// SearchByName matches names by substring, or by regular expression when
// regex is set.
func (ns *Namespace) SearchByName(pattern string, regex bool, start string) ([]string, error) {
	return ns.Search(SearchFilter{Name: pattern, NameRegex: regex}, start)
}

// SearchByContent matches file content by substring or regular expression.
func (ns *Namespace) SearchByContent(pattern string, regex bool, start string) ([]string, error) {
	return ns.Search(SearchFilter{Content: pattern, ContentRegex: regex, FilesOnly: true}, start)
}

// SearchByTag returns nodes carrying tag.
func (ns *Namespace) SearchByTag(tag, start string) ([]string, error) {
	return ns.Search(SearchFilter{Tags: []string{tag}}, start)
}

// SearchBySize returns files whose size lies in [minSize, maxSize];
// maxSize 0 means unbounded.
func (ns *Namespace) SearchBySize(minSize, maxSize int64, start string) ([]string, error) {
	return ns.Search(SearchFilter{MinSize: minSize, MaxSize: maxSize, FilesOnly: true}, start)
}

// SearchByDate returns nodes modified within [after, before]. Zero times
// leave that side open.
func (ns *Namespace) SearchByDate(after, before time.Time, start string) ([]string, error) {
	return ns.Search(SearchFilter{ModifiedAfter: after, ModifiedBefore: before}, start)
}

// SearchByGlob returns nodes whose path relative to start matches a
// doublestar pattern.
func (ns *Namespace) SearchByGlob(pattern, start string) ([]string, error) {
	return ns.Search(SearchFilter{Glob: pattern}, start)
}
