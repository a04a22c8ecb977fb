package assistant

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/GriffinCanCode/vfs/internal/vfs"
)

// View is the read-only part of the engine the assistant inspects.
type View interface {
	Ls(p string) ([]string, error)
	ResolvePath(p string) (*vfs.Node, bool)
}

// Name is how the assistant introduces itself.
const Name = "VFS Assistant"

type handler func(a *Assistant, m []string) string

type pattern struct {
	re          *regexp.Regexp
	handle      handler
	description string
}

// Assistant answers queries from an ordered pattern table.
type Assistant struct {
	view     View
	patterns []pattern
}

// New creates an assistant reading from view.
func New(view View) *Assistant {
	return &Assistant{view: view, patterns: defaultPatterns()}
}

// Keywords that mark a query as file-system related even when no pattern
// matches it.
var keywords = []string{
	"file", "directory", "folder", "vfs", "create", "delete", "copy",
	"move", "encrypt", "compress", "mount", "help", "how to",
}

var (
	greeting = regexp.MustCompile(`(?i)\b(?:hello|hi|hey)\b`)
	thanks   = regexp.MustCompile(`(?i)\bthank`)
	helpWord = regexp.MustCompile(`(?i)\bhelp\b`)
)

// Help lists the questions the assistant understands.
func (a *Assistant) Help() string {
	var b strings.Builder
	fmt.Fprintf(&b, "I am %s, your Virtual File System assistant.\n", Name)
	b.WriteString("You can ask me questions like:\n\n")
	for _, p := range a.patterns {
		fmt.Fprintf(&b, "- %s\n", p.description)
	}
	b.WriteString("\nOr just chat with me about the VFS!")
	return b.String()
}

// CanHandle reports whether query matches a pattern or mentions a file
// system keyword.
func (a *Assistant) CanHandle(query string) bool {
	for _, p := range a.patterns {
		if p.re.MatchString(query) {
			return true
		}
	}
	lower := strings.ToLower(query)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Answer returns the reply to query.
func (a *Assistant) Answer(query string) string {
	query = strings.TrimSpace(query)
	for _, p := range a.patterns {
		if m := p.re.FindStringSubmatch(query); m != nil {
			return p.handle(a, m)
		}
	}

	switch {
	case greeting.MatchString(query):
		return "Hello! I'm your VFS assistant. How can I help you with your virtual file system today?"
	case thanks.MatchString(query):
		return "You're welcome! Let me know if you need anything else."
	case helpWord.MatchString(query):
		return a.Help()
	}
	return "I'm not sure how to help with that specific query. You can ask me how to perform specific " +
		"file system operations, or ask for help with a specific command."
}

// largestFile names the biggest file directly inside dir.
func (a *Assistant) largestFile(dir string) string {
	entries, err := a.view.Ls(dir)
	if err != nil {
		return fmt.Sprintf("I couldn't access directory '%s'. Please make sure it exists.", dir)
	}
	if len(entries) == 0 {
		return fmt.Sprintf("The directory '%s' is empty.", dir)
	}

	var (
		best  string
		size  int
		found bool
	)
	for _, entry := range entries {
		if strings.HasSuffix(entry, "/") || strings.HasSuffix(entry, "@") {
			continue
		}
		n, ok := a.view.ResolvePath(join(dir, entry))
		if !ok || n.IsDir() {
			continue
		}
		if !found || n.Size() > size {
			best, size, found = entry, n.Size(), true
		}
	}
	if !found {
		return fmt.Sprintf("I couldn't find any files in '%s', only directories.", dir)
	}
	return fmt.Sprintf("The largest file in '%s' is '%s' with a size of %s.",
		dir, best, humanize.IBytes(uint64(size)))
}

// contents lists dir the way ls does.
func (a *Assistant) contents(dir string) string {
	entries, err := a.view.Ls(dir)
	if err != nil {
		return fmt.Sprintf("I couldn't access directory '%s'. Please make sure it exists.", dir)
	}
	if len(entries) == 0 {
		return fmt.Sprintf("The directory '%s' is empty.", dir)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Contents of '%s':\n", dir)
	for _, entry := range entries {
		fmt.Fprintf(&b, "- %s\n", entry)
	}
	return b.String()
}

func join(dir, name string) string {
	if dir == "." || dir == "./" {
		return name
	}
	return path.Join(dir, name)
}
