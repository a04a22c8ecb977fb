// Package filestats is a plugin with file statistics, per-directory disk
// usage and duplicate detection.
package filestats

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/zeebo/blake3"

	"github.com/GriffinCanCode/vfs/internal/plugin"
	"github.com/GriffinCanCode/vfs/internal/shell"
	"github.com/GriffinCanCode/vfs/internal/vfs"
)

const rule = "------------------------------------------------------"

// Plugin implements plugin.Plugin.
type Plugin struct {
	host plugin.Host
}

// New is the catalog factory.
func New() plugin.Plugin { return &Plugin{} }

func (p *Plugin) Name() string        { return "filestats" }
func (p *Plugin) Version() string     { return "1.0.0" }
func (p *Plugin) Author() string      { return "VFS Team" }
func (p *Plugin) Description() string { return "Provides commands for file statistics and analysis" }

func (p *Plugin) Init(host plugin.Host) error {
	p.host = host
	return nil
}

func (p *Plugin) Shutdown() error {
	p.host = nil
	return nil
}

func (p *Plugin) Commands() []plugin.Command {
	return []plugin.Command{
		{Name: "filestats", Run: p.fileStats},
		{Name: "diskusage", Run: p.diskUsage},
		{Name: "findduplicates", Run: p.findDuplicates},
	}
}

func (p *Plugin) fs() *vfs.Namespace { return p.host.FS() }

// Stats summarizes one file's content.
type Stats struct {
	Lines int
	Words int
	Chars int
	Type  string
	Top   []CharCount
}

// CharCount is one entry of the character frequency table.
type CharCount struct {
	Char  byte
	Count int
}

// Analyze computes Stats for data, keeping the top most frequent bytes.
func Analyze(data []byte, top int) Stats {
	s := Stats{
		Chars: len(data),
		Words: len(strings.FieldsFunc(string(data), unicode.IsSpace)),
		Type:  fileType(data),
	}
	if len(data) > 0 {
		s.Lines = strings.Count(string(data), "\n")
		if data[len(data)-1] != '\n' {
			s.Lines++
		}
	}

	var freq [256]int
	for _, b := range data {
		freq[b]++
	}
	for b, n := range freq {
		if n > 0 {
			s.Top = append(s.Top, CharCount{Char: byte(b), Count: n})
		}
	}
	sort.SliceStable(s.Top, func(i, j int) bool { return s.Top[i].Count > s.Top[j].Count })
	if len(s.Top) > top {
		s.Top = s.Top[:top]
	}
	return s
}

func fileType(data []byte) string {
	if len(data) == 0 {
		return "Empty file"
	}
	return mimetype.Detect(data).String()
}

func displayChar(c byte) string {
	switch {
	case c == '\n':
		return `'\n'`
	case c == '\t':
		return `'\t'`
	case c == '\r':
		return `'\r'`
	case c == ' ':
		return "'space'"
	case c > ' ' && c < 0x7f:
		return "'" + string(c) + "'"
	}
	return fmt.Sprint(c)
}

func (p *Plugin) fileStats(sh *shell.Shell, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: filestats <file_path>", shell.ErrUsage)
	}
	name := args[0]
	n, ok := p.fs().ResolvePath(name)
	if !ok {
		return fmt.Errorf("filestats %s: %w", name, vfs.ErrNotFound)
	}
	if n.IsDir() {
		return fmt.Errorf("filestats %s: %w", name, vfs.ErrIsDir)
	}
	data, err := p.fs().Cat(name)
	if err != nil {
		return err
	}

	s := Analyze(data, 5)
	sh.Printf("File statistics for: %s\n", name)
	sh.Println(rule)
	sh.Printf("Size:            %s (%d bytes)\n", humanize.IBytes(uint64(n.Size())), n.Size())
	sh.Printf("File type:       %s\n", s.Type)
	sh.Printf("Line count:      %d\n", s.Lines)
	sh.Printf("Word count:      %d\n", s.Words)
	sh.Printf("Character count: %d\n", s.Chars)
	sh.Printf("Is compressed:   %s\n", yesNo(n.IsCompressed()))
	sh.Printf("Is encrypted:    %s\n", yesNo(n.IsEncrypted()))
	sh.Printf("Versions:        %d\n", n.VersionCount())

	if len(s.Top) == 0 {
		return nil
	}
	sh.Printf("\nTop %d most frequent characters:\n", len(s.Top))
	for _, c := range s.Top {
		sh.Printf("  %s: %d (%.2f%%)\n", displayChar(c.Char), c.Count, float64(c.Count)/float64(s.Chars)*100)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// walk visits every entry under dir, crossing into mounted volumes. Mounted
// volumes are reached through their mount directory entry.
func walk(fs *vfs.Namespace, dir string, onDir func(p string, total int64), onFile func(p string, n *vfs.Node)) (int64, error) {
	entries, err := fs.Ls(dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, entry := range entries {
		if strings.HasSuffix(entry, "@") {
			continue
		}
		child := join(dir, strings.TrimSuffix(entry, "/"))
		if strings.HasSuffix(entry, "/") {
			size, err := walk(fs, child, onDir, onFile)
			if err != nil {
				return 0, err
			}
			total += size
			continue
		}
		n, ok := fs.ResolvePath(child)
		if !ok {
			continue
		}
		total += int64(n.Size())
		if onFile != nil {
			onFile(child, n)
		}
	}
	if onDir != nil {
		onDir(dir, total)
	}
	return total, nil
}

func join(dir, name string) string {
	if dir == "." || dir == "./" {
		return name
	}
	return path.Join(dir, name)
}

func (p *Plugin) diskUsage(sh *shell.Shell, args []string) error {
	dir, bySize := ".", false
	for _, arg := range args {
		if arg == "--sort" || arg == "-s" {
			bySize = true
		} else {
			dir = arg
		}
	}
	n, ok := p.fs().ResolvePath(dir)
	if !ok {
		return fmt.Errorf("diskusage %s: %w", dir, vfs.ErrNotFound)
	}
	if !n.IsDir() {
		return fmt.Errorf("diskusage %s: %w", dir, vfs.ErrNotDir)
	}

	type usage struct {
		dir  string
		size int64
	}
	var dirs []usage
	total, err := walk(p.fs(), dir, func(d string, size int64) {
		dirs = append(dirs, usage{d, size})
	}, nil)
	if err != nil {
		return err
	}

	if bySize {
		sort.SliceStable(dirs, func(i, j int) bool { return dirs[i].size > dirs[j].size })
	} else {
		sort.Slice(dirs, func(i, j int) bool { return dirs[i].dir < dirs[j].dir })
	}

	sh.Printf("Disk usage for: %s\n", dir)
	sh.Println(rule)
	sh.Printf("%-12s%s\n", "Size", "Directory")
	sh.Println(rule)
	for _, u := range dirs {
		sh.Printf("%-12s%s\n", humanize.IBytes(uint64(u.size)), u.dir)
	}
	sh.Println(rule)
	sh.Printf("Total: %s\n", humanize.IBytes(uint64(total)))
	return nil
}

func (p *Plugin) findDuplicates(sh *shell.Shell, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	bySize := make(map[int][]string)
	if _, err := walk(p.fs(), dir, nil, func(f string, n *vfs.Node) {
		if n.Size() > 0 {
			bySize[n.Size()] = append(bySize[n.Size()], f)
		}
	}); err != nil {
		return err
	}

	var (
		groups [][]string
		count  int
		wasted uint64
	)
	for size, files := range bySize {
		if len(files) < 2 {
			continue
		}
		byHash := make(map[[32]byte][]string)
		for _, f := range files {
			data, err := p.fs().Cat(f)
			if err != nil {
				return err
			}
			sum := blake3.Sum256(data)
			byHash[sum] = append(byHash[sum], f)
		}
		for _, same := range byHash {
			if len(same) < 2 {
				continue
			}
			sort.Strings(same)
			groups = append(groups, same)
			count += len(same) - 1
			wasted += uint64(len(same)-1) * uint64(size)
		}
	}

	if len(groups) == 0 {
		sh.Printf("No duplicate files found in %s\n", dir)
		return nil
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })

	sh.Printf("Found %d duplicate files in %s wasting %s\n", count, dir, humanize.IBytes(wasted))
	sh.Println(rule)
	for i, files := range groups {
		size := 0
		if n, ok := p.fs().ResolvePath(files[0]); ok {
			size = n.Size()
		}
		sh.Printf("Duplicate group #%d (%s):\n", i+1, humanize.IBytes(uint64(size)))
		for _, f := range files {
			sh.Printf("  %s\n", f)
		}
		sh.Println()
	}
	return nil
}
