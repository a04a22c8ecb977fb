package shell

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/GriffinCanCode/vfs/internal/vfs"
)

const dateLayout = "2006-01-02"

const findUsage = `find [path] [--name pattern [--regex]] [--content pattern] [--glob pattern] [--size min:max] [--date after:before] [--type f|d] [--tag tag]
Examples:
  find --name notes              - Find by filename containing 'notes'
  find --name '\.txt$' --regex   - Find by filename regex pattern
  find --content hello           - Find files containing 'hello'
  find --glob '**/*.log'         - Find by glob relative to the start path
  find --size 1KiB:5KiB          - Find files between 1KiB and 5KiB
  find --date 2023-01-01:        - Find files modified on or after Jan 1, 2023
  find --type f                  - Find only files
  find --tag important           - Find by tag`

// parseFind turns find's flags into a filter and a start path.
func parseFind(args []string) (vfs.SearchFilter, string, error) {
	var (
		filter vfs.SearchFilter
		start  = "."
	)
	value := func(i int) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("find: %s needs a value", args[i])
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			start = arg
			continue
		}
		if arg == "--regex" {
			if filter.Name == "" {
				return filter, "", fmt.Errorf("find: --regex must follow a --name argument")
			}
			filter.NameRegex = true
			continue
		}

		v, err := value(i)
		if err != nil {
			return filter, "", err
		}
		i++
		switch arg {
		case "--name":
			filter.Name = v
		case "--content":
			filter.Content = v
		case "--glob":
			filter.Glob = v
		case "--size":
			lo, hi, ok := strings.Cut(v, ":")
			if !ok {
				return filter, "", fmt.Errorf("find: invalid size %q: use min:max", v)
			}
			if filter.MinSize, err = parseSize(lo); err != nil {
				return filter, "", err
			}
			if filter.MaxSize, err = parseSize(hi); err != nil {
				return filter, "", err
			}
		case "--date":
			lo, hi, ok := strings.Cut(v, ":")
			if !ok {
				return filter, "", fmt.Errorf("find: invalid date range %q: use after:before", v)
			}
			if filter.ModifiedAfter, err = parseDay(lo, false); err != nil {
				return filter, "", err
			}
			if filter.ModifiedBefore, err = parseDay(hi, true); err != nil {
				return filter, "", err
			}
		case "--type":
			switch v {
			case "f":
				filter.FilesOnly, filter.DirectoriesOnly = true, false
			case "d":
				filter.FilesOnly, filter.DirectoriesOnly = false, true
			default:
				return filter, "", fmt.Errorf("find: invalid type %q: use f or d", v)
			}
		case "--tag":
			filter.Tags = append(filter.Tags, v)
		default:
			return filter, "", fmt.Errorf("find: unknown option %s", arg)
		}
	}
	return filter, start, nil
}

// parseSize reads a byte count such as "2048", "5KiB" or "2MB". Empty
// means no bound.
func parseSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return int64(n), nil
}

// parseDay reads a YYYY-MM-DD date in local time. An upper bound covers the
// whole day. Empty and "all" mean no bound.
func parseDay(s string, upper bool) (time.Time, error) {
	if s == "" || s == "all" {
		return time.Time{}, nil
	}
	day, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	if upper {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return day, nil
}

func printResults(sh *Shell, results []string, none string) {
	if len(results) == 0 {
		sh.Println(none)
		return
	}
	sh.Printf("Found %d matching item(s):\n", len(results))
	for _, r := range results {
		sh.Printf("  %s\n", r)
	}
}

func cmdFind(sh *Shell, args []string) error {
	if len(args) == 0 {
		return usage(findUsage)
	}
	filter, start, err := parseFind(args)
	if err != nil {
		return err
	}
	results, err := sh.fs.Search(filter, start)
	if err != nil {
		return err
	}
	printResults(sh, results, "No matching files found.")
	return nil
}

// patternArgs splits "<pattern> [--regex] [path]".
func patternArgs(args []string) (pattern string, regex bool, start string) {
	pattern, start = args[0], "."
	for _, arg := range args[1:] {
		if arg == "--regex" {
			regex = true
		} else {
			start = arg
		}
	}
	return pattern, regex, start
}

func cmdFindName(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("findname <pattern> [--regex] [path]")
	}
	pattern, regex, start := patternArgs(args)
	results, err := sh.fs.SearchByName(pattern, regex, start)
	if err != nil {
		return err
	}
	printResults(sh, results, "No files found matching the pattern")
	return nil
}

func cmdGrep(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("grep <pattern> [--regex] [path]")
	}
	pattern, regex, start := patternArgs(args)
	results, err := sh.fs.SearchByContent(pattern, regex, start)
	if err != nil {
		return err
	}
	printResults(sh, results, "No files found containing the pattern")
	return nil
}

func cmdFindSize(sh *Shell, args []string) error {
	if len(args) < 2 {
		return usage("findsize <min_size> <max_size> [path] (sizes accept suffixes such as KiB or MB)")
	}
	lo, err := parseSize(args[0])
	if err != nil {
		return fmt.Errorf("findsize: %w", err)
	}
	hi, err := parseSize(args[1])
	if err != nil {
		return fmt.Errorf("findsize: %w", err)
	}
	if hi != 0 && lo > hi {
		return fmt.Errorf("findsize: minimum size cannot be greater than maximum size")
	}
	start := "."
	if len(args) > 2 {
		start = args[2]
	}

	results, err := sh.fs.SearchBySize(lo, hi, start)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		sh.Println("No files found in the specified size range")
		return nil
	}
	upper := "unlimited"
	if hi > 0 {
		upper = humanize.IBytes(uint64(hi))
	}
	sh.Printf("Files with size between %s and %s:\n", humanize.IBytes(uint64(lo)), upper)
	for _, r := range results {
		if n, ok := sh.fs.ResolvePath(r); ok && !n.IsDir() {
			sh.Printf("  %s (%s)\n", r, humanize.IBytes(uint64(n.Size())))
		} else {
			sh.Printf("  %s\n", r)
		}
	}
	return nil
}

func cmdFindDate(sh *Shell, args []string) error {
	if len(args) < 2 {
		return usage("finddate <after_date> <before_date> [path] (YYYY-MM-DD, or 'all' for no bound)")
	}
	after, err := parseDay(args[0], false)
	if err != nil {
		return fmt.Errorf("finddate: %w", err)
	}
	before, err := parseDay(args[1], true)
	if err != nil {
		return fmt.Errorf("finddate: %w", err)
	}
	if !after.IsZero() && !before.IsZero() && after.After(before) {
		return fmt.Errorf("finddate: 'after' date cannot be later than 'before' date")
	}
	start := "."
	if len(args) > 2 {
		start = args[2]
	}

	results, err := sh.fs.SearchByDate(after, before, start)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		sh.Println("No files found in the specified date range")
		return nil
	}
	sh.Printf("Found %d matching item(s):\n", len(results))
	for _, r := range results {
		if n, ok := sh.fs.ResolvePath(r); ok {
			sh.Printf("  %s (%s)\n", r, n.ModTime().Format(timeLayout))
		} else {
			sh.Printf("  %s\n", r)
		}
	}
	return nil
}

func cmdFindTag(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("findtag <tag> [path]")
	}
	start := "."
	if len(args) > 1 {
		start = args[1]
	}
	results, err := sh.fs.SearchByTag(args[0], start)
	if err != nil {
		return err
	}
	printResults(sh, results, fmt.Sprintf("No files found with tag: %s", args[0]))
	return nil
}

func cmdGlob(sh *Shell, args []string) error {
	if len(args) < 1 {
		return usage("glob <pattern> [path]")
	}
	start := "."
	if len(args) > 1 {
		start = args[1]
	}
	results, err := sh.fs.SearchByGlob(args[0], start)
	if err != nil {
		return err
	}
	printResults(sh, results, "No files found matching the pattern")
	return nil
}
