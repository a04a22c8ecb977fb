package shell

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/vfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/vfs/internal/vfs"
)

func newShell(t *testing.T, opts ...Option) (*Shell, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	sh := New(vfs.New(1<<20), append([]Option{WithOutput(out)}, opts...)...)
	return sh, out
}

// run executes each line and fails on the first error.
func run(t *testing.T, sh *Shell, lines ...string) {
	t.Helper()
	for _, line := range lines {
		require.NoError(t, sh.Exec(line), line)
	}
}

// TestParseCommand tests word splitting and quoting
func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"ls", []string{"ls"}},
		{"  mkdir   /a  ", []string{"mkdir", "/a"}},
		{`write f "hello world"`, []string{"write", "f", "hello world"}},
		{`write f "say \"hi\""`, []string{"write", "f", `say "hi"`}},
		{`write f "back\\slash"`, []string{"write", "f", `back\slash`}},
		{`write f "unterminated text`, []string{"write", "f", "unterminated text"}},
		{`find --name "a b" /docs`, []string{"find", "--name", "a b", "/docs"}},
		{"a\tb", []string{"a", "b"}},
		{`x""`, []string{`x""`}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommand(tt.line))
		})
	}
}

// TestFileCommands tests the basic file operations
func TestFileCommands(t *testing.T) {
	sh, out := newShell(t)

	run(t, sh,
		"mkdir /docs",
		"touch /docs/empty",
		`write /docs/a.txt "hello   world" again`,
		"cat /docs/a.txt",
		"cat /docs/empty",
		"ls /docs",
		"cd /docs",
		"pwd",
	)
	assert.Contains(t, out.String(), "Directory created: /docs\n")
	assert.Contains(t, out.String(), "File created: /docs/empty\n")
	assert.Contains(t, out.String(), "Successfully wrote to /docs/a.txt\n")
	assert.Contains(t, out.String(), "hello   world again\n")
	assert.Contains(t, out.String(), "File is empty\n")
	assert.Contains(t, out.String(), "Contents of directory:\n  empty\n  a.txt\n")
	assert.True(t, strings.HasSuffix(out.String(), "/docs\n"))

	out.Reset()
	run(t, sh, "rm a.txt", "ls")
	assert.Equal(t, "Successfully removed a.txt\nContents of directory:\n  empty\n", out.String())

	assert.ErrorIs(t, sh.Exec("cat /missing"), vfs.ErrNotFound)
	assert.ErrorIs(t, sh.Exec("cd /docs/empty"), vfs.ErrNotDir)
	assert.ErrorIs(t, sh.Exec("mkdir /docs"), vfs.ErrExists)
}

// TestLsLong tests the detailed listing
func TestLsLong(t *testing.T) {
	sh, out := newShell(t)
	run(t, sh,
		"mkdir /d",
		"mkdir /d/sub",
		"write /d/f aaaaaaaa",
		"compress /d/f RLE",
		"encrypt /d/f secret Caesar",
	)
	out.Reset()

	run(t, sh, "ls -l /d")
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Detailed contents of directory:", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Size      Modified            Attributes     Name"))
	assert.True(t, strings.HasPrefix(lines[3], "<DIR>"))
	assert.True(t, strings.HasSuffix(lines[3], "drw----        sub/"))
	assert.True(t, strings.HasPrefix(lines[4], "8 B"))
	assert.True(t, strings.HasSuffix(lines[4], "-rw-ce-        f"))
}

// TestLsEmpty tests listing an empty directory
func TestLsEmpty(t *testing.T) {
	sh, out := newShell(t)
	run(t, sh, "ls")
	assert.Equal(t, "Directory is empty\n", out.String())
}

// TestCopyMove tests cp and mv
func TestCopyMove(t *testing.T) {
	sh, out := newShell(t)
	run(t, sh,
		"mkdir /src",
		"mkdir /dst",
		"write /src/a.txt payload",
		"cp /src/a.txt /dst",
		"cp /src/a.txt /copy.txt",
		"mv /copy.txt /dst/moved.txt",
	)
	assert.Contains(t, out.String(), "File copied from /src/a.txt to /dst/a.txt\n")
	assert.Contains(t, out.String(), "File moved from /copy.txt to /dst/moved.txt\n")

	for _, p := range []string{"/src/a.txt", "/dst/a.txt", "/dst/moved.txt"} {
		data, err := sh.FS().Cat(p)
		require.NoError(t, err, p)
		assert.Equal(t, "payload", string(data))
	}
	_, ok := sh.FS().ResolvePath("/copy.txt")
	assert.False(t, ok)

	err := sh.Exec("cp /src /elsewhere")
	assert.ErrorContains(t, err, "directories are not supported")
	err = sh.Exec("mv /nope /dst")
	assert.ErrorContains(t, err, "source not found")

	for _, line := range []string{
		"mv /src/a.txt /src/a.txt",
		"mv /src/a.txt /src",
		"mv /src/a.txt /src/./a.txt",
		"cp /src/a.txt /src/",
	} {
		out.Reset()
		assert.ErrorIs(t, sh.Exec(line), ErrSameFile, line)
		assert.Empty(t, out.String(), line)
	}
	require.NoError(t, sh.Exec("cd /src"))
	assert.ErrorIs(t, sh.Exec("mv a.txt ./a.txt"), ErrSameFile)

	data, err := sh.FS().Cat("/src/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Zero(t, sh.FS().FileVersionCount("/src/a.txt"))
}

// TestUsageErrors tests missing arguments
func TestUsageErrors(t *testing.T) {
	sh, _ := newShell(t)

	for _, line := range []string{
		"mkdir", "touch", "cd", "cat", "write f", "rm", "cp a", "mv a",
		"createvolume v", "mount img", "unmount", "compress", "encrypt f",
		"restoreversion f", "listversions", "findname", "grep", "findsize 1",
		"finddate all", "findtag", "glob", "addtag f", "rmtag f", "find",
		"loadplugin", "unloadplugin",
	} {
		assert.ErrorIs(t, sh.Exec(line), ErrUsage, line)
	}
}

// TestUnknownCommand tests dispatch of unregistered names
func TestUnknownCommand(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := monitoring.NewMetrics(reg)
	sh, _ := newShell(t, WithMetrics(m))

	err := sh.Exec("frobnicate now")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	var unknown *UnknownCommandError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "frobnicate", unknown.Name)

	require.NoError(t, sh.Exec("pwd"))
	assert.Error(t, sh.Exec("cat /missing"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ShellCommands.WithLabelValues("unknown", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ShellCommands.WithLabelValues("pwd", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ShellCommands.WithLabelValues("cat", "error")))
}

// TestRegisterCommand tests extension command registration rules
func TestRegisterCommand(t *testing.T) {
	sh, out := newShell(t)

	hello := func(sh *Shell, args []string) error {
		sh.Printf("hello %s\n", strings.Join(args, ","))
		return nil
	}

	assert.ErrorIs(t, sh.RegisterCommand("ls", hello), ErrBuiltin)
	require.NoError(t, sh.RegisterCommand("hello", hello))
	assert.ErrorIs(t, sh.RegisterCommand("hello", hello), ErrDuplicate)
	assert.Equal(t, []string{"hello"}, sh.Commands())
	assert.True(t, sh.IsBuiltin("ls"))
	assert.False(t, sh.IsBuiltin("hello"))

	run(t, sh, "hello a b")
	assert.Equal(t, "hello a,b\n", out.String())

	assert.ErrorIs(t, sh.UnregisterCommand("ls"), ErrBuiltin)
	require.NoError(t, sh.UnregisterCommand("hello"))
	assert.ErrorIs(t, sh.UnregisterCommand("hello"), ErrNotRegistered)
	assert.ErrorIs(t, sh.Exec("hello"), ErrUnknownCommand)
}

// TestTransformCommands tests compression, encryption and versions
func TestTransformCommands(t *testing.T) {
	sh, out := newShell(t)
	run(t, sh,
		"write /f first",
		"compress /f LZW",
		"iscompressed /f",
		"encrypt /f key1 Vigenere",
		"isencrypted /f",
		"changekey /f key2",
		"cat /f",
	)
	assert.Contains(t, out.String(), "File compressed: /f (LZW)\n")
	assert.Contains(t, out.String(), "File is compressed: /f (LZW)\n")
	assert.Contains(t, out.String(), "File is encrypted: /f (Vigenere)\n")
	assert.Contains(t, out.String(), "Encryption key changed for file: /f\n")
	assert.Contains(t, out.String(), "first\n")

	out.Reset()
	run(t, sh, "decrypt /f", "uncompress /f", "iscompressed /f", "isencrypted /f")
	assert.Equal(t, "File decrypted: /f\nFile uncompressed: /f\n"+
		"File is not compressed: /f\nFile is not encrypted: /f\n", out.String())

	assert.ErrorIs(t, sh.Exec("compress /f Bogus"), vfs.ErrUnknownAlgorithm)
	assert.ErrorIs(t, sh.Exec("iscompressed /missing"), vfs.ErrNotFound)
}

// TestVersionCommands tests saveversion, listversions and restoreversion
func TestVersionCommands(t *testing.T) {
	sh, out := newShell(t)
	run(t, sh, "write /f one", "listversions /f")
	assert.Contains(t, out.String(), "No versions available for file: /f\n")

	out.Reset()
	run(t, sh, "write /f two", "saveversion /f", "listversions /f")
	assert.Contains(t, out.String(), "Version saved for file: /f\n")
	assert.Contains(t, out.String(), "Versions for file /f:\n  [0] ")
	assert.Contains(t, out.String(), "  [1] ")

	run(t, sh, "restoreversion /f 1")
	data, err := sh.FS().Cat("/f")
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	assert.ErrorContains(t, sh.Exec("restoreversion /f -1"), "invalid version index")
	assert.ErrorIs(t, sh.Exec("restoreversion /f 99"), vfs.ErrVersionRange)
}

func searchShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	sh, out := newShell(t)
	run(t, sh,
		"mkdir /logs",
		"write /logs/app.log \"service started\"",
		"write /logs/big.log "+strings.Repeat("x", 3000),
		"mkdir /notes",
		"write /notes/todo.txt \"buy milk\"",
		"addtag /notes/todo.txt home",
	)
	out.Reset()
	return sh, out
}

// TestFindCommand tests the combined find command
func TestFindCommand(t *testing.T) {
	sh, out := searchShell(t)

	run(t, sh, "find --name log --type f")
	assert.Equal(t, "Found 2 matching item(s):\n  /logs/app.log\n  /logs/big.log\n", out.String())

	out.Reset()
	run(t, sh, `find / --name "^to.*\.txt$" --regex`)
	assert.Equal(t, "Found 1 matching item(s):\n  /notes/todo.txt\n", out.String())

	out.Reset()
	run(t, sh, "find --size 2KiB: --type f")
	assert.Equal(t, "Found 1 matching item(s):\n  /logs/big.log\n", out.String())

	out.Reset()
	run(t, sh, "find --tag home --content milk")
	assert.Equal(t, "Found 1 matching item(s):\n  /notes/todo.txt\n", out.String())

	out.Reset()
	run(t, sh, "find /logs --glob *.txt")
	assert.Equal(t, "No matching files found.\n", out.String())

	assert.ErrorContains(t, sh.Exec("find --regex"), "--regex must follow a --name")
	assert.ErrorContains(t, sh.Exec("find --type x"), "invalid type")
	assert.ErrorContains(t, sh.Exec("find --bogus 1"), "unknown option --bogus")
	assert.ErrorContains(t, sh.Exec("find --size 10"), "use min:max")
	assert.ErrorContains(t, sh.Exec("find --name"), "--name needs a value")
	assert.ErrorIs(t, sh.Exec("find --name ( --regex"), vfs.ErrInvalidPattern)
}

// TestParseFind tests flag parsing into a filter
func TestParseFind(t *testing.T) {
	filter, start, err := parseFind([]string{
		"/docs", "--name", "x", "--regex", "--size", "1KiB:2MB",
		"--date", "2024-01-01:2024-01-31", "--type", "d", "--tag", "a", "--tag", "b",
	})
	require.NoError(t, err)
	assert.Equal(t, "/docs", start)
	assert.Equal(t, "x", filter.Name)
	assert.True(t, filter.NameRegex)
	assert.Equal(t, int64(1024), filter.MinSize)
	assert.Equal(t, int64(2000000), filter.MaxSize)
	assert.True(t, filter.DirectoriesOnly)
	assert.Equal(t, []string{"a", "b"}, filter.Tags)
	assert.Equal(t, "2024-01-01 00:00:00", filter.ModifiedAfter.Format(timeLayout))
	assert.Equal(t, "2024-01-31 23:59:59", filter.ModifiedBefore.Format(timeLayout))
}

// TestSearchShortcuts tests findname, grep, findsize, finddate, findtag and glob
func TestSearchShortcuts(t *testing.T) {
	sh, out := searchShell(t)

	run(t, sh, "findname todo")
	assert.Equal(t, "Found 1 matching item(s):\n  /notes/todo.txt\n", out.String())

	out.Reset()
	run(t, sh, "grep start /logs")
	assert.Equal(t, "Found 1 matching item(s):\n  /logs/app.log\n", out.String())

	out.Reset()
	run(t, sh, "grep nothing-here")
	assert.Equal(t, "No files found containing the pattern\n", out.String())

	out.Reset()
	run(t, sh, "findsize 1KiB 0")
	assert.Equal(t, "Files with size between 1.0 KiB and unlimited:\n  /logs/big.log (2.9 KiB)\n", out.String())
	assert.ErrorContains(t, sh.Exec("findsize 5KiB 1KiB"), "minimum size cannot be greater")
	assert.ErrorContains(t, sh.Exec("findsize lots 0"), "invalid size")

	out.Reset()
	run(t, sh, "finddate all all /notes")
	assert.True(t, strings.HasPrefix(out.String(), "Found 1 matching item(s):\n  /notes/todo.txt ("))
	assert.ErrorContains(t, sh.Exec("finddate 2024-02-01 2024-01-01"), "cannot be later")
	assert.ErrorContains(t, sh.Exec("finddate yesterday all"), "invalid date")

	out.Reset()
	run(t, sh, "findtag home")
	assert.Equal(t, "Found 1 matching item(s):\n  /notes/todo.txt\n", out.String())

	out.Reset()
	run(t, sh, "findtag work")
	assert.Equal(t, "No files found with tag: work\n", out.String())

	out.Reset()
	run(t, sh, "glob **/*.log")
	assert.Equal(t, "Found 2 matching item(s):\n  /logs/app.log\n  /logs/big.log\n", out.String())
}

// TestTagCommands tests addtag, rmtag and tags
func TestTagCommands(t *testing.T) {
	sh, out := newShell(t)
	run(t, sh, "tags")
	assert.Equal(t, "No tags found in the system\n", out.String())

	out.Reset()
	run(t, sh,
		"touch /f",
		"addtag /f work",
		"addtag /f urgent",
		"tags /f",
		"rmtag /f work",
		"tags",
	)
	assert.Equal(t, "File created: /f\n"+
		"Tag 'work' added to /f\n"+
		"Tag 'urgent' added to /f\n"+
		"Tags for /f:\n  work\n  urgent\n"+
		"Tag 'work' removed from /f\n"+
		"All tags in the system:\n  urgent\n", out.String())

	assert.ErrorIs(t, sh.Exec("rmtag /f missing"), vfs.ErrInvalidTag)
	assert.ErrorIs(t, sh.Exec("tags /missing"), vfs.ErrNotFound)
}

// TestDiskCommands tests save, load, diskinfo and volumes
func TestDiskCommands(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "disk.img")
	volume := filepath.Join(dir, "vol.img")

	sh, out := newShell(t, WithImage(image))
	run(t, sh, "write /keep data", "save")
	assert.Contains(t, out.String(), "File system saved to "+image+"\n")

	run(t, sh, "rm /keep", "load")
	data, err := sh.FS().Cat("/keep")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	out.Reset()
	run(t, sh, "diskinfo")
	assert.Contains(t, out.String(), "Disk Information:\n  Total Space: 1.0 MiB\n")
	assert.Contains(t, out.String(), "  Free Space: ")

	out.Reset()
	run(t, sh,
		"createvolume "+volume+" 2",
		"mount "+volume+" /mnt",
		"mounts",
		"write /mnt/inner hi",
		"unmount /mnt",
		"mounts",
	)
	assert.Equal(t, "Created volume "+volume+" with size 2.0 MiB\n"+
		"Mounted "+volume+" at /mnt\n"+
		"Mounted volumes:\n  /mnt -> "+volume+"\n"+
		"Successfully wrote to /mnt/inner\n"+
		"Unmounted volume at /mnt\n"+
		"No mounted volumes\n", out.String())

	assert.ErrorContains(t, sh.Exec("createvolume x.img zero"), "must be a positive integer")
	assert.ErrorIs(t, sh.Exec("unmount /mnt"), vfs.ErrNotMounted)
}

// TestAsk tests the assistant commands
func TestAsk(t *testing.T) {
	sh, out := newShell(t)

	run(t, sh, "ask how do I create a directory named docs")
	assert.Contains(t, out.String(), "mkdir docs")

	out.Reset()
	run(t, sh, "assistant")
	assert.Contains(t, out.String(), "You can ask me questions like")
}

type fakePlugins struct {
	loaded map[string]PluginInfo
}

func (f *fakePlugins) Load(name string) error {
	if name != "stats" {
		return errors.New("unknown plugin " + name)
	}
	f.loaded[name] = PluginInfo{Name: name, Version: "1.0", Author: "tests", Description: "counts things", Commands: []string{"count"}}
	return nil
}

func (f *fakePlugins) LoadManifest(string) ([]string, error) {
	return []string{"stats"}, f.Load("stats")
}

func (f *fakePlugins) Unload(name string) error {
	if _, ok := f.loaded[name]; !ok {
		return errors.New("not loaded")
	}
	delete(f.loaded, name)
	return nil
}

func (f *fakePlugins) List() []PluginInfo {
	var out []PluginInfo
	for _, p := range f.loaded {
		out = append(out, p)
	}
	return out
}

// TestPluginCommands tests loadplugin, unloadplugin, plugins and help
func TestPluginCommands(t *testing.T) {
	sh, out := newShell(t)
	assert.ErrorIs(t, sh.Exec("plugins"), ErrNoPlugins)

	sh.SetPlugins(&fakePlugins{loaded: map[string]PluginInfo{}})
	run(t, sh, "plugins")
	assert.Equal(t, "No plugins loaded\n", out.String())

	out.Reset()
	run(t, sh, "loadplugin stats", "plugins")
	assert.Equal(t, "Loaded plugin: stats\n"+
		"Loaded plugins:\n  stats v1.0 by tests\n    counts things\n    Commands: count\n", out.String())

	out.Reset()
	run(t, sh, "help")
	assert.Contains(t, out.String(), "Plugin Commands:\n  stats Plugin:\n    count\n")

	out.Reset()
	run(t, sh, "unloadplugin stats", "loadplugin plugins.yaml")
	assert.Equal(t, "Unloaded plugin: stats\nLoaded plugin: stats\n", out.String())

	assert.Error(t, sh.Exec("loadplugin nope"))
}

// TestRun tests the interactive loop
func TestRun(t *testing.T) {
	sh, out := newShell(t, WithPrompt("vfs"))

	in := strings.NewReader("mkdir /a\ncd /a\nbogus\n\ncat /missing\nexit\nmkdir /never\n")
	require.NoError(t, sh.Run(context.Background(), in))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Virtual File System Shell\nType 'help' for a list of commands\nvfs:/> "))
	assert.Contains(t, text, "vfs:/a> Unknown command: bogus\nType 'help' for a list of commands\n")
	assert.Contains(t, text, "cat /a/missing: no such file or directory\n")
	assert.True(t, strings.HasSuffix(text, "Exiting VFS Shell...\n"))

	_, ok := sh.FS().ResolvePath("/never")
	assert.False(t, ok)
}

// TestRunEndOfInput tests that the loop stops at EOF and on cancellation
func TestRunEndOfInput(t *testing.T) {
	sh, _ := newShell(t)
	require.NoError(t, sh.Run(context.Background(), strings.NewReader("pwd\n")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sh.Run(ctx, strings.NewReader("pwd\n")), context.Canceled)
}

// TestHalt tests that Halt waits for the running command and blocks later ones
func TestHalt(t *testing.T) {
	sh, _ := newShell(t)
	started, release := make(chan struct{}), make(chan struct{})
	require.NoError(t, sh.RegisterCommand("slow", func(sh *Shell, _ []string) error {
		close(started)
		<-release
		return sh.FS().Write("/late", []byte("done"))
	}))

	execDone := make(chan error, 1)
	go func() { execDone <- sh.Exec("slow") }()
	<-started

	halted := make(chan struct{})
	go func() {
		sh.Halt()
		close(halted)
	}()

	select {
	case <-halted:
		t.Fatal("Halt returned while a command was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-halted:
	case <-time.After(time.Second):
		t.Fatal("Halt did not return after the command finished")
	}
	require.NoError(t, <-execDone)

	data, err := sh.FS().Cat("/late")
	require.NoError(t, err)
	assert.Equal(t, "done", string(data))

	assert.ErrorIs(t, sh.Exec("mkdir /after"), ErrHalted)
	assert.ErrorIs(t, sh.Run(context.Background(), strings.NewReader("pwd\n")), ErrHalted)
	_, ok := sh.FS().ResolvePath("/after")
	assert.False(t, ok)
}
