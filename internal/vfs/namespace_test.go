package vfs

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/vfs/internal/infrastructure/monitoring"
)

// TestMkdir tests directory creation and parent requirements
func TestMkdir(t *testing.T) {
	ns := New(1 << 20)

	err := ns.Mkdir("/a/b")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, ns.Mkdir("/a"))
	require.NoError(t, ns.Mkdir("/a/b"))

	entries, err := ns.Ls("/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b/"}, entries)

	assert.ErrorIs(t, ns.Mkdir("/a"), ErrExists)
	assert.ErrorIs(t, ns.Mkdir("/"), ErrInvalidPath)
}

// TestTouch tests empty file creation
func TestTouch(t *testing.T) {
	ns := New(1 << 20)

	require.NoError(t, ns.Touch("/f"))
	data, err := ns.Cat("/f")
	require.NoError(t, err)
	assert.Empty(t, data)

	assert.ErrorIs(t, ns.Touch("/f"), ErrExists)
	assert.ErrorIs(t, ns.Touch("/f/g"), ErrNotDir)
	assert.ErrorIs(t, ns.Touch("/missing/g"), ErrNotFound)
}

// TestRelativePaths tests cursor movement and relative resolution
func TestRelativePaths(t *testing.T) {
	ns := New(1 << 20)
	require.NoError(t, ns.Mkdir("/home"))
	require.NoError(t, ns.Mkdir("/home/user"))

	require.NoError(t, ns.Cd("/home"))
	assert.Equal(t, "/home", ns.CurrentPath())

	require.NoError(t, ns.Cd("user"))
	assert.Equal(t, "/home/user", ns.CurrentPath())

	require.NoError(t, ns.Write("notes.txt", []byte("hi")))
	data, err := ns.Cat("/home/user/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	require.NoError(t, ns.Cd(".."))
	assert.Equal(t, "/home", ns.CurrentPath())

	require.NoError(t, ns.Cd("../.."))
	assert.Equal(t, "/", ns.CurrentPath())

	assert.ErrorIs(t, ns.Cd("/home/user/notes.txt"), ErrNotDir)
	assert.ErrorIs(t, ns.Cd("/nowhere"), ErrNotFound)
	assert.Equal(t, "/", ns.CurrentPath())
}

// TestLs tests listing order and markers
func TestLs(t *testing.T) {
	ns := New(1 << 20)
	require.NoError(t, ns.Mkdir("/dir"))
	require.NoError(t, ns.Write("/file", []byte("x")))

	entries, err := ns.Ls("/")
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/", "file"}, entries)

	_, err = ns.Ls("/file")
	assert.ErrorIs(t, err, ErrNotDir)
	_, err = ns.Ls("/nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestWriteCat tests that content round trips through every transform
func TestWriteCat(t *testing.T) {
	content := []byte("The quick brown fox jumps over the lazy dog. aaaaaaaaaaaaaaaa")

	for _, comp := range append([]string{""}, New(0).ListCompressionAlgorithms()...) {
		for _, enc := range append([]string{""}, New(0).ListEncryptionAlgorithms()...) {
			t.Run(fmt.Sprintf("%s+%s", comp, enc), func(t *testing.T) {
				ns := New(1 << 20)
				require.NoError(t, ns.Write("/f", []byte("seed")))
				if comp != "" {
					require.NoError(t, ns.CompressFile("/f", true, comp))
				}
				if enc != "" {
					require.NoError(t, ns.EncryptFile("/f", "s3cret", enc))
				}

				require.NoError(t, ns.Write("/f", content))
				data, err := ns.Cat("/f")
				require.NoError(t, err)
				assert.Equal(t, content, data)
			})
		}
	}
}

// TestWriteErrors tests writes to invalid targets
func TestWriteErrors(t *testing.T) {
	ns := New(1 << 20)
	require.NoError(t, ns.Mkdir("/d"))

	assert.ErrorIs(t, ns.Write("/d", []byte("x")), ErrIsDir)
	assert.ErrorIs(t, ns.Write("/missing/f", []byte("x")), ErrNotFound)

	_, err := ns.Cat("/d")
	assert.ErrorIs(t, err, ErrIsDir)
	_, err = ns.Cat("/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestRemove tests recursive removal and cursor repair
func TestRemove(t *testing.T) {
	ns := New(1 << 20)
	require.NoError(t, ns.Mkdir("/a"))
	require.NoError(t, ns.Mkdir("/a/b"))
	require.NoError(t, ns.Write("/a/b/f", []byte("data")))
	require.NoError(t, ns.Cd("/a/b"))

	require.NoError(t, ns.Remove("/a"))
	assert.Equal(t, "/", ns.CurrentPath())

	_, ok := ns.ResolvePath("/a/b/f")
	assert.False(t, ok)

	assert.ErrorIs(t, ns.Remove("/a"), ErrNotFound)
	assert.ErrorIs(t, ns.Remove("/"), ErrInvalidPath)
}

// TestRemoveReusesSlots tests that released arena slots are recycled
func TestRemoveReusesSlots(t *testing.T) {
	ns := New(1 << 20)
	require.NoError(t, ns.Write("/one", []byte("1")))
	first, _ := ns.ResolvePath("/one")
	freed := first.ID()

	require.NoError(t, ns.Remove("/one"))
	require.NoError(t, ns.Write("/two", []byte("2")))
	second, _ := ns.ResolvePath("/two")
	assert.Equal(t, freed, second.ID())
	assert.Equal(t, 2, ns.nodes.live())
}

// TestSpaceAccounting tests used-space recomputation and capacity limits
func TestSpaceAccounting(t *testing.T) {
	ns := New(1000)
	base := ns.UsedSpace()
	assert.Equal(t, uint64(nodeOverhead+1), base)

	require.NoError(t, ns.Write("/f", []byte("hello")))
	assert.Equal(t, base+uint64(nodeOverhead+1+5), ns.UsedSpace())
	assert.Equal(t, ns.TotalSpace()-ns.UsedSpace(), ns.FreeSpace())

	// Compression and encryption do not change the charge.
	require.NoError(t, ns.CompressFile("/f", true, "Huffman"))
	require.NoError(t, ns.EncryptFile("/f", "k", "XOR"))
	assert.Equal(t, base+uint64(nodeOverhead+1+5), ns.UsedSpace())

	err := ns.Write("/big", make([]byte, 2000))
	assert.ErrorIs(t, err, ErrNoSpace)
	_, ok := ns.ResolvePath("/big")
	assert.False(t, ok)

	err = ns.Write("/f", make([]byte, 2000))
	assert.ErrorIs(t, err, ErrNoSpace)
	data, _ := ns.Cat("/f")
	assert.Equal(t, "hello", string(data))

	require.NoError(t, ns.Remove("/f"))
	assert.Equal(t, base, ns.UsedSpace())
}

// TestUnlimitedCapacity tests that a zero capacity never rejects writes
func TestUnlimitedCapacity(t *testing.T) {
	ns := New(0)
	require.NoError(t, ns.Write("/f", make([]byte, 1<<16)))
	assert.Zero(t, ns.FreeSpace())
}

// TestOperationMetrics tests that operations are recorded once
func TestOperationMetrics(t *testing.T) {
	m := monitoring.NewMetrics(prometheus.NewRegistry())
	ns := New(1<<20, WithMetrics(m))

	require.NoError(t, ns.Mkdir("/a"))
	assert.Error(t, ns.Mkdir("/a"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("mkdir", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("mkdir", "error")))
	assert.Equal(t, float64(ns.UsedSpace()),
		testutil.ToFloat64(m.VolumeUsedBytes.WithLabelValues(ns.ID().String())))
}
