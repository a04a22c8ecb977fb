package vfs

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchTree(t *testing.T) *Namespace {
	t.Helper()
	ns := New(1 << 20)
	require.NoError(t, ns.Mkdir("/logs"))
	require.NoError(t, ns.Mkdir("/logs/catalog"))
	require.NoError(t, ns.Write("/logs/app.log", []byte(strings.Repeat("x", 150))))
	require.NoError(t, ns.Write("/logs/small.log", []byte("tiny")))
	require.NoError(t, ns.Write("/logs/catalog/big.log", []byte(strings.Repeat("ERROR ", 40))))
	require.NoError(t, ns.Write("/readme.md", []byte("see the logs directory")))
	return ns
}

// TestSearchNameAndSize tests combined name and size conditions
func TestSearchNameAndSize(t *testing.T) {
	ns := searchTree(t)

	results, err := ns.Search(SearchFilter{Name: "log", MinSize: 100}, "/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/logs/app.log", "/logs/catalog/big.log"}, results)
}

// TestSearchName tests substring and regex name matching
func TestSearchName(t *testing.T) {
	ns := searchTree(t)

	results, err := ns.SearchByName("log", false, "/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/logs", "/logs/catalog", "/logs/catalog/big.log", "/logs/app.log", "/logs/small.log"}, results)

	results, err = ns.SearchByName(`^[a-z]+\.log$`, true, "/logs")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/logs/app.log", "/logs/small.log", "/logs/catalog/big.log"}, results)

	_, err = ns.SearchByName("([", true, "/")
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

// TestSearchContent tests content matching over files only
func TestSearchContent(t *testing.T) {
	ns := searchTree(t)
	require.NoError(t, ns.EncryptFile("/logs/catalog/big.log", "k", "XOR"))

	results, err := ns.SearchByContent("ERROR", false, "/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/logs/catalog/big.log"}, results)

	results, err = ns.SearchByContent(`logs? dir`, true, "/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/readme.md"}, results)
}

// TestSearchSizeAndType tests size bounds and kind flags
func TestSearchSizeAndType(t *testing.T) {
	ns := searchTree(t)

	results, err := ns.SearchBySize(0, 10, "/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/logs/small.log"}, results)

	results, err = ns.Search(SearchFilter{DirectoriesOnly: true}, "/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/logs", "/logs/catalog"}, results)
}

// TestSearchGlob tests doublestar patterns relative to the search root
func TestSearchGlob(t *testing.T) {
	ns := searchTree(t)

	results, err := ns.SearchByGlob("**/*.log", "/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/logs/app.log", "/logs/small.log", "/logs/catalog/big.log"}, results)

	results, err = ns.SearchByGlob("*.log", "/logs")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/logs/app.log", "/logs/small.log"}, results)

	_, err = ns.SearchByGlob("[", "/")
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

// TestSearchDate tests modification time bounds
func TestSearchDate(t *testing.T) {
	fakeClock(t)
	ns := New(1 << 20)
	require.NoError(t, ns.Write("/old", []byte("o")))
	cut := now()
	require.NoError(t, ns.Write("/new", []byte("n")))

	results, err := ns.SearchByDate(cut, time.Time{}, "/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/new"}, results)

	results, err = ns.SearchByDate(time.Time{}, cut, "/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/old"}, results)
}

// TestSearchPredicate tests the caller-supplied match function
func TestSearchPredicate(t *testing.T) {
	ns := searchTree(t)

	results, err := ns.Search(SearchFilter{
		FilesOnly: true,
		Match:     func(n *Node) bool { return strings.HasPrefix(n.Name(), "s") },
	}, "/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/logs/small.log"}, results)
}

// TestSearchStart tests start directory handling
func TestSearchStart(t *testing.T) {
	ns := searchTree(t)

	results, err := ns.SearchByName("catalog", false, "/logs/catalog")
	require.NoError(t, err)
	assert.Empty(t, results, "the start directory is not a candidate")

	_, err = ns.SearchByName("x", false, "/readme.md")
	assert.ErrorIs(t, err, ErrNotDir)
	_, err = ns.SearchByName("x", false, "/missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, ns.Cd("/logs"))
	results, err = ns.SearchByName("big", false, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/logs/catalog/big.log"}, results)
}

// TestSearchAcrossMounts tests that results inside volumes carry the full path
func TestSearchAcrossMounts(t *testing.T) {
	ns := searchTree(t)
	image := filepath.Join(t.TempDir(), "v.img")
	require.NoError(t, ns.CreateVolume(image, 1<<20))
	require.NoError(t, ns.MountVolume(image, "/logs/archive"))
	require.NoError(t, ns.Mkdir("/logs/archive/2023"))
	require.NoError(t, ns.Write("/logs/archive/2023/old.log", []byte(strings.Repeat("y", 200))))

	results, err := ns.Search(SearchFilter{Name: "log", MinSize: 100}, "/")
	require.NoError(t, err)
	assert.Contains(t, results, "/logs/archive/2023/old.log")

	results, err = ns.SearchByName("old", false, "/logs/archive")
	require.NoError(t, err)
	assert.Equal(t, []string{"/logs/archive/2023/old.log"}, results)

	results, err = ns.SearchByName("old", false, "/logs/archive/2023")
	require.NoError(t, err)
	assert.Equal(t, []string{"/logs/archive/2023/old.log"}, results)
}
