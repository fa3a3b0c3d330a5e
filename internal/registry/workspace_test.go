package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lspbroker.dev/lspbroker/internal/platform"
)

func TestWalkUpForMarker_FindsNearestMarker(t *testing.T) {
	fs := platform.NewMapFileSystem(nil)
	fs.AddFile("/proj/go.mod", "module proj", 0o644)
	fs.AddFile("/proj/internal/pkg/file.go", "package pkg", 0o644)

	marker, ok := walkUpForMarker(fs, "/proj/internal/pkg", []string{"go.mod"})
	assert.True(t, ok)
	assert.Equal(t, "/proj/go.mod", marker)
}

func TestWalkUpForMarker_NoMarkerReachesRoot(t *testing.T) {
	fs := platform.NewMapFileSystem(nil)
	fs.AddFile("/proj/internal/pkg/file.go", "package pkg", 0o644)

	_, ok := walkUpForMarker(fs, "/proj/internal/pkg", []string{"go.mod"})
	assert.False(t, ok)
}

func TestIsLibraryPath(t *testing.T) {
	t.Setenv("HOME", "/home/u")
	assert.True(t, isLibraryPath("/home/u/.cargo/registry/src/index.crates.io/serde-1.0/lib.rs", "", ""))
	assert.True(t, isLibraryPath("/rustup/toolchains/stable/lib/rustlib/src/rust/library/core/src/lib.rs", "/rustup", ""))
	assert.False(t, isLibraryPath("/home/u/project/src/main.rs", "", ""))
}

func TestMemoCache_EvictsOldestOverCapacity(t *testing.T) {
	c := newMemoCache(2)
	c.put("a", "1")
	c.put("b", "2")
	c.put("c", "3")

	_, ok := c.get("a")
	assert.False(t, ok, "oldest entry should have been evicted")
	v, ok := c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestPyprojectWorkspaceRoot_IsManifestDir(t *testing.T) {
	c := newMemoCache(resolverCacheCapacity)
	root := pyprojectWorkspaceRoot(c, "/home/u/project/pyproject.toml")
	assert.Equal(t, "/home/u/project", root)

	// second call should hit the cache and return the same value
	root2 := pyprojectWorkspaceRoot(c, "/home/u/project/pyproject.toml")
	assert.Equal(t, root, root2)
}

func TestClientKey_EncodesLanguageAndWorkspace(t *testing.T) {
	k := ClientKey("rust", "file:///home/u/project")
	assert.Equal(t, "rust\x00file:///home/u/project", k)
}
