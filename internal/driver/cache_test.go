package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleHashChangesWithSource(t *testing.T) {
	h1 := moduleHash("fn foo() -> int { return 1 }")
	h2 := moduleHash("fn foo() -> int { return 2 }")
	assert.NotEqual(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestCombinedModuleHashesChangesWhenDependencyChanges(t *testing.T) {
	graph := DepGraph{"app": {"math"}, "math": {}}
	sources1 := map[string]string{"app": "fn main() {}", "math": "fn add(int,int)->int { return 1 }"}
	sources2 := map[string]string{"app": "fn main() {}", "math": "fn add(int,int)->int { return 2 }"}

	combined1 := combinedModuleHashes(sources1, graph)
	combined2 := combinedModuleHashes(sources2, graph)

	assert.NotEqual(t, combined1["math"], combined2["math"])
	assert.NotEqual(t, combined1["app"], combined2["app"], "app's combined hash must change when its dependency's source changes")
}

func TestCombinedModuleHashesStableWhenNothingChanges(t *testing.T) {
	graph := DepGraph{"app": {"math"}, "math": {}}
	sources := map[string]string{"app": "fn main() {}", "math": "fn add(int,int)->int { return 1 }"}
	c1 := combinedModuleHashes(sources, graph)
	c2 := combinedModuleHashes(sources, graph)
	assert.Equal(t, c1, c2)
}

func TestCacheHitRequiresBothCacheRecordAndAbiManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeBuildCache(dir, "m", "abc123"))

	assert.False(t, cacheHit(dir, "m", "abc123"), "no abi manifest on disk yet")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "m.abi.json"), []byte(`{}`), 0o644))
	assert.True(t, cacheHit(dir, "m", "abc123"))
	assert.False(t, cacheHit(dir, "m", "different-hash"))
}

func TestLoadBuildCacheReturnsEmptyWhenMissing(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", loadBuildCache(dir, "m"))
}
