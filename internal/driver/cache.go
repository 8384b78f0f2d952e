package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/daisy-lang/daisy/internal/abi"
)

// compilerCacheRev is bumped whenever a compiler-internal change (not
// reflected in a module's own source) must invalidate every cache entry.
// Grounded on driver.py's COMPILER_CACHE_REV.
const compilerCacheRev = "1"

// moduleHash hashes a module's own source together with the compiler's ABI
// version and cache revision, so any of the three changing invalidates the
// cache entry (driver.py's _module_hash).
func moduleHash(source string) string {
	payload := fmt.Sprintf("%d.%d\n%s\n%s", abi.VersionMajor, abi.VersionMinor, compilerCacheRev, source)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// combinedModuleHashes folds each module's dependency hashes into its own,
// so a change anywhere in a module's transitive dependency set invalidates
// its cache entry even when its own source text is untouched (driver.py's
// _combined_module_hashes).
func combinedModuleHashes(sources map[string]string, graph DepGraph) map[string]string {
	base := map[string]string{}
	for name, src := range sources {
		base[name] = moduleHash(src)
	}
	combined := map[string]string{}
	var visit func(name string) string
	visit = func(name string) string {
		if h, ok := combined[name]; ok {
			return h
		}
		var depHashes []string
		for _, dep := range graph[name] {
			if _, ok := base[dep]; ok {
				depHashes = append(depHashes, visit(dep))
			}
		}
		sort.Strings(depHashes)
		payload := base[name]
		for _, h := range depHashes {
			payload += h
		}
		sum := sha256.Sum256([]byte(payload))
		h := hex.EncodeToString(sum[:])
		combined[name] = h
		return h
	}
	for name := range base {
		visit(name)
	}
	return combined
}

type buildCacheEntry struct {
	Hash string `json:"hash"`
}

// loadBuildCache reads a module's recorded build-cache hash, or "" if no
// cache entry exists or it cannot be parsed.
func loadBuildCache(buildDir, moduleName string) string {
	raw, err := os.ReadFile(filepath.Join(buildDir, ".cache", moduleName+".json"))
	if err != nil {
		return ""
	}
	var entry buildCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return ""
	}
	return entry.Hash
}

// writeBuildCache persists a module's combined hash for the next build.
func writeBuildCache(buildDir, moduleName, hash string) error {
	cacheDir := filepath.Join(buildDir, ".cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(buildCacheEntry{Hash: hash}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cacheDir, moduleName+".json"), raw, 0o644)
}

// cacheHit reports whether a module can skip recompilation: its combined
// hash matches the cache record and its prior ABI manifest is still on
// disk (the C source artifact is this build's external collaborator's
// concern, so only the ABI manifest is checked here).
func cacheHit(buildDir, moduleName, combinedHash string) bool {
	if loadBuildCache(buildDir, moduleName) != combinedHash {
		return false
	}
	_, err := os.Stat(filepath.Join(buildDir, moduleName+".abi.json"))
	return err == nil
}
