// Package driver implements the multi-module build orchestrator: project
// loading via the import graph, the cross-module first sweep, per-module
// compilation (type-check, borrow-check, lower, optimize, validate), the
// ABI compatibility check and build cache, and the dependency manifest's
// search-path/version/ABI pre-flight rules. Grounded on
// original_source/compiler-bootstrap/compiler_bootstrap/driver.py.
//
// The manifest format itself (`daisy.toml`) is an explicit non-goal
// (spec.md §1): this package never parses TOML. It accepts a manifest as
// an already-deserialized map[string]any, exactly as spec.md §6 describes
// the recognized keys, and a DepManifestLoader callback for fetching a
// dependency's own manifest the same way — the file I/O and TOML decode
// stay the caller's concern.
package driver

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
)

// DepManifestLoader loads and deserializes the manifest found at path,
// returning the same map[string]any shape as the entry project's own
// manifest. Compile calls this for every dependency with a path-based
// entry, to check its package.name and, when one is declared, its version
// requirement, mirroring driver.py's _check_dependency_versions.
type DepManifestLoader func(path string) (map[string]any, error)

// depSpecToPathReq mirrors driver.py's _dep_spec_to_path_req: a dependency
// entry is either a bare version-requirement string (no path, so no
// search-path contribution) or a table with "path" and optional "version".
func depSpecToPathReq(spec any) (path string, versionReq string, ok bool) {
	switch v := spec.(type) {
	case string:
		return "", v, false
	case map[string]any:
		p, hasPath := v["path"].(string)
		if !hasPath {
			return "", "", false
		}
		ver, _ := v["version"].(string)
		return p, ver, true
	default:
		return "", "", false
	}
}

func dependenciesTable(data map[string]any) map[string]any {
	deps, _ := data["dependencies"].(map[string]any)
	return deps
}

func resolveRelative(manifestDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(filepath.Join(manifestDir, path))
}

// DependencySearchPaths returns each dependency's "src" and root directory,
// in dependency-name order, for modules with a path-based entry.
func DependencySearchPaths(manifestDir string, data map[string]any) []string {
	deps := dependenciesTable(data)
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	var paths []string
	for _, name := range names {
		depPath, _, ok := depSpecToPathReq(deps[name])
		if !ok {
			continue
		}
		dir := resolveRelative(manifestDir, depPath)
		paths = append(paths, filepath.Join(dir, "src"), dir)
	}
	return paths
}

// WorkspaceSearchPaths returns each workspace member's "src" and root
// directory. Members are directories, not globs — the glob-expansion
// driver.py performs belongs to the file-discovery step its caller
// supplies externally; Compile's caller passes already-expanded members.
func WorkspaceSearchPaths(manifestDir string, data map[string]any) []string {
	workspace, _ := data["workspace"].(map[string]any)
	if workspace == nil {
		return nil
	}
	members, _ := workspace["members"].([]string)
	var paths []string
	for _, member := range members {
		dir := resolveRelative(manifestDir, member)
		paths = append(paths, filepath.Join(dir, "src"), dir)
	}
	return paths
}

// CheckDependencyVersions validates, for every dependency that declares a
// path, that the dependency's own manifest (fetched via load) names itself
// `package.name == <dep name>` and that `package.version` satisfies the
// requested requirement (spec.md §6 "Module manifest").
func CheckDependencyVersions(manifestDir string, data map[string]any, load DepManifestLoader) error {
	for depName, spec := range dependenciesTable(data) {
		depPath, versionReq, ok := depSpecToPathReq(spec)
		if !ok {
			continue
		}
		if load == nil {
			continue
		}
		dir := resolveRelative(manifestDir, depPath)
		depData, err := load(dir)
		if err != nil {
			return daisyerrors.NewFatal(daisyerrors.DEP001, nil,
				"dependency manifest not found for %s: %v", depName, err)
		}
		pkg, _ := depData["package"].(map[string]any)
		if pkg == nil {
			return daisyerrors.NewFatal(daisyerrors.DEP001, nil,
				"dependency manifest missing [package] for %s", depName)
		}
		if pkgName, _ := pkg["name"].(string); pkgName != "" && pkgName != depName {
			return daisyerrors.NewFatal(daisyerrors.DEP002, nil,
				"dependency name mismatch: %s != %s", depName, pkgName)
		}
		if versionReq == "" {
			continue
		}
		depVersion, _ := pkg["version"].(string)
		if depVersion == "" {
			return daisyerrors.NewFatal(daisyerrors.DEP003, nil,
				"dependency version missing for %s", depName)
		}
		if !satisfiesVersion(depVersion, versionReq) {
			return daisyerrors.NewFatal(daisyerrors.DEP003, nil,
				"dependency version mismatch for %s: required %s, found %s", depName, versionReq, depVersion)
		}
	}
	return nil
}

func parseSemver(value string) ([3]int, bool) {
	parts := strings.Split(value, ".")
	var nums [3]int
	for i := 0; i < 3; i++ {
		if i >= len(parts) {
			break
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return nums, false
		}
		nums[i] = n
	}
	return nums, true
}

// satisfiesVersion implements spec.md §6's version rule: equal to a bare
// requirement, or `^X.Y.Z` and actual shares major and is >= required.
func satisfiesVersion(actual, req string) bool {
	act, ok := parseSemver(actual)
	if !ok {
		return false
	}
	if strings.HasPrefix(req, "^") {
		base, ok := parseSemver(req[1:])
		if !ok {
			return false
		}
		if act[0] != base[0] {
			return false
		}
		return semverGE(act, base)
	}
	base, ok := parseSemver(req)
	if !ok {
		return false
	}
	return act == base
}

func semverGE(a, b [3]int) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return true
}
