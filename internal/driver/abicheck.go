package driver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daisy-lang/daisy/internal/abi"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
	"github.com/daisy-lang/daisy/internal/schema"
)

// abiVersionDiskShape is the subset of a *.abi.json artifact this check
// reads; it tolerates the bare-int legacy encoding the original emitted
// before the {major,minor} object shape, per driver.py's own fallback.
type abiVersionDiskShape struct {
	Major int `json:"major"`
}

type abiManifestDiskShape struct {
	AbiVersion json.RawMessage `json:"abi_version"`
}

func diskAbiMajor(raw json.RawMessage) int {
	var asInt int
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return asInt
	}
	var asObj abiVersionDiskShape
	if err := json.Unmarshal(raw, &asObj); err == nil {
		return asObj.Major
	}
	return 0
}

// CheckDependencyABI implements SPEC_FULL.md §C.6: for every path-based
// dependency with a build/ directory already on disk, every prior
// *.abi.json artifact's major version must match this build's
// abi.VersionMajor, independent of and prior to the same-module ABI
// regression check performed later in compileOne. Grounded on
// original_source/.../driver.py's _check_dependency_abi.
func CheckDependencyABI(manifestDir string, data map[string]any) error {
	for depName, spec := range dependenciesTable(data) {
		depPath, _, ok := depSpecToPathReq(spec)
		if !ok {
			continue
		}
		buildDir := filepath.Join(resolveRelative(manifestDir, depPath), "build")
		entries, err := os.ReadDir(buildDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || filepath.Ext(name) != ".json" || filepath.Ext(trimExt(name)) != ".abi" {
				continue
			}
			raw, err := os.ReadFile(filepath.Join(buildDir, name))
			if err != nil {
				continue
			}
			var manifest abiManifestDiskShape
			if err := json.Unmarshal(raw, &manifest); err != nil {
				continue
			}
			major := diskAbiMajor(manifest.AbiVersion)
			if major == 0 {
				major = abi.VersionMajor
			}
			if major != abi.VersionMajor {
				return daisyerrors.NewFatal(daisyerrors.DEP004, nil,
					"dependency ABI major mismatch for %s: %d != %d", depName, major, abi.VersionMajor)
			}
		}
	}
	return nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

func abiManifestPath(buildDir, moduleName string) string {
	return filepath.Join(buildDir, moduleName+".abi.json")
}

// readAbiManifest loads a module's previously written ABI manifest.
func readAbiManifest(buildDir, moduleName string) (*abi.Manifest, error) {
	raw, err := os.ReadFile(abiManifestPath(buildDir, moduleName))
	if err != nil {
		return nil, fmt.Errorf("reading cached ABI manifest for %s: %w", moduleName, err)
	}
	var manifest abi.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("parsing cached ABI manifest for %s: %w", moduleName, err)
	}
	return &manifest, nil
}

// writeAbiManifest persists the current build's ABI manifest for this
// module, sorted-key deterministic per spec.md §9 "Determinism".
func writeAbiManifest(buildDir string, manifest *abi.Manifest) error {
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	raw, err := schema.MarshalDeterministic(manifest)
	if err != nil {
		return err
	}
	return os.WriteFile(abiManifestPath(buildDir, manifest.Module), raw, 0o644)
}

// checkAbiCompat compares the current build's manifest against whatever
// manifest already exists on disk for this module (if any), writing a
// migration log alongside a failure and alongside a successful-but-additive
// build alike (driver.py's _check_abi_compat / _write_migration_log).
func checkAbiCompat(buildDir string, current *abi.Manifest) (*abi.MigrationLog, error) {
	prev, err := readAbiManifest(buildDir, current.Module)
	if err != nil {
		return nil, nil // no prior manifest: nothing to compare against
	}
	log, compareErr := abi.Compare(prev, current)
	if compareErr != nil {
		if writeErr := writeMigrationLog(buildDir, current.Module, log); writeErr != nil {
			return nil, writeErr
		}
		return log, compareErr
	}
	if len(log.Added) > 0 {
		if err := writeMigrationLog(buildDir, current.Module, log); err != nil {
			return nil, err
		}
	}
	return log, nil
}

func writeMigrationLog(buildDir, moduleName string, log *abi.MigrationLog) error {
	lines := []string{"module: " + moduleName}
	if len(log.Removed) > 0 || len(log.Changed) > 0 {
		lines = append(lines, "breaking_changes:")
		for _, name := range log.Removed {
			lines = append(lines, "- removed "+name)
		}
		for _, name := range log.Changed {
			lines = append(lines, "- changed "+name)
		}
	}
	if len(log.Added) > 0 {
		lines = append(lines, "added_functions:")
		for _, name := range log.Added {
			lines = append(lines, "- "+name)
		}
	}
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	path := filepath.Join(buildDir, moduleName+".abi.migration.log")
	return os.WriteFile(path, []byte(content), 0o644)
}
