// Package abi computes the symbol-mangling and signature-hash formulas that
// back a module's exported-function ABI manifest, and checks a build's
// manifest against a prior one for compatibility regressions. Grounded on
// original_source/compiler-core/compiler_core/abi.py (mangle, signature
// hash, version constants, reused verbatim) and the teacher's
// internal/iface/iface.go for the Go shape of an exported-symbol table
// (spec.md §6 "ABI manifest").
package abi

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/daisy-lang/daisy/internal/core"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
)

// VersionMajor and VersionMinor are the compiler's current ABI version; the
// major component must match across every module in a build, and the minor
// component is monotonically nondecreasing (spec.md §4.H "ABI manifest").
const (
	VersionMajor = 2
	VersionMinor = 15
)

// Version is a module's recorded ABI version.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

// CurrentVersion is the compiler's own ABI version, stamped onto every
// manifest this build produces.
func CurrentVersion() Version { return Version{Major: VersionMajor, Minor: VersionMinor} }

// Mangle produces a module-qualified external symbol name: dots in either
// component become double underscores, matching the generated C emitter's
// contract (spec.md §4.H).
func Mangle(module, name string) string {
	safeModule := strings.ReplaceAll(module, ".", "__")
	safeName := strings.ReplaceAll(name, ".", "__")
	return "daisy_" + safeModule + "__" + safeName
}

// SignatureHash is the first 16 hex characters of sha256(params_joined_by_
// comma + "->" + returnType), used to detect a signature change across
// builds without storing the full type list.
func SignatureHash(params []string, returnType string) string {
	payload := strings.Join(params, ",") + "->" + returnType
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])[:16]
}

// FunctionSymbol is one externally visible function's ABI record.
type FunctionSymbol struct {
	Name   string   `json:"name"`
	Symbol string   `json:"symbol"`
	Params []string `json:"params"`
	Return string   `json:"return"`
	Sig    string   `json:"sig"`
	Extern bool     `json:"extern,omitempty"`
}

// Manifest is a module's complete per-build ABI record (spec.md §4.H).
type Manifest struct {
	Module     string           `json:"module"`
	AbiVersion Version          `json:"abi_version"`
	Functions  []FunctionSymbol `json:"functions"`
}

// Build computes the ABI manifest for a lowered module's ordinary functions
// and externs, sorted by name for deterministic output (spec.md §9
// "Determinism").
func Build(moduleName string, mod *core.Module) *Manifest {
	m := &Manifest{Module: moduleName, AbiVersion: CurrentVersion()}
	for _, fn := range mod.Functions {
		var params []string
		for _, p := range fn.Params {
			params = append(params, p.TypeName)
		}
		m.Functions = append(m.Functions, FunctionSymbol{
			Name:   fn.Name,
			Symbol: Mangle(moduleName, fn.Name),
			Params: params,
			Return: fn.ReturnType,
			Sig:    SignatureHash(params, fn.ReturnType),
		})
	}
	for _, ext := range mod.Externs {
		var params []string
		for _, p := range ext.Params {
			params = append(params, p.TypeName)
		}
		m.Functions = append(m.Functions, FunctionSymbol{
			Name:   ext.Name,
			Symbol: Mangle(moduleName, ext.Name),
			Params: params,
			Return: ext.ReturnType,
			Sig:    SignatureHash(params, ext.ReturnType),
			Extern: true,
		})
	}
	sort.Slice(m.Functions, func(i, j int) bool { return m.Functions[i].Name < m.Functions[j].Name })
	return m
}

// MigrationLog records the breaking and additive changes found by Compare,
// for the build to print even when the check passes (added symbols are
// informational, not breaking, as long as the minor version bumped).
type MigrationLog struct {
	Removed []string
	Changed []string
	Added   []string
}

// Compare checks cur against a previously recorded manifest prev for the
// same module, per spec.md §4.H "ABI compatibility check": fail if any
// previously present function is now missing or changed signature, fail if
// the major version changed, fail if the minor version decreased, and fail
// if functions were added without a minor version bump. Returns the
// migration log regardless of outcome; err is non-nil exactly when the
// check fails.
func Compare(prev, cur *Manifest) (*MigrationLog, error) {
	log := &MigrationLog{}
	prevByName := map[string]FunctionSymbol{}
	for _, fn := range prev.Functions {
		prevByName[fn.Name] = fn
	}
	curByName := map[string]FunctionSymbol{}
	for _, fn := range cur.Functions {
		curByName[fn.Name] = fn
	}

	for name, old := range prevByName {
		now, ok := curByName[name]
		if !ok {
			log.Removed = append(log.Removed, name)
			continue
		}
		if now.Sig != old.Sig {
			log.Changed = append(log.Changed, name)
		}
	}
	for name := range curByName {
		if _, ok := prevByName[name]; !ok {
			log.Added = append(log.Added, name)
		}
	}
	sort.Strings(log.Removed)
	sort.Strings(log.Changed)
	sort.Strings(log.Added)

	if cur.AbiVersion.Major != prev.AbiVersion.Major {
		return log, daisyerrors.NewFatal(daisyerrors.ABI003, nil,
			"ABI major version mismatch for %s: %d -> %d", cur.Module, prev.AbiVersion.Major, cur.AbiVersion.Major)
	}
	if len(log.Removed) > 0 {
		return log, daisyerrors.NewFatal(daisyerrors.ABI001, nil,
			"ABI symbol removed in %s: %s", cur.Module, strings.Join(log.Removed, ", "))
	}
	if len(log.Changed) > 0 {
		name := log.Changed[0]
		return log, daisyerrors.NewFatal(daisyerrors.ABI002, nil,
			"ABI mismatch for %s: %s -> %s", name, prevByName[name].Sig, curByName[name].Sig)
	}
	if cur.AbiVersion.Minor < prev.AbiVersion.Minor {
		return log, daisyerrors.NewFatal(daisyerrors.ABI003, nil,
			"ABI minor version decreased for %s: %d -> %d", cur.Module, prev.AbiVersion.Minor, cur.AbiVersion.Minor)
	}
	if len(log.Added) > 0 && cur.AbiVersion.Minor <= prev.AbiVersion.Minor {
		return log, daisyerrors.NewFatal(daisyerrors.ABI004, nil,
			"ABI symbols added in %s without a minor version bump: %s", cur.Module, strings.Join(log.Added, ", "))
	}
	return log, nil
}
