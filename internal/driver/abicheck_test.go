package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/daisy-lang/daisy/internal/abi"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDependencyABIPassesWithNoBuildDir(t *testing.T) {
	dir := t.TempDir()
	data := map[string]any{
		"dependencies": map[string]any{
			"math": map[string]any{"path": "deps/math"},
		},
	}
	assert.NoError(t, CheckDependencyABI(dir, data))
}

func TestCheckDependencyABIDetectsMajorMismatch(t *testing.T) {
	dir := t.TempDir()
	depBuild := filepath.Join(dir, "deps", "math", "build")
	require.NoError(t, os.MkdirAll(depBuild, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(depBuild, "math.abi.json"),
		[]byte(`{"abi_version":{"major":1,"minor":0}}`), 0o644))

	data := map[string]any{
		"dependencies": map[string]any{
			"math": map[string]any{"path": "deps/math"},
		},
	}
	err := CheckDependencyABI(dir, data)
	require.Error(t, err)
	assert.Equal(t, daisyerrors.DEP004, err.(*daisyerrors.FatalError).Code)
}

func TestCheckDependencyABITreatsLegacyBareIntEncoding(t *testing.T) {
	dir := t.TempDir()
	depBuild := filepath.Join(dir, "deps", "math", "build")
	require.NoError(t, os.MkdirAll(depBuild, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(depBuild, "math.abi.json"),
		[]byte(fmt.Sprintf(`{"abi_version":%d}`, abi.VersionMajor)), 0o644))

	data := map[string]any{
		"dependencies": map[string]any{
			"math": map[string]any{"path": "deps/math"},
		},
	}
	assert.NoError(t, CheckDependencyABI(dir, data))
}

func TestWriteAndReadAbiManifestRoundTrips(t *testing.T) {
	dir := t.TempDir()
	manifest := &abi.Manifest{Module: "math", AbiVersion: abi.CurrentVersion(), Functions: []abi.FunctionSymbol{
		{Name: "add", Symbol: abi.Mangle("math", "add"), Params: []string{"int", "int"}, Return: "int"},
	}}
	require.NoError(t, writeAbiManifest(dir, manifest))

	got, err := readAbiManifest(dir, "math")
	require.NoError(t, err)
	assert.Equal(t, manifest.Module, got.Module)
	assert.Equal(t, manifest.Functions, got.Functions)
}

func TestCheckAbiCompatReturnsNilWithNoPriorManifest(t *testing.T) {
	dir := t.TempDir()
	cur := &abi.Manifest{Module: "math", AbiVersion: abi.CurrentVersion()}
	log, err := checkAbiCompat(dir, cur)
	assert.NoError(t, err)
	assert.Nil(t, log)
}

func TestCheckAbiCompatFailsOnBreakingChangeAndWritesMigrationLog(t *testing.T) {
	dir := t.TempDir()
	prev := &abi.Manifest{Module: "math", AbiVersion: abi.CurrentVersion(), Functions: []abi.FunctionSymbol{
		{Name: "add", Sig: "abc"},
	}}
	require.NoError(t, writeAbiManifest(dir, prev))

	cur := &abi.Manifest{Module: "math", AbiVersion: abi.CurrentVersion()}
	_, err := checkAbiCompat(dir, cur)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "math.abi.migration.log"))
	assert.NoError(t, statErr)
}
