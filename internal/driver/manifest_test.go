package driver

import (
	"errors"
	"testing"

	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepSpecToPathReqHandlesBareVersionString(t *testing.T) {
	path, ver, ok := depSpecToPathReq("^1.2.0")
	assert.False(t, ok)
	assert.Equal(t, "", path)
	assert.Equal(t, "^1.2.0", ver)
}

func TestDepSpecToPathReqHandlesPathTable(t *testing.T) {
	path, ver, ok := depSpecToPathReq(map[string]any{"path": "../math", "version": "^1.0.0"})
	assert.True(t, ok)
	assert.Equal(t, "../math", path)
	assert.Equal(t, "^1.0.0", ver)
}

func TestDependencySearchPathsReturnsSrcAndRootPerDependency(t *testing.T) {
	data := map[string]any{
		"dependencies": map[string]any{
			"math": map[string]any{"path": "deps/math"},
		},
	}
	paths := DependencySearchPaths("/proj", data)
	assert.Contains(t, paths, "/proj/deps/math/src")
	assert.Contains(t, paths, "/proj/deps/math")
}

func TestWorkspaceSearchPathsSkipsWhenNoWorkspace(t *testing.T) {
	assert.Nil(t, WorkspaceSearchPaths("/proj", map[string]any{}))
}

func TestSatisfiesVersionCaretRange(t *testing.T) {
	assert.True(t, satisfiesVersion("1.3.0", "^1.2.0"))
	assert.True(t, satisfiesVersion("1.2.0", "^1.2.0"))
	assert.False(t, satisfiesVersion("2.0.0", "^1.2.0"))
	assert.False(t, satisfiesVersion("1.1.0", "^1.2.0"))
}

func TestSatisfiesVersionExactMatch(t *testing.T) {
	assert.True(t, satisfiesVersion("1.2.0", "1.2.0"))
	assert.False(t, satisfiesVersion("1.2.1", "1.2.0"))
}

func TestCheckDependencyVersionsDetectsNameMismatch(t *testing.T) {
	data := map[string]any{
		"dependencies": map[string]any{
			"math": map[string]any{"path": "deps/math"},
		},
	}
	load := func(path string) (map[string]any, error) {
		return map[string]any{"package": map[string]any{"name": "geometry", "version": "1.0.0"}}, nil
	}
	err := CheckDependencyVersions("/proj", data, load)
	require.Error(t, err)
	assert.Equal(t, daisyerrors.DEP002, err.(*daisyerrors.FatalError).Code)
}

func TestCheckDependencyVersionsDetectsVersionMismatch(t *testing.T) {
	data := map[string]any{
		"dependencies": map[string]any{
			"math": map[string]any{"path": "deps/math", "version": "^2.0.0"},
		},
	}
	load := func(path string) (map[string]any, error) {
		return map[string]any{"package": map[string]any{"name": "math", "version": "1.0.0"}}, nil
	}
	err := CheckDependencyVersions("/proj", data, load)
	require.Error(t, err)
	assert.Equal(t, daisyerrors.DEP003, err.(*daisyerrors.FatalError).Code)
}

func TestCheckDependencyVersionsPassesWhenSatisfied(t *testing.T) {
	data := map[string]any{
		"dependencies": map[string]any{
			"math": map[string]any{"path": "deps/math", "version": "^1.0.0"},
		},
	}
	load := func(path string) (map[string]any, error) {
		return map[string]any{"package": map[string]any{"name": "math", "version": "1.4.0"}}, nil
	}
	assert.NoError(t, CheckDependencyVersions("/proj", data, load))
}

func TestCheckDependencyVersionsReportsLoadFailure(t *testing.T) {
	data := map[string]any{
		"dependencies": map[string]any{
			"math": map[string]any{"path": "deps/math"},
		},
	}
	load := func(path string) (map[string]any, error) { return nil, errors.New("manifest not found") }
	err := CheckDependencyVersions("/proj", data, load)
	require.Error(t, err)
	assert.Equal(t, daisyerrors.DEP001, err.(*daisyerrors.FatalError).Code)
}
