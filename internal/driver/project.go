package driver

import (
	"os"
	"path/filepath"

	"github.com/daisy-lang/daisy/internal/ast"
	"github.com/daisy-lang/daisy/internal/parser"

	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
)

// moduleExt is this language's source file extension, grounded on
// original_source/.../driver.py's ".dsy" convention (spec.md names no
// extension of its own).
const moduleExt = ".dsy"

// loadProject parses entryPath and recursively follows its ImportDecl
// statements, resolving each import's module name to a file via
// searchPaths, until every reachable module has been parsed. Returns the
// modules keyed by their self-declared module name (spec.md §4.B "Module
// header") and the path each was loaded from. Grounded on driver.py's
// _load_project.
func loadProject(entryPath string, searchPaths []string) (map[string]*ast.Module, map[string]string, error) {
	modules := map[string]*ast.Module{}
	pathOf := map[string]string{}
	seen := map[string]bool{}

	var loadOne func(path string) error
	loadOne = func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if seen[abs] {
			return nil
		}
		seen[abs] = true
		src, err := os.ReadFile(abs)
		if err != nil {
			return daisyerrors.NewFatal(daisyerrors.DEP005, nil, "module source not found: %s", abs)
		}
		mod, err := parser.Parse(src, abs)
		if err != nil {
			return err
		}
		modules[mod.Name] = mod
		pathOf[mod.Name] = abs
		dir := filepath.Dir(abs)
		for _, stmt := range mod.Body {
			imp, ok := stmt.(*ast.ImportDecl)
			if !ok {
				continue
			}
			if _, already := modules[imp.Path]; already {
				continue
			}
			depPath, err := resolveModulePath(imp.Path, dir, searchPaths)
			if err != nil {
				return err
			}
			if err := loadOne(depPath); err != nil {
				return err
			}
		}
		return nil
	}

	if err := loadOne(entryPath); err != nil {
		return nil, nil, err
	}
	return modules, pathOf, nil
}

// resolveModulePath searches, in order: the supplied search paths
// (dependency then workspace, per Compile's construction order), the
// importing file's own sibling directory, and finally nothing else — the
// well-known src/, stdlib/, examples/ project-root directories are
// expected to already be present in searchPaths, appended once by Compile
// rather than re-derived per import (spec.md §4.I).
func resolveModulePath(name, siblingDir string, searchPaths []string) (string, error) {
	candidates := make([]string, 0, len(searchPaths)+1)
	for _, p := range searchPaths {
		candidates = append(candidates, filepath.Join(p, name+moduleExt))
	}
	candidates = append(candidates, filepath.Join(siblingDir, name+moduleExt))
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", daisyerrors.NewFatal(daisyerrors.DEP005, nil, "module not found: %s", name)
}

// wellKnownSearchPaths returns a project root's src/, stdlib/, examples/
// directories, searched last, after dependency and workspace paths
// (spec.md §4.I).
func wellKnownSearchPaths(projectRoot string) []string {
	return []string{
		filepath.Join(projectRoot, "src"),
		filepath.Join(projectRoot, "stdlib"),
		filepath.Join(projectRoot, "examples"),
	}
}
