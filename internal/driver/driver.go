package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/daisy-lang/daisy/internal/abi"
	"github.com/daisy-lang/daisy/internal/ast"
	"github.com/daisy-lang/daisy/internal/borrow"
	"github.com/daisy-lang/daisy/internal/core"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
	"github.com/daisy-lang/daisy/internal/optimize"
	"github.com/daisy-lang/daisy/internal/region"
	"github.com/daisy-lang/daisy/internal/types"
	"github.com/daisy-lang/daisy/internal/validate"
)

// BuildOptions carries the six flags spec.md §6 names for `build <file>`/
// `run <file>`, plus the manifest inputs §4.I's search-path and
// dependency-check rules need. The C toolchain itself is an external
// collaborator (spec.md §1): these flags are threaded through for a future
// codegen/link step to consume, not acted on here.
type BuildOptions struct {
	LTO      bool
	EmitIR   bool
	RTChecks bool
	Profile  bool
	Sanitize string
	LinkLibs []string

	// ManifestDir is the directory the manifest (if any) was found in,
	// used as the base for resolving relative dependency/workspace paths
	// and as the project root for the well-known src/stdlib/examples
	// search directories.
	ManifestDir string
	// ManifestData is the already-deserialized `daisy.toml`-equivalent
	// table (nil if the project has none). Parsing TOML itself is this
	// spec's explicit non-goal (§1).
	ManifestData map[string]any
	// LoadDepManifest fetches a dependency's own manifest the same way; it is
	// called for every dependency entry that declares a path.
	LoadDepManifest DepManifestLoader
}

// ModuleResult is one module's outcome from a single Compile call.
type ModuleResult struct {
	Name        string
	IR          *core.Module
	ABIManifest *abi.Manifest
	Migration   *abi.MigrationLog
	Diagnostics []daisyerrors.Diagnostic
	Cached      bool
}

// CompileResult is the outcome of building an entire project starting from
// one entry file.
type CompileResult struct {
	EntryModule string
	Modules     map[string]*ModuleResult
	Order       []string // topological build order
}

// Compile builds the module graph rooted at entryPath, type-checks,
// borrow-checks, lowers, optimizes, and validates every module, in
// dependency order with per-module compilation parallelized across a
// worker pool when the graph has more than one module (spec.md §5
// "Driver", §4.I). Grounded function-for-function on
// original_source/.../driver.py's compile_project.
func Compile(entryPath, buildDir string, opts BuildOptions) (*CompileResult, error) {
	if opts.ManifestData != nil {
		if err := CheckDependencyVersions(opts.ManifestDir, opts.ManifestData, opts.LoadDepManifest); err != nil {
			return nil, err
		}
		if err := CheckDependencyABI(opts.ManifestDir, opts.ManifestData); err != nil {
			return nil, err
		}
	}

	projectRoot := opts.ManifestDir
	if projectRoot == "" {
		absEntry, err := filepath.Abs(entryPath)
		if err != nil {
			return nil, err
		}
		projectRoot = filepath.Dir(absEntry)
	}
	searchPaths := append(
		append(DependencySearchPaths(opts.ManifestDir, opts.ManifestData),
			WorkspaceSearchPaths(opts.ManifestDir, opts.ManifestData)...),
		wellKnownSearchPaths(projectRoot)...)

	modules, paths, err := loadProject(entryPath, searchPaths)
	if err != nil {
		return nil, err
	}

	entryAbs, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, err
	}
	var entryName string
	for name, p := range paths {
		if p == entryAbs {
			entryName = name
		}
	}

	graph := buildDepGraph(modules)
	order, err := topoSort(graph)
	if err != nil {
		return nil, err
	}

	sigs := collectSignatures(modules)
	generics := collectGenericFuncs(modules)
	defs := collectTypeDefs(modules)

	sources := map[string]string{}
	for name, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		sources[name] = string(raw)
	}
	combinedHashes := combinedModuleHashes(sources, graph)

	results := map[string]*ModuleResult{}
	var mu sync.Mutex
	compileOne := func(name string) error {
		mod := modules[name]
		ext := externalInputsFor(name, sigs, defs, generics)
		res, err := compileModule(mod, ext, buildDir, combinedHashes[name], opts)
		if err != nil {
			return err
		}
		mu.Lock()
		results[name] = res
		mu.Unlock()
		return nil
	}

	if len(order) <= 1 {
		for _, name := range order {
			if err := compileOne(name); err != nil {
				return nil, err
			}
		}
	} else {
		if err := compileParallel(order, graph, compileOne); err != nil {
			return nil, err
		}
	}

	return &CompileResult{EntryModule: entryName, Modules: results, Order: order}, nil
}

// compileParallel runs compileOne for every module once its dependencies
// (per graph) have completed, bounded by a worker pool sized to available
// CPUs — spec.md §5 "Build-time concurrency": a task reads only read-only
// first-sweep tables and its own build-cache entry, and writes only its own
// module's files, so no synchronization beyond dependency ordering and the
// results map is required. No direct teacher package runs a worker pool
// (AILANG's own pipeline is single-module); this follows plain stdlib
// sync/goroutine idiom instead.
func compileParallel(order []string, graph DepGraph, compileOne func(string) error) error {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	done := make(map[string]chan struct{}, len(order))
	for _, name := range order {
		done[name] = make(chan struct{})
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	errCh := make(chan error, len(order))

	for _, name := range order {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, dep := range graph[name] {
				<-done[dep]
			}
			sem <- struct{}{}
			defer func() { <-sem }()
			if err := compileOne(name); err != nil {
				errCh <- err
			}
			close(done[name])
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		return err
	}
	return nil
}

// compileModule runs the single-module pipeline: type-check, region
// inference (advisory), borrow-check, lower, optimize, ABI-compat check,
// validate, ABI manifest emission, and build-cache write. Mirrors
// driver.py's compile_one inner function.
func compileModule(mod *ast.Module, ext types.ExternalInputs, buildDir, combinedHash string, opts BuildOptions) (*ModuleResult, error) {
	checker := types.NewChecker(ext)
	diags := checker.CheckModule(mod)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: type errors:\n%s", mod.Name, joinDiagnostics(diags))
	}

	if len(checker.ImplFuncs()) > 0 || len(checker.SpecializedFuncs()) > 0 {
		body := append([]ast.Stmt{}, mod.Body...)
		for _, fn := range checker.ImplFuncs() {
			body = append(body, fn)
		}
		for _, fn := range checker.SpecializedFuncs() {
			body = append(body, fn)
		}
		mod = &ast.Module{Node: mod.Node, Name: mod.Name, Body: body}
	}

	var regionWarnings []string
	for _, stmt := range mod.Body {
		if fn, ok := stmt.(*ast.FuncDecl); ok {
			info := region.Infer(fn.Body)
			regionWarnings = append(regionWarnings, info.Warnings...)
		}
	}

	borrowChecker := borrow.NewChecker(checker.ExprTypes())
	borrowDiags := borrowChecker.CheckModule(mod)
	if borrowDiags.HasErrors() {
		return nil, fmt.Errorf("%s: borrow errors:\n%s", mod.Name, joinDiagnostics(borrowDiags))
	}

	if err := emitUnsafeReport(mod, buildDir); err != nil {
		return nil, err
	}

	var irModule *core.Module
	var manifest *abi.Manifest
	var migration *abi.MigrationLog
	cached := cacheHit(buildDir, mod.Name, combinedHash)

	if cached {
		// A cache hit skips lowering/optimizing/validating entirely — the
		// prior build's ABI manifest on disk is this module's result
		// (driver.py's compile_one returns the cached c_path immediately,
		// without touching irgen/optimize at all).
		var err error
		manifest, err = readAbiManifest(buildDir, mod.Name)
		if err != nil {
			return nil, err
		}
	} else {
		irModule = core.Lower(mod, checker)
		irModule = optimize.Run(irModule)
		manifest = abi.Build(mod.Name, irModule)
		var err error
		migration, err = checkAbiCompat(buildDir, manifest)
		if err != nil {
			return nil, err
		}
		if err := validate.Module(irModule); err != nil {
			return nil, err
		}
		if opts.EmitIR {
			if err := writeIRTrace(buildDir, irModule); err != nil {
				return nil, err
			}
		}
		if err := writeAbiManifest(buildDir, manifest); err != nil {
			return nil, err
		}
		if err := writeBuildCache(buildDir, mod.Name, combinedHash); err != nil {
			return nil, err
		}
	}

	allDiags := append([]daisyerrors.Diagnostic{}, diags.Items()...)
	allDiags = append(allDiags, borrowDiags.Items()...)
	for _, w := range regionWarnings {
		allDiags = append(allDiags, daisyerrors.Diagnostic{Message: w, Warning: true})
	}

	return &ModuleResult{
		Name:        mod.Name,
		IR:          irModule,
		ABIManifest: manifest,
		Migration:   migration,
		Diagnostics: allDiags,
		Cached:      cached,
	}, nil
}

func joinDiagnostics(list *daisyerrors.List) string {
	items := list.Items()
	strs := make([]string, 0, len(items))
	for _, d := range items {
		strs = append(strs, d.String())
	}
	sort.Strings(strs)
	out := ""
	for i, s := range strs {
		if i > 0 {
			out += "\n"
		}
		out += s
	}
	return out
}
