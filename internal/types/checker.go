package types

import (
	"github.com/daisy-lang/daisy/internal/ast"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
)

// Field is a resolved struct field: name plus ground type.
type Field struct {
	Name string
	Type Type
}

// EnumCase is a resolved enum case: name plus an optional payload type (nil
// for a nullary case).
type EnumCase struct {
	Name    string
	Payload *Type
}

// TraitInfo is a registered trait's method signatures. registerTrait leaves
// TypeParams empty: ast.TraitDecl carries no type parameters.
type TraitInfo struct {
	TypeParams []ast.TypeParam
	Methods    map[string]FuncSig
}

// ImplMethod records where a trait/inherent method resolved to: its flat
// synthesized function name and signature (spec.md §4.D "Register types
// and traits").
type ImplMethod struct {
	FlatName string
	Sig      FuncSig
}

// ExternalInputs carries the cross-module facts a dependency module already
// exported, so a downstream module's Checker can resolve names against them
// without re-checking the dependency (spec.md §4.I "first sweep").
type ExternalInputs struct {
	Sigs         map[string]FuncSig
	Types        map[string]Type
	Structs      map[string][]Field
	Enums        map[string][]EnumCase
	GenericFuncs map[string]*ast.FuncDecl
}

// Checker holds all state accumulated while checking one module: the
// registered type/trait/function tables, the per-expression type side
// table, and the accumulated diagnostic list. Errors are held on the
// struct itself (not returned per call) so that checking can continue past
// the first failure, matching spec.md §4.D "Errors" and the teacher's
// struct-held-accumulator idiom (grounded on
// sunholo-data-ailang/internal/types/typechecker.go's `TypeChecker{errors
// []error}` shape, generalized to this project's own diagnostic List).
type Checker struct {
	errs *daisyerrors.List

	exprTypes map[ast.NodeID]Type

	moduleName    string
	importAliases map[string]string
	useModules    []string

	structDefs  map[string][]Field
	enumDefs    map[string]map[string]*EnumCase // name -> ordered by insertion via enumOrder
	enumOrder   map[string][]string
	customTypes map[string]Type

	externalSigs         map[string]FuncSig
	externalTypes        map[string]Type
	externalStructs      map[string][]Field
	externalEnums        map[string][]EnumCase
	externalGenericFuncs map[string]*ast.FuncDecl

	genericStructs map[string]*ast.StructDecl
	genericEnums   map[string]*ast.EnumDecl
	genericFuncs   map[string]*ast.FuncDecl

	specializedFuncs []*ast.FuncDecl
	implFuncs        []*ast.FuncDecl

	funcSigs map[string]FuncSig

	traitDefs   map[string]TraitInfo
	implMethods map[string]map[string]ImplMethod
	implTraits  map[string]map[string]bool

	currentReturn *Type
	loopDepth     int

	builtinSigs map[string]FuncSig
}

// NewChecker builds a Checker, seeding it with whatever a dependency module
// already exported (pass a zero ExternalInputs when checking a module with
// no dependencies).
func NewChecker(ext ExternalInputs) *Checker {
	c := &Checker{
		errs:                 &daisyerrors.List{},
		exprTypes:            map[ast.NodeID]Type{},
		importAliases:        map[string]string{},
		structDefs:           map[string][]Field{},
		enumDefs:             map[string]map[string]*EnumCase{},
		enumOrder:            map[string][]string{},
		customTypes:          map[string]Type{},
		externalSigs:         ext.Sigs,
		externalTypes:        ext.Types,
		externalStructs:      ext.Structs,
		externalEnums:        ext.Enums,
		externalGenericFuncs: ext.GenericFuncs,
		genericStructs:       map[string]*ast.StructDecl{},
		genericEnums:         map[string]*ast.EnumDecl{},
		genericFuncs:         map[string]*ast.FuncDecl{},
		funcSigs:             map[string]FuncSig{},
		traitDefs:            map[string]TraitInfo{},
		implMethods:          map[string]map[string]ImplMethod{},
		implTraits:           map[string]map[string]bool{},
		builtinSigs:          builtinSignatures(),
	}
	if c.externalSigs == nil {
		c.externalSigs = map[string]FuncSig{}
	}
	if c.externalTypes == nil {
		c.externalTypes = map[string]Type{}
	}
	if c.externalStructs == nil {
		c.externalStructs = map[string][]Field{}
	}
	if c.externalEnums == nil {
		c.externalEnums = map[string][]EnumCase{}
	}
	if c.externalGenericFuncs == nil {
		c.externalGenericFuncs = map[string]*ast.FuncDecl{}
	}
	for name, fields := range c.externalStructs {
		c.structDefs[name] = fields
	}
	for name, cases := range c.externalEnums {
		c.registerResolvedEnum(name, cases)
	}
	for name, t := range c.externalTypes {
		c.customTypes[name] = t
	}
	for name, fn := range c.externalGenericFuncs {
		c.genericFuncs[name] = fn
	}
	return c
}

func (c *Checker) registerResolvedEnum(name string, cases []EnumCase) {
	m := map[string]*EnumCase{}
	var order []string
	for i := range cases {
		cc := cases[i]
		m[cc.Name] = &cc
		order = append(order, cc.Name)
	}
	c.enumDefs[name] = m
	c.enumOrder[name] = order
}

// Diagnostics returns the accumulated diagnostic list.
func (c *Checker) Diagnostics() *daisyerrors.List { return c.errs }

// ResolveType exposes resolveType to internal/driver, which needs to
// resolve a bare parameter/field type reference to its ground Type while
// building the cross-module first-sweep signature tables (spec.md §4.I),
// without running a full CheckModule over the declaring module.
func (c *Checker) ResolveType(tref *ast.TypeRef) Type { return c.resolveType(tref) }

// ExprType looks up the resolved type of an expression node, recorded
// during CheckModule (spec.md §4.D "Expression typing").
func (c *Checker) ExprType(id ast.NodeID) (Type, bool) {
	t, ok := c.exprTypes[id]
	return t, ok
}

// ExprTypes returns the full node-id-keyed expression type side table,
// consumed by internal/borrow to decide which values are Copy.
func (c *Checker) ExprTypes() map[ast.NodeID]Type { return c.exprTypes }

// FuncSigs returns the registered non-generic function signature table,
// including synthesized impl methods and specializations — consumed by
// internal/core when lowering calls.
func (c *Checker) FuncSigs() map[string]FuncSig { return c.funcSigs }

// StructDefs and EnumDefs expose the resolved (non-generic, including
// specialized) type tables for IR lowering and cross-module export.
func (c *Checker) StructDefs() map[string][]Field { return c.structDefs }

func (c *Checker) EnumDefs() map[string][]EnumCase {
	out := map[string][]EnumCase{}
	for name, order := range c.enumOrder {
		for _, caseName := range order {
			out[name] = append(out[name], *c.enumDefs[name][caseName])
		}
	}
	return out
}

// CustomTypes exposes the full resolved type table (structs, enums, and
// their specializations), keyed by name.
func (c *Checker) CustomTypes() map[string]Type { return c.customTypes }

// SpecializedFuncs and ImplFuncs return the synthesized FuncDecls produced
// during checking, so the lowering pass can emit code for them even though
// they never appeared literally in the module's source.
func (c *Checker) SpecializedFuncs() []*ast.FuncDecl { return c.specializedFuncs }
func (c *Checker) ImplFuncs() []*ast.FuncDecl        { return c.implFuncs }

// errorf appends an error-level diagnostic at a span.
func (c *Checker) errorf(span ast.Span, code, format string, args ...any) {
	c.errs.Errorf(code, &span, format, args...)
}

func spanOf(n interface{ Node() ast.Node }) ast.Span { return n.Node().Span }

// CheckModule runs the full single-module check pipeline (spec.md §4.D):
// the pre-built Result/Option generics first (skipped for a name the module
// declares as an enum itself), so that type registration can refer to them;
// then imports, then types/traits, then function signatures, then function
// bodies, then the second wave over synthesized impl/specialized functions.
func (c *Checker) CheckModule(m *ast.Module) *daisyerrors.List {
	c.moduleName = m.Name

	enumNames := map[string]bool{}
	for _, stmt := range m.Body {
		if e, ok := stmt.(*ast.EnumDecl); ok {
			enumNames[e.Name] = true
		}
	}
	c.registerBuiltinGenerics(enumNames)

	for _, stmt := range m.Body {
		if imp, ok := stmt.(*ast.ImportDecl); ok {
			c.registerImport(imp)
		}
	}

	for _, stmt := range m.Body {
		switch s := stmt.(type) {
		case *ast.StructDecl:
			c.registerStruct(s)
		case *ast.EnumDecl:
			c.registerEnum(s)
		case *ast.TraitDecl:
			c.registerTrait(s)
		case *ast.ImplDecl:
			c.registerImpl(s)
		}
	}

	for _, stmt := range m.Body {
		switch s := stmt.(type) {
		case *ast.FuncDecl:
			if len(s.TypeParams) > 0 {
				c.genericFuncs[s.Name] = s
				continue
			}
			c.funcSigs[s.Name] = c.signatureOf(s.Params, s.Return)
		case *ast.ExternFuncDecl:
			c.funcSigs[s.Name] = c.signatureOf(s.Params, s.Return)
		}
	}
	for _, fn := range c.implFuncs {
		c.funcSigs[fn.Name] = c.signatureOf(fn.Params, fn.Return)
	}

	for _, stmt := range m.Body {
		switch s := stmt.(type) {
		case *ast.FuncDecl:
			if len(s.TypeParams) > 0 {
				continue
			}
			c.checkFunction(s)
		case *ast.ExternFuncDecl, *ast.TraitDecl, *ast.ImplDecl:
			continue
		default:
			c.checkStmt(stmt, map[string]Type{})
		}
	}
	// implFuncs grows as checkFunction triggers on-demand specialization of
	// impl methods referencing generics; range by index so late appends are
	// still visited.
	for i := 0; i < len(c.implFuncs); i++ {
		c.checkFunction(c.implFuncs[i])
	}

	return c.errs
}

func (c *Checker) signatureOf(params []ast.Param, ret *ast.TypeRef) FuncSig {
	sig := FuncSig{Returns: c.resolveType(ret)}
	for _, p := range params {
		sig.Params = append(sig.Params, c.resolveType(p.Type))
	}
	return sig
}

// registerBuiltinGenerics injects the implicit Result<T,E>/Option<T> enums
// unless the module already defines one of those names (spec.md §4.D
// "Pre-built generics").
func (c *Checker) registerBuiltinGenerics(enumNames map[string]bool) {
	if _, ok := c.genericEnums["Result"]; !ok && !enumNames["Result"] {
		c.genericEnums["Result"] = &ast.EnumDecl{
			Name:       "Result",
			TypeParams: []ast.TypeParam{{Name: "T"}, {Name: "E"}},
			Cases: []ast.EnumCase{
				{Name: "Ok", Payload: &ast.TypeRef{Name: "T"}},
				{Name: "Err", Payload: &ast.TypeRef{Name: "E"}},
			},
		}
	}
	if _, ok := c.genericEnums["Option"]; !ok && !enumNames["Option"] {
		c.genericEnums["Option"] = &ast.EnumDecl{
			Name:       "Option",
			TypeParams: []ast.TypeParam{{Name: "T"}},
			Cases: []ast.EnumCase{
				{Name: "Some", Payload: &ast.TypeRef{Name: "T"}},
				{Name: "None"},
			},
		}
	}
}

func (c *Checker) registerImport(stmt *ast.ImportDecl) {
	module := stmt.Path
	alias := stmt.Alias
	if alias == "" {
		alias = module
	}
	if _, dup := c.importAliases[alias]; dup {
		c.errorf(spanOf(stmt), daisyerrors.NAM001, "duplicate import alias: %s", alias)
	} else {
		c.importAliases[alias] = module
	}
	if stmt.Use {
		c.useModules = append(c.useModules, module)
	}
}

func (c *Checker) checkFunction(fn *ast.FuncDecl) {
	locals := map[string]Type{}
	for _, p := range fn.Params {
		locals[p.Name] = c.resolveType(p.Type)
	}
	ret := c.resolveType(fn.Return)
	c.currentReturn = &ret
	for _, stmt := range fn.Body {
		c.checkStmt(stmt, locals)
	}
	c.currentReturn = nil
}
