package types

import (
	"sort"
	"strings"

	"github.com/daisy-lang/daisy/internal/ast"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
)

// resolveType resolves a surface type reference to a ground Type,
// dispatching to generic specialization when the reference carries type
// arguments (spec.md §4.D "Monomorphization").
func (c *Checker) resolveType(tref *ast.TypeRef) Type {
	if tref == nil {
		return Unit
	}
	if len(tref.Args) > 0 {
		return c.resolveGenericTypeRef(tref)
	}
	name := tref.Name
	if t, ok := c.customTypes[name]; ok {
		return t
	}
	if t, ok := c.resolveExternalType(name); ok {
		return t
	}
	switch name {
	case "int", "정수":
		return Int
	case "bool", "불리언":
		return Bool
	case "string", "문자열":
		return String
	case "buffer", "버퍼":
		return Buffer
	case "view", "뷰":
		return View
	case "tensor", "텐서":
		return Tensor
	case "channel", "채널":
		return Channel
	case "vec", "벡터":
		return Vec
	case "unit", "void", "없음":
		return Unit
	}
	return Type{Name: name, IsCopy: false}
}

// resolveExternalType looks up a bare type name among a dependency
// module's exported types, qualified by which aliases are currently
// imported (spec.md §4.I "first sweep").
func (c *Checker) resolveExternalType(name string) (Type, bool) {
	if len(c.externalTypes) == 0 {
		return Type{}, false
	}
	imported := map[string]bool{}
	for _, mod := range c.importAliases {
		imported[mod] = true
	}
	var matches []Type
	for fullName, t := range c.externalTypes {
		mod, typeName, ok := strings.Cut(fullName, ".")
		if !ok {
			continue
		}
		if typeName == name && imported[mod] {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return Type{}, false
	case 1:
		return matches[0], true
	default:
		c.errorf(ast.Span{}, daisyerrors.NAM001, "ambiguous type name: %s", name)
		return Type{}, false
	}
}

// resolveGenericTypeRef specializes a generic struct/enum reference,
// mangling its resolved type arguments into the cached specialization
// name, substituting the definition's fields/cases, and rewriting tref in
// place so the AST never carries unresolved type arguments downstream
// (spec.md §4.D "Monomorphization").
func (c *Checker) resolveGenericTypeRef(tref *ast.TypeRef) Type {
	name := tref.Name
	args := tref.Args

	if decl, ok := c.genericStructs[name]; ok {
		paramNames := typeParamNames(decl.TypeParams)
		if len(args) != len(paramNames) {
			c.errorf(tref.Node.Span, daisyerrors.TYP007, "generic struct %s expects %d args, got %d", name, len(paramNames), len(args))
			return Type{Name: name}
		}
		argTypes := c.resolveAll(args)
		c.checkBounds(decl.TypeParams, argTypes, tref.Node.Span)
		subst := zip(paramNames, argTypes)
		specName := specializeName(name, argTypes)
		if _, ok := c.customTypes[specName]; !ok {
			isCopy := true
			var fields []Field
			for _, f := range decl.Fields {
				ft := c.resolveTypeRefSubst(f.Type, subst)
				fields = append(fields, Field{Name: f.Name, Type: ft})
				if !ft.IsCopy {
					isCopy = false
				}
			}
			c.structDefs[specName] = fields
			c.customTypes[specName] = Type{Name: specName, IsCopy: isCopy}
		}
		tref.Name = specName
		tref.Args = nil
		return c.customTypes[specName]
	}

	if decl, ok := c.genericEnums[name]; ok {
		paramNames := typeParamNames(decl.TypeParams)
		if len(args) != len(paramNames) {
			c.errorf(tref.Node.Span, daisyerrors.TYP007, "generic enum %s expects %d args, got %d", name, len(paramNames), len(args))
			return Type{Name: name}
		}
		argTypes := c.resolveAll(args)
		c.checkBounds(decl.TypeParams, argTypes, tref.Node.Span)
		subst := zip(paramNames, argTypes)
		specName := specializeName(name, argTypes)
		if _, ok := c.customTypes[specName]; !ok {
			var cases []EnumCase
			for _, cs := range decl.Cases {
				var payload *Type
				if cs.Payload != nil {
					pt := c.resolveTypeRefSubst(cs.Payload, subst)
					payload = &pt
				}
				cases = append(cases, EnumCase{Name: cs.Name, Payload: payload})
			}
			c.registerResolvedEnum(specName, cases)
			c.customTypes[specName] = Type{Name: specName, IsCopy: false}
		}
		tref.Name = specName
		tref.Args = nil
		return c.customTypes[specName]
	}

	c.errorf(tref.Node.Span, daisyerrors.TYP007, "unknown generic type: %s", name)
	return Type{Name: name}
}

func (c *Checker) resolveAll(refs []*ast.TypeRef) []Type {
	out := make([]Type, len(refs))
	for i, r := range refs {
		out[i] = c.resolveType(r)
	}
	return out
}

// resolveTypeRefSubst resolves tref, substituting any bare name found in
// subst before falling back to ordinary resolution — used while
// materializing a generic definition's fields/cases against its
// call-site type arguments.
func (c *Checker) resolveTypeRefSubst(tref *ast.TypeRef, subst map[string]Type) Type {
	if t, ok := subst[tref.Name]; ok && len(tref.Args) == 0 {
		return t
	}
	if len(tref.Args) > 0 {
		return c.resolveGenericTypeRef(tref)
	}
	return c.resolveType(tref)
}

func typeParamNames(params []ast.TypeParam) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

func zip(names []string, types []Type) map[string]Type {
	m := make(map[string]Type, len(names))
	for i, n := range names {
		if i < len(types) {
			m[n] = types[i]
		}
	}
	return m
}

// checkBounds verifies each bound type parameter's actual argument
// implements every trait the parameter requires (spec.md §4.D "Trait
// bounds").
func (c *Checker) checkBounds(params []ast.TypeParam, args []Type, span ast.Span) {
	for i, p := range params {
		if i >= len(args) || len(p.Bounds) == 0 {
			continue
		}
		actual := args[i]
		implemented := c.implTraits[actual.Name]
		for _, bound := range p.Bounds {
			if implemented[bound] {
				continue
			}
			hint := "hint: implement `impl " + bound + " for " + actual.Name + "`"
			if _, known := c.traitDefs[bound]; known {
				if extra := c.traitImplHint(bound); extra != "" {
					hint += "; " + extra
				}
			} else {
				hint += "; trait not found"
			}
			c.errorf(span, daisyerrors.TRA001, "type '%s' does not implement trait '%s' (%s)", actual.Name, bound, hint)
		}
	}
}

// splitSpecializedName splits a mangled "Base__T1__T2" name into its base
// and type-argument name parts (spec.md §4.D "Monomorphization").
func splitSpecializedName(name string) (string, []string) {
	parts := strings.Split(name, "__")
	return parts[0], parts[1:]
}

// specializeName mangles a generic base name with its resolved argument
// types, e.g. specializeName("Box", []Type{Int}) == "Box__int".
func specializeName(base string, args []Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = strings.ReplaceAll(a.Name, ".", "__")
	}
	return base + "__" + strings.Join(parts, "__")
}

// ensureSpecializationFromName materializes a generic struct/enum's
// specialization on demand when the checker first encounters its mangled
// name directly (e.g. written explicitly by the user, or produced by an
// earlier pass) rather than through a TypeRef with explicit args.
func (c *Checker) ensureSpecializationFromName(name string) {
	parts := strings.Split(name, "__")
	if len(parts) < 2 {
		return
	}
	base := parts[0]
	if _, ok := c.genericStructs[base]; !ok {
		if _, ok := c.genericEnums[base]; !ok {
			return
		}
	}
	var args []*ast.TypeRef
	for _, p := range parts[1:] {
		args = append(args, &ast.TypeRef{Name: p})
	}
	c.resolveGenericTypeRef(&ast.TypeRef{Name: base, Args: args})
}

// ensureFunctionSpecializationFromName synthesizes and body-checks a
// specialized FuncDecl the first time its mangled name is called, caching
// the result in funcSigs so later calls are a plain lookup (spec.md §4.D
// "Monomorphization" — generic function calls).
func (c *Checker) ensureFunctionSpecializationFromName(name string) {
	parts := strings.Split(name, "__")
	if len(parts) < 2 {
		return
	}
	base := parts[0]
	typeParts := parts[1:]
	fn, ok := c.genericFuncs[base]
	if !ok {
		if len(parts) < 3 {
			return
		}
		dotted := parts[0] + "." + parts[1]
		fn, ok = c.genericFuncs[dotted]
		if !ok {
			return
		}
		base = dotted
		typeParts = parts[2:]
	}
	paramNames := typeParamNames(fn.TypeParams)
	if len(typeParts) != len(paramNames) {
		c.errorf(fn.Node().Span, daisyerrors.TYP007, "generic function %s expects %d args, got %d", base, len(paramNames), len(typeParts))
		return
	}
	var argTypes []Type
	for _, p := range typeParts {
		argTypes = append(argTypes, c.resolveType(&ast.TypeRef{Name: p}))
	}
	c.checkBounds(fn.TypeParams, argTypes, fn.Node().Span)
	subst := zip(paramNames, argTypes)

	if _, exists := c.funcSigs[name]; exists {
		return
	}

	specParams := make([]ast.Param, len(fn.Params))
	for i, p := range fn.Params {
		specParams[i] = ast.Param{Name: p.Name, Type: c.finalizeTypeRef(c.substituteTypeParams(p.Type, subst))}
	}
	specReturn := c.finalizeTypeRef(c.substituteTypeParams(fn.Return, subst))

	specFn := &ast.FuncDecl{
		N:       fn.N,
		Vis:     fn.Vis,
		Name:    name,
		Params:  specParams,
		Return:  specReturn,
		Body:    fn.Body,
		Mangled: true,
	}
	c.specializedFuncs = append(c.specializedFuncs, specFn)
	c.funcSigs[name] = c.signatureOf(specParams, specReturn)
	c.checkFunction(specFn)
}

// substituteTypeParams rewrites a type reference, replacing any bare name
// bound in subst; non-generic references are returned unchanged.
func (c *Checker) substituteTypeParams(tref *ast.TypeRef, subst map[string]Type) *ast.TypeRef {
	if tref == nil {
		return nil
	}
	if t, ok := subst[tref.Name]; ok {
		return &ast.TypeRef{Name: t.Name}
	}
	if len(tref.Args) == 0 {
		return tref
	}
	args := make([]*ast.TypeRef, len(tref.Args))
	for i, a := range tref.Args {
		args[i] = c.substituteTypeParams(a, subst)
	}
	return &ast.TypeRef{Name: tref.Name, Args: args}
}

// finalizeTypeRef fully resolves a type reference (triggering any nested
// specialization) and rewrites it down to a bare, argument-free name.
func (c *Checker) finalizeTypeRef(tref *ast.TypeRef) *ast.TypeRef {
	resolved := c.resolveType(tref)
	return &ast.TypeRef{Name: resolved.Name}
}

// traitImplHint lists up to three known implementers of a trait, for use
// in a bound-violation diagnostic's suffix.
func (c *Checker) traitImplHint(traitName string) string {
	var withImpl []string
	for typeName, traits := range c.implTraits {
		if traits[traitName] {
			withImpl = append(withImpl, typeName)
		}
	}
	if len(withImpl) == 0 {
		return "no known impls in current modules"
	}
	sort.Strings(withImpl)
	preview := withImpl
	more := ""
	if len(preview) > 3 {
		preview = preview[:3]
		more = "..."
	}
	return "known impls: " + strings.Join(preview, ", ") + more
}
