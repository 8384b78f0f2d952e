package types

import (
	"github.com/daisy-lang/daisy/internal/ast"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
)

// registerStruct enters a non-generic struct into structDefs/customTypes,
// or parks a generic one in genericStructs for on-demand specialization
// (spec.md §4.D "Register types and traits").
func (c *Checker) registerStruct(stmt *ast.StructDecl) {
	if len(stmt.TypeParams) > 0 {
		if _, dup := c.genericStructs[stmt.Name]; dup {
			c.errorf(spanOf(stmt), daisyerrors.TYP003, "duplicate generic struct: %s", stmt.Name)
			return
		}
		c.genericStructs[stmt.Name] = stmt
		return
	}
	var fields []Field
	isCopy := true
	for _, f := range stmt.Fields {
		t := c.resolveType(f.Type)
		fields = append(fields, Field{Name: f.Name, Type: t})
		if !t.IsCopy {
			isCopy = false
		}
	}
	c.structDefs[stmt.Name] = fields
	c.customTypes[stmt.Name] = Type{Name: stmt.Name, IsCopy: isCopy}
}

// registerEnum mirrors registerStruct for enum defs.
func (c *Checker) registerEnum(stmt *ast.EnumDecl) {
	if len(stmt.TypeParams) > 0 {
		if _, dup := c.genericEnums[stmt.Name]; dup {
			c.errorf(spanOf(stmt), daisyerrors.TYP003, "duplicate generic enum: %s", stmt.Name)
			return
		}
		c.genericEnums[stmt.Name] = stmt
		return
	}
	var cases []EnumCase
	for _, cs := range stmt.Cases {
		var payload *Type
		if cs.Payload != nil {
			t := c.resolveType(cs.Payload)
			payload = &t
		}
		cases = append(cases, EnumCase{Name: cs.Name, Payload: payload})
	}
	c.registerResolvedEnum(stmt.Name, cases)
	c.customTypes[stmt.Name] = Type{Name: stmt.Name, IsCopy: false}
}

// registerTrait records a trait's method signatures, resolving each
// signature's parameter/return types as written (a bare `Self` resolves to
// its own placeholder type here; actual substitution happens per impl in
// registerImpl).
func (c *Checker) registerTrait(stmt *ast.TraitDecl) {
	if _, dup := c.traitDefs[stmt.Name]; dup {
		c.errorf(spanOf(stmt), daisyerrors.TRA001, "duplicate trait: %s", stmt.Name)
		return
	}
	methods := map[string]FuncSig{}
	for _, m := range stmt.Methods {
		var params []Type
		for _, p := range m.Params {
			params = append(params, c.resolveType(p.Type))
		}
		methods[m.Name] = FuncSig{Params: params, Returns: c.resolveType(m.Return)}
	}
	c.traitDefs[stmt.Name] = TraitInfo{Methods: methods}
}

// registerImpl synthesizes a flat top-level FuncDecl for each method in the
// impl block, substituting `Self` for the target type, and records the
// (type, method) -> (flat name, signature) mapping used by call resolution
// to rewrite a receiver-style call into a direct call of the synthesized
// function (spec.md §4.D "Register types and traits").
func (c *Checker) registerImpl(stmt *ast.ImplDecl) {
	typeName := stmt.Target
	if stmt.Trait != "" {
		if c.implTraits[typeName] == nil {
			c.implTraits[typeName] = map[string]bool{}
		}
		c.implTraits[typeName][stmt.Trait] = true
	}
	if c.implMethods[typeName] == nil {
		c.implMethods[typeName] = map[string]ImplMethod{}
	}
	target := &ast.TypeRef{Name: typeName}
	for _, method := range stmt.Methods {
		flatName := implMethodName(typeName, stmt.Trait, method.Name)
		params := make([]ast.Param, len(method.Params))
		for i, p := range method.Params {
			params[i] = ast.Param{Name: p.Name, Type: substituteSelfType(p.Type, target)}
		}
		ret := substituteSelfType(method.Return, target)
		flatFn := &ast.FuncDecl{
			N:      method.N,
			Name:   flatName,
			Params: params,
			Return: ret,
			Body:   method.Body,
		}
		sig := c.signatureOf(flatFn.Params, flatFn.Return)
		c.implMethods[typeName][method.Name] = ImplMethod{FlatName: flatName, Sig: sig}
		c.implFuncs = append(c.implFuncs, flatFn)
	}
}

// implMethodName is the flat synthesized name for a trait or inherent impl
// method: `Type__Trait__method`, or `Type__method` for an inherent impl
// (spec.md §4.D "Register types and traits").
func implMethodName(typeName, traitName, methodName string) string {
	if traitName != "" {
		return typeName + "__" + traitName + "__" + methodName
	}
	return typeName + "__" + methodName
}

// substituteSelfType replaces a bare `Self` reference with the impl's
// target type, recursing into type arguments.
func substituteSelfType(tref *ast.TypeRef, forType *ast.TypeRef) *ast.TypeRef {
	if tref == nil {
		return nil
	}
	if tref.Name == "Self" {
		return &ast.TypeRef{Name: forType.Name, Args: forType.Args}
	}
	if len(tref.Args) == 0 {
		return tref
	}
	args := make([]*ast.TypeRef, len(tref.Args))
	for i, a := range tref.Args {
		args[i] = substituteSelfType(a, forType)
	}
	return &ast.TypeRef{Name: tref.Name, Args: args}
}
