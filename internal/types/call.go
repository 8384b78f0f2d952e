package types

import (
	"strings"

	"github.com/daisy-lang/daisy/internal/ast"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
)

// checkTryExpr validates `try E` against spec.md §4.D "`try` desugaring":
// E's type must be a specialized Result<T,E>/Option<T>, and the enclosing
// function's declared return type must be the same family with a matching
// error/none discipline. Its value type is the success payload.
func (c *Checker) checkTryExpr(e *ast.TryExpr, innerType Type) Type {
	base, args := splitSpecializedName(innerType.Name)
	if base != "Result" && base != "Option" {
		c.errorf(spanOf(e), daisyerrors.TYP006, "try requires Result or Option")
		return Unit
	}
	if c.currentReturn == nil {
		c.errorf(spanOf(e), daisyerrors.TYP006, "try used outside of function")
		return Unit
	}
	retBase, retArgs := splitSpecializedName(c.currentReturn.Name)
	if retBase != base {
		c.errorf(spanOf(e), daisyerrors.TYP006, "try requires matching return type")
		return Unit
	}
	switch base {
	case "Result":
		if len(args) < 2 || len(retArgs) < 2 {
			c.errorf(spanOf(e), daisyerrors.TYP006, "Result must have two type arguments")
			return Unit
		}
		if args[1] != retArgs[1] {
			c.errorf(spanOf(e), daisyerrors.TYP006, "try requires matching Result error type")
			return Unit
		}
		return c.resolveType(&ast.TypeRef{Name: args[0]})
	case "Option":
		if len(args) < 1 || len(retArgs) < 1 {
			c.errorf(spanOf(e), daisyerrors.TYP006, "Option must have one type argument")
			return Unit
		}
		return c.resolveType(&ast.TypeRef{Name: args[0]})
	}
	return Unit
}

// resolveCallee rewrites a call's callee in place where call resolution
// demands it — aliasing a dotted prefix to its canonical module name, or
// qualifying a `use`-imported bare name — and returns the resolved string
// (spec.md §4.D "Call resolution").
func (c *Checker) resolveCallee(e *ast.Call) string {
	callee := e.Callee
	if prefix, fnName, ok := strings.Cut(callee, "."); ok {
		if mod, known := c.importAliases[prefix]; known {
			callee = mod + "." + fnName
			e.Callee = callee
		}
		if base, _, has := strings.Cut(fnName, "__"); has {
			if _, isExternGeneric := c.externalGenericFuncs[prefix+"."+base]; isExternGeneric {
				callee = prefix + "__" + fnName
				e.Callee = callee
			}
		}
		return callee
	}
	if _, ok := c.builtinSigs[callee]; ok {
		return callee
	}
	if _, ok := c.funcSigs[callee]; ok {
		return callee
	}
	if _, ok := c.externalSigs[callee]; ok {
		return callee
	}
	var candidates []string
	for _, mod := range c.useModules {
		full := mod + "." + callee
		if _, ok := c.externalSigs[full]; ok {
			candidates = append(candidates, full)
		}
	}
	if len(candidates) == 1 {
		e.Callee = candidates[0]
		return candidates[0]
	}
	if len(candidates) > 1 {
		c.errorf(spanOf(e), daisyerrors.NAM002, "ambiguous call '%s' from use imports", callee)
	}
	if base, _, has := strings.Cut(callee, "__"); has {
		var genCandidates []string
		for _, mod := range c.useModules {
			if _, ok := c.externalGenericFuncs[mod+"."+base]; ok {
				genCandidates = append(genCandidates, mod+"__"+callee)
			}
		}
		if len(genCandidates) == 1 {
			e.Callee = genCandidates[0]
			return genCandidates[0]
		}
		if len(genCandidates) > 1 {
			c.errorf(spanOf(e), daisyerrors.NAM002, "ambiguous generic call '%s' from use imports", callee)
		}
	}
	return callee
}

// checkCall implements spec.md §4.D "Call resolution": receiver-style
// method calls are rewritten to the synthesized flat impl name, struct/enum
// constructor calls are routed through Call rather than a dedicated AST
// node, and everything else is a plain signature lookup (builtin, local,
// or external).
func (c *Checker) checkCall(e *ast.Call, locals map[string]Type) Type {
	callee := c.resolveCallee(e)

	// Explicit generic call syntax `f<T,...>(args)` mangles the callee to
	// its specialized name up front, same as a bare `f__T` written
	// directly (spec.md §4.D "Monomorphization").
	if len(e.TypeArgs) > 0 {
		_, isGenericFunc := c.genericFuncs[callee]
		_, isGenericStruct := c.genericStructs[callee]
		_, isGenericEnum := c.genericEnums[callee]
		switch {
		case isGenericFunc:
			argTypes := c.resolveAll(e.TypeArgs)
			mangled := specializeName(callee, argTypes)
			e.Callee = mangled
			e.TypeArgs = nil
			callee = mangled
		case isGenericStruct || isGenericEnum:
			specType := c.resolveGenericTypeRef(&ast.TypeRef{Name: callee, Args: e.TypeArgs})
			e.Callee = specType.Name
			e.TypeArgs = nil
			callee = specType.Name
		}
	}

	if _, known := c.funcSigs[callee]; !known && strings.Contains(callee, "__") {
		c.ensureFunctionSpecializationFromName(callee)
	}

	if prefix, methodName, ok := strings.Cut(callee, "."); ok {
		if recvType, isLocal := locals[prefix]; isLocal {
			if methods, hasMethods := c.implMethods[recvType.Name]; hasMethods {
				if m, found := methods[methodName]; found {
					e.Callee = m.FlatName
					recv := &ast.Name{N: e.N, Ident: prefix}
					e.Args = append([]ast.Expr{recv}, e.Args...)
					callee = m.FlatName
				}
			}
		}
	}

	if _, known := c.structDefs[callee]; !known && strings.Contains(callee, "__") {
		c.ensureSpecializationFromName(callee)
	}
	if fields, ok := c.structDefs[callee]; ok {
		return c.checkStructConstructor(e, callee, fields, locals)
	}

	if enumName, caseName, ok := strings.Cut(callee, "."); ok {
		if _, known := c.enumDefs[enumName]; !known && strings.Contains(enumName, "__") {
			c.ensureSpecializationFromName(enumName)
		}
		if cases, ok := c.enumDefs[enumName]; ok {
			return c.checkEnumConstructor(e, enumName, caseName, cases, locals)
		}
		if _, ok := c.genericEnums[enumName]; ok {
			return c.specializeGenericEnumCase(enumName, caseName, e, locals)
		}
	}

	if comparisonBuiltins[callee] {
		if len(e.Args) != 2 {
			c.errorf(spanOf(e), daisyerrors.TYP002, "comparison requires two arguments")
			return Bool
		}
		left := c.checkExpr(e.Args[0], locals)
		right := c.checkExpr(e.Args[1], locals)
		if !left.Equal(right) {
			c.errorf(spanOf(e), daisyerrors.TYP004, "comparison operands must match")
		}
		return Bool
	}

	sig, ok := c.lookupSig(callee)
	if !ok {
		for _, arg := range e.Args {
			c.checkExpr(arg, locals)
		}
		c.errorf(spanOf(e), daisyerrors.NAM001, "unknown function: %s", callee)
		return Unit
	}

	if callee == "spawn" {
		return c.checkSpawn(e, locals)
	}

	if len(e.Args) != len(sig.Params) {
		c.errorf(spanOf(e), daisyerrors.TYP002, "argument count mismatch: expected %d, got %d", len(sig.Params), len(e.Args))
	}
	for i, arg := range e.Args {
		argType := c.checkExpr(arg, locals)
		if i < len(sig.Params) && !argType.Equal(sig.Params[i]) {
			c.errorf(spanOf(e), daisyerrors.TYP001, "argument type mismatch at %d: %s != %s", i, argType, sig.Params[i])
		}
	}
	return sig.Returns
}

func (c *Checker) lookupSig(callee string) (FuncSig, bool) {
	if sig, ok := c.builtinSigs[callee]; ok {
		return sig, true
	}
	if sig, ok := c.funcSigs[callee]; ok {
		return sig, true
	}
	if sig, ok := c.externalSigs[callee]; ok {
		return sig, true
	}
	return FuncSig{}, false
}

// checkSpawn validates spawn's variadic (1 or 2 arg) signature rather than
// the fixed zero-arg builtinSigs entry: a function name plus an optional
// channel argument (spec.md §5 "Concurrency & resource model").
func (c *Checker) checkSpawn(e *ast.Call, locals map[string]Type) Type {
	if len(e.Args) != 1 && len(e.Args) != 2 {
		c.errorf(spanOf(e), daisyerrors.TYP002, "spawn requires 1 or 2 arguments")
	}
	if len(e.Args) >= 1 {
		c.checkExpr(e.Args[0], locals)
	}
	if len(e.Args) == 2 {
		argType := c.checkExpr(e.Args[1], locals)
		if !argType.Equal(Channel) {
			c.errorf(spanOf(e), daisyerrors.TYP004, "spawn channel argument must be channel")
		}
	}
	return Unit
}

func (c *Checker) checkStructConstructor(e *ast.Call, name string, fields []Field, locals map[string]Type) Type {
	if len(e.Args) != len(fields) {
		c.errorf(spanOf(e), daisyerrors.TYP002, "struct argument count mismatch: expected %d, got %d", len(fields), len(e.Args))
	}
	for i, arg := range e.Args {
		argType := c.checkExpr(arg, locals)
		if i < len(fields) && !argType.Equal(fields[i].Type) {
			c.errorf(spanOf(e), daisyerrors.TYP001, "struct field type mismatch at %d: %s != %s", i, argType, fields[i].Type)
		}
	}
	if t, ok := c.customTypes[name]; ok {
		return t
	}
	return Type{Name: name}
}

func (c *Checker) checkEnumConstructor(e *ast.Call, enumName, caseName string, cases map[string]*EnumCase, locals map[string]Type) Type {
	cs, ok := cases[caseName]
	if !ok {
		c.errorf(spanOf(e), daisyerrors.TYP003, "unknown enum case: %s", caseName)
		return Unit
	}
	if cs.Payload == nil && len(e.Args) > 0 {
		c.errorf(spanOf(e), daisyerrors.TYP002, "enum case takes no payload")
	}
	if cs.Payload != nil {
		if len(e.Args) != 1 {
			c.errorf(spanOf(e), daisyerrors.TYP002, "enum case requires one payload value")
		} else {
			argType := c.checkExpr(e.Args[0], locals)
			if !argType.Equal(*cs.Payload) {
				c.errorf(spanOf(e), daisyerrors.TYP001, "enum payload type mismatch: %s != %s", argType, *cs.Payload)
			}
		}
	}
	if t, ok := c.customTypes[enumName]; ok {
		return t
	}
	return Type{Name: enumName}
}

// specializeGenericEnumCase resolves `Enum.Case(payload)` against a
// generic enum whose type arguments were not given explicitly, inferring
// them from the payload's type and, failing that, from the enclosing
// function's declared Result/Option return type (spec.md §4.D
// "Monomorphization").
func (c *Checker) specializeGenericEnumCase(enumName, caseName string, e *ast.Call, locals map[string]Type) Type {
	decl := c.genericEnums[enumName]
	var payloadRef *ast.TypeRef
	found := false
	for _, cs := range decl.Cases {
		if cs.Name == caseName {
			payloadRef = cs.Payload
			found = true
			break
		}
	}
	if !found {
		c.errorf(spanOf(e), daisyerrors.TYP003, "unknown enum case: %s", caseName)
		return Unit
	}
	paramNames := typeParamNames(decl.TypeParams)
	mapping := map[string]Type{}
	isParam := map[string]bool{}
	for _, n := range paramNames {
		isParam[n] = true
	}

	if payloadRef == nil {
		if len(e.Args) > 0 {
			c.errorf(spanOf(e), daisyerrors.TYP002, "enum case takes no payload")
		}
	} else {
		if len(e.Args) != 1 {
			c.errorf(spanOf(e), daisyerrors.TYP002, "enum case requires one payload value")
		} else {
			argType := c.checkExpr(e.Args[0], locals)
			if isParam[payloadRef.Name] && len(payloadRef.Args) == 0 {
				mapping[payloadRef.Name] = argType
			} else {
				expected := c.resolveTypeRefSubst(payloadRef, mapping)
				if !argType.Equal(expected) {
					c.errorf(spanOf(e), daisyerrors.TYP001, "enum payload type mismatch: %s != %s", argType, expected)
				}
			}
		}
	}

	if c.currentReturn != nil {
		retBase, retArgs := splitSpecializedName(c.currentReturn.Name)
		if retBase == enumName && len(retArgs) == len(paramNames) {
			for i, name := range paramNames {
				if _, bound := mapping[name]; !bound {
					mapping[name] = c.resolveType(&ast.TypeRef{Name: retArgs[i]})
				}
			}
		}
	}

	if len(mapping) != len(paramNames) {
		var missing []string
		for _, n := range paramNames {
			if _, ok := mapping[n]; !ok {
				missing = append(missing, n)
			}
		}
		if len(missing) > 0 {
			c.errorf(spanOf(e), daisyerrors.TYP007, "cannot infer type parameters: %s", strings.Join(missing, ", "))
		}
	}

	argTypes := make([]Type, len(paramNames))
	for i, n := range paramNames {
		argTypes[i] = mapping[n]
	}
	specRef := &ast.TypeRef{Name: enumName}
	for _, t := range argTypes {
		specRef.Args = append(specRef.Args, &ast.TypeRef{Name: t.Name})
	}
	specType := c.resolveGenericTypeRef(specRef)
	e.Callee = specType.Name + "." + caseName

	if specCases := c.enumDefs[specType.Name]; specCases != nil {
		if specCase, ok := specCases[caseName]; ok && specCase.Payload != nil && len(e.Args) == 1 {
			argType := c.checkExpr(e.Args[0], locals)
			if !argType.Equal(*specCase.Payload) {
				c.errorf(spanOf(e), daisyerrors.TYP001, "enum payload type mismatch: %s != %s", argType, *specCase.Payload)
			}
		}
	}
	return specType
}
