// This file implements the driver's cross-module "first sweep" (spec.md
// §4.I): before any module is type-checked, every module's public
// function/extern signatures, struct/enum type definitions, and generic
// function bodies are collected into flat `<module>.<name>`-keyed tables,
// so each module's own Checker can resolve a dependency's exports without
// re-checking the dependency. Grounded on driver.py's _collect_signatures/
// _collect_generic_funcs/_collect_type_defs and the teacher's
// internal/iface/iface.go Iface{Module,Exports,Constructors,Types} shape,
// generalized from typed exports to this spec's flat tables.
package driver

import (
	"github.com/daisy-lang/daisy/internal/ast"
	"github.com/daisy-lang/daisy/internal/types"
)

// typeDefs holds the three flat, `<module>.<name>`-keyed tables collected
// from every public struct/enum definition across the project.
type typeDefs struct {
	types   map[string]types.Type
	structs map[string][]types.Field
	enums   map[string][]types.EnumCase
}

func qualify(module, name string) string { return module + "." + name }

func collectSignatures(modules map[string]*ast.Module) map[string]types.FuncSig {
	resolver := types.NewChecker(types.ExternalInputs{})
	sigs := map[string]types.FuncSig{}
	for moduleName, mod := range modules {
		for _, stmt := range mod.Body {
			switch d := stmt.(type) {
			case *ast.FuncDecl:
				if d.Vis != ast.VisPublic {
					continue
				}
				sigs[qualify(moduleName, d.Name)] = sigOf(resolver, d.Params, d.Return)
			case *ast.ExternFuncDecl:
				sigs[qualify(moduleName, d.Name)] = sigOf(resolver, d.Params, d.Return)
			}
		}
	}
	return sigs
}

func sigOf(resolver *types.Checker, params []ast.Param, ret *ast.TypeRef) types.FuncSig {
	sig := types.FuncSig{Returns: resolver.ResolveType(ret)}
	for _, p := range params {
		sig.Params = append(sig.Params, resolver.ResolveType(p.Type))
	}
	return sig
}

func collectGenericFuncs(modules map[string]*ast.Module) map[string]*ast.FuncDecl {
	funcs := map[string]*ast.FuncDecl{}
	for moduleName, mod := range modules {
		for _, stmt := range mod.Body {
			if d, ok := stmt.(*ast.FuncDecl); ok && len(d.TypeParams) > 0 {
				funcs[qualify(moduleName, d.Name)] = d
			}
		}
	}
	return funcs
}

func collectTypeDefs(modules map[string]*ast.Module) typeDefs {
	resolver := types.NewChecker(types.ExternalInputs{})
	defs := typeDefs{
		types:   map[string]types.Type{},
		structs: map[string][]types.Field{},
		enums:   map[string][]types.EnumCase{},
	}
	for moduleName, mod := range modules {
		for _, stmt := range mod.Body {
			switch d := stmt.(type) {
			case *ast.StructDecl:
				if d.Vis != ast.VisPublic {
					continue
				}
				var fields []types.Field
				isCopy := true
				for _, f := range d.Fields {
					t := resolver.ResolveType(f.Type)
					fields = append(fields, types.Field{Name: f.Name, Type: t})
					if !t.IsCopy {
						isCopy = false
					}
				}
				key := qualify(moduleName, d.Name)
				defs.types[key] = types.Type{Name: d.Name, IsCopy: isCopy}
				defs.structs[key] = fields
			case *ast.EnumDecl:
				if d.Vis != ast.VisPublic {
					continue
				}
				var cases []types.EnumCase
				for _, c := range d.Cases {
					var payload *types.Type
					if c.Payload != nil {
						t := resolver.ResolveType(c.Payload)
						payload = &t
					}
					cases = append(cases, types.EnumCase{Name: c.Name, Payload: payload})
				}
				key := qualify(moduleName, d.Name)
				defs.types[key] = types.Type{Name: d.Name, IsCopy: false}
				defs.enums[key] = cases
			}
		}
	}
	return defs
}

func hasPrefix(key, moduleName string) bool {
	return len(key) > len(moduleName) && key[:len(moduleName)] == moduleName && key[len(moduleName)] == '.'
}

// externalInputsFor builds the ExternalInputs a module's own Checker needs:
// every first-sweep entry NOT declared by moduleName itself.
func externalInputsFor(moduleName string, sigs map[string]types.FuncSig, defs typeDefs, generics map[string]*ast.FuncDecl) types.ExternalInputs {
	ext := types.ExternalInputs{
		Sigs:         map[string]types.FuncSig{},
		Types:        map[string]types.Type{},
		Structs:      map[string][]types.Field{},
		Enums:        map[string][]types.EnumCase{},
		GenericFuncs: map[string]*ast.FuncDecl{},
	}
	for k, v := range sigs {
		if !hasPrefix(k, moduleName) {
			ext.Sigs[k] = v
		}
	}
	for k, v := range defs.types {
		if !hasPrefix(k, moduleName) {
			ext.Types[k] = v
		}
	}
	for k, v := range defs.structs {
		if !hasPrefix(k, moduleName) {
			ext.Structs[k] = v
		}
	}
	for k, v := range defs.enums {
		if !hasPrefix(k, moduleName) {
			ext.Enums[k] = v
		}
	}
	for k, v := range generics {
		if !hasPrefix(k, moduleName) {
			ext.GenericFuncs[k] = v
		}
	}
	return ext
}
