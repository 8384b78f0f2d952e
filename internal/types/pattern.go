package types

import (
	"github.com/daisy-lang/daisy/internal/ast"
	daisyerrors "github.com/daisy-lang/daisy/internal/errors"
)

// checkEnumPattern checks one match arm's pattern against an enum
// scrutinee, rewriting a base-name enum reference to the scrutinee's
// specialized name in place (spec.md §4.D "Match checking").
func (c *Checker) checkEnumPattern(pattern ast.Pattern, expected Type, locals map[string]Type, span ast.Span) map[string]Type {
	if _, ok := pattern.(ast.WildcardPattern); ok {
		return locals
	}
	ep, ok := pattern.(ast.EnumPattern)
	if !ok {
		c.errorf(span, daisyerrors.PAR004, "enum match requires enum case pattern")
		return locals
	}
	expectedBase, _ := splitSpecializedName(expected.Name)
	if ep.EnumName != expected.Name && ep.EnumName == expectedBase {
		ep.EnumName = expected.Name
	}
	if ep.EnumName != expected.Name {
		c.errorf(span, daisyerrors.TYP003, "match enum case must match value type")
		return locals
	}
	cases := c.enumDefs[ep.EnumName]
	if cases == nil {
		c.errorf(span, daisyerrors.TYP003, "unknown enum: %s", ep.EnumName)
		return locals
	}
	found, ok := cases[ep.CaseName]
	if !ok {
		c.errorf(span, daisyerrors.TYP003, "unknown enum case: %s", ep.CaseName)
		return locals
	}
	if found.Payload == nil {
		return locals
	}
	if ep.Payload == nil {
		return locals
	}
	return c.checkPattern(ep.Payload, *found.Payload, locals, span)
}

// checkStructPattern checks one match arm's pattern against a struct
// scrutinee (spec.md §4.D "Match checking").
func (c *Checker) checkStructPattern(pattern ast.Pattern, expected Type, locals map[string]Type, span ast.Span) map[string]Type {
	switch pat := pattern.(type) {
	case ast.WildcardPattern:
		return locals
	case ast.BindPattern:
		locals[pat.Name] = expected
		return locals
	case ast.StructPattern:
		if pat.StructName != expected.Name {
			c.errorf(span, daisyerrors.TYP003, "match struct pattern must match value type")
			return locals
		}
		fields, ok := c.structDefs[pat.StructName]
		if !ok {
			c.errorf(span, daisyerrors.TYP003, "unknown struct: %s", pat.StructName)
			return locals
		}
		if len(pat.Fields) != len(fields) {
			c.errorf(span, daisyerrors.TYP002, "struct pattern field count mismatch: expected %d, got %d", len(fields), len(pat.Fields))
			return locals
		}
		for i, sub := range pat.Fields {
			locals = c.checkPattern(sub, fields[i].Type, locals, span)
		}
		return locals
	default:
		c.errorf(span, daisyerrors.PAR004, "struct match requires struct pattern")
		return locals
	}
}

// checkPattern is the generic recursive-descent entry used for struct
// field sub-patterns and enum payload sub-patterns.
func (c *Checker) checkPattern(pattern ast.Pattern, expected Type, locals map[string]Type, span ast.Span) map[string]Type {
	switch pat := pattern.(type) {
	case ast.WildcardPattern:
		return locals
	case ast.BindPattern:
		locals[pat.Name] = expected
		return locals
	case ast.LiteralPattern:
		caseType := c.checkExpr(pat.Value, locals)
		if !caseType.Equal(expected) {
			c.errorf(span, daisyerrors.TYP001, "match case type must match")
		}
		return locals
	case ast.StructPattern:
		return c.checkStructPattern(pat, expected, locals, span)
	case ast.EnumPattern:
		return c.checkEnumPattern(pat, expected, locals, span)
	default:
		c.errorf(span, daisyerrors.PAR004, "unsupported pattern")
		return locals
	}
}
