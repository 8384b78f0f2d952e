package core

import (
	"sort"
	"strconv"

	"github.com/daisy-lang/daisy/internal/ast"
	"github.com/daisy-lang/daisy/internal/types"
)

// Lowerer lowers one checked module's AST into the flat IR, following
// original_source/.../irgen.py function-for-function. It consumes the type
// checker's resolved struct/enum tables and per-expression type side table
// rather than re-deriving them.
type Lowerer struct {
	tempIndex   int
	structDefs  map[string][]StructField
	enumDefs    map[string][]EnumCase
	structNames map[string]bool
	exprTypes   map[ast.NodeID]types.Type
}

// Lower builds the IR module for m, including every specialized generic
// function and synthesized impl method the type checker produced alongside
// its ordinary top-level functions.
func Lower(m *ast.Module, tc *types.Checker) *Module {
	l := &Lowerer{
		structDefs:  map[string][]StructField{},
		enumDefs:    map[string][]EnumCase{},
		structNames: map[string]bool{},
		exprTypes:   tc.ExprTypes(),
	}

	var structNameList []string
	for name := range tc.StructDefs() {
		structNameList = append(structNameList, name)
	}
	sort.Strings(structNameList)
	var structs []Struct
	for _, name := range structNameList {
		var fields []StructField
		for _, f := range tc.StructDefs()[name] {
			fields = append(fields, StructField{Name: f.Name, TypeName: f.Type.Name})
		}
		structs = append(structs, Struct{Name: name, Fields: fields})
		l.structDefs[name] = fields
		l.structNames[name] = true
	}

	var enumNameList []string
	for name := range tc.EnumDefs() {
		enumNameList = append(enumNameList, name)
	}
	sort.Strings(enumNameList)
	var enums []Enum
	for _, name := range enumNameList {
		var cases []EnumCase
		for _, c := range tc.EnumDefs()[name] {
			payload := ""
			if c.Payload != nil {
				payload = c.Payload.Name
			}
			cases = append(cases, EnumCase{Name: c.Name, Payload: payload})
		}
		enums = append(enums, Enum{Name: name, Cases: cases})
		l.enumDefs[name] = cases
	}

	var functions []Function
	var externs []Extern
	for _, stmt := range m.Body {
		switch s := stmt.(type) {
		case *ast.FuncDecl:
			if len(s.TypeParams) > 0 {
				continue
			}
			functions = append(functions, l.lowerFunction(s))
		case *ast.ExternFuncDecl:
			var params []Param
			for _, p := range s.Params {
				params = append(params, Param{Name: p.Name, TypeName: p.Type.Name})
			}
			externs = append(externs, Extern{Name: s.Name, Params: params, ReturnType: s.Return.Name})
		}
	}
	for _, fn := range tc.SpecializedFuncs() {
		functions = append(functions, l.lowerFunction(fn))
	}
	for _, fn := range tc.ImplFuncs() {
		functions = append(functions, l.lowerFunction(fn))
	}

	return &Module{Name: m.Name, Functions: functions, Externs: externs, Structs: structs, Enums: enums}
}

func (l *Lowerer) lowerFunction(fn *ast.FuncDecl) Function {
	var params []Param
	for _, p := range fn.Params {
		params = append(params, Param{Name: p.Name, TypeName: p.Type.Name})
	}
	block := &Block{Label: "entry"}
	for _, stmt := range fn.Body {
		l.lowerStmt(stmt, block)
	}
	hasRet := false
	for _, instr := range block.Instructions {
		if instr.Op == "ret" {
			hasRet = true
			break
		}
	}
	if !hasRet {
		block.Instructions = append(block.Instructions, Instr{Op: "ret", Args: []string{"0"}})
	}
	return Function{Name: fn.Name, Params: params, ReturnType: fn.Return.Name, Blocks: []Block{*block}}
}

func (l *Lowerer) emit(block *Block, instr Instr) {
	block.Instructions = append(block.Instructions, instr)
}

func (l *Lowerer) lowerStmt(stmt ast.Stmt, block *Block) {
	switch s := stmt.(type) {
	case *ast.Assign:
		value := l.lowerExpr(s.Value, block)
		switch target := s.Target.(type) {
		case *ast.Name:
			if target.Ident != "_" {
				l.emit(block, Instr{Op: "assign", Args: []string{value}, Result: target.Ident})
			}
		case *ast.MemberAccess:
			base := l.lowerExpr(target.Value, block)
			l.emit(block, Instr{Op: "struct_set", Args: []string{base, target.Field, value}})
		}

	case *ast.AddAssign:
		target := l.lowerExpr(s.Target, block)
		value := l.lowerExpr(s.Value, block)
		temp := l.temp()
		l.emit(block, Instr{Op: "add", Args: []string{target, value}, Result: temp, TypeName: "int"})
		if name, ok := s.Target.(*ast.Name); ok {
			l.emit(block, Instr{Op: "assign", Args: []string{temp}, Result: name.Ident})
		}

	case *ast.Print:
		value := l.lowerExpr(s.Value, block)
		l.emit(block, Instr{Op: "print", Args: []string{value}})

	case *ast.Return:
		if s.Value != nil {
			value := l.lowerExpr(s.Value, block)
			l.emit(block, Instr{Op: "ret", Args: []string{value}})
		} else {
			l.emit(block, Instr{Op: "ret", Args: []string{"0"}})
		}

	case *ast.BufferCreate:
		size := l.lowerExpr(s.Size, block)
		l.emit(block, Instr{Op: "buf_create", Args: []string{size}, Result: s.Name, TypeName: "buffer"})

	case *ast.BorrowSlice:
		buf := l.lowerExpr(s.Buffer, block)
		start := l.lowerExpr(s.Start, block)
		end := l.lowerExpr(s.End, block)
		mut := "0"
		if s.Mutable {
			mut = "1"
		}
		l.emit(block, Instr{Op: "buf_borrow", Args: []string{buf, start, end, mut}, Result: s.Name, TypeName: "view"})

	case *ast.If:
		cond := l.lowerExpr(s.Condition, block)
		l.emit(block, Instr{Op: "if_begin", Args: []string{cond}})
		for _, inner := range s.Body {
			l.lowerStmt(inner, block)
		}
		l.lowerElifsAndElse(s.Elifs, s.Else, block)
		l.emit(block, Instr{Op: "if_end"})

	case *ast.Repeat:
		count := l.lowerExpr(s.Count, block)
		loopVar := l.temp()
		l.emit(block, Instr{Op: "const", Args: []string{"0"}, Result: loopVar, TypeName: "int"})
		l.emit(block, Instr{Op: "loop_begin", Args: []string{loopVar, count}})
		for _, inner := range s.Body {
			l.lowerStmt(inner, block)
		}
		l.emit(block, Instr{Op: "inc", Args: []string{loopVar}})
		l.emit(block, Instr{Op: "loop_end"})

	case *ast.While:
		condVar := l.lowerExpr(s.Condition, block)
		l.emit(block, Instr{Op: "while_begin", Args: []string{condVar}})
		for _, inner := range s.Body {
			l.lowerStmt(inner, block)
		}
		nextCond := l.lowerExpr(s.Condition, block)
		l.emit(block, Instr{Op: "assign", Args: []string{nextCond}, Result: condVar})
		l.emit(block, Instr{Op: "while_end"})

	case *ast.Match:
		l.lowerMatch(s, block)

	case *ast.UnsafeBlock:
		for _, inner := range s.Body {
			l.lowerStmt(inner, block)
		}

	case *ast.Move:
		src := l.lowerExpr(s.Src, block)
		l.emit(block, Instr{Op: "assign", Args: []string{src}, Result: s.Dst})

	case *ast.Release:
		target := l.lowerExpr(s.Target, block)
		l.emit(block, Instr{Op: "release", Args: []string{target}})

	case *ast.Break:
		l.emit(block, Instr{Op: "break"})

	case *ast.Continue:
		l.emit(block, Instr{Op: "continue"})
	}
}

// lowerElifsAndElse chains a surface `elif`/`else` ladder into nested
// if_begin/if_else/if_end markers, since the flat IR has no native elif.
func (l *Lowerer) lowerElifsAndElse(elifs []ast.ElifClause, elseBody []ast.Stmt, block *Block) {
	if len(elifs) == 0 {
		if elseBody != nil {
			l.emit(block, Instr{Op: "if_else"})
			for _, inner := range elseBody {
				l.lowerStmt(inner, block)
			}
		}
		return
	}
	l.emit(block, Instr{Op: "if_else"})
	head := elifs[0]
	cond := l.lowerExpr(head.Condition, block)
	l.emit(block, Instr{Op: "if_begin", Args: []string{cond}})
	for _, inner := range head.Body {
		l.lowerStmt(inner, block)
	}
	l.lowerElifsAndElse(elifs[1:], elseBody, block)
	l.emit(block, Instr{Op: "if_end"})
}

func (l *Lowerer) lowerMatch(stmt *ast.Match, block *Block) {
	matchVal := l.lowerExpr(stmt.Value, block)
	enumName := l.matchEnumName(stmt)
	var matchTag string
	if enumName != "" {
		matchTag = l.temp()
		l.emit(block, Instr{Op: "enum_tag", Args: []string{matchVal}, Result: matchTag})
	}
	matched := l.temp()
	l.emit(block, Instr{Op: "const", Args: []string{"0"}, Result: matched, TypeName: "int"})
	for _, arm := range stmt.Cases {
		matchedCond := l.temp()
		l.emit(block, Instr{Op: "call", Args: []string{"eq", matched, "0"}, Result: matchedCond})
		l.emit(block, Instr{Op: "if_begin", Args: []string{matchedCond}})
		l.lowerMatchCase(arm, matchVal, enumName, matchTag, matched, block)
		l.emit(block, Instr{Op: "if_end"})
	}
	if stmt.Else != nil {
		cond := l.temp()
		l.emit(block, Instr{Op: "call", Args: []string{"eq", matched, "0"}, Result: cond})
		l.emit(block, Instr{Op: "if_begin", Args: []string{cond}})
		for _, inner := range stmt.Else {
			l.lowerStmt(inner, block)
		}
		l.emit(block, Instr{Op: "if_end"})
	}
}

// matchEnumName reports the single enum every non-wildcard arm pattern
// names, or "" if the arms disagree or are not enum patterns at all.
func (l *Lowerer) matchEnumName(stmt *ast.Match) string {
	enumName := ""
	for _, arm := range stmt.Cases {
		if _, ok := arm.Pattern.(ast.WildcardPattern); ok {
			continue
		}
		ep, ok := arm.Pattern.(ast.EnumPattern)
		if !ok {
			return ""
		}
		if _, known := l.enumDefs[ep.EnumName]; !known {
			return ""
		}
		if enumName == "" {
			enumName = ep.EnumName
		} else if enumName != ep.EnumName {
			return ""
		}
	}
	return enumName
}

func (l *Lowerer) enumCaseIndex(enumName, caseName string) int {
	for idx, c := range l.enumDefs[enumName] {
		if c.Name == caseName {
			return idx
		}
	}
	return -1
}

func (l *Lowerer) emitIf(block *Block, cond string, emitBody func()) {
	l.emit(block, Instr{Op: "if_begin", Args: []string{cond}})
	emitBody()
	l.emit(block, Instr{Op: "if_end"})
}

func (l *Lowerer) emitEnumPayload(block *Block, valueVar, caseName, target string) {
	l.emit(block, Instr{Op: "enum_payload", Args: []string{valueVar, caseName}, Result: target})
}

func (l *Lowerer) emitGuardedBody(arm ast.MatchCase, matched string, block *Block) {
	emitBody := func() {
		for _, inner := range arm.Body {
			l.lowerStmt(inner, block)
		}
		l.emit(block, Instr{Op: "assign", Args: []string{"1"}, Result: matched})
	}
	if arm.Guard != nil {
		guardVal := l.lowerExpr(arm.Guard, block)
		l.emitIf(block, guardVal, emitBody)
		return
	}
	emitBody()
}

func (l *Lowerer) emitPatternMatch(pattern ast.Pattern, valueVar string, emitBody func(), block *Block) {
	switch pat := pattern.(type) {
	case ast.WildcardPattern:
		emitBody()

	case ast.BindPattern:
		l.emit(block, Instr{Op: "assign", Args: []string{valueVar}, Result: pat.Name})
		emitBody()

	case ast.LiteralPattern:
		litVal := l.lowerExpr(pat.Value, block)
		cond := l.temp()
		l.emit(block, Instr{Op: "call", Args: []string{"eq", valueVar, litVal}, Result: cond})
		l.emitIf(block, cond, emitBody)

	case ast.StructPattern:
		fields := l.structDefs[pat.StructName]
		if len(fields) == 0 || len(fields) != len(pat.Fields) {
			return
		}
		var emitField func(idx int)
		emitField = func(idx int) {
			if idx >= len(pat.Fields) {
				emitBody()
				return
			}
			field := fields[idx]
			fieldVal := l.temp()
			l.emit(block, Instr{Op: "struct_get", Args: []string{valueVar, field.Name}, Result: fieldVal})
			l.emitPatternMatch(pat.Fields[idx], fieldVal, func() { emitField(idx + 1) }, block)
		}
		emitField(0)

	case ast.EnumPattern:
		tag := l.temp()
		l.emit(block, Instr{Op: "enum_tag", Args: []string{valueVar}, Result: tag})
		caseIndex := l.enumCaseIndex(pat.EnumName, pat.CaseName)
		cond := l.temp()
		l.emit(block, Instr{Op: "call", Args: []string{"eq", tag, strconv.Itoa(caseIndex)}, Result: cond})
		l.emitIf(block, cond, func() {
			if pat.Payload == nil {
				emitBody()
				return
			}
			payloadTmp := l.temp()
			l.emitEnumPayload(block, valueVar, pat.CaseName, payloadTmp)
			l.emitPatternMatch(pat.Payload, payloadTmp, emitBody, block)
		})
	}
}

func (l *Lowerer) lowerMatchCase(arm ast.MatchCase, matchVal, enumName, matchTag, matched string, block *Block) {
	if enumName != "" {
		if _, ok := arm.Pattern.(ast.WildcardPattern); ok {
			l.emitGuardedBody(arm, matched, block)
			return
		}
		if ep, ok := arm.Pattern.(ast.EnumPattern); ok && matchTag != "" {
			caseIndex := l.enumCaseIndex(enumName, ep.CaseName)
			cond := l.temp()
			l.emit(block, Instr{Op: "call", Args: []string{"eq", matchTag, strconv.Itoa(caseIndex)}, Result: cond})
			l.emitIf(block, cond, func() {
				if ep.Payload == nil {
					l.emitGuardedBody(arm, matched, block)
					return
				}
				payloadTmp := l.temp()
				l.emitEnumPayload(block, matchVal, ep.CaseName, payloadTmp)
				l.emitPatternMatch(ep.Payload, payloadTmp, func() { l.emitGuardedBody(arm, matched, block) }, block)
			})
			return
		}
		return
	}
	switch pat := arm.Pattern.(type) {
	case ast.WildcardPattern:
		l.emitGuardedBody(arm, matched, block)
	case ast.LiteralPattern:
		caseVal := l.lowerExpr(pat.Value, block)
		cond := l.temp()
		l.emit(block, Instr{Op: "call", Args: []string{"eq", matchVal, caseVal}, Result: cond})
		l.emitIf(block, cond, func() { l.emitGuardedBody(arm, matched, block) })
	case ast.StructPattern, ast.BindPattern:
		l.emitPatternMatch(pat, matchVal, func() { l.emitGuardedBody(arm, matched, block) }, block)
	}
}

func (l *Lowerer) lowerExpr(expr ast.Expr, block *Block) string {
	switch e := expr.(type) {
	case *ast.IntLit:
		temp := l.temp()
		l.emit(block, Instr{Op: "const", Args: []string{strconv.FormatInt(e.Value, 10)}, Result: temp, TypeName: "int"})
		return temp

	case *ast.StringLit:
		temp := l.temp()
		l.emit(block, Instr{Op: "const_str", Args: []string{e.Value}, Result: temp, TypeName: "string"})
		return temp

	case *ast.BoolLit:
		temp := l.temp()
		val := "0"
		if e.Value {
			val = "1"
		}
		l.emit(block, Instr{Op: "const", Args: []string{val}, Result: temp, TypeName: "bool"})
		return temp

	case *ast.Name:
		return e.Ident

	case *ast.Call:
		var args []string
		for _, a := range e.Args {
			args = append(args, l.lowerExpr(a, block))
		}
		temp := l.temp()
		if l.structNames[e.Callee] {
			l.emit(block, Instr{Op: "struct_new", Args: append([]string{e.Callee}, args...), Result: temp, TypeName: e.Callee})
			return temp
		}
		if enumName, caseName, ok := splitDotted(e.Callee); ok {
			if _, known := l.enumDefs[enumName]; known {
				l.emit(block, Instr{Op: "enum_make", Args: append([]string{enumName, caseName}, args...), Result: temp, TypeName: enumName})
				return temp
			}
		}
		l.emit(block, Instr{Op: "call", Args: append([]string{e.Callee}, args...), Result: temp})
		return temp

	case *ast.MemberAccess:
		base := l.lowerExpr(e.Value, block)
		temp := l.temp()
		l.emit(block, Instr{Op: "struct_get", Args: []string{base, e.Field}, Result: temp})
		return temp

	case *ast.BinOp:
		left := l.lowerExpr(e.Left, block)
		right := l.lowerExpr(e.Right, block)
		temp := l.temp()
		if op, ok := arithOp[e.Op]; ok {
			l.emit(block, Instr{Op: op, Args: []string{left, right}, Result: temp, TypeName: "int"})
			return temp
		}
		cmp, ok := cmpOp[e.Op]
		if !ok {
			l.emit(block, Instr{Op: "const", Args: []string{"0"}, Result: temp, TypeName: "int"})
			return temp
		}
		l.emit(block, Instr{Op: "call", Args: []string{cmp, left, right}, Result: temp, TypeName: "bool"})
		return temp

	case *ast.UnaryOp:
		value := l.lowerExpr(e.Operand, block)
		if e.Op == "+" {
			return value
		}
		temp := l.temp()
		l.emit(block, Instr{Op: "neg", Args: []string{value}, Result: temp, TypeName: "int"})
		return temp

	case *ast.LogicalOp:
		left := l.lowerExpr(e.Left, block)
		result := l.temp()
		if e.Op == "and" {
			l.emit(block, Instr{Op: "const", Args: []string{"0"}, Result: result, TypeName: "bool"})
			l.emitIf(block, left, func() {
				right := l.lowerExpr(e.Right, block)
				l.emit(block, Instr{Op: "assign", Args: []string{right}, Result: result})
			})
			return result
		}
		l.emit(block, Instr{Op: "assign", Args: []string{left}, Result: result})
		cond := l.temp()
		l.emit(block, Instr{Op: "call", Args: []string{"eq", left, "0"}, Result: cond})
		l.emitIf(block, cond, func() {
			right := l.lowerExpr(e.Right, block)
			l.emit(block, Instr{Op: "assign", Args: []string{right}, Result: result})
		})
		return result

	case *ast.TryExpr:
		value := l.lowerExpr(e.Target, block)
		typeName := ""
		if t, ok := l.exprTypes[e.Target.Node().ID]; ok {
			typeName = t.Name
		}
		base, _ := splitBase(typeName)
		if _, isEnum := l.enumDefs[typeName]; isEnum && (base == "Result" || base == "Option") {
			errCase, okCase := "Err", "Ok"
			if base == "Option" {
				errCase, okCase = "None", "Some"
			}
			tag := l.temp()
			l.emit(block, Instr{Op: "enum_tag", Args: []string{value}, Result: tag})
			errIndex := l.enumCaseIndex(typeName, errCase)
			cond := l.temp()
			l.emit(block, Instr{Op: "call", Args: []string{"eq", tag, strconv.Itoa(errIndex)}, Result: cond})
			l.emitIf(block, cond, func() {
				l.emit(block, Instr{Op: "ret", Args: []string{value}})
			})
			okVal := l.temp()
			l.emitEnumPayload(block, value, okCase, okVal)
			return okVal
		}
		return value

	case *ast.BorrowExpr:
		value := l.lowerExpr(e.Target, block)
		temp := l.temp()
		mut := "0"
		if e.Mutable {
			mut = "1"
		}
		l.emit(block, Instr{Op: "borrow", Args: []string{value, mut}, Result: temp, TypeName: "view"})
		return temp

	case *ast.CopyExpr:
		value := l.lowerExpr(e.Target, block)
		temp := l.temp()
		l.emit(block, Instr{Op: "assign", Args: []string{value}, Result: temp})
		return temp
	}
	temp := l.temp()
	l.emit(block, Instr{Op: "const", Args: []string{"0"}, Result: temp, TypeName: "int"})
	return temp
}

var arithOp = map[string]string{"+": "add", "-": "sub", "*": "mul", "/": "div"}

var cmpOp = map[string]string{
	"==": "eq", "!=": "ne", "<": "lt", ">": "gt", "<=": "le", ">=": "ge",
}

func splitDotted(name string) (string, string, bool) {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i], name[i+1:], true
		}
	}
	return "", "", false
}

func splitBase(name string) (string, string) {
	for i := 0; i+1 < len(name); i++ {
		if name[i] == '_' && name[i+1] == '_' {
			return name[:i], name[i+2:]
		}
	}
	return name, ""
}

func (l *Lowerer) temp() string {
	l.tempIndex++
	return "t_" + strconv.Itoa(l.tempIndex)
}
