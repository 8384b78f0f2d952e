package types

// builtinSignatures returns the fixed signature table for the runtime
// built-ins every module can call without an import: string/file/vec
// primitives, the tensor op, and the concurrency primitives. These are
// typing/IR contracts only — internal/core lowers a call to one of these
// names as a plain `call` instruction naming it; no runtime implementation
// lives in this repository (spec.md §5 "Concurrency & resource model").
func builtinSignatures() map[string]FuncSig {
	return map[string]FuncSig{
		"str_len":          {Params: []Type{String}, Returns: Int},
		"str_char_at":      {Params: []Type{String, Int}, Returns: Int},
		"str_find_char":    {Params: []Type{String, Int, Int}, Returns: Int},
		"str_starts_with":  {Params: []Type{String, String}, Returns: Bool},
		"str_to_int":       {Params: []Type{String}, Returns: Int},
		"str_substr":       {Params: []Type{String, Int, Int}, Returns: String},
		"str_trim":         {Params: []Type{String}, Returns: String},
		"str_concat":       {Params: []Type{String, String}, Returns: String},
		"str_release":      {Params: []Type{String}, Returns: Unit},
		"file_read":        {Params: []Type{String}, Returns: String},
		"file_write":       {Params: []Type{String, String}, Returns: Int},
		"module_load":      {Params: []Type{String}, Returns: String},
		"error_last":       {Params: nil, Returns: String},
		"error_clear":      {Params: nil, Returns: Unit},
		"panic":            {Params: []Type{String}, Returns: Unit},
		"vec_new":          {Params: nil, Returns: Vec},
		"vec_push":         {Params: []Type{Vec, Int}, Returns: Unit},
		"vec_get":          {Params: []Type{Vec, Int}, Returns: Int},
		"vec_len":          {Params: []Type{Vec}, Returns: Int},
		"vec_release":      {Params: []Type{Vec}, Returns: Unit},
		"tensor_matmul":    {Params: []Type{Tensor, Tensor}, Returns: Tensor},
		"channel":          {Params: nil, Returns: Channel},
		"send":             {Params: []Type{Channel, Int}, Returns: Unit},
		"recv":             {Params: []Type{Channel}, Returns: Int},
		"channel_close":    {Params: []Type{Channel}, Returns: Unit},
		"spawn":            {Params: nil, Returns: Unit},
	}
}

// comparisonBuiltins names the surface comparison helper callees that
// behave like an operator rather than a signature lookup: both operands
// must agree and the result is always bool.
var comparisonBuiltins = map[string]bool{
	"gt": true, "lt": true, "eq": true, "ge": true, "le": true, "ne": true,
}
