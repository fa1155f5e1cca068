// Package expr implements the interpreter's expression tree and
// evaluator (spec components B and C): a small closed sum type of node
// kinds produced by parsing an attribute value string, an evaluator that
// walks it against a scope chain, and the reactive Variable native value
// that backs expression-variable change detection.
//
// The original represents expressions as a vcm (variant construction
// model) tree of tagged C structs; here that becomes a closed Go
// interface with one concrete struct per node kind, per the Go
// translation note in the interpreter's design (sum-type interfaces
// instead of vtable+void*).
package expr

import "github.com/agentflare-ai/hvml-go/value"

// Node is the sealed expression-tree interface. The unexported method
// keeps the sum type closed to this package, mirroring the original's
// fixed set of VCM node types.
type Node interface {
	node()
}

// Literal is a constant value embedded directly in the tree (a quoted
// string, a bare number, `true`/`false`/`null`/`undefined`).
type Literal struct {
	Value value.Value
}

func (*Literal) node() {}

// VarRef looks up a name in the scope chain: `$name` for a temporary
// variable, a bare keyword for a symbol variable (`?`, `@`, `!`, `%`,
// `<`), or a qualified `$DOC`/`$SYSTEM`-style document binding.
type VarRef struct {
	Name string
}

func (*VarRef) node() {}

// AccessKind distinguishes member access (`.name`), numeric/string
// indexing (`[expr]`), and method-call-style access (`.name(args)`,
// folded into Call by the parser instead).
type AccessKind int

const (
	AccessMember AccessKind = iota
	AccessIndex
)

// Access dereferences Key (a literal name for AccessMember, an arbitrary
// sub-expression for AccessIndex) off of Base.
type Access struct {
	Base Node
	Key  Node
	Kind AccessKind
}

func (*Access) node() {}

// Call invokes Callee (typically an Access or VarRef resolving to a
// Dynamic or Native getter) with the evaluated Args.
type Call struct {
	Callee Node
	Args   []Node
}

func (*Call) node() {}

// BinaryOp applies a two-operand operator (`+ - * / ~ ^`, comparisons,
// `concat`, logical `&& ||`) to Left and Right.
type BinaryOp struct {
	Op    string
	Left  Node
	Right Node
}

func (*BinaryOp) node() {}

// UnaryOp applies a single-operand operator (`- ! ~`) to Operand.
type UnaryOp struct {
	Op      string
	Operand Node
}

func (*UnaryOp) node() {}

// Template concatenates a sequence of parts (Literal and non-Literal
// nodes interleaved) into a single string, the node kind produced for
// `"prefix {{ $expr }} suffix"` interpolation syntax.
type Template struct {
	Parts []Node
}

func (*Template) node() {}

// Construct builds an array or object literal from evaluated Elements;
// Keys is nil for an array construct and parallel to Elements (one name
// per element) for an object construct.
type Construct struct {
	Keys     []string // nil => array
	Elements []Node
}

func (*Construct) node() {}
