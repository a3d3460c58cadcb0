package ast

import (
	"fmt"
	"strings"

	"github.com/kartiknair/tinyc/pkg/token"
)

type Kind int

const (
	Identifier Kind = iota
	Literal
	Variable
	Type
	BlockExpression
	IfStatement
	WhileLoop
	DoWhileLoop
	ForLoop
	LoopInitializer
	LoopIncrement
	Condition
	Initialization
	Assignment
	AssignedValue
	Break
	Continue
	Return
	BinaryExpression
	UnaryExpression
	Operator
	FunctionDeclaration
	Parameter
	StructDeclaration
	Field
	EnumDeclaration
	Variant
	Case
	Default
	SwitchStatement
	TopLevelExpression
)

var kindNames = [...]string{
	Identifier:          "Identifier",
	Literal:             "Literal",
	Variable:            "Variable",
	Type:                "Type",
	BlockExpression:     "BlockExpression",
	IfStatement:         "IfStatement",
	WhileLoop:           "WhileLoop",
	DoWhileLoop:         "DoWhileLoop",
	ForLoop:             "ForLoop",
	LoopInitializer:     "LoopInitializer",
	LoopIncrement:       "LoopIncrement",
	Condition:           "Condition",
	Initialization:      "Initialization",
	Assignment:          "Assignment",
	AssignedValue:       "AssignedValue",
	Break:               "Break",
	Continue:            "Continue",
	Return:              "Return",
	BinaryExpression:    "BinaryExpression",
	UnaryExpression:     "UnaryExpression",
	Operator:            "Operator",
	FunctionDeclaration: "FunctionDeclaration",
	Parameter:           "Parameter",
	StructDeclaration:   "StructDeclaration",
	Field:               "Field",
	EnumDeclaration:     "EnumDeclaration",
	Variant:             "Variant",
	Case:                "Case",
	Default:             "Default",
	SwitchStatement:     "SwitchStatement",
	TopLevelExpression:  "TopLevelExpression",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsWrapper reports whether nodes of this kind only exist to label a single
// child (`AssignedValue`, `Condition`, loop header clauses).
func (k Kind) IsWrapper() bool {
	switch k {
	case AssignedValue, Condition, LoopInitializer, LoopIncrement:
		return true
	}
	return false
}

type DataType int

const (
	Integer DataType = iota
	Boolean
	Double
	Float
	Char
	Void
	Sign
	Unsign
	Long
)

var dataTypeNames = [...]string{
	Integer: "int",
	Boolean: "bool",
	Double:  "double",
	Float:   "float",
	Char:    "char",
	Void:    "void",
	Sign:    "signed",
	Unsign:  "unsigned",
	Long:    "long",
}

func (d DataType) String() string {
	if int(d) >= 0 && int(d) < len(dataTypeNames) {
		return dataTypeNames[d]
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// Node is a single AST node. A node exclusively owns its children; the tree
// never shares a node between two parents.
//
// Value carries the scalar payload of Identifier, Literal and Operator nodes.
// DataType is only meaningful on Type nodes.
type Node struct {
	Kind     Kind
	Value    string
	DataType DataType
	Pos      token.Pos
	Children []*Node
}

func New(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

func NewIdentifier(name string) *Node {
	return &Node{Kind: Identifier, Value: name}
}

func NewLiteral(text string) *Node {
	return &Node{Kind: Literal, Value: text}
}

func NewOperator(op string) *Node {
	return &Node{Kind: Operator, Value: op}
}

func NewType(dt DataType) *Node {
	return &Node{Kind: Type, DataType: dt}
}

// At records the source position of the token that introduced the node.
func (n *Node) At(pos token.Pos) *Node {
	n.Pos = pos
	return n
}

func (n *Node) Add(children ...*Node) {
	n.Children = append(n.Children, children...)
}

func (n *Node) Len() int {
	return len(n.Children)
}

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Unwrap peels wrapper nodes (AssignedValue, Condition, LoopInitializer,
// LoopIncrement) that hold exactly one child and returns the innermost node.
// It borrows; the tree is left untouched.
func (n *Node) Unwrap() *Node {
	for n != nil && n.Kind.IsWrapper() && len(n.Children) == 1 {
		n = n.Children[0]
	}
	return n
}

// Name resolves the name an Identifier or a Variable node refers to.
func (n *Node) Name() (string, bool) {
	switch n.Kind {
	case Identifier:
		return n.Value, true
	case Variable:
		if id := n.Child(0); id != nil && id.Kind == Identifier {
			return id.Value, true
		}
	}
	return "", false
}

// IsBooleanLiteral reports whether n is the literal `true` or `false`.
func (n *Node) IsBooleanLiteral() bool {
	return n != nil && n.Kind == Literal && (n.Value == "true" || n.Value == "false")
}

// Equal compares two trees structurally, ignoring positions.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind || n.Value != o.Value || len(n.Children) != len(o.Children) {
		return false
	}
	if n.Kind == Type && n.DataType != o.DataType {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// String renders the tree as an s-expression, e.g.
//
//	(BinaryExpression (Literal 1) (Operator +) (Literal 2))
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteByte('(')
	b.WriteString(n.Kind.String())
	switch n.Kind {
	case Identifier, Literal, Operator:
		b.WriteByte(' ')
		b.WriteString(n.Value)
	case Type:
		b.WriteByte(' ')
		b.WriteString(n.DataType.String())
	}
	for _, c := range n.Children {
		b.WriteByte(' ')
		c.write(b)
	}
	b.WriteByte(')')
}

// AST owns exactly one TopLevelExpression root whose children are the
// top-level declarations and statements in source order.
type AST struct {
	Root *Node
}

func NewAST(root *Node) *AST {
	return &AST{Root: root}
}

func (a *AST) String() string {
	return a.Root.String()
}

// Walk visits n and all of its descendants depth first, parents before
// children. Returning false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
