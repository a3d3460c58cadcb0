package ast

// Unbounded marks an arity range with no upper limit.
const Unbounded = -1

type arity struct {
	min, max int
}

// The child counts the parser produces for every kind. Loop kinds accept
// fewer children than the parser emits so that partially specified headers
// still lower (a missing condition is an infinite loop).
var arities = map[Kind]arity{
	Identifier:          {0, 0},
	Literal:             {0, 0},
	Operator:            {0, 0},
	Type:                {0, 0},
	Break:               {0, 0},
	Continue:            {0, 0},
	Variable:            {1, 2},
	BlockExpression:     {0, Unbounded},
	TopLevelExpression:  {0, Unbounded},
	IfStatement:         {2, 3},
	WhileLoop:           {0, 2},
	DoWhileLoop:         {0, 2},
	ForLoop:             {0, 4},
	LoopInitializer:     {0, 1},
	LoopIncrement:       {0, 1},
	Condition:           {0, 1},
	Initialization:      {1, 3},
	Assignment:          {2, 2},
	AssignedValue:       {1, 1},
	Return:              {0, 1},
	BinaryExpression:    {3, 3},
	UnaryExpression:     {2, 2},
	FunctionDeclaration: {3, Unbounded},
	Parameter:           {2, 2},
	StructDeclaration:   {1, Unbounded},
	Field:               {2, 2},
	EnumDeclaration:     {1, Unbounded},
	Variant:             {1, 1},
	Case:                {2, 2},
	Default:             {1, 1},
	SwitchStatement:     {2, 2},
}

// Arity returns the inclusive range of child counts allowed for kind. max is
// Unbounded for list-like kinds.
func Arity(kind Kind) (min, max int) {
	a, ok := arities[kind]
	if !ok {
		return 0, Unbounded
	}
	return a.min, a.max
}

// HasValidArity reports whether n's child count is within its kind's range.
func (n *Node) HasValidArity() bool {
	min, max := Arity(n.Kind)
	if len(n.Children) < min {
		return false
	}
	return max == Unbounded || len(n.Children) <= max
}
