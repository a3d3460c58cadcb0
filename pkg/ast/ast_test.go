package ast_test

import (
	"testing"

	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum() *ast.Node {
	return ast.New(ast.BinaryExpression,
		ast.NewLiteral("1"),
		ast.NewOperator("+"),
		ast.NewIdentifier("x"),
	)
}

func TestString(t *testing.T) {
	assert.Equal(t, "(BinaryExpression (Literal 1) (Operator +) (Identifier x))", sum().String())

	decl := ast.New(ast.Initialization,
		ast.New(ast.Variable, ast.NewIdentifier("y"), ast.NewType(ast.Double)),
	)
	assert.Equal(t, "(Initialization (Variable (Identifier y) (Type double)))", decl.String())

	var missing *ast.Node
	assert.Equal(t, "<nil>", missing.String())
	assert.Equal(t, "Kind(99)", ast.Kind(99).String())
}

func TestEqualIgnoresPositions(t *testing.T) {
	a := sum().At(token.Pos{Line: 1, Column: 1})
	b := sum().At(token.Pos{Line: 7, Column: 3})
	assert.True(t, a.Equal(b))

	c := sum()
	c.Children[1].Value = "-"
	assert.False(t, a.Equal(c))

	assert.False(t, ast.NewType(ast.Integer).Equal(ast.NewType(ast.Long)))
	assert.False(t, a.Equal(nil))

	var none *ast.Node
	assert.True(t, none.Equal(nil))
}

func TestUnwrap(t *testing.T) {
	inner := ast.NewIdentifier("x")
	wrapped := ast.New(ast.Condition, ast.New(ast.AssignedValue, inner))

	assert.Same(t, inner, wrapped.Unwrap())
	assert.Equal(t, 1, wrapped.Len(), "unwrapping must not detach children")

	empty := ast.New(ast.LoopInitializer)
	assert.Same(t, empty, empty.Unwrap())

	block := ast.New(ast.BlockExpression, inner)
	assert.Same(t, block, block.Unwrap())
}

func TestName(t *testing.T) {
	name, ok := ast.NewIdentifier("x").Name()
	assert.True(t, ok)
	assert.Equal(t, "x", name)

	name, ok = ast.New(ast.Variable, ast.NewIdentifier("y"), ast.NewType(ast.Integer)).Name()
	assert.True(t, ok)
	assert.Equal(t, "y", name)

	_, ok = ast.NewLiteral("1").Name()
	assert.False(t, ok)
}

func TestArity(t *testing.T) {
	assert.True(t, sum().HasValidArity())
	assert.False(t, ast.New(ast.BinaryExpression, ast.NewLiteral("1")).HasValidArity())
	assert.False(t, ast.New(ast.Break, ast.NewLiteral("1")).HasValidArity())
	assert.True(t, ast.New(ast.ForLoop).HasValidArity())
	assert.True(t, ast.New(ast.Condition).HasValidArity())

	min, max := ast.Arity(ast.BlockExpression)
	assert.Equal(t, 0, min)
	assert.Equal(t, ast.Unbounded, max)

	min, max = ast.Arity(ast.IfStatement)
	assert.Equal(t, 2, min)
	assert.Equal(t, 3, max)
}

func TestWalk(t *testing.T) {
	var seen []ast.Kind
	ast.Walk(ast.New(ast.Return, ast.New(ast.AssignedValue, sum())), func(n *ast.Node) bool {
		seen = append(seen, n.Kind)
		return n.Kind != ast.BinaryExpression
	})

	assert.Equal(t, []ast.Kind{ast.Return, ast.AssignedValue, ast.BinaryExpression}, seen)
}

func TestSourceContext(t *testing.T) {
	m := ast.NewModule("main.c", "int a = 1;\nint x = ;\nreturn x;")

	want := "   1 | int a = 1;\n" +
		"   2 | int x = ;\n" +
		"     |         ^\n" +
		"   3 | return x;"
	assert.Equal(t, want, m.SourceContext(token.Pos{Line: 2, Column: 9}))

	assert.Empty(t, m.SourceContext(token.Pos{Line: 9, Column: 1}))

	single := ast.NewModule("main.c", "\tx = ;")
	require.Equal(t, "   1 | \tx = ;\n     | \t   ^", single.SourceContext(token.Pos{Line: 1, Column: 5}))
}
