package cgen_test

import (
	"strings"
	"testing"

	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	cgen "github.com/kartiknair/tinyc/pkg/gen/c"
	"github.com/kartiknair/tinyc/pkg/lexer"
	"github.com/kartiknair/tinyc/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.AST {
	t.Helper()
	tokens, err := lexer.Tokenize("test.c", src)
	require.NoError(t, err)
	tree, err := parser.Parse(tokens)
	require.NoError(t, err)
	return tree
}

func emit(t *testing.T, src string) string {
	t.Helper()
	out, err := cgen.Emit(parse(t, src).Root)
	require.NoError(t, err)
	return out
}

func TestFunction(t *testing.T) {
	src := `int main() { int x = 1 + 2 * 3; if (x > 3) { x = x - 1; } else { return 0; } return x; }`

	want := "int main(void) {\n" +
		"\tint x = 1 + (2 * 3);\n" +
		"\tif (x > 3) {\n" +
		"\t\tx = x - 1;\n" +
		"\t} else {\n" +
		"\t\treturn 0;\n" +
		"\t}\n" +
		"\treturn x;\n" +
		"}\n"

	assert.Equal(t, want, emit(t, src))
}

func TestParameters(t *testing.T) {
	assert.Equal(t,
		"double scale(double x, int n) {\n\treturn x * n;\n}\n",
		emit(t, "double scale(double x, int n) { return x * n; }"))

	assert.Equal(t,
		"void nothing(void) {}\n",
		emit(t, "void nothing(void) {}"))
}

func TestLoops(t *testing.T) {
	assert.Equal(t,
		"for (int i = 0; i < 10; i = i + 1) {\n\tcontinue;\n}\n",
		emit(t, "for (int i = 0; i < 10; i = i + 1) { continue; }"))

	assert.Equal(t,
		"for (;;) {\n\tbreak;\n}\n",
		emit(t, "for (;;) { break; }"))

	assert.Equal(t,
		"do {} while (x != 0);\n",
		emit(t, "do { } while (x != 0);"))

	assert.Equal(t,
		"while (true) {\n\tx = x + 1;\n}\n",
		emit(t, "while (true) { x = x + 1; }"))
}

func TestSwitch(t *testing.T) {
	want := "switch (x) {\n" +
		"case 1:\n" +
		"\ty = 1;\n" +
		"\tbreak;\n" +
		"case 'a':\n" +
		"default:\n" +
		"\ty = 3;\n" +
		"}\n"

	assert.Equal(t, want, emit(t, "switch (x) { case 1: y = 1; break; case 'a': default: y = 3; }"))
}

func TestDeclarations(t *testing.T) {
	assert.Equal(t,
		"struct Point {\n\tint x;\n\tdouble y;\n};\n",
		emit(t, "struct Point { x: int, y: double }"))

	assert.Equal(t,
		"enum Color { Color_Red, Color_Green };\n\nc = Color_Green;\n",
		emit(t, "enum Color { Red, Green } c = Color.Green;"))
}

func TestUnaryOperands(t *testing.T) {
	assert.Equal(t, "(-x) + 1;\n", emit(t, "-x + 1;"))
	assert.Equal(t, "-(-x);\n", emit(t, "-(-x);"))
	assert.Equal(t, "!(a == b);\n", emit(t, "!(a == b);"))
}

func TestGenPrelude(t *testing.T) {
	out, err := cgen.Gen(parse(t, "int g = 5;"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "#include <stdbool.h>\n"))
	assert.True(t, strings.HasSuffix(out, "int g = 5;\n"))
}

func TestRoundTrip(t *testing.T) {
	programs := []string{
		`int g = 5;
		double ratio = 2.5;
		struct Point { x: int, y: int }

		int sign(int x) {
			if (x > 0) { return 1; } else if (x < 0) { return -1; } else { return 0; }
		}

		void run(void) {
			char c = 'a';
			char s = "hi\n";
			bool done = false;
			int total = 0;
			for (int i = 0; i < 10; i = i + 2) {
				if (i == 4) { continue; }
				total = total + i * 2 - (total % 3);
			}
			for (i = 10; i >= -5; i = i - 1) {}
			for (;;) { break; }
			while (!done) { done = true; }
			do { total = total - 1; } while (total > 0);
			switch (total) {
				case 0: total = 1;
				case -1: break;
				default: { total = -(-total); }
			}
			return;
		}`,
		"1 + 2 * 3 - 4 / 5 % 6; a < b == c > d; (1 + 2) * 3; ++i; --j;",
	}

	for _, src := range programs {
		tree := parse(t, src)
		out, err := cgen.Emit(tree.Root)
		require.NoError(t, err)

		again := parse(t, out)
		assert.True(t, tree.Root.Equal(again.Root), "round trip changed the tree:\n%s\n%s\n%s", out, tree, again)
	}
}

func TestMalformedTree(t *testing.T) {
	_, err := cgen.Emit(ast.New(ast.BinaryExpression, ast.NewLiteral("1")))
	var devErr *diag.DevError
	require.ErrorAs(t, err, &devErr)
	assert.Contains(t, devErr.Message, "malformed BinaryExpression")

	_, err = cgen.Emit(ast.New(ast.Case, ast.NewLiteral("1"), ast.New(ast.BlockExpression)))
	require.ErrorAs(t, err, &devErr)
	assert.Contains(t, devErr.Message, "unexpected Case node")
}
