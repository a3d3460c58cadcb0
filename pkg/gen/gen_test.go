package gen_test

import (
	"testing"

	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/kartiknair/tinyc/pkg/gen"
	llvmgen "github.com/kartiknair/tinyc/pkg/gen/llvm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const program = `int main() {
	int total = 0;
	for (int i = 0; i < 3; i = i + 1) {
		total = total + i;
	}
	return total;
}
`

func TestLLVM(t *testing.T) {
	m := ast.NewModule("main.c", program)
	ir, err := gen.LLVM(m, llvmgen.Options{})
	require.NoError(t, err)

	assert.Contains(t, ir, `source_filename = "main.c"`)
	assert.Contains(t, ir, "define i64 @main()")
	assert.Contains(t, ir, "for_cond")
	require.NotNil(t, m.AST)
	assert.NotEmpty(t, m.Tokens)
}

func TestC(t *testing.T) {
	m := ast.NewModule("main.c", program)
	c, err := gen.C(m)
	require.NoError(t, err)

	assert.Contains(t, c, "#include <stdbool.h>")
	assert.Contains(t, c, "for (int i = 0; i < 3; i = i + 1) {")
}

func TestParseKeepsExistingTree(t *testing.T) {
	m := ast.NewModule("main.c", "this source is never lexed @")
	m.AST = ast.NewAST(ast.New(ast.TopLevelExpression))

	require.NoError(t, gen.Parse(m))
	assert.Nil(t, m.Tokens)
}

func TestSyntaxErrorsPassThrough(t *testing.T) {
	m := ast.NewModule("main.c", "int x = ;")
	_, err := gen.LLVM(m, llvmgen.Options{})

	var errs diag.SyntaxErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, 1, errs[0].Pos.Line)
}
