package diag_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/kartiknair/tinyc/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestSyntaxError(t *testing.T) {
	err := diag.Syntax(token.Pos{Line: 3, Column: 7}, "expect %s", "`;`")
	assert.Equal(t, "syntax error: 3:7: expect `;`", err.Error())

	assert.Equal(t, "syntax error: bad input", diag.SyntaxError{Message: "bad input"}.Error())

	joined := diag.SyntaxErrors{
		{Message: "first", Pos: token.Pos{Line: 1, Column: 1}},
		{Message: "second", Pos: token.Pos{Line: 2, Column: 1}},
	}
	assert.Equal(t, "syntax error: 1:1: first\nsyntax error: 2:1: second", joined.Error())
}

func TestDevError(t *testing.T) {
	err := diag.Dev("storage not found for %q", "x")
	assert.Equal(t, `internal compiler error: storage not found for "x"`, err.Error())

	var devErr *diag.DevError
	require.True(t, errors.As(fmt.Errorf("lowering: %w", err), &devErr))
	assert.Equal(t, `storage not found for "x"`, devErr.Message)
}

func TestReporterSyntax(t *testing.T) {
	m := ast.NewModule("main.c", "int x = ;")
	r := diag.NewReporter(m)

	out := r.Format(diag.Syntax(token.Pos{Line: 1, Column: 9}, "expect expression, found ';'"))
	want := "syntax error: expect expression, found ';'\n" +
		"  --> main.c:1:9\n" +
		"   1 | int x = ;\n" +
		"     |         ^\n"
	assert.Equal(t, want, out)
}

func TestReporterOtherErrors(t *testing.T) {
	r := diag.NewReporter(nil)

	out := r.Format(diag.Dev("unexpected %s node", ast.Case))
	assert.Equal(t, "internal compiler error: unexpected Case node\nthis is a bug in tinyc, not in your program\n", out)

	out = r.Format(errors.New("open main.c: no such file or directory"))
	assert.Equal(t, "error: open main.c: no such file or directory\n", out)

	out = r.Format(diag.SyntaxError{Message: "bad", Pos: token.Pos{Line: 2, Column: 4}})
	assert.Equal(t, "syntax error: bad\n  --> :2:4\n", out)
}
