package llvmgen_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	llvmgen "github.com/kartiknair/tinyc/pkg/gen/llvm"
	"github.com/kartiknair/tinyc/pkg/lexer"
	"github.com/kartiknair/tinyc/pkg/parser"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree(t *testing.T, src string) *ast.AST {
	t.Helper()
	tokens, err := lexer.Tokenize("test.c", src)
	require.NoError(t, err)
	tree, err := parser.Parse(tokens)
	require.NoError(t, err)
	return tree
}

func generate(t *testing.T, src string) *ir.Module {
	t.Helper()
	m, err := llvmgen.Gen(tree(t, src), llvmgen.Options{SourceFilename: "test.c"})
	require.NoError(t, err)
	require.NotPanics(t, func() { _ = m.String() })
	return m
}

func devErr(t *testing.T, root *ast.AST) *diag.DevError {
	t.Helper()
	_, err := llvmgen.Gen(root, llvmgen.Options{})
	require.Error(t, err)

	var dev *diag.DevError
	require.True(t, errors.As(err, &dev), "expected a developer error, got %T: %v", err, err)
	return dev
}

func function(t *testing.T, m *ir.Module, name string) *ir.Func {
	t.Helper()
	for _, f := range m.Funcs {
		if f.Name() == name {
			return f
		}
	}
	require.FailNow(t, "function not found", name)
	return nil
}

func block(t *testing.T, f *ir.Func, name string) *ir.Block {
	t.Helper()
	for _, b := range f.Blocks {
		if b.Name() == name {
			return b
		}
	}
	require.FailNow(t, "block not found", name)
	return nil
}

func blockNames(f *ir.Func) []string {
	var names []string
	for _, b := range f.Blocks {
		names = append(names, b.Name())
	}
	return names
}

func successors(b *ir.Block) []string {
	var names []string
	for _, s := range b.Term.Succs() {
		names = append(names, s.Name())
	}
	return names
}

func instTypes(b *ir.Block) []string {
	var names []string
	for _, inst := range b.Insts {
		names = append(names, fmt.Sprintf("%T", inst))
	}
	return names
}

func TestForLoop(t *testing.T) {
	f := function(t, generate(t, "void f() { for (int i = 0; i < 3; i = i + 1) { } }"), "f")

	assert.Equal(t, []string{"entryID0", "for_condID1", "for_bodyID1", "for_incID1", "for_endID1"}, blockNames(f))
	assert.Equal(t, []string{"for_condID1"}, successors(block(t, f, "entryID0")))
	assert.Equal(t, []string{"for_bodyID1", "for_endID1"}, successors(block(t, f, "for_condID1")))
	assert.Equal(t, []string{"for_incID1"}, successors(block(t, f, "for_bodyID1")))
	assert.Equal(t, []string{"for_condID1"}, successors(block(t, f, "for_incID1")))
	assert.IsType(t, &ir.TermRet{}, block(t, f, "for_endID1").Term)
}

func TestInfiniteForLoop(t *testing.T) {
	f := function(t, generate(t, "void f() { for (;;) { break; } }"), "f")

	cond := block(t, f, "for_condID1")
	br, ok := cond.Term.(*ir.TermCondBr)
	require.True(t, ok)
	c, ok := br.Cond.(*constant.Int)
	require.True(t, ok)
	assert.Equal(t, int64(1), c.X.Int64())
	assert.Equal(t, []string{"for_endID1"}, successors(block(t, f, "for_bodyID1")))
}

func TestContinueTargetsInnermostLoop(t *testing.T) {
	f := function(t, generate(t, `
		void f() {
			int x = 0;
			while (x < 10) {
				for (int i = 0; i < 3; i = i + 1) { continue; }
				x = x + 1;
			}
		}
	`), "f")

	assert.Equal(t, []string{
		"entryID0",
		"while_condID1", "while_bodyID1",
		"for_condID2", "for_bodyID2", "for_incID2", "for_endID2",
		"while_endID1",
	}, blockNames(f))
	assert.Equal(t, []string{"for_incID2"}, successors(block(t, f, "for_bodyID2")))
	assert.Equal(t, []string{"while_condID1"}, successors(block(t, f, "for_endID2")))
}

func TestBreakTargetsInnermostLoop(t *testing.T) {
	f := function(t, generate(t, "void f() { while (true) { while (true) { break; } break; } }"), "f")

	assert.Equal(t, []string{"while_endID2"}, successors(block(t, f, "while_bodyID2")))
	assert.Equal(t, []string{"while_endID1"}, successors(block(t, f, "while_endID2")))
}

func TestDoWhileBodyPrecedesCondition(t *testing.T) {
	f := function(t, generate(t, "void f() { int x = 0; do { x = x + 1; } while (x < 3); }"), "f")

	assert.Equal(t, []string{"entryID0", "do_bodyID1", "do_condID1", "do_endID1"}, blockNames(f))
	assert.Equal(t, []string{"do_bodyID1"}, successors(block(t, f, "entryID0")))
	assert.Equal(t, []string{"do_condID1"}, successors(block(t, f, "do_bodyID1")))
	assert.Equal(t, []string{"do_bodyID1", "do_endID1"}, successors(block(t, f, "do_condID1")))
}

func TestIfWithoutElse(t *testing.T) {
	f := function(t, generate(t, "void f() { int x = 1; if (x) { x = 2; } }"), "f")

	assert.Equal(t, []string{"entryID0", "thenID1", "elseID1", "mergeID1"}, blockNames(f))
	assert.Equal(t, []string{"thenID1", "elseID1"}, successors(block(t, f, "entryID0")))
	assert.Equal(t, []string{"mergeID1"}, successors(block(t, f, "thenID1")))
	assert.Equal(t, []string{"mergeID1"}, successors(block(t, f, "elseID1")))

	var cmp *ir.InstICmp
	var negated bool
	for _, inst := range block(t, f, "entryID0").Insts {
		switch inst := inst.(type) {
		case *ir.InstICmp:
			cmp = inst
		case *ir.InstXor:
			negated = true
		}
	}
	require.NotNil(t, cmp)
	assert.Equal(t, enum.IPredEQ, cmp.Pred)
	assert.True(t, negated)
}

func TestBooleanLiteralBranchesDirectly(t *testing.T) {
	f := function(t, generate(t, "void f() { if (false) { } }"), "f")

	entry := block(t, f, "entryID0")
	assert.Empty(t, entry.Insts)
	br, ok := entry.Term.(*ir.TermCondBr)
	require.True(t, ok)
	c, ok := br.Cond.(*constant.Int)
	require.True(t, ok)
	assert.Equal(t, int64(0), c.X.Int64())
}

func TestIfElseChain(t *testing.T) {
	f := function(t, generate(t, `
		int sign(int x) {
			if (x > 0) { return 1; } else if (x < 0) { return -1; } else { return 0; }
		}
	`), "sign")

	assert.Equal(t, []string{
		"entryID0",
		"thenID1", "elseID1",
		"thenID2", "elseID2", "mergeID2",
		"mergeID1",
	}, blockNames(f))
	assert.IsType(t, &ir.TermRet{}, block(t, f, "thenID1").Term)
	assert.Equal(t, []string{"mergeID1"}, successors(block(t, f, "mergeID2")))
	assert.IsType(t, &ir.TermUnreachable{}, block(t, f, "mergeID1").Term)
}

func TestSwitch(t *testing.T) {
	f := function(t, generate(t, `
		void f() {
			int x = 2;
			int y = 0;
			switch (x) {
				case 1: y = 1;
				case 2: y = 2; break;
				default: y = 3;
			}
		}
	`), "f")

	assert.Equal(t, []string{
		"entryID0",
		"switch_testID1_0", "switch_caseID1_0",
		"switch_testID1_1", "switch_caseID1_1",
		"switch_defaultID1",
		"switch_endID1",
	}, blockNames(f))
	assert.Equal(t, []string{"switch_testID1_0"}, successors(block(t, f, "entryID0")))
	assert.Equal(t, []string{"switch_caseID1_0", "switch_testID1_1"}, successors(block(t, f, "switch_testID1_0")))
	assert.Equal(t, []string{"switch_caseID1_1", "switch_defaultID1"}, successors(block(t, f, "switch_testID1_1")))
	assert.Equal(t, []string{"switch_caseID1_1"}, successors(block(t, f, "switch_caseID1_0")))
	assert.Equal(t, []string{"switch_endID1"}, successors(block(t, f, "switch_caseID1_1")))
	assert.Equal(t, []string{"switch_endID1"}, successors(block(t, f, "switch_defaultID1")))
}

func TestDuplicateDefault(t *testing.T) {
	root := ast.NewAST(ast.New(ast.TopLevelExpression,
		ast.New(ast.FunctionDeclaration,
			ast.NewIdentifier("f"),
			ast.NewType(ast.Void),
			ast.New(ast.BlockExpression,
				ast.New(ast.SwitchStatement,
					ast.NewLiteral("1"),
					ast.New(ast.BlockExpression,
						ast.New(ast.Default, ast.New(ast.BlockExpression)),
						ast.New(ast.Default, ast.New(ast.BlockExpression)),
					),
				),
			),
		),
	))

	assert.Contains(t, devErr(t, root).Message, "duplicate default in switch")
}

func TestContinueInsideSwitch(t *testing.T) {
	f := function(t, generate(t, `
		void f() {
			int x = 0;
			while (x < 3) {
				switch (x) { case 0: continue; }
				x = x + 1;
			}
		}
	`), "f")

	assert.Equal(t, []string{"while_condID1"}, successors(block(t, f, "switch_caseID2_0")))
}

func TestSwitchOnEnum(t *testing.T) {
	generate(t, `
		enum Color { Red, Green }
		void f() {
			int c = Color.Green;
			switch (c) { case Color.Red: c = 0; break; case Color.Green: c = 1; }
		}
	`)
}

func TestUndeclaredAssignment(t *testing.T) {
	for _, src := range []string{
		"void f() { y = 1; }",
		"void f() { for (i = 0; i < 3; i = i + 1) { } }",
		"int f() { return nope; }",
	} {
		t.Run(src, func(t *testing.T) {
			assert.Contains(t, devErr(t, tree(t, src)).Message, "storage not found")
		})
	}
}

func TestRedeclarationOverwrites(t *testing.T) {
	f := function(t, generate(t, "void f() { int x = 1; int x = 2; x = 3; }"), "f")

	var allocas []*ir.InstAlloca
	var last *ir.InstStore
	for _, inst := range block(t, f, "entryID0").Insts {
		switch inst := inst.(type) {
		case *ir.InstAlloca:
			allocas = append(allocas, inst)
		case *ir.InstStore:
			last = inst
		}
	}
	require.Len(t, allocas, 2)
	require.NotNil(t, last)
	assert.Same(t, allocas[1], last.Dst)
}

func TestInnerBlockShadows(t *testing.T) {
	f := function(t, generate(t, "void f() { int x = 1; { int x = 2; } x = 3; }"), "f")

	var allocas []*ir.InstAlloca
	var last *ir.InstStore
	for _, inst := range block(t, f, "entryID0").Insts {
		switch inst := inst.(type) {
		case *ir.InstAlloca:
			allocas = append(allocas, inst)
		case *ir.InstStore:
			last = inst
		}
	}
	require.Len(t, allocas, 2)
	assert.Same(t, allocas[0], last.Dst)
}

func TestLoadBeforeAlloca(t *testing.T) {
	f := function(t, generate(t, "void f() { int a = 1; int b = a; }"), "f")
	assert.Equal(t, []string{
		"*ir.InstAlloca", "*ir.InstStore",
		"*ir.InstLoad", "*ir.InstAlloca", "*ir.InstStore",
	}, instTypes(block(t, f, "entryID0")))

	f = function(t, generate(t, "void f() { int a = 1; int b = a + 1; }"), "f")
	assert.Equal(t, []string{
		"*ir.InstAlloca", "*ir.InstStore",
		"*ir.InstAlloca", "*ir.InstLoad", "*ir.InstAdd", "*ir.InstStore",
	}, instTypes(block(t, f, "entryID0")))
}

func TestMalformedNodes(t *testing.T) {
	fn := func(stmt *ast.Node) *ast.AST {
		return ast.NewAST(ast.New(ast.TopLevelExpression,
			ast.New(ast.FunctionDeclaration,
				ast.NewIdentifier("f"),
				ast.NewType(ast.Void),
				ast.New(ast.BlockExpression, stmt),
			),
		))
	}

	dev := devErr(t, fn(ast.New(ast.IfStatement, ast.New(ast.Condition, ast.NewLiteral("1")))))
	assert.Contains(t, dev.Message, "malformed IfStatement")

	dev = devErr(t, fn(ast.New(ast.BinaryExpression, ast.NewLiteral("1"), ast.NewOperator("+"))))
	assert.Contains(t, dev.Message, "malformed BinaryExpression")

	dev = devErr(t, fn(ast.New(ast.WhileLoop, ast.New(ast.Condition, ast.NewLiteral("1")), ast.NewLiteral("2"))))
	assert.Contains(t, dev.Message, "unexpected Literal child in WhileLoop")

	dev = devErr(t, fn(ast.New(ast.Assignment, ast.NewIdentifier("x"), ast.NewLiteral("1x"))))
	assert.Contains(t, dev.Message, "neither an integer nor a float")
}

func TestMisplacedJumps(t *testing.T) {
	assert.Contains(t, devErr(t, tree(t, "void f() { break; }")).Message, "not inside a loop")
	assert.Contains(t, devErr(t, tree(t, "void f() { continue; }")).Message, "not inside a loop")
	assert.Contains(t,
		devErr(t, tree(t, "void f() { int x = 1; switch (x) { case 1: continue; } }")).Message,
		"inside a switch")
}

func TestStatementOutsideFunction(t *testing.T) {
	assert.Contains(t, devErr(t, tree(t, "x = 1;")).Message, "outside of a function")
	assert.Contains(t, devErr(t, tree(t, "while (true) { }")).Message, "outside of a function")
}

func TestReturnTypes(t *testing.T) {
	assert.Contains(t, devErr(t, tree(t, "void f() { return 1; }")).Message, "void function")
	assert.Contains(t, devErr(t, tree(t, "int f() { return; }")).Message, "without a value")
}

func TestFinalization(t *testing.T) {
	m := generate(t, "int f() { } void g() { }")
	assert.IsType(t, &ir.TermUnreachable{}, function(t, m, "f").Blocks[0].Term)
	assert.IsType(t, &ir.TermRet{}, function(t, m, "g").Blocks[0].Term)
}

func TestCodeAfterReturn(t *testing.T) {
	f := function(t, generate(t, "int f() { return 1; return 2; }"), "f")
	assert.Equal(t, []string{"entryID0", "deadID1"}, blockNames(f))
	assert.IsType(t, &ir.TermRet{}, f.Blocks[1].Term)
}

func TestUniqueLabels(t *testing.T) {
	f := function(t, generate(t, `
		void f() {
			for (int i = 0; i < 3; i = i + 1) { }
			for (int i = 0; i < 3; i = i + 1) { }
		}
	`), "f")

	seen := map[string]bool{}
	for _, name := range blockNames(f) {
		assert.False(t, seen[name], "duplicate label %s", name)
		seen[name] = true
	}
	assert.True(t, seen["for_condID1"])
	assert.True(t, seen["for_condID2"])
}

func TestPrintedIR(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{
			"int add(int a, int b) { return a + b; }",
			[]string{"define i64 @add(i64 %a, i64 %b)", "add i64"},
		},
		{
			"int f(int a) { return a * 2 - a % 3; }",
			[]string{"mul i64", "srem i64", "sub i64"},
		},
		{
			"bool lt(double x) { return x < 1.5; }",
			[]string{"fcmp olt double"},
		},
		{
			"int neg(int a) { return -a; } bool not(int a) { return !a; }",
			[]string{"sub i64 0,", "icmp eq i64"},
		},
		{
			"void f() { double d = 2.5; float g = 1; char c = 'a'; bool b = true; }",
			[]string{"alloca double", "sitofp i64 1 to float", "store i8 97", "store i1 true"},
		},
		{
			`void f() { "hi"; }`,
			[]string{`c"hi\00"`, "private"},
		},
		{
			"enum Color { Red, Green, Blue } int f() { return Color.Blue; }",
			[]string{"ret i64 2"},
		},
		{
			"struct P { x: int, y: double }",
			[]string{"%P = type { i64, double }"},
		},
		{
			"int g = 5; int f() { return g; }",
			[]string{"@g = global i64 5"},
		},
		{
			"int g = -5; double d = -1.5; float h = 1; bool n = !0;",
			[]string{"@g = global i64 -5", "@d = global double -1.5", "@h = global float 1.0", "@n = global i1 true"},
		},
		{
			"enum Color { Red, Green, Blue } int g = Color.Blue * 2 + 1; bool lt = 1 < 2.5;",
			[]string{"@g = global i64 5", "@lt = global i1 true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			out := generate(t, tt.src).String()
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestGlobalInitializers(t *testing.T) {
	assert.Contains(t, devErr(t, tree(t, "int x = 1; int y = x;")).Message, `global "y" needs a constant initializer`)
	assert.Contains(t, devErr(t, tree(t, "int g = 1 / 0;")).Message, "division by zero")
}

func TestNonASCIICharacter(t *testing.T) {
	root := ast.NewAST(ast.New(ast.TopLevelExpression,
		ast.New(ast.Initialization,
			ast.New(ast.Variable, ast.NewIdentifier("c"), ast.NewType(ast.Char)),
			ast.NewLiteral("'é'"),
		),
	))

	assert.Contains(t, devErr(t, root).Message, "invalid character literal")
}

func TestOptions(t *testing.T) {
	m, err := llvmgen.Gen(tree(t, "void f() { }"), llvmgen.Options{
		TargetTriple:   "x86_64-pc-linux-gnu",
		SourceFilename: "main.c",
	})
	require.NoError(t, err)
	out := m.String()
	assert.Contains(t, out, `target triple = "x86_64-pc-linux-gnu"`)
	assert.Contains(t, out, `source_filename = "main.c"`)
}

func TestUnsupportedTypes(t *testing.T) {
	assert.Contains(t, devErr(t, tree(t, "void f() { unsigned x = 1; }")).Message, "unsupported data type")
}
