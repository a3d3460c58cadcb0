// Package llvmgen lowers a parsed tree into an LLVM IR control-flow graph.
//
// A Generator owns every piece of IR construction state: the module, the
// function and block being filled, the label counter, the scoped symbol table
// and the break/continue targets. Lowering is single threaded; one Generator
// lowers one tree.
package llvmgen

import (
	"fmt"

	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("tinyc.gen.llvm")

type Options struct {
	// TargetTriple is copied into the module header when set.
	TargetTriple string
	// SourceFilename is copied into the module header when set.
	SourceFilename string
}

// target is one entry of the break/continue stack. cont is nil for a switch
// that is not nested in a loop.
type target struct {
	brk  *ir.Block
	cont *ir.Block
}

type Generator struct {
	module *ir.Module
	fn     *ir.Func
	block  *ir.Block

	labels  int
	strings int
	scope   *scope
	targets []target
}

func New(opts Options) *Generator {
	m := ir.NewModule()
	m.TargetTriple = opts.TargetTriple
	m.SourceFilename = opts.SourceFilename

	return &Generator{
		module: m,
		scope:  newScope(nil),
	}
}

// Gen lowers tree into a fresh module.
func Gen(tree *ast.AST, opts Options) (*ir.Module, error) {
	g := New(opts)
	if err := g.Generate(tree); err != nil {
		return nil, err
	}
	return g.Module(), nil
}

// Generate lowers the whole tree. On error the IR emitted so far stays in the
// module.
func (g *Generator) Generate(tree *ast.AST) error {
	if tree == nil || tree.Root == nil {
		return diag.Dev("no tree to lower")
	}
	_, err := g.lower(tree.Root)
	return err
}

func (g *Generator) Module() *ir.Module {
	return g.module
}

// nextID mints the number shared by all blocks of one construct instance.
func (g *Generator) nextID() int {
	id := g.labels
	g.labels++
	return id
}

func label(prefix string, id int) string {
	return fmt.Sprintf("%sID%d", prefix, id)
}

// lower is the single entry point for every node. It rejects nodes whose
// child count does not match their kind before looking at them.
func (g *Generator) lower(n *ast.Node) (value.Value, error) {
	if n == nil {
		return nil, diag.Dev("nil node")
	}
	if !n.HasValidArity() {
		min, max := ast.Arity(n.Kind)
		if max == ast.Unbounded {
			return nil, diag.Dev("malformed %s node at %s: %d children, want at least %d", n.Kind, n.Pos, n.Len(), min)
		}
		return nil, diag.Dev("malformed %s node at %s: %d children, want %d to %d", n.Kind, n.Pos, n.Len(), min, max)
	}

	switch n.Kind {
	case ast.TopLevelExpression:
		for _, child := range n.Children {
			if _, err := g.lower(child); err != nil {
				return nil, err
			}
		}
		return nil, nil

	case ast.FunctionDeclaration:
		return nil, g.lowerFunction(n)
	case ast.StructDeclaration:
		return nil, g.lowerStruct(n)
	case ast.EnumDeclaration:
		return nil, g.lowerEnum(n)
	case ast.Initialization:
		return nil, g.lowerInitialization(n)

	case ast.Literal:
		return g.lowerLiteral(n)
	case ast.Identifier, ast.Variable:
		return g.lowerRecall(n)

	case ast.AssignedValue, ast.Condition, ast.LoopInitializer, ast.LoopIncrement:
		if n.Len() == 0 {
			return nil, nil
		}
		return g.lower(n.Child(0))
	}

	if g.block == nil {
		return nil, diag.Dev("%s at %s is outside of a function", n.Kind, n.Pos)
	}

	switch n.Kind {
	case ast.BlockExpression:
		return nil, g.lowerBlock(n)
	case ast.IfStatement:
		return nil, g.lowerIf(n)
	case ast.WhileLoop:
		return nil, g.lowerWhile(n)
	case ast.DoWhileLoop:
		return nil, g.lowerDoWhile(n)
	case ast.ForLoop:
		return nil, g.lowerFor(n)
	case ast.SwitchStatement:
		return nil, g.lowerSwitch(n)
	case ast.Break:
		return nil, g.lowerBreak(n)
	case ast.Continue:
		return nil, g.lowerContinue(n)
	case ast.Return:
		return nil, g.lowerReturn(n)
	case ast.Assignment:
		return nil, g.lowerAssignment(n)
	case ast.BinaryExpression:
		return g.lowerBinary(n)
	case ast.UnaryExpression:
		return g.lowerUnary(n)
	}

	return nil, diag.Dev("unexpected %s node at %s", n.Kind, n.Pos)
}
