package llvmgen

import (
	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// insertAfter creates a block named name and places it directly after anchor
// in the function's layout.
func (g *Generator) insertAfter(anchor *ir.Block, name string) *ir.Block {
	b := ir.NewBlock(name)
	b.Parent = g.fn

	at := len(g.fn.Blocks)
	for i, existing := range g.fn.Blocks {
		if existing == anchor {
			at = i + 1
			break
		}
	}

	g.fn.Blocks = append(g.fn.Blocks, nil)
	copy(g.fn.Blocks[at+1:], g.fn.Blocks[at:])
	g.fn.Blocks[at] = b
	return b
}

// newBlocks creates one block per name after the current block, in the
// given order.
func (g *Generator) newBlocks(names ...string) []*ir.Block {
	blocks := make([]*ir.Block, len(names))
	anchor := g.block
	for i, name := range names {
		blocks[i] = g.insertAfter(anchor, name)
		anchor = blocks[i]
		log.Debugf("block %s", name)
	}
	return blocks
}

// brIfOpen branches to dest unless the current block already ends in a
// return or a jump.
func (g *Generator) brIfOpen(dest *ir.Block) {
	if g.block.Term == nil {
		g.block.NewBr(dest)
	}
}

// lowerCondition produces the i1 a conditional branch needs. The literals
// true and false are used as is; anything else is compared against zero and
// negated. An empty condition is constant true.
func (g *Generator) lowerCondition(n *ast.Node) (value.Value, error) {
	inner := n.Unwrap()
	if inner == nil || (inner.Kind == ast.Condition && inner.Len() == 0) {
		return constant.True, nil
	}
	if inner.IsBooleanLiteral() {
		return constant.NewBool(inner.Value == "true"), nil
	}

	v, err := g.lower(inner)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, diag.Dev("%s at %s has no value to branch on", inner.Kind, inner.Pos)
	}
	return g.truthy(v)
}

// truthy computes not(v == 0).
func (g *Generator) truthy(v value.Value) (value.Value, error) {
	var isZero value.Value
	switch t := v.Type().(type) {
	case *types.IntType:
		isZero = g.block.NewICmp(enum.IPredEQ, v, constant.NewInt(t, 0))
	case *types.FloatType:
		isZero = g.block.NewFCmp(enum.FPredOEQ, v, constant.NewFloat(t, 0))
	case *types.PointerType:
		isZero = g.block.NewICmp(enum.IPredEQ, v, constant.NewNull(t))
	default:
		return nil, diag.Dev("cannot branch on a value of type %s", v.Type())
	}
	return g.block.NewXor(isZero, constant.True), nil
}

func (g *Generator) pushTargets(brk, cont *ir.Block) {
	g.targets = append(g.targets, target{brk: brk, cont: cont})
}

func (g *Generator) popTargets() {
	g.targets = g.targets[:len(g.targets)-1]
}

// enclosingContinue is the continue target of the innermost loop, if any.
func (g *Generator) enclosingContinue() *ir.Block {
	if len(g.targets) == 0 {
		return nil
	}
	return g.targets[len(g.targets)-1].cont
}

// finalize terminates every block of fn that is still open so the function
// is well formed.
func finalize(fn *ir.Func) {
	void := fn.Sig.RetType.Equal(types.Void)
	for _, b := range fn.Blocks {
		if b.Term != nil {
			continue
		}
		if void {
			b.NewRet(nil)
		} else {
			b.NewUnreachable()
		}
	}
}
