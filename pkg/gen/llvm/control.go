package llvmgen

import (
	"fmt"

	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
)

// parts sorts the children of a loop node by kind. Loops tolerate missing
// clauses, so children are matched by kind instead of by position.
func parts(n *ast.Node, kinds ...ast.Kind) (map[ast.Kind]*ast.Node, error) {
	found := make(map[ast.Kind]*ast.Node, len(kinds))
	for _, child := range n.Children {
		allowed := false
		for _, k := range kinds {
			if child.Kind == k {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, diag.Dev("unexpected %s child in %s at %s", child.Kind, n.Kind, n.Pos)
		}
		if _, dup := found[child.Kind]; dup {
			return nil, diag.Dev("duplicate %s child in %s at %s", child.Kind, n.Kind, n.Pos)
		}
		found[child.Kind] = child
	}
	return found, nil
}

func (g *Generator) lowerBlock(n *ast.Node) error {
	g.pushScope()
	defer g.popScope()

	for _, child := range n.Children {
		if g.block.Term != nil {
			// Code after a return, break or continue gets a block of its
			// own that nothing branches to.
			g.block = g.insertAfter(g.block, label("dead", g.nextID()))
		}
		if _, err := g.lower(child); err != nil {
			return err
		}
	}
	return nil
}

// lowerBody lowers a loop or branch body, which may be absent.
func (g *Generator) lowerBody(body *ast.Node) error {
	if body == nil {
		return nil
	}
	_, err := g.lower(body)
	return err
}

// lowerIf wires
//
//	entry -> then | else;  then -> merge;  else -> merge
//
// The else block is always created; without an else branch it only jumps to
// merge.
func (g *Generator) lowerIf(n *ast.Node) error {
	id := g.nextID()
	blocks := g.newBlocks(label("then", id), label("else", id), label("merge", id))
	then, otherwise, merge := blocks[0], blocks[1], blocks[2]

	cond, err := g.lowerCondition(n.Child(0))
	if err != nil {
		return err
	}
	g.block.NewCondBr(cond, then, otherwise)

	g.block = then
	if err := g.lowerBody(n.Child(1)); err != nil {
		return err
	}
	g.brIfOpen(merge)

	g.block = otherwise
	if alt := n.Child(2); alt != nil {
		if alt.Kind != ast.BlockExpression && alt.Kind != ast.IfStatement {
			return diag.Dev("unexpected %s as else branch at %s", alt.Kind, alt.Pos)
		}
		if err := g.lowerBody(alt); err != nil {
			return err
		}
	}
	g.brIfOpen(merge)

	g.block = merge
	return nil
}

func (g *Generator) lowerWhile(n *ast.Node) error {
	p, err := parts(n, ast.Condition, ast.BlockExpression)
	if err != nil {
		return err
	}

	id := g.nextID()
	blocks := g.newBlocks(label("while_cond", id), label("while_body", id), label("while_end", id))
	cond, body, end := blocks[0], blocks[1], blocks[2]

	g.block.NewBr(cond)
	g.block = cond
	v, err := g.lowerCondition(p[ast.Condition])
	if err != nil {
		return err
	}
	g.block.NewCondBr(v, body, end)

	g.pushTargets(end, cond)
	g.block = body
	if err := g.lowerBody(p[ast.BlockExpression]); err != nil {
		return err
	}
	g.brIfOpen(cond)
	g.popTargets()

	g.block = end
	return nil
}

// lowerDoWhile enters the body before the condition is ever evaluated.
func (g *Generator) lowerDoWhile(n *ast.Node) error {
	p, err := parts(n, ast.BlockExpression, ast.Condition)
	if err != nil {
		return err
	}

	id := g.nextID()
	blocks := g.newBlocks(label("do_body", id), label("do_cond", id), label("do_end", id))
	body, cond, end := blocks[0], blocks[1], blocks[2]

	g.block.NewBr(body)

	g.pushTargets(end, cond)
	g.block = body
	if err := g.lowerBody(p[ast.BlockExpression]); err != nil {
		return err
	}
	g.brIfOpen(cond)

	g.block = cond
	v, err := g.lowerCondition(p[ast.Condition])
	if err != nil {
		return err
	}
	g.block.NewCondBr(v, body, end)
	g.popTargets()

	g.block = end
	return nil
}

// lowerFor runs the initializer in the current block, then wires
//
//	cond -> body | end;  body -> inc;  inc -> cond
//
// continue jumps to inc so the step is never skipped.
func (g *Generator) lowerFor(n *ast.Node) error {
	p, err := parts(n, ast.LoopInitializer, ast.Condition, ast.LoopIncrement, ast.BlockExpression)
	if err != nil {
		return err
	}

	// The loop variable is only visible inside the loop.
	g.pushScope()
	defer g.popScope()

	if init := p[ast.LoopInitializer]; init != nil {
		if _, err := g.lower(init); err != nil {
			return err
		}
	}

	id := g.nextID()
	blocks := g.newBlocks(label("for_cond", id), label("for_body", id), label("for_inc", id), label("for_end", id))
	cond, body, inc, end := blocks[0], blocks[1], blocks[2], blocks[3]

	g.block.NewBr(cond)
	g.block = cond
	v, err := g.lowerCondition(p[ast.Condition])
	if err != nil {
		return err
	}
	g.block.NewCondBr(v, body, end)

	g.pushTargets(end, inc)
	g.block = body
	if err := g.lowerBody(p[ast.BlockExpression]); err != nil {
		return err
	}
	g.brIfOpen(inc)

	g.block = inc
	if step := p[ast.LoopIncrement]; step != nil {
		if _, err := g.lower(step); err != nil {
			return err
		}
	}
	g.brIfOpen(cond)
	g.popTargets()

	g.block = end
	return nil
}

// lowerSwitch compares the scrutinee against each case in a chain of test
// blocks. Bodies are laid out in source order and fall through into the
// next body unless they break.
func (g *Generator) lowerSwitch(n *ast.Node) error {
	scrutinee, arms := n.Child(0), n.Child(1)
	if arms.Kind != ast.BlockExpression {
		return diag.Dev("switch at %s has %s instead of a block of arms", n.Pos, arms.Kind)
	}

	id := g.nextID()
	var names []string
	hasDefault := false
	for i, arm := range arms.Children {
		switch arm.Kind {
		case ast.Case:
			names = append(names, fmt.Sprintf("switch_testID%d_%d", id, i), fmt.Sprintf("switch_caseID%d_%d", id, i))
		case ast.Default:
			if hasDefault {
				return diag.Dev("duplicate default in switch at %s", arm.Pos)
			}
			hasDefault = true
			names = append(names, label("switch_default", id))
		default:
			return diag.Dev("unexpected %s in switch at %s", arm.Kind, arm.Pos)
		}
	}
	names = append(names, label("switch_end", id))

	v, err := g.lower(scrutinee)
	if err != nil {
		return err
	}
	if v == nil || !isInt(v.Type()) {
		return diag.Dev("switch at %s needs an integer scrutinee", n.Pos)
	}

	blocks := g.newBlocks(names...)
	end := blocks[len(blocks)-1]

	var tests, bodies []*ir.Block
	var fallback *ir.Block
	next := 0
	for _, arm := range arms.Children {
		if arm.Kind == ast.Case {
			tests = append(tests, blocks[next])
			bodies = append(bodies, blocks[next+1])
			next += 2
		} else {
			fallback = blocks[next]
			bodies = append(bodies, fallback)
			next++
		}
	}
	if fallback == nil {
		fallback = end
	}

	entry := fallback
	if len(tests) > 0 {
		entry = tests[0]
	}
	g.block.NewBr(entry)

	testIdx := 0
	for i, arm := range arms.Children {
		if arm.Kind != ast.Case {
			continue
		}
		miss := fallback
		if testIdx+1 < len(tests) {
			miss = tests[testIdx+1]
		}

		g.block = tests[testIdx]
		want, err := g.lower(arm.Child(0))
		if err != nil {
			return err
		}
		if want == nil {
			return diag.Dev("case at %s has no value", arm.Pos)
		}
		want, err = g.coerce(want, v.Type())
		if err != nil {
			return err
		}
		g.block.NewCondBr(g.block.NewICmp(enum.IPredEQ, v, want), bodies[i], miss)
		testIdx++
	}

	g.pushTargets(end, g.enclosingContinue())
	for i, arm := range arms.Children {
		g.block = bodies[i]
		body := arm.Child(arm.Len() - 1)
		if err := g.lowerBody(body); err != nil {
			return err
		}
		if i+1 < len(bodies) {
			g.brIfOpen(bodies[i+1])
		} else {
			g.brIfOpen(end)
		}
	}
	g.popTargets()

	g.block = end
	return nil
}

func (g *Generator) lowerBreak(n *ast.Node) error {
	if len(g.targets) == 0 {
		return diag.Dev("break at %s is not inside a loop or switch", n.Pos)
	}
	g.block.NewBr(g.targets[len(g.targets)-1].brk)
	return nil
}

func (g *Generator) lowerContinue(n *ast.Node) error {
	if len(g.targets) == 0 {
		return diag.Dev("continue at %s is not inside a loop", n.Pos)
	}
	cont := g.targets[len(g.targets)-1].cont
	if cont == nil {
		return diag.Dev("continue at %s is inside a switch but not inside a loop", n.Pos)
	}
	g.block.NewBr(cont)
	return nil
}
