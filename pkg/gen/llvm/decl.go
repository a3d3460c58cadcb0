package llvmgen

import (
	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// lowerFunction lowers FunctionDeclaration[Identifier, Parameter…, Type,
// Block]. Parameters are spilled into allocas in the entry block so the body
// reads and writes them like any local.
func (g *Generator) lowerFunction(n *ast.Node) error {
	if g.fn != nil {
		return diag.Dev("function declared inside %s at %s", g.fn.Name(), n.Pos)
	}

	name, ok := n.Child(0).Name()
	if !ok || n.Child(0).Kind != ast.Identifier {
		return diag.Dev("function at %s has no name", n.Pos)
	}
	for _, f := range g.module.Funcs {
		if f.Name() == name {
			return diag.Dev("function %s redeclared at %s", name, n.Pos)
		}
	}

	last := n.Len() - 1
	body := n.Child(last)
	if body.Kind != ast.BlockExpression {
		return diag.Dev("function %s at %s has %s instead of a body", name, n.Pos, body.Kind)
	}
	ret, err := lowerType(n.Child(last - 1))
	if err != nil {
		return err
	}

	var params []*ir.Param
	for _, p := range n.Children[1 : last-1] {
		if p.Kind != ast.Parameter || !p.HasValidArity() {
			return diag.Dev("malformed parameter of %s at %s", name, p.Pos)
		}
		paramName, ok := p.Child(0).Name()
		if !ok {
			return diag.Dev("unnamed parameter of %s at %s", name, p.Pos)
		}
		typ, err := lowerType(p.Child(1))
		if err != nil {
			return err
		}
		if typ.Equal(types.Void) {
			return diag.Dev("parameter %s of %s at %s cannot be void", paramName, name, p.Pos)
		}
		params = append(params, ir.NewParam(paramName, typ))
	}

	fn := g.module.NewFunc(name, ret, params...)
	entry := fn.NewBlock(label("entry", g.nextID()))
	log.Debugf("function %s", fn.Sig)

	g.fn, g.block = fn, entry
	g.pushScope()
	defer func() {
		g.popScope()
		g.fn, g.block = nil, nil
		g.targets = nil
	}()

	for _, p := range fn.Params {
		ptr := entry.NewAlloca(p.Typ)
		entry.NewStore(p, ptr)
		g.scope.declare(p.Name(), &symbol{ptr: ptr, elem: p.Typ})
	}

	if _, err := g.lower(body); err != nil {
		return err
	}

	finalize(fn)
	return nil
}

// lowerStruct emits a named type definition from the field types.
func (g *Generator) lowerStruct(n *ast.Node) error {
	name, ok := n.Child(0).Name()
	if !ok {
		return diag.Dev("struct at %s has no name", n.Pos)
	}

	var fields []types.Type
	for _, f := range n.Children[1:] {
		if f.Kind != ast.Field || !f.HasValidArity() {
			return diag.Dev("malformed field in struct %s at %s", name, f.Pos)
		}
		typ, err := lowerType(f.Child(1))
		if err != nil {
			return err
		}
		if typ.Equal(types.Void) {
			return diag.Dev("field %s of struct %s cannot be void", f.Child(0).Value, name)
		}
		fields = append(fields, typ)
	}

	g.module.NewTypeDef(name, types.NewStruct(fields...))
	log.Debugf("struct %s with %d fields", name, len(fields))
	return nil
}

// lowerEnum binds every variant `Name.Variant` to its ordinal as an i64
// constant.
func (g *Generator) lowerEnum(n *ast.Node) error {
	name, ok := n.Child(0).Name()
	if !ok {
		return diag.Dev("enum at %s has no name", n.Pos)
	}

	for i, v := range n.Children[1:] {
		if v.Kind != ast.Variant || !v.HasValidArity() {
			return diag.Dev("malformed variant in enum %s at %s", name, v.Pos)
		}
		variant, ok := v.Child(0).Name()
		if !ok {
			return diag.Dev("unnamed variant in enum %s at %s", name, v.Pos)
		}
		g.scope.declare(name+"."+variant, &symbol{constant: constant.NewInt(types.I64, int64(i))})
	}
	log.Debugf("enum %s with %d variants", name, n.Len()-1)
	return nil
}
