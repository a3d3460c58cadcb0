package llvmgen

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// lowerLiteral turns literal text into a constant. Booleans become i1,
// quoted text becomes a char or a string, then an i64 parse and a double
// parse are tried in that order.
func (g *Generator) lowerLiteral(n *ast.Node) (value.Value, error) {
	text := n.Value

	switch {
	case text == "true" || text == "false":
		return constant.NewBool(text == "true"), nil
	case len(text) >= 2 && text[0] == '\'':
		s, err := strconv.Unquote(text)
		if err != nil || len(s) != 1 || s[0] > unicode.MaxASCII {
			return nil, diag.Dev("invalid character literal %s at %s", text, n.Pos)
		}
		return constant.NewInt(types.I8, int64(s[0])), nil
	case len(text) >= 2 && text[0] == '"':
		s, err := strconv.Unquote(text)
		if err != nil {
			return nil, diag.Dev("invalid string literal %s at %s", text, n.Pos)
		}
		return g.stringConstant(s), nil
	}

	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return constant.NewInt(types.I64, i), nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return constant.NewFloat(types.Double, f), nil
	}
	return nil, diag.Dev("literal %q at %s is neither an integer nor a float", text, n.Pos)
}

// stringConstant emits a private NUL-terminated global and returns an i8*
// to its first byte.
func (g *Generator) stringConstant(s string) constant.Constant {
	data := constant.NewCharArrayFromString(s + "\x00")
	def := g.module.NewGlobalDef(fmt.Sprintf(".str.%d", g.strings), data)
	def.Linkage = enum.LinkagePrivate
	def.Immutable = true
	g.strings++

	return constant.NewGetElementPtr(data.Typ, def,
		constant.NewInt(types.I32, 0),
		constant.NewInt(types.I32, 0),
	)
}

// lowerRecall loads the current value of a variable. Enum variants have no
// storage and yield their constant.
func (g *Generator) lowerRecall(n *ast.Node) (value.Value, error) {
	name, ok := n.Name()
	if !ok {
		return nil, diag.Dev("%s at %s does not name a variable", n.Kind, n.Pos)
	}
	sym, ok := g.scope.get(name)
	if !ok {
		return nil, diag.Dev("storage not found for %q at %s", name, n.Pos)
	}
	if sym.constant != nil {
		return sym.constant, nil
	}
	if g.block == nil {
		return nil, diag.Dev("read of %q at %s is outside of a function", name, n.Pos)
	}
	return g.block.NewLoad(sym.elem, sym.ptr), nil
}

// declaration pulls the name, the declared type (if any) and the initial
// value (if any) out of an Initialization node. Both
// Initialization[Variable[id, type], value?] and
// Initialization[id, type?, value?] are accepted.
func declaration(n *ast.Node) (name string, typ, val *ast.Node, err error) {
	head := n.Child(0)
	name, ok := head.Name()
	if !ok {
		return "", nil, nil, diag.Dev("initialization at %s does not name a variable", n.Pos)
	}
	if head.Kind == ast.Variable {
		if t := head.Child(1); t != nil {
			if t.Kind != ast.Type {
				return "", nil, nil, diag.Dev("variable %q at %s has %s instead of a type", name, n.Pos, t.Kind)
			}
			typ = t
		}
	}

	for _, child := range n.Children[1:] {
		switch {
		case child.Kind == ast.Type && typ == nil:
			typ = child
		case child.Kind != ast.Type && val == nil:
			val = child
		default:
			return "", nil, nil, diag.Dev("unexpected %s in initialization of %q at %s", child.Kind, name, n.Pos)
		}
	}
	return name, typ, val, nil
}

// lowerInitialization allocates storage for a new variable (i64 when no type
// is given) and stores the initial value. When the initial value reads
// another variable, that load is emitted before the new allocation.
// Outside of a function the variable becomes a global.
func (g *Generator) lowerInitialization(n *ast.Node) error {
	name, typ, val, err := declaration(n)
	if err != nil {
		return err
	}

	var elem types.Type = types.I64
	if typ != nil {
		if elem, err = lowerType(typ); err != nil {
			return err
		}
		if elem.Equal(types.Void) {
			return diag.Dev("variable %q at %s cannot be void", name, n.Pos)
		}
	}

	if g.fn == nil {
		return g.lowerGlobal(name, elem, val)
	}

	var initial value.Value
	if val != nil {
		if inner := val.Unwrap(); inner.Kind == ast.Identifier || inner.Kind == ast.Variable {
			if initial, err = g.lower(inner); err != nil {
				return err
			}
		}
	}

	ptr := g.block.NewAlloca(elem)
	g.scope.declare(name, &symbol{ptr: ptr, elem: elem})
	log.Debugf("declare %s %s", elem, name)

	if val == nil {
		return nil
	}
	if initial == nil {
		if initial, err = g.lower(val); err != nil {
			return err
		}
		if initial == nil {
			return diag.Dev("initial value of %q at %s produces no value", name, n.Pos)
		}
	}
	initial, err = g.coerce(initial, elem)
	if err != nil {
		return err
	}
	g.block.NewStore(initial, ptr)
	return nil
}

func (g *Generator) lowerGlobal(name string, elem types.Type, val *ast.Node) error {
	var init constant.Constant = constant.NewZeroInitializer(elem)
	if val != nil {
		c, err := g.lowerConstant(val)
		if err != nil {
			return diag.Dev("global %q needs a constant initializer: %s", name, err.Error())
		}
		if init, err = coerceConstant(c, elem); err != nil {
			return err
		}
	}

	// Redeclared globals keep the first name; later ones are numbered.
	globalName := name
	for _, existing := range g.module.Globals {
		if existing.Name() == name {
			globalName = ""
			break
		}
	}

	def := g.module.NewGlobalDef(globalName, init)
	g.scope.declare(name, &symbol{ptr: def, elem: elem})
	log.Debugf("declare global %s %s", elem, name)
	return nil
}

// lowerAssignment stores into existing storage. Assigning never declares.
func (g *Generator) lowerAssignment(n *ast.Node) error {
	name, ok := n.Child(0).Name()
	if !ok {
		return diag.Dev("assignment at %s has %s as its target", n.Pos, n.Child(0).Kind)
	}

	v, err := g.lower(n.Child(1))
	if err != nil {
		return err
	}
	if v == nil {
		return diag.Dev("assignment to %q at %s produces no value", name, n.Pos)
	}

	sym, ok := g.scope.get(name)
	if !ok {
		return diag.Dev("storage not found for %q at %s", name, n.Pos)
	}
	if sym.constant != nil {
		return diag.Dev("cannot assign to constant %q at %s", name, n.Pos)
	}

	v, err = g.coerce(v, sym.elem)
	if err != nil {
		return err
	}
	g.block.NewStore(v, sym.ptr)
	return nil
}

func (g *Generator) lowerReturn(n *ast.Node) error {
	if g.fn == nil {
		return diag.Dev("return at %s is outside of a function", n.Pos)
	}
	ret := g.fn.Sig.RetType

	if n.Len() == 0 {
		if !ret.Equal(types.Void) {
			return diag.Dev("return without a value at %s in %s returning %s", n.Pos, g.fn.Name(), ret)
		}
		g.block.NewRet(nil)
		return nil
	}

	if ret.Equal(types.Void) {
		return diag.Dev("return with a value at %s in void function %s", n.Pos, g.fn.Name())
	}
	v, err := g.lower(n.Child(0))
	if err != nil {
		return err
	}
	if v == nil {
		return diag.Dev("return value at %s produces no value", n.Pos)
	}
	if v, err = g.coerce(v, ret); err != nil {
		return err
	}
	g.block.NewRet(v)
	return nil
}

var intPredicates = map[string]enum.IPred{
	"<":  enum.IPredSLT,
	">":  enum.IPredSGT,
	"<=": enum.IPredSLE,
	">=": enum.IPredSGE,
	"==": enum.IPredEQ,
	"!=": enum.IPredNE,
}

var floatPredicates = map[string]enum.FPred{
	"<":  enum.FPredOLT,
	">":  enum.FPredOGT,
	"<=": enum.FPredOLE,
	">=": enum.FPredOGE,
	"==": enum.FPredOEQ,
	"!=": enum.FPredONE,
}

func (g *Generator) lowerBinary(n *ast.Node) (value.Value, error) {
	op := n.Child(1)
	if op.Kind != ast.Operator {
		return nil, diag.Dev("binary expression at %s has %s instead of an operator", n.Pos, op.Kind)
	}

	x, err := g.lowerOperand(n.Child(0))
	if err != nil {
		return nil, err
	}
	y, err := g.lowerOperand(n.Child(2))
	if err != nil {
		return nil, err
	}

	_, comparison := intPredicates[op.Value]
	common, err := commonType(x.Type(), y.Type(), !comparison)
	if err != nil {
		return nil, diag.Dev("operator %s at %s: %s", op.Value, op.Pos, err.Error())
	}
	if x, err = g.coerce(x, common); err != nil {
		return nil, err
	}
	if y, err = g.coerce(y, common); err != nil {
		return nil, err
	}

	b := g.block
	if isFloat(common) {
		if pred, ok := floatPredicates[op.Value]; ok {
			return b.NewFCmp(pred, x, y), nil
		}
		switch op.Value {
		case "+":
			return b.NewFAdd(x, y), nil
		case "-":
			return b.NewFSub(x, y), nil
		case "*":
			return b.NewFMul(x, y), nil
		case "/":
			return b.NewFDiv(x, y), nil
		case "%":
			return b.NewFRem(x, y), nil
		}
	} else {
		if pred, ok := intPredicates[op.Value]; ok {
			return b.NewICmp(pred, x, y), nil
		}
		switch op.Value {
		case "+":
			return b.NewAdd(x, y), nil
		case "-":
			return b.NewSub(x, y), nil
		case "*":
			return b.NewMul(x, y), nil
		case "/":
			return b.NewSDiv(x, y), nil
		case "%":
			return b.NewSRem(x, y), nil
		}
	}
	return nil, diag.Dev("unknown binary operator %q at %s", op.Value, op.Pos)
}

// lowerUnary lowers -x as 0 - x and !x as x == 0.
func (g *Generator) lowerUnary(n *ast.Node) (value.Value, error) {
	op := n.Child(0)
	if op.Kind != ast.Operator {
		return nil, diag.Dev("unary expression at %s has %s instead of an operator", n.Pos, op.Kind)
	}
	x, err := g.lowerOperand(n.Child(1))
	if err != nil {
		return nil, err
	}

	switch t := x.Type().(type) {
	case *types.IntType:
		switch op.Value {
		case "-":
			return g.block.NewSub(constant.NewInt(t, 0), x), nil
		case "!":
			return g.block.NewICmp(enum.IPredEQ, x, constant.NewInt(t, 0)), nil
		}
	case *types.FloatType:
		switch op.Value {
		case "-":
			return g.block.NewFSub(constant.NewFloat(t, 0), x), nil
		case "!":
			return g.block.NewFCmp(enum.FPredOEQ, x, constant.NewFloat(t, 0)), nil
		}
	default:
		return nil, diag.Dev("operator %s at %s cannot apply to %s", op.Value, op.Pos, x.Type())
	}
	return nil, diag.Dev("unknown unary operator %q at %s", op.Value, op.Pos)
}

func (g *Generator) lowerOperand(n *ast.Node) (value.Value, error) {
	v, err := g.lower(n)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, diag.Dev("%s at %s produces no value", n.Kind, n.Pos)
	}
	return v, nil
}
