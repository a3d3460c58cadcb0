package llvmgen

import (
	"math"
	"math/big"

	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// lowerConstant evaluates a global initializer to a single constant.
// Literals, enum variants and unary or binary expressions over them fold;
// anything else is rejected.
func (g *Generator) lowerConstant(n *ast.Node) (constant.Constant, error) {
	n = n.Unwrap()

	switch n.Kind {
	case ast.Literal, ast.Identifier, ast.Variable:
		v, err := g.lower(n)
		if err != nil {
			return nil, err
		}
		c, ok := v.(constant.Constant)
		if !ok {
			return nil, diag.Dev("%s at %s is not a constant", n.Kind, n.Pos)
		}
		return c, nil

	case ast.UnaryExpression:
		if n.Len() != 2 || n.Child(0).Kind != ast.Operator {
			return nil, diag.Dev("malformed %s node at %s", n.Kind, n.Pos)
		}
		x, err := g.lowerConstant(n.Child(1))
		if err != nil {
			return nil, err
		}
		return foldUnary(n.Child(0), x)

	case ast.BinaryExpression:
		if n.Len() != 3 || n.Child(1).Kind != ast.Operator {
			return nil, diag.Dev("malformed %s node at %s", n.Kind, n.Pos)
		}
		x, err := g.lowerConstant(n.Child(0))
		if err != nil {
			return nil, err
		}
		y, err := g.lowerConstant(n.Child(2))
		if err != nil {
			return nil, err
		}
		return foldBinary(n.Child(1), x, y)
	}
	return nil, diag.Dev("%s at %s is not a constant expression", n.Kind, n.Pos)
}

func foldUnary(op *ast.Node, x constant.Constant) (constant.Constant, error) {
	switch x := x.(type) {
	case *constant.Int:
		switch op.Value {
		case "-":
			return constant.NewInt(x.Typ, wrapInt(x.Typ, -intOf(x))), nil
		case "!":
			return constant.NewBool(intOf(x) == 0), nil
		}
	case *constant.Float:
		switch op.Value {
		case "-":
			return &constant.Float{Typ: x.Typ, X: new(big.Float).Neg(x.X)}, nil
		case "!":
			return constant.NewBool(x.X.Sign() == 0), nil
		}
	default:
		return nil, diag.Dev("operator %s at %s cannot apply to %s", op.Value, op.Pos, x.Type())
	}
	return nil, diag.Dev("unknown unary operator %q at %s", op.Value, op.Pos)
}

func foldBinary(op *ast.Node, x, y constant.Constant) (constant.Constant, error) {
	_, comparison := intPredicates[op.Value]
	common, err := commonType(x.Type(), y.Type(), !comparison)
	if err != nil {
		return nil, diag.Dev("operator %s at %s: %s", op.Value, op.Pos, err.Error())
	}
	if x, err = coerceConstant(x, common); err != nil {
		return nil, err
	}
	if y, err = coerceConstant(y, common); err != nil {
		return nil, err
	}

	switch t := common.(type) {
	case *types.IntType:
		a, aok := x.(*constant.Int)
		b, bok := y.(*constant.Int)
		if !aok || !bok {
			break
		}
		l, r := intOf(a), intOf(b)
		switch op.Value {
		case "<":
			return constant.NewBool(l < r), nil
		case ">":
			return constant.NewBool(l > r), nil
		case "<=":
			return constant.NewBool(l <= r), nil
		case ">=":
			return constant.NewBool(l >= r), nil
		case "==":
			return constant.NewBool(l == r), nil
		case "!=":
			return constant.NewBool(l != r), nil
		case "+":
			return constant.NewInt(t, wrapInt(t, l+r)), nil
		case "-":
			return constant.NewInt(t, wrapInt(t, l-r)), nil
		case "*":
			return constant.NewInt(t, wrapInt(t, l*r)), nil
		case "/", "%":
			if r == 0 {
				return nil, diag.Dev("division by zero in constant expression at %s", op.Pos)
			}
			if op.Value == "/" {
				return constant.NewInt(t, wrapInt(t, l/r)), nil
			}
			return constant.NewInt(t, wrapInt(t, l%r)), nil
		}
		return nil, diag.Dev("unknown binary operator %q at %s", op.Value, op.Pos)

	case *types.FloatType:
		a, aok := x.(*constant.Float)
		b, bok := y.(*constant.Float)
		if !aok || !bok {
			break
		}
		l, _ := a.X.Float64()
		r, _ := b.X.Float64()
		switch op.Value {
		case "<":
			return constant.NewBool(l < r), nil
		case ">":
			return constant.NewBool(l > r), nil
		case "<=":
			return constant.NewBool(l <= r), nil
		case ">=":
			return constant.NewBool(l >= r), nil
		case "==":
			return constant.NewBool(l == r), nil
		case "!=":
			return constant.NewBool(l != r), nil
		case "+":
			return constant.NewFloat(t, roundFloat(t, l+r)), nil
		case "-":
			return constant.NewFloat(t, roundFloat(t, l-r)), nil
		case "*":
			return constant.NewFloat(t, roundFloat(t, l*r)), nil
		case "/":
			return constant.NewFloat(t, roundFloat(t, l/r)), nil
		case "%":
			return constant.NewFloat(t, roundFloat(t, math.Mod(l, r))), nil
		}
		return nil, diag.Dev("unknown binary operator %q at %s", op.Value, op.Pos)
	}
	return nil, diag.Dev("operator %s at %s cannot fold %s and %s", op.Value, op.Pos, x.Type(), y.Type())
}

// foldCast converts a plain integer or float constant to another scalar
// type. It reports false for constants it cannot evaluate.
func foldCast(c constant.Constant, to types.Type) (constant.Constant, bool) {
	switch t := to.(type) {
	case *types.IntType:
		switch x := c.(type) {
		case *constant.Int:
			return constant.NewInt(t, wrapInt(t, intOf(x))), true
		case *constant.Float:
			i, _ := x.X.Int64()
			return constant.NewInt(t, wrapInt(t, i)), true
		}
	case *types.FloatType:
		switch x := c.(type) {
		case *constant.Int:
			return constant.NewFloat(t, roundFloat(t, float64(intOf(x)))), true
		case *constant.Float:
			f, _ := x.X.Float64()
			return constant.NewFloat(t, roundFloat(t, f)), true
		}
	}
	return nil, false
}

// intOf reads an integer constant as a signed value of its own width.
// Booleans read as 0 or 1.
func intOf(x *constant.Int) int64 {
	return wrapInt(x.Typ, x.X.Int64())
}

// wrapInt truncates v to the width of t, sign-extending the result. An i1
// keeps only its low bit.
func wrapInt(t *types.IntType, v int64) int64 {
	switch {
	case t.BitSize == 1:
		return v & 1
	case t.BitSize >= 64:
		return v
	}
	shift := 64 - t.BitSize
	return v << shift >> shift
}

func roundFloat(t *types.FloatType, f float64) float64 {
	if t.Kind == types.FloatKindFloat {
		return float64(float32(f))
	}
	return f
}
