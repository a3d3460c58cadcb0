package llvmgen

import (
	"fmt"

	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

func lowerType(n *ast.Node) (types.Type, error) {
	if n.Kind != ast.Type {
		return nil, diag.Dev("expected a type at %s, found %s", n.Pos, n.Kind)
	}

	switch n.DataType {
	case ast.Integer, ast.Long:
		return types.I64, nil
	case ast.Boolean:
		return types.I1, nil
	case ast.Float:
		return types.Float, nil
	case ast.Double:
		return types.Double, nil
	case ast.Char:
		return types.I8, nil
	case ast.Void:
		return types.Void, nil
	}
	return nil, diag.Dev("unsupported data type %s at %s", n.DataType, n.Pos)
}

func isInt(t types.Type) bool {
	_, ok := t.(*types.IntType)
	return ok
}

func isFloat(t types.Type) bool {
	_, ok := t.(*types.FloatType)
	return ok
}

func floatRank(t *types.FloatType) int {
	if t.Kind == types.FloatKindDouble {
		return 2
	}
	return 1
}

// commonType picks the type both operands of a binary operator convert to.
// Floats win over integers and the wider type wins otherwise. Arithmetic
// promotes narrow integers (bool, char) to i64.
func commonType(x, y types.Type, arithmetic bool) (types.Type, error) {
	switch {
	case isFloat(x) && isFloat(y):
		if floatRank(y.(*types.FloatType)) > floatRank(x.(*types.FloatType)) {
			return y, nil
		}
		return x, nil
	case isFloat(x) && isInt(y):
		return x, nil
	case isInt(x) && isFloat(y):
		return y, nil
	case isInt(x) && isInt(y):
		wide := x.(*types.IntType)
		if other := y.(*types.IntType); other.BitSize > wide.BitSize {
			wide = other
		}
		if arithmetic && wide.BitSize < 64 {
			return types.I64, nil
		}
		return wide, nil
	}
	return nil, fmt.Errorf("unsupported operand types %s and %s", x, y)
}

type cast int

const (
	castNone cast = iota
	castSExt
	castZExt
	castTrunc
	castSIToFP
	castUIToFP
	castFPToSI
	castFPExt
	castFPTrunc
)

// castFor selects the conversion from one scalar type to another. Booleans
// widen with zero extension so true stays 1.
func castFor(from, to types.Type) (cast, error) {
	if from.Equal(to) {
		return castNone, nil
	}

	switch f := from.(type) {
	case *types.IntType:
		switch t := to.(type) {
		case *types.IntType:
			switch {
			case f.BitSize > t.BitSize:
				return castTrunc, nil
			case f.BitSize == 1:
				return castZExt, nil
			default:
				return castSExt, nil
			}
		case *types.FloatType:
			if f.BitSize == 1 {
				return castUIToFP, nil
			}
			return castSIToFP, nil
		}
	case *types.FloatType:
		switch t := to.(type) {
		case *types.IntType:
			return castFPToSI, nil
		case *types.FloatType:
			if floatRank(f) < floatRank(t) {
				return castFPExt, nil
			}
			return castFPTrunc, nil
		}
	}
	return castNone, diag.Dev("cannot convert %s to %s", from, to)
}

// coerce converts v to type to in the current block.
func (g *Generator) coerce(v value.Value, to types.Type) (value.Value, error) {
	c, err := castFor(v.Type(), to)
	if err != nil {
		return nil, err
	}

	b := g.block
	switch c {
	case castSExt:
		return b.NewSExt(v, to), nil
	case castZExt:
		return b.NewZExt(v, to), nil
	case castTrunc:
		return b.NewTrunc(v, to), nil
	case castSIToFP:
		return b.NewSIToFP(v, to), nil
	case castUIToFP:
		return b.NewUIToFP(v, to), nil
	case castFPToSI:
		return b.NewFPToSI(v, to), nil
	case castFPExt:
		return b.NewFPExt(v, to), nil
	case castFPTrunc:
		return b.NewFPTrunc(v, to), nil
	}
	return v, nil
}

// coerceConstant is coerce for global initializers, which cannot hold
// instructions. Plain numbers are converted in place; other constants get a
// constant cast expression.
func coerceConstant(c constant.Constant, to types.Type) (constant.Constant, error) {
	kind, err := castFor(c.Type(), to)
	if err != nil {
		return nil, err
	}
	if kind == castNone {
		return c, nil
	}
	if folded, ok := foldCast(c, to); ok {
		return folded, nil
	}

	switch kind {
	case castSExt:
		return constant.NewSExt(c, to), nil
	case castZExt:
		return constant.NewZExt(c, to), nil
	case castTrunc:
		return constant.NewTrunc(c, to), nil
	case castSIToFP:
		return constant.NewSIToFP(c, to), nil
	case castUIToFP:
		return constant.NewUIToFP(c, to), nil
	case castFPToSI:
		return constant.NewFPToSI(c, to), nil
	case castFPExt:
		return constant.NewFPExt(c, to), nil
	case castFPTrunc:
		return constant.NewFPTrunc(c, to), nil
	}
	return c, nil
}
