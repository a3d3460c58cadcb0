// Package cgen prints an AST back out as C source. The output is meant for
// reading and for feeding a C compiler; everything except enum variants is
// printed in a form the tinyc parser reads back into the same tree.
package cgen

import (
	"fmt"
	"strings"

	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
)

const prelude = "#include <stdbool.h>\n\n"

// Gen emits a complete translation unit for tree, including the headers the
// output depends on.
func Gen(tree *ast.AST) (string, error) {
	body, err := Emit(tree.Root)
	if err != nil {
		return "", err
	}
	return prelude + body, nil
}

// Emit prints a single node. A TopLevelExpression prints every top-level
// declaration, each followed by a blank line.
func Emit(n *ast.Node) (string, error) {
	if n.Kind != ast.TopLevelExpression {
		return genStatement(n, 0)
	}

	var b strings.Builder
	for i, child := range n.Children {
		s, err := genStatement(child, 0)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func indent(depth int) string {
	return strings.Repeat("\t", depth)
}

func genType(n *ast.Node) (string, error) {
	if n == nil || n.Kind != ast.Type {
		return "", diag.Dev("expected a type, found %v", n)
	}
	return n.DataType.String(), nil
}

func genStatement(n *ast.Node, depth int) (string, error) {
	if !n.HasValidArity() {
		min, max := ast.Arity(n.Kind)
		return "", diag.Dev("malformed %s node at %s: %d children, want %d..%d", n.Kind, n.Pos, n.Len(), min, max)
	}

	switch n.Kind {
	case ast.FunctionDeclaration:
		return genFunctionDeclaration(n, depth)
	case ast.StructDeclaration:
		return genStructDeclaration(n, depth)
	case ast.EnumDeclaration:
		return genEnumDeclaration(n, depth)
	case ast.Initialization:
		s, err := genInitialization(n)
		if err != nil {
			return "", err
		}
		return indent(depth) + s + ";", nil
	case ast.Assignment:
		s, err := genAssignment(n)
		if err != nil {
			return "", err
		}
		return indent(depth) + s + ";", nil
	case ast.BlockExpression:
		s, err := genBlock(n, depth)
		if err != nil {
			return "", err
		}
		return indent(depth) + s, nil
	case ast.IfStatement:
		s, err := genIfStatement(n, depth)
		if err != nil {
			return "", err
		}
		return indent(depth) + s, nil
	case ast.WhileLoop:
		return genWhileLoop(n, depth)
	case ast.DoWhileLoop:
		return genDoWhileLoop(n, depth)
	case ast.ForLoop:
		return genForLoop(n, depth)
	case ast.SwitchStatement:
		return genSwitchStatement(n, depth)
	case ast.Break:
		return indent(depth) + "break;", nil
	case ast.Continue:
		return indent(depth) + "continue;", nil
	case ast.Return:
		if n.Len() == 0 {
			return indent(depth) + "return;", nil
		}
		v, err := genExpression(n.Child(0).Unwrap())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%sreturn %s;", indent(depth), v), nil
	case ast.Identifier, ast.Literal, ast.Variable, ast.BinaryExpression, ast.UnaryExpression:
		v, err := genExpression(n)
		if err != nil {
			return "", err
		}
		return indent(depth) + v + ";", nil
	}

	return "", diag.Dev("unexpected %s node at %s", n.Kind, n.Pos)
}

func genBlock(n *ast.Node, depth int) (string, error) {
	if n.Kind != ast.BlockExpression {
		return "", diag.Dev("expected a block at %s, found %s", n.Pos, n.Kind)
	}
	if n.Len() == 0 {
		return "{}", nil
	}

	var b strings.Builder
	b.WriteString("{\n")
	for _, child := range n.Children {
		s, err := genStatement(child, depth+1)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
		b.WriteByte('\n')
	}
	b.WriteString(indent(depth) + "}")
	return b.String(), nil
}

func genFunctionDeclaration(n *ast.Node, depth int) (string, error) {
	name, ok := n.Child(0).Name()
	if !ok {
		return "", diag.Dev("function at %s has no name", n.Pos)
	}
	last := n.Len() - 1

	ret, err := genType(n.Child(last - 1))
	if err != nil {
		return "", err
	}

	var params []string
	for _, p := range n.Children[1 : last-1] {
		if p.Kind != ast.Parameter {
			return "", diag.Dev("unexpected %s among parameters of %s", p.Kind, name)
		}
		paramName, _ := p.Child(0).Name()
		typ, err := genType(p.Child(1))
		if err != nil {
			return "", err
		}
		params = append(params, typ+" "+paramName)
	}
	if len(params) == 0 {
		params = []string{"void"}
	}

	body, err := genBlock(n.Child(last), depth)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"%s%s %s(%s) %s",
		indent(depth),
		ret,
		name,
		strings.Join(params, ", "),
		body,
	), nil
}

func genStructDeclaration(n *ast.Node, depth int) (string, error) {
	name, _ := n.Child(0).Name()

	membersString := ""
	for _, f := range n.Children[1:] {
		if f.Kind != ast.Field {
			return "", diag.Dev("unexpected %s in struct %s", f.Kind, name)
		}
		typ, err := genType(f.Child(1))
		if err != nil {
			return "", err
		}
		membersString += fmt.Sprintf("%s%s %s;\n", indent(depth+1), typ, f.Child(0).Value)
	}

	return fmt.Sprintf("%sstruct %s {\n%s%s};", indent(depth), name, membersString, indent(depth)), nil
}

// genEnumDeclaration prefixes every variant with the enum name, matching how
// `Color.Red` references are printed.
func genEnumDeclaration(n *ast.Node, depth int) (string, error) {
	name, _ := n.Child(0).Name()

	var variants []string
	for _, v := range n.Children[1:] {
		variant, ok := v.Child(0).Name()
		if v.Kind != ast.Variant || !ok {
			return "", diag.Dev("malformed variant in enum %s at %s", name, v.Pos)
		}
		variants = append(variants, name+"_"+variant)
	}

	return fmt.Sprintf("%senum %s { %s };", indent(depth), name, strings.Join(variants, ", ")), nil
}

// genInitialization prints `type name [= value]` without the terminator so
// it also serves as a for-loop initializer. Untyped declarations print as
// int.
func genInitialization(n *ast.Node) (string, error) {
	head := n.Child(0)
	name, ok := head.Name()
	if !ok {
		return "", diag.Dev("initialization at %s does not name a variable", n.Pos)
	}

	var typ, val *ast.Node
	if head.Kind == ast.Variable {
		typ = head.Child(1)
	}
	for _, child := range n.Children[1:] {
		if child.Kind == ast.Type {
			typ = child
		} else {
			val = child
		}
	}

	t := ast.Integer.String()
	if typ != nil {
		var err error
		if t, err = genType(typ); err != nil {
			return "", err
		}
	}

	if val == nil {
		return fmt.Sprintf("%s %s", t, name), nil
	}
	v, err := genExpression(val.Unwrap())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s = %s", t, name, v), nil
}

func genAssignment(n *ast.Node) (string, error) {
	name, ok := n.Child(0).Name()
	if !ok {
		return "", diag.Dev("assignment at %s has %s as its target", n.Pos, n.Child(0).Kind)
	}
	v, err := genExpression(n.Child(1).Unwrap())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %s", cName(name), v), nil
}

// genCondition prints the expression inside a Condition. An empty condition
// is always true.
func genCondition(n *ast.Node) (string, error) {
	if n == nil || (n.Kind == ast.Condition && n.Len() == 0) {
		return "true", nil
	}
	return genExpression(n.Unwrap())
}

func genIfStatement(n *ast.Node, depth int) (string, error) {
	cond, err := genCondition(n.Child(0))
	if err != nil {
		return "", err
	}
	then, err := genBlock(n.Child(1), depth)
	if err != nil {
		return "", err
	}
	s := fmt.Sprintf("if (%s) %s", cond, then)

	switch alt := n.Child(2); {
	case alt == nil:
		return s, nil
	case alt.Kind == ast.IfStatement:
		elif, err := genIfStatement(alt, depth)
		if err != nil {
			return "", err
		}
		return s + " else " + elif, nil
	default:
		otherwise, err := genBlock(alt, depth)
		if err != nil {
			return "", err
		}
		return s + " else " + otherwise, nil
	}
}

// loopParts finds the clauses of a loop by kind since any of them may be
// missing.
func loopParts(n *ast.Node) map[ast.Kind]*ast.Node {
	found := make(map[ast.Kind]*ast.Node, n.Len())
	for _, child := range n.Children {
		found[child.Kind] = child
	}
	return found
}

func loopBody(p map[ast.Kind]*ast.Node, depth int) (string, error) {
	body := p[ast.BlockExpression]
	if body == nil {
		return "{}", nil
	}
	return genBlock(body, depth)
}

func genWhileLoop(n *ast.Node, depth int) (string, error) {
	p := loopParts(n)
	cond, err := genCondition(p[ast.Condition])
	if err != nil {
		return "", err
	}
	body, err := loopBody(p, depth)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%swhile (%s) %s", indent(depth), cond, body), nil
}

func genDoWhileLoop(n *ast.Node, depth int) (string, error) {
	p := loopParts(n)
	body, err := loopBody(p, depth)
	if err != nil {
		return "", err
	}
	cond, err := genCondition(p[ast.Condition])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%sdo %s while (%s);", indent(depth), body, cond), nil
}

// genClause prints a for-loop header clause. Empty clauses print nothing.
func genClause(n *ast.Node) (string, error) {
	if n == nil || n.Len() == 0 {
		return "", nil
	}
	inner := n.Unwrap()
	switch inner.Kind {
	case ast.Initialization:
		return genInitialization(inner)
	case ast.Assignment:
		return genAssignment(inner)
	}
	return genExpression(inner)
}

func genForLoop(n *ast.Node, depth int) (string, error) {
	p := loopParts(n)

	init, err := genClause(p[ast.LoopInitializer])
	if err != nil {
		return "", err
	}
	cond, err := genClause(p[ast.Condition])
	if err != nil {
		return "", err
	}
	inc, err := genClause(p[ast.LoopIncrement])
	if err != nil {
		return "", err
	}
	body, err := loopBody(p, depth)
	if err != nil {
		return "", err
	}

	header := init + ";"
	if cond != "" {
		header += " " + cond
	}
	header += ";"
	if inc != "" {
		header += " " + inc
	}
	return fmt.Sprintf("%sfor (%s) %s", indent(depth), header, body), nil
}

func genSwitchStatement(n *ast.Node, depth int) (string, error) {
	scrutinee, err := genExpression(n.Child(0).Unwrap())
	if err != nil {
		return "", err
	}
	arms := n.Child(1)
	if arms.Kind != ast.BlockExpression {
		return "", diag.Dev("switch at %s has %s instead of a block of arms", n.Pos, arms.Kind)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%sswitch (%s) {\n", indent(depth), scrutinee)
	for _, arm := range arms.Children {
		switch arm.Kind {
		case ast.Case:
			v, err := genExpression(arm.Child(0))
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%scase %s:\n", indent(depth), v)
		case ast.Default:
			fmt.Fprintf(&b, "%sdefault:\n", indent(depth))
		default:
			return "", diag.Dev("unexpected %s in switch at %s", arm.Kind, arm.Pos)
		}

		for _, stmt := range arm.Child(arm.Len() - 1).Children {
			s, err := genStatement(stmt, depth+1)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
			b.WriteByte('\n')
		}
	}
	b.WriteString(indent(depth) + "}")
	return b.String(), nil
}

// cName maps a qualified enum reference `Color.Red` to its C constant.
func cName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

func genExpression(n *ast.Node) (string, error) {
	switch n.Kind {
	case ast.Literal:
		return n.Value, nil
	case ast.Identifier, ast.Variable:
		name, ok := n.Name()
		if !ok {
			return "", diag.Dev("%s at %s does not name a variable", n.Kind, n.Pos)
		}
		return cName(name), nil
	case ast.BinaryExpression:
		return genBinaryExpression(n)
	case ast.UnaryExpression:
		return genUnaryExpression(n)
	case ast.AssignedValue, ast.Condition:
		return genExpression(n.Unwrap())
	}

	return "", diag.Dev("%s at %s is not an expression", n.Kind, n.Pos)
}

// genOperand parenthesizes compound operands. The tree already encodes
// precedence, so parentheses only have to keep it.
func genOperand(n *ast.Node) (string, error) {
	s, err := genExpression(n)
	if err != nil {
		return "", err
	}
	if n.Kind == ast.BinaryExpression || n.Kind == ast.UnaryExpression {
		return "(" + s + ")", nil
	}
	return s, nil
}

func genBinaryExpression(n *ast.Node) (string, error) {
	if !n.HasValidArity() || n.Child(1).Kind != ast.Operator {
		return "", diag.Dev("malformed binary expression at %s", n.Pos)
	}
	lhs, err := genOperand(n.Child(0))
	if err != nil {
		return "", err
	}
	rhs, err := genOperand(n.Child(2))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", lhs, n.Child(1).Value, rhs), nil
}

func genUnaryExpression(n *ast.Node) (string, error) {
	if !n.HasValidArity() || n.Child(0).Kind != ast.Operator {
		return "", diag.Dev("malformed unary expression at %s", n.Pos)
	}
	operand, err := genOperand(n.Child(1))
	if err != nil {
		return "", err
	}
	return n.Child(0).Value + operand, nil
}
