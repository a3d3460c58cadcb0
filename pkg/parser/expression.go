package parser

import (
	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/token"
)

// Binding tiers; higher binds tighter.
var precedence = map[token.TokenType]int{
	token.STAR:          3,
	token.SLASH:         3,
	token.PERCENT:       3,
	token.PLUS:          2,
	token.MINUS:         2,
	token.LESSER:        1,
	token.GREATER:       1,
	token.LESSER_EQUAL:  1,
	token.GREATER_EQUAL: 1,
	token.EQUAL_EQUAL:   0,
	token.BANG_EQUAL:    0,
}

func (p *Parser) parseBinaryExpression() (*ast.Node, error) {
	lhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	// `x = …` is a statement; the value already swallowed the rest.
	if lhs.Kind == ast.Assignment {
		return lhs, nil
	}
	return p.parseExpressionWithPrecedence(lhs, 0)
}

// parseExpressionWithPrecedence is precedence climbing: it keeps folding
// operators of tier >= minimum into lhs, parsing each right side with the
// next tier up so equal tiers associate to the left.
func (p *Parser) parseExpressionWithPrecedence(lhs *ast.Node, minimum int) (*ast.Node, error) {
	for {
		op := p.peek(0)
		tier, ok := precedence[op.Type]
		if !ok || tier < minimum {
			return lhs, nil
		}
		p.advance()

		rhs, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		if rhs.Kind == ast.Assignment {
			return nil, p.errorAt(op, "expect expression after operator, not an assignment")
		}

		for {
			next, ok := precedence[p.peek(0).Type]
			if !ok || next <= tier {
				break
			}
			rhs, err = p.parseExpressionWithPrecedence(rhs, tier+1)
			if err != nil {
				return nil, err
			}
		}

		lhs = ast.New(ast.BinaryExpression,
			lhs,
			ast.NewOperator(op.Lexeme).At(op.Pos),
			rhs,
		).At(lhs.Pos)
	}
}

// parseOperand parses the operand of a binary operator: a primitive, an
// identifier (or assignment), a unary expression or a parenthesized one.
func (p *Parser) parseOperand() (*ast.Node, error) {
	t := p.peek(0)

	switch t.Type {
	case token.NUMBER, token.STRING, token.CHAR, token.TRUE, token.FALSE:
		return p.parsePrimitive()
	case token.IDENTIFIER:
		return p.parseIdentifier()
	case token.MINUS, token.BANG, token.PLUS_PLUS, token.MINUS_MINUS:
		return p.parseUnaryExpression()
	case token.LEFT_PAREN:
		return p.parseParenthesized()
	}

	return nil, p.errorAt(t, "expect expression")
}

func (p *Parser) parseParenthesized() (*ast.Node, error) {
	if _, err := p.expect(token.LEFT_PAREN, "expect `(`"); err != nil {
		return nil, err
	}
	inner, err := p.parseBinaryExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RIGHT_PAREN, "expect `)` to close parenthesized expression"); err != nil {
		return nil, err
	}
	return inner, nil
}

// parseUnaryExpression handles `-x` and `!x` as UnaryExpression[Operator,
// operand]. Prefix `++x` and `--x` desugar to `x = x + 1` and `x = x - 1`.
func (p *Parser) parseUnaryExpression() (*ast.Node, error) {
	op := p.advance()

	switch op.Type {
	case token.MINUS, token.BANG:
		operand, err := p.parseUnaryOperand()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.UnaryExpression,
			ast.NewOperator(op.Lexeme).At(op.Pos),
			operand,
		).At(op.Pos), nil

	case token.PLUS_PLUS, token.MINUS_MINUS:
		name, err := p.expect(token.IDENTIFIER, "expect variable name after `"+op.Lexeme+"`")
		if err != nil {
			return nil, err
		}
		symbol := "+"
		if op.Type == token.MINUS_MINUS {
			symbol = "-"
		}
		p.skip(token.SEMICOLON)
		return ast.New(ast.Assignment,
			ast.NewIdentifier(name.Lexeme).At(name.Pos),
			ast.New(ast.BinaryExpression,
				ast.NewIdentifier(name.Lexeme).At(name.Pos),
				ast.NewOperator(symbol).At(op.Pos),
				ast.NewLiteral("1").At(op.Pos),
			).At(op.Pos),
		).At(op.Pos), nil
	}

	return nil, p.errorAt(op, "expect unary operator")
}

func (p *Parser) parseUnaryOperand() (*ast.Node, error) {
	t := p.peek(0)

	switch t.Type {
	case token.NUMBER, token.TRUE, token.FALSE, token.CHAR:
		return p.parsePrimitive()
	case token.IDENTIFIER:
		return p.parseName()
	case token.MINUS, token.BANG:
		return p.parseUnaryExpression()
	case token.LEFT_PAREN:
		return p.parseParenthesized()
	}

	return nil, p.errorAt(t, "expect operand after unary operator")
}
