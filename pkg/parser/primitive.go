package parser

import (
	"strconv"
	"unicode"

	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/kartiknair/tinyc/pkg/token"
)

var dataTypes = map[token.TokenType]ast.DataType{
	token.TINT:      ast.Integer,
	token.TBOOL:     ast.Boolean,
	token.TDOUBLE:   ast.Double,
	token.TFLOAT:    ast.Float,
	token.TCHAR:     ast.Char,
	token.TVOID:     ast.Void,
	token.TSIGNED:   ast.Sign,
	token.TUNSIGNED: ast.Unsign,
	token.TLONG:     ast.Long,
}

// parsePrimitive turns a literal token into a Literal node. String and char
// literals keep their quotes so later stages can tell them from numbers.
func (p *Parser) parsePrimitive() (*ast.Node, error) {
	t := p.peek(0)

	var text string
	switch t.Type {
	case token.NUMBER:
		text = t.Lexeme
	case token.STRING:
		text = strconv.Quote(t.Lexeme)
	case token.CHAR:
		r := []rune(t.Lexeme)
		if len(r) != 1 || r[0] > unicode.MaxASCII {
			return nil, diag.Syntax(t.Pos, "character literal must be a single ASCII character")
		}
		text = strconv.QuoteRune(r[0])
	case token.TRUE:
		text = "true"
	case token.FALSE:
		text = "false"
	default:
		return nil, p.errorAt(t, "expect literal")
	}

	p.advance()
	return ast.NewLiteral(text).At(t.Pos), nil
}

// parseIdentifier yields an Identifier, or an Assignment when the name is
// followed by `=`.
func (p *Parser) parseIdentifier() (*ast.Node, error) {
	id, err := p.parseName()
	if err != nil {
		return nil, err
	}

	if p.check(token.EQUAL) {
		return p.parseAssignment(id)
	}
	return id, nil
}

// parseName parses a plain identifier or a qualified `Enum.Variant`
// reference, which is kept as a single dotted Identifier.
func (p *Parser) parseName() (*ast.Node, error) {
	name, err := p.expect(token.IDENTIFIER, "expect identifier")
	if err != nil {
		return nil, err
	}
	id := ast.NewIdentifier(name.Lexeme).At(name.Pos)
	if p.check(token.DOT) && p.peek(1).Type == token.IDENTIFIER {
		p.advance()
		id.Value += "." + p.advance().Lexeme
	}
	return id, nil
}

// parseAssignment parses the value after `=` and an optional `;`.
func (p *Parser) parseAssignment(target *ast.Node) (*ast.Node, error) {
	eq, err := p.expect(token.EQUAL, "expect `=` in assignment")
	if err != nil {
		return nil, err
	}

	value, err := p.parseBinaryExpression()
	if err != nil {
		return nil, err
	}
	if value.Kind == ast.Assignment {
		return nil, diag.Syntax(eq.Pos, "expect expression after `=`, not an assignment")
	}
	p.skip(token.SEMICOLON)

	return ast.New(ast.Assignment, target, value).At(target.Pos), nil
}

func (p *Parser) parseType() (*ast.Node, error) {
	t := p.peek(0)
	dt, ok := dataTypes[t.Type]
	if !ok {
		return nil, p.errorAt(t, "expect type")
	}
	p.advance()
	return ast.NewType(dt).At(t.Pos), nil
}

// parseProtectedKeyword handles `break;`, `continue;` and `return [expr];`.
func (p *Parser) parseProtectedKeyword() (*ast.Node, error) {
	t := p.advance()

	switch t.Type {
	case token.BREAK:
		if _, err := p.expect(token.SEMICOLON, "expect `;` after `break`"); err != nil {
			return nil, err
		}
		return ast.New(ast.Break).At(t.Pos), nil

	case token.CONTINUE:
		if _, err := p.expect(token.SEMICOLON, "expect `;` after `continue`"); err != nil {
			return nil, err
		}
		return ast.New(ast.Continue).At(t.Pos), nil

	case token.RETURN:
		ret := ast.New(ast.Return).At(t.Pos)
		if p.skip(token.SEMICOLON) {
			return ret, nil
		}
		value, err := p.parseBinaryExpression()
		if err != nil {
			return nil, err
		}
		ret.Add(ast.New(ast.AssignedValue, value).At(value.Pos))
		if _, err := p.expect(token.SEMICOLON, "expect `;` after return value"); err != nil {
			return nil, err
		}
		return ret, nil
	}

	return nil, p.errorAt(t, "expect `break`, `continue` or `return`")
}
