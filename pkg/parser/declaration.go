package parser

import (
	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/token"
)

// parseFunctionDeclaration continues after `type name` when a `(` follows.
// The result is FunctionDeclaration[Identifier, Parameter…, Type, Block].
func (p *Parser) parseFunctionDeclaration(returnType, name *ast.Node) (*ast.Node, error) {
	if _, err := p.expect(token.LEFT_PAREN, "expect `(` after function name"); err != nil {
		return nil, err
	}

	fn := ast.New(ast.FunctionDeclaration, name).At(returnType.Pos)

	// `f(void)` declares no parameters.
	if p.check(token.TVOID) && p.peek(1).Type == token.RIGHT_PAREN {
		p.advance()
	}

	if !p.check(token.RIGHT_PAREN) {
		for {
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			paramName, err := p.expect(token.IDENTIFIER, "expect name for function parameter")
			if err != nil {
				return nil, err
			}
			fn.Add(ast.New(ast.Parameter,
				ast.NewIdentifier(paramName.Lexeme).At(paramName.Pos),
				typ,
			).At(typ.Pos))

			if !p.skip(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(token.RIGHT_PAREN, "missing closing `)` after parameter list"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Add(returnType, body)
	return fn, nil
}

// parseStructDeclaration parses
//
//	struct Point { x: int, y: int }
//
// Fields may also be written C style (`int x;`). Separators are `,` or `;`.
func (p *Parser) parseStructDeclaration() (*ast.Node, error) {
	t, err := p.expect(token.STRUCT, "expect `struct`")
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENTIFIER, "expect struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LEFT_BRACE, "expect `{` after name in struct declaration"); err != nil {
		return nil, err
	}

	decl := ast.New(ast.StructDeclaration, ast.NewIdentifier(name.Lexeme).At(name.Pos)).At(t.Pos)
	for !p.check(token.RIGHT_BRACE) {
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		decl.Add(field)

		if !p.skip(token.COMMA) && !p.skip(token.SEMICOLON) {
			break
		}
	}
	if _, err := p.expect(token.RIGHT_BRACE, "expect `}` after struct fields"); err != nil {
		return nil, err
	}
	p.skip(token.SEMICOLON)

	return decl, nil
}

func (p *Parser) parseField() (*ast.Node, error) {
	start := p.peek(0)

	if start.Type.IsTypeKeyword() {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		name, err := p.expect(token.IDENTIFIER, "expect field name after type")
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Field, ast.NewLiteral(name.Lexeme).At(name.Pos), typ).At(start.Pos), nil
	}

	name, err := p.expect(token.IDENTIFIER, "expect field name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON, "expect `:` after field name"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return ast.New(ast.Field, ast.NewLiteral(name.Lexeme).At(name.Pos), typ).At(start.Pos), nil
}

// parseEnumDeclaration parses `enum Color { Red, Green, Blue }`.
func (p *Parser) parseEnumDeclaration() (*ast.Node, error) {
	t, err := p.expect(token.ENUM, "expect `enum`")
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENTIFIER, "expect enum name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LEFT_BRACE, "expect `{` after name in enum declaration"); err != nil {
		return nil, err
	}

	decl := ast.New(ast.EnumDeclaration, ast.NewIdentifier(name.Lexeme).At(name.Pos)).At(t.Pos)
	for !p.check(token.RIGHT_BRACE) {
		variant, err := p.expect(token.IDENTIFIER, "expect variant name")
		if err != nil {
			return nil, err
		}
		decl.Add(ast.New(ast.Variant, ast.NewIdentifier(variant.Lexeme).At(variant.Pos)).At(variant.Pos))

		if !p.skip(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RIGHT_BRACE, "expect `}` after enum variants"); err != nil {
		return nil, err
	}
	p.skip(token.SEMICOLON)

	return decl, nil
}
