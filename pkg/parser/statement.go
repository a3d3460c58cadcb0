package parser

import (
	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/kartiknair/tinyc/pkg/token"
)

// parseBlock parses `{ … }` into a BlockExpression. Stray semicolons inside
// the braces are skipped.
func (p *Parser) parseBlock() (*ast.Node, error) {
	open, err := p.expect(token.LEFT_BRACE, "expect `{` to open block")
	if err != nil {
		return nil, err
	}

	block := ast.New(ast.BlockExpression).At(open.Pos)
	for {
		switch p.peek(0).Type {
		case token.RIGHT_BRACE:
			p.advance()
			return block, nil
		case token.SEMICOLON:
			p.advance()
			continue
		case token.EOF:
			return nil, diag.Syntax(open.Pos, "unclosed block, expect `}`")
		}

		node, err := p.step()
		if err != nil {
			return nil, err
		}
		if node != nil {
			block.Add(node)
		}
	}
}

// parseCondition parses `( expr )` into Condition[expr].
func (p *Parser) parseCondition() (*ast.Node, error) {
	open, err := p.expect(token.LEFT_PAREN, "expect `(` before condition")
	if err != nil {
		return nil, err
	}
	expr, err := p.parseBinaryExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RIGHT_PAREN, "expect `)` after condition"); err != nil {
		return nil, err
	}
	return ast.New(ast.Condition, expr).At(open.Pos), nil
}

// parseInitialization parses `type name [= value];`. A `(` after the name
// makes it a function declaration instead.
func (p *Parser) parseInitialization() (*ast.Node, error) {
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENTIFIER, "expect variable name after type")
	if err != nil {
		return nil, err
	}
	id := ast.NewIdentifier(name.Lexeme).At(name.Pos)

	if p.check(token.LEFT_PAREN) {
		return p.parseFunctionDeclaration(typ, id)
	}

	init := ast.New(ast.Initialization,
		ast.New(ast.Variable, id, typ).At(name.Pos),
	).At(typ.Pos)

	if p.skip(token.EQUAL) {
		value, err := p.parseBinaryExpression()
		if err != nil {
			return nil, err
		}
		init.Add(ast.New(ast.AssignedValue, value).At(value.Pos))
	}
	p.skip(token.SEMICOLON)

	return init, nil
}

// parseIfStatement parses `if (c) {…} [else {…} | else if …]` into
// IfStatement[Condition, Block, (Block | IfStatement)?].
func (p *Parser) parseIfStatement() (*ast.Node, error) {
	t, err := p.expect(token.IF, "expect `if`")
	if err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := ast.New(ast.IfStatement, cond, then).At(t.Pos)

	if !p.skip(token.ELSE) {
		return stmt, nil
	}

	var otherwise *ast.Node
	if p.check(token.IF) {
		otherwise, err = p.parseIfStatement()
	} else {
		otherwise, err = p.parseBlock()
	}
	if err != nil {
		return nil, err
	}
	stmt.Add(otherwise)
	return stmt, nil
}

func (p *Parser) parseWhileLoop() (*ast.Node, error) {
	t, err := p.expect(token.WHILE, "expect `while`")
	if err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.New(ast.WhileLoop, cond, body).At(t.Pos), nil
}

// parseDoWhileLoop parses `do {…} while (c);` into DoWhileLoop[Block,
// Condition].
func (p *Parser) parseDoWhileLoop() (*ast.Node, error) {
	t, err := p.expect(token.DO, "expect `do`")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.WHILE, "expect `while` after do block"); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "expect `;` after do-while condition"); err != nil {
		return nil, err
	}
	return ast.New(ast.DoWhileLoop, body, cond).At(t.Pos), nil
}

// parseForLoop parses the counted loop header
//
//	for ([type] i = 0; i < n; i = i + 1) { … }
//
// into ForLoop[LoopInitializer, Condition, LoopIncrement, Block]. Any of
// the three clauses may be left empty, which yields an empty wrapper.
func (p *Parser) parseForLoop() (*ast.Node, error) {
	t, err := p.expect(token.FOR, "expect `for`")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LEFT_PAREN, "expect `(` after `for`"); err != nil {
		return nil, err
	}

	init, err := p.parseLoopInitializer()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "expect `;` after loop initializer"); err != nil {
		return nil, err
	}

	cond, err := p.parseLoopCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "expect `;` after loop condition"); err != nil {
		return nil, err
	}

	inc, err := p.parseLoopIncrement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RIGHT_PAREN, "expect `)` after loop increment"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.New(ast.ForLoop, init, cond, inc, body).At(t.Pos), nil
}

// parseLoopInitializer parses `[type] id = number`. With a type the loop
// variable is declared (Initialization); without one it is assigned.
func (p *Parser) parseLoopInitializer() (*ast.Node, error) {
	start := p.peek(0)
	wrapper := ast.New(ast.LoopInitializer).At(start.Pos)
	if start.Type == token.SEMICOLON {
		return wrapper, nil
	}

	var typ *ast.Node
	if start.Type.IsTypeKeyword() {
		var err error
		if typ, err = p.parseType(); err != nil {
			return nil, err
		}
	}

	name, err := p.expect(token.IDENTIFIER, "expect loop variable in for initializer")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EQUAL, "expect `=` in for initializer"); err != nil {
		return nil, err
	}
	value, err := p.parseLoopNumber("expect number in for initializer")
	if err != nil {
		return nil, err
	}

	id := ast.NewIdentifier(name.Lexeme).At(name.Pos)
	if typ != nil {
		wrapper.Add(ast.New(ast.Initialization,
			ast.New(ast.Variable, id, typ).At(name.Pos),
			ast.New(ast.AssignedValue, value).At(value.Pos),
		).At(start.Pos))
	} else {
		wrapper.Add(ast.New(ast.Assignment, id, value).At(name.Pos))
	}
	return wrapper, nil
}

var loopComparisons = map[token.TokenType]bool{
	token.LESSER:        true,
	token.LESSER_EQUAL:  true,
	token.GREATER:       true,
	token.GREATER_EQUAL: true,
	token.BANG_EQUAL:    true,
}

// parseLoopCondition parses `id op (number | id)`.
func (p *Parser) parseLoopCondition() (*ast.Node, error) {
	start := p.peek(0)
	wrapper := ast.New(ast.Condition).At(start.Pos)
	if start.Type == token.SEMICOLON {
		return wrapper, nil
	}

	name, err := p.expect(token.IDENTIFIER, "expect loop variable in for condition")
	if err != nil {
		return nil, err
	}
	op := p.peek(0)
	if !loopComparisons[op.Type] {
		return nil, p.errorAt(op, "expect `<`, `<=`, `>`, `>=` or `!=` in for condition")
	}
	p.advance()

	var bound *ast.Node
	if p.check(token.IDENTIFIER) {
		b := p.advance()
		bound = ast.NewIdentifier(b.Lexeme).At(b.Pos)
	} else if bound, err = p.parseLoopNumber("expect number or identifier in for condition"); err != nil {
		return nil, err
	}

	wrapper.Add(ast.New(ast.BinaryExpression,
		ast.NewIdentifier(name.Lexeme).At(name.Pos),
		ast.NewOperator(op.Lexeme).At(op.Pos),
		bound,
	).At(name.Pos))
	return wrapper, nil
}

// parseLoopIncrement parses `id = id (+|-) number`.
func (p *Parser) parseLoopIncrement() (*ast.Node, error) {
	start := p.peek(0)
	wrapper := ast.New(ast.LoopIncrement).At(start.Pos)
	if start.Type == token.RIGHT_PAREN {
		return wrapper, nil
	}

	target, err := p.expect(token.IDENTIFIER, "expect loop variable in for increment")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EQUAL, "expect `=` in for increment"); err != nil {
		return nil, err
	}
	source, err := p.expect(token.IDENTIFIER, "expect loop variable after `=` in for increment")
	if err != nil {
		return nil, err
	}
	op := p.peek(0)
	if op.Type != token.PLUS && op.Type != token.MINUS {
		return nil, p.errorAt(op, "expect `+` or `-` in for increment")
	}
	p.advance()
	step, err := p.parseLoopNumber("expect number in for increment")
	if err != nil {
		return nil, err
	}

	wrapper.Add(ast.New(ast.Assignment,
		ast.NewIdentifier(target.Lexeme).At(target.Pos),
		ast.New(ast.BinaryExpression,
			ast.NewIdentifier(source.Lexeme).At(source.Pos),
			ast.NewOperator(op.Lexeme).At(op.Pos),
			step,
		).At(source.Pos),
	).At(target.Pos))
	return wrapper, nil
}

// parseLoopNumber accepts a number with an optional leading minus.
func (p *Parser) parseLoopNumber(message string) (*ast.Node, error) {
	t := p.peek(0)
	negative := false
	if t.Type == token.MINUS && p.peek(1).Type == token.NUMBER {
		negative = true
		p.advance()
	}
	n, err := p.expect(token.NUMBER, message)
	if err != nil {
		return nil, err
	}
	text := n.Lexeme
	if negative {
		text = "-" + text
	}
	return ast.NewLiteral(text).At(t.Pos), nil
}

// parseSwitchStatement parses `switch (x) { case …: … default: … }` into
// SwitchStatement[scrutinee, BlockExpression[Case | Default …]].
func (p *Parser) parseSwitchStatement() (*ast.Node, error) {
	t, err := p.expect(token.SWITCH, "expect `switch`")
	if err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	open, err := p.expect(token.LEFT_BRACE, "expect `{` after switch condition")
	if err != nil {
		return nil, err
	}

	arms := ast.New(ast.BlockExpression).At(open.Pos)
	seenDefault := false
	for {
		next := p.peek(0)
		switch next.Type {
		case token.CASE:
			arm, err := p.parseCase()
			if err != nil {
				return nil, err
			}
			arms.Add(arm)
		case token.DEFAULT:
			if seenDefault {
				return nil, diag.Syntax(next.Pos, "duplicate `default` in switch")
			}
			seenDefault = true
			arm, err := p.parseDefault()
			if err != nil {
				return nil, err
			}
			arms.Add(arm)
		case token.RIGHT_BRACE:
			p.advance()
			return ast.New(ast.SwitchStatement, cond.Unwrap(), arms).At(t.Pos), nil
		case token.EOF:
			return nil, diag.Syntax(open.Pos, "unclosed switch, expect `}`")
		default:
			return nil, p.errorAt(next, "expect `case`, `default` or `}` in switch")
		}
	}
}

// parseCase parses `case value: statements…` up to the next arm or the
// closing brace of the switch.
func (p *Parser) parseCase() (*ast.Node, error) {
	t, err := p.expect(token.CASE, "expect `case`")
	if err != nil {
		return nil, err
	}

	var value *ast.Node
	switch p.peek(0).Type {
	case token.IDENTIFIER:
		value, err = p.parseName()
	case token.CHAR:
		value, err = p.parsePrimitive()
	default:
		value, err = p.parseLoopNumber("expect number, character or identifier after `case`")
	}
	if err != nil {
		return nil, err
	}

	colon, err := p.expect(token.COLON, "expect `:` after case value")
	if err != nil {
		return nil, err
	}
	body, err := p.parseArmBody(colon)
	if err != nil {
		return nil, err
	}
	return ast.New(ast.Case, value, body).At(t.Pos), nil
}

func (p *Parser) parseDefault() (*ast.Node, error) {
	t, err := p.expect(token.DEFAULT, "expect `default`")
	if err != nil {
		return nil, err
	}
	colon, err := p.expect(token.COLON, "expect `:` after `default`")
	if err != nil {
		return nil, err
	}
	body, err := p.parseArmBody(colon)
	if err != nil {
		return nil, err
	}
	return ast.New(ast.Default, body).At(t.Pos), nil
}

func (p *Parser) parseArmBody(colon token.Token) (*ast.Node, error) {
	body := ast.New(ast.BlockExpression).At(colon.Pos)
	for {
		switch p.peek(0).Type {
		case token.CASE, token.DEFAULT, token.RIGHT_BRACE:
			return body, nil
		case token.SEMICOLON:
			p.advance()
			continue
		case token.EOF:
			return nil, diag.Syntax(colon.Pos, "unclosed switch arm, expect `}`")
		}

		node, err := p.step()
		if err != nil {
			return nil, err
		}
		if node != nil {
			body.Add(node)
		}
	}
}
