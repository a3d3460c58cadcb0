package parser

import (
	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/kartiknair/tinyc/pkg/token"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("tinyc.parser")

// Parser is a recursive-descent parser over a token slice with a single
// forward cursor and one token of lookahead.
type Parser struct {
	tokens  []token.Token
	current int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse builds the AST for a whole token stream. The first syntax error aborts
// parsing.
func Parse(tokens []token.Token) (*ast.AST, error) {
	p := New(tokens)

	root := ast.New(ast.TopLevelExpression)
	for !p.atEnd() {
		node, err := p.step()
		if err != nil {
			return nil, err
		}
		if node != nil {
			root.Add(node)
		}
	}

	log.Debugf("parsed %d top-level nodes from %d tokens", root.Len(), len(tokens))
	return ast.NewAST(root), nil
}

// ParseModule parses m.Tokens into m.AST.
func ParseModule(m *ast.Module) error {
	tree, err := Parse(m.Tokens)
	if err != nil {
		return err
	}
	m.AST = tree
	return nil
}

// step runs the dispatcher once and guarantees progress: when nothing was
// recognized and the cursor did not move, the offending token is skipped.
func (p *Parser) step() (*ast.Node, error) {
	start := p.current
	node, err := p.dispatch()
	if err != nil {
		return nil, err
	}
	if node == nil && p.current == start {
		p.advance()
	}
	return node, nil
}

func (p *Parser) atEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Type == token.EOF
}

// peek returns the token distance positions ahead of the cursor. Past the end
// of the slice it returns a synthetic EOF positioned after the last token.
func (p *Parser) peek(distance int) token.Token {
	i := p.current + distance
	if i >= 0 && i < len(p.tokens) {
		return p.tokens[i]
	}
	eof := token.Token{Type: token.EOF}
	if len(p.tokens) > 0 {
		eof.Pos = p.tokens[len(p.tokens)-1].Pos
	}
	return eof
}

func (p *Parser) check(typ token.TokenType) bool {
	return p.peek(0).Type == typ
}

func (p *Parser) advance() token.Token {
	t := p.peek(0)
	if p.current < len(p.tokens) {
		p.current++
	}
	return t
}

// expect consumes the current token when it has type typ; otherwise it
// reports message at the current token.
func (p *Parser) expect(typ token.TokenType, message string) (token.Token, error) {
	if !p.check(typ) {
		return token.Token{}, p.errorAt(p.peek(0), message)
	}
	return p.advance(), nil
}

// skip consumes the current token if it has type typ.
func (p *Parser) skip(typ token.TokenType) bool {
	if p.check(typ) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorAt(t token.Token, message string) diag.SyntaxErrors {
	if t.Type == token.EOF {
		return diag.Syntax(t.Pos, "%s, found end of input", message)
	}
	return diag.Syntax(t.Pos, "%s, found '%s'", message, t.Type)
}

// dispatch inspects the current token without consuming it and routes to
// exactly one construct parser. It returns (nil, nil) when the position
// yields no node: a stray `;` (skipped) or an unmatched `}` (consumed).
func (p *Parser) dispatch() (*ast.Node, error) {
	t := p.peek(0)

	switch {
	case t.Type == token.EOF:
		return nil, nil
	case t.Type == token.SEMICOLON:
		p.advance()
		return nil, nil
	case t.Type == token.LEFT_BRACE:
		return p.parseBlock()
	case t.Type == token.RIGHT_BRACE:
		p.advance()
		return nil, nil

	case t.Type == token.NUMBER || t.Type == token.STRING || t.Type == token.CHAR ||
		t.Type == token.TRUE || t.Type == token.FALSE:
		// Literals start an expression so `1 + 2` and `'a' + 1` are one
		// tree; the left operand still comes from parsePrimitive.
		return p.parseBinaryExpression()
	case t.Type == token.IDENTIFIER:
		return p.parseBinaryExpression()
	case t.Type == token.MINUS || t.Type == token.BANG:
		return p.parseBinaryExpression()
	case t.Type == token.PLUS_PLUS || t.Type == token.MINUS_MINUS:
		return p.parseUnaryExpression()
	case t.Type == token.LEFT_PAREN:
		return p.parseBinaryExpression()

	case t.Type == token.IF:
		return p.parseIfStatement()
	case t.Type == token.FOR:
		return p.parseForLoop()
	case t.Type == token.WHILE:
		return p.parseWhileLoop()
	case t.Type == token.DO:
		return p.parseDoWhileLoop()
	case t.Type == token.SWITCH:
		return p.parseSwitchStatement()
	case t.Type == token.CASE:
		return p.parseCase()
	case t.Type == token.DEFAULT:
		return p.parseDefault()

	case t.Type == token.STRUCT:
		return p.parseStructDeclaration()
	case t.Type == token.ENUM:
		return p.parseEnumDeclaration()

	case t.Type == token.BREAK || t.Type == token.CONTINUE || t.Type == token.RETURN:
		return p.parseProtectedKeyword()

	case t.Type.IsTypeKeyword():
		return p.parseInitialization()

	case t.Type.IsBinaryOperator():
		return p.parseBinaryExpression()
	}

	return nil, diag.Syntax(t.Pos, "unexpected token '%s'", t.Type)
}
