package lexer

import (
	"errors"
	"strconv"

	plexer "github.com/alecthomas/participle/v2/lexer"
	"github.com/kartiknair/tinyc/pkg/ast"
	"github.com/kartiknair/tinyc/pkg/diag"
	"github.com/kartiknair/tinyc/pkg/token"
)

// Rules are tried in order, so multi-character operators come before their
// one-character prefixes.
var definition = plexer.MustSimple([]plexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*([^*]|\*+[^*/])*\*+/`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Number", Pattern: `\d+(\.\d+)?`},
	{Name: "String", Pattern: `"(\\.|[^"\\\n])*"`},
	{Name: "Char", Pattern: `'(\\.|[^'\\\n])'`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `->|\+\+|--|&&|\|\||<=|>=|==|!=|[-+*/%<>=!~&|^(){}\[\],.:;?]`},
})

var symbols = definition.Symbols()

// Lex tokenizes m.Source into m.Tokens. The slice always ends in token.EOF.
func Lex(m *ast.Module) error {
	tokens, err := Tokenize(m.Path, m.Source)
	if err != nil {
		return err
	}
	m.Tokens = tokens
	return nil
}

// Tokenize is Lex without a module, handy for tests and the REPL-style
// playground.
func Tokenize(filename, source string) ([]token.Token, error) {
	l, err := definition.LexString(filename, source)
	if err != nil {
		return nil, diag.Syntax(token.Pos{}, "%s", err.Error())
	}

	raw, err := plexer.ConsumeAll(l)
	if err != nil {
		return nil, lexError(err)
	}

	tokens := make([]token.Token, 0, len(raw))
	for _, t := range raw {
		pos := token.Pos{Line: t.Pos.Line, Column: t.Pos.Column}

		if t.EOF() {
			tokens = append(tokens, token.Token{Type: token.EOF, Pos: pos})
			break
		}

		switch t.Type {
		case symbols["Comment"], symbols["Whitespace"]:
			// skipped.
		case symbols["Number"]:
			tokens = append(tokens, token.Token{Type: token.NUMBER, Lexeme: t.Value, Pos: pos})
		case symbols["String"]:
			value, err := strconv.Unquote(t.Value)
			if err != nil {
				return nil, diag.Syntax(pos, "invalid string literal %s", t.Value)
			}
			tokens = append(tokens, token.Token{Type: token.STRING, Lexeme: value, Pos: pos})
		case symbols["Char"]:
			value, err := strconv.Unquote(t.Value)
			if err != nil {
				return nil, diag.Syntax(pos, "invalid character literal %s", t.Value)
			}
			tokens = append(tokens, token.Token{Type: token.CHAR, Lexeme: value, Pos: pos})
		case symbols["Ident"]:
			typ, ok := token.Keywords[t.Value]
			if !ok {
				typ = token.IDENTIFIER
			}
			tokens = append(tokens, token.Token{Type: typ, Lexeme: t.Value, Pos: pos})
		case symbols["Punct"]:
			typ, ok := token.Punctuation[t.Value]
			if !ok {
				return nil, diag.Syntax(pos, "unexpected character %q", t.Value)
			}
			tokens = append(tokens, token.Token{Type: typ, Lexeme: t.Value, Pos: pos})
		default:
			return nil, diag.Syntax(pos, "unexpected input %q", t.Value)
		}
	}

	return tokens, nil
}

func lexError(err error) error {
	var lerr *plexer.Error
	if errors.As(err, &lerr) {
		return diag.Syntax(token.Pos{Line: lerr.Pos.Line, Column: lerr.Pos.Column}, "%s", lerr.Msg)
	}
	return diag.Syntax(token.Pos{}, "%s", err.Error())
}
