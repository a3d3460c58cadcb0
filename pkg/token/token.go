package token

import "fmt"

type TokenType int

const (
	NUMBER TokenType = iota
	IDENTIFIER
	STRING
	CHAR
	EOF

	keyword_begin
	IF
	ELSE
	FOR
	WHILE
	DO
	SWITCH
	CASE
	DEFAULT
	BREAK
	CONTINUE
	RETURN
	STRUCT
	ENUM
	TRUE
	FALSE
	CONST
	keyword_end

	type_begin
	TINT
	TBOOL
	TDOUBLE
	TFLOAT
	TCHAR
	TVOID
	TSIGNED
	TUNSIGNED
	TLONG
	type_end

	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	LEFT_BRACKET
	RIGHT_BRACKET
	COMMA
	DOT
	COLON
	SEMICOLON
	ARROW
	QUESTION

	EQUAL
	PLUS_PLUS
	MINUS_MINUS
	BANG
	TILDE
	AND
	OR
	CARET
	AND_AND
	OR_OR

	binaryop_begin
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT

	LESSER
	GREATER
	LESSER_EQUAL
	GREATER_EQUAL
	EQUAL_EQUAL
	BANG_EQUAL
	binaryop_end
)

// IsBinaryOperator reports whether t can appear between two operands of a
// precedence-climbing expression.
func (t TokenType) IsBinaryOperator() bool {
	return t > binaryop_begin && t < binaryop_end
}

func (t TokenType) IsComparativeOperator() bool {
	return t >= LESSER && t <= BANG_EQUAL
}

func (t TokenType) IsKeyword() bool {
	return t > keyword_begin && t < keyword_end
}

// IsTypeKeyword reports whether t starts a declaration (`int x`, `void f()`).
func (t TokenType) IsTypeKeyword() bool {
	return t > type_begin && t < type_end
}

func (t TokenType) String() string {
	if name, ok := names[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

type Token struct {
	Lexeme string
	Type   TokenType
	Pos    Pos
}

func (t Token) String() string {
	switch t.Type {
	case NUMBER, IDENTIFIER:
		return fmt.Sprintf("%s(%s)", t.Type, t.Lexeme)
	case STRING:
		return fmt.Sprintf("%s(%q)", t.Type, t.Lexeme)
	case CHAR:
		return fmt.Sprintf("%s('%s')", t.Type, t.Lexeme)
	}
	return t.Type.String()
}

type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Keywords maps reserved words to their token type. Anything else matching
// the identifier pattern is an IDENTIFIER.
var Keywords = map[string]TokenType{
	"if":       IF,
	"else":     ELSE,
	"for":      FOR,
	"while":    WHILE,
	"do":       DO,
	"switch":   SWITCH,
	"case":     CASE,
	"default":  DEFAULT,
	"break":    BREAK,
	"continue": CONTINUE,
	"return":   RETURN,
	"struct":   STRUCT,
	"enum":     ENUM,
	"true":     TRUE,
	"false":    FALSE,
	"const":    CONST,

	"int":      TINT,
	"bool":     TBOOL,
	"boolean":  TBOOL,
	"double":   TDOUBLE,
	"float":    TFLOAT,
	"char":     TCHAR,
	"void":     TVOID,
	"signed":   TSIGNED,
	"unsigned": TUNSIGNED,
	"long":     TLONG,
}

// Punctuation maps every fixed operator or delimiter spelling to its type.
var Punctuation = map[string]TokenType{
	"(":  LEFT_PAREN,
	")":  RIGHT_PAREN,
	"{":  LEFT_BRACE,
	"}":  RIGHT_BRACE,
	"[":  LEFT_BRACKET,
	"]":  RIGHT_BRACKET,
	",":  COMMA,
	".":  DOT,
	":":  COLON,
	";":  SEMICOLON,
	"->": ARROW,
	"?":  QUESTION,
	"=":  EQUAL,
	"++": PLUS_PLUS,
	"--": MINUS_MINUS,
	"!":  BANG,
	"~":  TILDE,
	"&":  AND,
	"|":  OR,
	"^":  CARET,
	"&&": AND_AND,
	"||": OR_OR,
	"+":  PLUS,
	"-":  MINUS,
	"*":  STAR,
	"/":  SLASH,
	"%":  PERCENT,
	"<":  LESSER,
	">":  GREATER,
	"<=": LESSER_EQUAL,
	">=": GREATER_EQUAL,
	"==": EQUAL_EQUAL,
	"!=": BANG_EQUAL,
}

var names = map[TokenType]string{
	NUMBER:     "NUMBER",
	IDENTIFIER: "IDENTIFIER",
	STRING:     "STRING",
	CHAR:       "CHAR",
	EOF:        "EOF",
}

func init() {
	for spelling, typ := range Keywords {
		if _, ok := names[typ]; !ok {
			names[typ] = spelling
		}
	}
	for spelling, typ := range Punctuation {
		names[typ] = spelling
	}
	// "bool" and "boolean" share a tag; keep the short spelling stable.
	names[TBOOL] = "bool"
}
