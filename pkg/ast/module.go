package ast

import (
	"fmt"
	"strings"

	"github.com/kartiknair/tinyc/pkg/token"
)

// Module is one compilation unit as it moves through the pipeline: the lexer
// fills Tokens, the parser fills AST.
type Module struct {
	Path   string
	Source string
	Tokens []token.Token
	AST    *AST
}

func NewModule(path, source string) *Module {
	return &Module{Path: path, Source: source}
}

// SourceContext renders the line at pos with its neighbours and a caret under
// the offending column:
//
//	   3 | int x = ;
//	     |         ^
func (m *Module) SourceContext(pos token.Pos) string {
	source := strings.ReplaceAll(m.Source, "\r\n", "\n")
	sourceLines := strings.Split(source, "\n")
	numLines := len(sourceLines)

	if pos.Line < 1 || pos.Line > numLines {
		return ""
	}

	line := sourceLines[pos.Line-1]
	column := pos.Column
	if column < 1 {
		column = 1
	}
	if column > len(line)+1 {
		column = len(line) + 1
	}

	offsetHighlight := make([]byte, column)
	for i := 0; i < column-1; i++ {
		if line[i] == '\t' {
			offsetHighlight[i] = '\t'
		} else {
			offsetHighlight[i] = ' '
		}
	}
	offsetHighlight[column-1] = '^'

	var b strings.Builder
	if pos.Line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", pos.Line-1, sourceLines[pos.Line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", pos.Line, line)
	fmt.Fprintf(&b, "     | %s", string(offsetHighlight))
	if pos.Line < numLines && strings.TrimSpace(sourceLines[pos.Line]) != "" {
		fmt.Fprintf(&b, "\n%4d | %s", pos.Line+1, sourceLines[pos.Line])
	}
	return b.String()
}
