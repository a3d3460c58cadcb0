// Package diag holds the two error classes of the front end: syntax errors,
// which are the user's fault, and developer errors, which mean the parser or
// the lowering produced something it should not have.
package diag

import (
	"fmt"
	"strings"

	"github.com/kartiknair/tinyc/pkg/token"
)

type SyntaxError struct {
	Message string
	Pos     token.Pos
}

func (e SyntaxError) Error() string {
	if e.Pos.Line == 0 {
		return "syntax error: " + e.Message
	}
	return fmt.Sprintf("syntax error: %s: %s", e.Pos, e.Message)
}

// SyntaxErrors is never empty when returned as an error.
type SyntaxErrors []SyntaxError

func (errs SyntaxErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Syntax builds a single-element SyntaxErrors.
func Syntax(pos token.Pos, format string, args ...interface{}) SyntaxErrors {
	return SyntaxErrors{{Message: fmt.Sprintf(format, args...), Pos: pos}}
}

// DevError reports a violated AST shape or a misuse of the IR builder.
type DevError struct {
	Message string
}

func (e *DevError) Error() string {
	return "internal compiler error: " + e.Message
}

func Dev(format string, args ...interface{}) *DevError {
	return &DevError{Message: fmt.Sprintf(format, args...)}
}
