package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/kartiknair/tinyc/pkg/ast"
)

// Reporter formats errors against the module they came from.
type Reporter struct {
	Module *ast.Module
}

func NewReporter(m *ast.Module) *Reporter {
	return &Reporter{Module: m}
}

// Format renders err for a terminal. Syntax errors get a source excerpt with a
// caret, developer errors get a plain header asking for a bug report.
func (r *Reporter) Format(err error) string {
	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	var syntaxErrs SyntaxErrors
	var syntaxErr SyntaxError
	var devErr *DevError

	switch {
	case errors.As(err, &syntaxErrs):
	case errors.As(err, &syntaxErr):
		syntaxErrs = SyntaxErrors{syntaxErr}
	case errors.As(err, &devErr):
		return fmt.Sprintf("%s: %s\n%s\n",
			yellow("internal compiler error"),
			bold(devErr.Message),
			dim("this is a bug in tinyc, not in your program"))
	default:
		return fmt.Sprintf("%s: %s\n", red("error"), err.Error())
	}

	var b strings.Builder
	for _, e := range syntaxErrs {
		path := ""
		if r.Module != nil {
			path = r.Module.Path
		}
		fmt.Fprintf(&b, "%s: %s\n", red("syntax error"), bold(e.Message))
		fmt.Fprintf(&b, "  %s %s:%d:%d\n", dim("-->"), path, e.Pos.Line, e.Pos.Column)
		if r.Module != nil {
			if excerpt := r.Module.SourceContext(e.Pos); excerpt != "" {
				b.WriteString(excerpt)
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}
