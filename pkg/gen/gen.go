// Package gen runs a module through the front end and one of the backends.
package gen

import (
	"github.com/kartiknair/tinyc/pkg/ast"
	cgen "github.com/kartiknair/tinyc/pkg/gen/c"
	llvmgen "github.com/kartiknair/tinyc/pkg/gen/llvm"
	"github.com/kartiknair/tinyc/pkg/lexer"
	"github.com/kartiknair/tinyc/pkg/parser"
)

// Parse lexes and parses m unless it already carries a tree.
func Parse(m *ast.Module) error {
	if m.AST != nil {
		return nil
	}
	if err := lexer.Lex(m); err != nil {
		return err
	}
	return parser.ParseModule(m)
}

// LLVM returns the textual IR for m.
func LLVM(m *ast.Module, opts llvmgen.Options) (string, error) {
	if err := Parse(m); err != nil {
		return "", err
	}
	if opts.SourceFilename == "" {
		opts.SourceFilename = m.Path
	}
	module, err := llvmgen.Gen(m.AST, opts)
	if err != nil {
		return "", err
	}
	return module.String(), nil
}

// C returns m printed back out as C source.
func C(m *ast.Module) (string, error) {
	if err := Parse(m); err != nil {
		return "", err
	}
	return cgen.Gen(m.AST)
}
