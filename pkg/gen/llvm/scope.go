package llvmgen

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// symbol is what a name resolves to: storage (an alloca, a spilled parameter
// or a global) with the type stored behind it, or a constant for enum
// variants.
type symbol struct {
	ptr  value.Value
	elem types.Type

	constant constant.Constant
}

type scope struct {
	symbols   map[string]*symbol
	enclosing *scope
}

func newScope(enclosing *scope) *scope {
	return &scope{
		symbols:   make(map[string]*symbol),
		enclosing: enclosing,
	}
}

func (s *scope) get(name string) (*symbol, bool) {
	for ; s != nil; s = s.enclosing {
		if sym, ok := s.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// declare binds name in this scope. Redeclaring within the same scope
// replaces the earlier binding; a binding in an enclosing scope is shadowed.
func (s *scope) declare(name string, sym *symbol) {
	s.symbols[name] = sym
}

func (g *Generator) pushScope() {
	g.scope = newScope(g.scope)
}

func (g *Generator) popScope() {
	if g.scope.enclosing != nil {
		g.scope = g.scope.enclosing
	}
}
