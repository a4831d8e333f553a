package value

// Symbol is a unique property key with an optional description. Identity is
// pointer identity.
type Symbol struct {
	description string
	hasDesc     bool
}

// NewSymbol creates a fresh symbol with a description.
func NewSymbol(description string) *Symbol {
	return &Symbol{description: description, hasDesc: true}
}

// NewAnonymousSymbol creates a fresh symbol whose description is undefined.
func NewAnonymousSymbol() *Symbol {
	return &Symbol{}
}

// Description returns the description and whether one was given.
func (s *Symbol) Description() (string, bool) { return s.description, s.hasDesc }

func (s *Symbol) String() string { return "Symbol(" + s.description + ")" }

// Value wraps the symbol as a source value.
func (s *Symbol) Value() Value { return Value{kind: KindSymbol, sym: s} }

// Well-known symbols. They are created once and never mutated.
var (
	SymbolIterator      = NewSymbol("Symbol.iterator")
	SymbolAsyncIterator = NewSymbol("Symbol.asyncIterator")
	SymbolHasInstance   = NewSymbol("Symbol.hasInstance")
	SymbolToStringTag   = NewSymbol("Symbol.toStringTag")
)
