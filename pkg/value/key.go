package value

import "strconv"

// PropertyKey is a table key: a string name or a symbol. Numeric keys are
// canonicalised to their string form, as the source language does.
type PropertyKey struct {
	name string
	sym  *Symbol
}

// Key constructs a string-named PropertyKey.
func Key(name string) PropertyKey { return PropertyKey{name: name} }

// SymbolKey constructs a symbol-named PropertyKey.
func SymbolKey(s *Symbol) PropertyKey { return PropertyKey{sym: s} }

// IndexKey constructs the key of a 0-based array index.
func IndexKey(i int) PropertyKey { return PropertyKey{name: strconv.Itoa(i)} }

func (k PropertyKey) IsSymbol() bool  { return k.sym != nil }
func (k PropertyKey) Name() string    { return k.name }
func (k PropertyKey) Symbol() *Symbol { return k.sym }

func (k PropertyKey) String() string {
	if k.sym != nil {
		return "[" + k.sym.String() + "]"
	}
	return k.name
}

// Value returns the key as a source value (string or symbol).
func (k PropertyKey) Value() Value {
	if k.sym != nil {
		return k.sym.Value()
	}
	return String(k.name)
}

// ArrayIndex reports whether the key is a canonical array index
// ("0", "1", ... without leading zeros) and returns it.
func (k PropertyKey) ArrayIndex() (int, bool) {
	if k.sym != nil {
		return 0, false
	}
	s := k.name
	if len(s) == 0 || len(s) > 10 {
		return 0, false
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n >= maxArrayLength {
		return 0, false
	}
	return n, true
}

// ToPropertyKey converts a value used in a computed member access.
func ToPropertyKey(v Value) PropertyKey {
	if v.kind == KindSymbol {
		return PropertyKey{sym: v.sym}
	}
	return PropertyKey{name: ToString(v)}
}

const maxArrayLength = 1<<32 - 1
