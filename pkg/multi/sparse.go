package multi

import "github.com/nooga/tsrt/pkg/value"

// Sparse is an argument list whose declared length is tracked apart from
// its present slots, so trailing absent arguments are still counted.
type Sparse struct {
	slots   []value.Value
	present []bool
	length  int
}

// Absent marks a slot that was never supplied. It is distinct from an
// explicit undefined argument.
var Absent = value.NewSymbol("absent").Value()

// SparseNew records values, counting Absent slots in the declared length.
func SparseNew(vals ...value.Value) *Sparse {
	s := &Sparse{}
	SparsePush(s, vals...)
	return s
}

// SparsePush appends slots to s.
func SparsePush(s *Sparse, vals ...value.Value) {
	for _, v := range vals {
		if v == Absent {
			s.slots = append(s.slots, value.Undefined)
			s.present = append(s.present, false)
		} else {
			s.slots = append(s.slots, v)
			s.present = append(s.present, true)
		}
	}
	s.length += len(vals)
}

// SparseSpread expands s into exactly Len() slots.
func SparseSpread(s *Sparse) Values {
	out := make([]value.Value, s.length)
	copy(out, s.slots)
	return Values{vals: out}
}

// Len is the declared length, absent slots included.
func (s *Sparse) Len() int { return s.length }

// Count is the number of present slots.
func (s *Sparse) Count() int {
	n := 0
	for _, p := range s.present {
		if p {
			n++
		}
	}
	return n
}

// Has reports whether slot i (0-based) was supplied.
func (s *Sparse) Has(i int) bool {
	return i >= 0 && i < len(s.present) && s.present[i]
}

// At returns slot i, Undefined when absent.
func (s *Sparse) At(i int) value.Value {
	if !s.Has(i) {
		return value.Undefined
	}
	return s.slots[i]
}
