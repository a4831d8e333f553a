package multi

import (
	"testing"

	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

func TestUnpackRanges(t *testing.T) {
	arr := value.ArrayOf(value.Int(10), value.Int(20), value.Int(30))
	tests := []struct {
		from int
		to   []int
		want string
		n    int
	}{
		{1, nil, "10,20,30", 3},
		{2, nil, "20,30", 2},
		{2, []int{5}, "20,30,,", 4},
		{3, []int{2}, "", 0},
		{0, []int{1}, "10", 1},
	}
	for _, tt := range tests {
		m, err := Unpack(arr, tt.from, tt.to...)
		if err != nil {
			t.Fatal(err)
		}
		if m.Len() != tt.n || value.ToString(m.ToArray()) != tt.want {
			t.Errorf("Unpack(%d, %v) = %d slots %q, want %d %q", tt.from, tt.to, m.Len(), value.ToString(m.ToArray()), tt.n, tt.want)
		}
	}
}

func TestFirstSlotCollapse(t *testing.T) {
	m := Pack(value.Int(1), value.Int(2))
	if m.First() != value.Int(1) || Pack().First() != value.Undefined {
		t.Errorf("First mismatch")
	}
	w := Wrap(m)
	if !IsMulti(w) || IsMulti(m.ToArray()) {
		t.Errorf("arrays and multi-values must stay distinguishable")
	}
	if Collapse(w) != value.Int(1) || Collapse(value.Int(5)) != value.Int(5) {
		t.Errorf("Collapse mismatch")
	}
}

func TestCallReturnsAllSlots(t *testing.T) {
	two := value.Func("two", func(value.Value, []value.Value) (value.Value, error) {
		return Wrap(Pack(value.String("a"), value.String("b"))), nil
	})
	one := value.Func("one", func(value.Value, []value.Value) (value.Value, error) {
		return value.ArrayOf(value.Int(1), value.Int(2)), nil
	})
	m, err := Call(two, value.Undefined)
	if err != nil || m.Len() != 2 || m.At(1) != value.String("b") {
		t.Errorf("Call(two) = %v, %v", m.Slice(), err)
	}
	m, err = Call(one, value.Undefined)
	if err != nil || m.Len() != 1 || !m.First().IsArray() {
		t.Errorf("an array return is one slot, got %d", m.Len())
	}
}

func TestSpread(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"abc", []string{"a", "b", "c"}},
		{"a😀", []string{"a", "\uFFFD", "\uFFFD"}},
		{"h😀!", []string{"h", "\uFFFD", "\uFFFD", "!"}},
	}
	for _, tt := range tests {
		m, err := Spread(value.String(tt.in))
		if err != nil {
			t.Fatalf("Spread(%q): %v", tt.in, err)
		}
		if m.Len() != len(tt.want) {
			t.Errorf("Spread(%q).Len() = %d, want %d", tt.in, m.Len(), len(tt.want))
			continue
		}
		for i, w := range tt.want {
			if got := m.At(i); got != value.String(w) {
				t.Errorf("Spread(%q).At(%d) = %s, want %q", tt.in, i, value.Inspect(got), w)
			}
		}
	}
	if _, err := Spread(value.Undefined); errors.KindOf(err) != "TypeError" {
		t.Errorf("Spread(undefined): got %v", err)
	}
	inner := Pack(value.Int(1))
	if m, _ := Spread(Wrap(inner)); m.Len() != 1 {
		t.Errorf("spreading a wrapped multi-value should yield its slots")
	}
}

func TestSparseKeepsDeclaredLength(t *testing.T) {
	s := SparseNew(value.Int(1), Absent, value.Undefined, Absent)
	if s.Len() != 4 || s.Count() != 2 {
		t.Errorf("Len=%d Count=%d, want 4 2", s.Len(), s.Count())
	}
	if s.Has(1) || !s.Has(2) || s.Has(9) {
		t.Errorf("presence mismatch")
	}
	SparsePush(s, value.Int(5))
	m := SparseSpread(s)
	if m.Len() != 5 || m.At(4) != value.Int(5) || m.At(3) != value.Undefined {
		t.Errorf("spread = %v", m.Slice())
	}
}
