package container

import (
	"math"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

func nums(ns ...float64) value.Value {
	out := make([]value.Value, len(ns))
	for i, n := range ns {
		out[i] = value.Number(n)
	}
	return value.NewArray(out).Value()
}

func render(v value.Value) string { return value.ToString(v) }

func keysOf(t *testing.T, it value.Value) string {
	t.Helper()
	vals, err := value.Collect(it)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = value.ToString(v)
	}
	return strings.Join(parts, ",")
}

func TestMapInsertionOrder(t *testing.T) {
	m, _ := NewMap(value.Undefined)
	MapSet(m, value.String("b"), value.Int(1))
	MapSet(m, value.String("a"), value.Int(2))
	MapSet(m, value.String("c"), value.Int(3))
	MapSet(m, value.String("b"), value.Int(4))
	if got := keysOf(t, MapKeys(m)); got != "b,a,c" {
		t.Errorf("keys = %q, want b,a,c", got)
	}
	MapDelete(m, value.String("b"))
	MapSet(m, value.String("b"), value.Int(5))
	if got := keysOf(t, MapKeys(m)); got != "a,c,b" {
		t.Errorf("keys after reinsert = %q, want a,c,b", got)
	}
	if MapSize(m) != 3 {
		t.Errorf("size = %d, want 3", MapSize(m))
	}
}

func TestMapSameValueZeroKeys(t *testing.T) {
	m, _ := NewMap(value.Undefined)
	MapSet(m, value.NaN, value.String("nan"))
	MapSet(m, value.Number(math.Copysign(0, -1)), value.String("zero"))
	if got := MapGet(m, value.Number(math.NaN())); got != value.String("nan") {
		t.Errorf("NaN lookup = %s", value.Inspect(got))
	}
	if got := MapGet(m, value.Int(0)); got != value.String("zero") {
		t.Errorf("+0 lookup = %s", value.Inspect(got))
	}
	if MapHas(m, value.String("0")) {
		t.Errorf("string key must not match number key")
	}
	k, err := value.Collect(MapKeys(m))
	if err != nil {
		t.Fatal(err)
	}
	if !k[0].IsNaN() {
		t.Errorf("stored NaN key came back as %s", value.Inspect(k[0]))
	}
	if math.Signbit(k[1].AsNumber()) {
		t.Errorf("-0 key should be stored as +0")
	}
}

func TestMapIterationSeesLiveChanges(t *testing.T) {
	m, _ := NewMap(value.Undefined)
	MapSet(m, value.Int(1), value.Undefined)
	MapSet(m, value.Int(2), value.Undefined)
	MapSet(m, value.Int(3), value.Undefined)
	it := m.Iterator()
	var seen []string
	for {
		e, ok, err := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		k, _ := value.Get(e, value.IndexKey(0))
		seen = append(seen, value.ToString(k))
		switch k.AsNumber() {
		case 1:
			MapDelete(m, value.Int(2))
			MapSet(m, value.Int(4), value.Undefined)
		}
	}
	if got := strings.Join(seen, ","); got != "1,3,4" {
		t.Errorf("visited %q, want 1,3,4", got)
	}
}

func TestMapClearDuringIteration(t *testing.T) {
	m, _ := NewMap(value.Undefined)
	MapSet(m, value.Int(1), value.Undefined)
	MapSet(m, value.Int(2), value.Undefined)
	it := MapKeys(m)
	first, err := value.CallMethod(it, "next")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := value.GetString(first, "value"); v != value.Int(1) {
		t.Fatalf("first = %s", value.Inspect(v))
	}
	MapClear(m)
	MapSet(m, value.Int(9), value.Undefined)
	if got := keysOf(t, it); got != "9" {
		t.Errorf("after clear iterator produced %q, want 9", got)
	}
}

func TestMapDeleteChurnStaysBounded(t *testing.T) {
	m, _ := NewMap(value.Undefined)
	MapSet(m, value.String("keep"), value.Int(0))
	for i := 0; i < 100000; i++ {
		MapSet(m, value.Int(i), value.Int(i))
		MapDelete(m, value.Int(i))
	}
	if n := len(m.t.entries); n > 2*minCompact {
		t.Errorf("backing slice holds %d slots for %d live entries", n, MapSize(m))
	}
	if got := MapGet(m, value.String("keep")); got != value.Int(0) {
		t.Errorf("live entry lost: %s", value.Inspect(got))
	}
	MapSet(m, value.String("last"), value.Int(1))
	if got := keysOf(t, MapKeys(m)); got != "keep,last" {
		t.Errorf("keys = %q, want keep,last", got)
	}
}

func TestIteratorSurvivesCompaction(t *testing.T) {
	s, _ := NewSet(value.Undefined)
	for i := 0; i < 100; i++ {
		SetAdd(s, value.Int(i))
	}
	it := SetValues(s)
	var seen []string
	next := func() bool {
		r, err := value.CallMethod(it, "next")
		if err != nil {
			t.Fatal(err)
		}
		if done, _ := value.GetString(r, "done"); value.ToBoolean(done) {
			return false
		}
		v, _ := value.GetString(r, "value")
		seen = append(seen, value.ToString(v))
		return true
	}
	for i := 0; i < 3; i++ {
		next()
	}
	// Drop everything but the tail so the table compacts under the cursor.
	for i := 0; i < 97; i++ {
		SetDelete(s, value.Int(i))
	}
	if n := len(s.t.entries); n != 3 {
		t.Fatalf("backing slice holds %d slots, want 3 after compaction", n)
	}
	SetAdd(s, value.Int(100))
	for next() {
	}
	if got := strings.Join(seen, ","); got != "0,1,2,97,98,99,100" {
		t.Errorf("visited %q, want 0,1,2,97,98,99,100", got)
	}
}

func TestMethodTablesDispatch(t *testing.T) {
	m, _ := NewMap(value.Undefined)
	if _, err := value.CallMethod(m.Value(), "set", value.String("k"), value.Int(7)); err != nil {
		t.Fatal(err)
	}
	if got, err := value.CallMethod(m.Value(), "get", value.String("k")); err != nil || got != value.Int(7) {
		t.Errorf("map.get = %s, %v", value.Inspect(got), err)
	}
	if size, _ := value.GetString(m.Value(), "size"); size != value.Int(1) {
		t.Errorf("map.size = %s", value.Inspect(size))
	}

	s, _ := NewSet(value.Undefined)
	value.CallMethod(s.Value(), "add", value.String("x"))
	if got, _ := value.CallMethod(s.Value(), "has", value.String("x")); got != value.True {
		t.Errorf("set.has = %s", value.Inspect(got))
	}

	k := value.NewObject().Value()
	wm := NewWeakMap()
	value.CallMethod(wm.Value(), "set", k, value.Int(1))
	if got, _ := value.CallMethod(wm.Value(), "get", k); got != value.Int(1) {
		t.Errorf("weakmap.get = %s", value.Inspect(got))
	}
	ws := NewWeakSet()
	value.CallMethod(ws.Value(), "add", k)
	if got, _ := value.CallMethod(ws.Value(), "has", k); got != value.True {
		t.Errorf("weakset.has = %s", value.Inspect(got))
	}
}

func TestMapFromEntriesAndGroupBy(t *testing.T) {
	entries := value.ArrayOf(value.ArrayOf(value.String("x"), value.Int(1)), value.ArrayOf(value.String("y"), value.Int(2)))
	m, err := NewMap(entries)
	if err != nil {
		t.Fatal(err)
	}
	if got := MapGet(m, value.String("y")); got != value.Int(2) {
		t.Errorf("y = %s", value.Inspect(got))
	}
	if _, err := NewMap(value.ArrayOf(value.Int(1))); errors.KindOf(err) != "TypeError" {
		t.Errorf("non-entry: got %v, want TypeError", err)
	}

	parity := value.Func("parity", func(_ value.Value, args []value.Value) (value.Value, error) {
		if int(args[0].AsNumber())%2 == 0 {
			return value.String("even"), nil
		}
		return value.String("odd"), nil
	})
	g, err := MapGroupBy(nums(1, 2, 3, 4, 5), parity)
	if err != nil {
		t.Fatal(err)
	}
	if got := render(MapGet(g, value.String("odd"))); got != "1,3,5" {
		t.Errorf("odd = %q", got)
	}
	if got := keysOf(t, MapKeys(g)); got != "odd,even" {
		t.Errorf("group order = %q", got)
	}
}

func TestSet(t *testing.T) {
	s, err := NewSet(nums(3, 1, 3, 2, 1))
	if err != nil {
		t.Fatal(err)
	}
	if SetSize(s) != 3 {
		t.Errorf("size = %d, want 3", SetSize(s))
	}
	if got := keysOf(t, SetValues(s)); got != "3,1,2" {
		t.Errorf("values = %q", got)
	}
	SetAdd(s, value.NaN)
	if !SetHas(s, value.Number(math.NaN())) {
		t.Errorf("NaN not found")
	}
	if !SetDelete(s, value.Int(1)) || SetDelete(s, value.Int(1)) {
		t.Errorf("delete should report presence once")
	}
	obj := s.Value()
	if got := value.ToString(obj); got != "[object Set]" {
		t.Errorf("ToString = %q", got)
	}
	size, err := value.GetString(obj, "size")
	if err != nil || size != value.Int(3) {
		t.Errorf("size getter = %s, %v", value.Inspect(size), err)
	}
}

//go:noinline
func addTransientKey(m *WeakMap) {
	k := value.NewObject().Value()
	if _, err := WeakMapSet(m, k, value.String("payload")); err != nil {
		panic(err)
	}
}

func TestWeakMapDropsCollectedKeys(t *testing.T) {
	m := NewWeakMap()
	keep := value.NewObject().Value()
	if _, err := WeakMapSet(m, keep, value.Int(1)); err != nil {
		t.Fatal(err)
	}
	addTransientKey(m)
	if m.Len() != 2 {
		t.Fatalf("len = %d, want 2", m.Len())
	}
	deadline := time.Now().Add(5 * time.Second)
	for m.Len() > 1 && time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	if m.Len() != 1 {
		t.Errorf("len = %d after GC, want 1", m.Len())
	}
	if got := WeakMapGet(m, keep); got != value.Int(1) {
		t.Errorf("live key lost its value: %s", value.Inspect(got))
	}
	runtime.KeepAlive(keep)
}

func TestWeakKeysMustBeObjects(t *testing.T) {
	m := NewWeakMap()
	if _, err := WeakMapSet(m, value.String("k"), value.Int(1)); errors.KindOf(err) != "TypeError" {
		t.Errorf("string key: got %v, want TypeError", err)
	}
	if WeakMapHas(m, value.Int(1)) || WeakMapGet(m, value.Int(1)) != value.Undefined {
		t.Errorf("primitive lookups should miss")
	}
	s := NewWeakSet()
	if _, err := WeakSetAdd(s, value.Null); errors.KindOf(err) != "TypeError" {
		t.Errorf("null member: got %v, want TypeError", err)
	}
	k := value.NewObject().Value()
	WeakSetAdd(s, k)
	if !WeakSetHas(s, k) || !WeakSetDelete(s, k) || WeakSetHas(s, k) {
		t.Errorf("add/has/delete sequence failed")
	}
}

func TestArraySlice(t *testing.T) {
	a := nums(1, 2, 3)
	tests := []struct {
		start, end value.Value
		want       string
	}{
		{value.Int(-2), value.Undefined, "2,3"},
		{value.Int(10), value.Undefined, ""},
		{value.Undefined, value.Undefined, "1,2,3"},
		{value.Int(1), value.Int(-1), "2"},
		{value.Int(2), value.Int(1), ""},
		{value.Number(math.Inf(-1)), value.Number(math.Inf(1)), "1,2,3"},
		{value.String("1"), value.NaN, ""},
	}
	for _, tt := range tests {
		got, err := ArraySlice(a, tt.start, tt.end)
		if err != nil {
			t.Fatal(err)
		}
		if render(got) != tt.want {
			t.Errorf("slice(%s, %s) = %q, want %q", value.Inspect(tt.start), value.Inspect(tt.end), render(got), tt.want)
		}
	}
	if _, err := ArraySlice(value.String("abc"), value.Undefined, value.Undefined); errors.KindOf(err) != "TypeError" {
		t.Errorf("non-array receiver: got %v", err)
	}
}

func TestArraySplice(t *testing.T) {
	tests := []struct {
		args          []value.Value
		removed, left string
	}{
		{nil, "", "1,2,3,4"},
		{[]value.Value{value.Int(1)}, "2,3,4", "1"},
		{[]value.Value{value.Int(-2), value.Int(1)}, "3", "1,2,4"},
		{[]value.Value{value.Int(1), value.Int(0), value.Int(9)}, "", "1,9,2,3,4"},
		{[]value.Value{value.Int(1), value.Undefined}, "", "1,2,3,4"},
		{[]value.Value{value.Int(2), value.Int(99), value.Int(7)}, "3,4", "1,2,7"},
	}
	for _, tt := range tests {
		a := nums(1, 2, 3, 4)
		removed, err := ArraySplice(a, tt.args...)
		if err != nil {
			t.Fatal(err)
		}
		if render(removed) != tt.removed || render(a) != tt.left {
			t.Errorf("splice%v: removed %q left %q, want %q %q", tt.args, render(removed), render(a), tt.removed, tt.left)
		}
	}

	a := nums(1, 2, 3)
	b, _ := ArrayToSpliced(a, value.Int(0), value.Int(1))
	if render(a) != "1,2,3" || render(b) != "2,3" {
		t.Errorf("toSpliced: a=%q b=%q", render(a), render(b))
	}
}

func TestArraySortIsStableAndPure(t *testing.T) {
	a := value.ArrayOf(value.Int(10), value.Undefined, value.Int(9), value.Int(1), value.String("b"))
	sorted, err := ArrayToSorted(a, value.Undefined)
	if err != nil {
		t.Fatal(err)
	}
	if got := render(sorted); got != "1,10,9,b," {
		t.Errorf("default order = %q", got)
	}
	if render(a) != "10,,9,1,b" {
		t.Errorf("toSorted mutated its input: %q", render(a))
	}

	pairs := value.ArrayOf(
		value.ArrayOf(value.Int(2), value.String("a")),
		value.ArrayOf(value.Int(1), value.String("b")),
		value.ArrayOf(value.Int(2), value.String("c")),
		value.ArrayOf(value.Int(1), value.String("d")),
	)
	byFirst := value.Func("cmp", func(_ value.Value, args []value.Value) (value.Value, error) {
		x, _ := value.Get(args[0], value.IndexKey(0))
		y, _ := value.Get(args[1], value.IndexKey(0))
		return value.Number(x.AsNumber() - y.AsNumber()), nil
	})
	if _, err := ArraySort(pairs, byFirst); err != nil {
		t.Fatal(err)
	}
	if got := render(pairs); got != "1,b,1,d,2,a,2,c" {
		t.Errorf("stable sort = %q", got)
	}

	if _, err := ArraySort(nums(1), value.Int(3)); errors.KindOf(err) != "TypeError" {
		t.Errorf("bad comparator: got %v", err)
	}
	nan := value.Func("nan", func(value.Value, []value.Value) (value.Value, error) { return value.NaN, nil })
	if got, _ := ArrayToSorted(nums(3, 1, 2), nan); render(got) != "3,1,2" {
		t.Errorf("NaN comparator should keep order, got %q", render(got))
	}
}

func TestArrayWithAndAt(t *testing.T) {
	a := nums(1, 2, 3)
	b, err := ArrayWith(a, value.Int(-1), value.Int(9))
	if err != nil || render(b) != "1,2,9" || render(a) != "1,2,3" {
		t.Errorf("with(-1) = %q, %v", render(b), err)
	}
	if _, err := ArrayWith(a, value.Int(3), value.Int(0)); errors.KindOf(err) != "RangeError" {
		t.Errorf("with(3): got %v, want RangeError", err)
	}
	if v, _ := ArrayAt(a, value.Int(-1)); v != value.Int(3) {
		t.Errorf("at(-1) = %s", value.Inspect(v))
	}
	if v, _ := ArrayAt(a, value.Int(5)); !v.IsUndefined() {
		t.Errorf("at(5) = %s", value.Inspect(v))
	}
}

func TestArrayFlat(t *testing.T) {
	nested := value.ArrayOf(value.Int(1), value.ArrayOf(value.Int(2), value.ArrayOf(value.Int(3), value.ArrayOf(value.Int(4)))))
	tests := []struct {
		depth value.Value
		want  int
	}{
		{value.Undefined, 3},
		{value.Int(0), 2},
		{value.Int(2), 4},
		{value.Number(math.Inf(1)), 4},
	}
	for _, tt := range tests {
		got, err := ArrayFlat(nested, tt.depth)
		if err != nil {
			t.Fatal(err)
		}
		if n := got.AsObject().Len(); n != tt.want {
			t.Errorf("flat(%s) has %d elements, want %d", value.Inspect(tt.depth), n, tt.want)
		}
	}

	cyclic := value.NewArray(nil)
	cyclic.Push(cyclic.Value())
	if _, err := ArrayFlat(cyclic.Value(), value.Number(math.Inf(1))); errors.KindOf(err) != "RangeError" {
		t.Errorf("cyclic flat: got %v, want RangeError", err)
	}
}

func TestArrayCallbacks(t *testing.T) {
	double := value.Func("double", func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Number(args[0].AsNumber() * 2), nil
	})
	even := value.Func("even", func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(int(args[0].AsNumber())%2 == 0), nil
	})
	add := value.Func("add", func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Number(args[0].AsNumber() + args[1].AsNumber()), nil
	})
	a := nums(1, 2, 3, 4)

	if m, _ := ArrayMap(a, double, value.Undefined); render(m) != "2,4,6,8" {
		t.Errorf("map = %q", render(m))
	}
	if f, _ := ArrayFilter(a, even, value.Undefined); render(f) != "2,4" {
		t.Errorf("filter = %q", render(f))
	}
	if v, _ := ArrayFindLast(a, even, value.Undefined); v != value.Int(4) {
		t.Errorf("findLast = %s", value.Inspect(v))
	}
	if i, _ := ArrayFindIndex(a, even, value.Undefined); i != 1 {
		t.Errorf("findIndex = %d", i)
	}
	if ok, _ := ArrayEvery(a, even, value.Undefined); ok {
		t.Errorf("every(even) should be false")
	}
	if ok, _ := ArraySome(a, even, value.Undefined); !ok {
		t.Errorf("some(even) should be true")
	}
	if v, _ := ArrayReduce(a, add); v != value.Int(10) {
		t.Errorf("reduce = %s", value.Inspect(v))
	}
	concat := value.Func("concat", func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.String(value.ToString(args[0]) + value.ToString(args[1])), nil
	})
	if v, _ := ArrayReduceRight(a, concat, value.String("")); v != value.String("4321") {
		t.Errorf("reduceRight = %s", value.Inspect(v))
	}
	if _, err := ArrayReduce(nums(), add); errors.KindOf(err) != "TypeError" {
		t.Errorf("empty reduce: got %v", err)
	}
	if v, err := ArrayReduce(nums(), add, value.Int(7)); err != nil || v != value.Int(7) {
		t.Errorf("empty reduce with init = %s, %v", value.Inspect(v), err)
	}
	if _, err := ArrayMap(a, value.Int(1), value.Undefined); errors.KindOf(err) != "TypeError" {
		t.Errorf("non-callable: got %v", err)
	}

	var thisSeen value.Value
	recv := value.NewObject().Value()
	ArrayForEach(nums(1), value.Func("f", func(this value.Value, _ []value.Value) (value.Value, error) {
		thisSeen = this
		return value.Undefined, nil
	}), recv)
	if thisSeen != recv {
		t.Errorf("thisArg not passed")
	}
}

func TestArraySearch(t *testing.T) {
	a := value.ArrayOf(value.Int(1), value.NaN, value.Int(1), value.String("1"))
	if i, _ := ArrayIndexOf(a, value.NaN, value.Undefined); i != -1 {
		t.Errorf("indexOf(NaN) = %d, want -1", i)
	}
	if ok, _ := ArrayIncludes(a, value.NaN, value.Undefined); !ok {
		t.Errorf("includes(NaN) should be true")
	}
	if i, _ := ArrayIndexOf(a, value.Int(1), value.Int(1)); i != 2 {
		t.Errorf("indexOf(1, 1) = %d", i)
	}
	if i, _ := ArrayLastIndexOf(a, value.Int(1)); i != 2 {
		t.Errorf("lastIndexOf(1) = %d", i)
	}
	if i, _ := ArrayLastIndexOf(a, value.Int(1), value.Int(-3)); i != 0 {
		t.Errorf("lastIndexOf(1, -3) = %d", i)
	}
	if i, _ := ArrayLastIndexOf(a, value.Int(1), value.Int(-10)); i != -1 {
		t.Errorf("lastIndexOf(1, -10) = %d", i)
	}
}

func TestArrayJoinAndFrom(t *testing.T) {
	a := value.ArrayOf(value.Int(1), value.Null, value.Undefined, value.String("x"))
	if s, _ := ArrayJoin(a, value.Undefined); s != "1,,,x" {
		t.Errorf("join = %q", s)
	}
	if s, _ := ArrayJoin(a, value.String("-")); s != "1---x" {
		t.Errorf("join(-) = %q", s)
	}

	fromStr, err := ArrayFrom(value.String("héllo"), value.Undefined, value.Undefined)
	if err != nil || fromStr.AsObject().Len() != 5 {
		t.Errorf("from(string) = %s, %v", value.Inspect(fromStr), err)
	}
	like := value.NewObject()
	like.RawSet(value.Key("length"), value.Int(2))
	like.RawSet(value.Key("0"), value.String("a"))
	idx := value.Func("idx", func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.String(value.ToString(args[0]) + value.ToString(args[1])), nil
	})
	got, err := ArrayFrom(like.Value(), idx, value.Undefined)
	if err != nil || render(got) != "a0,undefined1" {
		t.Errorf("from(array-like) = %q, %v", render(got), err)
	}
	if _, err := ArrayFrom(value.Null, value.Undefined, value.Undefined); errors.KindOf(err) != "TypeError" {
		t.Errorf("from(null): got %v", err)
	}
}

func TestArrayMutators(t *testing.T) {
	a := nums(1, 2)
	if n, _ := ArrayPush(a, value.Int(3)); n != 3 {
		t.Errorf("push = %d", n)
	}
	if n, _ := ArrayUnshift(a, value.Int(0)); n != 4 {
		t.Errorf("unshift = %d", n)
	}
	if v, _ := ArrayShift(a); v != value.Int(0) {
		t.Errorf("shift = %s", value.Inspect(v))
	}
	if v, _ := ArrayPop(a); v != value.Int(3) {
		t.Errorf("pop = %s", value.Inspect(v))
	}
	ArrayFill(a, value.Int(7), value.Int(-1), value.Undefined)
	if render(a) != "1,7" {
		t.Errorf("fill = %q", render(a))
	}
	if err := ArraySetLength(a, value.Int(4)); err != nil || render(a) != "1,7,," {
		t.Errorf("grow = %q, %v", render(a), err)
	}
	if err := ArraySetLength(a, value.Int(-1)); errors.KindOf(err) != "RangeError" {
		t.Errorf("negative length: got %v", err)
	}
	r, _ := ArrayToReversed(a)
	if render(r) != ",,7,1" || render(a) != "1,7,," {
		t.Errorf("toReversed = %q, source %q", render(r), render(a))
	}
}
