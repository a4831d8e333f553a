package container

import (
	"math"
	"slices"
	"strings"

	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// Array operations take the array as a value and follow the ECMAScript
// algorithms: undefined optional arguments mean "omitted", relative indices
// count from the end when negative and are clamped to [0, len].

const maxFlattenDepth = 10000

func arrayOf(v value.Value, method string) (*value.Object, error) {
	o := v.AsObject()
	if o == nil || !o.IsArray() {
		return nil, errors.NewTypeError("Array.prototype.%s called on non-array %s", method, value.Inspect(v))
	}
	return o, nil
}

func checkCallable(fn value.Value) error {
	if !fn.IsCallable() {
		return errors.NewTypeError("%s is not a function", value.Inspect(fn))
	}
	return nil
}

// relative resolves a relative index: max(len+idx, 0) when negative,
// min(idx, len) otherwise, dflt when omitted.
func relative(v value.Value, length, dflt int) int {
	if v.IsUndefined() {
		return dflt
	}
	n := value.ToIntegerOrInfinity(v)
	if n < 0 {
		return int(math.Max(float64(length)+n, 0))
	}
	return int(math.Min(n, float64(length)))
}

// searchStart resolves the fromIndex of indexOf and includes.
func searchStart(from value.Value, length int) int {
	n := value.ToIntegerOrInfinity(from)
	switch {
	case math.IsInf(n, 1):
		return length
	case n >= 0:
		return int(math.Min(n, float64(length)))
	}
	return int(math.Max(float64(length)+n, 0))
}

func copyElems(o *value.Object) []value.Value {
	return slices.Clone(o.Elements())
}

func ArraySlice(arr, start, end value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "slice")
	if err != nil {
		return value.Undefined, err
	}
	n := o.Len()
	k, final := relative(start, n, 0), relative(end, n, n)
	if final < k {
		final = k
	}
	return value.NewArray(slices.Clone(o.Elements()[k:final])).Value(), nil
}

// spliceArgs decodes (start, deleteCount, ...items) where the argument
// count matters: a missing deleteCount removes everything from start.
func spliceArgs(n int, args []value.Value) (start, skip int, items []value.Value) {
	switch len(args) {
	case 0:
		return 0, 0, nil
	case 1:
		start = relative(args[0], n, 0)
		return start, n - start, nil
	}
	start = relative(args[0], n, 0)
	dc := value.ToIntegerOrInfinity(args[1])
	skip = int(math.Min(math.Max(dc, 0), float64(n-start)))
	return start, skip, args[2:]
}

func spliced(elems []value.Value, start, skip int, items []value.Value) []value.Value {
	out := make([]value.Value, 0, len(elems)-skip+len(items))
	out = append(out, elems[:start]...)
	out = append(out, items...)
	return append(out, elems[start+skip:]...)
}

// ArraySplice removes and inserts in place and returns the removed
// elements.
func ArraySplice(arr value.Value, args ...value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "splice")
	if err != nil {
		return value.Undefined, err
	}
	elems := o.Elements()
	start, skip, items := spliceArgs(len(elems), args)
	removed := slices.Clone(elems[start : start+skip])
	o.SetElements(spliced(elems, start, skip, items))
	return value.NewArray(removed).Value(), nil
}

// ArrayToSpliced is ArraySplice on a copy; it returns the copy.
func ArrayToSpliced(arr value.Value, args ...value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "toSpliced")
	if err != nil {
		return value.Undefined, err
	}
	elems := o.Elements()
	start, skip, items := spliceArgs(len(elems), args)
	return value.NewArray(spliced(elems, start, skip, items)).Value(), nil
}

// ArrayWith returns a copy with one element replaced.
func ArrayWith(arr, index, v value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "with")
	if err != nil {
		return value.Undefined, err
	}
	n := o.Len()
	rel := value.ToIntegerOrInfinity(index)
	actual := rel
	if rel < 0 {
		actual = float64(n) + rel
	}
	if actual < 0 || actual >= float64(n) {
		return value.Undefined, errors.NewRangeError("Invalid index : %s", value.NumberToString(rel))
	}
	out := copyElems(o)
	out[int(actual)] = v
	return value.NewArray(out).Value(), nil
}

// sortValues sorts stably: undefined last, the default order compares
// string forms by UTF-16 code units, comparator results that are NaN
// count as equal. The first comparator error wins.
func sortValues(elems []value.Value, cmp value.Value) ([]value.Value, error) {
	if !cmp.IsUndefined() && !cmp.IsCallable() {
		return nil, errors.NewTypeError("The comparison function must be either a function or undefined")
	}
	defined := make([]value.Value, 0, len(elems))
	undefs := 0
	for _, e := range elems {
		if e.IsUndefined() {
			undefs++
		} else {
			defined = append(defined, e)
		}
	}
	var firstErr error
	slices.SortStableFunc(defined, func(a, b value.Value) int {
		if firstErr != nil {
			return 0
		}
		if cmp.IsUndefined() {
			return value.CompareUTF16(value.ToString(a), value.ToString(b))
		}
		r, err := value.Call(cmp, value.Undefined, a, b)
		if err != nil {
			firstErr = err
			return 0
		}
		switch f := value.ToNumber(r); {
		case f < 0:
			return -1
		case f > 0:
			return 1
		}
		return 0
	})
	if firstErr != nil {
		return nil, firstErr
	}
	for ; undefs > 0; undefs-- {
		defined = append(defined, value.Undefined)
	}
	return defined, nil
}

func ArraySort(arr, cmp value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "sort")
	if err != nil {
		return value.Undefined, err
	}
	sorted, err := sortValues(o.Elements(), cmp)
	if err != nil {
		return value.Undefined, err
	}
	o.SetElements(sorted)
	return arr, nil
}

// ArrayToSorted sorts a copy; the input is never modified.
func ArrayToSorted(arr, cmp value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "toSorted")
	if err != nil {
		return value.Undefined, err
	}
	sorted, err := sortValues(o.Elements(), cmp)
	if err != nil {
		return value.Undefined, err
	}
	return value.NewArray(sorted).Value(), nil
}

func ArrayReverse(arr value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "reverse")
	if err != nil {
		return value.Undefined, err
	}
	slices.Reverse(o.Elements())
	return arr, nil
}

func ArrayToReversed(arr value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "toReversed")
	if err != nil {
		return value.Undefined, err
	}
	out := copyElems(o)
	slices.Reverse(out)
	return value.NewArray(out).Value(), nil
}

// ArrayConcat appends items, spreading array items one level.
func ArrayConcat(arr value.Value, items ...value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "concat")
	if err != nil {
		return value.Undefined, err
	}
	out := copyElems(o)
	for _, it := range items {
		if it.IsArray() {
			out = append(out, it.AsObject().Elements()...)
		} else {
			out = append(out, it)
		}
	}
	return value.NewArray(out).Value(), nil
}

func flatten(dst, src []value.Value, depth float64, level int) ([]value.Value, error) {
	if level > maxFlattenDepth {
		return nil, errors.NewRangeError("Maximum call stack size exceeded")
	}
	for _, e := range src {
		if depth > 0 && e.IsArray() {
			var err error
			if dst, err = flatten(dst, e.AsObject().Elements(), depth-1, level+1); err != nil {
				return nil, err
			}
			continue
		}
		dst = append(dst, e)
	}
	return dst, nil
}

// ArrayFlat flattens nested arrays up to depth levels (default 1).
func ArrayFlat(arr, depth value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "flat")
	if err != nil {
		return value.Undefined, err
	}
	d := 1.0
	if !depth.IsUndefined() {
		d = value.ToIntegerOrInfinity(depth)
	}
	out, err := flatten(make([]value.Value, 0, o.Len()), o.Elements(), d, 0)
	if err != nil {
		return value.Undefined, err
	}
	return value.NewArray(out).Value(), nil
}

// each calls fn(element, index, array) over the length fixed at the start,
// reading elements live. fn returning false stops.
func each(o *value.Object, fn value.Value, thisArg value.Value, visit func(i int, e, r value.Value) bool) error {
	if err := checkCallable(fn); err != nil {
		return err
	}
	arr := o.Value()
	n := o.Len()
	for i := 0; i < n; i++ {
		e := o.Index(i)
		r, err := value.Call(fn, thisArg, e, value.Int(i), arr)
		if err != nil {
			return err
		}
		if !visit(i, e, r) {
			return nil
		}
	}
	return nil
}

func ArrayFlatMap(arr, fn, thisArg value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "flatMap")
	if err != nil {
		return value.Undefined, err
	}
	var out []value.Value
	err = each(o, fn, thisArg, func(_ int, _, r value.Value) bool {
		if r.IsArray() {
			out = append(out, r.AsObject().Elements()...)
		} else {
			out = append(out, r)
		}
		return true
	})
	if err != nil {
		return value.Undefined, err
	}
	return value.NewArray(out).Value(), nil
}

func ArrayMap(arr, fn, thisArg value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "map")
	if err != nil {
		return value.Undefined, err
	}
	out := make([]value.Value, o.Len())
	err = each(o, fn, thisArg, func(i int, _, r value.Value) bool {
		out[i] = r
		return true
	})
	if err != nil {
		return value.Undefined, err
	}
	return value.NewArray(out).Value(), nil
}

func ArrayFilter(arr, fn, thisArg value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "filter")
	if err != nil {
		return value.Undefined, err
	}
	var out []value.Value
	err = each(o, fn, thisArg, func(_ int, e, r value.Value) bool {
		if value.ToBoolean(r) {
			out = append(out, e)
		}
		return true
	})
	if err != nil {
		return value.Undefined, err
	}
	return value.NewArray(out).Value(), nil
}

func ArrayForEach(arr, fn, thisArg value.Value) error {
	o, err := arrayOf(arr, "forEach")
	if err != nil {
		return err
	}
	return each(o, fn, thisArg, func(int, value.Value, value.Value) bool { return true })
}

func ArraySome(arr, fn, thisArg value.Value) (bool, error) {
	o, err := arrayOf(arr, "some")
	if err != nil {
		return false, err
	}
	found := false
	err = each(o, fn, thisArg, func(_ int, _, r value.Value) bool {
		found = value.ToBoolean(r)
		return !found
	})
	return found, err
}

func ArrayEvery(arr, fn, thisArg value.Value) (bool, error) {
	o, err := arrayOf(arr, "every")
	if err != nil {
		return false, err
	}
	all := true
	err = each(o, fn, thisArg, func(_ int, _, r value.Value) bool {
		all = value.ToBoolean(r)
		return all
	})
	return all, err
}

func ArrayFind(arr, fn, thisArg value.Value) (value.Value, error) {
	v, _, err := find(arr, fn, thisArg, "find", false)
	return v, err
}

func ArrayFindIndex(arr, fn, thisArg value.Value) (int, error) {
	_, i, err := find(arr, fn, thisArg, "findIndex", false)
	return i, err
}

func ArrayFindLast(arr, fn, thisArg value.Value) (value.Value, error) {
	v, _, err := find(arr, fn, thisArg, "findLast", true)
	return v, err
}

func ArrayFindLastIndex(arr, fn, thisArg value.Value) (int, error) {
	_, i, err := find(arr, fn, thisArg, "findLastIndex", true)
	return i, err
}

func find(arr, fn, thisArg value.Value, method string, fromEnd bool) (value.Value, int, error) {
	o, err := arrayOf(arr, method)
	if err != nil {
		return value.Undefined, -1, err
	}
	if err := checkCallable(fn); err != nil {
		return value.Undefined, -1, err
	}
	n := o.Len()
	for k := 0; k < n; k++ {
		i := k
		if fromEnd {
			i = n - 1 - k
		}
		e := o.Index(i)
		r, err := value.Call(fn, thisArg, e, value.Int(i), arr)
		if err != nil {
			return value.Undefined, -1, err
		}
		if value.ToBoolean(r) {
			return e, i, nil
		}
	}
	return value.Undefined, -1, nil
}

// ArrayReduce folds left. init is optional; an empty array without one
// raises TypeError.
func ArrayReduce(arr, fn value.Value, init ...value.Value) (value.Value, error) {
	return reduce(arr, fn, init, "reduce", false)
}

// ArrayReduceRight folds right.
func ArrayReduceRight(arr, fn value.Value, init ...value.Value) (value.Value, error) {
	return reduce(arr, fn, init, "reduceRight", true)
}

func reduce(arr, fn value.Value, init []value.Value, method string, fromEnd bool) (value.Value, error) {
	o, err := arrayOf(arr, method)
	if err != nil {
		return value.Undefined, err
	}
	if err := checkCallable(fn); err != nil {
		return value.Undefined, err
	}
	n := o.Len()
	at := func(k int) int {
		if fromEnd {
			return n - 1 - k
		}
		return k
	}
	k := 0
	var acc value.Value
	if len(init) > 0 {
		acc = init[0]
	} else {
		if n == 0 {
			return value.Undefined, errors.NewTypeError("Reduce of empty array with no initial value")
		}
		acc = o.Index(at(0))
		k = 1
	}
	for ; k < n; k++ {
		i := at(k)
		if i >= o.Len() {
			continue
		}
		if acc, err = value.Call(fn, value.Undefined, acc, o.Index(i), value.Int(i), arr); err != nil {
			return value.Undefined, err
		}
	}
	return acc, nil
}

// ArrayAt reads a relative index; out of range is undefined.
func ArrayAt(arr, index value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "at")
	if err != nil {
		return value.Undefined, err
	}
	n := o.Len()
	k := value.ToIntegerOrInfinity(index)
	if k < 0 {
		k += float64(n)
	}
	if k < 0 || k >= float64(n) {
		return value.Undefined, nil
	}
	return o.Index(int(k)), nil
}

// ArrayJoin joins string forms; undefined and null elements are empty.
func ArrayJoin(arr, sep value.Value) (string, error) {
	o, err := arrayOf(arr, "join")
	if err != nil {
		return "", err
	}
	s := ","
	if !sep.IsUndefined() {
		s = value.ToString(sep)
	}
	parts := make([]string, o.Len())
	for i, e := range o.Elements() {
		if !e.IsNullish() {
			parts[i] = value.ToString(e)
		}
	}
	return strings.Join(parts, s), nil
}

func ArrayIndexOf(arr, search, from value.Value) (int, error) {
	o, err := arrayOf(arr, "indexOf")
	if err != nil {
		return -1, err
	}
	elems := o.Elements()
	for i := searchStart(from, len(elems)); i < len(elems); i++ {
		if value.StrictEquals(elems[i], search) {
			return i, nil
		}
	}
	return -1, nil
}

// ArrayLastIndexOf searches backwards; from is optional and defaults to
// the last index.
func ArrayLastIndexOf(arr, search value.Value, from ...value.Value) (int, error) {
	o, err := arrayOf(arr, "lastIndexOf")
	if err != nil {
		return -1, err
	}
	elems := o.Elements()
	n := len(elems)
	if n == 0 {
		return -1, nil
	}
	k := float64(n - 1)
	if len(from) > 0 {
		f := value.ToIntegerOrInfinity(from[0])
		if f >= 0 {
			k = math.Min(f, float64(n-1))
		} else {
			k = float64(n) + f
		}
	}
	for i := int(math.Max(k, -1)); i >= 0; i-- {
		if value.StrictEquals(elems[i], search) {
			return i, nil
		}
	}
	return -1, nil
}

// ArrayIncludes uses SameValueZero, so NaN is found.
func ArrayIncludes(arr, search, from value.Value) (bool, error) {
	o, err := arrayOf(arr, "includes")
	if err != nil {
		return false, err
	}
	elems := o.Elements()
	for i := searchStart(from, len(elems)); i < len(elems); i++ {
		if value.SameValueZero(elems[i], search) {
			return true, nil
		}
	}
	return false, nil
}

func arrayIterator(o *value.Object, kind iterKind) value.Value {
	i := 0
	return value.NewIteratorObject(value.IteratorFunc(func() (value.Value, bool, error) {
		if i >= o.Len() {
			i = math.MaxInt
			return value.Undefined, false, nil
		}
		k := i
		i++
		switch kind {
		case iterKeys:
			return value.Int(k), true, nil
		case iterValues:
			return o.Index(k), true, nil
		}
		return value.ArrayOf(value.Int(k), o.Index(k)), true, nil
	}))
}

func ArrayEntries(arr value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "entries")
	if err != nil {
		return value.Undefined, err
	}
	return arrayIterator(o, iterEntries), nil
}

func ArrayKeys(arr value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "keys")
	if err != nil {
		return value.Undefined, err
	}
	return arrayIterator(o, iterKeys), nil
}

func ArrayValues(arr value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "values")
	if err != nil {
		return value.Undefined, err
	}
	return arrayIterator(o, iterValues), nil
}

func isIterable(v value.Value) bool {
	if v.IsString() || v.IsArray() {
		return true
	}
	o := v.AsObject()
	if o == nil {
		return false
	}
	if _, ok := o.Internal().(value.Iterable); ok {
		return true
	}
	m, err := value.Get(v, value.SymbolKey(value.SymbolIterator))
	return err == nil && m.IsCallable()
}

// ArrayFrom builds an array from an iterable or an array-like (anything
// with a length), mapping through mapFn(value, index) when given.
func ArrayFrom(items, mapFn, thisArg value.Value) (value.Value, error) {
	if !mapFn.IsUndefined() && !mapFn.IsCallable() {
		return value.Undefined, errors.NewTypeError("%s is not a function", value.Inspect(mapFn))
	}
	if items.IsNullish() {
		return value.Undefined, errors.NewTypeError("%s is not iterable", value.Inspect(items))
	}
	var elems []value.Value
	if isIterable(items) {
		var err error
		if elems, err = value.Collect(items); err != nil {
			return value.Undefined, err
		}
	} else {
		lv, err := value.Get(items, value.Key("length"))
		if err != nil {
			return value.Undefined, err
		}
		n := value.ToIntegerOrInfinity(lv)
		if n > 1<<32-1 {
			return value.Undefined, errors.NewRangeError("Invalid array length")
		}
		for i := 0; i < int(n); i++ {
			e, err := value.Get(items, value.IndexKey(i))
			if err != nil {
				return value.Undefined, err
			}
			elems = append(elems, e)
		}
	}
	if mapFn.IsCallable() {
		for i, e := range elems {
			r, err := value.Call(mapFn, thisArg, e, value.Int(i))
			if err != nil {
				return value.Undefined, err
			}
			elems[i] = r
		}
	}
	return value.NewArray(elems).Value(), nil
}

func ArrayOf(items ...value.Value) value.Value {
	return value.NewArray(slices.Clone(items)).Value()
}

func ArrayIsArray(v value.Value) bool { return v.IsArray() }

// ArrayFill writes v over [start, end) in place.
func ArrayFill(arr, v, start, end value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "fill")
	if err != nil {
		return value.Undefined, err
	}
	n := o.Len()
	for i := relative(start, n, 0); i < relative(end, n, n); i++ {
		o.SetIndex(i, v)
	}
	return arr, nil
}

func ArrayPush(arr value.Value, items ...value.Value) (int, error) {
	o, err := arrayOf(arr, "push")
	if err != nil {
		return 0, err
	}
	return o.Push(items...), nil
}

func ArrayPop(arr value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "pop")
	if err != nil {
		return value.Undefined, err
	}
	n := o.Len()
	if n == 0 {
		return value.Undefined, nil
	}
	last := o.Index(n - 1)
	o.SetLength(n - 1)
	return last, nil
}

func ArrayShift(arr value.Value) (value.Value, error) {
	o, err := arrayOf(arr, "shift")
	if err != nil {
		return value.Undefined, err
	}
	elems := o.Elements()
	if len(elems) == 0 {
		return value.Undefined, nil
	}
	first := elems[0]
	o.SetElements(slices.Clone(elems[1:]))
	return first, nil
}

func ArrayUnshift(arr value.Value, items ...value.Value) (int, error) {
	o, err := arrayOf(arr, "unshift")
	if err != nil {
		return 0, err
	}
	o.SetElements(append(slices.Clone(items), o.Elements()...))
	return o.Len(), nil
}

// ArraySetLength truncates or extends with undefined.
func ArraySetLength(arr, n value.Value) error {
	if _, err := arrayOf(arr, "length"); err != nil {
		return err
	}
	return value.Set(arr, value.Key("length"), n)
}
