package rt

import (
	"context"

	"github.com/nooga/tsrt/pkg/async"
	"github.com/nooga/tsrt/pkg/container"
	"github.com/nooga/tsrt/pkg/generator"
	"github.com/nooga/tsrt/pkg/multi"
	"github.com/nooga/tsrt/pkg/strlib"
	"github.com/nooga/tsrt/pkg/value"
)

// Realm-free entry points, re-exported so compiled code links against one
// package.

// Multiple values.
var (
	Pack         = multi.Pack
	Unpack       = multi.Unpack
	Spread       = multi.Spread
	CallMulti    = multi.Call
	SparseNew    = multi.SparseNew
	SparsePush   = multi.SparsePush
	SparseSpread = multi.SparseSpread
)

// Await suspends the enclosing async function body until v settles.
var Await = async.Await

// Generators.
var (
	Yield     = generator.Yield
	YieldFrom = generator.YieldFrom
)

// NewGenerator starts a generator object over body. The body runs on the
// first next() call.
func NewGenerator(ctx context.Context, body generator.Body) value.Value {
	return generator.New(ctx, body).Value()
}

// Values.
var (
	Inspect       = value.Inspect
	TypeOf        = value.TypeOf
	StrictEquals  = value.StrictEquals
	SameValue     = value.SameValue
	SameValueZero = value.SameValueZero
	Collect       = value.Collect
)

// Keyed collections.
var (
	NewMap     = container.NewMap
	MapSet     = container.MapSet
	MapGet     = container.MapGet
	MapHas     = container.MapHas
	MapDelete  = container.MapDelete
	MapClear   = container.MapClear
	MapSize    = container.MapSize
	MapForEach = container.MapForEach
	MapKeys    = container.MapKeys
	MapValues  = container.MapValues
	MapEntries = container.MapEntries
	MapGroupBy = container.MapGroupBy

	NewSet     = container.NewSet
	SetAdd     = container.SetAdd
	SetHas     = container.SetHas
	SetDelete  = container.SetDelete
	SetClear   = container.SetClear
	SetSize    = container.SetSize
	SetForEach = container.SetForEach
	SetValues  = container.SetValues
	SetEntries = container.SetEntries

	NewWeakMap    = container.NewWeakMap
	WeakMapSet    = container.WeakMapSet
	WeakMapGet    = container.WeakMapGet
	WeakMapHas    = container.WeakMapHas
	WeakMapDelete = container.WeakMapDelete
	NewWeakSet    = container.NewWeakSet
	WeakSetAdd    = container.WeakSetAdd
	WeakSetHas    = container.WeakSetHas
	WeakSetDelete = container.WeakSetDelete
)

// Arrays.
var (
	ArraySlice         = container.ArraySlice
	ArraySplice        = container.ArraySplice
	ArrayToSpliced     = container.ArrayToSpliced
	ArrayWith          = container.ArrayWith
	ArraySort          = container.ArraySort
	ArrayToSorted      = container.ArrayToSorted
	ArrayReverse       = container.ArrayReverse
	ArrayToReversed    = container.ArrayToReversed
	ArrayConcat        = container.ArrayConcat
	ArrayFlat          = container.ArrayFlat
	ArrayFlatMap       = container.ArrayFlatMap
	ArrayMap           = container.ArrayMap
	ArrayFilter        = container.ArrayFilter
	ArrayForEach       = container.ArrayForEach
	ArraySome          = container.ArraySome
	ArrayEvery         = container.ArrayEvery
	ArrayFind          = container.ArrayFind
	ArrayFindIndex     = container.ArrayFindIndex
	ArrayFindLast      = container.ArrayFindLast
	ArrayFindLastIndex = container.ArrayFindLastIndex
	ArrayReduce        = container.ArrayReduce
	ArrayReduceRight   = container.ArrayReduceRight
	ArrayAt            = container.ArrayAt
	ArrayJoin          = container.ArrayJoin
	ArrayIndexOf       = container.ArrayIndexOf
	ArrayLastIndexOf   = container.ArrayLastIndexOf
	ArrayIncludes      = container.ArrayIncludes
	ArrayEntries       = container.ArrayEntries
	ArrayKeys          = container.ArrayKeys
	ArrayValues        = container.ArrayValues
	ArrayFrom          = container.ArrayFrom
	ArrayOf            = container.ArrayOf
	ArrayIsArray       = container.ArrayIsArray
	ArrayFill          = container.ArrayFill
	ArrayPush          = container.ArrayPush
	ArrayPop           = container.ArrayPop
	ArrayShift         = container.ArrayShift
	ArrayUnshift       = container.ArrayUnshift
	ArraySetLength     = container.ArraySetLength
)

// Numbers, strings and regular expressions.
var (
	NumberToString      = strlib.NumberToString
	NumberToFixed       = strlib.NumberToFixed
	ParseInt            = strlib.ParseInt
	ParseFloat          = strlib.ParseFloat
	NumberIsNaN         = strlib.NumberIsNaN
	NumberIsFinite      = strlib.NumberIsFinite
	NumberIsInteger     = strlib.NumberIsInteger
	NumberIsSafeInteger = strlib.NumberIsSafeInteger
	NewRegExp           = strlib.NewRegExp
	RegExpExec          = strlib.RegExpExec
	RegExpTest          = strlib.RegExpTest
	StringMatch         = strlib.StringMatch
	StringMatchAll      = strlib.StringMatchAll
	StringSearch        = strlib.StringSearch
	StringReplace       = strlib.StringReplace
	StringReplaceAll    = strlib.StringReplaceAll
	StringSplit         = strlib.StringSplit
	StringAt            = strlib.StringAt
	StringCharAt        = strlib.StringCharAt
	StringCharCodeAt    = strlib.StringCharCodeAt
	StringCodePointAt   = strlib.StringCodePointAt
	StringSlice         = strlib.StringSlice
	StringSubstring     = strlib.StringSubstring
	StringSubstr        = strlib.StringSubstr
	StringIndexOf       = strlib.StringIndexOf
	StringLastIndexOf   = strlib.StringLastIndexOf
	StringIncludes      = strlib.StringIncludes
	StringStartsWith    = strlib.StringStartsWith
	StringEndsWith      = strlib.StringEndsWith
	StringPadStart      = strlib.StringPadStart
	StringPadEnd        = strlib.StringPadEnd
	StringRepeat        = strlib.StringRepeat
	StringTrim          = strlib.StringTrim
	StringTrimStart     = strlib.StringTrimStart
	StringTrimEnd       = strlib.StringTrimEnd
	StringToUpperCase   = strlib.StringToUpperCase
	StringToLowerCase   = strlib.StringToLowerCase
	StringNormalize     = strlib.StringNormalize
	StringLocaleCompare = strlib.StringLocaleCompare
)
