package conformance

import (
	"fmt"
	"sort"

	"github.com/nooga/tsrt/pkg/container"
	"github.com/nooga/tsrt/pkg/rt"
	"github.com/nooga/tsrt/pkg/strlib"
	"github.com/nooga/tsrt/pkg/value"
)

// Op is a library operation in method form.
type Op func(this value.Value, args []value.Value) (value.Value, error)

func a(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undefined
}

func str(v value.Value) string { return value.ToString(v) }

func stringOp(f func(s string, args []value.Value) (value.Value, error)) Op {
	return func(this value.Value, args []value.Value) (value.Value, error) {
		return f(str(this), args)
	}
}

func strResult(s string, err error) (value.Value, error) {
	if err != nil {
		return value.Undefined, err
	}
	return value.String(s), nil
}

func intResult(n int, err error) (value.Value, error) {
	if err != nil {
		return value.Undefined, err
	}
	return value.Int(n), nil
}

func boolResult(b bool, err error) (value.Value, error) {
	if err != nil {
		return value.Undefined, err
	}
	return value.Bool(b), nil
}

var ops = map[string]Op{
	"String.prototype.at": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return strlib.StringAt(s, a(args, 0)), nil
	}),
	"String.prototype.charAt": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return value.String(strlib.StringCharAt(s, a(args, 0))), nil
	}),
	"String.prototype.charCodeAt": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return value.Number(strlib.StringCharCodeAt(s, a(args, 0))), nil
	}),
	"String.prototype.codePointAt": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return strlib.StringCodePointAt(s, a(args, 0)), nil
	}),
	"String.prototype.slice": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return value.String(strlib.StringSlice(s, a(args, 0), a(args, 1))), nil
	}),
	"String.prototype.substring": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return value.String(strlib.StringSubstring(s, a(args, 0), a(args, 1))), nil
	}),
	"String.prototype.substr": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return value.String(strlib.StringSubstr(s, a(args, 0), a(args, 1))), nil
	}),
	"String.prototype.indexOf": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return value.Int(strlib.StringIndexOf(s, str(a(args, 0)), a(args, 1))), nil
	}),
	"String.prototype.lastIndexOf": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return value.Int(strlib.StringLastIndexOf(s, str(a(args, 0)), a(args, 1))), nil
	}),
	"String.prototype.includes": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return boolResult(strlib.StringIncludes(s, a(args, 0), a(args, 1)))
	}),
	"String.prototype.startsWith": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return boolResult(strlib.StringStartsWith(s, a(args, 0), a(args, 1)))
	}),
	"String.prototype.endsWith": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return boolResult(strlib.StringEndsWith(s, a(args, 0), a(args, 1)))
	}),
	"String.prototype.padStart": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return value.String(strlib.StringPadStart(s, a(args, 0), a(args, 1))), nil
	}),
	"String.prototype.padEnd": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return value.String(strlib.StringPadEnd(s, a(args, 0), a(args, 1))), nil
	}),
	"String.prototype.repeat": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return strResult(strlib.StringRepeat(s, a(args, 0)))
	}),
	"String.prototype.trim": stringOp(func(s string, _ []value.Value) (value.Value, error) {
		return value.String(strlib.StringTrim(s)), nil
	}),
	"String.prototype.trimStart": stringOp(func(s string, _ []value.Value) (value.Value, error) {
		return value.String(strlib.StringTrimStart(s)), nil
	}),
	"String.prototype.trimEnd": stringOp(func(s string, _ []value.Value) (value.Value, error) {
		return value.String(strlib.StringTrimEnd(s)), nil
	}),
	"String.prototype.toUpperCase": stringOp(func(s string, _ []value.Value) (value.Value, error) {
		return value.String(strlib.StringToUpperCase(s)), nil
	}),
	"String.prototype.toLowerCase": stringOp(func(s string, _ []value.Value) (value.Value, error) {
		return value.String(strlib.StringToLowerCase(s)), nil
	}),
	"String.prototype.normalize": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return strResult(strlib.StringNormalize(s, a(args, 0)))
	}),
	"String.prototype.split": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return strlib.StringSplit(s, a(args, 0), a(args, 1))
	}),
	"String.prototype.replace": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return strResult(strlib.StringReplace(s, a(args, 0), a(args, 1)))
	}),
	"String.prototype.replaceAll": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return strResult(strlib.StringReplaceAll(s, a(args, 0), a(args, 1)))
	}),
	"String.prototype.match": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return strlib.StringMatch(s, a(args, 0))
	}),
	"String.prototype.search": stringOp(func(s string, args []value.Value) (value.Value, error) {
		return intResult(strlib.StringSearch(s, a(args, 0)))
	}),

	"Number.prototype.toString": func(this value.Value, args []value.Value) (value.Value, error) {
		return strResult(strlib.NumberToString(value.ToNumber(this), a(args, 0)))
	},
	"Number.prototype.toFixed": func(this value.Value, args []value.Value) (value.Value, error) {
		return strResult(strlib.NumberToFixed(value.ToNumber(this), a(args, 0)))
	},
	"parseInt": func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Number(strlib.ParseInt(str(a(args, 0)), a(args, 1))), nil
	},
	"parseFloat": func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Number(strlib.ParseFloat(str(a(args, 0)))), nil
	},
	"Number.isInteger": func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(strlib.NumberIsInteger(a(args, 0))), nil
	},
	"Number.isSafeInteger": func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(strlib.NumberIsSafeInteger(a(args, 0))), nil
	},

	"Array.prototype.slice": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArraySlice(this, a(args, 0), a(args, 1))
	},
	"Array.prototype.splice": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArraySplice(this, args...)
	},
	"Array.prototype.toSpliced": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayToSpliced(this, args...)
	},
	"Array.prototype.with": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayWith(this, a(args, 0), a(args, 1))
	},
	"Array.prototype.sort": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArraySort(this, a(args, 0))
	},
	"Array.prototype.toSorted": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayToSorted(this, a(args, 0))
	},
	"Array.prototype.reverse": func(this value.Value, _ []value.Value) (value.Value, error) {
		return container.ArrayReverse(this)
	},
	"Array.prototype.concat": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayConcat(this, args...)
	},
	"Array.prototype.flat": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayFlat(this, a(args, 0))
	},
	"Array.prototype.flatMap": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayFlatMap(this, a(args, 0), a(args, 1))
	},
	"Array.prototype.map": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayMap(this, a(args, 0), a(args, 1))
	},
	"Array.prototype.filter": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayFilter(this, a(args, 0), a(args, 1))
	},
	"Array.prototype.some": func(this value.Value, args []value.Value) (value.Value, error) {
		return boolResult(container.ArraySome(this, a(args, 0), a(args, 1)))
	},
	"Array.prototype.every": func(this value.Value, args []value.Value) (value.Value, error) {
		return boolResult(container.ArrayEvery(this, a(args, 0), a(args, 1)))
	},
	"Array.prototype.find": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayFind(this, a(args, 0), a(args, 1))
	},
	"Array.prototype.findIndex": func(this value.Value, args []value.Value) (value.Value, error) {
		return intResult(container.ArrayFindIndex(this, a(args, 0), a(args, 1)))
	},
	"Array.prototype.findLast": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayFindLast(this, a(args, 0), a(args, 1))
	},
	"Array.prototype.reduce": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayReduce(this, a(args, 0), args[min(1, len(args)):]...)
	},
	"Array.prototype.reduceRight": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayReduceRight(this, a(args, 0), args[min(1, len(args)):]...)
	},
	"Array.prototype.at": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayAt(this, a(args, 0))
	},
	"Array.prototype.join": func(this value.Value, args []value.Value) (value.Value, error) {
		return strResult(container.ArrayJoin(this, a(args, 0)))
	},
	"Array.prototype.indexOf": func(this value.Value, args []value.Value) (value.Value, error) {
		return intResult(container.ArrayIndexOf(this, a(args, 0), a(args, 1)))
	},
	"Array.prototype.lastIndexOf": func(this value.Value, args []value.Value) (value.Value, error) {
		return intResult(container.ArrayLastIndexOf(this, a(args, 0), args[min(1, len(args)):]...))
	},
	"Array.prototype.includes": func(this value.Value, args []value.Value) (value.Value, error) {
		return boolResult(container.ArrayIncludes(this, a(args, 0), a(args, 1)))
	},
	"Array.prototype.fill": func(this value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayFill(this, a(args, 0), a(args, 1), a(args, 2))
	},
	"Array.from": func(_ value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayFrom(a(args, 0), a(args, 1), a(args, 2))
	},
	"Array.of": func(_ value.Value, args []value.Value) (value.Value, error) {
		return container.ArrayOf(args...), nil
	},

	"Map.groupBy": func(_ value.Value, args []value.Value) (value.Value, error) {
		m, err := container.MapGroupBy(a(args, 0), a(args, 1))
		if err != nil {
			return value.Undefined, err
		}
		return container.ArrayFrom(m.Value(), value.Undefined, value.Undefined)
	},
	"Set": func(_ value.Value, args []value.Value) (value.Value, error) {
		s, err := container.NewSet(a(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return container.ArrayFrom(s.Value(), value.Undefined, value.Undefined)
	},
}

// Ops lists the operation names fixtures may call.
func Ops() []string {
	names := make([]string, 0, len(ops))
	for k := range ops {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func num(v value.Value) float64 { return value.ToNumber(v) }

// helpers are the callbacks fixtures refer to with {fn: name}.
var helpers = map[string]value.NativeFunction{
	"double": func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Number(num(a(args, 0)) * 2), nil
	},
	"isEven": func(_ value.Value, args []value.Value) (value.Value, error) {
		n := num(a(args, 0))
		return value.Bool(n == float64(int64(n)) && int64(n)%2 == 0), nil
	},
	"add": func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Number(num(a(args, 0)) + num(a(args, 1))), nil
	},
	"descending": func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Number(num(a(args, 1)) - num(a(args, 0))), nil
	},
	"pair": func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.ArrayOf(a(args, 0), a(args, 0)), nil
	},
	"upper": func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.String(strlib.StringToUpperCase(str(a(args, 0)))), nil
	},
	"parity": func(_ value.Value, args []value.Value) (value.Value, error) {
		if int64(num(a(args, 0)))%2 == 0 {
			return value.String("even"), nil
		}
		return value.String("odd"), nil
	},
}

// arg converts a decoded YAML value into a runtime value.
func arg(x any) (value.Value, error) {
	switch x := x.(type) {
	case []any:
		elems := make([]value.Value, len(x))
		for i, e := range x {
			v, err := arg(e)
			if err != nil {
				return value.Undefined, err
			}
			elems[i] = v
		}
		return value.NewArray(elems).Value(), nil
	case map[string]any:
		if p, ok := x["regexp"]; ok {
			flags, _ := x["flags"].(string)
			re, err := strlib.NewRegExp(fmt.Sprint(p), flags)
			if err != nil {
				return value.Undefined, err
			}
			return re.Value(), nil
		}
		if name, ok := x["fn"]; ok {
			fn, ok := helpers[fmt.Sprint(name)]
			if !ok {
				return value.Undefined, fmt.Errorf("unknown helper %v", name)
			}
			return value.Func(fmt.Sprint(name), fn), nil
		}
		if _, ok := x["undefined"]; ok {
			return value.Undefined, nil
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := value.NewObject()
		for _, k := range keys {
			v, err := arg(x[k])
			if err != nil {
				return value.Undefined, err
			}
			o.RawSet(value.Key(k), v)
		}
		return o.Value(), nil
	}
	return rt.FromGo(x), nil
}
