package problems

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Tuple, Set and List are the generic values Parse produces for
// parenthesised, braced and bracketed literals.
type (
	Tuple []any
	Set   []any
	List  []any
)

func formatCall(name string, args Args) string {
	parts := make([]string, 0, len(args.Positional)+len(args.Keyword))
	for _, a := range args.Positional {
		parts = append(parts, formatValue(a))
	}
	keys := make([]string, 0, len(args.Keyword))
	for k := range args.Keyword {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+formatValue(args.Keyword[k]))
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	case Tuple:
		return formatTuple(x)
	case Set:
		return formatSet(x)
	case List:
		return "[" + strings.Join(formatAll(x), ", ") + "]"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Array:
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		return formatTuple(elems)
	case reflect.Slice:
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		return "[" + strings.Join(formatAll(elems), ", ") + "]"
	case reflect.Map:
		keys := make([]any, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.Interface())
		}
		if rv.Type().Elem().Kind() == reflect.Struct && rv.Type().Elem().NumField() == 0 {
			return formatSet(keys)
		}
		entries := make([]string, 0, len(keys))
		for _, k := range rv.MapKeys() {
			entries = append(entries, formatValue(k.Interface())+": "+formatValue(rv.MapIndex(k).Interface()))
		}
		sort.Strings(entries)
		return "{" + strings.Join(entries, ", ") + "}"
	}
	return fmt.Sprintf("%v", v)
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

func formatTuple(elems []any) string {
	s := formatAll(elems)
	if len(s) == 1 {
		return "(" + s[0] + ",)"
	}
	return "(" + strings.Join(s, ", ") + ")"
}

func formatSet(elems []any) string {
	s := formatAll(elems)
	sort.Strings(s)
	return "{" + strings.Join(s, ", ") + "}"
}

func formatAll(elems []any) []string {
	s := make([]string, len(elems))
	for i, e := range elems {
		s[i] = formatValue(e)
	}
	return s
}
