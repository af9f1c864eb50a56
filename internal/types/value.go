package types

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Blessed is implemented by object-system instances. Object, InstanceOf and
// ConsumerOf predicates test values through it.
type Blessed interface {
	ClassName() string
	Isa(class string) bool
	Does(role string) bool
}

// Callable is a value usable as a code reference.
type Callable interface {
	Invoke(args ...any) (any, error)
}

// IsInt reports whether v is a Go integer kind. Floats are not integers,
// even when they hold a whole number.
func IsInt(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// IsNum reports whether v is an integer or a finite float.
func IsNum(v any) bool {
	switch n := v.(type) {
	case float32:
		return !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)
	case float64:
		return !math.IsNaN(n) && !math.IsInf(n, 0)
	}
	return IsInt(v)
}

// AsInt64 returns v as an int64 if it is an integer kind.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// beyondInt64 reports whether v is an unsigned integer too large for int64
func beyondInt64(v any) bool {
	switch n := v.(type) {
	case uint:
		return uint64(n) > math.MaxInt64
	case uint64:
		return n > math.MaxInt64
	}
	return false
}

// AsFloat64 returns v as a float64 if it is numeric.
func AsFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	if i, ok := AsInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// IsArray reports whether v is a slice or array.
func IsArray(v any) bool {
	if v == nil {
		return false
	}
	switch v.(type) {
	case []any:
		return true
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// IsHash reports whether v is a map keyed by strings.
func IsHash(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(map[string]any); ok {
		return true
	}
	t := reflect.TypeOf(v)
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

// Elements returns the items of an array value.
func Elements(v any) []any {
	if items, ok := v.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// Entries returns the values of a hash keyed by name.
func Entries(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	rv := reflect.ValueOf(v)
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out
}

// FormatValue renders a value the way failure messages quote it.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "Undef"
	case string:
		return strconv.Quote(x)
	case bool:
		if x {
			return "1"
		}
		return `""`
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case Blessed:
		return x.ClassName() + " object"
	case fmt.Stringer:
		return x.String()
	}
	if IsInt(v) {
		return fmt.Sprintf("%d", v)
	}
	if IsArray(v) {
		items := Elements(v)
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	if IsHash(v) {
		m := Entries(v)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + " => " + FormatValue(m[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprintf("%v", v)
}

// Stringify renders a value for output: strings as they are, undef as the
// empty string, everything else as FormatValue does.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case error:
		return x.Error()
	}
	return FormatValue(v)
}

// Equal compares two values structurally. Integers and floats compare by
// numeric value; objects compare by identity.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if IsNum(a) && IsNum(b) {
		if ai, ok := AsInt64(a); ok {
			if bi, ok := AsInt64(b); ok {
				return ai == bi
			}
		}
		af, _ := AsFloat64(a)
		bf, _ := AsFloat64(b)
		return af == bf
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	if IsArray(a) && IsArray(b) {
		xs, ys := Elements(a), Elements(b)
		if len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !Equal(xs[i], ys[i]) {
				return false
			}
		}
		return true
	}
	if IsHash(a) && IsHash(b) {
		xm, ym := Entries(a), Entries(b)
		if len(xm) != len(ym) {
			return false
		}
		for k, xv := range xm {
			yv, ok := ym[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
