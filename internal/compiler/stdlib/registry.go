// Package stdlib provides the built-in functions reachable from method
// bodies as Namespace.function(args). The same registry backs the
// interpreter, the static checker and editor completion.
package stdlib

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/moops-lang/moops/internal/types"
)

// Func implements a built-in. Arguments have already been counted against
// the definition's arity.
type Func func(args []any) (any, error)

// FunctionDef represents a function signature in the standard library
type FunctionDef struct {
	Name        string // Function name (without namespace)
	Signature   string // Full signature: name(params) -> result
	Description string // One-line description of what the function does
	MinArgs     int
	MaxArgs     int
	Fn          Func
}

// ArityError reports a built-in called with the wrong number of arguments
type ArityError struct {
	Function string
	Min, Max int
	Got      int
}

func (e *ArityError) Error() string {
	want := fmt.Sprintf("%d", e.Min)
	if e.Max != e.Min {
		want = fmt.Sprintf("%d to %d", e.Min, e.Max)
	}
	return fmt.Sprintf("%s expects %s argument(s), got %d", e.Function, want, e.Got)
}

// StdlibRegistry contains all standard library functions organized by namespace.
var StdlibRegistry = map[string][]FunctionDef{
	"String": {
		{
			Name:        "length",
			Signature:   "length(Str $s) -> Int",
			Description: "Returns the length of a string in characters",
			MinArgs:     1, MaxArgs: 1,
			Fn: func(args []any) (any, error) {
				s, err := str("length", args[0])
				if err != nil {
					return nil, err
				}
				return int64(utf8.RuneCountInString(s)), nil
			},
		},
		{
			Name:        "slugify",
			Signature:   "slugify(Str $s) -> Str",
			Description: "Converts a string to a URL-friendly slug (lowercase, hyphens)",
			MinArgs:     1, MaxArgs: 1,
			Fn: stringFn("slugify", slugify),
		},
		{
			Name:        "upcase",
			Signature:   "upcase(Str $s) -> Str",
			Description: "Converts a string to uppercase",
			MinArgs:     1, MaxArgs: 1,
			Fn: stringFn("upcase", strings.ToUpper),
		},
		{
			Name:        "downcase",
			Signature:   "downcase(Str $s) -> Str",
			Description: "Converts a string to lowercase",
			MinArgs:     1, MaxArgs: 1,
			Fn: stringFn("downcase", strings.ToLower),
		},
		{
			Name:        "trim",
			Signature:   "trim(Str $s) -> Str",
			Description: "Removes leading and trailing whitespace from a string",
			MinArgs:     1, MaxArgs: 1,
			Fn: stringFn("trim", strings.TrimSpace),
		},
		{
			Name:        "contains",
			Signature:   "contains(Str $s, Str $substr) -> Bool",
			Description: "Checks if a string contains a substring",
			MinArgs:     2, MaxArgs: 2,
			Fn: func(args []any) (any, error) {
				s, err := str("contains", args[0])
				if err != nil {
					return nil, err
				}
				sub, err := str("contains", args[1])
				if err != nil {
					return nil, err
				}
				return strings.Contains(s, sub), nil
			},
		},
		{
			Name:        "replace",
			Signature:   "replace(Str $s, Str $old, Str $new) -> Str",
			Description: "Replaces all occurrences of old with new in the string",
			MinArgs:     3, MaxArgs: 3,
			Fn: func(args []any) (any, error) {
				parts := make([]string, 3)
				for i, arg := range args {
					s, err := str("replace", arg)
					if err != nil {
						return nil, err
					}
					parts[i] = s
				}
				return strings.ReplaceAll(parts[0], parts[1], parts[2]), nil
			},
		},
		{
			Name:        "split",
			Signature:   "split(Str $s, Str $sep) -> ArrayRef[Str]",
			Description: "Splits a string around each separator",
			MinArgs:     2, MaxArgs: 2,
			Fn: func(args []any) (any, error) {
				s, err := str("split", args[0])
				if err != nil {
					return nil, err
				}
				sep, err := str("split", args[1])
				if err != nil {
					return nil, err
				}
				parts := strings.Split(s, sep)
				out := make([]any, len(parts))
				for i, p := range parts {
					out[i] = p
				}
				return out, nil
			},
		},
	},
	"Array": {
		{
			Name:        "length",
			Signature:   "length(ArrayRef $arr) -> Int",
			Description: "Returns the number of elements in an array",
			MinArgs:     1, MaxArgs: 1,
			Fn: func(args []any) (any, error) {
				arr, err := array("length", args[0])
				if err != nil {
					return nil, err
				}
				return int64(len(arr)), nil
			},
		},
		{
			Name:        "contains",
			Signature:   "contains(ArrayRef $arr, $value) -> Bool",
			Description: "Checks if an array contains a specific value",
			MinArgs:     2, MaxArgs: 2,
			Fn: func(args []any) (any, error) {
				arr, err := array("contains", args[0])
				if err != nil {
					return nil, err
				}
				for _, item := range arr {
					if types.Equal(item, args[1]) {
						return true, nil
					}
				}
				return false, nil
			},
		},
		{
			Name:        "push",
			Signature:   "push(ArrayRef $arr, @values) -> ArrayRef",
			Description: "Returns a new array with the values appended",
			MinArgs:     1, MaxArgs: -1,
			Fn: func(args []any) (any, error) {
				arr, err := array("push", args[0])
				if err != nil {
					return nil, err
				}
				out := make([]any, 0, len(arr)+len(args)-1)
				out = append(out, arr...)
				return append(out, args[1:]...), nil
			},
		},
		{
			Name:        "join",
			Signature:   "join(ArrayRef $arr, Str $sep) -> Str",
			Description: "Joins the elements of an array into a string",
			MinArgs:     2, MaxArgs: 2,
			Fn: func(args []any) (any, error) {
				arr, err := array("join", args[0])
				if err != nil {
					return nil, err
				}
				sep, err := str("join", args[1])
				if err != nil {
					return nil, err
				}
				parts := make([]string, len(arr))
				for i, item := range arr {
					parts[i] = types.Stringify(item)
				}
				return strings.Join(parts, sep), nil
			},
		},
	},
	"Hash": {
		{
			Name:        "has_key",
			Signature:   "has_key(HashRef $h, Str $key) -> Bool",
			Description: "Checks if a hash contains a specific key",
			MinArgs:     2, MaxArgs: 2,
			Fn: func(args []any) (any, error) {
				h, err := hash("has_key", args[0])
				if err != nil {
					return nil, err
				}
				key, err := str("has_key", args[1])
				if err != nil {
					return nil, err
				}
				_, ok := h[key]
				return ok, nil
			},
		},
		{
			Name:        "keys",
			Signature:   "keys(HashRef $h) -> ArrayRef[Str]",
			Description: "Returns the keys of a hash in sorted order",
			MinArgs:     1, MaxArgs: 1,
			Fn: func(args []any) (any, error) {
				h, err := hash("keys", args[0])
				if err != nil {
					return nil, err
				}
				keys := make([]string, 0, len(h))
				for k := range h {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				out := make([]any, len(keys))
				for i, k := range keys {
					out[i] = k
				}
				return out, nil
			},
		},
	},
	"UUID": {
		{
			Name:        "generate",
			Signature:   "generate() -> Str",
			Description: "Generates a new random UUID (v4)",
			MinArgs:     0, MaxArgs: 0,
			Fn: func(args []any) (any, error) {
				return uuid.NewString(), nil
			},
		},
	},
}

// GetNamespaces returns a sorted list of all available namespaces
func GetNamespaces() []string {
	namespaces := make([]string, 0, len(StdlibRegistry))
	for namespace := range StdlibRegistry {
		namespaces = append(namespaces, namespace)
	}
	// Sort for consistent output
	sort.Strings(namespaces)
	return namespaces
}

// GetFunctions returns all functions for a given namespace
// Returns nil if the namespace doesn't exist
func GetFunctions(namespace string) []FunctionDef {
	return StdlibRegistry[namespace]
}

// FunctionNames returns the function names of a namespace
func FunctionNames(namespace string) []string {
	funcs := StdlibRegistry[namespace]
	out := make([]string, len(funcs))
	for i, fn := range funcs {
		out[i] = fn.Name
	}
	return out
}

// Lookup finds one function
func Lookup(namespace, name string) (FunctionDef, bool) {
	for _, fn := range StdlibRegistry[namespace] {
		if fn.Name == name {
			return fn, true
		}
	}
	return FunctionDef{}, false
}

// Call checks the arity and runs fn
func (fn FunctionDef) Call(namespace string, args []any) (any, error) {
	if len(args) < fn.MinArgs || (fn.MaxArgs >= 0 && len(args) > fn.MaxArgs) {
		return nil, &ArityError{Function: namespace + "." + fn.Name, Min: fn.MinArgs, Max: fn.MaxArgs, Got: len(args)}
	}
	return fn.Fn(args)
}

// TotalFunctionCount returns the total number of functions across all namespaces
func TotalFunctionCount() int {
	total := 0
	for _, funcs := range StdlibRegistry {
		total += len(funcs)
	}
	return total
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func stringFn(name string, fn func(string) string) Func {
	return func(args []any) (any, error) {
		s, err := str(name, args[0])
		if err != nil {
			return nil, err
		}
		return fn(s), nil
	}
}

func str(fn string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s expects a string, got %s", fn, types.FormatValue(v))
	}
	return s, nil
}

func array(fn string, v any) ([]any, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s expects an array, got %s", fn, types.FormatValue(v))
	}
	return arr, nil
}

func hash(fn string, v any) (map[string]any, error) {
	h, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s expects a hash, got %s", fn, types.FormatValue(v))
	}
	return h, nil
}
