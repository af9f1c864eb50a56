package interp

import (
	"errors"
	"fmt"

	"github.com/moops-lang/moops/internal/types"
)

var (
	errDivisionByZero = errors.New("division by zero")
	errModuloByZero   = errors.New("modulo by zero")
)

// truthy: undef, false, zero and the empty string are false
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := types.AsFloat64(v); ok {
		return f != 0
	}
	return true
}

func unary(op string, v any) (any, error) {
	switch op {
	case "!", "not":
		return !truthy(v), nil
	case "-":
		if i, ok := types.AsInt64(v); ok {
			return -i, nil
		}
		if f, ok := types.AsFloat64(v); ok {
			return -f, nil
		}
		return nil, fmt.Errorf("cannot negate %s", describe(v))
	}
	return nil, fmt.Errorf("unknown unary operator %s", op)
}

// binary applies an arithmetic, comparison or concatenation operator.
// Values are never coerced: strings are not numbers.
func binary(op string, left, right any) (any, error) {
	switch op {
	case "~":
		return types.Stringify(left) + types.Stringify(right), nil
	case "==":
		return types.Equal(left, right), nil
	case "!=":
		return !types.Equal(left, right), nil
	case "<", ">", "<=", ">=":
		return compare(op, left, right)
	case "+", "-", "*", "/", "%":
		return arithmetic(op, left, right)
	}
	return nil, fmt.Errorf("unknown operator %s", op)
}

func arithmetic(op string, left, right any) (any, error) {
	if !types.IsNum(left) || !types.IsNum(right) {
		return nil, fmt.Errorf("cannot apply %s to %s and %s", op, describe(left), describe(right))
	}

	li, lok := types.AsInt64(left)
	ri, rok := types.AsInt64(right)
	if lok && rok {
		switch op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		case "/":
			if ri == 0 {
				return nil, errDivisionByZero
			}
			if li%ri == 0 {
				return li / ri, nil
			}
			return float64(li) / float64(ri), nil
		case "%":
			if ri == 0 {
				return nil, errModuloByZero
			}
			return li % ri, nil
		}
	}

	if op == "%" {
		return nil, fmt.Errorf("%% needs integers, got %s and %s", describe(left), describe(right))
	}
	lf, _ := types.AsFloat64(left)
	rf, _ := types.AsFloat64(right)
	switch op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	default:
		if rf == 0 {
			return nil, errDivisionByZero
		}
		return lf / rf, nil
	}
}

func compare(op string, left, right any) (any, error) {
	var c int
	switch {
	case types.IsNum(left) && types.IsNum(right):
		lf, _ := types.AsFloat64(left)
		rf, _ := types.AsFloat64(right)
		switch {
		case lf < rf:
			c = -1
		case lf > rf:
			c = 1
		}
	default:
		ls, lok := left.(string)
		rs, rok := right.(string)
		if !lok || !rok {
			return nil, fmt.Errorf("cannot compare %s with %s", describe(left), describe(right))
		}
		switch {
		case ls < rs:
			c = -1
		case ls > rs:
			c = 1
		}
	}

	switch op {
	case "<":
		return c < 0, nil
	case ">":
		return c > 0, nil
	case "<=":
		return c <= 0, nil
	default:
		return c >= 0, nil
	}
}

func index(container, idx any) (any, error) {
	switch c := container.(type) {
	case []any:
		i, err := position(c, idx)
		if err != nil {
			return nil, err
		}
		if i >= len(c) {
			return nil, nil
		}
		return c[i], nil
	case map[string]any:
		key, ok := idx.(string)
		if !ok {
			return nil, fmt.Errorf("hash keys are strings, got %s", describe(idx))
		}
		return c[key], nil
	}
	return nil, fmt.Errorf("cannot index %s", describe(container))
}

// setIndex stores v at idx. Arrays grow by one when idx is their length.
func setIndex(container, idx, v any) (any, error) {
	switch c := container.(type) {
	case []any:
		i, err := position(c, idx)
		if err != nil {
			return nil, err
		}
		switch {
		case i < len(c):
			c[i] = v
			return c, nil
		case i == len(c):
			return append(c, v), nil
		}
		return nil, fmt.Errorf("index %d out of range (length %d)", i, len(c))
	case map[string]any:
		key, ok := idx.(string)
		if !ok {
			return nil, fmt.Errorf("hash keys are strings, got %s", describe(idx))
		}
		c[key] = v
		return c, nil
	}
	return nil, fmt.Errorf("cannot index %s", describe(container))
}

// position resolves an array index; negative indexes count from the end.
func position(arr []any, idx any) (int, error) {
	i, ok := types.AsInt64(idx)
	if !ok {
		return 0, fmt.Errorf("array index must be an integer, got %s", describe(idx))
	}
	if i < 0 {
		i += int64(len(arr))
		if i < 0 {
			return 0, fmt.Errorf("index %d out of range (length %d)", i-int64(len(arr)), len(arr))
		}
	}
	return int(i), nil
}

// copyValue gives containers fresh storage so values read from or handed
// to objects are never aliased.
func copyValue(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = copyValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = copyValue(item)
		}
		return out
	}
	return v
}
