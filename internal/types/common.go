package types

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Library names for the common refinements.
const (
	NumericLibrary = "Types::Common::Numeric"
	StringLibrary  = "Types::Common::String"
)

var (
	// PositiveInt accepts integers greater than zero
	PositiveInt = NewConstraint("PositiveInt", intTest(func(n int64) bool { return n > 0 }),
		WithParent(Int), WithMessage("Must be a positive integer"))
	// PositiveOrZeroInt accepts integers greater than or equal to zero
	PositiveOrZeroInt = NewConstraint("PositiveOrZeroInt", intTest(func(n int64) bool { return n >= 0 }),
		WithParent(Int), WithMessage("Must be an integer greater than or equal to zero"))
	// NegativeInt accepts integers less than zero
	NegativeInt = NewConstraint("NegativeInt", intTest(func(n int64) bool { return n < 0 }),
		WithParent(Int), WithMessage("Must be a negative integer"))
	// NegativeOrZeroInt accepts integers less than or equal to zero
	NegativeOrZeroInt = NewConstraint("NegativeOrZeroInt", intTest(func(n int64) bool { return n <= 0 }),
		WithParent(Int), WithMessage("Must be an integer less than or equal to zero"))
	// PositiveNum accepts numbers greater than zero
	PositiveNum = NewConstraint("PositiveNum", numTest(func(f float64) bool { return f > 0 }),
		WithParent(Num), WithMessage("Must be a positive number"))
	// PositiveOrZeroNum accepts numbers greater than or equal to zero
	PositiveOrZeroNum = NewConstraint("PositiveOrZeroNum", numTest(func(f float64) bool { return f >= 0 }),
		WithParent(Num), WithMessage("Must be a number greater than or equal to zero"))
	// NegativeNum accepts numbers less than zero
	NegativeNum = NewConstraint("NegativeNum", numTest(func(f float64) bool { return f < 0 }),
		WithParent(Num), WithMessage("Must be a negative number"))
	// SingleDigit accepts integers from -9 to 9
	SingleDigit = NewConstraint("SingleDigit", intTest(func(n int64) bool { return n >= -9 && n <= 9 }),
		WithParent(Int), WithMessage("Must be a single digit"))
)

var (
	// NonEmptyStr accepts strings with at least one character
	NonEmptyStr = NewConstraint("NonEmptyStr", strTest(func(s string) bool { return s != "" }),
		WithParent(Str), WithMessage("Must be a string longer than 0 characters"))
	// SimpleStr accepts short single-line strings
	SimpleStr = NewConstraint("SimpleStr", strTest(func(s string) bool {
		return utf8.RuneCountInString(s) <= 255 && !strings.ContainsRune(s, '\n')
	}), WithParent(Str), WithMessage("Must be a single line of no more than 255 chars"))
	// LowerCaseStr accepts non-empty strings without uppercase letters
	LowerCaseStr = NewConstraint("LowerCaseStr", strTest(func(s string) bool {
		return s != "" && strings.ToLower(s) == s
	}), WithParent(Str), WithMessage("Must not contain upper case letters"))
	// UpperCaseStr accepts non-empty strings without lowercase letters
	UpperCaseStr = NewConstraint("UpperCaseStr", strTest(func(s string) bool {
		return s != "" && strings.ToUpper(s) == s
	}), WithParent(Str), WithMessage("Must not contain lower case letters"))
	// NumericCode accepts non-empty strings of digits
	NumericCode = NewConstraint("NumericCode", strTest(numericCode.MatchString),
		WithParent(Str), WithMessage("Must be a numeric code"))
)

var numericCode = regexp.MustCompile(`^[0-9]+$`)

func intTest(f func(int64) bool) func(any) bool {
	return func(v any) bool {
		n, ok := AsInt64(v)
		if !ok && beyondInt64(v) {
			// Tests are bounds, so the largest int64 answers for anything above it
			return f(math.MaxInt64)
		}
		return ok && f(n)
	}
}

func numTest(f func(float64) bool) func(any) bool {
	return func(v any) bool {
		n, ok := AsFloat64(v)
		return ok && f(n)
	}
}

func strTest(f func(string) bool) func(any) bool {
	return func(v any) bool {
		s, ok := v.(string)
		return ok && f(s)
	}
}

// CommonNumeric builds the Types::Common::Numeric library.
func CommonNumeric() *Library {
	return NewLibrary(NumericLibrary).Add(
		PositiveInt, PositiveOrZeroInt, NegativeInt, NegativeOrZeroInt,
		PositiveNum, PositiveOrZeroNum, NegativeNum, SingleDigit,
	)
}

// CommonString builds the Types::Common::String library.
func CommonString() *Library {
	return NewLibrary(StringLibrary).Add(
		NonEmptyStr, SimpleStr, LowerCaseStr, UpperCaseStr, NumericCode,
	)
}
