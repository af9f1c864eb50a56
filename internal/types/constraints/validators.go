// Package constraints is a standalone value-constraint library with its own
// calling convention: validators return a plain error describing the first
// problem found. It knows nothing about named type predicates; the types
// package bridges it in under the Constraints::Validation library name.
package constraints

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"
)

var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// Validator defines the interface for value validators.
// A nil value is always accepted; presence is somebody else's problem.
type Validator interface {
	Validate(value any) error
}

// Kind selects how Min and Max interpret a value.
type Kind int

const (
	// KindInt compares integer values
	KindInt Kind = iota
	// KindFloat compares numeric values as float64
	KindFloat
	// KindString compares string length in runes
	KindString
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MinValidator validates minimum values for numbers and string lengths
type MinValidator struct {
	Min  any
	Kind Kind
}

// Validate implements the Validator interface
func (v *MinValidator) Validate(value any) error {
	if value == nil {
		return nil
	}

	switch v.Kind {
	case KindInt:
		minVal, ok := ToInt64(v.Min)
		if !ok {
			return fmt.Errorf("invalid min constraint")
		}
		if aboveInt64(value) {
			return nil
		}
		intVal, ok := ToInt64(value)
		if !ok {
			return fmt.Errorf("expected integer value")
		}
		if intVal < minVal {
			return fmt.Errorf("must be at least %d", minVal)
		}

	case KindFloat:
		floatVal, ok := ToFloat64(value)
		if !ok {
			return fmt.Errorf("expected numeric value")
		}
		minVal, ok := ToFloat64(v.Min)
		if !ok {
			return fmt.Errorf("invalid min constraint")
		}
		if floatVal < minVal {
			return fmt.Errorf("must be at least %v", minVal)
		}

	case KindString:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string value")
		}
		minLen, ok := ToInt64(v.Min)
		if !ok {
			return fmt.Errorf("invalid min constraint")
		}
		if int64(utf8.RuneCountInString(strVal)) < minLen {
			return fmt.Errorf("must be at least %d characters", minLen)
		}
	}

	return nil
}

// MaxValidator validates maximum values for numbers and string lengths
type MaxValidator struct {
	Max  any
	Kind Kind
}

// Validate implements the Validator interface
func (v *MaxValidator) Validate(value any) error {
	if value == nil {
		return nil
	}

	switch v.Kind {
	case KindInt:
		maxVal, ok := ToInt64(v.Max)
		if !ok {
			return fmt.Errorf("invalid max constraint")
		}
		if aboveInt64(value) {
			return fmt.Errorf("must be at most %d", maxVal)
		}
		intVal, ok := ToInt64(value)
		if !ok {
			return fmt.Errorf("expected integer value")
		}
		if intVal > maxVal {
			return fmt.Errorf("must be at most %d", maxVal)
		}

	case KindFloat:
		floatVal, ok := ToFloat64(value)
		if !ok {
			return fmt.Errorf("expected numeric value")
		}
		maxVal, ok := ToFloat64(v.Max)
		if !ok {
			return fmt.Errorf("invalid max constraint")
		}
		if floatVal > maxVal {
			return fmt.Errorf("must be at most %v", maxVal)
		}

	case KindString:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string value")
		}
		maxLen, ok := ToInt64(v.Max)
		if !ok {
			return fmt.Errorf("invalid max constraint")
		}
		if int64(utf8.RuneCountInString(strVal)) > maxLen {
			return fmt.Errorf("must be at most %d characters", maxLen)
		}
	}

	return nil
}

// PatternValidator validates string values against a regex pattern
type PatternValidator struct {
	Pattern *regexp.Regexp
}

// Validate implements the Validator interface
func (v *PatternValidator) Validate(value any) error {
	if value == nil {
		return nil
	}

	strVal, ok := value.(string)
	if !ok {
		return fmt.Errorf("pattern validation requires string value")
	}

	if !v.Pattern.MatchString(strVal) {
		return fmt.Errorf("does not match pattern %s", v.Pattern.String())
	}

	return nil
}

// EmailValidator validates email addresses
type EmailValidator struct{}

// Validate implements the Validator interface
func (v *EmailValidator) Validate(value any) error {
	if value == nil {
		return nil
	}

	strVal, ok := value.(string)
	if !ok {
		return fmt.Errorf("email validation requires string value")
	}

	if strings.TrimSpace(strVal) == "" {
		return fmt.Errorf("email address cannot be empty")
	}

	if _, err := mail.ParseAddress(strVal); err != nil {
		return fmt.Errorf("must be a valid email address")
	}

	return nil
}

// URLValidator validates absolute URLs
type URLValidator struct{}

// Validate implements the Validator interface
func (v *URLValidator) Validate(value any) error {
	if value == nil {
		return nil
	}

	strVal, ok := value.(string)
	if !ok {
		return fmt.Errorf("URL validation requires string value")
	}

	if strings.TrimSpace(strVal) == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsedURL, err := url.Parse(strVal)
	if err != nil {
		return fmt.Errorf("must be a valid URL")
	}
	if parsedURL.Scheme == "" {
		return fmt.Errorf("URL must include a scheme (http, https, etc.)")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}

// PhoneValidator validates phone numbers in E.164 format
type PhoneValidator struct{}

// Validate implements the Validator interface
func (v *PhoneValidator) Validate(value any) error {
	if value == nil {
		return nil
	}

	strVal, ok := value.(string)
	if !ok {
		return fmt.Errorf("phone validation requires string value")
	}

	if !e164Pattern.MatchString(strVal) {
		return fmt.Errorf("must be a valid phone number in E.164 format (+[country code][number])")
	}

	return nil
}

// MinLengthValidator validates the minimum number of items in a slice
type MinLengthValidator struct {
	MinLength int
}

// Validate implements the Validator interface
func (v *MinLengthValidator) Validate(value any) error {
	if value == nil {
		return nil
	}

	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		return fmt.Errorf("min_length validation requires array or slice value")
	}

	if val.Len() < v.MinLength {
		return fmt.Errorf("must contain at least %d items", v.MinLength)
	}

	return nil
}

// MaxLengthValidator validates the maximum number of items in a slice
type MaxLengthValidator struct {
	MaxLength int
}

// Validate implements the Validator interface
func (v *MaxLengthValidator) Validate(value any) error {
	if value == nil {
		return nil
	}

	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		return fmt.Errorf("max_length validation requires array or slice value")
	}

	if val.Len() > v.MaxLength {
		return fmt.Errorf("must contain at most %d items", v.MaxLength)
	}

	return nil
}

// ToInt64 converts Go integer kinds to int64. Floats are rejected.
func ToInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// aboveInt64 reports whether value is an unsigned integer past the int64
// range, which is above any int64 bound
func aboveInt64(value any) bool {
	switch v := value.(type) {
	case uint:
		return uint64(v) > math.MaxInt64
	case uint64:
		return v > math.MaxInt64
	}
	return false
}

// ToFloat64 converts any Go numeric kind to float64
func ToFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	if i, ok := ToInt64(value); ok {
		return float64(i), true
	}
	return 0, false
}
