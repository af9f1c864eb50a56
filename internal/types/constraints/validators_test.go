package constraints

import (
	"math"
	"regexp"
	"testing"
)

func TestMinValidator(t *testing.T) {
	tests := []struct {
		name      string
		validator *MinValidator
		value     any
		wantErr   bool
	}{
		{"int above min", &MinValidator{Min: 5, Kind: KindInt}, 10, false},
		{"int below min", &MinValidator{Min: 5, Kind: KindInt}, 3, true},
		{"int equal to min", &MinValidator{Min: 5, Kind: KindInt}, int64(5), false},
		{"float below min", &MinValidator{Min: 5.5, Kind: KindFloat}, 3.2, true},
		{"float accepts int", &MinValidator{Min: 5.5, Kind: KindFloat}, 6, false},
		{"string long enough", &MinValidator{Min: 3, Kind: KindString}, "hello", false},
		{"string too short", &MinValidator{Min: 3, Kind: KindString}, "hi", true},
		{"string for int kind", &MinValidator{Min: 1, Kind: KindInt}, "Hello", true},
		{"nil value", &MinValidator{Min: 5, Kind: KindInt}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator.Validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("MinValidator.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaxValidator(t *testing.T) {
	v := &MaxValidator{Max: 10, Kind: KindInt}
	if err := v.Validate(10); err != nil {
		t.Errorf("expected 10 to pass, got %v", err)
	}
	err := v.Validate(11)
	if err == nil {
		t.Fatal("expected 11 to fail")
	}
	if err.Error() != "must be at most 10" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestPatternValidator(t *testing.T) {
	v := &PatternValidator{Pattern: regexp.MustCompile(`^[a-z]+$`)}
	if err := v.Validate("abc"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := v.Validate("ABC"); err == nil {
		t.Error("expected mismatch error")
	}
	if err := v.Validate(42); err == nil {
		t.Error("expected non-string error")
	}
}

func TestFormatValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator Validator
		value     any
		wantErr   bool
	}{
		{"valid email", &EmailValidator{}, "a@example.com", false},
		{"invalid email", &EmailValidator{}, "not-an-email", true},
		{"valid url", &URLValidator{}, "https://example.com/x", false},
		{"url without scheme", &URLValidator{}, "example.com", true},
		{"valid phone", &PhoneValidator{}, "+14155552671", false},
		{"invalid phone", &PhoneValidator{}, "555-1234", true},
		{"min length ok", &MinLengthValidator{MinLength: 2}, []any{1, 2}, false},
		{"min length short", &MinLengthValidator{MinLength: 2}, []any{1}, true},
		{"max length long", &MaxLengthValidator{MaxLength: 1}, []int{1, 2}, true},
		{"max length scalar", &MaxLengthValidator{MaxLength: 1}, "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator.Validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestToInt64RejectsFloats(t *testing.T) {
	if _, ok := ToInt64(1.0); ok {
		t.Error("float64 should not convert to int64")
	}
	if v, ok := ToInt64(uint8(7)); !ok || v != 7 {
		t.Errorf("expected 7, got %d (%v)", v, ok)
	}
	if v, ok := ToFloat64(3); !ok || v != 3 {
		t.Errorf("expected 3, got %v (%v)", v, ok)
	}
}

func TestUnsignedBeyondInt64(t *testing.T) {
	huge := uint64(math.MaxUint64)

	if _, ok := ToInt64(huge); ok {
		t.Error("uint64 above MaxInt64 should not convert")
	}
	if _, ok := ToInt64(uint(math.MaxUint64)); ok {
		t.Error("uint above MaxInt64 should not convert")
	}

	if err := (&MaxValidator{Max: 10, Kind: KindInt}).Validate(huge); err == nil {
		t.Error("expected a huge uint64 to exceed max 10")
	} else if err.Error() != "must be at most 10" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if err := (&MaxValidator{Max: 10, Kind: KindInt}).Validate(uint(math.MaxUint64)); err == nil {
		t.Error("expected a huge uint to exceed max 10")
	}
	if err := (&MinValidator{Min: 5, Kind: KindInt}).Validate(huge); err != nil {
		t.Errorf("expected a huge uint64 to satisfy min 5, got %v", err)
	}
}
