package strings

import (
	"reflect"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Int", "Int", 0},
		{"héllo", "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			if got := LevenshteinDistance(tt.s1, tt.s2); got != tt.want {
				t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
			}
		})
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"PositiveInt", "NegativeInt", "Str", "Num"}

	tests := []struct {
		name   string
		target string
		opts   *FuzzyMatchOptions
		want   []string
	}{
		{"typo", "PositveInt", nil, []string{"PositiveInt"}},
		{"case insensitive", "str", nil, []string{"Str", "Num"}},
		{"nothing close", "HashRef", nil, []string{}},
		{"empty target", "", nil, []string{}},
		{"limited", "Nu", &FuzzyMatchOptions{MaxDistance: 3, MaxSuggestions: 1}, []string{"Num"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindSimilar(tt.target, candidates, tt.opts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindSimilar(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestFindBestMatch(t *testing.T) {
	if got := FindBestMatch("Bol", []string{"Bool", "Int"}, nil); got != "Bool" {
		t.Errorf("FindBestMatch() = %q, want Bool", got)
	}
	if got := FindBestMatch("Zzzzzzzz", []string{"Bool"}, nil); got != "" {
		t.Errorf("FindBestMatch() = %q, want empty", got)
	}
}

func TestDidYouMean(t *testing.T) {
	if got := DidYouMean(nil); got != "" {
		t.Errorf("DidYouMean(nil) = %q", got)
	}
	if got := DidYouMean([]string{"Int"}); got != "did you mean Int?" {
		t.Errorf("DidYouMean(one) = %q", got)
	}
	if got := DidYouMean([]string{"Int", "Num"}); got != "did you mean one of: Int, Num?" {
		t.Errorf("DidYouMean(two) = %q", got)
	}
}
