package sanitize

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func TestSanitizeScalars(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"nil stays nil", nil, nil},
		{"int becomes int64", 42, int64(42)},
		{"negative int", -7, int64(-7)},
		{"uint becomes int64", uint(9), int64(9)},
		{"finite float passes", 3.14, 3.14},
		{"float32 widens", float32(2.5), 2.5},
		{"NaN becomes nil", math.NaN(), nil},
		{"positive infinity becomes nil", math.Inf(1), nil},
		{"negative infinity becomes nil", math.Inf(-1), nil},
		{"bool passes", true, true},
		{"string passes", "hello", "hello"},
		{"timestamp becomes RFC3339", ts, "2024-03-15T10:30:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sanitize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeSequences(t *testing.T) {
	got := Sanitize([]float64{1.5, math.NaN(), math.Inf(1), 2.0})
	want := []interface{}{1.5, nil, nil, 2.0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sanitize float slice = %v, want %v", got, want)
	}

	got = Sanitize([]interface{}{int(3), math.Inf(-1), "x"})
	want = []interface{}{int64(3), nil, "x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sanitize mixed slice = %v, want %v", got, want)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []interface{}{
		nil, int64(42), 3.14, true, "text", "2024-03-15T10:30:00Z",
		[]interface{}{int64(1), 2.5, nil},
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Sanitize not idempotent for %v: %v != %v", in, once, twice)
		}
	}
}

func TestSanitizeIntegerRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 1 << 52, -(1 << 52), math.MaxInt64} {
		if got := Sanitize(n); got != n {
			t.Errorf("Sanitize(%d) = %v, want exact round-trip", n, got)
		}
	}
}

func TestSanitizeUnknownPassesThrough(t *testing.T) {
	type opaque struct{ A int }
	in := opaque{A: 1}
	if got := Sanitize(in); got != in {
		t.Errorf("unrecognized value should pass through unchanged, got %v", got)
	}
}

func TestSanitizeFloatPointer(t *testing.T) {
	if got := SanitizeFloat(math.NaN()); got != nil {
		t.Errorf("SanitizeFloat(NaN) = %v, want nil", got)
	}
	if got := SanitizeFloat(1.25); got == nil || *got != 1.25 {
		t.Errorf("SanitizeFloat(1.25) = %v, want 1.25", got)
	}
}
