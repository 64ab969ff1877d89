package nutrition

import (
	"encoding/json"
	"math"
	"testing"
)

// TestNumber_UnmarshalJSON verifies the lenient decoding rule for every
// shape clients send.
func TestNumber_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{`12.5`, 12.5},
		{`0`, 0},
		{`-3`, -3},
		{`"42"`, 42},
		{`" 7.25 "`, 7.25},
		{`"12,5"`, 12.5},
		{`""`, 0},
		{`"abc"`, 0},
		{`"NaN"`, 0},
		{`"Infinity"`, 0},
		{`null`, 0},
		{`true`, 0},
		{`{"x":1}`, 0},
		{`[1,2]`, 0},
		{`1e400`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			var n Number
			if err := json.Unmarshal([]byte(tc.raw), &n); err != nil {
				t.Fatalf("unmarshal %s returned error: %v", tc.raw, err)
			}
			if float64(n) != tc.want {
				t.Errorf("unmarshal %s = %v, want %v", tc.raw, float64(n), tc.want)
			}
		})
	}
}

// TestNumber_InStruct verifies a bad field does not fail decoding of its neighbours.
func TestNumber_InStruct(t *testing.T) {
	var ing Ingredient
	if err := json.Unmarshal([]byte(`{"name":"egg","amount":"60","calories":"x","protein":7.6}`), &ing); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ing.Amount != 60 || ing.Calories != 0 || ing.Protein != 7.6 {
		t.Errorf("ingredient = %+v", ing)
	}
}

// TestNumber_MarshalNonFinite verifies NaN is written as 0 instead of failing encoding.
func TestNumber_MarshalNonFinite(t *testing.T) {
	b, err := json.Marshal(struct{ N Number }{Number(math.NaN())})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"N":0}` {
		t.Errorf("marshal = %s, want {\"N\":0}", b)
	}
}

// TestCoerce verifies the same rule applied to already-decoded values.
func TestCoerce(t *testing.T) {
	f := 2.5
	var nilPtr *float64
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 3.5, 3.5},
		{"int", 7, 7},
		{"int64", int64(9), 9},
		{"int8", int8(-3), -3},
		{"int16", int16(300), 300},
		{"uint", uint(5), 5},
		{"uint8", uint8(200), 200},
		{"uint16", uint16(1000), 1000},
		{"uint32", uint32(42), 42},
		{"uint64", uint64(64), 64},
		{"string", "11.1", 11.1},
		{"bad string", "abc", 0},
		{"json.Number", json.Number("4"), 4},
		{"pointer", &f, 2.5},
		{"nil pointer", nilPtr, 0},
		{"NaN", math.NaN(), 0},
		{"bool", true, 0},
		{"map", map[string]any{}, 0},
	}
	for _, tc := range cases {
		if got := Coerce(tc.in); got != tc.want {
			t.Errorf("%s: Coerce(%v) = %v, want %v", tc.name, tc.in, got, tc.want)
		}
	}
}
