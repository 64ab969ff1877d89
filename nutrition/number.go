package nutrition

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a nutrient quantity decoded leniently from JSON. Clients send
// numbers, numeric strings ("12.5", "12,5"), empty strings and nulls
// interchangeably; anything that isn't a finite number decodes to 0.
// Unmarshalling a Number never fails.
type Number float64

// Float returns n as a float64, with NaN and ±Inf collapsed to 0.
func (n Number) Float() float64 {
	return finite(float64(n))
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil
		}
		*n = Number(parseLoose(s))
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(finite(f))
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Float())
}

// Coerce applies the Number decoding rule to an already-decoded value:
// numeric kinds pass through, numeric strings are parsed, and everything
// else (nil, bools, maps, unparseable strings) is 0.
func Coerce(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case Number:
		return x.Float()
	case *float64:
		if x == nil {
			return 0
		}
		return finite(*x)
	case json.Number:
		return parseLoose(string(x))
	case string:
		return parseLoose(x)
	default:
		return 0
	}
}

func parseLoose(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// roundKcal rounds to whole kilocalories.
func roundKcal(f float64) float64 {
	return math.Round(f) + 0 // + 0 normalizes -0
}

// round1 rounds to one decimal place, the precision macros are stored with.
func round1(f float64) float64 {
	return math.Round(f*10)/10 + 0
}
