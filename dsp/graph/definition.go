package graph

import (
	"math"
	"strconv"
)

// Definition is the declarative description a module is built from.
// Type selects the variant; Params carries type-specific settings.
type Definition struct {
	Type   string         `json:"type"             yaml:"type"`
	Name   string         `json:"name,omitempty"   yaml:"name,omitempty"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Num returns a numeric parameter, or def if missing or not a finite number.
// Booleans read as 0 or 1 and numeric strings are parsed.
func (d Definition) Num(key string, def float64) float64 {
	raw, ok := d.Params[key]
	if !ok {
		return def
	}

	var v float64

	switch t := raw.(type) {
	case float64:
		v = t
	case float32:
		v = float64(t)
	case int:
		v = float64(t)
	case int64:
		v = float64(t)
	case uint64:
		v = float64(t)
	case bool:
		if t {
			v = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return def
		}

		v = parsed
	default:
		return def
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// Int returns Num rounded to the nearest integer.
func (d Definition) Int(key string, def int) int {
	return int(math.Round(d.Num(key, float64(def))))
}

// Str returns a string parameter, or def if missing or not a string.
func (d Definition) Str(key, def string) string {
	if s, ok := d.Params[key].(string); ok {
		return s
	}

	return def
}
