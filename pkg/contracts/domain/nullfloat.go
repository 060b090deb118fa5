package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NullFloat is an optional numeric value. Invalid means the source cell was
// empty or unparseable; aggregations decide how to treat it, the type itself
// never substitutes a default.
type NullFloat struct {
	Value float64
	Valid bool
}

// Float wraps a known-good value.
func Float(v float64) NullFloat {
	return NullFloat{Value: v, Valid: true}
}

// Missing is the explicit missing marker.
func Missing() NullFloat {
	return NullFloat{}
}

// ParseNullFloat coerces a raw CSV cell to a NullFloat. Thousands separators
// and surrounding whitespace are tolerated; anything else unparseable yields
// the missing marker rather than an error.
func ParseNullFloat(s string) NullFloat {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return NullFloat{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NullFloat{}
	}
	return NullFloat{Value: v, Valid: true}
}

// MarshalJSON renders missing values as JSON null so charting frontends can
// draw gaps instead of zeros.
func (f NullFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON accepts null or a number.
func (f *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = NullFloat{Value: v, Valid: true}
	return nil
}
