package revenue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Record is one timestamped revenue amount returned by the backend
type Record struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// UnmarshalJSON accepts revenue as a JSON number or a finite numeric string
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date    string          `json:"date"`
		Revenue json.RawMessage `json:"revenue"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Date = raw.Date
	r.Revenue = 0

	value := bytes.TrimSpace(raw.Revenue)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return nil
	}
	if value[0] == '"' {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parsing revenue %q: %w", s, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("parsing revenue %q: not a finite number", s)
		}
		r.Revenue = f
		return nil
	}
	return json.Unmarshal(value, &r.Revenue)
}
