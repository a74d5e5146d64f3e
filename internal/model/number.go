package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Int64String is an int64 that decodes from either a JSON number or a
// numeric JSON string. The remote API reports capacities as strings
// ("16777215") and block ages as numbers, and it is not consistent
// across versions.
//
// It always encodes as a JSON number.
type Int64String int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Int64String) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer string %q: %w", s, err)
		}
		*n = Int64String(v)
		return nil
	}

	var v json.Number
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	i, err := v.Int64()
	if err != nil {
		// Fractional values are truncated. float64(math.MaxInt64) rounds
		// up to 2^63, which no longer fits.
		f, ferr := v.Float64()
		if ferr != nil {
			return fmt.Errorf("invalid integer %s: %w", data, err)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return fmt.Errorf("integer %s out of range", data)
		}
		i = int64(f)
	}
	*n = Int64String(i)
	return nil
}

// Int64 returns the value as a plain int64.
func (n Int64String) Int64() int64 {
	return int64(n)
}
