package pow

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// MaxDifficulty is the largest accepted difficulty in leading zero bits.
// 64 zero bits corresponds to the first 16 hex characters of the id.
const MaxDifficulty = 64

// Difficulty is the required number of leading zero bits in an event id.
//
// A Difficulty obtained from NewDifficulty or ParseDifficulty is always in
// range. Operations re-check it with Validate, so converting an arbitrary int
// does not bypass the bound.
type Difficulty int

// NewDifficulty returns d as a Difficulty after checking the bounds.
func NewDifficulty(d int) (Difficulty, error) {
	if d < 0 || d > MaxDifficulty {
		return 0, newOutOfRange(int64(d))
	}
	return Difficulty(d), nil
}

// MustDifficulty is like NewDifficulty but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDifficulty(d int) Difficulty {
	out, err := NewDifficulty(d)
	if err != nil {
		panic(err)
	}
	return out
}

// ParseDifficulty converts a dynamically typed value, as decoded from YAML
// or JSON, into a Difficulty.
//
// Integers of any width, integral floats and json.Number are accepted.
// Anything else (including numeric strings such as "5", bools, nil and
// fractional numbers) is an invalid parameter.
func ParseDifficulty(v any) (Difficulty, error) {
	var n int64
	switch val := v.(type) {
	case int:
		n = int64(val)
	case int8:
		n = int64(val)
	case int16:
		n = int64(val)
	case int32:
		n = int64(val)
	case int64:
		n = val
	case uint:
		n = clampUint(uint64(val))
	case uint8:
		n = int64(val)
	case uint16:
		n = int64(val)
	case uint32:
		n = int64(val)
	case uint64:
		n = clampUint(val)
	case float32:
		return parseFloatDifficulty(float64(val))
	case float64:
		return parseFloatDifficulty(val)
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			f, ferr := val.Float64()
			if ferr != nil {
				return 0, newInvalidParameter(err, "difficulty %q is not a number", val.String())
			}
			return parseFloatDifficulty(f)
		}
		n = i
	case Difficulty:
		n = int64(val)
	default:
		return 0, newInvalidParameter(nil, "difficulty must be a number, got %T", v)
	}

	if n < 0 || n > MaxDifficulty {
		return 0, newOutOfRange(n)
	}
	return Difficulty(n), nil
}

func parseFloatDifficulty(f float64) (Difficulty, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, newInvalidParameter(nil, "difficulty %v is not an integer", f)
	}
	if f < 0 || f > MaxDifficulty {
		return 0, &Error{
			Code:    ErrCodeDifficultyOutOfRange,
			Message: fmt.Sprintf("difficulty %v is outside [0, %d]", f, MaxDifficulty),
		}
	}
	return Difficulty(f), nil
}

func clampUint(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(u)
}

// Validate checks that d is within [0, MaxDifficulty].
func (d Difficulty) Validate() error {
	if d < 0 || d > MaxDifficulty {
		return newOutOfRange(int64(d))
	}
	return nil
}

// String returns the decimal form used in the nonce tag.
func (d Difficulty) String() string {
	return strconv.Itoa(int(d))
}
