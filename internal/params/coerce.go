// Package params validates raw resized_image arguments and normalizes them into a model.Request
package params

import (
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/UnendingLoop/ResizedImage/internal/model"
	"github.com/spf13/cast"
)

// decimal or exponent literal, surrounding whitespace allowed
var numericRe = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?\s*$`)

// IsNumeric reports whether v is a number or a numeric string.
func IsNumeric(v any) bool {
	switch x := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
	case float64:
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	case string:
		return numericRe.MatchString(x)
	default:
		return false
	}
}

// ToInt coerces a numeric value to an int, truncating toward zero.
func ToInt(v any) (int, bool) {
	if !IsNumeric(v) {
		return 0, false
	}

	var f float64
	switch x := v.(type) {
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		n, err := cast.ToInt64E(x)
		if err == nil {
			return int(n), true
		}
		f = cast.ToFloat64(x)
	}

	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// IsEmpty follows the host's notion of a falsy value.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == "" || x == "0"
	case bool:
		return !x
	}

	if IsNumeric(v) {
		return cast.ToFloat64(v) == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// ToString coerces a scalar to its string form. Non-scalars do not coerce.
func ToString(v any) (string, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return "1", true
		}
		return "", true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// OtherArgs extracts pass-through arguments: keys lower-cased and trimmed, named parameters
// dropped, first-seen position kept when two keys collapse into one.
func OtherArgs(raw model.RawArgs) model.RawArgs {
	out := make(model.RawArgs, 0, len(raw))
	pos := make(map[string]int, len(raw))

	for _, a := range raw {
		k := model.NormalizeKey(a.Key)
		if model.NamedArgs[k] {
			continue
		}
		if i, ok := pos[k]; ok {
			out[i].Value = a.Value
			continue
		}
		pos[k] = len(out)
		out = append(out, model.Arg{Key: k, Value: a.Value})
	}

	return out
}

func lowerString(v any) (string, bool) {
	s, ok := ToString(v)
	if !ok {
		return "", false
	}
	return strings.ToLower(s), true
}
