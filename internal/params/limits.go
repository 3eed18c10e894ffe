package params

import (
	"math"

	"github.com/UnendingLoop/ResizedImage/internal/model"
)

// CheckLimits runs after Validate. A negative dimension, one that does not fit an int or one
// above limits.MaxDimension is rejected. Zero still counts as absent, but at least one of the
// dimensions has to stay positive.
func CheckLimits(raw model.RawArgs, limits model.Limits) error {
	positive := 0
	for _, dim := range []string{model.ArgWidth, model.ArgHeight} {
		v, ok := raw.Lookup(dim)
		if !ok {
			continue
		}

		n, ok := ToInt(v)
		if !ok || n < 0 || (limits.MaxDimension > 0 && n > limits.MaxDimension) {
			return model.DimensionOutOfRangeError{Name: dim, Max: maxDimension(limits)}
		}
		if n > 0 {
			positive++
		}
	}

	if positive == 0 {
		return model.MissingDimensionsError{}
	}
	return nil
}

func maxDimension(limits model.Limits) int {
	if limits.MaxDimension > 0 {
		return limits.MaxDimension
	}
	return math.MaxInt32
}
