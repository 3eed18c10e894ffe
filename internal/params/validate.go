package params

import (
	"github.com/UnendingLoop/ResizedImage/internal/model"
)

// Validate checks raw arguments. The first failing check wins, in this order:
// file presence, file emptiness, file type, width, height, fit, pass-through attribute names and
// types (image output only) and finally the presence of at least one dimension.
func Validate(raw, other model.RawArgs) error {
	file, ok := raw.Lookup(model.ArgFile)
	if !ok {
		return model.MissingRequiredArgumentError{Name: model.ArgFile}
	}
	if IsEmpty(file) {
		return model.EmptyAttributeError{Name: model.ArgFile}
	}
	if _, isStr := file.(string); !isStr {
		return model.AttributeTypeMismatchError{Name: model.ArgFile, Expected: model.KindString}
	}

	for _, dim := range []string{model.ArgWidth, model.ArgHeight} {
		if v, ok := raw.Lookup(dim); ok && !IsNumeric(v) {
			return model.AttributeTypeMismatchError{Name: dim, Expected: model.KindNumeric}
		}
	}

	if v, ok := raw.Lookup(model.ArgFit); ok {
		fit, isStr := lowerString(v)
		if !isStr || !model.FitMap[model.Fit(fit)] {
			return invalidFit()
		}
	}

	if ReturnMode(raw) == model.ReturnImage {
		for _, a := range other {
			if !model.IsValidAttributeName(a.Key) {
				return model.InvalidAttributeNameError{Name: a.Key}
			}
			if a.Value == nil {
				continue
			}
			if _, isStr := a.Value.(string); !isStr {
				return model.AttributeTypeMismatchError{Name: a.Key, Expected: model.KindString}
			}
		}
	}

	if !raw.Has(model.ArgWidth) && !raw.Has(model.ArgHeight) {
		return model.MissingDimensionsError{}
	}

	return nil
}

func invalidFit() error {
	allowed := make([]string, len(model.FitValues))
	for i, f := range model.FitValues {
		allowed[i] = string(f)
	}
	return model.InvalidEnumValueError{Name: model.ArgFit, Allowed: allowed}
}

// ReturnMode resolves the lower-cased return mode, "image" when absent.
func ReturnMode(raw model.RawArgs) model.ReturnMode {
	v, ok := raw.Lookup(model.ArgReturn)
	if !ok {
		return model.ReturnImage
	}
	s, _ := lowerString(v)
	return model.ReturnMode(s)
}
