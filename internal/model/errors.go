package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidArgument = errors.New("invalid resized_image argument")
	ErrImageUnreadable = errors.New("image source is not readable")
	ErrWarmupDisabled  = errors.New("cache warm-up queue is not configured")
	ErrCommon500       = errors.New("something went wrong. Try again later")
	ErrBadPayload      = errors.New("request body must be a JSON object")
)

// Kind is the type a parameter was expected to have.
type Kind string

const (
	KindString  Kind = "string"
	KindNumeric Kind = "numeric"
)

type MissingRequiredArgumentError struct {
	Name string
}

func (e MissingRequiredArgumentError) Error() string {
	return fmt.Sprintf("%s requires %q argument", FunctionName, e.Name)
}

func (e MissingRequiredArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

type EmptyAttributeError struct {
	Name string
}

func (e EmptyAttributeError) Error() string {
	return fmt.Sprintf("%s requires %q to be not empty", FunctionName, e.Name)
}

func (e EmptyAttributeError) Is(target error) bool { return target == ErrInvalidArgument }

type AttributeTypeMismatchError struct {
	Name     string
	Expected Kind
}

func (e AttributeTypeMismatchError) Error() string {
	return fmt.Sprintf("%s requires %q to be %s", FunctionName, e.Name, e.Expected)
}

func (e AttributeTypeMismatchError) Is(target error) bool { return target == ErrInvalidArgument }

type InvalidEnumValueError struct {
	Name    string
	Allowed []string
}

func (e InvalidEnumValueError) Error() string {
	quoted := make([]string, len(e.Allowed))
	for i, a := range e.Allowed {
		quoted[i] = fmt.Sprintf("%q", a)
	}

	var list string
	switch len(quoted) {
	case 0:
	case 1:
		list = quoted[0]
	default:
		list = strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
	}

	return fmt.Sprintf("%s %q argument must have %s value", FunctionName, e.Name, list)
}

func (e InvalidEnumValueError) Is(target error) bool { return target == ErrInvalidArgument }

type MissingDimensionsError struct{}

func (MissingDimensionsError) Error() string {
	return FunctionName + " needs width or height param to be specified (can be specified both)"
}

func (MissingDimensionsError) Is(target error) bool { return target == ErrInvalidArgument }

// ImageDecodeFailureError carries the resolved source that could not be read.
type ImageDecodeFailureError struct {
	Source string
	Err    error
}

func (e ImageDecodeFailureError) Error() string {
	return fmt.Sprintf("%s failed to read image %q: %v", FunctionName, shortSource(e.Source), e.Err)
}

func (e ImageDecodeFailureError) Is(target error) bool { return target == ErrImageUnreadable }

func (e ImageDecodeFailureError) Unwrap() error { return e.Err }

// shortSource keeps inline data URIs from flooding messages and logs.
func shortSource(src string) string {
	if strings.HasPrefix(src, DataURIPrefix) && len(src) > 48 {
		return src[:48] + "..."
	}
	return src
}

// DimensionOutOfRangeError rejects a width or height that is negative, too large to be an int,
// or above the configured maximum.
type DimensionOutOfRangeError struct {
	Name string
	Max  int
}

func (e DimensionOutOfRangeError) Error() string {
	return fmt.Sprintf("%s requires %q to be between 0 and %d", FunctionName, e.Name, e.Max)
}

func (e DimensionOutOfRangeError) Is(target error) bool { return target == ErrInvalidArgument }

// ImageTooLargeError is raised before any pixel work when a source or a target box exceeds the
// pixel budget.
type ImageTooLargeError struct {
	Width  int
	Height int
	Max    int
}

func (e ImageTooLargeError) Error() string {
	return fmt.Sprintf("%s refuses %dx%d image: more than %d pixels", FunctionName, e.Width, e.Height, e.Max)
}

func (e ImageTooLargeError) Is(target error) bool { return target == ErrInvalidArgument }

type InvalidAttributeNameError struct {
	Name string
}

func (e InvalidAttributeNameError) Error() string {
	return fmt.Sprintf("%s got %q which is not a valid attribute name", FunctionName, e.Name)
}

func (e InvalidAttributeNameError) Is(target error) bool { return target == ErrInvalidArgument }

// SourceNotAllowedError hides whether a refused source exists.
type SourceNotAllowedError struct {
	Source string
}

func (e SourceNotAllowedError) Error() string {
	return fmt.Sprintf("%s failed to read image %q", FunctionName, shortSource(e.Source))
}

func (e SourceNotAllowedError) Is(target error) bool { return target == ErrImageUnreadable }
