package params

import (
	"errors"
	"testing"

	"github.com/UnendingLoop/ResizedImage/internal/model"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     model.RawArgs
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing file",
			raw:     model.RawArgs{{Key: "width", Value: "100"}},
			wantErr: model.MissingRequiredArgumentError{Name: "file"},
			wantMsg: `resized_image requires "file" argument`,
		},
		{
			name:    "nil file counts as missing",
			raw:     model.RawArgs{{Key: "file", Value: nil}, {Key: "width", Value: "100"}},
			wantErr: model.MissingRequiredArgumentError{Name: "file"},
		},
		{
			name:    "missing file wins over everything",
			raw:     model.RawArgs{{Key: "width", Value: "bad"}, {Key: "fit", Value: "bad"}},
			wantErr: model.MissingRequiredArgumentError{Name: "file"},
		},
		{
			name:    "empty file",
			raw:     model.RawArgs{{Key: "file", Value: ""}, {Key: "width", Value: "100"}},
			wantErr: model.EmptyAttributeError{Name: "file"},
			wantMsg: `resized_image requires "file" to be not empty`,
		},
		{
			name:    "zero string file is empty",
			raw:     model.RawArgs{{Key: "file", Value: "0"}},
			wantErr: model.EmptyAttributeError{Name: "file"},
		},
		{
			name:    "numeric file",
			raw:     model.RawArgs{{Key: "file", Value: 99}, {Key: "width", Value: "100"}},
			wantErr: model.AttributeTypeMismatchError{Name: "file", Expected: model.KindString},
			wantMsg: `resized_image requires "file" to be string`,
		},
		{
			name:    "bad width",
			raw:     model.RawArgs{{Key: "file", Value: "a.jpg"}, {Key: "width", Value: "bad-value"}, {Key: "height", Value: "bad-value"}},
			wantErr: model.AttributeTypeMismatchError{Name: "width", Expected: model.KindNumeric},
			wantMsg: `resized_image requires "width" to be numeric`,
		},
		{
			name:    "bad height",
			raw:     model.RawArgs{{Key: "file", Value: "a.jpg"}, {Key: "width", Value: "150"}, {Key: "height", Value: "bad-value"}},
			wantErr: model.AttributeTypeMismatchError{Name: "height", Expected: model.KindNumeric},
		},
		{
			name:    "bad fit",
			raw:     model.RawArgs{{Key: "file", Value: "a.jpg"}, {Key: "width", Value: "150"}, {Key: "fit", Value: "bad-value"}},
			wantErr: model.InvalidEnumValueError{Name: "fit", Allowed: []string{"inside", "outside", "fill"}},
			wantMsg: `resized_image "fit" argument must have "inside", "outside" or "fill" value`,
		},
		{
			name:    "bad fit precedes missing dimensions",
			raw:     model.RawArgs{{Key: "file", Value: "a.jpg"}, {Key: "fit", Value: "cover"}},
			wantErr: model.InvalidEnumValueError{Name: "fit", Allowed: []string{"inside", "outside", "fill"}},
		},
		{
			name:    "non-string pass-through for image output",
			raw:     model.RawArgs{{Key: "file", Value: "a.jpg"}, {Key: "width", Value: "150"}, {Key: "Data-Id", Value: []any{1}}},
			wantErr: model.AttributeTypeMismatchError{Name: "data-id", Expected: model.KindString},
		},
		{
			name:    "missing dimensions",
			raw:     model.RawArgs{{Key: "file", Value: "a.jpg"}},
			wantErr: model.MissingDimensionsError{},
			wantMsg: "resized_image needs width or height param to be specified (can be specified both)",
		},
		{
			name: "valid width only",
			raw:  model.RawArgs{{Key: "file", Value: "a.jpg"}, {Key: "width", Value: "150"}},
		},
		{
			name: "valid numeric types",
			raw:  model.RawArgs{{Key: "file", Value: "a.jpg"}, {Key: "width", Value: 150.0}, {Key: "height", Value: 20}},
		},
		{
			name: "fit is case-insensitive",
			raw:  model.RawArgs{{Key: "file", Value: "a.jpg"}, {Key: "height", Value: " 150 "}, {Key: "fit", Value: "InSiDe"}},
		},
		{
			name: "non-string pass-through allowed for url output",
			raw:  model.RawArgs{{Key: "file", Value: "a.jpg"}, {Key: "width", Value: "1"}, {Key: "return", Value: "url"}, {Key: "x", Value: map[string]any{}}},
		},
		{
			name:    "attribute name breaking out of the tag",
			raw:     model.RawArgs{{Key: "file", Value: "a.jpg"}, {Key: "width", Value: "150"}, {Key: `onload="x`, Value: "y"}},
			wantErr: model.InvalidAttributeNameError{Name: `onload="x`},
		},
		{
			name:    "attribute name with a space",
			raw:     model.RawArgs{{Key: "file", Value: "a.jpg"}, {Key: "width", Value: "150"}, {Key: "a b", Value: "y"}},
			wantErr: model.InvalidAttributeNameError{Name: "a b"},
		},
		{
			name: "attribute names are not checked for url output",
			raw:  model.RawArgs{{Key: "file", Value: "a.jpg"}, {Key: "width", Value: "1"}, {Key: "return", Value: "url"}, {Key: "a>b", Value: "y"}},
		},
		{
			name: "nil pass-through is skipped",
			raw:  model.RawArgs{{Key: "file", Value: "a.jpg"}, {Key: "width", Value: "1"}, {Key: "class", Value: nil}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.raw, OtherArgs(tt.raw))

			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			require.Equal(t, tt.wantErr, err)
			require.True(t, errors.Is(err, model.ErrInvalidArgument))
			if tt.wantMsg != "" {
				require.EqualError(t, err, tt.wantMsg)
			}
		})
	}
}

func TestIsNumeric(t *testing.T) {
	for _, v := range []any{1, int64(2), uint8(3), 1.5, float32(2), "150", " 150", "150 ", "-1", "+.5", "1e3", "2.", "0"} {
		require.True(t, IsNumeric(v), "%#v", v)
	}
	for _, v := range []any{"bad-value", "", " ", "0x1A", "1_000", "Inf", "NaN", "1e", true, nil, []int{1}} {
		require.False(t, IsNumeric(v), "%#v", v)
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{"150", 150},
		{" 150.9 ", 150},
		{"-2.5", -2},
		{"1e3", 1000},
		{150.7, 150},
		{int64(42), 42},
	}
	for _, tt := range tests {
		got, ok := ToInt(tt.in)
		require.True(t, ok, "%#v", tt.in)
		require.Equal(t, tt.want, got, "%#v", tt.in)
	}

	_, ok := ToInt("1e20")
	require.False(t, ok)
	_, ok = ToInt("abc")
	require.False(t, ok)
}

func TestIsEmpty(t *testing.T) {
	for _, v := range []any{nil, "", "0", false, 0, 0.0, []string{}, map[string]any{}} {
		require.True(t, IsEmpty(v), "%#v", v)
	}
	for _, v := range []any{"a", "00", " ", true, 1, -1.5, []string{"a"}} {
		require.False(t, IsEmpty(v), "%#v", v)
	}
}
