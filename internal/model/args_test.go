package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRawArgs_JSONKeepsOrder(t *testing.T) {
	in := []byte(`{"file":"a.jpg","width":150,"zeta":"z","alpha":"a","nested":{"k":1},"gone":null}`)

	var args RawArgs
	require.NoError(t, args.UnmarshalJSON(in))

	keys := make([]string, 0, len(args))
	for _, a := range args {
		keys = append(keys, a.Key)
	}
	require.Equal(t, []string{"file", "width", "zeta", "alpha", "nested", "gone"}, keys)
	require.Equal(t, 150.0, args[1].Value)
	require.Nil(t, args[5].Value)

	out, err := args.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, string(in), string(out))

	var back RawArgs
	require.NoError(t, back.UnmarshalJSON(out))
	require.Equal(t, args, back)
}

func TestRawArgs_UnmarshalRejectsNonObject(t *testing.T) {
	for _, in := range []string{`[]`, `"x"`, `12`, `null`} {
		var args RawArgs
		require.Error(t, args.UnmarshalJSON([]byte(in)), in)
	}

	var args RawArgs
	require.Error(t, args.UnmarshalJSON([]byte(`{"file":`)))
}

func TestRawArgs_Lookup(t *testing.T) {
	args := RawArgs{
		{Key: "file", Value: "a.jpg"},
		{Key: "width", Value: nil},
		{Key: "File", Value: "b.jpg"},
	}

	v, ok := args.Lookup("file")
	require.True(t, ok)
	require.Equal(t, "a.jpg", v)

	require.False(t, args.Has("width"))
	require.False(t, args.Has("height"))
}

func TestAttributes(t *testing.T) {
	var a Attributes
	a.Set("class", "x")
	a.Set("id", "y")
	a.Set("class", "z")

	require.Equal(t, []Attr{{Name: "class", Value: "z"}, {Name: "id", Value: "y"}}, a.Items())

	b := a.Without("class")
	require.Equal(t, []Attr{{Name: "id", Value: "y"}}, b.Items())
	require.Equal(t, 2, a.Len(), "Without must not touch the receiver")

	a.Delete("id")
	a.Delete("missing")
	require.False(t, a.Has("id"))
	require.Equal(t, 1, a.Len())
}
