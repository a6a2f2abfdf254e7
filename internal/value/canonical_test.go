package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	data, err := MarshalCanonical(String("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(data))
}

func TestMarshalCanonicalLineSeparatorsLiteral(t *testing.T) {
	data, err := MarshalCanonical(String("x\u2028y\u2029z"))
	require.NoError(t, err)
	assert.Equal(t, "\"x\u2028y\u2029z\"", string(data))
}

func TestMarshalCanonicalControlCharacters(t *testing.T) {
	data, err := MarshalCanonical(String("a\nb\t\"c\"\\\x01"))
	require.NoError(t, err)
	assert.Equal(t, `"a\nb\t\"c\"\\\u0001"`, string(data))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9
	decomposed, err := MarshalCanonical(String("cafe\u0301"))
	require.NoError(t, err)
	composed, err := MarshalCanonical(String("caf\u00e9"))
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonicalNumbers(t *testing.T) {
	tests := []struct {
		in   Number
		want string
	}{
		{0, "0"},
		{-0.0, "0"},
		{3, "3"},
		{-12, "-12"},
		{0.5, "0.5"},
		{1e20, "100000000000000000000"},
	}
	for _, tt := range tests {
		data, err := MarshalCanonical(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(data))
	}
}

func TestMarshalCanonicalSortedNested(t *testing.T) {
	data, err := MarshalCanonical(T(
		P("z", S(Number(1), T(P("b", Number(2)), P("a", Number(1))))),
		P("a", String("first")),
	))
	require.NoError(t, err)
	assert.Equal(t, `{"a":"first","z":[1,{"a":1,"b":2}]}`, string(data))
}

func TestMarshalCanonicalRejectsAbsent(t *testing.T) {
	_, err := MarshalCanonical(T(P("missing", nil)))
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	a := T(P("x", S(Number(1), String("y"))))
	b := T(P("x", S(Number(1), String("y"))))
	c := T(P("x", S(Number(1), String("z"))))

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(nil, nil), "absent values have no canonical form")
}
