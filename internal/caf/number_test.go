package caf

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kindVisitor records which Visit method was chosen.
type kindVisitor struct{}

func (kindVisitor) Expecting() string                    { return "any number" }
func (kindVisitor) VisitFloat64(float64) (string, error) { return "float", nil }
func (kindVisitor) VisitUint64(uint64) (string, error)   { return "unsigned", nil }
func (kindVisitor) VisitInt64(int64) (string, error)     { return "signed", nil }

func TestDeserializeAny_PicksNaturalKind(t *testing.T) {
	float7, err := NewFloat(7.0)
	require.NoError(t, err)

	tests := []struct {
		name     string
		number   *Number
		expected string
	}{
		{"unsigned 7", NewUint(7), "unsigned"},
		{"float 7.0", float7, "float"},
		{"negative int", NewInt(-3), "signed"},
		{"non-negative int is unsigned", NewInt(3), "unsigned"},
		{"parsed 3", mustNumber(t, "3"), "unsigned"},
		{"parsed 3.0", mustNumber(t, "3.0"), "float"},
		{"parsed exponent", mustNumber(t, "1e3"), "float"},
		{"parsed -0", mustNumber(t, "-0"), "signed"},
		{"wider than 64 bits", mustNumber(t, "18446744073709551616"), "float"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeserializeAny[string](tt.number, kindVisitor{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.expected, tt.number.Kind().String())
		})
	}
}

func mustNumber(t *testing.T, text string) *Number {
	t.Helper()
	n, err := NumberFromText(text)
	require.NoError(t, err)
	return n
}

func TestNumber_Text(t *testing.T) {
	f, err := NewFloat(2)
	require.NoError(t, err)
	assert.Equal(t, "2.0", f.Text())

	f, err = NewFloat(0.5)
	require.NoError(t, err)
	assert.Equal(t, "0.5", f.Text())

	assert.Equal(t, "-12", NewInt(-12).Text())
	assert.Equal(t, "0", (&Number{}).Text())

	_, err = NewFloat(math.NaN())
	assert.Error(t, err)
	_, err = NewFloat(math.Inf(1))
	assert.Error(t, err)
}

func TestNumberFromText_Invalid(t *testing.T) {
	for _, text := range []string{"", "01", "1.", ".5", "+1", "1e", "--1", "1x"} {
		t.Run(text, func(t *testing.T) {
			_, err := NumberFromText(text)
			assert.Error(t, err)
		})
	}
}

func TestNumber_ToJSONKeepsLiteral(t *testing.T) {
	j, err := mustNumber(t, "1.50").ToJSON()
	require.NoError(t, err)
	assert.Equal(t, json.Number("1.50"), j)
}

func TestNumber_TypedAccessors(t *testing.T) {
	t.Run("narrowing fits", func(t *testing.T) {
		v, err := NewUint(200).Uint8()
		require.NoError(t, err)
		assert.Equal(t, uint8(200), v)

		i, err := NewInt(-128).Int8()
		require.NoError(t, err)
		assert.Equal(t, int8(-128), i)
	})

	t.Run("narrowing overflows", func(t *testing.T) {
		_, err := NewUint(200).Int8()
		var invalid *InvalidValueError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "invalid value: integer `200`, expected i8", err.Error())

		_, err = NewInt(-1).Uint32()
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("integers widen to floats", func(t *testing.T) {
		f, err := NewUint(3).Float64()
		require.NoError(t, err)
		assert.Equal(t, 3.0, f)

		g, err := NewInt(-2).Float32()
		require.NoError(t, err)
		assert.Equal(t, float32(-2), g)
	})

	t.Run("floats never become integers", func(t *testing.T) {
		n := mustNumber(t, "7.0")
		_, err := n.Int64()
		var unexpected *UnexpectedTypeError
		require.ErrorAs(t, err, &unexpected)
		assert.Equal(t, NumberFloat, unexpected.Kind)
		assert.Equal(t, "invalid type: floating point `7.0`, expected i64", err.Error())

		_, err = n.Uint64()
		require.ErrorAs(t, err, &unexpected)
	})

	t.Run("non-numeric requests fail with the natural kind", func(t *testing.T) {
		_, err := NewUint(1).Bool()
		var unexpected *UnexpectedTypeError
		require.ErrorAs(t, err, &unexpected)
		assert.Equal(t, NumberUint, unexpected.Kind)

		_, err = NewInt(-1).Str()
		require.ErrorAs(t, err, &unexpected)
		assert.Equal(t, NumberInt, unexpected.Kind)
	})
}

func TestNumber_Decode(t *testing.T) {
	var i16 int16
	require.NoError(t, NewInt(-300).Decode(&i16))
	assert.Equal(t, int16(-300), i16)

	var u8 uint8
	err := NewUint(300).Decode(&u8)
	var invalid *InvalidValueError
	assert.ErrorAs(t, err, &invalid)

	var f32 float32
	require.NoError(t, NewUint(5).Decode(&f32))
	assert.Equal(t, float32(5), f32)

	var anything any
	require.NoError(t, NewUint(5).Decode(&anything))
	assert.Equal(t, uint64(5), anything)

	var s string
	var unexpected *UnexpectedTypeError
	assert.ErrorAs(t, NewUint(5).Decode(&s), &unexpected)

	assert.Error(t, NewUint(5).Decode(u8))
}
