package caf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeValue(t *testing.T, v Value) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, v.Write(&sb))
	return sb.String()
}

func TestParseValue_RoundTrip(t *testing.T) {
	inputs := []string{
		"true",
		"false",
		"none",
		"0",
		"-12",
		"1.50e+3",
		`"plain"`,
		`"esc\u{1}aped \"q\" \/ \t"`,
		"[]",
		"[ ]",
		"[1 2 3]",
		"[ 1\n  2 // two\n  3 ]",
		"[[true] [false none]]",
		"(1 2)",
		`("newtype")`,
		"{}",
		"{x:1 y:2}",
		"{ x : 1\n  y:/* why */2 }",
		`{"a":1 "b":[true]}`,
		`{1:"one"}`,
		"Unit",
		"Circle(1.5)",
		"Rect{w:1 h:2}",
		"Nested(Inner{a:[Some(1)]})",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			v, err := ParseValueString(input)
			require.NoError(t, err)
			assert.Equal(t, input, writeValue(t, v))
		})
	}
}

func TestParseValue_LeadingFillIsKept(t *testing.T) {
	v, err := ParseValueString("  // c\n  [1]  ")
	require.NoError(t, err)
	assert.Equal(t, "  // c\n  [1]", writeValue(t, v))
}

func TestParseValue_Kinds(t *testing.T) {
	tests := []struct {
		input string
		check func(t *testing.T, v Value)
	}{
		{"{}", func(t *testing.T, v Value) { assert.IsType(t, &Struct{}, v) }},
		{"{a:1}", func(t *testing.T, v Value) { assert.IsType(t, &Struct{}, v) }},
		{`{"a":1}`, func(t *testing.T, v Value) { assert.IsType(t, &Map{}, v) }},
		{"(1)", func(t *testing.T, v Value) { assert.IsType(t, &Tuple{}, v) }},
		{"Up", func(t *testing.T, v Value) {
			e := v.(*Enum)
			assert.Equal(t, "Up", e.Variant)
			assert.Nil(t, e.Payload)
		}},
		{"Move(1 2)", func(t *testing.T, v Value) {
			e := v.(*Enum)
			assert.IsType(t, &Tuple{}, e.Payload)
		}},
		{`"a\nb"`, func(t *testing.T, v Value) { assert.Equal(t, "a\nb", v.(*String).Value) }},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseValueString(tt.input)
			require.NoError(t, err)
			tt.check(t, v)
		})
	}
}

func TestParseValue_Errors(t *testing.T) {
	tests := []struct {
		input string
		line  int
		col   int
	}{
		{"", 1, 1},
		{"[1 2", 1, 5},
		{"[1,2]", 1, 3},
		{"[[1][2]]", 1, 5},
		{"{x:1y:2}", 1, 5},
		{"{x 1}", 1, 4},
		{`"unterminated`, 1, 1},
		{"\"new\nline\"", 1, 5},
		{`"\q"`, 1, 1},
		{"01", 1, 2},
		{"1.", 1, 1},
		{"12abc", 1, 3},
		{"nonesuch", 1, 1},
		{"true false", 1, 6},
		{"\n\n  @", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseValueString(tt.input)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line, perr.Error())
			assert.Equal(t, tt.col, perr.Column, perr.Error())
		})
	}
}

func TestWrite_DefaultFills(t *testing.T) {
	arr := NewArray(NewBool(true), NewUint(2), NewString("x\ty"), &None{})
	assert.Equal(t, `[true 2 "x\ty" none]`, writeValue(t, arr))

	s := NewStruct().Add("pos", NewTuple(NewUint(1), NewInt(-1))).Add("tag", NewEnum("On"))
	assert.Equal(t, "{pos:(1 -1) tag:On}", writeValue(t, s))

	m := NewMap().Add(NewString("k"), NewArray())
	assert.Equal(t, `{"k":[]}`, writeValue(t, m))

	var sb strings.Builder
	require.NoError(t, NewBool(false).WriteWithSpace(&sb, " "))
	assert.Equal(t, " false", sb.String())
}

func TestString_EditedValueIsEscaped(t *testing.T) {
	v, err := ParseValueString(`"caf\u{e9}"`)
	require.NoError(t, err)
	s := v.(*String)
	assert.Equal(t, "café", s.Value)
	assert.Equal(t, `"caf\u{e9}"`, writeValue(t, s), "untouched strings keep their literal")

	s.Value = "tab\there"
	assert.Equal(t, `"tab\there"`, writeValue(t, s))
}

func TestRecoverFill(t *testing.T) {
	t.Run("identical source is a no-op", func(t *testing.T) {
		old, err := ParseValueString("[ 1\n  2 ]")
		require.NoError(t, err)
		same, err := ParseValueString("[ 1\n  2 ]")
		require.NoError(t, err)

		same.RecoverFill(old)
		assert.Equal(t, "[ 1\n  2 ]", writeValue(t, same))
	})

	t.Run("fresh value takes old formatting", func(t *testing.T) {
		old, err := ParseValueString("[ true\n  false ]")
		require.NoError(t, err)

		fresh := NewArray(NewBool(false), NewBool(true))
		fresh.RecoverFill(old)
		assert.Equal(t, "[ false\n  true ]", writeValue(t, fresh))
	})

	t.Run("extra entries keep default fill", func(t *testing.T) {
		old, err := ParseValueString("[  1 ]")
		require.NoError(t, err)

		fresh := NewArray(NewUint(1), NewUint(2), NewUint(3))
		fresh.RecoverFill(old)
		assert.Equal(t, "[  1 2 3 ]", writeValue(t, fresh))
	})

	t.Run("recovery replaces rather than merges", func(t *testing.T) {
		old, err := ParseValueString("{x:  1}")
		require.NoError(t, err)
		cur, err := ParseValueString("{x:\n1}")
		require.NoError(t, err)

		cur.RecoverFill(old)
		assert.Equal(t, "{x:  1}", writeValue(t, cur))
	})

	t.Run("different kinds only share the leading fill", func(t *testing.T) {
		old, err := ParseValueString("  [ 1 ]")
		require.NoError(t, err)

		fresh := NewStruct().Add("a", NewUint(1))
		fresh.RecoverFill(old)
		assert.Equal(t, "  {a:1}", writeValue(t, fresh))
	})

	t.Run("payload recovers through enums", func(t *testing.T) {
		old, err := ParseValueString("Move( 1  2 )")
		require.NoError(t, err)

		fresh := &Enum{Variant: "Move", Payload: NewTuple(NewUint(3), NewUint(4))}
		fresh.RecoverFill(old)
		assert.Equal(t, "Move( 3  4 )", writeValue(t, fresh))
	})

	t.Run("strings keep their value", func(t *testing.T) {
		old, err := ParseValueString(` "old"`)
		require.NoError(t, err)

		fresh := NewString("new")
		fresh.RecoverFill(old)
		assert.Equal(t, ` "new"`, writeValue(t, fresh))
	})
}

func TestWalkFills(t *testing.T) {
	doc, err := ParseValueString("[ 1 {a: 2} ]")
	require.NoError(t, err)

	var fills []string
	doc.walkFills(func(f *Fill) { fills = append(fills, f.String()) })
	assert.Equal(t, []string{"", " ", " ", "", "", " ", "", " "}, fills)
}
