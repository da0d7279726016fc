package caf

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Escape table codes. A zero entry means the byte is written unchanged.
const (
	escBB = 'b'  // \x08
	escTT = 't'  // \x09
	escNN = 'n'  // \x0A
	escFF = 'f'  // \x0C
	escRR = 'r'  // \x0D
	escQU = '"'  // \x22
	escBS = '\\' // \x5C
	escUU = 'u'  // \x00...\x1F except the ones above
)

var escapeTable = func() [256]byte {
	var table [256]byte
	for b := 0; b < 0x20; b++ {
		table[b] = escUU
	}
	table['\b'] = escBB
	table['\t'] = escTT
	table['\n'] = escNN
	table['\f'] = escFF
	table['\r'] = escRR
	table['"'] = escQU
	table['\\'] = escBS
	return table
}()

const hexDigits = "0123456789abcdef"

// FormatEscapedStrContents writes value with quotes, backslashes and control
// bytes escaped. Control bytes without a short form are written as \u{xx}
// with two lowercase hex digits. That is not JSON's \u00xx form. All other
// bytes, including multi-byte UTF-8 sequences, are copied through.
func FormatEscapedStrContents(w io.Writer, value string) error {
	start := 0
	for i := 0; i < len(value); i++ {
		esc := escapeTable[value[i]]
		if esc == 0 {
			continue
		}
		if start < i {
			if _, err := io.WriteString(w, value[start:i]); err != nil {
				return err
			}
		}
		if err := writeEscape(w, esc, value[i]); err != nil {
			return err
		}
		start = i + 1
	}
	if start == len(value) {
		return nil
	}
	_, err := io.WriteString(w, value[start:])
	return err
}

func writeEscape(w io.Writer, esc, b byte) error {
	if esc == escUU {
		_, err := w.Write([]byte{'\\', 'u', '{', hexDigits[b>>4], hexDigits[b&0xF], '}'})
		return err
	}
	_, err := w.Write([]byte{'\\', esc})
	return err
}

// EscapeString returns the escaped form of value (without quotes).
func EscapeString(value string) string {
	var sb strings.Builder
	_ = FormatEscapedStrContents(&sb, value)
	return sb.String()
}

// Unescape decodes the contents of a string literal. Besides the forms
// written by FormatEscapedStrContents it accepts \/ and \u{...} with one to
// six hex digits naming any Unicode scalar value.
func Unescape(literal string) (string, error) {
	if strings.IndexByte(literal, '\\') < 0 {
		return literal, nil
	}
	var sb strings.Builder
	sb.Grow(len(literal))
	for i := 0; i < len(literal); i++ {
		c := literal[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(literal) {
			return "", fmt.Errorf("dangling backslash at end of string")
		}
		switch literal[i] {
		case 'b':
			sb.WriteByte('\b')
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'f':
			sb.WriteByte('\f')
		case 'r':
			sb.WriteByte('\r')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		case '/':
			sb.WriteByte('/')
		case 'u':
			r, n, err := parseUnicodeEscape(literal[i+1:])
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
			i += n
		default:
			return "", fmt.Errorf("unknown escape sequence \\%c", literal[i])
		}
	}
	return sb.String(), nil
}

// parseUnicodeEscape parses "{hhhh}" and returns the rune and the number of
// bytes consumed.
func parseUnicodeEscape(s string) (rune, int, error) {
	if !strings.HasPrefix(s, "{") {
		return 0, 0, fmt.Errorf("expected '{' after \\u")
	}
	end := strings.IndexByte(s, '}')
	if end < 2 || end > 7 {
		return 0, 0, fmt.Errorf("\\u{...} needs one to six hex digits")
	}
	code, err := strconv.ParseUint(s[1:end], 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hex in \\u{%s}", s[1:end])
	}
	r := rune(code)
	if !utf8.ValidRune(r) {
		return 0, 0, fmt.Errorf("\\u{%s} is not a Unicode scalar value", s[1:end])
	}
	return r, end + 1, nil
}
