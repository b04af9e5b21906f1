/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package sjson

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"dirpx.dev/mfx/apis"
)

// decoder is a single-pass recursive-descent parser over a fully read
// buffer, tracking line and column for error reporting.
type decoder struct {
	data   []byte
	pos    int
	line   int
	col    int
	strict bool
	quote  byte
}

func (d *decoder) errf(format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &SyntaxError{Line: d.line, Col: d.col, Msg: msg}
}

func (d *decoder) eof() bool { return d.pos >= len(d.data) }

func (d *decoder) peek() byte { return d.data[d.pos] }

// advance consumes one byte, maintaining the position counters. Multi-
// byte runes advance the column once per byte; errors point at the
// right line regardless.
func (d *decoder) advance() byte {
	b := d.data[d.pos]
	d.pos++
	if b == '\n' {
		d.line++
		d.col = 1
	} else {
		d.col++
	}
	return b
}

func (d *decoder) skipSpace() {
	for !d.eof() {
		switch d.peek() {
		case ' ', '\t', '\r', '\n':
			d.advance()
		default:
			return
		}
	}
}

func (d *decoder) expect(b byte) error {
	if d.eof() || d.peek() != b {
		return d.errf("expected %q", string(b))
	}
	d.advance()
	return nil
}

func (d *decoder) value() (any, error) {
	if d.eof() {
		return nil, d.errf("unexpected end of input")
	}
	switch b := d.peek(); {
	case b == '{':
		return d.object()
	case b == '[':
		return d.array()
	case b == '"':
		return d.quoted('"')
	case b == d.quote && !d.strict:
		return d.quoted(d.quote)
	case b == '-' || (b >= '0' && b <= '9'):
		return d.number()
	case b == 't' || b == 'f' || b == 'n':
		return d.keyword()
	default:
		return nil, d.errf("unexpected character %q", string(b))
	}
}

func (d *decoder) object() (any, error) {
	if err := d.expect('{'); err != nil {
		return nil, err
	}
	obj := apis.NewObject()
	d.skipSpace()
	if !d.eof() && d.peek() == '}' {
		d.advance()
		return obj, nil
	}
	for {
		d.skipSpace()
		key, err := d.key()
		if err != nil {
			return nil, err
		}
		d.skipSpace()
		if err := d.expect(':'); err != nil {
			return nil, err
		}
		d.skipSpace()
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)

		d.skipSpace()
		if d.eof() {
			return nil, d.errf("unterminated object")
		}
		switch d.peek() {
		case ',':
			d.advance()
		case '}':
			d.advance()
			return obj, nil
		default:
			return nil, d.errf("expected ',' or '}', got %q", string(d.peek()))
		}
	}
}

// key reads an object key: a quoted string, or in the lax dialect an
// unquoted identifier.
func (d *decoder) key() (string, error) {
	if d.eof() {
		return "", d.errf("unexpected end of input in object key")
	}
	switch b := d.peek(); {
	case b == '"':
		return d.quoted('"')
	case b == d.quote && !d.strict:
		return d.quoted(d.quote)
	case d.strict:
		return "", d.errf("expected quoted key")
	default:
		return d.identifier()
	}
}

func (d *decoder) identifier() (string, error) {
	start := d.pos
	for !d.eof() {
		r, size := utf8.DecodeRune(d.data[d.pos:])
		if r == '_' || r == '$' || unicode.IsLetter(r) ||
			(d.pos > start && unicode.IsDigit(r)) {
			for i := 0; i < size; i++ {
				d.advance()
			}
			continue
		}
		break
	}
	if d.pos == start {
		return "", d.errf("expected object key")
	}
	return string(d.data[start:d.pos]), nil
}

func (d *decoder) array() (any, error) {
	if err := d.expect('['); err != nil {
		return nil, err
	}
	out := []any{}
	d.skipSpace()
	if !d.eof() && d.peek() == ']' {
		d.advance()
		return out, nil
	}
	for {
		d.skipSpace()
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)

		d.skipSpace()
		if d.eof() {
			return nil, d.errf("unterminated array")
		}
		switch d.peek() {
		case ',':
			d.advance()
		case ']':
			d.advance()
			return out, nil
		default:
			return nil, d.errf("expected ',' or ']', got %q", string(d.peek()))
		}
	}
}

func (d *decoder) quoted(q byte) (string, error) {
	if err := d.expect(q); err != nil {
		return "", err
	}
	var sb strings.Builder
	for {
		if d.eof() {
			return "", d.errf("unterminated string")
		}
		b := d.peek()
		switch {
		case b == q:
			d.advance()
			return sb.String(), nil
		case b == '\\':
			d.advance()
			if err := d.escape(&sb, q); err != nil {
				return "", err
			}
		case b < 0x20:
			return "", d.errf("raw control character in string")
		default:
			sb.WriteByte(d.advance())
		}
	}
}

func (d *decoder) escape(sb *strings.Builder, q byte) error {
	if d.eof() {
		return d.errf("unterminated escape")
	}
	switch b := d.advance(); b {
	case q, '"', '\'', '\\', '/':
		sb.WriteByte(b)
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'u':
		r, err := d.unicodeEscape()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			// A high surrogate must be followed by \uXXXX holding the
			// low half; unpaired surrogates become U+FFFD.
			if d.pos+1 < len(d.data) && d.peek() == '\\' && d.data[d.pos+1] == 'u' {
				d.advance()
				d.advance()
				r2, err := d.unicodeEscape()
				if err != nil {
					return err
				}
				r = utf16.DecodeRune(r, r2)
			} else {
				r = utf8.RuneError
			}
		}
		sb.WriteRune(r)
	default:
		return d.errf("invalid escape \\%s", string(b))
	}
	return nil
}

func (d *decoder) unicodeEscape() (rune, error) {
	if d.pos+4 > len(d.data) {
		return 0, d.errf("truncated unicode escape")
	}
	hex := string(d.data[d.pos : d.pos+4])
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, d.errf("invalid unicode escape \\u%s", hex)
	}
	for i := 0; i < 4; i++ {
		d.advance()
	}
	return rune(n), nil
}

// number scans a JSON number. Integral syntax yields int64, then uint64
// on positive overflow, then float64.
func (d *decoder) number() (any, error) {
	start := d.pos
	integral := true
	if !d.eof() && d.peek() == '-' {
		d.advance()
	}
	for !d.eof() {
		b := d.peek()
		switch {
		case b >= '0' && b <= '9':
			d.advance()
		case b == '.' || b == 'e' || b == 'E' || b == '+' || b == '-':
			integral = false
			d.advance()
		default:
			goto done
		}
	}
done:
	text := string(d.data[start:d.pos])
	if integral {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
		if n, err := strconv.ParseUint(text, 10, 64); err == nil {
			return n, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, d.errf("invalid number %q", text)
	}
	return f, nil
}

func (d *decoder) keyword() (any, error) {
	for _, kw := range []struct {
		text  string
		value any
	}{
		{"true", true},
		{"false", false},
		{"null", nil},
	} {
		if d.pos+len(kw.text) <= len(d.data) &&
			string(d.data[d.pos:d.pos+len(kw.text)]) == kw.text {
			for range kw.text {
				d.advance()
			}
			return kw.value, nil
		}
	}
	return nil, d.errf("unexpected token")
}
