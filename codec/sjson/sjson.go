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

// Package sjson implements the simplified-JSON codec.
//
// Two dialects share one grammar core. The lax dialect (the default)
// writes identifier-safe object keys unquoted and strings with a
// configurable quote character, single quote by default:
//
//	{f1:'hello',f2:[1,2]}
//
// The strict dialect is standard JSON: double quotes everywhere, all
// keys quoted. The decoder for the lax dialect accepts strict input as
// well; the strict decoder rejects lax constructs.
package sjson

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"unicode"
	"unicode/utf8"

	"dirpx.dev/mfx/apis"
)

// SyntaxError reports malformed input with its position.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("mfx(sjson): line %d col %d: %s", e.Line, e.Col, e.Msg)
}

// Codec is the simplified-JSON codec. It is stateless; one instance
// serves all sessions.
type Codec struct{}

// New returns the codec.
func New() *Codec { return &Codec{} }

// Name implements apis.Codec.
func (*Codec) Name() string { return "sjson" }

// MediaType implements apis.Codec.
func (*Codec) MediaType() string { return "application/json" }

// Encode implements apis.Codec.
func (*Codec) Encode(w io.Writer, v any, opts apis.CodecOptions) error {
	e := &encoder{w: bufio.NewWriter(w), strict: opts.Strict, quote: quoteOf(opts)}
	if err := e.value(v); err != nil {
		return err
	}
	return e.w.Flush()
}

// Decode implements apis.Codec.
func (*Codec) Decode(r io.Reader, opts apis.CodecOptions) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d := &decoder{data: data, line: 1, col: 1, strict: opts.Strict, quote: quoteOf(opts)}
	d.skipSpace()
	v, err := d.value()
	if err != nil {
		return nil, err
	}
	d.skipSpace()
	if d.pos < len(d.data) {
		return nil, d.errf("trailing content")
	}
	return v, nil
}

func quoteOf(opts apis.CodecOptions) byte {
	if opts.Strict {
		return '"'
	}
	if opts.Quote != 0 {
		return opts.Quote
	}
	return '\''
}

type encoder struct {
	w      *bufio.Writer
	strict bool
	quote  byte
}

func (e *encoder) value(v any) error {
	switch n := v.(type) {
	case nil:
		_, err := e.w.WriteString("null")
		return err
	case bool:
		_, err := e.w.WriteString(strconv.FormatBool(n))
		return err
	case int64:
		_, err := e.w.WriteString(strconv.FormatInt(n, 10))
		return err
	case uint64:
		_, err := e.w.WriteString(strconv.FormatUint(n, 10))
		return err
	case float64:
		_, err := e.w.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
		return err
	case string:
		return e.str(n)
	case []any:
		return e.array(n)
	case *apis.Object:
		return e.object(n)
	default:
		return fmt.Errorf("mfx(sjson): unsupported tree node %T", v)
	}
}

func (e *encoder) array(a []any) error {
	if err := e.w.WriteByte('['); err != nil {
		return err
	}
	for i, elem := range a {
		if i > 0 {
			if err := e.w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := e.value(elem); err != nil {
			return err
		}
	}
	return e.w.WriteByte(']')
}

func (e *encoder) object(o *apis.Object) error {
	if err := e.w.WriteByte('{'); err != nil {
		return err
	}
	first := true
	for pair := o.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			if err := e.w.WriteByte(','); err != nil {
				return err
			}
		}
		first = false
		if err := e.key(pair.Key); err != nil {
			return err
		}
		if err := e.w.WriteByte(':'); err != nil {
			return err
		}
		if err := e.value(pair.Value); err != nil {
			return err
		}
	}
	return e.w.WriteByte('}')
}

func (e *encoder) key(k string) error {
	if !e.strict && isIdentifier(k) {
		_, err := e.w.WriteString(k)
		return err
	}
	return e.str(k)
}

// str writes a quoted string. Escaping covers the active quote, the
// backslash, and control characters, so decode(encode(s)) == s for any
// string.
func (e *encoder) str(s string) error {
	if err := e.w.WriteByte(e.quote); err != nil {
		return err
	}
	for _, r := range s {
		switch {
		case r == rune(e.quote), r == '\\':
			e.w.WriteByte('\\')
			e.w.WriteRune(r)
		case r == '\n':
			e.w.WriteString(`\n`)
		case r == '\r':
			e.w.WriteString(`\r`)
		case r == '\t':
			e.w.WriteString(`\t`)
		case r < 0x20:
			fmt.Fprintf(e.w, `\u%04x`, r)
		default:
			e.w.WriteRune(r)
		}
	}
	return e.w.WriteByte(e.quote)
}

// isIdentifier reports whether k can appear as an unquoted key in the
// lax dialect.
func isIdentifier(k string) bool {
	if k == "" {
		return false
	}
	for i, r := range k {
		if r == '_' || r == '$' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return utf8.ValidString(k)
}
