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

package apis

import "io"

// Codec is the per-format capability contract consumed by the walk engine.
//
// # Overview
//
// The walk engine is format-agnostic: serialization reduces an object
// graph to a canonical tree, and parsing binds a canonical tree back into
// typed values. A Codec is the only format-specific piece — it renders a
// canonical tree to wire syntax and tokenizes wire syntax back into a
// canonical tree. Tokenizer and grammar are internal concerns of each
// implementation.
//
// # Canonical tree
//
// The value exchanged through Encode/Decode is one of:
//
//   - nil
//   - bool
//   - int64, uint64, float64
//   - string
//   - []any
//   - *Object (key-ordered generic object)
//
// Codecs must not mutate a tree handed to Encode; the same tree may be
// rendered by several codecs concurrently.
//
// # Contract
//
//   - Encode string escaping must be losslessly reversible by Decode.
//   - Decode must produce integers as int64 where the syntax permits,
//     falling back to float64 only for fractional or out-of-range values.
//   - Implementations must be stateless or internally synchronized; one
//     Codec instance is shared by all sessions of all contexts using it.
type Codec interface {
	// Name returns the short format identifier, e.g. "sjson".
	Name() string

	// MediaType returns the media type the codec produces/consumes.
	MediaType() string

	// Encode renders the canonical tree v to w.
	Encode(w io.Writer, v any, opts CodecOptions) error

	// Decode tokenizes r into a canonical tree.
	Decode(r io.Reader, opts CodecOptions) (any, error)
}

// CodecOptions carries the store-derived knobs a codec honors.
// It is passed by value and treated as immutable.
type CodecOptions struct {
	// Strict selects the conservative wire dialect (for sjson: double
	// quotes and quoted keys). The lax dialect is the default.
	Strict bool

	// Quote is the quote character for the lax dialect. Zero means the
	// codec default.
	Quote byte

	// Charset names the character encoding declared by the store.
	// Shipped codecs emit UTF-8 and treat this as advisory metadata.
	Charset string
}
