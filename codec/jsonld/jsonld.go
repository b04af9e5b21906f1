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

// Package jsonld implements a JSON-LD codec over the json-gold
// processor.
//
// Encode wraps the canonical tree in a vocabulary context and writes
// the expanded document form; Decode compacts incoming documents
// against the same context and rebuilds the canonical tree.
//
// JSON-LD is a semantic format, so two normalizations apply that the
// other codecs do not share: object key order is not preserved (decoded
// objects carry their keys in sorted order), and null-valued members
// are dropped by expansion. Integers survive as int64 up to the float64
// integer range.
package jsonld

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	ld "github.com/piprate/json-gold/ld"

	"dirpx.dev/mfx/apis"
)

// Vocab is the default vocabulary IRI under which object keys are
// interpreted.
const Vocab = "https://dirpx.dev/mfx/vocab#"

// rootTerm carries non-object root values, which JSON-LD cannot express
// bare.
const rootTerm = "value"

// Codec is the JSON-LD codec. It is stateless; one instance serves all
// sessions.
type Codec struct{}

// New returns the codec.
func New() *Codec { return &Codec{} }

// Name implements apis.Codec.
func (*Codec) Name() string { return "jsonld" }

// MediaType implements apis.Codec.
func (*Codec) MediaType() string { return "application/ld+json" }

// Encode implements apis.Codec.
func (*Codec) Encode(w io.Writer, v any, opts apis.CodecOptions) error {
	doc := map[string]any{"@context": contextDoc()}
	switch root := toPlain(v).(type) {
	case map[string]any:
		for k, pv := range root {
			doc[k] = pv
		}
	default:
		doc[rootTerm] = root
	}

	proc := ld.NewJsonLdProcessor()
	expanded, err := proc.Expand(doc, ld.NewJsonLdOptions(""))
	if err != nil {
		return fmt.Errorf("mfx(jsonld): expand: %w", err)
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(expanded); err != nil {
		return fmt.Errorf("mfx(jsonld): encode: %w", err)
	}
	return nil
}

// Decode implements apis.Codec.
func (*Codec) Decode(r io.Reader, opts apis.CodecOptions) (any, error) {
	var doc any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("mfx(jsonld): decode: %w", err)
	}

	proc := ld.NewJsonLdProcessor()
	ldOpts := ld.NewJsonLdOptions("")
	ldOpts.UseNativeTypes = true
	compacted, err := proc.Compact(doc, map[string]any{"@context": contextDoc()}, ldOpts)
	if err != nil {
		return nil, fmt.Errorf("mfx(jsonld): compact: %w", err)
	}

	delete(compacted, "@context")
	if len(compacted) == 1 {
		if root, ok := compacted[rootTerm]; ok {
			return fromPlain(root), nil
		}
	}
	return fromPlain(map[string]any(compacted)), nil
}

func contextDoc() map[string]any {
	return map[string]any{"@vocab": Vocab}
}

// toPlain lowers the canonical tree into the plain-map shape the
// json-gold processor operates on.
func toPlain(v any) any {
	switch n := v.(type) {
	case *apis.Object:
		out := make(map[string]any, n.Len())
		for pair := n.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = toPlain(pair.Value)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = toPlain(e)
		}
		return out
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	default:
		return v
	}
}

// fromPlain lifts processor output back into the canonical tree,
// restoring integral numbers and key-ordered objects.
func fromPlain(v any) any {
	switch n := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := apis.NewObject()
		for _, k := range keys {
			obj.Set(k, fromPlain(n[k]))
		}
		return obj
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = fromPlain(e)
		}
		return out
	case float64:
		if math.Trunc(n) == n && math.Abs(n) <= 1<<53 {
			return int64(n)
		}
		return n
	default:
		return v
	}
}
