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

// Package schema derives JSON Schemas from the same type classification
// the serializers use, so a generated schema describes exactly what the
// sjson codec emits for that type under a given store: swapped types
// appear as their surrogate, opaque types as strings, bean properties
// under their wire names.
package schema

import (
	"reflect"

	"github.com/invopop/jsonschema"

	"dirpx.dev/mfx/apis"
	"dirpx.dev/mfx/meta"
	"dirpx.dev/mfx/store"
)

// Generator derives schemas under one store configuration. It is not
// safe for concurrent use; create one per call path.
type Generator struct {
	st        *store.Store
	resolver  *meta.Resolver
	reflector *jsonschema.Reflector
	seen      map[reflect.Type]bool
}

// NewGenerator builds a generator over st.
func NewGenerator(st *store.Store) *Generator {
	return &Generator{
		st:       st,
		resolver: meta.NewResolver(st, nil),
		reflector: &jsonschema.Reflector{
			DoNotReference:            true,
			ExpandedStruct:            true,
			AllowAdditionalProperties: !st.StrictProperties(),
		},
		seen: make(map[reflect.Type]bool),
	}
}

// For derives the schema describing v's serialized form.
func For(st *store.Store, v any) *jsonschema.Schema {
	return NewGenerator(st).Schema(reflect.TypeOf(v))
}

// Schema derives the schema for t. Recursive types yield an
// unconstrained subschema at the point of re-entry.
func (g *Generator) Schema(t reflect.Type) *jsonschema.Schema {
	if t == nil {
		return jsonschema.TrueSchema
	}
	t = meta.Indirect(t)
	if t.Kind() == reflect.Interface {
		return jsonschema.TrueSchema
	}

	cm := g.resolver.Resolve(t)
	switch cm.Kind() {
	case apis.KindSwapped:
		return g.Schema(cm.Swap().Swapped())
	case apis.KindBean:
		return g.bean(t, cm.Bean())
	case apis.KindMap:
		return &jsonschema.Schema{
			Type:                 "object",
			AdditionalProperties: g.Schema(t.Elem()),
		}
	case apis.KindCollection, apis.KindArray:
		return &jsonschema.Schema{
			Type:  "array",
			Items: g.Schema(t.Elem()),
		}
	case apis.KindString:
		return &jsonschema.Schema{Type: "string"}
	case apis.KindNumber:
		if isIntegerKind(t.Kind()) {
			return &jsonschema.Schema{Type: "integer"}
		}
		return &jsonschema.Schema{Type: "number"}
	case apis.KindBool:
		return &jsonschema.Schema{Type: "boolean"}
	case apis.KindURI:
		return &jsonschema.Schema{Type: "string", Format: "uri"}
	case apis.KindVoid:
		return &jsonschema.Schema{Type: "null"}
	default:
		// Opaque values serialize through their string form.
		return &jsonschema.Schema{Type: "string"}
	}
}

// bean reflects the struct once for tag-derived metadata, then rebuilds
// the property set under the bean's wire names and swap surrogates.
func (g *Generator) bean(t reflect.Type, bm *meta.BeanMeta) *jsonschema.Schema {
	if g.seen[t] {
		return jsonschema.TrueSchema
	}
	g.seen[t] = true
	defer delete(g.seen, t)

	base := g.reflector.ReflectFromType(t)

	props := jsonschema.NewProperties()
	for _, p := range bm.Properties() {
		if p.Ignored() {
			continue
		}
		var ps *jsonschema.Schema
		if sw := p.Swap(); sw != nil {
			ps = g.Schema(sw.Swapped())
		} else {
			ps = g.Schema(p.Declared())
		}
		props.Set(p.Name(), ps)
	}

	out := &jsonschema.Schema{
		Type:        "object",
		Properties:  props,
		Title:       base.Title,
		Description: base.Description,
	}
	if g.st.StrictProperties() {
		out.AdditionalProperties = jsonschema.FalseSchema
	}
	return out
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
