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

package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/mfx/store"
	"dirpx.dev/mfx/swaps"
)

type profile struct {
	Name   string
	Age    int `bean:"years"`
	Scores []float64
	Labels map[string]string
	When   time.Time
}

type linked struct {
	Name string
	Next *linked
}

func newStore(t *testing.T, mutate func(*store.Builder)) *store.Store {
	t.Helper()
	b := store.NewBuilder()
	b.Interner = store.NewInterner()
	if mutate != nil {
		mutate(&b)
	}
	return b.MustBuild()
}

func TestBeanSchema(t *testing.T) {
	st := newStore(t, func(b *store.Builder) {
		b.AddSwaps(swaps.Time{})
	})
	s := For(st, profile{})
	require.Equal(t, "object", s.Type)

	name, ok := s.Properties.Get("name")
	require.True(t, ok)
	assert.Equal(t, "string", name.Type)

	years, ok := s.Properties.Get("years")
	require.True(t, ok, "tag-renamed property missing")
	assert.Equal(t, "integer", years.Type)

	scores, ok := s.Properties.Get("scores")
	require.True(t, ok)
	assert.Equal(t, "array", scores.Type)
	assert.Equal(t, "number", scores.Items.Type)

	labels, ok := s.Properties.Get("labels")
	require.True(t, ok)
	assert.Equal(t, "object", labels.Type)
	assert.Equal(t, "string", labels.AdditionalProperties.Type)

	// Swapped types describe their surrogate form.
	when, ok := s.Properties.Get("when")
	require.True(t, ok)
	assert.Equal(t, "string", when.Type)
}

func TestNotBeanSchema(t *testing.T) {
	st := newStore(t, func(b *store.Builder) {
		b.AddNotBeanClasses("schema.profile")
	})
	s := For(st, profile{})
	assert.Equal(t, "string", s.Type)
}

func TestStrictPropertiesSchema(t *testing.T) {
	st := newStore(t, func(b *store.Builder) {
		b.StrictProperties = true
	})
	s := For(st, profile{Name: "x"})
	require.NotNil(t, s.AdditionalProperties)
	assert.Same(t, jsonschema.FalseSchema, s.AdditionalProperties)
}

func TestRecursiveSchemaTerminates(t *testing.T) {
	s := NewGenerator(newStore(t, nil)).Schema(reflect.TypeOf(linked{}))
	require.Equal(t, "object", s.Type)
	next, ok := s.Properties.Get("next")
	require.True(t, ok)
	// Re-entry yields an unconstrained subschema instead of recursing.
	assert.Empty(t, next.Type)
}

func TestScalarSchemas(t *testing.T) {
	g := NewGenerator(newStore(t, nil))
	assert.Equal(t, "boolean", g.Schema(reflect.TypeOf(true)).Type)
	assert.Equal(t, "integer", g.Schema(reflect.TypeOf(uint8(0))).Type)
	assert.Equal(t, "number", g.Schema(reflect.TypeOf(float32(0))).Type)
	assert.Equal(t, "string", g.Schema(reflect.TypeOf("")).Type)
}
