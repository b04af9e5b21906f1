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

package jsonld

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/mfx/apis"
)

func TestObjectRoundTrip(t *testing.T) {
	tree := apis.ObjectOf(
		"name", "Ann",
		"age", int64(40),
	)

	var buf bytes.Buffer
	require.NoError(t, New().Encode(&buf, tree, apis.CodecOptions{}))

	got, err := New().Decode(&buf, apis.CodecOptions{})
	require.NoError(t, err)

	obj, ok := got.(*apis.Object)
	require.True(t, ok, "got %T", got)
	// JSON-LD normalizes key order; compare by content.
	name, _ := obj.Get("name")
	assert.Equal(t, "Ann", name)
	age, _ := obj.Get("age")
	assert.Equal(t, int64(40), age)
}

func TestEncodeProducesExpandedForm(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().Encode(&buf, apis.ObjectOf("name", "Ann"), apis.CodecOptions{}))

	var doc []any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc, 1)
	node := doc[0].(map[string]any)
	assert.Contains(t, node, Vocab+"name")
}

func TestScalarRoot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().Encode(&buf, "hello", apis.CodecOptions{}))

	got, err := New().Decode(&buf, apis.CodecOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := New().Decode(strings.NewReader("{not json"), apis.CodecOptions{})
	require.Error(t, err)
}

func TestNestedRoundTrip(t *testing.T) {
	tree := apis.ObjectOf(
		"outer", apis.ObjectOf("inner", int64(2)),
		"list", []any{int64(1), int64(2)},
	)

	var buf bytes.Buffer
	require.NoError(t, New().Encode(&buf, tree, apis.CodecOptions{}))
	got, err := New().Decode(&buf, apis.CodecOptions{})
	require.NoError(t, err)

	obj := got.(*apis.Object)
	outer, _ := obj.Get("outer")
	inner, _ := outer.(*apis.Object).Get("inner")
	assert.Equal(t, int64(2), inner)
	list, _ := obj.Get("list")
	assert.Equal(t, []any{int64(1), int64(2)}, list)
}
