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

package mfx

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/mfx/apis"
	"dirpx.dev/mfx/store"
)

type widget struct {
	Name  string
	Count int
}

func TestMarshalUnmarshal(t *testing.T) {
	t.Cleanup(Reset)

	data, err := Marshal("sjson", widget{Name: "gear", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, `{name:'gear',count:3}`, string(data))

	var got widget
	require.NoError(t, Unmarshal("sjson", data, &got))
	assert.Equal(t, widget{Name: "gear", Count: 3}, got)
}

func TestUnknownCodec(t *testing.T) {
	t.Cleanup(Reset)

	_, err := Marshal("yaml", widget{})
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestContextCaching(t *testing.T) {
	t.Cleanup(Reset)

	c1, err := ContextFor("sjson")
	require.NoError(t, err)
	c2, err := ContextFor("sjson")
	require.NoError(t, err)
	assert.Same(t, c1, c2, "equal store and codec must share a context")

	// A reconfigured store invalidates the cache.
	b := Store().Builder()
	b.SortMaps = true
	SetStore(b.MustBuild())

	c3, err := ContextFor("sjson")
	require.NoError(t, err)
	assert.NotSame(t, c1, c3)
}

// Stores are content-interned, so setting an equal store back restores
// the identical snapshot key and the cached contexts stay warm.
func TestSetStoreRoundTrip(t *testing.T) {
	t.Cleanup(Reset)

	orig := Store()
	b := orig.Builder()
	rebuilt := b.MustBuild()
	assert.Same(t, orig, rebuilt)
}

func TestRegisterCodec(t *testing.T) {
	t.Cleanup(Reset)

	c := &fakeCodec{name: "fake"}
	require.NoError(t, RegisterCodec(c))

	got, ok := CodecFor("fake")
	require.True(t, ok)
	assert.Same(t, c, got)

	// Same instance again: no-op. Different instance: conflict.
	require.NoError(t, RegisterCodec(c))
	err := RegisterCodec(&fakeCodec{name: "fake"})
	assert.ErrorIs(t, err, ErrConflictingRegistration)

	// Shipped codec names are taken.
	err = RegisterCodec(&fakeCodec{name: "sjson"})
	assert.ErrorIs(t, err, ErrConflictingRegistration)
}

func TestJSONLDEndToEnd(t *testing.T) {
	t.Cleanup(Reset)

	data, err := Marshal("jsonld", widget{Name: "gear", Count: 3})
	require.NoError(t, err)

	var got widget
	require.NoError(t, Unmarshal("jsonld", data, &got))
	assert.Equal(t, widget{Name: "gear", Count: 3}, got)
}

func TestStrictStoreViaEnvStyleBuilder(t *testing.T) {
	t.Cleanup(Reset)

	b := store.NewBuilder()
	b.StrictDialect = true
	SetStore(b.MustBuild())

	data, err := Marshal("sjson", widget{Name: "g"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"g","count":0}`, string(data))
}

type fakeCodec struct {
	name string
}

func (f *fakeCodec) Name() string      { return f.name }
func (f *fakeCodec) MediaType() string { return "application/x-fake" }

func (f *fakeCodec) Encode(w io.Writer, v any, opts apis.CodecOptions) error {
	_, err := w.Write([]byte("fake"))
	return err
}

func (f *fakeCodec) Decode(r io.Reader, opts apis.CodecOptions) (any, error) {
	return nil, nil
}
