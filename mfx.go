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
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"dirpx.dev/mfx/apis"
	"dirpx.dev/mfx/codec/jsonld"
	"dirpx.dev/mfx/codec/sjson"
	"dirpx.dev/mfx/marshal"
	"dirpx.dev/mfx/store"
)

// init initializes the global state with the default store and the
// shipped codecs.
func init() {
	st.Store(defaultState())
}

var (
	// ErrConflictingRegistration is returned when a codec name is already
	// taken by a different codec instance.
	ErrConflictingRegistration = errors.New("mfx: conflicting codec registration")
	// ErrUnknownCodec is returned when no codec is registered under the
	// requested name.
	ErrUnknownCodec = errors.New("mfx: unknown codec")
)

// buildMu serializes writers (reconfigurations and codec registrations)
// so we never publish partially-built snapshots.
var buildMu sync.Mutex

// st is the global mfx state.
var st atomic.Pointer[state]

// state is the global mfx state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate
// fields of a published state. Writers create a new state and swap it
// atomically. The context cache is part of the snapshot: replacing the
// store discards cached contexts along with it.
type state struct {
	// cfg is the global configuration store.
	cfg *store.Store
	// codecs maps codec names to registered codec instances.
	codecs map[string]apis.Codec
	// contexts caches contexts per (store identity, codec name).
	contexts *sync.Map
}

// ctxKey identifies a context by store identity and codec name. Stores
// are content-interned, so pointer identity stands in for configuration
// equality.
type ctxKey struct {
	cfg   *store.Store
	codec string
}

func defaultState() *state {
	b := store.Builder{}
	return &state{
		cfg: b.MustBuild(),
		codecs: map[string]apis.Codec{
			"sjson":  sjson.New(),
			"jsonld": jsonld.New(),
		},
		contexts: &sync.Map{},
	}
}

// Store returns the global configuration store.
func Store() *store.Store {
	return st.Load().cfg
}

// SetStore replaces the global configuration store. Cached contexts
// built on the previous store are discarded.
func SetStore(cfg *store.Store) {
	if cfg == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	st.Store(
		&state{
			cfg:      cfg,
			codecs:   old.codecs,
			contexts: &sync.Map{},
		},
	)
}

// RegisterCodec adds a codec to the global codec set. Registering the
// same instance under the same name again is a no-op; a different
// instance under a taken name is a conflict.
func RegisterCodec(c apis.Codec) error {
	if c == nil {
		return nil
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	if existing, ok := old.codecs[c.Name()]; ok {
		if existing == c {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrConflictingRegistration, c.Name())
	}

	codecs := make(map[string]apis.Codec, len(old.codecs)+1)
	for k, v := range old.codecs {
		codecs[k] = v
	}
	codecs[c.Name()] = c

	st.Store(
		&state{
			cfg:      old.cfg,
			codecs:   codecs,
			contexts: old.contexts,
		},
	)
	return nil
}

// CodecFor returns the codec registered under name.
func CodecFor(name string) (apis.Codec, bool) {
	c, ok := st.Load().codecs[name]
	return c, ok
}

// ContextFor returns the shared context pairing the global store with
// the named codec, building and caching it on first use.
func ContextFor(name string) (*marshal.Context, error) {
	s := st.Load()
	c, ok := s.codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	key := ctxKey{cfg: s.cfg, codec: name}
	if cached, ok := s.contexts.Load(key); ok {
		return cached.(*marshal.Context), nil
	}
	ctx := marshal.NewContext(s.cfg, c)
	// Single winner under concurrent misses; losers adopt the published
	// context so all callers share one ClassMeta cache.
	actual, _ := s.contexts.LoadOrStore(key, ctx)
	return actual.(*marshal.Context), nil
}

// Marshal renders v through the named codec under the global store.
func Marshal(codec string, v any) ([]byte, error) {
	ctx, err := ContextFor(codec)
	if err != nil {
		return nil, err
	}
	return ctx.SerializeBytes(v)
}

// MarshalString renders v to a string through the named codec.
func MarshalString(codec string, v any) (string, error) {
	ctx, err := ContextFor(codec)
	if err != nil {
		return "", err
	}
	return ctx.SerializeString(v)
}

// Unmarshal parses data through the named codec into target, which must
// be a non-nil pointer.
func Unmarshal(codec string, data []byte, target any) error {
	ctx, err := ContextFor(codec)
	if err != nil {
		return err
	}
	return ctx.ParseBytes(data, target)
}

// UnmarshalString parses s through the named codec into target.
func UnmarshalString(codec string, s string, target any) error {
	ctx, err := ContextFor(codec)
	if err != nil {
		return err
	}
	return ctx.ParseString(s, target)
}

// Reset restores the default global state. Intended for tests.
func Reset() {
	buildMu.Lock()
	defer buildMu.Unlock()
	st.Store(defaultState())
}
