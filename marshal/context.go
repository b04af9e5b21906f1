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

// Package marshal implements the format-agnostic serialize/parse core:
// immutable contexts, single-call sessions, the recursive walk engine,
// and its error taxonomy.
//
// A Context pairs a Store with a Codec (and optionally a custom metadata
// provider) and owns the ClassMeta cache for that configuration. It is
// immutable and safe for unsynchronized concurrent use; sessions are the
// mutable per-call objects it hands out.
package marshal

import (
	"bytes"
	"io"
	"log/slog"
	"time"

	"dirpx.dev/mfx/apis"
	"dirpx.dev/mfx/meta"
	"dirpx.dev/mfx/store"
)

// Context is the immutable pairing of configuration and format. It is a
// factory for sessions and the exclusive owner of its ClassMeta cache.
type Context struct {
	store    *store.Store
	codec    apis.Codec
	provider apis.MetaProvider
	resolver *meta.Resolver
	logger   *slog.Logger
	loc      *time.Location
}

// Option customizes a Context at construction time.
type Option func(*Context)

// WithProvider installs a custom metadata provider (e.g. one carrying
// registered bean creators).
func WithProvider(p apis.MetaProvider) Option {
	return func(c *Context) { c.provider = p }
}

// WithLogger installs a structured logger for session debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// NewContext builds a context over st and codec.
func NewContext(st *store.Store, codec apis.Codec, opts ...Option) *Context {
	c := &Context{
		store:  st,
		codec:  codec,
		logger: slog.Default(),
		loc:    st.Location(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.resolver = meta.NewResolver(st, c.provider)
	return c
}

// Store returns the context's configuration store.
func (c *Context) Store() *store.Store { return c.store }

// Codec returns the context's format codec.
func (c *Context) Codec() apis.Codec { return c.codec }

// Resolver returns the context's ClassMeta resolver.
func (c *Context) Resolver() *meta.Resolver { return c.resolver }

// NewSerializeSession creates a fresh serialize session. Sessions are
// not safe for concurrent use; each call path must obtain its own.
func (c *Context) NewSerializeSession() *SerializeSession {
	return newSerializeSession(c)
}

// NewParseSession creates a fresh parse session. Sessions are not safe
// for concurrent use; each call path must obtain its own.
func (c *Context) NewParseSession() *ParseSession {
	return newParseSession(c)
}

// Serialize renders v to w through a one-shot session.
func (c *Context) Serialize(w io.Writer, v any) error {
	return c.NewSerializeSession().Serialize(w, v)
}

// SerializeBytes renders v to a byte slice through a one-shot session.
func (c *Context) SerializeBytes(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Serialize(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeString renders v to a string through a one-shot session.
func (c *Context) SerializeString(v any) (string, error) {
	b, err := c.SerializeBytes(v)
	return string(b), err
}

// Parse reads one document from r into target, which must be a non-nil
// pointer.
func (c *Context) Parse(r io.Reader, target any) error {
	return c.NewParseSession().Parse(r, target)
}

// ParseBytes parses data into target.
func (c *Context) ParseBytes(data []byte, target any) error {
	return c.Parse(bytes.NewReader(data), target)
}

// ParseString parses s into target.
func (c *Context) ParseString(s string, target any) error {
	return c.Parse(bytes.NewReader([]byte(s)), target)
}
