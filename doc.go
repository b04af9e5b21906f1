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

// Package mfx is a reflection-driven marshalling framework: it
// serializes arbitrary Go object graphs to multiple wire formats and
// parses them back, driven by cached per-type metadata instead of
// per-format hand-written code.
//
// # Architecture
//
// Configuration lives in a [store.Store], an immutable, content-interned
// bag of knobs built through [store.Builder]. A [marshal.Context] pairs
// a store with a codec and owns the type-metadata cache for that
// configuration; sessions are the cheap single-call objects a context
// hands out. Codecs ([codec/sjson], [codec/jsonld]) translate between
// wire syntax and a canonical tree; the walk engine in [marshal] does
// everything format-independent.
//
// Type classification is handled by [meta]: every Go type resolves to
// exactly one kind (bean, map, collection, array, scalar, swapped,
// opaque), and beans expose their property sets through cached
// metadata. Swaps ([swaps]) substitute hard-to-serialize types with
// wire-friendly surrogates in both directions.
//
// # Global facade
//
// This package carries a process-wide snapshot (store, codec set,
// context cache) published atomically, so simple call sites can stay
// one-liners:
//
//	data, err := mfx.Marshal("sjson", person)
//	err = mfx.Unmarshal("sjson", data, &person)
//
// Reconfiguration swaps the whole snapshot; readers never observe a
// partially-updated state. Libraries that need isolated configuration
// should build their own [marshal.Context] instead of mutating the
// global one.
package mfx
