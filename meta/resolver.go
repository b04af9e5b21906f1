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

package meta

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"sync"

	"dirpx.dev/mfx/apis"
	"dirpx.dev/mfx/store"
)

// Resolver computes and caches ClassMeta for one store/provider pair.
//
// Reads are lock-free (sync.Map); misses take a single build mutex, so
// concurrent resolution of the same type publishes exactly one entry.
// Entries for mutually recursive types are built as a group and only
// published once the whole group is complete, which keeps published
// metadata immutable.
type Resolver struct {
	store    *store.Store
	provider apis.MetaProvider

	// buildMu serializes cache misses.
	buildMu sync.Mutex
	// cache maps the pointer-normalized reflect.Type to its *ClassMeta.
	cache sync.Map
}

// voidMeta is the shared metadata for untyped nil.
var voidMeta = &ClassMeta{kind: apis.KindVoid}

// NewResolver constructs a resolver over st. A nil provider selects the
// default Provider with the store's visibility rule.
func NewResolver(st *store.Store, p apis.MetaProvider) *Resolver {
	if p == nil {
		p = NewProvider(st.Visibility())
	}
	return &Resolver{store: st, provider: p}
}

// Store returns the owning store.
func (r *Resolver) Store() *store.Store { return r.store }

// Provider returns the metadata provider in use.
func (r *Resolver) Provider() apis.MetaProvider { return r.provider }

// Resolve returns the ClassMeta for t. It never fails: every type
// classifies to some kind, with KindObject as the safety net. A nil type
// resolves to KindVoid.
func (r *Resolver) Resolve(t reflect.Type) *ClassMeta {
	if t == nil {
		return voidMeta
	}
	t = Indirect(t)
	if v, ok := r.cache.Load(t); ok {
		return v.(*ClassMeta)
	}

	r.buildMu.Lock()
	defer r.buildMu.Unlock()
	// Re-check under lock.
	if v, ok := r.cache.Load(t); ok {
		return v.(*ClassMeta)
	}

	building := map[reflect.Type]*ClassMeta{}
	cm := r.build(t, building)
	// Publish the completed group atomically entry by entry; each entry
	// is fully built (self-references included) before any Store.
	for bt, bcm := range building {
		r.cache.Store(bt, bcm)
	}
	return cm
}

// build constructs the metadata for t, recursing through element, key,
// and property types. building carries the in-progress group so
// self-referential types resolve to their own placeholder.
func (r *Resolver) build(t reflect.Type, building map[reflect.Type]*ClassMeta) *ClassMeta {
	t = Indirect(t)
	if t == nil {
		return voidMeta
	}
	if v, ok := r.cache.Load(t); ok {
		return v.(*ClassMeta)
	}
	if cm, ok := building[t]; ok {
		return cm
	}

	cm := &ClassMeta{typ: t}
	building[t] = cm

	cm.textCtor = reflect.PtrTo(t).Implements(textUnmarshalerType)
	cm.stringer = t.Implements(stringerType) || reflect.PtrTo(t).Implements(stringerType)
	cm.example = exampleOf(t)

	// Ignore sets override everything, including swaps and bean shape:
	// the type becomes an opaque object rendered via its string form.
	if r.notBean(t) {
		cm.notBean = true
		cm.kind = apis.KindObject
		return cm
	}

	if sw := r.swapFor(t); sw != nil {
		cm.kind = apis.KindSwapped
		cm.swap = sw
		return cm
	}

	switch t.Kind() {
	case reflect.Bool:
		cm.kind = apis.KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		cm.kind = apis.KindNumber
	case reflect.String:
		cm.kind = apis.KindString
	case reflect.Array:
		cm.kind = apis.KindArray
		cm.elem = r.build(t.Elem(), building)
	case reflect.Slice:
		cm.kind = apis.KindCollection
		cm.elem = r.build(t.Elem(), building)
	case reflect.Map:
		cm.kind = apis.KindMap
		cm.key = r.build(t.Key(), building)
		cm.elem = r.build(t.Elem(), building)
	case reflect.Struct:
		if t == uriType {
			cm.kind = apis.KindURI
			return cm
		}
		info, ok, err := r.provider.BeanInfoOf(t)
		if err != nil || !ok {
			// Provider failure falls back to the opaque object kind;
			// resolution itself never fails.
			cm.kind = apis.KindObject
			return cm
		}
		cm.kind = apis.KindBean
		cm.bean = newBeanMeta(t, info, func(pt reflect.Type) *ClassMeta {
			return r.build(pt, building)
		})
	default:
		// Interfaces, funcs, channels, complex numbers: dynamic or
		// opaque. The walk re-resolves interfaces by runtime type.
		cm.kind = apis.KindObject
	}
	return cm
}

// notBean evaluates the store's ignore sets for t.
func (r *Resolver) notBean(t reflect.Type) bool {
	if r.store.NotBeanClass(t.String()) {
		return true
	}
	if pkg := t.PkgPath(); pkg != "" && r.store.NotBeanPackages().Match(pkg) {
		return true
	}
	return false
}

// swapFor finds the effective class-level swap for t: exact type match
// first, then nearest assignable match (non-interface targets before
// interface targets, registration order breaking ties).
func (r *Resolver) swapFor(t reflect.Type) apis.Swap {
	swaps := r.store.Swaps()
	for _, sw := range swaps {
		if sw.Type() == t {
			return sw
		}
	}
	var viaInterface apis.Swap
	for _, sw := range swaps {
		st := sw.Type()
		if st.Kind() == reflect.Interface {
			if t.Implements(st) || reflect.PtrTo(t).Implements(st) {
				if viaInterface == nil {
					viaInterface = sw
				}
			}
			continue
		}
		if t.AssignableTo(st) {
			return sw
		}
	}
	return viaInterface
}

// exampleOf surfaces a type's self-declared example value, if any.
func exampleOf(t reflect.Type) any {
	if t.Implements(examplerType) {
		return reflect.Zero(t).Interface().(Exampler).ExampleValue()
	}
	if reflect.PtrTo(t).Implements(examplerType) {
		defer func() { _ = recover() }()
		return reflect.New(t).Interface().(Exampler).ExampleValue()
	}
	return nil
}

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	stringerType        = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	examplerType        = reflect.TypeOf((*Exampler)(nil)).Elem()
	uriType             = reflect.TypeOf(url.URL{})
)
