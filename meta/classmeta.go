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

// Package meta implements per-type metadata: classification of runtime
// types into canonical kinds, bean property introspection, and the
// per-context resolution cache.
package meta

import (
	"reflect"

	"dirpx.dev/mfx/apis"
)

// maxIndirect bounds pointer unwrapping during type normalization,
// guarding against pathological pointer chains.
const maxIndirect = 8

// ClassMeta is the cached classification and metadata for one runtime
// type. Instances are created lazily by a Resolver, never mutated after
// publication, and live as long as their owning resolver.
type ClassMeta struct {
	typ     reflect.Type
	kind    apis.Kind
	elem    *ClassMeta
	key     *ClassMeta
	swap    apis.Swap
	notBean bool
	bean    *BeanMeta
	example any

	// textCtor reports that *T implements encoding.TextUnmarshaler,
	// enabling constructor-from-string parsing for opaque objects.
	textCtor bool
	// stringer reports that T (or *T) implements fmt.Stringer.
	stringer bool
}

// Type returns the (pointer-normalized) runtime type.
func (cm *ClassMeta) Type() reflect.Type { return cm.typ }

// Kind returns the canonical classification.
func (cm *ClassMeta) Kind() apis.Kind { return cm.kind }

// Elem returns the element metadata for collections and arrays, or the
// value metadata for maps. Nil otherwise.
func (cm *ClassMeta) Elem() *ClassMeta { return cm.elem }

// Key returns the key metadata for maps, nil otherwise.
func (cm *ClassMeta) Key() *ClassMeta { return cm.key }

// Swap returns the effective class-level swap, non-nil exactly when the
// kind is KindSwapped.
func (cm *ClassMeta) Swap() apis.Swap { return cm.swap }

// NotBean reports whether the type was forced opaque by the store's
// ignore sets.
func (cm *ClassMeta) NotBean() bool { return cm.notBean }

// Bean returns the bean metadata, non-nil exactly when the kind is
// KindBean.
func (cm *ClassMeta) Bean() *BeanMeta { return cm.bean }

// Example returns the type's example value when it declares one via the
// Exampler interface, else nil.
func (cm *ClassMeta) Example() any { return cm.example }

// HasTextConstructor reports whether opaque values of this type can be
// reconstructed from their string form.
func (cm *ClassMeta) HasTextConstructor() bool { return cm.textCtor }

// HasStringer reports whether values of this type provide fmt.Stringer.
func (cm *ClassMeta) HasStringer() bool { return cm.stringer }

// Exampler lets a type publish a representative example value, surfaced
// through ClassMeta.Example for documentation and schema generation.
type Exampler interface {
	ExampleValue() any
}

// Indirect unwraps pointer types to their base type, bounded by
// maxIndirect.
func Indirect(t reflect.Type) reflect.Type {
	for i := 0; t != nil && t.Kind() == reflect.Ptr && i < maxIndirect; i++ {
		t = t.Elem()
	}
	return t
}
