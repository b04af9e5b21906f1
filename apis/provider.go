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

package apis

import "reflect"

// Property describes a single bean property as reported by a
// MetaProvider. It is a plain struct so providers can be implemented on
// top of any reflection or registration facility.
type Property struct {
	// Name is the wire name of the property. Unique within a bean.
	Name string

	// Index is the struct field index path for field-backed properties.
	// Nil for accessor-backed properties.
	Index []int

	// Getter and Setter are method names for accessor-backed properties
	// (getter on the value or pointer type, setter on the pointer type).
	// Empty for field-backed properties.
	Getter string
	Setter string

	// Type is the declared property type.
	Type reflect.Type

	// Swap is a property-level transform override. May be nil.
	// A property-level swap takes precedence over any store swap.
	Swap Swap

	// Ignored marks a property that is introspected but excluded from
	// both serialization and parsing.
	Ignored bool
}

// BeanInfo is the introspected shape of a bean type.
type BeanInfo struct {
	// Properties in declared order. Names are unique; when a provider
	// encounters a duplicate, the first registration wins.
	Properties []Property

	// Create, when non-nil, marks an immutable/constructor-based bean:
	// the parser buffers incoming properties and invokes Create once,
	// with values keyed by the names in CreateArgs. Properties not
	// listed in CreateArgs are assigned afterwards via field or setter.
	Create func(args map[string]any) (any, error)

	// CreateArgs lists the property names consumed by Create.
	CreateArgs []string
}

// MetaProvider supplies per-type bean metadata.
//
// The core treats a provider as a pure function from reflect.Type to
// metadata: results are cached by the owning context, so a provider must
// return identical metadata for repeated calls with the same type.
//
// ok reports whether t is bean-shaped at all. A false return makes the
// type fall through to structural classification.
type MetaProvider interface {
	BeanInfoOf(t reflect.Type) (info BeanInfo, ok bool, err error)
}
