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
	"errors"
	"fmt"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"dirpx.dev/mfx/apis"
)

var (
	// ErrNoSetter is returned when parsing targets a read-only property.
	ErrNoSetter = errors.New("mfx(meta): property has no setter")
	// ErrNotAddressable is returned when a property assignment targets a
	// non-addressable bean value.
	ErrNotAddressable = errors.New("mfx(meta): bean value not addressable")
)

// BeanMeta is the introspected property table of one bean type.
//
// Property names are unique: the first registration wins (declared
// fields before accessor-derived properties), deterministically.
type BeanMeta struct {
	typ        reflect.Type
	props      *orderedmap.OrderedMap[string, *PropertyMeta]
	create     func(args map[string]any) (any, error)
	createArgs []string
}

// Type returns the bean's struct type.
func (bm *BeanMeta) Type() reflect.Type { return bm.typ }

// Properties returns the properties in declared/configured order.
func (bm *BeanMeta) Properties() []*PropertyMeta {
	out := make([]*PropertyMeta, 0, bm.props.Len())
	for pair := bm.props.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Property resolves a property by name. Matching is case-sensitive.
func (bm *BeanMeta) Property(name string) (*PropertyMeta, bool) {
	p, ok := bm.props.Get(name)
	return p, ok
}

// Len returns the number of properties.
func (bm *BeanMeta) Len() int { return bm.props.Len() }

// Creator returns the deferred constructor and its argument names for
// constructor-based beans, or (nil, nil) for settable beans.
func (bm *BeanMeta) Creator() (func(args map[string]any) (any, error), []string) {
	return bm.create, bm.createArgs
}

// PropertyMeta is one named, gettable (and usually settable) member of a
// bean.
type PropertyMeta struct {
	name     string
	declared reflect.Type
	meta     *ClassMeta
	index    []int
	getter   string
	setter   string
	swap     apis.Swap
	ignored  bool
}

// Name returns the wire name.
func (p *PropertyMeta) Name() string { return p.name }

// Declared returns the declared Go type (possibly a pointer type).
func (p *PropertyMeta) Declared() reflect.Type { return p.declared }

// Meta returns the resolved metadata of the pointer-normalized declared
// type.
func (p *PropertyMeta) Meta() *ClassMeta { return p.meta }

// Swap returns the property-level swap override, or nil.
func (p *PropertyMeta) Swap() apis.Swap { return p.swap }

// Ignored reports whether the property is excluded from serialization
// and parsing. An ignored name is still "known" to the parser: it is
// skipped without error even in strict mode.
func (p *PropertyMeta) Ignored() bool { return p.ignored }

// Settable reports whether parsing can assign the property.
func (p *PropertyMeta) Settable() bool {
	return len(p.index) > 0 || p.setter != ""
}

// Get fetches the property value from bean, which may be a struct value
// or a pointer to one.
func (p *PropertyMeta) Get(bean reflect.Value) (reflect.Value, error) {
	for bean.Kind() == reflect.Ptr {
		if bean.IsNil() {
			return reflect.Value{}, fmt.Errorf("mfx(meta): nil bean for property %q", p.name)
		}
		bean = bean.Elem()
	}
	if len(p.index) > 0 {
		return bean.FieldByIndex(p.index), nil
	}
	m := bean.MethodByName(p.getter)
	if !m.IsValid() && bean.CanAddr() {
		m = bean.Addr().MethodByName(p.getter)
	}
	if !m.IsValid() {
		return reflect.Value{}, fmt.Errorf("mfx(meta): getter %s not found on %s", p.getter, bean.Type())
	}
	out := m.Call(nil)
	return out[0], nil
}

// Set assigns the property on bean, which must be a non-nil pointer to
// the bean struct.
func (p *PropertyMeta) Set(bean reflect.Value, v reflect.Value) error {
	if bean.Kind() != reflect.Ptr || bean.IsNil() {
		return ErrNotAddressable
	}
	if len(p.index) > 0 {
		f := bean.Elem().FieldByIndex(p.index)
		if !f.CanSet() {
			return fmt.Errorf("%w: field %q on %s", ErrNotAddressable, p.name, bean.Type())
		}
		f.Set(v)
		return nil
	}
	if p.setter == "" {
		return fmt.Errorf("%w: %q on %s", ErrNoSetter, p.name, bean.Type())
	}
	m := bean.MethodByName(p.setter)
	if !m.IsValid() {
		return fmt.Errorf("mfx(meta): setter %s not found on %s", p.setter, bean.Type())
	}
	out := m.Call([]reflect.Value{v})
	if len(out) == 1 && !out[0].IsNil() {
		if err, ok := out[0].Interface().(error); ok {
			return err
		}
	}
	return nil
}

// newBeanMeta assembles a BeanMeta from provider output, resolving each
// property's type metadata through res. Duplicate names collapse to the
// first registration.
func newBeanMeta(t reflect.Type, info apis.BeanInfo, resolve func(reflect.Type) *ClassMeta) *BeanMeta {
	bm := &BeanMeta{
		typ:        t,
		props:      orderedmap.New[string, *PropertyMeta](),
		create:     info.Create,
		createArgs: info.CreateArgs,
	}
	for _, pr := range info.Properties {
		if _, dup := bm.props.Get(pr.Name); dup {
			continue // first wins
		}
		bm.props.Set(pr.Name, &PropertyMeta{
			name:     pr.Name,
			declared: pr.Type,
			meta:     resolve(pr.Type),
			index:    pr.Index,
			getter:   pr.Getter,
			setter:   pr.Setter,
			swap:     pr.Swap,
			ignored:  pr.Ignored,
		})
	}
	return bm
}
