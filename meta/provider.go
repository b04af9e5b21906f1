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
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"dirpx.dev/mfx/apis"
	"dirpx.dev/mfx/store"
)

// TagName is the struct tag consulted by the default provider.
//
// Supported forms:
//
//	Field T `bean:"name"` // wire name override
//	Field T `bean:"-"`    // ignored property
//
// Without a tag, the wire name is the field name with its first rune
// lowered ("F1" -> "f1").
const TagName = "bean"

// Provider is the default MetaProvider: it derives bean metadata from
// struct fields, struct tags, and (under VisibilityDefault) Get*/Set*
// accessor method pairs.
//
// Creators for immutable, constructor-based beans are declared through
// RegisterCreator. Registration must happen before the provider is first
// consulted for the type; results are cached by the owning resolver.
type Provider struct {
	// Visibility selects the member surface to introspect.
	Visibility store.Visibility

	mu       sync.RWMutex
	creators map[reflect.Type]creator
}

type creator struct {
	fn   func(args map[string]any) (any, error)
	args []string
}

// Ensure Provider implements apis.MetaProvider.
var _ apis.MetaProvider = (*Provider)(nil)

// NewProvider returns a provider honoring the given visibility rule.
func NewProvider(v store.Visibility) *Provider {
	return &Provider{Visibility: v}
}

// RegisterCreator declares t as a constructor-based bean: during parsing
// its properties are buffered and fn is invoked once with the values
// named by args. Properties outside args are assigned afterwards through
// their field or setter.
func (p *Provider) RegisterCreator(t reflect.Type, args []string, fn func(map[string]any) (any, error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.creators == nil {
		p.creators = make(map[reflect.Type]creator)
	}
	p.creators[Indirect(t)] = creator{fn: fn, args: args}
}

// BeanInfoOf introspects t. ok is false for non-struct types.
func (p *Provider) BeanInfoOf(t reflect.Type) (apis.BeanInfo, bool, error) {
	t = Indirect(t)
	if t == nil || t.Kind() != reflect.Struct {
		return apis.BeanInfo{}, false, nil
	}

	var info apis.BeanInfo
	seen := map[string]struct{}{}
	info.Properties = collectFields(t, nil, seen, nil)

	if p.Visibility == store.VisibilityDefault {
		info.Properties = append(info.Properties, accessorProperties(t, seen)...)
	}

	p.mu.RLock()
	c, hasCreator := p.creators[t]
	p.mu.RUnlock()
	if hasCreator {
		info.Create = c.fn
		info.CreateArgs = c.args
	}
	return info, true, nil
}

// collectFields walks exported fields in declaration order, flattening
// anonymous embedded structs.
func collectFields(t reflect.Type, index []int, seen map[string]struct{}, out []apis.Property) []apis.Property {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		idx := append(append([]int(nil), index...), i)
		tag, hasTag := f.Tag.Lookup(TagName)

		// Embedded value structs flatten into the parent property list.
		// Embedded pointers stay regular properties: traversing a nil
		// embedded pointer via FieldByIndex would panic.
		if f.Anonymous && !hasTag && f.Type.Kind() == reflect.Struct {
			out = collectFields(f.Type, idx, seen, out)
			continue
		}

		name := lowerFirst(f.Name)
		ignored := false
		if hasTag {
			switch v := strings.Split(tag, ",")[0]; v {
			case "-":
				ignored = true
			case "":
			default:
				name = v
			}
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, apis.Property{
			Name:    name,
			Index:   idx,
			Type:    f.Type,
			Ignored: ignored,
		})
	}
	return out
}

// accessorProperties discovers Get*/Set* method pairs on *t that do not
// shadow an existing field-backed property. Results are sorted by name
// for determinism.
func accessorProperties(t reflect.Type, seen map[string]struct{}) []apis.Property {
	pt := reflect.PtrTo(t)
	var props []apis.Property
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		rest, ok := strings.CutPrefix(m.Name, "Get")
		if !ok || rest == "" {
			continue
		}
		// Getter: no args beyond receiver, exactly one result.
		if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
			continue
		}
		propType := m.Type.Out(0)

		setterName := "Set" + rest
		sm, hasSetter := pt.MethodByName(setterName)
		if !hasSetter {
			continue
		}
		// Setter: one arg of the property type, zero results or an error.
		if sm.Type.NumIn() != 2 || sm.Type.In(1) != propType {
			continue
		}
		if n := sm.Type.NumOut(); n > 1 || (n == 1 && sm.Type.Out(0) != errorType) {
			continue
		}

		name := lowerFirst(rest)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		props = append(props, apis.Property{
			Name:   name,
			Getter: m.Name,
			Setter: setterName,
			Type:   propType,
		})
	}
	sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })
	return props
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// lowerFirst lowers the first rune: "F1" -> "f1", "URL" -> "uRL".
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
