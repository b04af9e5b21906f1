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

package marshal

import (
	"fmt"
	"io"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"dirpx.dev/mfx/apis"
	"dirpx.dev/mfx/meta"
)

// SerializeSession holds the mutable state of one serialize call: the
// active-reference stack for cycle detection, the depth guard, and the
// current property path. Not safe for concurrent use. A session may be
// reused sequentially; each Serialize call resets the per-call state.
type SerializeSession struct {
	ctx *Context
	id  uuid.UUID

	stack []uintptr
	seen  map[uintptr]struct{}
	depth int
	path  []string
}

func newSerializeSession(c *Context) *SerializeSession {
	return &SerializeSession{
		ctx:  c,
		id:   uuid.New(),
		seen: make(map[uintptr]struct{}),
	}
}

// Locale implements apis.Session.
func (s *SerializeSession) Locale() string { return s.ctx.store.Locale() }

// Location implements apis.Session.
func (s *SerializeSession) Location() *time.Location { return s.ctx.loc }

// ID returns the session's correlation identifier.
func (s *SerializeSession) ID() uuid.UUID { return s.id }

// Serialize walks v and renders the resulting canonical tree through the
// context's codec.
func (s *SerializeSession) Serialize(w io.Writer, v any) error {
	tree, err := s.Walk(v)
	if err != nil {
		return err
	}
	return s.ctx.codec.Encode(w, tree, s.ctx.store.CodecOptions())
}

// Walk reduces v to the canonical tree without encoding it. Exposed for
// codecs and tests that operate on the tree directly.
func (s *SerializeSession) Walk(v any) (any, error) {
	s.reset()
	s.ctx.logger.Debug("mfx serialize",
		"session", s.id.String(),
		"codec", s.ctx.codec.Name())
	return s.walkValue(reflect.ValueOf(v))
}

func (s *SerializeSession) reset() {
	s.stack = s.stack[:0]
	clear(s.seen)
	s.depth = 0
	s.path = s.path[:0]
}

func (s *SerializeSession) walkValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	// Nil maps and slices render as null, not as empty containers.
	if (v.Kind() == reflect.Map || v.Kind() == reflect.Slice) && v.IsNil() {
		return nil, nil
	}

	cm := s.ctx.resolver.Resolve(v.Type())
	switch cm.Kind() {
	case apis.KindSwapped:
		return s.walkSwapped(cm.Swap(), v)
	case apis.KindBean:
		return s.descend(v, func() (any, error) { return s.walkBean(cm.Bean(), v) })
	case apis.KindMap:
		return s.descend(v, func() (any, error) { return s.walkMap(v) })
	case apis.KindCollection, apis.KindArray:
		return s.descend(v, func() (any, error) { return s.walkSequence(v) })
	case apis.KindString:
		return v.String(), nil
	case apis.KindNumber:
		return numberOf(v), nil
	case apis.KindBool:
		return v.Bool(), nil
	case apis.KindURI:
		u := v.Interface().(url.URL)
		return u.String(), nil
	case apis.KindVoid:
		return nil, nil
	default:
		return s.opaque(cm, v), nil
	}
}

// walkSwapped replaces the value with its surrogate and recurses on the
// surrogate's classification. Cycle bookkeeping happens on the surrogate.
func (s *SerializeSession) walkSwapped(sw apis.Swap, v reflect.Value) (any, error) {
	out, err := sw.Swap(s, v.Interface())
	if err != nil {
		return nil, &InvokeError{Op: "swap", Type: v.Type(), Err: err}
	}
	return s.walkValue(reflect.ValueOf(out))
}

// descend runs fn with cycle and depth accounting around a container
// value. The identity is released on exit even when fn fails.
func (s *SerializeSession) descend(v reflect.Value, fn func() (any, error)) (any, error) {
	if s.depth+1 > s.ctx.store.MaxDepth() {
		return nil, &RecursionError{Path: s.pathString(), Depth: s.ctx.store.MaxDepth()}
	}

	id, tracked := identityOf(v)
	if tracked {
		if _, active := s.seen[id]; active {
			if s.ctx.store.IgnoreRecursions() {
				// Lenient mode: decodable null marker, no descent.
				return nil, nil
			}
			return nil, &RecursionError{Path: s.pathString(), Type: v.Type()}
		}
		s.seen[id] = struct{}{}
		s.stack = append(s.stack, id)
		defer func() {
			s.stack = s.stack[:len(s.stack)-1]
			delete(s.seen, id)
		}()
	}

	s.depth++
	defer func() { s.depth-- }()
	return fn()
}

func (s *SerializeSession) walkBean(bm *meta.BeanMeta, v reflect.Value) (any, error) {
	obj := apis.NewObject()
	for _, p := range bm.Properties() {
		if p.Ignored() {
			continue
		}
		s.path = append(s.path, p.Name())

		pv, err := p.Get(v)
		if err != nil {
			s.path = s.path[:len(s.path)-1]
			return nil, &InvokeError{Op: "getter", Type: v.Type(), Err: err}
		}

		var child any
		if sw := p.Swap(); sw != nil && !isNilValue(pv) {
			// Property-level swap overrides the type-level lookup.
			base := pv
			for base.Kind() == reflect.Interface || base.Kind() == reflect.Ptr {
				base = base.Elem()
			}
			child, err = s.walkSwapped(sw, base)
		} else {
			child, err = s.walkValue(pv)
		}
		s.path = s.path[:len(s.path)-1]
		if err != nil {
			return nil, err
		}

		if child == nil && s.ctx.store.TrimNulls() {
			continue
		}
		obj.Set(p.Name(), child)
	}
	return obj, nil
}

func (s *SerializeSession) walkMap(v reflect.Value) (any, error) {
	type entry struct {
		key   string
		value reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := s.stringifyKey(iter.Key())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{key: k, value: iter.Value()})
	}
	// Go maps have no defined order; sort when requested, otherwise the
	// iteration order is passed through as-is.
	if s.ctx.store.SortMaps() {
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	}

	obj := apis.NewObject()
	for _, e := range entries {
		s.path = append(s.path, e.key)
		child, err := s.walkValue(e.value)
		s.path = s.path[:len(s.path)-1]
		if err != nil {
			return nil, err
		}
		obj.Set(e.key, child)
	}
	return obj, nil
}

func (s *SerializeSession) walkSequence(v reflect.Value) (any, error) {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		s.path = append(s.path, "["+strconv.Itoa(i)+"]")
		child, err := s.walkValue(v.Index(i))
		s.path = s.path[:len(s.path)-1]
		if err != nil {
			return nil, err
		}
		out[i] = child
	}
	return out, nil
}

// stringifyKey renders a map key through the scalar kind rules: keys are
// always strings on the wire regardless of the source key type.
func (s *SerializeSession) stringifyKey(k reflect.Value) (string, error) {
	node, err := s.walkValue(k)
	if err != nil {
		return "", err
	}
	switch n := node.(type) {
	case string:
		return n, nil
	case nil:
		return "", nil
	case bool:
		return strconv.FormatBool(n), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case uint64:
		return strconv.FormatUint(n, 10), nil
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), nil
	default:
		return fmt.Sprint(n), nil
	}
}

// opaque renders a value of KindObject via its string form.
func (s *SerializeSession) opaque(cm *meta.ClassMeta, v reflect.Value) any {
	if cm.HasStringer() {
		if str, ok := v.Interface().(fmt.Stringer); ok {
			return str.String()
		}
		if v.CanAddr() {
			if str, ok := v.Addr().Interface().(fmt.Stringer); ok {
				return str.String()
			}
		}
		// Pointer-receiver Stringer on a non-addressable value: copy.
		pv := reflect.New(v.Type())
		pv.Elem().Set(v)
		if str, ok := pv.Interface().(fmt.Stringer); ok {
			return str.String()
		}
	}
	return fmt.Sprintf("%v", v.Interface())
}

func (s *SerializeSession) pathString() string {
	if len(s.path) == 0 {
		return "<root>"
	}
	return strings.Join(s.path, ".")
}

// identityOf returns a stable identity for container values that can
// participate in cycles. Non-addressable values cannot recur.
func identityOf(v reflect.Value) (uintptr, bool) {
	switch v.Kind() {
	case reflect.Map, reflect.Slice:
		if v.IsNil() {
			return 0, false
		}
		return v.Pointer(), true
	case reflect.Struct, reflect.Array:
		if v.CanAddr() {
			return v.Addr().Pointer(), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func numberOf(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	default:
		return v.Float()
	}
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
