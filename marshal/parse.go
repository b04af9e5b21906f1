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
	"encoding"
	"fmt"
	"io"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"dirpx.dev/mfx/apis"
	"dirpx.dev/mfx/meta"
)

// ParseSession holds the mutable state of one parse call. Not safe for
// concurrent use. A session may be reused sequentially; each Parse call
// resets the per-call state.
type ParseSession struct {
	ctx  *Context
	id   uuid.UUID
	path []string
}

func newParseSession(c *Context) *ParseSession {
	return &ParseSession{ctx: c, id: uuid.New()}
}

// Locale implements apis.Session.
func (s *ParseSession) Locale() string { return s.ctx.store.Locale() }

// Location implements apis.Session.
func (s *ParseSession) Location() *time.Location { return s.ctx.loc }

// ID returns the session's correlation identifier.
func (s *ParseSession) ID() uuid.UUID { return s.id }

// Parse decodes one document from r and binds it into target, which
// must be a non-nil pointer.
func (s *ParseSession) Parse(r io.Reader, target any) error {
	s.path = s.path[:0]
	s.ctx.logger.Debug("mfx parse",
		"session", s.id.String(),
		"codec", s.ctx.codec.Name())

	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return ErrBadTarget
	}

	tree, err := s.ctx.codec.Decode(r, s.ctx.store.CodecOptions())
	if err != nil {
		return &ParseError{Msg: "malformed input", Err: err}
	}

	v, err := s.bind(tree, rv.Type().Elem())
	if err != nil {
		return err
	}
	rv.Elem().Set(v)
	return nil
}

// bind constructs a value of the declared type from a canonical tree
// node. declared may be a pointer type; nil nodes produce zero values.
func (s *ParseSession) bind(node any, declared reflect.Type) (reflect.Value, error) {
	if declared.Kind() == reflect.Ptr {
		if node == nil {
			return reflect.Zero(declared), nil
		}
		inner, err := s.bind(node, declared.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(declared.Elem())
		p.Elem().Set(inner)
		return p, nil
	}

	if declared.Kind() == reflect.Interface {
		return s.bindInterface(node, declared)
	}

	if node == nil {
		return reflect.Zero(declared), nil
	}

	cm := s.ctx.resolver.Resolve(declared)
	switch cm.Kind() {
	case apis.KindSwapped:
		return s.bindSwapped(node, cm.Swap(), declared)
	case apis.KindBean:
		obj, ok := node.(*apis.Object)
		if !ok {
			return reflect.Value{}, s.errorf(declared, "expected object, got %T", node)
		}
		return s.bindBean(obj, cm.Bean())
	case apis.KindMap:
		obj, ok := node.(*apis.Object)
		if !ok {
			return reflect.Value{}, s.errorf(declared, "expected object, got %T", node)
		}
		return s.bindMap(obj, declared)
	case apis.KindCollection, apis.KindArray:
		seq, ok := node.([]any)
		if !ok {
			return reflect.Value{}, s.errorf(declared, "expected array, got %T", node)
		}
		return s.bindSequence(seq, declared)
	case apis.KindString:
		str, ok := node.(string)
		if !ok {
			return reflect.Value{}, s.errorf(declared, "expected string, got %T", node)
		}
		return reflect.ValueOf(str).Convert(declared), nil
	case apis.KindNumber:
		return s.bindNumber(node, declared)
	case apis.KindBool:
		b, ok := node.(bool)
		if !ok {
			return reflect.Value{}, s.errorf(declared, "expected boolean, got %T", node)
		}
		return reflect.ValueOf(b).Convert(declared), nil
	case apis.KindURI:
		str, ok := node.(string)
		if !ok {
			return reflect.Value{}, s.errorf(declared, "expected URI string, got %T", node)
		}
		u, err := url.Parse(str)
		if err != nil {
			return reflect.Value{}, &ParseError{Path: s.pathString(), Type: declared, Msg: "invalid URI", Err: err}
		}
		return reflect.ValueOf(*u), nil
	case apis.KindVoid:
		return reflect.Zero(declared), nil
	default:
		return s.bindOpaque(node, cm, declared)
	}
}

// bindInterface handles interface-typed targets. The empty interface
// receives the canonical node as-is (objects stay key-ordered generic
// maps — the documented concrete default). A non-empty interface has no
// concrete default: the node's dynamic type must already satisfy it.
func (s *ParseSession) bindInterface(node any, declared reflect.Type) (reflect.Value, error) {
	if node == nil {
		return reflect.Zero(declared), nil
	}
	nv := reflect.ValueOf(node)
	if declared.NumMethod() == 0 || nv.Type().Implements(declared) {
		if declared.NumMethod() > 0 || nv.Type().AssignableTo(declared) {
			out := reflect.New(declared).Elem()
			out.Set(nv)
			return out, nil
		}
	}
	return reflect.Value{}, &ParseError{
		Path: s.pathString(),
		Type: declared,
		Msg:  "cannot narrow abstract target: no concrete default",
	}
}

// bindSwapped parses into the swap's surrogate type, then unswaps with
// the declared type as hint. Unswap failures — including unsupported
// hints — surface as parse errors naming the type.
func (s *ParseSession) bindSwapped(node any, sw apis.Swap, declared reflect.Type) (reflect.Value, error) {
	surrogate, err := s.bind(node, sw.Swapped())
	if err != nil {
		return reflect.Value{}, err
	}
	out, err := sw.Unswap(s, surrogate.Interface(), declared)
	if err != nil {
		return reflect.Value{}, &ParseError{Path: s.pathString(), Type: declared, Msg: "unswap failed", Err: err}
	}
	ov := reflect.ValueOf(out)
	if !ov.IsValid() {
		return reflect.Zero(declared), nil
	}
	if ov.Type() != declared {
		if !ov.Type().ConvertibleTo(declared) {
			return reflect.Value{}, s.errorf(declared, "unswap produced %s", ov.Type())
		}
		ov = ov.Convert(declared)
	}
	return ov, nil
}

func (s *ParseSession) bindBean(obj *apis.Object, bm *meta.BeanMeta) (reflect.Value, error) {
	create, createArgs := bm.Creator()
	if create != nil {
		return s.bindCreatorBean(obj, bm, create, createArgs)
	}

	pv := reflect.New(bm.Type())
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		p, err := s.lookupProperty(bm, pair.Key)
		if err != nil {
			return reflect.Value{}, err
		}
		if p == nil {
			continue
		}
		s.path = append(s.path, pair.Key)
		fv, err := s.bindProperty(pair.Value, p)
		if err == nil {
			err = s.assign(pv, p, fv)
		}
		s.path = s.path[:len(s.path)-1]
		if err != nil {
			return reflect.Value{}, err
		}
	}
	return pv.Elem(), nil
}

// bindCreatorBean buffers incoming properties and invokes the bean's
// creator once, matching buffered values to declared argument names.
// Properties outside the creator's argument list are assigned afterwards.
func (s *ParseSession) bindCreatorBean(obj *apis.Object, bm *meta.BeanMeta,
	create func(map[string]any) (any, error), createArgs []string,
) (reflect.Value, error) {
	argSet := make(map[string]struct{}, len(createArgs))
	for _, a := range createArgs {
		argSet[a] = struct{}{}
	}

	args := make(map[string]any, len(createArgs))
	type deferred struct {
		p *meta.PropertyMeta
		v reflect.Value
	}
	var rest []deferred

	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		p, err := s.lookupProperty(bm, pair.Key)
		if err != nil {
			return reflect.Value{}, err
		}
		if p == nil {
			continue
		}
		s.path = append(s.path, pair.Key)
		fv, err := s.bindProperty(pair.Value, p)
		s.path = s.path[:len(s.path)-1]
		if err != nil {
			return reflect.Value{}, err
		}
		if _, isArg := argSet[p.Name()]; isArg {
			args[p.Name()] = fv.Interface()
		} else {
			rest = append(rest, deferred{p: p, v: fv})
		}
	}

	bean, err := create(args)
	if err != nil {
		return reflect.Value{}, &InvokeError{Op: "creator", Type: bm.Type(), Err: err}
	}
	rv := reflect.ValueOf(bean)
	if rv.Kind() != reflect.Ptr {
		prv := reflect.New(bm.Type())
		if rv.Type() != bm.Type() {
			if !rv.Type().ConvertibleTo(bm.Type()) {
				return reflect.Value{}, s.errorf(bm.Type(), "creator produced %s", rv.Type())
			}
			rv = rv.Convert(bm.Type())
		}
		prv.Elem().Set(rv)
		rv = prv
	}
	for _, d := range rest {
		if err := s.assign(rv, d.p, d.v); err != nil {
			return reflect.Value{}, err
		}
	}
	return rv.Elem(), nil
}

// lookupProperty resolves an incoming key against the bean. Unknown keys
// return (nil, nil) in lenient mode and an error in strict mode; ignored
// and read-only properties are known names that bind to nothing.
func (s *ParseSession) lookupProperty(bm *meta.BeanMeta, key string) (*meta.PropertyMeta, error) {
	p, ok := bm.Property(key)
	if !ok {
		if s.ctx.store.StrictProperties() {
			return nil, &ParseError{
				Path: s.pathString(),
				Key:  key,
				Type: bm.Type(),
				Msg:  "unknown property",
			}
		}
		return nil, nil
	}
	if p.Ignored() || !p.Settable() {
		return nil, nil
	}
	return p, nil
}

// bindProperty builds the property value, applying a property-level
// swap override before the type-level classification.
func (s *ParseSession) bindProperty(node any, p *meta.PropertyMeta) (reflect.Value, error) {
	if sw := p.Swap(); sw != nil && node != nil {
		base := meta.Indirect(p.Declared())
		surrogate, err := s.bind(node, sw.Swapped())
		if err != nil {
			return reflect.Value{}, err
		}
		out, err := sw.Unswap(s, surrogate.Interface(), base)
		if err != nil {
			return reflect.Value{}, &ParseError{Path: s.pathString(), Type: base, Msg: "unswap failed", Err: err}
		}
		ov := reflect.ValueOf(out)
		if !ov.IsValid() {
			return reflect.Zero(p.Declared()), nil
		}
		if ov.Type() != base {
			if !ov.Type().ConvertibleTo(base) {
				return reflect.Value{}, s.errorf(base, "unswap produced %s", ov.Type())
			}
			ov = ov.Convert(base)
		}
		if p.Declared().Kind() == reflect.Ptr {
			pp := reflect.New(base)
			pp.Elem().Set(ov)
			return pp, nil
		}
		return ov, nil
	}
	return s.bind(node, p.Declared())
}

// assign writes a bound value through the property, translating
// accessor failures into the error taxonomy.
func (s *ParseSession) assign(beanPtr reflect.Value, p *meta.PropertyMeta, v reflect.Value) error {
	if err := p.Set(beanPtr, v); err != nil {
		return &InvokeError{Op: "setter", Type: beanPtr.Type().Elem(), Err: err}
	}
	return nil
}

func (s *ParseSession) bindMap(obj *apis.Object, declared reflect.Type) (reflect.Value, error) {
	mv := reflect.MakeMapWithSize(declared, obj.Len())
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		kv, err := s.bindKey(pair.Key, declared.Key())
		if err != nil {
			return reflect.Value{}, err
		}
		s.path = append(s.path, pair.Key)
		vv, err := s.bind(pair.Value, declared.Elem())
		s.path = s.path[:len(s.path)-1]
		if err != nil {
			return reflect.Value{}, err
		}
		mv.SetMapIndex(kv, vv)
	}
	return mv, nil
}

// bindKey reverses wire key stringification for the declared key type.
func (s *ParseSession) bindKey(key string, kt reflect.Type) (reflect.Value, error) {
	switch kt.Kind() {
	case reflect.String:
		return reflect.ValueOf(key).Convert(kt), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return reflect.Value{}, &ParseError{Path: s.pathString(), Key: key, Type: kt, Msg: "invalid numeric key", Err: err}
		}
		return reflect.ValueOf(n).Convert(kt), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return reflect.Value{}, &ParseError{Path: s.pathString(), Key: key, Type: kt, Msg: "invalid numeric key", Err: err}
		}
		return reflect.ValueOf(n).Convert(kt), nil
	case reflect.Bool:
		b, err := strconv.ParseBool(key)
		if err != nil {
			return reflect.Value{}, &ParseError{Path: s.pathString(), Key: key, Type: kt, Msg: "invalid boolean key", Err: err}
		}
		return reflect.ValueOf(b), nil
	}
	if reflect.PtrTo(kt).Implements(textUnmarshalerType) {
		kp := reflect.New(kt)
		if err := kp.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(key)); err != nil {
			return reflect.Value{}, &ParseError{Path: s.pathString(), Key: key, Type: kt, Msg: "invalid key", Err: err}
		}
		return kp.Elem(), nil
	}
	return reflect.Value{}, s.errorf(kt, "unsupported map key type")
}

func (s *ParseSession) bindSequence(seq []any, declared reflect.Type) (reflect.Value, error) {
	var out reflect.Value
	switch declared.Kind() {
	case reflect.Slice:
		out = reflect.MakeSlice(declared, len(seq), len(seq))
	case reflect.Array:
		if len(seq) > declared.Len() {
			return reflect.Value{}, s.errorf(declared, "array overflow: %d elements into %d", len(seq), declared.Len())
		}
		out = reflect.New(declared).Elem()
	default:
		return reflect.Value{}, s.errorf(declared, "not a sequence type")
	}
	for i, elem := range seq {
		s.path = append(s.path, "["+strconv.Itoa(i)+"]")
		ev, err := s.bind(elem, declared.Elem())
		s.path = s.path[:len(s.path)-1]
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

func (s *ParseSession) bindNumber(node any, declared reflect.Type) (reflect.Value, error) {
	out := reflect.New(declared).Elem()
	switch declared.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := asInt64(node)
		if err != nil {
			return reflect.Value{}, &ParseError{Path: s.pathString(), Type: declared, Msg: "expected integer", Err: err}
		}
		if out.OverflowInt(n) {
			return reflect.Value{}, s.errorf(declared, "integer overflow: %d", n)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := asUint64(node)
		if err != nil {
			return reflect.Value{}, &ParseError{Path: s.pathString(), Type: declared, Msg: "expected unsigned integer", Err: err}
		}
		if out.OverflowUint(n) {
			return reflect.Value{}, s.errorf(declared, "integer overflow: %d", n)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := asFloat64(node)
		if err != nil {
			return reflect.Value{}, &ParseError{Path: s.pathString(), Type: declared, Msg: "expected number", Err: err}
		}
		out.SetFloat(f)
	default:
		return reflect.Value{}, s.errorf(declared, "not a numeric type")
	}
	return out, nil
}

// bindOpaque reconstructs an opaque (KindObject) value: from its string
// form when the type has a text constructor, otherwise only when the
// node already is the right dynamic type.
func (s *ParseSession) bindOpaque(node any, cm *meta.ClassMeta, declared reflect.Type) (reflect.Value, error) {
	if str, ok := node.(string); ok && cm.HasTextConstructor() {
		pv := reflect.New(declared)
		if err := pv.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(str)); err != nil {
			return reflect.Value{}, &ParseError{Path: s.pathString(), Type: declared, Msg: "text constructor failed", Err: err}
		}
		return pv.Elem(), nil
	}
	nv := reflect.ValueOf(node)
	if nv.IsValid() && nv.Type().AssignableTo(declared) {
		return nv, nil
	}
	return reflect.Value{}, s.errorf(declared, "cannot construct opaque value from %T", node)
}

func (s *ParseSession) errorf(t reflect.Type, format string, args ...any) error {
	return &ParseError{
		Path: s.pathString(),
		Type: t,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (s *ParseSession) pathString() string {
	if len(s.path) == 0 {
		return "<root>"
	}
	return strings.Join(s.path, ".")
}

func asInt64(node any) (int64, error) {
	switch n := node.(type) {
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("unsigned value %d overflows int64", n)
		}
		return int64(n), nil
	case float64:
		if math.Trunc(n) != n {
			return 0, fmt.Errorf("fractional value %v", n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("got %T", node)
	}
}

func asUint64(node any) (uint64, error) {
	switch n := node.(type) {
	case uint64:
		return n, nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return uint64(n), nil
	case float64:
		if math.Trunc(n) != n || n < 0 {
			return 0, fmt.Errorf("invalid value %v", n)
		}
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("got %T", node)
	}
}

func asFloat64(node any) (float64, error) {
	switch n := node.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("got %T", node)
	}
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
