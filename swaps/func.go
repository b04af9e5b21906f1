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

package swaps

import (
	"fmt"
	"reflect"

	"dirpx.dev/mfx/apis"
)

// Func builds an ad-hoc swap from a pair of functions.
//
// name identifies the swap in store fingerprints: two functional swaps
// over the same type pair but with different names produce different
// store content. The swap direction converts N (normal) to S (surrogate)
// and back.
func Func[N, S any](name string,
	swap func(apis.Session, N) (S, error),
	unswap func(apis.Session, S) (N, error),
) apis.Swap {
	return &funcSwap[N, S]{name: name, swap: swap, unswap: unswap}
}

type funcSwap[N, S any] struct {
	name   string
	swap   func(apis.Session, N) (S, error)
	unswap func(apis.Session, S) (N, error)
}

func (f *funcSwap[N, S]) Type() reflect.Type {
	return reflect.TypeOf((*N)(nil)).Elem()
}

func (f *funcSwap[N, S]) Swapped() reflect.Type {
	return reflect.TypeOf((*S)(nil)).Elem()
}

// String contributes the swap's name to store fingerprints.
func (f *funcSwap[N, S]) String() string { return f.name }

func (f *funcSwap[N, S]) Swap(s apis.Session, v any) (any, error) {
	n, err := as[N](v)
	if err != nil {
		return nil, fmt.Errorf("swaps(%s): %w", f.name, err)
	}
	return f.swap(s, n)
}

func (f *funcSwap[N, S]) Unswap(s apis.Session, v any, hint reflect.Type) (any, error) {
	sv, err := as[S](v)
	if err != nil {
		return nil, fmt.Errorf("swaps(%s): %w", f.name, err)
	}
	n, err := f.unswap(s, sv)
	if err != nil {
		return nil, err
	}
	nt := reflect.TypeOf((*N)(nil)).Elem()
	if hint == nil || hint == nt {
		return n, nil
	}
	if nt.ConvertibleTo(hint) {
		return reflect.ValueOf(n).Convert(hint).Interface(), nil
	}
	return nil, fmt.Errorf("swaps(%s): unsupported unswap hint %s", f.name, hint)
}

// as converts a dynamically typed value to T, falling back to a
// reflect conversion for assignable named types.
func as[T any](v any) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}
	var zero T
	tt := reflect.TypeOf((*T)(nil)).Elem()
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Type().ConvertibleTo(tt) {
		return rv.Convert(tt).Interface().(T), nil
	}
	return zero, fmt.Errorf("cannot convert %T to %s", v, tt)
}
