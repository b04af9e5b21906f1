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

// Package swaps ships the standard transform library: bidirectional
// swaps between common Go types and their wire-representable surrogates.
package swaps

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"time"

	"dirpx.dev/mfx/apis"
)

// Time swaps time.Time with its RFC 3339 string form, rendered in the
// session's time zone.
type Time struct{}

var _ apis.Swap = Time{}

func (Time) Type() reflect.Type    { return reflect.TypeOf(time.Time{}) }
func (Time) Swapped() reflect.Type { return reflect.TypeOf("") }

func (Time) Swap(s apis.Session, v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, fmt.Errorf("swaps: expected time.Time, got %T", v)
	}
	return t.In(s.Location()).Format(time.RFC3339Nano), nil
}

func (Time) Unswap(s apis.Session, v any, hint reflect.Type) (any, error) {
	str, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("swaps: expected string surrogate for time.Time, got %T", v)
	}
	t, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return nil, fmt.Errorf("swaps: %q is not an RFC 3339 timestamp: %w", str, err)
	}
	if hint == nil || hint == reflect.TypeOf(time.Time{}) {
		return t, nil
	}
	if reflect.TypeOf(t).ConvertibleTo(hint) {
		return reflect.ValueOf(t).Convert(hint).Interface(), nil
	}
	return nil, fmt.Errorf("swaps: unsupported unswap hint %s for time.Time", hint)
}

// Duration swaps time.Duration with its string form ("1h30m").
type Duration struct{}

var _ apis.Swap = Duration{}

func (Duration) Type() reflect.Type    { return reflect.TypeOf(time.Duration(0)) }
func (Duration) Swapped() reflect.Type { return reflect.TypeOf("") }

func (Duration) Swap(_ apis.Session, v any) (any, error) {
	d, ok := v.(time.Duration)
	if !ok {
		return nil, fmt.Errorf("swaps: expected time.Duration, got %T", v)
	}
	return d.String(), nil
}

func (Duration) Unswap(_ apis.Session, v any, hint reflect.Type) (any, error) {
	str, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("swaps: expected string surrogate for time.Duration, got %T", v)
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return nil, fmt.Errorf("swaps: %q is not a duration: %w", str, err)
	}
	if hint == nil || hint == reflect.TypeOf(time.Duration(0)) {
		return d, nil
	}
	if reflect.TypeOf(d).ConvertibleTo(hint) {
		return reflect.ValueOf(d).Convert(hint).Interface(), nil
	}
	return nil, fmt.Errorf("swaps: unsupported unswap hint %s for time.Duration", hint)
}

// Base64 swaps []byte with its standard base64 string form.
type Base64 struct{}

var _ apis.Swap = Base64{}

func (Base64) Type() reflect.Type    { return reflect.TypeOf([]byte(nil)) }
func (Base64) Swapped() reflect.Type { return reflect.TypeOf("") }

func (Base64) Swap(_ apis.Session, v any) (any, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("swaps: expected []byte, got %T", v)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func (Base64) Unswap(_ apis.Session, v any, hint reflect.Type) (any, error) {
	str, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("swaps: expected string surrogate for []byte, got %T", v)
	}
	b, err := base64.StdEncoding.DecodeString(str)
	if err != nil {
		return nil, fmt.Errorf("swaps: invalid base64: %w", err)
	}
	if hint == nil || hint == reflect.TypeOf([]byte(nil)) {
		return b, nil
	}
	if reflect.TypeOf(b).ConvertibleTo(hint) {
		return reflect.ValueOf(b).Convert(hint).Interface(), nil
	}
	return nil, fmt.Errorf("swaps: unsupported unswap hint %s for []byte", hint)
}
