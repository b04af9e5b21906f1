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
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrBadTarget is returned when a parse target is not a non-nil
	// pointer.
	ErrBadTarget = errors.New("mfx(marshal): parse target must be a non-nil pointer")
)

// ParseError reports malformed input, an unknown property in strict
// mode, unresolved type narrowing, or an unsupported unswap hint. It
// always carries the offending path, and the key or type when known.
// Parse errors are surfaced to the caller, never swallowed.
type ParseError struct {
	// Path locates the failure inside the document ("a.b[2].c").
	Path string
	// Key is the offending object key, if the failure is key-related.
	Key string
	// Type is the target type that could not be satisfied, if any.
	Type reflect.Type
	// Msg describes the failure.
	Msg string
	// Err is the underlying cause, if any.
	Err error
}

func (e *ParseError) Error() string {
	s := "mfx(marshal): parse"
	if e.Path != "" {
		s += " at " + e.Path
	}
	if e.Key != "" {
		s += fmt.Sprintf(" key %q", e.Key)
	}
	if e.Type != nil {
		s += " into " + e.Type.String()
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ParseError) Unwrap() error { return e.Err }

// RecursionError reports a cyclic reference (or exceeded depth bound)
// during serialization with strict recursion handling. The serialize
// call is abandoned; no partial-output recovery is guaranteed.
type RecursionError struct {
	// Path is the property path at which the cycle closed.
	Path string
	// Type is the type of the revisited object.
	Type reflect.Type
	// Depth is non-zero when the failure is the max-depth guard rather
	// than an actual cycle.
	Depth int
}

func (e *RecursionError) Error() string {
	if e.Depth > 0 {
		return fmt.Sprintf("mfx(marshal): max depth %d exceeded at %s", e.Depth, e.Path)
	}
	return fmt.Sprintf("mfx(marshal): recursion detected at %s on %s", e.Path, e.Type)
}

// InvokeError reports a failure inside user-supplied code: a swap, a
// bean accessor, or a bean creator. It wraps the underlying cause.
type InvokeError struct {
	// Op names the invoked operation ("swap", "unswap", "creator",
	// "getter", "setter").
	Op string
	// Type is the type whose code was invoked.
	Type reflect.Type
	// Err is the underlying failure.
	Err error
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("mfx(marshal): %s on %s failed: %v", e.Op, e.Type, e.Err)
}

func (e *InvokeError) Unwrap() error { return e.Err }
