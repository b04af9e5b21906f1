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

// Swap is a bidirectional transform between a normal type and a
// wire-representable surrogate type.
//
// # Overview
//
// Types that cannot (or should not) be walked structurally are "swapped":
// before serialization the value is replaced by its surrogate, and after
// parsing the surrogate is converted back. The classic example is
// time.Time ⇄ RFC 3339 string.
//
// A swap participates in classification: a type with a matching Swap
// resolves to KindSwapped, and the walk recurses on the surrogate's
// classification. Cycle bookkeeping during serialization uses the
// surrogate, not the original.
//
// # Dispatch
//
// Exactly one swap is effective for a given (property, type) pair.
// Precedence, most specific first:
//
//  1. Property-level swap declared by the bean's metadata provider.
//  2. Store swap whose Type() equals the runtime type exactly.
//  3. Store swap whose Type() the runtime type is assignable to
//     (interfaces, embedded types); nearest match wins.
//
// # Contract
//
//   - Swap must be pure with respect to session state: it may read the
//     Session (locale, time zone) but must not mutate cross-call state.
//   - Unswap receives an optional hint — the declared static type at the
//     parse site — to disambiguate when the surrogate is narrower than
//     the source. An unrecognized hint must be reported as an error
//     naming the hint type, never silently defaulted.
//   - Implementations must be safe for concurrent use; one Swap instance
//     serves all sessions of every context that registered it.
type Swap interface {
	// Type returns the normal (source) type this swap applies to.
	Type() reflect.Type

	// Swapped returns the surrogate type produced by Swap.
	Swapped() reflect.Type

	// Swap converts a normal value into its surrogate.
	Swap(s Session, v any) (any, error)

	// Unswap converts a surrogate back into a normal value. hint is the
	// declared target type, or nil when the target is untyped.
	Unswap(s Session, v any, hint reflect.Type) (any, error)
}
