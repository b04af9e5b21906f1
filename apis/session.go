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

import "time"

// Session is the read-only view of per-call state exposed to swaps.
//
// # Overview
//
// A serialize or parse session owns mutable per-call state (recursion
// stack, output sink). Swaps must stay pure with respect to that state,
// so they only ever see this narrow read-only surface: the environment
// knobs a transform may legitimately consult.
//
// # Contract
//
//   - Implementations must be safe for repeated calls during one
//     serialize/parse invocation.
//   - Swaps must not retain the Session beyond the call that handed
//     it to them.
type Session interface {
	// Locale returns the session's BCP 47 locale tag, or "" when unset.
	Locale() string

	// Location returns the session's time zone. Never nil; defaults
	// to time.UTC.
	Location() *time.Location
}
