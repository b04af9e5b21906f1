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

package store

import "sync"

// Interner is the hash-consing table that enforces the load-bearing
// invariant of this package: two stores with identical content resolve to
// the same instance.
//
// The table is an explicit, injectable object with a defined lifecycle:
// the process-wide DefaultInterner lives for the process, and tests may
// create private interners (or Reset the default) for deterministic
// state. Insertion uses atomic compare-and-insert, so concurrent builds
// of equal content produce a single winner; the insert path never blocks
// unrelated serialize/parse calls.
type Interner struct {
	// mu guards write-side consistency and the counter.
	mu sync.Mutex
	// m maps fingerprint to the canonical *Store.
	m sync.Map // map[string]*Store
	// count tracks the number of interned stores.
	count int
}

// NewInterner constructs an empty intern table.
func NewInterner() *Interner {
	return &Interner{}
}

// defaultInterner is the process-wide intern table.
var defaultInterner = NewInterner()

// DefaultInterner returns the process-wide intern table.
func DefaultInterner() *Interner {
	return defaultInterner
}

// Intern returns the canonical instance for s's content: s itself when
// its fingerprint is new, or the previously interned equal store. Safe
// for concurrent use; on a race exactly one instance wins.
func (in *Interner) Intern(s *Store) *Store {
	// Fast read path.
	if v, ok := in.m.Load(s.fp); ok {
		return v.(*Store)
	}
	actual, loaded := in.m.LoadOrStore(s.fp, s)
	if !loaded {
		in.mu.Lock()
		in.count++
		in.mu.Unlock()
	}
	return actual.(*Store)
}

// Lookup returns the interned store for a fingerprint, if any.
func (in *Interner) Lookup(fingerprint string) (*Store, bool) {
	v, ok := in.m.Load(fingerprint)
	if !ok {
		return nil, false
	}
	return v.(*Store), true
}

// Len returns the number of interned stores.
func (in *Interner) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.count
}

// Reset clears the table. Existing stores stay valid; subsequent builds
// of equal content produce fresh instances. Intended for tests.
func (in *Interner) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.m = sync.Map{}
	in.count = 0
}
