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

import (
	"runtime"
	"sync"
	"testing"
)

// Concurrent builds of identical content must converge on one instance.
func TestInternConcurrentSingleWinner(t *testing.T) {
	in := NewInterner()

	workers := runtime.GOMAXPROCS(0) * 4
	if workers < 8 {
		workers = 8
	}

	var (
		start sync.WaitGroup
		done  sync.WaitGroup
		gate  = make(chan struct{})
	)
	results := make([]*Store, workers)

	start.Add(workers)
	done.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer done.Done()
			start.Done()
			<-gate

			b := NewBuilder()
			b.Interner = in
			b.SortMaps = true
			b.AddNotBeanPackages("net/http")
			results[n] = b.MustBuild()
		}(i)
	}
	start.Wait()
	close(gate)
	done.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("worker %d got a distinct store instance", i)
		}
	}
	if in.Len() != 1 {
		t.Fatalf("interner holds %d stores, want 1", in.Len())
	}
}

func TestLookup(t *testing.T) {
	in := NewInterner()
	b := NewBuilder()
	b.Interner = in
	s := b.MustBuild()

	got, ok := in.Lookup(s.Fingerprint())
	if !ok || got != s {
		t.Fatalf("Lookup(%q) = %v, %t", s.Fingerprint(), got, ok)
	}
	if _, ok := in.Lookup("nonsense"); ok {
		t.Fatal("Lookup matched an unknown fingerprint")
	}
}

func TestReset(t *testing.T) {
	in := NewInterner()
	b := NewBuilder()
	b.Interner = in
	s1 := b.MustBuild()

	in.Reset()
	if in.Len() != 0 {
		t.Fatalf("Len after Reset = %d", in.Len())
	}

	b2 := NewBuilder()
	b2.Interner = in
	s2 := b2.MustBuild()
	if s1 == s2 {
		t.Fatal("post-Reset build returned the pre-Reset instance")
	}
	if s1.Fingerprint() != s2.Fingerprint() {
		t.Fatal("equal content disagreed on fingerprint")
	}
}
