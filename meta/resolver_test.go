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
	"fmt"
	"net/url"
	"reflect"
	"runtime"
	"sync"
	"testing"
	"time"

	"dirpx.dev/mfx/apis"
	"dirpx.dev/mfx/store"
	"dirpx.dev/mfx/swaps"
)

type address struct {
	Street string
	City   string
}

type person struct {
	F1   string
	Age  int    `bean:"years"`
	Skip string `bean:"-"`
	Addr *address
}

type node struct {
	Name string
	Next *node
}

type temperature float64

func (t temperature) String() string { return fmt.Sprintf("%.1fC", float64(t)) }

func newStore(t *testing.T, mutate func(*store.Builder)) *store.Store {
	t.Helper()
	b := store.NewBuilder()
	b.Interner = store.NewInterner()
	if mutate != nil {
		mutate(&b)
	}
	return b.MustBuild()
}

func TestResolveKinds(t *testing.T) {
	r := NewResolver(newStore(t, nil), nil)

	cases := []struct {
		name string
		typ  reflect.Type
		want apis.Kind
	}{
		{"string", reflect.TypeOf(""), apis.KindString},
		{"int", reflect.TypeOf(0), apis.KindNumber},
		{"float", reflect.TypeOf(0.0), apis.KindNumber},
		{"bool", reflect.TypeOf(false), apis.KindBool},
		{"slice", reflect.TypeOf([]int{}), apis.KindCollection},
		{"array", reflect.TypeOf([2]int{}), apis.KindArray},
		{"map", reflect.TypeOf(map[string]int{}), apis.KindMap},
		{"struct", reflect.TypeOf(person{}), apis.KindBean},
		{"ptr struct", reflect.TypeOf(&person{}), apis.KindBean},
		{"url", reflect.TypeOf(url.URL{}), apis.KindURI},
		{"func", reflect.TypeOf(func() {}), apis.KindObject},
		{"nil", nil, apis.KindVoid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Resolve(tc.typ).Kind(); got != tc.want {
				t.Fatalf("Resolve(%v).Kind() = %v, want %v", tc.typ, got, tc.want)
			}
		})
	}
}

func TestResolveCachesByIdentity(t *testing.T) {
	r := NewResolver(newStore(t, nil), nil)
	cm1 := r.Resolve(reflect.TypeOf(person{}))
	cm2 := r.Resolve(reflect.TypeOf(&person{}))
	if cm1 != cm2 {
		t.Fatal("pointer-normalized type resolved to a distinct instance")
	}
}

func TestBeanProperties(t *testing.T) {
	r := NewResolver(newStore(t, nil), nil)
	bm := r.Resolve(reflect.TypeOf(person{})).Bean()
	if bm == nil {
		t.Fatal("no bean metadata")
	}

	var names []string
	for _, p := range bm.Properties() {
		names = append(names, p.Name())
	}
	want := []string{"f1", "years", "skip", "addr"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("property names = %v, want %v", names, want)
	}

	if p, _ := bm.Property("skip"); !p.Ignored() {
		t.Fatal(`bean:"-" property not ignored`)
	}
	if _, ok := bm.Property("F1"); ok {
		t.Fatal("property lookup must be case-sensitive on wire names")
	}
	if p, _ := bm.Property("addr"); p.Meta().Kind() != apis.KindBean {
		t.Fatal("nested struct property did not resolve to a bean")
	}
}

func TestRecursiveType(t *testing.T) {
	r := NewResolver(newStore(t, nil), nil)
	cm := r.Resolve(reflect.TypeOf(node{}))
	p, ok := cm.Bean().Property("next")
	if !ok {
		t.Fatal("missing self-referential property")
	}
	if p.Meta() != cm {
		t.Fatal("self-reference did not resolve to the same metadata instance")
	}
}

func TestNotBeanOverridesEverything(t *testing.T) {
	st := newStore(t, func(b *store.Builder) {
		b.AddNotBeanClasses("meta.temperature")
		b.AddSwaps(swaps.Func("temp",
			func(_ apis.Session, v temperature) (float64, error) { return float64(v), nil },
			func(_ apis.Session, v float64) (temperature, error) { return temperature(v), nil }))
	})
	cm := NewResolver(st, nil).Resolve(reflect.TypeOf(temperature(0)))
	if !cm.NotBean() || cm.Kind() != apis.KindObject {
		t.Fatalf("kind = %v notBean = %t, want opaque object", cm.Kind(), cm.NotBean())
	}
	if !cm.HasStringer() {
		t.Fatal("stringer not detected")
	}
}

func TestNotBeanPackage(t *testing.T) {
	st := newStore(t, func(b *store.Builder) {
		b.AddNotBeanPackages("dirpx.dev/mfx/meta")
	})
	cm := NewResolver(st, nil).Resolve(reflect.TypeOf(person{}))
	if cm.Kind() != apis.KindObject {
		t.Fatalf("kind = %v, want object for ignored package", cm.Kind())
	}

	// A store without the pattern classifies the same type as a bean
	// again; the two stores own independent caches.
	cm2 := NewResolver(newStore(t, nil), nil).Resolve(reflect.TypeOf(person{}))
	if cm2.Kind() != apis.KindBean {
		t.Fatalf("kind = %v, want bean without ignore pattern", cm2.Kind())
	}
}

func TestSwapPrecedence(t *testing.T) {
	stringerSwap := swaps.Func("stringer",
		func(_ apis.Session, v fmt.Stringer) (string, error) { return v.String(), nil },
		func(_ apis.Session, s string) (fmt.Stringer, error) { return nil, nil })

	st := newStore(t, func(b *store.Builder) {
		b.AddSwaps(stringerSwap, swaps.Time{})
	})
	r := NewResolver(st, nil)

	// Exact type match beats an interface match even when registered later.
	cm := r.Resolve(reflect.TypeOf(time.Time{}))
	if cm.Kind() != apis.KindSwapped {
		t.Fatalf("kind = %v, want swapped", cm.Kind())
	}
	if _, ok := cm.Swap().(swaps.Time); !ok {
		t.Fatalf("swap = %T, want swaps.Time", cm.Swap())
	}

	// Types with only an interface match fall through to it.
	cm = r.Resolve(reflect.TypeOf(temperature(0)))
	if cm.Kind() != apis.KindSwapped || cm.Swap() != stringerSwap {
		t.Fatalf("kind = %v swap = %T, want interface swap", cm.Kind(), cm.Swap())
	}
}

func TestAccessorProperties(t *testing.T) {
	r := NewResolver(newStore(t, nil), nil)
	bm := r.Resolve(reflect.TypeOf(counted{})).Bean()
	p, ok := bm.Property("count")
	if !ok {
		t.Fatal("accessor pair not discovered")
	}
	if !p.Settable() {
		t.Fatal("accessor property not settable")
	}

	c := &counted{}
	if err := p.Set(reflect.ValueOf(c), reflect.ValueOf(41)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := p.Get(reflect.ValueOf(c))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Interface() != 41 {
		t.Fatalf("Get = %v, want 41", got.Interface())
	}
}

func TestFieldsOnlyVisibility(t *testing.T) {
	st := newStore(t, func(b *store.Builder) {
		b.Visibility = store.VisibilityFields
	})
	bm := NewResolver(st, nil).Resolve(reflect.TypeOf(counted{})).Bean()
	if _, ok := bm.Property("count"); ok {
		t.Fatal("accessor pair discovered under fields-only visibility")
	}
}

type counted struct {
	n int
}

func (c *counted) GetCount() int  { return c.n }
func (c *counted) SetCount(n int) { c.n = n }

// Concurrent resolution of one type must publish exactly one metadata
// instance.
func TestResolveConcurrent(t *testing.T) {
	r := NewResolver(newStore(t, nil), nil)

	workers := runtime.GOMAXPROCS(0) * 4
	if workers < 8 {
		workers = 8
	}

	var (
		start sync.WaitGroup
		done  sync.WaitGroup
		gate  = make(chan struct{})
	)
	results := make([]*ClassMeta, workers)

	start.Add(workers)
	done.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer done.Done()
			start.Done()
			<-gate
			results[n] = r.Resolve(reflect.TypeOf(person{}))
		}(i)
	}
	start.Wait()
	close(gate)
	done.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("worker %d observed a distinct metadata instance", i)
		}
	}
}
