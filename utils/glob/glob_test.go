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

package glob

import (
	"errors"
	"reflect"
	"testing"
)

func TestValid(t *testing.T) {
	cases := []struct {
		pattern string
		wantErr error
	}{
		{"net/http", nil},
		{"encoding.*", nil},
		{"encoding/*", nil},
		{"", ErrEmptyPattern},
		{"   ", ErrEmptyPattern},
		{"a**", ErrMalformedPattern},
		{"*.json", ErrMalformedPattern},
	}
	for _, tc := range cases {
		t.Run(tc.pattern, func(t *testing.T) {
			if err := Valid(tc.pattern); !errors.Is(err, tc.wantErr) {
				t.Fatalf("Valid(%q) = %v, want %v", tc.pattern, err, tc.wantErr)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize([]string{" net/http ", "encoding.*", "net/http", "a/b"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []string{"a/b", "encoding.*", "net/http"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize = %v, want %v", got, want)
	}
}

func TestMatch(t *testing.T) {
	s, err := Compile([]string{"net/http", "encoding.*", "example.com/pkg/*"})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	cases := []struct {
		name string
		want bool
	}{
		{"net/http", true},
		{"net/http/httputil", false}, // exact entries do not cascade
		{"encoding", true},           // prefix patterns cover their own stem
		{"encoding.json", true},
		{"encoding/json", true}, // either separator closes a prefix
		{"encodingx", false},
		{"example.com/pkg/sub", true},
		{"example.com/pkg", true},
		{"example.com/other", false},
	}
	for _, tc := range cases {
		if got := s.Match(tc.name); got != tc.want {
			t.Errorf("Match(%q) = %t, want %t", tc.name, got, tc.want)
		}
	}
}

func TestCompileDeduplicates(t *testing.T) {
	s, err := Compile([]string{"a/b", "a/b", " a/b "})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := s.Patterns(); len(got) != 1 {
		t.Fatalf("Patterns = %v, want one entry", got)
	}
}

func TestEmptySet(t *testing.T) {
	s, err := Compile(nil)
	if err != nil {
		t.Fatalf("Compile(nil): %v", err)
	}
	if !s.Empty() {
		t.Fatal("Compile(nil) not empty")
	}
	if s.Match("net/http") {
		t.Fatal("empty set matched")
	}
}
