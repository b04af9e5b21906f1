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

// Package glob implements the package-pattern matching used by
// notBeanPackages-style ignore sets.
//
// Two pattern forms are supported:
//
//   - exact:  "dirpx.dev/mfx/meta" matches only that import path.
//   - prefix: "dirpx.dev/mfx.*" (or "dirpx.dev/mfx/*") matches the path
//     itself and everything below it.
//
// Pattern sets are immutable once compiled; add/remove semantics are
// expressed by compiling a new set from an edited pattern list, which is
// what makes remove-after-add restore prior behavior exactly.
package glob

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrEmptyPattern is returned when an empty or blank pattern is provided.
	ErrEmptyPattern = errors.New("mfx(glob): empty pattern provided")
	// ErrMalformedPattern indicates a wildcard anywhere other than a
	// trailing ".*" or "/*" segment.
	ErrMalformedPattern = errors.New("mfx(glob): malformed pattern")
)

// Valid reports whether pattern is well-formed.
func Valid(pattern string) error {
	p := strings.TrimSpace(pattern)
	if p == "" {
		return ErrEmptyPattern
	}
	if i := strings.IndexByte(p, '*'); i >= 0 {
		// Only a trailing ".*" or "/*" is allowed.
		if i != len(p)-1 || i == 0 || (p[i-1] != '.' && p[i-1] != '/') {
			return fmt.Errorf("%w: %q", ErrMalformedPattern, pattern)
		}
		if strings.Count(p, "*") != 1 {
			return fmt.Errorf("%w: %q", ErrMalformedPattern, pattern)
		}
	}
	return nil
}

// Normalize trims, validates, de-duplicates and sorts patterns.
// The result is the canonical form used for set equality.
func Normalize(patterns []string) ([]string, error) {
	seen := make(map[string]struct{}, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if err := Valid(p); err != nil {
			return nil, err
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// Set is a compiled, immutable pattern set.
type Set struct {
	// patterns is the normalized source list, kept for diagnostics and
	// fingerprinting.
	patterns []string
	// exact holds full-path patterns.
	exact map[string]struct{}
	// prefixes holds the stems of trailing-wildcard patterns, without
	// the separator and star.
	prefixes []string
}

// Compile builds a Set from patterns. Patterns are normalized first;
// a malformed pattern fails the whole compilation.
func Compile(patterns []string) (*Set, error) {
	norm, err := Normalize(patterns)
	if err != nil {
		return nil, err
	}
	s := &Set{
		patterns: norm,
		exact:    make(map[string]struct{}, len(norm)),
	}
	for _, p := range norm {
		switch {
		case strings.HasSuffix(p, ".*"):
			s.prefixes = append(s.prefixes, p[:len(p)-2])
		case strings.HasSuffix(p, "/*"):
			s.prefixes = append(s.prefixes, p[:len(p)-2])
		default:
			s.exact[p] = struct{}{}
		}
	}
	return s, nil
}

// Match reports whether the import path name is covered by the set.
// A prefix pattern covers its own stem and any deeper path, with either
// "." or "/" as the segment separator.
func (s *Set) Match(name string) bool {
	if s == nil || name == "" {
		return false
	}
	if _, ok := s.exact[name]; ok {
		return true
	}
	for _, stem := range s.prefixes {
		if name == stem {
			return true
		}
		if strings.HasPrefix(name, stem) && len(name) > len(stem) {
			if c := name[len(stem)]; c == '.' || c == '/' {
				return true
			}
		}
	}
	return false
}

// Patterns returns the normalized pattern list the set was compiled from.
// The returned slice must not be mutated.
func (s *Set) Patterns() []string {
	if s == nil {
		return nil
	}
	return s.patterns
}

// Empty reports whether the set matches nothing.
func (s *Set) Empty() bool {
	return s == nil || (len(s.exact) == 0 && len(s.prefixes) == 0)
}
