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

// Package store implements the immutable, content-interned configuration
// bag shared by marshalling contexts.
//
// A Store is built once via a Builder, validated and normalized during
// Build, and then interned: any two stores with identical effective
// content resolve to the same shared instance. Higher layers rely on that
// reference identity to test "same effective configuration" cheaply and
// to deduplicate contexts.
package store

import (
	"time"

	"dirpx.dev/mfx/apis"
	"dirpx.dev/mfx/utils/glob"
)

// Visibility controls which members of a struct are introspected as bean
// properties.
type Visibility int

const (
	// VisibilityDefault exposes exported fields and Get*/Set* accessor
	// method pairs.
	VisibilityDefault Visibility = iota

	// VisibilityFields exposes exported fields only.
	VisibilityFields
)

// Defaults applied by Build when the corresponding Builder field is zero.
const (
	// DefaultMaxDepth bounds non-cyclic nesting during serialization.
	DefaultMaxDepth = 64
	// DefaultQuote is the lax-dialect quote character.
	DefaultQuote = byte('\'')
	// DefaultCharset is the declared character encoding.
	DefaultCharset = "utf-8"
)

// Store is the immutable union of all introspection and format settings.
//
// Stores are interned by content: equal effective configuration implies
// reference equality (see Interner). Never compare stores field by field;
// compare pointers.
type Store struct {
	visibility       Visibility
	notBeanPackages  *glob.Set
	notBeanClasses   map[string]struct{}
	notBeanClassList []string
	swaps            []apis.Swap
	sortMaps         bool
	trimNulls        bool
	strictProperties bool
	ignoreRecursions bool
	strictDialect    bool
	maxDepth         int
	quote            byte
	locale           string
	timeZone         string
	charset          string
	loc              *time.Location
	fp               string
}

// Visibility returns the bean member visibility rule.
func (s *Store) Visibility() Visibility { return s.visibility }

// NotBeanPackages returns the compiled package ignore set. Never nil.
func (s *Store) NotBeanPackages() *glob.Set { return s.notBeanPackages }

// NotBeanClass reports whether the fully qualified type name is ignored.
func (s *Store) NotBeanClass(name string) bool {
	_, ok := s.notBeanClasses[name]
	return ok
}

// NotBeanClasses returns the normalized ignored type names.
// The returned slice must not be mutated.
func (s *Store) NotBeanClasses() []string { return s.notBeanClassList }

// Swaps returns the registered store-level swaps in registration order.
// The returned slice must not be mutated.
func (s *Store) Swaps() []apis.Swap { return s.swaps }

// SortMaps reports whether map entries are emitted in sorted key order.
func (s *Store) SortMaps() bool { return s.sortMaps }

// TrimNulls reports whether null-valued bean properties are omitted.
func (s *Store) TrimNulls() bool { return s.trimNulls }

// StrictProperties reports whether unknown keys fail parsing.
// When false, unknown keys are ignored.
func (s *Store) StrictProperties() bool { return s.strictProperties }

// IgnoreRecursions reports whether serialization emits a null marker on
// cycles instead of failing.
func (s *Store) IgnoreRecursions() bool { return s.ignoreRecursions }

// StrictDialect reports whether codecs use their conservative dialect.
func (s *Store) StrictDialect() bool { return s.strictDialect }

// MaxDepth returns the maximum serialization nesting depth.
func (s *Store) MaxDepth() int { return s.maxDepth }

// Quote returns the lax-dialect quote character.
func (s *Store) Quote() byte { return s.quote }

// Locale returns the default BCP 47 locale tag, or "".
func (s *Store) Locale() string { return s.locale }

// TimeZone returns the configured time zone name.
func (s *Store) TimeZone() string { return s.timeZone }

// Location returns the resolved time zone. Never nil.
func (s *Store) Location() *time.Location { return s.loc }

// Charset returns the declared character encoding.
func (s *Store) Charset() string { return s.charset }

// Fingerprint returns the content hash the store was interned under.
// Two stores are the same instance iff their fingerprints are equal.
func (s *Store) Fingerprint() string { return s.fp }

// CodecOptions derives the codec knobs from the store.
func (s *Store) CodecOptions() apis.CodecOptions {
	return apis.CodecOptions{
		Strict:  s.strictDialect,
		Quote:   s.quote,
		Charset: s.charset,
	}
}

// Builder returns a mutable copy of the store's configuration, suitable
// for deriving a modified store. The receiver is not affected.
func (s *Store) Builder() Builder {
	b := Builder{
		Visibility:       s.visibility,
		NotBeanPackages:  append([]string(nil), s.notBeanPackages.Patterns()...),
		NotBeanClasses:   append([]string(nil), s.notBeanClassList...),
		Swaps:            append([]apis.Swap(nil), s.swaps...),
		SortMaps:         s.sortMaps,
		TrimNulls:        s.trimNulls,
		StrictProperties: s.strictProperties,
		IgnoreRecursions: s.ignoreRecursions,
		StrictDialect:    s.strictDialect,
		MaxDepth:         s.maxDepth,
		Quote:            s.quote,
		Locale:           s.locale,
		TimeZone:         s.timeZone,
		Charset:          s.charset,
	}
	return b
}
