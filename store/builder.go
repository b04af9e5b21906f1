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
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"dirpx.dev/mfx/apis"
	"dirpx.dev/mfx/utils/glob"
)

var (
	// ErrBadQuote is returned for a quote character other than ' or ".
	ErrBadQuote = errors.New("mfx(store): quote must be single or double quote")
	// ErrBadMaxDepth is returned for a negative MaxDepth.
	ErrBadMaxDepth = errors.New("mfx(store): negative max depth")
	// ErrNilSwap is returned when a nil swap is registered.
	ErrNilSwap = errors.New("mfx(store): nil swap registered")
	// ErrBadTimeZone wraps a time zone name that cannot be resolved.
	ErrBadTimeZone = errors.New("mfx(store): unresolvable time zone")
)

// Builder is the plain mutable configuration from which a Store is built.
//
// Fields may be assigned directly; the Add*/Remove* helpers exist for the
// set-valued options where edit semantics matter. Build validates and
// normalizes everything, so a Builder carries raw, unchecked values.
//
// The zero Builder builds the default store.
type Builder struct {
	// Visibility selects which struct members become bean properties.
	Visibility Visibility

	// NotBeanPackages holds package ignore patterns (exact import path
	// or trailing ".*"/"/*" prefix). Types in matching packages are
	// never treated as beans.
	NotBeanPackages []string

	// NotBeanClasses holds fully qualified type names ("pkg.Type")
	// excluded from bean classification.
	NotBeanClasses []string

	// Swaps holds store-level swaps in registration order. Order is
	// significant: earlier swaps win ties during nearest-match dispatch.
	Swaps []apis.Swap

	// SortMaps emits map entries in sorted key order.
	SortMaps bool

	// TrimNulls omits null-valued bean properties from output.
	TrimNulls bool

	// StrictProperties fails parsing on unknown bean properties.
	StrictProperties bool

	// IgnoreRecursions emits a null marker on serialization cycles
	// instead of failing.
	IgnoreRecursions bool

	// StrictDialect selects the conservative wire dialect.
	StrictDialect bool

	// MaxDepth bounds serialization nesting. Zero selects
	// DefaultMaxDepth.
	MaxDepth int

	// Quote is the lax-dialect quote character. Zero selects
	// DefaultQuote.
	Quote byte

	// Locale is the default BCP 47 locale tag.
	Locale string

	// TimeZone is an IANA time zone name. Empty selects UTC.
	TimeZone string

	// Charset is the declared character encoding. Empty selects
	// DefaultCharset.
	Charset string

	// Interner receives the built store. Nil selects the process-wide
	// DefaultInterner.
	Interner *Interner
}

// NewBuilder returns a Builder holding the library defaults.
func NewBuilder() Builder {
	return Builder{}
}

// AddNotBeanPackages appends ignore patterns. Duplicates are tolerated
// and collapse during Build.
func (b *Builder) AddNotBeanPackages(patterns ...string) *Builder {
	b.NotBeanPackages = append(b.NotBeanPackages, patterns...)
	return b
}

// RemoveNotBeanPackages removes previously added patterns. Removing a
// pattern restores the classification behavior from before it was added.
func (b *Builder) RemoveNotBeanPackages(patterns ...string) *Builder {
	b.NotBeanPackages = removeAll(b.NotBeanPackages, patterns)
	return b
}

// AddNotBeanClasses appends ignored type names.
func (b *Builder) AddNotBeanClasses(names ...string) *Builder {
	b.NotBeanClasses = append(b.NotBeanClasses, names...)
	return b
}

// RemoveNotBeanClasses removes previously added type names.
func (b *Builder) RemoveNotBeanClasses(names ...string) *Builder {
	b.NotBeanClasses = removeAll(b.NotBeanClasses, names)
	return b
}

// AddSwaps appends store-level swaps.
func (b *Builder) AddSwaps(swaps ...apis.Swap) *Builder {
	b.Swaps = append(b.Swaps, swaps...)
	return b
}

// Build validates and normalizes the configuration, computes its content
// fingerprint, and interns the result: if a store with identical content
// already exists, that instance is returned. Concurrent builds of equal
// content yield one winner.
func (b Builder) Build() (*Store, error) {
	quote := b.Quote
	switch quote {
	case 0:
		quote = DefaultQuote
	case '\'', '"':
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadQuote, string(quote))
	}

	if b.MaxDepth < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadMaxDepth, b.MaxDepth)
	}
	maxDepth := b.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}

	pkgs, err := glob.Compile(b.NotBeanPackages)
	if err != nil {
		return nil, err
	}

	classSet := make(map[string]struct{}, len(b.NotBeanClasses))
	for _, n := range b.NotBeanClasses {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		classSet[n] = struct{}{}
	}
	classList := make([]string, 0, len(classSet))
	for n := range classSet {
		classList = append(classList, n)
	}
	sort.Strings(classList)

	swaps := make([]apis.Swap, 0, len(b.Swaps))
	for _, sw := range b.Swaps {
		if sw == nil {
			return nil, ErrNilSwap
		}
		swaps = append(swaps, sw)
	}

	tz := b.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadTimeZone, b.TimeZone)
	}

	charset := b.Charset
	if charset == "" {
		charset = DefaultCharset
	}

	s := &Store{
		visibility:       b.Visibility,
		notBeanPackages:  pkgs,
		notBeanClasses:   classSet,
		notBeanClassList: classList,
		swaps:            swaps,
		sortMaps:         b.SortMaps,
		trimNulls:        b.TrimNulls,
		strictProperties: b.StrictProperties,
		ignoreRecursions: b.IgnoreRecursions,
		strictDialect:    b.StrictDialect,
		maxDepth:         maxDepth,
		quote:            quote,
		locale:           strings.TrimSpace(b.Locale),
		timeZone:         tz,
		charset:          charset,
		loc:              loc,
	}
	s.fp = fingerprint(s)

	in := b.Interner
	if in == nil {
		in = DefaultInterner()
	}
	return in.Intern(s), nil
}

// MustBuild is Build for configurations known valid at authoring time.
// It panics on error and is intended for package-level defaults and tests.
func (b Builder) MustBuild() *Store {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// fingerprint renders the normalized content of s into the canonical
// string equal stores agree on. Swaps are identified by their concrete
// implementation type and type mapping (see SwapID).
func fingerprint(s *Store) string {
	var sb strings.Builder
	sb.WriteString("v=")
	sb.WriteString(strconv.Itoa(int(s.visibility)))
	sb.WriteString(";nbp=")
	sb.WriteString(strings.Join(s.notBeanPackages.Patterns(), ","))
	sb.WriteString(";nbc=")
	sb.WriteString(strings.Join(s.notBeanClassList, ","))
	sb.WriteString(";sw=")
	for i, sw := range s.swaps {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(SwapID(sw))
	}
	fmt.Fprintf(&sb, ";sort=%t;trim=%t;sp=%t;ir=%t;sd=%t;md=%d;q=%c;loc=%s;tz=%s;cs=%s",
		s.sortMaps, s.trimNulls, s.strictProperties, s.ignoreRecursions,
		s.strictDialect, s.maxDepth, s.quote, s.locale, s.timeZone, s.charset)
	return sb.String()
}

// SwapID returns the content identity of a swap for fingerprinting.
// Swaps implementing fmt.Stringer contribute their String() so distinct
// functional swaps over the same type pair stay distinguishable.
func SwapID(sw apis.Swap) string {
	id := reflect.TypeOf(sw).String() + ":" + sw.Type().String() + ">" + sw.Swapped().String()
	if str, ok := sw.(fmt.Stringer); ok {
		id += "#" + str.String()
	}
	return id
}

// removeAll returns list without any element contained in drop,
// preserving order of the survivors.
func removeAll(list, drop []string) []string {
	if len(drop) == 0 || len(list) == 0 {
		return list
	}
	dropSet := make(map[string]struct{}, len(drop))
	for _, d := range drop {
		dropSet[strings.TrimSpace(d)] = struct{}{}
	}
	out := list[:0]
	for _, v := range list {
		if _, gone := dropSet[strings.TrimSpace(v)]; !gone {
			out = append(out, v)
		}
	}
	return out
}
