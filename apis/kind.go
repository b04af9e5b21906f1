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

import (
	"fmt"
	"strings"
)

// Kind classifies a runtime type into one of the canonical categories the
// marshalling walk understands.
//
// # Overview
//
// Every type that enters the serialize or parse pipeline is resolved to
// exactly one Kind. The walk engine dispatches on the Kind, never on the
// concrete Go type, so codecs and sessions only need to understand this
// small closed set.
//
// Classification is structural (array-ness, map contract, sequence
// contract, bean-shaped struct, scalar) except for KindSwapped, which is
// assigned whenever a registered Swap matches the type, and KindObject,
// which is the universal safety net: a type that matches nothing else is
// still serializable via its string form.
//
// # Contract
//
//   - Kind values are plain integers and safe to share across goroutines.
//   - A type's Kind is stable for the lifetime of the owning context;
//     it may differ between contexts with different configuration
//     (e.g. notBeanPackages turning a bean into KindObject).
//   - New values may be added; existing values never change meaning.
type Kind int

const (
	// KindObject is the fallback classification. Values serialize via
	// their string form (fmt.Stringer when available) and parse via a
	// text-unmarshalling constructor when one exists.
	KindObject Kind = iota

	// KindBean marks a type with named, gettable/settable properties.
	KindBean

	// KindMap marks a type satisfying the map contract. Keys are always
	// stringified on the wire regardless of the source key type.
	KindMap

	// KindCollection marks an ordered, growable sequence (a Go slice).
	KindCollection

	// KindArray marks a fixed-length sequence (a Go array).
	KindArray

	// KindString marks string and named string types.
	KindString

	// KindNumber marks all integer and floating point types.
	KindNumber

	// KindBool marks boolean types.
	KindBool

	// KindURI marks URL/URI values, serialized as their canonical string.
	KindURI

	// KindSwapped marks a type with a registered Swap. The walk replaces
	// the value with its surrogate before descending.
	KindSwapped

	// KindVoid marks the absence of a value (untyped nil).
	KindVoid
)

// String returns the canonical token for the Kind.
//
// For unknown or out-of-range values it returns a diagnostic
// "Unknown(<n>)" form rather than panicking, so corrupted values can
// still be surfaced in logs.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "Object"
	case KindBean:
		return "Bean"
	case KindMap:
		return "Map"
	case KindCollection:
		return "Collection"
	case KindArray:
		return "Array"
	case KindString:
		return "String"
	case KindNumber:
		return "Number"
	case KindBool:
		return "Bool"
	case KindURI:
		return "URI"
	case KindSwapped:
		return "Swapped"
	case KindVoid:
		return "Void"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// ParseKind parses a textual representation of a Kind.
//
// Matching is case-insensitive and surrounding whitespace is trimmed.
// On failure it returns KindObject and a non-nil error; callers must not
// rely on the returned Kind in the error case.
func ParseKind(s string) (Kind, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return KindObject, fmt.Errorf("apis: empty kind")
	}

	switch strings.ToLower(trimmed) {
	case "object":
		return KindObject, nil
	case "bean":
		return KindBean, nil
	case "map":
		return KindMap, nil
	case "collection":
		return KindCollection, nil
	case "array":
		return KindArray, nil
	case "string":
		return KindString, nil
	case "number":
		return KindNumber, nil
	case "bool":
		return KindBool, nil
	case "uri":
		return KindURI, nil
	case "swapped":
		return KindSwapped, nil
	case "void":
		return KindVoid, nil
	default:
		return KindObject, fmt.Errorf("apis: unknown kind %q", s)
	}
}

// MarshalText encodes the Kind as its canonical token.
// Unknown values return an error rather than persisting a diagnostic form.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindObject, KindBean, KindMap, KindCollection, KindArray,
		KindString, KindNumber, KindBool, KindURI, KindSwapped, KindVoid:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("apis: cannot marshal unknown kind %d", k)
	}
}

// UnmarshalText decodes a Kind from its textual representation.
// On failure the receiver is left unchanged.
func (k *Kind) UnmarshalText(text []byte) error {
	value, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = value
	return nil
}
