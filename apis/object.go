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
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is the canonical key-ordered generic object exchanged between the
// walk engine and codecs. Beans and maps serialize into an Object; parsing
// an object into an untyped (any) target yields an Object.
//
// Insertion order is preserved, which is what keeps bean property order
// and unsorted map order stable on the wire.
type Object = orderedmap.OrderedMap[string, any]

// NewObject returns an empty canonical object.
func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// ObjectOf builds a canonical object from alternating key/value pairs.
// It is a test and construction convenience; it panics on an odd number
// of arguments or a non-string key.
func ObjectOf(pairs ...any) *Object {
	if len(pairs)%2 != 0 {
		panic("apis: ObjectOf requires an even number of arguments")
	}
	o := NewObject()
	for i := 0; i < len(pairs); i += 2 {
		o.Set(pairs[i].(string), pairs[i+1])
	}
	return o
}
