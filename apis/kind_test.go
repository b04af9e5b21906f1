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

import "testing"

var allKinds = []Kind{
	KindObject, KindBean, KindMap, KindCollection, KindArray,
	KindString, KindNumber, KindBool, KindURI, KindSwapped, KindVoid,
}

func TestKindStringParseRoundTrip(t *testing.T) {
	for _, k := range allKinds {
		t.Run(k.String(), func(t *testing.T) {
			got, err := ParseKind(k.String())
			if err != nil {
				t.Fatalf("ParseKind(%q): %v", k.String(), err)
			}
			if got != k {
				t.Fatalf("ParseKind(%q) = %v, want %v", k.String(), got, k)
			}
		})
	}
}

func TestParseKindLenient(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{"bean", KindBean},
		{"BEAN", KindBean},
		{"  Collection  ", KindCollection},
		{"uri", KindURI},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseKind(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseKindErrors(t *testing.T) {
	for _, in := range []string{"", "   ", "nonsense"} {
		if _, err := ParseKind(in); err == nil {
			t.Fatalf("ParseKind(%q) accepted", in)
		}
	}
}

func TestKindTextRoundTrip(t *testing.T) {
	for _, k := range allKinds {
		text, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", k, err)
		}
		var back Kind
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != k {
			t.Fatalf("round trip %v -> %q -> %v", k, text, back)
		}
	}
}

func TestKindUnknown(t *testing.T) {
	bad := Kind(99)
	if got := bad.String(); got != "Unknown(99)" {
		t.Fatalf("String = %q", got)
	}
	if _, err := bad.MarshalText(); err == nil {
		t.Fatal("MarshalText accepted an unknown kind")
	}

	k := KindBean
	if err := k.UnmarshalText([]byte("nonsense")); err == nil {
		t.Fatal("UnmarshalText accepted nonsense")
	}
	if k != KindBean {
		t.Fatal("receiver modified on failed UnmarshalText")
	}
}

func TestObjectOf(t *testing.T) {
	o := ObjectOf("a", 1, "b", "two")
	if o.Len() != 2 {
		t.Fatalf("Len = %d", o.Len())
	}
	if v, _ := o.Get("a"); v != 1 {
		t.Fatalf("Get(a) = %v", v)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("odd argument count did not panic")
		}
	}()
	ObjectOf("only-key")
}
