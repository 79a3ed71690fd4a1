// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package carbonjson

import (
	"strings"
	"testing"

	"github.com/carbonfmt/carbon/doc"
)

func entry(t *testing.T, o *doc.Object, key string) doc.Entry {
	t.Helper()
	for _, e := range o.Entries {
		if e.Key == key {
			return e
		}
	}
	t.Fatalf("no entry %q", key)
	return doc.Entry{}
}

func TestDecodeScalars(t *testing.T) {
	o, err := Decode(strings.NewReader(`{
		"id": 7,
		"neg": -3,
		"ratio": 1.5,
		"name": "ahi",
		"ok": true,
		"nope": false,
		"nothing": null
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if e := entry(t, o, "id"); e.Type != doc.U8 || e.Values[0].Uint != 7 {
		t.Fatalf("id entry = %+v", e)
	}
	if e := entry(t, o, "neg"); e.Type != doc.I8 || e.Values[0].Int != -3 {
		t.Fatalf("neg entry = %+v", e)
	}
	if e := entry(t, o, "ratio"); e.Type != doc.F32 {
		t.Fatalf("ratio entry = %+v", e)
	}
	if e := entry(t, o, "name"); e.Type != doc.String || e.Values[0].Str != "ahi" {
		t.Fatalf("name entry = %+v", e)
	}
	if e := entry(t, o, "ok"); e.Type != doc.Bool || e.Values[0].Bool != 1 {
		t.Fatalf("ok entry = %+v", e)
	}
	if e := entry(t, o, "nope"); e.Type != doc.Bool || e.Values[0].Bool != 0 {
		t.Fatalf("nope entry = %+v", e)
	}
	if e := entry(t, o, "nothing"); len(e.Values) != 0 {
		t.Fatalf("nothing entry = %+v, want 0 values", e)
	}
}

func TestDecodeArray(t *testing.T) {
	o, err := Decode(strings.NewReader(`{"counts": [1, 2, null, 300]}`))
	if err != nil {
		t.Fatal(err)
	}
	e := entry(t, o, "counts")
	if e.Type != doc.U16 {
		t.Fatalf("counts type = %v, want U16 (widened for 300)", e.Type)
	}
	if len(e.Values) != 4 {
		t.Fatalf("counts has %d values, want 4", len(e.Values))
	}
	if !e.Values[2].IsNullSentinel() {
		t.Fatal("counts[2] should be the null sentinel")
	}
}

func TestDecodeNestedObject(t *testing.T) {
	o, err := Decode(strings.NewReader(`{"address": {"city": "Reno", "zip": 89501}}`))
	if err != nil {
		t.Fatal(err)
	}
	e := entry(t, o, "address")
	if e.Type != doc.Object || len(e.Values) != 1 {
		t.Fatalf("address entry = %+v", e)
	}
	nested := e.Values[0].Object
	if got := entry(t, nested, "city"); got.Values[0].Str != "Reno" {
		t.Fatalf("nested city = %+v", got)
	}
}

func TestDecodeObjectArray(t *testing.T) {
	o, err := Decode(strings.NewReader(`{"tags": [{"name": "a"}, {"name": "b"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	e := entry(t, o, "tags")
	if e.Type != doc.Object || len(e.Values) != 2 {
		t.Fatalf("tags entry = %+v", e)
	}
	if entry(t, e.Values[0].Object, "name").Values[0].Str != "a" {
		t.Fatal("tags[0].name mismatch")
	}
	if entry(t, e.Values[1].Object, "name").Values[0].Str != "b" {
		t.Fatal("tags[1].name mismatch")
	}
}

func TestDecodeRejectsArrayOfArrays(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"bad": [[1, 2], [3, 4]]}`))
	if err == nil {
		t.Fatal("expected an error for an array of arrays")
	}
}

func TestDecodeRejectsMixedTypeArray(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"bad": [1, "two"]}`))
	if err == nil {
		t.Fatal("expected an error for a mixed-type array")
	}
}

func TestDecodeRejectsNonObjectTopLevel(t *testing.T) {
	_, err := Decode(strings.NewReader(`[1, 2, 3]`))
	if err == nil {
		t.Fatal("expected an error for a non-object top-level value")
	}
}

func TestDecodeRejectsBareScalarTopLevel(t *testing.T) {
	_, err := Decode(strings.NewReader(`"hello"`))
	if err == nil {
		t.Fatal("expected an error for a bare scalar top-level value")
	}
}

func TestDecodeTopLevelArrayOfObjects(t *testing.T) {
	o, err := Decode(strings.NewReader(`[{"name": "a"}, {"name": "b"}, {"name": "c"}]`))
	if err != nil {
		t.Fatal(err)
	}
	e := entry(t, o, topLevelArrayKey)
	if e.Type != doc.Object || len(e.Values) != 3 {
		t.Fatalf("%s entry = %+v, want 3 object values", topLevelArrayKey, e)
	}
	for i, want := range []string{"a", "b", "c"} {
		if got := entry(t, e.Values[i].Object, "name").Values[0].Str; got != want {
			t.Fatalf("record %d name = %q, want %q", i, got, want)
		}
	}
}

func TestDecodeTopLevelArrayRejectsNonObjectElement(t *testing.T) {
	_, err := Decode(strings.NewReader(`[{"name": "a"}, 1]`))
	if err == nil {
		t.Fatal("expected an error for a non-object element in a top-level array")
	}
}

func TestDecodeTopLevelEmptyArray(t *testing.T) {
	o, err := Decode(strings.NewReader(`[]`))
	if err != nil {
		t.Fatal(err)
	}
	e := entry(t, o, topLevelArrayKey)
	if e.Type != doc.Null || len(e.Values) != 0 {
		t.Fatalf("empty top-level array entry = %+v, want Null type and 0 values", e)
	}
}

func TestDecodeEmptyArrayIsNull(t *testing.T) {
	o, err := Decode(strings.NewReader(`{"empty": []}`))
	if err != nil {
		t.Fatal(err)
	}
	e := entry(t, o, "empty")
	if e.Type != doc.Null || len(e.Values) != 0 {
		t.Fatalf("empty array entry = %+v, want Null type and 0 values", e)
	}
}
