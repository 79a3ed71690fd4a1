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

// Package carbonjson adapts encoding/json's token stream into
// doc.Object trees (spec §6's "parser assumed to produce a typed
// AST" collaborator). It classifies each token into the nearest doc
// primitive and lets doc.Object.Put/PutArray perform the actual type
// inference and array-shape validation (components C2/C3); this
// package never narrows a numeric type or rejects a mixed array
// itself.
package carbonjson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/carbonfmt/carbon/carbonerr"
	"github.com/carbonfmt/carbon/doc"
)

// topLevelArrayKey is the synthetic key a top-level array of objects is
// wrapped under (spec §4.2: "each element becomes a sibling record in
// the same model"). The archive format's RootObject is always a
// single object (spec §4.5), so the sibling records are modeled the
// same way any other array of objects is: as an object-array entry
// that columndoc's pivot (the same machinery a nested "tags"-style
// property goes through) turns into per-element sibling columns —
// mirroring how the original implementation's import_json folded a
// top-level array into the same target/partition it builds nested
// object-array properties from.
const topLevelArrayKey = "$records"

// Decode reads exactly one JSON value from r and returns it as a
// doc.Object. The top-level value must be a JSON object or an array of
// objects (spec §4.2, §6); anything else fails with JSONTYPE.
func Decode(r io.Reader) (*doc.Object, error) {
	d := json.NewDecoder(r)
	d.UseNumber()
	tok, err := d.Token()
	if err != nil {
		return nil, carbonerr.AtPos("carbonjson.Decode", err.Error(), 0, 0)
	}
	var o *doc.Object
	switch tok {
	case json.Delim('{'):
		o, err = decodeObject(d)
	case json.Delim('['):
		o, err = decodeTopLevelArray(d)
	default:
		err = carbonerr.AtPos("carbonjson.Decode", fmt.Sprintf("JSONTYPE: top-level JSON must be an object or an array of objects, found %v", tok), 0, 0)
	}
	if err != nil {
		return nil, err
	}
	// A well-formed single-document stream has nothing left but EOF.
	if _, err := d.Token(); err != io.EOF {
		if err == nil {
			return nil, carbonerr.AtPos("carbonjson.Decode", "unexpected trailing content after top-level value", 0, 0)
		}
	}
	return o, nil
}

// decodeTopLevelArray consumes a top-level JSON array, requiring every
// element to be an object (a non-object element is JSONTYPE, same as
// a bare top-level scalar or array), and wraps the resulting objects
// under topLevelArrayKey so they become sibling records.
func decodeTopLevelArray(d *json.Decoder) (*doc.Object, error) {
	var elems []doc.RawValue
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, carbonerr.AtPos("carbonjson.decodeTopLevelArray", err.Error(), 0, 0)
		}
		if tok == json.Delim(']') {
			break
		}
		if tok != json.Delim('{') {
			return nil, carbonerr.AtPos("carbonjson.decodeTopLevelArray", fmt.Sprintf("JSONTYPE: top-level array elements must be objects, found %v", tok), 0, 0)
		}
		nested, err := decodeObject(d)
		if err != nil {
			return nil, err
		}
		elems = append(elems, doc.RawObject(nested))
	}
	o := doc.NewObject()
	if err := o.PutArray(topLevelArrayKey, elems); err != nil {
		return nil, err
	}
	return o, nil
}

// decodeObject consumes object members up to (and including) the
// closing '}', the decoder having already consumed the opening '{'.
func decodeObject(d *json.Decoder) (*doc.Object, error) {
	o := doc.NewObject()
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, carbonerr.AtPos("carbonjson.decodeObject", err.Error(), 0, 0)
		}
		if tok == json.Delim('}') {
			return o, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, carbonerr.AtPos("carbonjson.decodeObject", fmt.Sprintf("expected an object key, found %v", tok), 0, 0)
		}
		vtok, err := d.Token()
		if err != nil {
			return nil, carbonerr.AtPos("carbonjson.decodeObject", err.Error(), 0, 0)
		}
		if err := putMember(o, key, vtok, d); err != nil {
			return nil, err
		}
	}
}

// putMember dispatches a single (key, value) pair into o based on
// vtok, the value's first token.
func putMember(o *doc.Object, key string, vtok json.Token, d *json.Decoder) error {
	switch vtok {
	case json.Delim('{'):
		nested, err := decodeObject(d)
		if err != nil {
			return err
		}
		return o.PutObject(key, nested)
	case json.Delim('['):
		elems, err := decodeArray(d)
		if err != nil {
			return err
		}
		return o.PutArray(key, elems)
	}
	raw, err := scalarOf(vtok)
	if err != nil {
		return err
	}
	return o.Put(key, raw)
}

// decodeArray consumes array elements up to (and including) the
// closing ']', the decoder having already consumed the opening '['.
func decodeArray(d *json.Decoder) ([]doc.RawValue, error) {
	var elems []doc.RawValue
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, carbonerr.AtPos("carbonjson.decodeArray", err.Error(), 0, 0)
		}
		if tok == json.Delim(']') {
			return elems, nil
		}
		switch tok {
		case json.Delim('{'):
			nested, err := decodeObject(d)
			if err != nil {
				return nil, err
			}
			elems = append(elems, doc.RawObject(nested))
		case json.Delim('['):
			// A nested array element; doc.PutArray is the single place
			// ARRAY_OF_ARRAYS is rejected, so this marker just carries
			// "was an array" through to that check, after draining the
			// nested array's own tokens so the outer decode can resync.
			if _, err := decodeArray(d); err != nil {
				return nil, err
			}
			elems = append(elems, doc.RawArray())
		default:
			raw, err := scalarOf(tok)
			if err != nil {
				return nil, err
			}
			elems = append(elems, raw)
		}
	}
}

// scalarOf classifies a non-delimiter JSON token into the RawValue
// doc.Object.Put/PutArray expect (spec §4.2's per-JSON-member table).
func scalarOf(tok json.Token) (doc.RawValue, error) {
	switch t := tok.(type) {
	case nil:
		return doc.RawNull(), nil
	case bool:
		return doc.RawBool(t), nil
	case string:
		return doc.RawString(t), nil
	case json.Number:
		if u, err := parseUint(string(t)); err == nil {
			return doc.RawUint(u), nil
		}
		if i, err := t.Int64(); err == nil {
			return doc.RawInt(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return doc.RawValue{}, carbonerr.AtPos("carbonjson.scalarOf", fmt.Sprintf("number %q out of range", t.String()), 0, 0)
		}
		return doc.RawFloat(f), nil
	default:
		return doc.RawValue{}, carbonerr.AtPos("carbonjson.scalarOf", fmt.Sprintf("unexpected token %v", tok), 0, 0)
	}
}

// parseUint accepts only literals encoding unsigned 64-bit integers,
// so e.g. "-1" falls through to Int64 and a fractional/exponent form
// falls through to Float64, matching spec §4.2's split between
// "non-negative integer literal" and "negative integer literal".
func parseUint(s string) (uint64, error) {
	var n uint64
	if s == "" {
		return 0, fmt.Errorf("empty number literal")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a plain unsigned literal: %q", s)
		}
		d := uint64(c - '0')
		if n > (1<<64-1-d)/10 {
			return 0, fmt.Errorf("overflow")
		}
		n = n*10 + d
	}
	return n, nil
}
