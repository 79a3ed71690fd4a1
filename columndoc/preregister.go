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

package columndoc

import (
	"github.com/carbonfmt/carbon/dict"
	"github.com/carbonfmt/carbon/doc"
)

// Preregister walks o and every object reachable from it and interns
// every key and string value into d in one bulk Insert call, so that
// Transform's subsequent LocateFast lookups never miss (spec §4.3:
// "caller guarantees bulk preregistration").
func Preregister(d dict.Dictionary, o *doc.Object) error {
	var strs []string
	collectStrings(o, &strs)
	_, err := d.Insert(strs)
	return err
}

func collectStrings(o *doc.Object, out *[]string) {
	for i := range o.Entries {
		e := &o.Entries[i]
		*out = append(*out, e.Key)
		for _, v := range e.Values {
			collectValueStrings(v, out)
		}
	}
}

func collectValueStrings(v doc.Value, out *[]string) {
	switch v.Type {
	case doc.String:
		*out = append(*out, v.Str)
	case doc.Object:
		if v.Object != nil {
			collectStrings(v.Object, out)
		}
	}
}
