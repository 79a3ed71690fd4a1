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

// Package carbonerr defines the error taxonomy shared by the dictionary,
// document, columnar transform, archive serializer, and string-id index
// packages.
package carbonerr

import "fmt"

// Code classifies the kind of failure, independent of which
// package raised it.
type Code int

const (
	// IO covers open/read/write/seek failures.
	IO Code = iota
	// Format covers bad magic, bad version, unknown marker, truncated block.
	Format
	// Parse covers JSON syntax, out-of-range numbers, and bad top-level shape.
	Parse
	// Invariant covers mixed-type arrays, arrays of arrays, and other
	// violations of the data model's structural rules.
	Invariant
	// Type covers an unexpected value-type reaching a switch that doesn't
	// handle it.
	Type
	// Resource covers allocation failure and object-id exhaustion.
	Resource
	// Lookup covers unknown string ids and missing keys.
	Lookup
	// Internal indicates a bug: an invariant the implementation itself
	// should have maintained was violated.
	Internal
)

func (c Code) String() string {
	switch c {
	case IO:
		return "IO"
	case Format:
		return "FORMAT"
	case Parse:
		return "PARSE"
	case Invariant:
		return "INVARIANT"
	case Type:
		return "TYPE"
	case Resource:
		return "RESOURCE"
	case Lookup:
		return "LOOKUP"
	case Internal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// Error is the concrete error type returned by this module's leaf
// operations. Op names the failing operation (e.g. "dict.Insert",
// "columndoc.Transform") and Detail carries a human-readable
// explanation. Line and Column are set only for PARSE errors where a
// token position is available.
type Error struct {
	Code         Code
	Op           string
	Detail       string
	Line, Column int
}

func (e *Error) Error() string {
	if e.Line > 0 || e.Column > 0 {
		return fmt.Sprintf("%s: %s: %s (line %d, column %d)", e.Code, e.Op, e.Detail, e.Line, e.Column)
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Op)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Detail)
}

// New constructs an *Error with the given code.
func New(code Code, op, detail string) *Error {
	return &Error{Code: code, Op: op, Detail: detail}
}

// AtPos constructs a PARSE *Error carrying a token position.
func AtPos(op, detail string, line, column int) *Error {
	return &Error{Code: Parse, Op: op, Detail: detail, Line: line, Column: column}
}

// Is allows errors.Is(err, carbonerr.Invariant) style matching against
// a bare Code value.
func (e *Error) Is(target error) bool {
	if c, ok := target.(codeSentinel); ok {
		return e.Code == Code(c)
	}
	return false
}

type codeSentinel Code

// Sentinel returns a value usable with errors.Is to match any *Error
// of the given code, regardless of Op/Detail.
func Sentinel(c Code) error { return codeSentinel(c) }

func (codeSentinel) Error() string { return "carbonerr sentinel" }
