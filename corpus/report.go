// seehuhn.de/go/fonttools - tools for inspecting and repairing font files
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package corpus

import (
	"fmt"
	"io"
)

// The valid lookup type ranges.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#table-organization
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#table-organization
const (
	maxGsubLookupType = 8
	maxGposLookupType = 9
)

// WriteReport writes the two-part coverage report: occurrence counts for
// every GSUB and GPOS lookup type, followed by up to maxExamples font paths
// per type.  Types which did not occur are reported with a count of 0.
func (idx *Index) WriteReport(w io.Writer, maxExamples int) error {
	ew := &errWriter{w: w}

	ew.printf("== Coverage ==\n")
	for t := uint16(1); t <= maxGsubLookupType; t++ {
		ew.printf("GSUB %d: %d fonts\n", t, idx.Count("GSUB", t))
	}
	for t := uint16(1); t <= maxGposLookupType; t++ {
		ew.printf("GPOS %d: %d fonts\n", t, idx.Count("GPOS", t))
	}

	ew.printf("\n== Examples (up to %d each) ==\n", maxExamples)
	for t := uint16(1); t <= maxGsubLookupType; t++ {
		ew.printf("GSUB %d:\n", t)
		for _, fname := range idx.Examples("GSUB", t, maxExamples) {
			ew.printf("   %s\n", fname)
		}
	}
	for t := uint16(1); t <= maxGposLookupType; t++ {
		ew.printf("GPOS %d:\n", t)
		for _, fname := range idx.Examples("GPOS", t, maxExamples) {
			ew.printf("   %s\n", fname)
		}
	}

	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
