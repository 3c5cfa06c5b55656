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

// Package maxpfix repairs CFF/CFF2-flavoured OpenType fonts which are
// missing the mandatory "maxp" table.
//
// For fonts with CFF or CFF2 outlines the OpenType specification requires
// "maxp" version 0.5, which records nothing but the number of glyphs.  Some
// font manipulation tools drop the table; such fonts are rejected by most
// parsers even though all information needed to reconstruct the table is
// still present.  This package inserts the missing table and leaves
// everything else untouched.
//
// Fonts with TrueType outlines are out of scope: their "maxp" table is
// version 1.0 and contains profiling maxima which cannot be recovered
// without interpreting the glyph data.
package maxpfix

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"seehuhn.de/go/sfnt/cff"
	"seehuhn.de/go/sfnt/maxp"

	"seehuhn.de/go/fonttools/table"
)

var (
	// ErrTrueTypeOutlines indicates a font with "glyf" outlines, which
	// needs a version 1.0 "maxp" table instead.
	ErrTrueTypeOutlines = errors.New(`font contains "glyf" (TrueType outlines); use a TrueType maxp v1.0 repair instead`)

	// ErrNoCFF indicates a font which contains neither a "CFF " nor a
	// "CFF2" table.
	ErrNoCFF = errors.New(`not a CFF/CFF2 OpenType font: neither "CFF " nor "CFF2" is present`)
)

// Repair reads a complete font from r and writes a repaired version to w.
//
// If the "maxp" table is missing, a version 0.5 table with the correct
// glyph count is inserted and the first return value is true.  If the table
// is already present the font is written unchanged and the first return
// value is false.
//
// Fonts with TrueType outlines, and fonts without CFF or CFF2 outlines,
// are rejected without writing any output.
func Repair(r io.ReaderAt, w io.Writer) (changed bool, err error) {
	scalerType, tables, err := table.ReadTables(r)
	if err != nil {
		return false, err
	}

	changed, err = repairTables(tables)
	if err != nil {
		return false, err
	}

	_, err = table.Write(w, scalerType, tables)
	return changed, err
}

// repairTables inserts a "maxp" table into tables if missing.  The map is
// modified in place.
func repairTables(tables map[string][]byte) (changed bool, err error) {
	if _, ok := tables["glyf"]; ok {
		return false, ErrTrueTypeOutlines
	}
	cffData, hasCFF := tables["CFF "]
	cff2Data, hasCFF2 := tables["CFF2"]
	if !hasCFF && !hasCFF2 {
		return false, ErrNoCFF
	}

	if _, ok := tables["maxp"]; ok {
		return false, nil
	}

	var numGlyphs int
	if hasCFF {
		fnt, err := cff.Read(bytes.NewReader(cffData))
		if err != nil {
			return false, fmt.Errorf("reading CFF table: %w", err)
		}
		numGlyphs = len(fnt.Glyphs)
	} else {
		numGlyphs, err = cff2NumGlyphs(cff2Data)
		if err != nil {
			return false, fmt.Errorf("reading CFF2 table: %w", err)
		}
	}
	if numGlyphs < 1 || numGlyphs >= 1<<16 {
		return false, fmt.Errorf("invalid number of glyphs: %d", numGlyphs)
	}

	info := &maxp.Info{NumGlyphs: numGlyphs}
	tables["maxp"] = info.Encode()
	return true, nil
}
