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

// Package corpus tabulates GSUB/GPOS lookup-type coverage over a directory
// tree of font files.
package corpus

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"seehuhn.de/go/sfnt"
)

// fontExtensions are the file name extensions of candidate font files,
// in lower case.
var fontExtensions = map[string]bool{
	".otf": true,
	".ttf": true,
	".ttc": true,
	".otc": true,
}

// IsFontFile returns true if the file name looks like a font file.
func IsFontFile(fname string) bool {
	return fontExtensions[strings.ToLower(filepath.Ext(fname))]
}

type key struct {
	Table string // "GSUB" or "GPOS"
	Type  uint16
}

// A Skip records a font file which was excluded from the index, together
// with the reason.
type Skip struct {
	Path string
	Err  error
}

// Index is the inverse mapping from (table, lookup type) to the font files
// exhibiting that lookup type.
type Index struct {
	byType map[key][]string

	// Skipped lists the candidate files which could not be read,
	// in the order they were encountered.
	Skipped []Skip
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		byType: make(map[key][]string),
	}
}

// ScanDir walks the directory tree rooted at root and indexes every font
// file found.  Files which cannot be parsed are recorded in the Skipped
// list instead of aborting the scan.
func ScanDir(root string) (*Index, error) {
	idx := NewIndex()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable directory entries are skipped like broken fonts
			idx.Skipped = append(idx.Skipped, Skip{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsFontFile(path) {
			return nil
		}
		idx.AddFont(path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// AddFont indexes a single font file.  If the font cannot be read, the file
// is added to the Skipped list.
//
// A font is listed once for every lookup of a given type it contains, so a
// font with two lookups of type 1 contributes two entries.
func (idx *Index) AddFont(fname string) {
	gsub, gpos, err := lookupTypes(fname)
	if err != nil {
		idx.Skipped = append(idx.Skipped, Skip{Path: fname, Err: err})
		return
	}
	for _, lookupType := range gsub {
		k := key{Table: "GSUB", Type: lookupType}
		idx.byType[k] = append(idx.byType[k], fname)
	}
	for _, lookupType := range gpos {
		k := key{Table: "GPOS", Type: lookupType}
		idx.byType[k] = append(idx.byType[k], fname)
	}
}

// Count returns the number of indexed (font, lookup) occurrences for the
// given table and lookup type.
func (idx *Index) Count(table string, lookupType uint16) int {
	return len(idx.byType[key{Table: table, Type: lookupType}])
}

// Examples returns up to max font paths exhibiting the given lookup type,
// in the order the fonts were first seen.
func (idx *Index) Examples(table string, lookupType uint16, max int) []string {
	fonts := idx.byType[key{Table: table, Type: lookupType}]
	if len(fonts) > max {
		fonts = fonts[:max]
	}
	return fonts
}

// SkipReasons tabulates the skipped files by error message.
func (idx *Index) SkipReasons() map[string]int {
	reasons := make(map[string]int)
	for _, skip := range idx.Skipped {
		reasons[skip.Err.Error()]++
	}
	return reasons
}

// lookupTypes returns the lookup types of all GSUB and GPOS lookups of a
// font, in lookup order.
func lookupTypes(fname string) (gsub, gpos []uint16, err error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, nil, err
	}
	defer fd.Close()

	info, err := sfnt.Read(fd)
	if err != nil {
		return nil, nil, err
	}

	if info.Gsub != nil {
		for _, lookup := range info.Gsub.LookupList {
			gsub = append(gsub, lookup.Meta.LookupType)
		}
	}
	if info.Gpos != nil {
		for _, lookup := range info.Gpos.LookupList {
			gpos = append(gpos, lookup.Meta.LookupType)
		}
	}
	return gsub, gpos, nil
}
