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

// Package table provides low-level access to the tables of an sfnt font
// file.  In contrast to the full parser in seehuhn.de/go/sfnt, this package
// only looks at the table directory and treats table contents as opaque
// bytes.  This allows reading and rewriting fonts which are structurally
// incomplete, for example fonts where a mandatory table is missing.
package table

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// The scaler types of sfnt font files supported by this package.
// https://docs.microsoft.com/en-us/typography/opentype/spec/otff#table-directory
const (
	ScalerTypeTrueType = 0x00010000
	ScalerTypeCFF      = 0x4F54544F // "OTTO"
	ScalerTypeApple    = 0x74727565 // "true"
)

// Header describes the contents of the table directory of an sfnt file.
type Header struct {
	ScalerType uint32
	Toc        map[string]Record
}

// Record gives the location of a single table within the font file.
type Record struct {
	Offset uint32
	Length uint32
}

// ReadHeader reads the file header of an sfnt font file.
//
// All tables with well-formed directory entries are included in the returned
// table of contents, whether or not their tags are known.
func ReadHeader(r io.ReaderAt) (*Header, error) {
	var buf [16]byte
	_, err := r.ReadAt(buf[:6], 0)
	if err != nil {
		return nil, err
	}
	scalerType := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	numTables := int(buf[4])<<8 | int(buf[5])

	if scalerType != ScalerTypeTrueType &&
		scalerType != ScalerTypeCFF &&
		scalerType != ScalerTypeApple {
		return nil, fmt.Errorf("table: unsupported scaler type 0x%08x", scalerType)
	}
	if numTables > 280 {
		// the largest value observed on my laptop is 28
		return nil, errors.New("table: too many tables")
	}

	h := &Header{
		ScalerType: scalerType,
		Toc:        make(map[string]Record),
	}
	type alloc struct {
		Start uint32
		End   uint32
	}
	var coverage []alloc
	for i := 0; i < numTables; i++ {
		_, err := r.ReadAt(buf[:], int64(12+i*16))
		if err != nil {
			return nil, err
		}
		name := string(buf[:4])
		offset := uint32(buf[8])<<24 + uint32(buf[9])<<16 + uint32(buf[10])<<8 + uint32(buf[11])
		length := uint32(buf[12])<<24 + uint32(buf[13])<<16 + uint32(buf[14])<<8 + uint32(buf[15])
		if !isValidTag(name) {
			continue
		}
		h.Toc[name] = Record{
			Offset: offset,
			Length: length,
		}
		coverage = append(coverage, alloc{
			Start: offset,
			End:   offset + length,
		})
	}
	if len(h.Toc) == 0 {
		return nil, errors.New("table: no tables found")
	}

	// perform some sanity checks
	sort.Slice(coverage, func(i, j int) bool {
		if coverage[i].Start != coverage[j].Start {
			return coverage[i].Start < coverage[j].Start
		}
		return coverage[i].End < coverage[j].End
	})
	if coverage[0].Start < 12 {
		return nil, errors.New("table: invalid table offset")
	}
	for i := 1; i < len(coverage); i++ {
		if coverage[i-1].End > coverage[i].Start {
			return nil, errors.New("table: overlapping tables")
		}
	}
	_, err = r.ReadAt(buf[:1], int64(coverage[len(coverage)-1].End)-1)
	if err == io.EOF {
		return nil, errors.New("table: table extends beyond EOF")
	} else if err != nil {
		return nil, err
	}

	return h, nil
}

// Has returns true if all of the given tables are present in the font.
func (h *Header) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := h.Toc[name]; !ok {
			return false
		}
	}
	return true
}

// Find returns the directory entry for the given table.
func (h *Header) Find(tableName string) (Record, error) {
	rec, ok := h.Toc[tableName]
	if !ok {
		return rec, &ErrNoTable{Name: tableName}
	}
	return rec, nil
}

// ReadTableBytes returns the body of a table as a byte slice.
func (h *Header) ReadTableBytes(r io.ReaderAt, tableName string) ([]byte, error) {
	rec, err := h.Find(tableName)
	if err != nil {
		return nil, err
	}
	res := make([]byte, rec.Length)
	n, err := r.ReadAt(res, int64(rec.Offset))
	if n < len(res) && err != nil {
		return nil, err
	}
	return res[:n], nil
}

// ReadTables reads the complete contents of an sfnt font file as a map
// from table names to table bodies.
func ReadTables(r io.ReaderAt) (scalerType uint32, tables map[string][]byte, err error) {
	h, err := ReadHeader(r)
	if err != nil {
		return 0, nil, err
	}
	tables = make(map[string][]byte, len(h.Toc))
	for name := range h.Toc {
		body, err := h.ReadTableBytes(r, name)
		if err != nil {
			return 0, nil, err
		}
		tables[name] = body
	}
	return h.ScalerType, tables, nil
}

func isValidTag(name string) bool {
	if len(name) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if name[i] < 0x20 || name[i] > 0x7E {
			return false
		}
	}
	return true
}

// ErrNoTable indicates that a font file does not contain a required table.
type ErrNoTable struct {
	Name string
}

func (err *ErrNoTable) Error() string {
	return fmt.Sprintf("missing %q table", err.Name)
}

// IsMissing returns true if err indicates a missing sfnt table.
func IsMissing(err error) bool {
	var noTable *ErrNoTable
	return errors.As(err, &noTable)
}
