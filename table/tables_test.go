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

package table

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestChecksum(t *testing.T) {
	cases := []struct {
		Body     []byte
		Expected uint32
	}{
		{[]byte{0, 1, 2, 3}, 0x00010203},
		{[]byte{0, 1, 2, 3, 4, 5, 6, 7}, 0x0406080a},
		{[]byte{1}, 0x01000000},
		{[]byte{1, 2, 3}, 0x01020300},
		{[]byte{1, 0, 0, 0, 1}, 0x02000000},
		{[]byte{255, 255, 255, 255, 0, 0, 0, 1}, 0},
	}

	for i, test := range cases {
		computed := Checksum(test.Body)
		if computed != test.Expected {
			t.Errorf("test %d failed: %08x != %08x",
				i+1, computed, test.Expected)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	tables := map[string][]byte{
		"CFF ": {1, 2, 3, 4, 5},
		"cmap": {6, 7},
		"name": {},
		"XXXX": {8, 9, 10, 11}, // unknown tags must survive a round trip
	}

	buf := &bytes.Buffer{}
	n, err := Write(buf, ScalerTypeCFF, tables)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("reported size %d != written size %d", n, buf.Len())
	}
	if buf.Len()%4 != 0 {
		t.Errorf("font size %d is not a multiple of 4", buf.Len())
	}

	scalerType, got, err := ReadTables(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if scalerType != ScalerTypeCFF {
		t.Errorf("wrong scaler type: 0x%08x", scalerType)
	}
	if d := cmp.Diff(tables, got); d != "" {
		t.Errorf("tables differ (-want +got):\n%s", d)
	}
}

func TestNilTablesOmitted(t *testing.T) {
	tables := map[string][]byte{
		"CFF ": {1, 2, 3, 4},
		"maxp": nil,
	}

	buf := &bytes.Buffer{}
	_, err := Write(buf, ScalerTypeCFF, tables)
	if err != nil {
		t.Fatal(err)
	}

	h, err := ReadHeader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if h.Has("maxp") {
		t.Error("nil table was written")
	}
	if !h.Has("CFF ") {
		t.Error("CFF table is missing")
	}
}

func TestHeadChecksum(t *testing.T) {
	head := make([]byte, 54)
	for i := range head {
		head[i] = byte(i)
	}
	tables := map[string][]byte{
		"head": head,
		"CFF ": {1, 2, 3, 4},
	}

	buf := &bytes.Buffer{}
	_, err := Write(buf, ScalerTypeCFF, tables)
	if err != nil {
		t.Fatal(err)
	}

	// The checksum adjustment is chosen such that the checksum of the
	// complete file equals the magic value.
	data := buf.Bytes()
	h, err := ReadHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	rec := h.Toc["head"]
	adjustment := binary.BigEndian.Uint32(data[rec.Offset+8 : rec.Offset+12])

	binary.BigEndian.PutUint32(data[rec.Offset+8:rec.Offset+12], 0)
	if got := Checksum(data) + adjustment; got != 0xB1B0AFBA {
		t.Errorf("head checksum adjustment is wrong: 0x%08x", got)
	}
}

func TestReadHeaderErrors(t *testing.T) {
	type testCase struct {
		name string
		data []byte
	}

	// a directory entry has the form tag, checkSum, offset, length
	mkFont := func(scalerType uint32, entries ...[4]interface{}) []byte {
		buf := &bytes.Buffer{}
		_ = binary.Write(buf, binary.BigEndian, scalerType)
		_ = binary.Write(buf, binary.BigEndian, uint16(len(entries)))
		_ = binary.Write(buf, binary.BigEndian, [3]uint16{})
		for _, e := range entries {
			buf.WriteString(e[0].(string))
			_ = binary.Write(buf, binary.BigEndian, uint32(0))
			_ = binary.Write(buf, binary.BigEndian, e[2].(uint32))
			_ = binary.Write(buf, binary.BigEndian, e[3].(uint32))
		}
		return buf.Bytes()
	}

	cases := []testCase{
		{
			name: "bad scaler type",
			data: mkFont(0x12345678,
				[4]interface{}{"CFF ", nil, uint32(28), uint32(4)}),
		},
		{
			name: "collection",
			data: mkFont(0x74746366, // "ttcf"
				[4]interface{}{"CFF ", nil, uint32(28), uint32(4)}),
		},
		{
			name: "no tables",
			data: mkFont(ScalerTypeCFF),
		},
		{
			name: "overlapping tables",
			data: append(mkFont(ScalerTypeCFF,
				[4]interface{}{"CFF ", nil, uint32(44), uint32(8)},
				[4]interface{}{"cmap", nil, uint32(48), uint32(8)}),
				make([]byte, 16)...),
		},
		{
			name: "table beyond EOF",
			data: mkFont(ScalerTypeCFF,
				[4]interface{}{"CFF ", nil, uint32(28), uint32(1000)}),
		},
		{
			name: "offset into header",
			data: mkFont(ScalerTypeCFF,
				[4]interface{}{"CFF ", nil, uint32(4), uint32(4)}),
		},
	}
	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadHeader(bytes.NewReader(test.data))
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestIsMissing(t *testing.T) {
	h := &Header{Toc: map[string]Record{}}
	_, err := h.Find("maxp")
	if !IsMissing(err) {
		t.Errorf("expected missing-table error, got %v", err)
	}
}
