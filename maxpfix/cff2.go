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

package maxpfix

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// cff2NumGlyphs returns the number of glyphs of a CFF2 table, which equals
// the number of entries in the CharStrings INDEX.
//
// The sfnt library has no CFF2 reader, so the few structures on the way to
// the CharStrings count are decoded here: the fixed header, the Top DICT
// (to find the CharStrings offset, operator 17), and the INDEX count field.
// https://docs.microsoft.com/en-us/typography/opentype/spec/cff2
func cff2NumGlyphs(data []byte) (int, error) {
	if len(data) < 5 {
		return 0, errors.New("table too short")
	}
	if data[0] != 2 {
		return 0, fmt.Errorf("unsupported CFF version %d", data[0])
	}
	headerSize := int(data[2])
	topDictLength := int(binary.BigEndian.Uint16(data[3:5]))
	if headerSize < 5 || headerSize+topDictLength > len(data) {
		return 0, errors.New("malformed header")
	}

	charStrings, err := findDictOperand(data[headerSize:headerSize+topDictLength], opCharStrings)
	if err != nil {
		return 0, err
	}
	if charStrings < 0 || charStrings+4 > len(data) {
		return 0, errors.New("CharStrings offset out of range")
	}

	count := binary.BigEndian.Uint32(data[charStrings:])
	if count >= 1<<16 {
		return 0, fmt.Errorf("too many glyphs: %d", count)
	}
	return int(count), nil
}

const opCharStrings = 17

// findDictOperand scans a CFF2 DICT and returns the last integer operand of
// the given operator.
func findDictOperand(dict []byte, op int) (int, error) {
	var stack []int
	i := 0
	for i < len(dict) {
		b0 := int(dict[i])
		switch {
		case b0 == 28: // 3-byte integer
			if i+3 > len(dict) {
				return 0, errTruncatedDict
			}
			stack = append(stack, int(int16(uint16(dict[i+1])<<8|uint16(dict[i+2]))))
			i += 3
		case b0 == 29: // 5-byte integer
			if i+5 > len(dict) {
				return 0, errTruncatedDict
			}
			stack = append(stack, int(int32(binary.BigEndian.Uint32(dict[i+1:i+5]))))
			i += 5
		case b0 == 30: // real number, nibble-encoded until an 0xf nibble
			i++
			for {
				if i >= len(dict) {
					return 0, errTruncatedDict
				}
				b := dict[i]
				i++
				if b&0x0f == 0x0f || b>>4 == 0x0f {
					break
				}
			}
			stack = append(stack, 0)
		case b0 >= 32 && b0 <= 246: // 1-byte integer
			stack = append(stack, b0-139)
			i++
		case b0 >= 247 && b0 <= 250: // 2-byte integer, positive
			if i+2 > len(dict) {
				return 0, errTruncatedDict
			}
			stack = append(stack, (b0-247)*256+int(dict[i+1])+108)
			i += 2
		case b0 >= 251 && b0 <= 254: // 2-byte integer, negative
			if i+2 > len(dict) {
				return 0, errTruncatedDict
			}
			stack = append(stack, -(b0-251)*256-int(dict[i+1])-108)
			i += 2
		default: // an operator
			opCode := b0
			i++
			if b0 == 12 {
				if i >= len(dict) {
					return 0, errTruncatedDict
				}
				opCode = 1200 + int(dict[i])
				i++
			}
			if opCode == op {
				if len(stack) == 0 {
					return 0, fmt.Errorf("missing operand for operator %d", op)
				}
				return stack[len(stack)-1], nil
			}
			stack = stack[:0]
		}
	}
	return 0, fmt.Errorf("operator %d not found in Top DICT", op)
}

var errTruncatedDict = errors.New("truncated DICT")
