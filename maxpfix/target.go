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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"seehuhn.de/go/fonttools/table"
)

// A Target selects where the repaired font is written.  Exactly one of the
// three variants applies to a repair run.
type Target interface {
	isTarget()
}

// ToFile writes the repaired font to a new file.  An empty Path selects
// [DefaultOutputName] of the input.
type ToFile struct {
	Path string
}

// InPlace rewrites the input file, optionally creating a ".bak" copy of the
// original first.
type InPlace struct {
	Backup bool
}

// ToStream writes the repaired font bytes to W.  The font is staged in a
// temporary file next to the input first, so that no partial output is
// emitted if the repair fails half-way.
type ToStream struct {
	W io.Writer
}

func (ToFile) isTarget()   {}
func (InPlace) isTarget()  {}
func (ToStream) isTarget() {}

// A UsageError reports a violated precondition: a missing or invalid input
// path, or an output or backup path which already exists.  No file has been
// modified when a UsageError is returned.
type UsageError struct {
	Msg string
}

func (err *UsageError) Error() string {
	return err.Msg
}

// Result describes a completed repair run.
type Result struct {
	// Changed is true if a "maxp" table was inserted, false if the font
	// was already compliant.
	Changed bool

	// OutPath is the path the repaired font was written to.  It is empty
	// in stream mode.
	OutPath string

	// BackupPath is the path of the backup copy, if one was created.
	BackupPath string
}

// DefaultOutputName returns the output file name used when no explicit
// output path is given: the input name with ".fixed" inserted before the
// extension.
func DefaultOutputName(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".fixed" + ext
}

// RepairFile repairs the font at input and writes the result to the given
// target.
//
// With force set, a pre-existing output file is deleted before the repaired
// font is written, and a pre-existing backup file may be overwritten.
// Without force, such collisions return a [UsageError] and leave every file
// untouched.
func RepairFile(input string, target Target, force bool) (*Result, error) {
	st, err := os.Stat(input)
	if err != nil {
		return nil, &UsageError{Msg: fmt.Sprintf("input not found: %s", input)}
	}
	if !st.Mode().IsRegular() {
		return nil, &UsageError{Msg: fmt.Sprintf("input is not a file: %s", input)}
	}

	switch t := target.(type) {
	case ToFile:
		out := t.Path
		if out == "" {
			out = DefaultOutputName(input)
		}
		if _, err := os.Stat(out); err == nil {
			if !force {
				return nil, &UsageError{Msg: fmt.Sprintf(
					"output already exists: %s (use -force to overwrite)", out)}
			}
			// Remove the old file first, so that no mix of old and new
			// contents can remain.
			if err := os.Remove(out); err != nil {
				return nil, err
			}
		}
		changed, err := repairToFile(input, out)
		if err != nil {
			return nil, err
		}
		return &Result{Changed: changed, OutPath: out}, nil

	case InPlace:
		res := &Result{OutPath: input}
		if t.Backup {
			bak := input + ".bak"
			if _, err := os.Stat(bak); err == nil && !force {
				return nil, &UsageError{Msg: fmt.Sprintf(
					"backup already exists: %s (use -force to overwrite)", bak)}
			}
			if err := copyFile(input, bak); err != nil {
				return nil, err
			}
			res.BackupPath = bak
		}
		changed, err := repairToFile(input, input)
		if err != nil {
			return nil, err
		}
		res.Changed = changed
		return res, nil

	case ToStream:
		tmp := input + ".tmp_repaired"
		changed, err := repairToFile(input, tmp)
		if err != nil {
			os.Remove(tmp) // best effort
			return nil, err
		}
		data, err := os.ReadFile(tmp)
		if err == nil {
			_, err = t.W.Write(data)
		}
		os.Remove(tmp) // best effort
		if err != nil {
			return nil, err
		}
		return &Result{Changed: changed}, nil

	default:
		panic("unknown target type")
	}
}

// repairToFile reads the font at in completely into memory, repairs it, and
// writes the result to out.  The two paths may be equal.
func repairToFile(in, out string) (changed bool, err error) {
	fd, err := os.Open(in)
	if err != nil {
		return false, err
	}
	scalerType, tables, err := table.ReadTables(fd)
	if cerr := fd.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return false, err
	}

	changed, err = repairTables(tables)
	if err != nil {
		return false, err
	}

	w, err := os.Create(out)
	if err != nil {
		return false, err
	}
	_, err = table.Write(w, scalerType, tables)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return changed, err
}

// copyFile copies src to dst, preserving the file mode and modification
// time.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	st, err := os.Stat(src)
	if err != nil {
		return err
	}
	err = os.WriteFile(dst, data, st.Mode().Perm())
	if err != nil {
		return err
	}
	return os.Chtimes(dst, st.ModTime(), st.ModTime())
}
