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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

// writeTestFont writes a broken CFF2 font (no "maxp" table) to a file in dir.
func writeTestFont(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, fontBytes(t, testTables(4)), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func checkRepaired(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := &bytes.Buffer{}
	changed, err := Repair(bytes.NewReader(data), out)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Errorf("%s still needs repair", path)
	}
}

func TestDefaultOutputName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"font.otf", "font.fixed.otf"},
		{"dir/font.otf", "dir/font.fixed.otf"},
		{"font", "font.fixed"},
		{"a.b.otf", "a.b.fixed.otf"},
	}
	for _, c := range cases {
		if got := DefaultOutputName(c.in); got != c.want {
			t.Errorf("DefaultOutputName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRepairToFile(t *testing.T) {
	dir := t.TempDir()
	input := writeTestFont(t, dir, "broken.otf")

	res, err := RepairFile(input, ToFile{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed {
		t.Error("font was not reported as repaired")
	}
	want := filepath.Join(dir, "broken.fixed.otf")
	if res.OutPath != want {
		t.Errorf("wrong output path %q, want %q", res.OutPath, want)
	}
	checkRepaired(t, res.OutPath)
}

func TestRepairCollision(t *testing.T) {
	dir := t.TempDir()
	input := writeTestFont(t, dir, "broken.otf")
	out := filepath.Join(dir, "out.otf")
	marker := []byte("do not touch")
	if err := os.WriteFile(out, marker, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := RepairFile(input, ToFile{Path: out}, false)
	var usage *UsageError
	if !errors.As(err, &usage) {
		t.Fatalf("expected UsageError, got %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, marker) {
		t.Error("pre-existing output file was modified")
	}

	// with force the file is replaced
	res, err := RepairFile(input, ToFile{Path: out}, true)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed {
		t.Error("font was not reported as repaired")
	}
	checkRepaired(t, out)
}

func TestRepairInPlace(t *testing.T) {
	dir := t.TempDir()
	input := writeTestFont(t, dir, "broken.otf")
	orig, err := os.ReadFile(input)
	if err != nil {
		t.Fatal(err)
	}

	res, err := RepairFile(input, InPlace{Backup: true}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed {
		t.Error("font was not reported as repaired")
	}
	if res.OutPath != input {
		t.Errorf("wrong output path %q", res.OutPath)
	}
	checkRepaired(t, input)

	// the backup is a byte-identical copy of the original
	if res.BackupPath != input+".bak" {
		t.Errorf("wrong backup path %q", res.BackupPath)
	}
	bak, err := os.ReadFile(res.BackupPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(bak, orig) {
		t.Error("backup differs from the original file")
	}

	// a second run without force must not clobber the backup
	_, err = RepairFile(input, InPlace{Backup: true}, false)
	var usage *UsageError
	if !errors.As(err, &usage) {
		t.Fatalf("expected UsageError, got %v", err)
	}
}

func TestRepairToStream(t *testing.T) {
	dir := t.TempDir()
	input := writeTestFont(t, dir, "broken.otf")

	out := &bytes.Buffer{}
	res, err := RepairFile(input, ToStream{W: out}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed {
		t.Error("font was not reported as repaired")
	}
	if res.OutPath != "" {
		t.Errorf("unexpected output path %q", res.OutPath)
	}
	if out.Len() == 0 {
		t.Error("no bytes written to the stream")
	}

	// the staging file must be gone, and the input unchanged
	if _, err := os.Stat(input + ".tmp_repaired"); !os.IsNotExist(err) {
		t.Error("staging file was left behind")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("unexpected files in directory: %d entries", len(entries))
	}
}

func TestRepairToStreamFailure(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "go-regular.ttf")
	if err := os.WriteFile(input, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	_, err := RepairFile(input, ToStream{W: out}, false)
	if !errors.Is(err, ErrTrueTypeOutlines) {
		t.Fatalf("expected ErrTrueTypeOutlines, got %v", err)
	}
	if out.Len() != 0 {
		t.Error("partial output was written to the stream")
	}

	// the staging file must be cleaned up on the failure path, too
	if _, err := os.Stat(input + ".tmp_repaired"); !os.IsNotExist(err) {
		t.Error("staging file was left behind")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("unexpected files in directory: %d entries", len(entries))
	}
}

func TestRepairFileErrors(t *testing.T) {
	dir := t.TempDir()

	var usage *UsageError
	_, err := RepairFile(filepath.Join(dir, "missing.otf"), ToFile{}, false)
	if !errors.As(err, &usage) {
		t.Errorf("missing input: expected UsageError, got %v", err)
	}

	_, err = RepairFile(dir, ToFile{}, false)
	if !errors.As(err, &usage) {
		t.Errorf("directory input: expected UsageError, got %v", err)
	}

	// a TrueType font is rejected without creating any output
	input := filepath.Join(dir, "go-regular.ttf")
	if err := os.WriteFile(input, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = RepairFile(input, ToFile{}, false)
	if !errors.Is(err, ErrTrueTypeOutlines) {
		t.Errorf("expected ErrTrueTypeOutlines, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "go-regular.fixed.ttf")); !os.IsNotExist(err) {
		t.Error("output file was created for a rejected font")
	}
}
