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

// Fix-maxp repairs CFF/CFF2 OpenType fonts which are missing the mandatory
// "maxp" table, by inserting a version 0.5 table with the correct glyph
// count.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"seehuhn.de/go/fonttools/maxpfix"
	"seehuhn.de/go/fonttools/tools/internal/buildinfo"
)

type config struct {
	output  string
	inplace bool
	stdout  bool
	backup  bool
	force   bool
	quiet   bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.output, "o", "", "path to write the repaired font to")
	flag.StringVar(&cfg.output, "output", "", "path to write the repaired font to")
	flag.BoolVar(&cfg.inplace, "inplace", false, "modify the input file in place")
	flag.BoolVar(&cfg.stdout, "stdout", false, "write the repaired font bytes to stdout")
	flag.BoolVar(&cfg.backup, "backup", false, "with -inplace, create a .bak copy next to the original first")
	flag.BoolVar(&cfg.force, "force", false, "overwrite output or backup files which already exist")
	flag.BoolVar(&cfg.quiet, "quiet", false, "suppress status output (errors still go to stderr)")
	help := flag.Bool("help", false, "show help information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "fix-maxp: insert a missing \"maxp\" table into a CFF/CFF2 OpenType font\n")
		fmt.Fprintf(os.Stderr, "%s\n\n", buildinfo.Short("fix-maxp"))
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  fix-maxp [options] font.otf\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nThe options -o, -inplace and -stdout are mutually exclusive.\n")
		fmt.Fprintf(os.Stderr, "Without any of them, the output is written to <name>.fixed.<ext>.\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  fix-maxp broken.otf -o fixed.otf\n")
		fmt.Fprintf(os.Stderr, "  fix-maxp broken.otf -inplace -backup\n")
		fmt.Fprintf(os.Stderr, "  fix-maxp broken.otf -stdout > fixed.otf\n")
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	os.Exit(run(cfg, flag.Args()))
}

func run(cfg config, args []string) int {
	if len(args) != 1 {
		flag.Usage()
		return 2
	}
	input := args[0]

	numTargets := 0
	for _, set := range []bool{cfg.output != "", cfg.inplace, cfg.stdout} {
		if set {
			numTargets++
		}
	}
	if numTargets > 1 {
		fmt.Fprintln(os.Stderr, "Error: -o, -inplace and -stdout are mutually exclusive")
		return 2
	}

	var target maxpfix.Target
	switch {
	case cfg.inplace:
		target = maxpfix.InPlace{Backup: cfg.backup}
	case cfg.stdout:
		target = maxpfix.ToStream{W: os.Stdout}
	default:
		target = maxpfix.ToFile{Path: cfg.output}
	}

	res, err := maxpfix.RepairFile(input, target, cfg.force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var usage *maxpfix.UsageError
		if errors.As(err, &usage) {
			return 2
		}
		return 1
	}

	// In stdout mode only font bytes go to the standard output stream;
	// status reporting is suppressed entirely.
	if !cfg.quiet && !cfg.stdout {
		if res.BackupPath != "" {
			fmt.Fprintf(os.Stderr, "Backup created: %s\n", res.BackupPath)
		}
		status := "no change needed (maxp already present)"
		if res.Changed {
			status = "repaired (maxp inserted)"
		}
		fmt.Fprintf(os.Stderr, "%s: %s\n", status, res.OutPath)
	}

	return 0
}
