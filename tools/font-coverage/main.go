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

// Font-coverage walks a directory tree and tabulates which GSUB/GPOS
// lookup types occur in the font files found there.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"seehuhn.de/go/fonttools/corpus"
	"seehuhn.de/go/fonttools/tools/internal/buildinfo"
	"seehuhn.de/go/fonttools/tools/internal/profile"
)

type config struct {
	maxExamples int
	verbose     bool
}

func main() {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile := flag.String("memprofile", "", "write memory profile to `file`")

	var cfg config
	flag.IntVar(&cfg.maxExamples, "n", 5, "number of example fonts to list per lookup type")
	flag.BoolVar(&cfg.verbose, "v", false, "list every skipped file with the reason")
	help := flag.Bool("help", false, "show help information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "font-coverage: tabulate GSUB/GPOS lookup type coverage of a font corpus\n")
		fmt.Fprintf(os.Stderr, "%s\n\n", buildinfo.Short("font-coverage"))
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  font-coverage [options] [root]\n\n")
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  root   directory to scan for .otf/.ttf/.ttc/.otc files (default \".\")\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(1)
	}
	root := "."
	if flag.NArg() == 1 {
		root = flag.Arg(0)
	}

	if err := run(cfg, root, *cpuprofile, *memprofile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config, root, cpuprofile, memprofile string) error {
	stop, err := profile.Start(cpuprofile, memprofile)
	if err != nil {
		return err
	}
	defer stop()

	idx, err := corpus.ScanDir(root)
	if err != nil {
		return err
	}

	err = idx.WriteReport(os.Stdout, cfg.maxExamples)
	if err != nil {
		return err
	}

	if n := len(idx.Skipped); n > 0 {
		fmt.Fprintf(os.Stderr, "%d files skipped\n", n)
		if cfg.verbose {
			for _, skip := range idx.Skipped {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", skip.Path, skip.Err)
			}
		} else {
			reasons := idx.SkipReasons()
			keys := maps.Keys(reasons)
			slices.Sort(keys)
			for _, reason := range keys {
				fmt.Fprintf(os.Stderr, "  %dx %s\n", reasons[reason], reason)
			}
		}
	}

	return nil
}
