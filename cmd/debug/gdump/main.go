// gdump loads genealogy source the same way famchron does and writes debug
// views of it: full database tree, place display table, chronology of a
// person descendants and SQLite snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"famchron/cmd/debug/internal/dumputil"
	"famchron/config"
	"famchron/convert"
)

func main() {
	all := flag.Bool("all", false, "enable all dump flags (-dump, -places, -sqlite), -person is still required for chronology")
	dump := flag.Bool("dump", false, "dump database tree into <file>-dump.txt")
	places := flag.Int("places", 0, "dump place names up to `N` hierarchy levels into <file>-places.txt")
	person := flag.String("person", "", "dump chronology of person `ID` descendants into <file>-<ID>-chronology.txt")
	offset := flag.Int("offset", 20, "generation offset in `YEARS` used for chronology")
	writeSqlite := flag.Bool("sqlite", false, "write SQLite snapshot to <file>.sqlite")
	format := flag.String("format", config.SourceFmtAuto.String(), "source `FORMAT` (auto, xml, sqlite)")
	verbose := flag.Bool("v", false, "log loading details")
	overwrite := flag.Bool("overwrite", false, "overwrite existing output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: gdump [-all] [-dump] [-places N] [-person ID] [-sqlite] [-format F] [-overwrite] <source> [outdir]\n\n")
		fmt.Fprintf(os.Stderr, "Reads Gramps XML, package, zip archive or snapshot and writes debug views of it.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}

	if *all {
		*dump = true
		*writeSqlite = true
		if *places == 0 {
			*places = 3
		}
	}

	if !*dump && *places == 0 && *person == "" && !*writeSqlite {
		flag.Usage()
		os.Exit(2)
	}

	defer func(startedAt time.Time) {
		fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", time.Since(startedAt))
	}(time.Now())

	inPath := flag.Arg(0)
	outDir := ""
	if flag.NArg() == 2 {
		outDir = flag.Arg(1)
	}

	srcFmt, err := config.ParseSourceFmt(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "source format: %v\n", err)
		os.Exit(2)
	}

	log := zap.NewNop()
	if *verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = log.Sync() }()
	}

	db, err := convert.LoadDatabase(context.Background(), inPath, srcFmt, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", inPath, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "loaded %s: %d people, %d families, %d events, %d places, %d notes\n", inPath,
		len(db.People()), len(db.Families()), len(db.Events()), len(db.Places()), len(db.Notes()))

	if *dump {
		if err := dumputil.DumpDatabase(db, inPath, outDir, *overwrite); err != nil {
			fmt.Fprintf(os.Stderr, "dump: %v\n", err)
			os.Exit(1)
		}
	}

	if *places > 0 {
		if err := dumputil.DumpPlaces(db, *places, inPath, outDir, *overwrite); err != nil {
			fmt.Fprintf(os.Stderr, "dump places: %v\n", err)
			os.Exit(1)
		}
	}

	if *person != "" {
		if err := dumputil.DumpChronology(db, *person, *offset, inPath, outDir, *overwrite, log); err != nil {
			fmt.Fprintf(os.Stderr, "dump chronology: %v\n", err)
			os.Exit(1)
		}
	}

	if *writeSqlite {
		if err := dumputil.WriteSnapshot(db, inPath, outDir, *overwrite, log); err != nil {
			fmt.Fprintf(os.Stderr, "write sqlite: %v\n", err)
			os.Exit(1)
		}
	}
}
