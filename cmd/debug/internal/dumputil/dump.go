// Package dumputil writes debug views of genealogy databases next to the
// source file.
package dumputil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"famchron/chronicle"
	"famchron/gramps"
	"famchron/utils/debug"
)

// OutputPath returns <stem><suffix> in either the input file's directory or
// outDir.
func OutputPath(inPath, outDir, suffix string) string {
	base := filepath.Base(inPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Dir(inPath)
	if outDir != "" {
		dir = outDir
	}
	return filepath.Join(dir, stem+suffix)
}

func checkOutput(outPath string, overwrite bool) error {
	if _, err := os.Stat(outPath); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s (use -overwrite)", outPath)
		}
		return os.Remove(outPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// WriteOutput writes data to <stem><suffix> in either the input file's directory or outDir.
func WriteOutput(inPath, outDir, suffix string, data []byte, overwrite bool) error {
	outPath := OutputPath(inPath, outDir, suffix)
	if err := checkOutput(outPath, overwrite); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	return nil
}

// DumpDatabase writes full database tree into <stem>-dump.txt.
func DumpDatabase(db *gramps.Database, inPath, outDir string, overwrite bool) error {
	return WriteOutput(inPath, outDir, "-dump.txt", []byte(db.String()), overwrite)
}

// PlacesString lists every place with its display text for each hierarchy
// depth up to levels, ordered by Gramps ID.
func PlacesString(db *gramps.Database, levels int) string {
	places := db.Places()
	sort.SliceStable(places, func(i, j int) bool {
		return natural.Less(places[i].ID, places[j].ID)
	})

	defer db.SetPlaceLevels(db.PlaceLevels())

	tw := debug.NewTreeWriter()
	tw.Line(0, "Places count=%d", len(places))
	for _, p := range places {
		tw.Line(1, "Place %s", p.ID)
		for l := 1; l <= levels; l++ {
			db.SetPlaceLevels(l)
			tw.Field(2, fmt.Sprintf("level %d", l), db.PlaceDisplay(p, gramps.Date{}), true)
		}
	}
	return tw.String()
}

// DumpPlaces writes place display table into <stem>-places.txt.
func DumpPlaces(db *gramps.Database, levels int, inPath, outDir string, overwrite bool) error {
	return WriteOutput(inPath, outDir, "-places.txt", []byte(PlacesString(db, levels)), overwrite)
}

// DumpChronology writes chronology of root person descendants into
// <stem>-<id>-chronology.txt.
func DumpChronology(db *gramps.Database, rootID string, generationOffset int, inPath, outDir string, overwrite bool, log *zap.Logger) error {
	root := db.PersonFromID(rootID)
	if root == nil {
		return fmt.Errorf("%w: %q", chronicle.ErrUnknownPerson, rootID)
	}
	chrono := chronicle.NewCollector(db, chronicle.NewResolver(db, log), generationOffset, log).Collect(root)
	return WriteOutput(inPath, outDir, "-"+rootID+"-chronology.txt", []byte(chrono.String()), overwrite)
}

// WriteSnapshot saves database into <stem>.sqlite.
func WriteSnapshot(db *gramps.Database, inPath, outDir string, overwrite bool, log *zap.Logger) error {
	outPath := OutputPath(inPath, outDir, ".sqlite")
	if outPath == inPath {
		return fmt.Errorf("snapshot would replace source: %s", inPath)
	}
	if err := checkOutput(outPath, overwrite); err != nil {
		return err
	}
	if err := gramps.SaveSQLite(db, outPath, log); err != nil {
		if er := os.Remove(outPath); er != nil && !errors.Is(er, os.ErrNotExist) {
			err = errors.Join(err, er)
		}
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	return nil
}
