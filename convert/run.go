// Package convert implements program commands: loading genealogy sources and
// turning them into reports or snapshots.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"famchron/chronicle"
	"famchron/config"
	"famchron/docgen"
	"famchron/docgen/latex"
	"famchron/gramps"
	"famchron/state"
)

// Run is the "report" command action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("report")

	src, dst, err := sourceAndDestination(cmd, log)
	if err != nil {
		return err
	}

	rootID := strings.TrimSpace(cmd.String("person"))
	if rootID == "" {
		rootID = env.Cfg.Report.RootPerson
	}
	if rootID == "" {
		return errors.New("no root person has been specified")
	}

	format := env.Cfg.Source.Format
	if f := cmd.String("format"); len(f) > 0 {
		if format, err = config.ParseSourceFmt(f); err != nil {
			log.Warn("Unknown source format requested, detecting", zap.Error(err))
			format = config.SourceFmtAuto
		}
	}
	env.Overwrite = cmd.Bool("overwrite")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst),
		zap.String("person", rootID), zap.String("run", env.RunID))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	db, err := LoadDatabase(ctx, src, format, log)
	if err != nil {
		return fmt.Errorf("unable to load genealogy source: %w", err)
	}
	db.SetPlaceLevels(env.Cfg.Source.PlaceLevels)

	if env.Rpt != nil {
		env.Rpt.StoreData(fmt.Sprintf("database-%s.txt", env.RunID), []byte(db.String()))
	}
	return processReport(ctx, db, rootID, src, dst, log)
}

// sourceAndDestination returns absolute source file and destination
// directory from command arguments.
func sourceAndDestination(cmd *cli.Command, log *zap.Logger) (src, dst string, err error) {
	src = cmd.Args().Get(0)
	if len(src) == 0 {
		return "", "", errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return "", "", err
	}
	fi, err := os.Stat(src)
	if err != nil {
		return "", "", fmt.Errorf("input source was not found: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return "", "", fmt.Errorf("input source is not a regular file (%s)", src)
	}

	dst = cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return "", "", fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return "", "", err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	return src, dst, nil
}

// prepareOutput makes sure output file can be written: parent directory
// exists and old file is removed when overwriting is allowed.
func prepareOutput(name string, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
		return os.Remove(name)
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

var newDocument = func(cfg *config.DocumentConfig, log *zap.Logger) docgen.Document {
	return latex.New(cfg, log)
}

// processReport writes chronicle of root person descendants into a LaTeX
// file under dst. Panics from document protocol are turned into errors, the
// document is finalized on every path.
func processReport(ctx context.Context, db *gramps.Database, rootID, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	root := db.PersonFromID(rootID)
	if root == nil {
		return fmt.Errorf("%w: %q", chronicle.ErrUnknownPerson, rootID)
	}

	var (
		outputName string
		tables     int
	)

	log.Info("Report starting", zap.String("person", rootID), zap.String("name", strings.TrimSpace(root.Name.First+" "+root.Name.Surname)))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Report ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = multierr.Append(fmt.Errorf("report panic: %v", r), rerr)
		} else if rerr == nil {
			log.Info("Report completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.Int("tables", tables))
		}
	}(time.Now())

	outputName = buildOutputPath(root, src, dst, env)
	if err := prepareOutput(outputName, env.Overwrite, log); err != nil {
		return err
	}

	doc := newDocument(&env.Cfg.Document, log)
	if err := doc.Open(docgen.NewFileSink(outputName)); err != nil {
		return fmt.Errorf("unable to create output: %w", err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			rerr = multierr.Append(rerr, fmt.Errorf("unable to finalize output: %w", err))
		}
	}()

	chrono, err := chronicle.NewReport(db, &env.Cfg.Report, log).Generate(ctx, doc, rootID)
	if chrono != nil {
		tables = len(chrono.Entries)
		if env.Rpt != nil {
			env.Rpt.StoreData(fmt.Sprintf("chronology-%s.txt", env.RunID), []byte(chrono.String()))
		}
	}
	if err != nil {
		return fmt.Errorf("unable to generate report: %w", err)
	}

	// report file is complete only after document is closed
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s%s", rootID, filepath.Ext(outputName)), outputName)
	}
	return nil
}
