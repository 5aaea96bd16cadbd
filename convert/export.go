package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"famchron/config"
	"famchron/gramps"
	"famchron/state"
)

// Export is the "export" command action: it saves loaded genealogy source as
// SQLite snapshot which later may be used as report source.
func Export(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("export")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		return errors.New("no destination has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	env.Overwrite = cmd.Bool("overwrite")

	log.Info("Export starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		if err == nil {
			log.Info("Export completed", zap.Duration("elapsed", time.Since(start)))
		}
	}(time.Now())

	return exportSnapshot(ctx, src, dst, env.Cfg.Source.Format, env.Overwrite, log)
}

func exportSnapshot(ctx context.Context, src, dst string, format config.SourceFmt, overwrite bool, log *zap.Logger) error {
	if src == dst {
		return fmt.Errorf("source and destination are the same file: %s", src)
	}

	db, err := LoadDatabase(ctx, src, format, log)
	if err != nil {
		return fmt.Errorf("unable to load genealogy source: %w", err)
	}
	if err := prepareOutput(dst, overwrite, log); err != nil {
		return err
	}
	if err := gramps.SaveSQLite(db, dst, log); err != nil {
		if er := os.Remove(dst); er != nil && !os.IsNotExist(er) {
			log.Warn("Unable to remove incomplete snapshot", zap.String("file", dst), zap.Error(er))
		}
		return err
	}

	env := state.EnvFromContext(ctx)
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("snapshot-%s%s", env.RunID, config.SourceFmtSqlite.Ext()), dst)
	}
	return nil
}
