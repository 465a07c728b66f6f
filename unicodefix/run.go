package unicodefix

import (
	"context"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"legacss/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("escape-unicode")

	dir := cmd.Args().Get(0)
	if len(dir) == 0 {
		dir = env.Cfg.Unicode.Dir
	}
	if dir, err = filepath.Abs(dir); err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many directories", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	e, err := NewEscaper(env.Log, env.Cfg.Unicode)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("dir", dir), zap.Strings("extensions", env.Cfg.Unicode.Extensions))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	changed, err := e.Dir(ctx, dir)
	log.Info("Files updated", zap.Int("count", changed))
	return err
}
