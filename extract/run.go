// Package extract implements command producing legacy-compatible stylesheets.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"legacss/css"
	"legacss/legacy"
	"legacss/state"
	"legacss/utils/debug"
)

// ErrFileNotFound is returned when input stylesheet does not exist.
var ErrFileNotFound = errors.New("input stylesheet not found")

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("extract")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		src = env.Cfg.Extract.Input
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		dst = env.Cfg.Extract.Output
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoColors = cmd.Bool("no-colors")
	env.ContainersPath = cmd.String("containers")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, env, log)
}

// process handles the core extraction logic independently of CLI framework.
func process(ctx context.Context, src, dst string, env *state.LocalEnv, log *zap.Logger) error {
	data, enc, err := readStylesheet(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, src)
		}
		return fmt.Errorf("unable to read input stylesheet: %w", err)
	}
	log.Debug("Input loaded", zap.String("encoding", enc), zap.Int("size", len(data)))
	if err := env.Rpt.StoreCopy("input.css", src); err != nil {
		log.Warn("Unable to store input in the report", zap.Error(err))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	root, err := css.NewParser(log).Parse(data, src)
	if err != nil {
		if css.IsParseError(err) {
			log.Error("Input is not a well formed stylesheet", zap.String("source", src), zap.Error(err))
		}
		return fmt.Errorf("unable to parse input stylesheet: %w", err)
	}
	log.Debug("Input parsed", zap.Int("nodes", root.Len()))

	res := legacy.NewProcessor(log, env.ProcessingOptions()).Process(root)
	if len(res.Layers) == 0 {
		log.Warn("No cascade layers found in input, output will be empty", zap.String("source", src))
	} else {
		log.Info("Layers flattened", zap.Strings("layers", res.Layers))
	}
	if env.Rpt != nil {
		env.Rpt.StoreData("base-tree.txt", []byte(debug.DumpTree(res.Base)))
		env.Rpt.StoreData("containers-tree.txt", []byte(debug.DumpTree(res.Containers)))
	}

	base := legacy.FinalizeText(res.Base.String())
	containers := legacy.FinalizeText(res.Containers.String())

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	// final text passes through textual repairs, make sure result is still
	// a stylesheet, stray quotes are not tolerated here
	if _, err := css.NewParser(log, css.StrictStrings()).Parse([]byte(base), dst); err != nil {
		invalid := InvalidPath(dst, env.Cfg.Extract.InvalidSuffix)
		if werr := os.WriteFile(invalid, []byte(base), 0644); werr != nil {
			log.Error("Unable to save invalid output", zap.String("file", invalid), zap.Error(werr))
		} else {
			env.Rpt.Store("invalid.css", invalid)
			log.Error("Output failed validation, saved for inspection", zap.String("file", invalid))
		}
		return fmt.Errorf("produced stylesheet is not valid: %w", err)
	}

	cnt, err := containersDestination(dst, env, log)
	if err != nil {
		return err
	}

	if err := os.WriteFile(dst, []byte(base), 0644); err != nil {
		return fmt.Errorf("unable to write base stylesheet: %w", err)
	}
	env.Rpt.Store("output.css", dst)
	if err := os.WriteFile(cnt, []byte(containers), 0644); err != nil {
		return fmt.Errorf("unable to write container stylesheet: %w", err)
	}
	env.Rpt.Store("containers.css", cnt)

	log.Info("Stylesheets written",
		zap.String("base", dst),
		zap.Int("base rules", res.Base.Len()),
		zap.String("containers", cnt),
		zap.Int("container rules", res.Containers.Len()),
	)
	return nil
}

// containersDestination selects where container rules go: command line,
// configured template or name derived from base output.
func containersDestination(dst string, env *state.LocalEnv, log *zap.Logger) (string, error) {
	if len(env.ContainersPath) > 0 {
		return filepath.Abs(env.ContainersPath)
	}
	cfg := env.Cfg.Extract.Containers
	if len(cfg.Template) > 0 {
		name, err := expandContainersTemplate(cfg.Template, dst)
		if err == nil {
			return name, nil
		}
		log.Warn("Unable to expand containers template, using default name", zap.String("template", cfg.Template), zap.Error(err))
	}
	return ContainersPath(dst, cfg), nil
}
