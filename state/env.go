// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"legacss/config"
	"legacss/legacy"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by extract subcommand
	NoColors       bool
	ContainersPath string

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

// ProcessingOptions combines configuration with command line overrides.
func (e *LocalEnv) ProcessingOptions() legacy.Options {
	var opts legacy.Options
	if e.Cfg != nil {
		opts.Colors = e.Cfg.Colors.Enable
	}
	if e.NoColors {
		opts.Colors = false
	}
	return opts
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
