// Package cli implements the lanes command line tool.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/lanes/pkg/logger"
	"github.com/urfave/cli/v2"
)

const (
	inputFlag     = "input"
	outputFlag    = "output"
	logLevelFlag  = "log-level"
	stdoutCLIName = "-"
)

// Version is stamped at build time.
var Version = "v0.1.0-dev"

// New builds the lanes application.
func New() *cli.App {
	return &cli.App{
		Name:    "lanes",
		Usage:   "Rank swim times and assemble relay squads",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    logLevelFlag,
				Usage:   "debug, info, warn or error",
				Value:   "warn",
				EnvVars: []string{"LANES_LOG_LEVEL"},
			},
		},
		Before: func(cCtx *cli.Context) error {
			if err := logger.Init(logger.WithOutput(cCtx.App.ErrWriter)); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return logger.SetLevelString(cCtx.String(logLevelFlag))
		},
		Commands: []*cli.Command{
			convertCommand(),
			rankCommand(),
			pushCommand(),
		},
	}
}

// openOutput returns stdout for "-" and a created file otherwise.
func openOutput(cCtx *cli.Context, location string) (io.WriteCloser, error) {
	if location == "" || location == stdoutCLIName {
		return nopCloser{cCtx.App.Writer}, nil
	}
	f, err := os.OpenFile(location, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
