// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/citewise/internal/config"
	"github.com/tomtom215/citewise/internal/logging"
	"github.com/tomtom215/citewise/internal/metrics"
	"github.com/tomtom215/citewise/internal/recommend"
)

const (
	exitOK            = 0
	exitFailure       = 1
	exitUnknownAuthor = 2
)

// cli carries flag values and the state built by setup.
type cli struct {
	configPath    string
	logLevel      string
	correlationID string
	jsonOut       bool

	cfg    *config.Config
	logger zerolog.Logger
}

// execute runs the command tree and maps the result to an exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{logger: zerolog.Nop()}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	c.writeMetrics()

	if err != nil {
		_, _ = fmt.Fprintln(stderr, errorStyle.Render("error: "+err.Error())) //nolint:errcheck // best effort
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, recommend.ErrUnknownAuthor):
		return exitUnknownAuthor
	default:
		return exitFailure
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "citewise",
		Short: "Recommend articles from citation history",
		Long: `Citewise recommends articles an author has not cited yet, ranked by a
neighborhood model and a latent-factor model fitted on the citation history
of every known author.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (overrides CONFIG_PATH)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&c.correlationID, "correlation-id", "", "correlation ID attached to every log line (default: generated)")
	flags.BoolVar(&c.jsonOut, "json", false, "output JSON")

	root.AddCommand(
		newAuthorsCmd(c),
		newDOIsCmd(c),
		newRecommendCmd(c),
		newKNNCmd(c),
		newMFCmd(c),
		newModelsCmd(c),
		newSnapshotCmd(c),
	)
	return root
}

// setup loads configuration, configures logging and attaches request and
// correlation IDs to the command context.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.configPath != "" {
		if _, err := os.Stat(c.configPath); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		if err := os.Setenv(config.ConfigPathEnvVar, c.configPath); err != nil {
			return fmt.Errorf("set %s: %w", config.ConfigPathEnvVar, err)
		}
	}

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		if !logging.ValidLevel(c.logLevel) {
			return fmt.Errorf("invalid --log-level %q", c.logLevel)
		}
		cfg.Logging.Level = c.logLevel
	}

	logCfg := cfg.LogConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logging.Init(logCfg)

	c.cfg = cfg
	correlationID := c.correlationID
	if correlationID == "" {
		correlationID = logging.GenerateCorrelationID()
	}
	ctx := logging.ContextWithNewRequestID(cmd.Context())
	ctx = logging.ContextWithCorrelationID(ctx, correlationID)
	ctx = logging.ContextWithLogger(ctx, logging.WithComponent("cli").With().
		Str("command", cmd.CommandPath()).
		Logger())
	c.logger = *logging.Ctx(ctx)
	cmd.SetContext(ctx)

	c.logger.Debug().
		Str("source", cfg.Data.Source).
		Str("models_dir", cfg.Models.Dir).
		Msg("configuration loaded")
	return nil
}

// writeMetrics dumps the default registry when a textfile path is configured.
func (c *cli) writeMetrics() {
	if c.cfg == nil || c.cfg.Metrics.TextfilePath == "" {
		return
	}
	if err := metrics.WriteTextfile(c.cfg.Metrics.TextfilePath); err != nil {
		c.logger.Warn().Err(err).Msg("failed to write metrics textfile")
	}
}
