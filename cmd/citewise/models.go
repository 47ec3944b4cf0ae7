// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/citewise/internal/oracle"
	"github.com/tomtom215/citewise/internal/recommend/storage"
)

func newModelsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage fitted models in the model store",
	}
	cmd.AddCommand(newModelsListCmd(c), newModelsImportCmd(c), newModelsPruneCmd(c))
	return cmd
}

func newModelsListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the latest version of every stored model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			models, err := store.ListModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("list models: %w", err)
			}

			if c.jsonOut {
				return printJSON(cmd, map[string][]storage.ModelMetadata{"models": models})
			}
			if len(models) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No models in "+store.Dir()))
				return err
			}

			rows := make([][]string, 0, len(models))
			for i := range models {
				m := &models[i]
				rows = append(rows, []string{
					m.Name,
					m.Kind,
					strconv.Itoa(m.Version),
					strconv.Itoa(m.AuthorCount),
					strconv.Itoa(m.ItemCount),
					strconv.Itoa(m.RatingCount),
					formatTime(m.TrainedAt),
					formatTime(m.SavedAt),
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"NAME", "KIND", "VERSION", "AUTHORS", "ITEMS", "RATINGS", "TRAINED", "SAVED"},
				rows,
			))
			return err
		},
	}
}

func newModelsImportCmd(c *cli) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import knn|mf FILE",
		Short: "Import exported model parameters as the next version",
		Long: `Reads the JSON export of a fitted model and stores it as the next version
of the model. The name defaults to the configured knn_name or mf_name.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{oracle.KindKNN, oracle.KindMF},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, path := args[0], args[1]
			if name == "" {
				switch kind {
				case oracle.KindKNN:
					name = c.cfg.Models.KNNName
				case oracle.KindMF:
					name = c.cfg.Models.MFName
				default:
					return fmt.Errorf("unknown model kind %q, want %s or %s", kind, oracle.KindKNN, oracle.KindMF)
				}
			}

			store, err := c.openStore()
			if err != nil {
				return err
			}

			f, err := os.Open(path) //nolint:gosec // operator supplied path
			if err != nil {
				return fmt.Errorf("open export: %w", err)
			}
			defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

			meta, err := oracle.Import(cmd.Context(), store, kind, name, f)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}

			c.logger.Info().
				Str("kind", kind).
				Str("name", meta.Name).
				Int("version", meta.Version).
				Str("checksum", meta.Checksum).
				Msg("model imported")

			if c.jsonOut {
				return printJSON(cmd, meta)
			}
			return printSuccess(cmd.OutOrStdout(), "Imported %s model %q as version %d (%d authors, %d items)",
				meta.Kind, meta.Name, meta.Version, meta.AuthorCount, meta.ItemCount)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "model name (default: configured name for the kind)")
	return cmd
}

func newModelsPruneCmd(c *cli) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune NAME",
		Short: "Delete all but the newest versions of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}

			removed, err := store.Prune(cmd.Context(), args[0], keep)
			if err != nil {
				return fmt.Errorf("prune %s: %w", args[0], err)
			}

			if c.jsonOut {
				return printJSON(cmd, map[string]interface{}{"name": args[0], "removed": removed})
			}
			if len(removed) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Nothing to prune."))
				return err
			}
			return printSuccess(cmd.OutOrStdout(), "Removed %d version(s) of %q: %v", len(removed), args[0], removed)
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 3, "number of newest versions to keep")
	return cmd
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
