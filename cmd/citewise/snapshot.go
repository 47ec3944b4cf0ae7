// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/citewise/internal/citations"
)

func newSnapshotCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage the badger citation snapshot",
	}
	cmd.AddCommand(newSnapshotImportCmd(c), newSnapshotInfoCmd(c))
	return cmd
}

func (c *cli) openSnapshot() (*citations.Snapshot, func(), error) {
	snap, err := citations.OpenSnapshot(c.cfg.Data.SnapshotDir)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := snap.Close(); err != nil {
			c.logger.Error().Err(err).Msg("error closing snapshot")
		}
	}
	return snap, closeFn, nil
}

func newSnapshotImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the snapshot with an author to DOI JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			f, err := os.Open(path) //nolint:gosec // operator supplied path
			if err != nil {
				return fmt.Errorf("open citations: %w", err)
			}
			relation, err := citations.DecodeRelation(f)
			_ = f.Close() //nolint:errcheck // read-only file
			if err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}

			snap, closeFn, err := c.openSnapshot()
			if err != nil {
				return err
			}
			defer closeFn()

			info, err := snap.Import(cmd.Context(), relation, path)
			if err != nil {
				return fmt.Errorf("import snapshot: %w", err)
			}

			c.logger.Info().
				Str("dir", c.cfg.Data.SnapshotDir).
				Int("authors", info.Authors).
				Int("items", info.Items).
				Msg("snapshot imported")

			if c.jsonOut {
				return printJSON(cmd, info)
			}
			return printSuccess(cmd.OutOrStdout(), "Imported %d authors citing %d articles into %s",
				info.Authors, info.Items, c.cfg.Data.SnapshotDir)
		},
	}
}

func newSnapshotInfoCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Describe the current snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, closeFn, err := c.openSnapshot()
			if err != nil {
				return err
			}
			defer closeFn()

			info, err := snap.Info(cmd.Context())
			if err != nil {
				return fmt.Errorf("snapshot info: %w", err)
			}
			stored, err := snap.Count(cmd.Context())
			if err != nil {
				return err
			}
			if stored != info.Authors {
				c.logger.Warn().
					Int("recorded", info.Authors).
					Int("stored", stored).
					Msg("snapshot author count does not match its import record")
			}

			if c.jsonOut {
				return printJSON(cmd, info)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"AUTHORS", "ITEMS", "SOURCE", "IMPORTED", "GENERATION"},
				[][]string{{
					fmt.Sprint(stored),
					fmt.Sprint(info.Items),
					info.Source,
					formatTime(info.ImportedAt),
					fmt.Sprint(info.Generation),
				}},
			))
			return err
		},
	}
}
