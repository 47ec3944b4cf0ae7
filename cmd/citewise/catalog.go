// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package main

import (
	"github.com/spf13/cobra"
)

func newAuthorsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "authors",
		Short: "List known authors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			index, err := c.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOut {
				return printJSON(cmd, map[string][]string{"authors": index.Authors()})
			}
			return printList(cmd.OutOrStdout(), "Authors", index.Authors(), "No authors.")
		},
	}
}

func newDOIsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "dois",
		Aliases: []string{"items"},
		Short:   "List every article cited by any author",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			index, err := c.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOut {
				return printJSON(cmd, map[string][]string{"dois": index.Items()})
			}
			return printList(cmd.OutOrStdout(), "Articles", index.Items(), "No articles.")
		},
	}
}
