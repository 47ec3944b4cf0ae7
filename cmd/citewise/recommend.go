// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/citewise/internal/metrics"
	"github.com/tomtom215/citewise/internal/recommend"
	"github.com/tomtom215/citewise/internal/validation"
)

// RecommendRequest is a validated recommendation request.
type RecommendRequest struct {
	Author  string `json:"author" validate:"required"`
	NumRecs int    `json:"num_recs" validate:"gte=0,lte=1000"`
}

// RecommendResponse is the --json output of the recommendation commands.
type RecommendResponse struct {
	Author          string   `json:"author"`
	Mode            string   `json:"mode"`
	NumRecs         int      `json:"num_recs"`
	Recommendations []string `json:"recommendations"`
}

// recommendFunc is one of the Recommender entry points.
type recommendFunc func(*recommend.Recommender) func(context.Context, string, int) ([]string, error)

type modeCommand struct {
	use     string
	short   string
	long    string
	mode    string
	flagDoc string
	defN    int
	cfgN    func(*cli) int
	run     recommendFunc
}

func newRecommendCmd(c *cli) *cobra.Command {
	return newRecommendCommand(c, modeCommand{
		use:   "recommend AUTHOR",
		short: "Recommend articles using both models",
		long: `Recommends articles AUTHOR has not cited yet. Each model contributes its
top n/2 articles and the union is returned, so the result may hold fewer than n
articles when the models agree.`,
		mode:    metrics.ModeCombined,
		flagDoc: "recommendation budget, split evenly between the models",
		defN:    recommend.DefaultNumRecs,
		cfgN:    func(c *cli) int { return c.cfg.Recommend.NumRecs },
		run: func(r *recommend.Recommender) func(context.Context, string, int) ([]string, error) {
			return r.Recommend
		},
	})
}

func newKNNCmd(c *cli) *cobra.Command {
	return newRecommendCommand(c, modeCommand{
		use:     "knn AUTHOR",
		short:   "Recommend articles using the neighborhood model only",
		mode:    metrics.ModeKNN,
		flagDoc: "number of recommendations",
		defN:    recommend.DefaultModelNumRecs,
		cfgN:    func(c *cli) int { return c.cfg.Recommend.ModelNumRecs },
		run: func(r *recommend.Recommender) func(context.Context, string, int) ([]string, error) {
			return r.KNNRecommend
		},
	})
}

func newMFCmd(c *cli) *cobra.Command {
	return newRecommendCommand(c, modeCommand{
		use:     "mf AUTHOR",
		short:   "Recommend articles using the latent-factor model only",
		mode:    metrics.ModeMF,
		flagDoc: "number of recommendations",
		defN:    recommend.DefaultModelNumRecs,
		cfgN:    func(c *cli) int { return c.cfg.Recommend.ModelNumRecs },
		run: func(r *recommend.Recommender) func(context.Context, string, int) ([]string, error) {
			return r.MFRecommend
		},
	})
}

func newRecommendCommand(c *cli, mc modeCommand) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   mc.use,
		Short: mc.short,
		Long:  mc.long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("num") {
				n = mc.cfgN(c)
			}
			return c.runRecommend(cmd, mc, RecommendRequest{Author: args[0], NumRecs: n})
		},
	}
	cmd.Flags().IntVarP(&n, "num", "n", mc.defN, mc.flagDoc)
	return cmd
}

func (c *cli) runRecommend(cmd *cobra.Command, mc modeCommand, req RecommendRequest) error {
	if err := validation.Validate(&req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	ctx := cmd.Context()
	rec, err := c.newRecommender(ctx)
	if err != nil {
		return err
	}

	items, err := mc.run(rec)(ctx, req.Author, req.NumRecs)
	if err != nil {
		return err
	}

	if c.jsonOut {
		return printJSON(cmd, RecommendResponse{
			Author:          req.Author,
			Mode:            mc.mode,
			NumRecs:         req.NumRecs,
			Recommendations: items,
		})
	}
	return printList(cmd.OutOrStdout(), "Recommendations for "+req.Author, items, "No recommendations.")
}
