// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

// Package main is the entry point for the citewise command line tool.
//
// Citewise recommends articles to an author from the citation history of every
// known author. Two fitted models score the articles an author has not cited
// yet: a neighborhood model (KNN with means) and a latent-factor model (biased
// matrix factorization). The combined recommendation is the union of each
// model's top half.
//
// # Startup
//
// Every command runs the same setup before doing its work:
//
//  1. Configuration: defaults, then an optional YAML file, then environment
//     variables (Koanf v2)
//  2. Logging: zerolog configured from the logging section, --log-level wins
//  3. Request ID: a fresh UUID attached to the command context and its logs
//
// Commands that recommend also load the citation index (JSON document or
// badger snapshot) and both models from the model store.
//
// # Commands
//
//	citewise authors                       list known authors
//	citewise dois                          list known articles
//	citewise recommend AUTHOR [-n 10]      combined recommendations
//	citewise knn AUTHOR [-n 5]             neighborhood model only
//	citewise mf AUTHOR [-n 5]              latent-factor model only
//	citewise models list                   model store contents
//	citewise models import knn|mf FILE     import exported model parameters
//	citewise models prune NAME [--keep 3]  drop old model versions
//	citewise snapshot import FILE          load citations into the snapshot
//	citewise snapshot info                 describe the current snapshot
//
// # Exit Codes
//
//   - 0: success
//   - 1: any failure other than an unknown author
//   - 2: the author is not in the citation index
//
// # Example Usage
//
//	export CITATIONS_PATH=data/author_dois.json
//	export MODELS_DIR=data/models
//	citewise models import knn exports/knn.json
//	citewise models import mf exports/mf.json
//	citewise recommend "Grace Hopper" -n 10
package main

import (
	"os"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
