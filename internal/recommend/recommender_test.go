// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package recommend

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/citewise/internal/citations"
	"github.com/tomtom215/citewise/internal/logging"
	"github.com/tomtom215/citewise/internal/metrics"
	"github.com/tomtom215/citewise/internal/oracle"
)

// constOracle gives every item the same score, so ranking falls back to item ID.
func constOracle(name string) oracle.Oracle {
	return oracle.Func{ID: name, Fn: func(context.Context, string, string) (float64, error) { return 1, nil }}
}

// rankOracle scores items by their position in order, first highest.
func rankOracle(name string, order ...string) oracle.Oracle {
	scores := make(map[string]float64, len(order))
	for i, item := range order {
		scores[item] = float64(len(order) - i)
	}
	return newTableOracle(name, scores)
}

func smallIndex() *citations.Index {
	return citations.NewIndex(map[string][]string{
		"A": {"d1", "d2"},
		"B": {"d2", "d3"},
	})
}

func largeIndex() *citations.Index {
	return citations.NewIndex(map[string][]string{
		"A": {"d0"},
		"B": {"d1", "d2", "d3", "d4", "d5", "d6", "d7", "d8", "d9", "d10"},
		"C": {"d0", "d1", "d2", "d3", "d4", "d5", "d6", "d7", "d8", "d9", "d10"},
	})
}

func TestKNNRecommend_PoolSmallerThanN(t *testing.T) {
	t.Parallel()

	knn := oracle.Func{ID: "knn", Fn: func(_ context.Context, author, item string) (float64, error) {
		if author == "A" && item == "d3" {
			return 0.9, nil
		}
		return 0, nil
	}}
	rec := New(smallIndex(), knn, constOracle("mf"))

	got, err := rec.KNNRecommend(context.Background(), "A", DefaultModelNumRecs)
	if err != nil {
		t.Fatalf("KNNRecommend() error = %v", err)
	}
	if want := []string{"d3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("KNNRecommend() = %v, want %v", got, want)
	}
}

func TestRecommend_UnionOfIdenticalSets(t *testing.T) {
	t.Parallel()

	order := []string{"d1", "d2", "d3", "d4", "d5", "d6", "d7", "d8", "d9", "d10"}
	rec := New(largeIndex(), rankOracle("knn", order...), rankOracle("mf", order...))

	got, err := rec.Recommend(context.Background(), "A", 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if want := []string{"d1", "d2", "d3", "d4", "d5"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend() = %v, want %v", got, want)
	}
}

func TestRecommend_DisjointHalves(t *testing.T) {
	t.Parallel()

	knn := rankOracle("knn", "d1", "d2", "d3", "d4", "d5", "d6", "d7", "d8", "d9", "d10")
	mf := rankOracle("mf", "d10", "d9", "d8", "d7", "d6", "d5", "d4", "d3", "d2", "d1")
	rec := New(largeIndex(), knn, mf)

	got, err := rec.Recommend(context.Background(), "A", 6)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if want := []string{"d1", "d10", "d2", "d3", "d8", "d9"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend() = %v, want %v", got, want)
	}
}

func TestRecommend_OddBudgetIsFloored(t *testing.T) {
	t.Parallel()

	knn := rankOracle("knn", "d1", "d2", "d3")
	mf := rankOracle("mf", "d4", "d5", "d6")
	rec := New(largeIndex(), knn, mf)

	tests := []struct {
		numRecs int
		want    []string
	}{
		{0, []string{}},
		{1, []string{}},
		{3, []string{"d1", "d4"}},
		{5, []string{"d1", "d2", "d4", "d5"}},
	}
	for _, tt := range tests {
		got, err := rec.Recommend(context.Background(), "A", tt.numRecs)
		if err != nil {
			t.Fatalf("Recommend(%d) error = %v", tt.numRecs, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Recommend(%d) = %v, want %v", tt.numRecs, got, tt.want)
		}
	}
}

func TestRecommend_AuthorCitedEverything(t *testing.T) {
	t.Parallel()

	rec := New(largeIndex(), constOracle("knn"), constOracle("mf"))
	ctx := context.Background()

	for _, n := range []int{1, 2, 10, 100} {
		got, err := rec.Recommend(ctx, "C", n)
		if err != nil {
			t.Fatalf("Recommend(%d) error = %v", n, err)
		}
		if len(got) != 0 {
			t.Errorf("Recommend(%d) = %v, want empty", n, got)
		}
	}
	for name, fn := range map[string]func(context.Context, string, int) ([]string, error){
		"knn": rec.KNNRecommend,
		"mf":  rec.MFRecommend,
	} {
		got, err := fn(ctx, "C", DefaultModelNumRecs)
		if err != nil || len(got) != 0 {
			t.Errorf("%s = %v, %v, want empty", name, got, err)
		}
	}
}

func TestRecommend_NeverReturnsCitedItems(t *testing.T) {
	t.Parallel()

	index := largeIndex()
	rec := New(index, constOracle("knn"), constOracle("mf"))
	ctx := context.Background()

	for _, author := range index.Authors() {
		cited, err := index.CitedItems(author)
		if err != nil {
			t.Fatalf("CitedItems(%s) error = %v", author, err)
		}
		citedSet := make(map[string]bool, len(cited))
		for _, item := range cited {
			citedSet[item] = true
		}

		for n := 0; n <= 14; n++ {
			got, err := rec.Recommend(ctx, author, n)
			if err != nil {
				t.Fatalf("Recommend(%s, %d) error = %v", author, n, err)
			}
			if len(got) > n {
				t.Errorf("Recommend(%s, %d) returned %d items", author, n, len(got))
			}
			for _, item := range got {
				if citedSet[item] {
					t.Errorf("Recommend(%s, %d) includes cited item %s", author, n, item)
				}
			}
		}
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	t.Parallel()

	rec := New(largeIndex(), constOracle("knn"), rankOracle("mf", "d9", "d7", "d5"))
	ctx := context.Background()

	first, err := rec.Recommend(ctx, "A", 6)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for i := 0; i < 20; i++ {
		got, err := rec.Recommend(ctx, "A", 6)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("Recommend() = %v, previously %v", got, first)
		}
	}
}

func TestRecommend_UnknownAuthor(t *testing.T) {
	t.Parallel()

	knn := newTableOracle("knn", nil)
	mf := newTableOracle("mf", nil)
	index := smallIndex()
	rec := New(index, knn, mf)
	ctx := context.Background()

	entryPoints := map[string]func(context.Context, string, int) ([]string, error){
		"recommend": rec.Recommend,
		"knn":       rec.KNNRecommend,
		"mf":        rec.MFRecommend,
	}
	for name, fn := range entryPoints {
		if _, err := fn(ctx, "Nobody", 5); !errors.Is(err, ErrUnknownAuthor) {
			t.Errorf("%s error = %v, want ErrUnknownAuthor", name, err)
		}
	}

	if knn.calls.Load() != 0 || mf.calls.Load() != 0 {
		t.Error("oracles must not be called for an unknown author")
	}
	if !reflect.DeepEqual(index.Authors(), []string{"A", "B"}) {
		t.Errorf("index changed: authors = %v", index.Authors())
	}
}

func TestRecommend_OracleFailurePropagates(t *testing.T) {
	t.Parallel()

	errModel := errors.New("model state corrupt")
	broken := oracle.Func{ID: "mf", Fn: func(context.Context, string, string) (float64, error) {
		return 0, errModel
	}}
	rec := New(largeIndex(), constOracle("knn"), broken)
	ctx := context.Background()

	_, err := rec.Recommend(ctx, "A", 10)
	if !errors.Is(err, errModel) {
		t.Fatalf("Recommend() error = %v, want the oracle error", err)
	}
	var oracleErr *OracleError
	if !errors.As(err, &oracleErr) || oracleErr.Oracle != "mf" {
		t.Errorf("Recommend() error = %v, want *OracleError from mf", err)
	}

	if _, err := rec.MFRecommend(ctx, "A", 5); !errors.Is(err, errModel) {
		t.Errorf("MFRecommend() error = %v, want the oracle error", err)
	}
	if got, err := rec.KNNRecommend(ctx, "A", 5); err != nil || len(got) != 5 {
		t.Errorf("KNNRecommend() = %v, %v, want 5 items", got, err)
	}
}

func TestRecommend_NegativeCount(t *testing.T) {
	t.Parallel()

	rec := New(smallIndex(), constOracle("knn"), constOracle("mf"))
	for name, fn := range map[string]func(context.Context, string, int) ([]string, error){
		"recommend": rec.Recommend,
		"knn":       rec.KNNRecommend,
		"mf":        rec.MFRecommend,
	} {
		if _, err := fn(context.Background(), "A", -2); !errors.Is(err, ErrInvalidCount) {
			t.Errorf("%s error = %v, want ErrInvalidCount", name, err)
		}
	}
}

func TestRecommend_UnknownAuthorCheckedBeforeCount(t *testing.T) {
	t.Parallel()

	rec := New(smallIndex(), constOracle("knn"), constOracle("mf"))
	for name, fn := range map[string]func(context.Context, string, int) ([]string, error){
		"recommend": rec.Recommend,
		"knn":       rec.KNNRecommend,
		"mf":        rec.MFRecommend,
	} {
		_, err := fn(context.Background(), "Z", -1)
		if !errors.Is(err, ErrUnknownAuthor) {
			t.Errorf("%s error = %v, want ErrUnknownAuthor", name, err)
		}
		if errors.Is(err, ErrInvalidCount) {
			t.Errorf("%s error = %v, must not report the count", name, err)
		}
	}
}

func TestRecommend_Concurrent(t *testing.T) {
	t.Parallel()

	rec := New(largeIndex(), rankOracle("knn", "d1", "d2", "d3"), rankOracle("mf", "d3", "d4", "d5"))
	want := []string{"d1", "d2", "d3", "d4"}

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := rec.Recommend(context.Background(), "A", 4)
			if err != nil || !reflect.DeepEqual(got, want) {
				errs <- "unexpected result"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}

func TestRecommender_AuthorsAndItems(t *testing.T) {
	t.Parallel()

	rec := New(smallIndex(), constOracle("knn"), constOracle("mf"))
	if got := rec.Authors(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Authors() = %v", got)
	}
	if got := rec.Items(); !reflect.DeepEqual(got, []string{"d1", "d2", "d3"}) {
		t.Errorf("Items() = %v", got)
	}
}

func TestRecommend_LogsRequestFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewTestLogger(&buf)
	broken := oracle.Func{ID: "knn", Fn: func(context.Context, string, string) (float64, error) {
		return 0, errors.New("missing factors")
	}}
	rec := New(smallIndex(), broken, constOracle("mf"), WithLogger(logger))

	ctx := logging.ContextWithRequestID(context.Background(), "req-123")
	ctx = logging.ContextWithCorrelationID(ctx, "corr9876")
	if _, err := rec.KNNRecommend(ctx, "A", 1); err == nil {
		t.Fatal("KNNRecommend() expected error")
	}

	out := buf.String()
	for _, want := range []string{`"request_id":"req-123"`, `"correlation_id":"corr9876"`, `"mode":"knn"`, `"author":"A"`, "recommendation failed", "missing factors"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

func TestRecommend_RecordsOutcomeMetrics(t *testing.T) {
	rec := New(smallIndex(), constOracle("knn"), constOracle("mf"))
	ctx := context.Background()

	ok := metrics.RecommendRequests.WithLabelValues(metrics.ModeMF, metrics.OutcomeOK)
	unknown := metrics.RecommendRequests.WithLabelValues(metrics.ModeMF, metrics.OutcomeUnknownAuthor)
	beforeOK := testutil.ToFloat64(ok)
	beforeUnknown := testutil.ToFloat64(unknown)

	if _, err := rec.MFRecommend(ctx, "A", 1); err != nil {
		t.Fatalf("MFRecommend() error = %v", err)
	}
	_, _ = rec.MFRecommend(ctx, "Nobody", 1)

	if delta := testutil.ToFloat64(ok) - beforeOK; delta != 1 {
		t.Errorf("ok delta = %v, want 1", delta)
	}
	if delta := testutil.ToFloat64(unknown) - beforeUnknown; delta != 1 {
		t.Errorf("unknown_author delta = %v, want 1", delta)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, metrics.OutcomeOK},
		{"unknown author", citations.ErrUnknownAuthor, metrics.OutcomeUnknownAuthor},
		{"oracle", &OracleError{Err: errors.New("x")}, metrics.OutcomeOracleError},
		{"invalid", ErrInvalidCount, metrics.OutcomeInvalid},
		{"canceled", context.Canceled, metrics.OutcomeCanceled},
	}
	for _, tt := range tests {
		if got := classify(tt.err); got != tt.want {
			t.Errorf("classify(%s) = %s, want %s", tt.name, got, tt.want)
		}
	}
}
