// Package posterior summarizes theta_star over the good-chi-square
// region of one or more completed runs: cut filtering, quantile bands,
// and pooled combination across runs. Summaries are always recomputed
// from run artifacts and never feed back into fitting.
package posterior

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/phenofit/theta-star/go-fit/internal/results"
)

// ErrNoSamples marks a chi-square cut that leaves nothing to summarize.
var ErrNoSamples = errors.New("posterior: no samples pass the chi-square cut")

// #region types
// RunSamples is the slice of a run the summarizer needs: total
// chi-square and theta_star per sample, in sampling order.
type RunSamples struct {
	RunID string
	Chi2  []float64
	Theta []float64
}

// RunSummary is the per-run posterior window.
type RunSummary struct {
	RunID    string  `json:"run_id"`
	NTotal   int     `json:"n_total"`
	NUsed    int     `json:"n_used"`
	Chi2Min  float64 `json:"chi2_min"`
	Chi2Max  float64 `json:"chi2_max_cut"`
	ThetaQ16 float64 `json:"theta_q16"`
	ThetaQ50 float64 `json:"theta_q50"`
	ThetaQ84 float64 `json:"theta_q84"`
}

// GlobalSummary pools the filtered samples of several runs. Pooling is
// plain concatenation: a run contributes in proportion to how many
// samples it generated, not normalized to equal weight.
type GlobalSummary struct {
	NTotalUsed int     `json:"n_total_used"`
	Chi2Max    float64 `json:"chi2_max_cut"`
	ThetaQ16   float64 `json:"theta_q16"`
	ThetaQ50   float64 `json:"theta_q50"`
	ThetaQ84   float64 `json:"theta_q84"`
}

// #endregion types

// #region load
// LoadRun pulls the summarizer's columns out of a run's results table.
// Runs without an explicit theta_star parameter (example_minimal) fall
// back to the predicted deltaCP column.
func LoadRun(base, runID string) (RunSamples, error) {
	table, err := results.ReadTable(results.CSVPath(base, runID))
	if err != nil {
		return RunSamples{}, err
	}
	chi2, ok := table.Column("chi2_total")
	if !ok {
		return RunSamples{}, fmt.Errorf("run %s: results table has no chi2_total column", runID)
	}
	theta, ok := table.Column("p_theta_star")
	if !ok {
		theta, ok = table.Column("pmns_deltaCP")
	}
	if !ok {
		return RunSamples{}, fmt.Errorf("run %s: no p_theta_star or pmns_deltaCP column", runID)
	}
	return RunSamples{RunID: runID, Chi2: chi2, Theta: theta}, nil
}

// #endregion load

// #region quantile
// Quantile computes the p-th quantile with linear interpolation between
// order statistics at rank (n-1)*p. This is the documented rule for all
// posterior windows; results are bit-for-bit reproducible for a given
// filtered sample set. An empty input has no quantiles and yields NaN.
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)

	if len(s) == 1 {
		return s[0]
	}
	pos := p * float64(len(s)-1)
	lo := int(pos)
	if lo >= len(s)-1 {
		return s[len(s)-1]
	}
	frac := pos - float64(lo)
	return s[lo] + frac*(s[lo+1]-s[lo])
}

// #endregion quantile

// #region summarize
// filter returns the theta values of samples passing chi2 <= chi2Max,
// preserving sampling order, plus the run's chi2 minimum.
func filter(run RunSamples, chi2Max float64) ([]float64, float64) {
	chi2Min := run.Chi2[0]
	var kept []float64
	for i, c := range run.Chi2 {
		if c < chi2Min {
			chi2Min = c
		}
		if c <= chi2Max {
			kept = append(kept, run.Theta[i])
		}
	}
	return kept, chi2Min
}

// Summarize applies an absolute chi-square cut to one run and computes
// the {16, 50, 84}% theta_star quantiles over the survivors. The
// filtered theta values are returned for pooling.
func Summarize(run RunSamples, chi2Max float64) (RunSummary, []float64, error) {
	if len(run.Chi2) == 0 || len(run.Chi2) != len(run.Theta) {
		return RunSummary{}, nil, fmt.Errorf("run %s: malformed sample columns", run.RunID)
	}
	kept, chi2Min := filter(run, chi2Max)
	if len(kept) == 0 {
		return RunSummary{}, nil, fmt.Errorf("%w: run %s, chi2_max %g (chi2_min %.3f)",
			ErrNoSamples, run.RunID, chi2Max, chi2Min)
	}
	return RunSummary{
		RunID:    run.RunID,
		NTotal:   len(run.Chi2),
		NUsed:    len(kept),
		Chi2Min:  chi2Min,
		Chi2Max:  chi2Max,
		ThetaQ16: Quantile(kept, 0.16),
		ThetaQ50: Quantile(kept, 0.50),
		ThetaQ84: Quantile(kept, 0.84),
	}, kept, nil
}

// SummarizeDelta applies a relative cut chi2 <= chi2_min + deltaChi2,
// the approximate confidence-interval convention.
func SummarizeDelta(run RunSamples, deltaChi2 float64) (RunSummary, []float64, error) {
	if len(run.Chi2) == 0 {
		return RunSummary{}, nil, fmt.Errorf("run %s: no samples", run.RunID)
	}
	chi2Min := run.Chi2[0]
	for _, c := range run.Chi2 {
		if c < chi2Min {
			chi2Min = c
		}
	}
	return Summarize(run, chi2Min+deltaChi2)
}

// Combine pools the filtered subsets of several runs by concatenation
// and recomputes the quantiles over the union.
func Combine(runs []RunSamples, chi2Max float64) (GlobalSummary, error) {
	var pooled []float64
	for _, run := range runs {
		_, kept, err := Summarize(run, chi2Max)
		if err != nil {
			if errors.Is(err, ErrNoSamples) {
				continue // a run may be entirely above the cut
			}
			return GlobalSummary{}, err
		}
		pooled = append(pooled, kept...)
	}
	if len(pooled) == 0 {
		return GlobalSummary{}, fmt.Errorf("%w: %d runs, chi2_max %g", ErrNoSamples, len(runs), chi2Max)
	}
	return GlobalSummary{
		NTotalUsed: len(pooled),
		Chi2Max:    chi2Max,
		ThetaQ16:   Quantile(pooled, 0.16),
		ThetaQ50:   Quantile(pooled, 0.50),
		ThetaQ84:   Quantile(pooled, 0.84),
	}, nil
}

// #endregion summarize
