package posterior

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/phenofit/theta-star/go-fit/internal/ansatz"
	"github.com/phenofit/theta-star/go-fit/internal/results"
	"github.com/phenofit/theta-star/go-fit/internal/sweep"
	"github.com/phenofit/theta-star/go-fit/internal/targets"
)

func TestQuantileLinearInterpolation(t *testing.T) {
	vals := []float64{4, 1, 3, 2} // sorted: 1 2 3 4

	if q := Quantile(vals, 0.0); q != 1.0 {
		t.Fatalf("q0 = %v, want 1", q)
	}
	if q := Quantile(vals, 1.0); q != 4.0 {
		t.Fatalf("q1 = %v, want 4", q)
	}
	// median of 4 values: rank 1.5 -> halfway between 2 and 3
	if q := Quantile(vals, 0.5); q != 2.5 {
		t.Fatalf("q50 = %v, want 2.5", q)
	}
	// rank (4-1)*0.16 = 0.48 -> 1 + 0.48*(2-1)
	if q := Quantile(vals, 0.16); math.Abs(q-1.48) > 1e-12 {
		t.Fatalf("q16 = %v, want 1.48", q)
	}
	if q := Quantile([]float64{7.5}, 0.84); q != 7.5 {
		t.Fatalf("single-value quantile = %v, want 7.5", q)
	}
}

func TestQuantileEmptyInput(t *testing.T) {
	if q := Quantile(nil, 0.5); !math.IsNaN(q) {
		t.Fatalf("quantile of empty input = %v, want NaN", q)
	}
	if q := Quantile([]float64{}, 0.0); !math.IsNaN(q) {
		t.Fatalf("quantile of empty slice = %v, want NaN", q)
	}
}

func syntheticRun() RunSamples {
	return RunSamples{
		RunID: "synthetic",
		Chi2:  []float64{10, 2, 8, 1, 50, 3, 7, 100, 5, 4},
		Theta: []float64{0.1, 1.0, 0.2, 2.0, 9.0, 3.0, 0.3, 9.9, 4.0, 5.0},
	}
}

func TestSummarizeCut(t *testing.T) {
	run := syntheticRun()
	s, kept, err := Summarize(run, 5.0)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.NTotal != 10 {
		t.Fatalf("n_total = %d, want 10", s.NTotal)
	}
	// chi2 <= 5: samples with chi2 {2,1,3,5,4} -> thetas {1,2,3,4,5}
	if s.NUsed != 5 || len(kept) != 5 {
		t.Fatalf("n_used = %d (kept %d), want 5", s.NUsed, len(kept))
	}
	if s.Chi2Min != 1.0 {
		t.Fatalf("chi2_min = %v, want 1", s.Chi2Min)
	}
	if s.ThetaQ50 != 3.0 {
		t.Fatalf("q50 = %v, want 3", s.ThetaQ50)
	}
}

func TestSummarizeNoSurvivors(t *testing.T) {
	run := syntheticRun()
	_, _, err := Summarize(run, 0.5)
	if !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got %v", err)
	}
}

func TestCutMonotonicity(t *testing.T) {
	run := syntheticRun()
	prev := 0
	for _, cut := range []float64{1, 2, 5, 10, 60, 1000} {
		s, _, err := Summarize(run, cut)
		if err != nil {
			t.Fatalf("cut %v: %v", cut, err)
		}
		if s.NUsed < prev {
			t.Fatalf("raising the cut to %v decreased n_used: %d -> %d", cut, prev, s.NUsed)
		}
		prev = s.NUsed
	}
}

func TestSummarizeDeltaCut(t *testing.T) {
	run := syntheticRun()
	s, _, err := SummarizeDelta(run, 2.0) // chi2 <= 1 + 2 = 3
	if err != nil {
		t.Fatalf("summarize delta: %v", err)
	}
	if s.NUsed != 3 {
		t.Fatalf("n_used = %d, want 3 (chi2 in {1,2,3})", s.NUsed)
	}
	if s.Chi2Max != 3.0 {
		t.Fatalf("effective cut = %v, want 3", s.Chi2Max)
	}
}

func TestCombineSingleRunMatchesSummarize(t *testing.T) {
	run := syntheticRun()
	s, _, err := Summarize(run, 8.0)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	g, err := Combine([]RunSamples{run}, 8.0)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	if g.NTotalUsed != s.NUsed {
		t.Fatalf("combine n = %d, summarize n = %d", g.NTotalUsed, s.NUsed)
	}
	if g.ThetaQ16 != s.ThetaQ16 || g.ThetaQ50 != s.ThetaQ50 || g.ThetaQ84 != s.ThetaQ84 {
		t.Fatalf("combine quantiles (%v, %v, %v) != summarize (%v, %v, %v)",
			g.ThetaQ16, g.ThetaQ50, g.ThetaQ84, s.ThetaQ16, s.ThetaQ50, s.ThetaQ84)
	}
}

func TestCombinePoolsProportionally(t *testing.T) {
	// Two runs at theta 1.0 and one at 2.0; pooled median must lean on
	// the larger run, not average the per-run medians.
	big := RunSamples{RunID: "big", Chi2: []float64{1, 1, 1}, Theta: []float64{1, 1, 1}}
	small := RunSamples{RunID: "small", Chi2: []float64{1}, Theta: []float64{2}}

	g, err := Combine([]RunSamples{big, small}, 5.0)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	if g.NTotalUsed != 4 {
		t.Fatalf("pooled n = %d, want 4", g.NTotalUsed)
	}
	if g.ThetaQ50 != 1.0 {
		t.Fatalf("pooled q50 = %v, want 1.0 (sample-proportional weighting)", g.ThetaQ50)
	}
}

func TestCombineSkipsFullyCutRuns(t *testing.T) {
	good := RunSamples{RunID: "good", Chi2: []float64{1, 2}, Theta: []float64{1, 2}}
	bad := RunSamples{RunID: "bad", Chi2: []float64{99}, Theta: []float64{9}}

	g, err := Combine([]RunSamples{good, bad}, 5.0)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	if g.NTotalUsed != 2 {
		t.Fatalf("pooled n = %d, want 2", g.NTotalUsed)
	}

	if _, err := Combine([]RunSamples{bad}, 5.0); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples when every run is cut, got %v", err)
	}
}

func TestLoadRunFallsBackToDeltaCP(t *testing.T) {
	base := t.TempDir()
	tr, err := targets.Load()
	if err != nil {
		t.Fatalf("load targets: %v", err)
	}
	reg, err := ansatz.NewRegistry(tr)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	// example_minimal has no p_theta_star column
	res, err := sweep.Run(reg, tr, sweep.Config{
		AnsatzName:  "example_minimal",
		Ordering:    targets.OrderingNO,
		Samples:     30,
		Seed:        2,
		IncludePMNS: true,
	})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if _, err := results.Write(base, "minimal_run", res); err != nil {
		t.Fatalf("write: %v", err)
	}

	run, err := LoadRun(base, "minimal_run")
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if len(run.Theta) != 30 || len(run.Chi2) != 30 {
		t.Fatalf("loaded %d/%d samples, want 30", len(run.Theta), len(run.Chi2))
	}
	if run.Theta[0] != res.Samples[0].PMNS["deltaCP"] {
		t.Fatalf("theta fallback = %v, want deltaCP %v", run.Theta[0], res.Samples[0].PMNS["deltaCP"])
	}
}

func TestExportShape(t *testing.T) {
	run := syntheticRun()
	s, _, err := Summarize(run, 8.0)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	g, err := Combine([]RunSamples{run}, 8.0)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}

	ex := BuildExport([]RunSummary{s}, g)
	if ex.ThetaFiducial != g.ThetaQ50 {
		t.Fatalf("fiducial = %v, want %v", ex.ThetaFiducial, g.ThetaQ50)
	}
	if ex.ThetaBand[0] != g.ThetaQ16 || ex.ThetaBand[1] != g.ThetaQ84 {
		t.Fatalf("band = %v, want [%v, %v]", ex.ThetaBand, g.ThetaQ16, g.ThetaQ84)
	}

	path := filepath.Join(t.TempDir(), "posterior.json")
	if err := WriteExport(path, ex); err != nil {
		t.Fatalf("write export: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var back Export
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if back.Global.NTotalUsed != g.NTotalUsed || len(back.PerRun) != 1 {
		t.Fatalf("export round trip mismatch: %+v", back)
	}
}
