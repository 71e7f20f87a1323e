// Package sweep draws random parameter vectors for one ansatz, scores
// each against the targets, and tracks the best-fit sample. Pure random
// search: no gradient or acceptance step, so the sample density is not
// biased toward any chi-square basin.
package sweep

import (
	"fmt"
	"math/rand"

	"github.com/phenofit/theta-star/go-fit/internal/ansatz"
	"github.com/phenofit/theta-star/go-fit/internal/loss"
	"github.com/phenofit/theta-star/go-fit/internal/targets"
)

// #region config
// Config fully determines a sweep. Identical configs reproduce identical
// sample sequences and best-fit records.
type Config struct {
	AnsatzName  string
	Ordering    targets.Ordering
	Samples     int
	Seed        int64
	IncludePMNS bool
	IncludeCKM  bool
}

// Domains names the scored sectors for run metadata.
func (c Config) Domains() string {
	switch {
	case c.IncludePMNS && c.IncludeCKM:
		return "joint"
	case c.IncludePMNS:
		return "pmns"
	case c.IncludeCKM:
		return "ckm"
	default:
		return "none"
	}
}

// #endregion config

// #region records
// Sample is one scored draw. Records are append-only; Index is the draw
// order under the seeded generator.
type Sample struct {
	Index  int
	Params ansatz.Params
	PMNS   map[string]float64
	CKM    map[string]float64
	Loss   loss.Breakdown
}

// Result is a completed sweep: the full ordered sample sequence plus the
// index of the global chi-square minimum (first occurrence on ties).
type Result struct {
	Config     Config
	ParamOrder []string
	Samples    []Sample
	BestIndex  int
}

// Best returns the best-fit sample record.
func (r *Result) Best() Sample {
	return r.Samples[r.BestIndex]
}

// #endregion records

// #region run
// Run executes one sweep to completion. The generator is owned by this
// call and seeded explicitly, so separate sweeps never interfere.
func Run(reg *ansatz.Registry, tr *targets.Registry, cfg Config) (*Result, error) {
	if cfg.Samples <= 0 {
		return nil, fmt.Errorf("sweep: samples must be positive, got %d", cfg.Samples)
	}
	if !cfg.IncludePMNS && !cfg.IncludeCKM {
		return nil, fmt.Errorf("sweep: at least one of pmns/ckm must be scored")
	}

	a, err := reg.Get(cfg.AnsatzName)
	if err != nil {
		return nil, err
	}
	bounds, err := a.ParamBounds(cfg.Ordering)
	if err != nil {
		return nil, err
	}
	paramOrder := a.ParamNames()

	rng := rand.New(rand.NewSource(cfg.Seed))

	res := &Result{
		Config:     cfg,
		ParamOrder: paramOrder,
		Samples:    make([]Sample, 0, cfg.Samples),
		BestIndex:  0,
	}

	bestChi2 := 0.0
	for i := 0; i < cfg.Samples; i++ {
		params := drawParams(paramOrder, bounds, rng)

		predPMNS, err := a.PredictPMNS(params, cfg.Ordering)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		predCKM, err := a.PredictCKM(params)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}

		lb, err := loss.Joint(predPMNS, predCKM, tr, cfg.Ordering, cfg.IncludePMNS, cfg.IncludeCKM)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}

		res.Samples = append(res.Samples, Sample{
			Index:  i,
			Params: params,
			PMNS:   predPMNS,
			CKM:    predCKM,
			Loss:   lb,
		})

		// strict < keeps the earliest sample on exact ties
		if i == 0 || lb.Total < bestChi2 {
			bestChi2 = lb.Total
			res.BestIndex = i
		}
	}

	return res, nil
}

// drawParams samples each parameter uniformly from its [lo, hi) bound,
// in declared order. The fixed order is what makes a seed reproducible:
// map iteration would reshuffle the generator stream between runs.
func drawParams(order []string, bounds map[string]ansatz.Bounds, rng *rand.Rand) ansatz.Params {
	params := make(ansatz.Params, len(order))
	for _, name := range order {
		b := bounds[name]
		params[name] = b.Lo + (b.Hi-b.Lo)*rng.Float64()
	}
	return params
}

// #endregion run
