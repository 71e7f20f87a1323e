// Package loss scores predicted observables against pinned targets with
// a weighted chi-square, treating deltaCP as a circular quantity.
package loss

import (
	"math"

	"github.com/phenofit/theta-star/go-fit/internal/ansatz"
	"github.com/phenofit/theta-star/go-fit/internal/targets"
)

// #region breakdown
// Breakdown is one chi-square evaluation split by domain, with
// per-observable contributions keyed as "pmns_<key>" / "ckm_<key>".
// NPMNS and NCKM count the target keys actually scored (the degrees of
// freedom reported downstream; they never enter the loss itself).
type Breakdown struct {
	Total float64
	PMNS  float64
	CKM   float64
	NPMNS int
	NCKM  int
	Terms map[string]float64
}

// #endregion breakdown

// #region angle-distance
// AngleDistance is the minimum-magnitude signed difference a-b on the
// circle, wrapped to (-pi, pi]. The naive linear difference would
// double-count chi-square near the 0/2pi boundary.
func AngleDistance(a, b float64) float64 {
	d := math.Mod(a-b, ansatz.Tau)
	if d > math.Pi {
		d -= ansatz.Tau
	} else if d <= -math.Pi {
		d += ansatz.Tau
	}
	return d
}

// #endregion angle-distance

// #region chi2
func chi2Term(pred float64, t targets.Target) float64 {
	r := (pred - t.Value) / t.Sigma
	return r * r
}

// PMNSChi2 scores predicted PMNS observables against one target set.
// Only keys present in both the prediction and the target set contribute.
func PMNSChi2(pred map[string]float64, set targets.TargetSet) (float64, int, map[string]float64) {
	chi2 := 0.0
	n := 0
	terms := make(map[string]float64, len(set))
	for _, key := range targets.PMNSKeys {
		t, ok := set[key]
		if !ok {
			continue
		}
		p, ok := pred[key]
		if !ok {
			continue
		}
		var c float64
		if key == "deltaCP" {
			r := AngleDistance(p, t.Value) / t.Sigma
			c = r * r
		} else {
			c = chi2Term(p, t)
		}
		chi2 += c
		n++
		terms["pmns_"+key] = c
	}
	return chi2, n, terms
}

// CKMChi2 scores predicted CKM observables against the CKM target set.
func CKMChi2(pred map[string]float64, set targets.TargetSet) (float64, int, map[string]float64) {
	chi2 := 0.0
	n := 0
	terms := make(map[string]float64, len(set))
	for _, key := range targets.CKMKeys {
		t, ok := set[key]
		if !ok {
			continue
		}
		p, ok := pred[key]
		if !ok {
			continue
		}
		c := chi2Term(p, t)
		chi2 += c
		n++
		terms["ckm_"+key] = c
	}
	return chi2, n, terms
}

// Joint combines the PMNS and CKM chi-squares; either sector can be
// switched off. Total is exactly PMNS + CKM.
func Joint(
	predPMNS, predCKM map[string]float64,
	tr *targets.Registry,
	ordering targets.Ordering,
	includePMNS, includeCKM bool,
) (Breakdown, error) {
	out := Breakdown{Terms: make(map[string]float64, 10)}

	if includePMNS {
		set, err := tr.PMNS(ordering)
		if err != nil {
			return Breakdown{}, err
		}
		chi2, n, terms := PMNSChi2(predPMNS, set)
		out.PMNS = chi2
		out.NPMNS = n
		for k, v := range terms {
			out.Terms[k] = v
		}
	}
	if includeCKM {
		chi2, n, terms := CKMChi2(predCKM, tr.CKM())
		out.CKM = chi2
		out.NCKM = n
		for k, v := range terms {
			out.Terms[k] = v
		}
	}

	out.Total = out.PMNS + out.CKM
	return out, nil
}

// #endregion chi2
