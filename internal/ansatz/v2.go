package ansatz

import (
	"math"

	"github.com/phenofit/theta-star/go-fit/internal/targets"
)

// thetaStarV2RefPhase anchors the coherent modulation so the central PMNS
// point is recovered near theta_star ~ 4.0 rad, inside the core band.
const thetaStarV2RefPhase = 4.0

// #region theta-star-v2
// thetaStarV2 is the tighter variant: one global amplitude eps_angle
// shifts all three mixing angles coherently in units of their 1-sigma
// uncertainties, and k_mass applies a fractional mass shift modulated by
// the same cos(theta_star - theta0) phase.
type thetaStarV2 struct {
	tr    *targets.Registry
	names []string
}

func newThetaStarV2(tr *targets.Registry) *thetaStarV2 {
	names := []string{"theta_star", "eps_angle", "k_mass"}
	names = append(names, targets.CKMKeys...)
	return &thetaStarV2{tr: tr, names: names}
}

func (a *thetaStarV2) Name() string { return "theta_star_v2" }

func (a *thetaStarV2) ParamNames() []string { return a.names }

func (a *thetaStarV2) ParamBounds(ordering targets.Ordering) (map[string]Bounds, error) {
	if _, err := a.tr.PMNS(ordering); err != nil {
		return nil, err
	}
	bounds := map[string]Bounds{
		"theta_star": {Lo: 0.0, Hi: Tau},
		// eps_angle is in units of 1 sigma: up to ~0.7 sigma coherent
		// shifts of all three angles.
		"eps_angle": {Lo: -0.7, Hi: 0.7},
		"k_mass":    {Lo: -0.3, Hi: 0.3},
	}
	for key, b := range ckmBounds(a.tr.CKM()) {
		bounds[key] = b
	}
	return bounds, nil
}

func (a *thetaStarV2) PredictPMNS(params Params, ordering targets.Ordering) (map[string]float64, error) {
	pmns, err := a.tr.PMNS(ordering)
	if err != nil {
		return nil, err
	}
	bounds, err := a.ParamBounds(ordering)
	if err != nil {
		return nil, err
	}
	if err := checkParams(params, bounds); err != nil {
		return nil, err
	}

	thetaStar, ok := params["theta_star"]
	if !ok {
		thetaStar = pmns["deltaCP"].Value
	}
	epsAngle := params["eps_angle"]
	kMass := params["k_mass"]

	out := make(map[string]float64, len(targets.PMNSKeys))
	out["deltaCP"] = thetaStar

	c := math.Cos(thetaStar - thetaStarV2RefPhase)

	s12t := pmns["s12_2"]
	s13t := pmns["s13_2"]
	s23t := pmns["s23_2"]

	out["s12_2"] = clip(s12t.Value+epsAngle*s12t.Sigma*c, 0.0, 1.0)
	out["s13_2"] = clip(s13t.Value+epsAngle*s13t.Sigma*c, 0.0, 1.0)
	out["s23_2"] = clip(s23t.Value+epsAngle*s23t.Sigma*c, 0.0, 1.0)

	// masses share the same phase; k_mass sets the amplitude
	scale := 1.0 + kMass*c
	out["dm21"] = pmns["dm21"].Value * scale
	out["dm3l"] = pmns["dm3l"].Value * scale

	return out, nil
}

func (a *thetaStarV2) PredictCKM(params Params) (map[string]float64, error) {
	ckm := a.tr.CKM()
	if err := checkParams(params, ckmBounds(ckm)); err != nil {
		return nil, err
	}
	return directCKM(params, ckm), nil
}

// #endregion theta-star-v2
