package ansatz

import (
	"math"

	"github.com/phenofit/theta-star/go-fit/internal/targets"
)

// #region theta-star-v1
// thetaStarV1 is the first structured theta_star variant: deltaCP is
// theta_star itself, the three mixing angles are modulated around their
// central values by cosines of theta_star at fixed phase offsets
// 0, 2pi/3 and 4pi/3, and both mass splittings share one fractional
// shift k_mass. The offset triple decorrelates the three angles'
// sensitivity to the master phase and must not be changed: existing
// reference runs depend on these exact values.
type thetaStarV1 struct {
	tr    *targets.Registry
	names []string
}

func newThetaStarV1(tr *targets.Registry) *thetaStarV1 {
	names := []string{"theta_star", "eps12", "eps13", "eps23", "k_mass"}
	names = append(names, targets.CKMKeys...)
	return &thetaStarV1{tr: tr, names: names}
}

func (a *thetaStarV1) Name() string { return "theta_star_v1" }

func (a *thetaStarV1) ParamNames() []string { return a.names }

func (a *thetaStarV1) ParamBounds(ordering targets.Ordering) (map[string]Bounds, error) {
	if _, err := a.tr.PMNS(ordering); err != nil {
		return nil, err
	}
	bounds := map[string]Bounds{
		"theta_star": {Lo: 0.0, Hi: Tau},
		// eps_* are dimensionless modulation amplitudes; |eps| <= 0.5
		// allows up to 50% excursions around the central values.
		"eps12": {Lo: -0.5, Hi: 0.5},
		"eps13": {Lo: -0.5, Hi: 0.5},
		"eps23": {Lo: -0.5, Hi: 0.5},
		// k_mass is the common fractional shift of dm21 and dm3l.
		"k_mass": {Lo: -0.5, Hi: 0.5},
	}
	for key, b := range ckmBounds(a.tr.CKM()) {
		bounds[key] = b
	}
	return bounds, nil
}

func (a *thetaStarV1) PredictPMNS(params Params, ordering targets.Ordering) (map[string]float64, error) {
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
	eps12 := params["eps12"]
	eps13 := params["eps13"]
	eps23 := params["eps23"]
	kMass := params["k_mass"]

	out := make(map[string]float64, len(targets.PMNSKeys))
	out["deltaCP"] = thetaStar

	phi12 := thetaStar
	phi13 := thetaStar + Tau/3.0
	phi23 := thetaStar + 2.0*Tau/3.0

	s12 := pmns["s12_2"].Value * (1.0 + eps12*math.Cos(phi12))
	s13 := pmns["s13_2"].Value * (1.0 + eps13*math.Cos(phi13))
	s23 := pmns["s23_2"].Value * (1.0 + eps23*math.Cos(phi23))

	// saturate at the physical boundary rather than failing
	out["s12_2"] = clip(s12, 0.0, 1.0)
	out["s13_2"] = clip(s13, 0.0, 1.0)
	out["s23_2"] = clip(s23, 0.0, 1.0)

	scale := 1.0 + kMass
	out["dm21"] = pmns["dm21"].Value * scale
	out["dm3l"] = pmns["dm3l"].Value * scale

	return out, nil
}

func (a *thetaStarV1) PredictCKM(params Params) (map[string]float64, error) {
	ckm := a.tr.CKM()
	if err := checkParams(params, ckmBounds(ckm)); err != nil {
		return nil, err
	}
	return directCKM(params, ckm), nil
}

// #endregion theta-star-v1
