package ansatz

import (
	"github.com/phenofit/theta-star/go-fit/internal/targets"
)

// #region delta-only
// thetaStarDeltaOnly is the deltaCP-only projection of theta_star: the
// phase parameter is identified with the Dirac phase and every other
// observable stays a direct parameter. Useful for isolating how much the
// neutrino CP measurement alone constrains theta_star.
type thetaStarDeltaOnly struct {
	tr       *targets.Registry
	pmnsKeys []string // direct PMNS parameters (deltaCP excluded)
	names    []string
}

func newThetaStarDeltaOnly(tr *targets.Registry) *thetaStarDeltaOnly {
	pmnsKeys := []string{"s12_2", "s13_2", "s23_2", "dm21", "dm3l"}
	names := make([]string, 0, 1+len(pmnsKeys)+len(targets.CKMKeys))
	names = append(names, "theta_star")
	names = append(names, pmnsKeys...)
	names = append(names, targets.CKMKeys...)
	return &thetaStarDeltaOnly{tr: tr, pmnsKeys: pmnsKeys, names: names}
}

func (a *thetaStarDeltaOnly) Name() string { return "theta_star_delta_only" }

func (a *thetaStarDeltaOnly) ParamNames() []string { return a.names }

func (a *thetaStarDeltaOnly) ParamBounds(ordering targets.Ordering) (map[string]Bounds, error) {
	pmns, err := a.tr.PMNS(ordering)
	if err != nil {
		return nil, err
	}
	bounds := make(map[string]Bounds, len(a.names))
	bounds["theta_star"] = Bounds{Lo: 0.0, Hi: Tau}
	for _, key := range a.pmnsKeys {
		b := around(pmns[key], 5.0)
		switch key {
		case "s12_2", "s13_2", "s23_2":
			b = clampBounds(b, 0.0, 1.0)
		}
		bounds[key] = b
	}
	for key, b := range ckmBounds(a.tr.CKM()) {
		bounds[key] = b
	}
	return bounds, nil
}

func (a *thetaStarDeltaOnly) PredictPMNS(params Params, ordering targets.Ordering) (map[string]float64, error) {
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

	out := make(map[string]float64, len(targets.PMNSKeys))

	// deltaCP is theta_star itself.
	if v, ok := params["theta_star"]; ok {
		out["deltaCP"] = v
	} else {
		out["deltaCP"] = pmns["deltaCP"].Value
	}

	for _, key := range a.pmnsKeys {
		if v, ok := params[key]; ok {
			out[key] = v
		} else {
			out[key] = pmns[key].Value
		}
	}
	return out, nil
}

func (a *thetaStarDeltaOnly) PredictCKM(params Params) (map[string]float64, error) {
	ckm := a.tr.CKM()
	if err := checkParams(params, ckmBounds(ckm)); err != nil {
		return nil, err
	}
	return directCKM(params, ckm), nil
}

// #endregion delta-only
