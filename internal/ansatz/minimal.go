package ansatz

import (
	"github.com/phenofit/theta-star/go-fit/internal/targets"
)

// #region example-minimal
// exampleMinimal is the toy baseline: every PMNS and CKM observable is a
// direct parameter sampled in a +-5 sigma window around its target. It has
// no theta_star structure at all and exists to calibrate what "no model"
// looks like in chi-square terms.
type exampleMinimal struct {
	tr    *targets.Registry
	names []string
}

func newExampleMinimal(tr *targets.Registry) *exampleMinimal {
	names := make([]string, 0, len(targets.PMNSKeys)+len(targets.CKMKeys))
	names = append(names, targets.PMNSKeys...)
	names = append(names, targets.CKMKeys...)
	return &exampleMinimal{tr: tr, names: names}
}

func (a *exampleMinimal) Name() string { return "example_minimal" }

func (a *exampleMinimal) ParamNames() []string { return a.names }

func (a *exampleMinimal) ParamBounds(ordering targets.Ordering) (map[string]Bounds, error) {
	pmns, err := a.tr.PMNS(ordering)
	if err != nil {
		return nil, err
	}
	bounds := make(map[string]Bounds, len(a.names))
	for _, key := range targets.PMNSKeys {
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

func (a *exampleMinimal) PredictPMNS(params Params, ordering targets.Ordering) (map[string]float64, error) {
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
	for _, key := range targets.PMNSKeys {
		if v, ok := params[key]; ok {
			out[key] = v
		} else {
			out[key] = pmns[key].Value
		}
	}
	return out, nil
}

func (a *exampleMinimal) PredictCKM(params Params) (map[string]float64, error) {
	ckm := a.tr.CKM()
	if err := checkParams(params, ckmBounds(ckm)); err != nil {
		return nil, err
	}
	return directCKM(params, ckm), nil
}

// #endregion example-minimal
