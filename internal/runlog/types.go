package runlog

import "time"

// #region meta
// BestFit is the winning sample of a sweep: minimum total chi-square,
// earliest index on ties.
type BestFit struct {
	Sample    int                `json:"sample"`
	Chi2Total float64            `json:"chi2_total"`
	Chi2PMNS  float64            `json:"chi2_pmns"`
	Chi2CKM   float64            `json:"chi2_ckm"`
	NPMNS     int                `json:"n_pmns"`
	NCKM      int                `json:"n_ckm"`
	Params    map[string]float64 `json:"params"`
	PMNS      map[string]float64 `json:"pmns"`
	CKM       map[string]float64 `json:"ckm"`
}

// Meta is the structured run record written next to results.csv and
// mirrored into the run index. It is consumed by the posterior tooling
// and external rollups; the sweep engine never reads it back.
type Meta struct {
	RunID    string `json:"run_id"`
	Ansatz   string `json:"ansatz_name"`
	Ordering string `json:"ordering"`
	Samples  int    `json:"n_samples"`
	Seed     int64  `json:"seed"`
	Domains  string `json:"domains"`

	Best BestFit `json:"best"`

	// provenance
	CreatedAt  time.Time `json:"created_at"`
	GitHead    string    `json:"git_head,omitempty"`
	Hostname   string    `json:"hostname,omitempty"`
	ResultsCSV string    `json:"results_csv"`
}

// ThetaStarBest returns the best-fit theta_star, falling back to the
// predicted deltaCP for variants without an explicit phase parameter.
func (m Meta) ThetaStarBest() float64 {
	if v, ok := m.Best.Params["theta_star"]; ok {
		return v
	}
	return m.Best.PMNS["deltaCP"]
}

// #endregion meta
