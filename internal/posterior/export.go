package posterior

import (
	"encoding/json"
	"fmt"
	"os"
)

// #region export
// Export is the one-way posterior record handed to downstream consumers:
// a fiducial theta_star and its band, plus the per-run and pooled
// summaries it was derived from. Nothing in this module reads it back.
type Export struct {
	Chi2Max       float64       `json:"chi2_max"`
	PerRun        []RunSummary  `json:"per_run"`
	Global        GlobalSummary `json:"global"`
	ThetaFiducial float64       `json:"theta_star_fiducial"`
	ThetaBand     [2]float64    `json:"theta_star_band"`
}

// BuildExport derives the fiducial value and band from the pooled summary.
func BuildExport(perRun []RunSummary, global GlobalSummary) Export {
	return Export{
		Chi2Max:       global.Chi2Max,
		PerRun:        perRun,
		Global:        global,
		ThetaFiducial: global.ThetaQ50,
		ThetaBand:     [2]float64{global.ThetaQ16, global.ThetaQ84},
	}
}

// WriteExport writes the posterior export JSON.
func WriteExport(path string, ex Export) error {
	raw, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal posterior export: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write posterior export: %w", err)
	}
	return nil
}

// #endregion export
