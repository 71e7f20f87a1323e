// Package runlog records run metadata and provenance: a run_meta.json
// beside every results table, plus an insert-only sqlite index of all
// runs under a base directory. Every artifact carries enough provenance
// (timestamp, git head, hostname) to reproduce it.
package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phenofit/theta-star/go-fit/internal/sweep"
)

// #region run-id
// NewRunID builds a collision-free default run identifier. Run
// directories are never overwritten, so unnamed repeat invocations need
// distinct identifiers; the uuid suffix provides that.
func NewRunID(cfg sweep.Config) string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("%s_%s_N%d_%s", cfg.Ordering, cfg.AnsatzName, cfg.Samples, suffix)
}

// #endregion run-id

// #region build-meta
// BuildMeta assembles the metadata record for a completed sweep.
func BuildMeta(res *sweep.Result, runID, csvPath string) Meta {
	best := res.Best()
	hostname, _ := os.Hostname()
	return Meta{
		RunID:    runID,
		Ansatz:   res.Config.AnsatzName,
		Ordering: string(res.Config.Ordering),
		Samples:  res.Config.Samples,
		Seed:     res.Config.Seed,
		Domains:  res.Config.Domains(),
		Best: BestFit{
			Sample:    best.Index,
			Chi2Total: best.Loss.Total,
			Chi2PMNS:  best.Loss.PMNS,
			Chi2CKM:   best.Loss.CKM,
			NPMNS:     best.Loss.NPMNS,
			NCKM:      best.Loss.NCKM,
			Params:    best.Params,
			PMNS:      best.PMNS,
			CKM:       best.CKM,
		},
		CreatedAt:  time.Now().UTC(),
		GitHead:    gitHead(),
		Hostname:   hostname,
		ResultsCSV: csvPath,
	}
}

// gitHead returns the current source revision, or "" outside a checkout.
func gitHead() string {
	out, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// #endregion build-meta

// #region meta-io
// MetaPath is the metadata file for a run directory.
func MetaPath(runDir string) string {
	return filepath.Join(runDir, "run_meta.json")
}

// WriteMeta writes run_meta.json into the run directory.
func WriteMeta(runDir string, meta Meta) (string, error) {
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal run meta: %w", err)
	}
	path := MetaPath(runDir)
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write run meta: %w", err)
	}
	return path, nil
}

// ReadMeta loads a run_meta.json.
func ReadMeta(path string) (Meta, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, fmt.Errorf("read run meta: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Meta{}, fmt.Errorf("parse run meta: %w", err)
	}
	return meta, nil
}

// #endregion meta-io
