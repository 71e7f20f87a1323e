// Package results writes and reads the per-run tabular artifact
// (results.csv). Run directories are immutable: writing into an existing
// run identifier is refused rather than overwritten.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/phenofit/theta-star/go-fit/internal/sweep"
	"github.com/phenofit/theta-star/go-fit/internal/targets"
)

// ErrRunExists marks an attempt to reuse an existing run identifier.
var ErrRunExists = errors.New("results: run directory already exists")

// #region paths
// RunDir is the directory for one run under the base directory.
func RunDir(base, runID string) string {
	return filepath.Join(base, runID)
}

// CSVPath is the main results table for a run.
func CSVPath(base, runID string) string {
	return filepath.Join(RunDir(base, runID), "results.csv")
}

// #endregion paths

// #region write
// Columns returns the exact header produced for a sweep result: fixed
// chi-square columns, then p_<param> in the ansatz's declared order,
// then predicted observables in canonical order.
func Columns(res *sweep.Result) []string {
	cols := []string{"sample", "chi2_total", "chi2_pmns", "chi2_ckm", "n_pmns", "n_ckm"}
	for _, p := range res.ParamOrder {
		cols = append(cols, "p_"+p)
	}
	for _, k := range targets.PMNSKeys {
		cols = append(cols, "pmns_"+k)
	}
	for _, k := range targets.CKMKeys {
		cols = append(cols, "ckm_"+k)
	}
	return cols
}

// Write materializes a completed sweep as <base>/<runID>/results.csv.
// The run directory must not already exist. On a partial failure the
// directory is removed again, so no half-written run is left behind.
func Write(base, runID string, res *sweep.Result) (string, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("create base dir: %w", err)
	}

	dir := RunDir(base, runID)
	if err := os.Mkdir(dir, 0o755); err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("%w: %s", ErrRunExists, dir)
		}
		return "", fmt.Errorf("create run dir: %w", err)
	}

	path := CSVPath(base, runID)
	if err := writeCSV(path, res); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return path, nil
}

func writeCSV(path string, res *sweep.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results.csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns(res)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, 0, 6+len(res.ParamOrder)+len(targets.PMNSKeys)+len(targets.CKMKeys))
	for _, s := range res.Samples {
		row = row[:0]
		row = append(row,
			strconv.Itoa(s.Index),
			formatFloat(s.Loss.Total),
			formatFloat(s.Loss.PMNS),
			formatFloat(s.Loss.CKM),
			strconv.Itoa(s.Loss.NPMNS),
			strconv.Itoa(s.Loss.NCKM),
		)
		for _, p := range res.ParamOrder {
			row = append(row, formatFloat(s.Params[p]))
		}
		for _, k := range targets.PMNSKeys {
			row = append(row, formatFloat(s.PMNS[k]))
		}
		for _, k := range targets.CKMKeys {
			row = append(row, formatFloat(s.CKM[k]))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", s.Index, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush results.csv: %w", err)
	}
	return nil
}

// formatFloat uses the shortest representation that round-trips exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// #endregion write

// #region read
// Table is a loaded results.csv: every cell parsed as float64.
type Table struct {
	Header []string
	Rows   [][]float64

	index map[string]int
}

// ReadTable loads a results.csv written by Write.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read results table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("results table %s is empty", path)
	}

	t := &Table{
		Header: records[0],
		Rows:   make([][]float64, 0, len(records)-1),
		index:  make(map[string]int, len(records[0])),
	}
	for i, name := range t.Header {
		t.index[name] = i
	}
	for n, rec := range records[1:] {
		row := make([]float64, len(rec))
		for i, cell := range rec {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", n+1, t.Header[i], err)
			}
			row[i] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Column extracts one named column.
func (t *Table) Column(name string) ([]float64, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(t.Rows))
	for n, row := range t.Rows {
		out[n] = row[i]
	}
	return out, true
}

// #endregion read
