package results

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/phenofit/theta-star/go-fit/internal/ansatz"
	"github.com/phenofit/theta-star/go-fit/internal/sweep"
	"github.com/phenofit/theta-star/go-fit/internal/targets"
)

func smallRun(t *testing.T) *sweep.Result {
	t.Helper()
	tr, err := targets.Load()
	if err != nil {
		t.Fatalf("load targets: %v", err)
	}
	reg, err := ansatz.NewRegistry(tr)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	res, err := sweep.Run(reg, tr, sweep.Config{
		AnsatzName:  "theta_star_v1",
		Ordering:    targets.OrderingNO,
		Samples:     25,
		Seed:        42,
		IncludePMNS: true,
		IncludeCKM:  true,
	})
	if err != nil {
		t.Fatalf("run sweep: %v", err)
	}
	return res
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	base := t.TempDir()
	res := smallRun(t)

	path, err := Write(base, "test_run", res)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != filepath.Join(base, "test_run", "results.csv") {
		t.Fatalf("unexpected path %s", path)
	}

	table, err := ReadTable(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(table.Header, Columns(res)) {
		t.Fatalf("header mismatch:\n got %v\nwant %v", table.Header, Columns(res))
	}
	if len(table.Rows) != len(res.Samples) {
		t.Fatalf("rows = %d, want %d", len(table.Rows), len(res.Samples))
	}

	chi2, ok := table.Column("chi2_total")
	if !ok {
		t.Fatal("missing chi2_total column")
	}
	theta, ok := table.Column("p_theta_star")
	if !ok {
		t.Fatal("missing p_theta_star column")
	}
	for i, s := range res.Samples {
		if chi2[i] != s.Loss.Total {
			t.Fatalf("row %d chi2 = %v, want %v (formatting must round-trip)", i, chi2[i], s.Loss.Total)
		}
		if theta[i] != s.Params["theta_star"] {
			t.Fatalf("row %d theta = %v, want %v", i, theta[i], s.Params["theta_star"])
		}
	}
}

func TestHeaderListsExactlyProducedColumns(t *testing.T) {
	res := smallRun(t)
	cols := Columns(res)

	want := 6 + len(res.ParamOrder) + len(targets.PMNSKeys) + len(targets.CKMKeys)
	if len(cols) != want {
		t.Fatalf("columns = %d, want %d", len(cols), want)
	}
	seen := map[string]bool{}
	for _, c := range cols {
		if seen[c] {
			t.Fatalf("duplicate column %q", c)
		}
		seen[c] = true
	}
	// parameter columns appear in declared order
	for i, p := range res.ParamOrder {
		if cols[6+i] != "p_"+p {
			t.Fatalf("column %d = %q, want p_%s", 6+i, cols[6+i], p)
		}
	}
}

func TestRunDirectoryIsImmutable(t *testing.T) {
	base := t.TempDir()
	res := smallRun(t)

	if _, err := Write(base, "immutable_run", res); err != nil {
		t.Fatalf("first write: %v", err)
	}
	_, err := Write(base, "immutable_run", res)
	if !errors.Is(err, ErrRunExists) {
		t.Fatalf("expected ErrRunExists on reuse, got %v", err)
	}
}

func TestColumnMissing(t *testing.T) {
	base := t.TempDir()
	res := smallRun(t)
	path, err := Write(base, "r1", res)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	table, err := ReadTable(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, ok := table.Column("p_nonexistent"); ok {
		t.Fatal("expected missing column lookup to report false")
	}
}
