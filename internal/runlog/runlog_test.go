package runlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phenofit/theta-star/go-fit/internal/ansatz"
	"github.com/phenofit/theta-star/go-fit/internal/sweep"
	"github.com/phenofit/theta-star/go-fit/internal/targets"
)

func smallResult(t *testing.T, name string) *sweep.Result {
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
		AnsatzName:  name,
		Ordering:    targets.OrderingNO,
		Samples:     10,
		Seed:        9,
		IncludePMNS: true,
	})
	if err != nil {
		t.Fatalf("run sweep: %v", err)
	}
	return res
}

func TestNewRunIDShape(t *testing.T) {
	cfg := sweep.Config{AnsatzName: "theta_star_v1", Ordering: targets.OrderingNO, Samples: 500, IncludePMNS: true}
	id1 := NewRunID(cfg)
	id2 := NewRunID(cfg)
	if !strings.HasPrefix(id1, "NO_theta_star_v1_N500_") {
		t.Fatalf("unexpected run id %q", id1)
	}
	if id1 == id2 {
		t.Fatal("successive default run ids must not collide")
	}
}

func TestMetaRoundTrip(t *testing.T) {
	res := smallResult(t, "theta_star_v1")
	dir := t.TempDir()

	meta := BuildMeta(res, "r1", filepath.Join(dir, "results.csv"))
	if meta.Domains != "pmns" {
		t.Fatalf("domains = %q, want pmns", meta.Domains)
	}
	if meta.CreatedAt.IsZero() || meta.CreatedAt.Location() != time.UTC {
		t.Fatalf("created_at should be a UTC timestamp, got %v", meta.CreatedAt)
	}

	path, err := WriteMeta(dir, meta)
	if err != nil {
		t.Fatalf("write meta: %v", err)
	}
	got, err := ReadMeta(path)
	if err != nil {
		t.Fatalf("read meta: %v", err)
	}
	if got.RunID != "r1" || got.Ansatz != "theta_star_v1" || got.Samples != 10 || got.Seed != 9 {
		t.Fatalf("meta round trip mismatch: %+v", got)
	}
	if got.Best.Chi2Total != res.Best().Loss.Total {
		t.Fatalf("best chi2 = %v, want %v", got.Best.Chi2Total, res.Best().Loss.Total)
	}
}

func TestThetaStarBestFallback(t *testing.T) {
	withTheta := smallResult(t, "theta_star_v1")
	m := BuildMeta(withTheta, "a", "a.csv")
	if m.ThetaStarBest() != withTheta.Best().Params["theta_star"] {
		t.Fatal("expected explicit theta_star parameter")
	}

	// example_minimal has no theta_star parameter; deltaCP stands in.
	minimal := smallResult(t, "example_minimal")
	m2 := BuildMeta(minimal, "b", "b.csv")
	if m2.ThetaStarBest() != minimal.Best().PMNS["deltaCP"] {
		t.Fatal("expected deltaCP fallback for example_minimal")
	}
}

func TestIndexRecordAndList(t *testing.T) {
	base := t.TempDir()
	ix, err := OpenIndex(IndexPath(base))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer ix.Close()

	res := smallResult(t, "theta_star_v1")
	meta := BuildMeta(res, "run_a", "run_a/results.csv")
	if err := ix.Record(meta); err != nil {
		t.Fatalf("record: %v", err)
	}

	meta2 := BuildMeta(res, "run_b", "run_b/results.csv")
	meta2.CreatedAt = meta.CreatedAt.Add(time.Second)
	if err := ix.Record(meta2); err != nil {
		t.Fatalf("record second: %v", err)
	}

	entries, err := ix.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].RunID != "run_a" || entries[1].RunID != "run_b" {
		t.Fatalf("unexpected order: %s, %s", entries[0].RunID, entries[1].RunID)
	}
	if entries[0].Chi2Total != res.Best().Loss.Total {
		t.Fatalf("chi2 = %v, want %v", entries[0].Chi2Total, res.Best().Loss.Total)
	}
}

func TestIndexRejectsDuplicateRunID(t *testing.T) {
	base := t.TempDir()
	ix, err := OpenIndex(IndexPath(base))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer ix.Close()

	res := smallResult(t, "theta_star_v2")
	meta := BuildMeta(res, "dup", "dup/results.csv")
	if err := ix.Record(meta); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := ix.Record(meta); !errors.Is(err, ErrDuplicateRun) {
		t.Fatalf("expected ErrDuplicateRun, got %v", err)
	}
}

func TestIndexPersistsAcrossOpens(t *testing.T) {
	base := t.TempDir()
	path := IndexPath(base)

	ix, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	res := smallResult(t, "theta_star_v1")
	if err := ix.Record(BuildMeta(res, "persist", "persist/results.csv")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("index file missing: %v", err)
	}
	ix2, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer ix2.Close()
	entries, err := ix2.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].RunID != "persist" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
