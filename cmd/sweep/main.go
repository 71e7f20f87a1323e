package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/phenofit/theta-star/go-fit/internal/ansatz"
	"github.com/phenofit/theta-star/go-fit/internal/results"
	"github.com/phenofit/theta-star/go-fit/internal/runlog"
	"github.com/phenofit/theta-star/go-fit/internal/sweep"
	"github.com/phenofit/theta-star/go-fit/internal/targets"
)

// #region main

func main() {
	ansatzName := flag.String("ansatz", "example_minimal", "ansatz variant name")
	orderingStr := flag.String("ordering", "NO", "PMNS mass ordering: NO or IO")
	samples := flag.Int("samples", 2000, "number of random samples")
	seed := flag.Int64("seed", 123, "RNG seed")
	domains := flag.String("domains", "joint", "scored sectors: joint, pmns, or ckm")
	runID := flag.String("run-id", "", "explicit run id (default: derived, uuid-suffixed)")
	base := flag.String("base", "data/runs", "base directory for run artifacts")
	flag.Parse()

	ordering, err := targets.ParseOrdering(*orderingStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sweep: %v\n", err)
		os.Exit(2)
	}

	var includePMNS, includeCKM bool
	switch *domains {
	case "joint":
		includePMNS, includeCKM = true, true
	case "pmns":
		includePMNS = true
	case "ckm":
		includeCKM = true
	default:
		fmt.Fprintf(os.Stderr, "sweep: unknown domains %q (want joint, pmns, or ckm)\n", *domains)
		os.Exit(2)
	}

	cfg := sweep.Config{
		AnsatzName:  *ansatzName,
		Ordering:    ordering,
		Samples:     *samples,
		Seed:        *seed,
		IncludePMNS: includePMNS,
		IncludeCKM:  includeCKM,
	}

	if err := run(cfg, *runID, *base); err != nil {
		fmt.Fprintf(os.Stderr, "sweep: %v\n", err)
		if errors.Is(err, ansatz.ErrUnknown) || errors.Is(err, targets.ErrConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(cfg sweep.Config, runID, base string) error {
	tr, err := targets.Load()
	if err != nil {
		return err
	}
	reg, err := ansatz.NewRegistry(tr)
	if err != nil {
		return err
	}

	res, err := sweep.Run(reg, tr, cfg)
	if err != nil {
		return err
	}

	if runID == "" {
		runID = runlog.NewRunID(cfg)
	}

	csvPath, err := results.Write(base, runID, res)
	if err != nil {
		return err
	}

	meta := runlog.BuildMeta(res, runID, csvPath)
	if _, err := runlog.WriteMeta(results.RunDir(base, runID), meta); err != nil {
		return err
	}

	ix, err := runlog.OpenIndex(runlog.IndexPath(base))
	if err != nil {
		return err
	}
	defer ix.Close()
	if err := ix.Record(meta); err != nil {
		return err
	}

	best := res.Best()
	dof := best.Loss.NPMNS + best.Loss.NCKM
	fmt.Printf("[%s] run_id=%s ansatz=%s ordering=%s samples=%d seed=%d best_chi2=%.4f (chi2/dof=%.3f, dof=%d)\n",
		cfg.Domains(), runID, cfg.AnsatzName, cfg.Ordering, cfg.Samples, cfg.Seed,
		best.Loss.Total, best.Loss.Total/float64(dof), dof)
	fmt.Printf("  theta_star_best=%.4f results=%s\n", meta.ThetaStarBest(), csvPath)
	return nil
}

// #endregion run
