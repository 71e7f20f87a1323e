package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phenofit/theta-star/go-fit/internal/posterior"
)

// #region flags

// runIDList collects repeatable -run-id flags.
type runIDList []string

func (r *runIDList) String() string { return strings.Join(*r, ",") }

func (r *runIDList) Set(v string) error {
	*r = append(*r, v)
	return nil
}

// #endregion flags

// #region main

func main() {
	var runIDs runIDList
	flag.Var(&runIDs, "run-id", "run id to include (repeatable)")
	base := flag.String("base", "data/runs", "base directory for run artifacts")
	chi2Max := flag.Float64("chi2-max", 50.0, "absolute cut: keep samples with chi2_total <= chi2-max")
	deltaChi2 := flag.Float64("delta-chi2", 0.0, "relative cut chi2 <= chi2_min + delta (single run only; overrides -chi2-max)")
	out := flag.String("out", "", "posterior export path (default <base>/theta_star_posterior_summary.json)")
	flag.Parse()

	if len(runIDs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: posterior -run-id <id> [-run-id <id> ...] [-chi2-max C | -delta-chi2 D] [-base dir] [-out file]")
		os.Exit(2)
	}
	if *deltaChi2 > 0 && len(runIDs) > 1 {
		fmt.Fprintln(os.Stderr, "posterior: -delta-chi2 applies to a single run (the cut is relative to that run's chi2_min)")
		os.Exit(2)
	}

	if err := run(runIDs, *base, *chi2Max, *deltaChi2, *out); err != nil {
		fmt.Fprintf(os.Stderr, "posterior: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(runIDs []string, base string, chi2Max, deltaChi2 float64, out string) error {
	var (
		perRun []posterior.RunSummary
		runs   []posterior.RunSamples
	)

	effectiveCut := chi2Max
	for _, id := range runIDs {
		rs, err := posterior.LoadRun(base, id)
		if err != nil {
			return err
		}
		runs = append(runs, rs)

		var s posterior.RunSummary
		if deltaChi2 > 0 {
			s, _, err = posterior.SummarizeDelta(rs, deltaChi2)
			if err == nil {
				effectiveCut = s.Chi2Max
			}
		} else {
			s, _, err = posterior.Summarize(rs, chi2Max)
		}
		if err != nil {
			return err
		}
		perRun = append(perRun, s)

		fmt.Printf("[%s]\n", s.RunID)
		fmt.Printf("  n_total  = %d\n", s.NTotal)
		fmt.Printf("  n_used   = %d\n", s.NUsed)
		fmt.Printf("  chi2_min = %.4f (cut: chi2 <= %.4f)\n", s.Chi2Min, s.Chi2Max)
		fmt.Printf("  theta_star (q16, q50, q84) = (%.4f, %.4f, %.4f)\n", s.ThetaQ16, s.ThetaQ50, s.ThetaQ84)
	}

	global, err := posterior.Combine(runs, effectiveCut)
	if err != nil {
		return err
	}
	fmt.Println("GLOBAL (all runs pooled):")
	fmt.Printf("  n_total_used = %d\n", global.NTotalUsed)
	fmt.Printf("  theta_star (q16, q50, q84) = (%.4f, %.4f, %.4f)\n",
		global.ThetaQ16, global.ThetaQ50, global.ThetaQ84)

	if out == "" {
		out = filepath.Join(base, "theta_star_posterior_summary.json")
	}
	if err := posterior.WriteExport(out, posterior.BuildExport(perRun, global)); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

// #endregion run
