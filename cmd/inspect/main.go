package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/phenofit/theta-star/go-fit/internal/ansatz"
	"github.com/phenofit/theta-star/go-fit/internal/posterior"
	"github.com/phenofit/theta-star/go-fit/internal/results"
	"github.com/phenofit/theta-star/go-fit/internal/runlog"
)

// #region main

func main() {
	base := flag.String("base", "data/runs", "base directory for run artifacts")
	runID := flag.String("run-id", "", "run id to inspect")
	chi2Max := flag.Float64("chi2-max", 0.0, "restrict to samples with chi2_total <= chi2-max (0 = all)")
	bins := flag.Int("bins", 24, "theta_star histogram bins over [0, 2pi)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	if *runID == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect -run-id <id> [-base dir] [-chi2-max C] [-bins N] [-json]")
		os.Exit(2)
	}

	if err := run(*base, *runID, *chi2Max, *bins, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "inspect: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region report

type report struct {
	Meta     runlog.Meta `json:"meta"`
	NTotal   int         `json:"n_total"`
	NShown   int         `json:"n_shown"`
	Chi2Min  float64     `json:"chi2_min"`
	Chi2Max  float64     `json:"chi2_max_cut,omitempty"`
	ThetaQ16 float64     `json:"theta_q16"`
	ThetaQ50 float64     `json:"theta_q50"`
	ThetaQ84 float64     `json:"theta_q84"`
	Bins     []int       `json:"theta_histogram"`
}

func run(base, runID string, chi2Max float64, bins int, jsonOut bool) error {
	meta, err := runlog.ReadMeta(runlog.MetaPath(results.RunDir(base, runID)))
	if err != nil {
		return err
	}
	samples, err := posterior.LoadRun(base, runID)
	if err != nil {
		return err
	}

	cut := chi2Max
	if cut <= 0 {
		cut = math.Inf(1)
	}
	s, kept, err := posterior.Summarize(samples, cut)
	if err != nil {
		return err
	}

	rep := report{
		Meta:     meta,
		NTotal:   s.NTotal,
		NShown:   s.NUsed,
		Chi2Min:  s.Chi2Min,
		ThetaQ16: s.ThetaQ16,
		ThetaQ50: s.ThetaQ50,
		ThetaQ84: s.ThetaQ84,
		Bins:     histogram(kept, bins),
	}
	if chi2Max > 0 {
		rep.Chi2Max = chi2Max
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	printReport(rep, bins)
	return nil
}

func printReport(rep report, bins int) {
	fmt.Printf("run %s: ansatz=%s ordering=%s samples=%d seed=%d domains=%s\n",
		rep.Meta.RunID, rep.Meta.Ansatz, rep.Meta.Ordering, rep.Meta.Samples, rep.Meta.Seed, rep.Meta.Domains)
	fmt.Printf("  chi2_min=%.4f best_sample=%d theta_star_best=%.4f\n",
		rep.Chi2Min, rep.Meta.Best.Sample, rep.Meta.ThetaStarBest())
	if rep.Chi2Max > 0 {
		fmt.Printf("  showing %d/%d samples with chi2 <= %.4f\n", rep.NShown, rep.NTotal, rep.Chi2Max)
	} else {
		fmt.Printf("  showing all %d samples\n", rep.NTotal)
	}
	fmt.Printf("  theta_star (q16, q50, q84) = (%.4f, %.4f, %.4f)\n", rep.ThetaQ16, rep.ThetaQ50, rep.ThetaQ84)

	fmt.Println("  theta_star distribution:")
	maxCount := 0
	for _, c := range rep.Bins {
		if c > maxCount {
			maxCount = c
		}
	}
	width := ansatz.Tau / float64(bins)
	for i, c := range rep.Bins {
		bar := ""
		if maxCount > 0 {
			bar = strings.Repeat("#", c*40/maxCount)
		}
		fmt.Printf("  [%5.2f, %5.2f) %-40s %d\n", float64(i)*width, float64(i+1)*width, bar, c)
	}
}

// histogram buckets theta values over [0, 2pi).
func histogram(theta []float64, bins int) []int {
	counts := make([]int, bins)
	width := ansatz.Tau / float64(bins)
	for _, v := range theta {
		i := int(math.Mod(v, ansatz.Tau) / width)
		if i < 0 {
			i += bins
		}
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	return counts
}

// #endregion report
