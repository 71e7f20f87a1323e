package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/phenofit/theta-star/go-fit/internal/runlog"
)

// #region main

func main() {
	base := flag.String("base", "data/runs", "base directory for run artifacts")
	flag.Parse()

	if err := run(*base); err != nil {
		fmt.Fprintf(os.Stderr, "rollup: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(base string) error {
	path := runlog.IndexPath(base)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no run index at %s", path)
	}

	ix, err := runlog.OpenIndex(path)
	if err != nil {
		return err
	}
	defer ix.Close()

	entries, err := ix.List()
	if err != nil {
		return err
	}

	fmt.Println("run_id,ansatz,ordering,N,seed,domains,chi2_min,theta_star_best")
	for _, e := range entries {
		fmt.Printf("%s,%s,%s,%d,%d,%s,%g,%g\n",
			e.RunID, e.Ansatz, e.Ordering, e.Samples, e.Seed, e.Domains, e.Chi2Total, e.ThetaStarBest)
	}
	return nil
}

// #endregion run
