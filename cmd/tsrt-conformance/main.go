package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/nooga/tsrt/internal/conformance"
	"github.com/nooga/tsrt/internal/oracle"
	"github.com/nooga/tsrt/pkg/config"
	"github.com/nooga/tsrt/pkg/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		dir        = flag.String("dir", "testdata/conformance", "Directory of YAML fixture files")
		filter     = flag.String("run", "", "Only run cases whose suite/name contains this string")
		verbose    = flag.Bool("verbose", false, "Print every case")
		useOracle  = flag.Bool("oracle", false, "Also check expectations against QuickJS")
		configPath = flag.String("config", "", "Runtime options file (YAML)")
		suiteMode  = flag.Bool("suite", false, "Show pass rates for each fixture suite")
		cpuprofile = flag.String("cpuprofile", "", "Write CPU profile to file")
		memprofile = flag.String("memprofile", "", "Write memory profile to file")
	)
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	opts := config.Default()
	if *configPath != "" {
		var err error
		if opts, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	if *verbose {
		opts.LogLevel = "debug"
	}

	suites, err := conformance.LoadDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading fixtures: %v\n", err)
		return 1
	}
	fmt.Printf("Running conformance fixtures from: %s (%d suites)\n", *dir, len(suites))

	runner := &conformance.Runner{Log: opts.Logger(os.Stderr), Filter: *filter}
	if *useOracle {
		o, err := oracle.New()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error starting oracle: %v\n", err)
			return 1
		}
		defer o.Close()
		runner.Oracle = o
	}

	results, stats := runner.Run(suites)
	for _, r := range results {
		switch {
		case r.Skipped:
			if *verbose {
				fmt.Printf("SKIP %s/%s: %s\n", r.Suite, r.Case.Name, r.Case.Skip)
			}
		case r.Passed():
			if *verbose {
				fmt.Printf("PASS %s/%s (%v)\n", r.Suite, r.Case.Name, r.Duration)
			}
		default:
			printFailure(r)
		}
	}

	if *suiteMode {
		printSuiteSummary(results)
	}
	printSummary(&stats)

	if *memprofile != "" {
		runtime.GC()
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal("could not create memory profile: ", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
		fmt.Printf("Memory profile written to %s\n", *memprofile)
	}

	if stats.Failed > 0 {
		return 1
	}
	return 0
}

func printFailure(r conformance.Result) {
	fmt.Printf("FAIL %s/%s: %s\n", r.Suite, r.Case.Name, r.Case.Call)
	if r.Err != nil {
		errors.DisplayErrors(os.Stdout, []error{r.Err})
		return
	}
	fmt.Printf("     want:   %s\n", r.Case.Expected())
	fmt.Printf("     got:    %s\n", r.Got)
	if r.Oracle != "" {
		fmt.Printf("     oracle: %s\n", r.Oracle)
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func printSummary(stats *conformance.Stats) {
	fmt.Printf("\n=== Conformance Summary ===\n")
	fmt.Printf("Total:    %d\n", stats.Total)
	fmt.Printf("Passed:   %d (%.1f%%)\n", stats.Passed, percent(stats.Passed, stats.Total))
	fmt.Printf("Failed:   %d (%.1f%%)\n", stats.Failed, percent(stats.Failed, stats.Total))
	fmt.Printf("Skipped:  %d (%.1f%%)\n", stats.Skipped, percent(stats.Skipped, stats.Total))
	fmt.Printf("Duration: %v\n", stats.Duration)
	fmt.Printf("===========================\n")
}

// printSuiteSummary prints one line per suite, worst pass rate first.
func printSuiteSummary(results []conformance.Result) {
	bySuite := make(map[string]*conformance.Stats)
	for _, r := range results {
		s := bySuite[r.Suite]
		if s == nil {
			s = &conformance.Stats{}
			bySuite[r.Suite] = s
		}
		s.Total++
		s.Duration += r.Duration
		switch {
		case r.Skipped:
			s.Skipped++
		case r.Passed():
			s.Passed++
		default:
			s.Failed++
		}
	}
	names := make([]string, 0, len(bySuite))
	for name := range bySuite {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := bySuite[names[i]], bySuite[names[j]]
		ra, rb := percent(a.Passed, a.Total), percent(b.Passed, b.Total)
		if ra != rb {
			return ra < rb
		}
		return names[i] < names[j]
	})

	fmt.Printf("\n=== Suites ===\n")
	for _, name := range names {
		s := bySuite[name]
		fmt.Printf("%-14s %4d/%-4d %5.1f%%  %v\n", name, s.Passed, s.Total, percent(s.Passed, s.Total), s.Duration.Round(time.Microsecond))
	}
}
