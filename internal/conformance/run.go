package conformance

import (
	goerrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nooga/tsrt/internal/oracle"
	"github.com/nooga/tsrt/pkg/errors"
	"github.com/nooga/tsrt/pkg/value"
)

// Result is the outcome of one case.
type Result struct {
	Suite    string
	Case     Case
	Got      string
	Oracle   string // empty when the oracle did not run
	Err      error  // a broken fixture or oracle failure, not a thrown error
	Skipped  bool
	Duration time.Duration
}

// Passed reports whether the runtime produced the expected outcome and the
// oracle, when it ran, agreed.
func (r Result) Passed() bool {
	if r.Err != nil || r.Skipped {
		return false
	}
	want := r.Case.Expected()
	return r.Got == want && (r.Oracle == "" || r.Oracle == want)
}

// Stats aggregates results.
type Stats struct {
	Total    int
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// Runner evaluates suites. Oracle and Log are optional.
type Runner struct {
	Oracle *oracle.Oracle
	Log    *slog.Logger
	Filter string // substring of "suite/case" names to run
}

// Eval runs one case against the runtime library and returns its outcome
// string.
func Eval(c Case) (string, error) {
	this := value.Undefined
	if c.This != nil {
		v, err := arg(c.This)
		if err != nil {
			return thrown(err)
		}
		this = v
	}
	args := make([]value.Value, len(c.Args))
	for i, x := range c.Args {
		v, err := arg(x)
		if err != nil {
			return thrown(err)
		}
		args[i] = v
	}
	v, err := ops[c.Call](this, args)
	if err != nil {
		return thrown(err)
	}
	return oracle.OK + value.ToString(v), nil
}

// thrown renders a runtime error as a throw outcome. Errors that are not
// runtime errors mean the fixture itself is broken.
func thrown(err error) (string, error) {
	var re errors.RuntimeError
	if !goerrors.As(err, &re) {
		return "", err
	}
	name, gerr := value.GetString(value.FromError(err), "name")
	if gerr != nil {
		return "", gerr
	}
	return oracle.Throw + value.ToString(name), nil
}

// Run evaluates every selected case of suites.
func (r *Runner) Run(suites []*Suite) ([]Result, Stats) {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()
	var (
		results []Result
		stats   Stats
	)
	for _, s := range suites {
		for _, c := range s.Cases {
			if r.Filter != "" && !strings.Contains(s.Name+"/"+c.Name, r.Filter) {
				continue
			}
			res := r.runCase(s.Name, c)
			stats.Total++
			switch {
			case res.Skipped:
				stats.Skipped++
			case res.Passed():
				stats.Passed++
			default:
				stats.Failed++
				log.Debug("case failed", "suite", s.Name, "case", c.Name, "got", res.Got, "want", c.Expected(), "oracle", res.Oracle, "err", res.Err)
			}
			results = append(results, res)
		}
	}
	stats.Duration = time.Since(start)
	return results, stats
}

func (r *Runner) runCase(suite string, c Case) Result {
	res := Result{Suite: suite, Case: c}
	if c.Skip != "" {
		res.Skipped = true
		return res
	}
	start := time.Now()
	res.Got, res.Err = Eval(c)
	if res.Err == nil && r.Oracle != nil && c.JS != "" {
		res.Oracle, res.Err = r.Oracle.Eval(c.JS)
	}
	res.Duration = time.Since(start)
	return res
}
