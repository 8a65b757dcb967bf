// Package fuzz implements the four driver modes that share a Runner:
// black-box generation, coverage-guided greybox mutation, single-testcase
// replay, and delta-debugging reduction.
package fuzz

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/fsdrift/fsdrift/internal/abstractfs"
	"github.com/fsdrift/fsdrift/internal/objective"
	"github.com/fsdrift/fsdrift/internal/report"
	"github.com/fsdrift/fsdrift/internal/runner"
)

// Fuzzer is implemented by every driver mode. Run loops FuzzOne until
// count iterations have executed (count == nil means run until ctx is
// cancelled or Run gives up after maxConsecutiveIOFailures errors).
type Fuzzer interface {
	FuzzOne(ctx context.Context) error
	Runner() *runner.Runner
}

// maxConsecutiveIOFailures bounds how many IO-class errors (a build host
// or target connection hiccup) in a row the loop tolerates before giving
// up on the whole run; a compile or trace-parse error never counts
// towards it, since those are properties of the generated Workload, not
// of the transport.
const maxConsecutiveIOFailures = 3

// Run drives f for count iterations (or forever if count is nil),
// logging a heartbeat at the runner's configured interval. A single
// iteration's failure does not normally end the run: a harness build
// failure or a bad trace is that Workload's problem and the loop moves
// on; only a run of maxConsecutiveIOFailures unclassified (IO-class)
// errors in a row aborts the whole campaign.
func Run(ctx context.Context, f Fuzzer, count *uint64, heartbeat time.Duration) error {
	r := f.Runner()
	r.Stats.Start = time.Now()
	r.Stats.LastShown = time.Now()

	var i uint64
	var consecutiveIOFailures int
	for count == nil || i < *count {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := f.FuzzOne(ctx)
		switch {
		case err == nil:
			consecutiveIOFailures = 0
		case errors.Is(err, runner.ErrCompile):
			r.Log.WithError(err).Warn("harness build failed, skipping iteration")
			consecutiveIOFailures = 0
		case errors.Is(err, abstractfs.ErrEmptyTrace), errors.Is(err, abstractfs.ErrInvalidColumnsCount):
			r.Log.WithError(err).Warn("trace parse failed, skipping iteration")
			consecutiveIOFailures = 0
		default:
			consecutiveIOFailures++
			r.Log.WithError(err).Warn("iteration failed")
			if consecutiveIOFailures >= maxConsecutiveIOFailures {
				return errors.Wrap(err, "three consecutive IO failures, aborting run")
			}
		}

		r.Stats.Executions++
		if time.Since(r.Stats.LastShown) > heartbeat {
			r.ShowStats()
		}
		i++
	}
	return nil
}

// doObjective reports a divergence to crashesPath when diff is
// interesting, and bumps the crash counter.
func doObjective(ctx context.Context, r *runner.Runner, input abstractfs.Workload, diff objective.DiffOutcome) (bool, error) {
	if !diff.AnyInteresting() {
		return false, nil
	}
	reason := reasonFor(diff)
	if _, err := report.Write(r.CrashesPath, input, r.First.Mount.String(), r.Second.Mount.String(), diff, reason); err != nil {
		return false, errors.Wrap(err, "report divergence")
	}
	r.Stats.Crashes++
	r.ShowStats()
	return true, nil
}

// detectErrors reports an accident (both sides independently errored,
// suggesting the abstract model permitted something neither real
// filesystem does) without counting it as a found bug.
func detectErrors(r *runner.Runner, input abstractfs.Workload, diff objective.DiffOutcome) (bool, error) {
	if !diff.BothHaveErrors() {
		return false, nil
	}
	reason := "both traces contain errors: potential bug in the abstract filesystem model"
	if _, err := report.Write(r.AccidentsPath, input, r.First.Mount.String(), r.Second.Mount.String(), diff, reason); err != nil {
		return false, errors.Wrap(err, "report accident")
	}
	return true, nil
}

func reasonFor(diff objective.DiffOutcome) string {
	trace := (objective.TraceObjective{}).IsInteresting(diff.TraceDiff)
	dash := (objective.DashObjective{}).IsInteresting(diff.DashDiff)
	switch {
	case trace && dash:
		return "trace and content snapshot both diverged"
	case trace:
		return "syscall trace diverged"
	default:
		return "content snapshot diverged"
	}
}
