package fuzz

import (
	"context"
	"reflect"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fsdrift/fsdrift/internal/abstractfs"
	"github.com/fsdrift/fsdrift/internal/objective"
	"github.com/fsdrift/fsdrift/internal/report"
	"github.com/fsdrift/fsdrift/internal/runner"
)

// ErrNotReproducing is returned by Reduce when the input Workload does
// not trigger a content divergence at all.
var ErrNotReproducing = errors.New("reducer: input does not reproduce a content divergence")

// Reducer delta-debugs a known-reproducing Workload: it tries removing
// each operation from the tail backward, keeping the removal whenever the
// shrunk Workload still reproduces the exact same FileDiff.
type Reducer struct {
	r   *runner.Runner
	log *logrus.Entry
}

// NewReducer builds a reducer sharing r's filesystems and scratch paths.
func NewReducer(r *runner.Runner, log *logrus.Entry) *Reducer {
	return &Reducer{r: r, log: log}
}

// Reduce runs input once to capture the baseline FileDiff, then
// minimises it, writing the final result to outputDir. It returns the
// minimised Workload.
func (red *Reducer) Reduce(ctx context.Context, input abstractfs.Workload, outputDir string) (abstractfs.Workload, error) {
	baseline, err := red.r.RunOne(ctx, input)
	if err != nil {
		return abstractfs.Workload{}, err
	}
	if !baseline.DashDiff.IsInteresting() {
		red.log.Warn("crash not detected: input does not reproduce")
		return abstractfs.Workload{}, ErrNotReproducing
	}

	target := baseline.DashDiff
	workload := input
	var last objective.DiffOutcome = baseline
	for index := workload.Len() - 1; index >= 0; index-- {
		reduced, ok := abstractfs.Remove(workload, index)
		if !ok {
			continue
		}
		diff, err := red.r.RunOne(ctx, reduced)
		if err != nil {
			return abstractfs.Workload{}, err
		}
		if diff.DashDiff.IsInteresting() && reflect.DeepEqual(target, diff.DashDiff) {
			workload = reduced
			last = diff
			red.log.WithField("length", workload.Len()).Info("reduced workload")
		}
	}

	if _, err := report.Write(outputDir, workload, red.r.First.Mount.String(), red.r.Second.Mount.String(), last, "minimised reproduction"); err != nil {
		return abstractfs.Workload{}, errors.Wrap(err, "write minimised reproduction")
	}
	return workload, nil
}
