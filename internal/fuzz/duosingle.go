package fuzz

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/fsdrift/fsdrift/internal/abstractfs"
	"github.com/fsdrift/fsdrift/internal/runner"
)

// DuoSingle reads one Workload from disk and runs it exactly once; it is
// used to replay a saved test.json outside the fuzzing loop.
type DuoSingle struct {
	r        *runner.Runner
	testPath string
}

var _ Fuzzer = (*DuoSingle)(nil)

// NewDuoSingle builds a single-replay driver for the Workload at testPath.
func NewDuoSingle(r *runner.Runner, testPath string) *DuoSingle {
	return &DuoSingle{r: r, testPath: testPath}
}

func (d *DuoSingle) Runner() *runner.Runner { return d.r }

func (d *DuoSingle) FuzzOne(ctx context.Context) error {
	input, err := readWorkload(d.testPath)
	if err != nil {
		return err
	}

	diff, err := d.r.RunOne(ctx, input)
	if err != nil {
		return err
	}
	if reported, err := detectErrors(d.r, input, diff); err != nil {
		return err
	} else if reported {
		return nil
	}
	_, err = doObjective(ctx, d.r, input, diff)
	return err
}

func readWorkload(path string) (abstractfs.Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return abstractfs.Workload{}, errors.Wrapf(err, "read testcase %s", path)
	}
	var w abstractfs.Workload
	if err := json.Unmarshal(data, &w); err != nil {
		return abstractfs.Workload{}, errors.Wrap(err, "parse testcase json")
	}
	return w, nil
}
