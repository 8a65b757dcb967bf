package fuzz

import (
	"context"
	"math/rand"

	"github.com/fsdrift/fsdrift/internal/abstractfs"
	"github.com/fsdrift/fsdrift/internal/runner"
)

// Blackbox generates a fresh random Workload every iteration, with no
// feedback loop: each run is independent of every other.
type Blackbox struct {
	r                 *runner.Runner
	gen               *abstractfs.Generator
	maxWorkloadLength int
}

var _ Fuzzer = (*Blackbox)(nil)

// NewBlackbox builds a black-box driver seeded from rng.
func NewBlackbox(r *runner.Runner, rng *rand.Rand, weights abstractfs.OperationWeights, maxWorkloadLength int) *Blackbox {
	return &Blackbox{r: r, gen: abstractfs.NewGenerator(rng, weights), maxWorkloadLength: maxWorkloadLength}
}

func (b *Blackbox) Runner() *runner.Runner { return b.r }

func (b *Blackbox) FuzzOne(ctx context.Context) error {
	input := b.gen.GenerateNew(b.maxWorkloadLength)

	diff, err := b.r.RunOne(ctx, input)
	if err != nil {
		return err
	}
	if reported, err := detectErrors(b.r, input, diff); err != nil {
		return err
	} else if reported {
		return nil
	}
	_, err = doObjective(ctx, b.r, input, diff)
	return err
}
