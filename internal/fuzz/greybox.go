package fuzz

import (
	"context"
	"math/rand"

	"github.com/fsdrift/fsdrift/internal/abstractfs"
	"github.com/fsdrift/fsdrift/internal/coverage"
	"github.com/fsdrift/fsdrift/internal/runner"
)

// corpusEntry is one accepted Workload (no coverage data is stored with
// it), kept so the scheduler can walk the corpus in FIFO order
// (a queue scheduler, matching the source's QueueScheduler).
type corpusEntry struct {
	workload abstractfs.Workload
}

// Greybox mutates corpus entries and keeps a mutant only when its
// coverage feedback reports at least one newly hit or newly bucketed
// edge.
type Greybox struct {
	r        *runner.Runner
	gen      *abstractfs.Generator
	feedback coverage.Feedback
	mutation abstractfs.MutationWeights
	maxMutations int

	corpus []corpusEntry
	cursor int
}

var _ Fuzzer = (*Greybox)(nil)

// NewGreybox seeds the corpus with the empty Workload, matching the
// source's starting Testcase::new(Workload::new()).
func NewGreybox(r *runner.Runner, rng *rand.Rand, opWeights abstractfs.OperationWeights, mutationWeights abstractfs.MutationWeights, maxMutations int, feedback coverage.Feedback) *Greybox {
	return &Greybox{
		r:        r,
		gen:      abstractfs.NewGenerator(rng, opWeights),
		feedback: feedback,
		mutation: mutationWeights,
		maxMutations: maxMutations,
		corpus:   []corpusEntry{{workload: abstractfs.Workload{}}},
	}
}

func (gb *Greybox) Runner() *runner.Runner { return gb.r }

func (gb *Greybox) FuzzOne(ctx context.Context) error {
	base := gb.schedule()
	input := gb.mutate(base)

	diff, err := gb.r.RunOne(ctx, input)
	if err != nil {
		return err
	}

	if reported, err := detectErrors(gb.r, input, diff); err != nil {
		return err
	} else if reported {
		return nil
	}
	if reported, err := doObjective(ctx, gb.r, input, diff); err != nil {
		return err
	} else if reported {
		return nil
	}

	opinion, err := gb.feedback.Opinion(diff.First)
	if err != nil {
		return err
	}
	if opinion.Interesting {
		mergeNovelty(gb.feedback.Map(), opinion.Observed)
		gb.corpus = append(gb.corpus, corpusEntry{workload: input})
	}
	return nil
}

// schedule picks the next corpus entry in FIFO round-robin order.
func (gb *Greybox) schedule() abstractfs.Workload {
	entry := gb.corpus[gb.cursor%len(gb.corpus)]
	gb.cursor++
	return entry.workload
}

// mutate applies up to maxMutations primitive edits to base, keeping each
// edit only if it still replays.
func (gb *Greybox) mutate(base abstractfs.Workload) abstractfs.Workload {
	w := base
	n := gb.gen.Intn(gb.maxMutations) + 1
	for i := 0; i < n; i++ {
		if mutated, ok := abstractfs.Mutate(gb.gen, w, gb.mutation); ok {
			w = mutated
		}
	}
	return w
}

// mergeNovelty folds a run's observed coverage set into the global map
// using a log-bucketed hit counter: a slot transitions to the next
// power-of-two bucket rather than tracking a raw, unbounded count.
func mergeNovelty(m coverage.Map, observed map[uint64]struct{}) {
	for id := range observed {
		count := m[id]
		m[id] = nextBucket(count)
	}
}

func nextBucket(count uint64) uint64 {
	if count == 0 {
		return 1
	}
	bucket := uint64(1)
	for bucket <= count {
		bucket <<= 1
	}
	return bucket
}
