package fuzz

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsdrift/fsdrift/internal/abstractfs"
	"github.com/fsdrift/fsdrift/internal/coverage"
)

func newTestGreybox() *Greybox {
	rng := rand.New(rand.NewSource(1))
	return NewGreybox(nil, rng, abstractfs.UniformOperationWeights(), abstractfs.DefaultMutationWeights(), 3, coverage.NewDummy())
}

func TestNewGreyboxSeedsEmptyWorkload(t *testing.T) {
	gb := newTestGreybox()
	require.Len(t, gb.corpus, 1)
	assert.Equal(t, 0, gb.corpus[0].workload.Len())
}

func TestScheduleRoundRobinsThroughCorpus(t *testing.T) {
	gb := newTestGreybox()
	gb.corpus = append(gb.corpus, corpusEntry{workload: abstractfs.Workload{}}, corpusEntry{workload: abstractfs.Workload{}})

	// cursor wraps modulo len(corpus); after len(corpus) calls it returns
	// to entry 0.
	for i := 0; i < len(gb.corpus); i++ {
		gb.schedule()
	}
	assert.Equal(t, len(gb.corpus), gb.cursor)
}

func TestMutateProducesReplayableWorkload(t *testing.T) {
	gb := newTestGreybox()
	out := gb.mutate(abstractfs.Workload{})
	assert.True(t, abstractfs.Valid(out))
}

func TestNextBucketDoublesPastCount(t *testing.T) {
	cases := []struct {
		count uint64
		want  uint64
	}{
		{0, 1},
		{1, 2},
		{2, 4},
		{3, 4},
		{4, 8},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, nextBucket(c.count), "count=%d", c.count)
	}
}

func TestMergeNoveltyBucketsObservedIDs(t *testing.T) {
	m := coverage.Map{}
	mergeNovelty(m, map[uint64]struct{}{42: {}})
	assert.Equal(t, uint64(1), m[42])

	mergeNovelty(m, map[uint64]struct{}{42: {}})
	assert.Equal(t, uint64(2), m[42])
}

func TestGreyboxSeedAppendsOnlyValidWorkloads(t *testing.T) {
	gb := newTestGreybox()
	before := len(gb.corpus)

	invalid := abstractfs.Workload{Ops: []abstractfs.Operation{{Kind: abstractfs.OpRemove, Path: "/missing"}}}
	gb.Seed([]abstractfs.Workload{{}, invalid})
	assert.Equal(t, before+1, len(gb.corpus))
}
