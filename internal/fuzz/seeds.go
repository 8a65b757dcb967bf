package fuzz

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fsdrift/fsdrift/internal/abstractfs"
)

// LoadSeedCorpus reads a hand-edited YAML file of seed Workloads used to
// bootstrap a greybox corpus beyond the empty-Workload default. YAML
// rather than JSON here specifically because this file is meant to be
// written and tweaked by a person, not only round-tripped by the tool.
func LoadSeedCorpus(path string) ([]abstractfs.Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read seed corpus %s", path)
	}
	var seeds []abstractfs.Workload
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, errors.Wrapf(err, "parse seed corpus %s", path)
	}
	return seeds, nil
}

// Seed adds every valid Workload in seeds to gb's corpus, silently
// skipping any that fail to replay (a hand-edited seed file is the one
// place invalid input is expected to show up).
func (gb *Greybox) Seed(seeds []abstractfs.Workload) {
	for _, w := range seeds {
		if abstractfs.Valid(w) {
			gb.corpus = append(gb.corpus, corpusEntry{workload: w})
		}
	}
}
