package abstractfs

import "github.com/pkg/errors"

// MutationKind names one of the three primitive edits the greybox driver
// composes a mutation pass from.
type MutationKind int

const (
	MutateRemove MutationKind = iota
	MutateInsert
	MutateAppend
)

var mutationKindName = map[MutationKind]string{
	MutateRemove: "REMOVE",
	MutateInsert: "INSERT",
	MutateAppend: "APPEND",
}

func (k MutationKind) String() string { return mutationKindName[k] }

var mutationKindFromName = func() map[string]MutationKind {
	m := make(map[string]MutationKind, len(mutationKindName))
	for k, name := range mutationKindName {
		m[name] = k
	}
	return m
}()

// MarshalText renders the kind by its canonical name, for TOML tables
// keyed by mutation name.
func (k MutationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *MutationKind) UnmarshalText(text []byte) error {
	v, ok := mutationKindFromName[string(text)]
	if !ok {
		return errors.Errorf("unknown mutation kind %q", text)
	}
	*k = v
	return nil
}

// MutationWeights maps each primitive edit to a sampling weight.
type MutationWeights map[MutationKind]uint32

// DefaultMutationWeights favours insertion over blind append or removal,
// matching the source's bias toward growing a corpus entry in place
// rather than just truncating or extending its tail.
func DefaultMutationWeights() MutationWeights {
	return MutationWeights{
		MutateRemove: 20,
		MutateInsert: 60,
		MutateAppend: 20,
	}
}
