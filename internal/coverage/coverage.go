// Package coverage defines the greybox driver's feedback contract. Only
// a dummy, always-uninteresting implementation ships; the Type enum below
// names the coverage sources a Feedback implementation can report.
package coverage

import "github.com/fsdrift/fsdrift/internal/objective"

// Type names which coverage source a Feedback implementation reads from.
type Type int

const (
	// TypeNone means no coverage is collected; no input looks novel, so
	// the greybox corpus never grows beyond its seeds.
	TypeNone Type = iota
	// TypeKCov is Linux kernel coverage, relevant when the fuzzed side is
	// a kernel filesystem driver.
	TypeKCov
	// TypeLCov is userspace line coverage.
	TypeLCov
)

func (t Type) String() string {
	switch t {
	case TypeKCov:
		return "KCov"
	case TypeLCov:
		return "LCov"
	default:
		return "None"
	}
}

// Map is the global hit-count table: edge/line id -> observed hit count,
// log-bucketed by Feedback implementations that care about bucket
// transitions rather than raw counts.
type Map map[uint64]uint64

// Opinion is a Feedback's verdict on one run, carrying the coverage set
// it observed regardless of the verdict so the caller can merge it into
// Map on a later decision.
type Opinion struct {
	Interesting bool
	Observed    map[uint64]struct{}
}

// Feedback is implemented by every coverage source the greybox driver can
// be wired to.
type Feedback interface {
	Type() Type
	Map() Map
	Opinion(outcome objective.RunOutcome) (Opinion, error)
}

// Dummy always reports "not interesting": it is the default feedback
// source when no coverage instrumentation is configured, so the greybox
// driver still runs (its corpus then stays at the seeds, while the
// objectives still write reports) instead of refusing to start.
type Dummy struct {
	m Map
}

var _ Feedback = (*Dummy)(nil)

// NewDummy returns a ready-to-use Dummy feedback source.
func NewDummy() *Dummy {
	return &Dummy{m: Map{}}
}

func (d *Dummy) Type() Type { return TypeNone }
func (d *Dummy) Map() Map   { return d.m }

func (d *Dummy) Opinion(objective.RunOutcome) (Opinion, error) {
	return Opinion{Interesting: false}, nil
}
