// Package objective decides whether a pair of harness runs is
// "interesting": worth reporting, or worth adding to a greybox corpus.
package objective

import (
	"github.com/fsdrift/fsdrift/internal/abstractfs"
	"github.com/fsdrift/fsdrift/internal/hasher"
)

// RunOutcome is everything collected from one filesystem's side of one
// iteration.
type RunOutcome struct {
	Trace    abstractfs.Trace
	Stdout   string
	Stderr   string
	TimedOut bool
	Dash     hasher.Snapshot
}

// DiffOutcome pairs the two filesystems' outcomes for one iteration.
type DiffOutcome struct {
	First, Second RunOutcome
	TraceDiff     TraceDiff
	DashDiff      hasher.FileDiff
}

// AnyInteresting is the union objective the driver checks after every
// iteration: trace divergence or content divergence.
func (d DiffOutcome) AnyInteresting() bool {
	return TraceObjective{}.IsInteresting(d.TraceDiff) || DashObjective{}.IsInteresting(d.DashDiff)
}

// BothHaveErrors flags the "potential bug in the abstract model" case:
// both sides independently failed the same workload.
func (d DiffOutcome) BothHaveErrors() bool {
	return len(d.First.Trace.Errors()) > 0 && len(d.Second.Trace.Errors()) > 0
}

// TraceRowDiff is one index where the two traces disagree.
type TraceRowDiff struct {
	Index       int
	First, Second abstractfs.TraceRow
	// LengthMismatch marks a row present on only one side.
	LengthMismatch bool
}

// TraceDiff is the full, index-aligned comparison of two traces.
type TraceDiff struct {
	Rows []TraceRowDiff
}

// TraceObjective projects each row to (Command, ReturnCode, Errno) and
// compares index-by-index; a length mismatch is itself a divergence.
type TraceObjective struct{}

// Compare builds the TraceDiff between fst and snd.
func (TraceObjective) Compare(fst, snd abstractfs.Trace) TraceDiff {
	var rows []TraceRowDiff
	n := len(fst.Rows)
	if len(snd.Rows) > n {
		n = len(snd.Rows)
	}
	for i := 0; i < n; i++ {
		var a, b abstractfs.TraceRow
		haveA := i < len(fst.Rows)
		haveB := i < len(snd.Rows)
		if haveA {
			a = fst.Rows[i]
		}
		if haveB {
			b = snd.Rows[i]
		}
		if !haveA || !haveB {
			rows = append(rows, TraceRowDiff{Index: i, First: a, Second: b, LengthMismatch: true})
			continue
		}
		if a.Command != b.Command || a.ReturnCode != b.ReturnCode || a.Errno != b.Errno {
			rows = append(rows, TraceRowDiff{Index: i, First: a, Second: b})
		}
	}
	return TraceDiff{Rows: rows}
}

// IsInteresting reports whether d represents any divergence at all.
func (TraceObjective) IsInteresting(d TraceDiff) bool {
	return len(d.Rows) > 0
}

// DashObjective wraps the content hasher's structural diff: any
// difference between the two post-run snapshots is interesting.
type DashObjective struct{}

func (DashObjective) Compare(fst, snd hasher.Snapshot) hasher.FileDiff {
	return hasher.Diff(fst, snd)
}

func (DashObjective) IsInteresting(d hasher.FileDiff) bool {
	return d.IsInteresting()
}
