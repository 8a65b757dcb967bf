package fuzz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fsdrift/fsdrift/internal/abstractfs"
	"github.com/fsdrift/fsdrift/internal/hasher"
	"github.com/fsdrift/fsdrift/internal/objective"
)

func row(i int, cmd string, rc int, errno string) abstractfs.TraceRow {
	return abstractfs.TraceRow{Index: i, Command: cmd, ReturnCode: rc, Errno: errno}
}

func TestReasonForTraceOnly(t *testing.T) {
	diff := objective.DiffOutcome{TraceDiff: objective.TraceDiff{Rows: []objective.TraceRowDiff{{Index: 0}}}}
	assert.Equal(t, "syscall trace diverged", reasonFor(diff))
}

func TestReasonForDashOnly(t *testing.T) {
	diff := objective.DiffOutcome{DashDiff: hasher.FileDiff{Entries: []hasher.EntryDiff{{}}}}
	assert.Equal(t, "content snapshot diverged", reasonFor(diff))
}

func TestReasonForBoth(t *testing.T) {
	diff := objective.DiffOutcome{
		TraceDiff: objective.TraceDiff{Rows: []objective.TraceRowDiff{{Index: 0}}},
		DashDiff:  hasher.FileDiff{Entries: []hasher.EntryDiff{{}}},
	}
	assert.Equal(t, "trace and content snapshot both diverged", reasonFor(diff))
}

func TestBothHaveErrorsWhenBothTracesError(t *testing.T) {
	errTrace := abstractfs.Trace{Rows: []abstractfs.TraceRow{row(0, "do_open", -1, "ENOENT(2)")}}
	diff := objective.DiffOutcome{
		First:  objective.RunOutcome{Trace: errTrace},
		Second: objective.RunOutcome{Trace: errTrace},
	}
	assert.True(t, diff.BothHaveErrors())
}
