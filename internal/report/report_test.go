package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsdrift/fsdrift/internal/abstractfs"
	"github.com/fsdrift/fsdrift/internal/hasher"
	"github.com/fsdrift/fsdrift/internal/objective"
)

func sampleDiff() objective.DiffOutcome {
	return objective.DiffOutcome{
		First: objective.RunOutcome{
			Stdout: "out1",
			Stderr: "err1",
			Trace: abstractfs.Trace{Rows: []abstractfs.TraceRow{
				{Index: 0, Command: "do_create", ReturnCode: 0, Errno: abstractfs.Success},
			}},
		},
		Second: objective.RunOutcome{
			Stdout: "out2",
			Stderr: "err2",
			Trace: abstractfs.Trace{Rows: []abstractfs.TraceRow{
				{Index: 0, Command: "do_create", ReturnCode: -1, Errno: "ENOSPC(28)"},
			}},
		},
		TraceDiff: objective.TraceDiff{Rows: []objective.TraceRowDiff{{Index: 0}}},
		DashDiff:  hasher.FileDiff{},
	}
}

func TestDirNameIsDeterministic(t *testing.T) {
	w := abstractfs.Workload{}
	assert.Equal(t, DirName(w), DirName(w))
	assert.Len(t, DirName(w), 16)
}

func TestWriteProducesAllArtifacts(t *testing.T) {
	root := t.TempDir()
	w := abstractfs.Workload{}
	diff := sampleDiff()

	rep, err := Write(root, w, "ext4", "btrfs", diff, "trace divergence")
	require.NoError(t, err)
	assert.Equal(t, "trace divergence", rep.Reason)

	for _, name := range []string{
		"test.json", "test.c",
		"ext4-stdout.txt", "ext4-stderr.txt", "ext4-trace.csv",
		"btrfs-stdout.txt", "btrfs-stderr.txt", "btrfs-trace.csv",
		"dash-diff.json", "reason.md",
	} {
		data, err := os.ReadFile(filepath.Join(rep.Root, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}

	reason, err := os.ReadFile(filepath.Join(rep.Root, "reason.md"))
	require.NoError(t, err)
	assert.Contains(t, string(reason), "trace divergence")
	assert.Contains(t, string(reason), "index 0")
}

func TestWriteDedupesSameWorkload(t *testing.T) {
	root := t.TempDir()
	w := abstractfs.Workload{}
	diff := sampleDiff()

	first, err := Write(root, w, "ext4", "btrfs", diff, "trace divergence")
	require.NoError(t, err)
	second, err := Write(root, w, "ext4", "btrfs", diff, "trace divergence")
	require.NoError(t, err)

	assert.Equal(t, first.Root, second.Root)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteDisambiguatesDifferentWorkloadSameDirName(t *testing.T) {
	root := t.TempDir()
	w := abstractfs.Workload{}
	diff := sampleDiff()

	first, err := Write(root, w, "ext4", "btrfs", diff, "trace divergence")
	require.NoError(t, err)

	// Corrupt the stored test.json so the next Write sees a mismatch and
	// must fall back to a disambiguated directory name.
	require.NoError(t, os.WriteFile(filepath.Join(first.Root, "test.json"), []byte(`{"different":true}`), 0o644))

	second, err := Write(root, w, "ext4", "btrfs", diff, "trace divergence")
	require.NoError(t, err)
	assert.NotEqual(t, first.Root, second.Root)
}
