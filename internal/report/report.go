// Package report persists a divergence or accident directory: the
// triggering Workload, its encoded C program, each side's stdout/stderr
// and trace, the structural content diff, and a short markdown summary.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fsdrift/fsdrift/internal/abstractfs"
	"github.com/fsdrift/fsdrift/internal/objective"
)

// DirName derives a deterministic directory name from a Workload's
// encoded program, so two runs that trigger the same bug dedupe into the
// same report directory instead of piling up duplicates.
func DirName(w abstractfs.Workload) string {
	sum := sha256.Sum256([]byte(w.EncodeC()))
	return hex.EncodeToString(sum[:])[:16]
}

// Report is everything written to one divergence directory.
type Report struct {
	Root   string
	Reason string
}

// Write creates dir (adding a uuid suffix if it already exists with
// different contents) and writes every artifact named in the package doc
// comment. fst/snd name the two filesystems for the per-side filenames.
func Write(root string, w abstractfs.Workload, fstName, sndName string, diff objective.DiffOutcome, reason string) (Report, error) {
	dir := filepath.Join(root, DirName(w))
	if existing, err := os.ReadFile(filepath.Join(dir, "test.json")); err == nil {
		want, _ := json.MarshalIndent(w, "", "  ")
		if string(existing) != string(want) {
			dir = dir + "-" + uuid.NewString()[:8]
		} else {
			return Report{Root: dir, Reason: reason}, nil
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Report{}, errors.Wrapf(err, "mkdir report dir %s", dir)
	}

	if err := writeJSON(filepath.Join(dir, "test.json"), w); err != nil {
		return Report{}, err
	}
	if err := os.WriteFile(filepath.Join(dir, "test.c"), []byte(w.EncodeC()), 0o644); err != nil {
		return Report{}, errors.Wrap(err, "write test.c")
	}

	if err := writeSide(dir, fstName, diff.First); err != nil {
		return Report{}, err
	}
	if err := writeSide(dir, sndName, diff.Second); err != nil {
		return Report{}, err
	}

	if err := writeJSON(filepath.Join(dir, "dash-diff.json"), diff.DashDiff); err != nil {
		return Report{}, err
	}

	if err := os.WriteFile(filepath.Join(dir, "reason.md"), []byte(renderReason(reason, diff)), 0o644); err != nil {
		return Report{}, errors.Wrap(err, "write reason.md")
	}

	return Report{Root: dir, Reason: reason}, nil
}

func writeSide(dir, fsName string, side objective.RunOutcome) error {
	if err := os.WriteFile(filepath.Join(dir, fsName+"-stdout.txt"), []byte(side.Stdout), 0o644); err != nil {
		return errors.Wrap(err, "write stdout")
	}
	if err := os.WriteFile(filepath.Join(dir, fsName+"-stderr.txt"), []byte(side.Stderr), 0o644); err != nil {
		return errors.Wrap(err, "write stderr")
	}
	if err := os.WriteFile(filepath.Join(dir, fsName+"-trace.csv"), []byte(renderTraceCSV(side.Trace)), 0o644); err != nil {
		return errors.Wrap(err, "write trace")
	}
	return nil
}

func renderTraceCSV(t abstractfs.Trace) string {
	var b strings.Builder
	b.WriteString("Index,Command,ReturnCode,Errno\n")
	for _, row := range t.Rows {
		fmt.Fprintf(&b, "%d,%s,%d,%s\n", row.Index, row.Command, row.ReturnCode, row.Errno)
	}
	return b.String()
}

func renderReason(reason string, diff objective.DiffOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Divergence\n\n%s\n\n", reason)
	if len(diff.TraceDiff.Rows) > 0 {
		b.WriteString("## Trace rows that disagree\n\n")
		for _, row := range diff.TraceDiff.Rows {
			if row.LengthMismatch {
				fmt.Fprintf(&b, "- index %d: present on only one side\n", row.Index)
				continue
			}
			fmt.Fprintf(&b, "- index %d: %s/%d/%s vs %s/%d/%s\n",
				row.Index, row.First.Command, row.First.ReturnCode, row.First.Errno,
				row.Second.Command, row.Second.ReturnCode, row.Second.Errno)
		}
	}
	if diff.DashDiff.IsInteresting() {
		fmt.Fprintf(&b, "\n## Content diff\n\n%d differing entries\n", len(diff.DashDiff.Entries))
	}
	return b.String()
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "marshal %s", path)
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}
