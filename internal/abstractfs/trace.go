package abstractfs

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TraceRow is one parsed row of the harness's per-call CSV trace.
type TraceRow struct {
	Index      int
	Command    string
	ReturnCode int
	Errno      string
}

// Success is the errno token a call records when it did not fail.
const Success = "Success(0)"

// IsError reports whether the row's errno is anything other than Success.
func (r TraceRow) IsError() bool {
	return r.Errno != Success
}

// Trace is a parsed sequence of TraceRows, in file order.
type Trace struct {
	Rows []TraceRow
}

// Errors returns every row whose errno is not Success(0).
func (t Trace) Errors() []TraceRow {
	var out []TraceRow
	for _, r := range t.Rows {
		if r.IsError() {
			out = append(out, r)
		}
	}
	return out
}

// Sentinel trace parse errors.
var (
	ErrEmptyTrace          = errors.New("trace: empty input")
	ErrInvalidColumnsCount = errors.New("trace: row does not have exactly four columns")
)

const traceHeader = "Index,Command,ReturnCode,Errno"

// ParseTrace parses the CSV trace format written by the harness: a fixed
// header row followed by one four-column row per syscall. Empty input is
// an error; header-only input is a valid, empty Trace.
func ParseTrace(s string) (Trace, error) {
	if strings.TrimSpace(s) == "" {
		return Trace{}, ErrEmptyTrace
	}
	lines := strings.Split(s, "\n")
	var rows []TraceRow
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, ",")
		if len(cols) != 4 {
			return Trace{}, ErrInvalidColumnsCount
		}
		index, err := strconv.Atoi(strings.TrimSpace(cols[0]))
		if err != nil {
			return Trace{}, errors.Wrap(err, "trace: parse index")
		}
		returnCode, err := strconv.Atoi(strings.TrimSpace(cols[2]))
		if err != nil {
			return Trace{}, errors.Wrap(err, "trace: parse return code")
		}
		rows = append(rows, TraceRow{
			Index:      index,
			Command:    strings.TrimSpace(cols[1]),
			ReturnCode: returnCode,
			Errno:      strings.TrimSpace(cols[3]),
		})
	}
	return Trace{Rows: rows}, nil
}
