package abstractfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseTraceEmpty and friends ground scenario S6.
func TestParseTraceEmpty(t *testing.T) {
	_, err := ParseTrace("")
	assert.ErrorIs(t, err, ErrEmptyTrace)
}

func TestParseTraceHeaderOnly(t *testing.T) {
	tr, err := ParseTrace(traceHeader + "\n")
	require.NoError(t, err)
	assert.Empty(t, tr.Rows)
}

func TestParseTraceInvalidColumnsCount(t *testing.T) {
	_, err := ParseTrace(traceHeader + "\n1,Foo,42\n")
	assert.ErrorIs(t, err, ErrInvalidColumnsCount)
}

func TestParseTraceOK(t *testing.T) {
	tr, err := ParseTrace(traceHeader + "\n1,Foo,42,Success(0)\n2,Bar,-1,Error(42)\n")
	require.NoError(t, err)
	require.Len(t, tr.Rows, 2)
	assert.Equal(t, TraceRow{Index: 1, Command: "Foo", ReturnCode: 42, Errno: "Success(0)"}, tr.Rows[0])
	assert.Equal(t, TraceRow{Index: 2, Command: "Bar", ReturnCode: -1, Errno: "Error(42)"}, tr.Rows[1])
	assert.Len(t, tr.Errors(), 1)
}
