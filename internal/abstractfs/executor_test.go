package abstractfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorMkDirAndCreate(t *testing.T) {
	e := NewExecutor()
	_, err := e.MkDir("/foo", nil)
	require.NoError(t, err)
	_, err = e.MkDir("/foo", nil)
	assert.ErrorIs(t, err, ErrNameAlreadyExists)

	_, err = e.Create("/foo/bar", nil)
	require.NoError(t, err)
	_, err = e.Create("/foo/bar", nil)
	assert.ErrorIs(t, err, ErrNameAlreadyExists)
}

func TestExecutorRemoveRootForbidden(t *testing.T) {
	e := NewExecutor()
	assert.ErrorIs(t, e.Remove("/"), ErrRootRemovalForbidden)
}

// TestExecutorHardlinkParents grounds scenario S3: hardlinking a root-level
// file into a subdirectory yields two resolvable paths, sorted.
func TestExecutorHardlinkParents(t *testing.T) {
	e := NewExecutor()
	created, err := e.Create("/foo", nil)
	require.NoError(t, err)
	_, err = e.MkDir("/bar", nil)
	require.NoError(t, err)
	linked, err := e.Hardlink("/foo", "/bar/boo")
	require.NoError(t, err)
	assert.Equal(t, created, linked)

	paths := e.ResolveFilePath(created)
	assert.Equal(t, []PathName{"/bar/boo", "/foo"}, paths)
}

// TestExecutorSubtreeRemove grounds scenario S4: removing a directory
// detaches descendants but a surviving hardlink keeps the file alive.
func TestExecutorSubtreeRemove(t *testing.T) {
	e := NewExecutor()
	f, err := e.Create("/0", nil)
	require.NoError(t, err)
	_, err = e.MkDir("/1", nil)
	require.NoError(t, err)
	_, err = e.MkDir("/1/2", nil)
	require.NoError(t, err)
	_, err = e.Hardlink("/0", "/1/2/3")
	require.NoError(t, err)
	require.NoError(t, e.Remove("/1"))

	assert.Equal(t, []PathName{"/0"}, e.ResolveFilePath(f))
	_, err = e.ResolveNode("/1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.ResolveNode("/1/2")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.ResolveNode("/1/2/3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExecutorResolveDirPath(t *testing.T) {
	e := NewExecutor()
	_, err := e.MkDir("/a", nil)
	require.NoError(t, err)
	d, err := e.MkDir("/a/b", nil)
	require.NoError(t, err)
	assert.Equal(t, PathName("/a/b"), e.ResolveDirPath(d))
	n, err := e.ResolveNode("/a/b")
	require.NoError(t, err)
	assert.Equal(t, DirNode(d), n)
}

func TestExecutorRenameRejectsDescendant(t *testing.T) {
	e := NewExecutor()
	_, err := e.MkDir("/a", nil)
	require.NoError(t, err)
	_, err = e.MkDir("/a/b", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, e.Rename("/a", "/a/b/c"), ErrInvalidPath)
}

func TestExecutorOpenCloseReadWriteFSync(t *testing.T) {
	e := NewExecutor()
	_, err := e.Create("/f", nil)
	require.NoError(t, err)
	des, err := e.Open("/f")
	require.NoError(t, err)
	assert.Equal(t, FileDescriptorIndex(0), des)
	require.NoError(t, e.Write(des, 0, 100))
	require.NoError(t, e.Read(des, 50))
	require.NoError(t, e.FSync(des))
	require.NoError(t, e.Close(des))
	assert.ErrorIs(t, e.Close(des), ErrDescriptorNotOpen)
}

// TestExecutorReplayRoundTrip grounds invariant 1: replaying a valid
// workload on a fresh executor reproduces an identical recording.
func TestExecutorReplayRoundTrip(t *testing.T) {
	w := Workload{Ops: []Operation{
		OpMkDirOp("/foo", nil),
		OpCreateOp("/foo/bar", Mode{S_IRWXU}),
		OpOpenOp("/foo/bar", 0),
		OpWriteOp(0, 999, 1024),
		OpCloseOp(0),
	}}
	e := NewExecutor()
	require.NoError(t, e.Replay(w))
	assert.Equal(t, w, e.Recording())

	for k := 1; k <= w.Len(); k++ {
		prefix := w.Prefix(k)
		e2 := NewExecutor()
		require.NoError(t, e2.Replay(prefix))
		assert.Equal(t, prefix, e2.Recording())
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Workload{Ops: []Operation{OpMkDirOp("/foo", nil)}}))
	assert.False(t, Valid(Workload{Ops: []Operation{OpRemoveOp("/missing")}}))
}
