package harness

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEveryFile(t *testing.T) {
	for _, name := range Files {
		data, err := Read(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}

func TestReadUnknownFile(t *testing.T) {
	_, err := Read("does-not-exist.c")
	assert.Error(t, err)
}

func TestAllReturnsEveryFile(t *testing.T) {
	all, err := All()
	require.NoError(t, err)
	assert.Len(t, all, len(Files))
	for _, name := range Files {
		assert.Contains(t, all, name)
		assert.NotEmpty(t, all[name])
	}
}

func TestAllMatchesRead(t *testing.T) {
	all, err := All()
	require.NoError(t, err)
	for name, data := range all {
		direct, err := Read(name)
		require.NoError(t, err)
		assert.Equal(t, direct, data)
	}
}

func TestWalkVisitsEveryFile(t *testing.T) {
	seen := map[string]bool{}
	err := Walk(func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			seen[d.Name()] = true
		}
		return nil
	})
	require.NoError(t, err)
	for _, name := range Files {
		assert.True(t, seen[name], name)
	}
}

func TestExecutorContainsEveryHarnessCall(t *testing.T) {
	data, err := Read("executor.cpp")
	require.NoError(t, err)
	src := string(data)
	for _, fn := range []string{
		"do_create", "do_mkdir", "do_remove", "do_hardlink", "do_symlink",
		"do_rename", "do_open", "do_close", "do_read", "do_write", "do_fsync",
	} {
		assert.Contains(t, src, fn)
	}
}
