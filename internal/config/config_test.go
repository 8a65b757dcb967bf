package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsSelfConsistent(t *testing.T) {
	cfg := Default()
	assert.Equal(t, uint16(32), cfg.MaxWorkloadLength)
	assert.Equal(t, "ext4", cfg.FirstFileSystem)
	assert.Equal(t, "btrfs", cfg.SecondFileSystem)
	assert.NotEmpty(t, cfg.OperationWeights)
	assert.NotEmpty(t, cfg.MutationWeights)
}

func TestLoadWithEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().MaxWorkloadLength, cfg.MaxWorkloadLength)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
fst_fs_name = "f2fs"
snd_fs_name = "xfs"
max_workload_length = 64
timeout_seconds = 9

[greybox]
max_mutations = 8
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "f2fs", cfg.FirstFileSystem)
	assert.Equal(t, "xfs", cfg.SecondFileSystem)
	assert.Equal(t, uint16(64), cfg.MaxWorkloadLength)
	assert.Equal(t, 9*time.Second, cfg.Timeout)
	assert.Equal(t, uint16(8), cfg.Greybox.MaxMutations)
	// Fields untouched by the file keep their defaults.
	assert.True(t, cfg.HashingEnabled)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not valid = [toml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestBootWaitTimeDuration(t *testing.T) {
	q := QemuConfig{BootWaitTime: 20}
	assert.Equal(t, 20*time.Second, q.BootWaitTimeDuration())
}
