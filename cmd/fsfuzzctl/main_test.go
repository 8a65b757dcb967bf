package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsdrift/fsdrift/internal/hasher"
)

func TestNewRootCmdWiresSubcommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["fuzz"])
	assert.True(t, names["reduce"])
	assert.True(t, names["hash"])
}

func TestHashCmdWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("contents"), 0o644))
	outPath := filepath.Join(t.TempDir(), "snapshot.json")

	cmd := newHashCmd()
	cmd.SetArgs([]string{"--target", dir, "--out", outPath})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var snap hasher.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Contains(t, snap.Root.Files, "file.txt")
}

func TestHashCmdRequiresTargetAndOut(t *testing.T) {
	cmd := newHashCmd()
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}

func TestReduceCmdRequiresTest(t *testing.T) {
	cmd := newReduceCmd()
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}

func TestFuzzCmdRejectsUnknownMode(t *testing.T) {
	configPath = ""
	cmd := newFuzzCmd()
	cmd.SetArgs([]string{"--mode", "unknown", "--fs1", "ext4", "--fs2", "btrfs"})
	err := cmd.Execute()
	assert.Error(t, err)
}

func TestLoadConfigWithNoConfigPathUsesDefaults(t *testing.T) {
	configPath = ""
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "ext4", cfg.FirstFileSystem)
}
