package main

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/fsdrift/fsdrift/internal/command"
	"github.com/fsdrift/fsdrift/internal/config"
	"github.com/fsdrift/fsdrift/internal/mount"
	"github.com/fsdrift/fsdrift/internal/runner"
	"github.com/fsdrift/fsdrift/internal/supervisor"
)

// buildRunner wires a Runner from the loaded config and the two named
// filesystems, using a Local command interface and a no-op supervisor.
// fs1Name/fs2Name are expected to already reflect the defaults -> file ->
// CLI precedence chain (the caller resolves --fs1/--fs2 against
// cfg.FirstFileSystem/cfg.SecondFileSystem before calling in).
// No Remote or QEMU wiring happens here, and no CLI flag selects them.
func buildRunner(cfg config.Config, fs1Name, fs2Name, scratchDir, crashesDir, accidentsDir string) (*runner.Runner, error) {
	fs1, err := mount.Lookup(fs1Name)
	if err != nil {
		return nil, err
	}
	fs2, err := mount.Lookup(fs2Name)
	if err != nil {
		return nil, err
	}

	first := runner.Side{Mount: fs1, MountPath: filepath.Join("/mnt", fs1.String()), DevicePath: "/dev/vdb"}
	second := runner.Side{Mount: fs2, MountPath: filepath.Join("/mnt", fs2.String()), DevicePath: "/dev/vdc"}

	r := runner.New(
		command.Local{},
		supervisor.NativeSupervisor{},
		first, second,
		scratchDir, crashesDir, accidentsDir,
		cfg.Timeout, cfg.HashingEnabled,
		log.WithField("component", "runner"),
	)
	return r, nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, errors.Wrap(err, "load config")
	}
	return cfg, nil
}
