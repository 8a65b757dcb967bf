// Package config loads fsfuzzctl's configuration with the documented
// precedence: built-in defaults, overridden by a TOML file, overridden by
// CLI flags (applied by the caller after Load returns).
package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/fsdrift/fsdrift/internal/abstractfs"
)

// GreyboxConfig tunes the coverage-guided driver.
type GreyboxConfig struct {
	MaxMutations uint16 `toml:"max_mutations"`
	SaveCorpus   bool   `toml:"save_corpus"`
}

// QemuConfig names the QEMU launch script and the VM it boots.
//
// See https://www.qemu.org/docs/master/system/invocation.html for the
// flags the launch script wraps.
type QemuConfig struct {
	LaunchScript      string `toml:"launch_script"`
	SSHPrivateKeyPath string `toml:"ssh_private_key_path"`
	MonitorPort       uint16 `toml:"monitor_port"`
	SSHPort           uint16 `toml:"ssh_port"`
	OSImage           string `toml:"os_image"`
	QMPSocketPath     string `toml:"qmp_socket_path"`
	MonitorSocketPath string `toml:"monitor_socket_path"`
	BootWaitTime      uint16 `toml:"boot_wait_time_seconds"`
}

// Config is the full, resolved configuration for one fsfuzzctl invocation.
type Config struct {
	Greybox           GreyboxConfig             `toml:"greybox"`
	OperationWeights  abstractfs.OperationWeights `toml:"operation_weights"`
	MutationWeights   abstractfs.MutationWeights  `toml:"mutation_weights"`
	MaxWorkloadLength uint16                    `toml:"max_workload_length"`
	FirstFileSystem   string                    `toml:"fst_fs_name"`
	SecondFileSystem  string                    `toml:"snd_fs_name"`
	HashingEnabled    bool                      `toml:"hashing_enabled"`
	HeartbeatInterval uint16                    `toml:"heartbeat_interval"`
	Timeout           time.Duration             `toml:"-"`
	TimeoutSeconds    uint8                     `toml:"timeout_seconds"`
	Qemu              QemuConfig                `toml:"qemu"`
}

// Default returns the built-in baseline every run starts from before a
// TOML file or CLI flags are layered on top.
func Default() Config {
	return Config{
		Greybox: GreyboxConfig{
			MaxMutations: 4,
			SaveCorpus:   true,
		},
		OperationWeights:  abstractfs.UniformOperationWeights(),
		MutationWeights:   abstractfs.DefaultMutationWeights(),
		MaxWorkloadLength: 32,
		FirstFileSystem:   "ext4",
		SecondFileSystem:  "btrfs",
		HashingEnabled:    true,
		HeartbeatInterval: 10,
		TimeoutSeconds:    5,
		Qemu: QemuConfig{
			MonitorPort:  55555,
			SSHPort:      2222,
			BootWaitTime: 20,
		},
	}
}

// Load reads a TOML file at path and overlays it onto Default(). A key
// missing from the file leaves the default in place; a malformed file or
// a value of the wrong type is returned as an error. An empty path skips
// the file and returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "decode config %s", path)
	}
	cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	return cfg, nil
}

// BootWaitTimeDuration converts the configured boot wait from seconds to
// a time.Duration for supervisor.QemuConfig.
func (q QemuConfig) BootWaitTimeDuration() time.Duration {
	return time.Duration(q.BootWaitTime) * time.Second
}
