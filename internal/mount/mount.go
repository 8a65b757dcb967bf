// Package mount is the static registry of named filesystem
// capability-providers: given a device path and a mount point, each entry
// knows how to format and mount itself, and how to tear the mount down
// again.
package mount

import (
	"context"
	"fmt"
	"strings"

	"github.com/fsdrift/fsdrift/internal/command"
	"github.com/pkg/errors"
)

// FileSystemMount is one named, mountable filesystem kind.
type FileSystemMount interface {
	fmt.Stringer
	// Setup formats devicePath for this filesystem and mounts it at
	// mountPath.
	Setup(ctx context.Context, iface command.Interface, devicePath, mountPath string) error
	// Teardown unmounts mountPath. Best-effort: an already-unmounted
	// target is not an error.
	Teardown(ctx context.Context, iface command.Interface, mountPath string) error
}

type mkfsMount struct {
	name    string
	mkfs    string
	mkfsArg []string
	fstype  string
}

func (m mkfsMount) String() string { return m.name }

func (m mkfsMount) Setup(ctx context.Context, iface command.Interface, devicePath, mountPath string) error {
	args := append(append([]string(nil), m.mkfsArg...), devicePath)
	if _, err := iface.Exec(ctx, 0, m.mkfs, args...); err != nil {
		return errors.Wrapf(err, "%s on %s", m.mkfs, devicePath)
	}
	if err := iface.CreateDirAll(ctx, mountPath); err != nil {
		return err
	}
	if _, err := iface.Exec(ctx, 0, "mount", "-t", m.fstype, devicePath, mountPath); err != nil {
		return errors.Wrapf(err, "mount -t %s %s %s", m.fstype, devicePath, mountPath)
	}
	return nil
}

func (m mkfsMount) Teardown(ctx context.Context, iface command.Interface, mountPath string) error {
	_, _ = iface.Exec(ctx, 0, "umount", mountPath)
	return nil
}

// Registry lists every filesystem kind fsfuzzctl knows how to drive, in
// declaration order (the order the Overview section names them in).
var Registry = []FileSystemMount{
	mkfsMount{name: "ext4", mkfs: "mkfs.ext4", mkfsArg: []string{"-F"}, fstype: "ext4"},
	mkfsMount{name: "btrfs", mkfs: "mkfs.btrfs", mkfsArg: []string{"-f"}, fstype: "btrfs"},
	mkfsMount{name: "f2fs", mkfs: "mkfs.f2fs", mkfsArg: []string{"-f"}, fstype: "f2fs"},
	mkfsMount{name: "xfs", mkfs: "mkfs.xfs", mkfsArg: []string{"-f"}, fstype: "xfs"},
}

// ErrUnknownFileSystem is returned by Lookup for a name not in Registry.
var ErrUnknownFileSystem = errors.New("mount: unknown filesystem")

// Lookup resolves name case-insensitively against Registry.
func Lookup(name string) (FileSystemMount, error) {
	lower := strings.ToLower(name)
	for _, fs := range Registry {
		if strings.ToLower(fs.String()) == lower {
			return fs, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownFileSystem, "%q", name)
}

// Available lists every registered filesystem name, lower-cased.
func Available() []string {
	names := make([]string, len(Registry))
	for i, fs := range Registry {
		names[i] = strings.ToLower(fs.String())
	}
	return names
}
