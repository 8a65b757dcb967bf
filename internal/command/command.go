// Package command provides the local and remote execution contracts the
// runner uses to stage the harness sources, build the generated test, and
// drive it on the target host: shell exec, file copy, and directory setup.
package command

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Sentinel errors surfaced by Interface implementations.
var (
	ErrTimedOut = errors.New("command: timed out")
	ErrCommand  = errors.New("command: non-zero exit")
)

// Result is the outcome of a foreground Exec call.
type Result struct {
	Stdout     string
	Stderr     string
	ExitCode   int
	TimedOut   bool
}

// Interface is the contract shared by the local and SSH-backed command
// channels: every iteration of the runner goes through exactly one
// implementation, chosen once at startup.
type Interface interface {
	// CreateDirAll makes path and any missing parents.
	CreateDirAll(ctx context.Context, path string) error
	// RemoveDirAll removes path and everything under it; missing paths
	// are not an error.
	RemoveDirAll(ctx context.Context, path string) error
	// CopyToRemote copies the local file at localPath to remotePath.
	CopyToRemote(ctx context.Context, localPath, remotePath string) error
	// CopyFromRemote copies remotePath back to localPath.
	CopyFromRemote(ctx context.Context, remotePath, localPath string) error
	// CopyDirFromRemote recursively copies a remote directory tree.
	CopyDirFromRemote(ctx context.Context, remoteDir, localDir string) error
	// Write writes data to path, creating or truncating it.
	Write(ctx context.Context, path string, data []byte) error
	// ReadToString reads the entire contents of path.
	ReadToString(ctx context.Context, path string) (string, error)
	// Exec runs cmd with arguments args in the default working directory,
	// returning once the process exits, the timeout elapses (if non-zero),
	// or ctx is cancelled.
	Exec(ctx context.Context, timeout time.Duration, cmd string, args ...string) (Result, error)
	// ExecInDir is Exec with an explicit working directory.
	ExecInDir(ctx context.Context, dir string, timeout time.Duration, cmd string, args ...string) (Result, error)
	// ExecBackground starts cmd with stdout/stderr/stdin redirected to
	// null and does not wait for it to exit.
	ExecBackground(ctx context.Context, dir string, cmd string, args ...string) error
}

// HarnessFiles lists the fixed sources every staged scratch directory
// needs, relative to the embedded harness template root.
var HarnessFiles = []string{"executor.h", "executor.cpp", "makefile"}

// SetupRemoteDir recreates dir empty and then calls stage to populate it;
// it does not build anything itself. It is shared by Local and Remote
// since both express these steps against Interface.
func SetupRemoteDir(ctx context.Context, iface Interface, dir string, stage func(iface Interface, dir string) error) error {
	if err := iface.RemoveDirAll(ctx, dir); err != nil {
		return errors.Wrap(err, "remove stale scratch dir")
	}
	if err := iface.CreateDirAll(ctx, dir); err != nil {
		return errors.Wrap(err, "create scratch dir")
	}
	if err := stage(iface, dir); err != nil {
		return errors.Wrap(err, "stage harness sources")
	}
	return nil
}
