package command

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Local runs every command directly on the machine fsfuzzctl is running on
// and touches the local filesystem with the os package.
type Local struct{}

var _ Interface = Local{}

func (Local) CreateDirAll(_ context.Context, path string) error {
	return errors.Wrapf(os.MkdirAll(path, 0o755), "mkdir -p %s", path)
}

func (Local) RemoveDirAll(_ context.Context, path string) error {
	return errors.Wrapf(os.RemoveAll(path), "rm -rf %s", path)
}

func (Local) CopyToRemote(_ context.Context, localPath, remotePath string) error {
	return copyFile(localPath, remotePath)
}

func (Local) CopyFromRemote(_ context.Context, remotePath, localPath string) error {
	return copyFile(remotePath, localPath)
}

func (l Local) CopyDirFromRemote(ctx context.Context, remoteDir, localDir string) error {
	return filepath.Walk(remoteDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(remoteDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(localDir, rel)
		if info.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		return copyFile(path, dst)
	})
}

func (Local) Write(_ context.Context, path string, data []byte) error {
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}

func (Local) ReadToString(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}
	return string(data), nil
}

func (Local) Exec(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	return execLocal(ctx, "", timeout, name, args...)
}

func (Local) ExecInDir(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) (Result, error) {
	return execLocal(ctx, dir, timeout, name, args...)
}

func (Local) ExecBackground(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
	return errors.Wrapf(cmd.Start(), "background exec %s", name)
}

// execLocal runs name with a wall-clock timeout; a context deadline
// exceeded (timeout elapsed) is distinguished from an ordinary non-zero
// exit, mirroring the harness's `timeout` wrapper convention where exit
// code 124 means "ran out of time".
func execLocal(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) (Result, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if runCtx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = 124
		return res, ErrTimedOut
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
		return res, errors.Wrapf(ErrCommand, "%s: %s", name, stderr.String())
	}
	if err != nil {
		return res, errors.Wrapf(err, "exec %s", name)
	}
	return res, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrapf(err, "mkdir -p %s", filepath.Dir(dst))
	}
	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "create %s", dst)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, "copy %s -> %s", src, dst)
	}
	return nil
}
