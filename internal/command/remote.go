package command

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	sshagent "github.com/xanzy/ssh-agent"
	"golang.org/x/crypto/ssh"
)

// RemoteOptions configures the SSH/SCP-equivalent transport to the VM
// under test. PrivateKeyPath may be empty, in which case the local
// SSH_AUTH_SOCK agent is used instead.
type RemoteOptions struct {
	Host           string
	Port           int
	User           string
	PrivateKeyPath string
	TmpDir         string
}

// Remote drives the host over a long-lived *ssh.Client, which gives every
// Exec/Copy call the equivalent of the documented ControlMaster/
// ControlPersist multiplexing (one TCP+auth handshake, many channels)
// without shelling out to the ssh/scp binaries.
type Remote struct {
	opts   RemoteOptions
	client *ssh.Client
}

var _ Interface = (*Remote)(nil)

// Dial opens the multiplexed connection used for every subsequent call.
func Dial(opts RemoteOptions) (*Remote, error) {
	auth, err := remoteAuthMethods(opts.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	cfg := &ssh.ClientConfig{
		User:            opts.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // localhost-only test VM, per the documented "StrictHostKeyChecking no"
		Timeout:         10 * time.Second,
	}
	addr := net.JoinHostPort(opts.Host, fmt.Sprintf("%d", opts.Port))
	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	return &Remote{opts: opts, client: client}, nil
}

func remoteAuthMethods(privateKeyPath string) ([]ssh.AuthMethod, error) {
	if privateKeyPath != "" {
		key, err := os.ReadFile(privateKeyPath)
		if err != nil {
			return nil, errors.Wrapf(err, "read private key %s", privateKeyPath)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, errors.Wrap(err, "parse private key")
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	agentConn, _, err := sshagent.New()
	if err != nil {
		return nil, errors.Wrap(err, "connect ssh agent")
	}
	signers, err := agentConn.Signers()
	if err != nil {
		return nil, errors.Wrap(err, "list agent signers")
	}
	return []ssh.AuthMethod{ssh.PublicKeys(signers...)}, nil
}

func (r *Remote) newSession() (*ssh.Session, error) {
	return r.client.NewSession()
}

func (r *Remote) newSFTP() (*sftp.Client, error) {
	return sftp.NewClient(r.client)
}

func (r *Remote) CreateDirAll(_ context.Context, remotePath string) error {
	sess, err := r.newSession()
	if err != nil {
		return err
	}
	defer sess.Close()
	return errors.Wrapf(sess.Run(fmt.Sprintf("mkdir -p %q", remotePath)), "mkdir -p %s", remotePath)
}

func (r *Remote) RemoveDirAll(_ context.Context, remotePath string) error {
	sess, err := r.newSession()
	if err != nil {
		return err
	}
	defer sess.Close()
	return errors.Wrapf(sess.Run(fmt.Sprintf("rm -rf %q", remotePath)), "rm -rf %s", remotePath)
}

func (r *Remote) CopyToRemote(_ context.Context, localPath, remotePath string) error {
	cli, err := r.newSFTP()
	if err != nil {
		return err
	}
	defer cli.Close()
	data, err := os.ReadFile(localPath)
	if err != nil {
		return errors.Wrapf(err, "read local %s", localPath)
	}
	if err := cli.MkdirAll(path.Dir(remotePath)); err != nil {
		return errors.Wrapf(err, "mkdir -p remote %s", path.Dir(remotePath))
	}
	dst, err := cli.Create(remotePath)
	if err != nil {
		return errors.Wrapf(err, "create remote %s", remotePath)
	}
	defer dst.Close()
	_, err = dst.Write(data)
	return errors.Wrapf(err, "write remote %s", remotePath)
}

func (r *Remote) CopyFromRemote(_ context.Context, remotePath, localPath string) error {
	cli, err := r.newSFTP()
	if err != nil {
		return err
	}
	defer cli.Close()
	src, err := cli.Open(remotePath)
	if err != nil {
		return errors.Wrapf(err, "open remote %s", remotePath)
	}
	defer src.Close()
	var buf bytes.Buffer
	if _, err := src.WriteTo(&buf); err != nil {
		return errors.Wrapf(err, "read remote %s", remotePath)
	}
	return errors.Wrapf(os.WriteFile(localPath, buf.Bytes(), 0o644), "write local %s", localPath)
}

func (r *Remote) CopyDirFromRemote(_ context.Context, remoteDir, localDir string) error {
	cli, err := r.newSFTP()
	if err != nil {
		return err
	}
	defer cli.Close()
	walker := cli.Walk(remoteDir)
	for walker.Step() {
		if err := walker.Err(); err != nil {
			return errors.Wrapf(err, "walk remote %s", remoteDir)
		}
		rel, err := path.Rel(remoteDir, walker.Path())
		if err != nil {
			return err
		}
		dst := path.Join(localDir, rel)
		if walker.Stat().IsDir() {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return err
			}
			continue
		}
		src, err := cli.Open(walker.Path())
		if err != nil {
			return errors.Wrapf(err, "open remote %s", walker.Path())
		}
		var buf bytes.Buffer
		_, err = src.WriteTo(&buf)
		src.Close()
		if err != nil {
			return errors.Wrapf(err, "read remote %s", walker.Path())
		}
		if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
			return errors.Wrapf(err, "write local %s", dst)
		}
	}
	return nil
}

func (r *Remote) Write(_ context.Context, remotePath string, data []byte) error {
	cli, err := r.newSFTP()
	if err != nil {
		return err
	}
	defer cli.Close()
	f, err := cli.Create(remotePath)
	if err != nil {
		return errors.Wrapf(err, "create remote %s", remotePath)
	}
	defer f.Close()
	_, err = f.Write(data)
	return errors.Wrapf(err, "write remote %s", remotePath)
}

func (r *Remote) ReadToString(_ context.Context, remotePath string) (string, error) {
	cli, err := r.newSFTP()
	if err != nil {
		return "", err
	}
	defer cli.Close()
	f, err := cli.Open(remotePath)
	if err != nil {
		return "", errors.Wrapf(err, "open remote %s", remotePath)
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return "", errors.Wrapf(err, "read remote %s", remotePath)
	}
	return buf.String(), nil
}

func (r *Remote) Exec(ctx context.Context, timeout time.Duration, cmd string, args ...string) (Result, error) {
	return r.execIn(ctx, "", timeout, cmd, args...)
}

func (r *Remote) ExecInDir(ctx context.Context, dir string, timeout time.Duration, cmd string, args ...string) (Result, error) {
	return r.execIn(ctx, dir, timeout, cmd, args...)
}

func (r *Remote) execIn(ctx context.Context, dir string, timeout time.Duration, cmd string, args ...string) (Result, error) {
	sess, err := r.newSession()
	if err != nil {
		return Result{}, err
	}
	defer sess.Close()

	line := shellLine(dir, cmd, args...)
	var stdout, stderr bytes.Buffer
	sess.Stdout, sess.Stderr = &stdout, &stderr

	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- sess.Run(line) }()

	select {
	case <-runCtx.Done():
		_ = sess.Signal(ssh.SIGKILL)
		return Result{Stdout: stdout.String(), Stderr: stderr.String(), TimedOut: true, ExitCode: 124}, ErrTimedOut
	case err := <-done:
		res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
		if exitErr, ok := err.(*ssh.ExitError); ok {
			res.ExitCode = exitErr.ExitStatus()
			return res, errors.Wrapf(ErrCommand, "%s: %s", cmd, stderr.String())
		}
		if err != nil {
			return res, errors.Wrapf(err, "exec %s", cmd)
		}
		return res, nil
	}
}

func (r *Remote) ExecBackground(_ context.Context, dir, cmd string, args ...string) error {
	sess, err := r.newSession()
	if err != nil {
		return err
	}
	line := shellLine(dir, cmd, args...) + " </dev/null >/dev/null 2>&1 &"
	if err := sess.Start(line); err != nil {
		sess.Close()
		return errors.Wrapf(err, "background exec %s", cmd)
	}
	// The remote shell detaches the job; this session's lifetime no
	// longer matters, so it is closed without waiting.
	go func() { _ = sess.Wait(); sess.Close() }()
	return nil
}

func shellLine(dir, cmd string, args ...string) string {
	line := cmd
	for _, a := range args {
		line += fmt.Sprintf(" %q", a)
	}
	if dir != "" {
		return fmt.Sprintf("cd %q && %s", dir, line)
	}
	return line
}

// Close tears down the multiplexed connection.
func (r *Remote) Close() error {
	return r.client.Close()
}
