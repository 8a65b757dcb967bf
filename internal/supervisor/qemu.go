package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os/exec"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const snapshotTag = "fresh"

// QemuConfig names the QEMU launch script and the sockets it is expected
// to expose; the script itself is responsible for wiring these
// environment variables to -monitor/-qmp/-net arguments.
type QemuConfig struct {
	LaunchScript     string
	OSImage          string
	MonitorPort      int
	SSHPort          int
	QMPSocketPath    string
	MonitorSocketPath string
	BootWaitTime     time.Duration
}

// QemuSupervisor launches qemu-system-x86_64 as a background process and
// watches its QMP event stream for guest panics.
type QemuSupervisor struct {
	cfg     QemuConfig
	cmd     *exec.Cmd
	events  *eventHandler
	log     *logrus.Entry
}

var _ Supervisor = (*QemuSupervisor)(nil)

// Launch starts the VM and connects the QMP event watcher. It blocks for
// cfg.BootWaitTime to give the guest time to come up before QMP is dialled.
func Launch(ctx context.Context, cfg QemuConfig, log *logrus.Entry) (*QemuSupervisor, error) {
	cmd := exec.Command(cfg.LaunchScript)
	cmd.Env = append(cmd.Env,
		"OS_IMAGE="+cfg.OSImage,
		fmt.Sprintf("MONITOR_PORT=%d", cfg.MonitorPort),
		fmt.Sprintf("SSH_PORT=%d", cfg.SSHPort),
		"QMP_SOCKET_PATH="+cfg.QMPSocketPath,
		"MONITOR_SOCKET_PATH="+cfg.MonitorSocketPath,
	)
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "launch qemu from %s", cfg.LaunchScript)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.WithError(err).Error("qemu exited unexpectedly")
		}
	}()

	log.Infof("waiting for VM to init (%s)", cfg.BootWaitTime)
	select {
	case <-time.After(cfg.BootWaitTime):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	events, err := launchEventHandler(cfg.QMPSocketPath, log)
	if err != nil {
		return nil, errors.Wrap(err, "launch QMP event handler")
	}

	return &QemuSupervisor{cfg: cfg, cmd: cmd, events: events, log: log}, nil
}

func (q *QemuSupervisor) monitorDial() (net.Conn, error) {
	conn, err := net.Dial("unix", q.cfg.MonitorSocketPath)
	if err != nil {
		return nil, errors.Wrapf(err, "dial monitor socket %s", q.cfg.MonitorSocketPath)
	}
	return conn, nil
}

func (q *QemuSupervisor) LoadSnapshot(context.Context) error {
	conn, err := q.monitorDial()
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = fmt.Fprintf(conn, "loadvm %s\n", snapshotTag)
	return err
}

func (q *QemuSupervisor) SaveSnapshot(context.Context) error {
	conn, err := q.monitorDial()
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = fmt.Fprintf(conn, "savevm %s\n", snapshotTag)
	return err
}

func (q *QemuSupervisor) ResetEvents() error       { return q.events.reset() }
func (q *QemuSupervisor) HadPanicEvent() (bool, error) { return q.events.hadPanicEvent() }

// Shutdown kills the QEMU process. Best-effort: an already-dead process
// is not an error worth surfacing.
func (q *QemuSupervisor) Shutdown() {
	if q.cmd.Process != nil {
		_ = q.cmd.Process.Kill()
	}
}

// eventHandler decodes the QMP JSON stream on a background goroutine and
// forwards every object carrying an "event" key as a signal on a buffered
// channel; HadPanicEvent/reset drain it non-blockingly.
type eventHandler struct {
	signals chan struct{}
	mu      sync.Mutex
	fatal   error
}

func launchEventHandler(socketPath string, log *logrus.Entry) (*eventHandler, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, errors.Wrapf(err, "dial QMP socket %s", socketPath)
	}

	dec := json.NewDecoder(conn)

	var greeting map[string]interface{}
	if err := dec.Decode(&greeting); err != nil {
		return nil, errors.Wrap(err, "decode QMP greeting")
	}
	if _, err := fmt.Fprint(conn, `{"execute":"qmp_capabilities"}`); err != nil {
		return nil, errors.Wrap(err, "send qmp_capabilities")
	}
	var ack map[string]interface{}
	if err := dec.Decode(&ack); err != nil {
		return nil, errors.Wrap(err, "decode qmp_capabilities ack")
	}

	h := &eventHandler{signals: make(chan struct{}, 4096)}
	go func() {
		for {
			var msg map[string]interface{}
			if err := dec.Decode(&msg); err != nil {
				h.mu.Lock()
				h.fatal = errors.Wrap(err, "QMP stream closed")
				h.mu.Unlock()
				close(h.signals)
				return
			}
			if _, ok := msg["event"]; ok {
				log.WithField("event", msg["event"]).Debug("QMP event")
				select {
				case h.signals <- struct{}{}:
				default:
				}
			}
		}
	}()
	return h, nil
}

func (h *eventHandler) hadPanicEvent() (bool, error) {
	panicked := false
	for {
		select {
		case _, ok := <-h.signals:
			if !ok {
				h.mu.Lock()
				err := h.fatal
				h.mu.Unlock()
				return panicked, err
			}
			panicked = true
		default:
			return panicked, nil
		}
	}
}

func (h *eventHandler) reset() error {
	_, err := h.hadPanicEvent()
	return err
}
