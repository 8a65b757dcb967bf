// Package runner drives one iteration of the differential loop: encode a
// Workload, stage and build the harness against it, run it on both
// filesystems, and pair their outcomes for the objectives to judge.
package runner

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fsdrift/fsdrift/internal/abstractfs"
	"github.com/fsdrift/fsdrift/internal/command"
	"github.com/fsdrift/fsdrift/internal/hasher"
	"github.com/fsdrift/fsdrift/internal/harness"
	"github.com/fsdrift/fsdrift/internal/mount"
	"github.com/fsdrift/fsdrift/internal/objective"
	"github.com/fsdrift/fsdrift/internal/supervisor"
)

// ErrCompile is returned when `make` fails in the staged scratch
// directory; it is fatal to the current iteration only.
var ErrCompile = errors.New("runner: harness build failed")

// Side names one of the two filesystems under test, paired with its
// mount point and registry entry.
type Side struct {
	Mount     mount.FileSystemMount
	MountPath string
	DevicePath string
}

// Stats mirrors the fuzzer's running counters, read by the CLI's
// heartbeat logger.
type Stats struct {
	Start      time.Time
	Executions uint64
	Crashes    uint64
	LastShown  time.Time
}

// Runner holds everything shared across iterations: the command channel,
// the two filesystem sides, the supervisor, and scratch/report paths.
type Runner struct {
	mu sync.Mutex

	Iface      command.Interface
	Supervisor supervisor.Supervisor
	First      Side
	Second     Side

	ScratchDir   string
	CrashesPath  string
	AccidentsPath string
	Timeout      time.Duration
	HashingEnabled bool

	Stats Stats
	Log   *logrus.Entry
}

// New builds a Runner; Stats.Start is set by the caller's driver once the
// loop actually begins.
func New(iface command.Interface, sup supervisor.Supervisor, first, second Side, scratchDir, crashesPath, accidentsPath string, timeout time.Duration, hashingEnabled bool, log *logrus.Entry) *Runner {
	return &Runner{
		Iface: iface, Supervisor: sup, First: first, Second: second,
		ScratchDir: scratchDir, CrashesPath: crashesPath, AccidentsPath: accidentsPath,
		Timeout: timeout, HashingEnabled: hashingEnabled, Log: log,
	}
}

// CompileTest stages the harness sources plus the encoded test.c into the
// scratch directory and builds it, returning the path to the compiled
// binary.
func (r *Runner) CompileTest(ctx context.Context, w abstractfs.Workload) (string, error) {
	stage := func(iface command.Interface, dir string) error {
		files, err := harness.All()
		if err != nil {
			return err
		}
		for name, data := range files {
			if err := iface.Write(ctx, filepath.Join(dir, name), data); err != nil {
				return errors.Wrapf(err, "stage %s", name)
			}
		}
		return iface.Write(ctx, filepath.Join(dir, "test.c"), []byte(w.EncodeC()))
	}
	if err := command.SetupRemoteDir(ctx, r.Iface, r.ScratchDir, stage); err != nil {
		return "", err
	}
	res, err := r.Iface.ExecInDir(ctx, r.ScratchDir, 0, "make")
	if err != nil {
		return "", errors.Wrapf(ErrCompile, "%s: %s", err, res.Stderr)
	}
	return filepath.Join(r.ScratchDir, "test"), nil
}

// RunOne executes one iteration of the full pipeline for Workload w and
// returns the paired outcome.
func (r *Runner) RunOne(ctx context.Context, w abstractfs.Workload) (objective.DiffOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	binaryPath, err := r.CompileTest(ctx, w)
	if err != nil {
		return objective.DiffOutcome{}, err
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if r.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	// The two sides share mount-point paths and, when supervised, a single
	// VM/monitor-socket connection: they must run one after the other,
	// never concurrently.
	first, err := r.runSide(runCtx, r.First, binaryPath)
	if err != nil {
		return objective.DiffOutcome{}, err
	}
	second, err := r.runSide(runCtx, r.Second, binaryPath)
	if err != nil {
		return objective.DiffOutcome{}, err
	}

	if r.Supervisor != nil {
		panicked, err := r.Supervisor.HadPanicEvent()
		if err != nil {
			return objective.DiffOutcome{}, errors.Wrap(err, "poll supervisor events")
		}
		if panicked {
			return objective.DiffOutcome{}, errors.New("runner: guest panic event during iteration")
		}
	}

	traceDiff := objective.TraceObjective{}.Compare(first.Trace, second.Trace)
	dashDiff := objective.DashObjective{}.Compare(first.Dash, second.Dash)

	return objective.DiffOutcome{
		First: first, Second: second,
		TraceDiff: traceDiff, DashDiff: dashDiff,
	}, nil
}

func (r *Runner) runSide(ctx context.Context, side Side, binaryPath string) (objective.RunOutcome, error) {
	if r.Supervisor != nil {
		if err := r.Supervisor.LoadSnapshot(ctx); err != nil {
			return objective.RunOutcome{}, errors.Wrap(err, "load vm snapshot")
		}
	}
	if err := side.Mount.Setup(ctx, r.Iface, side.DevicePath, side.MountPath); err != nil {
		return objective.RunOutcome{}, errors.Wrapf(err, "mount %s", side.Mount)
	}
	defer func() { _ = side.Mount.Teardown(ctx, r.Iface, side.MountPath) }()

	runDir := filepath.Join(side.MountPath, "fstest")
	if err := r.Iface.CreateDirAll(ctx, runDir); err != nil {
		return objective.RunOutcome{}, err
	}

	res, execErr := r.Iface.ExecInDir(ctx, runDir, r.Timeout, binaryPath)
	out := objective.RunOutcome{Stdout: res.Stdout, Stderr: res.Stderr, TimedOut: res.TimedOut}
	if execErr != nil && !errors.Is(execErr, command.ErrTimedOut) && !errors.Is(execErr, command.ErrCommand) {
		return out, errors.Wrap(execErr, "run harness binary")
	}

	traceText, err := r.Iface.ReadToString(ctx, filepath.Join(runDir, "trace.csv"))
	if err != nil {
		return out, errors.Wrap(err, "read trace")
	}
	trace, err := abstractfs.ParseTrace(traceText)
	if err != nil {
		return out, errors.Wrap(err, "parse trace")
	}
	out.Trace = trace

	if r.HashingEnabled {
		snap, err := r.dash(runDir)
		if err != nil {
			return out, err
		}
		out.Dash = snap
	}
	return out, nil
}

// dash snapshots runDir. Local-only for now: remote hashing would walk
// the mounted tree on the guest and ship the fingerprint back, which
// needs the Interface extended with a stat-walk RPC the distilled
// contract does not define.
func (r *Runner) dash(runDir string) (hasher.Snapshot, error) {
	opt, err := hasher.NewOptions(true, true, true, nil)
	if err != nil {
		return hasher.Snapshot{}, err
	}
	return hasher.Walk(runDir, opt)
}

// ShowStats logs the current counters immediately and stamps
// Stats.LastShown; callers decide when to call it.
func (r *Runner) ShowStats() {
	r.Log.WithFields(logrus.Fields{
		"executions": r.Stats.Executions,
		"crashes":    r.Stats.Crashes,
		"elapsed":    time.Since(r.Stats.Start).Round(time.Second),
	}).Info("fuzzing stats")
	r.Stats.LastShown = time.Now()
}
