// Package supervisor controls the environment a harness run executes in:
// snapshot/restore of the VM between iterations, and panic-event detection.
// When a panic event is seen, the runner's RunOne returns an error for that
// iteration; no crash report is written for it.
package supervisor

import "context"

// Supervisor is implemented by both the no-op local supervisor and the
// QEMU-backed one; the runner talks to whichever was configured without
// caring which.
type Supervisor interface {
	LoadSnapshot(ctx context.Context) error
	SaveSnapshot(ctx context.Context) error
	ResetEvents() error
	HadPanicEvent() (bool, error)
}

// NativeSupervisor is used when tests run directly on the host: there is
// no VM to snapshot and no panic channel to watch.
type NativeSupervisor struct{}

var _ Supervisor = NativeSupervisor{}

func (NativeSupervisor) LoadSnapshot(context.Context) error { return nil }
func (NativeSupervisor) SaveSnapshot(context.Context) error { return nil }
func (NativeSupervisor) ResetEvents() error                 { return nil }
func (NativeSupervisor) HadPanicEvent() (bool, error)       { return false, nil }
