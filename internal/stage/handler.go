// Package stage defines the contract between the workflow manager and the
// pipeline lanes.
package stage

import "context"

// Handler describes one workflow lane. ClaimNext atomically claims the
// oldest pending artifact and returns its identifier; Execute is then called
// with that identifier while the manager maintains heartbeats. The manager
// owns terminal status transitions, so Execute reports outcome by error.
type Handler interface {
	Name() string
	Table() string
	ClaimNext(ctx context.Context) (int64, bool, error)
	Execute(ctx context.Context, id int64) error
	HealthCheck(ctx context.Context) Health
}
