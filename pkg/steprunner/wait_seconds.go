package steprunner

import (
	"context"
	"fmt"
	"time"

	"github.com/arnavsurve/rowpilot/pkg/types"
)

// WaitSecondsRunner sleeps in WaitIncrement slices so a cancelled ctx is
// observed within one slice.
type WaitSecondsRunner struct {
	StepCtx  types.ExecutionContext
	Timeouts Timeouts
}

func newWaitSecondsRunner(ctx types.ExecutionContext, t Timeouts) (StepRunner, error) {
	return &WaitSecondsRunner{StepCtx: ctx, Timeouts: t}, nil
}

func (r *WaitSecondsRunner) Validate() error {
	if s := r.StepCtx.Action.Wait(); s <= 0 {
		return fmt.Errorf("wait_seconds action must define a positive 'duration_s', got %v", s)
	}
	return nil
}

func (r *WaitSecondsRunner) Run(ctx context.Context) error {
	remaining := time.Duration(r.StepCtx.Action.Wait() * float64(time.Second))
	r.StepCtx.Logger.Debug().Dur("duration", remaining).Msg("Waiting")

	for remaining > 0 {
		slice := min(r.Timeouts.WaitIncrement, remaining)
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait interrupted: %w", ctx.Err())
		case <-time.After(slice):
		}
		remaining -= slice
	}
	return nil
}
