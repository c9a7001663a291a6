package steprunner

import (
	"context"
	"fmt"

	"github.com/arnavsurve/rowpilot/pkg/types"
)

type ClickRunner struct {
	StepCtx  types.ExecutionContext
	Timeouts Timeouts
}

func newClickRunner(ctx types.ExecutionContext, t Timeouts) (StepRunner, error) {
	return &ClickRunner{StepCtx: ctx, Timeouts: t}, nil
}

func (r *ClickRunner) Validate() error {
	if r.StepCtx.Action.Selector == "" {
		return fmt.Errorf("click action must define 'selector'")
	}
	return nil
}

func (r *ClickRunner) Run(ctx context.Context) error {
	action := r.StepCtx.Action
	timeout := actionTimeout(action.TimeoutMS, r.Timeouts.Click)

	r.StepCtx.Logger.Debug().Str("selector", action.Selector).Dur("timeout", timeout).Msg("Clicking element")
	if err := r.StepCtx.Page.Click(ctx, action.Selector, timeout); err != nil {
		return fmt.Errorf("clicking %s: %w", action.Selector, err)
	}
	return nil
}
