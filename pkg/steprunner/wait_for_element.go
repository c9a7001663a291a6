package steprunner

import (
	"context"
	"fmt"

	"github.com/arnavsurve/rowpilot/pkg/types"
)

type WaitForElementRunner struct {
	StepCtx  types.ExecutionContext
	Timeouts Timeouts
}

func newWaitForElementRunner(ctx types.ExecutionContext, t Timeouts) (StepRunner, error) {
	return &WaitForElementRunner{StepCtx: ctx, Timeouts: t}, nil
}

func (r *WaitForElementRunner) Validate() error {
	action := r.StepCtx.Action
	if action.Selector == "" {
		return fmt.Errorf("wait_for_element action must define 'selector'")
	}
	if action.TimeoutMS < 0 {
		return fmt.Errorf("wait_for_element timeout_ms must not be negative, got %d", action.TimeoutMS)
	}
	return nil
}

func (r *WaitForElementRunner) Run(ctx context.Context) error {
	action := r.StepCtx.Action
	timeout := actionTimeout(action.TimeoutMS, r.Timeouts.WaitForElement)

	r.StepCtx.Logger.Debug().Str("selector", action.Selector).Dur("timeout", timeout).Msg("Waiting for element")
	if err := r.StepCtx.Page.WaitForSelector(ctx, action.Selector, timeout); err != nil {
		return fmt.Errorf("waiting for %s: %w", action.Selector, err)
	}
	return nil
}
