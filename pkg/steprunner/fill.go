package steprunner

import (
	"context"
	"fmt"

	"github.com/arnavsurve/rowpilot/pkg/types"
)

type FillRunner struct {
	StepCtx  types.ExecutionContext
	Timeouts Timeouts
}

func newFillRunner(ctx types.ExecutionContext, t Timeouts) (StepRunner, error) {
	return &FillRunner{StepCtx: ctx, Timeouts: t}, nil
}

// Validate only requires a selector: an empty resolved value is a legal way
// to clear a field.
func (r *FillRunner) Validate() error {
	if r.StepCtx.Action.Selector == "" {
		return fmt.Errorf("fill_field action must define 'selector'")
	}
	return nil
}

func (r *FillRunner) Run(ctx context.Context) error {
	action := r.StepCtx.Action
	timeout := actionTimeout(action.TimeoutMS, r.Timeouts.Fill)

	r.StepCtx.Logger.Debug().Str("selector", action.Selector).Str("value", action.Value).Msg("Filling field")
	if err := r.StepCtx.Page.Fill(ctx, action.Selector, action.Value, timeout); err != nil {
		return fmt.Errorf("filling %s: %w", action.Selector, err)
	}
	return nil
}
