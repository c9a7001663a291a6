package steprunner

import (
	"context"
	"fmt"

	"github.com/arnavsurve/rowpilot/pkg/types"
)

// TypeTextRunner types character by character with a delay between
// keystrokes, unlike FillRunner which sets the value in one go.
type TypeTextRunner struct {
	StepCtx  types.ExecutionContext
	Timeouts Timeouts
}

func newTypeTextRunner(ctx types.ExecutionContext, t Timeouts) (StepRunner, error) {
	return &TypeTextRunner{StepCtx: ctx, Timeouts: t}, nil
}

func (r *TypeTextRunner) Validate() error {
	if r.StepCtx.Action.Selector == "" {
		return fmt.Errorf("type_text action must define 'selector'")
	}
	return nil
}

func (r *TypeTextRunner) Run(ctx context.Context) error {
	action := r.StepCtx.Action

	r.StepCtx.Logger.Debug().Str("selector", action.Selector).Dur("delay", r.Timeouts.TypeDelay).Msg("Typing text")
	if err := r.StepCtx.Page.Type(ctx, action.Selector, action.Value, r.Timeouts.TypeDelay); err != nil {
		return fmt.Errorf("typing into %s: %w", action.Selector, err)
	}
	return nil
}
