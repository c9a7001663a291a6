package steprunner

import (
	"context"
	"fmt"

	"github.com/arnavsurve/rowpilot/pkg/types"
)

type PressKeyRunner struct {
	StepCtx types.ExecutionContext
}

func newPressKeyRunner(ctx types.ExecutionContext, _ Timeouts) (StepRunner, error) {
	return &PressKeyRunner{StepCtx: ctx}, nil
}

func (r *PressKeyRunner) Validate() error {
	if NormalizeKey(r.StepCtx.Action.Key) == "" {
		return fmt.Errorf("press_key action must define 'key'")
	}
	return nil
}

func (r *PressKeyRunner) Run(ctx context.Context) error {
	raw := r.StepCtx.Action.Key
	key := NormalizeKey(raw)

	r.StepCtx.Logger.Debug().Str("key", key).Str("raw_key", raw).Msg("Pressing key")
	if err := r.StepCtx.Page.PressKey(ctx, key); err != nil {
		return fmt.Errorf("pressing %s: %w", key, err)
	}
	return nil
}
