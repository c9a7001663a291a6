package steprunner

import (
	"context"
	"fmt"
	"net/url"

	"github.com/arnavsurve/rowpilot/pkg/types"
)

type NavigateRunner struct {
	StepCtx  types.ExecutionContext
	Timeouts Timeouts
}

func newNavigateRunner(ctx types.ExecutionContext, t Timeouts) (StepRunner, error) {
	return &NavigateRunner{StepCtx: ctx, Timeouts: t}, nil
}

func (r *NavigateRunner) Validate() error {
	raw := r.StepCtx.Action.URL
	if raw == "" {
		return fmt.Errorf("navigate action must define 'url'")
	}
	if _, err := url.Parse(raw); err != nil {
		return fmt.Errorf("navigate action has invalid url %q: %w", raw, err)
	}
	return nil
}

func (r *NavigateRunner) Run(ctx context.Context) error {
	action := r.StepCtx.Action
	timeout := actionTimeout(action.TimeoutMS, r.Timeouts.Navigate)

	r.StepCtx.Logger.Debug().Str("url", action.URL).Dur("timeout", timeout).Msg("Navigating")
	if err := r.StepCtx.Page.Navigate(ctx, action.URL, timeout); err != nil {
		return fmt.Errorf("navigating to %s: %w", action.URL, err)
	}
	return nil
}
