package steprunner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavsurve/rowpilot/pkg/log"
	"github.com/arnavsurve/rowpilot/pkg/page"
	"github.com/arnavsurve/rowpilot/pkg/template"
	"github.com/arnavsurve/rowpilot/pkg/types"
)

// Result is the structured outcome of executing one action. Error is the
// human-readable message; Err keeps the cause for errors.Is.
type Result struct {
	Success  bool
	Error    string
	Err      error
	Action   types.Action
	Duration time.Duration
}

func failure(action types.Action, err error) Result {
	return Result{
		Error:  fmt.Sprintf("%s failed: %v", action.Label(), err),
		Err:    err,
		Action: action,
	}
}

// Executor resolves an action's templates against a row and dispatches it to
// the runner registered for its kind.
type Executor struct {
	registry *Registry
	timeouts Timeouts
	logger   types.Logger
}

func NewExecutor(registry *Registry, timeouts Timeouts, logger types.Logger) *Executor {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Executor{
		registry: registry,
		timeouts: timeouts.withDefaults(),
		logger:   log.OrNop(logger),
	}
}

// Execute runs action against h. The selector, value and url fields are
// resolved against row first; a resolution failure fails the action without
// touching the page. A nil row resolves no column, so a templated field
// without a default fails. Page errors are reported in the Result, never
// returned or panicked.
func (e *Executor) Execute(ctx context.Context, action types.Action, h page.Handle, row template.Row) Result {
	return e.ExecuteWithLogger(ctx, action, h, row, e.logger)
}

// ExecuteWithLogger is Execute with a caller-scoped logger, typically one
// carrying row and action indexes.
func (e *Executor) ExecuteWithLogger(ctx context.Context, action types.Action, h page.Handle, row template.Row, logger types.Logger) Result {
	logger = log.OrNop(logger)
	start := time.Now()

	resolved, err := ResolveAction(action, row)
	if err != nil {
		logger.Warn().Err(err).Msg("Template resolution failed")
		return failure(action, err)
	}

	if err := ctx.Err(); err != nil {
		return failure(resolved, err)
	}
	if h == nil {
		return failure(resolved, fmt.Errorf("%w: %s", page.ErrUnknownAlias, resolved.Alias()))
	}

	runner, err := e.registry.Runner(types.ExecutionContext{Action: resolved, Page: h, Logger: logger}, e.timeouts)
	if err != nil {
		return failure(resolved, err)
	}
	if err := runner.Validate(); err != nil {
		return failure(resolved, err)
	}

	if err := runner.Run(ctx); err != nil {
		res := failure(resolved, err)
		res.Duration = time.Since(start)
		return res
	}

	return Result{Success: true, Action: resolved, Duration: time.Since(start)}
}

// ResolveAction returns a copy of action with every templated field resolved
// against row, which may be nil. A field's entry in action.Defaults, if
// present, stands in literally for any expression in that field that fails
// to resolve.
func ResolveAction(action types.Action, row template.Row) (types.Action, error) {
	fields := map[string]*string{
		"selector": &action.Selector,
		"value":    &action.Value,
		"url":      &action.URL,
	}
	for _, name := range types.TemplateFields {
		ptr := fields[name]
		if !template.IsTemplate(*ptr) {
			continue
		}

		var opts []template.Option
		if def, ok := action.Defaults[name]; ok {
			opts = append(opts, template.WithDefault(def))
		}
		resolved, err := template.Resolve(*ptr, row, opts...)
		if err != nil {
			return action, fmt.Errorf("resolving %s: %w", name, err)
		}
		*ptr = resolved
	}
	return action, nil
}

// IsHealable reports whether a failed result is the kind the healing loop
// can repair: a click or fill whose element never showed up.
func IsHealable(res Result) bool {
	if res.Success {
		return false
	}
	switch res.Action.Type {
	case types.Click, types.FillField:
		return errors.Is(res.Err, page.ErrTimeout)
	default:
		return false
	}
}
