package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/arnavsurve/rowpilot/pkg/dataset"
	"github.com/arnavsurve/rowpilot/pkg/healing"
	"github.com/arnavsurve/rowpilot/pkg/log"
	"github.com/arnavsurve/rowpilot/pkg/page"
	"github.com/arnavsurve/rowpilot/pkg/steprunner"
	"github.com/arnavsurve/rowpilot/pkg/template"
	"github.com/arnavsurve/rowpilot/pkg/types"
)

// ErrActionPanicked marks an action whose runner panicked. The run carries
// on as if the action had failed.
var ErrActionPanicked = errors.New("action panicked")

// PageSource hands out exclusive use of a page by alias. *page.Manager
// implements it.
type PageSource interface {
	Lease(alias string) (page.Handle, func(), error)
}

// Healer repairs a selector that no longer matches. *healing.Healer
// implements it.
type Healer interface {
	Heal(ctx context.Context, p page.Handle, failedSelector string) (healing.Outcome, error)
}

type WorkflowEngine struct {
	Logger   types.Logger
	Executor *steprunner.Executor
	Pages    PageSource

	// Healer, when set, is offered every click or fill that timed out on a
	// literal selector. An accepted replacement is retried once and used for
	// the rest of the run.
	Healer Healer
}

func NewWorkflowEngine(logger types.Logger, executor *steprunner.Executor, pages PageSource) *WorkflowEngine {
	if executor == nil {
		executor = steprunner.NewExecutor(nil, steprunner.DefaultTimeouts(), logger)
	}
	return &WorkflowEngine{
		Logger:   log.OrNop(logger),
		Executor: executor,
		Pages:    pages,
	}
}

// run is the state of one Run call.
type run struct {
	*WorkflowEngine
	wf       *Workflow
	pages    map[string]page.Handle
	summary  *RunSummary
	logger   types.Logger
	executor *steprunner.Executor
}

// Run executes wf: the pre-loop section once, the loop section once per
// dataset row (once with no row when ds is nil), then the post-loop section.
//
// Action failures are recorded in the summary and never returned. The
// returned error is reserved for conditions that end the run outright: a
// page that closed, a cancelled ctx, or a page another flow already owns.
// The summary is never nil.
func (e *WorkflowEngine) Run(ctx context.Context, runID string, wf *Workflow, ds *dataset.Dataset) (*RunSummary, error) {
	summary := &RunSummary{RunID: runID}
	logger := log.OrNop(e.Logger)

	pages, release, err := e.leasePages(wf)
	if err != nil {
		return summary, err
	}
	defer release()

	executor := e.Executor
	if executor == nil {
		executor = steprunner.NewExecutor(nil, steprunner.DefaultTimeouts(), logger)
	}
	r := &run{
		WorkflowEngine: e,
		wf:             cloneSections(wf),
		pages:          pages,
		summary:        summary,
		logger:         logger,
		executor:       executor,
	}

	logger.Info().Str("run_id", runID).Str("workflow", wf.Name).Msg("Starting workflow run")

	if err := r.runSection(ctx, SectionPreLoop, nil, -1); err != nil {
		return summary, r.finish(err)
	}

	if !summary.Halted {
		if err := r.runRows(ctx, ds); err != nil {
			return summary, r.finish(err)
		}
	}

	if !summary.Halted {
		if err := r.runSection(ctx, SectionPostLoop, nil, -1); err != nil {
			return summary, r.finish(err)
		}
	}

	logger.Info().
		Int("rows_attempted", summary.RowsAttempted).
		Int("rows_succeeded", summary.RowsSucceeded).
		Int("rows_failed", summary.RowsFailed).
		Bool("halted", summary.Halted).
		Msg("Workflow run finished")
	return summary, nil
}

func (r *run) finish(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		r.summary.Cancelled = true
		r.logger.Warn().Msg("Workflow run cancelled")
	}
	return err
}

// leasePages claims every page the workflow's actions use. Aliases with no
// browser are left out; the actions that use them fail individually.
func (e *WorkflowEngine) leasePages(wf *Workflow) (map[string]page.Handle, func(), error) {
	pages := make(map[string]page.Handle)
	var releases []func()
	releaseAll := func() {
		for _, rel := range releases {
			rel()
		}
	}

	if e.Pages == nil {
		return pages, releaseAll, nil
	}

	for _, a := range wf.AllActions() {
		alias := a.Alias()
		if _, done := pages[alias]; done {
			continue
		}
		h, rel, err := e.Pages.Lease(alias)
		switch {
		case errors.Is(err, page.ErrUnknownAlias):
			pages[alias] = nil
			continue
		case err != nil:
			releaseAll()
			return nil, nil, fmt.Errorf("claiming browser %q: %w", alias, err)
		}
		pages[alias] = h
		releases = append(releases, rel)
	}
	return pages, releaseAll, nil
}

func (r *run) runRows(ctx context.Context, ds *dataset.Dataset) error {
	if ds == nil {
		return r.runRow(ctx, 0, nil)
	}
	for i := 0; i < ds.Len(); i++ {
		row, err := ds.Row(i)
		if err != nil {
			return err
		}
		if err := r.runRow(ctx, i, row); err != nil {
			return err
		}
		if r.summary.Halted {
			break
		}
	}
	return nil
}

func (r *run) runRow(ctx context.Context, index int, row template.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.summary.RowsAttempted++
	before := len(r.summary.Errors)
	failedAt, msg, err := r.runActions(ctx, SectionLoop, row, index)

	result := RowResult{RowIndex: index, Success: failedAt < 0, ActionIndex: failedAt, Error: msg}
	if err != nil && result.Success {
		// Cancelled between actions: the row did not complete.
		result.Success = false
		result.Error = err.Error()
	}
	r.summary.Rows = append(r.summary.Rows, result)

	if result.Success {
		r.summary.RowsSucceeded++
	} else {
		r.summary.RowsFailed++
		if len(r.summary.Errors) == before {
			r.summary.addError(fmt.Sprintf("row %d: %s", index+1, result.Error))
		}
	}
	return err
}

// runSection runs the pre- or post-loop section. Failures there are reported
// like row failures but do not count as rows.
func (r *run) runSection(ctx context.Context, section Section, row template.Row, rowIndex int) error {
	_, _, err := r.runActions(ctx, section, row, rowIndex)
	return err
}

// runActions runs one section's actions in order. It returns the index and
// message of the first failed action, or -1, and a non-nil error only when
// the run must end.
func (r *run) runActions(ctx context.Context, section Section, row template.Row, rowIndex int) (int, string, error) {
	stop := r.wf.ShouldStopOnError()
	failedAt, failedMsg := -1, ""

	for i, action := range r.wf.SectionActions(section) {
		if err := ctx.Err(); err != nil {
			return failedAt, failedMsg, err
		}

		res := r.runAction(ctx, section, i, action, row, rowIndex)
		if res.Success {
			continue
		}

		if failedAt < 0 {
			failedAt, failedMsg = i, res.Error
		}
		where := fmt.Sprintf("%s action %d", section, i+1)
		if rowIndex >= 0 {
			where = fmt.Sprintf("row %d action %d", rowIndex+1, i+1)
		}
		r.summary.addError(fmt.Sprintf("%s: %s", where, res.Error))

		switch {
		case errors.Is(res.Err, page.ErrClosed):
			return failedAt, failedMsg, fmt.Errorf("%s: %w", where, res.Err)
		case errors.Is(res.Err, context.Canceled), errors.Is(res.Err, context.DeadlineExceeded):
			return failedAt, failedMsg, ctx.Err()
		case stop:
			r.summary.Halted = true
			return failedAt, failedMsg, nil
		}
	}
	return failedAt, failedMsg, nil
}

func (r *run) actionLogger(section Section, index int, action types.Action, rowIndex int) types.Logger {
	c := r.logger.With().
		Str("section", string(section)).
		Int("action_index", index).
		Str("action_type", string(action.Type))
	if rowIndex >= 0 && section == SectionLoop {
		c = c.Int("row_index", rowIndex)
	}
	return c.Logger()
}

// runAction executes one action, converting a runner panic into a failed
// result and offering a healable failure to the Healer.
func (r *run) runAction(ctx context.Context, section Section, index int, action types.Action, row template.Row, rowIndex int) (res steprunner.Result) {
	logger := r.actionLogger(section, index, action, rowIndex)
	h := r.pages[action.Alias()]

	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("%w: %v", ErrActionPanicked, p)
			logger.Error().Err(err).Msg("Action panicked")
			res = steprunner.Result{
				Action: action,
				Error:  fmt.Sprintf("%s failed: %v", action.Label(), err),
				Err:    err,
			}
		}
	}()

	if h == nil && r.Pages != nil {
		err := fmt.Errorf("%w: %s", page.ErrUnknownAlias, action.Alias())
		logger.Error().Err(err).Msg("Action failed")
		return steprunner.Result{
			Action: action,
			Error:  fmt.Sprintf("Browser not initialized: %s", action.Alias()),
			Err:    err,
		}
	}

	logger.Info().Msgf("Running %s", action.Label())
	res = r.executor.ExecuteWithLogger(ctx, action, h, row, logger)

	if !res.Success && r.Healer != nil && steprunner.IsHealable(res) && !template.IsTemplate(action.Selector) {
		res = r.heal(ctx, section, index, action, h, row, res, logger)
	}

	if res.Success {
		logger.Debug().Dur("duration", res.Duration).Msg("Action succeeded")
	} else {
		logger.Error().Err(res.Err).Msg(res.Error)
	}
	return res
}

func (r *run) heal(ctx context.Context, section Section, index int, action types.Action, h page.Handle, row template.Row, failed steprunner.Result, logger types.Logger) steprunner.Result {
	logger.Warn().Str("selector", action.Selector).Msg("Selector failed, starting healing")

	out, err := r.Healer.Heal(ctx, h, action.Selector)
	if err != nil {
		logger.Warn().Err(err).Str("summary", out.Summary).Msg("Healing did not produce a selector")
		return failed
	}

	healed := action
	healed.Selector = out.Selector()
	r.wf.ReplaceSelector(section, index, healed.Selector)
	r.summary.Healed = append(r.summary.Healed, HealedSelector{
		Section:     section,
		ActionIndex: index,
		Old:         action.Selector,
		New:         healed.Selector,
		Summary:     out.Summary,
	})

	logger.Info().Str("selector", healed.Selector).Msg("Retrying with healed selector")
	return r.executor.ExecuteWithLogger(ctx, healed, h, row, logger)
}

// cloneSections copies wf with private action slices, so healed selectors
// never leak into the caller's workflow.
func cloneSections(wf *Workflow) *Workflow {
	c := *wf
	c.Actions = append([]types.Action(nil), wf.Actions...)
	c.PreLoopActions = append([]types.Action(nil), wf.PreLoopActions...)
	c.LoopActions = append([]types.Action(nil), wf.LoopActions...)
	c.PostLoopActions = append([]types.Action(nil), wf.PostLoopActions...)
	return &c
}
