// Package picker lets a person click an element in a live page and turns the
// click into a selector.
package picker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavsurve/rowpilot/pkg/log"
	"github.com/arnavsurve/rowpilot/pkg/page"
	"github.com/arnavsurve/rowpilot/pkg/selector"
	"github.com/arnavsurve/rowpilot/pkg/types"
)

const DefaultTimeout = 30 * time.Second

// ErrTimeout means nobody clicked an element before the pick timed out.
var ErrTimeout = errors.New("timeout")

// ErrNothingPicked means the wait ended without a captured element, which
// happens when the picker is disarmed by another cleanup.
var ErrNothingPicked = errors.New("no element was captured")

type Options struct {
	// Timeout bounds how long Pick waits for a click. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// VerifyUnique makes Pick count each candidate on the page and keep the
	// first one matching exactly one element.
	VerifyUnique bool

	Logger types.Logger
}

// Result is the outcome of a pick. On failure Error holds a short reason,
// "timeout" when nobody clicked in time.
type Result struct {
	Success   bool
	Selector  string
	Candidate selector.Candidate
	Target    selector.ElementDescriptor
	Ancestors selector.AncestorChain
	Error     string
	Err       error
}

func failed(err error) Result {
	return Result{Error: err.Error(), Err: err}
}

// Pick arms the in-page picker on h, waits for one click and builds a
// selector for the clicked element, avoiding anything in bl. The overlay and
// listeners are removed before Pick returns, whatever the outcome.
func Pick(ctx context.Context, h page.Handle, bl *selector.Blacklist, opts Options) Result {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := log.OrNop(opts.Logger)

	// Start clean in case an earlier pick on this page was interrupted.
	if _, err := h.Evaluate(ctx, cleanupScript, nil); err != nil {
		return failed(fmt.Errorf("clearing previous picker state: %w", err))
	}
	defer disarm(ctx, h, logger)

	if err := h.AddScript(ctx, installScript); err != nil {
		return failed(fmt.Errorf("installing picker: %w", err))
	}
	logger.Info().Dur("timeout", timeout).Msg("Picker armed, click an element in the browser")

	if err := awaitClick(ctx, h, timeout, logger); err != nil {
		if errors.Is(err, ErrTimeout) {
			logger.Warn().Msg("Picker timed out waiting for a click")
		}
		return failed(err)
	}

	raw, err := h.Evaluate(ctx, describeScript, nil)
	if err != nil {
		return failed(fmt.Errorf("describing picked element: %w", err))
	}
	target, ancestors, err := decodeChain(raw)
	if err != nil {
		return failed(err)
	}

	var cand selector.Candidate
	if opts.VerifyUnique {
		cand, err = selector.BuildVerified(ctx, h, target, ancestors, bl)
		if err != nil {
			return failed(err)
		}
	} else {
		cand = selector.Build(target, ancestors, bl)
	}

	logger.Info().
		Str("selector", cand.Selector()).
		Str("rule", cand.Rule.String()).
		Str("tag", target.TagName).
		Msg("Element picked")

	return Result{
		Success:   true,
		Selector:  cand.Selector(),
		Candidate: cand,
		Target:    target,
		Ancestors: ancestors,
	}
}

// awaitClick runs the in-page wait on its own goroutine so the caller's
// timeout and cancellation win even if the page never answers. The goroutine
// is always reaped before returning.
func awaitClick(ctx context.Context, h page.Handle, timeout time.Duration, logger types.Logger) error {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- h.WaitForFunction(waitCtx, pickedPredicate, timeout)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var err error
	select {
	case err = <-done:
		if errors.Is(err, page.ErrTimeout) {
			return ErrTimeout
		}
		if err != nil {
			return fmt.Errorf("waiting for click: %w", err)
		}
		return nil
	case <-timer.C:
		err = ErrTimeout
	case <-ctx.Done():
		err = ctx.Err()
	}

	cancel()
	disarm(ctx, h, logger)
	<-done
	return err
}

// disarm removes the overlay and listeners. It runs detached from ctx so a
// cancelled pick still cleans up after itself.
func disarm(ctx context.Context, h page.Handle, logger types.Logger) {
	if h.IsClosed() {
		return
	}
	if _, err := h.Evaluate(context.WithoutCancel(ctx), cleanupScript, nil); err != nil {
		logger.Warn().Err(err).Msg("Failed to remove picker overlay")
	}
}

func decodeChain(raw any) (selector.ElementDescriptor, selector.AncestorChain, error) {
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return selector.ElementDescriptor{}, nil, ErrNothingPicked
	}

	chain := make([]selector.ElementDescriptor, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return selector.ElementDescriptor{}, nil, fmt.Errorf("element %d: unexpected description %T", i, item)
		}
		chain = append(chain, decodeElement(m))
	}
	return chain[0], selector.AncestorChain(chain[1:]), nil
}

func decodeElement(m map[string]any) selector.ElementDescriptor {
	el := selector.ElementDescriptor{Attributes: map[string]string{}}
	el.TagName, _ = m["tagName"].(string)
	el.TextContent, _ = m["textContent"].(string)
	if attrs, ok := m["attributes"].(map[string]any); ok {
		for k, v := range attrs {
			if s, ok := v.(string); ok {
				el.Attributes[k] = s
			}
		}
	}
	return el
}
