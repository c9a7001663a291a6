// Package healing recovers from a selector that stopped matching: it works
// out which attributes went stale, then has a person re-pick the element
// with those attributes excluded.
package healing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavsurve/rowpilot/pkg/log"
	"github.com/arnavsurve/rowpilot/pkg/page"
	"github.com/arnavsurve/rowpilot/pkg/picker"
	"github.com/arnavsurve/rowpilot/pkg/selector"
	"github.com/arnavsurve/rowpilot/pkg/types"
)

// ErrRejected is returned when Confirm turns down the replacement selector.
var ErrRejected = errors.New("replacement selector rejected")

// Outcome describes one healing attempt. Blacklist holds only what the
// analysis found; Pick was made against that plus Healer.Base.
type Outcome struct {
	FailedSelector string
	Blacklist      *selector.Blacklist
	Summary        string
	Pick           picker.Result
}

// Selector is the replacement selector, empty unless the re-pick succeeded.
func (o Outcome) Selector() string {
	if !o.Pick.Success {
		return ""
	}
	return o.Pick.Selector
}

type Healer struct {
	Logger       types.Logger
	PickTimeout  time.Duration
	VerifyUnique bool

	// Base entries are excluded on every re-pick in addition to the ones the
	// analysis finds, typically a blacklist persisted from earlier sessions.
	Base *selector.Blacklist

	// Confirm, when set, is asked to accept the re-picked selector before
	// Heal reports success.
	Confirm func(Outcome) bool
}

// Analyze finds the stale attributes of failedSelector on p without
// re-picking.
func (h *Healer) Analyze(ctx context.Context, p page.Handle, failedSelector string) (Outcome, error) {
	logger := log.OrNop(h.Logger)

	bl, err := selector.Analyze(ctx, p, failedSelector)
	out := Outcome{
		FailedSelector: failedSelector,
		Blacklist:      bl,
		Summary:        selector.Summarize(bl),
	}
	if err != nil {
		return out, fmt.Errorf("analyzing selector %q: %w", failedSelector, err)
	}

	logger.Info().
		Str("selector", failedSelector).
		Int("stale_attributes", bl.Len()).
		Str("summary", out.Summary).
		Msg("Selector analyzed")
	return out, nil
}

// Heal analyzes failedSelector and then re-picks the element on p, avoiding
// every stale attribute. It blocks until the pick finishes, so execution on p
// must not resume until Heal returns.
func (h *Healer) Heal(ctx context.Context, p page.Handle, failedSelector string) (Outcome, error) {
	out, err := h.Analyze(ctx, p, failedSelector)
	if err != nil {
		return out, err
	}

	avoid := selector.NewBlacklist()
	avoid.Merge(h.Base)
	avoid.Merge(out.Blacklist)

	out.Pick = picker.Pick(ctx, p, avoid, picker.Options{
		Timeout:      h.PickTimeout,
		VerifyUnique: h.VerifyUnique,
		Logger:       h.Logger,
	})
	if !out.Pick.Success {
		return out, fmt.Errorf("re-picking element for %q: %w", failedSelector, out.Pick.Err)
	}

	if h.Confirm != nil && !h.Confirm(out) {
		return out, ErrRejected
	}

	log.OrNop(h.Logger).Info().
		Str("old_selector", failedSelector).
		Str("new_selector", out.Pick.Selector).
		Msg("Selector healed")
	return out, nil
}
