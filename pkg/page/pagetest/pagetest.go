// Package pagetest provides a scriptable in-memory page.Handle for tests.
package pagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arnavsurve/rowpilot/pkg/page"
)

// Call records one operation made against a Page.
type Call struct {
	Op       string
	Selector string
	Value    string
}

// Page is a fake page.Handle. Element presence is driven by Counts; with
// Strict set, click/fill/type/wait fail with page.ErrTimeout on selectors
// that match nothing. The On* hooks override the default behaviour of the
// matching operation.
type Page struct {
	mu sync.Mutex

	Counts map[string]int
	Strict bool

	// Errors forces an operation ("click", "fill", "navigate", ...) to fail.
	Errors map[string]error

	OnEvaluate        func(script string, arg any) (any, error)
	OnAddScript       func(content string) error
	OnWaitForFunction func(ctx context.Context, script string, timeout time.Duration) error
	OnClick           func(selector string) error

	CurrentURL string
	PageTitle  string
	Closed     bool

	calls []Call
}

var _ page.Handle = (*Page)(nil)

func New() *Page {
	return &Page{Counts: make(map[string]int), Errors: make(map[string]error)}
}

// SetCount sets how many elements selector matches.
func (p *Page) SetCount(selector string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Counts == nil {
		p.Counts = make(map[string]int)
	}
	p.Counts[selector] = n
}

// Calls returns a copy of the recorded operations.
func (p *Page) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// Ops returns just the operation names, in order.
func (p *Page) Ops() []string {
	var ops []string
	for _, c := range p.Calls() {
		ops = append(ops, c.Op)
	}
	return ops
}

func (p *Page) record(op, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, Call{Op: op, Selector: selector, Value: value})
	if p.Closed {
		return fmt.Errorf("%s: %w", op, page.ErrClosed)
	}
	if err := p.Errors[op]; err != nil {
		return err
	}
	return nil
}

func (p *Page) requirePresent(op, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Strict && p.Counts[selector] == 0 {
		return fmt.Errorf("%s %s: %w", op, selector, page.ErrTimeout)
	}
	return nil
}

func (p *Page) Navigate(ctx context.Context, url string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.record("navigate", "", url); err != nil {
		return err
	}
	p.mu.Lock()
	p.CurrentURL = url
	p.mu.Unlock()
	return nil
}

func (p *Page) Click(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.record("click", selector, ""); err != nil {
		return err
	}
	if p.OnClick != nil {
		return p.OnClick(selector)
	}
	return p.requirePresent("click", selector)
}

func (p *Page) Fill(ctx context.Context, selector, value string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.record("fill", selector, value); err != nil {
		return err
	}
	return p.requirePresent("fill", selector)
}

func (p *Page) Type(ctx context.Context, selector, text string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.record("type", selector, text); err != nil {
		return err
	}
	return p.requirePresent("type", selector)
}

func (p *Page) PressKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.record("press_key", "", key)
}

func (p *Page) WaitForSelector(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.record("wait_for_selector", selector, ""); err != nil {
		return err
	}
	return p.requirePresent("wait for selector", selector)
}

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := p.record("count", selector, ""); err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Counts[selector], nil
}

func (p *Page) Evaluate(ctx context.Context, script string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.record("evaluate", "", script); err != nil {
		return nil, err
	}
	if p.OnEvaluate != nil {
		return p.OnEvaluate(script, arg)
	}
	return nil, nil
}

func (p *Page) AddScript(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.record("add_script", "", content); err != nil {
		return err
	}
	if p.OnAddScript != nil {
		return p.OnAddScript(content)
	}
	return nil
}

func (p *Page) WaitForFunction(ctx context.Context, script string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.record("wait_for_function", "", script); err != nil {
		return err
	}
	if p.OnWaitForFunction != nil {
		return p.OnWaitForFunction(ctx, script, timeout)
	}
	return nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CurrentURL
}

func (p *Page) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.PageTitle, nil
}

func (p *Page) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Closed
}

// Close marks the page closed; every later operation fails with page.ErrClosed.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
}
