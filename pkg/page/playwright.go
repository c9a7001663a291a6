package page

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"
)

type playwrightPage struct {
	page playwright.Page
}

// Wrap adapts a playwright page to Handle.
//
// playwright-go calls are not context aware, so ctx is only checked before
// each call; every call is bounded by its own timeout instead.
func Wrap(p playwright.Page) Handle {
	return &playwrightPage{page: p}
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func (p *playwrightPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   millis(timeout),
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	return translate("navigate", err)
}

func (p *playwrightPage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.page.Locator(selector).Click(playwright.LocatorClickOptions{Timeout: millis(timeout)})
	return translate("click", err)
}

func (p *playwrightPage) Fill(ctx context.Context, selector, value string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.page.Locator(selector).Fill(value, playwright.LocatorFillOptions{Timeout: millis(timeout)})
	return translate("fill", err)
}

func (p *playwrightPage) Type(ctx context.Context, selector, text string, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.page.Locator(selector).PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Delay: millis(delay),
	})
	return translate("type", err)
}

func (p *playwrightPage) PressKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return translate("press key", p.page.Keyboard().Press(key))
}

func (p *playwrightPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	})
	return translate("wait for selector", err)
}

func (p *playwrightPage) Count(ctx context.Context, selector string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.page.Locator(selector).Count()
	return n, translate("count", err)
}

func (p *playwrightPage) Evaluate(ctx context.Context, script string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := p.page.Evaluate(script, arg)
	return v, translate("evaluate", err)
}

func (p *playwrightPage) AddScript(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.AddScriptTag(playwright.PageAddScriptTagOptions{Content: playwright.String(content)})
	return translate("add script", err)
}

func (p *playwrightPage) WaitForFunction(ctx context.Context, script string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.WaitForFunction(script, nil, playwright.PageWaitForFunctionOptions{Timeout: millis(timeout)})
	return translate("wait for function", err)
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	title, err := p.page.Title()
	return title, translate("title", err)
}

func (p *playwrightPage) IsClosed() bool {
	return p.page.IsClosed()
}
