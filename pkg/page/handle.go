// Package page abstracts a live browser tab behind Handle and manages the
// browsers a workflow drives.
//
// A Handle is not safe for use by two independent flows at once. The engine
// and the picker both assume the caller owns the page for the duration of the
// call; Manager.Lease is how a caller claims that ownership.
package page

import (
	"context"
	"time"
)

// Handle is the page-control capability the picker, the analyzer and the
// action runners are written against.
type Handle interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	Click(ctx context.Context, selector string, timeout time.Duration) error
	Fill(ctx context.Context, selector, value string, timeout time.Duration) error
	Type(ctx context.Context, selector, text string, delay time.Duration) error
	PressKey(ctx context.Context, key string) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error

	// Count returns how many elements currently match selector.
	Count(ctx context.Context, selector string) (int, error)

	Evaluate(ctx context.Context, script string, arg any) (any, error)
	AddScript(ctx context.Context, content string) error

	// WaitForFunction blocks until script evaluates truthy in the page, the
	// timeout elapses or ctx is done.
	WaitForFunction(ctx context.Context, script string, timeout time.Duration) error

	URL() string
	Title(ctx context.Context) (string, error)
	IsClosed() bool
}
