package page

import (
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

var (
	// ErrTimeout means an element never appeared or became actionable in time.
	ErrTimeout = errors.New("page operation timed out")

	// ErrClosed means the page or its browser went away mid-operation. It is
	// fatal for the run using the page.
	ErrClosed = errors.New("page closed")

	// ErrBusy is returned by Manager.Lease when another flow owns the page.
	ErrBusy = errors.New("page is in use by another flow")

	// ErrUnknownAlias is returned when no browser was launched under an alias.
	ErrUnknownAlias = errors.New("browser not initialized")
)

// translate maps playwright errors onto this package's error kinds while
// keeping the original error in the chain.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
	case errors.Is(err, playwright.ErrTargetClosed):
		return fmt.Errorf("%s: %w: %w", op, ErrClosed, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
