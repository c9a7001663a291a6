package steprunner

import "context"

// StepRunner executes one action against a page. Validate is called before
// Run and must not touch the page.
type StepRunner interface {
	Validate() error
	Run(ctx context.Context) error
}
