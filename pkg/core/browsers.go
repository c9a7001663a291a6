package core

import (
	"context"
	"fmt"

	"github.com/arnavsurve/rowpilot/pkg/page"
	"golang.org/x/sync/errgroup"
)

// Launcher starts one browser. *page.Manager implements it.
type Launcher interface {
	Launch(ctx context.Context, spec page.BrowserSpec) (page.Handle, error)
}

// LaunchBrowsers starts every browser the workflow declares, concurrently.
// The first failure cancels the launches still in flight.
func LaunchBrowsers(ctx context.Context, launcher Launcher, wf *Workflow, headless bool) error {
	g, gctx := errgroup.WithContext(ctx)
	for alias, cfg := range wf.BrowserConfigs() {
		spec := page.BrowserSpec{
			Alias:       alias,
			BrowserType: cfg.BrowserType,
			StartingURL: cfg.StartingURL,
			Headless:    cfg.Headless || headless,
		}
		g.Go(func() error {
			if _, err := launcher.Launch(gctx, spec); err != nil {
				return fmt.Errorf("launching browser %q: %w", spec.Alias, err)
			}
			return nil
		})
	}
	return g.Wait()
}
