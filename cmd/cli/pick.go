package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/arnavsurve/rowpilot/pkg/page"
	"github.com/arnavsurve/rowpilot/pkg/picker"
	"github.com/arnavsurve/rowpilot/pkg/types"
	"github.com/fatih/color"
)

type PickCmd struct {
	URL          string        `arg:"" help:"Page to open for picking."`
	Browser      string        `help:"Browser type: chromium, chrome, msedge, firefox or webkit." default:"chromium" env:"ROWPILOT_BROWSER"`
	Blacklist    string        `help:"YAML blacklist of attributes never to use." type:"path"`
	Timeout      time.Duration `help:"How long to wait for a click." default:"30s" env:"ROWPILOT_PICK_TIMEOUT"`
	VerifyUnique bool          `help:"Prefer selectors that match exactly one element."`
	Count        int           `help:"Number of elements to pick in a row." default:"1"`
}

func (p *PickCmd) Run(ctx context.Context, g *Globals) error {
	logs, err := g.setupLogging("")
	if err != nil {
		return err
	}
	defer logs.Close()
	cmdLogger := logs.Logger

	bl, err := loadBlacklist(p.Blacklist)
	if err != nil {
		return err
	}

	manager := page.NewManager()
	if err := manager.Initialize(g.Verbose); err != nil {
		return err
	}
	defer manager.Shutdown()

	spec := page.BrowserSpec{Alias: types.DefaultBrowserAlias, BrowserType: p.Browser, StartingURL: p.URL}
	if _, err := manager.Launch(ctx, spec); err != nil {
		return err
	}

	h, release, err := manager.Lease(spec.Alias)
	if err != nil {
		return err
	}
	defer release()

	for i := 0; i < max(p.Count, 1); i++ {
		res := picker.Pick(ctx, h, bl, picker.Options{
			Timeout:      p.Timeout,
			VerifyUnique: p.VerifyUnique,
			Logger:       cmdLogger,
		})
		if !res.Success {
			return fmt.Errorf("picking element: %s", res.Error)
		}
		fmt.Printf("%s %s\n", color.GreenString("selector:"), res.Selector)
	}
	return nil
}
