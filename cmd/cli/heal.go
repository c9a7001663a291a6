package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/arnavsurve/rowpilot/pkg/core"
	"github.com/arnavsurve/rowpilot/pkg/healing"
	"github.com/arnavsurve/rowpilot/pkg/page"
	"github.com/arnavsurve/rowpilot/pkg/selector"
	"github.com/fatih/color"
)

// HealCmd diagnoses one broken selector, either given directly or taken from
// a workflow action, and optionally re-picks it.
type HealCmd struct {
	Workflow string `help:"Workflow holding the broken action." env:"ROWPILOT_WORKFLOW"`
	Section  string `help:"Workflow section of the action: pre_loop, loop or post_loop." default:"loop" enum:"pre_loop,loop,post_loop"`
	Action   int    `help:"1-based index of the action within its section." default:"0"`
	Selector string `help:"Broken selector to diagnose instead of a workflow action."`
	URL      string `help:"Page to open. Defaults to the action's browser starting_url."`
	Browser  string `help:"Browser type when no workflow is given." default:"chromium"`

	AnalyzeOnly   bool          `help:"Only report which attributes went stale; do not re-pick."`
	Write         bool          `help:"Write the accepted selector back into the workflow file."`
	Blacklist     string        `help:"YAML blacklist of attributes never to use." type:"path"`
	SaveBlacklist string        `help:"Write the combined blacklist to this YAML file." type:"path"`
	Timeout       time.Duration `help:"How long the re-pick waits for a click." default:"30s" env:"ROWPILOT_PICK_TIMEOUT"`
	VerifyUnique  bool          `help:"Prefer selectors that match exactly one element."`
	Yes           bool          `short:"y" help:"Accept the re-picked selector without asking."`
}

func (h *HealCmd) Run(ctx context.Context, g *Globals) error {
	logs, err := g.setupLogging("")
	if err != nil {
		return err
	}
	defer logs.Close()
	cmdLogger := logs.Logger

	target, err := h.resolveTarget()
	if err != nil {
		return err
	}

	base, err := loadBlacklist(h.Blacklist)
	if err != nil {
		return err
	}

	manager := page.NewManager()
	if err := manager.Initialize(g.Verbose); err != nil {
		return err
	}
	defer manager.Shutdown()

	if _, err := manager.Launch(ctx, target.spec); err != nil {
		return err
	}
	p, release, err := manager.Lease(target.spec.Alias)
	if err != nil {
		return err
	}
	defer release()

	healer := &healing.Healer{
		Logger:       cmdLogger,
		PickTimeout:  h.Timeout,
		VerifyUnique: h.VerifyUnique,
		Base:         base,
	}
	if !h.Yes {
		healer.Confirm = confirmHeal(os.Stdin, os.Stdout)
	}

	var out healing.Outcome
	if h.AnalyzeOnly {
		out, err = healer.Analyze(ctx, p, target.selector)
	} else {
		out, err = healer.Heal(ctx, p, target.selector)
	}

	fmt.Printf("%s %s\n", color.YellowString("diagnosis:"), out.Summary)

	if h.SaveBlacklist != "" && out.Blacklist != nil {
		combined := selector.NewBlacklist()
		combined.Merge(base)
		combined.Merge(out.Blacklist)
		if saveErr := selector.SaveBlacklist(h.SaveBlacklist, combined); saveErr != nil {
			cmdLogger.Error().Err(saveErr).Msg("Failed to save blacklist")
		} else {
			cmdLogger.Info().Int("entries", combined.Len()).Msgf("Blacklist saved to %s", h.SaveBlacklist)
		}
	}

	if err != nil {
		return err
	}
	if h.AnalyzeOnly {
		return nil
	}

	fmt.Printf("%s %s\n", color.GreenString("selector:"), out.Selector())

	if h.Write && target.wf != nil {
		target.wf.ReplaceSelector(target.section, target.index, out.Selector())
		if err := core.SaveWorkflowToFile(h.Workflow, target.wf); err != nil {
			return err
		}
		cmdLogger.Info().Msgf("Updated %s action %d in %s", target.section, target.index+1, h.Workflow)
	}
	return nil
}

type healTarget struct {
	selector string
	spec     page.BrowserSpec
	wf       *core.Workflow
	section  core.Section
	index    int
}

func (h *HealCmd) resolveTarget() (*healTarget, error) {
	if h.Workflow == "" {
		if h.Selector == "" || h.URL == "" {
			return nil, fmt.Errorf("either --workflow with --action, or --selector with --url, is required")
		}
		return &healTarget{
			selector: h.Selector,
			spec:     page.BrowserSpec{Alias: "main", BrowserType: h.Browser, StartingURL: h.URL},
		}, nil
	}

	wf, err := core.LoadWorkflowFromFile(h.Workflow)
	if err != nil {
		return nil, err
	}

	section := core.Section(h.Section)
	actions := wf.SectionActions(section)
	if h.Action < 1 || h.Action > len(actions) {
		return nil, fmt.Errorf("%s section has %d action(s), --action %d is out of range", section, len(actions), h.Action)
	}
	action := actions[h.Action-1]

	sel := h.Selector
	if sel == "" {
		sel = action.Selector
	}
	if sel == "" {
		return nil, fmt.Errorf("%s action %d (%s) has no selector", section, h.Action, action.Type)
	}

	cfg := wf.BrowserConfigs()[action.Alias()]
	url := h.URL
	if url == "" {
		url = cfg.StartingURL
	}
	if url == "" {
		return nil, fmt.Errorf("browser %q has no starting_url; pass --url", action.Alias())
	}

	return &healTarget{
		selector: sel,
		spec:     page.BrowserSpec{Alias: action.Alias(), BrowserType: cfg.BrowserType, StartingURL: url},
		wf:       wf,
		section:  section,
		index:    h.Action - 1,
	}, nil
}
