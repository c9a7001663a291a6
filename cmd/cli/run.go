package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arnavsurve/rowpilot/pkg/core"
	"github.com/arnavsurve/rowpilot/pkg/dataset"
	"github.com/arnavsurve/rowpilot/pkg/healing"
	"github.com/arnavsurve/rowpilot/pkg/page"
	"github.com/arnavsurve/rowpilot/pkg/security"
	"github.com/arnavsurve/rowpilot/pkg/selector"
	"github.com/arnavsurve/rowpilot/pkg/steprunner"
	"github.com/google/uuid"
)

// TimeoutFlags override the per-action defaults.
type TimeoutFlags struct {
	ClickTimeout    time.Duration `help:"Default click timeout." default:"5s" env:"ROWPILOT_CLICK_TIMEOUT"`
	FillTimeout     time.Duration `help:"Default fill_field timeout." default:"5s" env:"ROWPILOT_FILL_TIMEOUT"`
	NavigateTimeout time.Duration `help:"Default navigate timeout." default:"30s" env:"ROWPILOT_NAVIGATE_TIMEOUT"`
	TypeDelay       time.Duration `help:"Delay between keystrokes for type_text." default:"50ms" env:"ROWPILOT_TYPE_DELAY"`
	WaitTimeout     time.Duration `help:"Default wait_for_element timeout." default:"30s" env:"ROWPILOT_WAIT_TIMEOUT"`
}

func (f TimeoutFlags) timeouts() steprunner.Timeouts {
	t := steprunner.DefaultTimeouts()
	t.Click = f.ClickTimeout
	t.Fill = f.FillTimeout
	t.Navigate = f.NavigateTimeout
	t.TypeDelay = f.TypeDelay
	t.WaitForElement = f.WaitTimeout
	return t
}

type RunCmd struct {
	Workflow string `help:"The workflow configuration file." default:"rowpilot.yml" env:"ROWPILOT_WORKFLOW"`
	Dataset  string `help:"Dataset file (CSV, JSON or YAML). Overrides the workflow's dataset." env:"ROWPILOT_DATASET"`
	Headless bool   `help:"Run every browser headless." env:"ROWPILOT_HEADLESS"`

	Heal          bool          `help:"Offer to heal click and fill selectors that stop matching."`
	WriteBack     bool          `help:"Write accepted healed selectors back into the workflow file."`
	Blacklist     string        `help:"YAML blacklist of attributes never to use when healing." type:"path"`
	PickTimeout   time.Duration `help:"How long a healing re-pick waits for a click." default:"30s" env:"ROWPILOT_PICK_TIMEOUT"`
	VerifyUnique  bool          `help:"Prefer healed selectors that match exactly one element."`
	SummaryOutput string        `name:"summary" help:"Write the run summary as JSON to this file." type:"path"`

	TimeoutFlags `embed:""`
}

func (r *RunCmd) Run(ctx context.Context, g *Globals) error {
	runID := uuid.New().String()

	logs, err := g.setupLogging(runID)
	if err != nil {
		return err
	}
	defer logs.Close()
	cmdLogger := logs.Logger

	cmdLogger.Info().Msgf("Starting workflow run with ID: %s", runID)
	cmdLogger.Info().Msgf("Logs will be saved to %q", logs.LogFile)

	wf, err := core.LoadWorkflowFromFile(r.Workflow)
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Failed to load workflow file %s", r.Workflow)
		return err
	}
	cmdLogger.Info().Msgf("Successfully loaded workflow: %q", wf.Name)

	ds, err := loadDataset(r.Workflow, r.Dataset, wf)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Failed to load dataset")
		return err
	}
	if ds != nil {
		cmdLogger.Info().Int("rows", ds.Len()).Int("columns", len(ds.Columns())).Msg("Loaded dataset")
	}

	// Redact secret column values from every log line from here on.
	logs.Router.Redactor = security.NewRedactor(wf.SecretColumns, ds)

	registry := steprunner.NewRegistry()
	if err := core.ValidateWorkflowRunners(wf, registry); err != nil {
		cmdLogger.Error().Err(err).Msg("Workflow runner validation failed")
		return fmt.Errorf("validating workflow runners: %w", err)
	}
	if err := core.ValidateDatasetColumns(wf, ds); err != nil {
		cmdLogger.Error().Err(err).Msg("Dataset does not satisfy the workflow")
		return err
	}
	cmdLogger.Info().Msg("Workflow validation passed")

	manager := page.NewManager()
	if err := manager.Initialize(g.Verbose); err != nil {
		return err
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			cmdLogger.Warn().Err(err).Msg("Failed to shut down browsers cleanly")
		}
	}()

	if err := core.LaunchBrowsers(ctx, manager, wf, r.Headless); err != nil {
		cmdLogger.Error().Err(err).Msg("Failed to launch browsers")
		return err
	}
	cmdLogger.Info().Interface("browsers", manager.Aliases()).Msg("Browsers ready")

	executor := steprunner.NewExecutor(registry, r.timeouts(), cmdLogger)
	engine := core.NewWorkflowEngine(cmdLogger, executor, manager)
	if r.Heal {
		base, err := loadBlacklist(r.Blacklist)
		if err != nil {
			return err
		}
		engine.Healer = &healing.Healer{
			Logger:       cmdLogger,
			PickTimeout:  r.PickTimeout,
			VerifyUnique: r.VerifyUnique,
			Base:         base,
			Confirm:      confirmHeal(os.Stdin, os.Stdout),
		}
	}

	cmdLogger.Info().Msgf("Executing workflow: %q", wf.Name)
	summary, runErr := engine.Run(ctx, runID, wf, ds)

	if r.WriteBack && len(summary.Healed) > 0 {
		if err := writeBackHealed(r.Workflow, wf, summary.Healed); err != nil {
			cmdLogger.Error().Err(err).Msg("Failed to write healed selectors back")
		} else {
			cmdLogger.Info().Int("selectors", len(summary.Healed)).Msgf("Wrote healed selectors to %s", r.Workflow)
		}
	}

	if r.SummaryOutput != "" {
		if err := writeSummary(r.SummaryOutput, summary); err != nil {
			cmdLogger.Warn().Err(err).Msg("Failed to write run summary")
		}
	}

	for _, msg := range summary.Errors {
		cmdLogger.Error().Msg(msg)
	}
	cmdLogger.Info().
		Int("rows_attempted", summary.RowsAttempted).
		Int("rows_succeeded", summary.RowsSucceeded).
		Int("rows_failed", summary.RowsFailed).
		Msgf("Run finished. Logs can be found at %q", logs.LogFile)

	if runErr != nil {
		return fmt.Errorf("workflow %q stopped: %w", wf.Name, runErr)
	}
	if summary.Failed() {
		return fmt.Errorf("workflow %q finished with %d failed row(s)", wf.Name, summary.RowsFailed)
	}
	return nil
}

// loadDataset prefers the --dataset flag and otherwise resolves the
// workflow's dataset relative to the workflow file. No dataset is not an
// error.
func loadDataset(workflowPath, override string, wf *core.Workflow) (*dataset.Dataset, error) {
	path := override
	if path == "" && wf.Dataset != "" {
		workflowAbsPath, err := filepath.Abs(workflowPath)
		if err != nil {
			return nil, fmt.Errorf("determining absolute path for workflow file %q: %w", workflowPath, err)
		}
		path = core.ResolvePathFromWorkflow(filepath.Dir(workflowAbsPath), wf.Dataset)
	}
	if path == "" {
		return nil, nil
	}
	return dataset.LoadFromFile(path)
}

// loadBlacklist reads a persisted blacklist; no path means an empty one.
func loadBlacklist(path string) (*selector.Blacklist, error) {
	if path == "" {
		return selector.NewBlacklist(), nil
	}
	return selector.LoadBlacklist(path)
}

func writeBackHealed(path string, wf *core.Workflow, healed []core.HealedSelector) error {
	for _, h := range healed {
		if !wf.ReplaceSelector(h.Section, h.ActionIndex, h.New) {
			return fmt.Errorf("no %s action %d to update", h.Section, h.ActionIndex)
		}
	}
	return core.SaveWorkflowToFile(path, wf)
}

func writeSummary(path string, summary *core.RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing run summary %q: %w", path, err)
	}
	return nil
}
