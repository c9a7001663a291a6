package cli

import (
	"context"
	"fmt"

	"github.com/arnavsurve/rowpilot/pkg/core"
	"github.com/arnavsurve/rowpilot/pkg/security"
	"github.com/arnavsurve/rowpilot/pkg/steprunner"
)

type LintCmd struct {
	Workflow string `help:"The workflow configuration file." default:"rowpilot.yml" env:"ROWPILOT_WORKFLOW"`
	Dataset  string `help:"Dataset file to check against the workflow. Overrides the workflow's dataset." env:"ROWPILOT_DATASET"`
	Preview  int    `help:"Number of dataset rows to print." default:"3"`
}

func (l *LintCmd) Run(_ context.Context, g *Globals) error {
	logs, err := g.setupLogging("")
	if err != nil {
		return err
	}
	defer logs.Close()
	cmdLogger := logs.Logger

	cmdLogger.Info().Msgf("Validating %s", l.Workflow)

	wf, err := core.LoadWorkflowFromFile(l.Workflow)
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Failed to load workflow file %s", l.Workflow)
		return err
	}
	cmdLogger.Info().Msgf("Successfully loaded workflow: %s", wf.Name)

	cmdLogger.Info().Msg("Validating individual actions...")
	if err := core.ValidateWorkflowRunners(wf, steprunner.NewRegistry()); err != nil {
		cmdLogger.Error().Err(err).Msg("Action configuration validation failed")
		return fmt.Errorf("validating actions: %w", err)
	}
	cmdLogger.Info().Int("actions", len(wf.AllActions())).Msg("Action validation passed")

	cols := core.ExtractReferencedColumns(wf)
	if len(cols) > 0 {
		cmdLogger.Info().Interface("columns", cols).Msg("Workflow references dataset columns")
	}

	ds, err := loadDataset(l.Workflow, l.Dataset, wf)
	if err != nil {
		cmdLogger.Error().Err(err).Msg("Failed to load dataset")
		return err
	}
	if err := core.ValidateDatasetColumns(wf, ds); err != nil {
		cmdLogger.Error().Err(err).Msg("Dataset validation failed")
		return err
	}

	if ds != nil {
		logs.Router.Redactor = security.NewRedactor(wf.SecretColumns, ds)
		cmdLogger.Info().Int("rows", ds.Len()).Interface("columns", ds.Columns()).Msg("Dataset validation passed")
		for i, row := range ds.Preview(l.Preview) {
			cmdLogger.Info().Int("row_index", i).Msg(row.String())
		}
	}

	cmdLogger.Info().Msg("Successfully validated workflow configuration ✅")
	return nil
}
