package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/arnavsurve/rowpilot/pkg/dataset"
	"github.com/arnavsurve/rowpilot/pkg/page"
	"github.com/arnavsurve/rowpilot/pkg/steprunner"
	"github.com/arnavsurve/rowpilot/pkg/template"
	"github.com/arnavsurve/rowpilot/pkg/types"
)

// ValidateWorkflowStructure checks fields at the workflow level: the name,
// browser declarations, and every action against its schema and template
// syntax.
func ValidateWorkflowStructure(wf *Workflow) error {
	if wf.Name == "" {
		return fmt.Errorf("workflow is missing 'name'")
	}

	for alias, cfg := range wf.Browsers {
		if alias == "" {
			return fmt.Errorf("browser alias must not be empty")
		}
		if !page.SupportedBrowserType(cfg.BrowserType) {
			return fmt.Errorf("browser %q has unsupported browser_type %q", alias, cfg.BrowserType)
		}
	}

	if len(wf.AllActions()) == 0 {
		return fmt.Errorf("workflow %q defines no actions", wf.Name)
	}

	for _, section := range Sections {
		for i, action := range wf.SectionActions(section) {
			if err := validateAction(action); err != nil {
				return fmt.Errorf("%s action %d: %w", section, i, err)
			}
			if section == SectionLoop {
				continue
			}
			// Pre- and post-loop actions never see a row.
			if unbound := unboundTemplateFields(action); len(unbound) > 0 {
				return fmt.Errorf("%s action %d: field(s) %s use {{col(...)}} but %s actions run without a data row; set a default or move the action into the loop",
					section, i, strings.Join(unbound, ", "), section)
			}
		}
	}
	return nil
}

// unboundTemplateFields returns the templated fields of a that have no
// default to fall back on.
func unboundTemplateFields(a types.Action) []string {
	var fields []string
	for _, field := range types.TemplateFields {
		v, _ := a.Field(field)
		if !template.IsTemplate(v) {
			continue
		}
		if _, ok := a.Defaults[field]; ok {
			continue
		}
		fields = append(fields, field)
	}
	return fields
}

func validateAction(a types.Action) error {
	if a.Type == "" {
		return fmt.Errorf("missing 'type'")
	}
	if _, ok := types.ActionSchemas[a.Type]; !ok {
		return fmt.Errorf("%w: %q", steprunner.ErrUnknownAction, a.Type)
	}
	if missing := a.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("%s action is missing required field(s): %s", a.Type, strings.Join(missing, ", "))
	}
	for _, field := range types.TemplateFields {
		v, _ := a.Field(field)
		if err := template.Validate(v); err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
	}
	for field, def := range a.Defaults {
		if template.IsTemplate(def) {
			return fmt.Errorf("default for %q must be literal text, got %q", field, def)
		}
	}
	return nil
}

// ValidateWorkflowRunners builds every action's runner from registry and
// runs its own validation, without a page.
func ValidateWorkflowRunners(wf *Workflow, registry *steprunner.Registry) error {
	for _, section := range Sections {
		for i, action := range wf.SectionActions(section) {
			runner, err := registry.Runner(types.ExecutionContext{Action: action}, steprunner.DefaultTimeouts())
			if err != nil {
				return fmt.Errorf("getting runner for %s action %d: %w", section, i, err)
			}
			if err := runner.Validate(); err != nil {
				return fmt.Errorf("validating %s action %d: %w", section, i, err)
			}
		}
	}
	return nil
}

// ExtractReferencedColumns returns every column named literally in a
// templated field of any action, sorted. Defaults are inserted as literal
// text and are not scanned.
func ExtractReferencedColumns(wf *Workflow) []string {
	var values []string
	for _, a := range wf.AllActions() {
		for _, field := range types.TemplateFields {
			if v, ok := a.Field(field); ok {
				values = append(values, v)
			}
		}
	}
	return template.ReferencedColumns(values...)
}

// ErrMissingColumns is wrapped by ValidateDatasetColumns.
var ErrMissingColumns = errors.New("dataset is missing columns")

// ValidateDatasetColumns fails fast, before any page is touched, when ds
// lacks a column the workflow references.
func ValidateDatasetColumns(wf *Workflow, ds *dataset.Dataset) error {
	required := ExtractReferencedColumns(wf)
	if ds == nil {
		if len(required) > 0 {
			return fmt.Errorf("%w: workflow references %s but no dataset was given", ErrMissingColumns, strings.Join(required, ", "))
		}
		// Positional references name no column but still need a row.
		for i, a := range wf.SectionActions(SectionLoop) {
			if unbound := unboundTemplateFields(a); len(unbound) > 0 {
				return fmt.Errorf("%w: loop action %d field(s) %s use {{col(...)}} but no dataset was given",
					ErrMissingColumns, i, strings.Join(unbound, ", "))
			}
		}
		return nil
	}
	if len(required) == 0 {
		return nil
	}

	var missing []string
	for _, col := range required {
		if !ds.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	available := ds.Columns()
	sort.Strings(available)
	return fmt.Errorf("%w: required [%s], missing [%s], available [%s]",
		ErrMissingColumns,
		strings.Join(required, ", "),
		strings.Join(missing, ", "),
		strings.Join(available, ", "))
}
