package core

import (
	"github.com/arnavsurve/rowpilot/pkg/types"
)

type BrowserConfig struct {
	BrowserType string `yaml:"browser_type,omitempty"`
	StartingURL string `yaml:"starting_url,omitempty"`
	Headless    bool   `yaml:"headless,omitempty"`
}

type Workflow struct {
	Name          string                   `yaml:"name"`
	Description   string                   `yaml:"description,omitempty"`
	Browsers      map[string]BrowserConfig `yaml:"browsers,omitempty"`
	Dataset       string                   `yaml:"dataset,omitempty"`
	SecretColumns []string                 `yaml:"secret_columns,omitempty"`
	StopOnError   *bool                    `yaml:"stop_on_error,omitempty"`

	// Actions is the per-row sequence when LoopActions is empty.
	Actions         []types.Action `yaml:"actions,omitempty"`
	PreLoopActions  []types.Action `yaml:"pre_loop_actions,omitempty"`
	LoopActions     []types.Action `yaml:"loop_actions,omitempty"`
	PostLoopActions []types.Action `yaml:"post_loop_actions,omitempty"`
}

// Section names one of the three action lists of a workflow.
type Section string

const (
	SectionPreLoop  Section = "pre_loop"
	SectionLoop     Section = "loop"
	SectionPostLoop Section = "post_loop"
)

// Sections lists the sections in execution order.
var Sections = []Section{SectionPreLoop, SectionLoop, SectionPostLoop}

// ShouldStopOnError reports the stop_on_error policy, which defaults to true.
func (wf *Workflow) ShouldStopOnError() bool {
	return wf.StopOnError == nil || *wf.StopOnError
}

// SectionActions returns the actions of section. For SectionLoop that is
// LoopActions, or Actions when LoopActions is empty. The slice aliases the
// workflow's own.
func (wf *Workflow) SectionActions(section Section) []types.Action {
	switch section {
	case SectionPreLoop:
		return wf.PreLoopActions
	case SectionLoop:
		if len(wf.LoopActions) > 0 {
			return wf.LoopActions
		}
		return wf.Actions
	case SectionPostLoop:
		return wf.PostLoopActions
	default:
		return nil
	}
}

// AllActions returns every action across the sections, in execution order.
func (wf *Workflow) AllActions() []types.Action {
	var all []types.Action
	for _, s := range Sections {
		all = append(all, wf.SectionActions(s)...)
	}
	return all
}

// BrowserConfigs returns the declared browsers, or a single default chromium
// browser under types.DefaultBrowserAlias when none are declared.
func (wf *Workflow) BrowserConfigs() map[string]BrowserConfig {
	if len(wf.Browsers) == 0 {
		return map[string]BrowserConfig{types.DefaultBrowserAlias: {BrowserType: "chromium"}}
	}
	return wf.Browsers
}

// ReplaceSelector sets the selector of the action at index in section. It is
// how a healed selector is written back.
func (wf *Workflow) ReplaceSelector(section Section, index int, selector string) bool {
	actions := wf.SectionActions(section)
	if index < 0 || index >= len(actions) {
		return false
	}
	actions[index].Selector = selector
	return true
}

// RowResult records one pass of the loop section over a dataset row.
// ActionIndex is -1 when the row succeeded.
type RowResult struct {
	RowIndex    int    `json:"row_index"`
	Success     bool   `json:"success"`
	ActionIndex int    `json:"action_index"`
	Error       string `json:"error,omitempty"`
}

// HealedSelector records a selector the engine replaced after healing.
type HealedSelector struct {
	Section     Section `json:"section"`
	ActionIndex int     `json:"action_index"`
	Old         string  `json:"old"`
	New         string  `json:"new"`
	Summary     string  `json:"summary"`
}

// RunSummary is the structured outcome of a workflow run. Errors holds at
// most MaxReportedErrors messages.
type RunSummary struct {
	RunID         string           `json:"run_id"`
	RowsAttempted int              `json:"rows_attempted"`
	RowsSucceeded int              `json:"rows_succeeded"`
	RowsFailed    int              `json:"rows_failed"`
	Rows          []RowResult      `json:"rows"`
	Errors        []string         `json:"errors,omitempty"`
	Healed        []HealedSelector `json:"healed,omitempty"`
	Halted        bool             `json:"halted"`
	Cancelled     bool             `json:"cancelled"`
}

const MaxReportedErrors = 10

func (s *RunSummary) addError(msg string) {
	if len(s.Errors) < MaxReportedErrors {
		s.Errors = append(s.Errors, msg)
	}
}

// Failed reports whether anything in the run failed.
func (s *RunSummary) Failed() bool {
	return s.RowsFailed > 0 || s.Halted || s.Cancelled || len(s.Errors) > 0
}
