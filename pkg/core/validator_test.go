package core_test

import (
	"testing"

	"github.com/arnavsurve/rowpilot/pkg/core"
	"github.com/arnavsurve/rowpilot/pkg/dataset"
	"github.com/arnavsurve/rowpilot/pkg/steprunner"
	"github.com/arnavsurve/rowpilot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWorkflowStructure(t *testing.T) {
	click := types.Action{Type: types.Click, Selector: "//button"}

	tests := []struct {
		name    string
		wf      core.Workflow
		wantErr string
	}{
		{"valid", core.Workflow{Name: "ok", Actions: []types.Action{click}}, ""},
		{"missing name", core.Workflow{Actions: []types.Action{click}}, "missing 'name'"},
		{"no actions", core.Workflow{Name: "empty"}, "defines no actions"},
		{
			"unknown kind",
			core.Workflow{Name: "x", Actions: []types.Action{{Type: "hover", Selector: "//a"}}},
			`unknown action type: "hover"`,
		},
		{
			"missing type",
			core.Workflow{Name: "x", PostLoopActions: []types.Action{{Selector: "//a"}}},
			"post_loop action 0: missing 'type'",
		},
		{
			"type_text needs value",
			core.Workflow{Name: "x", PreLoopActions: []types.Action{{Type: types.TypeText, Selector: "//input"}}},
			"pre_loop action 0: type_text action is missing required field(s): value",
		},
		{
			"fill with empty value clears",
			core.Workflow{Name: "x", Actions: []types.Action{{Type: types.FillField, Selector: "//input", Value: ""}}},
			"",
		},
		{
			"templated pre_loop field",
			core.Workflow{
				Name:           "x",
				PreLoopActions: []types.Action{{Type: types.Navigate, URL: "https://x/{{col('name')}}"}},
				Actions:        []types.Action{{Type: types.Click, Selector: "//a"}},
			},
			`pre_loop action 0: field(s) url use {{col(...)}} but pre_loop actions run without a data row`,
		},
		{
			"templated post_loop field",
			core.Workflow{
				Name:            "x",
				Actions:         []types.Action{{Type: types.Click, Selector: "//a"}},
				PostLoopActions: []types.Action{{Type: types.FillField, Selector: "//input", Value: "{{col(0)}}"}},
			},
			"post_loop action 0: field(s) value",
		},
		{
			"templated pre_loop field with default",
			core.Workflow{
				Name: "x",
				PreLoopActions: []types.Action{{
					Type:     types.Navigate,
					URL:      "https://x/{{col('tenant')}}",
					Defaults: map[string]string{"url": "https://x/home"},
				}},
			},
			"",
		},
		{
			"templated default",
			core.Workflow{Name: "x", Actions: []types.Action{{
				Type:     types.FillField,
				Selector: "//input",
				Value:    "{{col('nick')}}",
				Defaults: map[string]string{"value": "{{col('name')}}"},
			}}},
			`default for "value" must be literal text`,
		},
		{
			"seconds satisfies duration",
			core.Workflow{Name: "x", Actions: []types.Action{{Type: types.WaitSeconds, Seconds: 2}}},
			"",
		},
		{
			"bad browser",
			core.Workflow{Name: "x", Browsers: map[string]core.BrowserConfig{"main": {BrowserType: "lynx"}}, Actions: []types.Action{click}},
			`unsupported browser_type "lynx"`,
		},
		{
			"malformed template",
			core.Workflow{Name: "x", Actions: []types.Action{{Type: types.Navigate, URL: "https://x/{{row}}"}}},
			`field "url"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.ValidateWorkflowStructure(&tt.wf)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateWorkflowRunners(t *testing.T) {
	reg := steprunner.NewRegistry()

	ok := &core.Workflow{Name: "ok", Actions: []types.Action{{Type: types.PressKey, Key: "Return"}}}
	assert.NoError(t, core.ValidateWorkflowRunners(ok, reg))

	bad := &core.Workflow{Name: "bad", Actions: []types.Action{{Type: types.WaitSeconds, DurationS: -1}}}
	err := core.ValidateWorkflowRunners(bad, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating loop action 0")
}

func TestExtractReferencedColumns(t *testing.T) {
	wf := &core.Workflow{
		Name:    "p5",
		Actions: []types.Action{{Type: types.FillField, Selector: "//input", Value: "{{col('email')}}"}},
	}
	assert.Equal(t, []string{"email"}, core.ExtractReferencedColumns(wf))

	wf.PreLoopActions = []types.Action{{Type: types.Navigate, URL: "https://x/{{col('tenant')}}/{{col(0)}}"}}
	wf.PostLoopActions = []types.Action{{
		Type:     types.FillField,
		Selector: `//input[@name="{{col("field")}}"]`,
		Value:    "{{col('nick')}}",
		Defaults: map[string]string{"value": "anonymous"},
	}}
	assert.Equal(t, []string{"email", "field", "nick", "tenant"}, core.ExtractReferencedColumns(wf))

	// Defaults are literal, so a column named only there is not required.
	wf.Actions[0].Defaults = map[string]string{"value": "{{col('fallback')}}"}
	assert.NotContains(t, core.ExtractReferencedColumns(wf), "fallback")
}

func TestValidateDatasetColumns(t *testing.T) {
	wf := &core.Workflow{
		Name: "cols",
		Actions: []types.Action{
			{Type: types.FillField, Selector: "//input[@name='email']", Value: "{{col('email')}}"},
			{Type: types.FillField, Selector: "//input[@name='phone']", Value: "{{col('phone')}}"},
		},
	}

	ds, err := dataset.New([]string{"name", "email"}, [][]string{{"Ann", "ann@example.com"}})
	require.NoError(t, err)

	err = core.ValidateDatasetColumns(wf, ds)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMissingColumns)
	assert.Contains(t, err.Error(), "missing [phone]")
	assert.Contains(t, err.Error(), "available [email, name]")

	err = core.ValidateDatasetColumns(wf, nil)
	assert.ErrorIs(t, err, core.ErrMissingColumns)

	full, err := dataset.New([]string{"email", "phone"}, nil)
	require.NoError(t, err)
	assert.NoError(t, core.ValidateDatasetColumns(wf, full))

	assert.NoError(t, core.ValidateDatasetColumns(&core.Workflow{Name: "static", Actions: []types.Action{{Type: types.Click, Selector: "//a"}}}, nil))
}

func TestValidateDatasetColumnsPositionalWithoutDataset(t *testing.T) {
	wf := &core.Workflow{
		Name:    "positional",
		Actions: []types.Action{{Type: types.FillField, Selector: "//input", Value: "{{col(0)}}"}},
	}

	err := core.ValidateDatasetColumns(wf, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMissingColumns)
	assert.Contains(t, err.Error(), "loop action 0 field(s) value")

	wf.Actions[0].Defaults = map[string]string{"value": "n/a"}
	assert.NoError(t, core.ValidateDatasetColumns(wf, nil))
}
