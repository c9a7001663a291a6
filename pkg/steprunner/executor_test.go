package steprunner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arnavsurve/rowpilot/pkg/dataset"
	"github.com/arnavsurve/rowpilot/pkg/page"
	"github.com/arnavsurve/rowpilot/pkg/page/pagetest"
	"github.com/arnavsurve/rowpilot/pkg/steprunner"
	"github.com/arnavsurve/rowpilot/pkg/template"
	"github.com/arnavsurve/rowpilot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRow(t *testing.T, columns []string, values ...string) dataset.Row {
	t.Helper()
	ds, err := dataset.New(columns, [][]string{values})
	require.NoError(t, err)
	row, err := ds.Row(0)
	require.NoError(t, err)
	return row
}

func TestExecute_Dispatch(t *testing.T) {
	tests := []struct {
		name   string
		action types.Action
		want   pagetest.Call
	}{
		{"click", types.Action{Type: types.Click, Selector: "//button"}, pagetest.Call{Op: "click", Selector: "//button"}},
		{"fill", types.Action{Type: types.FillField, Selector: "//input", Value: "x"}, pagetest.Call{Op: "fill", Selector: "//input", Value: "x"}},
		{"navigate", types.Action{Type: types.Navigate, URL: "https://example.com"}, pagetest.Call{Op: "navigate", Value: "https://example.com"}},
		{"type", types.Action{Type: types.TypeText, Selector: "//input", Value: "hello"}, pagetest.Call{Op: "type", Selector: "//input", Value: "hello"}},
		{"press key", types.Action{Type: types.PressKey, Key: "Return"}, pagetest.Call{Op: "press_key", Value: "Enter"}},
		{"wait for element", types.Action{Type: types.WaitForElement, Selector: "//div"}, pagetest.Call{Op: "wait_for_selector", Selector: "//div"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := pagetest.New()
			exec := steprunner.NewExecutor(nil, steprunner.DefaultTimeouts(), nil)

			res := exec.Execute(context.Background(), tt.action, p, nil)
			require.True(t, res.Success, res.Error)
			assert.Equal(t, []pagetest.Call{tt.want}, p.Calls())
		})
	}
}

func TestExecute_ResolvesTemplates(t *testing.T) {
	p := pagetest.New()
	exec := steprunner.NewExecutor(nil, steprunner.Timeouts{}, nil)
	row := newRow(t, []string{"field", "email"}, "login", "ann@example.com")

	res := exec.Execute(context.Background(), types.Action{
		Type:     types.FillField,
		Selector: `//input[@name="{{col('field')}}"]`,
		Value:    "{{col(1)}}",
	}, p, row)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, []pagetest.Call{{Op: "fill", Selector: `//input[@name="login"]`, Value: "ann@example.com"}}, p.Calls())
	assert.Equal(t, "ann@example.com", res.Action.Value)
}

func TestExecute_TemplateFailureNeverReachesPage(t *testing.T) {
	p := pagetest.New()
	exec := steprunner.NewExecutor(nil, steprunner.Timeouts{}, nil)
	row := newRow(t, []string{"name"}, "Ann")

	res := exec.Execute(context.Background(), types.Action{
		Type:     types.FillField,
		Selector: "//input",
		Value:    "{{col('email')}}",
	}, p, row)

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, template.ErrColumnNotFound)
	assert.Contains(t, res.Error, "fill_field failed")
	assert.Contains(t, res.Error, "col('email')")
	assert.Empty(t, p.Calls())
}

func TestExecute_TemplateWithoutRow(t *testing.T) {
	exec := steprunner.NewExecutor(nil, steprunner.Timeouts{}, nil)

	p := pagetest.New()
	res := exec.Execute(context.Background(), types.Action{Type: types.Navigate, URL: "https://x/{{col('name')}}"}, p, nil)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, template.ErrColumnNotFound)
	var resErr *template.ResolutionError
	assert.ErrorAs(t, res.Err, &resErr)
	assert.Empty(t, p.Calls())

	p = pagetest.New()
	res = exec.Execute(context.Background(), types.Action{
		Type:     types.FillField,
		Selector: "//input",
		Value:    "{{col(0)}}",
		Defaults: map[string]string{"value": "{{col('name')}}"},
	}, p, nil)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "{{col('name')}}", p.Calls()[0].Value, "defaults are inserted literally")
}

func TestExecute_TemplateDefault(t *testing.T) {
	p := pagetest.New()
	exec := steprunner.NewExecutor(nil, steprunner.Timeouts{}, nil)
	row := newRow(t, []string{"name"}, "Ann")

	res := exec.Execute(context.Background(), types.Action{
		Type:     types.FillField,
		Selector: "//input",
		Value:    "{{col('email')}}",
		Defaults: map[string]string{"value": "nobody@example.com"},
	}, p, row)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "nobody@example.com", p.Calls()[0].Value)
}

func TestExecute_Failures(t *testing.T) {
	exec := steprunner.NewExecutor(nil, steprunner.Timeouts{}, nil)

	t.Run("unknown action", func(t *testing.T) {
		res := exec.Execute(context.Background(), types.Action{Type: "hover", Selector: "//a"}, pagetest.New(), nil)
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, steprunner.ErrUnknownAction)
	})

	t.Run("missing selector", func(t *testing.T) {
		res := exec.Execute(context.Background(), types.Action{Type: types.Click}, pagetest.New(), nil)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "must define 'selector'")
	})

	t.Run("element never appears", func(t *testing.T) {
		p := pagetest.New()
		p.Strict = true
		res := exec.Execute(context.Background(), types.Action{Type: types.Click, Selector: `//button[@id="gone"]`}, p, nil)
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Err, page.ErrTimeout)
		assert.Contains(t, res.Error, "click failed")
		assert.True(t, steprunner.IsHealable(res))
	})

	t.Run("page closed", func(t *testing.T) {
		p := pagetest.New()
		p.Close()
		res := exec.Execute(context.Background(), types.Action{Type: types.Navigate, URL: "https://example.com"}, p, nil)
		assert.ErrorIs(t, res.Err, page.ErrClosed)
		assert.False(t, steprunner.IsHealable(res))
	})

	t.Run("no page", func(t *testing.T) {
		res := exec.Execute(context.Background(), types.Action{Type: types.Click, Selector: "//a", BrowserAlias: "admin"}, nil, nil)
		assert.ErrorIs(t, res.Err, page.ErrUnknownAlias)
		assert.Contains(t, res.Error, "admin")
	})

	t.Run("driver error", func(t *testing.T) {
		p := pagetest.New()
		boom := errors.New("protocol error")
		p.Errors["fill"] = boom
		res := exec.Execute(context.Background(), types.Action{Type: types.FillField, Selector: "//input", Value: "x"}, p, nil)
		assert.ErrorIs(t, res.Err, boom)
		assert.False(t, steprunner.IsHealable(res))
	})
}

func TestWaitSeconds_Completes(t *testing.T) {
	exec := steprunner.NewExecutor(nil, steprunner.Timeouts{WaitIncrement: 10 * time.Millisecond}, nil)

	start := time.Now()
	res := exec.Execute(context.Background(), types.Action{Type: types.WaitSeconds, DurationS: 0.05}, pagetest.New(), nil)
	require.True(t, res.Success, res.Error)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestWaitSeconds_Cancellation(t *testing.T) {
	exec := steprunner.NewExecutor(nil, steprunner.DefaultTimeouts(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	start := time.Now()
	res := exec.Execute(ctx, types.Action{Type: types.WaitSeconds, DurationS: 10}, pagetest.New(), nil)
	elapsed := time.Since(start)

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Less(t, elapsed, 200*time.Millisecond+steprunner.DefaultTimeouts().WaitIncrement+200*time.Millisecond)
}

func TestWaitSeconds_LegacySecondsField(t *testing.T) {
	exec := steprunner.NewExecutor(nil, steprunner.Timeouts{WaitIncrement: time.Millisecond}, nil)
	res := exec.Execute(context.Background(), types.Action{Type: types.WaitSeconds, Seconds: 0.01}, pagetest.New(), nil)
	assert.True(t, res.Success, res.Error)

	res = exec.Execute(context.Background(), types.Action{Type: types.WaitSeconds}, pagetest.New(), nil)
	assert.False(t, res.Success)
}
