package steprunner_test

import (
	"context"
	"testing"

	"github.com/arnavsurve/rowpilot/pkg/steprunner"
	"github.com/arnavsurve/rowpilot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopRunner struct{}

func (noopRunner) Validate() error { return nil }
func (noopRunner) Run(context.Context) error { return nil }

func TestRegistry(t *testing.T) {
	r := steprunner.NewRegistry()
	for _, kind := range types.ActionKinds {
		assert.True(t, r.Has(kind), "built-in runner for %s", kind)
	}
	assert.Len(t, r.Kinds(), len(types.ActionKinds))

	factory := func(types.ExecutionContext, steprunner.Timeouts) (steprunner.StepRunner, error) {
		return noopRunner{}, nil
	}
	require.NoError(t, r.Register("screenshot", factory))
	assert.Error(t, r.Register("screenshot", factory))
	assert.Error(t, r.Register(types.Click, factory), "built-ins cannot be replaced")
	assert.Error(t, r.Register("", factory))

	runner, err := r.Runner(types.ExecutionContext{Action: types.Action{Type: "screenshot"}}, steprunner.Timeouts{})
	require.NoError(t, err)
	assert.IsType(t, noopRunner{}, runner)

	_, err = r.Runner(types.ExecutionContext{Action: types.Action{Type: "hover"}}, steprunner.Timeouts{})
	assert.ErrorIs(t, err, steprunner.ErrUnknownAction)
}
