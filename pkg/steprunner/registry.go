package steprunner

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/arnavsurve/rowpilot/pkg/types"
)

// ErrUnknownAction is returned for an action kind with no registered runner.
var ErrUnknownAction = errors.New("unknown action type")

type RunnerFactory func(ctx types.ExecutionContext, timeouts Timeouts) (StepRunner, error)

// Registry maps each ActionKind to the factory that builds its runner.
//
// NewRegistry returns a registry holding the built-in runners. Register adds
// a factory for a new kind; registering a kind twice is an error, so a
// registry's behaviour for a kind never changes once set. A Registry is safe
// for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[types.ActionKind]RunnerFactory
}

func NewRegistry() *Registry {
	r := &Registry{factories: make(map[types.ActionKind]RunnerFactory)}
	r.mustRegister(types.Click, newClickRunner)
	r.mustRegister(types.FillField, newFillRunner)
	r.mustRegister(types.Navigate, newNavigateRunner)
	r.mustRegister(types.TypeText, newTypeTextRunner)
	r.mustRegister(types.PressKey, newPressKeyRunner)
	r.mustRegister(types.WaitForElement, newWaitForElementRunner)
	r.mustRegister(types.WaitSeconds, newWaitSecondsRunner)
	return r
}

func (r *Registry) mustRegister(kind types.ActionKind, factory RunnerFactory) {
	if err := r.Register(kind, factory); err != nil {
		panic(err)
	}
}

// Register adds factory for kind.
func (r *Registry) Register(kind types.ActionKind, factory RunnerFactory) error {
	if kind == "" || factory == nil {
		return fmt.Errorf("registering runner: kind and factory are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("runner for %q already registered", kind)
	}
	r.factories[kind] = factory
	return nil
}

// Runner builds the runner for ctx.Action.Type.
func (r *Registry) Runner(ctx types.ExecutionContext, timeouts Timeouts) (StepRunner, error) {
	r.mu.RLock()
	factory, ok := r.factories[ctx.Action.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, ctx.Action.Type)
	}
	return factory(ctx, timeouts.withDefaults())
}

// Has reports whether a runner is registered for kind.
func (r *Registry) Has(kind types.ActionKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []types.ActionKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]types.ActionKind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
