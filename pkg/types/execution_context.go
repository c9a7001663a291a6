package types

import "github.com/arnavsurve/rowpilot/pkg/page"

// ExecutionContext contains what a runner needs to execute one action.
// Action has already had its templates resolved.
type ExecutionContext struct {
	Action Action
	Page   page.Handle
	Logger Logger
}
