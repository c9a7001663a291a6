package steprunner

import "time"

// Timeouts bounds every page operation a runner performs.
type Timeouts struct {
	Click          time.Duration
	Fill           time.Duration
	Navigate       time.Duration
	TypeDelay      time.Duration
	WaitForElement time.Duration

	// WaitIncrement is the slice wait_seconds sleeps in between checks for
	// cancellation.
	WaitIncrement time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Click:          5 * time.Second,
		Fill:           5 * time.Second,
		Navigate:       30 * time.Second,
		TypeDelay:      50 * time.Millisecond,
		WaitForElement: 30 * time.Second,
		WaitIncrement:  100 * time.Millisecond,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	d := DefaultTimeouts()
	if t.Click <= 0 {
		t.Click = d.Click
	}
	if t.Fill <= 0 {
		t.Fill = d.Fill
	}
	if t.Navigate <= 0 {
		t.Navigate = d.Navigate
	}
	if t.TypeDelay <= 0 {
		t.TypeDelay = d.TypeDelay
	}
	if t.WaitForElement <= 0 {
		t.WaitForElement = d.WaitForElement
	}
	if t.WaitIncrement <= 0 {
		t.WaitIncrement = d.WaitIncrement
	}
	return t
}

// actionTimeout prefers the action's own timeout_ms over def.
func actionTimeout(ms int, def time.Duration) time.Duration {
	if ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}
