package types

import (
	"fmt"
	"strconv"
)

// ActionKind names one of the fixed set of page operations a workflow can run.
type ActionKind string

const (
	Click          ActionKind = "click"
	FillField      ActionKind = "fill_field"
	Navigate       ActionKind = "navigate"
	TypeText       ActionKind = "type_text"
	PressKey       ActionKind = "press_key"
	WaitForElement ActionKind = "wait_for_element"
	WaitSeconds    ActionKind = "wait_seconds"
)

// ActionKinds lists every kind in declaration order.
var ActionKinds = []ActionKind{Click, FillField, Navigate, TypeText, PressKey, WaitForElement, WaitSeconds}

// DefaultBrowserAlias is used by actions that do not name a browser.
const DefaultBrowserAlias = "main"

// Action is one step of a workflow. Which fields are meaningful depends on
// Type; see ActionSchemas.
type Action struct {
	Type         ActionKind        `yaml:"type" json:"type"`
	Selector     string            `yaml:"selector,omitempty" json:"selector,omitempty"`
	Value        string            `yaml:"value,omitempty" json:"value,omitempty"`
	URL          string            `yaml:"url,omitempty" json:"url,omitempty"`
	Key          string            `yaml:"key,omitempty" json:"key,omitempty"`
	TimeoutMS    int               `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitempty"`
	DurationS    float64           `yaml:"duration_s,omitempty" json:"duration_s,omitempty"`
	Seconds      float64           `yaml:"seconds,omitempty" json:"seconds,omitempty"`
	Description  string            `yaml:"description,omitempty" json:"description,omitempty"`
	BrowserAlias string            `yaml:"browser_alias,omitempty" json:"browser_alias,omitempty"`
	Defaults     map[string]string `yaml:"defaults,omitempty" json:"defaults,omitempty"`
}

// Alias returns the browser alias the action targets.
func (a Action) Alias() string {
	if a.BrowserAlias == "" {
		return DefaultBrowserAlias
	}
	return a.BrowserAlias
}

// Wait returns the wait_seconds duration in seconds, preferring duration_s.
func (a Action) Wait() float64 {
	if a.DurationS != 0 {
		return a.DurationS
	}
	return a.Seconds
}

// Label is a short human description used in logs and error messages.
func (a Action) Label() string {
	if a.Description != "" {
		return fmt.Sprintf("%s (%s)", a.Type, a.Description)
	}
	return string(a.Type)
}

// Field returns the named field rendered as a string, and whether it is set.
func (a Action) Field(name string) (string, bool) {
	switch name {
	case "selector":
		return a.Selector, a.Selector != ""
	case "value":
		return a.Value, a.Value != ""
	case "url":
		return a.URL, a.URL != ""
	case "key":
		return a.Key, a.Key != ""
	case "description":
		return a.Description, a.Description != ""
	case "browser_alias":
		return a.BrowserAlias, a.BrowserAlias != ""
	case "timeout_ms":
		return strconv.Itoa(a.TimeoutMS), a.TimeoutMS != 0
	case "duration_s":
		w := a.Wait()
		return strconv.FormatFloat(w, 'f', -1, 64), w != 0
	default:
		return "", false
	}
}

// TemplateFields are the fields that may carry {{col(...)}} expressions.
var TemplateFields = []string{"selector", "value", "url"}

// ActionSchema declares which fields an ActionKind needs.
type ActionSchema struct {
	Required []string
	Optional []string
}

var commonOptional = []string{"description", "browser_alias"}

// ActionSchemas is the static field table keyed by ActionKind. "duration_s"
// is also satisfied by the legacy "seconds" field. fill_field leaves "value"
// optional since filling with "" clears the input.
var ActionSchemas = map[ActionKind]ActionSchema{
	Click:          {Required: []string{"selector"}, Optional: append([]string{"timeout_ms"}, commonOptional...)},
	FillField:      {Required: []string{"selector"}, Optional: append([]string{"value", "timeout_ms"}, commonOptional...)},
	Navigate:       {Required: []string{"url"}, Optional: append([]string{"timeout_ms"}, commonOptional...)},
	TypeText:       {Required: []string{"selector", "value"}, Optional: commonOptional},
	PressKey:       {Required: []string{"key"}, Optional: commonOptional},
	WaitForElement: {Required: []string{"selector"}, Optional: append([]string{"timeout_ms"}, commonOptional...)},
	WaitSeconds:    {Required: []string{"duration_s"}, Optional: commonOptional},
}

// MissingFields returns the required fields of a's schema that are unset. An
// unknown kind has no schema and reports nothing; callers check the kind
// separately.
func (a Action) MissingFields() []string {
	var missing []string
	for _, f := range ActionSchemas[a.Type].Required {
		if _, ok := a.Field(f); !ok {
			missing = append(missing, f)
		}
	}
	return missing
}
