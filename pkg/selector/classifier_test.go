package selector_test

import (
	"strings"
	"testing"

	"github.com/arnavsurve/rowpilot/pkg/selector"
	"github.com/stretchr/testify/assert"
)

func TestIsSemantic(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"login-form", true},
		{"firstName", true},
		{"header", true},
		{"user_name", true},
		{"SubmitButton", true},
		{"ok", true},
		{"a1b2c3d4", false},
		{"ember482", false},
		{"", false},
		{"x", false},
		{strings.Repeat("a", 40), false},
		{"webpack-abc123", false},
		{"Sign in", false},
		{"3f2b9c1e-8d4a-4c1b-9f0e-2a7d5b6c8e91", false},
		{"HEADER", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got := selector.IsSemantic(tt.value)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, selector.IsSemantic(tt.value), "classification must be stable across calls")
		})
	}
}

func TestIsBlacklisted(t *testing.T) {
	bl := selector.NewBlacklist(
		selector.BlacklistEntry{Element: "input", Attribute: "id", Value: "email-input"},
		selector.BlacklistEntry{Element: "*", Attribute: "id", Value: "main-panel"},
	)

	assert.True(t, selector.IsBlacklisted("input", "id", "email-input", bl))
	assert.False(t, selector.IsBlacklisted("div", "id", "email-input", bl))
	assert.False(t, selector.IsBlacklisted("input", "name", "email-input", bl))
	assert.True(t, selector.IsBlacklisted("section", "id", "main-panel", bl), "wildcard element matches any tag")
	assert.False(t, selector.IsBlacklisted("input", "id", "email-input", nil))
}

func TestCleanAttributes(t *testing.T) {
	el := selector.ElementDescriptor{
		TagName: "input",
		Attributes: map[string]string{
			"id":    "email-input",
			"name":  "email",
			"class": "css-1x2y3z",
			"type":  "email",
		},
	}
	bl := selector.NewBlacklist(selector.BlacklistEntry{Element: "input", Attribute: "id", Value: "email-input"})

	got := selector.CleanAttributes(el, bl)
	assert.Equal(t, map[string]string{"name": "email", "type": "email"}, got)
}
