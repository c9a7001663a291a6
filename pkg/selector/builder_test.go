package selector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arnavsurve/rowpilot/pkg/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countMap map[string]int

func (c countMap) Count(_ context.Context, sel string) (int, error) {
	return c[sel], nil
}

type failingCounter struct{ err error }

func (f failingCounter) Count(context.Context, string) (int, error) {
	return 0, f.err
}

func el(tag string, attrs map[string]string, text string) selector.ElementDescriptor {
	return selector.ElementDescriptor{TagName: tag, Attributes: attrs, TextContent: text}
}

func TestBuild_IDBeatsName(t *testing.T) {
	target := el("input", map[string]string{"id": "email-input", "name": "email"}, "")
	ancestors := selector.AncestorChain{el("form", nil, "")}

	got := selector.Build(target, ancestors, nil)

	assert.Equal(t, selector.RuleID, got.Rule)
	assert.Equal(t, `//*[@id="email-input"]`, got.Selector())
	assert.False(t, got.Qualified, "id selectors are never qualified")
}

func TestBuild_BlacklistedIDFallsThrough(t *testing.T) {
	target := el("input", map[string]string{"id": "email-input", "name": "email"}, "")
	ancestors := selector.AncestorChain{el("form", nil, "")}
	bl := selector.NewBlacklist(selector.BlacklistEntry{Element: "input", Attribute: "id", Value: "email-input"})

	got := selector.Build(target, ancestors, bl)

	assert.Equal(t, selector.RuleName, got.Rule)
	assert.Equal(t, `//form//input[@name="email"]`, got.Selector())
	assert.NotContains(t, got.Selector(), "email-input")
}

func TestBuild_Rules(t *testing.T) {
	tests := []struct {
		name      string
		target    selector.ElementDescriptor
		ancestors selector.AncestorChain
		bl        *selector.Blacklist
		wantRule  selector.Rule
		want      string
	}{
		{
			name:     "random id is ignored",
			target:   el("input", map[string]string{"id": "ember482", "name": "email"}, ""),
			wantRule: selector.RuleName,
			want:     `//input[@name="email"]`,
		},
		{
			name:     "test attributes in priority order",
			target:   el("button", map[string]string{"data-cy": "save", "data-testid": "save-button"}, ""),
			wantRule: selector.RuleTestAttribute,
			want:     `//button[@data-testid="save-button"]`,
		},
		{
			name:     "text on button",
			target:   el("button", map[string]string{"class": "x1y2z3"}, "  Submit  "),
			wantRule: selector.RuleText,
			want:     `//button[text()="Submit"]`,
		},
		{
			name:     "text ignored on div",
			target:   el("div", nil, "Submit"),
			wantRule: selector.RuleTag,
			want:     `//div`,
		},
		{
			name:     "non semantic text falls through to type",
			target:   el("button", map[string]string{"type": "submit"}, "Sign in"),
			wantRule: selector.RuleType,
			want:     `//button[@type="submit"]`,
		},
		{
			name:     "blacklisted text falls through to type",
			target:   el("button", map[string]string{"type": "submit"}, "Submit"),
			bl:       selector.NewBlacklist(selector.BlacklistEntry{Element: "button", Attribute: "text", Value: "Submit"}),
			wantRule: selector.RuleType,
			want:     `//button[@type="submit"]`,
		},
		{
			name:     "bare tag fallback",
			target:   el("DIV", map[string]string{"class": "css-1abc"}, ""),
			wantRule: selector.RuleTag,
			want:     `//div`,
		},
		{
			name:      "ancestor class token",
			target:    el("input", map[string]string{"name": "email"}, ""),
			ancestors: selector.AncestorChain{el("div", map[string]string{"class": "css-1abc wrapper-card"}, "")},
			wantRule:  selector.RuleName,
			want:      `//div[contains(@class,"wrapper-card")]//input[@name="email"]`,
		},
		{
			name:   "ancestor without clean attributes is skipped",
			target: el("a", nil, "Home"),
			ancestors: selector.AncestorChain{
				el("span", map[string]string{"class": "a9f3"}, ""),
				el("nav", nil, ""),
			},
			wantRule: selector.RuleText,
			want:     `//nav//a[text()="Home"]`,
		},
		{
			name:      "ancestor id",
			target:    el("button", map[string]string{"type": "button"}, ""),
			ancestors: selector.AncestorChain{el("div", map[string]string{"id": "sidebar"}, "")},
			wantRule:  selector.RuleType,
			want:      `//*[@id="sidebar"]//button[@type="button"]`,
		},
		{
			name:   "blacklisted ancestor class token",
			target: el("input", map[string]string{"name": "email"}, ""),
			ancestors: selector.AncestorChain{
				el("div", map[string]string{"class": "wrapper-card"}, ""),
				el("main", nil, ""),
			},
			bl:       selector.NewBlacklist(selector.BlacklistEntry{Element: "div", Attribute: "class", Value: "wrapper-card"}),
			wantRule: selector.RuleName,
			want:     `//main//input[@name="email"]`,
		},
		{
			name:      "no qualifying ancestor",
			target:    el("input", map[string]string{"name": "email"}, ""),
			ancestors: selector.AncestorChain{el("div", map[string]string{"class": "x1"}, "")},
			wantRule:  selector.RuleName,
			want:      `//input[@name="email"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selector.Build(tt.target, tt.ancestors, tt.bl)
			assert.Equal(t, tt.wantRule, got.Rule)
			assert.Equal(t, tt.want, got.Selector())
		})
	}
}

func TestCandidates_Order(t *testing.T) {
	target := el("input", map[string]string{
		"id":          "email-input",
		"name":        "email",
		"data-testid": "email-field",
		"type":        "email",
	}, "")

	var rules []selector.Rule
	for _, c := range selector.Candidates(target, nil) {
		rules = append(rules, c.Rule)
	}

	assert.Equal(t, []selector.Rule{
		selector.RuleID,
		selector.RuleName,
		selector.RuleTestAttribute,
		selector.RuleType,
		selector.RuleTag,
	}, rules)
}

func TestBuildVerified(t *testing.T) {
	target := el("input", map[string]string{"name": "email", "data-testid": "email-field"}, "")
	ancestors := selector.AncestorChain{el("form", nil, "")}

	t.Run("first unique candidate wins", func(t *testing.T) {
		counts := countMap{
			`//form//input[@name="email"]`:              2,
			`//form//input[@data-testid="email-field"]`: 1,
		}
		got, err := selector.BuildVerified(context.Background(), counts, target, ancestors, nil)
		require.NoError(t, err)
		assert.Equal(t, selector.RuleTestAttribute, got.Rule)
		assert.Equal(t, `//form//input[@data-testid="email-field"]`, got.Selector())
	})

	t.Run("falls back to unverified build", func(t *testing.T) {
		got, err := selector.BuildVerified(context.Background(), countMap{}, target, ancestors, nil)
		require.NoError(t, err)
		assert.Equal(t, `//form//input[@name="email"]`, got.Selector())
	})

	t.Run("counter errors propagate", func(t *testing.T) {
		boom := errors.New("page gone")
		_, err := selector.BuildVerified(context.Background(), failingCounter{err: boom}, target, ancestors, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})
}

func TestRuleString(t *testing.T) {
	assert.Equal(t, "id", selector.RuleID.String())
	assert.Equal(t, "test-attribute", selector.RuleTestAttribute.String())
	assert.Equal(t, "rule(42)", selector.Rule(42).String())
}
