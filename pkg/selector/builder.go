package selector

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Rule identifies the priority tier that produced a candidate. Lower values
// win.
type Rule int

const (
	RuleID Rule = iota + 1
	RuleName
	RuleTestAttribute
	RuleText
	RuleType
	RuleTag
)

func (r Rule) String() string {
	switch r {
	case RuleID:
		return "id"
	case RuleName:
		return "name"
	case RuleTestAttribute:
		return "test-attribute"
	case RuleText:
		return "text"
	case RuleType:
		return "type"
	case RuleTag:
		return "tag"
	default:
		return fmt.Sprintf("rule(%d)", int(r))
	}
}

// Candidate is one generated locator and the rule that produced it.
type Candidate struct {
	Path      Path
	Rule      Rule
	Qualified bool
}

// Selector renders the candidate as an XPath string.
func (c Candidate) Selector() string {
	return c.Path.String()
}

// MatchCounter counts the elements a selector matches on a live page.
type MatchCounter interface {
	Count(ctx context.Context, selector string) (int, error)
}

var testAttributes = []string{"data-testid", "data-cy", "data-test", "data-automation", "data-qa"}

var textTags = map[string]bool{
	"button": true,
	"a":      true,
	"span":   true,
	"label":  true,
}

var landmarkTags = map[string]bool{
	"form":    true,
	"nav":     true,
	"main":    true,
	"section": true,
	"article": true,
	"header":  true,
	"footer":  true,
}

const maxTextLength = 50

// Candidates returns every viable base candidate for target, best first. The
// bare tag candidate is always present and always last.
func Candidates(target ElementDescriptor, bl *Blacklist) []Candidate {
	tag := strings.ToLower(target.TagName)
	el := target
	el.TagName = tag
	clean := CleanAttributes(el, bl)

	var out []Candidate
	add := func(rule Rule, step Step) {
		out = append(out, Candidate{Path: Path{step}, Rule: rule})
	}

	if id, ok := clean["id"]; ok {
		add(RuleID, Step{Tag: "*", Kind: AttrEquals, Attr: "id", Value: id})
	}
	if name, ok := clean["name"]; ok {
		add(RuleName, Step{Tag: tag, Kind: AttrEquals, Attr: "name", Value: name})
	}
	for _, attr := range testAttributes {
		if v, ok := clean[attr]; ok {
			add(RuleTestAttribute, Step{Tag: tag, Kind: AttrEquals, Attr: attr, Value: v})
		}
	}

	text := strings.TrimSpace(target.TextContent)
	if textTags[tag] && text != "" && utf8.RuneCountInString(text) < maxTextLength &&
		IsSemantic(text) && !IsBlacklisted(tag, textAttribute, text, bl) {
		add(RuleText, Step{Tag: tag, Kind: TextEquals, Value: text})
	}

	// type values come from a small fixed vocabulary, so they skip the
	// randomness check but still honour the blacklist.
	if typ, ok := target.Attributes["type"]; ok && typ != "" && !IsBlacklisted(tag, "type", typ, bl) {
		add(RuleType, Step{Tag: tag, Kind: AttrEquals, Attr: "type", Value: typ})
	}

	add(RuleTag, Step{Tag: tag})
	return out
}

// Build picks the best candidate for target and, unless it is an id
// selector, prefixes it with the nearest ancestor that yields a clean step.
func Build(target ElementDescriptor, ancestors AncestorChain, bl *Blacklist) Candidate {
	return qualify(Candidates(target, bl)[0], ancestors, bl)
}

// BuildVerified walks the candidates in priority order and returns the first
// whose qualified selector matches exactly one element on the page. When none
// is unique it falls back to Build.
func BuildVerified(ctx context.Context, counter MatchCounter, target ElementDescriptor, ancestors AncestorChain, bl *Blacklist) (Candidate, error) {
	for _, c := range Candidates(target, bl) {
		q := qualify(c, ancestors, bl)
		n, err := counter.Count(ctx, q.Selector())
		if err != nil {
			return Candidate{}, fmt.Errorf("counting matches for %q: %w", q.Selector(), err)
		}
		if n == 1 {
			return q, nil
		}
	}
	return Build(target, ancestors, bl), nil
}

func qualify(c Candidate, ancestors AncestorChain, bl *Blacklist) Candidate {
	if c.Rule == RuleID {
		return c
	}
	for _, a := range ancestors {
		step, ok := ancestorStep(a, bl)
		if !ok {
			continue
		}
		path := make(Path, 0, len(c.Path)+1)
		path = append(path, step)
		path = append(path, c.Path...)
		return Candidate{Path: path, Rule: c.Rule, Qualified: true}
	}
	return c
}

func ancestorStep(a ElementDescriptor, bl *Blacklist) (Step, bool) {
	tag := strings.ToLower(a.TagName)
	if landmarkTags[tag] {
		return Step{Tag: tag}, true
	}

	el := a
	el.TagName = tag
	if id, ok := CleanAttributes(el, bl)["id"]; ok {
		return Step{Tag: "*", Kind: AttrEquals, Attr: "id", Value: id}, true
	}

	for _, token := range strings.Fields(a.Attributes["class"]) {
		if IsSemantic(token) && !IsBlacklisted(tag, "class", token, bl) {
			return Step{Tag: tag, Kind: AttrContains, Attr: "class", Value: token}, true
		}
	}
	return Step{}, false
}
