package selector

import (
	"fmt"
	"regexp"
	"strings"
)

// PredicateKind is the single predicate shape a Step may carry:
// //tag[@attr="v"], //tag[contains(@attr,"v")] or //tag[text()="v"].
type PredicateKind int

const (
	NoPredicate PredicateKind = iota
	AttrEquals
	AttrContains
	TextEquals
)

// textAttribute is the pseudo attribute name used for text() predicates in
// blacklist entries.
const textAttribute = "text"

// Step is one descendant-axis location step of the small XPath grammar the
// builder emits and the analyzer decomposes.
type Step struct {
	Tag   string
	Kind  PredicateKind
	Attr  string
	Value string
}

// Path is a sequence of descendant steps, rendered as "//a//b[...]".
type Path []Step

func (s Step) tag() string {
	if s.Tag == "" {
		return "*"
	}
	return s.Tag
}

func (s Step) String() string {
	switch s.Kind {
	case AttrEquals:
		return fmt.Sprintf("//%s[@%s=%s]", s.tag(), s.Attr, literal(s.Value))
	case AttrContains:
		return fmt.Sprintf("//%s[contains(@%s,%s)]", s.tag(), s.Attr, literal(s.Value))
	case TextEquals:
		return fmt.Sprintf("//%s[text()=%s]", s.tag(), literal(s.Value))
	default:
		return "//" + s.tag()
	}
}

func (p Path) String() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteString(s.String())
	}
	return b.String()
}

// Entry returns the attribute claim the step makes, if any.
func (s Step) Entry() (BlacklistEntry, bool) {
	switch s.Kind {
	case AttrEquals, AttrContains:
		return BlacklistEntry{Element: s.tag(), Attribute: s.Attr, Value: s.Value}, true
	case TextEquals:
		return BlacklistEntry{Element: s.tag(), Attribute: textAttribute, Value: s.Value}, true
	default:
		return BlacklistEntry{}, false
	}
}

// Probe is the standalone selector used to test the step's claim against a
// live page. Class comparisons are loosened to contains() because class
// lists are routinely reordered or extended.
func (s Step) Probe() string {
	if s.Kind == AttrEquals && s.Attr == "class" {
		return Step{Tag: s.Tag, Kind: AttrContains, Attr: s.Attr, Value: s.Value}.String()
	}
	return s.String()
}

// literal quotes v as an XPath string literal.
func literal(v string) string {
	if !strings.Contains(v, `"`) {
		return `"` + v + `"`
	}
	if !strings.Contains(v, "'") {
		return "'" + v + "'"
	}
	parts := strings.Split(v, `"`)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = `"` + p + `"`
	}
	return "concat(" + strings.Join(quoted, `, '"', `) + ")"
}

const quotedLiteral = `(?:"([^"]*)"|'([^']*)')`

var (
	tagPattern      = regexp.MustCompile(`^(\*|[A-Za-z][A-Za-z0-9_.-]*)$`)
	equalsPattern   = regexp.MustCompile(`^@([A-Za-z_][\w:.-]*)\s*=\s*` + quotedLiteral + `$`)
	containsPattern = regexp.MustCompile(`^contains\(\s*@([A-Za-z_][\w:.-]*)\s*,\s*` + quotedLiteral + `\s*\)$`)
	textPattern     = regexp.MustCompile(`^text\(\)\s*=\s*` + quotedLiteral + `$`)
)

// ParsePath parses a selector produced by this package. Every step must be a
// descendant step in the grammar described by PredicateKind.
func ParsePath(selector string) (Path, error) {
	selector = strings.TrimSpace(selector)
	if !strings.HasPrefix(selector, "//") {
		return nil, fmt.Errorf("selector %q does not start with //", selector)
	}

	var path Path
	for _, seg := range splitSteps(selector) {
		step, err := parseStep(seg)
		if err != nil {
			return nil, fmt.Errorf("parsing selector %q: %w", selector, err)
		}
		path = append(path, step)
	}
	return path, nil
}

// Decompose extracts the steps of selector that carry a testable predicate,
// skipping anything outside the grammar instead of failing.
func Decompose(selector string) []Step {
	var steps []Step
	for _, seg := range splitSteps(strings.TrimSpace(selector)) {
		step, err := parseStep(seg)
		if err != nil || step.Kind == NoPredicate {
			continue
		}
		steps = append(steps, step)
	}
	return steps
}

// splitSteps cuts selector at every "//" that is outside brackets,
// parentheses and string literals. The returned segments exclude the slashes.
func splitSteps(selector string) []string {
	var (
		segments []string
		depth    int
		quote    byte
		start    = -1
	)
	for i := 0; i < len(selector); i++ {
		c := selector[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[' || c == '(':
			depth++
		case c == ']' || c == ')':
			depth--
		case depth == 0 && c == '/' && i+1 < len(selector) && selector[i+1] == '/':
			if start >= 0 {
				segments = append(segments, selector[start:i])
			} else if i > 0 {
				segments = append(segments, selector[:i])
			}
			i++
			start = i + 1
		}
	}
	switch {
	case start >= 0:
		segments = append(segments, selector[start:])
	case selector != "":
		segments = append(segments, selector)
	}
	return segments
}

func parseStep(seg string) (Step, error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		if !tagPattern.MatchString(seg) {
			return Step{}, fmt.Errorf("unsupported step %q", seg)
		}
		return Step{Tag: seg}, nil
	}

	tag := seg[:open]
	if !tagPattern.MatchString(tag) || !strings.HasSuffix(seg, "]") {
		return Step{}, fmt.Errorf("unsupported step %q", seg)
	}
	pred := strings.TrimSpace(seg[open+1 : len(seg)-1])

	if m := equalsPattern.FindStringSubmatch(pred); m != nil {
		return Step{Tag: tag, Kind: AttrEquals, Attr: m[1], Value: m[2] + m[3]}, nil
	}
	if m := containsPattern.FindStringSubmatch(pred); m != nil {
		return Step{Tag: tag, Kind: AttrContains, Attr: m[1], Value: m[2] + m[3]}, nil
	}
	if m := textPattern.FindStringSubmatch(pred); m != nil {
		return Step{Tag: tag, Kind: TextEquals, Value: m[1] + m[2]}, nil
	}
	return Step{}, fmt.Errorf("unsupported predicate %q in step %q", pred, seg)
}
