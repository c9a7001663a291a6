package selector

import (
	"regexp"
	"unicode/utf8"
)

const (
	minSemanticLength = 2
	maxSemanticLength = 30
)

// semanticPatterns are whole-string shapes of identifiers a person would type.
var semanticPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-z]+$`),                    // lowercase word
	regexp.MustCompile(`^[a-z]+(-[a-z]+)+$`),          // kebab-case
	regexp.MustCompile(`^[a-z]+([A-Z][a-z]*)+$`),      // camelCase
	regexp.MustCompile(`^[a-z]+(_[a-z]+)+$`),          // snake_case
	regexp.MustCompile(`^[A-Z][a-z]+([A-Z][a-z]*)*$`), // PascalCase
}

// IsSemantic reports whether an attribute value looks human-authored rather
// than generated by a framework or build tool. It is a heuristic: values such
// as "a1b2c3d4", "ember482" or a UUID are rejected, but so is "Sign in"
// because it contains a space.
func IsSemantic(value string) bool {
	n := utf8.RuneCountInString(value)
	if n < minSemanticLength || n > maxSemanticLength {
		return false
	}
	for _, p := range semanticPatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// IsBlacklisted reports whether the tag/attribute/value triple is in bl. An
// entry whose element is "*" matches any tag; the analyzer records those for
// steps such as //*[@id="x"].
func IsBlacklisted(tag, attribute, value string, bl *Blacklist) bool {
	return bl.Contains(BlacklistEntry{Element: tag, Attribute: attribute, Value: value}) ||
		bl.Contains(BlacklistEntry{Element: "*", Attribute: attribute, Value: value})
}

// CleanAttributes returns the attributes of el that are neither blacklisted
// nor classified as generated.
func CleanAttributes(el ElementDescriptor, bl *Blacklist) map[string]string {
	clean := make(map[string]string, len(el.Attributes))
	for name, value := range el.Attributes {
		if IsBlacklisted(el.TagName, name, value, bl) {
			continue
		}
		if !IsSemantic(value) {
			continue
		}
		clean[name] = value
	}
	return clean
}
