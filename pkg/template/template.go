// Package template resolves {{col(...)}} expressions against one data row.
//
// Two expression forms are understood: col('name') / col("name") looks a
// column up by name, and col(N) by zero-based position in the row's column
// order. Anything else inside {{ }} is a malformed expression. A span ends at
// the first "}}", so column names may contain "}" but not "}}".
package template

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrColumnNotFound      = errors.New("column not found")
	ErrIndexOutOfRange     = errors.New("column index out of range")
	ErrMalformedExpression = errors.New("malformed template expression")
)

// ResolutionError names the expression that could not be resolved.
type ResolutionError struct {
	Expression string
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving {{%s}}: %v", e.Expression, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Row is the view of a data row the resolver needs.
type Row interface {
	Lookup(name string) (string, bool)
	At(index int) (string, bool)
	Len() int
}

var (
	spanRegex = regexp.MustCompile(`(?s)\{\{(.+?)\}\}`)
	colRegex  = regexp.MustCompile(`^col\s*\(\s*(?:'([^']*)'|"([^"]*)"|(-?\d+))\s*\)$`)
)

// IsTemplate reports whether value contains at least one {{...}} span.
func IsTemplate(value string) bool {
	return spanRegex.MatchString(value)
}

type options struct {
	def    string
	hasDef bool
}

type Option func(*options)

// WithDefault substitutes def for any expression that fails to resolve
// instead of returning an error.
func WithDefault(def string) Option {
	return func(o *options) {
		o.def = def
		o.hasDef = true
	}
}

// Resolve replaces every {{expr}} span in value, left to right. The first
// failing expression aborts resolution with a *ResolutionError unless a
// default was supplied.
func Resolve(value string, row Row, opts ...Option) (string, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var firstErr error
	output := spanRegex.ReplaceAllStringFunc(value, func(match string) string {
		if firstErr != nil {
			return match
		}

		expr := spanRegex.FindStringSubmatch(match)[1]
		resolved, err := evaluate(strings.TrimSpace(expr), row)
		if err != nil {
			if o.hasDef {
				return o.def
			}
			firstErr = &ResolutionError{Expression: expr, Err: err}
			return match
		}
		return resolved
	})

	if firstErr != nil {
		return "", firstErr
	}
	return output, nil
}

func evaluate(expr string, row Row) (string, error) {
	m := colRegex.FindStringSubmatch(expr)
	if m == nil {
		return "", ErrMalformedExpression
	}

	if m[3] != "" {
		idx, err := strconv.Atoi(m[3])
		if errors.Is(err, strconv.ErrRange) {
			return "", fmt.Errorf("%w: %s", ErrIndexOutOfRange, m[3])
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedExpression, err)
		}
		n := 0
		if row != nil {
			n = row.Len()
		}
		if idx < 0 || idx >= n {
			return "", fmt.Errorf("%w: %d (row has %d columns)", ErrIndexOutOfRange, idx, n)
		}
		v, _ := row.At(idx)
		return v, nil
	}

	name := m[1] + m[2]
	if row != nil {
		if v, ok := row.Lookup(name); ok {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// Validate reports the first malformed expression in value. Column names and
// indexes are not checked; they depend on the dataset.
func Validate(value string) error {
	for _, span := range spanRegex.FindAllStringSubmatch(value, -1) {
		if !colRegex.MatchString(strings.TrimSpace(span[1])) {
			return &ResolutionError{Expression: span[1], Err: ErrMalformedExpression}
		}
	}
	return nil
}

// ReferencedColumns returns, sorted and de-duplicated, every column named
// literally by a col('name') expression in values. Positional references
// have no name and are not reported.
func ReferencedColumns(values ...string) []string {
	seen := make(map[string]struct{})
	for _, v := range values {
		for _, span := range spanRegex.FindAllStringSubmatch(v, -1) {
			m := colRegex.FindStringSubmatch(strings.TrimSpace(span[1]))
			if m == nil || m[3] != "" {
				continue
			}
			seen[m[1]+m[2]] = struct{}{}
		}
	}

	cols := make([]string, 0, len(seen))
	for c := range seen {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
