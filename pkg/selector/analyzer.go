package selector

import (
	"context"
	"fmt"
)

// Analyze decomposes a selector that stopped matching into its attribute
// claims and tests each one on its own against the page. Every claim that no
// longer matches anything is returned in the blacklist. An empty result means
// the failure could not be pinned on a single attribute.
//
// If counting fails part way, the entries found so far are returned together
// with the error.
func Analyze(ctx context.Context, counter MatchCounter, failedSelector string) (*Blacklist, error) {
	bl := NewBlacklist()
	for _, step := range Decompose(failedSelector) {
		if err := ctx.Err(); err != nil {
			return bl, err
		}

		entry, ok := step.Entry()
		if !ok {
			continue
		}

		probe := step.Probe()
		n, err := counter.Count(ctx, probe)
		if err != nil {
			return bl, fmt.Errorf("probing %q: %w", probe, err)
		}
		if n == 0 {
			bl.Add(entry)
		}
	}
	return bl, nil
}
