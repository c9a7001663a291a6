package security

import (
	"sort"
	"strings"
	"sync"

	"github.com/arnavsurve/rowpilot/pkg/dataset"
)

const mask = "********"

type Redactor struct {
	mu      sync.RWMutex
	Secrets []string
}

// NewRedactor collects every non-empty value of the secret columns across
// all rows of ds. Columns the dataset does not have are ignored.
func NewRedactor(secretColumns []string, ds *dataset.Dataset) *Redactor {
	r := &Redactor{}
	if ds == nil {
		return r
	}
	for _, row := range ds.Rows() {
		for _, col := range secretColumns {
			if val, ok := row.Lookup(col); ok && val != "" {
				r.Add(val)
			}
		}
	}
	return r
}

// Add registers additional secret values. Duplicates and empty strings are
// ignored.
func (r *Redactor) Add(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, s := range r.Secrets {
			if s == v {
				dup = true
				break
			}
		}
		if !dup {
			r.Secrets = append(r.Secrets, v)
		}
	}
}

func (r *Redactor) Redact(s string) string {
	if r == nil {
		return s
	}
	r.mu.RLock()
	if len(r.Secrets) == 0 {
		r.mu.RUnlock()
		return s
	}

	// Longer secrets first so a secret containing another is masked whole.
	secrets := make([]string, len(r.Secrets))
	copy(secrets, r.Secrets)
	r.mu.RUnlock()
	sort.Slice(secrets, func(i, j int) bool {
		return len(secrets[i]) > len(secrets[j])
	})

	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, mask)
	}
	return s
}
