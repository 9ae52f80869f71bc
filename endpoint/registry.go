// Package endpoint holds the static topic-family → destination URL
// registry.
package endpoint

import (
	"fmt"
	"net/url"
	"sort"
)

// Registry maps logical topic-family names (e.g. "personCreated") to CRM
// destination URLs. It is built once at startup and read-only afterwards,
// so concurrent reads need no locking.
type Registry struct {
	urls map[string]string
}

// NewRegistry builds a registry from a family → URL map. Families mapped
// to an empty string are treated as unconfigured and skipped; a
// non-empty value that is not a valid URL is an error.
func NewRegistry(urls map[string]string) (*Registry, error) {
	r := &Registry{urls: make(map[string]string, len(urls))}
	for family, raw := range urls {
		if raw == "" {
			continue
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return nil, fmt.Errorf("endpoint: invalid URL for family %q: %w", family, err)
		}
		r.urls[family] = raw
	}
	return r, nil
}

// Resolve returns the destination URL for a topic family. The second
// return value is false when no webhook is configured for the family.
func (r *Registry) Resolve(family string) (string, bool) {
	if r == nil {
		return "", false
	}
	u, ok := r.urls[family]
	return u, ok
}

// Families returns the configured family names in sorted order.
func (r *Registry) Families() []string {
	if r == nil {
		return nil
	}
	families := make([]string, 0, len(r.urls))
	for f := range r.urls {
		families = append(families, f)
	}
	sort.Strings(families)
	return families
}
