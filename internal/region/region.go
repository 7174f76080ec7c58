package region

import (
	"context"
	"fmt"
)

// Preferred is always processed first. Organization-level Macie settings
// are usually managed from it.
const Preferred = "us-east-1"

// Catalog lists the regions enabled for the calling account.
type Catalog interface {
	ListRegions(ctx context.Context) ([]string, error)
}

// Resolver decides which regions a run operates in.
type Resolver struct {
	catalog   Catalog
	overrides []string
}

// NewResolver creates a resolver backed by catalog.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// SetRegions pins the resolver to a fixed list, typically from the config
// file. Duplicates are dropped and order is kept.
func (r *Resolver) SetRegions(regions []string) {
	r.overrides = dedupe(regions)
}

// Resolve returns the ordered regions to process. A non-empty explicit
// region wins and is returned as-is without validation. Otherwise pinned
// regions are used, and failing that the catalog is queried and Preferred
// is moved to the front.
func (r *Resolver) Resolve(ctx context.Context, explicit string) ([]string, error) {
	if explicit != "" {
		return []string{explicit}, nil
	}
	if len(r.overrides) > 0 {
		return append([]string(nil), r.overrides...), nil
	}
	if r.catalog == nil {
		return nil, fmt.Errorf("no region catalog configured")
	}

	regions, err := r.catalog.ListRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	return PreferredFirst(regions), nil
}

// PreferredFirst puts Preferred at the front, followed by the remaining
// regions in their original order. Preferred appears exactly once, even
// when it is missing from the input.
func PreferredFirst(regions []string) []string {
	out := make([]string, 0, len(regions)+1)
	out = append(out, Preferred)
	for _, r := range regions {
		if r == Preferred {
			continue
		}
		out = append(out, r)
	}
	return out
}

func dedupe(regions []string) []string {
	seen := make(map[string]bool, len(regions))
	var out []string
	for _, r := range regions {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
