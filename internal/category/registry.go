// Package category resolves weak category references for display and
// grouping. Lookups never fail: a dangling id resolves to the Unknown
// name and the default color, and downstream logic keeps grouping by the
// raw id. That leniency is deliberate; deleting a category must not
// break historical transactions that still point at it.
package category

import (
	"sort"
	"strings"

	"tally/internal/core"
)

const (
	// UnknownName is the display name for a dangling category reference.
	UnknownName = "Unknown"

	// DefaultColor is the chart color for a dangling category reference.
	DefaultColor = "#64748b"
)

// Registry is a read view over the category collection.
type Registry struct {
	byID    map[string]core.Category
	byName  map[string]core.Category
	ordered []core.Category
}

// NewRegistry builds a registry from the stored categories. An empty or
// nil slice falls back to the built-in defaults, so a fresh install has
// something to categorize against.
func NewRegistry(categories []core.Category) *Registry {
	if len(categories) == 0 {
		categories = Defaults()
	}
	r := &Registry{
		byID:    make(map[string]core.Category, len(categories)),
		byName:  make(map[string]core.Category, len(categories)),
		ordered: make([]core.Category, len(categories)),
	}
	copy(r.ordered, categories)
	for _, c := range categories {
		r.byID[c.ID] = c
		// First category wins on a duplicate name.
		key := strings.ToLower(c.Name)
		if _, exists := r.byName[key]; !exists {
			r.byName[key] = c
		}
	}
	return r
}

// IDByName resolves a display name back to a category id. Names are
// matched case-insensitively; exported files come back through here.
func (r *Registry) IDByName(name string) (string, bool) {
	c, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", false
	}
	return c.ID, true
}

// Name resolves a category id to its display name.
func (r *Registry) Name(id string) string {
	if c, ok := r.byID[id]; ok {
		return c.Name
	}
	return UnknownName
}

// Color resolves a category id to its chart color.
func (r *Registry) Color(id string) string {
	if c, ok := r.byID[id]; ok {
		return c.Color
	}
	return DefaultColor
}

// All returns the categories in their stored order.
func (r *Registry) All() []core.Category {
	out := make([]core.Category, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// ByType returns the categories of one transaction type, sorted by name.
func (r *Registry) ByType(t core.TransactionType) []core.Category {
	var out []core.Category
	for _, c := range r.ordered {
		if c.Type == t {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
