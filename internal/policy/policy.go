// Package policy decides which containers are eligible targets for a
// bulk action. Selection unions the request's ids, names and include-all
// flag; protected names are then dropped so a batch operation cannot
// take down the dashboard's own infrastructure.
package policy

import (
	"strings"

	"quayside/models"
)

// Filter narrows a live container inventory to eligible bulk-action
// targets. The protected set is fixed at construction and never mutated,
// so a Filter is safe for concurrent use.
type Filter struct {
	protected map[string]struct{}
}

// NewFilter builds a Filter from a protected-name list. Names are
// matched case-insensitively.
func NewFilter(protected []string) *Filter {
	set := make(map[string]struct{}, len(protected))
	for _, name := range protected {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return &Filter{protected: set}
}

// IsProtected reports whether name is in the protected set.
func (f *Filter) IsProtected(name string) bool {
	_, ok := f.protected[strings.ToLower(name)]
	return ok
}

// Targets returns the eligible targets for req, preserving the
// inventory's relative order. A container is selected when IncludeAll
// is set, its id is in IDs, or its lower-cased name is in Names; a
// selected container matching the protected set is dropped. Each
// container appears at most once regardless of how many criteria it
// matched. Pure function of its inputs.
func (f *Filter) Targets(inventory []models.ContainerSummary, req models.BulkActionRequest) []models.ContainerSummary {
	ids := make(map[string]struct{}, len(req.IDs))
	for _, id := range req.IDs {
		ids[id] = struct{}{}
	}

	names := make(map[string]struct{}, len(req.Names))
	for _, name := range req.Names {
		names[strings.ToLower(name)] = struct{}{}
	}

	targets := make([]models.ContainerSummary, 0, len(inventory))
	for _, c := range inventory {
		if !req.IncludeAll {
			_, byID := ids[c.ID]
			_, byName := names[strings.ToLower(c.Name)]
			if !byID && !byName {
				continue
			}
		}
		if f.IsProtected(c.Name) {
			continue
		}
		targets = append(targets, c)
	}
	return targets
}
