package resolve

import (
	"context"
	"fmt"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/ident"
)

// HierarchyOptions narrows a hierarchy lookup.
type HierarchyOptions struct {
	ProjectID *int64
}

// Hierarchy reads the flattened project paths visible to a user.
type Hierarchy struct {
	store docstore.Store
}

// NewHierarchy returns a hierarchy resolver over store.
func NewHierarchy(store docstore.Store) *Hierarchy {
	return &Hierarchy{store: store}
}

// Rows returns one row per deepest reachable node. A user with no projects
// gets an empty result, not an error.
func (h *Hierarchy) Rows(ctx context.Context, user ident.UserID, opts HierarchyOptions) ([]docstore.HierarchyRow, error) {
	if user <= 0 {
		return nil, docstore.Invalid("userId", "must be a positive integer")
	}
	rows, err := h.store.HierarchyRows(ctx, docstore.HierarchyQuery{User: user, ProjectID: opts.ProjectID})
	if err != nil {
		return nil, fmt.Errorf("resolve: hierarchy for user %s: %w", user, err)
	}
	return rows, nil
}
