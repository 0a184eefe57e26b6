package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/fanout"
	"github.com/zulandar/stagedocs/internal/ident"
)

// Assignments resolves the owners a user holds a RACI assignment on.
type Assignments struct {
	store docstore.Store
	limit int
}

// NewAssignments returns a RACI resolver over store.
func NewAssignments(store docstore.Store, limit int) *Assignments {
	return &Assignments{store: store, limit: limit}
}

// GroupLevel maps a free-form RACI group label to an owner level. "sub" is
// checked before "activity" since sub-activity labels contain both.
func GroupLevel(group string) (docstore.Level, bool) {
	g := strings.ToLower(group)
	switch {
	case strings.Contains(g, "process"):
		return docstore.LevelProcess, true
	case strings.Contains(g, "task"):
		return docstore.LevelTask, true
	case strings.Contains(g, "sub"):
		return docstore.LevelSubActivity, true
	case strings.Contains(g, "activity"):
		return docstore.LevelActivity, true
	}
	return 0, false
}

// OwnerSets returns the owner ids at each level that user is assigned to.
func (a *Assignments) OwnerSets(ctx context.Context, user ident.UserID) (OwnerSets, error) {
	rows, err := a.store.AssignmentsForUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("resolve: assignments for user %s: %w", user, err)
	}

	byLevel := NewOwnerSets()
	for _, r := range rows {
		if level, ok := GroupLevel(r.Group); ok {
			byLevel.Add(level, r.RaciID)
		}
	}

	results := make([][]ident.Ref, len(docstore.Levels))
	var branches []fanout.Branch
	for i, level := range docstore.Levels {
		raci := byLevel.Get(level).Slice()
		if len(raci) == 0 {
			continue
		}
		branches = append(branches, fanout.Branch{
			Name: level.String() + " raci",
			Fn: func(ctx context.Context) error {
				owners, err := a.store.OwnersForRaci(ctx, level, raci)
				results[i] = owners
				return err
			},
		})
	}
	if err := fanout.Run(ctx, a.limit, branches...); err != nil {
		return nil, fmt.Errorf("resolve: raci owners: %w", err)
	}

	out := NewOwnerSets()
	for i, level := range docstore.Levels {
		for _, r := range results[i] {
			out.Add(level, r)
		}
	}
	return out, nil
}
