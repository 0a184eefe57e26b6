package resolve

import (
	"context"
	"fmt"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/fanout"
	"github.com/zulandar/stagedocs/internal/ident"
)

// ChecklistIndex maps owners to their checklist ids. An owner missing from
// ByOwner has no checklists.
type ChecklistIndex struct {
	ByOwner map[docstore.Level]map[ident.Ref][]ident.Ref
	All     *ident.RefSet
}

func newChecklistIndex() *ChecklistIndex {
	ix := &ChecklistIndex{
		ByOwner: make(map[docstore.Level]map[ident.Ref][]ident.Ref, len(docstore.Levels)),
		All:     ident.NewRefSet(),
	}
	for _, l := range docstore.Levels {
		ix.ByOwner[l] = make(map[ident.Ref][]ident.Ref)
	}
	return ix
}

// For returns the checklist ids owned by owner at level.
func (ix *ChecklistIndex) For(level docstore.Level, owner ident.Ref) []ident.Ref {
	if ix == nil {
		return nil
	}
	return ix.ByOwner[level][owner]
}

// Checklists resolves owner ids to checklist ids, one store lookup per
// non-empty level, all four concurrently.
type Checklists struct {
	store docstore.Store
	limit int
}

// NewChecklists returns a checklist resolver. limit bounds concurrent
// lookups (<= 0 means all four at once).
func NewChecklists(store docstore.Store, limit int) *Checklists {
	return &Checklists{store: store, limit: limit}
}

// Resolve looks up checklists for every owner in owners.
func (c *Checklists) Resolve(ctx context.Context, owners OwnerSets) (*ChecklistIndex, error) {
	results := make([][]docstore.ChecklistRef, len(docstore.Levels))
	var branches []fanout.Branch
	for i, level := range docstore.Levels {
		ids := owners.Get(level).Slice()
		if len(ids) == 0 {
			continue
		}
		branches = append(branches, fanout.Branch{
			Name: level.String(),
			Fn: func(ctx context.Context) error {
				refs, err := c.store.ChecklistsByOwners(ctx, level, ids)
				results[i] = refs
				return err
			},
		})
	}
	if err := fanout.Run(ctx, c.limit, branches...); err != nil {
		return nil, fmt.Errorf("resolve: checklists: %w", err)
	}

	ix := newChecklistIndex()
	for i, level := range docstore.Levels {
		byOwner := ix.ByOwner[level]
		for _, ref := range results[i] {
			if ref.ID.IsZero() || ref.OwnerID.IsZero() {
				continue
			}
			byOwner[ref.OwnerID] = append(byOwner[ref.OwnerID], ref.ID)
			ix.All.Add(ref.ID)
		}
	}
	return ix, nil
}
