package resolve

import (
	"context"
	"fmt"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/fanout"
	"github.com/zulandar/stagedocs/internal/ident"
)

// Files resolves checklist ids to allowed file records across the four
// per-level file sources.
type Files struct {
	store  docstore.Store
	filter docstore.ExtFilter
	limit  int
}

// NewFiles returns a file resolver. An empty exts list uses
// docstore.DefaultAllowedExts.
func NewFiles(store docstore.Store, exts []string, limit int) *Files {
	return &Files{store: store, filter: docstore.NewExtFilter(exts), limit: limit}
}

type filePair struct {
	checklist ident.Ref
	file      ident.Ref
}

// Resolve returns every allowed file attached to one of checklistIDs.
// Duplicate (checklist, file) pairs are collapsed.
func (f *Files) Resolve(ctx context.Context, checklistIDs []ident.Ref) ([]docstore.FileRecord, error) {
	ids := ident.NewRefSet(checklistIDs...).Slice()
	if len(ids) == 0 {
		return nil, nil
	}

	results := make([][]docstore.FileRecord, len(docstore.Levels))
	branches := make([]fanout.Branch, len(docstore.Levels))
	for i, level := range docstore.Levels {
		branches[i] = fanout.Branch{
			Name: level.String() + " files",
			Fn: func(ctx context.Context) error {
				recs, err := f.store.FilesByChecklists(ctx, level, ids)
				results[i] = recs
				return err
			},
		}
	}
	if err := fanout.Run(ctx, f.limit, branches...); err != nil {
		return nil, fmt.Errorf("resolve: files: %w", err)
	}

	seen := make(map[filePair]struct{})
	var out []docstore.FileRecord
	for _, batch := range results {
		for _, rec := range batch {
			if rec.FileName == "" || !f.filter.Allows(rec.FileName) {
				continue
			}
			if rec.FileID.IsZero() {
				rec.FileID = rec.DocID
			}
			if rec.FileID.IsZero() || rec.ChecklistID.IsZero() {
				continue
			}
			key := filePair{checklist: rec.ChecklistID, file: rec.FileID}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, rec)
		}
	}
	return out, nil
}
