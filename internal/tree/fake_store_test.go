package tree

import (
	"context"
	"errors"
	"sync"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/ident"
)

type fakeStore struct {
	mu    sync.Mutex
	calls map[string]int

	rows        []docstore.HierarchyRow
	checklists  map[docstore.Level][]docstore.ChecklistRef
	files       map[docstore.Level][]docstore.FileRecord
	assignments []docstore.Assignment
	raciOwners  map[docstore.Level]map[ident.Ref]ident.Ref
	failOn      map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		calls:      map[string]int{},
		checklists: map[docstore.Level][]docstore.ChecklistRef{},
		files:      map[docstore.Level][]docstore.FileRecord{},
		raciOwners: map[docstore.Level]map[ident.Ref]ident.Ref{},
		failOn:     map[string]error{},
	}
}

func (f *fakeStore) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.failOn[op]
}

func (f *fakeStore) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeStore) HierarchyRows(_ context.Context, q docstore.HierarchyQuery) ([]docstore.HierarchyRow, error) {
	if err := f.record("hierarchy"); err != nil {
		return nil, err
	}
	var out []docstore.HierarchyRow
	for _, r := range f.rows {
		if r.UserID == q.User && (q.ProjectID == nil || r.PmwebProjectID == *q.ProjectID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ChecklistsByOwners(_ context.Context, level docstore.Level, owners []ident.Ref) ([]docstore.ChecklistRef, error) {
	if err := f.record("checklists:" + level.String()); err != nil {
		return nil, err
	}
	want := ident.NewRefSet(owners...)
	var out []docstore.ChecklistRef
	for _, c := range f.checklists[level] {
		if want.Has(c.OwnerID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) FilesByChecklists(_ context.Context, level docstore.Level, checklists []ident.Ref) ([]docstore.FileRecord, error) {
	if err := f.record("files:" + level.String()); err != nil {
		return nil, err
	}
	want := ident.NewRefSet(checklists...)
	var out []docstore.FileRecord
	for _, r := range f.files[level] {
		if want.Has(r.ChecklistID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) AssignmentsForUser(context.Context, ident.UserID) ([]docstore.Assignment, error) {
	if err := f.record("assignments"); err != nil {
		return nil, err
	}
	return f.assignments, nil
}

func (f *fakeStore) OwnersForRaci(_ context.Context, level docstore.Level, raci []ident.Ref) ([]ident.Ref, error) {
	if err := f.record("raci:" + level.String()); err != nil {
		return nil, err
	}
	var out []ident.Ref
	for _, r := range raci {
		if o, ok := f.raciOwners[level][r]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

var errUnused = errors.New("unused in tree tests")

func (f *fakeStore) ContentByIDs(context.Context, []ident.Ref) ([]docstore.ContentRecord, error) {
	return nil, errUnused
}
func (f *fakeStore) ContentByNames(context.Context, []string) ([]docstore.ContentRecord, error) {
	return nil, errUnused
}
func (f *fakeStore) VersionsForFile(context.Context, ident.Ref) ([]docstore.FileVersion, error) {
	return nil, errUnused
}
func (f *fakeStore) FindUser(context.Context, docstore.UserField, string) (*docstore.UserIdentity, error) {
	return nil, errUnused
}
func (f *fakeStore) InsertComment(context.Context, docstore.Comment) (ident.Ref, error) {
	return "", errUnused
}
func (f *fakeStore) GetComment(context.Context, ident.Ref) (*docstore.Comment, error) {
	return nil, errUnused
}
func (f *fakeStore) CommentsForFile(context.Context, ident.Ref) ([]docstore.Comment, error) {
	return nil, errUnused
}
func (f *fakeStore) Ping(context.Context) error { return nil }
func (f *fakeStore) Close() error               { return nil }
