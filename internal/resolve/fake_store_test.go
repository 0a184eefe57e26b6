package resolve

import (
	"context"
	"errors"
	"sync"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/ident"
)

// fakeStore is an in-memory docstore.Store keyed the way the real stores
// answer batch lookups.
type fakeStore struct {
	mu    sync.Mutex
	calls map[string]int

	rows        []docstore.HierarchyRow
	checklists  map[docstore.Level][]docstore.ChecklistRef
	files       map[docstore.Level][]docstore.FileRecord
	content     []docstore.ContentRecord
	versions    map[ident.Ref][]docstore.FileVersion
	comments    map[ident.Ref][]docstore.Comment
	assignments []docstore.Assignment
	raciOwners  map[docstore.Level]map[ident.Ref]ident.Ref

	failOn map[string]error
	failID map[ident.Ref]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		calls:      map[string]int{},
		checklists: map[docstore.Level][]docstore.ChecklistRef{},
		files:      map[docstore.Level][]docstore.FileRecord{},
		versions:   map[ident.Ref][]docstore.FileVersion{},
		comments:   map[ident.Ref][]docstore.Comment{},
		raciOwners: map[docstore.Level]map[ident.Ref]ident.Ref{},
		failOn:     map[string]error{},
		failID:     map[ident.Ref]error{},
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
		if r.UserID != q.User {
			continue
		}
		if q.ProjectID != nil && r.PmwebProjectID != *q.ProjectID {
			continue
		}
		out = append(out, r)
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

func (f *fakeStore) ContentByIDs(_ context.Context, ids []ident.Ref) ([]docstore.ContentRecord, error) {
	if err := f.record("content:id"); err != nil {
		return nil, err
	}
	want := ident.NewRefSet(ids...)
	var out []docstore.ContentRecord
	for _, c := range f.content {
		if want.Has(c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) ContentByNames(_ context.Context, names []string) ([]docstore.ContentRecord, error) {
	if err := f.record("content:name"); err != nil {
		return nil, err
	}
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	var out []docstore.ContentRecord
	for _, c := range f.content {
		if want[c.FileName] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) VersionsForFile(_ context.Context, id ident.Ref) ([]docstore.FileVersion, error) {
	if err := f.record("versions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failID[id]; err != nil {
		return nil, err
	}
	return f.versions[id], nil
}

func (f *fakeStore) AssignmentsForUser(_ context.Context, _ ident.UserID) ([]docstore.Assignment, error) {
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
		if owner, ok := f.raciOwners[level][r]; ok {
			out = append(out, owner)
		}
	}
	return out, nil
}

func (f *fakeStore) FindUser(context.Context, docstore.UserField, string) (*docstore.UserIdentity, error) {
	return nil, errors.New("not supported")
}

func (f *fakeStore) InsertComment(context.Context, docstore.Comment) (ident.Ref, error) {
	return "", errors.New("not supported")
}

func (f *fakeStore) GetComment(context.Context, ident.Ref) (*docstore.Comment, error) {
	return nil, errors.New("not supported")
}

func (f *fakeStore) CommentsForFile(_ context.Context, id ident.Ref) ([]docstore.Comment, error) {
	if err := f.record("comments"); err != nil {
		return nil, err
	}
	return f.comments[id], nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }
func (f *fakeStore) Close() error               { return nil }
