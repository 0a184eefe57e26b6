// Package mongostore implements docstore.Store over MongoDB. The hierarchy is
// one aggregation pipeline; every other read is an $in find with a
// projection and an index hint.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/ident"
	"github.com/zulandar/stagedocs/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store is a MongoDB-backed document store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	budget docstore.Budget
}

var _ docstore.Store = (*Store)(nil)

// Connect dials uri, pings, and returns a store over database name.
func Connect(ctx context.Context, uri, name string, budget docstore.Budget) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}
	return New(client, name, budget), nil
}

// New wraps a connected client.
func New(client *mongo.Client, name string, budget docstore.Budget) *Store {
	if budget.IsTimeout == nil {
		budget.IsTimeout = mongo.IsTimeout
	}
	return &Store{client: client, db: client.Database(name), budget: budget}
}

func (s *Store) coll(name string) *mongo.Collection { return s.db.Collection(name) }

// find runs a projected, hinted find and decodes every document.
func (s *Store) find(ctx context.Context, coll string, filter bson.M, proj bson.M, hint any) ([]bson.M, error) {
	opts := options.Find()
	if proj != nil {
		opts.SetProjection(proj)
	}
	if hint != nil {
		opts.SetHint(hint)
	}
	cur, err := s.coll(coll).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// HierarchyRows runs the user-scoped hierarchy pipeline.
func (s *Store) HierarchyRows(ctx context.Context, q docstore.HierarchyQuery) ([]docstore.HierarchyRow, error) {
	var docs []bson.M
	err := s.budget.Run(ctx, "mongostore: hierarchy", func(ctx context.Context) error {
		opts := options.Aggregate().SetAllowDiskUse(true).SetComment("stagedocs hierarchy")
		cur, err := s.coll(models.TableProjectUsers).Aggregate(ctx, hierarchyPipeline(q), opts)
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}
	rows := make([]docstore.HierarchyRow, len(docs))
	for i, d := range docs {
		rows[i] = hierarchyRow(d)
	}
	return rows, nil
}

// ChecklistsByOwners returns every checklist owned by one of owners.
func (s *Store) ChecklistsByOwners(ctx context.Context, level docstore.Level, owners []ident.Ref) ([]docstore.ChecklistRef, error) {
	vals := idValues(owners)
	if len(vals) == 0 {
		return nil, nil
	}
	c, ok := collections[level]
	if !ok {
		return nil, fmt.Errorf("mongostore: unknown level %s", level)
	}
	var docs []bson.M
	err := s.budget.Run(ctx, "mongostore: checklists "+level.String(), func(ctx context.Context) error {
		var err error
		docs, err = s.find(ctx, c.checklists,
			bson.M{c.owner: bson.M{"$in": vals}},
			bson.M{"_id": 1, c.owner: 1},
			hintChecklistOwner(c.owner))
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]docstore.ChecklistRef, 0, len(docs))
	for _, d := range docs {
		out = append(out, docstore.ChecklistRef{ID: ident.ParseRef(d["_id"]), OwnerID: ident.ParseRef(d[c.owner])})
	}
	return out, nil
}

// FilesByChecklists returns the file documents attached to checklists.
func (s *Store) FilesByChecklists(ctx context.Context, level docstore.Level, checklists []ident.Ref) ([]docstore.FileRecord, error) {
	vals := idValues(checklists)
	if len(vals) == 0 {
		return nil, nil
	}
	c, ok := collections[level]
	if !ok {
		return nil, fmt.Errorf("mongostore: unknown level %s", level)
	}
	var docs []bson.M
	err := s.budget.Run(ctx, "mongostore: files "+level.String(), func(ctx context.Context) error {
		var err error
		docs, err = s.find(ctx, c.files,
			bson.M{fieldChecklistID: bson.M{"$in": vals}},
			bson.M{"_id": 1, fieldChecklistID: 1, "FileId": 1, "fileId": 1, "FileName": 1, "name": 1},
			hintFilesChecklist)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]docstore.FileRecord, len(docs))
	for i, d := range docs {
		out[i] = fileRecord(d)
	}
	return out, nil
}

var contentProjection = bson.M{
	"FileName": 1, "name": 1,
	"FileContent": 1, "filecontent": 1,
	"CreatedDate": 1, "createdDate": 1, "createdAt": 1,
	"FileType": 1, "fileType": 1, "ContentType": 1, "contentType": 1,
	"FileSize": 1, "fileSize": 1, "size": 1,
	"StoragePath": 1, "storagePath": 1, "gcsPath": 1, "GcsPath": 1,
}

// ContentByIDs fetches content documents by _id.
func (s *Store) ContentByIDs(ctx context.Context, ids []ident.Ref) ([]docstore.ContentRecord, error) {
	vals := idValues(ids)
	if len(vals) == 0 {
		return nil, nil
	}
	return s.content(ctx, "mongostore: content by id", bson.M{"_id": bson.M{"$in": vals}}, hintContentByID)
}

// ContentByNames fetches content documents by FileName.
func (s *Store) ContentByNames(ctx context.Context, names []string) ([]docstore.ContentRecord, error) {
	vals := bson.A{}
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			vals = append(vals, n)
		}
	}
	if len(vals) == 0 {
		return nil, nil
	}
	return s.content(ctx, "mongostore: content by name", bson.M{"FileName": bson.M{"$in": vals}}, hintContentByName)
}

func (s *Store) content(ctx context.Context, op string, filter bson.M, hint bson.D) ([]docstore.ContentRecord, error) {
	var docs []bson.M
	err := s.budget.Run(ctx, op, func(ctx context.Context) error {
		var err error
		docs, err = s.find(ctx, models.TableFileContent, filter, contentProjection, hint)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]docstore.ContentRecord, len(docs))
	for i, d := range docs {
		out[i] = contentRecord(d)
	}
	return out, nil
}

// VersionsForFile lists a file's revisions, oldest first.
func (s *Store) VersionsForFile(ctx context.Context, fileID ident.Ref) ([]docstore.FileVersion, error) {
	var docs []bson.M
	err := s.budget.Run(ctx, "mongostore: versions", func(ctx context.Context) error {
		opts := options.Find().SetSort(bson.D{{Key: "version", Value: 1}, {Key: "_id", Value: 1}})
		filter := bson.M{"$or": bson.A{
			bson.M{"fileId": bson.M{"$in": bson.A{fileID.String(), idValue(fileID)}}},
			bson.M{"FileId": bson.M{"$in": bson.A{fileID.String(), idValue(fileID)}}},
		}}
		cur, err := s.coll(models.TableFileVersions).Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}
	out := make([]docstore.FileVersion, len(docs))
	for i, d := range docs {
		out[i] = versionRecord(d)
	}
	return out, nil
}

// AssignmentsForUser lists the RACI rows assigned to user under either
// assignee field spelling.
func (s *Store) AssignmentsForUser(ctx context.Context, user ident.UserID) ([]docstore.Assignment, error) {
	or := bson.A{}
	for _, f := range docstore.FieldAssignee {
		or = append(or, bson.M{f: user.Int64()})
	}
	var docs []bson.M
	err := s.budget.Run(ctx, "mongostore: assignments", func(ctx context.Context) error {
		var err error
		docs, err = s.find(ctx, models.TableRaciAssignees,
			bson.M{"$or": or},
			bson.M{"raciId": 1, "RaciId": 1, "raciGroup": 1, "RaciGroup": 1},
			nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]docstore.Assignment, 0, len(docs))
	for _, d := range docs {
		if a, ok := assignment(d); ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// OwnersForRaci maps RACI document ids to owner ids at one level.
func (s *Store) OwnersForRaci(ctx context.Context, level docstore.Level, raciIDs []ident.Ref) ([]ident.Ref, error) {
	vals := idValues(raciIDs)
	if len(vals) == 0 {
		return nil, nil
	}
	c, ok := collections[level]
	if !ok {
		return nil, fmt.Errorf("mongostore: unknown level %s", level)
	}
	var docs []bson.M
	err := s.budget.Run(ctx, "mongostore: raci "+level.String(), func(ctx context.Context) error {
		var err error
		docs, err = s.find(ctx, c.raci, bson.M{"_id": bson.M{"$in": vals}}, bson.M{c.owner: 1}, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]ident.Ref, 0, len(docs))
	for _, d := range docs {
		if r := ident.ParseRef(d[c.owner]); !r.IsZero() {
			out = append(out, r)
		}
	}
	return out, nil
}

// userFilter builds the lookup filter for one identity form. ok is false when
// value cannot match that form.
func userFilter(field docstore.UserField, value string) (bson.M, bool) {
	switch field {
	case docstore.UserByID:
		r := ident.Ref(value)
		if !r.IsObjectID() {
			return nil, false
		}
		return bson.M{"_id": idValue(r)}, true
	case docstore.UserByCode:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, false
		}
		return bson.M{"$or": bson.A{bson.M{"code": n}, bson.M{"Code": n}, bson.M{"userCode": n}}}, true
	case docstore.UserByEmail:
		return bson.M{"$or": bson.A{bson.M{"email": value}, bson.M{"Email": value}}}, true
	case docstore.UserByUsername:
		return bson.M{"$or": bson.A{bson.M{"username": value}, bson.M{"userName": value}, bson.M{"Username": value}}}, true
	}
	return nil, false
}

// FindUser looks a user up by one identity form. A miss returns nil, nil.
func (s *Store) FindUser(ctx context.Context, field docstore.UserField, value string) (*docstore.UserIdentity, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	filter, ok := userFilter(field, value)
	if !ok {
		return nil, nil
	}
	var doc bson.M
	err := s.budget.Run(ctx, "mongostore: find user", func(ctx context.Context) error {
		return s.coll(models.TableUsers).FindOne(ctx, filter).Decode(&doc)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u := userIdentity(doc)
	return &u, nil
}

// InsertComment stores c with a fresh ObjectID when none is set.
func (s *Store) InsertComment(ctx context.Context, c docstore.Comment) (ident.Ref, error) {
	if c.ID.IsZero() {
		c.ID = ident.Ref(bson.NewObjectID().Hex())
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	err := s.budget.Run(ctx, "mongostore: insert comment", func(ctx context.Context) error {
		_, err := s.coll(models.TableFileComments).InsertOne(ctx, commentDoc(c))
		return err
	})
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// GetComment reads one comment. A miss returns nil, nil.
func (s *Store) GetComment(ctx context.Context, id ident.Ref) (*docstore.Comment, error) {
	var doc bson.M
	err := s.budget.Run(ctx, "mongostore: get comment", func(ctx context.Context) error {
		return s.coll(models.TableFileComments).FindOne(ctx, bson.M{"_id": idValue(id)}).Decode(&doc)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c := comment(doc)
	return &c, nil
}

// CommentsForFile lists a file's comments, oldest first.
func (s *Store) CommentsForFile(ctx context.Context, fileID ident.Ref) ([]docstore.Comment, error) {
	var docs []bson.M
	err := s.budget.Run(ctx, "mongostore: comments", func(ctx context.Context) error {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
		cur, err := s.coll(models.TableFileComments).Find(ctx, bson.M{"fileId": fileID.String()}, opts)
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}
	out := make([]docstore.Comment, len(docs))
	for i, d := range docs {
		out[i] = comment(d)
	}
	return out, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.budget.Run(ctx, "mongostore: ping", func(ctx context.Context) error {
		return s.client.Ping(ctx, nil)
	})
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
