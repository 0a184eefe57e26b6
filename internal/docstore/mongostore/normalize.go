package mongostore

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/ident"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// idValues converts refs into filter values: object-id-shaped refs become
// ObjectIDs, everything else is matched as stored text.
func idValues(refs []ident.Ref) bson.A {
	out := make(bson.A, 0, len(refs))
	for _, r := range refs {
		if r.IsZero() {
			continue
		}
		out = append(out, idValue(r))
	}
	return out
}

func idValue(r ident.Ref) any {
	if r.IsObjectID() {
		if oid, err := bson.ObjectIDFromHex(strings.ToLower(r.String())); err == nil {
			return oid
		}
	}
	return r.String()
}

// text renders a scalar field as a display string.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bson.ObjectID:
		return x.Hex()
	default:
		return fmt.Sprint(x)
	}
}

// int64Of reads a numeric field stored as int32, int64, double or text.
func int64Of(v any) int64 {
	switch x := v.(type) {
	case int32:
		return int64(x)
	case int64:
		return x
	case int:
		return int64(x)
	case float64:
		if x == math.Trunc(x) {
			return int64(x)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// timeOf reads a date field. Missing or unparseable values yield nil.
func timeOf(v any) *time.Time {
	var t time.Time
	switch x := v.(type) {
	case bson.DateTime:
		t = x.Time().UTC()
	case time.Time:
		t = x.UTC()
	case string:
		p, err := time.Parse(time.RFC3339, x)
		if err != nil {
			return nil
		}
		t = p.UTC()
	default:
		return nil
	}
	return &t
}

// payloadOf unwraps driver binary values into the store-neutral envelope.
func payloadOf(v any) any {
	switch x := v.(type) {
	case bson.Binary:
		return docstore.Binary{Subtype: x.Subtype, Data: x.Data}
	case *bson.Binary:
		if x == nil {
			return nil
		}
		return docstore.Binary{Subtype: x.Subtype, Data: x.Data}
	default:
		return x
	}
}

func hierarchyRow(doc bson.M) docstore.HierarchyRow {
	return docstore.HierarchyRow{
		UserID:          ident.UserID(int64Of(doc["userId"])),
		PmwebProjectID:  int64Of(doc["pmwebProjectId"]),
		ProjectID:       ident.ParseRef(doc["projectId"]),
		ProjectName:     text(doc["projectName"]),
		Community:       text(doc["community"]),
		PhaseName:       text(doc["phaseName"]),
		StagegateID:     ident.ParseRef(doc["stagegateId"]),
		StagegateName:   text(doc["stagegateName"]),
		ProcessID:       ident.ParseRef(doc["processId"]),
		ProcessName:     text(doc["processName"]),
		TaskID:          ident.ParseRef(doc["taskId"]),
		TaskName:        text(doc["taskName"]),
		ActivityID:      ident.ParseRef(doc["activityId"]),
		ActivityName:    text(doc["activityName"]),
		SubactivityID:   ident.ParseRef(doc["subactivityId"]),
		SubactivityName: text(doc["subactivityName"]),
	}
}

func fileRecord(doc bson.M) docstore.FileRecord {
	docID := ident.ParseRef(doc["_id"])
	fileID := docID
	if v, ok := docstore.FieldFileID.Pick(doc); ok {
		fileID = ident.ParseRef(v)
	}
	return docstore.FileRecord{
		FileID:      fileID,
		DocID:       docID,
		ChecklistID: ident.ParseRef(doc[fieldChecklistID]),
		FileName:    docstore.FieldFileName.String(doc),
	}
}

func contentRecord(doc bson.M) docstore.ContentRecord {
	rec := docstore.ContentRecord{
		ID:          ident.ParseRef(doc["_id"]),
		FileName:    docstore.FieldFileName.String(doc),
		FileType:    docstore.FieldFileType.String(doc),
		StoragePath: docstore.FieldStorageKey.String(doc),
	}
	if v, ok := docstore.FieldFileSize.Pick(doc); ok {
		rec.FileSize = int64Of(v)
	}
	if v, ok := docstore.FieldCreated.Pick(doc); ok {
		rec.CreatedDate = timeOf(v)
	}
	if v, ok := docstore.FieldContent.Pick(doc); ok {
		rec.Payload = payloadOf(v)
	}
	return rec
}

func assignment(doc bson.M) (docstore.Assignment, bool) {
	v, ok := docstore.FieldRaciID.Pick(doc)
	if !ok {
		return docstore.Assignment{}, false
	}
	return docstore.Assignment{RaciID: ident.ParseRef(v), Group: docstore.FieldRaciGroup.String(doc)}, true
}

func userIdentity(doc bson.M) docstore.UserIdentity {
	return docstore.UserIdentity{
		ID:          ident.ParseRef(doc["_id"]),
		Code:        int64Of(firstOf(doc, "code", "Code", "userCode")),
		Email:       text(firstOf(doc, "email", "Email")),
		Username:    text(firstOf(doc, "username", "userName", "Username")),
		DisplayName: text(firstOf(doc, "name", "displayName", "Name")),
	}
}

func firstOf(doc bson.M, names ...string) any {
	v, _ := docstore.Fields(names).Pick(doc)
	return v
}

func commentDoc(c docstore.Comment) bson.M {
	return bson.M{
		"_id":           idValue(c.ID),
		"fileId":        c.FileID.String(),
		"text":          c.Text,
		"author":        idValue(c.AuthorID),
		"authorName":    c.AuthorName,
		"createdBy":     idValue(c.CreatedByID),
		"createdByName": c.CreatedByName,
		"createdAt":     c.CreatedAt,
		"updatedAt":     c.UpdatedAt,
	}
}

func comment(doc bson.M) docstore.Comment {
	c := docstore.Comment{
		ID:            ident.ParseRef(doc["_id"]),
		FileID:        ident.ParseRef(doc["fileId"]),
		Text:          text(doc["text"]),
		AuthorID:      ident.ParseRef(doc["author"]),
		AuthorName:    text(doc["authorName"]),
		CreatedByID:   ident.ParseRef(doc["createdBy"]),
		CreatedByName: text(doc["createdByName"]),
	}
	if t := timeOf(doc["createdAt"]); t != nil {
		c.CreatedAt = *t
	}
	if t := timeOf(doc["updatedAt"]); t != nil {
		c.UpdatedAt = *t
	}
	return c
}

func versionRecord(doc bson.M) docstore.FileVersion {
	v := docstore.FileVersion{
		ID:        ident.ParseRef(doc["_id"]),
		FileID:    ident.ParseRef(firstOf(doc, "fileId", "FileId")),
		Version:   int(int64Of(firstOf(doc, "version", "Version"))),
		FileName:  docstore.FieldFileName.String(doc),
		CreatedBy: text(firstOf(doc, "createdBy", "CreatedBy")),
	}
	if s, ok := docstore.FieldFileSize.Pick(doc); ok {
		v.FileSize = int64Of(s)
	}
	if c, ok := docstore.FieldCreated.Pick(doc); ok {
		v.CreatedDate = timeOf(c)
	}
	return v
}
