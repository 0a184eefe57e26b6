// Package docstore defines the read/write contract stagedocs needs from the
// external project document store, plus the normalized records that cross it.
//
// Implementations resolve every legacy field-name variant and identifier form
// at their boundary; nothing downstream of a Store branches on storage shape.
package docstore

import (
	"context"
	"time"

	"github.com/zulandar/stagedocs/internal/ident"
)

// HierarchyRow is one flattened project → sub-activity path visible to a user.
// Deeper levels are zero when absent.
type HierarchyRow struct {
	UserID          ident.UserID `json:"userId"`
	PmwebProjectID  int64        `json:"pmwebProjectId"`
	ProjectID       ident.Ref    `json:"projectId"`
	ProjectName     string       `json:"projectName"`
	Community       string       `json:"community"`
	PhaseName       string       `json:"phaseName"`
	StagegateID     ident.Ref    `json:"stagegateId"`
	StagegateName   string       `json:"stagegateName"`
	ProcessID       ident.Ref    `json:"processId"`
	ProcessName     string       `json:"processName"`
	TaskID          ident.Ref    `json:"taskId"`
	TaskName        string       `json:"taskName"`
	ActivityID      ident.Ref    `json:"activityId"`
	ActivityName    string       `json:"activityName"`
	SubactivityID   ident.Ref    `json:"subactivityId"`
	SubactivityName string       `json:"subactivityName"`
}

// HierarchyQuery scopes a hierarchy lookup.
type HierarchyQuery struct {
	User      ident.UserID
	ProjectID *int64 // optional PMWEB project filter
}

// ChecklistRef links a checklist to its owner at one level.
type ChecklistRef struct {
	ID      ident.Ref
	OwnerID ident.Ref
}

// FileRecord is a checklist attachment. FileID is the canonical id used for
// dedup; DocID is the storage row id.
type FileRecord struct {
	FileID      ident.Ref `json:"fileId"`
	DocID       ident.Ref `json:"docId"`
	ChecklistID ident.Ref `json:"checklistId"`
	FileName    string    `json:"fileName"`
}

// Binary is a length-carrying binary envelope some stores hand back instead
// of a raw byte slice.
type Binary struct {
	Subtype byte
	Data    []byte
}

// ContentRecord is a stored file payload plus metadata. Payload holds the
// inline value exactly as stored (string, []byte, Binary, or nil).
type ContentRecord struct {
	ID          ident.Ref
	FileName    string
	FileType    string
	FileSize    int64
	CreatedDate *time.Time
	Payload     any
	StoragePath string
}

// FileVersion is one historical revision of a file.
type FileVersion struct {
	ID          ident.Ref  `json:"id"`
	FileID      ident.Ref  `json:"fileId"`
	Version     int        `json:"version"`
	FileName    string     `json:"fileName"`
	FileSize    int64      `json:"fileSize"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	CreatedDate *time.Time `json:"createdDate"`
}

// Assignment is a RACI row for a user: a group label and the RACI record id.
type Assignment struct {
	RaciID ident.Ref
	Group  string
}

// UserIdentity is a row of the generic user-identity index.
type UserIdentity struct {
	ID          ident.Ref `json:"id"`
	Code        int64     `json:"code,omitempty"`
	Email       string    `json:"email,omitempty"`
	Username    string    `json:"username,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
}

// UserField selects which identity form a lookup matches on.
type UserField int

const (
	UserByID UserField = iota + 1
	UserByCode
	UserByEmail
	UserByUsername
)

// Comment is a note attached to a file.
type Comment struct {
	ID            ident.Ref `json:"id"`
	FileID        ident.Ref `json:"fileId"`
	Text          string    `json:"text"`
	AuthorID      ident.Ref `json:"authorId"`
	AuthorName    string    `json:"authorName"`
	CreatedByID   ident.Ref `json:"createdById"`
	CreatedByName string    `json:"createdByName"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Store is the document store contract. Every method must honor ctx
// cancellation and deadlines; absence is reported as empty results, never
// as an error.
type Store interface {
	HierarchyRows(ctx context.Context, q HierarchyQuery) ([]HierarchyRow, error)
	ChecklistsByOwners(ctx context.Context, level Level, owners []ident.Ref) ([]ChecklistRef, error)
	FilesByChecklists(ctx context.Context, level Level, checklists []ident.Ref) ([]FileRecord, error)
	ContentByIDs(ctx context.Context, ids []ident.Ref) ([]ContentRecord, error)
	ContentByNames(ctx context.Context, names []string) ([]ContentRecord, error)
	VersionsForFile(ctx context.Context, fileID ident.Ref) ([]FileVersion, error)
	AssignmentsForUser(ctx context.Context, user ident.UserID) ([]Assignment, error)
	OwnersForRaci(ctx context.Context, level Level, raciIDs []ident.Ref) ([]ident.Ref, error)
	FindUser(ctx context.Context, field UserField, value string) (*UserIdentity, error)
	InsertComment(ctx context.Context, c Comment) (ident.Ref, error)
	GetComment(ctx context.Context, id ident.Ref) (*Comment, error)
	CommentsForFile(ctx context.Context, fileID ident.Ref) ([]Comment, error)
	Ping(ctx context.Context) error
	Close() error
}
