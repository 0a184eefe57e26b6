// Package comments creates and lists the comments attached to files, and
// exposes their version history.
package comments

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/ident"
	"github.com/zulandar/stagedocs/internal/telemetry"
)

// MaxTextLen bounds a comment body.
const MaxTextLen = 10000

// CreateInput holds the caller-supplied fields of a new comment. Author and
// CreatedBy accept an object id, a numeric user code, an email address or a
// username. CreatedBy defaults to Author.
type CreateInput struct {
	FileID    string
	Text      string
	Author    string
	CreatedBy string
}

// Service reads and writes file comments through a store.
type Service struct {
	store docstore.Store
	log   *logrus.Logger
}

// NewService returns a comment service. A nil logger discards output.
func NewService(store docstore.Store, log *logrus.Logger) *Service {
	if log == nil {
		log = telemetry.DiscardLogger()
	}
	return &Service{store: store, log: log}
}

// Create validates in, resolves the author and creator, inserts the comment
// and reads it back. Nothing is written when validation fails.
func (s *Service) Create(ctx context.Context, in CreateInput) (*docstore.Comment, error) {
	fileID := ident.ParseRef(in.FileID)
	if fileID.IsZero() {
		return nil, docstore.Invalid("fileId", "is required")
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, docstore.Invalid("text", "is required")
	}
	if len(text) > MaxTextLen {
		return nil, docstore.Invalid("text", "exceeds %d characters", MaxTextLen)
	}
	if strings.TrimSpace(in.Author) == "" {
		return nil, docstore.Invalid("author", "is required")
	}

	author, err := s.ResolveUser(ctx, in.Author)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, docstore.Invalid("author", "no user matches %q", in.Author)
	}
	creator := author
	if strings.TrimSpace(in.CreatedBy) != "" {
		creator, err = s.ResolveUser(ctx, in.CreatedBy)
		if err != nil {
			return nil, err
		}
		if creator == nil {
			return nil, docstore.Invalid("createdBy", "no user matches %q", in.CreatedBy)
		}
	}

	id, err := s.store.InsertComment(ctx, docstore.Comment{
		FileID:        fileID,
		Text:          text,
		AuthorID:      author.ID,
		AuthorName:    displayName(author),
		CreatedByID:   creator.ID,
		CreatedByName: displayName(creator),
	})
	if err != nil {
		return nil, fmt.Errorf("comments: create on %s: %w", fileID, err)
	}

	// Insert and read-back are separate operations.
	c, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("comments: read back %s: %w", id, err)
	}
	if c == nil {
		return nil, fmt.Errorf("comments: comment %s vanished after insert", id)
	}
	s.log.WithFields(logrus.Fields{"comment": id.String(), "file": fileID.String(), "author": author.ID.String()}).
		Info("comment created")
	return c, nil
}

// List returns the comments on a file, oldest first.
func (s *Service) List(ctx context.Context, fileID string) ([]docstore.Comment, error) {
	ref := ident.ParseRef(fileID)
	if ref.IsZero() {
		return nil, docstore.Invalid("fileId", "is required")
	}
	cs, err := s.store.CommentsForFile(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("comments: list %s: %w", ref, err)
	}
	if cs == nil {
		cs = []docstore.Comment{}
	}
	return cs, nil
}

// Versions returns the version history of a file.
func (s *Service) Versions(ctx context.Context, fileID string) ([]docstore.FileVersion, error) {
	ref := ident.ParseRef(fileID)
	if ref.IsZero() {
		return nil, docstore.Invalid("fileId", "is required")
	}
	vs, err := s.store.VersionsForFile(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("comments: versions %s: %w", ref, err)
	}
	if vs == nil {
		vs = []docstore.FileVersion{}
	}
	return vs, nil
}

// ResolveUser finds the user a free-form reference names, trying object id,
// numeric code, email and username in that order. A miss returns nil.
func (s *Service) ResolveUser(ctx context.Context, ref string) (*docstore.UserIdentity, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	for _, field := range lookupOrder(ref) {
		u, err := s.store.FindUser(ctx, field, ref)
		if err != nil {
			return nil, fmt.Errorf("comments: resolve user %q: %w", ref, err)
		}
		if u != nil {
			return u, nil
		}
	}
	return nil, nil
}

func lookupOrder(ref string) []docstore.UserField {
	order := []docstore.UserField{docstore.UserByID}
	if _, err := strconv.ParseInt(ref, 10, 64); err == nil {
		order = append(order, docstore.UserByCode)
	}
	if strings.Contains(ref, "@") {
		order = append(order, docstore.UserByEmail)
	}
	return append(order, docstore.UserByUsername)
}

func displayName(u *docstore.UserIdentity) string {
	return docstore.Coalesce(u.DisplayName, u.Username, u.Email, u.ID.String())
}
