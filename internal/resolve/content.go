package resolve

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/fanout"
	"github.com/zulandar/stagedocs/internal/ident"
)

// Content sources.
const (
	SourceInline   = "inline"
	SourceExternal = "external"
)

// Per-key content errors.
const (
	ErrNoContent  = "no content found"
	ErrNotFound   = "not found"
	ErrInvalidKey = "invalid key"
)

// URLSigner issues a time-limited URL for an externally stored file.
type URLSigner interface {
	SignedURL(ctx context.Context, path string) (string, error)
}

// ContentEntry is the per-key result of a content lookup.
type ContentEntry struct {
	Content     *string                `json:"content"`
	CreatedDate *time.Time             `json:"createdDate"`
	FileType    string                 `json:"fileType"`
	FileSize    int64                  `json:"fileSize"`
	FileName    string                 `json:"fileName"`
	Source      string                 `json:"source"`
	URL         string                 `json:"url,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Comments    []docstore.Comment     `json:"comments,omitempty"`
	Versions    []docstore.FileVersion `json:"versions,omitempty"`

	id ident.Ref
}

// ContentOptions selects the extended lookup.
type ContentOptions struct {
	Extended bool
}

// ContentConfig wires the optional external fallback.
type ContentConfig struct {
	ExternalFallback bool
	Signer           URLSigner
	Concurrency      int
}

// Content serves raw file payloads and metadata keyed by id or file name.
type Content struct {
	store    docstore.Store
	signer   URLSigner
	fallback bool
	limit    int
}

// NewContent returns a content resolver. The external fallback is only
// active when enabled and a signer is supplied.
func NewContent(store docstore.Store, cfg ContentConfig) *Content {
	return &Content{
		store:    store,
		signer:   cfg.Signer,
		fallback: cfg.ExternalFallback && cfg.Signer != nil,
		limit:    cfg.Concurrency,
	}
}

// ByIDs resolves content records by file id.
func (c *Content) ByIDs(ctx context.Context, ids []string, opts ContentOptions) (map[string]ContentEntry, error) {
	keys, out := splitKeys(ids)
	if len(keys) == 0 {
		return out, nil
	}
	refs := make([]ident.Ref, len(keys))
	for i, k := range keys {
		refs[i] = ident.Ref(k)
	}
	recs, err := c.store.ContentByIDs(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("resolve: content by id: %w", err)
	}
	found := make(map[string]docstore.ContentRecord, len(recs))
	for _, r := range recs {
		found[r.ID.String()] = r
	}
	return c.finish(ctx, keys, found, out, opts), nil
}

// ByNames resolves content records by file name. When several records share
// a name the first returned wins.
func (c *Content) ByNames(ctx context.Context, names []string, opts ContentOptions) (map[string]ContentEntry, error) {
	keys, out := splitKeys(names)
	if len(keys) == 0 {
		return out, nil
	}
	recs, err := c.store.ContentByNames(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("resolve: content by name: %w", err)
	}
	found := make(map[string]docstore.ContentRecord, len(recs))
	for _, r := range recs {
		if _, ok := found[r.FileName]; !ok {
			found[r.FileName] = r
		}
	}
	return c.finish(ctx, keys, found, out, opts), nil
}

// splitKeys trims and dedupes keys, recording blank ones as invalid.
func splitKeys(raw []string) ([]string, map[string]ContentEntry) {
	out := make(map[string]ContentEntry, len(raw))
	seen := make(map[string]struct{}, len(raw))
	var keys []string
	for _, k := range raw {
		trimmed := strings.TrimSpace(k)
		if trimmed == "" {
			out[k] = ContentEntry{Error: ErrInvalidKey}
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		keys = append(keys, trimmed)
	}
	return keys, out
}

func (c *Content) finish(ctx context.Context, keys []string, found map[string]docstore.ContentRecord, out map[string]ContentEntry, opts ContentOptions) map[string]ContentEntry {
	var present []string
	for _, k := range keys {
		rec, ok := found[k]
		if !ok {
			out[k] = ContentEntry{Error: ErrNotFound}
			continue
		}
		out[k] = c.entry(ctx, rec)
		present = append(present, k)
	}
	if opts.Extended && len(present) > 0 {
		c.extend(ctx, present, out)
	}
	return out
}

func (c *Content) entry(ctx context.Context, rec docstore.ContentRecord) ContentEntry {
	e := ContentEntry{
		CreatedDate: rec.CreatedDate,
		FileType:    rec.FileType,
		FileSize:    rec.FileSize,
		FileName:    rec.FileName,
		id:          rec.ID,
	}
	if e.FileType == "" {
		e.FileType = docstore.FileType(rec.FileName)
	}
	if s, ok := NormalizePayload(rec.Payload); ok {
		e.Content = &s
		e.Source = SourceInline
		return e
	}
	if c.fallback && rec.StoragePath != "" {
		url, err := c.signer.SignedURL(ctx, rec.StoragePath)
		if err != nil {
			e.Error = fmt.Sprintf("sign %s: %v", rec.StoragePath, err)
			return e
		}
		e.Source = SourceExternal
		e.URL = url
		return e
	}
	e.Error = ErrNoContent
	return e
}

// extend attaches comments and version history to each present key, one
// branch per key. A failing branch marks only its own key.
func (c *Content) extend(ctx context.Context, keys []string, out map[string]ContentEntry) {
	comments := make([][]docstore.Comment, len(keys))
	versions := make([][]docstore.FileVersion, len(keys))
	branches := make([]fanout.Branch, len(keys))
	for i, k := range keys {
		id := out[k].id
		branches[i] = fanout.Branch{
			Name: k,
			Fn: func(ctx context.Context) error {
				cs, err := c.store.CommentsForFile(ctx, id)
				if err != nil {
					return fmt.Errorf("comments: %w", err)
				}
				vs, err := c.store.VersionsForFile(ctx, id)
				if err != nil {
					return fmt.Errorf("versions: %w", err)
				}
				comments[i], versions[i] = cs, vs
				return nil
			},
		}
	}
	err := fanout.Run(ctx, c.limit, branches...)
	failed := make(map[string]string)
	for _, be := range fanout.Errors(err) {
		failed[be.Name] = be.Err.Error()
	}
	for i, k := range keys {
		e := out[k]
		if msg, ok := failed[k]; ok {
			e.Error = msg
		} else {
			e.Comments = comments[i]
			e.Versions = versions[i]
		}
		out[k] = e
	}
}

// NormalizePayload renders a stored payload as text: strings pass through,
// raw and wrapped binary become base64, anything else is formatted. A nil
// or empty payload reports false.
func NormalizePayload(p any) (string, bool) {
	switch v := p.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case *string:
		if v == nil || *v == "" {
			return "", false
		}
		return *v, true
	case []byte:
		if len(v) == 0 {
			return "", false
		}
		return base64.StdEncoding.EncodeToString(v), true
	case docstore.Binary:
		if len(v.Data) == 0 {
			return "", false
		}
		return base64.StdEncoding.EncodeToString(v.Data), true
	case *docstore.Binary:
		if v == nil || len(v.Data) == 0 {
			return "", false
		}
		return base64.StdEncoding.EncodeToString(v.Data), true
	default:
		return fmt.Sprint(v), true
	}
}
