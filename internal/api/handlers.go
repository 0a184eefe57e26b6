package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/zulandar/stagedocs/internal/comments"
	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/ident"
	"github.com/zulandar/stagedocs/internal/resolve"
	"github.com/zulandar/stagedocs/internal/telemetry"
	"github.com/zulandar/stagedocs/internal/tree"
)

type handlers struct {
	store    docstore.Store
	trees    *tree.Service
	content  *resolve.Content
	comments *comments.Service
	defaults tree.Options
	metrics  *telemetry.Metrics
	log      *logrus.Logger
}

// registerRoutes sets up all API routes on the gin router.
func registerRoutes(router *gin.Engine, h *handlers) {
	api := router.Group("/api")
	api.GET("/health", h.health)

	docs := api.Group("/documents")
	docs.GET("/users/:userId/tree", h.tree)
	docs.POST("/file-data", h.fileData)
	docs.POST("/files/:fileId/comments", h.createComment)
	docs.GET("/files/:fileId/comments", h.listComments)
	docs.GET("/files/:fileId/versions", h.listVersions)
}

func (h *handlers) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) tree(c *gin.Context) {
	const msg = "Error fetching Documents of a User"

	user, err := ident.ParseUserID(c.Param("userId"))
	if err != nil {
		writeError(c, msg, docstore.Invalid("userId", "%v", err))
		return
	}
	opts := h.defaults
	if raw := c.Query("projectId"); raw != "" {
		pid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || pid <= 0 {
			writeError(c, msg, docstore.Invalid("projectId", "must be a positive integer"))
			return
		}
		opts.ProjectID = &pid
	}
	if opts.AssignedOnly, err = queryBool(c, "assigned", h.defaults.AssignedOnly); err != nil {
		writeError(c, msg, err)
		return
	}
	if opts.Prune, err = queryBool(c, "prune", h.defaults.Prune); err != nil {
		writeError(c, msg, err)
		return
	}

	t, err := h.trees.ForUser(c.Request.Context(), user, opts)
	if err != nil {
		writeError(c, msg, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tree": t})
}

func queryBool(c *gin.Context, name string, def bool) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, docstore.Invalid(name, "must be true or false")
	}
	return b, nil
}

// fileDataRequest accepts a single key, a key list, a name list, or any mix.
// Keys may arrive as strings or numbers.
type fileDataRequest struct {
	Key      any      `json:"key"`
	Keys     []any    `json:"keys"`
	Names    []string `json:"names"`
	Extended bool     `json:"extended"`
}

func (r fileDataRequest) ids() []string {
	var ids []string
	if r.Key != nil {
		ids = append(ids, keyString(r.Key))
	}
	for _, k := range r.Keys {
		ids = append(ids, keyString(k))
	}
	return ids
}

// bindJSON decodes the request body keeping numbers as json.Number, so
// numeric ids above 2^53 survive intact.
func bindJSON(c *gin.Context, v any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

func keyString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ident.ParseRef(v).String()
}

func (h *handlers) fileData(c *gin.Context) {
	const msg = "Error fetching Document Meta Data"

	var req fileDataRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, msg, docstore.Invalid("body", "%v", err))
		return
	}
	ids := req.ids()
	if len(ids) == 0 && len(req.Names) == 0 {
		writeError(c, msg, docstore.Invalid("key", "one of key, keys or names is required"))
		return
	}

	ctx := c.Request.Context()
	opts := resolve.ContentOptions{Extended: req.Extended}
	out := make(map[string]resolve.ContentEntry, len(ids)+len(req.Names))
	if len(ids) > 0 {
		byID, err := h.content.ByIDs(ctx, ids, opts)
		if err != nil {
			writeError(c, msg, err)
			return
		}
		for k, v := range byID {
			out[k] = v
		}
	}
	if len(req.Names) > 0 {
		byName, err := h.content.ByNames(ctx, req.Names, opts)
		if err != nil {
			writeError(c, msg, err)
			return
		}
		for k, v := range byName {
			if _, taken := out[k]; !taken {
				out[k] = v
			}
		}
	}
	h.metrics.ContentKeys.Add(ctx, int64(len(out)))
	c.JSON(http.StatusOK, gin.H{"fileData": out})
}

// commentRequest carries author references as strings or numbers.
type commentRequest struct {
	Text      string `json:"text"`
	Author    any    `json:"author"`
	CreatedBy any    `json:"createdBy"`
}

func (h *handlers) createComment(c *gin.Context) {
	const msg = "Error creating comment"

	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, msg, docstore.Invalid("body", "%v", err))
		return
	}
	created, err := h.comments.Create(c.Request.Context(), comments.CreateInput{
		FileID:    c.Param("fileId"),
		Text:      req.Text,
		Author:    optionalKey(req.Author),
		CreatedBy: optionalKey(req.CreatedBy),
	})
	if err != nil {
		writeError(c, msg, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": created})
}

func optionalKey(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(keyString(v))
}

func (h *handlers) listComments(c *gin.Context) {
	list, err := h.comments.List(c.Request.Context(), c.Param("fileId"))
	if err != nil {
		writeError(c, "Error fetching comments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": list})
}

func (h *handlers) listVersions(c *gin.Context) {
	list, err := h.comments.Versions(c.Request.Context(), c.Param("fileId"))
	if err != nil {
		writeError(c, "Error fetching file versions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": list})
}
