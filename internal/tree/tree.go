// Package tree assembles flat hierarchy rows, checklists and files into the
// community → phase → leaf document tree served to the UI.
package tree

import (
	"fmt"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/ident"
)

// Grouping defaults.
const (
	DefaultCommunity = "Community"
	DefaultPhase     = "Site Wide"
)

// DocRef is one document in a leaf's list.
type DocRef struct {
	Bucket      string `json:"bucket"`
	DisplayName string `json:"displayName"`
	Key         string `json:"key"`
}

// Documents groups a leaf's documents. General is reserved and always
// empty; Final is a copy of Checklist.
type Documents struct {
	Checklist []DocRef `json:"checklist"`
	General   []DocRef `json:"general"`
	Final     []DocRef `json:"final"`
}

// Leaf is a process, task, activity or sub-activity node.
type Leaf struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ChecklistID    *string   `json:"checklistId"`
	ChecklistIDStr *string   `json:"checklistIdStr"`
	Documents      Documents `json:"documents"`
	FileCount      int       `json:"fileCount"`

	kind docstore.Level
}

// Kind returns the leaf's owner level. Leaves decoded from JSON report 0.
func (l Leaf) Kind() docstore.Level { return l.kind }

// Phase groups the leaves of one phase within a community.
type Phase struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Children  []Leaf `json:"children"`
	FileCount int    `json:"fileCount"`
}

// Tree maps community name to its phases.
type Tree map[string][]Phase

// Options control a tree build.
type Options struct {
	ProjectID    *int64
	AssignedOnly bool
	Prune        bool
}

// DefaultOptions prunes empty branches across all projects.
func DefaultOptions() Options { return Options{Prune: true} }

// CacheKey identifies a built tree for user under opts.
func (o Options) CacheKey(user ident.UserID) string {
	project := "all"
	if o.ProjectID != nil {
		project = fmt.Sprint(*o.ProjectID)
	}
	return fmt.Sprintf("stagedocs:tree:%s:p=%s:a=%t:prune=%t", user, project, o.AssignedOnly, o.Prune)
}

// Leaves counts leaf nodes across the tree.
func (t Tree) Leaves() int {
	n := 0
	for _, phases := range t {
		for _, p := range phases {
			n += len(p.Children)
		}
	}
	return n
}
