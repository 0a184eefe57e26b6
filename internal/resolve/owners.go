// Package resolve turns user and owner ids into the hierarchy rows,
// checklists, files and content the document tree is assembled from. Every
// resolver is handed its store explicitly.
package resolve

import (
	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/ident"
)

// OwnerSets holds one ordered, deduplicated owner id set per level.
type OwnerSets map[docstore.Level]*ident.RefSet

// NewOwnerSets returns empty sets for all four levels.
func NewOwnerSets() OwnerSets {
	o := make(OwnerSets, len(docstore.Levels))
	for _, l := range docstore.Levels {
		o[l] = ident.NewRefSet()
	}
	return o
}

// Add records owner at level and reports whether it was new.
func (o OwnerSets) Add(level docstore.Level, owner ident.Ref) bool {
	s, ok := o[level]
	if !ok {
		s = ident.NewRefSet()
		o[level] = s
	}
	return s.Add(owner)
}

// Get returns the set at level (nil-safe to read).
func (o OwnerSets) Get(level docstore.Level) *ident.RefSet { return o[level] }

// Union adds every member of other.
func (o OwnerSets) Union(other OwnerSets) {
	for _, l := range docstore.Levels {
		for _, r := range other.Get(l).Slice() {
			o.Add(l, r)
		}
	}
}

// Intersect returns the members of o that are also in keep, in o's order.
func (o OwnerSets) Intersect(keep OwnerSets) OwnerSets {
	out := NewOwnerSets()
	for _, l := range docstore.Levels {
		allowed := keep.Get(l)
		for _, r := range o.Get(l).Slice() {
			if allowed.Has(r) {
				out.Add(l, r)
			}
		}
	}
	return out
}

// Len counts owners across all levels.
func (o OwnerSets) Len() int {
	n := 0
	for _, s := range o {
		n += s.Len()
	}
	return n
}
