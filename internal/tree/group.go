package tree

import (
	"strings"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/ident"
	"github.com/zulandar/stagedocs/internal/resolve"
)

// PhaseGroup is the set of owners seen under one (community, phase) pair.
type PhaseGroup struct {
	Community string
	PhaseID   string
	PhaseName string
	Owners    resolve.OwnerSets
}

// Grouping is the result of the grouping pass over hierarchy rows.
type Grouping struct {
	// Communities in first-seen order.
	Communities []string
	// Groups per community, phases in first-seen order.
	Groups map[string][]*PhaseGroup
	names  map[docstore.Level]map[ident.Ref]string
}

// PhaseID derives the stable phase id: lowercase, whitespace runs
// collapsed to "-".
func PhaseID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

type groupKey struct {
	community, phase string
}

// Group buckets rows by community and phase, collecting distinct owner ids
// per level and the first display name seen for each owner.
func Group(rows []docstore.HierarchyRow) *Grouping {
	g := &Grouping{
		Groups: make(map[string][]*PhaseGroup),
		names:  make(map[docstore.Level]map[ident.Ref]string, len(docstore.Levels)),
	}
	for _, l := range docstore.Levels {
		g.names[l] = make(map[ident.Ref]string)
	}
	index := make(map[groupKey]*PhaseGroup)

	for _, r := range rows {
		community := strings.TrimSpace(docstore.Coalesce(r.Community, r.ProjectName, DefaultCommunity))
		phaseName := strings.TrimSpace(docstore.Coalesce(r.PhaseName, DefaultPhase))
		pid := PhaseID(phaseName)
		key := groupKey{community: community, phase: pid}

		if _, ok := g.Groups[community]; !ok {
			g.Communities = append(g.Communities, community)
			g.Groups[community] = nil
		}
		pg, ok := index[key]
		if !ok {
			pg = &PhaseGroup{Community: community, PhaseID: pid, PhaseName: phaseName, Owners: resolve.NewOwnerSets()}
			index[key] = pg
			g.Groups[community] = append(g.Groups[community], pg)
		}

		g.see(pg, docstore.LevelProcess, r.ProcessID, r.ProcessName)
		g.see(pg, docstore.LevelTask, r.TaskID, r.TaskName)
		g.see(pg, docstore.LevelActivity, r.ActivityID, r.ActivityName)
		g.see(pg, docstore.LevelSubActivity, r.SubactivityID, r.SubactivityName)
	}
	return g
}

func (g *Grouping) see(pg *PhaseGroup, level docstore.Level, id ident.Ref, name string) {
	if id.IsZero() {
		return
	}
	pg.Owners.Add(level, id)
	if _, ok := g.names[level][id]; !ok {
		g.names[level][id] = name
	}
}

// Name returns the display name for owner, falling back to its id.
func (g *Grouping) Name(level docstore.Level, owner ident.Ref) string {
	if n := g.names[level][owner]; n != "" {
		return n
	}
	return owner.String()
}

// Owners returns the union of every group's owner sets.
func (g *Grouping) Owners() resolve.OwnerSets {
	all := resolve.NewOwnerSets()
	for _, c := range g.Communities {
		for _, pg := range g.Groups[c] {
			all.Union(pg.Owners)
		}
	}
	return all
}

// Restrict narrows every group to owners also present in keep.
func (g *Grouping) Restrict(keep resolve.OwnerSets) {
	for _, c := range g.Communities {
		for _, pg := range g.Groups[c] {
			pg.Owners = pg.Owners.Intersect(keep)
		}
	}
}
