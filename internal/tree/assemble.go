package tree

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/ident"
	"github.com/zulandar/stagedocs/internal/resolve"
)

type fileRef struct {
	id   string
	name string
}

// Assemble builds the tree from a grouping, its checklist index and the
// files attached to those checklists. It does no I/O.
func Assemble(g *Grouping, ix *resolve.ChecklistIndex, files []docstore.FileRecord, opts Options) Tree {
	byChecklist := make(map[ident.Ref][]fileRef)
	for _, f := range files {
		list := byChecklist[f.ChecklistID]
		if slices.ContainsFunc(list, func(x fileRef) bool { return x.id == f.FileID.String() }) {
			continue
		}
		byChecklist[f.ChecklistID] = append(list, fileRef{id: f.FileID.String(), name: f.FileName})
	}

	col := collate.New(language.Und)
	out := Tree{}
	for _, community := range g.Communities {
		var phases []Phase
		for _, pg := range g.Groups[community] {
			phase := Phase{ID: pg.PhaseID, Name: pg.PhaseName, Children: []Leaf{}}
			for _, level := range docstore.Levels {
				for _, owner := range pg.Owners.Get(level).Slice() {
					leaf := buildLeaf(owner, g.Name(level, owner), ix.For(level, owner), byChecklist, level)
					if opts.Prune && leaf.FileCount == 0 {
						continue
					}
					phase.Children = append(phase.Children, leaf)
				}
			}
			slices.SortStableFunc(phase.Children, func(a, b Leaf) int {
				if d := a.kind.Rank() - b.kind.Rank(); d != 0 {
					return d
				}
				return col.CompareString(a.Name, b.Name)
			})
			for _, c := range phase.Children {
				phase.FileCount += c.FileCount
			}
			if opts.Prune && phase.FileCount == 0 {
				continue
			}
			phases = append(phases, phase)
		}

		slices.SortStableFunc(phases, func(a, b Phase) int {
			if d := b.FileCount - a.FileCount; d != 0 {
				return d
			}
			return col.CompareString(a.Name, b.Name)
		})
		if opts.Prune && len(phases) == 0 {
			continue
		}
		if phases == nil {
			phases = []Phase{}
		}
		out[community] = phases
	}
	return out
}

func buildLeaf(owner ident.Ref, name string, checklists []ident.Ref, files map[ident.Ref][]fileRef, kind docstore.Level) Leaf {
	leaf := Leaf{
		ID:   owner.String(),
		Name: name,
		Documents: Documents{
			Checklist: []DocRef{},
			General:   []DocRef{},
		},
		kind: kind,
	}

	cids := ident.NewRefSet(checklists...).Slice()
	if len(cids) > 0 {
		first := cids[0].String()
		firstStr := first
		leaf.ChecklistID = &first
		leaf.ChecklistIDStr = &firstStr
	}

	seen := make(map[string]struct{})
	for _, cid := range cids {
		for _, f := range files[cid] {
			if f.id == "" || f.name == "" {
				continue
			}
			if _, dup := seen[f.id]; dup {
				continue
			}
			seen[f.id] = struct{}{}
			leaf.Documents.Checklist = append(leaf.Documents.Checklist, DocRef{Bucket: f.id, DisplayName: f.name, Key: f.id})
		}
	}

	leaf.Documents.Final = append([]DocRef{}, leaf.Documents.Checklist...)
	leaf.FileCount = len(leaf.Documents.Final)
	return leaf
}
