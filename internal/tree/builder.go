package tree

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/resolve"
	"github.com/zulandar/stagedocs/internal/telemetry"
)

// Builder runs the checklist and file fan-out for a grouping and assembles
// the result.
type Builder struct {
	checklists *resolve.Checklists
	files      *resolve.Files
	tracer     trace.Tracer
}

// NewBuilder returns a builder over the given resolvers. A nil tracer
// records nothing.
func NewBuilder(checklists *resolve.Checklists, files *resolve.Files, tracer trace.Tracer) *Builder {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(telemetry.ScopeName)
	}
	return &Builder{checklists: checklists, files: files, tracer: tracer}
}

// Build turns hierarchy rows into a tree. When assigned is non-nil each
// phase is narrowed to those owners before the fan-out. Any resolver
// failure fails the build.
func (b *Builder) Build(ctx context.Context, rows []docstore.HierarchyRow, assigned resolve.OwnerSets, opts Options) (Tree, error) {
	if len(rows) == 0 {
		return Tree{}, nil
	}

	g := Group(rows)
	if assigned != nil {
		g.Restrict(assigned)
	}
	owners := g.Owners()

	ctx, span := telemetry.StartSpan(ctx, b.tracer, "tree.checklists")
	ix, err := b.checklists.Resolve(ctx, owners)
	if err == nil {
		span.SetAttributes(telemetry.AttrChecklists.Int(ix.All.Len()))
	}
	telemetry.End(span, err)
	if err != nil {
		return nil, fmt.Errorf("tree: build: %w", err)
	}

	ctx, span = telemetry.StartSpan(ctx, b.tracer, "tree.files")
	files, err := b.files.Resolve(ctx, ix.All.Slice())
	span.SetAttributes(telemetry.AttrFiles.Int(len(files)))
	telemetry.End(span, err)
	if err != nil {
		return nil, fmt.Errorf("tree: build: %w", err)
	}

	return Assemble(g, ix, files, opts), nil
}
