package tree

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zulandar/stagedocs/internal/ident"
	"github.com/zulandar/stagedocs/internal/resolve"
	"github.com/zulandar/stagedocs/internal/telemetry"
)

// Cache stores built trees. Implementations swallow their own failures.
type Cache interface {
	Get(ctx context.Context, key string) (Tree, bool)
	Set(ctx context.Context, key string, t Tree)
}

// ServiceOpts configures a Service.
type ServiceOpts struct {
	Hierarchy   *resolve.Hierarchy
	Assignments *resolve.Assignments
	Builder     *Builder
	Cache       Cache // optional
	Logger      *logrus.Logger
	Tracer      trace.Tracer
	Metrics     *telemetry.Metrics
}

// Service produces document trees for users.
type Service struct {
	hierarchy   *resolve.Hierarchy
	assignments *resolve.Assignments
	builder     *Builder
	cache       Cache
	log         *logrus.Logger
	tracer      trace.Tracer
	metrics     *telemetry.Metrics
}

// NewService wires a Service, substituting no-op telemetry where unset.
func NewService(opts ServiceOpts) *Service {
	s := &Service{
		hierarchy:   opts.Hierarchy,
		assignments: opts.Assignments,
		builder:     opts.Builder,
		cache:       opts.Cache,
		log:         opts.Logger,
		tracer:      opts.Tracer,
		metrics:     opts.Metrics,
	}
	if s.log == nil {
		s.log = telemetry.DiscardLogger()
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer(telemetry.ScopeName)
	}
	if s.metrics == nil {
		s.metrics = telemetry.NoopMetrics()
	}
	return s
}

// ForUser returns the document tree visible to user.
func (s *Service) ForUser(ctx context.Context, user ident.UserID, opts Options) (t Tree, err error) {
	start := time.Now()
	attrs := []attribute.KeyValue{telemetry.AttrUserID.Int64(user.Int64())}
	if opts.ProjectID != nil {
		attrs = append(attrs, telemetry.AttrProjectID.Int64(*opts.ProjectID))
	}
	ctx, span := telemetry.StartSpan(ctx, s.tracer, "tree.for_user", attrs...)
	defer func() {
		telemetry.End(span, err)
		s.metrics.TreeDuration.Record(ctx, time.Since(start).Seconds())
		if err != nil {
			s.metrics.TreeErrors.Add(ctx, 1)
			s.log.WithError(err).WithField("user", user.Int64()).Warn("tree build failed")
		}
	}()

	key := opts.CacheKey(user)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			span.SetAttributes(telemetry.AttrCacheHit.Bool(true))
			s.metrics.CacheHits.Add(ctx, 1)
			return cached, nil
		}
		s.metrics.CacheMisses.Add(ctx, 1)
	}

	rows, err := s.hierarchy.Rows(ctx, user, resolve.HierarchyOptions{ProjectID: opts.ProjectID})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(telemetry.AttrRows.Int(len(rows)))

	var assigned resolve.OwnerSets
	if opts.AssignedOnly && len(rows) > 0 {
		if s.assignments == nil {
			return nil, fmt.Errorf("tree: assigned scope requested but no assignment resolver is configured")
		}
		assigned, err = s.assignments.OwnerSets(ctx, user)
		if err != nil {
			return nil, err
		}
	}

	t, err = s.builder.Build(ctx, rows, assigned, opts)
	if err != nil {
		return nil, err
	}
	s.metrics.TreeBuilds.Add(ctx, 1, metric.WithAttributes(attribute.Bool("assigned", opts.AssignedOnly)))
	s.log.WithFields(logrus.Fields{
		"user":        user.Int64(),
		"rows":        len(rows),
		"communities": len(t),
		"leaves":      t.Leaves(),
		"elapsed":     time.Since(start).Round(time.Millisecond).String(),
	}).Debug("tree built")

	if s.cache != nil {
		s.cache.Set(ctx, key, t)
	}
	return t, nil
}
