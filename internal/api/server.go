// Package api serves the document tree, file content and comment endpoints
// over HTTP.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zulandar/stagedocs/internal/comments"
	"github.com/zulandar/stagedocs/internal/docstore"
	"github.com/zulandar/stagedocs/internal/resolve"
	"github.com/zulandar/stagedocs/internal/telemetry"
	"github.com/zulandar/stagedocs/internal/tree"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Store    docstore.Store
	Trees    *tree.Service
	Content  *resolve.Content
	Comments *comments.Service
	// TreeDefaults seeds tree requests before query overrides; nil means
	// tree.DefaultOptions().
	TreeDefaults *tree.Options
	Port         int
	Mode         string // gin mode; release by default
	Logger       *logrus.Logger
	Tracer       trace.Tracer
	Metrics      *telemetry.Metrics
	Out          io.Writer
}

func (o *StartOpts) validate() error {
	switch {
	case o.Store == nil:
		return fmt.Errorf("api: store is required")
	case o.Trees == nil:
		return fmt.Errorf("api: tree service is required")
	case o.Content == nil:
		return fmt.Errorf("api: content resolver is required")
	case o.Comments == nil:
		return fmt.Errorf("api: comment service is required")
	}
	if o.Logger == nil {
		o.Logger = telemetry.DiscardLogger()
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer(telemetry.ScopeName)
	}
	if o.Metrics == nil {
		o.Metrics = telemetry.NoopMetrics()
	}
	return nil
}

// NewRouter builds the gin engine with middleware and routes installed.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		securityHeaders(),
		requestID(),
		requestTelemetry(opts.Tracer, opts.Metrics),
		requestLogger(opts.Logger),
	)
	registerRoutes(router, &handlers{
		store:    opts.Store,
		trees:    opts.Trees,
		content:  opts.Content,
		comments: opts.Comments,
		defaults: treeDefaults(opts.TreeDefaults),
		metrics:  opts.Metrics,
		log:      opts.Logger,
	})
	return router, nil
}

func treeDefaults(o *tree.Options) tree.Options {
	if o == nil {
		return tree.DefaultOptions()
	}
	d := *o
	d.ProjectID = nil
	return d
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "stagedocs API listening on :%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}
