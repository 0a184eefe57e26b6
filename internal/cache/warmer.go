package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/zulandar/stagedocs/internal/ident"
	"github.com/zulandar/stagedocs/internal/telemetry"
	"github.com/zulandar/stagedocs/internal/tree"
)

// scheduleParser accepts 5-field expressions and descriptors like @hourly.
var scheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// TreeSource builds trees; tree.Service satisfies it.
type TreeSource interface {
	ForUser(ctx context.Context, user ident.UserID, opts tree.Options) (tree.Tree, error)
}

// WarmerConfig configures a Warmer.
type WarmerConfig struct {
	Cache    *TreeCache
	Source   TreeSource
	Users    []int64
	Schedule string
	Options  tree.Options
	Timeout  time.Duration // per user; defaults to 1 minute
	Logger   *logrus.Logger
}

// Warmer rebuilds the cached default tree for a fixed set of users on a
// cron schedule.
type Warmer struct {
	cache   *TreeCache
	source  TreeSource
	users   []ident.UserID
	sched   cron.Schedule
	expr    string
	opts    tree.Options
	timeout time.Duration
	log     *logrus.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// ParseSchedule validates a warm schedule expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	s, err := scheduleParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("cache: warm schedule %q: %w", expr, err)
	}
	return s, nil
}

// NewWarmer validates cfg and returns an idle warmer.
func NewWarmer(cfg WarmerConfig) (*Warmer, error) {
	if cfg.Cache == nil || cfg.Source == nil {
		return nil, fmt.Errorf("cache: warmer needs a cache and a tree source")
	}
	sched, err := ParseSchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}
	users := make([]ident.UserID, 0, len(cfg.Users))
	for _, u := range cfg.Users {
		id, err := ident.ParseUserID(u)
		if err != nil {
			return nil, fmt.Errorf("cache: warm user: %w", err)
		}
		users = append(users, id)
	}
	w := &Warmer{
		cache:   cfg.Cache,
		source:  cfg.Source,
		users:   users,
		sched:   sched,
		expr:    cfg.Schedule,
		opts:    cfg.Options,
		timeout: cfg.Timeout,
		log:     cfg.Logger,
	}
	if w.timeout <= 0 {
		w.timeout = time.Minute
	}
	if w.log == nil {
		w.log = telemetry.DiscardLogger()
	}
	return w, nil
}

// Next reports when the warmer fires after t.
func (w *Warmer) Next(t time.Time) time.Time { return w.sched.Next(t) }

// Start schedules warming until ctx is done or Stop is called.
func (w *Warmer) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return
	}
	w.cron = cron.New(cron.WithParser(scheduleParser))
	w.cron.Schedule(w.sched, cron.FuncJob(func() {
		if _, err := w.WarmOnce(ctx); err != nil {
			w.log.WithError(err).Warn("cache warm incomplete")
		}
	}))
	w.cron.Start()
	w.log.WithFields(logrus.Fields{"schedule": w.expr, "users": len(w.users)}).Info("cache warmer started")

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
}

// Stop halts scheduling and waits for a running warm to finish.
func (w *Warmer) Stop() {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	w.log.Info("cache warmer stopped")
}

// WarmOnce rebuilds every configured user's tree now and returns how many
// succeeded. Failures do not stop the remaining users.
func (w *Warmer) WarmOnce(ctx context.Context) (int, error) {
	var (
		warmed int
		errs   []error
	)
	for _, u := range w.users {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := w.warm(ctx, u); err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", u, err))
			continue
		}
		warmed++
	}
	w.log.WithFields(logrus.Fields{"warmed": warmed, "failed": len(errs)}).Debug("cache warm pass")
	return warmed, errors.Join(errs...)
}

func (w *Warmer) warm(ctx context.Context, user ident.UserID) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	w.cache.Delete(ctx, w.opts.CacheKey(user))
	_, err := w.source.ForUser(ctx, user, w.opts)
	return err
}
