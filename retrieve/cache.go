package retrieve

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/passage"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Cache defaults.
const (
	DefaultTTL           = 600 * time.Second
	DefaultFetchTimeout  = 10 * time.Second
	DefaultRetryInterval = 30 * time.Second
)

// Ensure Cache implements passage.StatusService at compile time.
var _ passage.StatusService = (*Cache)(nil)

// Cache owns the live Snapshot and rebuilds it lazily once it is older
// than the TTL. Rebuilds are single-flight; the live snapshot is swapped
// atomically and survives any failed rebuild.
type Cache struct {
	source  passage.PageSource
	builder *Builder

	ttl           time.Duration
	fetchTimeout  time.Duration
	retryInterval time.Duration
	serveStale    bool
	logger        *slog.Logger
	now           func() time.Time

	snap     atomic.Pointer[Snapshot]
	group    singleflight.Group
	inflight atomic.Bool
	failing  atomic.Bool
	limiter  *rate.Limiter
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL sets how long a snapshot stays fresh.
func WithTTL(d time.Duration) CacheOption {
	return func(c *Cache) { c.ttl = d }
}

// WithFetchTimeout bounds a single rebuild, page loading included.
func WithFetchTimeout(d time.Duration) CacheOption {
	return func(c *Cache) { c.fetchTimeout = d }
}

// WithRetryInterval sets the minimum gap between rebuild attempts after a
// failed one.
func WithRetryInterval(d time.Duration) CacheOption {
	return func(c *Cache) { c.retryInterval = d }
}

// WithServeStale controls whether callers arriving during a rebuild get the
// existing snapshot immediately instead of waiting. Defaults to true.
func WithServeStale(v bool) CacheOption {
	return func(c *Cache) { c.serveStale = v }
}

// WithLogger sets the logger for refresh outcomes.
func WithLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) { c.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache returns a Cache that loads pages from source and builds
// snapshots with builder.
func NewCache(source passage.PageSource, builder *Builder, opts ...CacheOption) *Cache {
	c := &Cache{
		source:        source,
		builder:       builder,
		ttl:           DefaultTTL,
		fetchTimeout:  DefaultFetchTimeout,
		retryInterval: DefaultRetryInterval,
		serveStale:    true,
		logger:        slog.New(slog.DiscardHandler),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.builder == nil {
		c.builder = &Builder{}
	}
	c.limiter = rate.NewLimiter(rate.Every(c.retryInterval), 1)
	return c
}

// Current returns the live snapshot without refreshing. It is nil until the
// first successful rebuild.
func (c *Cache) Current() *Snapshot {
	return c.snap.Load()
}

// Status reports the live snapshot's size and refresh time.
func (c *Cache) Status() passage.Status {
	snap := c.snap.Load()
	if snap == nil {
		return passage.Status{}
	}
	return passage.Status{
		Pages:       len(snap.Pages),
		Chunks:      len(snap.Chunks),
		RefreshedAt: snap.RefreshedAt,
	}
}

// EnsureFresh returns a snapshot no older than the TTL, rebuilding it when
// needed. When the rebuild fails the previous snapshot, possibly nil, is
// returned together with the error; it stays live. While a rebuild is
// throttled after a failure, the previous snapshot is returned with no
// error.
func (c *Cache) EnsureFresh(ctx context.Context) (*Snapshot, error) {
	now := c.now()
	cur := c.snap.Load()
	if cur != nil && cur.Age(now) < c.ttl {
		return cur, nil
	}
	if cur != nil && c.serveStale && c.inflight.Load() {
		return cur, nil
	}
	if c.failing.Load() && !c.limiter.AllowN(now, 1) {
		return cur, nil
	}

	ch := c.group.DoChan("refresh", func() (any, error) {
		return c.refresh(ctx)
	})
	select {
	case res := <-ch:
		snap, _ := res.Val.(*Snapshot)
		return snap, res.Err
	case <-ctx.Done():
		return cur, ctx.Err()
	}
}

// refresh runs at most once at a time. Its context is detached from the
// triggering caller so that caller going away does not abort the rebuild
// others may be waiting on.
func (c *Cache) refresh(ctx context.Context) (*Snapshot, error) {
	c.inflight.Store(true)
	defer c.inflight.Store(false)

	now := c.now()
	cur := c.snap.Load()
	if cur != nil && cur.Age(now) < c.ttl {
		return cur, nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
	defer cancel()

	begin := time.Now()
	pages, err := c.source.LoadPages(ctx)
	if err != nil {
		return c.fail(now, cur, err)
	}

	fp := Fingerprint(pages)
	if cur != nil && cur.Fingerprint == fp {
		next := cur.restamp(now)
		c.snap.Store(next)
		c.failing.Store(false)
		c.logger.Info("corpus unchanged", "pages", len(next.Pages), "chunks", len(next.Chunks), "duration", time.Since(begin))
		return next, nil
	}

	next, err := c.builder.Build(ctx, pages)
	if next != nil {
		next.RefreshedAt = now
		next.Fingerprint = fp
	}
	if err != nil {
		if passage.ErrorCode(err) == passage.ENOTFOUND && cur.Empty() {
			c.snap.Store(next)
			c.failing.Store(false)
			c.logger.Warn("corpus refreshed", "pages", len(next.Pages), "chunks", 0, "duration", time.Since(begin))
			return next, nil
		}
		return c.fail(now, cur, err)
	}

	c.snap.Store(next)
	c.failing.Store(false)
	c.logger.Info("corpus refreshed",
		"pages", len(next.Pages),
		"chunks", len(next.Chunks),
		"vocabulary", next.Model.Size(),
		"duration", time.Since(begin),
	)
	return next, nil
}

// fail records a failed rebuild so the next attempt is throttled, and
// keeps cur live.
func (c *Cache) fail(now time.Time, cur *Snapshot, err error) (*Snapshot, error) {
	c.failing.Store(true)
	c.limiter.AllowN(now, 1)
	c.logger.Warn("corpus refresh failed", "err", err, "stale", cur != nil)
	return cur, err
}
