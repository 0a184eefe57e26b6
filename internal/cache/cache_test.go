package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zulandar/stagedocs/internal/ident"
	"github.com/zulandar/stagedocs/internal/tree"
)

func setupTestCache(t *testing.T) (*TreeCache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	c, err := NewTreeCache("redis://"+s.Addr(), time.Minute, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, s
}

func sampleTree() tree.Tree {
	cid := "c1"
	return tree.Tree{
		"Waterfront": {{
			ID: "phase-1", Name: "Phase 1", FileCount: 1,
			Children: []tree.Leaf{{
				ID: "pr1", Name: "Design", ChecklistID: &cid, ChecklistIDStr: &cid, FileCount: 1,
				Documents: tree.Documents{
					Checklist: []tree.DocRef{{Bucket: "f1", DisplayName: "plan.pdf", Key: "f1"}},
					General:   []tree.DocRef{},
					Final:     []tree.DocRef{{Bucket: "f1", DisplayName: "plan.pdf", Key: "f1"}},
				},
			}},
		}},
	}
}

func TestNewTreeCache_BadURL(t *testing.T) {
	_, err := NewTreeCache("not a url", time.Minute, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestTreeCache_RoundTrip(t *testing.T) {
	c, s := setupTestCache(t)
	ctx := context.Background()
	key := tree.DefaultOptions().CacheKey(101)

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	want := sampleTree()
	c.Set(ctx, key, want)
	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	require.Len(t, got["Waterfront"], 1)
	assert.Equal(t, want["Waterfront"][0].Children[0].Documents, got["Waterfront"][0].Children[0].Documents)
	assert.Equal(t, "c1", *got["Waterfront"][0].Children[0].ChecklistID)

	assert.Equal(t, time.Minute, s.TTL(key))
	s.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok, "entry expires with its TTL")
}

func TestTreeCache_EmptyTree(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()
	c.Set(ctx, "k", tree.Tree{})
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTreeCache_CorruptEntryDropped(t *testing.T) {
	c, s := setupTestCache(t)
	require.NoError(t, s.Set("k", "{not json"))

	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.False(t, s.Exists("k"))
}

func TestTreeCache_OutageIsAMiss(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	c := NewTreeCacheWithClient(redis.NewClient(&redis.Options{Addr: s.Addr()}), 0, nil)
	defer c.Close()
	assert.Equal(t, DefaultTTL, c.ttl)

	s.Close()
	ctx := context.Background()
	c.Set(ctx, "k", sampleTree())
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Error(t, c.Ping(ctx))
}

type fakeSource struct {
	mu    sync.Mutex
	cache *TreeCache
	users []ident.UserID
	fail  map[ident.UserID]error
}

func (f *fakeSource) ForUser(ctx context.Context, user ident.UserID, opts tree.Options) (tree.Tree, error) {
	f.mu.Lock()
	f.users = append(f.users, user)
	err := f.fail[user]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	t := sampleTree()
	f.cache.Set(ctx, opts.CacheKey(user), t)
	return t, nil
}

func TestParseSchedule(t *testing.T) {
	_, err := ParseSchedule("*/15 * * * *")
	assert.NoError(t, err)
	_, err = ParseSchedule("@hourly")
	assert.NoError(t, err)
	_, err = ParseSchedule("every tuesday")
	assert.Error(t, err)
}

func TestNewWarmer_Validation(t *testing.T) {
	c, _ := setupTestCache(t)
	_, err := NewWarmer(WarmerConfig{Cache: c, Schedule: "@hourly"})
	assert.Error(t, err, "source required")

	_, err = NewWarmer(WarmerConfig{Cache: c, Source: &fakeSource{}, Schedule: "@hourly", Users: []int64{0}})
	assert.Error(t, err, "user ids must be positive")
}

func TestWarmer_WarmOnce(t *testing.T) {
	c, s := setupTestCache(t)
	src := &fakeSource{cache: c, fail: map[ident.UserID]error{202: errors.New("store down")}}
	w, err := NewWarmer(WarmerConfig{
		Cache: c, Source: src, Users: []int64{101, 202, 303},
		Schedule: "@every 1h", Options: tree.DefaultOptions(),
	})
	require.NoError(t, err)

	stale := tree.DefaultOptions().CacheKey(202)
	require.NoError(t, s.Set(stale, "{}"))

	n, err := w.WarmOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user 202")
	assert.Equal(t, 2, n)
	assert.Equal(t, []ident.UserID{101, 202, 303}, src.users)

	assert.True(t, s.Exists(tree.DefaultOptions().CacheKey(101)))
	assert.True(t, s.Exists(tree.DefaultOptions().CacheKey(303)))
	assert.False(t, s.Exists(stale), "failed rebuild leaves no stale entry")
}

func TestWarmer_StartStop(t *testing.T) {
	c, _ := setupTestCache(t)
	w, err := NewWarmer(WarmerConfig{Cache: c, Source: &fakeSource{cache: c}, Users: []int64{101}, Schedule: "0 3 * * *"})
	require.NoError(t, err)

	from := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC), w.Next(from))

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	w.Start(ctx)
	cancel()
	w.Stop()
	w.Stop()
}
