package screenersource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"screener-service/internal/pkg/exceptions"
	"screener-service/internal/pkg/screener"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const nadSchema = `{"screener":"nad","category":"antiaging","questions":[
	{"id":"date_of_birth","text":"Date of birth","type":"date"},
	{"id":"kidney","text":"Kidney disease?","type":"radio","safe":["no"],"flag":["yes"]}
]}`

type countingSource struct {
	inner   *fileSource
	fetches int32
	fail    error
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Fetch(ctx context.Context, screenerType string) ([]byte, error) {
	atomic.AddInt32(&s.fetches, 1)
	if s.fail != nil {
		return nil, s.fail
	}
	return s.inner.Fetch(ctx, screenerType)
}

func (s *countingSource) List(ctx context.Context) ([]string, error) {
	return s.inner.List(ctx)
}

func writeSchema(t *testing.T, dir, name, body string) {
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestFileSource(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeSchema(t, dir, "nad.json", nadSchema)
	writeSchema(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.json"), 0o755))

	src := NewFileSource(dir)

	raw, err := src.Fetch(ctx, "nad")
	require.NoError(t, err)
	assert.JSONEq(t, nadSchema, string(raw))

	_, err = src.Fetch(ctx, "ghost")
	assert.True(t, IsNotFound(err))

	types, err := src.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"nad"}, types)
}

func TestNormalizeType(t *testing.T) {
	got, err := NormalizeType("  GLP1 ")
	require.NoError(t, err)
	assert.Equal(t, "glp1", got)

	for _, bad := range []string{"", "../etc/passwd", "a/b", "glp1.json"} {
		_, err := NormalizeType(bad)
		assert.Error(t, err, bad)
	}
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	newRegistry := func(t *testing.T, ttl time.Duration) (*Registry, *countingSource, string) {
		dir := t.TempDir()
		writeSchema(t, dir, "nad.json", nadSchema)
		writeSchema(t, dir, "broken.json", `{"screener":"broken","questions":[{"id":"a","text":"A","type":"slider"}]}`)
		src := &countingSource{inner: &fileSource{dir: dir}}
		return NewRegistry(src, screener.DefaultRuleTable(), ttl, zap.NewNop()), src, dir
	}

	t.Run("Parses and attaches the profile", func(t *testing.T) {
		reg, _, _ := newRegistry(t, 0)
		sc, profile, err := reg.Get(ctx, "NAD")
		require.NoError(t, err)
		assert.Equal(t, "nad", sc.Type)
		assert.Equal(t, "NAD_Screening", profile.FormType)
	})

	t.Run("Caches until invalidated", func(t *testing.T) {
		reg, src, _ := newRegistry(t, 0)
		_, _, err := reg.Get(ctx, "nad")
		require.NoError(t, err)
		_, _, err = reg.Get(ctx, "nad")
		require.NoError(t, err)
		assert.EqualValues(t, 1, atomic.LoadInt32(&src.fetches))

		reg.Invalidate("nad")
		_, _, err = reg.Get(ctx, "nad")
		require.NoError(t, err)
		assert.EqualValues(t, 2, atomic.LoadInt32(&src.fetches))
	})

	t.Run("Expired entries are refetched", func(t *testing.T) {
		reg, src, _ := newRegistry(t, time.Minute)
		now := time.Now()
		reg.now = func() time.Time { return now }

		_, _, err := reg.Get(ctx, "nad")
		require.NoError(t, err)
		now = now.Add(2 * time.Minute)
		_, _, err = reg.Get(ctx, "nad")
		require.NoError(t, err)
		assert.EqualValues(t, 2, atomic.LoadInt32(&src.fetches))
	})

	t.Run("Stale copy is served when the source fails", func(t *testing.T) {
		reg, src, _ := newRegistry(t, time.Minute)
		now := time.Now()
		reg.now = func() time.Time { return now }

		_, _, err := reg.Get(ctx, "nad")
		require.NoError(t, err)
		now = now.Add(2 * time.Minute)
		src.fail = errors.New("disk on fire")

		sc, _, err := reg.Get(ctx, "nad")
		require.NoError(t, err)
		assert.Equal(t, "nad", sc.Type)

		_, _, err = reg.Get(ctx, "other")
		assert.Error(t, err)
	})

	t.Run("Unknown types get the default screener", func(t *testing.T) {
		reg, _, _ := newRegistry(t, 0)
		sc, profile, err := reg.Get(ctx, "ketamine")
		require.NoError(t, err)
		assert.Equal(t, screener.DefaultScreenerType, sc.Type)
		assert.Equal(t, "default", profile.ScreenerType)
	})

	t.Run("Invalid definitions are configuration errors", func(t *testing.T) {
		reg, _, _ := newRegistry(t, 0)
		_, _, err := reg.Get(ctx, "broken")
		var ce *exceptions.CustomError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 500, ce.StatusCode)
	})
}

func TestLoadRuleTable(t *testing.T) {
	table, err := LoadRuleTable("")
	require.NoError(t, err)
	assert.Equal(t, 18, table.MinimumAge)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("minimum_age: 21\nage_reason: too young\ndefault_profile: d\nprofiles:\n  d:\n    category: general\n"), 0o644))
	table, err = LoadRuleTable(path)
	require.NoError(t, err)
	assert.Equal(t, 21, table.MinimumAge)

	_, err = LoadRuleTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	changed := make(chan string, 4)

	w, err := Watch(dir, zap.NewNop(), func(screenerType string) { changed <- screenerType })
	require.NoError(t, err)
	defer w.Stop()

	writeSchema(t, dir, "NAD.json", nadSchema)
	writeSchema(t, dir, "readme.md", "ignored")

	select {
	case got := <-changed:
		assert.Equal(t, "nad", got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}
