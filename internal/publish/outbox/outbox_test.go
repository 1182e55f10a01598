package outbox

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"progress-pulse/internal/publish"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 7, 2, 9, 30, 0, 0, time.UTC)

func newTestOutbox(t *testing.T) *Outbox {
	t.Helper()
	o := New(t.TempDir())
	o.now = func() time.Time { return fixedNow }
	return o
}

func TestOutboxPostWithMedia(t *testing.T) {
	o := newTestOutbox(t)
	ctx := context.Background()

	acct, err := o.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, "outbox", acct.ID)

	id, err := o.UploadMedia(ctx, "chart.png", []byte("png-bytes"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	img := filepath.Join(o.Dir(), "2025-07-02", "chart-"+id+".png")
	b, err := os.ReadFile(img)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))

	res, err := o.Post(ctx, "hello 🎉", id)
	require.NoError(t, err)
	assert.Equal(t, publish.PlatformOutbox, res.Platform)
	assert.False(t, res.TextOnly)
	assert.True(t, strings.HasPrefix(res.URL, "file://"))
	assert.True(t, strings.HasSuffix(res.URL, "2025-07-02/posts.jsonl"))

	entries, err := o.ReadEntries(fixedNow)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, res.ID, entries[0].ID)
	assert.Equal(t, "hello 🎉", entries[0].Text)
	assert.Equal(t, img, entries[0].Media)
	assert.Equal(t, 7, entries[0].Chars)
	assert.Equal(t, "2025-07-02T09:30:00Z", entries[0].Time)
}

func TestOutboxAppends(t *testing.T) {
	o := newTestOutbox(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two"} {
		res, err := o.Post(ctx, text, "")
		require.NoError(t, err)
		assert.True(t, res.TextOnly)
	}

	entries, err := o.ReadEntries(fixedNow)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "one", entries[0].Text)
	assert.Equal(t, "two", entries[1].Text)
	assert.Empty(t, entries[1].Media)
}

func TestOutboxWithDay(t *testing.T) {
	day := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	o := New(t.TempDir(), WithDay(day))
	o.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	id, err := o.UploadMedia(ctx, "chart.png", []byte("png"))
	require.NoError(t, err)
	res, err := o.Post(ctx, "dated", id)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.URL, "2025-01-08/posts.jsonl"))
	assert.FileExists(t, filepath.Join(o.Dir(), "2025-01-08", "chart-"+id+".png"))
	assert.NoDirExists(t, filepath.Join(o.Dir(), "2025-07-02"))

	entries, err := o.ReadEntries(day)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2025-07-02T09:30:00Z", entries[0].Time, "entry time is the write time")
}

func TestOutboxUnknownMedia(t *testing.T) {
	_, err := newTestOutbox(t).Post(context.Background(), "text", "nope")
	assert.ErrorIs(t, err, publish.ErrUnknownMedia)
}

func TestCompressOlder(t *testing.T) {
	o := newTestOutbox(t)

	write := func(day, name, content string) {
		p := filepath.Join(o.Dir(), day, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	write("2025-06-01", "posts.jsonl", `{"id":"old"}`)
	write("2025-06-01", "chart-a.png", "img")
	write("2025-06-30", "posts.jsonl", `{"id":"recent"}`)
	write("notes", "readme.txt", "keep")

	n, err := o.CompressOlder(0)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = o.CompressOlder(7)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NoFileExists(t, filepath.Join(o.Dir(), "2025-06-01", "posts.jsonl"))
	assert.FileExists(t, filepath.Join(o.Dir(), "2025-06-01", "chart-a.png.gz"))
	assert.FileExists(t, filepath.Join(o.Dir(), "2025-06-30", "posts.jsonl"))
	assert.FileExists(t, filepath.Join(o.Dir(), "notes", "readme.txt"))

	f, err := os.Open(filepath.Join(o.Dir(), "2025-06-01", "posts.jsonl.gz"))
	require.NoError(t, err)
	defer f.Close()
	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	b, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"old"}`, string(b))

	n, err = o.CompressOlder(7)
	require.NoError(t, err)
	assert.Zero(t, n, "already compressed files are skipped")
}

func TestCompressOlderMissingDir(t *testing.T) {
	o := New(filepath.Join(t.TempDir(), "missing"))
	n, err := o.CompressOlder(3)
	require.NoError(t, err)
	assert.Zero(t, n)
}
