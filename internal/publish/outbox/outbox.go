// Package outbox is the dry-run publisher. Posts and chart images are written under a
// directory per day instead of being sent anywhere.
package outbox

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"progress-pulse/internal/interfaces"
	"progress-pulse/internal/publish"
	"progress-pulse/internal/types"

	"github.com/google/uuid"
)

const (
	dayLayout  = "2006-01-02"
	postsFile  = "posts.jsonl"
	timeLayout = time.RFC3339
)

// Entry is one line of posts.jsonl
type Entry struct {
	Time  string `json:"time"`
	ID    string `json:"id"`
	Text  string `json:"text"`
	Media string `json:"media,omitempty"`
	Chars int    `json:"chars"`
}

type Outbox struct {
	dir string
	day time.Time // directory key; zero means the day of the write
	now func() time.Time

	mu    sync.Mutex
	media map[string]string // handle -> image path
}

var _ interfaces.Publisher = (*Outbox)(nil)

// Option configures an Outbox
type Option func(*Outbox)

// WithDay files posts and images under the directory of day instead of the day they are written.
func WithDay(day time.Time) Option {
	return func(o *Outbox) {
		o.day = day
	}
}

func New(dir string, opts ...Option) *Outbox {
	if dir == "" {
		dir = "out"
	}
	o := &Outbox{
		dir:   dir,
		now:   time.Now,
		media: make(map[string]string),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Dir returns the root directory of the outbox
func (o *Outbox) Dir() string {
	return o.dir
}

func (o *Outbox) Verify(ctx context.Context) (types.Account, error) {
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return types.Account{}, fmt.Errorf("outbox not writable: %w", err)
	}
	return types.Account{ID: "outbox", Name: "Local outbox", Handle: o.dir}, nil
}

func (o *Outbox) UploadMedia(ctx context.Context, name string, data []byte) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := uuid.NewString()
	p := filepath.Join(o.dayDir(), "chart-"+id+filepath.Ext(name))
	if filepath.Ext(name) == "" {
		p += ".png"
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	o.media[id] = p
	return id, nil
}

func (o *Outbox) Post(ctx context.Context, text, mediaID string) (types.PostResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	media := ""
	if mediaID != "" {
		p, ok := o.media[mediaID]
		if !ok {
			return types.PostResult{}, fmt.Errorf("%w: %s", publish.ErrUnknownMedia, mediaID)
		}
		media = p
	}

	e := Entry{
		Time:  o.now().Format(timeLayout),
		ID:    uuid.NewString(),
		Text:  text,
		Media: media,
		Chars: len([]rune(text)),
	}
	p := filepath.Join(o.dayDir(), postsFile)
	if err := appendJSONLine(p, e); err != nil {
		return types.PostResult{}, err
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	return types.PostResult{
		Platform: publish.PlatformOutbox,
		ID:       e.ID,
		URL:      "file://" + filepath.ToSlash(abs),
		TextOnly: mediaID == "",
	}, nil
}

func (o *Outbox) dayDir() string {
	day := o.day
	if day.IsZero() {
		day = o.now()
	}
	return filepath.Join(o.dir, day.Format(dayLayout))
}

func appendJSONLine(p string, v any) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// ReadEntries returns the posts written on day, oldest first
func (o *Outbox) ReadEntries(day time.Time) ([]Entry, error) {
	f, err := os.Open(filepath.Join(o.dir, day.Format(dayLayout), postsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	dec := json.NewDecoder(f)
	for dec.More() {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return entries, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// CompressOlder gzips every file in day directories older than retentionDays.
// Zero keeps everything uncompressed.
func (o *Outbox) CompressOlder(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	days, err := os.ReadDir(o.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	now := o.now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -retentionDays)
	compressed := 0
	for _, d := range days {
		if !d.IsDir() {
			continue
		}
		day, err := time.ParseInLocation(dayLayout, d.Name(), now.Location())
		if err != nil || !day.Before(cutoff) {
			continue
		}
		files, err := os.ReadDir(filepath.Join(o.dir, d.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) == ".gz" {
				continue
			}
			if err := gzipFile(filepath.Join(o.dir, d.Name(), f.Name())); err != nil {
				return compressed, err
			}
			compressed++
		}
	}
	return compressed, nil
}

// gzipFile replaces p with p.gz. An existing archive wins and the original is removed.
func gzipFile(p string) error {
	gz := p + ".gz"
	if _, err := os.Stat(gz); err == nil {
		return os.Remove(p)
	}

	in, err := os.Open(p)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(gz)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	_ = in.Close()
	return os.Remove(p)
}
