// Package media stores files uploaded through the editor's media button.
package media

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/hidden-content/pkg/hiddencontent"
)

// DefaultURLPrefix is where the HTTP host serves media bytes.
const DefaultURLPrefix = "/media/"

// ErrEmptyUpload is returned for zero-byte uploads.
var ErrEmptyUpload = errors.New("empty upload")

// Library implements hiddencontent.MediaLibrary on top of a BlobStore. Each
// item is stored as two objects: the bytes and a JSON sidecar.
type Library struct {
	store     hiddencontent.BlobStore
	urlPrefix string
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Library
type Option func(*Library)

// WithURLPrefix sets the public URL prefix for media items
func WithURLPrefix(prefix string) Option {
	return func(l *Library) {
		l.urlPrefix = prefix
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		l.logger = logger
	}
}

// New creates a media library over store
func New(store hiddencontent.BlobStore, opts ...Option) *Library {
	l := &Library{
		store:     store,
		urlPrefix: DefaultURLPrefix,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ObjectKey returns the sharded key for id: media/ab/cd/abcd...
func ObjectKey(id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return path.Join("media", hex[0:2], hex[2:4], hex)
}

// Inline reports whether mimeType may be rendered by the browser from the
// site's origin. Everything else is served as an attachment.
func Inline(mimeType string) bool {
	switch t := baseMediaType(mimeType); {
	case t == "image/png", t == "image/jpeg", t == "image/gif", t == "image/webp", t == "image/bmp":
		return true
	case t == "application/pdf":
		return true
	case strings.HasPrefix(t, "audio/"), strings.HasPrefix(t, "video/"):
		return true
	}
	return false
}

func baseMediaType(mimeType string) string {
	t, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(t))
}

func sameMediaType(a, b string) bool {
	return baseMediaType(a) == baseMediaType(b)
}

func metaKey(id uuid.UUID) string {
	return ObjectKey(id) + ".json"
}

// Upload stores the bytes of req and returns the new item.
func (l *Library) Upload(ctx context.Context, req hiddencontent.UploadMediaRequest) (*hiddencontent.MediaItem, error) {
	if req.Reader == nil {
		return nil, ErrEmptyUpload
	}

	// Peek enough bytes to sniff the type without buffering the whole file.
	br := bufio.NewReaderSize(req.Reader, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyUpload
	}

	// The declared type is only logged; what gets stored and served is what
	// the bytes look like.
	mimeType := http.DetectContentType(head)
	if req.MimeType != "" && !sameMediaType(req.MimeType, mimeType) {
		l.logger.Debug("Declared media type ignored", "declared", req.MimeType, "detected", mimeType)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate media id: %w", err)
	}

	counter := &countingReader{r: br}
	key := ObjectKey(id)
	if err := l.store.Upload(ctx, key, mimeType, counter); err != nil {
		return nil, fmt.Errorf("failed to store media: %w", err)
	}

	fileName := req.FileName
	if fileName != "" {
		fileName = path.Base(fileName)
	}

	item := &hiddencontent.MediaItem{
		ID:         id,
		ObjectKey:  key,
		FileName:   fileName,
		MimeType:   mimeType,
		Size:       counter.n,
		URL:        l.urlPrefix + id.String(),
		UploadedBy: req.UploadedBy,
		CreatedAt:  l.now().UTC(),
	}

	sidecar, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to encode media metadata: %w", err)
	}
	if err := l.store.Upload(ctx, metaKey(id), "application/json", bytes.NewReader(sidecar)); err != nil {
		if delErr := l.store.Delete(ctx, key); delErr != nil {
			l.logger.Warn("Failed to remove orphaned media", "media_id", id, "error", delErr)
		}
		return nil, fmt.Errorf("failed to store media metadata: %w", err)
	}

	l.logger.Info("Media uploaded", "media_id", id, "mime_type", mimeType, "size", item.Size, "user_id", req.UploadedBy)
	return item, nil
}

// Open returns the item and a reader over its bytes.
func (l *Library) Open(ctx context.Context, id uuid.UUID) (*hiddencontent.MediaItem, io.ReadCloser, error) {
	item, err := l.Stat(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := l.store.Download(ctx, item.ObjectKey)
	if errors.Is(err, hiddencontent.ErrObjectNotFound) {
		return nil, nil, hiddencontent.ErrMediaNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return item, rc, nil
}

// Stat returns the stored metadata of id.
func (l *Library) Stat(ctx context.Context, id uuid.UUID) (*hiddencontent.MediaItem, error) {
	rc, err := l.store.Download(ctx, metaKey(id))
	if errors.Is(err, hiddencontent.ErrObjectNotFound) {
		return nil, hiddencontent.ErrMediaNotFound
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var item hiddencontent.MediaItem
	if err := json.NewDecoder(rc).Decode(&item); err != nil {
		return nil, fmt.Errorf("failed to decode media metadata: %w", err)
	}
	return &item, nil
}

// Delete removes the item bytes and metadata.
func (l *Library) Delete(ctx context.Context, id uuid.UUID) error {
	if err := l.store.Delete(ctx, ObjectKey(id)); err != nil {
		return err
	}
	return l.store.Delete(ctx, metaKey(id))
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
