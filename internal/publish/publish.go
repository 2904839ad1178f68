// Package publish uploads the generated site to an S3-compatible bucket,
// skipping objects whose content is already in place.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/starford/kbsite/internal/storage"
)

const defaultContentType = "application/octet-stream"

// ObjectStore is the subset of bucket operations the publisher needs.
type ObjectStore interface {
	ETag(ctx context.Context, bucket, key string) (string, bool, error)
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
}

// Stats counts what a publish run did.
type Stats struct {
	Uploaded  int
	Unchanged int
}

// Publisher mirrors an output directory into a bucket.
type Publisher struct {
	objects ObjectStore
	bucket  string
	prefix  string
	logger  *slog.Logger
}

// New creates a Publisher. prefix is prepended to every object key.
func New(objects ObjectStore, bucket, prefix string, logger *slog.Logger) *Publisher {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &Publisher{objects: objects, bucket: bucket, prefix: prefix, logger: logger}
}

// Run uploads every file in src whose MD5 differs from the remote ETag.
// Remote objects without a local counterpart are left alone.
func (p *Publisher) Run(ctx context.Context, src storage.Provider) (Stats, error) {
	var stats Stats
	files, err := src.List("")
	if err != nil {
		return stats, fmt.Errorf("publish: list output: %w", err)
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		key := p.prefix + f.Path
		etag, found, err := p.objects.ETag(ctx, p.bucket, key)
		if err != nil {
			return stats, fmt.Errorf("publish: head %s: %w", key, err)
		}
		if found && etag == f.Checksum {
			stats.Unchanged++
			continue
		}
		data, err := src.Read(f.Path)
		if err != nil {
			return stats, fmt.Errorf("publish: read %s: %w", f.Path, err)
		}
		if err := p.objects.Put(ctx, p.bucket, key, bytes.NewReader(data), ContentType(f.Path)); err != nil {
			return stats, fmt.Errorf("publish: put %s: %w", key, err)
		}
		p.logger.Debug("publish: uploaded", slog.String("key", key))
		stats.Uploaded++
	}
	p.logger.Info("publish: complete",
		slog.String("bucket", p.bucket),
		slog.Int("uploaded", stats.Uploaded),
		slog.Int("unchanged", stats.Unchanged))
	return stats, nil
}

// ContentType guesses the MIME type from the file extension.
func ContentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return defaultContentType
}
