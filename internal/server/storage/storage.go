// Package storage persists uploaded complaint attachments, either on the
// local filesystem or in an S3-compatible bucket.
package storage

import (
	"context"
	"io"
)

// Storage saves attachments and resolves them to browser-usable URLs.
type Storage interface {
	// Save writes r under name and returns the path to record on the
	// complaint. name must already be unique and sanitised.
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// URL returns a link the admin page can use to fetch path.
	URL(ctx context.Context, path string) (string, error)
}
