// Package publish uploads finished renders to object storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrUnsupportedDestination is returned for destinations that are not
// s3:// or gs:// URLs.
var ErrUnsupportedDestination = errors.New("unsupported publish destination")

// Publisher uploads local files to a remote destination
type Publisher interface {
	// Publish uploads the file at localPath
	Publish(ctx context.Context, localPath string) error
	// Close releases the publisher's client connections
	Close() error
}

// Destination is a parsed object storage URL
type Destination struct {
	Scheme string // "s3" or "gs"
	Bucket string
	Key    string // Object key; empty or ending in "/" means a prefix
}

func (d Destination) String() string {
	return d.Scheme + "://" + d.Bucket + "/" + d.Key
}

// ObjectKey returns the key to upload localPath under. Prefix destinations
// get the file's base name appended.
func (d Destination) ObjectKey(localPath string) string {
	if d.Key == "" || strings.HasSuffix(d.Key, "/") {
		return d.Key + filepath.Base(localPath)
	}
	return d.Key
}

// ParseDestination parses "s3://bucket/key" and "gs://bucket/object" URLs
func ParseDestination(dest string) (Destination, error) {
	u, err := url.Parse(dest)
	if err != nil {
		return Destination{}, fmt.Errorf("while parsing destination %q: %w", dest, err)
	}

	switch u.Scheme {
	case "s3", "gs":
	default:
		return Destination{}, fmt.Errorf("%w: %q", ErrUnsupportedDestination, dest)
	}
	if u.Host == "" {
		return Destination{}, fmt.Errorf("%w: %q has no bucket", ErrUnsupportedDestination, dest)
	}

	return Destination{
		Scheme: u.Scheme,
		Bucket: u.Host,
		Key:    strings.TrimPrefix(u.Path, "/"),
	}, nil
}

// Options configures the storage clients created by New
type Options struct {
	S3Endpoint string // Custom S3-compatible endpoint, uses path-style addressing
	S3Region   string
}

// New creates a publisher for dest, which must be an s3:// or gs:// URL
func New(ctx context.Context, dest string, opts Options) (Publisher, error) {
	d, err := ParseDestination(dest)
	if err != nil {
		return nil, err
	}

	switch d.Scheme {
	case "s3":
		return newS3Publisher(d, opts)
	case "gs":
		return newGCSPublisher(ctx, d)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedDestination, dest)
}

// contentType returns the MIME type for a render output file
func contentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".ppm":
		return "image/x-portable-pixmap"
	default:
		return "application/octet-stream"
	}
}
