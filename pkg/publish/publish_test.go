package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDestination(t *testing.T) {
	tests := []struct {
		dest     string
		expected Destination
	}{
		{"s3://renders/final.png", Destination{Scheme: "s3", Bucket: "renders", Key: "final.png"}},
		{"s3://renders/nightly/", Destination{Scheme: "s3", Bucket: "renders", Key: "nightly/"}},
		{"gs://my-bucket/a/b/c.ppm", Destination{Scheme: "gs", Bucket: "my-bucket", Key: "a/b/c.ppm"}},
		{"gs://my-bucket", Destination{Scheme: "gs", Bucket: "my-bucket", Key: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			got, err := ParseDestination(tt.dest)
			if err != nil {
				t.Fatalf("ParseDestination: %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Unexpected destination (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDestination_Unsupported(t *testing.T) {
	for _, dest := range []string{
		"renders/final.png",
		"https://example.com/final.png",
		"file:///tmp/final.png",
		"s3:///no-bucket.png",
	} {
		t.Run(dest, func(t *testing.T) {
			if _, err := ParseDestination(dest); !errors.Is(err, ErrUnsupportedDestination) {
				t.Errorf("Expected ErrUnsupportedDestination, got %v", err)
			}
		})
	}
}

func TestDestination_ObjectKey(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"exact/name.png", "exact/name.png"},
		{"prefix/", "prefix/render.png"},
		{"", "render.png"},
	}

	for _, tt := range tests {
		d := Destination{Scheme: "s3", Bucket: "b", Key: tt.key}
		if got := d.ObjectKey("/tmp/out/render.png"); got != tt.expected {
			t.Errorf("ObjectKey with key %q = %q, want %q", tt.key, got, tt.expected)
		}
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"image.png":    "image/png",
		"IMAGE.PNG":    "image/png",
		"image.ppm":    "image/x-portable-pixmap",
		"image.tiff":   "application/octet-stream",
		"no-extension": "application/octet-stream",
	}
	for path, expected := range tests {
		if got := contentType(path); got != expected {
			t.Errorf("contentType(%q) = %q, want %q", path, got, expected)
		}
	}
}

func TestNew_UnsupportedDestination(t *testing.T) {
	if _, err := New(context.Background(), "ftp://host/file.png", Options{}); !errors.Is(err, ErrUnsupportedDestination) {
		t.Errorf("Expected ErrUnsupportedDestination, got %v", err)
	}
}

func TestNew_S3(t *testing.T) {
	p, err := New(context.Background(), "s3://renders/out/", Options{S3Region: "us-east-1", S3Endpoint: "http://localhost:9000"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	s3p, ok := p.(*s3Publisher)
	if !ok {
		t.Fatalf("Expected an S3 publisher, got %T", p)
	}
	if s3p.dest.Bucket != "renders" || s3p.dest.Key != "out/" {
		t.Errorf("Unexpected destination %v", s3p.dest)
	}
}
