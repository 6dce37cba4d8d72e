package publish

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/golang/glog"
)

// objectWriterFunc opens a writer for a new object
type objectWriterFunc func(ctx context.Context, bucket, object, contentType string) io.WriteCloser

type gcsPublisher struct {
	client    *storage.Client
	newWriter objectWriterFunc
	dest      Destination
}

func newGCSPublisher(ctx context.Context, dest Destination) (*gcsPublisher, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("while creating GCS client: %w", err)
	}

	newWriter := func(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}
	return &gcsPublisher{client: client, newWriter: newWriter, dest: dest}, nil
}

func (p *gcsPublisher) Publish(ctx context.Context, localPath string) error {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("while opening %s: %w", localPath, err)
	}
	defer f.Close()

	object := p.dest.ObjectKey(localPath)
	w := p.newWriter(ctx, p.dest.Bucket, object, contentType(localPath))

	size, err := io.Copy(w, f)
	if err != nil {
		w.Close()
		return fmt.Errorf("while uploading %s to gs://%s/%s: %w", localPath, p.dest.Bucket, object, err)
	}
	// The object is only committed once the writer closes
	if err := w.Close(); err != nil {
		return fmt.Errorf("while finalizing gs://%s/%s: %w", p.dest.Bucket, object, err)
	}

	glog.Infof("Uploaded %s to gs://%s/%s (%d bytes)", localPath, p.dest.Bucket, object, size)
	return nil
}

func (p *gcsPublisher) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}
