package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// fakeS3 records PutObject calls. Other S3API methods panic.
type fakeS3 struct {
	s3iface.S3API

	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.bucket = aws.StringValue(input.Bucket)
	f.key = aws.StringValue(input.Key)
	f.contentType = aws.StringValue(input.ContentType)
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestS3Publisher_Publish(t *testing.T) {
	path := writeTempFile(t, "render.ppm", "P3\n1 1\n255\n1 2 3\n")
	fake := &fakeS3{}
	p := &s3Publisher{client: fake, dest: Destination{Scheme: "s3", Bucket: "renders", Key: "nightly/"}}

	if err := p.Publish(context.Background(), path); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if fake.bucket != "renders" || fake.key != "nightly/render.ppm" {
		t.Errorf("Uploaded to %s/%s", fake.bucket, fake.key)
	}
	if fake.contentType != "image/x-portable-pixmap" {
		t.Errorf("Unexpected content type %q", fake.contentType)
	}
	if string(fake.body) != "P3\n1 1\n255\n1 2 3\n" {
		t.Errorf("Unexpected body %q", fake.body)
	}
}

func TestS3Publisher_Errors(t *testing.T) {
	errDenied := errors.New("access denied")
	p := &s3Publisher{client: &fakeS3{err: errDenied}, dest: Destination{Scheme: "s3", Bucket: "b", Key: "k.png"}}

	if err := p.Publish(context.Background(), writeTempFile(t, "x.png", "png")); !errors.Is(err, errDenied) {
		t.Errorf("Expected the upload error, got %v", err)
	}
	if err := p.Publish(context.Background(), filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected a missing file error, got %v", err)
	}
}
