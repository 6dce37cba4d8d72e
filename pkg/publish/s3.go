package publish

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/golang/glog"
)

// UploadTimeout bounds a single upload
const UploadTimeout = 2 * time.Minute

type s3Publisher struct {
	client s3iface.S3API
	dest   Destination
}

func newS3Publisher(dest Destination, opts Options) (*s3Publisher, error) {
	config := &aws.Config{}
	if opts.S3Region != "" {
		config.Region = aws.String(opts.S3Region)
	}
	if opts.S3Endpoint != "" {
		config.Endpoint = aws.String(opts.S3Endpoint)
		config.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("while creating S3 session: %w", err)
	}
	return &s3Publisher{client: s3.New(sess), dest: dest}, nil
}

func (p *s3Publisher) Publish(ctx context.Context, localPath string) error {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("while reading %s: %w", localPath, err)
	}

	key := p.dest.ObjectKey(localPath)
	size := int64(len(data))
	_, err = p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.dest.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType(localPath)),
	})
	if err != nil {
		return fmt.Errorf("while uploading %s to s3://%s/%s: %w", localPath, p.dest.Bucket, key, err)
	}

	glog.Infof("Uploaded %s to s3://%s/%s (%d bytes)", localPath, p.dest.Bucket, key, size)
	return nil
}

func (p *s3Publisher) Close() error {
	return nil
}
