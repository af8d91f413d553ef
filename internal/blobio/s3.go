package blobio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func (f *FS) s3Client(ctx context.Context) (*s3.Client, error) {
	f.s3Once.Do(func() {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			f.s3Err = err
			return
		}
		f.s3c = s3.NewFromConfig(cfg)
	})
	if f.s3Err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", f.s3Err)
	}
	return f.s3c, nil
}

func (f *FS) openS3(ctx context.Context, target string) (io.ReadCloser, error) {
	bucket, key, err := splitObject(target, "s3://")
	if err != nil {
		return nil, err
	}
	client, err := f.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
		}
		return nil, fmt.Errorf("opening %s: %w", target, err)
	}
	return f.trackRemote(result.Body, target), nil
}

// createS3 buffers the blob in memory and uploads it in a single
// PutObject on Close. Compressed outputs are small enough that
// multipart uploads are not worth the machinery.
func (f *FS) createS3(ctx context.Context, target string) (io.WriteCloser, error) {
	bucket, key, err := splitObject(target, "s3://")
	if err != nil {
		return nil, err
	}
	client, err := f.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	return &s3Writer{ctx: ctx, client: client, bucket: bucket, key: key}, nil
}

type s3Writer struct {
	ctx    context.Context
	client *s3.Client
	bucket string
	key    string
	buf    bytes.Buffer
	done   bool
}

func (w *s3Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *s3Writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", w.bucket, w.key, err)
	}
	return nil
}

func (f *FS) listS3(ctx context.Context, target string) ([]string, error) {
	bucket, prefix, err := splitObject(target, "s3://")
	if err != nil {
		return nil, err
	}
	client, err := f.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", target, err)
		}
		for _, obj := range page.Contents {
			names = append(names, "s3://"+bucket+"/"+aws.ToString(obj.Key))
		}
	}
	return names, nil
}
