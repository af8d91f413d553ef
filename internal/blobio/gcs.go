package blobio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

func (f *FS) gcsClient(ctx context.Context) (*storage.Client, error) {
	f.gcsOnce.Do(func() {
		f.gcs, f.gcsErr = storage.NewClient(ctx)
	})
	if f.gcsErr != nil {
		return nil, fmt.Errorf("creating GCS client: %w", f.gcsErr)
	}
	return f.gcs, nil
}

func (f *FS) openGCS(ctx context.Context, target string) (io.ReadCloser, error) {
	bucket, key, err := splitObject(target, "gs://")
	if err != nil {
		return nil, err
	}
	client, err := f.gcsClient(ctx)
	if err != nil {
		return nil, err
	}
	r, err := client.Bucket(bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", target, err)
	}
	return f.trackRemote(r, target), nil
}

func (f *FS) createGCS(ctx context.Context, target string) (io.WriteCloser, error) {
	bucket, key, err := splitObject(target, "gs://")
	if err != nil {
		return nil, err
	}
	client, err := f.gcsClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.Bucket(bucket).Object(key).NewWriter(ctx), nil
}

func (f *FS) listGCS(ctx context.Context, target string) ([]string, error) {
	bucket, prefix, err := splitObject(target, "gs://")
	if err != nil {
		return nil, err
	}
	client, err := f.gcsClient(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	it := client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", target, err)
		}
		names = append(names, "gs://"+bucket+"/"+attrs.Name)
	}
	return names, nil
}
