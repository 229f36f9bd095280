package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"k8s.io/klog/v2"
)

// GCS stores objects in a Google Cloud Storage bucket
type GCS struct {
	bucket string
	client *storage.Client
}

// NewGCS constructs a GCS store. If client is nil then one is constructed
// using application default credentials.
func NewGCS(ctx context.Context, bucket string, client *storage.Client) (*GCS, error) {
	if client == nil {
		var err error
		client, err = storage.NewClient(ctx)
		if err != nil {
			return nil, err
		}
	}

	// Check bucket exists
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrBucketNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
		}
		return nil, err
	}

	return &GCS{
		bucket: bucket,
		client: client,
	}, nil
}

func (p *GCS) Put(ctx context.Context, key string, data []byte) error {
	owriter := p.client.Bucket(p.bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(owriter, bytes.NewReader(data)); err != nil {
		owriter.Close()
		return fmt.Errorf("writing gcs object %s: %w", key, err)
	}

	if err := owriter.Close(); err != nil {
		return fmt.Errorf("writing gcs object %s: %w", key, err)
	}
	klog.V(2).Infof("put gs://%s/%s", p.bucket, key)
	return nil
}

func (p *GCS) Get(ctx context.Context, key string) ([]byte, error) {
	oreader, err := p.client.Bucket(p.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	} else if err != nil {
		return nil, fmt.Errorf("reading gcs object %s: %w", key, err)
	}
	defer oreader.Close()

	return io.ReadAll(oreader)
}

func (p *GCS) Delete(ctx context.Context, key string) error {
	err := p.client.Bucket(p.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting gcs object %s: %w", key, err)
	}
	klog.V(2).Infof("deleted gs://%s/%s", p.bucket, key)
	return nil
}

func (p *GCS) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	it := p.client.Bucket(p.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing gcs objects with prefix %s: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}
