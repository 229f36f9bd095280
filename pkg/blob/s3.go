package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"k8s.io/klog/v2"
)

// S3 stores objects in an AWS S3 bucket
type S3 struct {
	bucket string
	client *s3.S3
}

func NewS3(ctx context.Context, bucket string, cfg *aws.Config) (*S3, error) {
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}

	svc := s3.New(sess)

	// Check bucket exists
	if _, err := svc.GetBucketAclWithContext(ctx, &s3.GetBucketAclInput{Bucket: &bucket}); err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchBucket {
			return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
		}
		return nil, err
	}

	return &S3{
		bucket: bucket,
		client: svc,
	}, nil
}

func (p *S3) Put(ctx context.Context, key string, data []byte) error {
	_, err := p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Body:   bytes.NewReader(data),
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("putting s3 object %s: %w", key, err)
	}
	klog.V(2).Infof("put s3://%s/%s", p.bucket, key)
	return nil
}

func (p *S3) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := p.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("getting s3 object %s: %w", key, err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (p *S3) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting s3 object %s: %w", key, err)
	}
	klog.V(2).Infof("deleted s3://%s/%s", p.bucket, key)
	return nil
}

func (p *S3) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := p.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("listing s3 objects with prefix %s: %w", prefix, err)
	}
	return keys, nil
}
