// Package storage holds uploaded ministry media (flyers, page images)
// in S3 under stable keys recorded on the database rows.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type ImageStore struct {
	client *s3.Client
	bucket string
	region string
}

func NewImageStore(client *s3.Client, bucket, region string) *ImageStore {
	return &ImageStore{
		client: client,
		bucket: bucket,
		region: region,
	}
}

// Upload stores the file under key and returns the key on success.
func (s *ImageStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return key, nil
}

func (s *ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}

// PublicURL returns the public object URL for a stored key. The bucket
// is expected to allow public reads for ministry media.
func (s *ImageStore) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.bucket, s.region, url.PathEscape(key))
}
