package storage

import (
	"bytes"
	"context"
	"fmt"

	"content-hub/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Storage legt Medien-Dateien in einem S3-kompatiblen Bucket ab.
type S3Storage struct {
	client *s3.Client
	bucket string
	url    string
}

// NewS3Storage erstellt einen S3-Client für einen S3-kompatiblen Anbieter.
func NewS3Storage(cfg *config.Config) (*S3Storage, error) {
	if cfg.S3Key == "" || cfg.S3Secret == "" || cfg.S3URL == "" || cfg.S3Region == "" || cfg.S3Bucket == "" {
		return nil, fmt.Errorf("incomplete S3 configuration (S3_KEY, S3_SECRET, S3_URL, S3_REGION, S3_BUCKET)")
	}
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.S3URL,
				SigningRegion:     cfg.S3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}
	return &S3Storage{client: s3.NewFromConfig(awsCfg), bucket: cfg.S3Bucket, url: cfg.S3URL}, nil
}

// Save lädt die Datei ins S3 hoch und gibt den öffentlichen Link zurück.
func (s *S3Storage) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", s.url, s.bucket, key), nil
}

// Delete entfernt das Objekt aus dem Bucket.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
