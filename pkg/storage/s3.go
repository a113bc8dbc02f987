package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"kuchikomi/pkg/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type S3Client struct {
	s3Client *s3.S3
	bucket   string
	baseURL  string
}

func NewS3Client(cfg *config.Config) (*S3Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		),
	}

	// S3-compatible endpoints (MinIO, LocalStack) need path-style addressing
	if cfg.AWSEndpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.AWSEndpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		if cfg.S3UseSSL == "false" {
			awsConfig.DisableSSL = aws.Bool(true)
		}
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	client := &S3Client{
		s3Client: s3.New(sess),
		bucket:   cfg.S3BucketName,
		baseURL:  s3BaseURL(cfg),
	}

	_, err = client.s3Client.HeadBucket(&s3.HeadBucketInput{
		Bucket: aws.String(cfg.S3BucketName),
	})
	if err != nil {
		// A bucket we already own reports an error here too, so only fail
		// when it can neither be found nor created.
		if _, createErr := client.s3Client.CreateBucket(&s3.CreateBucketInput{
			Bucket: aws.String(cfg.S3BucketName),
		}); createErr != nil && !strings.Contains(createErr.Error(), "BucketAlreadyOwnedByYou") {
			return nil, fmt.Errorf("failed to access bucket %s: %w", cfg.S3BucketName, err)
		}
	}

	return client, nil
}

func s3BaseURL(cfg *config.Config) string {
	if cfg.AWSEndpoint != "" && !strings.Contains(cfg.AWSEndpoint, "amazonaws.com") {
		protocol := "https"
		if cfg.S3UseSSL == "false" {
			protocol = "http"
		}
		endpoint := strings.TrimPrefix(cfg.AWSEndpoint, "http://")
		endpoint = strings.TrimPrefix(endpoint, "https://")
		return fmt.Sprintf("%s://%s/%s/", protocol, strings.TrimSuffix(endpoint, "/"), cfg.S3BucketName)
	}

	region := cfg.AWSRegion
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", cfg.S3BucketName, region)
}

func (c *S3Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return c.baseURL + key, nil
}

func (c *S3Client) Delete(ctx context.Context, ref string) error {
	_, err := c.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(keyFromRef(c.baseURL, ref)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}
