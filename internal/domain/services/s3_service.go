package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/infrastructure/config"
)

// InterfaceS3Service checks document storage
type InterfaceS3Service interface {
	VerifyObject(ctx context.Context, key string) (bool, error)
}

// S3Service verifies uploaded customer documents against the bucket
type S3Service struct {
	client *s3.Client
	bucket string
}

// NewS3Service loads the default AWS credential chain for the configured
// region
func NewS3Service(ctx context.Context, cfg *config.Config) (InterfaceS3Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &S3Service{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.AWSBucket,
	}, nil
}

// VerifyObject reports whether a key exists in the bucket. A missing key
// is not an error.
func (s *S3Service) VerifyObject(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("verifying s3 object %s: %w", key, err)
	}
	return true, nil
}
