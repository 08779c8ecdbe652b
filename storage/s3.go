package storage

import (
	"bytes"
	"context"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/models"
)

// presignExpiry is how long the logged report link stays valid
const presignExpiry = 1 * time.Hour

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type objectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store uploads artifacts to a bucket under a key prefix
type S3Store struct {
	client  objectPutter
	presign objectPresigner
	bucket  string
	prefix  string
}

// NewS3Store creates an S3Store using the default AWS credential chain
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, eris.New("s3: bucket is not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, eris.Wrap(err, "s3: load aws config")
	}

	client := s3.NewFromConfig(awsCfg)
	zap.L().Info("s3 client initialized", zap.String("bucket", cfg.Bucket), zap.String("region", cfg.Region))
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
	}, nil
}

func (s *S3Store) Name() string { return "s3" }

// Key is the object key of an artifact
func (s *S3Store) Key(name string) string {
	return path.Join(s.prefix, name)
}

func (s *S3Store) Put(ctx context.Context, _ *models.PageReport, artifacts []Artifact) error {
	for _, a := range artifacts {
		key := s.Key(a.Name)
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(a.Data),
			ContentLength: aws.Int64(int64(len(a.Data))),
			ContentType:   aws.String(a.ContentType),
		})
		if err != nil {
			return eris.Wrapf(err, "s3: upload %s", key)
		}
		zap.L().Info("uploaded artifact", zap.String("bucket", s.bucket), zap.String("key", key))

		if a.ContentType == ContentTypeJSON {
			s.logPresigned(ctx, key)
		}
	}
	return nil
}

func (s *S3Store) logPresigned(ctx context.Context, key string) {
	if s.presign == nil {
		return
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		zap.L().Warn("s3: presign report", zap.String("key", key), zap.Error(err))
		return
	}
	zap.L().Info("report available", zap.String("url", req.URL), zap.Duration("expires_in", presignExpiry))
}
