package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/mrops-br/produtos-api/internal/infrastructure/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// S3Store uploads images to an S3 compatible bucket and returns the object URL
type S3Store struct {
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewS3Store builds a session from static credentials. Path-style addressing is
// used so S3 compatible endpoints (MinIO and friends) work.
func NewS3Store(cfg *config.S3Config, tracer trace.Tracer, logger *slog.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return &S3Store{
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		tracer:   tracer,
		logger:   logger,
	}, nil
}

// Store uploads body under <prefix>/<uuid><ext>
func (s *S3Store) Store(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	ctx, span := s.tracer.Start(ctx, "S3Store.Store")
	defer span.End()

	key := objectName(contentType)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	span.SetAttributes(
		attribute.String("s3.bucket", s.bucket),
		attribute.String("s3.key", key),
		attribute.String("image.upload_name", filename),
		attribute.String("image.content_type", contentType),
	)

	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upload image")
		s.logger.ErrorContext(ctx, "S3 upload failed",
			slog.String("bucket", s.bucket),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	s.logger.InfoContext(ctx, "Image uploaded to S3",
		slog.String("bucket", s.bucket),
		slog.String("key", key),
		slog.String("location", out.Location),
	)

	span.SetStatus(codes.Ok, "Image uploaded")
	return out.Location, nil
}
