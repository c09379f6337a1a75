package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mrops-br/produtos-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LocalStore writes images to a directory and returns their public URL path
type LocalStore struct {
	dir       string
	publicURL string
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewLocalStore creates the target directory if it does not exist
func NewLocalStore(dir, publicURL string, tracer trace.Tracer, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &LocalStore{
		dir:       dir,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		tracer:    tracer,
		logger:    logger,
	}, nil
}

// Dir returns the directory images are written to
func (s *LocalStore) Dir() string {
	return s.dir
}

// PublicURL returns the URL prefix images are served under
func (s *LocalStore) PublicURL() string {
	return s.publicURL
}

// Store copies body into a uniquely named file
func (s *LocalStore) Store(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	ctx, span := s.tracer.Start(ctx, "LocalStore.Store")
	defer span.End()

	name := objectName(contentType)
	target := filepath.Join(s.dir, name)

	span.SetAttributes(
		attribute.String("image.name", name),
		attribute.String("image.upload_name", filename),
		attribute.String("image.content_type", contentType),
	)

	f, err := os.Create(target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create image file")
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	written, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to write image file")
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	ref := s.publicURL + "/" + name

	s.logger.InfoContext(ctx, "Image stored on disk",
		slog.String("path", target),
		slog.Int64("bytes", written),
	)

	span.SetAttributes(attribute.Int64("image.size", written))
	span.SetStatus(codes.Ok, "Image stored")
	return ref, nil
}

// objectName is a uuid plus the extension of the accepted content type.
// The client's file name never reaches the disk.
func objectName(contentType string) string {
	ext, _ := domain.ImageExtension(contentType)
	return uuid.New().String() + ext
}
