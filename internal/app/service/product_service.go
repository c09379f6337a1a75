package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/produtos-api/internal/app/dto"
	"github.com/mrops-br/produtos-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductService handles product use cases
type ProductService struct {
	repo                  domain.ProductRepository
	images                domain.ImageStore
	tracer                trace.Tracer
	logger                *slog.Logger
	productCreatedCounter metric.Int64Counter
	productOperations     metric.Int64Counter
}

// NewProductService creates a new product service
func NewProductService(
	repo domain.ProductRepository,
	images domain.ImageStore,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	// Initialize metrics
	productCreatedCounter, _ := meter.Int64Counter(
		"products.created.total",
		metric.WithDescription("Total number of products created"),
	)

	productOperations, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)

	return &ProductService{
		repo:                  repo,
		images:                images,
		tracer:                tracer,
		logger:                logger,
		productCreatedCounter: productCreatedCounter,
		productOperations:     productOperations,
	}
}

// RegisterProduct stores the image, then creates a new product referencing it
func (s *ProductService) RegisterProduct(ctx context.Context, req *dto.ProductRequest, image *dto.ImageUpload) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.RegisterProduct")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.name", req.Name),
		attribute.String("product.price", req.Price.String()),
	)

	s.logger.InfoContext(ctx, "Registering product",
		slog.String("name", req.Name),
		slog.String("price", req.Price.String()),
	)

	if image == nil || image.Body == nil {
		return nil, s.fail(ctx, span, "create", domain.ErrImageRequired, "Validation failed")
	}
	if _, ok := domain.ImageExtension(image.ContentType); !ok {
		return nil, s.fail(ctx, span, "create", domain.ErrInvalidImageType, "Validation failed")
	}

	// Validate before touching the image store
	if _, err := domain.NewProduct(req.Name, req.Description, req.Price, req.Brand, "", nil); err != nil {
		return nil, s.fail(ctx, span, "create", err, "Validation failed")
	}

	imageRef, err := s.images.Store(ctx, image.Filename, image.ContentType, image.Body)
	if err != nil {
		return nil, s.fail(ctx, span, "create", fmt.Errorf("failed to store image: %w", err), "Failed to store image")
	}

	span.SetAttributes(attribute.String("product.image", imageRef))

	product, err := domain.NewProduct(req.Name, req.Description, req.Price, req.Brand, imageRef, req.ToCharacteristics())
	if err != nil {
		return nil, s.fail(ctx, span, "create", err, "Validation failed")
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, s.fail(ctx, span, "create", err, "Failed to store product")
	}

	span.SetAttributes(attribute.Int64("product.id", product.ID))

	// Record metrics
	s.productCreatedCounter.Add(ctx, 1)
	s.succeed(ctx, "create")

	s.logger.InfoContext(ctx, "Product registered successfully",
		slog.Int64("product_id", product.ID),
		slog.String("image", imageRef),
	)

	span.SetStatus(codes.Ok, "Product registered successfully")
	return dto.ToProductResponse(product), nil
}

// ListProducts retrieves all products in store order
func (s *ProductService) ListProducts(ctx context.Context) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListProducts")
	defer span.End()

	s.logger.InfoContext(ctx, "Listing all products")

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, "list", err, "Failed to retrieve products")
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.succeed(ctx, "list")

	s.logger.InfoContext(ctx, "Products listed successfully",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return dto.ToProductResponseList(products), nil
}

// GetProductByID retrieves a product by ID
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProductByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	s.logger.InfoContext(ctx, "Getting product by ID",
		slog.Int64("product_id", id),
	)

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "read", err, "Product not found")
	}

	s.succeed(ctx, "read")

	s.logger.InfoContext(ctx, "Product retrieved successfully",
		slog.Int64("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return dto.ToProductResponse(product), nil
}

// SearchProducts finds products whose name or description contains the given fragments.
// A query with neither fragment returns every product.
func (s *ProductService) SearchProducts(ctx context.Context, query domain.TextQuery) ([]*dto.ProductSearchResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.SearchProducts")
	defer span.End()

	attrs := []any{}
	if query.Name != nil {
		span.SetAttributes(attribute.String("search.name", *query.Name))
		attrs = append(attrs, slog.String("name", *query.Name))
	}
	if query.Description != nil {
		span.SetAttributes(attribute.String("search.description", *query.Description))
		attrs = append(attrs, slog.String("description", *query.Description))
	}

	s.logger.InfoContext(ctx, "Searching products", attrs...)

	products, err := s.repo.SearchByText(ctx, query)
	if err != nil {
		return nil, s.fail(ctx, span, "search", err, "Failed to search products")
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.succeed(ctx, "search")

	s.logger.InfoContext(ctx, "Products searched successfully",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products searched successfully")
	return dto.ToProductSearchResponseList(products), nil
}

// UpdateProduct replaces name, description, price and brand of an existing product
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, req *dto.ProductRequest) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.UpdateProduct")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	s.logger.InfoContext(ctx, "Updating product",
		slog.Int64("product_id", id),
	)

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "update", err, "Product not found")
	}

	if err := product.Replace(req.Name, req.Description, req.Price, req.Brand); err != nil {
		return nil, s.fail(ctx, span, "update", err, "Validation failed")
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, s.fail(ctx, span, "update", err, "Failed to update product")
	}

	s.succeed(ctx, "update")

	s.logger.InfoContext(ctx, "Product updated successfully",
		slog.Int64("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return dto.ToProductResponse(product), nil
}

// DeleteProduct removes a product and its characteristics
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.DeleteProduct")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	s.logger.InfoContext(ctx, "Deleting product",
		slog.Int64("product_id", id),
	)

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return s.fail(ctx, span, "delete", err, "Product not found")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(ctx, span, "delete", err, "Failed to delete product")
	}

	s.succeed(ctx, "delete")

	s.logger.InfoContext(ctx, "Product deleted successfully",
		slog.Int64("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return nil
}

// fail records err on the span, the log and the operations counter, and returns it
func (s *ProductService) fail(ctx context.Context, span trace.Span, operation string, err error, description string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, description)

	result := "failure"
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		result = "not_found"
		s.logger.WarnContext(ctx, description,
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
	case domain.IsValidationError(err):
		result = "invalid"
		s.logger.WarnContext(ctx, description,
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
	default:
		s.logger.ErrorContext(ctx, description,
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
	}

	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
	return err
}

func (s *ProductService) succeed(ctx context.Context, operation string) {
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", "success"),
		),
	)
}
