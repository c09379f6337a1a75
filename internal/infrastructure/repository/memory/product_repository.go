package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/mrops-br/produtos-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProductRepository is an in-memory implementation of domain.ProductRepository
type ProductRepository struct {
	mu                 sync.RWMutex
	products           map[int64]*domain.Product
	nextProductID      int64
	nextCharacteristic int64
	tracer             trace.Tracer
	logger             *slog.Logger
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		products: make(map[int64]*domain.Product),
		tracer:   tracer,
		logger:   logger,
	}
}

// Create assigns ids to the product and its characteristics and stores it
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextProductID++
	product.ID = r.nextProductID
	for i := range product.Characteristics {
		r.nextCharacteristic++
		product.Characteristics[i].ID = r.nextCharacteristic
		product.Characteristics[i].ProductID = product.ID
	}

	r.products[product.ID] = clone(product)

	span.SetAttributes(
		attribute.Int64("product.id", product.ID),
		attribute.String("product.name", product.Name),
	)

	r.logger.InfoContext(ctx, "Product created in repository",
		slog.Int64("product_id", product.ID),
		slog.String("product_name", product.Name),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return nil
}

// Update replaces the display fields of a stored product
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", product.ID))

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.products[product.ID]
	if !exists {
		return r.notFound(ctx, span, product.ID)
	}

	stored.Name = product.Name
	stored.Description = product.Description
	stored.Price = product.Price
	stored.Brand = product.Brand
	stored.UpdatedAt = product.UpdatedAt

	r.logger.InfoContext(ctx, "Product updated in repository",
		slog.Int64("product_id", product.ID),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return nil, r.notFound(ctx, span, id)
	}

	r.logger.DebugContext(ctx, "Product found in repository",
		slog.Int64("product_id", id),
		slog.String("product_name", product.Name),
	)

	span.SetStatus(codes.Ok, "Product found")
	return clone(product), nil
}

// FindAll retrieves all products ordered by id
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	products := r.collect(domain.TextQuery{})

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.InfoContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// SearchByText retrieves the products matching the query, ordered by id
func (r *ProductRepository) SearchByText(ctx context.Context, query domain.TextQuery) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.SearchByText")
	defer span.End()

	products := r.collect(query)

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.InfoContext(ctx, "Products searched in repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products searched successfully")
	return products, nil
}

// Delete removes a product; its characteristics go with it
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[id]; !exists {
		return r.notFound(ctx, span, id)
	}
	delete(r.products, id)

	r.logger.InfoContext(ctx, "Product deleted from repository",
		slog.Int64("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return nil
}

func (r *ProductRepository) collect(query domain.TextQuery) []*domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if query.Matches(product) {
			products = append(products, clone(product))
		}
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})
	return products
}

func (r *ProductRepository) notFound(ctx context.Context, span trace.Span, id int64) error {
	err := &domain.NotFoundError{ID: id}
	span.RecordError(err)
	span.SetStatus(codes.Error, "Product not found")
	r.logger.WarnContext(ctx, "Product not found",
		slog.Int64("product_id", id),
	)
	return err
}

func clone(p *domain.Product) *domain.Product {
	c := *p
	if p.Characteristics != nil {
		c.Characteristics = append([]domain.Characteristic(nil), p.Characteristics...)
	}
	return &c
}
