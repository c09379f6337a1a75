package gormdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrops-br/produtos-api/internal/domain"
	"github.com/mrops-br/produtos-api/internal/infrastructure/database"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// ProductRepository is the relational implementation of domain.ProductRepository
type ProductRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
	logger *slog.Logger
}

// NewProductRepository creates a new gorm-backed product repository
func NewProductRepository(db *gorm.DB, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		tracer: tracer,
		logger: logger,
	}
}

// Create inserts the product and its characteristics; generated ids are written back
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	rec := fromDomain(product)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return r.fail(ctx, span, fmt.Errorf("failed to insert product: %w", err))
	}

	product.ID = rec.ID
	for i := range product.Characteristics {
		product.Characteristics[i].ID = rec.Characteristics[i].ID
		product.Characteristics[i].ProductID = rec.ID
	}

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

// Update writes the display fields only; image and characteristics are left alone
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", product.ID))

	result := r.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"nome":       product.Name,
			"descricao":  product.Description,
			"preco":      product.Price,
			"marca":      product.Brand,
			"updated_at": product.UpdatedAt,
		})
	if result.Error != nil {
		return r.fail(ctx, span, fmt.Errorf("failed to update product: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return r.fail(ctx, span, &domain.NotFoundError{ID: product.ID})
	}

	r.logger.InfoContext(ctx, "Product updated in repository",
		slog.Int64("product_id", product.ID),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return nil
}

// FindByID retrieves a product with its characteristics
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	var rec productRecord
	err := r.db.WithContext(ctx).Preload("Characteristics").First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, r.fail(ctx, span, &domain.NotFoundError{ID: id})
	}
	if err != nil {
		return nil, r.fail(ctx, span, fmt.Errorf("failed to query product: %w", err))
	}

	r.logger.DebugContext(ctx, "Product found in repository",
		slog.Int64("product_id", id),
		slog.String("product_name", rec.Name),
	)

	span.SetStatus(codes.Ok, "Product found")
	return rec.toDomain(), nil
}

// FindAll retrieves all products ordered by id
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	var recs []productRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, r.fail(ctx, span, fmt.Errorf("failed to query products: %w", err))
	}

	products := toDomainList(recs)
	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.InfoContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// SearchByText matches name OR description with a case-insensitive LIKE.
// The repository expects a sqlite handle opened through database.SQLiteDialector.
// Absent fragments are dropped from the condition; an empty query returns everything.
func (r *ProductRepository) SearchByText(ctx context.Context, query domain.TextQuery) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.SearchByText")
	defer span.End()

	db := r.db.WithContext(ctx).Preload("Characteristics").Order("id ASC")

	var conds []string
	var args []interface{}
	if query.Name != nil {
		conds = append(conds, r.containsIgnoringCase("nome"))
		args = append(args, likePattern(*query.Name))
	}
	if query.Description != nil {
		conds = append(conds, r.containsIgnoringCase("descricao"))
		args = append(args, likePattern(*query.Description))
	}
	if len(conds) > 0 {
		db = db.Where(strings.Join(conds, " OR "), args...)
	}

	var recs []productRecord
	if err := db.Find(&recs).Error; err != nil {
		return nil, r.fail(ctx, span, fmt.Errorf("failed to search products: %w", err))
	}

	products := toDomainList(recs)
	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.InfoContext(ctx, "Products searched in repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products searched successfully")
	return products, nil
}

// Delete removes the characteristics and then the product in one transaction
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("produto_id = ?", id).Delete(&characteristicRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete characteristics: %w", err)
		}

		result := tx.Delete(&productRecord{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return &domain.NotFoundError{ID: id}
		}
		return nil
	})
	if err != nil {
		return r.fail(ctx, span, err)
	}

	r.logger.InfoContext(ctx, "Product deleted from repository",
		slog.Int64("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return nil
}

func (r *ProductRepository) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	if errors.Is(err, domain.ErrProductNotFound) {
		span.SetStatus(codes.Error, "Product not found")
		r.logger.WarnContext(ctx, "Product not found",
			slog.String("error", err.Error()),
		)
		return err
	}

	span.SetStatus(codes.Error, "Database error")
	r.logger.ErrorContext(ctx, "Database error",
		slog.String("error", err.Error()),
	)
	return err
}

func toDomainList(recs []productRecord) []*domain.Product {
	products := make([]*domain.Product, len(recs))
	for i := range recs {
		products[i] = recs[i].toDomain()
	}
	return products
}

// containsIgnoringCase builds a LIKE condition that folds case over the full
// Unicode range. Postgres ILIKE does so natively; sqlite needs the function
// registered by the database package.
func (r *ProductRepository) containsIgnoringCase(column string) string {
	switch r.db.Dialector.Name() {
	case "postgres":
		return column + ` ILIKE ? ESCAPE '\'`
	case "sqlite":
		return fmt.Sprintf(`%s(COALESCE(%s, '')) LIKE ? ESCAPE '\'`, database.UnicodeLower, column)
	default:
		return `LOWER(` + column + `) LIKE ? ESCAPE '\'`
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(fragment string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(fragment)) + "%"
}
