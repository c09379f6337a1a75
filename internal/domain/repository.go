package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// NotFoundError carries the id that had no matching product.
// It matches ErrProductNotFound with errors.Is.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// TextQuery filters products by name and/or description fragments.
// A nil field is left out of the condition.
type TextQuery struct {
	Name        *string
	Description *string
}

// NewTextQuery builds a TextQuery, treating blank fragments as absent.
func NewTextQuery(name, description string) TextQuery {
	var q TextQuery
	if name = strings.TrimSpace(name); name != "" {
		q.Name = &name
	}
	if description = strings.TrimSpace(description); description != "" {
		q.Description = &description
	}
	return q
}

// IsEmpty reports whether neither fragment was given.
func (q TextQuery) IsEmpty() bool {
	return q.Name == nil && q.Description == nil
}

// Matches applies the search policy: case-insensitive substring on name OR description.
// An empty query matches every product.
func (q TextQuery) Matches(p *Product) bool {
	if q.IsEmpty() {
		return true
	}
	if q.Name != nil && containsFold(p.Name, *q.Name) {
		return true
	}
	if q.Description != nil && containsFold(p.Description, *q.Description) {
		return true
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ProductRepository defines the contract for product storage
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	SearchByText(ctx context.Context, query TextQuery) ([]*Product, error)
	// Delete removes the product together with all of its characteristics.
	Delete(ctx context.Context, id int64) error
}

// ImageStore persists uploaded product images and returns a reference to them
type ImageStore interface {
	Store(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}
