package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProduct      = errors.New("invalid product")
	ErrInvalidProductName  = newInvalidError("product name is required")
	ErrInvalidProductPrice = newInvalidError("product price must not be negative")
	ErrImageRequired       = newInvalidError("product image is required")
	ErrInvalidImageType    = newInvalidError("product image must be a png, jpeg, gif, webp, bmp or avif image")
)

// Product represents the product entity
type Product struct {
	ID              int64
	Name            string
	Description     string
	Price           decimal.Decimal
	Brand           string
	ImageRef        string
	Characteristics []Characteristic
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Characteristic is a child record owned by a Product
type Characteristic struct {
	ID          int64
	ProductID   int64
	Name        string
	Description string
}

// NewProduct creates a new product with validation. The ID is assigned by the repository.
func NewProduct(name, description string, price decimal.Decimal, brand, imageRef string, characteristics []Characteristic) (*Product, error) {
	now := time.Now()
	product := &Product{
		Name:            strings.TrimSpace(name),
		Description:     description,
		Price:           price,
		Brand:           brand,
		ImageRef:        imageRef,
		Characteristics: characteristics,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrInvalidProductName
	}
	if p.Price.IsNegative() {
		return ErrInvalidProductPrice
	}
	return nil
}

// Replace overwrites the display fields. Image and characteristics are kept.
func (p *Product) Replace(name, description string, price decimal.Decimal, brand string) error {
	updated := *p
	updated.Name = strings.TrimSpace(name)
	updated.Description = description
	updated.Price = price
	updated.Brand = brand
	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now()
	*p = updated
	return nil
}

// IsValidationError reports whether err is a client-side validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidProduct)
}

type invalidError struct {
	msg string
}

func (e *invalidError) Error() string { return e.msg }

func (e *invalidError) Unwrap() error { return ErrInvalidProduct }

func newInvalidError(msg string) error {
	return &invalidError{msg: msg}
}
