package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	price := decimal.RequireFromString("1299.99")

	p, err := NewProduct("  Guarda-Roupa de Madeira Maciça ", "Guarda-roupa espaçoso", price, "Silvia Design", "/imagens/a.png", nil)
	require.NoError(t, err)
	assert.Equal(t, "Guarda-Roupa de Madeira Maciça", p.Name)
	assert.True(t, price.Equal(p.Price))
	assert.Equal(t, "/imagens/a.png", p.ImageRef)
	assert.Zero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestNewProductValidation(t *testing.T) {
	_, err := NewProduct(" ", "", decimal.NewFromInt(1), "", "", nil)
	assert.ErrorIs(t, err, ErrInvalidProductName)
	assert.True(t, IsValidationError(err))

	_, err = NewProduct("TV", "", decimal.NewFromInt(-1), "", "", nil)
	assert.ErrorIs(t, err, ErrInvalidProductPrice)
	assert.True(t, IsValidationError(err))
}

func TestProductReplaceKeepsImageAndCharacteristics(t *testing.T) {
	p := &Product{
		ID:              7,
		Name:            "TV",
		Price:           decimal.NewFromInt(10),
		ImageRef:        "/imagens/tv.png",
		Characteristics: []Characteristic{{ID: 1, ProductID: 7, Name: "Cor"}},
	}

	require.NoError(t, p.Replace("Smart TV", "UHD", decimal.RequireFromString("2599.0"), "LG"))
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "Smart TV", p.Name)
	assert.Equal(t, "UHD", p.Description)
	assert.Equal(t, "LG", p.Brand)
	assert.Equal(t, "/imagens/tv.png", p.ImageRef)
	assert.Len(t, p.Characteristics, 1)
}

func TestProductReplaceRejectsInvalidWithoutMutation(t *testing.T) {
	p := &Product{ID: 1, Name: "TV", Price: decimal.NewFromInt(10)}

	err := p.Replace("", "x", decimal.NewFromInt(1), "y")
	assert.ErrorIs(t, err, ErrInvalidProductName)
	assert.Equal(t, "TV", p.Name)
	assert.Empty(t, p.Description)
}

func TestNotFoundError(t *testing.T) {
	var err error = &NotFoundError{ID: 42}
	assert.True(t, errors.Is(err, ErrProductNotFound))
	assert.Equal(t, "product 42 not found", err.Error())
	assert.False(t, IsValidationError(err))
}

func TestTextQuery(t *testing.T) {
	tv := &Product{Name: "Smart TV 55” UHD 4K LED LG", Description: "Ela possui resolução UHD 4K com tecnologia LED"}
	wardrobe := &Product{Name: "Guarda-Roupa de Madeira Maciça", Description: "Guarda-roupa espaçoso com acabamento em madeira"}

	q := NewTextQuery("TV", "")
	assert.True(t, q.Matches(tv))
	assert.False(t, q.Matches(wardrobe))

	q = NewTextQuery("", "uhd")
	assert.True(t, q.Matches(tv))
	assert.False(t, q.Matches(wardrobe))

	q = NewTextQuery("nada", "madeira")
	assert.False(t, q.Matches(tv))
	assert.True(t, q.Matches(wardrobe))

	q = NewTextQuery("  ", "")
	assert.True(t, q.IsEmpty())
	assert.True(t, q.Matches(tv))
	assert.True(t, q.Matches(wardrobe))
}
