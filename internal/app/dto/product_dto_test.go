package dto

import (
	"encoding/json"
	"testing"

	"github.com/mrops-br/produtos-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToProductResponseOmitsStorageFields(t *testing.T) {
	p := &domain.Product{
		ID:              1,
		Name:            "Guarda-Roupa de Madeira Maciça",
		Description:     "Guarda-roupa espaçoso com acabamento em madeira",
		Price:           decimal.RequireFromString("1299.99"),
		Brand:           "Silvia Design",
		ImageRef:        "/imagens/x.png",
		Characteristics: []domain.Characteristic{{ID: 3, ProductID: 1, Name: "Cor"}},
	}

	body, err := json.Marshal(ToProductResponse(p))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1,
		"nome": "Guarda-Roupa de Madeira Maciça",
		"descricao": "Guarda-roupa espaçoso com acabamento em madeira",
		"preco": 1299.99,
		"marca": "Silvia Design"
	}`, string(body))
}

func TestToProductResponseListPreservesOrder(t *testing.T) {
	products := []*domain.Product{
		{ID: 2, Name: "b"},
		{ID: 1, Name: "a"},
	}

	responses := ToProductResponseList(products)
	require.Len(t, responses, 2)
	assert.Equal(t, int64(2), responses[0].ID)
	assert.Equal(t, int64(1), responses[1].ID)

	assert.Empty(t, ToProductResponseList(nil))
}

func TestToProductSearchResponseList(t *testing.T) {
	products := []*domain.Product{{
		ID:              5,
		Name:            "Smart TV",
		Price:           decimal.NewFromInt(2599),
		Characteristics: []domain.Characteristic{{ID: 9, ProductID: 5, Name: "Tela", Description: "55 polegadas"}},
	}}

	body, err := json.Marshal(ToProductSearchResponseList(products))
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"id": 5,
		"nome": "Smart TV",
		"descricao": "",
		"preco": 2599,
		"marca": "",
		"caracteristicas": [{"id": 9, "nome": "Tela", "descricao": "55 polegadas"}]
	}]`, string(body))
}

func TestProductRequestDecoding(t *testing.T) {
	var req ProductRequest
	err := json.Unmarshal([]byte(`{
		"nome": "Smart TV",
		"descricao": "UHD",
		"preco": 2599.0,
		"marca": "LG",
		"caracteristicas": [{"nome": "Tela", "descricao": "55"}]
	}`), &req)
	require.NoError(t, err)

	assert.Equal(t, "Smart TV", req.Name)
	assert.True(t, decimal.RequireFromString("2599").Equal(req.Price))

	characteristics := req.ToCharacteristics()
	require.Len(t, characteristics, 1)
	assert.Equal(t, "Tela", characteristics[0].Name)
	assert.Equal(t, "55", characteristics[0].Description)
}
