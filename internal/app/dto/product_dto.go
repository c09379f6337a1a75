package dto

import (
	"io"

	"github.com/mrops-br/produtos-api/internal/domain"
	"github.com/shopspring/decimal"
)

func init() {
	// preco is a JSON number on the wire, not a quoted string
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductRequest represents the payload to register or update a product
type ProductRequest struct {
	Name            string                  `json:"nome" validate:"required,max=255"`
	Description     string                  `json:"descricao" validate:"max=2000"`
	Price           decimal.Decimal         `json:"preco"`
	Brand           string                  `json:"marca" validate:"max=255"`
	Characteristics []CharacteristicRequest `json:"caracteristicas,omitempty" validate:"omitempty,dive"`
}

// CharacteristicRequest describes a characteristic attached on registration
type CharacteristicRequest struct {
	Name        string `json:"nome" validate:"required,max=255"`
	Description string `json:"descricao" validate:"max=2000"`
}

// ImageUpload is the binary image attached to a register request
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProductResponse is the response projection of a product
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nome"`
	Description string          `json:"descricao"`
	Price       decimal.Decimal `json:"preco"`
	Brand       string          `json:"marca"`
}

// CharacteristicResponse represents a characteristic in search results
type CharacteristicResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"nome"`
	Description string `json:"descricao"`
}

// ProductSearchResponse is the projection returned by the text search, which also carries characteristics
type ProductSearchResponse struct {
	ProductResponse
	Characteristics []CharacteristicResponse `json:"caracteristicas"`
}

// ToCharacteristics converts request characteristics to domain characteristics
func (r *ProductRequest) ToCharacteristics() []domain.Characteristic {
	if len(r.Characteristics) == 0 {
		return nil
	}
	characteristics := make([]domain.Characteristic, len(r.Characteristics))
	for i, c := range r.Characteristics {
		characteristics[i] = domain.Characteristic{
			Name:        c.Name,
			Description: c.Description,
		}
	}
	return characteristics
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Brand:       p.Brand,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}

// ToProductSearchResponseList converts search results, keeping characteristics
func ToProductSearchResponseList(products []*domain.Product) []*ProductSearchResponse {
	responses := make([]*ProductSearchResponse, len(products))
	for i, p := range products {
		characteristics := make([]CharacteristicResponse, len(p.Characteristics))
		for j, c := range p.Characteristics {
			characteristics[j] = CharacteristicResponse{
				ID:          c.ID,
				Name:        c.Name,
				Description: c.Description,
			}
		}
		responses[i] = &ProductSearchResponse{
			ProductResponse: *ToProductResponse(p),
			Characteristics: characteristics,
		}
	}
	return responses
}
