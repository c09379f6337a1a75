package gormdb

import (
	"time"

	"github.com/mrops-br/produtos-api/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type productRecord struct {
	ID              int64                  `gorm:"primaryKey;autoIncrement"`
	Name            string                 `gorm:"column:nome;size:255;not null;index"`
	Description     string                 `gorm:"column:descricao;size:2000"`
	Price           decimal.Decimal        `gorm:"column:preco;type:decimal(12,2);not null"`
	Brand           string                 `gorm:"column:marca;size:255"`
	ImageRef        string                 `gorm:"column:imagem;size:1024"`
	Characteristics []characteristicRecord `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (productRecord) TableName() string {
	return "produtos"
}

type characteristicRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	ProductID   int64  `gorm:"column:produto_id;not null;index"`
	Name        string `gorm:"column:nome;size:255"`
	Description string `gorm:"column:descricao;size:2000"`
}

func (characteristicRecord) TableName() string {
	return "caracteristicas"
}

// AutoMigrate creates or updates the produtos and caracteristicas tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&productRecord{}, &characteristicRecord{})
}

func fromDomain(p *domain.Product) *productRecord {
	rec := &productRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Brand:       p.Brand,
		ImageRef:    p.ImageRef,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, c := range p.Characteristics {
		rec.Characteristics = append(rec.Characteristics, characteristicRecord{
			ID:          c.ID,
			ProductID:   p.ID,
			Name:        c.Name,
			Description: c.Description,
		})
	}
	return rec
}

func (r *productRecord) toDomain() *domain.Product {
	p := &domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Brand:       r.Brand,
		ImageRef:    r.ImageRef,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for _, c := range r.Characteristics {
		p.Characteristics = append(p.Characteristics, domain.Characteristic{
			ID:          c.ID,
			ProductID:   c.ProductID,
			Name:        c.Name,
			Description: c.Description,
		})
	}
	return p
}
