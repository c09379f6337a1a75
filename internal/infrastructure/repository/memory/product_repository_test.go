package memory

import (
	"context"
	"log/slog"
	"testing"

	"github.com/mrops-br/produtos-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newRepo() *ProductRepository {
	return NewProductRepository(noop.NewTracerProvider().Tracer("test"), slog.New(slog.DiscardHandler))
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	first := &domain.Product{Name: "Guarda-Roupa", Price: decimal.RequireFromString("1299.99")}
	second := &domain.Product{
		Name:            "Smart TV",
		Price:           decimal.RequireFromString("2599.0"),
		Characteristics: []domain.Characteristic{{Name: "Tela"}, {Name: "Cor"}},
	}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	for _, c := range second.Characteristics {
		assert.Equal(t, int64(2), c.ProductID)
		assert.NotZero(t, c.ID)
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Guarda-Roupa", all[0].Name)
	assert.Equal(t, "Smart TV", all[1].Name)
}

func TestFindByIDReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	p := &domain.Product{Name: "TV"}
	require.NoError(t, repo.Create(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	found.Name = "changed"

	again, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "TV", again.Name)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	_, err := repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	assert.ErrorIs(t, repo.Update(ctx, &domain.Product{ID: 99}), domain.ErrProductNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 99), domain.ErrProductNotFound)
}

func TestUpdateKeepsImageAndCharacteristics(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	p := &domain.Product{Name: "TV", ImageRef: "/imagens/tv.png", Characteristics: []domain.Characteristic{{Name: "Tela"}}}
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.Update(ctx, &domain.Product{ID: p.ID, Name: "Smart TV", Brand: "LG", Price: decimal.NewFromInt(5)}))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smart TV", found.Name)
	assert.Equal(t, "LG", found.Brand)
	assert.Equal(t, "/imagens/tv.png", found.ImageRef)
	assert.Len(t, found.Characteristics, 1)
}

func TestSearchByTextAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	wardrobe := &domain.Product{Name: "Guarda-Roupa de Madeira Maciça", Description: "Guarda-roupa espaçoso com acabamento em madeira"}
	tv := &domain.Product{Name: "Smart TV 55” UHD 4K LED LG", Description: "Ela possui resolução UHD 4K com tecnologia LED"}
	require.NoError(t, repo.Create(ctx, wardrobe))
	require.NoError(t, repo.Create(ctx, tv))

	found, err := repo.SearchByText(ctx, domain.NewTextQuery("TV", ""))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, tv.ID, found[0].ID)

	found, err = repo.SearchByText(ctx, domain.NewTextQuery("", ""))
	require.NoError(t, err)
	assert.Len(t, found, 2)

	require.NoError(t, repo.Delete(ctx, tv.ID))
	found, err = repo.SearchByText(ctx, domain.NewTextQuery("", "UHD"))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestSearchByTextFoldsAccentedLetters(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()

	mattress := &domain.Product{Name: "COLCHÃO MACIÇO KING", Description: "ESPUMA DE ALTA RESILIÊNCIA"}
	require.NoError(t, repo.Create(ctx, &domain.Product{Name: "Mesa de Jantar"}))
	require.NoError(t, repo.Create(ctx, mattress))

	for _, query := range []domain.TextQuery{
		domain.NewTextQuery("colchão", ""),
		domain.NewTextQuery("Maciço", ""),
		domain.NewTextQuery("", "resiliência"),
	} {
		found, err := repo.SearchByText(ctx, query)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, mattress.ID, found[0].ID)
	}
}
