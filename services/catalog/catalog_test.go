package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visapoint/database"
	"visapoint/database/repository/memory"
	"visapoint/models"
)

type failingOrder struct {
	*memory.Services
	err error
}

func (f failingOrder) UpdateOrder(context.Context, []string) error { return f.err }

func seed(t *testing.T, repo *memory.Services, titles ...string) {
	t.Helper()
	for i, title := range titles {
		svc := &models.VisaService{Title: title, Slug: Slugify(title), BasePrice: 100, Currency: "SAR", Active: true, DisplayOrder: i}
		require.NoError(t, repo.Create(context.Background(), svc))
	}
}

func titles(list []models.VisaService) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Title
	}
	return out
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "spain-schengen-visa", Slugify("  Spain  Schengen Visa! "))
	assert.Equal(t, "uae-30-days", Slugify("UAE / 30 days"))
	assert.Equal(t, "", Slugify("--"))
}

func TestCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewServices(), "SAR")

	s := &models.VisaService{Title: "Spain Schengen Visa", BasePrice: 450, Active: true}
	require.NoError(t, svc.Create(ctx, s))
	assert.Equal(t, "spain-schengen-visa", s.Slug)
	assert.Equal(t, "SAR", s.Currency)

	got, err := svc.GetBySlug(ctx, "spain-schengen-visa")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	byTitle, err := svc.GetBySlug(ctx, "spain schengen visa")
	require.NoError(t, err)
	assert.Equal(t, s.ID, byTitle.ID)

	_, err = svc.GetBySlug(ctx, "nowhere")
	assert.ErrorIs(t, err, database.ErrNotFound)

	assert.ErrorIs(t, svc.Create(ctx, &models.VisaService{Title: " "}), ErrInvalidService)
	assert.ErrorIs(t, svc.Create(ctx, &models.VisaService{Title: "Bad", BasePrice: -1}), ErrInvalidService)
}

func TestListActiveHidesInactive(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewServices()
	seed(t, repo, "A", "B", "C")
	svc := NewService(repo, "SAR")

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(ctx, list[1].ID, false))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, titles(active))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestReorderPersists(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewServices()
	seed(t, repo, "A", "B", "C", "D")
	svc := NewService(repo, "SAR")

	out, err := svc.Reorder(ctx, ReorderCommand{Old: 3, New: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "A", "B", "C"}, titles(out))

	stored, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "A", "B", "C"}, titles(stored))
}

func TestReorderRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewServices()
	seed(t, repo, "A", "B", "C")
	svc := NewService(failingOrder{Services: repo, err: errors.New("write failed")}, "SAR")

	_, err := svc.Reorder(ctx, ReorderCommand{Old: 0, New: 2})
	require.Error(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, titles(list))
	for i, s := range list {
		assert.Equal(t, i, s.DisplayOrder)
	}
}

func TestReorderRejectsBadIndexes(t *testing.T) {
	repo := memory.NewServices()
	seed(t, repo, "A", "B")
	svc := NewService(repo, "SAR")

	_, err := svc.Reorder(context.Background(), ReorderCommand{Old: 0, New: 5})
	assert.ErrorIs(t, err, ErrInvalidReorder)
}
