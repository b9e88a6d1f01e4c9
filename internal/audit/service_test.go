package audit

import (
	"context"
	"strings"
	"testing"

	"catalog-backend/internal/catalog"
	"catalog-backend/internal/models"
	"catalog-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *Service
	brands   *catalog.BrandRepository
	products *catalog.ProductRepository
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	brands := catalog.NewBrandRepository(db)
	products := catalog.NewProductRepository(db)
	return &fixture{
		svc:      NewService(db, brands, products),
		brands:   brands,
		products: products,
	}
}

func (f *fixture) log(t *testing.T, opts LogOptions) models.AuditLog {
	t.Helper()
	opts.UserID = 1
	opts.UserName = "Admin"
	require.NoError(t, f.svc.WriteLog(context.Background(), opts))

	logs, err := f.svc.List(context.Background(), ListFilters{EntityType: opts.EntityType, EntityID: opts.EntityID})
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	return logs[0]
}

func TestWriteLogAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.WriteLog(ctx, LogOptions{UserID: 1, EntityType: models.EntityBrand, EntityID: 1, Action: models.AuditActionCreate, Description: "a"}))
	require.NoError(t, f.svc.WriteLog(ctx, LogOptions{UserID: 2, EntityType: models.EntityProduct, EntityID: 1, Action: models.AuditActionCreate, Description: "b"}))
	f.svc.Record(ctx, LogOptions{UserID: 2, EntityType: models.EntityProduct, EntityID: 2, Action: models.AuditActionDelete, Description: strings.Repeat("x", 300)})

	all, err := f.svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.AuditActionDelete, all[0].Action, "newest first")
	assert.Len(t, []rune(all[0].Description), descriptionMax)
	assert.Equal(t, "null", all[0].BeforeData)

	byUser, err := f.svc.List(ctx, ListFilters{UserID: 2})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byEntity, err := f.svc.List(ctx, ListFilters{EntityType: models.EntityProduct, EntityID: 1})
	require.NoError(t, err)
	require.Len(t, byEntity, 1)
	assert.Equal(t, "b", byEntity[0].Description)
}

func TestUndo_ProductCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.brands.Create(ctx, catalog.BrandInput{Name: "Michelin"})
	require.NoError(t, err)
	p, err := f.products.Create(ctx, catalog.ProductInput{Name: "Pilot Sport 4", BrandID: b.ID})
	require.NoError(t, err)

	entry := f.log(t, LogOptions{EntityType: models.EntityProduct, EntityID: p.ID, Action: models.AuditActionCreate, After: p})

	require.NoError(t, f.svc.Undo(ctx, entry.ID, 2, "Editor"))
	_, err = f.products.Get(ctx, p.ID)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	assert.ErrorIs(t, f.svc.Undo(ctx, entry.ID, 2, "Editor"), ErrAlreadyUndone)

	logs, err := f.svc.List(ctx, ListFilters{EntityType: models.EntityProduct, EntityID: p.ID})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	undo := logs[0]
	assert.Equal(t, models.AuditActionUndo, undo.Action)
	assert.True(t, undo.Undone)
	assert.Equal(t, "Editor", undo.UserName)
	assert.True(t, logs[1].IsUndone)
	require.NotNil(t, logs[1].UndoneBy)
	assert.Equal(t, uint(2), *logs[1].UndoneBy)

	assert.ErrorIs(t, f.svc.Undo(ctx, undo.ID, 2, "Editor"), ErrNotUndoable)
	assert.ErrorIs(t, f.svc.Undo(ctx, 9999, 2, "Editor"), ErrLogNotFound)
}

func TestUndo_ProductUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.brands.Create(ctx, catalog.BrandInput{Name: "Michelin"})
	require.NoError(t, err)
	price := catalog.Amount("129.90")
	sku := "MIC-PS4"
	p, err := f.products.Create(ctx, catalog.ProductInput{Name: "Pilot Sport 4", SKU: &sku, BrandID: b.ID, Price: &price, StockQty: 7})
	require.NoError(t, err)

	before, after, err := f.products.Patch(ctx, p.ID, catalog.ProductPatch{
		SKU:   catalog.Null[string](),
		Price: catalog.Null[catalog.Amount](),
	})
	require.NoError(t, err)
	entry := f.log(t, LogOptions{EntityType: models.EntityProduct, EntityID: p.ID, Action: models.AuditActionUpdate, Before: before, After: after})

	require.NoError(t, f.svc.Undo(ctx, entry.ID, 1, "Admin"))

	restored, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, restored.SKU)
	assert.Equal(t, "MIC-PS4", *restored.SKU)
	assert.Equal(t, "129.90", *catalog.FormatAmount(restored.Price))
	assert.Equal(t, 7, restored.StockQty)
}

func TestUndo_BrandDeleteRestoresProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.brands.Create(ctx, catalog.BrandInput{Name: "Michelin"})
	require.NoError(t, err)
	var ids []uint
	for _, name := range []string{"Pilot Sport 4", "Alpin 6", "CrossClimate"} {
		p, err := f.products.Create(ctx, catalog.ProductInput{Name: name, BrandID: b.ID})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	snap, err := f.brands.Delete(ctx, b.ID)
	require.NoError(t, err)
	entry := f.log(t, LogOptions{EntityType: models.EntityBrand, EntityID: b.ID, Action: models.AuditActionDelete, Before: snap})

	require.NoError(t, f.svc.Undo(ctx, entry.ID, 1, "Admin"))

	restored, err := f.brands.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Michelin", restored.Name)
	for _, id := range ids {
		p, err := f.products.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, b.ID, p.BrandID)
	}
}

func TestUndo_BrandRename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.brands.Create(ctx, catalog.BrandInput{Name: "Michelin"})
	require.NoError(t, err)
	before, after, err := f.brands.Update(ctx, b.ID, catalog.BrandInput{Name: "Michelin Group"})
	require.NoError(t, err)
	entry := f.log(t, LogOptions{EntityType: models.EntityBrand, EntityID: b.ID, Action: models.AuditActionUpdate, Before: before, After: after})

	require.NoError(t, f.svc.Undo(ctx, entry.ID, 1, "Admin"))
	got, err := f.brands.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Michelin", got.Name)
	assert.Equal(t, "michelin", got.Slug)
}

func TestUndo_FailureReleasesEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.brands.Create(ctx, catalog.BrandInput{Name: "Michelin"})
	require.NoError(t, err)
	p, err := f.products.Create(ctx, catalog.ProductInput{Name: "Pilot Sport 4", BrandID: b.ID})
	require.NoError(t, err)
	entry := f.log(t, LogOptions{EntityType: models.EntityProduct, EntityID: p.ID, Action: models.AuditActionCreate, After: p})

	// the product is already gone
	_, err = f.products.Delete(ctx, p.ID)
	require.NoError(t, err)

	err = f.svc.Undo(ctx, entry.ID, 1, "Admin")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	logs, err := f.svc.List(ctx, ListFilters{EntityType: models.EntityProduct, EntityID: p.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].IsUndone)
	assert.Nil(t, logs[0].UndoneBy)
}

func TestUndo_BrandCreateKeepsLaterProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.brands.Create(ctx, catalog.BrandInput{Name: "Michelin"})
	require.NoError(t, err)
	entry := f.log(t, LogOptions{EntityType: models.EntityBrand, EntityID: b.ID, Action: models.AuditActionCreate, After: b})

	for _, name := range []string{"Pilot Sport 4", "Alpin 6", "CrossClimate"} {
		_, err := f.products.Create(ctx, catalog.ProductInput{Name: name, BrandID: b.ID})
		require.NoError(t, err)
	}

	err = f.svc.Undo(ctx, entry.ID, 1, "Admin")
	assert.ErrorIs(t, err, catalog.ErrBrandHasProducts)

	_, total, err := f.products.List(ctx, catalog.ProductFilters{BrandID: &b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	logs, err := f.svc.List(ctx, ListFilters{EntityType: models.EntityBrand, EntityID: b.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1, "no undo row written")
	assert.False(t, logs[0].IsUndone, "entry stays undoable")
}

func TestUndo_EmptyBrandCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.brands.Create(ctx, catalog.BrandInput{Name: "Michelin"})
	require.NoError(t, err)
	entry := f.log(t, LogOptions{EntityType: models.EntityBrand, EntityID: b.ID, Action: models.AuditActionCreate, After: b})

	require.NoError(t, f.svc.Undo(ctx, entry.ID, 1, "Admin"))
	_, err = f.brands.Get(ctx, b.ID)
	assert.ErrorIs(t, err, catalog.ErrBrandNotFound)
}
