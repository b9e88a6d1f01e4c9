package dashboard

import (
	"context"
	"testing"

	"catalog-backend/internal/catalog"
	"catalog-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStats(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	brands := catalog.NewBrandRepository(db)
	products := catalog.NewProductRepository(db)

	stats, err := LoadStats(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, stats.Products)
	assert.Equal(t, "0.00", stats.InventoryValue)
	assert.Empty(t, stats.TopBrands)

	michelin, err := brands.Create(ctx, catalog.BrandInput{Name: "Michelin"})
	require.NoError(t, err)
	pirelli, err := brands.Create(ctx, catalog.BrandInput{Name: "Pirelli"})
	require.NoError(t, err)
	_, err = brands.Create(ctx, catalog.BrandInput{Name: "Empty"})
	require.NoError(t, err)

	price := func(s string) *catalog.Amount {
		a := catalog.Amount(s)
		return &a
	}
	off := false
	inputs := []catalog.ProductInput{
		{Name: "Pilot Sport 4", BrandID: michelin.ID, Price: price("10.50"), StockQty: 4},
		{Name: "Alpin 6", BrandID: michelin.ID, Price: price("20"), StockQty: 10, IsActive: &off},
		{Name: "CrossClimate", BrandID: michelin.ID, StockQty: 0},
		{Name: "P Zero", BrandID: pirelli.ID, Price: price("100"), StockQty: 0},
	}
	for _, in := range inputs {
		_, err := products.Create(ctx, in)
		require.NoError(t, err)
	}

	stats, err = LoadStats(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Brands)
	assert.EqualValues(t, 4, stats.Products)
	assert.EqualValues(t, 3, stats.ActiveProducts)
	assert.EqualValues(t, 1, stats.InactiveProducts)
	assert.EqualValues(t, 3, stats.LowStock)
	assert.EqualValues(t, 2, stats.OutOfStock)
	assert.Equal(t, "242.00", stats.InventoryValue)

	require.Len(t, stats.TopBrands, 2)
	assert.Equal(t, "Michelin", stats.TopBrands[0].Name)
	assert.EqualValues(t, 3, stats.TopBrands[0].ProductsCount)
	assert.Equal(t, "Pirelli", stats.TopBrands[1].Name)
}
