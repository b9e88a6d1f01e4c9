package resource

import (
	"fmt"
	"sort"

	"catalog-backend/internal/catalog"
)

const (
	navGroup     = "Catalog"
	currency     = "PHP"
	moneyPrefix  = "₱"
	moneyPattern = `^\d+(\.\d{1,2})?$`
)

var registry = map[string]Descriptor{
	"brands":   brands(),
	"products": products(),
}

// All returns every descriptor in navigation order.
func All() []Descriptor {
	out := make([]Descriptor, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Navigation.Sort < out[j].Navigation.Sort
	})
	return out
}

func Lookup(name string) (Descriptor, bool) {
	d, ok := registry[name]
	return d, ok
}

func brands() Descriptor {
	return Descriptor{
		Name:        "brands",
		Endpoint:    "/api/admin/brands",
		RecordTitle: "name",
		Navigation: Navigation{
			Group: navGroup,
			Label: "Brands",
			Icon:  "heroicon-o-tag",
			Sort:  3,
		},
		Form: []Section{
			{
				Label:       "Brand Information",
				Description: "Create or update brand details used across products.",
				Icon:        "heroicon-o-tag",
				Columns:     2,
				Fields: append([]Field{
					{
						Name:        "name",
						Kind:        KindText,
						Label:       "Brand Name",
						Placeholder: "e.g., Michelin, 3M, Meguiar’s",
						Required:    true,
						MaxLength:   catalog.BrandNameMax,
						Unique:      true,
						ColumnSpan:  "2",
					},
				}, timestampPlaceholders()...),
			},
		},
		Table: Table{
			Columns: []Column{
				{Name: "name", Label: "Brand", Format: FormatText, Searchable: true, Sortable: true, Copyable: true},
				{Name: "products_count", Label: "Products", Format: FormatText, Toggleable: true},
				{Name: "created_at", Label: "Created", Format: FormatDateTime, DateFormat: "M d, Y", Sortable: true, Toggleable: true, HiddenByDefault: true},
				{Name: "updated_at", Label: "Updated", Format: FormatSince, Sortable: true, Toggleable: true, HiddenByDefault: true},
			},
			DefaultSort: Sort{Column: "name", Direction: "asc"},
			Filters:     []Filter{},
			Actions:     []string{"view", "edit"},
			BulkActions: []string{"delete"},
		},
		Pages:     standardPages(),
		Relations: []string{},
	}
}

func products() Descriptor {
	return Descriptor{
		Name:        "products",
		Endpoint:    "/api/admin/products",
		RecordTitle: "name",
		Navigation: Navigation{
			Group: navGroup,
			Label: "Products",
			Icon:  "heroicon-o-cube",
			Sort:  2,
		},
		Form: []Section{
			{
				Label:       "Product Details",
				Description: "Basic information used in listings and orders.",
				Icon:        "heroicon-o-cube",
				Columns:     2,
				Fields: []Field{
					{Name: "name", Kind: KindText, Label: "Product Name", Placeholder: "e.g. Volley V1 Pickleball Paddle", Required: true, MaxLength: catalog.ProductNameMax, ColumnSpan: "2"},
					{Name: "sku", Kind: KindText, Label: "SKU", Placeholder: "e.g. VOL-V1-BLK", MaxLength: catalog.SKUMax, Unique: true},
					{
						Name:     "brand_id",
						Kind:     KindSelect,
						Label:    "Brand",
						Required: true,
						Relationship: &Relationship{
							Resource:    "brands",
							TitleColumn: "name",
							Searchable:  true,
							Preload:     true,
						},
					},
					{Name: "color", Kind: KindText, Label: "Color", Placeholder: "e.g. Black / Red / Blue", MaxLength: catalog.ColorMax},
					{Name: "is_active", Kind: KindToggle, Label: "Active", Default: true},
				},
			},
			{
				Label:       "Pricing & Inventory",
				Description: "Keep pricing and stock accurate to avoid overselling.",
				Icon:        "heroicon-o-banknotes",
				Columns:     3,
				Fields: []Field{
					{Name: "price", Kind: KindText, Label: "Price", Numeric: true, Prefix: moneyPrefix, MinValue: intPtr(0), Pattern: moneyPattern},
					{Name: "cost", Kind: KindText, Label: "Cost (Optional)", Numeric: true, Prefix: moneyPrefix, MinValue: intPtr(0), Pattern: moneyPattern},
					{Name: "stock_qty", Kind: KindText, Label: "Stock Qty", Numeric: true, Required: true, Default: 0, MinValue: intPtr(0)},
				},
			},
			{
				Label:       "Description",
				Description: "Short specs / notes for staff and customers.",
				Icon:        "heroicon-o-document-text",
				Columns:     1,
				Fields: []Field{
					{Name: "description", Kind: KindTextarea, Label: "Description", Rows: 5, MaxLength: catalog.DescriptionMax, ColumnSpan: "full"},
				},
			},
			{
				Label:     "System Info",
				Columns:   2,
				Collapsed: true,
				Fields:    timestampPlaceholders(),
			},
		},
		Table: Table{
			Columns: []Column{
				{Name: "name", Label: "Product", Format: FormatText, Searchable: true, Sortable: true, DescriptionColumn: "sku"},
				{Name: "brand.name", Label: "Brand", Format: FormatText, Sortable: true, Toggleable: true},
				{Name: "color", Label: "Color", Format: FormatText, Toggleable: true, HiddenByDefault: true},
				{Name: "price", Label: "Price", Format: FormatMoney, Currency: currency, Sortable: true},
				{Name: "stock_qty", Label: "Stock", Format: FormatText, Sortable: true, Badge: true},
				{Name: "is_active", Label: "Active", Format: FormatBoolean, Toggleable: true},
				{Name: "updated_at", Label: "Updated", Format: FormatSince, Sortable: true, Toggleable: true, HiddenByDefault: true},
			},
			DefaultSort: Sort{Column: "name", Direction: "asc"},
			Filters: []Filter{
				{
					Name:        "is_active",
					Kind:        FilterTernary,
					Label:       "Active",
					Placeholder: "All",
					TrueLabel:   "Active only",
					FalseLabel:  "Inactive only",
					Query:       "is_active",
				},
				{
					Name:  "low_stock",
					Kind:  FilterToggle,
					Label: fmt.Sprintf("Low Stock (≤ %d)", catalog.LowStockThreshold),
					Query: "low_stock",
				},
				{
					Name:  "out_of_stock",
					Kind:  FilterToggle,
					Label: "Out of Stock",
					Query: "out_of_stock",
				},
			},
			Actions:     []string{"view", "edit"},
			BulkActions: []string{"delete"},
		},
		Pages:     standardPages(),
		Relations: []string{},
	}
}
