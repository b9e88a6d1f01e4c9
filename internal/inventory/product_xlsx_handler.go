package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"catalog-backend/internal/audit"
	"catalog-backend/internal/auth"
	"catalog-backend/internal/catalog"
	"catalog-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet = "Products"
	xlsxMIME    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// xlsxColumns is the column order of exported files. Imports match headers
// case-insensitively and accept the columns in any order.
var xlsxColumns = []string{"Name", "SKU", "Brand", "Color", "Price", "Cost", "Stock Qty", "Description", "Active"}

// GET /api/admin/products/export accepts the same filters as the list endpoint.
func ExportProductsHandler(products *catalog.ProductRepository, brands *catalog.BrandRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := productFilters(c)
		if err != nil {
			return err
		}

		rows, err := products.All(c.UserContext(), f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load products")
		}

		name := "products"
		if f.BrandID != nil {
			b, err := brands.Get(c.UserContext(), *f.BrandID)
			if err != nil {
				return writeError(c, err)
			}
			name += "-" + b.Slug
		}
		name += "-" + time.Now().Format("20060102") + ".xlsx"

		book, err := buildProductWorkbook(rows)
		if err != nil {
			log.Printf("xlsx export failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build the export file")
		}
		defer book.Close()

		buf, err := book.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build the export file")
		}

		c.Set(fiber.HeaderContentType, xlsxMIME)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
		return c.Send(buf.Bytes())
	}
}

func buildProductWorkbook(products []models.Product) (*excelize.File, error) {
	book := excelize.NewFile()
	if err := book.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	header := make([]any, len(xlsxColumns))
	for i, col := range xlsxColumns {
		header[i] = col
	}
	if err := book.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}

	moneyStyle, err := book.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	for i, p := range products {
		brand := ""
		if p.Brand != nil {
			brand = p.Brand.Name
		}
		active := "yes"
		if !p.Active() {
			active = "no"
		}
		row := []any{
			p.Name,
			deref(p.SKU),
			brand,
			deref(p.Color),
			moneyCell(catalog.FormatAmount(p.Price)),
			moneyCell(catalog.FormatAmount(p.Cost)),
			p.StockQty,
			deref(p.Description),
			active,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := book.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if len(products) > 0 {
		last := len(products) + 1
		if err := book.SetCellStyle(exportSheet, "E2", fmt.Sprintf("F%d", last), moneyStyle); err != nil {
			return nil, err
		}
	}
	if err := book.SetColWidth(exportSheet, "A", "A", 40); err != nil {
		return nil, err
	}
	if err := book.SetColWidth(exportSheet, "H", "H", 60); err != nil {
		return nil, err
	}
	return book, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func moneyCell(s *string) any {
	if s == nil {
		return ""
	}
	f, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return *s
	}
	return f
}

type ImportRowError struct {
	Row    int               `json:"row"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type ImportResult struct {
	Created       int              `json:"created"`
	Updated       int              `json:"updated"`
	BrandsCreated int              `json:"brands_created"`
	Failed        int              `json:"failed"`
	Errors        []ImportRowError `json:"errors"`
}

// POST /api/admin/products/import (multipart, field "file")
func ImportProductsHandler(products *catalog.ProductRepository, brands *catalog.BrandRepository, rec Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "File upload failed: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files can be imported")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not open the uploaded file")
		}
		defer file.Close()

		book, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read the Excel file: "+err.Error())
		}
		defer book.Close()

		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "The Excel file has no sheets")
		}
		rows, err := book.GetRows(sheets[0], excelize.Options{RawCellValue: true})
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Could not read the sheet: "+err.Error())
		}

		imp := &importer{products: products, brands: brands, rec: rec, actor: actor}
		result, err := imp.run(c.UserContext(), rows)
		if err != nil {
			return err
		}
		return c.JSON(result)
	}
}

type importer struct {
	products *catalog.ProductRepository
	brands   *catalog.BrandRepository
	rec      Recorder
	actor    auth.Actor
}

// run imports every data row on its own. A failing row is reported and
// does not stop the rest.
func (imp *importer) run(ctx context.Context, rows [][]string) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "The Excel file is empty")
	}

	cols := headerIndex(rows[0])
	for _, required := range []string{"name", "brand"} {
		if _, ok := cols[required]; !ok {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Missing %q column", required))
		}
	}

	result := &ImportResult{Errors: []ImportRowError{}}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		// spreadsheet rows are 1-based and include the header
		if err := imp.importRow(ctx, cols, row, result); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, rowError(i+1, err))
		}
	}
	return result, nil
}

func (imp *importer) importRow(ctx context.Context, cols map[string]int, row []string, result *ImportResult) error {
	cell := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	optional := func(name string) *string {
		v := cell(name)
		if v == "" {
			return nil
		}
		return &v
	}

	in := catalog.ProductInput{
		Name:        cell("name"),
		SKU:         optional("sku"),
		Color:       optional("color"),
		Description: optional("description"),
	}
	if v := cell("price"); v != "" {
		a := catalog.Amount(v)
		in.Price = &a
	}
	if v := cell("cost"); v != "" {
		a := catalog.Amount(v)
		in.Cost = &a
	}
	var stockGiven, activeGiven bool
	if v := cell("stock qty"); v != "" {
		qty, err := strconv.Atoi(v)
		if err != nil {
			return &catalog.ValidationError{Fields: map[string]string{"stock_qty": "stock_qty must be an integer"}}
		}
		in.StockQty = qty
		stockGiven = true
	}
	if v := cell("active"); v != "" {
		active, err := parseTernary(v)
		if err != nil || active == nil {
			return &catalog.ValidationError{Fields: map[string]string{"is_active": "is_active must be yes or no"}}
		}
		in.IsActive = active
		activeGiven = true
	}

	// brand_id is resolved below; a row failing on anything else creates nothing
	in.Normalize()
	if err := withoutField(in.Validate(), "brand_id"); err != nil {
		return err
	}

	brandName := cell("brand")
	if brandName == "" {
		return &catalog.ValidationError{Fields: map[string]string{"brand_id": "brand is required"}}
	}
	brand, err := imp.brand(ctx, brandName, result)
	if err != nil {
		return err
	}
	in.BrandID = brand.ID

	if in.SKU != nil {
		existing, err := imp.products.FindBySKU(ctx, *in.SKU)
		switch {
		case err == nil:
			patch := sheetPatch(in, cols, stockGiven, activeGiven)
			before, after, err := imp.products.Patch(ctx, existing.ID, patch)
			if err != nil {
				return err
			}
			result.Updated++
			imp.record(ctx, models.EntityProduct, after.ID, models.AuditActionUpdate,
				fmt.Sprintf("Updated product %s from import", after.Name), before, after)
			return nil
		case !errors.Is(err, catalog.ErrProductNotFound):
			return err
		}
	}

	p, err := imp.products.Create(ctx, in)
	if err != nil {
		return err
	}
	result.Created++
	imp.record(ctx, models.EntityProduct, p.ID, models.AuditActionCreate,
		fmt.Sprintf("Created product %s from import", p.Name), nil, p)
	return nil
}

// sheetPatch limits an update to the columns the sheet carries. An empty cell
// in a nullable column clears it; an empty stock or active cell keeps the value.
func sheetPatch(in catalog.ProductInput, cols map[string]int, stockGiven, activeGiven bool) catalog.ProductPatch {
	has := func(name string) bool {
		_, ok := cols[name]
		return ok
	}
	patch := catalog.ProductPatch{
		Name:    &in.Name,
		BrandID: &in.BrandID,
	}
	if has("color") {
		patch.Color = catalog.Field[string]{Set: true, Value: in.Color}
	}
	if has("price") {
		patch.Price = catalog.Field[catalog.Amount]{Set: true, Value: in.Price}
	}
	if has("cost") {
		patch.Cost = catalog.Field[catalog.Amount]{Set: true, Value: in.Cost}
	}
	if has("description") {
		patch.Description = catalog.Field[string]{Set: true, Value: in.Description}
	}
	if stockGiven {
		patch.StockQty = &in.StockQty
	}
	if activeGiven {
		patch.IsActive = in.IsActive
	}
	return patch
}

// brand finds a brand by name ignoring case and creates it when missing.
func (imp *importer) brand(ctx context.Context, name string, result *ImportResult) (*models.Brand, error) {
	b, err := imp.brands.FindByName(ctx, name)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, catalog.ErrBrandNotFound) {
		return nil, err
	}

	b, err = imp.brands.Create(ctx, catalog.BrandInput{Name: name})
	if err != nil {
		return nil, err
	}
	result.BrandsCreated++
	imp.record(ctx, models.EntityBrand, b.ID, models.AuditActionCreate,
		fmt.Sprintf("Created brand %s from import", b.Name), nil, b)
	return b, nil
}

func (imp *importer) record(ctx context.Context, entity string, id uint, action models.AuditAction, desc string, before, after any) {
	imp.rec.Record(ctx, audit.LogOptions{
		UserID:      imp.actor.ID,
		UserName:    imp.actor.Name,
		EntityType:  entity,
		EntityID:    id,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.ReplaceAll(key, "_", " ")
		switch key {
		case "product", "product name":
			key = "name"
		case "stock", "qty":
			key = "stock qty"
		case "is active":
			key = "active"
		case "brand name":
			key = "brand"
		}
		if _, dup := cols[key]; !dup && key != "" {
			cols[key] = i
		}
	}
	return cols
}

func withoutField(err error, field string) error {
	var ve *catalog.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	delete(ve.Fields, field)
	if len(ve.Fields) == 0 {
		return nil
	}
	return ve
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func rowError(row int, err error) ImportRowError {
	var ve *catalog.ValidationError
	if errors.As(err, &ve) {
		return ImportRowError{Row: row, Error: firstMessage(ve), Fields: ve.Fields}
	}
	log.Printf("import row %d: %v", row, err)
	return ImportRowError{Row: row, Error: "Could not import this row"}
}
