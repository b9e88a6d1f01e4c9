package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"catalog-backend/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	BrandNameMax         = 255
	ProductNameMax       = 255
	SKUMax               = 100
	ColorMax             = 100
	DescriptionMax       = 5000
	LowStockThreshold    = 5
	OutOfStockThreshold  = 0
	defaultProductActive = true
	defaultProductStock  = 0
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		return Amount(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("moneymax", func(fl validator.FieldLevel) bool {
		return withinColumn(Amount(fl.Field().String()))
	})
	return v
}

type BrandInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (in *BrandInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
}

func (in BrandInput) Validate() error {
	return check(in)
}

// ProductInput is the complete set of writable product fields.
type ProductInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	SKU         *string `json:"sku" validate:"omitempty,max=100"`
	BrandID     uint    `json:"brand_id" validate:"required"`
	Color       *string `json:"color" validate:"omitempty,max=100"`
	Price       *Amount `json:"price" validate:"omitempty,money,moneymax"`
	Cost        *Amount `json:"cost" validate:"omitempty,money,moneymax"`
	StockQty    int     `json:"stock_qty" validate:"min=0"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	IsActive    *bool   `json:"is_active"`
}

// Normalize trims text and turns blank optional values into absent ones.
func (in *ProductInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = trimOptional(in.SKU)
	in.Color = trimOptional(in.Color)
	in.Description = trimOptional(in.Description)
	if in.Price != nil && strings.TrimSpace(string(*in.Price)) == "" {
		in.Price = nil
	}
	if in.Cost != nil && strings.TrimSpace(string(*in.Cost)) == "" {
		in.Cost = nil
	}
	if in.IsActive == nil {
		active := defaultProductActive
		in.IsActive = &active
	}
}

func (in ProductInput) Validate() error {
	return check(in)
}

// InputFromProduct returns the writable state of a stored product.
func InputFromProduct(p *models.Product) ProductInput {
	active := p.Active()
	return ProductInput{
		Name:        p.Name,
		SKU:         copyString(p.SKU),
		BrandID:     p.BrandID,
		Color:       copyString(p.Color),
		Price:       amountFromColumn(p.Price),
		Cost:        amountFromColumn(p.Cost),
		StockQty:    p.StockQty,
		Description: copyString(p.Description),
		IsActive:    &active,
	}
}

// ProductPatch carries a partial update. Nullable fields distinguish an absent
// key from an explicit null, which clears the value.
type ProductPatch struct {
	Name        *string       `json:"name"`
	SKU         Field[string] `json:"sku"`
	BrandID     *uint         `json:"brand_id"`
	Color       Field[string] `json:"color"`
	Price       Field[Amount] `json:"price"`
	Cost        Field[Amount] `json:"cost"`
	StockQty    *int          `json:"stock_qty"`
	Description Field[string] `json:"description"`
	IsActive    *bool         `json:"is_active"`
}

func (p ProductPatch) Apply(in *ProductInput) {
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.SKU.Set {
		in.SKU = p.SKU.Value
	}
	if p.BrandID != nil {
		in.BrandID = *p.BrandID
	}
	if p.Color.Set {
		in.Color = p.Color.Value
	}
	if p.Price.Set {
		in.Price = p.Price.Value
	}
	if p.Cost.Set {
		in.Cost = p.Cost.Value
	}
	if p.StockQty != nil {
		in.StockQty = *p.StockQty
	}
	if p.Description.Set {
		in.Description = p.Description.Value
	}
	if p.IsActive != nil {
		in.IsActive = p.IsActive
	}
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := ve.Fields[fe.Field()]; seen {
			continue
		}
		ve.Fields[fe.Field()] = message(fe)
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s may not be greater than %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s may not be greater than %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "money":
		return fmt.Sprintf("%s must be a non-negative amount with at most 2 decimal places", fe.Field())
	case "moneymax":
		return fmt.Sprintf("%s may not be greater than %s", fe.Field(), maxAmount.StringFixed(2))
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
