package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrBrandNotFound   = errors.New("brand not found")
	ErrProductNotFound = errors.New("product not found")
	// ErrBrandHasProducts refuses a delete that would cascade to products.
	ErrBrandHasProducts = errors.New("brand still has products")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ValidationError rejects a write. Fields maps a JSON field name to its message.
type ValidationError struct {
	Fields map[string]string
	// Conflict is set when a uniqueness rule rejected the write.
	Conflict bool
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func takenError(field string) *ValidationError {
	return &ValidationError{
		Fields:   map[string]string{field: fmt.Sprintf("%s has already been taken", field)},
		Conflict: true,
	}
}

func unknownBrandError() *ValidationError {
	return fieldError("brand_id", "brand_id does not reference an existing brand")
}

// constraintFields maps index and foreign key names to the field they guard.
var constraintFields = map[string]string{
	"idx_brands_name":       "name",
	"idx_brands_name_lower": "name",
	"idx_products_sku":      "sku",
	"fk_products_brand":     "brand_id",
}

// translateWriteError turns storage constraint violations into a *ValidationError.
// fallback names the field blamed when the constraint cannot be identified.
func translateWriteError(err error, fallback string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		field, ok := constraintFields[pgErr.ConstraintName]
		if !ok {
			field = fallback
		}
		switch pgErr.Code {
		case pgUniqueViolation:
			return takenError(field)
		case pgForeignKeyViolation:
			return unknownBrandError()
		}
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return takenError(fallback)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return unknownBrandError()
	}
	return err
}
