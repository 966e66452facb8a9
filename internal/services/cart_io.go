package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"shoplite/internal/models"

	"github.com/go-playground/validator/v10"
)

// ExportFormat is a cart serialization format.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// ParseExportFormat maps a request value onto an ExportFormat.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("format %q: %w", s, ErrUnknownFormat)
}

var csvHeader = []string{"id", "title", "price", "qty", "subtotal"}

type exportRecord struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Qty      int     `json:"qty"`
	Subtotal float64 `json:"subtotal"`
}

// Export serializes the cart lines. It returns ok == false when the cart is
// empty, in which case there is nothing to export.
func Export(cart *models.Cart, format ExportFormat) (data []byte, ok bool, err error) {
	if format != FormatCSV && format != FormatJSON {
		return nil, false, fmt.Errorf("format %q: %w", format, ErrUnknownFormat)
	}
	if cart.IsEmpty() {
		return nil, false, nil
	}

	lines := cart.Lines()
	records := make([]exportRecord, 0, len(lines))
	for _, l := range lines {
		records = append(records, exportRecord{
			ID:       l.ProductID,
			Title:    l.Title,
			Price:    l.Price,
			Qty:      l.Qty,
			Subtotal: l.Subtotal(),
		})
	}

	if format == FormatJSON {
		data, err = json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, false, fmt.Errorf("failed to encode cart as JSON: %w", err)
		}
		return data, true, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, false, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Title,
			strconv.FormatFloat(r.Price, 'f', 2, 64),
			strconv.Itoa(r.Qty),
			strconv.FormatFloat(r.Subtotal, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, false, fmt.Errorf("failed to write CSV row for product %d: %w", r.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, false, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), true, nil
}

// MaxImportPrice is the highest unit price accepted from an import file.
const MaxImportPrice = 100000

// importRecord uses pointers so absent fields can be told apart from zero values.
// The qty and price bounds keep cart totals finite.
type importRecord struct {
	ID    *int64   `json:"id" validate:"required,gt=0"`
	Title *string  `json:"title" validate:"required"`
	Price *float64 `json:"price" validate:"required,gte=0,lte=100000"`
	Qty   *int     `json:"qty" validate:"omitempty,lte=999"`
}

var importValidator = newImportValidator()

func newImportValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseCartLines decodes a JSON import payload into cart lines. Entries
// without qty count as one unit; entries with qty <= 0 are dropped. Repeated
// ids are merged the way repeated adds would be, and a merged line above
// MaxLineQty is rejected.
func ParseCartLines(data []byte) ([]models.CartLine, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &FormatError{Reason: "top-level value must be an array"}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, &FormatError{Reason: "malformed JSON", Err: err}
	}

	cart := models.NewCart()
	for i, raw := range entries {
		rec, err := decodeImportRecord(i, raw)
		if err != nil {
			return nil, err
		}
		qty := 1
		if rec.Qty != nil {
			qty = *rec.Qty
		}
		if existing, ok := cart.Get(*rec.ID); ok && qty > 0 && existing.Qty+qty > MaxLineQty {
			return nil, &ValidationError{Index: i, Field: "qty", Reason: fmt.Sprintf("brings product %d above %d units", *rec.ID, MaxLineQty)}
		}
		AddToCart(cart, models.Product{ID: *rec.ID, Title: *rec.Title, Price: *rec.Price}, qty)
	}
	return cart.Lines(), nil
}

func decodeImportRecord(index int, raw json.RawMessage) (*importRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ValidationError{Index: index, Reason: "must be an object"}
	}

	var rec importRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{Index: index, Field: typeErr.Field, Reason: "has the wrong type, expected " + typeErr.Type.String()}
		}
		return nil, &ValidationError{Index: index, Reason: err.Error()}
	}

	if err := importValidator.Struct(rec); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			reason := "is required"
			if fe.Tag() != "required" {
				reason = fmt.Sprintf("failed the %s=%s check", fe.Tag(), fe.Param())
			}
			return nil, &ValidationError{Index: index, Field: fe.Field(), Reason: reason}
		}
		return nil, &ValidationError{Index: index, Reason: err.Error()}
	}
	return &rec, nil
}

// Import replaces the cart with the lines in a JSON payload. On error the
// cart is left untouched and the error is a *FormatError or *ValidationError.
func Import(cart *models.Cart, data []byte) error {
	lines, err := ParseCartLines(data)
	if err != nil {
		return err
	}
	cart.Reset()
	for _, l := range lines {
		cart.Put(l)
	}
	return nil
}
