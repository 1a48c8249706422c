package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// SizeClass enumerates the portion sizes a line item can be ordered in.
// The wire value is the lowercase string; symbolic names from older
// documents (e.g. "LARGE") are accepted on read.
type SizeClass string

const (
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
)

func (s *SizeClass) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch SizeClass(strings.ToLower(raw)) {
	case SizeSmall, SizeMedium, SizeLarge:
		*s = SizeClass(strings.ToLower(raw))
		return nil
	default:
		return NewError(ErrCodeSerialization, "unknown size class "+raw)
	}
}

// OrderLine is an immutable value object: a priced item within an order.
// Instances are only built through NewOrderLine (which validates) or
// OrderLineFromFields (which rehydrates stored data verbatim).
type OrderLine struct {
	sku       string
	name      string
	size      SizeClass
	quantity  int
	unitPrice decimal.Decimal
}

// OrderLineFields is the low-level field set used to rehydrate an OrderLine
// from storage without running constructor validation. It doubles as the
// wire shape of the value object.
type OrderLineFields struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Size      SizeClass       `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// NewOrderLine validates and builds an order line.
func NewOrderLine(sku, name string, size SizeClass, quantity int, unitPrice decimal.Decimal) (OrderLine, error) {
	if sku == "" {
		return OrderLine{}, NewValidationError("order line requires a sku")
	}
	switch size {
	case SizeSmall, SizeMedium, SizeLarge:
	default:
		return OrderLine{}, NewValidationError("unknown size class " + string(size))
	}
	if quantity <= 0 {
		return OrderLine{}, NewValidationError("order line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return OrderLine{}, NewValidationError("order line price cannot be negative")
	}
	return OrderLine{
		sku:       sku,
		name:      name,
		size:      size,
		quantity:  quantity,
		unitPrice: unitPrice,
	}, nil
}

// OrderLineFromFields assigns fields directly, bypassing validation. Stored
// documents were validated when first written; re-running invariants here
// would reject historical data the business already accepted.
func OrderLineFromFields(f OrderLineFields) OrderLine {
	return OrderLine{
		sku:       f.SKU,
		name:      f.Name,
		size:      f.Size,
		quantity:  f.Quantity,
		unitPrice: f.UnitPrice,
	}
}

func (l OrderLine) SKU() string                { return l.sku }
func (l OrderLine) Name() string               { return l.name }
func (l OrderLine) Size() SizeClass            { return l.size }
func (l OrderLine) Quantity() int              { return l.quantity }
func (l OrderLine) UnitPrice() decimal.Decimal { return l.unitPrice }

// Subtotal returns quantity × unit price with exact precision.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.unitPrice.Mul(decimal.NewFromInt(int64(l.quantity)))
}

// Equal compares two lines field by field.
func (l OrderLine) Equal(other OrderLine) bool {
	return l.sku == other.sku &&
		l.name == other.name &&
		l.size == other.size &&
		l.quantity == other.quantity &&
		l.unitPrice.Equal(other.unitPrice)
}

// Fields exports the line's field set, mainly for serialization.
func (l OrderLine) Fields() OrderLineFields {
	return OrderLineFields{
		SKU:       l.sku,
		Name:      l.name,
		Size:      l.size,
		Quantity:  l.quantity,
		UnitPrice: l.unitPrice,
	}
}

func (l OrderLine) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Fields())
}

func (l *OrderLine) UnmarshalJSON(data []byte) error {
	var f OrderLineFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*l = OrderLineFromFields(f)
	return nil
}
