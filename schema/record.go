package schema

import (
	"fmt"
	"strings"
)

// InputRecord is one row of attributes submitted for prediction.
type InputRecord struct {
	ItemIdentifier          string  `json:"Item_Identifier"`
	ItemFatContent          string  `json:"Item_Fat_Content"`
	ItemType                string  `json:"Item_Type"`
	OutletIdentifier        string  `json:"Outlet_Identifier"`
	OutletSize              string  `json:"Outlet_Size"`
	OutletLocationType      string  `json:"Outlet_Location_Type"`
	OutletType              string  `json:"Outlet_Type"`
	ItemWeight              float64 `json:"Item_Weight"`
	ItemMRP                 float64 `json:"Item_MRP"`
	ItemVisibility          float64 `json:"Item_Visibility"`
	OutletEstablishmentYear int     `json:"Outlet_Establishment_Year"`
}

// Violation is one field outside its domain.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violation found in a record.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		if v.Field == "" {
			parts[i] = v.Message
			continue
		}
		parts[i] = v.Field + ": " + v.Message
	}
	return "invalid record: " + strings.Join(parts, "; ")
}

// DefaultRecord returns the values a freshly rendered form starts with.
func DefaultRecord() InputRecord {
	first := func(name string) string { return MustDomain(name).Values[0] }
	return InputRecord{
		ItemIdentifier:          first(ItemIdentifier),
		ItemFatContent:          first(ItemFatContent),
		ItemType:                first(ItemType),
		OutletIdentifier:        first(OutletIdentifier),
		OutletSize:              first(OutletSize),
		OutletLocationType:      first(OutletLocationType),
		OutletType:              first(OutletType),
		ItemWeight:              MustDomain(ItemWeight).Default,
		ItemMRP:                 MustDomain(ItemMRP).Default,
		ItemVisibility:          MustDomain(ItemVisibility).Default,
		OutletEstablishmentYear: MustDomain(OutletEstablishmentYear).Years[0],
	}
}

// Value returns the record's value for the named field.
func (r InputRecord) Value(name string) (any, error) {
	switch name {
	case ItemIdentifier:
		return r.ItemIdentifier, nil
	case ItemFatContent:
		return r.ItemFatContent, nil
	case ItemType:
		return r.ItemType, nil
	case OutletIdentifier:
		return r.OutletIdentifier, nil
	case OutletSize:
		return r.OutletSize, nil
	case OutletLocationType:
		return r.OutletLocationType, nil
	case OutletType:
		return r.OutletType, nil
	case ItemWeight:
		return r.ItemWeight, nil
	case ItemMRP:
		return r.ItemMRP, nil
	case ItemVisibility:
		return r.ItemVisibility, nil
	case OutletEstablishmentYear:
		return r.OutletEstablishmentYear, nil
	}
	return nil, &UnknownFieldError{Name: name}
}

// Values returns the record's values in AllFieldNames order.
func (r InputRecord) Values() []any {
	names := AllFieldNames()
	values := make([]any, len(names))
	for i, name := range names {
		values[i], _ = r.Value(name)
	}
	return values
}

// Validate checks every field against its domain.
func (r InputRecord) Validate() error {
	var violations []Violation
	for _, spec := range registry {
		value, _ := r.Value(spec.Name)
		if spec.Domain.Contains(value) {
			continue
		}
		violations = append(violations, Violation{
			Field:   spec.Name,
			Message: describeViolation(spec.Domain, value),
		})
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func describeViolation(d Domain, value any) string {
	switch d.Kind {
	case KindCategorical:
		if s, _ := value.(string); s == "" {
			return "value is required"
		}
		return fmt.Sprintf("%q is not one of %s", value, strings.Join(d.Values, ", "))
	case KindBoundedNumeric:
		return fmt.Sprintf("%v is outside [%v, %v]", value, d.Min, d.Max)
	case KindOrdinalYear:
		return fmt.Sprintf("%v is outside %d-%d", value, d.Years[0], d.Years[len(d.Years)-1])
	}
	return "invalid value"
}
