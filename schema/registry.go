// Package schema declares the fields a sales prediction request carries and
// the domain each of them accepts.
package schema

import (
	"fmt"
	"math"
)

// Kind classifies how a field is entered and checked.
type Kind string

const (
	KindCategorical    Kind = "categorical"
	KindBoundedNumeric Kind = "bounded_numeric"
	KindOrdinalYear    Kind = "ordinal_year"
)

// Field names, spelled exactly as the model columns.
const (
	ItemIdentifier          = "Item_Identifier"
	ItemFatContent          = "Item_Fat_Content"
	ItemType                = "Item_Type"
	OutletIdentifier        = "Outlet_Identifier"
	OutletSize              = "Outlet_Size"
	OutletLocationType      = "Outlet_Location_Type"
	OutletType              = "Outlet_Type"
	ItemWeight              = "Item_Weight"
	ItemMRP                 = "Item_MRP"
	ItemVisibility          = "Item_Visibility"
	OutletEstablishmentYear = "Outlet_Establishment_Year"
)

// Domain describes the values a field accepts.
type Domain struct {
	Kind Kind `json:"kind"`

	// Categorical. When Open is set, Values are suggestions and any
	// non-empty string is accepted.
	Values []string `json:"values,omitempty"`
	Open   bool     `json:"open,omitempty"`

	// Bounded numeric, inclusive on both ends.
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Step    float64 `json:"step,omitempty"`

	// Ordinal year, ascending.
	Years []int `json:"years,omitempty"`
}

// FieldSpec is one registry entry.
type FieldSpec struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
	Domain Domain `json:"domain"`
}

// UnknownFieldError is returned when the registry is asked about a name it
// does not declare.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Name)
}

var registry = []FieldSpec{
	{
		Name:   ItemIdentifier,
		Prompt: "Select Item Identifier:",
		Domain: Domain{
			Kind:   KindCategorical,
			Values: []string{"FDA15", "DRC01", "FDN15", "FDX07", "NCD19"},
			Open:   true,
		},
	},
	{
		Name:   ItemFatContent,
		Prompt: "Select Item_Fat_Content:",
		Domain: Domain{Kind: KindCategorical, Values: []string{"Low Fat", "Regular"}},
	},
	{
		Name:   ItemType,
		Prompt: "Select Item_Type:",
		Domain: Domain{
			Kind: KindCategorical,
			Values: []string{
				"Dairy", "Soft Drinks", "Meat", "Fruits and Vegetables",
				"Household", "Baking Goods", "Snack Foods", "Frozen Foods",
				"Breakfast", "Health and Hygiene", "Hard Drinks", "Canned",
				"Breads", "Starchy Foods", "Others", "Seafood",
			},
		},
	},
	{
		Name:   OutletIdentifier,
		Prompt: "Select Outlet_Identifier:",
		Domain: Domain{
			Kind: KindCategorical,
			Values: []string{
				"OUT049", "OUT018", "OUT010", "OUT013", "OUT027",
				"OUT045", "OUT017", "OUT046", "OUT035", "OUT019",
			},
		},
	},
	{
		Name:   OutletSize,
		Prompt: "Select Outlet_Size:",
		Domain: Domain{Kind: KindCategorical, Values: []string{"Small", "Medium", "High"}},
	},
	{
		Name:   OutletLocationType,
		Prompt: "Select Outlet_Location_Type:",
		Domain: Domain{Kind: KindCategorical, Values: []string{"Tier 1", "Tier 2", "Tier 3"}},
	},
	{
		Name:   OutletType,
		Prompt: "Select Outlet_Type:",
		Domain: Domain{
			Kind: KindCategorical,
			Values: []string{
				"Supermarket Type1", "Supermarket Type2", "Supermarket Type3", "Grocery Store",
			},
		},
	},
	{
		Name:   ItemWeight,
		Prompt: "Enter Item Weight:",
		Domain: numericDomain(4.555, 21.35, 0.01),
	},
	{
		Name:   ItemMRP,
		Prompt: "Enter Item MRP:",
		Domain: numericDomain(31.29, 266.8884, 0.01),
	},
	{
		Name:   ItemVisibility,
		Prompt: "Enter Item Visibility:",
		Domain: numericDomain(0.0, 0.328391, 0.0001),
	},
	{
		Name:   OutletEstablishmentYear,
		Prompt: "Select Outlet Establishment Year:",
		Domain: Domain{Kind: KindOrdinalYear, Years: yearRange(1985, 2009)},
	},
}

var byName = func() map[string]int {
	index := make(map[string]int, len(registry))
	for i, spec := range registry {
		index[spec.Name] = i
	}
	return index
}()

func numericDomain(min, max, step float64) Domain {
	return Domain{
		Kind:    KindBoundedNumeric,
		Min:     min,
		Max:     max,
		Default: (min + max) / 2,
		Step:    step,
	}
}

func yearRange(first, last int) []int {
	years := make([]int, 0, last-first+1)
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}

// AllFieldNames returns every declared field in column order.
func AllFieldNames() []string {
	names := make([]string, len(registry))
	for i, spec := range registry {
		names[i] = spec.Name
	}
	return names
}

// Fields returns a copy of the registry.
func Fields() []FieldSpec {
	fields := make([]FieldSpec, len(registry))
	for i, spec := range registry {
		fields[i] = spec.clone()
	}
	return fields
}

// Lookup returns the FieldSpec declared under name.
func Lookup(name string) (FieldSpec, error) {
	i, ok := byName[name]
	if !ok {
		return FieldSpec{}, &UnknownFieldError{Name: name}
	}
	return registry[i].clone(), nil
}

// DomainFor returns the domain declared for name.
func DomainFor(name string) (Domain, error) {
	spec, err := Lookup(name)
	if err != nil {
		return Domain{}, err
	}
	return spec.Domain, nil
}

// MustDomain is DomainFor for callers holding a compiled-in field name. An
// unknown name is a programming error and panics.
func MustDomain(name string) Domain {
	domain, err := DomainFor(name)
	if err != nil {
		panic(err)
	}
	return domain
}

func (s FieldSpec) clone() FieldSpec {
	s.Domain.Values = append([]string(nil), s.Domain.Values...)
	s.Domain.Years = append([]int(nil), s.Domain.Years...)
	return s
}

// Empty reports whether the domain admits no value at all.
func (d Domain) Empty() bool {
	switch d.Kind {
	case KindCategorical:
		return len(d.Values) == 0 && !d.Open
	case KindBoundedNumeric:
		return math.IsNaN(d.Min) || math.IsNaN(d.Max) || d.Min > d.Max
	case KindOrdinalYear:
		return len(d.Years) == 0
	}
	return true
}

// Contains reports whether value satisfies the domain. Categorical domains
// take strings, bounded numerics any Go number, years any integer.
func (d Domain) Contains(value any) bool {
	switch d.Kind {
	case KindCategorical:
		s, ok := value.(string)
		return ok && d.containsString(s)
	case KindBoundedNumeric:
		f, ok := toFloat(value)
		return ok && d.containsNumber(f)
	case KindOrdinalYear:
		y, ok := toInt(value)
		return ok && d.containsYear(y)
	}
	return false
}

// Options lists the selectable values as strings, in declared order.
func (d Domain) Options() []string {
	switch d.Kind {
	case KindCategorical:
		return append([]string(nil), d.Values...)
	case KindOrdinalYear:
		options := make([]string, len(d.Years))
		for i, y := range d.Years {
			options[i] = fmt.Sprintf("%d", y)
		}
		return options
	}
	return nil
}

func (d Domain) containsString(s string) bool {
	if s == "" {
		return false
	}
	if d.Open {
		return true
	}
	for _, v := range d.Values {
		if v == s {
			return true
		}
	}
	return false
}

func (d Domain) containsNumber(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return f >= d.Min && f <= d.Max
}

func (d Domain) containsYear(y int) bool {
	for _, v := range d.Years {
		if v == y {
			return true
		}
	}
	return false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}
