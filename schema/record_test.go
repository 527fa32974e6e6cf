package schema

import (
	"errors"
	"strings"
	"testing"
)

func validRecord() InputRecord {
	return InputRecord{
		ItemIdentifier:          "FDA15",
		ItemFatContent:          "Low Fat",
		ItemType:                "Dairy",
		OutletIdentifier:        "OUT049",
		OutletSize:              "Medium",
		OutletLocationType:      "Tier 1",
		OutletType:              "Supermarket Type1",
		ItemWeight:              12.95,
		ItemMRP:                 149.09,
		ItemVisibility:          0.0164,
		OutletEstablishmentYear: 1999,
	}
}

func TestDefaultRecordIsValid(t *testing.T) {
	record := DefaultRecord()
	if err := record.Validate(); err != nil {
		t.Fatalf("default record invalid: %v", err)
	}
	if record.ItemIdentifier != "FDA15" || record.OutletEstablishmentYear != 1985 {
		t.Fatalf("unexpected defaults: %+v", record)
	}
	if record.ItemMRP != (31.29+266.8884)/2 {
		t.Fatalf("expected midpoint MRP, got %v", record.ItemMRP)
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	record := validRecord()
	record.OutletSize = ""
	record.ItemType = "Toys"
	record.ItemMRP = 300
	record.OutletEstablishmentYear = 2015

	err := record.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := map[string]bool{}
	for _, v := range ve.Violations {
		fields[v.Field] = true
	}
	for _, name := range []string{OutletSize, ItemType, ItemMRP, OutletEstablishmentYear} {
		if !fields[name] {
			t.Fatalf("expected violation for %s in %v", name, ve.Violations)
		}
	}
	if len(ve.Violations) != 4 {
		t.Fatalf("expected 4 violations, got %d", len(ve.Violations))
	}
	if !strings.Contains(err.Error(), "Outlet_Size: value is required") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestValueAndValues(t *testing.T) {
	record := validRecord()
	v, err := record.Value(ItemMRP)
	if err != nil || v.(float64) != 149.09 {
		t.Fatalf("unexpected value %v, %v", v, err)
	}
	if _, err := record.Value("Item_Colour"); err == nil {
		t.Fatal("expected error for unknown field")
	}
	values := record.Values()
	if len(values) != len(AllFieldNames()) {
		t.Fatalf("expected %d values, got %d", len(AllFieldNames()), len(values))
	}
	if values[0] != "FDA15" || values[len(values)-1] != 1999 {
		t.Fatalf("values out of order: %v", values)
	}
}

func TestSummarize(t *testing.T) {
	record := validRecord()
	record.ItemMRP = MustDomain(ItemMRP).Max
	record.ItemVisibility = 0

	summaries := Summarize(record)
	if len(summaries) != 3 {
		t.Fatalf("expected 3 numeric summaries, got %d", len(summaries))
	}
	byField := map[string]NumericSummary{}
	for _, s := range summaries {
		byField[s.Field] = s
	}
	if byField[ItemMRP].Position != 1 {
		t.Fatalf("expected MRP at the top of its range, got %v", byField[ItemMRP].Position)
	}
	if byField[ItemVisibility].Position != 0 {
		t.Fatalf("expected visibility at the bottom of its range, got %v", byField[ItemVisibility].Position)
	}
	if p := byField[ItemWeight].Position; p <= 0 || p >= 1 {
		t.Fatalf("expected weight inside its range, got %v", p)
	}
}
