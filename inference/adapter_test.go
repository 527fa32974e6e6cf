package inference

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"grocerysales/ml"
	"grocerysales/schema"
)

var sampleArtifactPath = filepath.Join("..", "models", "sales_forest.json")

type fakeModel struct {
	out   []float64
	err   error
	panic any
	seen  ml.Frame
}

func (f *fakeModel) Predict(frame ml.Frame) ([]float64, error) {
	f.seen = frame
	if f.panic != nil {
		panic(f.panic)
	}
	return f.out, f.err
}

func scenarioRecord() schema.InputRecord {
	return schema.InputRecord{
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

func openSample(t *testing.T) *Adapter {
	t.Helper()
	adapter, err := Open(ml.ModelRandomForest, sampleArtifactPath, nil)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	return adapter
}

func TestPredictScenario(t *testing.T) {
	adapter := openSample(t)
	sales, err := adapter.Predict(scenarioRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsNaN(sales) || math.IsInf(sales, 0) || sales < 0 {
		t.Fatalf("expected finite non-negative sales, got %v", sales)
	}
}

func TestPredictMissingOutletSize(t *testing.T) {
	adapter := openSample(t)
	record := scenarioRecord()
	record.OutletSize = ""

	_, err := adapter.Predict(record)
	var ie *InferenceError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InferenceError, got %T: %v", err, err)
	}
	if !strings.Contains(ie.Message, schema.OutletSize) {
		t.Fatalf("expected message to name the field, got %q", ie.Message)
	}
}

func TestPredictFrameMissingColumn(t *testing.T) {
	adapter := openSample(t)
	frame, err := RecordFrame(scenarioRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Drop Outlet_Size from the frame entirely.
	var columns []string
	var row []any
	for i, name := range frame.Columns {
		if name == schema.OutletSize {
			continue
		}
		columns = append(columns, name)
		row = append(row, frame.Rows[0][i])
	}

	_, err = adapter.PredictFrame(ml.NewFrame(columns, row))
	var ie *InferenceError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InferenceError, got %T: %v", err, err)
	}
	if !strings.Contains(ie.Message, `missing column "Outlet_Size"`) {
		t.Fatalf("unexpected message %q", ie.Message)
	}
}

func TestPredictMRPBounds(t *testing.T) {
	adapter := openSample(t)
	domain := schema.MustDomain(schema.ItemMRP)
	for _, mrp := range []float64{domain.Min, domain.Max} {
		record := scenarioRecord()
		record.ItemMRP = mrp
		sales, err := adapter.Predict(record)
		if err != nil {
			t.Fatalf("MRP %v: unexpected error: %v", mrp, err)
		}
		if math.IsNaN(sales) || math.IsInf(sales, 0) {
			t.Fatalf("MRP %v: non-finite output %v", mrp, sales)
		}
	}
}

func TestPredictNumericBoundsAccepted(t *testing.T) {
	adapter := openSample(t)
	for _, name := range []string{schema.ItemWeight, schema.ItemMRP, schema.ItemVisibility} {
		domain := schema.MustDomain(name)
		for _, v := range []float64{domain.Min, domain.Max} {
			record := scenarioRecord()
			switch name {
			case schema.ItemWeight:
				record.ItemWeight = v
			case schema.ItemMRP:
				record.ItemMRP = v
			case schema.ItemVisibility:
				record.ItemVisibility = v
			}
			if err := record.Validate(); err != nil {
				t.Fatalf("%s=%v should be valid: %v", name, v, err)
			}
			if _, err := adapter.Predict(record); err != nil {
				t.Fatalf("%s=%v: unexpected error: %v", name, v, err)
			}
		}
	}
}

func TestPredictDeterministic(t *testing.T) {
	adapter := openSample(t)
	first, err := adapter.Predict(scenarioRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := adapter.Predict(scenarioRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical output, got %v and %v", first, second)
	}
}

func TestPredictValidRecords(t *testing.T) {
	adapter := openSample(t)
	base := scenarioRecord()
	for _, outletType := range schema.MustDomain(schema.OutletType).Values {
		for _, itemType := range schema.MustDomain(schema.ItemType).Values {
			for _, year := range []int{1985, 1997, 2009} {
				record := base
				record.OutletType = outletType
				record.ItemType = itemType
				record.OutletEstablishmentYear = year
				sales, err := adapter.Predict(record)
				if err != nil {
					var ie *InferenceError
					if !errors.As(err, &ie) {
						t.Fatalf("unclassified error %T: %v", err, err)
					}
					continue
				}
				if math.IsNaN(sales) || math.IsInf(sales, 0) {
					t.Fatalf("non-finite output for %+v", record)
				}
			}
		}
	}
}

func TestPredictOutOfVocabularyIdentifier(t *testing.T) {
	adapter := openSample(t)
	record := scenarioRecord()
	record.ItemIdentifier = "FDZ99"
	if _, err := adapter.Predict(record); err != nil {
		t.Fatalf("out-of-vocabulary identifiers go to the encoder: %v", err)
	}
}

func TestRecordFrameColumnOrder(t *testing.T) {
	frame, err := RecordFrame(scenarioRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := schema.AllFieldNames()
	if len(frame.Columns) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(frame.Columns))
	}
	for i := range want {
		if frame.Columns[i] != want[i] {
			t.Fatalf("column %d: expected %s, got %s", i, want[i], frame.Columns[i])
		}
	}
	if frame.Len() != 1 {
		t.Fatalf("expected one row, got %d", frame.Len())
	}
}

func TestPredictModelFailures(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
		want  string
	}{
		{"model error", &fakeModel{err: errors.New("could not convert string to float")}, "could not convert string to float"},
		{"panic", &fakeModel{panic: "index out of range"}, "model panic: index out of range"},
		{"empty output", &fakeModel{out: []float64{}}, "no predictions"},
		{"nan output", &fakeModel{out: []float64{math.NaN()}}, "non-finite"},
		{"inf output", &fakeModel{out: []float64{math.Inf(1)}}, "non-finite"},
	}
	for _, tt := range tests {
		adapter := New(tt.model, nil)
		sales, err := adapter.Predict(scenarioRecord())
		var ie *InferenceError
		if !errors.As(err, &ie) {
			t.Fatalf("%s: expected InferenceError, got %T: %v", tt.name, err, err)
		}
		if !strings.Contains(ie.Error(), tt.want) {
			t.Fatalf("%s: expected %q in %q", tt.name, tt.want, ie.Error())
		}
		if sales != 0 {
			t.Fatalf("%s: expected zero value on failure, got %v", tt.name, sales)
		}
	}
}

func TestPredictUsesFirstOutput(t *testing.T) {
	model := &fakeModel{out: []float64{1234.5, 99}}
	adapter := New(model, nil)
	sales, err := adapter.Predict(scenarioRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sales != 1234.5 {
		t.Fatalf("expected first output, got %v", sales)
	}
	if model.seen.Len() != 1 {
		t.Fatalf("expected single-row frame, got %d rows", model.seen.Len())
	}
}

func TestUnavailableAdapter(t *testing.T) {
	_, loadErr := Open("", filepath.Join(t.TempDir(), "absent.json"), nil)
	if loadErr == nil {
		t.Fatal("expected load error")
	}
	adapter := Unavailable(loadErr, nil)
	if adapter.Ready() {
		t.Fatal("unavailable adapter should not be ready")
	}
	_, err := adapter.Predict(scenarioRecord())
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	var ie *InferenceError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InferenceError, got %T", err)
	}
}

func TestPredictFrameRejectsMultipleRows(t *testing.T) {
	adapter := New(&fakeModel{out: []float64{1, 2}}, nil)
	frame, _ := RecordFrame(scenarioRecord())
	frame.Rows = append(frame.Rows, frame.Rows[0])
	if _, err := adapter.PredictFrame(frame); err == nil {
		t.Fatal("expected error for multi-row frame")
	}
}
