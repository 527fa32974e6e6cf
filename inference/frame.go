package inference

import (
	"fmt"

	"grocerysales/ml"
	"grocerysales/schema"
)

// RecordFrame lays a record out as a one-row frame in schema column order.
// A categorical slot left empty is reported as a missing field.
func RecordFrame(record schema.InputRecord) (ml.Frame, error) {
	columns := schema.AllFieldNames()
	row := record.Values()
	for i, name := range columns {
		if s, ok := row[i].(string); ok && s == "" {
			return ml.Frame{}, fmt.Errorf("missing value for field %q", name)
		}
	}
	return ml.NewFrame(columns, row), nil
}
