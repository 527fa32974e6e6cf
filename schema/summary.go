package schema

// NumericSummary places one bounded numeric input inside its domain.
type NumericSummary struct {
	Field    string  `json:"field"`
	Value    float64 `json:"value"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Position float64 `json:"position"`
}

// Summarize reports where each bounded numeric value of the record sits in
// its domain. Position is 0 at Min and 1 at Max.
func Summarize(record InputRecord) []NumericSummary {
	var summaries []NumericSummary
	for _, spec := range registry {
		if spec.Domain.Kind != KindBoundedNumeric {
			continue
		}
		value, _ := record.Value(spec.Name)
		f, _ := toFloat(value)
		d := spec.Domain
		position := 0.0
		if d.Max > d.Min {
			position = (f - d.Min) / (d.Max - d.Min)
		}
		summaries = append(summaries, NumericSummary{
			Field:    spec.Name,
			Value:    f,
			Min:      d.Min,
			Max:      d.Max,
			Position: position,
		})
	}
	return summaries
}
