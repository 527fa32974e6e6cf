package ml

import "fmt"

// LinearRegression is intercept + coefficients·x.
type LinearRegression struct {
	intercept    float64
	coefficients []float64
}

func NewLinearRegression(intercept float64, coefficients []float64, width int) (*LinearRegression, error) {
	if len(coefficients) != width {
		return nil, fmt.Errorf("got %d coefficients for %d encoded inputs", len(coefficients), width)
	}
	return &LinearRegression{intercept: intercept, coefficients: coefficients}, nil
}

func (lr *LinearRegression) predictVector(features []float64) (float64, error) {
	if len(features) != len(lr.coefficients) {
		return 0, fmt.Errorf("got %d inputs, want %d", len(features), len(lr.coefficients))
	}
	sum := lr.intercept
	for i, c := range lr.coefficients {
		sum += c * features[i]
	}
	return sum, nil
}
