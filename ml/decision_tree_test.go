package ml

import "testing"

func stump(threshold, left, right float64) []TreeNode {
	return []TreeNode{
		{FeatureIdx: 0, Threshold: threshold, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, Value: left},
		{IsLeaf: true, Value: right},
	}
}

func TestDecisionTreePredict(t *testing.T) {
	model, err := NewDecisionTree(stump(0.5, 10, 20), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		in   []float64
		want float64
	}{
		{[]float64{0.1, 9}, 10},
		{[]float64{0.5, 9}, 10},
		{[]float64{0.51, 9}, 20},
	}
	for _, tc := range cases {
		got, err := model.predictVector(tc.in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tc.want {
			t.Fatalf("predict(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDecisionTreeRejectsBadLayout(t *testing.T) {
	cases := map[string][]TreeNode{
		"empty":          nil,
		"feature range":  {{FeatureIdx: 3, LeftChild: 1, RightChild: 2}, {IsLeaf: true}, {IsLeaf: true}},
		"backward child": {{FeatureIdx: 0, LeftChild: 0, RightChild: 1}, {IsLeaf: true}},
		"missing child":  {{FeatureIdx: 0, LeftChild: 1, RightChild: 5}, {IsLeaf: true}},
	}
	for name, nodes := range cases {
		if _, err := NewDecisionTree(nodes, 2); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestRandomForestAverages(t *testing.T) {
	forest, err := NewRandomForest([][]TreeNode{stump(0.5, 10, 20), stump(0.5, 30, 40)}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := forest.predictVector([]float64{0.9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 30 {
		t.Fatalf("expected 30, got %v", got)
	}
	if _, err := NewRandomForest(nil, 1); err == nil {
		t.Fatal("expected an error for an empty forest")
	}
}
