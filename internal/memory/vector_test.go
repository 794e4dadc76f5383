package memory

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilarityIdentical(t *testing.T) {
	a := []float64{1, 2, 3}
	sim, err := CosineSimilarity(a, a)
	if err != nil {
		t.Fatalf("CosineSimilarity: %v", err)
	}
	if math.Abs(sim-1.0) > 1e-10 {
		t.Errorf("self similarity = %f, want 1.0", sim)
	}
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	sim, err := CosineSimilarity([]float64{1, 0}, []float64{0, 1})
	if err != nil {
		t.Fatalf("CosineSimilarity: %v", err)
	}
	if math.Abs(sim) > 1e-10 {
		t.Errorf("orthogonal similarity = %f, want 0.0", sim)
	}
}

func TestCosineSimilarityOpposite(t *testing.T) {
	sim, err := CosineSimilarity([]float64{1, 0}, []float64{-1, 0})
	if err != nil {
		t.Fatalf("CosineSimilarity: %v", err)
	}
	if math.Abs(sim-(-1.0)) > 1e-10 {
		t.Errorf("opposite similarity = %f, want -1.0", sim)
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := []float64{0.3, -1.2, 4.5, 0.01}
	b := []float64{-2.1, 0.4, 1.1, 3.3}

	ab, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity(a,b): %v", err)
	}
	ba, err := CosineSimilarity(b, a)
	if err != nil {
		t.Fatalf("CosineSimilarity(b,a): %v", err)
	}
	if ab != ba {
		t.Errorf("similarity not symmetric: %f vs %f", ab, ba)
	}
	if ab < -1 || ab > 1 {
		t.Errorf("similarity %f out of [-1,1]", ab)
	}
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	sim, err := CosineSimilarity([]float64{0, 0, 0}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("CosineSimilarity: %v", err)
	}
	if sim != 0 {
		t.Errorf("zero vector similarity = %f, want 0", sim)
	}
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for mismatched dimensions")
	}

	var mismatch *DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error type = %T, want *DimensionMismatchError", err)
	}
	if mismatch.Want != 2 || mismatch.Got != 3 {
		t.Errorf("mismatch = %d/%d, want 2/3", mismatch.Want, mismatch.Got)
	}
}
