package fingerprint

import (
	"errors"
	"math"
	"testing"
)

func TestScalarDistance(t *testing.T) {
	d, err := ScalarDistance(Scalar(3.5), Scalar(1.0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 2.5 {
		t.Errorf("expected distance 2.5, got %f", d)
	}

	d, err = ScalarDistance(Scalar(1.0), Scalar(3.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 2.5 {
		t.Errorf("expected symmetric distance 2.5, got %f", d)
	}
}

func TestScalarDistance_KindMismatch(t *testing.T) {
	_, err := ScalarDistance(Scalar(1.0), Vector([]float32{1, 2}))
	if err == nil {
		t.Fatal("expected error for mismatched kinds")
	}
	var mismatch *KindMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("expected KindMismatchError, got %T", err)
	}
}

func TestBhattacharyya_Identical(t *testing.T) {
	h := make([]float64, HistogramBins)
	h[10] = 100
	h[200] = 50

	d, err := Bhattacharyya(Histogram(h), Histogram(h))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d > 1e-9 {
		t.Errorf("expected zero distance for identical histograms, got %f", d)
	}
}

func TestBhattacharyya_Disjoint(t *testing.T) {
	h1 := make([]float64, HistogramBins)
	h2 := make([]float64, HistogramBins)
	h1[0] = 100
	h2[255] = 100

	d, err := Bhattacharyya(Histogram(h1), Histogram(h2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d-1) > 1e-9 {
		t.Errorf("expected distance 1 for disjoint histograms, got %f", d)
	}
}

func TestBhattacharyya_EmptyHistogram(t *testing.T) {
	h1 := make([]float64, HistogramBins)
	h2 := make([]float64, HistogramBins)
	h1[0] = 100

	if _, err := Bhattacharyya(Histogram(h1), Histogram(h2)); err == nil {
		t.Error("expected error for empty histogram")
	}
}

func TestLandmarkDistance(t *testing.T) {
	a := make([][2]float32, LandmarkPoints)
	b := make([][2]float32, LandmarkPoints)
	for i := range b {
		b[i] = [2]float32{1, 2}
	}

	d, err := LandmarkDistance(Landmarks(a), Landmarks(b))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := float64(LandmarkPoints * 3)
	if d != want {
		t.Errorf("expected distance %f, got %f", want, d)
	}
}

func TestLandmarkDistance_CountMismatch(t *testing.T) {
	a := make([][2]float32, LandmarkPoints)
	b := make([][2]float32, 5)
	if _, err := LandmarkDistance(Landmarks(a), Landmarks(b)); err == nil {
		t.Error("expected error for mismatched landmark counts")
	}
}

func TestCosineDistance(t *testing.T) {
	d, err := CosineDistance(Vector([]float32{1, 0}), Vector([]float32{1, 0}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d > 1e-9 {
		t.Errorf("expected zero distance for identical vectors, got %f", d)
	}

	d, err = CosineDistance(Vector([]float32{1, 0}), Vector([]float32{0, 1}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d-1) > 1e-9 {
		t.Errorf("expected distance 1 for orthogonal vectors, got %f", d)
	}
}

func TestCosineDistance_ZeroVector(t *testing.T) {
	d, err := CosineDistance(Vector([]float32{0, 0}), Vector([]float32{1, 0}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 1 {
		t.Errorf("expected distance 1 for zero vector, got %f", d)
	}
}
