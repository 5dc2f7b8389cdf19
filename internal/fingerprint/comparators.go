package fingerprint

import (
	"errors"
	"fmt"
	"math"
)

// Comparator computes a non-negative dissimilarity between two fingerprints
// of the same kind. Comparators are pure; mismatched shapes return an error.
type Comparator func(a, b Fingerprint) (float64, error)

// KindMismatchError signals a comparison across incompatible fingerprint
// kinds. The clustering grouper treats it as infinite distance.
type KindMismatchError struct {
	A, B Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("cannot compare %s fingerprint with %s fingerprint", e.A, e.B)
}

func checkKinds(a, b Fingerprint, want Kind) error {
	if a.kind != want || b.kind != want {
		return &KindMismatchError{A: a.kind, B: b.kind}
	}
	return nil
}

// ScalarDistance is the absolute difference between two scalar keys.
func ScalarDistance(a, b Fingerprint) (float64, error) {
	if err := checkKinds(a, b, KindScalar); err != nil {
		return 0, err
	}
	return math.Abs(a.scalar - b.scalar), nil
}

// Bhattacharyya computes the Bhattacharyya distance between two histograms:
// 0 for identical distributions, 1 for fully disjoint ones.
func Bhattacharyya(a, b Fingerprint) (float64, error) {
	if err := checkKinds(a, b, KindHistogram); err != nil {
		return 0, err
	}
	if len(a.hist) != len(b.hist) {
		return 0, fmt.Errorf("histogram size mismatch: %d vs %d", len(a.hist), len(b.hist))
	}

	var sumA, sumB, coeff float64
	for i := range a.hist {
		sumA += a.hist[i]
		sumB += b.hist[i]
		coeff += math.Sqrt(a.hist[i] * b.hist[i])
	}
	if sumA == 0 || sumB == 0 {
		return 0, errors.New("cannot compare empty histograms")
	}

	d := 1 - coeff/math.Sqrt(sumA*sumB)
	if d < 0 {
		d = 0 // guard rounding noise before the square root
	}
	return math.Sqrt(d), nil
}

// LandmarkDistance sums the absolute coordinate deltas between two landmark
// sets.
func LandmarkDistance(a, b Fingerprint) (float64, error) {
	if err := checkKinds(a, b, KindLandmarks); err != nil {
		return 0, err
	}
	if len(a.marks) != len(b.marks) {
		return 0, fmt.Errorf("landmark count mismatch: %d vs %d", len(a.marks), len(b.marks))
	}

	var total float64
	for i := range a.marks {
		total += math.Abs(float64(a.marks[i][0]) - float64(b.marks[i][0]))
		total += math.Abs(float64(a.marks[i][1]) - float64(b.marks[i][1]))
	}
	return total, nil
}

// CosineDistance is 1 minus the cosine similarity of two embedding vectors.
// Zero-magnitude vectors read as maximally distant.
func CosineDistance(a, b Fingerprint) (float64, error) {
	if err := checkKinds(a, b, KindVector); err != nil {
		return 0, err
	}
	if len(a.vector) != len(b.vector) || len(a.vector) == 0 {
		return 0, fmt.Errorf("vector size mismatch: %d vs %d", len(a.vector), len(b.vector))
	}

	var dot, normA, normB float64
	for i := range a.vector {
		dot += float64(a.vector[i]) * float64(b.vector[i])
		normA += float64(a.vector[i]) * float64(a.vector[i])
		normB += float64(b.vector[i]) * float64(b.vector[i])
	}
	if normA == 0 || normB == 0 {
		return 1, nil
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)), nil
}
