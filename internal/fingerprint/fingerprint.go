// Package fingerprint defines the per-image values the pipeline compares.
// A fingerprint is opaque outside this package: the only defined operations
// are the comparators, never raw equality.
package fingerprint

// Kind identifies the shape of a fingerprint.
type Kind int

const (
	KindScalar Kind = iota
	KindVector
	KindHistogram
	KindLandmarks
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindHistogram:
		return "histogram"
	case KindLandmarks:
		return "landmarks"
	}
	return "unknown"
}

const (
	// HistogramBins is the bucket count of a histogram fingerprint.
	HistogramBins = 256
	// LandmarkPoints is the point count of a landmark fingerprint.
	LandmarkPoints = 68
)

// Fingerprint is a tagged, metric-specific value computed once per image and
// never mutated.
type Fingerprint struct {
	kind   Kind
	scalar float64
	vector []float32
	hist   []float64
	marks  [][2]float32
}

// Scalar wraps a single comparison key, e.g. a blur or yaw estimate.
func Scalar(v float64) Fingerprint {
	return Fingerprint{kind: KindScalar, scalar: v}
}

// Vector wraps an embedding returned by a recognition model.
func Vector(v []float32) Fingerprint {
	return Fingerprint{kind: KindVector, vector: v}
}

// Histogram wraps an intensity histogram.
func Histogram(h []float64) Fingerprint {
	return Fingerprint{kind: KindHistogram, hist: h}
}

// Landmarks wraps a set of facial landmark coordinates.
func Landmarks(m [][2]float32) Fingerprint {
	return Fingerprint{kind: KindLandmarks, marks: m}
}

func (f Fingerprint) Kind() Kind { return f.kind }

// ScalarValue returns the scalar key, 0 for non-scalar fingerprints.
func (f Fingerprint) ScalarValue() float64 { return f.scalar }

func (f Fingerprint) VectorValue() []float32 { return f.vector }

func (f Fingerprint) HistogramValue() []float64 { return f.hist }

func (f Fingerprint) LandmarksValue() [][2]float32 { return f.marks }
