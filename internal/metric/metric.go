// Package metric registers the similarity metrics the pipeline can run.
// Every metric binds a fingerprint kind, a scorer, a comparator and the
// sequencing/grouping policies at compile time; the orchestrator selects by
// identifier, never by reflective name lookup.
package metric

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"facesort/internal/fingerprint"
	"facesort/internal/loader"
	"facesort/internal/sorter"
)

// ID identifies a registered metric.
type ID string

const (
	Blur          ID = "blur"
	BlurFFT       ID = "blur-fft"
	Distance      ID = "distance"
	ColorGray     ID = "color-gray"
	ColorLuma     ID = "color-luma"
	ColorOrange   ID = "color-orange"
	ColorGreen    ID = "color-green"
	BlackPixels   ID = "black-pixels"
	Size          ID = "size"
	Yaw           ID = "yaw"
	Hist          ID = "hist"
	HistDissim    ID = "hist-dissim"
	FaceCNN       ID = "face-cnn"
	FaceCNNDissim ID = "face-cnn-dissim"
	Identity      ID = "identity"
)

type scoreFunc func(ctx context.Context, r *Registry, file loader.ImageFile) (fingerprint.Fingerprint, error)

// Descriptor binds one metric to everything the pipeline needs to run it.
type Descriptor struct {
	ID               ID
	Kind             fingerprint.Kind
	Compare          fingerprint.Comparator
	Direction        sorter.Direction
	Order            sorter.OrderPolicy
	Group            sorter.GroupPolicy
	NeedsMeta        bool    // requires alignment metadata in the input files
	DefaultThreshold float64 // clustering threshold used when none is configured
	ThresholdScale   float64 // multiplier applied to the configured threshold

	score scoreFunc
}

// Registry holds the known metrics and the external scorer clients they use.
type Registry struct {
	embed *EmbedClient
	table map[ID]Descriptor
}

// NewRegistry builds the metric table. embed may be nil when the identity
// metric is not used.
func NewRegistry(embed *EmbedClient) *Registry {
	r := &Registry{embed: embed}
	r.table = make(map[ID]Descriptor)
	for _, d := range []Descriptor{
		{
			ID:        Blur,
			Kind:      fingerprint.KindScalar,
			Compare:   fingerprint.ScalarDistance,
			Direction: sorter.Descending,
			Order:     sorter.OrderScalar,
			Group:     sorter.GroupEqualSplit,
			score:     scoreBlur,
		},
		{
			ID:        BlurFFT,
			Kind:      fingerprint.KindScalar,
			Compare:   fingerprint.ScalarDistance,
			Direction: sorter.Descending,
			Order:     sorter.OrderScalar,
			Group:     sorter.GroupEqualSplit,
			score:     scoreBlurFFT,
		},
		{
			ID:        Distance,
			Kind:      fingerprint.KindScalar,
			Compare:   fingerprint.ScalarDistance,
			Direction: sorter.Ascending,
			Order:     sorter.OrderScalar,
			Group:     sorter.GroupEqualSplit,
			NeedsMeta: true,
			score:     scoreDistance,
		},
		{
			ID:        ColorGray,
			Kind:      fingerprint.KindScalar,
			Compare:   fingerprint.ScalarDistance,
			Direction: sorter.Descending,
			Order:     sorter.OrderScalar,
			Group:     sorter.GroupEqualSplit,
			score:     scoreColor(ColorGray),
		},
		{
			ID:        ColorLuma,
			Kind:      fingerprint.KindScalar,
			Compare:   fingerprint.ScalarDistance,
			Direction: sorter.Descending,
			Order:     sorter.OrderScalar,
			Group:     sorter.GroupEqualSplit,
			score:     scoreColor(ColorLuma),
		},
		{
			ID:        ColorOrange,
			Kind:      fingerprint.KindScalar,
			Compare:   fingerprint.ScalarDistance,
			Direction: sorter.Descending,
			Order:     sorter.OrderScalar,
			Group:     sorter.GroupEqualSplit,
			score:     scoreColor(ColorOrange),
		},
		{
			ID:        ColorGreen,
			Kind:      fingerprint.KindScalar,
			Compare:   fingerprint.ScalarDistance,
			Direction: sorter.Descending,
			Order:     sorter.OrderScalar,
			Group:     sorter.GroupEqualSplit,
			score:     scoreColor(ColorGreen),
		},
		{
			ID:        BlackPixels,
			Kind:      fingerprint.KindScalar,
			Compare:   fingerprint.ScalarDistance,
			Direction: sorter.Ascending,
			Order:     sorter.OrderScalar,
			Group:     sorter.GroupThresholdEdge,
			score:     scoreBlackPixels,
		},
		{
			ID:        Size,
			Kind:      fingerprint.KindScalar,
			Compare:   fingerprint.ScalarDistance,
			Direction: sorter.Descending,
			Order:     sorter.OrderScalar,
			Group:     sorter.GroupEqualSplit,
			NeedsMeta: true,
			score:     scoreSize,
		},
		{
			ID:        Yaw,
			Kind:      fingerprint.KindScalar,
			Compare:   fingerprint.ScalarDistance,
			Direction: sorter.Descending,
			Order:     sorter.OrderScalar,
			Group:     sorter.GroupEqualSplit,
			NeedsMeta: true,
			score:     scoreYaw,
		},
		{
			ID:               Hist,
			Kind:             fingerprint.KindHistogram,
			Compare:          fingerprint.Bhattacharyya,
			Order:            sorter.OrderChain,
			Group:            sorter.GroupCluster,
			DefaultThreshold: 0.3,
			score:            scoreHistogram,
		},
		{
			ID:               HistDissim,
			Kind:             fingerprint.KindHistogram,
			Compare:          fingerprint.Bhattacharyya,
			Order:            sorter.OrderDissimilarity,
			Group:            sorter.GroupCluster,
			DefaultThreshold: 0.3,
			score:            scoreHistogram,
		},
		{
			ID:               FaceCNN,
			Kind:             fingerprint.KindLandmarks,
			Compare:          fingerprint.LandmarkDistance,
			Order:            sorter.OrderChain,
			Group:            sorter.GroupCluster,
			NeedsMeta:        true,
			DefaultThreshold: 7.2,
			// landmark distances are large; scaling keeps the CLI
			// threshold in a small, human-friendly range
			ThresholdScale: 1000,
			score:          scoreLandmarks,
		},
		{
			ID:               FaceCNNDissim,
			Kind:             fingerprint.KindLandmarks,
			Compare:          fingerprint.LandmarkDistance,
			Order:            sorter.OrderDissimilarity,
			Group:            sorter.GroupCluster,
			NeedsMeta:        true,
			DefaultThreshold: 7.2,
			ThresholdScale:   1000,
			score:            scoreLandmarks,
		},
		{
			ID:               Identity,
			Kind:             fingerprint.KindVector,
			Compare:          fingerprint.CosineDistance,
			Order:            sorter.OrderChain,
			Group:            sorter.GroupCluster,
			DefaultThreshold: 0.15,
			score:            scoreIdentity,
		},
	} {
		r.table[d.ID] = d
	}
	return r
}

// Lookup resolves a metric by name. Unknown names fail before any scoring
// work begins.
func (r *Registry) Lookup(name string) (Descriptor, error) {
	d, ok := r.table[ID(strings.ToLower(name))]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown metric %q (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return d, nil
}

// Names returns the registered metric names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.table))
	for id := range r.table {
		names = append(names, string(id))
	}
	sort.Strings(names)
	return names
}

// Descriptors returns the registered metrics, sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	descriptors := make([]Descriptor, 0, len(r.table))
	for _, name := range r.Names() {
		descriptors = append(descriptors, r.table[ID(name)])
	}
	return descriptors
}

// Score computes one file's fingerprint under the given metric.
func (r *Registry) Score(ctx context.Context, d Descriptor, file loader.ImageFile) (fingerprint.Fingerprint, error) {
	return d.score(ctx, r, file)
}

// ScaledThreshold applies the metric's scale factor to a configured or
// defaulted threshold.
func (d Descriptor) ScaledThreshold(threshold float64) float64 {
	if d.ThresholdScale == 0 {
		return threshold
	}
	return threshold * d.ThresholdScale
}
