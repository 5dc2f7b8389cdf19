package metric

import (
	"context"
	"fmt"

	"facesort/internal/fingerprint"
	"facesort/internal/loader"
)

// scoreHistogram computes a 256-bin luma histogram, compared downstream with
// the Bhattacharyya distance.
func scoreHistogram(_ context.Context, _ *Registry, file loader.ImageFile) (fingerprint.Fingerprint, error) {
	img, err := decodeImage(file.Data)
	if err != nil {
		return fingerprint.Fingerprint{}, fmt.Errorf("%s: %w", file.Path, err)
	}
	gray := toGrayscale(img)

	hist := make([]float64, fingerprint.HistogramBins)
	for x := range gray {
		for y := range gray[x] {
			bin := int(gray[x][y])
			if bin > fingerprint.HistogramBins-1 {
				bin = fingerprint.HistogramBins - 1
			}
			hist[bin]++
		}
	}
	return fingerprint.Histogram(hist), nil
}
