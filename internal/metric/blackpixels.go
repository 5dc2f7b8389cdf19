package metric

import (
	"context"
	"fmt"

	"facesort/internal/fingerprint"
	"facesort/internal/loader"
)

// scoreBlackPixels scores the percentage of fully black pixels, a proxy for
// how much of a crop is padding rather than face. The range is the closed
// interval [0, 100], which the threshold-edge grouper relies on.
func scoreBlackPixels(_ context.Context, _ *Registry, file loader.ImageFile) (fingerprint.Fingerprint, error) {
	img, err := decodeImage(file.Data)
	if err != nil {
		return fingerprint.Fingerprint{}, fmt.Errorf("%s: %w", file.Path, err)
	}
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return fingerprint.Fingerprint{}, fmt.Errorf("%s: empty image", file.Path)
	}

	black := 0
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r == 0 && g == 0 && b == 0 {
				black++
			}
		}
	}
	return fingerprint.Scalar(float64(black) / float64(width*height) * 100), nil
}
