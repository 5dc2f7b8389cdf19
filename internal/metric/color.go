package metric

import (
	"context"
	"fmt"

	"facesort/internal/fingerprint"
	"facesort/internal/loader"
)

// colorWeights maps each color metric to the RGB weights of the channel it
// scores: Rec.709 luma for gray, and one channel each of a luma/orange/green
// opponent-color decomposition.
var colorWeights = map[ID][3]float64{
	ColorGray:   {0.2126, 0.7152, 0.0722},
	ColorLuma:   {0.25, 0.5, 0.25},
	ColorOrange: {0.5, 0, -0.5},
	ColorGreen:  {-0.25, 0.5, -0.25},
}

// scoreColor builds the scorer for one color metric: the image-wide average
// of the weighted channel.
func scoreColor(id ID) scoreFunc {
	weights := colorWeights[id]
	return func(_ context.Context, _ *Registry, file loader.ImageFile) (fingerprint.Fingerprint, error) {
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

		var total float64
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				r, g, b, _ := img.At(x, y).RGBA()
				total += weights[0]*float64(r>>8) + weights[1]*float64(g>>8) + weights[2]*float64(b>>8)
			}
		}
		return fingerprint.Scalar(total / float64(width*height)), nil
	}
}
