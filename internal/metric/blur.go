package metric

import (
	"context"
	"fmt"
	"math"

	"facesort/internal/fingerprint"
	"facesort/internal/loader"
)

// scoreBlur estimates sharpness as the variance of the image's Laplacian,
// normalized by pixel count so image size does not skew the gradient
// variance. Sharper images score higher.
func scoreBlur(_ context.Context, _ *Registry, file loader.ImageFile) (fingerprint.Fingerprint, error) {
	img, err := decodeImage(file.Data)
	if err != nil {
		return fingerprint.Fingerprint{}, fmt.Errorf("%s: %w", file.Path, err)
	}
	gray := toGrayscale(img)
	width := len(gray)
	if width == 0 || len(gray[0]) == 0 {
		return fingerprint.Fingerprint{}, fmt.Errorf("%s: empty image", file.Path)
	}
	height := len(gray[0])

	lap := laplacian(gray)
	score := variance(lap) / math.Sqrt(float64(width*height))
	return fingerprint.Scalar(score), nil
}

// laplacian applies the 4-neighbor Laplacian kernel with replicated borders
// and returns the flattened response.
func laplacian(gray [][]float64) []float64 {
	width := len(gray)
	height := len(gray[0])
	clamp := func(v, max int) int {
		if v < 0 {
			return 0
		}
		if v > max {
			return max
		}
		return v
	}

	out := make([]float64, 0, width*height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			sum := gray[clamp(x-1, width-1)][y] +
				gray[clamp(x+1, width-1)][y] +
				gray[x][clamp(y-1, height-1)] +
				gray[x][clamp(y+1, height-1)] -
				4*gray[x][y]
			out = append(out, sum)
		}
	}
	return out
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var total float64
	for _, v := range values {
		d := v - mean
		total += d * d
	}
	return total / float64(len(values))
}
