package metric

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"facesort/internal/fingerprint"
	"facesort/internal/loader"
)

// fftBlockRadius is the half-width of the low-frequency block removed from
// the centered spectrum before reconstruction.
const fftBlockRadius = 75

// scoreBlurFFT estimates sharpness in the frequency domain: remove the low
// frequencies from the image's 2-D spectrum, reconstruct, and score the mean
// log magnitude of what remains. Sharper images keep more high-frequency
// energy and score higher.
func scoreBlurFFT(_ context.Context, _ *Registry, file loader.ImageFile) (fingerprint.Fingerprint, error) {
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

	spectrum := make([][]complex128, height)
	for y := range spectrum {
		spectrum[y] = make([]complex128, width)
		for x := 0; x < width; x++ {
			spectrum[y][x] = complex(gray[x][y], 0)
		}
	}

	rowFFT := fourier.NewCmplxFFT(width)
	colFFT := fourier.NewCmplxFFT(height)
	fft2(spectrum, rowFFT, colFFT, false)

	// zero the centered low-frequency block; an index u sits at position
	// (u + n/2) % n once the zero frequency is shifted to the center
	cHeight, cWidth := height/2, width/2
	for u := 0; u < height; u++ {
		su := (u + cHeight) % height
		if su < cHeight-fftBlockRadius || su >= cHeight+fftBlockRadius {
			continue
		}
		for v := 0; v < width; v++ {
			sv := (v + cWidth) % width
			if sv >= cWidth-fftBlockRadius && sv < cWidth+fftBlockRadius {
				spectrum[u][v] = 0
			}
		}
	}

	fft2(spectrum, rowFFT, colFFT, true)

	var total float64
	for y := range spectrum {
		for x := range spectrum[y] {
			total += math.Log(cmplx.Abs(spectrum[y][x]))
		}
	}
	return fingerprint.Scalar(total / float64(width*height)), nil
}

// fft2 transforms the row-major matrix in place, rows first then columns.
// The inverse pass includes the 1/(w*h) normalization.
func fft2(m [][]complex128, rowFFT, colFFT *fourier.CmplxFFT, inverse bool) {
	height := len(m)
	width := len(m[0])

	for y := range m {
		if inverse {
			rowFFT.Sequence(m[y], m[y])
		} else {
			rowFFT.Coefficients(m[y], m[y])
		}
	}

	col := make([]complex128, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = m[y][x]
		}
		if inverse {
			colFFT.Sequence(col, col)
		} else {
			colFFT.Coefficients(col, col)
		}
		for y := 0; y < height; y++ {
			m[y][x] = col[y]
		}
	}

	if inverse {
		scale := complex(1/float64(width*height), 0)
		for y := range m {
			for x := range m[y] {
				m[y][x] *= scale
			}
		}
	}
}
