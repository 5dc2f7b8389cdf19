package metric

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"facesort/internal/fingerprint"
	"facesort/internal/loader"
)

// meanFace is the reference landmark set faces are aligned against: the 51
// core points (brows, nose, eyes, mouth) of an average frontal face in unit
// coordinates. The 17 jawline points are excluded from alignment.
var meanFace = [][2]float64{
	{0.000213256, 0.106454}, {0.0752622, 0.038915}, {0.18113, 0.0187482},
	{0.29077, 0.0344891}, {0.393397, 0.0773906}, {0.586856, 0.0773906},
	{0.689483, 0.0344891}, {0.799124, 0.0187482}, {0.904991, 0.038915},
	{0.98004, 0.106454}, {0.490127, 0.203352}, {0.490127, 0.307009},
	{0.490127, 0.409805}, {0.490127, 0.515625}, {0.36688, 0.587326},
	{0.426036, 0.609345}, {0.490127, 0.628106}, {0.554217, 0.609345},
	{0.613373, 0.587326}, {0.121737, 0.216423}, {0.187122, 0.178758},
	{0.265825, 0.179852}, {0.334606, 0.231733}, {0.260918, 0.245099},
	{0.182743, 0.244077}, {0.645647, 0.231733}, {0.714428, 0.179852},
	{0.793132, 0.178758}, {0.858516, 0.216423}, {0.79751, 0.244077},
	{0.735335, 0.245099}, {0.254149, 0.780233}, {0.340985, 0.745405},
	{0.428858, 0.727388}, {0.490127, 0.742578}, {0.551395, 0.727388},
	{0.639268, 0.745405}, {0.726104, 0.780233}, {0.642159, 0.864805},
	{0.556721, 0.902192}, {0.490127, 0.909281}, {0.423532, 0.902192},
	{0.338094, 0.864805}, {0.290379, 0.784792}, {0.428096, 0.778746},
	{0.490127, 0.785343}, {0.552157, 0.778746}, {0.689853, 0.784792},
	{0.553364, 0.824182}, {0.490127, 0.831803}, {0.42689, 0.824182},
}

// jawPoints is the count of jawline landmarks preceding the core set.
const jawPoints = 17

// scoreDistance measures how far a face's geometry sits from the mean face:
// the core landmarks are fitted to the reference with a similarity
// transform, and the score is the mean absolute residual. Typical frontal
// faces score low; rotated, occluded or badly aligned ones score high.
func scoreDistance(_ context.Context, _ *Registry, file loader.ImageFile) (fingerprint.Fingerprint, error) {
	marks, err := requireLandmarks(Distance, file)
	if err != nil {
		return fingerprint.Fingerprint{}, err
	}

	core := make([][2]float64, len(meanFace))
	for i := range core {
		core[i][0] = float64(marks[jawPoints+i][0])
		core[i][1] = float64(marks[jawPoints+i][1])
	}

	aligned, err := similarityTransform(core, meanFace)
	if err != nil {
		return fingerprint.Fingerprint{}, err
	}

	var total float64
	for i := range aligned {
		total += math.Abs(aligned[i][0] - meanFace[i][0])
		total += math.Abs(aligned[i][1] - meanFace[i][1])
	}
	return fingerprint.Scalar(total / float64(2*len(aligned))), nil
}

// similarityTransform fits the least-squares rotation, scale and translation
// mapping src onto dst (Umeyama's method) and returns src under that
// transform.
func similarityTransform(src, dst [][2]float64) ([][2]float64, error) {
	n := float64(len(src))

	var meanSrc, meanDst [2]float64
	for i := range src {
		meanSrc[0] += src[i][0] / n
		meanSrc[1] += src[i][1] / n
		meanDst[0] += dst[i][0] / n
		meanDst[1] += dst[i][1] / n
	}

	// covariance of the demeaned point sets, and the source variance for
	// the scale estimate
	var cov [2][2]float64
	var varSrc float64
	for i := range src {
		sx := src[i][0] - meanSrc[0]
		sy := src[i][1] - meanSrc[1]
		dx := dst[i][0] - meanDst[0]
		dy := dst[i][1] - meanDst[1]
		cov[0][0] += dx * sx / n
		cov[0][1] += dx * sy / n
		cov[1][0] += dy * sx / n
		cov[1][1] += dy * sy / n
		varSrc += (sx*sx + sy*sy) / n
	}
	if varSrc == 0 {
		return nil, errors.New("degenerate landmarks: all core points coincide")
	}

	var svd mat.SVD
	if ok := svd.Factorize(mat.NewDense(2, 2, []float64{
		cov[0][0], cov[0][1],
		cov[1][0], cov[1][1],
	}), mat.SVDFull); !ok {
		return nil, errors.New("failed to factorize landmark covariance")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	singular := svd.Values(nil)

	// reflection guard: force a proper rotation
	d := 1.0
	if mat.Det(&u)*mat.Det(&v) < 0 {
		d = -1
	}

	var rot mat.Dense
	rot.Mul(&u, mat.NewDiagDense(2, []float64{1, d}))
	rot.Mul(&rot, v.T())
	scale := (singular[0] + d*singular[1]) / varSrc

	out := make([][2]float64, len(src))
	for i := range src {
		sx := src[i][0] - meanSrc[0]
		sy := src[i][1] - meanSrc[1]
		out[i][0] = scale*(rot.At(0, 0)*sx+rot.At(0, 1)*sy) + meanDst[0]
		out[i][1] = scale*(rot.At(1, 0)*sx+rot.At(1, 1)*sy) + meanDst[1]
	}
	return out, nil
}
