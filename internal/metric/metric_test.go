package metric

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"facesort/internal/fingerprint"
	"facesort/internal/imgmeta"
	"facesort/internal/loader"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func solidImage(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return encodePNG(t, img)
}

func TestLookup(t *testing.T) {
	r := NewRegistry(nil)

	d, err := r.Lookup("blur")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID != Blur {
		t.Errorf("expected blur descriptor, got %s", d.ID)
	}

	// name matching is case-insensitive
	if _, err := r.Lookup("Face-CNN"); err != nil {
		t.Errorf("expected case-insensitive lookup, got error: %v", err)
	}
}

func TestLookup_UnknownMetric(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Lookup("sharpness")
	if err == nil {
		t.Fatal("expected error for unknown metric")
	}
	if !strings.Contains(err.Error(), "available:") {
		t.Errorf("expected error to list available metrics, got: %v", err)
	}
}

func TestNamesSorted(t *testing.T) {
	r := NewRegistry(nil)
	names := r.Names()
	if len(names) != 15 {
		t.Fatalf("expected 15 metrics, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %s before %s", names[i-1], names[i])
		}
	}
}

func TestScaledThreshold(t *testing.T) {
	r := NewRegistry(nil)
	faceCNN, _ := r.Lookup("face-cnn")
	if got := faceCNN.ScaledThreshold(7.2); got != 7200 {
		t.Errorf("expected scaled threshold 7200, got %f", got)
	}
	hist, _ := r.Lookup("hist")
	if got := hist.ScaledThreshold(0.3); got != 0.3 {
		t.Errorf("expected unscaled threshold 0.3, got %f", got)
	}
}

func TestScoreBlackPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{A: 255})
	img.Set(0, 1, color.RGBA{A: 255})
	img.Set(1, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	r := NewRegistry(nil)
	d, _ := r.Lookup("black-pixels")
	print, err := r.Score(context.Background(), d, loader.ImageFile{Path: "half.png", Data: encodePNG(t, img)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if print.ScalarValue() != 50 {
		t.Errorf("expected 50%% black pixels, got %f", print.ScalarValue())
	}
}

func TestScoreColorGray(t *testing.T) {
	r := NewRegistry(nil)
	d, _ := r.Lookup("color-gray")

	white, err := r.Score(context.Background(), d, loader.ImageFile{
		Path: "white.png",
		Data: solidImage(t, 2, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	black, err := r.Score(context.Background(), d, loader.ImageFile{
		Path: "black.png",
		Data: solidImage(t, 2, 2, color.RGBA{A: 255}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if white.ScalarValue() < 254 || white.ScalarValue() > 256 {
		t.Errorf("expected white score near 255, got %f", white.ScalarValue())
	}
	if black.ScalarValue() != 0 {
		t.Errorf("expected black score 0, got %f", black.ScalarValue())
	}
}

func TestScoreBlur_FlatVersusTextured(t *testing.T) {
	r := NewRegistry(nil)
	d, _ := r.Lookup("blur")

	flat, err := r.Score(context.Background(), d, loader.ImageFile{
		Path: "flat.png",
		Data: solidImage(t, 8, 8, color.RGBA{R: 128, G: 128, B: 128, A: 255}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checker := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			if (x+y)%2 == 0 {
				checker.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			} else {
				checker.Set(x, y, color.RGBA{A: 255})
			}
		}
	}
	textured, err := r.Score(context.Background(), d, loader.ImageFile{Path: "checker.png", Data: encodePNG(t, checker)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if flat.ScalarValue() != 0 {
		t.Errorf("expected zero blur response for a flat image, got %f", flat.ScalarValue())
	}
	if textured.ScalarValue() <= flat.ScalarValue() {
		t.Errorf("expected textured image to score above flat: %f <= %f", textured.ScalarValue(), flat.ScalarValue())
	}
}

func TestScoreBlurFFT_FlatVersusTextured(t *testing.T) {
	r := NewRegistry(nil)
	d, _ := r.Lookup("blur-fft")

	// large enough that frequencies survive outside the removed block
	const side = 160
	flat, err := r.Score(context.Background(), d, loader.ImageFile{
		Path: "flat.png",
		Data: solidImage(t, side, side, color.RGBA{R: 128, G: 128, B: 128, A: 255}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checker := image.NewRGBA(image.Rect(0, 0, side, side))
	for x := 0; x < side; x++ {
		for y := 0; y < side; y++ {
			if (x+y)%2 == 0 {
				checker.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			} else {
				checker.Set(x, y, color.RGBA{A: 255})
			}
		}
	}
	textured, err := r.Score(context.Background(), d, loader.ImageFile{Path: "checker.png", Data: encodePNG(t, checker)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.IsInf(textured.ScalarValue(), -1) {
		t.Error("expected finite score for a textured image")
	}
	if textured.ScalarValue() <= flat.ScalarValue() {
		t.Errorf("expected textured image to score above flat: %f <= %f", textured.ScalarValue(), flat.ScalarValue())
	}
}

func TestScoreDistance(t *testing.T) {
	r := NewRegistry(nil)
	d, _ := r.Lookup("distance")

	// core landmarks are the mean face under a similarity transform, so the
	// fit recovers it exactly and the residual vanishes
	marks := make([][2]float32, fingerprint.LandmarkPoints)
	for i, p := range meanFace {
		marks[jawPoints+i] = [2]float32{float32(120*p[0] + 30), float32(120*p[1] + 40)}
	}
	aligned, err := r.Score(context.Background(), d, loader.ImageFile{
		Path: "aligned.png",
		Meta: &imgmeta.FaceMeta{Alignments: imgmeta.Alignments{LandmarksXY: marks}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if aligned.ScalarValue() > 1e-6 {
		t.Errorf("expected near-zero distance for a mean-face geometry, got %g", aligned.ScalarValue())
	}

	// pull the mouth sideways and the residual grows
	warped := make([][2]float32, fingerprint.LandmarkPoints)
	copy(warped, marks)
	for i := 31; i < len(meanFace); i++ {
		warped[jawPoints+i] = [2]float32{warped[jawPoints+i][0] + 25, warped[jawPoints+i][1]}
	}
	distorted, err := r.Score(context.Background(), d, loader.ImageFile{
		Path: "warped.png",
		Meta: &imgmeta.FaceMeta{Alignments: imgmeta.Alignments{LandmarksXY: warped}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if distorted.ScalarValue() <= aligned.ScalarValue() {
		t.Errorf("expected warped geometry to score above aligned: %f <= %f",
			distorted.ScalarValue(), aligned.ScalarValue())
	}
}

func TestScoreHistogram(t *testing.T) {
	r := NewRegistry(nil)
	d, _ := r.Lookup("hist")

	print, err := r.Score(context.Background(), d, loader.ImageFile{
		Path: "black.png",
		Data: solidImage(t, 2, 2, color.RGBA{A: 255}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hist := print.HistogramValue()
	if len(hist) != fingerprint.HistogramBins {
		t.Fatalf("expected %d bins, got %d", fingerprint.HistogramBins, len(hist))
	}
	if hist[0] != 4 {
		t.Errorf("expected all 4 pixels in bin 0, got %f", hist[0])
	}
}

func metaWithLandmarks() *imgmeta.FaceMeta {
	marks := make([][2]float32, fingerprint.LandmarkPoints)
	for i := range marks {
		marks[i] = [2]float32{0, 0}
	}
	marks[27] = [2]float32{10, 0}
	marks[28] = [2]float32{10, 0}
	marks[29] = [2]float32{10, 0}
	return &imgmeta.FaceMeta{Alignments: imgmeta.Alignments{LandmarksXY: marks}}
}

func TestScoreYaw(t *testing.T) {
	r := NewRegistry(nil)
	d, _ := r.Lookup("yaw")

	print, err := r.Score(context.Background(), d, loader.ImageFile{Path: "face.png", Meta: metaWithLandmarks()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// left extent +10 on each bridge point, right extent -10: yaw is -20.
	if print.ScalarValue() != -20 {
		t.Errorf("expected yaw -20, got %f", print.ScalarValue())
	}
}

func TestScoreSize_UsesROI(t *testing.T) {
	meta := metaWithLandmarks()
	meta.Alignments.OriginalROI = [][2]float32{{0, 0}, {3, 4}, {7, 1}, {4, -3}}

	r := NewRegistry(nil)
	d, _ := r.Lookup("size")
	print, err := r.Score(context.Background(), d, loader.ImageFile{Path: "face.png", Meta: meta})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if print.ScalarValue() != 5 {
		t.Errorf("expected ROI edge length 5, got %f", print.ScalarValue())
	}
}

func TestLandmarkMetrics_MissingMetadataIsFatal(t *testing.T) {
	r := NewRegistry(nil)
	for _, name := range []string{"face-cnn", "face-cnn-dissim", "yaw", "size", "distance"} {
		d, err := r.Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		_, err = r.Score(context.Background(), d, loader.ImageFile{Path: "plain.jpg"})
		if err == nil {
			t.Fatalf("%s: expected error for file without metadata", name)
		}
		var missing *MissingMetadataError
		if !errors.As(err, &missing) {
			t.Errorf("%s: expected MissingMetadataError, got %T: %v", name, err, err)
		}
		if !strings.Contains(err.Error(), "re-extract") {
			t.Errorf("%s: expected regeneration instructions in message, got: %v", name, err)
		}
	}
}

func TestScoreLandmarks(t *testing.T) {
	r := NewRegistry(nil)
	d, _ := r.Lookup("face-cnn")
	print, err := r.Score(context.Background(), d, loader.ImageFile{Path: "face.png", Meta: metaWithLandmarks()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if print.Kind() != fingerprint.KindLandmarks {
		t.Errorf("expected landmarks fingerprint, got %s", print.Kind())
	}
	if len(print.LandmarksValue()) != fingerprint.LandmarkPoints {
		t.Errorf("expected %d landmarks, got %d", fingerprint.LandmarkPoints, len(print.LandmarksValue()))
	}
}
