package metric

import (
	"context"
	"fmt"
	"math"

	"facesort/internal/fingerprint"
	"facesort/internal/loader"
)

// requireLandmarks returns the file's landmark set or the fatal
// configuration error that aborts the run.
func requireLandmarks(id ID, file loader.ImageFile) ([][2]float32, error) {
	if file.Meta == nil || len(file.Meta.Alignments.LandmarksXY) == 0 {
		return nil, &MissingMetadataError{Metric: id, Path: file.Path}
	}
	marks := file.Meta.Alignments.LandmarksXY
	if len(marks) != fingerprint.LandmarkPoints {
		return nil, fmt.Errorf("%s: expected %d landmarks, got %d", file.Path, fingerprint.LandmarkPoints, len(marks))
	}
	return marks, nil
}

// scoreLandmarks lifts the stored 68-point landmark set into a fingerprint.
func scoreLandmarks(_ context.Context, _ *Registry, file loader.ImageFile) (fingerprint.Fingerprint, error) {
	marks, err := requireLandmarks(FaceCNN, file)
	if err != nil {
		return fingerprint.Fingerprint{}, err
	}
	return fingerprint.Landmarks(marks), nil
}

// scoreYaw estimates horizontal head rotation from the landmark geometry:
// the mean x-extent of the right half of the face minus the left half,
// measured against the nose bridge.
func scoreYaw(_ context.Context, _ *Registry, file loader.ImageFile) (fingerprint.Fingerprint, error) {
	marks, err := requireLandmarks(Yaw, file)
	if err != nil {
		return fingerprint.Fingerprint{}, err
	}

	left := (float64(marks[27][0]-marks[0][0]) +
		float64(marks[28][0]-marks[1][0]) +
		float64(marks[29][0]-marks[2][0])) / 3.0
	right := (float64(marks[16][0]-marks[27][0]) +
		float64(marks[15][0]-marks[28][0]) +
		float64(marks[14][0]-marks[29][0])) / 3.0
	return fingerprint.Scalar(right - left), nil
}

// scoreSize scores the face's extent in the original frame: the distance
// between the first two corners of the stored ROI, falling back to the
// landmark bounding-box diagonal for older facesets without ROI data.
func scoreSize(_ context.Context, _ *Registry, file loader.ImageFile) (fingerprint.Fingerprint, error) {
	marks, err := requireLandmarks(Size, file)
	if err != nil {
		return fingerprint.Fingerprint{}, err
	}

	if roi := file.Meta.Alignments.OriginalROI; len(roi) >= 2 {
		dx := float64(roi[1][0] - roi[0][0])
		dy := float64(roi[1][1] - roi[0][1])
		return fingerprint.Scalar(math.Sqrt(dx*dx + dy*dy)), nil
	}
	return fingerprint.Scalar(landmarkDiagonal(marks)), nil
}

func landmarkDiagonal(marks [][2]float32) float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, m := range marks {
		minX = math.Min(minX, float64(m[0]))
		maxX = math.Max(maxX, float64(m[0]))
		minY = math.Min(minY, float64(m[1]))
		maxY = math.Max(maxY, float64(m[1]))
	}
	dx := maxX - minX
	dy := maxY - minY
	return math.Sqrt(dx*dx + dy*dy)
}
