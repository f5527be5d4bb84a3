package models

import (
	"encoding/json"
	"image"
)

// Detection represents one object found in an image
type Detection struct {
	ClassID    int        `json:"class_id"`
	ClassName  string     `json:"class_name"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"` // x1, y1, x2, y2
}

// Rect returns the box in whole pixels, truncating each corner
func (d Detection) Rect() image.Rectangle {
	return image.Rect(int(d.BBox[0]), int(d.BBox[1]), int(d.BBox[2]), int(d.BBox[3]))
}

// ImageResult is the outcome of processing a single image. It is either a
// list of detections or an error, never both.
type ImageResult struct {
	ImagePath  string
	Detections []Detection
	Error      string
}

// NewImageResult builds the success variant
func NewImageResult(path string, detections []Detection) ImageResult {
	if detections == nil {
		detections = []Detection{}
	}
	return ImageResult{ImagePath: path, Detections: detections}
}

// NewImageError builds the failure variant
func NewImageError(path, msg string) ImageResult {
	return ImageResult{ImagePath: path, Error: msg}
}

// Failed reports whether the image could not be processed
func (r ImageResult) Failed() bool {
	return r.Error != ""
}

func (r ImageResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(struct {
			ImagePath string `json:"image_path"`
			Error     string `json:"error"`
		}{r.ImagePath, r.Error})
	}

	detections := r.Detections
	if detections == nil {
		detections = []Detection{}
	}
	return json.Marshal(struct {
		ImagePath      string      `json:"image_path"`
		Detections     []Detection `json:"detections"`
		DetectionCount int         `json:"detection_count"`
	}{r.ImagePath, detections, len(detections)})
}

// DetectionBatchResult is the document printed by detectobjects
type DetectionBatchResult struct {
	Model         string        `json:"model"`
	ConfThreshold float64       `json:"conf_threshold"`
	ImageCount    int           `json:"image_count"`
	Results       []ImageResult `json:"results"`
}

type ScreenshotType string

const (
	ScreenshotInitial ScreenshotType = "initial"
	ScreenshotRegular ScreenshotType = "regular"
)

// Screenshot describes a saved video frame
type Screenshot struct {
	Path      string         `json:"path"`
	Timestamp float64        `json:"timestamp"`
	Frame     int            `json:"frame"`
	Type      ScreenshotType `json:"type"`
}

// SampleBatchResult is the document printed by screenshots
type SampleBatchResult struct {
	VideoPath       string       `json:"video_path"`
	VideoName       string       `json:"video_name"`
	Duration        float64      `json:"duration"`
	FPS             float64      `json:"fps"`
	FrameCount      int          `json:"frame_count"`
	ScreenshotCount int          `json:"screenshot_count"`
	Screenshots     []Screenshot `json:"screenshots"`
}

// ErrorResult replaces the normal document when a run can not start
type ErrorResult struct {
	Error string `json:"error"`
}
