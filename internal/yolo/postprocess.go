// Package yolo turns raw YOLOv10 network output into detections. It has no
// dependency on the inference runtime.
package yolo

import (
	"fmt"
	"math"

	"github.com/chatman-media/timeline/internal/models"
)

// Values per output row: x1, y1, x2, y2, score, class
const rowSize = 6

// Letterbox describes how an image was scaled and padded into the square
// network input.
type Letterbox struct {
	Size  int
	Scale float64
	PadX  int
	PadY  int
	// Size of the resized image inside the padding
	Width  int
	Height int
}

// NewLetterbox fits a width x height image into a size x size square
// keeping the aspect ratio and centering it.
func NewLetterbox(width, height, size int) Letterbox {
	scale := math.Min(float64(size)/float64(width), float64(size)/float64(height))
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	return Letterbox{
		Size:   size,
		Scale:  scale,
		PadX:   (size - w) / 2,
		PadY:   (size - h) / 2,
		Width:  w,
		Height: h,
	}
}

// Unmap converts a point in network input space back to source image space
func (lb Letterbox) Unmap(x, y float64) (float64, float64) {
	return (x - float64(lb.PadX)) / lb.Scale, (y - float64(lb.PadY)) / lb.Scale
}

// Params controls how output rows become detections
type Params struct {
	ConfThreshold float64
	Labels        Labels
	// Source image size, used to clamp boxes
	Width  int
	Height int
}

// Parse decodes a YOLOv10 output tensor of shape [1, N, 6]. Rows keep the
// network order, which is sorted by score.
func Parse(data []float32, shape []int, lb Letterbox, p Params) ([]models.Detection, error) {
	if len(shape) != 3 || shape[0] != 1 || shape[2] != rowSize {
		return nil, fmt.Errorf("unexpected output shape %v, want [1 N %d]", shape, rowSize)
	}
	rows := shape[1]
	if len(data) < rows*rowSize {
		return nil, fmt.Errorf("output has %d values, want %d", len(data), rows*rowSize)
	}

	detections := []models.Detection{}
	for i := 0; i < rows; i++ {
		row := data[i*rowSize : (i+1)*rowSize]
		score := float64(row[4])
		if score < p.ConfThreshold {
			continue
		}

		x1, y1 := lb.Unmap(float64(row[0]), float64(row[1]))
		x2, y2 := lb.Unmap(float64(row[2]), float64(row[3]))
		x1, x2 = clamp(x1, p.Width), clamp(x2, p.Width)
		y1, y2 = clamp(y1, p.Height), clamp(y2, p.Height)
		if x2 <= x1 || y2 <= y1 {
			continue
		}

		classID := int(row[5])
		detections = append(detections, models.Detection{
			ClassID:    classID,
			ClassName:  p.Labels.Name(classID),
			Confidence: score,
			BBox:       [4]float64{x1, y1, x2, y2},
		})
	}
	return detections, nil
}

func clamp(v float64, limit int) float64 {
	return math.Max(0, math.Min(v, float64(limit)))
}
