// Package vision holds the OpenCV backed parts of the pipeline: video
// capture, YOLO inference and box drawing.
package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"gocv.io/x/gocv"

	"github.com/chatman-media/timeline/internal/sampler"
)

// Capture reads frames from a video file through OpenCV
type Capture struct {
	vc   *gocv.VideoCapture
	mat  gocv.Mat
	info sampler.VideoInfo
}

// OpenCapture opens path for decoding
func OpenCapture(_ context.Context, path string) (*Capture, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("capture for '%s' is not opened", path)
	}

	return &Capture{
		vc:  vc,
		mat: gocv.NewMat(),
		info: sampler.VideoInfo{
			FPS:        vc.Get(gocv.VideoCaptureFPS),
			FrameCount: int(vc.Get(gocv.VideoCaptureFrameCount)),
			Width:      int(vc.Get(gocv.VideoCaptureFrameWidth)),
			Height:     int(vc.Get(gocv.VideoCaptureFrameHeight)),
		},
	}, nil
}

// Opener adapts OpenCapture to sampler.Opener
func Opener(ctx context.Context, path string) (sampler.Source, error) {
	c, err := OpenCapture(ctx, path)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Capture) Info() sampler.VideoInfo {
	return c.info
}

func (c *Capture) Seek(frame int) error {
	if frame < 0 {
		return fmt.Errorf("invalid frame index %d", frame)
	}
	c.vc.Set(gocv.VideoCapturePosFrames, float64(frame))
	return nil
}

func (c *Capture) Next() (image.Image, error) {
	if ok := c.vc.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, io.EOF
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	return img, nil
}

func (c *Capture) Close() error {
	return errors.Join(c.mat.Close(), c.vc.Close())
}
