package analyzer

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/chatman-media/timeline/internal/models"
	"github.com/chatman-media/timeline/internal/storage"
)

const (
	errImageNotFound = "image not found"
	errImageLoad     = "failed to load image"
)

// Detector finds objects in an image. Boxes are in the coordinate space of
// the image it was given.
type Detector interface {
	Detect(img image.Image) ([]models.Detection, error)
}

// Annotator draws detections on the image at srcPath and writes it to dstPath
type Annotator interface {
	Annotate(srcPath, dstPath string, detections []models.Detection) error
}

type RunnerConfig struct {
	// OutputDir enables resized and annotated copies when set
	OutputDir     string
	ConfThreshold float64
	ModelName     string
	// ImgSize is the largest side an image may have before it is scaled down
	ImgSize int
}

// Runner runs a detector over a batch of images
type Runner struct {
	detector  Detector
	annotator Annotator
	cfg       RunnerConfig
	logger    *slog.Logger
}

func NewRunner(detector Detector, annotator Annotator, cfg RunnerConfig, logger *slog.Logger) *Runner {
	return &Runner{
		detector:  detector,
		annotator: annotator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run processes every image in order. A failing image yields an error entry
// and never stops the batch, so the result always has one entry per path.
func (r *Runner) Run(ctx context.Context, imagePaths []string) (models.DetectionBatchResult, error) {
	if r.cfg.OutputDir != "" {
		if err := storage.EnsureDir(r.cfg.OutputDir); err != nil {
			return models.DetectionBatchResult{}, err
		}
	}

	results := make([]models.ImageResult, 0, len(imagePaths))
	for i, path := range imagePaths {
		if err := ctx.Err(); err != nil {
			results = append(results, models.NewImageError(path, err.Error()))
			continue
		}

		res := r.processImage(path)
		if res.Failed() {
			r.logger.Warn("image failed", "image", path, "index", i+1, "total", len(imagePaths), "error", res.Error)
		} else {
			r.logger.Debug("image done", "image", path, "detections", len(res.Detections))
		}
		results = append(results, res)
	}

	return models.DetectionBatchResult{
		Model:         r.cfg.ModelName,
		ConfThreshold: r.cfg.ConfThreshold,
		ImageCount:    len(imagePaths),
		Results:       results,
	}, nil
}

func (r *Runner) processImage(path string) (res models.ImageResult) {
	defer func() {
		if rec := recover(); rec != nil {
			res = models.NewImageError(path, fmt.Sprint(rec))
		}
	}()

	if _, err := os.Stat(path); err != nil {
		return models.NewImageError(path, errImageNotFound)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return models.NewImageError(path, errImageLoad)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	input, factor, err := r.prepare(img, path, name)
	if err != nil {
		return models.NewImageError(path, err.Error())
	}

	raw, err := r.detector.Detect(input)
	if err != nil {
		return models.NewImageError(path, fmt.Sprintf("detection failed: %v", err))
	}
	detections := Rescale(raw, factor)

	if r.cfg.OutputDir != "" {
		dst := filepath.Join(r.cfg.OutputDir, name+"_detected.jpg")
		if err := r.annotator.Annotate(path, dst, detections); err != nil {
			return models.NewImageError(path, fmt.Sprintf("failed to save annotated image: %v", err))
		}
	}

	return models.NewImageResult(path, detections)
}

// prepare scales img down when it is larger than ImgSize and returns the
// image to run inference on together with the factor that maps its boxes
// back to the original.
func (r *Runner) prepare(img image.Image, path, name string) (image.Image, float64, error) {
	b := img.Bounds()
	width, height, factor, ok := Downscale(b.Dx(), b.Dy(), r.cfg.ImgSize)
	if !ok {
		r.logger.Info("processing image", "image", path)
		return img, 1.0, nil
	}

	resized := imaging.Resize(img, width, height, imaging.Linear)
	r.logger.Info("processing image", "image", path, "resized", fmt.Sprintf("%dx%d", width, height))

	if r.cfg.OutputDir != "" {
		tmp := filepath.Join(r.cfg.OutputDir, name+"_resized.jpg")
		if err := storage.SaveImage(resized, tmp); err != nil {
			return nil, 0, err
		}
	}
	return resized, factor, nil
}

// Downscale computes the size an image must be scaled to so its larger
// side equals maxSide. It returns the new size, the inverse scale factor and
// false when no scaling is needed.
func Downscale(width, height, maxSide int) (int, int, float64, bool) {
	longest := max(width, height)
	if maxSide <= 0 || longest <= maxSide {
		return width, height, 1.0, false
	}

	scale := float64(maxSide) / float64(longest)
	newWidth := max(int(float64(width)*scale), 1)
	newHeight := max(int(float64(height)*scale), 1)
	return newWidth, newHeight, 1 / scale, true
}

// Rescale multiplies every box coordinate by factor
func Rescale(detections []models.Detection, factor float64) []models.Detection {
	if factor == 1.0 {
		return detections
	}

	scaled := make([]models.Detection, len(detections))
	for i, d := range detections {
		for j := range d.BBox {
			d.BBox[j] *= factor
		}
		scaled[i] = d
	}
	return scaled
}
