package vision

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/chatman-media/timeline/internal/models"
	"github.com/chatman-media/timeline/internal/storage"
)

var boxColor = color.RGBA{G: 255, A: 255}

// Annotator draws labelled boxes onto images with OpenCV
type Annotator struct {
	Thickness int
	FontScale float64
}

func NewAnnotator() *Annotator {
	return &Annotator{Thickness: 2, FontScale: 0.5}
}

// Annotate reads srcPath, draws every detection and writes the result to dstPath
func (a *Annotator) Annotate(srcPath, dstPath string, detections []models.Detection) error {
	img := gocv.IMRead(srcPath, gocv.IMReadColor)
	if img.Empty() {
		return fmt.Errorf("could not read '%s'", srcPath)
	}
	defer img.Close()

	for _, d := range detections {
		box := d.Rect()
		if err := gocv.Rectangle(&img, box, boxColor, a.Thickness); err != nil {
			return fmt.Errorf("draw box: %w", err)
		}

		label := fmt.Sprintf("%s %.2f", d.ClassName, d.Confidence)
		if err := gocv.PutText(&img, label, image.Pt(box.Min.X, box.Min.Y-10), gocv.FontHersheySimplex, a.FontScale, boxColor, a.Thickness); err != nil {
			return fmt.Errorf("draw label: %w", err)
		}
	}

	if err := storage.EnsureDir(filepath.Dir(dstPath)); err != nil {
		return err
	}
	if ok := gocv.IMWrite(dstPath, img); !ok {
		return fmt.Errorf("could not write '%s'", dstPath)
	}
	return nil
}
