package vision

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/chatman-media/timeline/internal/models"
	"github.com/chatman-media/timeline/internal/yolo"
)

// Letterbox padding, matching the ultralytics preprocessing
var padColor = color.RGBA{R: 114, G: 114, B: 114, A: 0}

// YOLO runs a YOLOv10 ONNX export with the OpenCV DNN module
type YOLO struct {
	mu     sync.Mutex
	net    gocv.Net
	cfg    yolo.Config
	labels yolo.Labels
}

// NewYOLO loads the model at modelPath
func NewYOLO(modelPath string, cfg yolo.Config, labels yolo.Labels) (*YOLO, error) {
	if cfg.InputSize <= 0 {
		cfg.InputSize = yolo.DefaultInputSize
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("could not read model from '%s'", modelPath)
	}

	return &YOLO{net: net, cfg: cfg, labels: labels}, nil
}

// Detect returns the detections in img with boxes in img's pixel space
func (y *YOLO) Detect(img image.Image) ([]models.Detection, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer src.Close()

	lb := yolo.NewLetterbox(src.Cols(), src.Rows(), y.cfg.InputSize)

	resized := gocv.NewMat()
	defer resized.Close()
	if err := gocv.Resize(src, &resized, image.Pt(lb.Width, lb.Height), 0, 0, gocv.InterpolationLinear); err != nil {
		return nil, fmt.Errorf("resize: %w", err)
	}

	padded := gocv.NewMat()
	defer padded.Close()
	right := lb.Size - lb.Width - lb.PadX
	bottom := lb.Size - lb.Height - lb.PadY
	if err := gocv.CopyMakeBorder(resized, &padded, lb.PadY, bottom, lb.PadX, right, gocv.BorderConstant, padColor); err != nil {
		return nil, fmt.Errorf("pad: %w", err)
	}

	blob := gocv.BlobFromImage(padded, 1.0/255.0, image.Pt(lb.Size, lb.Size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()
	if blob.Empty() {
		return nil, fmt.Errorf("could not build input blob")
	}

	y.mu.Lock()
	defer y.mu.Unlock()

	y.net.SetInput(blob, "")
	out := y.net.Forward("")
	defer out.Close()
	if out.Empty() {
		return nil, fmt.Errorf("forward returned no output for a %dx%d input", lb.Size, lb.Size)
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	return yolo.Parse(data, out.Size(), lb, yolo.Params{
		ConfThreshold: y.cfg.ConfThreshold,
		Labels:        y.labels,
		Width:         src.Cols(),
		Height:        src.Rows(),
	})
}

func (y *YOLO) Close() error {
	return y.net.Close()
}
