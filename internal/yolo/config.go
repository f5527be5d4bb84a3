package yolo

// DefaultInputSize is the square input the published YOLOv10 exports expect
const DefaultInputSize = 640

// Config controls inference. InputSize must match the exported network's
// input shape and is independent of any pre-inference downscaling.
type Config struct {
	ConfThreshold float64
	InputSize     int
}
