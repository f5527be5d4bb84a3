package cli

import (
	"flag"
	"fmt"

	"github.com/chatman-media/timeline/internal/analyzer"
	"github.com/chatman-media/timeline/internal/sampler"
	"github.com/chatman-media/timeline/internal/yolo"
)

// DetectOptions holds the detectobjects flags
type DetectOptions struct {
	OutputDir     string
	ConfThreshold float64
	Model         string
	ImgSize       int
	Labels        string
}

// DetectFlags registers the detectobjects flags on fs
func DetectFlags(fs *flag.FlagSet) *DetectOptions {
	o := &DetectOptions{}
	fs.StringVar(&o.OutputDir, "output-dir", "", "directory for annotated images")
	fs.Float64Var(&o.ConfThreshold, "conf-threshold", 0.25, "minimum detection confidence")
	fs.StringVar(&o.Model, "model", "yolov10s.onnx", "model file name or path")
	fs.IntVar(&o.ImgSize, "img-size", 640, "largest image side before downscaling")
	fs.StringVar(&o.Labels, "labels", "", "file with one class label per line (default COCO)")
	return o
}

func (o *DetectOptions) Runner() analyzer.RunnerConfig {
	return analyzer.RunnerConfig{
		OutputDir:     o.OutputDir,
		ConfThreshold: o.ConfThreshold,
		ModelName:     o.Model,
		ImgSize:       o.ImgSize,
	}
}

// Detector builds the inference settings. inputSize is the network's own
// input shape; --img-size never reaches the model.
func (o *DetectOptions) Detector(inputSize int) yolo.Config {
	return yolo.Config{
		ConfThreshold: o.ConfThreshold,
		InputSize:     inputSize,
	}
}

// Video decoders accepted by --decoder
const (
	DecoderGoCV   = "gocv"
	DecoderFFmpeg = "ffmpeg"
)

// SampleOptions holds the screenshots flags
type SampleOptions struct {
	Interval       float64
	MaxScreenshots int
	InitialCount   int
	Width          int
	Height         int
	Decoder        string
}

// SampleFlags registers the screenshots flags on fs
func SampleFlags(fs *flag.FlagSet) *SampleOptions {
	o := &SampleOptions{}
	fs.Float64Var(&o.Interval, "interval", 1.0, "seconds between regular screenshots")
	fs.IntVar(&o.MaxScreenshots, "max-screenshots", 0, "maximum number of regular screenshots (0 means no limit)")
	fs.IntVar(&o.InitialCount, "initial-count", 10, "number of evenly spaced initial screenshots")
	fs.IntVar(&o.Width, "width", 0, "screenshot width, used together with --height")
	fs.IntVar(&o.Height, "height", 0, "screenshot height, used together with --width")
	fs.StringVar(&o.Decoder, "decoder", DecoderGoCV, "video decoder: gocv or ffmpeg")
	return o
}

// Validate rejects option values no run can use
func (o *SampleOptions) Validate() error {
	switch o.Decoder {
	case DecoderGoCV, DecoderFFmpeg:
		return nil
	default:
		return fmt.Errorf("unknown decoder %q", o.Decoder)
	}
}

func (o *SampleOptions) Request(videoPath, outputDir string) sampler.Request {
	return sampler.Request{
		VideoPath:      videoPath,
		OutputDir:      outputDir,
		Interval:       o.Interval,
		MaxScreenshots: o.MaxScreenshots,
		InitialCount:   o.InitialCount,
		Width:          o.Width,
		Height:         o.Height,
	}
}
