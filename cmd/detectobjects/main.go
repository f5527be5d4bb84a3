package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chatman-media/timeline/internal/analyzer"
	"github.com/chatman-media/timeline/internal/cli"
	"github.com/chatman-media/timeline/internal/config"
	"github.com/chatman-media/timeline/internal/logging"
	"github.com/chatman-media/timeline/internal/modelcache"
	"github.com/chatman-media/timeline/internal/storage"
	"github.com/chatman-media/timeline/internal/vision"
	"github.com/chatman-media/timeline/internal/yolo"
)

const usage = "Usage: detectobjects <image>... [--output-dir dir] [--conf-threshold 0.25] [--model yolov10s.onnx] [--img-size 640] [--labels file]"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return cli.Fail(stdout, err.Error())
	}
	logger := logging.New(stderr, cfg.LogLevel)

	fs := flag.NewFlagSet("detectobjects", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}
	opts := cli.DetectFlags(fs)

	images, err := cli.Parse(fs, args)
	if err != nil {
		return cli.UsageCode(err)
	}
	if len(images) == 0 {
		fs.Usage()
		return cli.ExitUsage
	}

	labels := yolo.DefaultLabels()
	if opts.Labels != "" {
		if labels, err = yolo.LoadLabels(opts.Labels); err != nil {
			return cli.Fail(stdout, err.Error())
		}
	}

	cache := modelcache.New(cfg.ModelDir, cfg.ModelBaseURL, logger)
	modelPath, err := cache.Path(ctx, opts.Model)
	if err != nil {
		return cli.Fail(stdout, fmt.Sprintf("failed to load model: %v", err))
	}

	detector, err := vision.NewYOLO(modelPath, opts.Detector(cfg.ModelInputSize), labels)
	if err != nil {
		return cli.Fail(stdout, fmt.Sprintf("failed to load model: %v", err))
	}
	defer detector.Close()
	logger.Info("model loaded", "model", modelPath, "input_size", cfg.ModelInputSize)

	runner := analyzer.NewRunner(detector, vision.NewAnnotator(), opts.Runner(), logger)

	result, err := runner.Run(ctx, images)
	if err != nil {
		return cli.Fail(stdout, err.Error())
	}

	if err := storage.WriteJSON(stdout, result); err != nil {
		logger.Error("failed to write results", "error", err)
		return cli.ExitError
	}
	return cli.ExitOK
}
