package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chatman-media/timeline/internal/cli"
	"github.com/chatman-media/timeline/internal/config"
	"github.com/chatman-media/timeline/internal/extractor"
	"github.com/chatman-media/timeline/internal/logging"
	"github.com/chatman-media/timeline/internal/sampler"
	"github.com/chatman-media/timeline/internal/storage"
	"github.com/chatman-media/timeline/internal/vision"
)

const usage = "Usage: screenshots <video> <output_dir> [--interval 1.0] [--max-screenshots N] [--initial-count 10] [--width W] [--height H] [--decoder gocv|ffmpeg]"

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

	fs := flag.NewFlagSet("screenshots", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}
	opts := cli.SampleFlags(fs)

	positional, err := cli.Parse(fs, args)
	if err != nil {
		return cli.UsageCode(err)
	}
	if len(positional) != 2 {
		fs.Usage()
		return cli.ExitUsage
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return cli.ExitUsage
	}

	var open sampler.Opener = vision.Opener
	if opts.Decoder == cli.DecoderFFmpeg {
		ffmpeg := extractor.Config{FFmpegPath: cfg.FFmpegPath, FFprobePath: cfg.FFprobePath}
		open = extractor.Opener(ffmpeg, logger)
	}

	s := sampler.New(open, logger)
	result, err := s.Sample(ctx, opts.Request(positional[0], positional[1]))
	if err != nil {
		return cli.Fail(stdout, err.Error())
	}

	if err := storage.WriteJSON(stdout, result); err != nil {
		logger.Error("failed to write results", "error", err)
		return cli.ExitError
	}
	return cli.ExitOK
}
