package sampler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/chatman-media/timeline/internal/models"
	"github.com/chatman-media/timeline/internal/storage"
)

var (
	ErrVideoNotFound = errors.New("video file not found")
	ErrVideoOpen     = errors.New("failed to open video file")
	ErrInvalidFPS    = errors.New("invalid frame rate")
)

// Request describes one sampling run
type Request struct {
	VideoPath string
	OutputDir string
	// Interval between regular screenshots in seconds
	Interval float64
	// MaxScreenshots caps the regular screenshots; <= 0 means no cap
	MaxScreenshots int
	InitialCount   int
	// Width and Height override the automatic target size when both are > 0
	Width  int
	Height int
}

// Sampler saves screenshots from videos opened through its Opener
type Sampler struct {
	open   Opener
	logger *slog.Logger
}

func New(open Opener, logger *slog.Logger) *Sampler {
	return &Sampler{open: open, logger: logger}
}

// run carries the per-video state shared by both phases
type run struct {
	src       Source
	info      VideoInfo
	videoName string
	outputDir string
	width     int
	height    int
}

// Sample extracts an evenly spaced initial set of screenshots followed by
// screenshots taken every req.Interval seconds. A missing or unreadable
// video is returned as an error; individual frames that fail are skipped.
func (s *Sampler) Sample(ctx context.Context, req Request) (models.SampleBatchResult, error) {
	if _, err := os.Stat(req.VideoPath); err != nil {
		return models.SampleBatchResult{}, fmt.Errorf("%w: %s", ErrVideoNotFound, req.VideoPath)
	}

	if err := storage.EnsureDir(req.OutputDir); err != nil {
		return models.SampleBatchResult{}, err
	}

	src, err := s.open(ctx, req.VideoPath)
	if err != nil {
		s.logger.Debug("open failed", "video", req.VideoPath, "error", err)
		return models.SampleBatchResult{}, fmt.Errorf("%w: %s", ErrVideoOpen, req.VideoPath)
	}
	defer func() {
		if err := src.Close(); err != nil {
			s.logger.Warn("failed to release video", "video", req.VideoPath, "error", err)
		}
	}()

	info := src.Info()
	if info.FPS <= 0 {
		return models.SampleBatchResult{}, fmt.Errorf("%w: %s reports %v fps", ErrInvalidFPS, req.VideoPath, info.FPS)
	}

	width, height := TargetResolution(info.Width, info.Height, req.Width, req.Height)
	s.logger.Info("source video",
		"resolution", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"aspect_ratio", fmt.Sprintf("%.2f", AspectRatio(info.Width, info.Height)),
		"fps", info.FPS,
		"frames", info.FrameCount,
	)
	s.logger.Info("screenshot size", "resolution", fmt.Sprintf("%dx%d", width, height))

	r := &run{
		src:       src,
		info:      info,
		videoName: strings.TrimSuffix(filepath.Base(req.VideoPath), filepath.Ext(req.VideoPath)),
		outputDir: req.OutputDir,
		width:     width,
		height:    height,
	}

	screenshots := make([]models.Screenshot, 0)
	screenshots = append(screenshots, s.initialPhase(ctx, r, req.InitialCount)...)
	screenshots = append(screenshots, s.regularPhase(ctx, r, req.Interval, req.MaxScreenshots)...)

	s.logger.Info("sampling finished", "video", req.VideoPath, "screenshots", len(screenshots))

	return models.SampleBatchResult{
		VideoPath:       req.VideoPath,
		VideoName:       r.videoName,
		Duration:        float64(info.FrameCount) / info.FPS,
		FPS:             info.FPS,
		FrameCount:      info.FrameCount,
		ScreenshotCount: len(screenshots),
		Screenshots:     screenshots,
	}, nil
}

// initialPhase seeks to each evenly spaced frame and saves it. Frames that
// can not be read or saved are skipped.
func (s *Sampler) initialPhase(ctx context.Context, r *run, count int) []models.Screenshot {
	var shots []models.Screenshot
	for i, frame := range InitialFrames(r.info.FrameCount, count) {
		if ctx.Err() != nil {
			break
		}

		if err := r.src.Seek(frame); err != nil {
			s.logger.Debug("seek failed", "frame", frame, "error", err)
			continue
		}
		img, err := r.src.Next()
		if err != nil {
			s.logger.Debug("read failed", "frame", frame, "error", err)
			continue
		}

		ts := Timestamp(frame, r.info.FPS)
		path := filepath.Join(r.outputDir, fmt.Sprintf("%s_initial_%04d_%.3f.jpg", r.videoName, i, ts))
		if err := r.save(img, path); err != nil {
			s.logger.Debug("save failed", "frame", frame, "error", err)
			continue
		}

		shots = append(shots, models.Screenshot{
			Path:      path,
			Timestamp: ts,
			Frame:     frame,
			Type:      models.ScreenshotInitial,
		})
	}
	return shots
}

// regularPhase decodes the video from the start and saves every
// frameInterval-th frame until the cap is reached or the stream ends.
func (s *Sampler) regularPhase(ctx context.Context, r *run, interval float64, maxShots int) []models.Screenshot {
	if err := r.src.Seek(0); err != nil {
		s.logger.Warn("failed to rewind video", "error", err)
		return nil
	}

	frameInterval := FrameInterval(r.info.FPS, interval)
	s.logger.Debug("regular sampling", "frame_interval", frameInterval, "max_screenshots", maxShots)

	var shots []models.Screenshot
	for frame := 0; ; frame++ {
		if ctx.Err() != nil {
			break
		}

		img, err := r.src.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Warn("stopping at unreadable frame", "frame", frame, "error", err)
			}
			break
		}
		if frame%frameInterval != 0 {
			continue
		}

		ts := Timestamp(frame, r.info.FPS)
		path := filepath.Join(r.outputDir, fmt.Sprintf("%s_%04d_%.3f.jpg", r.videoName, len(shots), ts))
		if err := r.save(img, path); err != nil {
			s.logger.Warn("save failed", "frame", frame, "error", err)
			continue
		}

		shots = append(shots, models.Screenshot{
			Path:      path,
			Timestamp: ts,
			Frame:     frame,
			Type:      models.ScreenshotRegular,
		})

		if maxShots > 0 && len(shots) >= maxShots {
			break
		}
	}
	return shots
}

func (r *run) save(img image.Image, path string) error {
	resized := imaging.Resize(img, r.width, r.height, imaging.Box)
	return storage.SaveImage(resized, path)
}
