package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/chatman-media/timeline/internal/sampler"
)

// Config locates the ffmpeg binaries
type Config struct {
	FFmpegPath  string
	FFprobePath string
}

// Source decodes a video by piping raw RGB frames out of ffmpeg. Seeking
// restarts ffmpeg with a select filter so frame indices stay exact.
type Source struct {
	// ctx bounds every ffmpeg process this source starts. A Source lives for
	// one sampling run, which owns the context.
	ctx       context.Context
	cfg       Config
	videoPath string
	info      sampler.VideoInfo
	logger    *slog.Logger

	next   int // index of the frame the next read returns
	cmd    *exec.Cmd
	stdout io.ReadCloser
	buf    []byte
}

// Open probes videoPath with ffprobe and prepares it for decoding
func Open(ctx context.Context, cfg Config, videoPath string, logger *slog.Logger) (*Source, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file does not exist at path: '%s'", videoPath)
	}
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	info, err := probe(ctx, cfg.FFprobePath, videoPath)
	if err != nil {
		return nil, err
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("no video stream in '%s'", videoPath)
	}

	logger.Debug("probed video", "path", videoPath, "fps", info.FPS, "frames", info.FrameCount,
		"width", info.Width, "height", info.Height)

	return &Source{
		ctx:       ctx,
		cfg:       cfg,
		videoPath: videoPath,
		info:      info,
		logger:    logger,
		buf:       make([]byte, info.Width*info.Height*3),
	}, nil
}

// Opener adapts Open to sampler.Opener
func Opener(cfg Config, logger *slog.Logger) sampler.Opener {
	return func(ctx context.Context, path string) (sampler.Source, error) {
		src, err := Open(ctx, cfg, path, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}

func (s *Source) Info() sampler.VideoInfo {
	return s.info
}

func (s *Source) Seek(frame int) error {
	if frame < 0 {
		return fmt.Errorf("invalid frame index %d", frame)
	}
	s.stop()
	s.next = frame
	return nil
}

func (s *Source) Next() (image.Image, error) {
	if err := s.ctx.Err(); err != nil {
		s.stop()
		return nil, err
	}
	if s.cmd == nil {
		if err := s.start(); err != nil {
			return nil, err
		}
	}

	if _, err := io.ReadFull(s.stdout, s.buf); err != nil {
		s.stop()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame %d: %w", s.next, err)
	}

	s.next++
	return rgbToImage(s.buf, s.info.Width, s.info.Height), nil
}

func (s *Source) Close() error {
	s.stop()
	return nil
}

func (s *Source) start() error {
	args := []string{"-v", "error", "-i", s.videoPath}
	if s.next > 0 {
		args = append(args, "-vf", fmt.Sprintf("select=gte(n\\,%d)", s.next))
	}
	args = append(args,
		"-vsync", "0",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)

	cmd := exec.CommandContext(s.ctx, s.cfg.FFmpegPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg failed to start: %w", err)
	}

	s.logger.Debug("ffmpeg started", "start_frame", s.next)
	s.cmd = cmd
	s.stdout = stdout
	return nil
}

// stop terminates the running decoder, if any
func (s *Source) stop() {
	if s.cmd == nil {
		return
	}
	s.stdout.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	s.cmd = nil
	s.stdout = nil
}

func rgbToImage(buf []byte, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i+2 < len(buf) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = buf[i]
		img.Pix[j+1] = buf[i+1]
		img.Pix[j+2] = buf[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

type probeOutput struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
		NbFrames     string `json:"nb_frames"`
		Duration     string `json:"duration"`
		Tags         struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
		SideDataList []struct {
			Rotation float64 `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func probe(ctx context.Context, ffprobePath, videoPath string) (sampler.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,avg_frame_rate,r_frame_rate,nb_frames,duration:stream_tags=rotate:stream_side_data=rotation:format=duration",
		"-of", "json",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return sampler.VideoInfo{}, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbe(output)
}

func parseProbe(data []byte) (sampler.VideoInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return sampler.VideoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return sampler.VideoInfo{}, fmt.Errorf("no video stream found")
	}

	stream := out.Streams[0]
	fps := parseFrameRate(stream.AvgFrameRate)
	if fps <= 0 {
		fps = parseFrameRate(stream.RFrameRate)
	}

	frames, err := strconv.Atoi(strings.TrimSpace(stream.NbFrames))
	if err != nil || frames <= 0 {
		duration := parseFloat(stream.Duration)
		if duration <= 0 {
			duration = parseFloat(out.Format.Duration)
		}
		frames = int(math.Round(duration * fps))
	}

	// ffmpeg autorotates decoded frames, so report the display size
	width, height := stream.Width, stream.Height
	rotation := parseFloat(stream.Tags.Rotate)
	for _, sd := range stream.SideDataList {
		if sd.Rotation != 0 {
			rotation = sd.Rotation
		}
	}
	if quarterTurn(rotation) {
		width, height = height, width
	}

	return sampler.VideoInfo{
		FPS:        fps,
		FrameCount: frames,
		Width:      width,
		Height:     height,
	}, nil
}

// quarterTurn reports whether a rotation in degrees is an odd multiple of 90
func quarterTurn(degrees float64) bool {
	turns := int(math.Round(degrees/90)) % 2
	return turns != 0
}

// parseFrameRate parses ffprobe rates such as "30000/1001"
func parseFrameRate(rate string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(rate), "/")
	if !ok {
		return parseFloat(num)
	}
	n, d := parseFloat(num), parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
