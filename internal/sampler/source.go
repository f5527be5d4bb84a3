package sampler

import (
	"context"
	"image"
)

// VideoInfo holds the properties a video source reports when opened
type VideoInfo struct {
	FPS        float64
	FrameCount int
	Width      int
	Height     int
}

// Source is an open video. Next returns io.EOF once the stream is exhausted.
type Source interface {
	Info() VideoInfo
	// Seek positions the source so the next call to Next returns frame
	Seek(frame int) error
	Next() (image.Image, error)
	Close() error
}

// Opener opens the video at path
type Opener func(ctx context.Context, path string) (Source, error)
