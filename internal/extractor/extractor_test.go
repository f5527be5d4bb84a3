package extractor

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameRate(t *testing.T) {
	assert.InDelta(t, 29.97, parseFrameRate("30000/1001"), 0.001)
	assert.Equal(t, 25.0, parseFrameRate("25/1"))
	assert.Equal(t, 24.0, parseFrameRate("24"))
	assert.Equal(t, 0.0, parseFrameRate("0/0"))
	assert.Equal(t, 0.0, parseFrameRate(""))
}

func TestParseProbe(t *testing.T) {
	data := []byte(`{
		"programs": [],
		"streams": [
			{"width": 1920, "height": 1080, "avg_frame_rate": "30/1", "r_frame_rate": "30/1", "nb_frames": "300"}
		],
		"format": {"duration": "10.000000"}
	}`)

	info, err := parseProbe(data)
	require.NoError(t, err)
	assert.Equal(t, 30.0, info.FPS)
	assert.Equal(t, 300, info.FrameCount)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
}

func TestParseProbeFallsBackToDuration(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"width": 640, "height": 360, "avg_frame_rate": "0/0", "r_frame_rate": "25/1"}
		],
		"format": {"duration": "4.000000"}
	}`)

	info, err := parseProbe(data)
	require.NoError(t, err)
	assert.Equal(t, 25.0, info.FPS)
	assert.Equal(t, 100, info.FrameCount)
}

func TestParseProbeRotation(t *testing.T) {
	tests := []struct {
		name         string
		data         string
		wantW, wantH int
	}{
		{
			name:  "side data quarter turn",
			data:  `{"streams": [{"width": 1920, "height": 1080, "avg_frame_rate": "30/1", "nb_frames": "90", "side_data_list": [{"side_data_type": "Display Matrix", "displaymatrix": "...", "rotation": -90}]}]}`,
			wantW: 1080, wantH: 1920,
		},
		{
			name:  "legacy rotate tag",
			data:  `{"streams": [{"width": 1920, "height": 1080, "avg_frame_rate": "30/1", "nb_frames": "90", "tags": {"rotate": "270"}}]}`,
			wantW: 1080, wantH: 1920,
		},
		{
			name:  "upside down keeps orientation",
			data:  `{"streams": [{"width": 1920, "height": 1080, "avg_frame_rate": "30/1", "nb_frames": "90", "side_data_list": [{"rotation": 180}]}]}`,
			wantW: 1920, wantH: 1080,
		},
		{
			name:  "no rotation",
			data:  `{"streams": [{"width": 1920, "height": 1080, "avg_frame_rate": "30/1", "nb_frames": "90"}]}`,
			wantW: 1920, wantH: 1080,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := parseProbe([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, info.Width)
			assert.Equal(t, tt.wantH, info.Height)
		})
	}
}

func TestParseProbeErrors(t *testing.T) {
	_, err := parseProbe([]byte(`not json`))
	require.Error(t, err)

	_, err = parseProbe([]byte(`{"streams": [], "format": {}}`))
	require.Error(t, err)
}

func TestRGBToImage(t *testing.T) {
	buf := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 10, 20, 30,
	}

	img := rgbToImage(buf, 2, 2)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	r, g, b, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(10*0x101), r)
	assert.Equal(t, uint32(20*0x101), g)
	assert.Equal(t, uint32(30*0x101), b)
	assert.Equal(t, uint32(0xffff), a)

	r, _, _, _ = img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestOpenMissingVideo(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	missing := filepath.Join(t.TempDir(), "missing.mp4")

	_, err := Open(context.Background(), Config{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"}, missing, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestSeekRejectsNegativeFrame(t *testing.T) {
	s := &Source{}
	require.Error(t, s.Seek(-1))
	require.NoError(t, s.Seek(12))
	assert.Equal(t, 12, s.next)
	require.NoError(t, s.Close())
}
