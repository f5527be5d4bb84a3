package yolo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLabels(t *testing.T) {
	labels := DefaultLabels()
	require.Len(t, labels, 80)
	assert.Equal(t, "person", labels.Name(0))
	assert.Equal(t, "toothbrush", labels.Name(79))
	assert.Equal(t, "class_80", labels.Name(80))
	assert.Equal(t, "class_-1", labels.Name(-1))
}

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	require.NoError(t, os.WriteFile(path, []byte("cat\n\n  dog \nbird\n"), 0644))

	labels, err := LoadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, Labels{"cat", "dog", "bird"}, labels)

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = LoadLabels(empty)
	require.Error(t, err)

	_, err = LoadLabels(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestNewLetterbox(t *testing.T) {
	lb := NewLetterbox(1280, 720, 640)
	assert.Equal(t, 0.5, lb.Scale)
	assert.Equal(t, 640, lb.Width)
	assert.Equal(t, 360, lb.Height)
	assert.Equal(t, 0, lb.PadX)
	assert.Equal(t, 140, lb.PadY)

	x, y := lb.Unmap(320, 320)
	assert.InDelta(t, 640.0, x, 1e-9)
	assert.InDelta(t, 360.0, y, 1e-9)

	tall := NewLetterbox(300, 600, 640)
	assert.Equal(t, 320, tall.Width)
	assert.Equal(t, 640, tall.Height)
	assert.Equal(t, 160, tall.PadX)
	assert.Equal(t, 0, tall.PadY)
}

func TestParse(t *testing.T) {
	lb := NewLetterbox(1280, 720, 640)
	data := []float32{
		// x1, y1, x2, y2, score, class
		100, 150, 200, 250, 0.9, 0,
		0, 100, 700, 600, 0.5, 2,
		10, 10, 20, 20, 0.1, 5,
		50, 50, 50, 60, 0.8, 1,
	}
	p := Params{ConfThreshold: 0.25, Labels: DefaultLabels(), Width: 1280, Height: 720}

	dets, err := Parse(data, []int{1, 4, 6}, lb, p)
	require.NoError(t, err)
	require.Len(t, dets, 2)

	assert.Equal(t, 0, dets[0].ClassID)
	assert.Equal(t, "person", dets[0].ClassName)
	assert.InDelta(t, 0.9, dets[0].Confidence, 1e-6)
	assert.InDeltaSlice(t, []float64{200, 20, 400, 220}, dets[0].BBox[:], 1e-6)

	// clamped to the source image
	assert.Equal(t, "car", dets[1].ClassName)
	assert.InDeltaSlice(t, []float64{0, 0, 1280, 720}, dets[1].BBox[:], 1e-6)
}

func TestParseRejectsUnknownShape(t *testing.T) {
	_, err := Parse(make([]float32, 84*10), []int{1, 84, 10}, NewLetterbox(10, 10, 640), Params{})
	require.Error(t, err)

	_, err = Parse(make([]float32, 6), []int{1, 2, 6}, NewLetterbox(10, 10, 640), Params{})
	require.Error(t, err)
}
