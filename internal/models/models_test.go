package models

import (
	"encoding/json"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageResultJSON(t *testing.T) {
	t.Run("success without detections", func(t *testing.T) {
		data, err := json.Marshal(NewImageResult("a.jpg", nil))
		require.NoError(t, err)
		assert.JSONEq(t, `{"image_path":"a.jpg","detections":[],"detection_count":0}`, string(data))
	})

	t.Run("success with detections", func(t *testing.T) {
		res := NewImageResult("b.jpg", []Detection{
			{ClassID: 0, ClassName: "person", Confidence: 0.5, BBox: [4]float64{1, 2, 3, 4}},
		})
		data, err := json.Marshal(res)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"image_path": "b.jpg",
			"detections": [{"class_id": 0, "class_name": "person", "confidence": 0.5, "bbox": [1, 2, 3, 4]}],
			"detection_count": 1
		}`, string(data))
	})

	t.Run("error has no detection_count", func(t *testing.T) {
		res := NewImageError("missing.jpg", "image not found")
		assert.True(t, res.Failed())

		data, err := json.Marshal(res)
		require.NoError(t, err)
		assert.JSONEq(t, `{"image_path":"missing.jpg","error":"image not found"}`, string(data))
	})
}

func TestBatchResultEmbedsImageResults(t *testing.T) {
	batch := DetectionBatchResult{
		Model:         "yolov10s.onnx",
		ConfThreshold: 0.25,
		ImageCount:    1,
		Results:       []ImageResult{NewImageError("x.png", "image not found")},
	}

	data, err := json.Marshal(batch)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	results := decoded["results"].([]any)
	require.Len(t, results, 1)
	entry := results[0].(map[string]any)
	assert.Equal(t, "x.png", entry["image_path"])
	assert.NotContains(t, entry, "detection_count")
}

func TestDetectionRectTruncates(t *testing.T) {
	d := Detection{BBox: [4]float64{10.9, 20.5, 99.99, 150.2}}
	assert.Equal(t, image.Rect(10, 20, 99, 150), d.Rect())
}
