package sampler

import "math"

// Target sizes picked from the source aspect ratio
const (
	wideWidth, wideHeight     = 640, 360
	tallWidth, tallHeight     = 360, 640
	squareWidth, squareHeight = 540, 540

	wideAspect = 1.5
	tallAspect = 0.67
)

// TargetResolution returns the size screenshots are saved at. The requested
// size is used only when both dimensions are given.
func TargetResolution(srcWidth, srcHeight, reqWidth, reqHeight int) (int, int) {
	if reqWidth > 0 && reqHeight > 0 {
		return reqWidth, reqHeight
	}

	aspect := AspectRatio(srcWidth, srcHeight)
	switch {
	case aspect > wideAspect:
		return wideWidth, wideHeight
	case aspect < tallAspect:
		return tallWidth, tallHeight
	default:
		return squareWidth, squareHeight
	}
}

// AspectRatio returns width/height, or 1 for a degenerate height
func AspectRatio(width, height int) float64 {
	if height <= 0 {
		return 1
	}
	return float64(width) / float64(height)
}

// InitialFrames returns count frame indices spread evenly over the video,
// starting at frame 0. count is clamped to frameCount.
func InitialFrames(frameCount, count int) []int {
	count = min(count, frameCount)
	if count <= 0 {
		return nil
	}

	stride := frameCount / count
	frames := make([]int, count)
	for i := range frames {
		frames[i] = i * stride
	}
	return frames
}

// FrameInterval converts an interval in seconds to a number of frames. It is
// never less than 1 so every frame can still be selected for very short
// intervals.
func FrameInterval(fps, seconds float64) int {
	n := math.Floor(fps * seconds)
	if n < 1 || math.IsNaN(n) {
		return 1
	}
	return int(n)
}

// Timestamp is the position of frame in seconds
func Timestamp(frame int, fps float64) float64 {
	return float64(frame) / fps
}
