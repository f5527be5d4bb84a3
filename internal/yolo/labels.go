package yolo

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed coco.names
var cocoNames string

// Labels maps class ids to names
type Labels []string

// DefaultLabels returns the 80 COCO classes the pretrained YOLOv10 weights
// were trained on.
func DefaultLabels() Labels {
	labels, _ := readLabels(strings.NewReader(cocoNames))
	return labels
}

// LoadLabels reads one label per line from path
func LoadLabels(path string) (Labels, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels file: %w", err)
	}
	defer file.Close()

	labels, err := readLabels(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels file: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file '%s' is empty", path)
	}
	return labels, nil
}

func readLabels(r io.Reader) (Labels, error) {
	var labels Labels
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		labels = append(labels, line)
	}
	return labels, scanner.Err()
}

// Name returns the label for id, or a placeholder for ids the list does
// not cover.
func (l Labels) Name(id int) string {
	if id >= 0 && id < len(l) {
		return l[id]
	}
	return fmt.Sprintf("class_%d", id)
}
