package modelcache

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/chatman-media/timeline/internal/storage"
)

const downloadTimeout = 10 * time.Minute

// Cache keeps downloaded model files in a local directory
type Cache struct {
	dir     string
	baseURL string
	client  *resty.Client
	logger  *slog.Logger
}

// New creates a cache rooted at dir that fetches missing models from baseURL
func New(dir, baseURL string, logger *slog.Logger) *Cache {
	return &Cache{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  resty.New().SetTimeout(downloadTimeout),
		logger:  logger,
	}
}

// Path returns the local path of the named model, downloading it first if
// it is not cached yet. A name that already points to an existing file is
// returned unchanged.
func (c *Cache) Path(ctx context.Context, name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
		return "", fmt.Errorf("model file does not exist at path: '%s'", name)
	}

	modelPath := filepath.Join(c.dir, name)
	if _, err := os.Stat(modelPath); err == nil {
		return modelPath, nil
	}

	if err := storage.EnsureDir(c.dir); err != nil {
		return "", err
	}

	url := c.baseURL + "/" + name
	c.logger.Info("downloading model", "model", name, "url", url)

	partPath := modelPath + ".part"
	resp, err := c.client.R().
		SetContext(ctx).
		SetOutput(partPath).
		Get(url)
	if err != nil {
		os.Remove(partPath)
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	if resp.IsError() {
		os.Remove(partPath)
		if resp.StatusCode() == http.StatusNotFound {
			return "", fmt.Errorf("download %s: %s; place an ONNX export of %s in %s (TIMELINE_MODEL_DIR) or serve it from TIMELINE_MODEL_BASE_URL",
				url, resp.Status(), name, c.dir)
		}
		return "", fmt.Errorf("download %s: unexpected status %s", url, resp.Status())
	}

	if err := os.Rename(partPath, modelPath); err != nil {
		os.Remove(partPath)
		return "", fmt.Errorf("failed to move model into cache: %w", err)
	}

	c.logger.Info("model downloaded", "model", name, "path", modelPath)
	return modelPath, nil
}
