package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/m-mizutani/goerr/v2"

	appLog "schedview/internal/log"
)

// Default capture parameters for the timeline page.
const (
	DefaultWidth      = 1400
	DefaultHeight     = 800
	DefaultTimeoutSec = 30
)

// ReadySelector matches once the page has mounted the timeline (or decided
// there is nothing to mount).
const ReadySelector = `[data-ready="true"]`

var (
	ErrNoURL    = errors.New("capture: URL is required")
	ErrNoOutput = errors.New("capture: output path is required")
)

// Options defines parameters for a Chromium-based screenshot capture.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/".
	URL string

	// OutputPath is where the PNG is written. The file is replaced
	// atomically.
	OutputPath string

	// Width and Height are the viewport dimensions in pixels.
	Width  int
	Height int

	// Timeout bounds the entire capture operation.
	Timeout time.Duration

	// Username / Password are sent as HTTP Basic Auth when both are set.
	Username string
	Password string
}

func (o Options) normalized() (Options, error) {
	if o.URL == "" {
		return o, ErrNoURL
	}
	if o.OutputPath == "" {
		return o, ErrNoOutput
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return o, nil
}

func (o Options) headers() network.Headers {
	if o.Username == "" || o.Password == "" {
		return nil
	}
	token := base64.StdEncoding.EncodeToString([]byte(o.Username + ":" + o.Password))
	return network.Headers{"Authorization": "Basic " + token}
}

// CaptureTimelinePNG launches a headless Chromium via chromedp, opens
// opts.URL, waits for ReadySelector and writes a PNG of the page.
func CaptureTimelinePNG(parentCtx context.Context, opts Options) error {
	opts, err := opts.normalized()
	if err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
	}
	if h := opts.headers(); h != nil {
		tasks = append(tasks, network.Enable(), network.SetExtraHTTPHeaders(h))
	}
	tasks = append(tasks,
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		// Small extra delay to allow final paints.
		chromedp.Sleep(500*time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	)

	if err := chromedp.Run(ctx, tasks); err != nil {
		return goerr.Wrap(err, "capture: chromedp run failed", goerr.V("url", opts.URL))
	}

	if err := writeFileAtomic(opts.OutputPath, png); err != nil {
		return err
	}
	appLog.Info("snapshot written", "path", opts.OutputPath, "bytes", len(png))
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "capture: create output dir", goerr.V("dir", dir))
	}
	tmp, err := os.CreateTemp(dir, ".schedview-preview-*.tmp")
	if err != nil {
		return goerr.Wrap(err, "capture: create temp file", goerr.V("dir", dir))
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return goerr.Wrap(err, "capture: write temp file")
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "capture: close temp file")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return goerr.Wrap(err, "capture: chmod temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return goerr.Wrap(err, "capture: rename into place", goerr.V("path", path))
	}
	return nil
}
