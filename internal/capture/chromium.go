package capture

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"cronweek/internal/fsutil"
)

// Default viewport for the weekly grid: wide enough for seven 120px day
// columns plus the hour labels, tall enough for all 24 rows.
const (
	DefaultWidth   = 1280
	DefaultHeight  = 1200
	DefaultTimeout = 30 * time.Second
)

// Options defines a screenshot of a rendered calendar page.
type Options struct {
	// HTMLPath is the page on disk, e.g. "docs/index.html".
	HTMLPath string

	// OutputPath is where the PNG is written.
	OutputPath string

	Width   int
	Height  int
	Timeout time.Duration
}

func (o *Options) normalize() error {
	if o.HTMLPath == "" {
		return fmt.Errorf("capture: HTMLPath is required")
	}
	if o.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

// fileURL turns a local path into a file:// URL for the browser.
func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("capture: resolve %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// PagePNG opens the rendered page in headless Chromium, waits for the
// container's data-ready="true" marker and writes a full-page PNG.
func PagePNG(parentCtx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}
	target, err := fileURL(opts.HTMLPath)
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
		chromedp.Navigate(target),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := fsutil.WriteFileAtomic(opts.OutputPath, png, 0o644, 0o755); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	return nil
}
