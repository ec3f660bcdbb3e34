package charts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

// CapturePNG opens the chart document in headless Chrome and saves a full-page
// screenshot. chromeBin may be empty to use the browser found on PATH.
func CapturePNG(ctx context.Context, htmlPath, pngPath, chromeBin string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("charts: resolve %q: %w", htmlPath, err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 900),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, 60*time.Second)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(runCtx,
		chromedp.Navigate("file://"+filepath.ToSlash(abs)),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.FullScreenshot(&buf, 100),
	); err != nil {
		return fmt.Errorf("charts: capture %q: %w", abs, err)
	}

	if err := os.MkdirAll(filepath.Dir(pngPath), 0755); err != nil {
		return fmt.Errorf("charts: create output dir: %w", err)
	}
	if err := os.WriteFile(pngPath, buf, 0644); err != nil {
		return fmt.Errorf("charts: write %q: %w", pngPath, err)
	}
	return nil
}
