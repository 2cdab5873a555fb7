package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	// A4 at 96dpi.
	a4WidthPx  = 794
	a4HeightPx = 1123
)

// renderPage 启动无头 Chromium 打开 targetURL，并等待页面给出 #pdf-render-ready 信号。
// headers 会随每个请求发送（例如内部密钥）。
func renderPage(ctx context.Context, logger *slog.Logger, targetURL string, headers map[string]string) (_ *rod.Page, cleanup func(), err error) {
	cleanup = func() {}

	logger.Info("worker: opening preview page", slog.String("url", targetURL))

	launch := launcher.New().
		Headless(true).
		NoSandbox(true)
	defer func() {
		if err != nil {
			launch.Cleanup()
		}
	}()

	if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, cleanup, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(browserURL).Context(ctx).Timeout(90 * time.Second)
	if err := browser.Connect(); err != nil {
		return nil, cleanup, fmt.Errorf("connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		return nil, cleanup, fmt.Errorf("open page: %w", err)
	}
	cleanup = func() {
		_ = page.Close()
		_ = browser.Close()
		launch.Cleanup()
	}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	if len(headers) > 0 {
		dict := make([]string, 0, len(headers)*2)
		for k, v := range headers {
			dict = append(dict, k, v)
		}
		if _, err := page.SetExtraHeaders(dict); err != nil {
			return nil, cleanup, fmt.Errorf("set extra headers: %w", err)
		}
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             a4WidthPx,
		Height:            a4HeightPx,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, cleanup, fmt.Errorf("set viewport: %w", err)
	}

	if err := page.Navigate(targetURL); err != nil {
		return nil, cleanup, fmt.Errorf("navigate %s: %w", targetURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, cleanup, fmt.Errorf("wait load: %w", err)
	}

	logger.Info("worker: waiting for render signal (#pdf-render-ready)")
	if _, err := page.Timeout(30 * time.Second).Element("#pdf-render-ready"); err != nil {
		return nil, cleanup, fmt.Errorf("wait render signal: %w", err)
	}

	// 等待系统字体就绪，避免回退字体导致截图排版差异
	if _, evalErr := page.Timeout(5 * time.Second).Eval(`() => {
	  if (document && document.fonts && document.fonts.ready) {
	    return Promise.race([
	      document.fonts.ready.then(() => true),
	      new Promise((resolve) => setTimeout(() => resolve(true), 3000))
	    ]);
	  }
	  return true;
	}`); evalErr != nil {
		logger.Warn("worker: document.fonts.ready wait failed, continue", slog.Any("error", evalErr))
	}

	return page, cleanup, nil
}

// capturePreparedScreenshot 优先截取 #a4-container，失败时退回整页截图。
func capturePreparedScreenshot(page *rod.Page, quality int) ([]byte, error) {
	element, err := page.Timeout(5 * time.Second).Element("#a4-container")
	if err == nil {
		if data, shotErr := element.Screenshot(proto.PageCaptureScreenshotFormatJpeg, quality); shotErr == nil {
			return data, nil
		}
	}

	req := &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: &quality,
	}
	data, err := page.Screenshot(true, req)
	if err != nil {
		return nil, fmt.Errorf("page screenshot: %w", err)
	}
	return data, nil
}

// captureJPEG renders targetURL in a headless browser and returns a JPEG of the A4 canvas.
func captureJPEG(ctx context.Context, logger *slog.Logger, targetURL string, headers map[string]string, quality int) ([]byte, error) {
	page, cleanup, err := renderPage(ctx, logger, targetURL, headers)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return capturePreparedScreenshot(page, quality)
}
