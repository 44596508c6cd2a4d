package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/root4loot/docsmoke/pkg/smoke"
)

type playwrightLauncher struct {
	options Options
}

type playwrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	options Options
}

type playwrightPage struct {
	page playwright.Page
}

func (l *playwrightLauncher) Launch(ctx context.Context) (smoke.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if l.options.InstallPlaywright {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	var args []string
	if l.options.DisableHTTP2 {
		args = append(args, "--disable-http2")
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.options.Headless),
		Args:     args,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	return &playwrightBrowser{pw: pw, browser: browser, options: l.options}, nil
}

func (b *playwrightBrowser) NewPage(ctx context.Context) (smoke.Page, error) {
	opts := playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(b.options.IgnoreCertificateErrors),
	}
	if b.options.ViewportWidth != 0 && b.options.ViewportHeight != 0 {
		opts.Viewport = &playwright.Size{
			Width:  b.options.ViewportWidth,
			Height: b.options.ViewportHeight,
		}
	}
	if b.options.UserAgent != "" {
		opts.UserAgent = playwright.String(b.options.UserAgent)
	}

	browserContext, err := b.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("could not create context: %w", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	return &playwrightPage{page: page}, nil
}

func (b *playwrightBrowser) Close() error {
	return errors.Join(b.browser.Close(), b.pw.Stop())
}

func (p *playwrightPage) Goto(ctx context.Context, url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout: playwright.Float(timeoutMillis(ctx)),
	})
	return err
}

func (p *playwrightPage) WaitNetworkIdle(ctx context.Context) error {
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(timeoutMillis(ctx)),
	})
}

func (p *playwrightPage) CountText(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.page.Locator("text=" + text).Count()
}

func (p *playwrightPage) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
		Timeout:  playwright.Float(timeoutMillis(ctx)),
	})
}

// timeoutMillis converts the time left on ctx into a playwright timeout.
// Zero means no timeout; an expired deadline becomes the smallest timeout.
func timeoutMillis(ctx context.Context) float64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	left := time.Until(deadline)
	if left < time.Millisecond {
		return 1
	}
	return float64(left.Milliseconds())
}
