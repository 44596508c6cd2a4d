package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/root4loot/docsmoke/pkg/smoke"
	"github.com/root4loot/goutils/log"
)

type rodLauncher struct {
	options Options
}

type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	options  Options
}

type rodPage struct {
	page     *rod.Page
	options  Options
	mu       sync.Mutex
	idleWait func()
	stopIdle context.CancelFunc
}

func (l *rodLauncher) Launch(ctx context.Context) (smoke.Browser, error) {
	path, _ := launcher.LookPath()

	lnch := launcher.New().
		Context(ctx).
		Headless(l.options.Headless).
		Bin(path).
		NoSandbox(true)

	if l.options.UserAgent != "" {
		lnch.Set("user-agent", l.options.UserAgent)
	}

	if l.options.IgnoreCertificateErrors {
		lnch.Set("ignore-certificate-errors", "true")
	}

	if l.options.DisableHTTP2 {
		lnch.Set("disable-http2", "true")
	}

	controlURL, err := lnch.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}
	log.Debugf("Launched browser at %s", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		lnch.Kill()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	if l.options.IgnoreCertificateErrors {
		if err := browser.IgnoreCertErrors(true); err != nil {
			log.Warnf("Could not ignore certificate errors: %v", err)
		}
	}

	return &rodBrowser{browser: browser, launcher: lnch, options: l.options}, nil
}

func (b *rodBrowser) NewPage(ctx context.Context) (smoke.Page, error) {
	var page *rod.Page
	var err error

	if b.options.Stealth {
		page, err = stealth.Page(b.browser)
	} else {
		page, err = b.browser.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	if b.options.ViewportWidth != 0 && b.options.ViewportHeight != 0 {
		viewport := &proto.EmulationSetDeviceMetricsOverride{
			Width:             b.options.ViewportWidth,
			Height:            b.options.ViewportHeight,
			DeviceScaleFactor: 1,
			Mobile:            false,
		}
		if err := page.Context(ctx).SetViewport(viewport); err != nil {
			return nil, fmt.Errorf("browser: set viewport: %w", err)
		}
	}

	return &rodPage{page: page, options: b.options}, nil
}

func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	return err
}

// Goto starts watching network requests before navigating so that
// WaitNetworkIdle sees every request the new document makes.
func (p *rodPage) Goto(ctx context.Context, url string) error {
	p.mu.Lock()
	if p.stopIdle != nil {
		p.stopIdle()
	}
	idleCtx, stop := context.WithCancel(context.Background())
	p.idleWait = p.page.Context(idleCtx).WaitRequestIdle(p.options.IdleTime, nil, nil, nil)
	p.stopIdle = stop
	p.mu.Unlock()

	if err := p.page.Context(ctx).Navigate(url); err != nil {
		return err
	}
	return p.page.Context(ctx).WaitLoad()
}

func (p *rodPage) WaitNetworkIdle(ctx context.Context) error {
	p.mu.Lock()
	wait, stop := p.idleWait, p.stopIdle
	p.idleWait = nil
	p.mu.Unlock()

	if wait == nil {
		return errors.New("no navigation to wait for")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		stop()
		return ctx.Err()
	}
}

func (p *rodPage) CountText(ctx context.Context, text string) (int, error) {
	res, err := p.page.Context(ctx).Eval(countTextJS, text)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (p *rodPage) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(fullPage, nil)
}
