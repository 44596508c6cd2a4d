package driver

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/root4loot/docsmoke/pkg/smoke"
)

type chromedpLauncher struct {
	options Options
}

type chromedpBrowser struct {
	ctx         context.Context // tab context, parent of every action
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	options     Options
}

// chromedpPage learns about network idle from page lifecycle events. A
// networkIdle event only counts once the document started by the latest
// Goto has emitted its init event. Events of child frames are ignored.
type chromedpPage struct {
	ctx       context.Context
	mu        sync.Mutex
	mainFrame cdp.FrameID
	armed     bool
	fired     bool
	idle      chan struct{}
}

func (l *chromedpLauncher) Launch(ctx context.Context) (smoke.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:], l.customFlags()...)

	if l.options.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.options.UserAgent))
	}

	if l.options.ViewportWidth != 0 && l.options.ViewportHeight != 0 {
		opts = append(opts, chromedp.WindowSize(l.options.ViewportWidth, l.options.ViewportHeight))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// The first Run starts the browser and ties it to the context it is
	// given, so it must not carry a deadline.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	return &chromedpBrowser{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc, options: l.options}, nil
}

// customFlags returns chromedp.ExecAllocatorOptions based on the options.
func (l *chromedpLauncher) customFlags() []chromedp.ExecAllocatorOption {
	var customFlags []chromedp.ExecAllocatorOption

	customFlags = append(customFlags, chromedp.Flag("headless", l.options.Headless))

	if l.options.IgnoreCertificateErrors {
		customFlags = append(customFlags, chromedp.Flag("ignore-certificate-errors", true))
	}

	if l.options.DisableHTTP2 {
		customFlags = append(customFlags, chromedp.Flag("disable-http2", true))
	}

	return customFlags
}

func (b *chromedpBrowser) NewPage(ctx context.Context) (smoke.Page, error) {
	p := &chromedpPage{ctx: b.ctx, idle: make(chan struct{})}

	chromedp.ListenTarget(b.ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *page.EventLifecycleEvent:
			p.lifecycle(e.FrameID, e.Name)
		case *page.EventFrameNavigated:
			if e.Frame != nil && e.Frame.ParentID == "" {
				p.setMainFrame(e.Frame.ID)
			}
		}
	})

	tasks := chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			p.setMainFrame(tree.Frame.ID)
			return nil
		}),
		page.SetLifecycleEventsEnabled(true),
	}
	if b.options.ViewportWidth != 0 && b.options.ViewportHeight != 0 {
		tasks = append(tasks, chromedp.EmulateViewport(int64(b.options.ViewportWidth), int64(b.options.ViewportHeight)))
	}

	runCtx, cancel := withDeadlineOf(b.ctx, ctx)
	defer cancel()
	if err := chromedp.Run(runCtx, tasks); err != nil {
		return nil, fmt.Errorf("browser: set up tab: %w", err)
	}
	return p, nil
}

func (b *chromedpBrowser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancelTab()
	b.cancelAlloc()
	return err
}

func (p *chromedpPage) setMainFrame(id cdp.FrameID) {
	p.mu.Lock()
	p.mainFrame = id
	p.mu.Unlock()
}

func (p *chromedpPage) lifecycle(frame cdp.FrameID, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if frame != p.mainFrame {
		return
	}

	switch name {
	case "init":
		p.armed = true
	case "networkIdle":
		if p.armed && !p.fired {
			p.fired = true
			close(p.idle)
		}
	}
}

func (p *chromedpPage) Goto(ctx context.Context, url string) error {
	p.mu.Lock()
	p.armed, p.fired = false, false
	p.idle = make(chan struct{})
	p.mu.Unlock()

	runCtx, cancel := withDeadlineOf(p.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Navigate(url))
}

func (p *chromedpPage) WaitNetworkIdle(ctx context.Context) error {
	p.mu.Lock()
	idle := p.idle
	p.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *chromedpPage) CountText(ctx context.Context, text string) (int, error) {
	expr, err := countTextExpression(text)
	if err != nil {
		return 0, err
	}

	var count int
	runCtx, cancel := withDeadlineOf(p.ctx, ctx)
	defer cancel()
	if err := chromedp.Run(runCtx, chromedp.Evaluate(expr, &count)); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *chromedpPage) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	var buf []byte
	var action chromedp.Action = chromedp.CaptureScreenshot(&buf)
	if fullPage {
		// quality 100 keeps PNG encoding
		action = chromedp.FullScreenshot(&buf, 100)
	}

	runCtx, cancel := withDeadlineOf(p.ctx, ctx)
	defer cancel()
	if err := chromedp.Run(runCtx, action); err != nil {
		return nil, err
	}
	return buf, nil
}

// withDeadlineOf derives a context from the chromedp context parent that is
// also cancelled with ctx and shares its deadline.
func withDeadlineOf(parent, ctx context.Context) (context.Context, context.CancelFunc) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(parent, deadline)
	} else {
		runCtx, cancel = context.WithCancel(parent)
	}

	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
