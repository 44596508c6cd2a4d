package smoke

import "context"

// Launcher starts a browser session. Each Run launches exactly one.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context) (Browser, error)

// Launch calls f(ctx).
func (f LauncherFunc) Launch(ctx context.Context) (Browser, error) {
	return f(ctx)
}

// Browser is a running browser process.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single browser tab. Deadlines on ctx bound every call.
type Page interface {
	// Goto navigates to url and returns once the load event fired.
	Goto(ctx context.Context, url string) error
	// WaitNetworkIdle blocks until the page has had no network activity
	// for a short quiet period.
	WaitNetworkIdle(ctx context.Context) error
	// CountText returns the number of elements whose text contains text.
	CountText(ctx context.Context, text string) (int, error)
	// Screenshot returns a PNG of the viewport, or of the whole page if fullPage.
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
}
