package pdf

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// A4 print geometry in inches. Margins approximate 20px at 72dpi.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	marginInches   = 0.28
)

func f64(v float64) *float64 { return &v }

// renderHTMLToPDF drives a Chrome DevTools endpoint to print the HTML
// document. The spawned browser is always closed before returning.
func renderHTMLToPDF(ctx context.Context, controlURL, html string) ([]byte, error) {
	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer page.Close()

	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("setting page content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("waiting for page load: %w", err)
	}

	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      f64(a4WidthInches),
		PaperHeight:     f64(a4HeightInches),
		MarginTop:       f64(marginInches),
		MarginBottom:    f64(marginInches),
		MarginLeft:      f64(marginInches),
		MarginRight:     f64(marginInches),
	})
	if err != nil {
		return nil, fmt.Errorf("printing to pdf: %w", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("reading pdf stream: %w", err)
	}
	return data, nil
}

// ChromiumRenderer renders the HTML template through a Chromium binary
// tuned for restricted server environments (no sandbox, no GPU).
type ChromiumRenderer struct {
	binPath string
}

// NewChromiumRenderer points the renderer at the configured Chromium
// binary. An empty path produces a renderer that is never available.
func NewChromiumRenderer(binPath string) *ChromiumRenderer {
	return &ChromiumRenderer{binPath: binPath}
}

func (r *ChromiumRenderer) Name() string { return "chromium" }

func (r *ChromiumRenderer) Available(_ context.Context) error {
	if r.binPath == "" {
		return fmt.Errorf("chromium path not configured")
	}
	if _, err := os.Stat(r.binPath); err != nil {
		return fmt.Errorf("chromium binary: %w", err)
	}
	return nil
}

func (r *ChromiumRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	html, err := RenderHTML(doc)
	if err != nil {
		return nil, err
	}

	l := launcher.New().
		Bin(r.binPath).
		Headless(true).
		NoSandbox(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage")
	defer l.Cleanup()

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	return renderHTMLToPDF(ctx, controlURL, html)
}

// LocalBrowserRenderer uses a locally-installed Chrome/Chromium found on
// the host. Intended for developer machines where the restricted-environment
// binary is absent; assumes a trusted execution context.
type LocalBrowserRenderer struct {
	enabled bool
}

func NewLocalBrowserRenderer(enabled bool) *LocalBrowserRenderer {
	return &LocalBrowserRenderer{enabled: enabled}
}

func (r *LocalBrowserRenderer) Name() string { return "local-browser" }

func (r *LocalBrowserRenderer) Available(_ context.Context) error {
	if !r.enabled {
		return fmt.Errorf("local browser fallback disabled")
	}
	if _, found := launcher.LookPath(); !found {
		return fmt.Errorf("no local chrome installation found")
	}
	return nil
}

func (r *LocalBrowserRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	html, err := RenderHTML(doc)
	if err != nil {
		return nil, err
	}

	bin, found := launcher.LookPath()
	if !found {
		return nil, fmt.Errorf("no local chrome installation found")
	}

	l := launcher.New().
		Bin(bin).
		Headless(true).
		NoSandbox(true)
	defer l.Cleanup()

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("launching local browser: %w", err)
	}

	return renderHTMLToPDF(ctx, controlURL, html)
}
