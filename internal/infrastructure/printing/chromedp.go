package printing

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultRenderTimeout = 30 * time.Second
	footerMarginMM       = 10
	mmPerInch            = 25.4
)

type ChromeConfig struct {
	Timeout time.Duration
	// ExecPath is the browser binary. Empty searches PATH.
	ExecPath string
	// RemoteURL attaches to a running browser over its DevTools websocket.
	RemoteURL string
	// NoSandbox must be set when the server runs as root in a container.
	NoSandbox bool
}

// Chrome prints through headless Chrome. The browser process starts on the
// first Render and every render gets its own tab.
type Chrome struct {
	cfg    ChromeConfig
	log    *zap.Logger
	alloc  context.Context
	cancel context.CancelFunc
}

func NewChrome(cfg ChromeConfig, log *zap.Logger) *Chrome {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRenderTimeout
	}
	c := &Chrome{cfg: cfg, log: log}
	if cfg.RemoteURL != "" {
		c.alloc, c.cancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
	} else {
		c.alloc, c.cancel = chromedp.NewExecAllocator(context.Background(), c.execOptions()...)
	}
	return c
}

func (c *Chrome) execOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if c.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.cfg.ExecPath))
	}
	if c.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

func (c *Chrome) Render(ctx context.Context, doc Document) ([]byte, error) {
	if strings.TrimSpace(doc.HTML) == "" {
		return nil, ErrEmptyDocument
	}
	if doc.Paper == (Paper{}) {
		doc.Paper = A4
	}
	if doc.Paper.Width <= 0 || doc.Paper.Height <= 0 {
		return nil, ErrBadPaper
	}
	timeout := cmp.Or(doc.Timeout, c.cfg.Timeout)

	tab, closeTab := chromedp.NewContext(c.alloc, chromedp.WithLogf(c.log.Sugar().Debugf))
	defer closeTab()
	tab, cancel := context.WithTimeout(tab, timeout)
	defer cancel()
	// the tab hangs off the allocator, so carry the caller's cancellation over
	defer context.AfterFunc(ctx, cancel)()

	started := time.Now()
	var pdf []byte
	err := chromedp.Run(tab,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, htmlDocument(doc)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) (err error) {
			pdf, _, err = printParams(doc).Do(ctx)
			return err
		}),
	)
	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(tab.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	case err != nil:
		return nil, fmt.Errorf("printing: chrome: %w", err)
	case len(pdf) == 0:
		return nil, errors.New("printing: chrome returned an empty PDF")
	}

	c.log.Debug("PDF rendered", zap.String("title", doc.Title), zap.Int("bytes", len(pdf)),
		zap.Duration("took", time.Since(started)))
	return pdf, nil
}

// Close stops the browser, or detaches from a remote one.
func (c *Chrome) Close() error {
	c.cancel()
	return nil
}

// printParams converts the document's millimetres into the inches Chrome uses.
// A footer needs some bottom margin to be visible at all.
func printParams(doc Document) *page.PrintToPDFParams {
	in := func(mm float64) float64 { return mm / mmPerInch }
	bottom := doc.MarginMM
	if doc.Footer != "" {
		bottom = max(bottom, footerMarginMM)
	}

	p := page.PrintToPDF().
		WithPrintBackground(true).
		WithLandscape(doc.Landscape).
		WithPaperWidth(in(doc.Paper.Width)).
		WithPaperHeight(in(doc.Paper.Height)).
		WithMarginTop(in(doc.MarginMM)).
		WithMarginRight(in(doc.MarginMM)).
		WithMarginBottom(in(bottom)).
		WithMarginLeft(in(doc.MarginMM))
	if doc.Footer != "" {
		p = p.WithDisplayHeaderFooter(true).
			WithHeaderTemplate("<span></span>").
			WithFooterTemplate(doc.Footer)
	}
	return p
}

// htmlDocument passes complete documents through and wraps fragments.
func htmlDocument(doc Document) string {
	head := strings.ToLower(doc.HTML[:min(len(doc.HTML), 512)])
	if strings.Contains(head, "<!doctype") || strings.Contains(head, "<html") {
		return doc.HTML
	}
	return `<!DOCTYPE html><html><head><meta charset="UTF-8"><title>` + html.EscapeString(doc.Title) +
		`</title></head><body>` + doc.HTML + `</body></html>`
}

var _ Renderer = (*Chrome)(nil)
