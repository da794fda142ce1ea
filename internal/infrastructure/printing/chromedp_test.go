package printing

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPrintParams(t *testing.T) {
	p := printParams(Document{HTML: "<p>x</p>", Paper: A4, MarginMM: 12.7})

	assert.InDelta(t, 210/mmPerInch, p.PaperWidth, 0.001)
	assert.InDelta(t, 297/mmPerInch, p.PaperHeight, 0.001)
	assert.InDelta(t, 0.5, p.MarginTop, 0.001)
	assert.InDelta(t, 0.5, p.MarginBottom, 0.001)
	assert.True(t, p.PrintBackground)
	assert.False(t, p.DisplayHeaderFooter)
}

func TestPrintParams_FooterKeepsBottomMargin(t *testing.T) {
	p := printParams(Document{HTML: "<p>x</p>", Paper: Roll80, Landscape: true, Footer: "<div>1</div>"})

	assert.True(t, p.Landscape)
	assert.True(t, p.DisplayHeaderFooter)
	assert.Equal(t, "<div>1</div>", p.FooterTemplate)
	assert.Zero(t, p.MarginTop)
	assert.InDelta(t, footerMarginMM/mmPerInch, p.MarginBottom, 0.001)
	assert.InDelta(t, 80/mmPerInch, p.PaperWidth, 0.001)
}

func TestHTMLDocument(t *testing.T) {
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, htmlDocument(Document{HTML: full}))

	wrapped := htmlDocument(Document{HTML: "<p>x</p>", Title: "Receipt <A&B>"})
	assert.Contains(t, wrapped, "<title>Receipt &lt;A&amp;B&gt;</title>")
	assert.Contains(t, wrapped, "<body><p>x</p></body>")
}

func TestChrome_RejectsBeforeLaunching(t *testing.T) {
	c := NewChrome(ChromeConfig{}, zap.NewNop())
	defer c.Close()
	assert.Equal(t, defaultRenderTimeout, c.cfg.Timeout)

	_, err := c.Render(context.Background(), Document{HTML: "  \n"})
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = c.Render(context.Background(), Document{HTML: "<p>x</p>", Paper: Paper{Width: 80}})
	assert.ErrorIs(t, err, ErrBadPaper)
}

func TestChrome_ExecOptions(t *testing.T) {
	c := NewChrome(ChromeConfig{Timeout: time.Second, ExecPath: "/usr/bin/chromium", NoSandbox: true}, zap.NewNop())
	defer c.Close()

	require.Equal(t, time.Second, c.cfg.Timeout)
	// three flags of our own plus exec path and no-sandbox
	assert.Len(t, c.execOptions(), len(chromedp.DefaultExecAllocatorOptions)+5)
}
