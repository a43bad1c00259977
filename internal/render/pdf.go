package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hylla/nametag/internal/domain"
)

const cmPerInch = 2.54

// ErrBrowserNotFound reports that no Chromium binary could be located.
var ErrBrowserNotFound = errors.New("chromium browser not found")

// PDFPrinter prints rendered HTML through a headless Chromium.
type PDFPrinter struct {
	// Bin overrides browser discovery when set.
	Bin string
}

// BrowserPath resolves the browser binary the printer will launch.
func (p PDFPrinter) BrowserPath() (string, error) {
	if bin := strings.TrimSpace(p.Bin); bin != "" {
		return bin, nil
	}
	if bin, ok := launcher.LookPath(); ok {
		return bin, nil
	}
	return "", ErrBrowserNotFound
}

// Print renders html to PDF on the given paper and writes it to w.
func (p PDFPrinter) Print(ctx context.Context, html string, paper domain.Paper, w io.Writer) error {
	bin, err := p.BrowserPath()
	if err != nil {
		return err
	}
	l := launcher.New().Context(ctx).Bin(bin).Headless(true)
	defer l.Cleanup()
	defer l.Kill()

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}

	width := paper.Width / cmPerInch
	height := paper.Height / cmPerInch
	zero := 0.0
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
		PaperWidth:        &width,
		PaperHeight:       &height,
		MarginTop:         &zero,
		MarginBottom:      &zero,
		MarginLeft:        &zero,
		MarginRight:       &zero,
	})
	if err != nil {
		return fmt.Errorf("print pdf: %w", err)
	}
	defer stream.Close()
	if _, err := io.Copy(w, stream); err != nil {
		return fmt.Errorf("read pdf stream: %w", err)
	}
	return nil
}

// PrintFile prints html to a PDF file at path.
func (p PDFPrinter) PrintFile(ctx context.Context, html string, paper domain.Paper, path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return p.Print(ctx, html, paper, f)
}
