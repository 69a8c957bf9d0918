// Package render serialises a composed figure into a standalone HTML page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/okian/wuimap/internal/domain/figure"
)

// DefaultPlotlyJSURL is the Plotly bundle the page loads.
const DefaultPlotlyJSURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

//go:embed templates/*.tmpl
var templateFS embed.FS

var exportTemplate = template.Must(template.ParseFS(templateFS, "templates/export.html.tmpl"))

// Document is everything the exported page needs.
type Document struct {
	Title       string
	Footer      string
	PlotlyJSURL string
	Autoplay    bool
	Figure      figure.Figure
}

type pageData struct {
	Title       string
	Footer      string
	PlotlyJSURL string
	Autoplay    bool
	FigureJSON  template.JS
}

// FigureJSON encodes a figure with HTML-sensitive characters escaped so the
// result is safe inside a script element.
func FigureJSON(fig figure.Figure) ([]byte, error) {
	b, err := sonic.ConfigStd.Marshal(fig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFigure, err)
	}
	return b, nil
}

// HTML writes doc as a self-contained page. Autoplay is off unless the
// document asks for it, so the page opens on the figure's initial frame.
func HTML(w io.Writer, doc Document) error {
	raw, err := FigureJSON(doc.Figure)
	if err != nil {
		return err
	}
	url := doc.PlotlyJSURL
	if url == "" {
		url = DefaultPlotlyJSURL
	}
	data := pageData{
		Title:       doc.Title,
		Footer:      doc.Footer,
		PlotlyJSURL: url,
		Autoplay:    doc.Autoplay,
		FigureJSON:  template.JS(raw), //nolint:gosec // produced by FigureJSON with HTML escaping
	}
	if err := exportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderPage, err)
	}
	return nil
}

// WriteFile renders doc to path atomically and returns the number of bytes
// written.
func WriteFile(path string, doc Document) (int, error) {
	var buf bytes.Buffer
	if err := HTML(&buf, doc); err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".wui-export-*.html")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWriteFile, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("%w: %w", ErrWriteFile, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWriteFile, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // exported page is meant to be shared
		return 0, fmt.Errorf("%w: %w", ErrWriteFile, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWriteFile, err)
	}
	return buf.Len(), nil
}
