package canvasrenderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/report"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: 80, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestImageSizeBuiltinAndFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "chart.png"), pngBytes(t, 40, 30), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := NewRendererWithOptions(Options{
		BaseDir: dir,
		Images:  map[string]Resource{"banner": {Bytes: pngBytes(t, 120, 20)}},
	})

	w, h, err := r.ImageSize("builtin:banner")
	if err != nil || w != 120 || h != 20 {
		t.Fatalf("builtin banner size: %dx%d err=%v", w, h, err)
	}
	w, h, err = r.ImageSize("chart.png")
	if err != nil || w != 40 || h != 30 {
		t.Fatalf("relative image size: %dx%d err=%v", w, h, err)
	}
}

func TestImageSizeFailuresWrapImageLoad(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := NewRenderer(dir)
	for _, path := range []string{"missing.png", corrupt, "builtin:nope", ""} {
		if _, _, err := r.ImageSize(path); !errors.Is(err, report.ErrImageLoad) {
			t.Fatalf("%q: expected ErrImageLoad, got %v", path, err)
		}
	}
}

func TestTextWidthScalesWithSizeAndWeight(t *testing.T) {
	r := NewRenderer("")
	small, err := r.TextWidth("Quarterly review", layout.FontRegular, 10)
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	large, err := r.TextWidth("Quarterly review", layout.FontRegular, 20)
	if err != nil {
		t.Fatalf("TextWidth: %v", err)
	}
	if small <= 0 || large <= small {
		t.Fatalf("width should grow with size: 10pt=%g 20pt=%g", small, large)
	}
	// 字宽与字号成正比，允许极小的数值误差
	if diff := math.Abs(large - 2*small); diff > 1e-3*large {
		t.Fatalf("width should be proportional to size: 10pt=%g 20pt=%g", small, large)
	}
	if empty, _ := r.TextWidth("", layout.FontBold, 12); empty != 0 {
		t.Fatalf("empty string should have zero width, got %g", empty)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewRendererWithOptions(Options{
		Images: map[string]Resource{"banner": {Bytes: pngBytes(t, 120, 20)}},
	})
	banner := &layout.ImageBox{Path: "builtin:banner", X: 0, Y: 690, Width: 612, Height: 102}
	page := layout.Page{
		Width:  612,
		Height: 792,
		Banner: banner,
		Texts:  []layout.TextBox{{Content: "Summary", X: 50, Y: 670, Font: layout.FontBold, FontSize: 16}},
		Tables: []layout.TableBox{{
			X: 50, Y: 650, Width: 100, Height: 47.4,
			ColumnWidths: []float64{100},
			Style:        layout.DefaultTableStyle,
			Rows: []layout.TableRow{
				{Y: 650, Height: 29.4, IsHeader: true, Cells: []layout.TableCell{{X: 50, Width: 100, Text: layout.TextBox{Content: "Metric", X: 100, Y: 635, Font: layout.FontBold, FontSize: 12, Color: layout.WhiteSmoke, Align: "center"}}}},
				{Y: 620.6, Height: 18, Cells: []layout.TableCell{{X: 50, Width: 100, Text: layout.TextBox{Content: "mean", X: 100, Y: 608, FontSize: 10, Align: "center"}}}},
			},
		}},
	}
	second := page
	second.Texts = nil
	second.Tables = nil

	data, err := r.Render(&layout.Result{Pages: []layout.Page{page, second}, Meta: layout.DocumentMeta{Title: "T"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer("")
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("expected error for result without pages")
	}
}

func TestRenderMissingImageFails(t *testing.T) {
	r := NewRenderer(t.TempDir())
	page := layout.Page{Width: 612, Height: 792, Images: []layout.ImageBox{{Path: "gone.png", X: 50, Y: 100, Width: 512, Height: 100}}}
	if _, err := r.Render(&layout.Result{Pages: []layout.Page{page}}); !errors.Is(err, report.ErrImageLoad) {
		t.Fatalf("expected ErrImageLoad, got %v", err)
	}
}
