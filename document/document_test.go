package document

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/quire/layout"
	canvasrenderer "github.com/ByLCY/quire/renderer/canvas"
	"github.com/ByLCY/quire/report"
)

// recordingBackend 记录渲染调用，图片尺寸固定为 4:1。
type recordingBackend struct {
	renders int
	last    *layout.Result
}

func (b *recordingBackend) TextWidth(text string, font layout.FontRole, size float64) (float64, error) {
	return float64(len(text)) * size * 0.5, nil
}

func (b *recordingBackend) ImageSize(path string) (int, int, error) {
	if strings.HasPrefix(path, "bad") {
		return 0, 0, fmt.Errorf("%w: %s", report.ErrImageLoad, path)
	}
	return 400, 100, nil
}

func (b *recordingBackend) Render(res *layout.Result) ([]byte, error) {
	b.renders++
	b.last = res
	return []byte("%PDF-fake"), nil
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 30, G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func longReport(n int) []*report.Section {
	var out []*report.Section
	for i := 0; i < n; i++ {
		s := report.NewSection(fmt.Sprintf("Section %d", i+1))
		var b strings.Builder
		for j := 0; j < 25; j++ {
			fmt.Fprintf(&b, "row %d of section %d\n", j, i)
		}
		s.Add("notes", report.Summary(b.String()))
		tbl := report.NewTable("Metric", "Value")
		tbl.AddRow("mean", 4.5).AddRow("max", 9)
		s.Add("stats", report.TableOf(tbl))
		out = append(out, s)
	}
	return out
}

func TestInvalidBannerFailsBeforeRendering(t *testing.T) {
	backend := &recordingBackend{}
	out := filepath.Join(t.TempDir(), "out.pdf")
	d := New(Options{Backend: backend})

	err := d.CreateDocument(out, "T", "bad-banner.png", longReport(1))
	if !errors.Is(err, report.ErrImageLoad) {
		t.Fatalf("expected ErrImageLoad, got %v", err)
	}
	if backend.renders != 0 {
		t.Fatalf("nothing should be rendered after a banner failure")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("partial output should be removed, stat err=%v", statErr)
	}
}

func TestUnwritableOutputFails(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing-dir", "out.pdf")
	err := New(Options{Backend: &recordingBackend{}}).CreateDocument(out, "T", "", longReport(1))
	if !errors.Is(err, report.ErrOutputWrite) {
		t.Fatalf("expected ErrOutputWrite, got %v", err)
	}
}

func TestUnsupportedPayloadAbortsRender(t *testing.T) {
	backend := &recordingBackend{}
	out := filepath.Join(t.TempDir(), "out.pdf")
	s := report.NewSection("S").Add("broken", report.Payload{})
	err := New(Options{Backend: backend}).CreateDocument(out, "T", "", []*report.Section{s})
	if !errors.Is(err, report.ErrUnsupportedPayloadKind) {
		t.Fatalf("expected ErrUnsupportedPayloadKind, got %v", err)
	}
	if backend.renders != 0 {
		t.Fatalf("render must not run after a layout failure")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("partial output should be removed")
	}
}

func TestDriverPassesTitleAndBanner(t *testing.T) {
	backend := &recordingBackend{}
	dir := t.TempDir()
	out := filepath.Join(dir, "out.pdf")
	debug := filepath.Join(dir, "debug", "layout.json")
	d := New(Options{Backend: backend, QuietWarnings: true, DebugPath: debug})

	if err := d.CreateDocument(out, "Quarterly", "banner.png", longReport(3)); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if backend.renders != 1 {
		t.Fatalf("expected one render, got %d", backend.renders)
	}
	res := backend.last
	if res.Meta.Title != "Quarterly" {
		t.Fatalf("title not propagated: %+v", res.Meta)
	}
	for i, p := range res.Pages {
		// 612 宽、4:1 → 153 高
		if p.Banner == nil || p.Banner.Height != 153 || p.Banner.Y != 792-153 {
			t.Fatalf("page %d banner geometry mismatch: %+v", i+1, p.Banner)
		}
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "%PDF-fake" {
		t.Fatalf("output not written: %q err=%v", data, err)
	}
	if _, err := os.Stat(debug); err != nil {
		t.Fatalf("debug JSON not written: %v", err)
	}
}

func TestCreateDocumentWithCanvasBackend(t *testing.T) {
	dir := t.TempDir()
	banner := filepath.Join(dir, "banner.png")
	writePNG(t, banner, 240, 40)

	out := filepath.Join(dir, "report.pdf")
	d := New(Options{Backend: canvasrenderer.NewRenderer(dir), QuietWarnings: true})
	if err := d.CreateDocument(out, "Quarterly", "banner.png", longReport(4)); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	info, err := Inspect(out)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Pages < 2 {
		t.Fatalf("expected a multi-page document, got %d pages", info.Pages)
	}
}

func TestSingleSectionWithoutBannerIsOnePage(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "summary.pdf")
	tbl := report.NewTable("Metric", "Value").AddRow("a", 1).AddRow("b", 2).AddRow("c", 3)
	s := report.NewSection("Summary").Add("Stats", report.TableOf(tbl))

	if err := New(Options{Backend: canvasrenderer.NewRenderer(dir)}).CreateDocument(out, "Summary", "", []*report.Section{s}); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	info, err := Inspect(out)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Pages != 1 {
		t.Fatalf("expected exactly 1 page, got %d", info.Pages)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.PageSize = "tabloid"
	out := filepath.Join(t.TempDir(), "out.pdf")
	if err := New(Options{Config: cfg, Backend: &recordingBackend{}}).CreateDocument(out, "T", "", nil); err == nil {
		t.Fatalf("expected config error")
	}
}

func TestFailedRenderKeepsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(out, []byte("previous report"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	err := New(Options{Backend: &recordingBackend{}}).CreateDocument(out, "T", "bad-banner.png", longReport(1))
	if !errors.Is(err, report.ErrImageLoad) {
		t.Fatalf("expected ErrImageLoad, got %v", err)
	}
	data, readErr := os.ReadFile(out)
	if readErr != nil || string(data) != "previous report" {
		t.Fatalf("existing output must be left untouched: %q err=%v", data, readErr)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestSuccessfulRenderReplacesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(out, []byte("previous report"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := New(Options{Backend: &recordingBackend{}}).CreateDocument(out, "T", "", longReport(1)); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "%PDF-fake" {
		t.Fatalf("output not replaced: %q err=%v", data, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestBuiltinBannerFromOptions(t *testing.T) {
	dir := t.TempDir()
	logo := filepath.Join(dir, "logo.png")
	writePNG(t, logo, 200, 50)

	out := filepath.Join(dir, "report.pdf")
	d := New(Options{
		QuietWarnings: true,
		Images:        map[string]canvasrenderer.Resource{"logo": {Path: logo}},
	})
	if err := d.CreateDocument(out, "T", "builtin:logo", longReport(1)); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	info, err := Inspect(out)
	if err != nil || info.Pages < 1 {
		t.Fatalf("Inspect: %+v err=%v", info, err)
	}

	err = New(Options{}).CreateDocument(filepath.Join(dir, "other.pdf"), "T", "builtin:logo", longReport(1))
	if !errors.Is(err, report.ErrImageLoad) {
		t.Fatalf("unregistered builtin image should fail with ErrImageLoad, got %v", err)
	}
}
