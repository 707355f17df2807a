package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/quire/fonts"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/report"
)

// Renderer draws layout results via github.com/tdewolff/canvas.
// 布局坐标为 pt、原点在左下角；canvas 以 mm 为单位，使用默认的 CartesianI 坐标系。
type Renderer struct {
	baseDir string

	imageBlobs map[string][]byte // by unique name

	fontMu       sync.Mutex
	fontFamilies map[layout.FontRole]*canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Backend  = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Images  map[string]Resource // built-in images accessible via builtin:<name>
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		imageBlobs:   map[string][]byte{},
		fontFamilies: map[layout.FontRole]*canvas.FontFamily{},
	}
	for name, res := range opts.Images {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.imageBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // 读取失败时在使用处报告缺失
			if len(data) > 0 {
				r.imageBlobs[name] = data
			}
		}
	}
	return r
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	// 同一次渲染内按路径复用已解码的图片（横幅每页都会用到）
	images := map[string]image.Image{}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	writer.SetInfo(result.Meta.Title, "", "", "", result.Meta.Creator)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(toMm(page.Width), toMm(page.Height))
		}
		c := canvas.New(toMm(page.Width), toMm(page.Height))
		ctx := canvas.NewContext(c)

		if err := r.drawPage(ctx, page, images); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// TextWidth 实现 layout.Measurer：字号与返回宽度均为 pt。
func (r *Renderer) TextWidth(text string, font layout.FontRole, size float64) (float64, error) {
	face, err := r.fontFace(font, size, layout.Black)
	if err != nil {
		return 0, err
	}
	// canvas 的 TextWidth 返回 mm
	return face.TextWidth(text) * layout.MmToPt, nil
}

// ImageSize 实现 layout.Measurer：仅读取图片头部获取像素尺寸，读取后立即关闭文件。
func (r *Renderer) ImageSize(path string) (int, int, error) {
	rc, err := r.openImage(path)
	if err != nil {
		return 0, 0, err
	}
	defer rc.Close()
	cfg, _, err := image.DecodeConfig(rc)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: 解码图片 %s 失败: %v", report.ErrImageLoad, path, err)
	}
	return cfg.Width, cfg.Height, nil
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page, images map[string]image.Image) error {
	// 先绘制横幅，再绘制主体内容
	if page.Banner != nil {
		if err := r.drawImage(ctx, *page.Banner, images); err != nil {
			return err
		}
	}
	for _, tb := range page.Texts {
		if err := r.drawTextBox(ctx, tb); err != nil {
			return err
		}
	}
	for _, img := range page.Images {
		if err := r.drawImage(ctx, img, images); err != nil {
			return err
		}
	}
	for _, table := range page.Tables {
		if err := r.drawTable(ctx, table); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox) error {
	face, err := r.fontFace(tb.Font, tb.FontSize, tb.Color)
	if err != nil {
		return err
	}
	align := canvas.Left
	if strings.EqualFold(tb.Align, "center") {
		align = canvas.Center
	}
	// TextBox.Y 为基线
	ctx.DrawText(toMm(tb.X), toMm(tb.Y), canvas.NewTextLine(face, tb.Content, align))
	return nil
}

func (r *Renderer) drawImage(ctx *canvas.Context, box layout.ImageBox, cache map[string]image.Image) error {
	img, ok := cache[box.Path]
	if !ok {
		var err error
		if img, err = r.loadImage(box.Path); err != nil {
			return err
		}
		cache[box.Path] = img
	}
	width := toMm(box.Width)
	if width <= 0 || img.Bounds().Dx() <= 0 {
		return fmt.Errorf("%w: 图片 %s 宽度无效", report.ErrImageLoad, box.Path)
	}
	dpmm := float64(img.Bounds().Dx()) / width
	ctx.DrawImage(toMm(box.X), toMm(box.Y), img, canvas.DPMM(dpmm))
	return nil
}

func (r *Renderer) drawTable(ctx *canvas.Context, table layout.TableBox) error {
	style := table.Style
	gridWidth := style.GridWidth
	if gridWidth <= 0 {
		gridWidth = 1
	}
	for _, row := range table.Rows {
		fill := colorFromLayout(style.BodyFill)
		if row.IsHeader {
			fill = colorFromLayout(style.HeaderFill)
		}
		bottom := row.Y - row.Height
		for _, cell := range row.Cells {
			ctx.SetFillColor(fill)
			ctx.SetStrokeColor(colorFromLayout(style.GridColor))
			ctx.SetStrokeWidth(toMm(gridWidth))
			ctx.DrawPath(toMm(cell.X), toMm(bottom), canvas.Rectangle(toMm(cell.Width), toMm(row.Height)))
			if err := r.drawTextBox(ctx, cell.Text); err != nil {
				return err
			}
		}
	}
	// 重置画笔，避免影响后续元素
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(canvas.Black)
	return nil
}

// resolvePath 将相对路径解析到 baseDir 下。
func (r *Renderer) resolvePath(path string) string {
	if r.baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.baseDir, path)
}

// openImage 打开图片数据源；调用方负责关闭。
func (r *Renderer) openImage(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: 图片路径为空", report.ErrImageLoad)
	}
	if strings.HasPrefix(path, "built-in:") || strings.HasPrefix(path, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(path, "built-in:"), "builtin:")
		blob, ok := r.imageBlobs[name]
		if !ok {
			return nil, fmt.Errorf("%w: 找不到内置图片资源 builtin:%s", report.ErrImageLoad, name)
		}
		return io.NopCloser(bytes.NewReader(blob)), nil
	}
	file, err := os.Open(r.resolvePath(path))
	if err != nil {
		return nil, fmt.Errorf("%w: 读取图片 %s 失败: %v", report.ErrImageLoad, path, err)
	}
	return file, nil
}

func (r *Renderer) loadImage(path string) (image.Image, error) {
	rc, err := r.openImage(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: 解码图片 %s 失败: %v", report.ErrImageLoad, path, err)
	}
	return img, nil
}

func (r *Renderer) fontFace(role layout.FontRole, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(role)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, colorFromLayout(col), fontStyle(role), canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(role layout.FontRole) (*canvas.FontFamily, error) {
	if role == "" {
		role = layout.FontRegular
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[role]; ok {
		return family, nil
	}
	data, err := fonts.Load(string(role))
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("quire-" + string(role))
	if err := family.LoadFont(data, 0, fontStyle(role)); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", role, err)
	}
	r.fontFamilies[role] = family
	return family, nil
}

func fontStyle(role layout.FontRole) canvas.FontStyle {
	if role == layout.FontBold {
		return canvas.FontBold
	}
	return canvas.FontRegular
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
