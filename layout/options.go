package layout

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 保存分页与排版参数，单位均为 pt。
// 阈值与间距针对 12pt 正文调校，可通过 YAML 覆盖。
type Config struct {
	PageSize string `yaml:"page_size"` // letter | a4

	MarginLeft Pt `yaml:"margin_left"`
	// ImageInset 为内容图片宽度相对页宽的缩减量（左右各一半）。
	ImageInset Pt `yaml:"image_inset"`

	SectionTitleSize  Pt `yaml:"section_title_size"`
	ContentHeaderSize Pt `yaml:"content_header_size"`
	BodySize          Pt `yaml:"body_size"`
	TableHeaderSize   Pt `yaml:"table_header_size"`
	TableBodySize     Pt `yaml:"table_body_size"`

	BannerGap       Pt `yaml:"banner_gap"`       // 横幅下方起始偏移（新页或首页）
	ContinuationGap Pt `yaml:"continuation_gap"` // 载荷内部换页后的起始偏移
	TitleGap        Pt `yaml:"title_gap"`
	HeaderGap       Pt `yaml:"header_gap"`
	TextAdvance     Pt `yaml:"text_advance"`
	LineHeight      Pt `yaml:"line_height"`
	BlockSpacing    Pt `yaml:"block_spacing"` // 表格/图片之后
	ImageGap        Pt `yaml:"image_gap"`     // 图片之前
	SectionGap      Pt `yaml:"section_gap"`

	// ContentBreakY：绘制内容标题前 y 低于该值则换页。
	ContentBreakY Pt `yaml:"content_break_y"`
	// PayloadBreakY：载荷内部（行、表格、图片）的低水位线。
	PayloadBreakY Pt `yaml:"payload_break_y"`
}

// DefaultConfig returns the letter-size layout.
func DefaultConfig() Config {
	return Config{
		PageSize:          "letter",
		MarginLeft:        50,
		ImageInset:        100,
		SectionTitleSize:  16,
		ContentHeaderSize: 14,
		BodySize:          12,
		TableHeaderSize:   12,
		TableBodySize:     10,
		BannerGap:         20,
		ContinuationGap:   40,
		TitleGap:          20,
		HeaderGap:         20,
		TextAdvance:       20,
		LineHeight:        12,
		BlockSpacing:      20,
		ImageGap:          20,
		SectionGap:        40,
		ContentBreakY:     150,
		PayloadBreakY:     50,
	}
}

// LoadConfig 读取 YAML 配置文件并覆盖默认值。
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置 %s 失败: %w", path, err)
	}
	return cfg, cfg.Validate()
}

var pagePresets = map[string][2]float64{
	"LETTER": {612, 792},
	"A4":     {595.28, 841.89},
	"A5":     {419.53, 595.28},
}

// PageDimensions 返回页面宽高（pt）。
func (c Config) PageDimensions() (float64, float64, error) {
	name := strings.ToUpper(strings.TrimSpace(c.PageSize))
	if name == "" {
		name = "LETTER"
	}
	size, ok := pagePresets[name]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", c.PageSize)
	}
	return size[0], size[1], nil
}

// Validate 检查参数取值。
func (c Config) Validate() error {
	w, h, err := c.PageDimensions()
	if err != nil {
		return err
	}
	if c.LineHeight <= 0 {
		return fmt.Errorf("line_height 必须大于 0")
	}
	for name, v := range map[string]Pt{
		"section_title_size":  c.SectionTitleSize,
		"content_header_size": c.ContentHeaderSize,
		"body_size":           c.BodySize,
		"table_header_size":   c.TableHeaderSize,
		"table_body_size":     c.TableBodySize,
	} {
		if v <= 0 {
			return fmt.Errorf("%s 必须大于 0", name)
		}
	}
	// 同一页内 y 必须严格递减
	for name, v := range map[string]Pt{
		"banner_gap":    c.BannerGap,
		"title_gap":     c.TitleGap,
		"header_gap":    c.HeaderGap,
		"text_advance":  c.TextAdvance,
		"block_spacing": c.BlockSpacing,
		"image_gap":     c.ImageGap,
		"section_gap":   c.SectionGap,
	} {
		if v <= 0 {
			return fmt.Errorf("%s 必须大于 0", name)
		}
	}
	if c.ContinuationGap < 0 {
		return fmt.Errorf("continuation_gap 不能为负数")
	}
	if c.MarginLeft < 0 || c.ImageInset < 0 {
		return fmt.Errorf("margin_left/image_inset 不能为负数")
	}
	if c.PayloadBreakY < 0 || c.ContentBreakY < c.PayloadBreakY {
		return fmt.Errorf("content_break_y (%g) 不能低于 payload_break_y (%g)", float64(c.ContentBreakY), float64(c.PayloadBreakY))
	}
	if float64(c.ContentBreakY) >= h {
		return fmt.Errorf("content_break_y (%g) 超出页面高度 %g", float64(c.ContentBreakY), h)
	}
	if float64(c.ImageInset) >= w || float64(c.MarginLeft) >= w {
		return fmt.Errorf("image_inset/margin_left 超出页面宽度 %g", w)
	}
	return nil
}

// BuildOptions 配置布局阶段所需的依赖。
type BuildOptions struct {
	Config   Config
	Measurer Measurer
	// Banner 由调用方预先计算，为空表示不绘制横幅。
	Banner *Banner
	Title  string
	Logger *slog.Logger
	// QuietWarnings 为真时不输出非致命警告。
	QuietWarnings bool
}

// Measurer 为布局提供文本宽度与图片尺寸的度量。
type Measurer interface {
	// TextWidth 返回文本在给定字体与字号（pt）下的宽度（pt）。
	TextWidth(text string, font FontRole, size float64) (float64, error)
	// ImageSize 读取图片头部，返回像素宽高；失败时返回包装了 report.ErrImageLoad 的错误。
	ImageSize(path string) (width, height int, err error)
}
