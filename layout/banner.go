package layout

import (
	"fmt"

	"github.com/ByLCY/quire/report"
)

// Banner 是横幅图片及其按页宽缩放后的几何，计算一次后每页复用。
type Banner struct {
	Path   string
	Width  float64
	Height float64
}

// NewBanner 读取图片尺寸，按页宽与原始宽高比计算横幅高度。
func NewBanner(path string, pageWidth float64, m Measurer) (*Banner, error) {
	if path == "" {
		return nil, nil
	}
	if m == nil {
		return nil, fmt.Errorf("layout: 缺少度量后端 Measurer")
	}
	w, h, err := m.ImageSize(path)
	if err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: 横幅 %s 尺寸无效 (%dx%d)", report.ErrImageLoad, path, w, h)
	}
	return &Banner{
		Path:   path,
		Width:  pageWidth,
		Height: pageWidth * float64(h) / float64(w),
	}, nil
}

// box 返回横幅在页面上的位置：贴合页面顶边，左右满宽。
func (b *Banner) box(pageHeight float64) *ImageBox {
	if b == nil {
		return nil
	}
	return &ImageBox{
		Path:   b.Path,
		X:      0,
		Y:      pageHeight - b.Height,
		Width:  b.Width,
		Height: b.Height,
	}
}

func (b *Banner) height() float64 {
	if b == nil {
		return 0
	}
	return b.Height
}
