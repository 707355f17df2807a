package layout

import (
	"fmt"
	"log/slog"

	"github.com/ByLCY/quire/report"
)

// Cursor 是当前页序号（从 0 开始）与纵向位置。
// 同一页内 Y 只减不增；换页时 Page 加一，Y 重置到横幅下方。
type Cursor struct {
	Page int     `json:"page"`
	Y    float64 `json:"y"`
}

// Build 依次排版各章节，生成页面、文本、图片与表格的布局结果。
func Build(sections []*report.Section, opts BuildOptions) (*Result, error) {
	if opts.Measurer == nil {
		return nil, fmt.Errorf("layout: 缺少度量后端 Measurer")
	}
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	width, height, err := cfg.PageDimensions()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &engine{
		cfg:    cfg,
		m:      opts.Measurer,
		pc:     newPageCollector(width, height, opts.Banner),
		log:    logger,
		quiet:  opts.QuietWarnings,
		width:  width,
		height: height,
	}

	cur := e.start()
	for _, section := range sections {
		if section == nil {
			continue
		}
		if cur, err = e.renderSection(cur, section); err != nil {
			return nil, err
		}
	}

	return &Result{
		Pages: e.pc.pages(),
		Meta:  DocumentMeta{Title: opts.Title, Creator: "quire"},
	}, nil
}

type engine struct {
	cfg    Config
	m      Measurer
	pc     *pageCollector
	log    *slog.Logger
	quiet  bool
	width  float64
	height float64
}

// start 返回首页的起始游标（横幅下方 BannerGap 处）。
func (e *engine) start() Cursor {
	return Cursor{Page: 0, Y: e.pc.contentTop() - float64(e.cfg.BannerGap)}
}

func (e *engine) renderSection(cur Cursor, section *report.Section) (Cursor, error) {
	e.text(cur, section.Title, FontBold, float64(e.cfg.SectionTitleSize))
	cur.Y -= float64(e.cfg.TitleGap)

	var err error
	for _, content := range section.Contents() {
		if cur.Y < float64(e.cfg.ContentBreakY) {
			cur = e.pageBreak(cur, e.cfg.BannerGap, "content")
		}
		e.text(cur, content.Header, FontBold, float64(e.cfg.ContentHeaderSize))
		cur.Y -= float64(e.cfg.HeaderGap)

		if cur, err = e.renderPayload(cur, content); err != nil {
			return cur, err
		}
		if cur, err = e.renderImage(cur, content.Image); err != nil {
			return cur, err
		}
	}
	cur.Y -= float64(e.cfg.SectionGap)
	return cur, nil
}

// pageBreak 结束当前页并开启新页，返回重置后的游标。
// gap 为新页起始位置相对横幅底边的距离。
func (e *engine) pageBreak(cur Cursor, gap Pt, reason string) Cursor {
	e.pc.newPage()
	next := Cursor{Page: cur.Page + 1, Y: e.pc.contentTop() - float64(gap)}
	e.log.Debug("换页", "reason", reason, "from_page", cur.Page+1, "at_y", cur.Y, "to_page", next.Page+1)
	return next
}

// breakIfBelow 在 bottom 低于载荷低水位线时换页。
func (e *engine) breakIfBelow(cur Cursor, bottom float64, reason string) Cursor {
	if bottom < float64(e.cfg.PayloadBreakY) {
		return e.pageBreak(cur, e.cfg.ContinuationGap, reason)
	}
	return cur
}

func (e *engine) text(cur Cursor, content string, font FontRole, size float64) {
	e.pc.curr().appendText(TextBox{
		Content:  content,
		X:        float64(e.cfg.MarginLeft),
		Y:        cur.Y,
		Font:     font,
		FontSize: size,
		Color:    Black,
	})
}

func (e *engine) warn(msg string, args ...any) {
	if e.quiet {
		return
	}
	e.log.Warn(msg, args...)
}
