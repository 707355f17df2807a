package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/quire/report"
)

const (
	cellPaddingX      = 6.0
	cellPaddingTop    = 3.0
	cellPaddingBottom = 3.0
	headerPaddingBot  = 12.0
	leadingFactor     = 1.2
)

// renderPayload 按载荷类型绘制内容主体，返回新的游标。
func (e *engine) renderPayload(cur Cursor, content report.Content) (Cursor, error) {
	if content.Summary {
		lines, err := content.Payload.Lines()
		if err != nil {
			return cur, fmt.Errorf("内容 %q: %w", content.Header, err)
		}
		return e.renderLines(cur, lines), nil
	}

	switch content.Payload.Kind {
	case report.KindSummary, report.KindSeries:
		lines, err := content.Payload.Lines()
		if err != nil {
			return cur, fmt.Errorf("内容 %q: %w", content.Header, err)
		}
		return e.renderLines(cur, lines), nil
	case report.KindTable:
		table, err := content.Payload.Table()
		if err != nil {
			return cur, fmt.Errorf("内容 %q: %w", content.Header, err)
		}
		return e.renderTable(cur, table)
	case report.KindText:
		// 纯文本只占一行，换行符按空格处理
		line := strings.ReplaceAll(content.Payload.String(), "\n", " ")
		e.text(cur, line, FontRegular, float64(e.cfg.BodySize))
		cur.Y -= float64(e.cfg.TextAdvance)
		return cur, nil
	default:
		return cur, fmt.Errorf("%w: 内容 %q 的载荷类型 %s", report.ErrUnsupportedPayloadKind, content.Header, content.Payload.Kind)
	}
}

// renderLines 逐行绘制文本，每行之前检查低水位线。
func (e *engine) renderLines(cur Cursor, lines []string) Cursor {
	for _, line := range lines {
		if cur.Y < float64(e.cfg.PayloadBreakY) {
			cur = e.pageBreak(cur, e.cfg.ContinuationGap, "lines")
		}
		e.text(cur, line, FontRegular, float64(e.cfg.BodySize))
		cur.Y -= float64(e.cfg.LineHeight)
	}
	return cur
}

func (e *engine) renderTable(cur Cursor, data report.Tabular) (Cursor, error) {
	grid := tableGrid(data)
	widths, heights, err := e.measureTable(grid)
	if err != nil {
		return cur, err
	}
	total := 0.0
	for _, h := range heights {
		total += h
	}

	cur = e.breakIfBelow(cur, cur.Y-total, "table")
	if cur.Y-total < float64(e.cfg.PayloadBreakY) {
		e.warn("表格高度超过单页可用空间", "height", total, "page", cur.Page+1)
	}

	box := e.placeTable(grid, widths, heights, float64(e.cfg.MarginLeft), cur.Y)
	e.pc.curr().appendTable(box)
	cur.Y -= total + float64(e.cfg.BlockSpacing)
	return cur, nil
}

// tableGrid 将数据源转为二维网格，首行为列名；短行以空串补齐。
func tableGrid(data report.Tabular) [][]string {
	cols := data.Columns()
	rows := data.Rows()
	n := len(cols)
	for _, row := range rows {
		if len(row) > n {
			n = len(row)
		}
	}
	grid := make([][]string, 0, len(rows)+1)
	for _, src := range append([][]string{cols}, rows...) {
		row := make([]string, n)
		copy(row, src)
		grid = append(grid, row)
	}
	return grid
}

// measureTable 计算列宽与行高：列宽取最宽单元格加左右内边距，
// 超过可用宽度时按比例缩小。
func (e *engine) measureTable(grid [][]string) ([]float64, []float64, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, nil, fmt.Errorf("表格至少需要一列")
	}
	headerSize := float64(e.cfg.TableHeaderSize)
	bodySize := float64(e.cfg.TableBodySize)

	widths := make([]float64, len(grid[0]))
	heights := make([]float64, len(grid))
	for r, row := range grid {
		font, size := FontRegular, bodySize
		heights[r] = size*leadingFactor + cellPaddingTop + cellPaddingBottom
		if r == 0 {
			font, size = FontBold, headerSize
			heights[r] = size*leadingFactor + cellPaddingTop + headerPaddingBot
		}
		for c, cell := range row {
			w, err := e.m.TextWidth(cell, font, size)
			if err != nil {
				return nil, nil, err
			}
			if w+2*cellPaddingX > widths[c] {
				widths[c] = w + 2*cellPaddingX
			}
		}
	}

	total := 0.0
	for _, w := range widths {
		total += w
	}
	limit := e.width - float64(e.cfg.ImageInset)
	if total > limit && total > 0 {
		scale := limit / total
		for i := range widths {
			widths[i] *= scale
		}
		e.warn("表格宽度超出页面，已按比例缩小", "width", total, "limit", limit)
	}
	return widths, heights, nil
}

func (e *engine) placeTable(grid [][]string, widths, heights []float64, x, top float64) TableBox {
	box := TableBox{
		X:            x,
		Y:            top,
		ColumnWidths: widths,
		Style:        DefaultTableStyle,
	}
	for _, w := range widths {
		box.Width += w
	}
	rowTop := top
	for r, cells := range grid {
		header := r == 0
		row := TableRow{Y: rowTop, Height: heights[r], IsHeader: header}
		font, size, color, padBottom := FontRegular, float64(e.cfg.TableBodySize), box.Style.BodyText, cellPaddingBottom
		if header {
			font, size, color, padBottom = FontBold, float64(e.cfg.TableHeaderSize), box.Style.HeaderText, headerPaddingBot
		}
		baseline := rowTop - heights[r] + padBottom + size*(leadingFactor-1)
		cellX := x
		for c, content := range cells {
			row.Cells = append(row.Cells, TableCell{
				X:     cellX,
				Width: widths[c],
				Text: TextBox{
					Content:  content,
					X:        cellX + widths[c]/2,
					Y:        baseline,
					Font:     font,
					FontSize: size,
					Color:    color,
					Align:    "center",
				},
			})
			cellX += widths[c]
		}
		box.Rows = append(box.Rows, row)
		box.Height += heights[r]
		rowTop -= heights[r]
	}
	return box
}

// renderImage 在载荷之后绘制内容图片，宽度为页宽减去 ImageInset，高度按宽高比计算。
func (e *engine) renderImage(cur Cursor, path string) (Cursor, error) {
	if path == "" {
		return cur, nil
	}
	cur.Y -= float64(e.cfg.ImageGap)

	pw, ph, err := e.m.ImageSize(path)
	if err != nil {
		return cur, err
	}
	if pw <= 0 || ph <= 0 {
		return cur, fmt.Errorf("%w: 图片 %s 尺寸无效 (%dx%d)", report.ErrImageLoad, path, pw, ph)
	}
	width := e.width - float64(e.cfg.ImageInset)
	height := width * float64(ph) / float64(pw)

	cur = e.breakIfBelow(cur, cur.Y-height, "image")
	if cur.Y-height < float64(e.cfg.PayloadBreakY) {
		e.warn("图片高度超过单页可用空间", "path", path, "height", height)
	}

	e.pc.curr().appendImage(ImageBox{
		Path:   path,
		X:      float64(e.cfg.ImageInset) / 2,
		Y:      cur.Y - height,
		Width:  width,
		Height: height,
	})
	cur.Y -= height + float64(e.cfg.BlockSpacing)
	return cur, nil
}
