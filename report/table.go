package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatCell 将单元格值转为字符串；数字按英文区域格式化。
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return printer.Sprintf("%d", val)
	case float32, float64:
		return printer.Sprintf("%v", val)
	default:
		return fmt.Sprint(val)
	}
}

// Table 是 Tabular 的内存实现，行宽不足时按空串补齐。
type Table struct {
	columns []string
	rows    [][]string
}

var _ Tabular = (*Table)(nil)

// NewTable 以列名创建空表。
func NewTable(columns ...string) *Table {
	return &Table{columns: append([]string(nil), columns...)}
}

// AddRow 追加一行，cells 多于列数时截断。
func (t *Table) AddRow(cells ...any) *Table {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(cells) {
			row[i] = formatCell(cells[i])
		}
	}
	t.rows = append(t.rows, row)
	return t
}

func (t *Table) Columns() []string { return t.columns }

func (t *Table) Rows() [][]string { return t.rows }

// Series 是带名称的一维数据序列，每个点有标签与数值。
type Series struct {
	Name   string
	labels []string
	values []string
}

var _ Liner = (*Series)(nil)

func NewSeries(name string) *Series { return &Series{Name: name} }

// Add 追加一个数据点。
func (s *Series) Add(label string, value any) *Series {
	s.labels = append(s.labels, label)
	s.values = append(s.values, formatCell(value))
	return s
}

// Len 返回数据点个数。
func (s *Series) Len() int { return len(s.labels) }

// Lines 输出 "label  value" 形式的行，标签左对齐到最长标签宽度；
// 有名称时末尾追加 "Name: <name>"。
func (s *Series) Lines() []string {
	width := 0
	for _, l := range s.labels {
		if n := len([]rune(l)); n > width {
			width = n
		}
	}
	out := make([]string, 0, len(s.labels)+1)
	for i, l := range s.labels {
		pad := strings.Repeat(" ", width-len([]rune(l)))
		out = append(out, l+pad+"  "+s.values[i])
	}
	if s.Name != "" {
		out = append(out, "Name: "+s.Name)
	}
	return out
}
