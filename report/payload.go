package report

import (
	"fmt"
	"strings"
)

// Kind 标识 Payload 的具体类型。
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindTable
	KindSeries
	KindSummary
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTable:
		return "table"
	case KindSeries:
		return "series"
	case KindSummary:
		return "summary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Tabular 是表格数据源的只读视图：有序列名与按行排列的单元格。
type Tabular interface {
	Columns() []string
	Rows() [][]string
}

// Liner 是可转换为多行文本的数据源。
type Liner interface {
	Lines() []string
}

// Payload 是 Content 的主体，按 Kind 区分四种形态。
type Payload struct {
	Kind   Kind
	text   string
	table  Tabular
	series Liner
}

// Text 构造单行纯文本载荷。
func Text(s string) Payload { return Payload{Kind: KindText, text: s} }

// TableOf 构造表格载荷。
func TableOf(t Tabular) Payload { return Payload{Kind: KindTable, table: t} }

// SeriesOf 构造序列载荷。
func SeriesOf(s Liner) Payload { return Payload{Kind: KindSeries, series: s} }

// Summary 构造预排版的多行摘要，按换行符拆行。
func Summary(s string) Payload { return Payload{Kind: KindSummary, text: s} }

// String 返回 Text 与 Summary 的原始字符串，其余类型返回空串。
func (p Payload) String() string {
	switch p.Kind {
	case KindText, KindSummary:
		return p.text
	default:
		return ""
	}
}

// Table 返回表格数据源；仅 KindTable 有效。
func (p Payload) Table() (Tabular, error) {
	if p.Kind != KindTable || p.table == nil {
		return nil, fmt.Errorf("%w: %s 不是表格", ErrUnsupportedPayloadKind, p.Kind)
	}
	return p.table, nil
}

// Lines 将任意类型的载荷转换为文本行。
func (p Payload) Lines() ([]string, error) {
	switch p.Kind {
	case KindText:
		return []string{p.text}, nil
	case KindSummary:
		return strings.Split(p.text, "\n"), nil
	case KindSeries:
		if p.series == nil {
			return nil, fmt.Errorf("%w: series 数据源为空", ErrUnsupportedPayloadKind)
		}
		return p.series.Lines(), nil
	case KindTable:
		if p.table == nil {
			return nil, fmt.Errorf("%w: table 数据源为空", ErrUnsupportedPayloadKind)
		}
		return tableLines(p.table), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPayloadKind, p.Kind)
	}
}

func tableLines(t Tabular) []string {
	rows := t.Rows()
	out := make([]string, 0, len(rows)+1)
	out = append(out, strings.Join(t.Columns(), "  "))
	for _, row := range rows {
		out = append(out, strings.Join(row, "  "))
	}
	return out
}
