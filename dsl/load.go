package dsl

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/quire/binding"
	"github.com/ByLCY/quire/report"
)

// ErrInvalidDocument 表示报告描述在语义上无效（未知命令、缺少参数等）。
var ErrInvalidDocument = errors.New("dsl: 无效的报告描述")

// Report 是从 DSL 载入后的报告。
type Report struct {
	Title    string
	Banner   string
	Sections []*report.Section
}

// Load 将语法树转换为报告内容，data 用于 ${path} 插值和 from 表达式。
func Load(doc *Document, data any) (*Report, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: 文档为空", ErrInvalidDocument)
	}
	out := &Report{Title: binding.Interpolate(string(doc.Title), data)}

	attrs, err := parseAttrs(doc.Pos, doc.Params)
	if err != nil {
		return nil, err
	}
	for key, val := range attrs.values {
		switch key {
		case "banner":
			out.Banner = binding.Interpolate(val, data)
		default:
			return nil, invalidf(doc.Pos, "report 不支持参数 %s", key)
		}
	}

	for _, decl := range doc.Sections {
		section, err := loadSection(decl, data)
		if err != nil {
			return nil, err
		}
		out.Sections = append(out.Sections, section)
	}
	return out, nil
}

func loadSection(decl *SectionDecl, data any) (*report.Section, error) {
	section := report.NewSection(binding.Interpolate(string(decl.Title), data))
	if decl.Block == nil {
		return section, nil
	}
	for _, stmt := range decl.Block.Statements {
		if stmt.Text != nil {
			return nil, invalidf(stmt.Text.Pos, "章节内的文本必须写在 text 命令中")
		}
		if err := loadContent(section, stmt.Command, data); err != nil {
			return nil, err
		}
	}
	return section, nil
}

func loadContent(section *report.Section, cmd *Command, data any) error {
	if len(cmd.Args) == 0 || !cmd.Args[0].IsString() {
		return invalidf(cmd.Pos, "%s 需要一个字符串标题", cmd.Name)
	}
	header := binding.Interpolate(cmd.Args[0].Value, data)
	attrs, err := parseAttrs(cmd.Pos, cmd.Args[1:])
	if err != nil {
		return err
	}

	var opts []report.ContentOption
	if img, ok := attrs.values["image"]; ok {
		opts = append(opts, report.WithImage(binding.Interpolate(img, data)))
	}
	if kind, ok := attrs.values["kind"]; ok {
		if kind != "summary" {
			return invalidf(cmd.Pos, "未知的 kind %q", kind)
		}
		opts = append(opts, report.AsSummary())
	}

	var payload report.Payload
	switch cmd.Name {
	case "text":
		attrs.allow("image", "kind", "from")
		text, err := loadLines(cmd, attrs, data)
		if err != nil {
			return err
		}
		if _, summary := attrs.values["kind"]; !summary && strings.Contains(text, "\n") {
			return invalidf(cmd.Pos, "text 只能包含单行文本，多行内容请使用 summary 或 kind summary")
		}
		payload = report.Text(text)
	case "summary":
		attrs.allow("image", "from")
		text, err := loadLines(cmd, attrs, data)
		if err != nil {
			return err
		}
		payload = report.Summary(text)
	case "table":
		attrs.allow("image", "kind", "from")
		table, err := loadTable(cmd, attrs, data)
		if err != nil {
			return err
		}
		payload = report.TableOf(table)
	case "series":
		attrs.allow("image", "kind", "from", "name")
		series, err := loadSeries(cmd, attrs, data)
		if err != nil {
			return err
		}
		payload = report.SeriesOf(series)
	default:
		return invalidf(cmd.Pos, "未知命令 %s", cmd.Name)
	}
	if key := attrs.unexpected(); key != "" {
		return invalidf(cmd.Pos, "%s 不支持参数 %s", cmd.Name, key)
	}
	section.Add(header, payload, opts...)
	return nil
}

// loadLines 拼接块内的字符串字面量，或取 from 表达式指向的字符串/字符串数组。
func loadLines(cmd *Command, attrs attrSet, data any) (string, error) {
	if expr, ok := attrs.values["from"]; ok {
		val, err := lookup(cmd.Pos, data, expr)
		if err != nil {
			return "", err
		}
		switch v := val.(type) {
		case string:
			return v, nil
		case []any:
			lines := make([]string, 0, len(v))
			for _, item := range v {
				lines = append(lines, cellString(item))
			}
			return strings.Join(lines, "\n"), nil
		default:
			return "", invalidf(cmd.Pos, "%s 指向的值不是文本", expr)
		}
	}
	if cmd.Block == nil {
		return "", nil
	}
	var lines []string
	for _, stmt := range cmd.Block.Statements {
		if stmt.Text == nil {
			return "", invalidf(stmt.Command.Pos, "%s 块内只允许字符串", cmd.Name)
		}
		lines = append(lines, binding.Interpolate(string(stmt.Text.Value), data))
	}
	return strings.Join(lines, "\n"), nil
}

// loadTable 支持块内 columns/row 命令，或 from 指向 {"columns": [...], "rows": [[...]]}。
func loadTable(cmd *Command, attrs attrSet, data any) (*report.Table, error) {
	if expr, ok := attrs.values["from"]; ok {
		val, err := lookup(cmd.Pos, data, expr)
		if err != nil {
			return nil, err
		}
		obj, ok := val.(map[string]any)
		if !ok {
			return nil, invalidf(cmd.Pos, "%s 指向的值不是表格", expr)
		}
		cols, _ := obj["columns"].([]any)
		names := make([]string, 0, len(cols))
		for _, c := range cols {
			names = append(names, cellString(c))
		}
		table := report.NewTable(names...)
		rows, _ := obj["rows"].([]any)
		for _, r := range rows {
			cells, _ := r.([]any)
			table.AddRow(cells...)
		}
		return table, nil
	}

	var table *report.Table
	if cmd.Block == nil {
		return nil, invalidf(cmd.Pos, "table 缺少 columns")
	}
	for _, stmt := range cmd.Block.Statements {
		sub := stmt.Command
		if sub == nil {
			return nil, invalidf(stmt.Text.Pos, "table 块内只允许 columns 与 row")
		}
		values := argValues(sub.Args, data)
		switch sub.Name {
		case "columns":
			if table != nil {
				return nil, invalidf(sub.Pos, "columns 重复定义")
			}
			names := make([]string, len(values))
			for i, v := range values {
				names[i] = cellString(v)
			}
			table = report.NewTable(names...)
		case "row":
			if table == nil {
				return nil, invalidf(sub.Pos, "row 必须出现在 columns 之后")
			}
			table.AddRow(values...)
		default:
			return nil, invalidf(sub.Pos, "table 内未知命令 %s", sub.Name)
		}
	}
	if table == nil {
		return nil, invalidf(cmd.Pos, "table 缺少 columns")
	}
	return table, nil
}

// loadSeries 支持块内 point 命令，或 from 指向 [{"label":..,"value":..}] / [[label, value]]。
func loadSeries(cmd *Command, attrs attrSet, data any) (*report.Series, error) {
	series := report.NewSeries(binding.Interpolate(attrs.values["name"], data))
	if expr, ok := attrs.values["from"]; ok {
		val, err := lookup(cmd.Pos, data, expr)
		if err != nil {
			return nil, err
		}
		points, ok := val.([]any)
		if !ok {
			return nil, invalidf(cmd.Pos, "%s 指向的值不是数组", expr)
		}
		for i, p := range points {
			switch pt := p.(type) {
			case map[string]any:
				series.Add(cellString(pt["label"]), pt["value"])
			case []any:
				if len(pt) != 2 {
					return nil, invalidf(cmd.Pos, "%s[%d] 应为 [label, value]", expr, i)
				}
				series.Add(cellString(pt[0]), pt[1])
			default:
				return nil, invalidf(cmd.Pos, "%s[%d] 不是数据点", expr, i)
			}
		}
		return series, nil
	}
	if cmd.Block == nil {
		return series, nil
	}
	for _, stmt := range cmd.Block.Statements {
		sub := stmt.Command
		if sub == nil || sub.Name != "point" {
			return nil, invalidf(cmd.Pos, "series 块内只允许 point")
		}
		values := argValues(sub.Args, data)
		if len(values) != 2 {
			return nil, invalidf(sub.Pos, "point 需要标签与数值两个参数")
		}
		series.Add(cellString(values[0]), values[1])
	}
	return series, nil
}

// argValues 将参数词素转换为单元格值：字符串做插值，数字解析为 float64，负号与其后的数字合并。
func argValues(args []*Lexeme, data any) []any {
	out := make([]any, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg.IsString():
			out = append(out, binding.Interpolate(arg.Value, data))
		case arg.Type == "Symbol" && arg.Value == "-" && i+1 < len(args) && args[i+1].Type == "Number":
			i++
			out = append(out, number("-"+args[i].Value))
		case arg.Type == "Number":
			out = append(out, number(arg.Value))
		default:
			out = append(out, arg.Value)
		}
	}
	return out
}

func number(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func cellString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// lookup 解析 from 表达式；路径以 data. 开头且根对象没有 data 键时，data 指代根对象。
func lookup(pos lexer.Position, data any, expr string) (any, error) {
	if val, ok := binding.Lookup(data, expr); ok {
		return val, nil
	}
	if rest, ok := strings.CutPrefix(expr, "data."); ok {
		if val, ok := binding.Lookup(data, rest); ok {
			return val, nil
		}
	}
	return nil, invalidf(pos, "数据中找不到 %s", expr)
}

// attrSet 保存命令的 key value 参数；from 会吞掉其后的全部词素。
type attrSet struct {
	values  map[string]string
	allowed map[string]bool
}

func parseAttrs(pos lexer.Position, args []*Lexeme) (attrSet, error) {
	set := attrSet{values: map[string]string{}}
	for i := 0; i < len(args); i++ {
		key := args[i]
		if key.Type != "Ident" {
			return set, invalidf(key.Pos, "参数名应为标识符，得到 %q", key.Raw)
		}
		if key.Value == "from" {
			var b strings.Builder
			for _, part := range args[i+1:] {
				b.WriteString(part.Value)
			}
			if b.Len() == 0 {
				return set, invalidf(key.Pos, "from 缺少路径")
			}
			set.values["from"] = b.String()
			return set, nil
		}
		if i+1 >= len(args) {
			return set, invalidf(key.Pos, "参数 %s 缺少值", key.Value)
		}
		if _, dup := set.values[key.Value]; dup {
			return set, invalidf(key.Pos, "参数 %s 重复", key.Value)
		}
		i++
		set.values[key.Value] = args[i].Value
	}
	return set, nil
}

func (a *attrSet) allow(keys ...string) {
	a.allowed = make(map[string]bool, len(keys))
	for _, k := range keys {
		a.allowed[k] = true
	}
}

// unexpected 返回第一个不被允许的参数名。
func (a *attrSet) unexpected() string {
	for key := range a.values {
		if !a.allowed[key] {
			return key
		}
	}
	return ""
}

func invalidf(pos lexer.Position, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidDocument, pos, fmt.Sprintf(format, args...))
}
