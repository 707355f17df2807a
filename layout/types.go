package layout

// 该文件定义布局结果，供布局计算、渲染与调试 JSON 共用。
// 所有坐标单位为 pt，原点在页面左下角，y 向上增长；文本 Y 为基线位置。

// Result 保存布局后的页面与文档元信息。
type Result struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// FontRole 指明文本使用的字体（常规或粗体）。
type FontRole string

const (
	FontRegular FontRole = "regular"
	FontBold    FontRole = "bold"
)

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	Black      = Color{0, 0, 0}
	Grey       = Color{128, 128, 128}
	WhiteSmoke = Color{245, 245, 245}
	Beige      = Color{245, 245, 220}
)

// Page 记录页面尺寸、横幅与可以直接渲染的元素。
// Banner 在每一页以相同几何重复出现。
type Page struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Banner *ImageBox  `json:"banner,omitempty"`
	Texts  []TextBox  `json:"texts"`
	Images []ImageBox `json:"images"`
	Tables []TableBox `json:"tables"`
}

// TextBox 表示一行已定位的文本。
type TextBox struct {
	Content  string   `json:"content"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Font     FontRole `json:"font"`
	FontSize float64  `json:"fontSize"`
	Color    Color    `json:"color"`
	Align    string   `json:"align,omitempty"` // left（默认）/center
}

// ImageBox 描述图片位置与尺寸，(X, Y) 为图片左下角。
type ImageBox struct {
	Path   string  `json:"path"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Top 返回图片上边缘的 y 坐标。
func (b ImageBox) Top() float64 { return b.Y + b.Height }

// TableBox 保存表格布局信息，Y 为表格上边缘。
type TableBox struct {
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Width        float64    `json:"width"`
	Height       float64    `json:"height"`
	ColumnWidths []float64  `json:"columnWidths"`
	Rows         []TableRow `json:"rows"`
	Style        TableStyle `json:"style"`
}

// Bottom 返回表格下边缘的 y 坐标。
func (t TableBox) Bottom() float64 { return t.Y - t.Height }

// TableStyle 为固定的表格视觉样式。
type TableStyle struct {
	HeaderFill Color   `json:"headerFill"`
	HeaderText Color   `json:"headerText"`
	BodyFill   Color   `json:"bodyFill"`
	BodyText   Color   `json:"bodyText"`
	GridColor  Color   `json:"gridColor"`
	GridWidth  float64 `json:"gridWidth"`
}

// DefaultTableStyle：灰色表头、白烟色表头文字、米色表体、1pt 黑色网格。
var DefaultTableStyle = TableStyle{
	HeaderFill: Grey,
	HeaderText: WhiteSmoke,
	BodyFill:   Beige,
	BodyText:   Black,
	GridColor:  Black,
	GridWidth:  1,
}

// TableRow 记录每一行的上边缘、高度与单元格。
type TableRow struct {
	Y        float64     `json:"y"`
	Height   float64     `json:"height"`
	IsHeader bool        `json:"isHeader"`
	Cells    []TableCell `json:"cells"`
}

// TableCell 复用 TextBox 作为单元格文本，文本居中于单元格。
type TableCell struct {
	X     float64 `json:"x"`
	Width float64 `json:"width"`
	Text  TextBox `json:"text"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title   string `json:"title"`
	Creator string `json:"creator"`
}
