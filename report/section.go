// Package report 定义报告内容模型：Section 由标题与有序的 Content 组成。
package report

// Content 是章节中的一条内容，构造后不可修改。
type Content struct {
	Header  string
	Payload Payload
	// Image 为可选图片路径，在载荷之后绘制。
	Image string
	// Summary 为真时，无论载荷类型都按多行文本绘制。
	Summary bool
}

// ContentOption 调整 Section.Add 创建的 Content。
type ContentOption func(*Content)

// WithImage 为内容附加图片。
func WithImage(path string) ContentOption {
	return func(c *Content) { c.Image = path }
}

// AsSummary 设置摘要标记。
func AsSummary() ContentOption {
	return func(c *Content) { c.Summary = true }
}

// Section 表示带标题的章节。
type Section struct {
	Title    string
	contents []Content
}

func NewSection(title string) *Section { return &Section{Title: title} }

// Add 按插入顺序追加一条内容，不做任何校验。
func (s *Section) Add(header string, payload Payload, opts ...ContentOption) *Section {
	c := Content{Header: header, Payload: payload}
	for _, opt := range opts {
		opt(&c)
	}
	s.contents = append(s.contents, c)
	return s
}

// Contents 返回内容的副本。
func (s *Section) Contents() []Content {
	out := make([]Content, len(s.contents))
	copy(out, s.contents)
	return out
}

// Len 返回内容条数。
func (s *Section) Len() int { return len(s.contents) }
