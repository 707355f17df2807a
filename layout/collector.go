package layout

type pageAccumulator struct {
	texts  []TextBox
	images []ImageBox
	tables []TableBox
}

func (p *pageAccumulator) appendText(tb TextBox) {
	p.texts = append(p.texts, tb)
}

func (p *pageAccumulator) appendImage(img ImageBox) {
	p.images = append(p.images, img)
}

func (p *pageAccumulator) appendTable(t TableBox) {
	p.tables = append(p.tables, t)
}

// pageCollector 按页收集元素，横幅应用于所有页面。
type pageCollector struct {
	width   float64
	height  float64
	banner  *Banner
	accs    []*pageAccumulator
	current int
}

func newPageCollector(width, height float64, banner *Banner) *pageCollector {
	pc := &pageCollector{
		width:  width,
		height: height,
		banner: banner,
	}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[pc.current]
}

// contentTop 返回横幅下方的基准线，新页的起始 y 由此减去间距得到。
func (pc *pageCollector) contentTop() float64 {
	return pc.height - pc.banner.height()
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:  pc.width,
			Height: pc.height,
			Banner: pc.banner.box(pc.height),
			Texts:  acc.texts,
			Images: acc.images,
			Tables: acc.tables,
		}
	}
	return out
}
