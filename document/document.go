// Package document 是报告生成的入口：打开输出文件、计算横幅、排版并写出 PDF。
package document

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/renderer"
	canvasrenderer "github.com/ByLCY/quire/renderer/canvas"
	"github.com/ByLCY/quire/report"
)

// Options 在构造 Driver 时显式传入，不依赖全局状态。
type Options struct {
	Config layout.Config
	Logger *slog.Logger
	// QuietWarnings 为真时不输出排版阶段的非致命警告。
	QuietWarnings bool
	// Backend 为空时使用 canvas 渲染器，相对路径按当前目录解析。
	Backend renderer.Backend
	// DebugPath 非空时额外输出布局调试 JSON。
	DebugPath string
	// BaseDir 与 Images 仅在 Backend 为空时用于构造 canvas 渲染器：
	// 相对图片路径按 BaseDir 解析，Images 可通过 builtin:<name> 引用。
	BaseDir string
	Images  map[string]canvasrenderer.Resource
}

// Driver 负责一次次独立的文档渲染，各次调用之间不共享输出资源。
type Driver struct {
	cfg     layout.Config
	log     *slog.Logger
	quiet   bool
	backend renderer.Backend
	debug   string
}

// New 创建文档驱动。
func New(opts Options) *Driver {
	cfg := opts.Config
	if cfg == (layout.Config{}) {
		cfg = layout.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	backend := opts.Backend
	if backend == nil {
		backend = canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: opts.BaseDir, Images: opts.Images})
	}
	return &Driver{cfg: cfg, log: logger, quiet: opts.QuietWarnings, backend: backend, debug: opts.DebugPath}
}

// CreateDocument 使用默认选项生成文档。
func CreateDocument(outputPath, title, bannerPath string, sections []*report.Section) error {
	return New(Options{}).CreateDocument(outputPath, title, bannerPath, sections)
}

// CreateDocument 将 sections 排版为 PDF 写入 outputPath。
// 先写入同目录下的临时文件，成功后再替换 outputPath；
// 任何错误都会中止渲染并删除临时文件，已有的 outputPath 保持不变。
func (d *Driver) CreateDocument(outputPath, title, bannerPath string, sections []*report.Section) (err error) {
	if err := d.cfg.Validate(); err != nil {
		return err
	}
	width, _, err := d.cfg.PageDimensions()
	if err != nil {
		return err
	}

	file, err := os.CreateTemp(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: 无法打开 %s: %v", report.ErrOutputWrite, outputPath, err)
	}
	tmpPath := file.Name()
	defer func() {
		if file != nil {
			file.Close()
		}
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	banner, err := layout.NewBanner(bannerPath, width, d.backend)
	if err != nil {
		return fmt.Errorf("横幅 %s: %w", bannerPath, err)
	}

	result, err := layout.Build(sections, layout.BuildOptions{
		Config:        d.cfg,
		Measurer:      d.backend,
		Banner:        banner,
		Title:         title,
		Logger:        d.log,
		QuietWarnings: d.quiet,
	})
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if d.debug != "" {
		if err := layout.WriteDebugJSON(result, d.debug); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	pdfBytes, err := d.backend.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if _, err := file.Write(pdfBytes); err != nil {
		return fmt.Errorf("%w: 写入 %s 失败: %v", report.ErrOutputWrite, outputPath, err)
	}
	if err := file.Chmod(0o644); err != nil {
		return fmt.Errorf("%w: 设置 %s 权限失败: %v", report.ErrOutputWrite, outputPath, err)
	}
	cerr := file.Close()
	file = nil
	if cerr != nil {
		return fmt.Errorf("%w: 关闭 %s 失败: %v", report.ErrOutputWrite, outputPath, cerr)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		return fmt.Errorf("%w: 替换 %s 失败: %v", report.ErrOutputWrite, outputPath, err)
	}

	d.log.Info("已生成文档", "path", outputPath, "pages", len(result.Pages), "bytes", len(pdfBytes))
	return nil
}

// Info 描述已生成文档的基本信息。
type Info struct {
	Path  string
	Pages int
}

// Inspect 读取 PDF 文件并返回页数。
func Inspect(path string) (Info, error) {
	if path == "" {
		return Info{}, errors.New("路径为空")
	}
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("打开 PDF %s 失败: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(f, conf)
	if err != nil {
		return Info{}, fmt.Errorf("读取 PDF %s 失败: %w", path, err)
	}
	return Info{Path: path, Pages: n}, nil
}
