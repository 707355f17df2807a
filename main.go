package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ByLCY/quire/document"
	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/layout"
	canvasrenderer "github.com/ByLCY/quire/renderer/canvas"
)

func main() {
	input := flag.String("in", "examples/report.quire", "报告描述文件路径")
	output := flag.String("out", "output/report.pdf", "PDF 输出路径")
	configPath := flag.String("config", "", "YAML 排版配置文件")
	dataJSON := flag.String("data", "", "绑定到报告描述的 JSON 数据（@file 表示从文件读取）")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	quiet := flag.Bool("quiet", false, "不输出排版警告")
	verbose := flag.Bool("v", false, "输出调试日志（包括分页原因）")
	images := imageFlags{}
	flag.Var(images, "image", "注册内置图片 name=path，可在报告中以 builtin:name 引用（可重复）")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := runOptions{
		input:  *input,
		output: *output,
		config: *configPath,
		data:   *dataJSON,
		debug:  *debug,
		quiet:  *quiet,
		images: images,
	}
	info, err := run(opts, logger)
	if err != nil {
		logger.Error("生成 PDF 失败", "error", err)
		os.Exit(1)
	}
	fmt.Printf("已生成 PDF：%s（%d 页）\n", info.Path, info.Pages)
}

type runOptions struct {
	input, output, config, data, debug string
	quiet                              bool
	images                             imageFlags
}

// imageFlags 收集 -image name=path 参数。
type imageFlags map[string]canvasrenderer.Resource

func (f imageFlags) String() string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func (f imageFlags) Set(v string) error {
	name, path, ok := strings.Cut(v, "=")
	if !ok || name == "" || path == "" {
		return fmt.Errorf("格式应为 name=path，得到 %q", v)
	}
	f[name] = canvasrenderer.Resource{Path: path}
	return nil
}

// run 串联解析、数据绑定、排版与渲染。
func run(opts runOptions, logger *slog.Logger) (document.Info, error) {
	cfg := layout.DefaultConfig()
	if opts.config != "" {
		var err error
		if cfg, err = layout.LoadConfig(opts.config); err != nil {
			return document.Info{}, err
		}
	}

	data, err := readData(opts.data)
	if err != nil {
		return document.Info{}, err
	}

	file, err := os.Open(opts.input)
	if err != nil {
		return document.Info{}, fmt.Errorf("无法打开报告描述文件 %s: %w", opts.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return document.Info{}, fmt.Errorf("解析报告描述失败: %w", err)
	}
	rep, err := dsl.Load(doc, data)
	if err != nil {
		return document.Info{}, err
	}

	if dir := filepath.Dir(opts.output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return document.Info{}, fmt.Errorf("创建输出目录失败: %w", err)
		}
	}

	driver := document.New(document.Options{
		Config:        cfg,
		Logger:        logger,
		QuietWarnings: opts.quiet,
		DebugPath:     opts.debug,
		// 图片路径相对于报告描述文件所在目录
		BaseDir: filepath.Dir(opts.input),
		Images:  opts.images,
	})
	if err := driver.CreateDocument(opts.output, rep.Title, rep.Banner, rep.Sections); err != nil {
		return document.Info{}, err
	}
	return document.Inspect(opts.output)
}

// readData 解析 -data 参数：直接的 JSON 文本，或以 @ 开头的文件路径。
func readData(arg string) (any, error) {
	if arg == "" {
		return nil, nil
	}
	raw := []byte(arg)
	if arg[0] == '@' {
		var err error
		if raw, err = os.ReadFile(arg[1:]); err != nil {
			return nil, fmt.Errorf("读取数据文件失败: %w", err)
		}
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return data, nil
}
