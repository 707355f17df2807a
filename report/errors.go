package report

import "errors"

var (
	// ErrUnsupportedPayloadKind 表示载荷类型无法识别（零值 Payload 或未知 Kind）。
	ErrUnsupportedPayloadKind = errors.New("quire: unsupported payload kind")

	// ErrImageLoad 表示横幅或内容图片无法读取或解码。
	ErrImageLoad = errors.New("quire: image load failed")

	// ErrOutputWrite 表示输出文件无法打开或写入。
	ErrOutputWrite = errors.New("quire: output write failed")
)
