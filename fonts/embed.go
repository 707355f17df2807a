// Package fonts 提供内置字体数据（Go 字体家族），无需外部字体文件。
package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var builtin = map[string][]byte{
	"regular": goregular.TTF,
	"bold":    gobold.TTF,
}

// Load 返回内置字体的 TTF 数据，name 可写为 "regular"、"bold" 或带 "embed:" 前缀。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "embed:"))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体", name)
	}
	return data, nil
}
