package fonts

import (
	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// BuiltinName 为内置兜底字体的名称。
const BuiltinName = "builtin:go"

// Builtin 返回内置字体的字节数据，粗体样式使用 Go Bold，其余使用 Go Regular。
// Go 字体覆盖 Latin-1 与 Latin Extended-A，足以显示 ä/ö/å 等字符。
func Builtin(style canvas.FontStyle) []byte {
	if style == canvas.FontBold {
		return gobold.TTF
	}
	return goregular.TTF
}
