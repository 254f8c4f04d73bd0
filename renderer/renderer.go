package renderer

import (
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/infobox/fonts"
	"github.com/ByLCY/infobox/layout"
	"github.com/ByLCY/infobox/outline"
)

// Renderer 将排版结果绘制到画布上。坐标全部取自 layout.Spec，渲染器不自行重新计算。
type Renderer interface {
	Render(c *canvas.Canvas, spec *layout.Spec, items []outline.Item, fonts *fonts.Set) error
}
