package canvasrenderer

import (
	"fmt"
	"image/color"

	"github.com/tdewolff/canvas"
	"go.uber.org/zap"

	"github.com/ByLCY/infobox/fonts"
	"github.com/ByLCY/infobox/layout"
	"github.com/ByLCY/infobox/outline"
	"github.com/ByLCY/infobox/renderer"
)

// 细线宽度（像素），不随宽度缩放。
const ruleWidth = 1.0

// Renderer 基于 github.com/tdewolff/canvas 绘制信息框。
type Renderer struct {
	log *zap.Logger
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer 创建渲染器，log 为空时不输出日志。
func NewRenderer(log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{log: log}
}

// NewCanvas 按排版结果分配画布：1 个画布单位对应 1 个像素。
func NewCanvas(spec *layout.Spec) *canvas.Canvas {
	return canvas.New(float64(spec.TotalWidth), float64(spec.TotalHeight))
}

// Render 绘制背景、双线边框、标题与全部条目。
func (r *Renderer) Render(c *canvas.Canvas, spec *layout.Spec, items []outline.Item, set *fonts.Set) error {
	if c == nil {
		return fmt.Errorf("画布为空")
	}
	if spec == nil {
		return fmt.Errorf("排版结果为空")
	}
	if set == nil || set.Title == nil || set.Main == nil || set.Sub == nil {
		return fmt.Errorf("缺少字体")
	}
	if len(spec.ItemOffsets) != len(items) {
		return fmt.Errorf("条目数量 %d 与排版坐标数量 %d 不一致", len(items), len(spec.ItemOffsets))
	}

	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	r.drawBackground(ctx, spec)
	r.drawRects(ctx, spec.Borders())
	r.drawTitle(ctx, spec, set.Title)

	palette := spec.Palette
	for i, item := range items {
		y := float64(spec.ItemOffsets[i])
		if item.IsMain() {
			drawText(ctx, set.Main, item.Number, float64(spec.NumberX(item)), y, palette.Accent)
			drawText(ctx, set.Main, item.Label, float64(spec.LabelX(item)), y, palette.Text)
			r.drawLines(ctx, []layout.Line{spec.RuleBelow(spec.ItemOffsets[i])})
			continue
		}
		drawText(ctx, set.Sub, item.Number, float64(spec.NumberX(item)), y, palette.Muted)
		drawText(ctx, set.Sub, item.Label, float64(spec.LabelX(item)), y, palette.Text)
	}

	r.log.Debug("Infobox drawn",
		zap.Int("width", spec.TotalWidth),
		zap.Int("height", spec.TotalHeight),
		zap.Int("items", len(items)),
		zap.Stringer("title font", set.Title.Tier),
		zap.Stringer("main font", set.Main.Tier),
		zap.Stringer("sub font", set.Sub.Tier),
	)
	return nil
}

func (r *Renderer) drawBackground(ctx *canvas.Context, spec *layout.Spec) {
	ctx.SetFillColor(colorFromLayout(spec.Palette.Background))
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(0, 0, canvas.Rectangle(float64(spec.TotalWidth), float64(spec.TotalHeight)))
}

// drawTitle 以标题字体测量宽度后水平居中，顶部对齐到 padding。
func (r *Renderer) drawTitle(ctx *canvas.Context, spec *layout.Spec, face *fonts.Face) {
	if spec.Title == "" {
		return
	}
	w, _ := face.Measure(spec.Title)
	x := (float64(spec.TotalWidth) - w) / 2
	drawText(ctx, face, spec.Title, x, float64(spec.Padding), spec.Palette.Accent)
}

// drawText 在 (x, y) 处绘制单行文本，y 为行顶部；过长的文本不折行也不截断。
func drawText(ctx *canvas.Context, face *fonts.Face, content string, x, y float64, col layout.Color) {
	if content == "" {
		return
	}
	ff := face.FontFace(colorFromLayout(col))
	line := canvas.NewTextLine(ff, content, canvas.Left)
	// 基线位置：行顶部加上字体上升部
	ctx.DrawText(x, y+ff.Metrics().Ascent, line)
}

// drawLines 绘制直线列表（像素单位）
func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) {
	for _, ln := range lines {
		w := ln.Width
		if w <= 0 {
			w = ruleWidth
		}
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(w)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
		ctx.DrawPath(ln.X1, ln.Y1, p)
	}
}

// drawRects 绘制仅描边的矩形
func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		w := rc.StrokeWidth
		if w <= 0 {
			w = ruleWidth
		}
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeColor(colorFromLayout(rc.StrokeColor))
		ctx.SetStrokeWidth(w)
		ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
	}
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
