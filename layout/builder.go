package layout

import (
	"fmt"

	"github.com/ByLCY/infobox/outline"
)

// Build 根据条目列表与目标宽度计算画布尺寸与各条目的 y 坐标。
// 空列表得到只有标题的高度；是否允许渲染空列表由调用方决定。
func Build(items []outline.Item, width int, cfg Config) (*Spec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 {
		return nil, fmt.Errorf("layout: 宽度必须大于 0，实际 %d", width)
	}

	s := NewScaler(width, cfg.ReferenceWidth)
	spec := &Spec{
		Title:       cfg.Title,
		ScaleFactor: s.Factor(),

		Padding:       s.Px(cfg.Padding),
		HeaderSpace:   s.Px(cfg.HeaderSpace),
		BottomMargin:  s.Px(cfg.BottomMargin),
		RowHeightMain: s.Px(cfg.RowHeightMain),
		GapAfterMain:  s.Px(cfg.GapAfterMain),
		RowHeightSub:  s.Px(cfg.RowHeightSub),

		TotalWidth: width,
		Metrics:    scaleMetrics(s, cfg),
		Palette:    cfg.Palette,
	}

	// 单次前向遍历：记录坐标与累计高度使用同一游标，二者不可能出现偏差。
	spec.ItemOffsets = make([]int, 0, len(items))
	cursor := spec.ContentTop()
	for _, item := range items {
		spec.ItemOffsets = append(spec.ItemOffsets, cursor)
		cursor += spec.Advance(item)
	}
	spec.TotalHeight = cursor + spec.BottomMargin
	return spec, nil
}

func scaleMetrics(s Scaler, cfg Config) Metrics {
	return Metrics{
		IndentMain:    s.Px(cfg.IndentMain),
		IndentText:    s.Px(cfg.IndentText),
		IndentSub:     s.Px(cfg.IndentSub),
		IndentSubText: s.Px(cfg.IndentSubText),
		RuleOffset:    s.Px(cfg.RuleOffset),
		RuleInset:     s.Px(cfg.RuleInset),

		BorderOuter:      s.Px(cfg.BorderOuter),
		BorderInner:      s.Px(cfg.BorderInner),
		BorderOuterWidth: s.AtLeast1(cfg.BorderOuterWidth),
		BorderInnerWidth: s.AtLeast1(cfg.BorderInnerWidth),

		TitleSize: s.AtLeast1(cfg.TitleSize),
		MainSize:  s.AtLeast1(cfg.MainSize),
		SubSize:   s.AtLeast1(cfg.SubSize),
	}
}

// ContentTop 为第一个条目的 y 坐标。
func (s *Spec) ContentTop() int { return s.Padding + s.HeaderSpace }

// Advance 返回条目占用的高度：主条目为行高加间距，子条目为子行高。
func (s *Spec) Advance(item outline.Item) int {
	if item.IsMain() {
		return s.RowHeightMain + s.GapAfterMain
	}
	return s.RowHeightSub
}

// Borders 返回两个同心边框，外框在前。
func (s *Spec) Borders() []Rect {
	m := s.Metrics
	rect := func(inset, width int) Rect {
		return Rect{
			X:           float64(inset),
			Y:           float64(inset),
			Width:       float64(s.TotalWidth - 2*inset),
			Height:      float64(s.TotalHeight - 2*inset),
			StrokeColor: s.Palette.Border,
			StrokeWidth: float64(width),
		}
	}
	return []Rect{
		rect(m.BorderOuter, m.BorderOuterWidth),
		rect(m.BorderInner, m.BorderInnerWidth),
	}
}

// RuleBelow 返回位于 y 处主条目下方的细线。
func (s *Spec) RuleBelow(y int) Line {
	ry := float64(y + s.RowHeightMain - s.Metrics.RuleOffset)
	return Line{
		X1:    float64(s.Padding + s.Metrics.RuleInset),
		Y1:    ry,
		X2:    float64(s.TotalWidth - s.Padding - s.Metrics.RuleInset),
		Y2:    ry,
		Color: s.Palette.Rule,
		Width: 1,
	}
}

// NumberX 返回条目编号的 x 坐标。
func (s *Spec) NumberX(item outline.Item) int {
	if item.IsMain() {
		return s.Padding + s.Metrics.IndentMain
	}
	return s.Padding + s.Metrics.IndentSub
}

// LabelX 返回条目文字的 x 坐标。
func (s *Spec) LabelX(item outline.Item) int {
	if item.IsMain() {
		return s.Padding + s.Metrics.IndentText
	}
	return s.Padding + s.Metrics.IndentSubText
}
