package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 该文件定义排版配置与排版结果，供布局计算、渲染与调试 JSON 共用。

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Hex 返回 #RRGGBB 形式。
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHex 解析 #RGB 或 #RRGGBB。
func ParseHex(s string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return Color{}, fmt.Errorf("无效颜色 %q", s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("无效颜色 %q: %w", s, err)
	}
	return Color{R: int(n >> 16 & 0xFF), G: int(n >> 8 & 0xFF), B: int(n & 0xFF)}, nil
}

func mustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Palette 为信息框使用的颜色表。
type Palette struct {
	Background Color `json:"background"`
	Text       Color `json:"text"`
	Accent     Color `json:"accent"` // 标题与主条目编号
	Border     Color `json:"border"`
	Rule       Color `json:"rule"`  // 主条目下方的细线
	Muted      Color `json:"muted"` // 子条目编号
}

// Config 为与单次渲染无关的设计常量。
// 所有几何数值均为参考宽度下的像素值，排版时按实际宽度线性缩放。
type Config struct {
	Name           string  `json:"name"`
	Title          string  `json:"title"`
	ReferenceWidth int     `json:"referenceWidth"`
	Palette        Palette `json:"palette"`

	Padding      int `json:"padding"`
	HeaderSpace  int `json:"headerSpace"`  // 标题区域高度
	BottomMargin int `json:"bottomMargin"` // 列表结束后的底部留白

	RowHeightMain int `json:"rowHeightMain"`
	GapAfterMain  int `json:"gapAfterMain"`
	RowHeightSub  int `json:"rowHeightSub"`

	IndentMain    int `json:"indentMain"`    // 主条目编号相对 padding 的缩进
	IndentText    int `json:"indentText"`    // 主条目文字缩进
	IndentSub     int `json:"indentSub"`     // 子条目编号缩进
	IndentSubText int `json:"indentSubText"` // 子条目文字缩进
	RuleOffset    int `json:"ruleOffset"`    // 细线距主条目行底的距离
	RuleInset     int `json:"ruleInset"`     // 细线两端相对 padding 的内缩

	BorderOuter      int `json:"borderOuter"` // 外框距画布边缘
	BorderInner      int `json:"borderInner"` // 内框距画布边缘
	BorderOuterWidth int `json:"borderOuterWidth"`
	BorderInnerWidth int `json:"borderInnerWidth"`

	TitleSize int `json:"titleSize"` // 字号（像素）
	MainSize  int `json:"mainSize"`
	SubSize   int `json:"subSize"`
}

// Validate 检查配置是否可用于排版。
func (c Config) Validate() error {
	if c.ReferenceWidth <= 0 {
		return fmt.Errorf("layout: 参考宽度必须大于 0（preset %q）", c.Name)
	}
	if c.RowHeightMain <= 0 || c.RowHeightSub <= 0 {
		return fmt.Errorf("layout: 行高必须大于 0（preset %q）", c.Name)
	}
	if c.TitleSize <= 0 || c.MainSize <= 0 || c.SubSize <= 0 {
		return fmt.Errorf("layout: 字号必须大于 0（preset %q）", c.Name)
	}
	for _, v := range []int{c.Padding, c.HeaderSpace, c.BottomMargin, c.GapAfterMain, c.RuleOffset, c.BorderOuter, c.BorderInner} {
		if v < 0 {
			return fmt.Errorf("layout: 几何常量不能为负（preset %q）", c.Name)
		}
	}
	return nil
}

// Metrics 是按宽度缩放后的缩进、边框与字号。
type Metrics struct {
	IndentMain    int `json:"indentMain"`
	IndentText    int `json:"indentText"`
	IndentSub     int `json:"indentSub"`
	IndentSubText int `json:"indentSubText"`
	RuleOffset    int `json:"ruleOffset"`
	RuleInset     int `json:"ruleInset"`

	BorderOuter      int `json:"borderOuter"`
	BorderInner      int `json:"borderInner"`
	BorderOuterWidth int `json:"borderOuterWidth"`
	BorderInnerWidth int `json:"borderInnerWidth"`

	TitleSize int `json:"titleSize"`
	MainSize  int `json:"mainSize"`
	SubSize   int `json:"subSize"`
}

// Spec 保存单次渲染的具体几何信息，坐标单位为像素，原点在左上角。
type Spec struct {
	Title       string  `json:"title"`
	ScaleFactor float64 `json:"scaleFactor"`

	Padding       int `json:"padding"`
	HeaderSpace   int `json:"headerSpace"`
	BottomMargin  int `json:"bottomMargin"`
	RowHeightMain int `json:"rowHeightMain"`
	GapAfterMain  int `json:"gapAfterMain"`
	RowHeightSub  int `json:"rowHeightSub"`

	TotalWidth  int `json:"totalWidth"`
	TotalHeight int `json:"totalHeight"`

	// ItemOffsets[i] 为第 i 个条目顶部的 y 坐标。
	ItemOffsets []int `json:"itemOffsets"`

	Metrics Metrics `json:"metrics"`
	Palette Palette `json:"palette"`
}

// Line 表示一条线段（像素）。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// Rect 表示一个仅描边的矩形（像素）。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
}
