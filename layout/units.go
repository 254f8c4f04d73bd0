package layout

// 本文件定义所有几何常量共用的宽度缩放。

// pt 与 mm 之间的换算常量。画布的 1 个单位（mm）正好对应 1 个输出像素。
const (
	PtToMm = 25.4 / 72.0
	MmToPt = 1.0 / PtToMm
)

// PxToPt 将像素字号换算为字体所需的磅值。
func PxToPt(px int) float64 { return float64(px) * MmToPt }

// Scaler 把参考宽度下的设计值映射到实际宽度。
type Scaler struct {
	Width     int
	Reference int
}

// NewScaler 返回 width 相对 reference 的缩放器。
func NewScaler(width, reference int) Scaler {
	return Scaler{Width: width, Reference: reference}
}

// Factor 返回 width / reference。
func (s Scaler) Factor() float64 {
	if s.Reference == 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Reference)
}

// Px 缩放 v 并向零截断。使用整数运算，重复调用结果逐位一致。
func (s Scaler) Px(v int) int {
	if s.Reference == 0 {
		return 0
	}
	return v * s.Width / s.Reference
}

// AtLeast1 与 Px 相同但结果不小于 1，用于字号与线宽。
func (s Scaler) AtLeast1(v int) int {
	if px := s.Px(v); px >= 1 {
		return px
	}
	return 1
}
