package sink

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
)

// DefaultDPI 为印刷用途写入的分辨率。
const DefaultDPI = 300

// Sink 将绘制完成的画布编码为传输格式。
type Sink interface {
	Encode(c *canvas.Canvas) ([]byte, error)
}

// Raster 以 1 像素对应 1 个画布单位栅格化，并以无损格式编码。
type Raster struct {
	Format imaging.Format
	DPI    int // 仅对 PNG 生效，<=0 时不写入分辨率
}

var _ Sink = Raster{}

// PNG 返回写入 dpi 的 PNG 编码器。
func PNG(dpi int) Raster { return Raster{Format: imaging.PNG, DPI: dpi} }

// canvas 描边时的路径求交会写入包级变量，栅格化必须串行执行
var rasterMu sync.Mutex

// Rasterize 将画布栅格化为 RGBA 图像，尺寸与画布一致。可并发调用。
func Rasterize(c *canvas.Canvas) *image.RGBA {
	rasterMu.Lock()
	defer rasterMu.Unlock()
	return rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
}

// Encode 实现 Sink 接口。
func (s Raster) Encode(c *canvas.Canvas) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("画布为空")
	}
	if !lossless(s.Format) {
		return nil, fmt.Errorf("不支持的有损输出格式 %s", s.Format)
	}
	img := Rasterize(c)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, s.Format); err != nil {
		return nil, fmt.Errorf("编码 %s 失败: %w", s.Format, err)
	}
	if s.Format != imaging.PNG || s.DPI <= 0 {
		return buf.Bytes(), nil
	}
	out, _, err := EnsurePHYs(buf.Bytes(), s.DPI)
	if err != nil {
		return nil, fmt.Errorf("写入分辨率失败: %w", err)
	}
	return out, nil
}

// FormatFromPath 根据文件扩展名选择无损格式，未知扩展名时使用 PNG。
func FormatFromPath(path string) (imaging.Format, error) {
	if filepath.Ext(path) == "" {
		return imaging.PNG, nil
	}
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return imaging.PNG, fmt.Errorf("无法识别输出格式 %s: %w", path, err)
	}
	if !lossless(f) {
		return imaging.PNG, fmt.Errorf("输出格式 %s 为有损格式，请使用 png、tiff 或 bmp", strings.ToLower(f.String()))
	}
	return f, nil
}

func lossless(f imaging.Format) bool {
	switch f {
	case imaging.PNG, imaging.TIFF, imaging.BMP:
		return true
	default:
		return false
	}
}

// ParseFormat 将配置中的格式名称（png、tiff、bmp）转换为编码格式。
func ParseFormat(name string) (imaging.Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "png":
		return imaging.PNG, nil
	case "tif", "tiff":
		return imaging.TIFF, nil
	case "bmp":
		return imaging.BMP, nil
	default:
		return imaging.PNG, fmt.Errorf("不支持的输出格式 %q，请使用 png、tiff 或 bmp", name)
	}
}

// Ext 返回格式对应的文件扩展名（含点号）。
func Ext(f imaging.Format) string {
	switch f {
	case imaging.TIFF:
		return ".tif"
	case imaging.BMP:
		return ".bmp"
	default:
		return ".png"
	}
}
