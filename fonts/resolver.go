package fonts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/tdewolff/canvas"
	"go.uber.org/zap"

	"github.com/ByLCY/infobox/layout"
)

// Role 表示字体的用途。
type Role int

const (
	RoleTitle Role = iota
	RoleMain
	RoleSub
)

func (r Role) String() string {
	switch r {
	case RoleTitle:
		return "title"
	case RoleMain:
		return "main"
	case RoleSub:
		return "sub"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Style 返回该用途对应的字重：标题与主条目为粗体，子条目为常规体。
func (r Role) Style() canvas.FontStyle {
	if r == RoleSub {
		return canvas.FontRegular
	}
	return canvas.FontBold
}

// Tier 表示字体来自解析链的哪一级。
type Tier int

const (
	TierFile Tier = iota
	TierSystem
	TierBuiltin
)

func (t Tier) String() string {
	switch t {
	case TierFile:
		return "file"
	case TierSystem:
		return "system"
	case TierBuiltin:
		return "builtin"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Paths 为调用方指定的字体文件。标题与主条目使用 Bold，子条目使用 Regular。
type Paths struct {
	Bold    string
	Regular string
}

// For 返回 role 对应的字体文件路径。
func (p Paths) For(role Role) string {
	if role.Style() == canvas.FontBold {
		return p.Bold
	}
	return p.Regular
}

// DefaultSystemNames 在字体文件不可用时按顺序尝试。
var DefaultSystemNames = []string{
	"Minion Pro",
	"Times New Roman",
	"Liberation Serif",
	"DejaVu Serif",
	"Nimbus Roman",
}

// Source 抽象字体数据的来源，测试可借此模拟没有任何字体的主机。
type Source interface {
	Exists(path string) bool
	Load(family *canvas.FontFamily, path string, style canvas.FontStyle) error
	LoadSystem(family *canvas.FontFamily, name string, style canvas.FontStyle) error
}

// OSSource 从磁盘读取字体文件，并通过 canvas 查找系统已安装字体。
// 相对路径以 BaseDir 为基准。
type OSSource struct {
	BaseDir string
}

var _ Source = OSSource{}

func (s OSSource) path(p string) string {
	if s.BaseDir != "" && !filepath.IsAbs(p) {
		return filepath.Join(s.BaseDir, p)
	}
	return p
}

// Exists 判断 p 是否为普通文件。
func (s OSSource) Exists(p string) bool {
	fi, err := os.Stat(s.path(p))
	return err == nil && fi.Mode().IsRegular()
}

// Load 读取 p 并以 style 加入 family。
func (s OSSource) Load(family *canvas.FontFamily, p string, style canvas.FontStyle) error {
	data, err := os.ReadFile(s.path(p))
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

// LoadSystem 按字族名查找已安装字体。
func (s OSSource) LoadSystem(family *canvas.FontFamily, name string, style canvas.FontStyle) error {
	return family.LoadSystemFont(name, style)
}

// Face 为解析完成、带像素字号的字体，用于测量文本并生成绘制用的 canvas 字体。
type Face struct {
	family *canvas.FontFamily
	style  canvas.FontStyle

	Role   Role
	SizePx int
	Tier   Tier
	Name   string // 文件路径、系统字族名或 BuiltinName
}

// FontFace 返回以 col 着色的 canvas 字体。
func (f *Face) FontFace(col color.Color) *canvas.FontFace {
	return f.family.Face(layout.PxToPt(f.SizePx), col, f.style, canvas.FontNormal)
}

// Measure 返回 s 的前进宽度与行高（像素）。
func (f *Face) Measure(s string) (w, h float64) {
	face := f.FontFace(canvas.Black)
	return face.TextWidth(s), face.Metrics().LineHeight
}

// Ascent 返回行顶部到基线的距离。
func (f *Face) Ascent() float64 {
	return f.FontFace(canvas.Black).Metrics().Ascent
}

// Set 为一次渲染所需的三种字体。
type Set struct {
	Title *Face
	Main  *Face
	Sub   *Face
}

// Resolver 将 (用途, 字号) 解析为可用字体。内置字体总能加载，因此 Resolve 不会失败。
type Resolver struct {
	paths       Paths
	systemNames []string
	source      Source
	log         *zap.Logger
}

// Option 用于配置 Resolver。
type Option func(*Resolver)

// WithSource 替换默认的文件系统来源。
func WithSource(src Source) Option {
	return func(r *Resolver) { r.source = src }
}

// WithSystemNames 替换 DefaultSystemNames，传入空列表即跳过系统字体。
func WithSystemNames(names []string) Option {
	return func(r *Resolver) { r.systemNames = append([]string(nil), names...) }
}

// WithLogger 设置报告降级的日志。
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver 按给定字体文件创建解析器。
func NewResolver(paths Paths, opts ...Option) *Resolver {
	r := &Resolver{
		paths:       paths,
		systemNames: DefaultSystemNames,
		source:      OSSource{},
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve 返回 role 在 sizePx 下的字体，小于 1 的字号按 1 处理。
func (r *Resolver) Resolve(role Role, sizePx int) *Face {
	if sizePx < 1 {
		sizePx = 1
	}
	style := role.Style()
	log := r.log.With(zap.Stringer("role", role), zap.Int("size", sizePx))

	if p := r.paths.For(role); p != "" {
		if !r.source.Exists(p) {
			log.Warn("Font file not found, falling back", zap.String("path", p))
		} else {
			family := canvas.NewFontFamily(role.String())
			if err := r.source.Load(family, p, style); err != nil {
				log.Warn("Unable to load font file, falling back", zap.String("path", p), zap.Error(err))
			} else {
				return &Face{family: family, style: style, Role: role, SizePx: sizePx, Tier: TierFile, Name: p}
			}
		}
	}

	for _, name := range r.systemNames {
		family := canvas.NewFontFamily(name)
		if err := r.source.LoadSystem(family, name, style); err != nil {
			log.Debug("System font unavailable", zap.String("name", name), zap.Error(err))
			continue
		}
		return &Face{family: family, style: style, Role: role, SizePx: sizePx, Tier: TierSystem, Name: name}
	}

	log.Debug("Using built-in font")
	return builtinFace(role, sizePx)
}

func builtinFace(role Role, sizePx int) *Face {
	style := role.Style()
	family := canvas.NewFontFamily(BuiltinName)
	if err := family.LoadFont(Builtin(style), 0, style); err != nil {
		// 内嵌字体随程序发布
		panic(fmt.Sprintf("fonts: built-in font does not load: %v", err))
	}
	return &Face{family: family, style: style, Role: role, SizePx: sizePx, Tier: TierBuiltin, Name: BuiltinName}
}

// ResolveSet 按缩放后的字号解析标题、主条目与子条目字体。
func (r *Resolver) ResolveSet(m layout.Metrics) *Set {
	return &Set{
		Title: r.Resolve(RoleTitle, m.TitleSize),
		Main:  r.Resolve(RoleMain, m.MainSize),
		Sub:   r.Resolve(RoleSub, m.SubSize),
	}
}
