package layout

import (
	"sort"
	"strings"
)

// DefaultTitle 为未指定标题时使用的信息框标题。
const DefaultTitle = "Verokarhut"

// DefaultPreset 为默认预设名称。
const DefaultPreset = "classic"

func classicPalette() Palette {
	return Palette{
		Background: mustHex("#F9F7F1"), // 旧纸色
		Text:       mustHex("#2A2A2A"),
		Accent:     mustHex("#800000"),
		Border:     mustHex("#555555"),
		Rule:       mustHex("#DDDDDD"),
		Muted:      mustHex("#666666"),
	}
}

// Classic 返回以 800px 为参考宽度的经典双线边框样式。
func Classic() Config {
	return Config{
		Name:           "classic",
		Title:          DefaultTitle,
		ReferenceWidth: 800,
		Palette:        classicPalette(),

		Padding:      60,
		HeaderSpace:  80,
		BottomMargin: 60,

		RowHeightMain: 40,
		GapAfterMain:  15,
		RowHeightSub:  35,

		IndentMain:    20,
		IndentText:    70,
		IndentSub:     90,
		IndentSubText: 150,
		RuleOffset:    5,
		RuleInset:     20,

		BorderOuter:      15,
		BorderInner:      19,
		BorderOuterWidth: 2,
		BorderInnerWidth: 1,

		TitleSize: 42,
		MainSize:  28,
		SubSize:   26,
	}
}

// Compact 返回以 600px 为参考宽度、行距更紧凑的样式。
func Compact() Config {
	return Config{
		Name:           "compact",
		Title:          DefaultTitle,
		ReferenceWidth: 600,
		Palette:        classicPalette(),

		Padding:      40,
		HeaderSpace:  64,
		BottomMargin: 40,

		RowHeightMain: 32,
		GapAfterMain:  10,
		RowHeightSub:  26,

		IndentMain:    12,
		IndentText:    52,
		IndentSub:     64,
		IndentSubText: 110,
		RuleOffset:    4,
		RuleInset:     12,

		BorderOuter:      10,
		BorderInner:      13,
		BorderOuterWidth: 2,
		BorderInnerWidth: 1,

		TitleSize: 32,
		MainSize:  22,
		SubSize:   19,
	}
}

// Slate 沿用经典几何，改用冷色调配色。
func Slate() Config {
	cfg := Classic()
	cfg.Name = "slate"
	cfg.Palette = Palette{
		Background: mustHex("#FFFFFF"),
		Text:       mustHex("#1F2933"),
		Accent:     mustHex("#1F4E79"),
		Border:     mustHex("#3E4C59"),
		Rule:       mustHex("#D9E2EC"),
		Muted:      mustHex("#616E7C"),
	}
	return cfg
}

var presets = map[string]func() Config{
	"classic": Classic,
	"compact": Compact,
	"slate":   Slate,
}

// Preset 按名称返回预设（大小写不敏感）。每次调用都返回新的副本。
func Preset(name string) (Config, bool) {
	fn, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Config{}, false
	}
	return fn(), true
}

// PresetNames 返回排序后的预设名称。
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
