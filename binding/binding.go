package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ByLCY/infobox/outline"
)

var exprPattern = regexp.MustCompile(`\$\{\s*([^}]*?)\s*\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 支持 map 键与数组下标（例如 ${rates[0].name}）；路径不存在时保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := exprPattern.FindStringSubmatch(match)[1]
		if path == "" {
			return match
		}
		if val, ok := Lookup(data, path); ok {
			return format(val)
		}
		return match
	})
}

// Apply 返回插值后的标题与条目副本，原切片不被修改。
func Apply(title string, items []outline.Item, data any) (string, []outline.Item) {
	if data == nil {
		return title, items
	}
	out := make([]outline.Item, len(items))
	for i, it := range items {
		it.Label = Interpolate(it.Label, data)
		out[i] = it
	}
	return Interpolate(title, data), out
}

// Lookup 按点号路径在 JSON 解码后的数据中取值。
func Lookup(data any, path string) (any, bool) {
	current := data
	for rest := path; rest != ""; {
		var segment string
		segment, rest, _ = strings.Cut(rest, ".")
		name, index, hasIndex := strings.Cut(segment, "[")
		if name != "" {
			obj, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}
			if current, ok = obj[name]; !ok {
				return nil, false
			}
		}
		for hasIndex {
			var idxStr string
			idxStr, index, hasIndex = strings.Cut(index, "]")
			if !hasIndex {
				return nil, false
			}
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			arr, ok := current.([]any)
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
			index, hasIndex = strings.CutPrefix(index, "[")
		}
	}
	return current, true
}

// format 避免 JSON 数字以科学计数法输出。
func format(val any) string {
	switch v := val.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
