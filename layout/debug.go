package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将排版结果输出为 JSON，便于调试或对比两次排版。
func WriteDebugJSON(spec *Spec, path string) error {
	if spec == nil {
		return nil
	}
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
