package tools

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func compileSchema(data map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(string(raw))); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

// sanitizeArgs 递归遍历参数，将字符串形式的数字转为 float64，
// 兼容上游有时返回 "3" 而非 3 的情况。
func sanitizeArgs(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = sanitizeArgs(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = sanitizeArgs(child)
		}
		return out
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" || trimmed != val {
			return val
		}
		// 6 位纯数字是股票代码，不能当数值处理（会丢前导零）。
		if len(trimmed) == 6 && strings.IndexFunc(trimmed, func(r rune) bool { return r < '0' || r > '9' }) < 0 {
			return val
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return v
	}
}
