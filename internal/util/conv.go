package util

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseID 接受十进制字符串或 JSON 数字形式的正整数 id
func ParseID(v interface{}) (uint, error) {
	switch x := v.(type) {
	case string:
		id, err := strconv.ParseUint(strings.TrimSpace(x), 10, 32)
		if err != nil || id == 0 {
			return 0, fmt.Errorf("invalid id %q", x)
		}
		return uint(id), nil
	case float64:
		if x <= 0 || x != math.Trunc(x) || x > math.MaxUint32 {
			return 0, fmt.Errorf("invalid id %v", x)
		}
		return uint(x), nil
	case json.Number:
		return ParseID(x.String())
	case int:
		if x <= 0 {
			return 0, fmt.Errorf("invalid id %d", x)
		}
		return uint(x), nil
	case uint:
		if x == 0 {
			return 0, fmt.Errorf("invalid id 0")
		}
		return x, nil
	default:
		return 0, fmt.Errorf("invalid id %v", v)
	}
}
