package parser

import "strings"

const fence = "```"

// Sanitize 去掉模型回复外层的 ``` 代码块包裹
// 以 ``` 开头时删除首行与末行，其余情况原样返回，因此重复调用结果不变
func Sanitize(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, fence) {
		return text
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) == 1 {
		// ```json {...}``` 挤在同一行
		s := strings.TrimPrefix(trimmed, fence+"json")
		s = strings.TrimPrefix(s, fence)
		s = strings.TrimSuffix(s, fence)
		return strings.TrimSpace(s)
	}
	if len(lines) == 2 {
		return strings.TrimSpace(strings.TrimSuffix(lines[1], fence))
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
