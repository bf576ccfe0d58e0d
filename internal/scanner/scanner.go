// Package scanner 检测消息中的目标词出现次数
package scanner

import (
	"strings"
	"unicode"
)

// targets 包含用非字母字符替换 n 的变体写法
var targets = []string{
	"nigga", `/\/igga`, `|\/igga`,
	"nigger", `/\/igger`, `|\/igger`,
}

// Normalize 转小写并去掉所有 Unicode 空白字符
func Normalize(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(text))
}

// Count 返回消息里目标词的出现次数。
// 每个目标词独立统计后求和，不同变体在同一片段上重叠时会被重复计数。
func Count(text string) int {
	msg := Normalize(text)
	if msg == "" {
		return 0
	}
	return countTargets(msg, targets)
}

func countTargets(msg string, words []string) int {
	count := 0
	for _, word := range words {
		count += strings.Count(msg, word)
	}
	return count
}
