// Package karma — detector.go определяет, содержит ли сообщение оценку.
package karma

import "strings"

// ParseDelta разбирает текст ответа на сообщение.
// Только буквальные "+1" и "-1" (после обрезки пробелов) являются оценкой.
// Любой другой текст возвращает 0 — обычный трафик чата молча игнорируется.
func ParseDelta(text string) int64 {
	switch strings.TrimSpace(text) {
	case "+1":
		return 1
	case "-1":
		return -1
	default:
		return 0
	}
}
