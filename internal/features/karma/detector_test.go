package karma

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParseDelta(t *testing.T) {
	cases := []struct {
		text string
		want int64
	}{
		{"+1", 1},
		{"-1", -1},
		{"  +1  ", 1},
		{"\n-1\t", -1},
		{"+2", 0},
		{"-2", 0},
		{"+1!", 0},
		{"++1", 0},
		{"спасибо", 0},
		{"", 0},
		{"1", 0},
		{"+ 1", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseDelta(c.text), "текст %q", c.text)
	}
}

// Любая строка, кроме буквальных "+1"/"-1" после обрезки пробелов,
// не является оценкой.
func TestParseDeltaIgnoresArbitraryTextProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		delta := ParseDelta(text)

		switch strings.TrimSpace(text) {
		case "+1":
			if delta != 1 {
				t.Fatalf("ожидали +1 для %q, получили %d", text, delta)
			}
		case "-1":
			if delta != -1 {
				t.Fatalf("ожидали -1 для %q, получили %d", text, delta)
			}
		default:
			if delta != 0 {
				t.Fatalf("ожидали 0 для %q, получили %d", text, delta)
			}
		}
	})
}
