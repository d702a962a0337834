package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextResultMarkdownFull(t *testing.T) {
	r := TextResult{
		Heading:  "Result Of cht.sh",
		Language: "python",
		Body:     "print('hi')\n",
		URL:      "https://cheat.sh/python/print",
	}
	want := "**Result Of cht.sh**\n```python\nprint('hi')\n```\nhttps://cheat.sh/python/print"
	assert.Equal(t, want, r.Markdown())
}

func TestTextResultMarkdownTruncated(t *testing.T) {
	r := TextResult{
		Heading:   "Result Of cht.sh",
		Language:  "python",
		Body:      "abc",
		URL:       "https://cheat.sh/python/x",
		Truncated: true,
	}
	got := r.Markdown()
	assert.True(t, strings.HasPrefix(got, "**Result Of cht.sh**\n```python\nabc\n"))
	assert.Contains(t, got, TruncationNotice+"```\n")
	assert.True(t, strings.HasSuffix(got, "Full results: https://cheat.sh/python/x "))
}

func TestErrorNoticeColorHex(t *testing.T) {
	assert.Equal(t, "#cd6d6d", ErrorNotice{Color: 0xcd6d6d}.ColorHex())
	assert.Equal(t, "#000000", ErrorNotice{}.ColorHex())
	assert.Equal(t, "#00ff0a", ErrorNotice{Color: 0x00ff0a}.ColorHex())
}

func TestFormattedMessageVariants(t *testing.T) {
	msgs := []FormattedMessage{ErrorNotice{}, TextResult{}}
	var notices, texts int
	for _, m := range msgs {
		switch m.(type) {
		case ErrorNotice:
			notices++
		case TextResult:
			texts++
		}
	}
	assert.Equal(t, 1, notices)
	assert.Equal(t, 1, texts)
}
