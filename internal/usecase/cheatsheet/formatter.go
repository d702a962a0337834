package cheatsheet

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode/utf8"

	"cheatbot/internal/domain"
)

// NotFoundMarker prefixes the cheat.sh body when no sheet matches the query.
// The double space is part of the upstream output.
const NotFoundMarker = "#  404 NOT FOUND"

// Message size limits. A chat message holds at most ~2000 characters; the
// markup around the body plus the URL must fit in what is left.
const (
	messageCeiling = 1986
	maxBodySpace   = 1000
)

var (
	ansiRe         = regexp.MustCompile(`\x1b\[.*?m`)
	backtickEscape = strings.NewReplacer("`", "\\`")
)

// Sanitize strips ANSI color sequences and escapes backticks so the text can
// sit inside a fenced code block.
func Sanitize(raw string) string {
	return backtickEscape.Replace(ansiRe.ReplaceAllString(raw, ""))
}

// BodySpace returns how many characters of body fit in a message next to url.
func BodySpace(url string) int {
	space := min(messageCeiling-utf8.RuneCountInString(url), maxBodySpace)
	return max(space, 0)
}

// FormatterConfig holds the presentation settings of the formatter.
type FormatterConfig struct {
	Prefix           string   // command prefix shown in usage examples
	SupportChannelID string   // channel referenced when a lookup keeps failing
	ErrorReplies     []string // ErrorNotice titles, one picked per call
	Color            int      // ErrorNotice accent color
	Heading          string   // bold line above the code block
	Language         string   // code block language label
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithRandom replaces the source used to pick ErrorNotice titles.
// intn must return a value in [0, n).
func WithRandom(intn func(n int) int) FormatterOption {
	return func(f *Formatter) { f.intn = intn }
}

// Formatter turns sanitized cheat.sh output into a renderable message.
// It holds no mutable state and is safe for concurrent use as long as the
// random source is.
type Formatter struct {
	cfg   FormatterConfig
	usage string
	intn  func(n int) int
}

// NewFormatter creates a Formatter. The default random source is math/rand/v2.
func NewFormatter(cfg FormatterConfig, opts ...FormatterOption) *Formatter {
	f := &Formatter{
		cfg:   cfg,
		usage: usageText(cfg.Prefix, cfg.SupportChannelID),
		intn:  rand.IntN,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Format builds the reply for a sanitized body fetched from url.
func (f *Formatter) Format(url, body string) domain.FormattedMessage {
	if strings.HasPrefix(body, NotFoundMarker) {
		return f.errorNotice()
	}

	result := domain.TextResult{
		Heading:  f.cfg.Heading,
		Language: f.cfg.Language,
		Body:     body,
		URL:      url,
	}

	space := BodySpace(url)
	if utf8.RuneCountInString(body) > space {
		result.Body = firstRunes(body, space)
		result.Truncated = true
	}
	return result
}

func (f *Formatter) errorNotice() domain.ErrorNotice {
	var title string
	if n := len(f.cfg.ErrorReplies); n > 0 {
		title = f.cfg.ErrorReplies[f.intn(n)]
	}
	return domain.ErrorNotice{
		Title:       title,
		Description: f.usage,
		Color:       f.cfg.Color,
	}
}

func usageText(prefix, supportChannelID string) string {
	return fmt.Sprintf(`
Unknown cheat sheet. Please try to reformulate your query.

**Examples**:
`+"```md"+`
%[1]scht read json
%[1]scht hello world
%[1]scht lambda
`+"```"+`
If the problem persists send a message in <#%[2]s>
`, prefix, supportChannelID)
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
