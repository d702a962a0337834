package domain

import (
	"fmt"
	"strings"
)

// TruncationNotice is appended inside the code block when a result body is cut.
const TruncationNotice = "... (truncated - too many lines)"

// FormattedMessage is a renderable command reply. It is implemented only by
// ErrorNotice and TextResult.
type FormattedMessage interface {
	formattedMessage()
}

// ErrorNotice is rendered as a structured panel (title, description, accent color).
type ErrorNotice struct {
	Title       string
	Description string
	Color       int
}

// TextResult is rendered as markdown: a bold heading, a fenced code block
// labeled with Language, and the URL of the full result.
type TextResult struct {
	Heading   string
	Language  string
	Body      string
	URL       string
	Truncated bool
}

func (ErrorNotice) formattedMessage() {}
func (TextResult) formattedMessage()  {}

// Markdown renders the result in chat markdown. Body must already be escaped
// so it cannot close the fence.
func (r TextResult) Markdown() string {
	var sb strings.Builder
	sb.WriteString("**" + r.Heading + "**\n")
	sb.WriteString("```" + r.Language + "\n")
	sb.WriteString(r.Body)
	if r.Truncated {
		sb.WriteString("\n" + TruncationNotice + "```\n")
		sb.WriteString("Full results: " + r.URL + " ")
		return sb.String()
	}
	sb.WriteString("```\n")
	sb.WriteString(r.URL)
	return sb.String()
}

// ColorHex formats the accent color as "#rrggbb".
func (n ErrorNotice) ColorHex() string {
	return fmt.Sprintf("#%06x", n.Color&0xffffff)
}
