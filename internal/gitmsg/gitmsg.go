// Package gitmsg converts between a commit's summary and description and the
// message stored in Git. Messages are written in the native subject/body form;
// the delimiter form produced by older servers is still understood on read.
package gitmsg

import (
	"fmt"
	"strings"
	"time"

	"fruitygit/internal/model"
)

const (
	legacySummaryEnd = " _summEnd_ "
	legacyIDEnd      = " _idEnd_ "
	legacyUserEnd    = " _usEnd_ "
	legacyDescEnd    = " _descEnd_ "
)

// Encode builds a Git message: summary, a blank line, then description.
func Encode(summary, description string) string {
	summary = strings.TrimSpace(summary)
	description = strings.TrimSpace(description)
	if description == "" {
		return summary
	}
	return summary + "\n\n" + description
}

// Decode splits a stored message into summary and description.
func Decode(message string) (summary, description string) {
	message = strings.TrimRight(message, "\n")
	if s, d, ok := strings.Cut(message, legacySummaryEnd); ok {
		return strings.TrimSpace(s), strings.TrimSpace(d)
	}
	// "x _summEnd_ " with an empty description loses its trailing space above.
	if s, ok := strings.CutSuffix(message, strings.TrimRight(legacySummaryEnd, " ")); ok {
		return strings.TrimSpace(s), ""
	}

	subject, body, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(subject), strings.TrimSpace(body)
}

// LegacyEntry renders a history entry the way the desktop client parses it.
func LegacyEntry(c model.Commit) string {
	return fmt.Sprintf("%s%s%s%s%s%s%s",
		c.ID, legacyIDEnd,
		c.Author, legacyUserEnd,
		legacyMessage(c), legacyDescEnd,
		c.Date.Format(time.RFC3339))
}

func legacyMessage(c model.Commit) string {
	return c.Summary + legacySummaryEnd + c.Description
}
