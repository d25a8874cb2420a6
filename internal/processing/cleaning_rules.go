package processing

import (
	"regexp"
	"strings"
)

// CleaningRule is a single text-cleaning transformation. Rules are pure
// string functions; the Normalizer decides order and enablement.
type CleaningRule interface {
	Name() string
	Description() string
	Apply(text string) string
}

var (
	// Any scheme://-prefixed run of non-whitespace.
	urlPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://\S+`)

	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// URLRemovalRule strips URLs out of corpus lines. Bare domains without
// a scheme are left alone; they read as text, not links.
type URLRemovalRule struct{}

func (r *URLRemovalRule) Name() string { return "url_removal" }

func (r *URLRemovalRule) Description() string {
	return "Removes scheme://-prefixed URLs from text"
}

func (r *URLRemovalRule) Apply(text string) string {
	return urlPattern.ReplaceAllString(text, "")
}

// EmailRemovalRule strips email addresses from corpus lines.
type EmailRemovalRule struct{}

func (r *EmailRemovalRule) Name() string { return "email_removal" }

func (r *EmailRemovalRule) Description() string {
	return "Removes email addresses from text"
}

func (r *EmailRemovalRule) Apply(text string) string {
	return emailPattern.ReplaceAllString(text, "")
}

// WhitespaceCollapseRule folds every whitespace run (spaces, tabs,
// newlines) into a single space and trims the ends. It runs last so the
// gaps left by the removal rules collapse too; running it first would
// leave double spaces behind excised URLs and break idempotence.
type WhitespaceCollapseRule struct{}

func (r *WhitespaceCollapseRule) Name() string { return "whitespace_collapse" }

func (r *WhitespaceCollapseRule) Description() string {
	return "Collapses whitespace runs to single spaces and trims the ends"
}

func (r *WhitespaceCollapseRule) Apply(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}
