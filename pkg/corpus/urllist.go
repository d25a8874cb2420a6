package corpus

import (
	"strings"
)

// SampleURLs seed a fresh deployment with Telugu Wikipedia pages.
var SampleURLs = []string{
	"https://te.wikipedia.org/wiki/తెలుగు",
	"https://te.wikipedia.org/wiki/తెలంగాణ",
	"https://te.wikipedia.org/wiki/భారతదేశం",
	"https://te.wikipedia.org/wiki/హైదరాబాద్",
	"https://te.wikipedia.org/wiki/విశాఖపట్నం",
}

// ParseURLList extracts URLs from url-list file content: one URL per
// line, blank lines and "#" comment lines skipped, surrounding
// whitespace trimmed. Duplicates are kept; the collector fetches and
// counts them as many times as they appear.
func ParseURLList(content string) []string {
	urls := []string{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}
		urls = append(urls, line)
	}
	return urls
}

// FormatURLList renders a url-list file with the standard comment
// header followed by one URL per line.
func FormatURLList(urls []string) string {
	var b strings.Builder
	b.WriteString("# Telugu URLs for corpus collection\n")
	b.WriteString("# Add one URL per line\n\n")
	for _, u := range urls {
		b.WriteString(strings.TrimSpace(u))
		b.WriteByte('\n')
	}
	return b.String()
}
