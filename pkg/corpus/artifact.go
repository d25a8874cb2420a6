package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Raw artifact format markers. The cleaner treats lines starting with
// any of these prefixes as structure, not content.
const (
	CommentPrefix       = "#"
	BlockMarkerPrefix   = "==="
	HeadingMarkerPrefix = "---"

	headingsHeader = "--- HEADINGS ---"

	// TimestampLayout names artifact files; both sidecars of one run
	// share the same stamp so they can be correlated.
	TimestampLayout = "20060102_150405"

	headerDateLayout = "2006-01-02 15:04:05"
)

// blockDelimiter closes each source block in the raw artifact.
var blockDelimiter = strings.Repeat("=", 60)

// RawFileName returns the raw artifact name for a run timestamp,
// e.g. raw_telugu_20250821_151107.txt.
func RawFileName(scriptName string, ts time.Time) string {
	return fmt.Sprintf("raw_%s_%s.txt", scriptName, ts.Format(TimestampLayout))
}

// MetadataFileName returns the metadata sidecar name for a run timestamp.
func MetadataFileName(ts time.Time) string {
	return fmt.Sprintf("metadata_%s.json", ts.Format(TimestampLayout))
}

// CleanFileName returns the cleaned artifact name for a run timestamp.
func CleanFileName(scriptName string, ts time.Time) string {
	return fmt.Sprintf("clean_%s_%s.txt", scriptName, ts.Format(TimestampLayout))
}

// StatsFileName returns the cleaning stats sidecar name, the cleaned
// artifact name with a .json extension.
func StatsFileName(scriptName string, ts time.Time) string {
	return fmt.Sprintf("clean_%s_%s.json", scriptName, ts.Format(TimestampLayout))
}

// RenderRawArtifact builds the raw text artifact for a result set:
// two comment header lines, then one labeled block per successful
// result with content. Failed or empty results contribute nothing.
func RenderRawArtifact(results []FetchResult, scriptName string, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s Corpus Collection - %s\n", CommentPrefix, titleCase(scriptName), now.Format(headerDateLayout))
	fmt.Fprintf(&b, "%s Total sources: %d\n\n", CommentPrefix, countSuccessful(results))

	for i := range results {
		r := &results[i]
		if !r.HasContent() {
			continue
		}

		fmt.Fprintf(&b, "\n=== SOURCE: %s ===\n\n", r.URL)

		for _, para := range r.Paragraphs {
			b.WriteString(para)
			b.WriteByte('\n')
		}

		if len(r.Headings) > 0 {
			b.WriteString("\n" + headingsHeader + "\n")
			for _, heading := range r.Headings {
				b.WriteString(heading)
				b.WriteByte('\n')
			}
		}

		b.WriteString("\n" + blockDelimiter + "\n")
	}

	return b.String()
}

// EncodeSidecar renders a JSON sidecar: two-space indent, non-ASCII
// preserved (Telugu text must stay readable in the file).
func EncodeSidecar(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode sidecar: %w", err)
	}
	return buf.Bytes(), nil
}

func countSuccessful(results []FetchResult) int {
	n := 0
	for i := range results {
		if results[i].Success {
			n++
		}
	}
	return n
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
