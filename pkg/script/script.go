package script

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Block is a contiguous Unicode code point range for one writing system.
type Block struct {
	Name string `json:"name"`
	Lo   rune   `json:"lo"`
	Hi   rune   `json:"hi"`
}

// Registered script blocks, keyed by lowercase name. Telugu is the
// default target; the others cover scripts the collector is likely to
// be pointed at next.
var blocks = map[string]Block{
	"telugu":     {Name: "telugu", Lo: 0x0C00, Hi: 0x0C7F},
	"devanagari": {Name: "devanagari", Lo: 0x0900, Hi: 0x097F},
	"kannada":    {Name: "kannada", Lo: 0x0C80, Hi: 0x0CFF},
	"tamil":      {Name: "tamil", Lo: 0x0B80, Hi: 0x0BFF},
	"malayalam":  {Name: "malayalam", Lo: 0x0D00, Hi: 0x0D7F},
	"bengali":    {Name: "bengali", Lo: 0x0980, Hi: 0x09FF},
}

// Telugu is the default target block (U+0C00..U+0C7F).
var Telugu = blocks["telugu"]

// Lookup resolves a registered block by name (case-insensitive).
func Lookup(name string) (Block, error) {
	b, ok := blocks[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Block{}, fmt.Errorf("unknown script %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return b, nil
}

// Names returns the registered block names in sorted order.
func Names() []string {
	names := make([]string, 0, len(blocks))
	for name := range blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether r falls inside the block.
func (b Block) Contains(r rune) bool {
	return r >= b.Lo && r <= b.Hi
}

// Count returns the number of runes of s inside the block.
func (b Block) Count(s string) int {
	n := 0
	for _, r := range s {
		if b.Contains(r) {
			n++
		}
	}
	return n
}

// Classifier decides whether text is predominantly in one target script.
type Classifier struct {
	Block Block
}

// NewClassifier creates a classifier for the named script. An empty
// name selects Telugu.
func NewClassifier(name string) (*Classifier, error) {
	if strings.TrimSpace(name) == "" {
		return &Classifier{Block: Telugu}, nil
	}
	b, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return &Classifier{Block: b}, nil
}

// Ratio returns blockRunes/wordRunes for s. The numerator counts every
// rune inside the target block, combining marks included; the
// denominator counts word runes only (letters, numbers, underscore).
// Vowel signs are block runes but not word runes, so pure Telugu text
// can score above 1. Returns 0 when s has no word runes.
func (c *Classifier) Ratio(s string) float64 {
	scriptRunes, wordRunes := c.counts(s)
	if wordRunes == 0 {
		return 0
	}
	return float64(scriptRunes) / float64(wordRunes)
}

// Accepts reports whether s is in-script at the given threshold: s must
// be non-blank, contain at least one word rune, and score >= minRatio.
// Strings of pure punctuation or whitespace are rejected for any
// threshold.
func (c *Classifier) Accepts(s string, minRatio float64) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	scriptRunes, wordRunes := c.counts(s)
	if wordRunes == 0 {
		return false
	}
	return float64(scriptRunes)/float64(wordRunes) >= minRatio
}

func (c *Classifier) counts(s string) (scriptRunes, wordRunes int) {
	for _, r := range s {
		if c.Block.Contains(r) {
			scriptRunes++
		}
		if isWordRune(r) {
			wordRunes++
		}
	}
	return scriptRunes, wordRunes
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
