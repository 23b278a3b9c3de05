package cleaning

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

type Normalizer struct {
	// A line is noise when it occurs more than RepeatThreshold times
	// and is shorter than MaxNoiseLineLength runes.
	RepeatThreshold    int
	MaxNoiseLineLength int
	// StripPublisherNoise enables journal boilerplate rules (DOI lines,
	// copyright notices, "ORIGINAL PAPER" banners, ...).
	StripPublisherNoise bool
}

func NewNormalizer(repeatThreshold, maxNoiseLineLength int, stripPublisherNoise bool) *Normalizer {
	if repeatThreshold <= 0 {
		repeatThreshold = 5
	}
	if maxNoiseLineLength <= 0 {
		maxNoiseLineLength = 100
	}
	return &Normalizer{
		RepeatThreshold:     repeatThreshold,
		MaxNoiseLineLength:  maxNoiseLineLength,
		StripPublisherNoise: stripPublisherNoise,
	}
}

var (
	pageMarkerRe  = regexp.MustCompile(`^-{2,}\s*Page\s+\d+\s*-{2,}$`)
	pageNumberRe  = regexp.MustCompile(`(?i)^page\s+\d+(\s+of\s+\d+)?$`)
	numericLineRe = regexp.MustCompile(`^\d+$`)
	hyphenWrapRe  = regexp.MustCompile(`(\p{L})-[ \t]*\n[ \t]*(\p{L})`)
	spaceRunRe    = regexp.MustCompile(`[ \t\x{00A0}]+`)

	publisherNoise = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^Journal of .*`),
		regexp.MustCompile(`(?i)^ORIGINAL PAPER$`),
		regexp.MustCompile(`.*Page \d+ of \d+.*`),
		regexp.MustCompile(`^https://doi\.org/.*`),
		regexp.MustCompile(`(?i)^(Accepted:|Published online:).*`),
		regexp.MustCompile(`^© The Author\(s\)\s\d{4}`),
		regexp.MustCompile(`^Vol\.:\(\d+\)$`),
		regexp.MustCompile(`^\* .*@.*\..*`),
		regexp.MustCompile(`^Extended author information available.*`),
		regexp.MustCompile(`^Publisher’s Note Springer Nature remains neutral.*`),
		regexp.MustCompile(`(?i)^Authors and Affiliations.*`),
	}
)

// Normalize cleans raw layout text. Line filters run first, while repeated
// headers and footers are still separate lines; paragraph reflow runs last.
func (n *Normalizer) Normalize(raw string) string {
	text := sanitize(raw)
	if strings.TrimSpace(text) == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	noise := n.repeatedLines(lines)

	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			kept = append(kept, "")
			continue
		}
		if n.isNoise(trimmed, noise) {
			continue
		}
		kept = append(kept, line)
	}

	text = strings.Join(kept, "\n")
	text = hyphenWrapRe.ReplaceAllString(text, "$1$2")
	return reflow(text)
}

func (n *Normalizer) repeatedLines(lines []string) map[string]struct{} {
	counts := make(map[string]int)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		counts[trimmed]++
	}
	noise := make(map[string]struct{})
	for line, count := range counts {
		if count > n.RepeatThreshold && utf8.RuneCountInString(line) < n.MaxNoiseLineLength {
			noise[line] = struct{}{}
		}
	}
	return noise
}

func (n *Normalizer) isNoise(line string, repeated map[string]struct{}) bool {
	if _, ok := repeated[line]; ok {
		return true
	}
	if pageMarkerRe.MatchString(line) || pageNumberRe.MatchString(line) || numericLineRe.MatchString(line) {
		return true
	}
	if n.StripPublisherNoise {
		for _, re := range publisherNoise {
			if re.MatchString(line) {
				return true
			}
		}
	}
	return false
}

// sanitize applies NFC, unifies line endings, turns form feeds into line
// breaks and drops control characters.
func sanitize(raw string) string {
	s := norm.NFC.String(raw)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\f", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// reflow joins the lines of each paragraph with single spaces and separates
// paragraphs with exactly one blank line.
func reflow(text string) string {
	var (
		paragraphs []string
		current    []string
	)
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return strings.Join(paragraphs, "\n\n")
}
