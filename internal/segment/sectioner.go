package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Sectioner splits a document into large sections for downstream analysis
// batches. This is independent of synthesis chunk sizing: sections are
// bounded by what an analysis model can take in one request, not by audio
// memory.
type Sectioner struct {
	MinChars    int
	MaxChars    int
	TargetChars int
}

// NewSectioner returns a sectioner with the default character band.
func NewSectioner() *Sectioner {
	return &Sectioner{
		MinChars:    2000,
		MaxChars:    4000,
		TargetChars: 3000,
	}
}

// Chapter and list heading families, tried in order.
var chapterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`第[一二三四五六七八九十百千零\d]+章[^\n]*`),
	regexp.MustCompile(`第[一二三四五六七八九十百千零\d]+节[^\n]*`),
	regexp.MustCompile(`Chapter\s*\d+[^\n]*`),
	regexp.MustCompile(`[一二三四五六七八九十]+、[^\n]*`),
	regexp.MustCompile(`\d+\.[^\n]*`),
}

var sceneBoundary = regexp.MustCompile(`\n\s*\n\s*\n+`)

// Section splits text by chapter headings when at least two are found and
// every resulting section fits the size band; otherwise it falls through to
// blank-line-run splitting and finally sentence-aware length cuts.
func (s *Sectioner) Section(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	chapters := s.splitByChapters(text)

	if s.segmentsGood(chapters) {
		return chapters
	}

	var segments []string
	for _, chapter := range chapters {
		if utf8.RuneCountInString(chapter) > s.MaxChars {
			segments = append(segments, s.splitByScenes(chapter)...)
		} else {
			segments = append(segments, chapter)
		}
	}

	var final []string
	for _, seg := range segments {
		if utf8.RuneCountInString(seg) > s.MaxChars {
			final = append(final, s.splitByLength(seg)...)
		} else {
			final = append(final, seg)
		}
	}

	return final
}

func (s *Sectioner) splitByChapters(text string) []string {
	for _, pattern := range chapterPatterns {
		matches := pattern.FindAllStringIndex(text, -1)
		if len(matches) < 2 {
			continue
		}

		var segments []string
		lastEnd := 0
		for _, m := range matches {
			if m[0] > lastEnd {
				segments = append(segments, strings.TrimSpace(text[lastEnd:m[0]]))
			}
			lastEnd = m[0]
		}
		if lastEnd < len(text) {
			segments = append(segments, strings.TrimSpace(text[lastEnd:]))
		}

		if len(segments) > 0 && s.allValid(segments) {
			return segments
		}
	}

	return []string{text}
}

func (s *Sectioner) splitByScenes(text string) []string {
	var out []string
	for _, seg := range sceneBoundary.Split(text, -1) {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// splitByLength packs sentences up to the target size, keeping the
// terminating punctuation attached.
func (s *Sectioner) splitByLength(text string) []string {
	var segments []string
	var cur string

	for _, sentence := range sentenceUnits(text) {
		if cur != "" && utf8.RuneCountInString(cur)+utf8.RuneCountInString(sentence) > s.TargetChars {
			segments = append(segments, strings.TrimSpace(cur))
			cur = ""
		}
		cur += sentence
	}
	if trimmed := strings.TrimSpace(cur); trimmed != "" {
		segments = append(segments, trimmed)
	}

	return segments
}

func (s *Sectioner) segmentsGood(segments []string) bool {
	if len(segments) < 2 {
		return false
	}
	for _, seg := range segments {
		n := utf8.RuneCountInString(seg)
		if n < s.MinChars || n > s.MaxChars {
			return false
		}
	}
	return true
}

func (s *Sectioner) allValid(segments []string) bool {
	for _, seg := range segments {
		n := utf8.RuneCountInString(seg)
		if n < s.MinChars || n > s.MaxChars*2 {
			return false
		}
	}
	return true
}
