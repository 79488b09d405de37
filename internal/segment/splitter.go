// Package segment splits long-form text into bounded chunks for synthesis
// and into larger sections for downstream analysis batches. Chunk splitting
// guarantees exact reconstruction: the concatenation of the returned chunks
// always equals the input.
package segment

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

const backscanWindow = 50 // runes searched backwards from a hard cut point

var paragraphBoundary = regexp.MustCompile(`\n{2,}`)

// Segment splits text into chunks of at most maxChars characters, trying
// progressively finer boundaries: whole paragraphs, then sentences, then
// clauses, and finally a hard length cut. The first strategy whose chunks
// all fit wins.
func Segment(text string, maxChars int) []string {
	if text == "" {
		return nil
	}
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}

	for _, split := range []func(string) []string{
		paragraphUnits,
		sentenceUnits,
		clauseUnits,
	} {
		chunks := pack(split(text), maxChars)
		if allWithin(chunks, maxChars) {
			return chunks
		}
	}

	return hardCut(text, maxChars)
}

// paragraphUnits splits after blank-line runs, keeping each run attached to
// the preceding paragraph so that concatenation reproduces the input.
func paragraphUnits(text string) []string {
	return splitAfterMatches(text, paragraphBoundary.FindAllStringIndex(text, -1))
}

func sentenceUnits(text string) []string {
	return splitAfterRunes(text, func(r rune) bool {
		switch r {
		case '。', '！', '？', '.', '!', '?':
			return true
		}
		return false
	})
}

func clauseUnits(text string) []string {
	return splitAfterRunes(text, func(r rune) bool {
		switch r {
		case '，', '、', '；', ',', ';':
			return true
		}
		return false
	})
}

func splitAfterMatches(text string, matches [][]int) []string {
	var units []string
	prev := 0
	for _, m := range matches {
		units = append(units, text[prev:m[1]])
		prev = m[1]
	}
	if prev < len(text) {
		units = append(units, text[prev:])
	}
	return units
}

func splitAfterRunes(text string, isBoundary func(rune) bool) []string {
	var units []string
	start := 0
	for i, r := range text {
		if isBoundary(r) {
			end := i + utf8.RuneLen(r)
			units = append(units, text[start:end])
			start = end
		}
	}
	if start < len(text) {
		units = append(units, text[start:])
	}
	return units
}

// pack greedily accumulates units into chunks while the running length
// stays within the limit. A unit larger than the limit becomes its own
// oversized chunk, which makes the strategy fail validation.
func pack(units []string, maxChars int) []string {
	var chunks []string
	var cur string
	curLen := 0

	for _, unit := range units {
		unitLen := utf8.RuneCountInString(unit)
		if cur != "" && curLen+unitLen > maxChars {
			chunks = append(chunks, cur)
			cur, curLen = "", 0
		}
		cur += unit
		curLen += unitLen
	}
	if cur != "" {
		chunks = append(chunks, cur)
	}
	return chunks
}

func allWithin(chunks []string, maxChars int) bool {
	for _, c := range chunks {
		if utf8.RuneCountInString(c) > maxChars {
			return false
		}
	}
	return len(chunks) > 0
}

// hardCut slices every maxChars characters, scanning backwards up to 50
// characters from each cut point for punctuation or a space so words and
// clauses are not severed. It never drops characters.
func hardCut(text string, maxChars int) []string {
	runes := []rune(text)
	var chunks []string

	pos := 0
	for pos < len(runes) {
		end := pos + maxChars
		if end >= len(runes) {
			chunks = append(chunks, string(runes[pos:]))
			break
		}

		cut := end
		low := end - backscanWindow
		if low <= pos {
			low = pos + 1
		}
		for j := end; j > low; j-- {
			r := runes[j-1]
			if unicode.IsPunct(r) || unicode.IsSpace(r) {
				cut = j
				break
			}
		}

		chunks = append(chunks, string(runes[pos:cut]))
		pos = cut
	}

	return chunks
}
