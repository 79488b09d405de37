package ssml

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	speakOpen  = `<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="zh-CN">`
	speakClose = `</speak>`
)

var (
	blankLineRun = regexp.MustCompile(`\n{3,}`)
	hspaceRun    = regexp.MustCompile(`[ \t]+`)
	ratePattern  = regexp.MustCompile(`^([+-]?)(\d+)%$`)

	// The synthesis endpoint rejects payloads with unescaped markup
	// characters; & must be replaced first.
	escaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)

	sentenceEnders = map[rune]bool{
		'。': true, '！': true, '？': true,
		'.': true, '!': true, '?': true,
	}
)

// EscapeText escapes the five markup-reserved characters.
func EscapeText(text string) string {
	return escaper.Replace(text)
}

// Render turns raw text and a style config into a compact markup document.
// It never fails: empty input yields an empty-content document, which the
// caller must treat as "no audio to synthesize".
func Render(text string, cfg Config) string {
	text = normalize(text)
	paragraphs := splitParagraphs(text)

	var b strings.Builder
	b.WriteString(speakOpen)
	b.WriteString(voiceOpen(cfg.Voice))

	for i, paragraph := range paragraphs {
		if i > 0 {
			writeBreak(&b, cfg.Structure.ParagraphPause)
		}
		renderParagraph(&b, paragraph, cfg, i == 0, i == len(paragraphs)-1)
	}

	b.WriteString("</voice>")
	b.WriteString(speakClose)
	return b.String()
}

// PlainDocument wraps already-plain text in a minimal voice/prosody scope.
// This is the degraded path used when full style rendering is bypassed or
// has failed: one flat rate and pitch, no per-sentence prosody.
func PlainDocument(text, voice, rate, pitch string) string {
	var b strings.Builder
	b.WriteString(speakOpen)
	b.WriteString(`<voice name="` + voice + `">`)

	b.WriteString(`<prosody`)
	if rate != "" {
		b.WriteString(` rate="` + rate + `"`)
	}
	if pitch != "" {
		b.WriteString(` pitch="` + pitch + `"`)
	}
	b.WriteString(`>`)
	b.WriteString(EscapeText(text))
	b.WriteString(`</prosody>`)

	b.WriteString("</voice>")
	b.WriteString(speakClose)
	return b.String()
}

func normalize(text string) string {
	text = EscapeText(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	text = hspaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func voiceOpen(v VoiceConfig) string {
	var b strings.Builder
	b.WriteString(`<voice name="` + v.Name + `"`)
	if v.Style != "" {
		b.WriteString(` style="` + v.Style + `"`)
	}
	if v.Role != "" {
		b.WriteString(` role="` + v.Role + `"`)
	}
	b.WriteString(`>`)
	return b.String()
}

func writeBreak(b *strings.Builder, pause string) {
	if pause != "" {
		b.WriteString(`<break time="` + pause + `"/>`)
	}
}

func renderParagraph(b *strings.Builder, paragraph string, cfg Config, firstPara, lastPara bool) {
	sentences := splitSentences(paragraph, cfg.Structure)

	for i, sentence := range sentences {
		if i > 0 {
			writeBreak(b, cfg.Structure.SentencePause)
		}
		opening := firstPara && i == 0
		ending := lastPara && i == len(sentences)-1
		renderSentence(b, sentence, cfg, opening, ending)
	}
}

// splitSentences splits on sentence-ending punctuation, keeping the
// punctuation attached to the preceding sentence. Sentences longer than the
// configured limit are split further.
func splitSentences(paragraph string, st StructureConfig) []string {
	var sentences []string
	var cur []rune

	flush := func() {
		s := strings.TrimSpace(string(cur))
		cur = cur[:0]
		if s == "" {
			return
		}
		if st.AutoSplit && st.MaxSentenceLen > 0 && runeLen(s) > st.MaxSentenceLen {
			sentences = append(sentences, splitLongSentence(s, st.MaxSentenceLen)...)
		} else {
			sentences = append(sentences, s)
		}
	}

	for _, r := range paragraph {
		cur = append(cur, r)
		if sentenceEnders[r] {
			flush()
		}
	}
	flush()

	return sentences
}

// splitLongSentence packs clauses (split after the Chinese comma) greedily
// into pieces within the limit; with no comma present it hard-splits every
// maxLen characters.
func splitLongSentence(sentence string, maxLen int) []string {
	clauses := splitAfterRune(sentence, '，')
	if len(clauses) == 1 {
		return hardSplit(sentence, maxLen)
	}

	var out []string
	var cur string
	for _, clause := range clauses {
		if cur != "" && runeLen(cur)+runeLen(clause) > maxLen {
			out = append(out, cur)
			cur = ""
		}
		if runeLen(clause) > maxLen {
			// a single clause over the limit is hard-split on its own
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			out = append(out, hardSplit(clause, maxLen)...)
			continue
		}
		cur += clause
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func splitAfterRune(s string, sep rune) []string {
	var out []string
	var cur []rune
	for _, r := range s {
		cur = append(cur, r)
		if r == sep {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}

func hardSplit(s string, maxLen int) []string {
	runes := []rune(s)
	var out []string
	for start := 0; start < len(runes); start += maxLen {
		end := start + maxLen
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

func renderSentence(b *strings.Builder, sentence string, cfg Config, opening, ending bool) {
	rate := calculateRate(cfg.Pace, opening, ending)

	b.WriteString(`<prosody rate="` + rate + `"`)
	if pitch := cfg.Mood.Pitch; pitch != "" && pitch != "0%" && pitch != "+0%" {
		b.WriteString(` pitch="` + pitch + `"`)
	}
	if cfg.Mood.Volume != "" {
		b.WriteString(` volume="` + cfg.Mood.Volume + `"`)
	}
	b.WriteString(`>`)
	b.WriteString(insertCommaBreaks(sentence, cfg.Structure.CommaPause))
	b.WriteString(`</prosody>`)
}

// calculateRate derives the effective rate for one sentence. A sentence that
// is both the document opening and ending receives both deltas additively.
func calculateRate(p PaceConfig, opening, ending bool) string {
	m := ratePattern.FindStringSubmatch(p.BaseRate)
	if m == nil {
		return p.BaseRate
	}

	value, _ := strconv.Atoi(m[2])
	// An unsigned base rate reads as a slowdown.
	if m[1] != "+" {
		value = -value
	}

	if opening {
		value += parseDelta(p.OpeningDelta)
	}
	if ending {
		value += parseDelta(p.EndingDelta)
	}

	return fmt.Sprintf("%+d%%", value)
}

func parseDelta(delta string) int {
	m := ratePattern.FindStringSubmatch(delta)
	if m == nil {
		return 0
	}
	v, _ := strconv.Atoi(m[2])
	if m[1] == "-" {
		return -v
	}
	return v
}

func insertCommaBreaks(sentence, pause string) string {
	if pause == "" {
		return sentence
	}
	brk := `<break time="` + pause + `"/>`
	sentence = strings.ReplaceAll(sentence, "，", "，"+brk)
	sentence = strings.ReplaceAll(sentence, "、", "、"+brk)
	return sentence
}

func runeLen(s string) int {
	return len([]rune(s))
}
