package segment

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTexts = []string{
	"短文本。",
	"第一句话。第二句话！第三句话？这是第四句。",
	"第一段的内容在这里。\n\n第二段的内容在这里。\n\n第三段比前面两段都要长一些，包含更多的句子。",
	"这是一个很长的句子，它有很多的逗号，用来分隔不同的子句，并且会持续很久，直到最后才结束。",
	strings.Repeat("没有任何标点或空格的连续字符", 50),
	"Mixed 中英文 text. With English sentences! 还有中文句子。And more, with commas, everywhere.",
}

func TestSegmentReconstruction(t *testing.T) {
	for _, text := range sampleTexts {
		for _, size := range []int{5, 10, 50, 100, 1000} {
			chunks := Segment(text, size)
			require.NotEmpty(t, chunks, "text %q size %d", text, size)
			assert.Equal(t, text, strings.Join(chunks, ""),
				"reconstruction failed for size %d", size)
		}
	}
}

func TestSegmentShortTextSingleChunk(t *testing.T) {
	text := "不需要分割的短文本。"

	chunks := Segment(text, 100)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSegmentExactLimitSingleChunk(t *testing.T) {
	text := "一二三四五六七八九十"
	require.Equal(t, 10, utf8.RuneCountInString(text))

	chunks := Segment(text, 10)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSegmentParagraphPacking(t *testing.T) {
	text := "短段落一。\n\n短段落二。\n\n短段落三。"

	chunks := Segment(text, 15)

	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 15)
	}
}

func TestSegmentSentenceFallback(t *testing.T) {
	// one paragraph larger than the limit forces sentence packing
	text := "第一句话在这里。第二句话在这里。第三句话在这里。"

	chunks := Segment(text, 10)

	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
	}
	assert.Greater(t, len(chunks), 1)
}

func TestSegmentClauseFallback(t *testing.T) {
	// a single sentence over the limit, clause separators within range
	text := "第一部分，第二部分，第三部分，第四部分。"

	chunks := Segment(text, 6)

	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 6)
	}
}

func TestSegmentHardCutFallback(t *testing.T) {
	text := strings.Repeat("字", 25)

	chunks := Segment(text, 10)

	assert.Equal(t, text, strings.Join(chunks, ""))
	require.Len(t, chunks, 3)
	assert.Equal(t, 10, utf8.RuneCountInString(chunks[0]))
}

func TestHardCutBackscanPrefersPunctuation(t *testing.T) {
	// punctuation 3 runes before the cut point: the cut moves back to it
	text := strings.Repeat("a", 7) + "," + "bb" + strings.Repeat("c", 20)

	chunks := hardCut(text, 10)

	assert.Equal(t, text, strings.Join(chunks, ""))
	assert.Equal(t, "aaaaaaa,", chunks[0], "cut should land just after the comma")
}

func TestHardCutNoBoundaryExactCut(t *testing.T) {
	text := strings.Repeat("x", 30)

	chunks := hardCut(text, 10)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Equal(t, 10, len(c))
	}
}

func TestCleanTextStripsMarkdown(t *testing.T) {
	out := CleanText("# 标题\n> 引用 **加粗** `代码` [链接](http)")

	assert.NotContains(t, out, "#")
	assert.NotContains(t, out, "*")
	assert.NotContains(t, out, "`")
	assert.NotContains(t, out, "[")
	assert.Contains(t, out, "标题")
	assert.Contains(t, out, "加粗")
}

func TestCleanTextAllowList(t *testing.T) {
	out := CleanText("中文abc123，。！？emoji😀删掉")

	assert.NotContains(t, out, "😀")
	assert.Contains(t, out, "中文abc123，。！？")
}

func TestCleanTextCollapsesWhitespace(t *testing.T) {
	out := CleanText("多个   空格\t和\n换行")

	assert.Equal(t, "多个 空格 和 换行", out)
}

func TestCleanTextEmptyResult(t *testing.T) {
	assert.Equal(t, "", CleanText("###***```"))
}
