package ssml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() Config {
	cfg, err := Preset("BEDTIME_BALANCED")
	if err != nil {
		panic(err)
	}
	return cfg
}

func TestRenderDeterministic(t *testing.T) {
	cfg := baseConfig()
	text := "从前，有一个小女孩。她叫小红，每天都很开心。"

	first := Render(text, cfg)
	second := Render(text, cfg)

	assert.Equal(t, first, second)
}

func TestRenderCompact(t *testing.T) {
	cfg := baseConfig()
	text := "第一段。\n\n第二段。"

	out := Render(text, cfg)

	assert.NotContains(t, out, "> <", "no whitespace may appear between tags")
	assert.NotContains(t, out, "\n")
	assert.True(t, strings.HasPrefix(out, speakOpen))
	assert.True(t, strings.HasSuffix(out, speakClose))
}

func TestRenderEmptyInput(t *testing.T) {
	cfg := baseConfig()

	out := Render("   \n\n  ", cfg)

	assert.Equal(t, speakOpen+voiceOpen(cfg.Voice)+"</voice>"+speakClose, out)
}

func TestRenderEscapesReservedCharacters(t *testing.T) {
	cfg := baseConfig()

	out := Render(`AT&T说："1 < 2"。`, cfg)

	assert.Contains(t, out, "AT&amp;T")
	assert.Contains(t, out, "&lt; 2")
	assert.Contains(t, out, "&quot;")
	// only generated tags remain unescaped
	assert.NotContains(t, out, "AT&T")
}

func TestOpeningDeltaRate(t *testing.T) {
	cfg := baseConfig()
	cfg.Pace.BaseRate = "-15%"
	cfg.Pace.OpeningDelta = "-5%"
	cfg.Pace.EndingDelta = ""

	out := Render("只有一句话。", cfg)

	assert.Contains(t, out, `rate="-20%"`)
}

func TestSingleSentenceReceivesBothDeltas(t *testing.T) {
	cfg := baseConfig()
	cfg.Pace.BaseRate = "-15%"
	cfg.Pace.OpeningDelta = "-5%"
	cfg.Pace.EndingDelta = "-3%"

	out := Render("只有一句话。", cfg)

	assert.Contains(t, out, `rate="-23%"`)
}

func TestMiddleSentenceGetsBaseRate(t *testing.T) {
	cfg := baseConfig()
	cfg.Pace.BaseRate = "-15%"
	cfg.Pace.OpeningDelta = "-5%"
	cfg.Pace.EndingDelta = "-5%"

	out := Render("第一句。中间一句。最后一句。", cfg)

	assert.Contains(t, out, `rate="-20%"`, "first and last sentences carry deltas")
	assert.Contains(t, out, `rate="-15%"`, "middle sentence carries the base rate only")
}

func TestUnsignedBaseRateReadsAsSlowdown(t *testing.T) {
	cfg := baseConfig()
	cfg.Pace.BaseRate = "15%"
	cfg.Pace.OpeningDelta = ""
	cfg.Pace.EndingDelta = ""

	out := Render("一句话。", cfg)

	assert.Contains(t, out, `rate="-15%"`)
}

func TestCommaPauseChangesOutput(t *testing.T) {
	a := baseConfig()
	b := baseConfig()
	b.Structure.CommaPause = "999ms"

	text := "你好，世界。"

	assert.NotEqual(t, Render(text, a), Render(text, b))
	assert.Contains(t, Render(text, b), `，<break time="999ms"/>`)
}

func TestParagraphAndSentenceBreaks(t *testing.T) {
	cfg := baseConfig()

	out := Render("第一句。第二句。\n\n新段落。", cfg)

	assert.Contains(t, out, `<break time="`+cfg.Structure.SentencePause+`"/>`)
	assert.Contains(t, out, `<break time="`+cfg.Structure.ParagraphPause+`"/>`)
}

func TestPitchOmittedWhenNeutral(t *testing.T) {
	cfg := baseConfig()
	cfg.Mood.Pitch = "0%"

	out := Render("一句话。", cfg)

	assert.NotContains(t, out, "pitch=")
}

func TestVolumeIncludedWhenSet(t *testing.T) {
	cfg := baseConfig()
	cfg.Mood.Volume = "soft"

	out := Render("一句话。", cfg)

	assert.Contains(t, out, `volume="soft"`)
}

func TestLongSentenceSplitOnClauses(t *testing.T) {
	cfg := baseConfig()
	cfg.Structure.MaxSentenceLen = 10

	// one sentence well over the limit, clause-separated
	out := Render("春天来了，花儿开了，鸟儿叫了，小河也解冻了。", cfg)

	// split clauses each become their own prosody span
	count := strings.Count(out, "<prosody")
	assert.Greater(t, count, 1)
}

func TestLongSentenceHardSplitWithoutClauses(t *testing.T) {
	cfg := baseConfig()
	cfg.Structure.MaxSentenceLen = 5

	out := Render("这是一个没有任何逗号的超长句子。", cfg)

	assert.Greater(t, strings.Count(out, "<prosody"), 1)
}

func TestVoiceScopeAttributes(t *testing.T) {
	cfg := baseConfig()
	cfg.Voice.Style = "calm"
	cfg.Voice.Role = "girl"

	out := Render("一句话。", cfg)

	assert.Contains(t, out, `<voice name="`+cfg.Voice.Name+`" style="calm" role="girl">`)
}

func TestVoiceScopeOmitsUnsetAttributes(t *testing.T) {
	cfg := baseConfig()
	cfg.Voice.Style = ""
	cfg.Voice.Role = ""

	out := Render("一句话。", cfg)

	assert.Contains(t, out, `<voice name="`+cfg.Voice.Name+`">`)
}

func TestPlainDocument(t *testing.T) {
	out := PlainDocument("你好 <世界>", "zh-CN-XiaoxiaoNeural", "-10%", "+0Hz")

	require.True(t, strings.HasPrefix(out, speakOpen))
	assert.Contains(t, out, `<prosody rate="-10%" pitch="+0Hz">`)
	assert.Contains(t, out, "&lt;世界&gt;")
}
