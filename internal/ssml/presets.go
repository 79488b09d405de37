package ssml

// Named style presets. The table is populated once at package init and is
// read-only afterwards; lookups copy the value.
var presets = map[string]Config{
	"BEDTIME_SOFT": {
		Name:        "BEDTIME_SOFT",
		Description: "Very gentle bedtime narration, suitable for falling asleep",
		Voice: VoiceConfig{
			Name:  "zh-CN-XiaoxiaoNeural",
			Style: "gentle",
			Role:  "youngadultfemale",
		},
		Pace: PaceConfig{
			BaseRate:        "-25%",
			OpeningDelta:    "-5%",
			EndingDelta:     "-5%",
			TransitionPause: "500ms",
		},
		Mood: MoodConfig{
			Pitch:         "-5%",
			Emphasis:      "none",
			Breathing:     true,
			ThinkingPause: true,
			Volume:        "soft",
		},
		Structure: StructureConfig{
			CommaPause:     "500ms",
			SentencePause:  "1000ms",
			ParagraphPause: "2000ms",
			MaxSentenceLen: 120,
			AutoSplit:      true,
			ChapterPause:   "3000ms",
			DialogPause:    "800ms",
		},
	},
	"BEDTIME_BALANCED": {
		Name:        "BEDTIME_BALANCED",
		Description: "Balanced bedtime narration, the general recommendation",
		Voice: VoiceConfig{
			Name:  "zh-CN-XiaoxiaoNeural",
			Style: "calm",
		},
		Pace: PaceConfig{
			BaseRate:        "-15%",
			OpeningDelta:    "-3%",
			EndingDelta:     "-3%",
			TransitionPause: "300ms",
		},
		Mood: MoodConfig{
			Pitch:     "+1%",
			Emphasis:  "moderate",
			Breathing: true,
		},
		Structure: StructureConfig{
			CommaPause:     "350ms",
			SentencePause:  "700ms",
			ParagraphPause: "1200ms",
			MaxSentenceLen: 150,
			AutoSplit:      true,
			ChapterPause:   "2000ms",
			DialogPause:    "500ms",
		},
	},
	"BEDTIME_FAIRY": {
		Name:        "BEDTIME_FAIRY",
		Description: "Fairy-tale narration, slightly lively",
		Voice: VoiceConfig{
			Name:  "zh-CN-XiaoxiaoNeural",
			Style: "cheerful",
			Role:  "girl",
		},
		Pace: PaceConfig{
			BaseRate:        "-10%",
			OpeningDelta:    "0%",
			EndingDelta:     "-2%",
			TransitionPause: "200ms",
		},
		Mood: MoodConfig{
			Pitch:     "+5%",
			Emphasis:  "moderate",
			Breathing: true,
			Volume:    "default",
		},
		Structure: StructureConfig{
			CommaPause:     "300ms",
			SentencePause:  "600ms",
			ParagraphPause: "1000ms",
			MaxSentenceLen: 160,
			AutoSplit:      true,
			ChapterPause:   "1500ms",
			DialogPause:    "400ms",
		},
	},
	"HORROR_SUSPENSE": {
		Name:        "HORROR_SUSPENSE",
		Description: "Low and slow, builds tension",
		Voice: VoiceConfig{
			Name:  "zh-CN-XiaoxiaoNeural",
			Style: "calm",
		},
		Pace: PaceConfig{
			BaseRate:        "-30%",
			OpeningDelta:    "-10%",
			EndingDelta:     "-10%",
			TransitionPause: "500ms",
		},
		Mood: MoodConfig{
			Pitch:         "-30%",
			Emphasis:      "strong",
			ThinkingPause: true,
			Volume:        "soft",
		},
		Structure: StructureConfig{
			CommaPause:     "600ms",
			SentencePause:  "1500ms",
			ParagraphPause: "3000ms",
			MaxSentenceLen: 120,
			AutoSplit:      true,
			ChapterPause:   "4000ms",
			DialogPause:    "1500ms",
		},
	},
	"ROMANTIC": {
		Name:        "ROMANTIC",
		Description: "Warm and sweet, suits love stories",
		Voice: VoiceConfig{
			Name:  "zh-CN-XiaoxiaoNeural",
			Style: "gentle",
			Role:  "youngadultfemale",
		},
		Pace: PaceConfig{
			BaseRate:        "-10%",
			OpeningDelta:    "0%",
			EndingDelta:     "-5%",
			TransitionPause: "200ms",
		},
		Mood: MoodConfig{
			Pitch:     "+5%",
			Emphasis:  "moderate",
			Breathing: true,
		},
		Structure: StructureConfig{
			CommaPause:     "300ms",
			SentencePause:  "600ms",
			ParagraphPause: "1000ms",
			MaxSentenceLen: 160,
			AutoSplit:      true,
			ChapterPause:   "1500ms",
			DialogPause:    "500ms",
		},
	},
	"PASSIONATE": {
		Name:        "PASSIONATE",
		Description: "Fast and forceful, suits battle scenes",
		Voice: VoiceConfig{
			Name:  "zh-CN-YunyangNeural",
			Style: "cheerful",
		},
		Pace: PaceConfig{
			BaseRate:        "+20%",
			OpeningDelta:    "+10%",
			EndingDelta:     "+5%",
			TransitionPause: "200ms",
		},
		Mood: MoodConfig{
			Pitch:    "+15%",
			Emphasis: "strong",
			Volume:   "loud",
		},
		Structure: StructureConfig{
			CommaPause:     "200ms",
			SentencePause:  "400ms",
			ParagraphPause: "800ms",
			MaxSentenceLen: 150,
			AutoSplit:      true,
			ChapterPause:   "1000ms",
			DialogPause:    "300ms",
		},
	},
	"MELANCHOLY": {
		Name:        "MELANCHOLY",
		Description: "Low and slow, heavy and moving",
		Voice: VoiceConfig{
			Name:  "zh-CN-XiaoxiaoNeural",
			Style: "sad",
		},
		Pace: PaceConfig{
			BaseRate:        "-25%",
			OpeningDelta:    "-5%",
			EndingDelta:     "-10%",
			TransitionPause: "400ms",
		},
		Mood: MoodConfig{
			Pitch:         "-20%",
			Emphasis:      "reduced",
			Breathing:     true,
			ThinkingPause: true,
			Volume:        "soft",
		},
		Structure: StructureConfig{
			CommaPause:     "500ms",
			SentencePause:  "1200ms",
			ParagraphPause: "2500ms",
			MaxSentenceLen: 130,
			AutoSplit:      true,
			ChapterPause:   "3500ms",
			DialogPause:    "1000ms",
		},
	},
	"NEWS": {
		Name:        "NEWS",
		Description: "Professional and even, clear and accurate",
		Voice: VoiceConfig{
			Name: "zh-CN-XiaoyiNeural",
		},
		Pace: PaceConfig{
			BaseRate:        "+5%",
			OpeningDelta:    "0%",
			EndingDelta:     "0%",
			TransitionPause: "100ms",
		},
		Mood: MoodConfig{
			Pitch:    "+2%",
			Emphasis: "moderate",
		},
		Structure: StructureConfig{
			CommaPause:     "250ms",
			SentencePause:  "500ms",
			ParagraphPause: "800ms",
			MaxSentenceLen: 180,
			AutoSplit:      true,
			ChapterPause:   "1200ms",
			DialogPause:    "400ms",
		},
	},
	"EDUCATIONAL": {
		Name:        "EDUCATIONAL",
		Description: "Clear and steady, well organized",
		Voice: VoiceConfig{
			Name: "zh-CN-YunxiNeural",
		},
		Pace: PaceConfig{
			BaseRate:        "-5%",
			OpeningDelta:    "0%",
			EndingDelta:     "0%",
			TransitionPause: "200ms",
		},
		Mood: MoodConfig{
			Pitch:         "+3%",
			Emphasis:      "moderate",
			ThinkingPause: true,
		},
		Structure: StructureConfig{
			CommaPause:     "400ms",
			SentencePause:  "700ms",
			ParagraphPause: "1200ms",
			MaxSentenceLen: 140,
			AutoSplit:      true,
			ChapterPause:   "2000ms",
			DialogPause:    "600ms",
		},
	},
}
