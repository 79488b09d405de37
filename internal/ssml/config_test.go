package ssml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetLookup(t *testing.T) {
	cfg, err := Preset("BEDTIME_SOFT")
	require.NoError(t, err)

	assert.Equal(t, "BEDTIME_SOFT", cfg.Name)
	assert.Equal(t, "zh-CN-XiaoxiaoNeural", cfg.Voice.Name)
	assert.Equal(t, "-25%", cfg.Pace.BaseRate)
	assert.Equal(t, 120, cfg.Structure.MaxSentenceLen)
}

func TestPresetUnknown(t *testing.T) {
	_, err := Preset("NOT_A_PRESET")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestPresetNames(t *testing.T) {
	names := PresetNames()

	assert.Len(t, names, 9)
	assert.Contains(t, names, "BEDTIME_BALANCED")
	assert.Contains(t, names, "HORROR_SUSPENSE")
	assert.Contains(t, names, "NEWS")
}

func TestApplyOverrideProducesNewConfig(t *testing.T) {
	base, err := Preset("BEDTIME_BALANCED")
	require.NoError(t, err)

	rate := "-30%"
	voice := "zh-CN-YunxiNeural"
	maxLen := 99
	derived := base.Apply(Override{
		BaseRate:       &rate,
		VoiceName:      &voice,
		MaxSentenceLen: &maxLen,
	})

	assert.Equal(t, "-30%", derived.Pace.BaseRate)
	assert.Equal(t, "zh-CN-YunxiNeural", derived.Voice.Name)
	assert.Equal(t, 99, derived.Structure.MaxSentenceLen)
	assert.Equal(t, "CUSTOM", derived.Name)

	// base preset stays intact
	assert.Equal(t, "-15%", base.Pace.BaseRate)
	assert.Equal(t, "zh-CN-XiaoxiaoNeural", base.Voice.Name)

	// the registered preset is also untouched
	again, err := Preset("BEDTIME_BALANCED")
	require.NoError(t, err)
	assert.Equal(t, "-15%", again.Pace.BaseRate)
}

func TestApplyEmptyOverrideKeepsValues(t *testing.T) {
	base, err := Preset("NEWS")
	require.NoError(t, err)

	derived := base.Apply(Override{})

	assert.Equal(t, base.Voice, derived.Voice)
	assert.Equal(t, base.Pace, derived.Pace)
	assert.Equal(t, base.Structure, derived.Structure)
}
