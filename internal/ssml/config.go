// Package ssml renders speech-markup documents from raw text and a layered
// style configuration. The output is consumed verbatim by the synthesis
// protocol client, so rendering is whitespace-exact: no formatting whitespace
// is ever inserted between tags.
package ssml

import (
	"errors"
	"fmt"
)

// ErrUnknownPreset is returned when a preset name has no registered config.
var ErrUnknownPreset = errors.New("unknown ssml preset")

// VoiceConfig selects the synthesis voice.
type VoiceConfig struct {
	Name     string
	Style    string
	Role     string
	Fallback string
}

// PaceConfig controls speaking rate across the document.
// Rates and deltas are signed percentage strings such as "-15%".
type PaceConfig struct {
	BaseRate        string
	OpeningDelta    string
	EndingDelta     string
	TransitionPause string
}

// MoodConfig controls pitch, emphasis and volume.
type MoodConfig struct {
	Pitch         string
	Emphasis      string
	Breathing     bool
	ThinkingPause bool
	Volume        string
}

// StructureConfig controls pauses and sentence sizing.
type StructureConfig struct {
	CommaPause     string
	SentencePause  string
	ParagraphPause string
	MaxSentenceLen int
	AutoSplit      bool
	ChapterPause   string
	DialogPause    string
}

// Config is the full four-layer style configuration. Configs are value
// types: presets are never mutated, overrides produce a new Config.
type Config struct {
	Name        string
	Description string
	Voice       VoiceConfig
	Pace        PaceConfig
	Mood        MoodConfig
	Structure   StructureConfig
}

// Override holds optional field-wise replacements applied over a base
// config. Nil fields leave the base value untouched.
type Override struct {
	VoiceName      *string `json:"voice_name,omitempty"`
	VoiceStyle     *string `json:"voice_style,omitempty"`
	VoiceRole      *string `json:"voice_role,omitempty"`
	BaseRate       *string `json:"base_rate,omitempty"`
	OpeningDelta   *string `json:"opening_delta,omitempty"`
	EndingDelta    *string `json:"ending_delta,omitempty"`
	Pitch          *string `json:"pitch,omitempty"`
	Volume         *string `json:"volume,omitempty"`
	CommaPause     *string `json:"comma_pause,omitempty"`
	SentencePause  *string `json:"sentence_pause,omitempty"`
	ParagraphPause *string `json:"paragraph_pause,omitempty"`
	MaxSentenceLen *int    `json:"max_sentence_len,omitempty"`
}

// Apply returns a new Config with the override's non-nil fields substituted.
// The receiver is not modified.
func (c Config) Apply(o Override) Config {
	out := c
	out.Name = "CUSTOM"

	if o.VoiceName != nil {
		out.Voice.Name = *o.VoiceName
	}
	if o.VoiceStyle != nil {
		out.Voice.Style = *o.VoiceStyle
	}
	if o.VoiceRole != nil {
		out.Voice.Role = *o.VoiceRole
	}
	if o.BaseRate != nil {
		out.Pace.BaseRate = *o.BaseRate
	}
	if o.OpeningDelta != nil {
		out.Pace.OpeningDelta = *o.OpeningDelta
	}
	if o.EndingDelta != nil {
		out.Pace.EndingDelta = *o.EndingDelta
	}
	if o.Pitch != nil {
		out.Mood.Pitch = *o.Pitch
	}
	if o.Volume != nil {
		out.Mood.Volume = *o.Volume
	}
	if o.CommaPause != nil {
		out.Structure.CommaPause = *o.CommaPause
	}
	if o.SentencePause != nil {
		out.Structure.SentencePause = *o.SentencePause
	}
	if o.ParagraphPause != nil {
		out.Structure.ParagraphPause = *o.ParagraphPause
	}
	if o.MaxSentenceLen != nil {
		out.Structure.MaxSentenceLen = *o.MaxSentenceLen
	}

	return out
}

// Preset looks up a named preset config.
func Preset(name string) (Config, error) {
	cfg, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return cfg, nil
}

// PresetNames lists the registered preset names.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
