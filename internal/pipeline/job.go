// Package pipeline orchestrates a synthesis job end to end: segmentation,
// concurrent per-chunk synthesis with retries, and final assembly.
package pipeline

import "time"

// TextChunk is one segmentation unit of a job's text. Start and End are
// rune offsets into the cleaned source text.
type TextChunk struct {
	Index int
	Text  string
	Start int
	End   int
}

// ChunkResult records what happened to one chunk.
type ChunkResult struct {
	Index         int
	AudioPath     string
	Bytes         int
	Attempts      int
	PlainFallback bool
}

// Job is one synthesis request after style resolution. A nil Markup
// selects the legacy mode: chunks go to the plain synthesis path with
// the flat voice, rate and pitch, and no markup is rendered at all.
type Job struct {
	ID     string
	Text   string
	Voice  string
	Rate   string
	Pitch  string
	Markup func(text string) (string, error)
}

// Progress is a point-in-time snapshot reported while a job runs.
type Progress struct {
	JobID       string  `json:"job_id"`
	Stage       string  `json:"stage"`
	ChunksTotal int     `json:"chunks_total"`
	ChunksDone  int     `json:"chunks_done"`
	Percent     float64 `json:"percent"`
}

// Progress stages, in order of occurrence.
const (
	StageSegmenting   = "segmenting"
	StageSynthesizing = "synthesizing"
	StageAssembling   = "assembling"
	StageDone         = "done"
)

// Result is the outcome of a completed job.
type Result struct {
	JobID             string
	AudioPath         string
	Duration          time.Duration
	Chunks            []ChunkResult
	Degraded          bool
	UsedPlainFallback bool
}
