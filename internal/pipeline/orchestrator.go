package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/LuckVd/AIVoice/internal/audio"
	"github.com/LuckVd/AIVoice/internal/config"
	"github.com/LuckVd/AIVoice/internal/observability"
	"github.com/LuckVd/AIVoice/internal/resilience"
	"github.com/LuckVd/AIVoice/internal/segment"
)

// Synthesizer produces audio bytes for one chunk of text.
type Synthesizer interface {
	Synthesize(ctx context.Context, markup string) ([]byte, error)
	SynthesizePlain(ctx context.Context, text, voice, rate, pitch string) ([]byte, error)
}

// Assembler joins ordered chunk files into the final deliverable.
type Assembler interface {
	Assemble(ctx context.Context, chunkPaths []string, outPath string) (audio.Result, error)
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// ProgressFunc receives job progress snapshots. It must not block.
type ProgressFunc func(Progress)

// ErrTextTooLong rejects submissions over the configured character limit.
var ErrTextTooLong = errors.New("text exceeds the maximum job size")

// ErrEmptyText rejects submissions with nothing to speak.
var ErrEmptyText = errors.New("no speakable text in submission")

// Orchestrator runs synthesis jobs: it segments text, synthesizes chunks
// concurrently in batches, and assembles the results in order.
type Orchestrator struct {
	cfg       *config.Config
	synth     Synthesizer
	assembler Assembler
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(cfg *config.Config, s Synthesizer, a Assembler) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		synth:     s,
		assembler: a,
	}
}

// Run executes one job to completion. Chunks within a batch complete in
// any order; assembly always follows chunk index order.
func (o *Orchestrator) Run(ctx context.Context, job Job, onProgress ProgressFunc) (*Result, error) {
	metrics := observability.NewJobMetrics(job.ID)
	metrics.RecordJobStart()

	result, err := o.run(ctx, job, onProgress, metrics)
	metrics.RecordJobEnd(err == nil)
	return result, err
}

func (o *Orchestrator) run(ctx context.Context, job Job, onProgress ProgressFunc, metrics *observability.JobMetrics) (*Result, error) {
	log := observability.WithJobID(job.ID).With().Str("component", "orchestrator").Logger()

	// Whitespace-only text would render a markup document with no
	// content; reject it before any chunking or synthesis.
	if strings.TrimSpace(job.Text) == "" {
		return nil, ErrEmptyText
	}
	textLen := utf8.RuneCountInString(job.Text)
	if textLen > o.cfg.MaxTextChars {
		return nil, fmt.Errorf("%w: %d chars, limit %d", ErrTextTooLong, textLen, o.cfg.MaxTextChars)
	}

	pressured := underPressure(o.cfg.MemoryCeilingPercent)
	chunkSize := o.chunkSize(textLen, pressured)
	concurrency := o.concurrency(textLen, pressured)

	report(onProgress, Progress{JobID: job.ID, Stage: StageSegmenting})

	chunks := makeChunks(segment.Segment(job.Text, chunkSize))
	log.Info().
		Int("text_chars", textLen).
		Int("chunks", len(chunks)).
		Int("chunk_size", chunkSize).
		Int("concurrency", concurrency).
		Bool("memory_pressure", pressured).
		Msg("job segmented")

	jobDir := filepath.Join(o.cfg.TempDir(), job.ID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating job scratch dir: %w", err)
	}
	defer os.RemoveAll(jobDir)

	results, err := o.synthesizeAll(ctx, job, chunks, jobDir, concurrency, onProgress, metrics, log)
	if err != nil {
		return nil, err
	}

	report(onProgress, Progress{
		JobID:       job.ID,
		Stage:       StageAssembling,
		ChunksTotal: len(chunks),
		ChunksDone:  len(chunks),
		Percent:     100,
	})

	return o.assemble(ctx, job, results, metrics, log, onProgress)
}

// synthesizeAll processes chunks in fixed-size batches with a bounded
// number of in-flight synthesis calls. Cancellation stops dispatch of
// chunks and batches not yet started; chunks already started are
// allowed to finish so their files are complete when cleanup runs.
func (o *Orchestrator) synthesizeAll(ctx context.Context, job Job, chunks []TextChunk, jobDir string, concurrency int, onProgress ProgressFunc, metrics *observability.JobMetrics, log zerolog.Logger) ([]ChunkResult, error) {
	results := make([]ChunkResult, len(chunks))
	sem := make(chan struct{}, concurrency)

	var (
		mu       sync.Mutex
		done     int
		firstErr error
	)

	for start := 0; start < len(chunks); start += o.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if underPressure(o.cfg.MemoryCeilingPercent) {
			log.Warn().Msg("memory pressure at batch start, reclaiming")
			reclaimMemory()
		}

		end := min(start+o.cfg.BatchSize, len(chunks))

		var wg sync.WaitGroup
		for _, chunk := range chunks[start:end] {
			wg.Add(1)
			go func(c TextChunk) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				// A cancel arriving while this chunk waited on the
				// semaphore must stop it before any synthesis call.
				if err := ctx.Err(); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}

				res, err := o.synthesizeChunk(ctx, job, c, jobDir, metrics, log)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return
				}
				results[c.Index] = res
				done++
				report(onProgress, Progress{
					JobID:       job.ID,
					Stage:       StageSynthesizing,
					ChunksTotal: len(chunks),
					ChunksDone:  done,
					Percent:     float64(done) / float64(len(chunks)) * 100,
				})
			}(chunk)
		}
		wg.Wait()

		if firstErr != nil {
			return nil, firstErr
		}
	}

	return results, nil
}

// synthesizeChunk runs the retry ladder for one chunk: markup attempts
// first, then the plain-text path when enabled. Retry and the fallback
// decision see the live context so a cancel stops further attempts;
// each synthesis call itself runs detached so a cancel arriving
// mid-stream does not leave a torn connection.
func (o *Orchestrator) synthesizeChunk(ctx context.Context, job Job, chunk TextChunk, jobDir string, metrics *observability.JobMetrics, log zerolog.Logger) (ChunkResult, error) {
	started := time.Now()

	retryCfg := &resilience.RetryConfig{
		MaxAttempts: o.cfg.MaxRetries,
		Backoff:     o.cfg.RetryBackoff(),
		OnRetry: func(attempt int, err error) {
			metrics.RecordRetry()
			log.Warn().Int("chunk", chunk.Index).Int("attempt", attempt).Err(err).Msg("chunk synthesis retrying")
		},
	}

	attempts := 0
	usedPlain := false

	var data []byte
	err := resilience.Retry(ctx, func(ctx context.Context) error {
		attempts++
		var aerr error
		data, aerr = o.attemptChunk(ctx, job, chunk)
		return aerr
	}, retryCfg, resilience.IsRetryableNetworkError)

	if err != nil && job.Markup != nil && o.cfg.PlainFallback && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		log.Warn().Int("chunk", chunk.Index).Err(err).Msg("markup attempts exhausted, trying plain text")
		usedPlain = true
		attempts++
		data, err = o.plainCall(ctx, job, chunk)
		if err == nil {
			metrics.RecordPlainFallback()
		}
	}

	if err != nil {
		metrics.RecordChunk(false, time.Since(started))
		metrics.RecordError("synthesis", "orchestrator")
		return ChunkResult{}, fmt.Errorf("chunk %d failed after %d attempts: %w", chunk.Index, attempts, err)
	}
	if len(data) == 0 {
		metrics.RecordChunk(false, time.Since(started))
		return ChunkResult{}, fmt.Errorf("chunk %d produced no audio", chunk.Index)
	}

	path := filepath.Join(jobDir, fmt.Sprintf("chunk_%04d.mp3", chunk.Index))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		metrics.RecordChunk(false, time.Since(started))
		return ChunkResult{}, fmt.Errorf("writing chunk %d audio: %w", chunk.Index, err)
	}

	metrics.RecordChunk(true, time.Since(started))
	return ChunkResult{
		Index:         chunk.Index,
		AudioPath:     path,
		Bytes:         len(data),
		Attempts:      attempts,
		PlainFallback: usedPlain,
	}, nil
}

// attemptChunk makes one synthesis call for the chunk.
func (o *Orchestrator) attemptChunk(ctx context.Context, job Job, chunk TextChunk) ([]byte, error) {
	callCtx, cancel := o.detachCall(ctx)
	defer cancel()

	if job.Markup == nil {
		return o.synth.SynthesizePlain(callCtx, chunk.Text, job.Voice, job.Rate, job.Pitch)
	}
	markup, err := job.Markup(chunk.Text)
	if err != nil {
		return nil, fmt.Errorf("rendering markup: %w", err)
	}
	return o.synth.Synthesize(callCtx, markup)
}

func (o *Orchestrator) plainCall(ctx context.Context, job Job, chunk TextChunk) ([]byte, error) {
	callCtx, cancel := o.detachCall(ctx)
	defer cancel()
	return o.synth.SynthesizePlain(callCtx, chunk.Text, job.Voice, job.Rate, job.Pitch)
}

// detachCall bounds one synthesis call by its own deadline, detached
// from job cancellation so an in-flight stream can drain cleanly.
func (o *Orchestrator) detachCall(ctx context.Context) (context.Context, context.CancelFunc) {
	callTimeout := time.Duration(o.cfg.SynthConnectTimeout+2*o.cfg.SynthReadTimeout) * time.Second
	return context.WithTimeout(context.WithoutCancel(ctx), callTimeout)
}

func (o *Orchestrator) assemble(ctx context.Context, job Job, results []ChunkResult, metrics *observability.JobMetrics, log zerolog.Logger, onProgress ProgressFunc) (*Result, error) {
	if err := os.MkdirAll(o.cfg.AudioDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating audio dir: %w", err)
	}
	outPath := filepath.Join(o.cfg.AudioDir(), job.ID+".mp3")

	paths := make([]string, len(results))
	usedPlain := false
	totalBytes := 0
	for i, r := range results {
		paths[i] = r.AudioPath
		usedPlain = usedPlain || r.PlainFallback
		totalBytes += r.Bytes
	}

	assembled, err := o.assembler.Assemble(ctx, paths, outPath)
	if err != nil {
		metrics.RecordError("assembly", "orchestrator")
		return nil, fmt.Errorf("assembling %d chunks: %w", len(results), err)
	}
	metrics.RecordAudioBytes(int64(totalBytes))

	duration, err := o.assembler.Duration(ctx, outPath)
	if err != nil {
		log.Warn().Err(err).Msg("duration probe failed")
		duration = 0
	}

	report(onProgress, Progress{
		JobID:       job.ID,
		Stage:       StageDone,
		ChunksTotal: len(results),
		ChunksDone:  len(results),
		Percent:     100,
	})

	log.Info().
		Str("audio_path", outPath).
		Str("method", assembled.Method).
		Dur("duration", duration).
		Bool("degraded", assembled.Degraded).
		Bool("plain_fallback", usedPlain).
		Msg("job complete")

	return &Result{
		JobID:             job.ID,
		AudioPath:         outPath,
		Duration:          duration,
		Chunks:            results,
		Degraded:          assembled.Degraded,
		UsedPlainFallback: usedPlain,
	}, nil
}

// chunkSize shrinks the chunk size under memory pressure and for large
// texts, never below the configured floor.
func (o *Orchestrator) chunkSize(textLen int, pressured bool) int {
	size := float64(o.cfg.BaseChunkSize)
	if pressured {
		size /= 2
	}
	switch {
	case textLen > 100_000:
		size /= 1.5
	case textLen > 50_000:
		size /= 1.2
	}
	return max(int(size), o.cfg.MinChunkSize)
}

// concurrency throttles hard under memory pressure; otherwise large texts
// get a milder reduction so one job cannot monopolize the endpoint.
func (o *Orchestrator) concurrency(textLen int, pressured bool) int {
	c := o.cfg.BaseConcurrency
	if pressured {
		return max(c/4, 1)
	}
	switch {
	case textLen > 100_000:
		return max(c/2, 2)
	case textLen > 50_000:
		return max(int(float64(c)/1.5), 3)
	}
	return c
}

// makeChunks assigns indices and rune offsets. Segmentation preserves the
// source text exactly, so offsets are cumulative rune counts.
func makeChunks(parts []string) []TextChunk {
	chunks := make([]TextChunk, len(parts))
	offset := 0
	for i, p := range parts {
		n := utf8.RuneCountInString(p)
		chunks[i] = TextChunk{Index: i, Text: p, Start: offset, End: offset + n}
		offset += n
	}
	return chunks
}

func report(fn ProgressFunc, p Progress) {
	if fn != nil {
		fn(p)
	}
}
