// Package worker provides the NATS intake loop: it consumes synthesis job
// requests, resolves their style, runs them through the pipeline and
// publishes progress and terminal updates.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/LuckVd/AIVoice/internal/config"
	"github.com/LuckVd/AIVoice/internal/observability"
	"github.com/LuckVd/AIVoice/internal/pipeline"
	"github.com/LuckVd/AIVoice/internal/segment"
	"github.com/LuckVd/AIVoice/internal/ssml"
)

const jobTimeout = 30 * time.Minute

// ErrEmptyText indicates a request with no text payload.
var ErrEmptyText = errors.New("job request carries no text")

// Job modes. SSML is the default; plain is the legacy path that skips
// markup rendering entirely and speaks cleaned text with one flat voice.
const (
	ModeSSML  = "ssml"
	ModePlain = "plain"
)

// JobRequest is the wire shape of a synthesis job submission.
type JobRequest struct {
	JobID     string         `json:"job_id,omitempty"`
	Text      string         `json:"text"`
	Mode      string         `json:"mode,omitempty"`
	Preset    string         `json:"preset,omitempty"`
	Overrides *ssml.Override `json:"overrides,omitempty"`

	// Flat synthesis settings, used by plain mode and by the degraded
	// path when markup synthesis is abandoned.
	Voice string `json:"voice,omitempty"`
	Rate  string `json:"rate,omitempty"`
	Pitch string `json:"pitch,omitempty"`
}

// Job update statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// JobUpdate is published for every progress step and once at the end.
type JobUpdate struct {
	JobID           string  `json:"job_id"`
	Status          string  `json:"status"`
	Stage           string  `json:"stage,omitempty"`
	ChunksTotal     int     `json:"chunks_total,omitempty"`
	ChunksDone      int     `json:"chunks_done,omitempty"`
	Percent         float64 `json:"percent"`
	AudioPath       string  `json:"audio_path,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Degraded        bool    `json:"degraded,omitempty"`
	PlainFallback   bool    `json:"plain_fallback,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// Runner executes a resolved job. Satisfied by pipeline.Orchestrator.
type Runner interface {
	Run(ctx context.Context, job pipeline.Job, onProgress pipeline.ProgressFunc) (*pipeline.Result, error)
}

// NatsWorker subscribes to the jobs subject and processes requests one
// message at a time per subscription callback.
type NatsWorker struct {
	conn   *nats.Conn
	cfg    *config.Config
	runner Runner
	log    zerolog.Logger
}

// NewNatsWorker wires a worker to a NATS connection and a job runner.
func NewNatsWorker(conn *nats.Conn, cfg *config.Config, runner Runner) *NatsWorker {
	return &NatsWorker{
		conn:   conn,
		cfg:    cfg,
		runner: runner,
		log:    observability.GetLogger().With().Str("component", "worker").Logger(),
	}
}

// Run subscribes and blocks until the context is cancelled, then drains
// the subscription so in-flight messages finish.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.conn.Subscribe(w.cfg.JobsSubject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", w.cfg.JobsSubject, err)
	}

	w.log.Info().Str("subject", w.cfg.JobsSubject).Msg("listening for synthesis jobs")
	<-ctx.Done()

	if err := sub.Drain(); err != nil {
		return fmt.Errorf("draining subscription: %w", err)
	}
	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	req, err := parseRequest(msg.Data)
	if err != nil {
		w.log.Error().Err(err).Msg("rejecting malformed job request")
		w.publishTerminal(JobUpdate{JobID: req.JobID, Status: StatusFailed, Error: err.Error()}, msg)
		return
	}

	log := w.log.With().Str("job_id", req.JobID).Logger()

	job, err := w.resolveJob(req)
	if err != nil {
		log.Error().Err(err).Msg("job style resolution failed")
		w.publishTerminal(JobUpdate{JobID: req.JobID, Status: StatusFailed, Error: err.Error()}, msg)
		return
	}

	result, err := w.runner.Run(ctx, job, func(p pipeline.Progress) {
		w.publishProgress(JobUpdate{
			JobID:       p.JobID,
			Status:      StatusRunning,
			Stage:       p.Stage,
			ChunksTotal: p.ChunksTotal,
			ChunksDone:  p.ChunksDone,
			Percent:     p.Percent,
		})
	})
	if err != nil {
		log.Error().Err(err).Msg("job failed")
		w.publishTerminal(JobUpdate{JobID: req.JobID, Status: StatusFailed, Error: err.Error()}, msg)
		return
	}

	w.publishTerminal(JobUpdate{
		JobID:           result.JobID,
		Status:          StatusCompleted,
		Stage:           pipeline.StageDone,
		ChunksTotal:     len(result.Chunks),
		ChunksDone:      len(result.Chunks),
		Percent:         100,
		AudioPath:       result.AudioPath,
		DurationSeconds: result.Duration.Seconds(),
		Degraded:        result.Degraded,
		PlainFallback:   result.UsedPlainFallback,
	}, msg)
}

func parseRequest(data []byte) (JobRequest, error) {
	var req JobRequest
	err := json.Unmarshal(data, &req)
	// Generate an ID even for rejected requests so the failure event
	// published for them is attributable.
	if req.JobID == "" {
		req.JobID = observability.NewJobID()
	}
	if err != nil {
		return req, fmt.Errorf("unmarshalling job request: %w", err)
	}
	if req.Text == "" {
		return req, ErrEmptyText
	}
	return req, nil
}

// resolveJob turns a wire request into a runnable job. SSML mode resolves
// a preset plus overrides into a markup closure; plain mode cleans the
// input text and leaves the closure nil so the pipeline uses the flat
// synthesis path.
func (w *NatsWorker) resolveJob(req JobRequest) (pipeline.Job, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeSSML
	}

	job := pipeline.Job{
		ID:    req.JobID,
		Text:  req.Text,
		Voice: req.Voice,
		Rate:  req.Rate,
		Pitch: req.Pitch,
	}
	if job.Rate == "" {
		job.Rate = w.cfg.DefaultRate
	}
	if job.Pitch == "" {
		job.Pitch = w.cfg.DefaultPitch
	}

	switch mode {
	case ModePlain:
		// Cleaning strips formatting characters the flat path would read
		// aloud; SSML mode normalizes inside the renderer instead.
		job.Text = segment.CleanText(req.Text)
		if job.Voice == "" {
			job.Voice = w.cfg.DefaultVoice
		}
	case ModeSSML:
		presetName := req.Preset
		if presetName == "" {
			presetName = w.cfg.DefaultPreset
		}
		style, err := ssml.Preset(presetName)
		if err != nil {
			return pipeline.Job{}, err
		}
		if req.Overrides != nil {
			style = style.Apply(*req.Overrides)
		}

		if job.Voice == "" {
			job.Voice = style.Voice.Name
		}
		if job.Voice == "" {
			job.Voice = w.cfg.DefaultVoice
		}
		job.Markup = func(text string) (string, error) {
			return ssml.Render(text, style), nil
		}
	default:
		return pipeline.Job{}, fmt.Errorf("unknown job mode %q", mode)
	}

	return job, nil
}

func (w *NatsWorker) publishProgress(update JobUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		w.log.Error().Err(err).Msg("marshalling progress update")
		return
	}
	if err := w.conn.Publish(w.cfg.ProgressSubject, data); err != nil {
		w.log.Warn().Err(err).Msg("publishing progress update")
	}
}

// publishTerminal sends the final update to the progress subject and, when
// the request carried a reply inbox, responds there as well.
func (w *NatsWorker) publishTerminal(update JobUpdate, msg *nats.Msg) {
	data, err := json.Marshal(update)
	if err != nil {
		w.log.Error().Err(err).Msg("marshalling terminal update")
		return
	}
	if err := w.conn.Publish(w.cfg.ProgressSubject, data); err != nil {
		w.log.Warn().Err(err).Msg("publishing terminal update")
	}
	if msg.Reply != "" {
		if err := msg.Respond(data); err != nil {
			w.log.Warn().Err(err).Msg("responding to job request")
		}
	}
}
