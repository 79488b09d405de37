// Package audio joins per-chunk audio files into a single deliverable
// using the ffmpeg binary.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/LuckVd/AIVoice/internal/observability"
)

// Assembly methods, in order of preference.
const (
	MethodConcat    = "concat"
	MethodReencode  = "reencode"
	MethodCopyFirst = "copy_first"
)

// ErrNoChunks indicates Assemble was called with nothing to join.
var ErrNoChunks = errors.New("no audio chunks to assemble")

// Result describes how the output file was produced. Degraded means only
// the first chunk survived; callers must surface that to the user.
type Result struct {
	Method   string
	Degraded bool
}

// Assembler concatenates ordered chunk files with ffmpeg. Stream copy is
// tried first, then a re-encode for chunks whose codec parameters differ,
// then a single-chunk copy as the last resort.
type Assembler struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	log         zerolog.Logger
}

// NewAssembler builds an Assembler using the ffmpeg and ffprobe binaries
// on PATH.
func NewAssembler() *Assembler {
	return &Assembler{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		timeout:     5 * time.Minute,
		log:         observability.GetLogger().With().Str("component", "assembler").Logger(),
	}
}

// Assemble joins chunkPaths, already in playback order, into outPath.
func (a *Assembler) Assemble(ctx context.Context, chunkPaths []string, outPath string) (Result, error) {
	if len(chunkPaths) == 0 {
		return Result{}, ErrNoChunks
	}
	if len(chunkPaths) == 1 {
		if err := copyFile(chunkPaths[0], outPath); err != nil {
			return Result{}, fmt.Errorf("copying single chunk: %w", err)
		}
		observability.RecordAssemblerMethod(MethodConcat)
		return Result{Method: MethodConcat}, nil
	}

	manifest, err := a.writeManifest(chunkPaths, outPath)
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(manifest)

	if err := a.runFFmpeg(ctx, manifest, outPath, "-c", "copy"); err == nil {
		observability.RecordAssemblerMethod(MethodConcat)
		return Result{Method: MethodConcat}, nil
	} else {
		a.log.Warn().Err(err).Msg("stream copy concat failed, re-encoding")
	}

	if err := a.runFFmpeg(ctx, manifest, outPath, "-c:a", "libmp3lame", "-b:a", "48k"); err == nil {
		observability.RecordAssemblerMethod(MethodReencode)
		return Result{Method: MethodReencode}, nil
	} else {
		a.log.Error().Err(err).Msg("re-encode concat failed, falling back to first chunk")
	}

	if err := copyFile(chunkPaths[0], outPath); err != nil {
		return Result{}, fmt.Errorf("all assembly methods failed, first chunk copy: %w", err)
	}
	observability.RecordAssemblerMethod(MethodCopyFirst)
	return Result{Method: MethodCopyFirst, Degraded: true}, nil
}

// Duration probes the output file's length. A probe failure is not fatal
// to the job, so the error is left to the caller to log.
func (a *Assembler) Duration(ctx context.Context, path string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing ffprobe duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func (a *Assembler) writeManifest(chunkPaths []string, outPath string) (string, error) {
	var b strings.Builder
	for _, p := range chunkPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("resolving chunk path %s: %w", p, err)
		}
		// The concat demuxer quotes with single quotes; embedded quotes
		// terminate the string and splice in an escaped quote.
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}

	manifest := outPath + ".manifest.txt"
	if err := os.WriteFile(manifest, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing concat manifest: %w", err)
	}
	return manifest, nil
}

func (a *Assembler) runFFmpeg(ctx context.Context, manifest, outPath string, codecArgs ...string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	args := []string{"-y", "-f", "concat", "-safe", "0", "-i", manifest}
	args = append(args, codecArgs...)
	args = append(args, outPath)

	cmd := exec.CommandContext(ctx, a.ffmpegPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg %v: %w: %s", codecArgs, err, lastLine(stderr.String()))
	}
	return nil
}

// lastLine keeps error output manageable; ffmpeg prints its banner and
// stream maps before the actual failure reason.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
