// Package recorder owns the background video recording task: it pulls
// frames from the camera stream at a paced rate into a task-owned buffer,
// then encodes the buffer to a video artifact when the task ends.
package recorder

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/msmahdinejad/smart-monitoring-system/internal/config"
	"github.com/msmahdinejad/smart-monitoring-system/internal/models"
)

// FrameStream is an open camera stream delivering frames in sequence.
type FrameStream interface {
	// Read returns the next frame; ok is false when no frame is available.
	Read() (frame models.Frame, ok bool)
	Close()
}

// StreamSource opens the camera stream. An open failure is a recoverable
// "no video this cycle" condition, never fatal to the caller's session.
type StreamSource interface {
	Open(url string) (FrameStream, error)
}

// Encoder writes buffered frames into a video container at the given rate.
type Encoder interface {
	Encode(frames []models.Frame, fps float64, path string) error
}

// Transcoder optionally converts the raw artifact to a portable container.
// Best-effort: on failure the raw artifact is used as-is.
type Transcoder interface {
	Transcode(inputPath, outputPath string) error
}

// Recorder is a single-slot resource: one recording task at a time. The
// task owns its frame buffer outright, so a straggling encode can never
// race a later task's frames.
type Recorder struct {
	cfg        *config.Config
	streamURL  string
	source     StreamSource
	encoder    Encoder
	transcoder Transcoder

	mu        sync.Mutex
	recording bool
	stop      chan struct{}
	done      chan struct{}
	lastPath  string
}

// New builds a recorder over the given stream URL with injected frame
// source, encoder and optional transcoder.
func New(cfg *config.Config, streamURL string, source StreamSource, encoder Encoder, transcoder Transcoder) *Recorder {
	return &Recorder{
		cfg:        cfg,
		streamURL:  streamURL,
		source:     source,
		encoder:    encoder,
		transcoder: transcoder,
	}
}

// StartRecording begins a recording task for the given duration, tagged for
// artifact naming. It returns immediately; the artifact does not exist on
// return. A second start while one task is in flight is rejected.
func (r *Recorder) StartRecording(duration time.Duration, tag string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		log.Warn().Str("tag", tag).Msg("Recording already in progress")
		return false
	}
	if duration > r.cfg.MaxRecordDuration {
		duration = r.cfg.MaxRecordDuration
	}

	r.recording = true
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	r.lastPath = ""

	log.Info().Dur("duration", duration).Str("tag", tag).Msg("Starting video recording")
	go r.record(duration, tag, r.stop, r.done)
	return true
}

// StopRecording requests cancellation of the in-flight task. Idempotent and
// non-blocking; the capture loop observes the signal within one poll slice.
func (r *Recorder) StopRecording() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		log.Debug().Msg("No active recording to stop")
		return
	}
	select {
	case <-r.stop:
	default:
		close(r.stop)
		log.Info().Msg("Stopping video recording immediately")
	}
}

// WaitForCompletion blocks until the current task finishes or the timeout
// elapses, reporting whether it actually finished. LastArtifactPath is only
// trustworthy after this returns true.
func (r *Recorder) WaitForCompletion(timeout time.Duration) bool {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	if done == nil {
		return true
	}
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// IsRecording reports whether a task is currently in flight.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// LastArtifactPath returns the artifact produced by the most recently
// completed task, or empty if it produced none.
func (r *Recorder) LastArtifactPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastPath
}

// record is the capture task. The frames slice is local to this goroutine;
// accessors never see it.
func (r *Recorder) record(duration time.Duration, tag string, stop <-chan struct{}, done chan<- struct{}) {
	defer func() {
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
		close(done)
	}()

	stream, err := r.source.Open(r.streamURL)
	if err != nil {
		log.Error().Err(err).Str("url", r.streamURL).Msg("Cannot open camera stream for recording")
		return
	}
	defer stream.Close()

	var frames []models.Frame
	frameInterval := time.Second / time.Duration(r.cfg.RecorderFPS)
	deadline := time.Now().Add(duration)
	var lastAccepted time.Time
	cancelled := false

capture:
	for time.Now().Before(deadline) {
		select {
		case <-stop:
			cancelled = true
			break capture
		default:
		}

		// Frame pacing: accept a new frame only once 1/fps has elapsed
		// since the last accepted one, decoupling our sample rate from
		// how fast the source delivers.
		if now := time.Now(); now.Sub(lastAccepted) >= frameInterval {
			if frame, ok := stream.Read(); ok {
				frame.Timestamp = now
				frames = append(frames, frame)
				lastAccepted = now
			}
		}

		time.Sleep(r.cfg.StopCheckInterval)
	}

	if cancelled {
		log.Info().Int("frames", len(frames)).Str("tag", tag).Msg("Recording stopped by request")
	} else {
		log.Info().Int("frames", len(frames)).Str("tag", tag).Msg("Recording completed normally")
	}

	if len(frames) == 0 {
		log.Warn().Str("tag", tag).Msg("No video frames captured")
		return
	}

	path, err := r.encode(frames, tag)
	if err != nil {
		log.Error().Err(err).Str("tag", tag).Msg("Failed to encode video")
		return
	}

	r.mu.Lock()
	r.lastPath = path
	r.mu.Unlock()
	log.Info().Str("path", path).Str("tag", tag).Msg("Video artifact ready")
}

func (r *Recorder) encode(frames []models.Frame, tag string) (string, error) {
	fps := EffectiveFPS(frames, float64(r.cfg.RecorderFPS), float64(r.cfg.MinEncodeFPS), float64(r.cfg.MaxEncodeFPS))

	timestamp := time.Now().Format("20060102_150405")
	rawPath := filepath.Join(r.cfg.VideosDir, fmt.Sprintf("video_%s_%s.avi", tag, timestamp))

	if err := r.encoder.Encode(frames, fps, rawPath); err != nil {
		return "", err
	}

	if r.transcoder == nil {
		return rawPath, nil
	}

	finalPath := filepath.Join(r.cfg.VideosDir, fmt.Sprintf("video_%s_%s.mp4", tag, timestamp))
	if err := r.transcoder.Transcode(rawPath, finalPath); err != nil {
		log.Warn().Err(err).Msg("Video transcode failed, keeping raw artifact")
		return rawPath, nil
	}
	if err := os.Remove(rawPath); err != nil {
		log.Debug().Err(err).Str("path", rawPath).Msg("Could not remove raw artifact")
	}
	return finalPath, nil
}

// EffectiveFPS reconstructs the achieved frame rate from per-frame
// timestamps, clamped to [minFPS, maxFPS]. Encoding at the achieved rate
// instead of the nominal target keeps playback duration close to wall
// clock even under frame drops.
func EffectiveFPS(frames []models.Frame, nominal, minFPS, maxFPS float64) float64 {
	if len(frames) < 2 {
		return nominal
	}
	span := frames[len(frames)-1].Timestamp.Sub(frames[0].Timestamp).Seconds()
	if span <= 0 {
		return nominal
	}
	fps := float64(len(frames)-1) / span
	if fps < minFPS {
		fps = minFPS
	}
	if fps > maxFPS {
		fps = maxFPS
	}
	return fps
}
