// Package monitor implements the monitoring session lifecycle: a single
// authoritative session state plus the background cycle loop coordinating
// camera capture, video recording, AI analysis, persistence and alerts.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/msmahdinejad/smart-monitoring-system/internal/analysis"
	"github.com/msmahdinejad/smart-monitoring-system/internal/config"
	"github.com/msmahdinejad/smart-monitoring-system/internal/models"
)

// ErrAlreadyActive is returned by Start while a session is running. Callers
// must stop the current session first; requests are rejected, not queued.
var ErrAlreadyActive = errors.New("monitoring already active")

// Camera captures still frames.
type Camera interface {
	Capture(ctx context.Context) ([]byte, error)
}

// VideoRecorder is the single-slot recording resource driven in lock-step
// with the cycle loop.
type VideoRecorder interface {
	StartRecording(duration time.Duration, tag string) bool
	StopRecording()
	WaitForCompletion(timeout time.Duration) bool
	IsRecording() bool
	LastArtifactPath() string
}

// Analyzer returns raw analysis text for an image pair. Failures surface as
// text, never as values that would abort a cycle.
type Analyzer interface {
	Analyze(ctx context.Context, baseline, current []byte, prompt string) string
}

// RecordSink persists one record per completed cycle.
type RecordSink interface {
	Save(ctx context.Context, rec *models.Record) error
}

// Notifier forwards a cycle result to the notification channel.
// Best-effort: the return value is informational only.
type Notifier interface {
	SendResult(rec *models.Record) bool
}

// AlertPublisher publishes high-threat results to the alert bus.
type AlertPublisher interface {
	PublishResult(rec *models.Record) error
}

// How long the loop waits for an artifact after a graceful recording stop.
// A timeout is not fatal: the cycle proceeds without video.
const artifactWaitTimeout = 3 * time.Second

// Delay before retrying a failed per-cycle capture.
const captureRetryDelay = 2 * time.Second

// Service is the session controller. At most one session is active at any
// time; Start rejects concurrent sessions outright.
type Service struct {
	cfg      *config.Config
	camera   Camera
	recorder VideoRecorder
	analyzer Analyzer
	sink     RecordSink
	notifier Notifier
	alerts   AlertPublisher

	// mu guards the session snapshot only. It is never held across
	// capture, analysis or notification calls.
	mu           sync.Mutex
	active       bool
	sessionID    string
	baselinePath string
	cancel       context.CancelFunc

	// pipelineMu serializes the capture-then-analyze portion of a cycle
	// against ad hoc captures from the API surface.
	pipelineMu sync.Mutex
}

// session carries the immutable parameters of one monitoring run.
type session struct {
	id             string
	interval       time.Duration
	monitoringType string
	promptStyle    string
	customContext  string
}

// New builds the session controller. notifier and alerts may be nil.
func New(cfg *config.Config, cam Camera, rec VideoRecorder, an Analyzer, sink RecordSink, notifier Notifier, alerts AlertPublisher) *Service {
	return &Service{
		cfg:      cfg,
		camera:   cam,
		recorder: rec,
		analyzer: an,
		sink:     sink,
		notifier: notifier,
		alerts:   alerts,
	}
}

// Start launches a monitoring session. The interval is clamped into the
// configured bounds. It spawns the cycle loop and returns without waiting
// for the baseline capture; a baseline failure later aborts the session.
func (s *Service) Start(interval int, monitoringType, promptStyle, customContext string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return ErrAlreadyActive
	}

	if interval < s.cfg.MinInterval {
		interval = s.cfg.MinInterval
	}
	if interval > s.cfg.MaxInterval {
		interval = s.cfg.MaxInterval
	}

	sess := session{
		id:             newSessionID(),
		interval:       time.Duration(interval) * time.Second,
		monitoringType: monitoringType,
		promptStyle:    promptStyle,
		customContext:  customContext,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.active = true
	s.sessionID = sess.id
	s.baselinePath = ""
	s.cancel = cancel

	log.Info().
		Str("session_id", sess.id).
		Int("interval_seconds", interval).
		Str("type", monitoringType).
		Str("style", promptStyle).
		Msg("Starting monitoring session")

	go s.run(ctx, sess)
	return nil
}

// Stop signals the cycle loop and the in-flight recording to cancel.
// Idempotent, non-blocking; callers needing confirmation poll State or use
// WaitForInactive.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		log.Debug().Msg("No active monitoring to stop")
		return
	}

	log.Info().Str("session_id", s.sessionID).Msg("Stopping monitoring immediately")
	s.active = false
	if s.cancel != nil {
		s.cancel()
	}
	// Kill the in-flight recording too, not just the loop, so stop is
	// observed mid-recording within one poll slice.
	s.recorder.StopRecording()
}

// State returns a non-blocking snapshot of the session.
func (s *Service) State() models.MonitoringState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.MonitoringState{
		Active:       s.active,
		SessionID:    s.sessionID,
		BaselinePath: s.baselinePath,
	}
}

// WaitForInactive polls until the session reports inactive or the timeout
// elapses, reporting whether it stopped in time.
func (s *Service) WaitForInactive(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !s.State().Active {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return !s.State().Active
}

// CaptureNow performs an ad hoc capture, serialized against the cycle
// loop's own camera use through the pipeline lock.
func (s *Service) CaptureNow(ctx context.Context) ([]byte, error) {
	s.pipelineMu.Lock()
	defer s.pipelineMu.Unlock()
	return s.camera.Capture(ctx)
}

// run is the cycle loop. It owns all session state transitions after Start.
func (s *Service) run(ctx context.Context, sess session) {
	defer s.finish(sess)

	baseline, baselinePath, ok := s.establishBaseline(ctx, sess)
	if !ok {
		return
	}

	cycle := 0
	for s.isActive(ctx) {
		tag := fmt.Sprintf("%s_cycle_%d", sess.id, cycle+1)

		if !s.recorder.StartRecording(sess.interval, tag) {
			log.Error().Str("session_id", sess.id).Msg("Failed to start video recording")
			if !s.wait(ctx, captureRetryDelay) {
				return
			}
			continue
		}
		cycle++

		// Interval wait. Cancellation is observed immediately; a stopped
		// session ends here without producing a result for this cycle.
		if !s.wait(ctx, sess.interval) {
			log.Info().Str("session_id", sess.id).Msg("Stop signal received, terminating monitoring")
			s.recorder.StopRecording()
			return
		}

		log.Info().Str("session_id", sess.id).Int("cycle", cycle).Msg("End of recording period")

		// Graceful stop: duration elapsed. A slow encode degrades to a
		// cycle without video rather than blocking the loop.
		s.recorder.StopRecording()
		videoPath := ""
		if s.recorder.WaitForCompletion(artifactWaitTimeout) {
			videoPath = s.recorder.LastArtifactPath()
		} else {
			log.Warn().Str("session_id", sess.id).Int("cycle", cycle).Msg("Video recording did not complete within timeout")
		}

		if !s.runCycle(ctx, sess, cycle, baseline, baselinePath, videoPath) {
			return
		}
	}
}

// establishBaseline captures and stores the session's fixed comparison
// image. Failure here is fatal to the session: no cycle runs.
func (s *Service) establishBaseline(ctx context.Context, sess session) ([]byte, string, bool) {
	s.pipelineMu.Lock()
	defer s.pipelineMu.Unlock()

	log.Info().Str("session_id", sess.id).Msg("Capturing baseline image")
	baseline, err := s.camera.Capture(ctx)
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.id).Msg("Failed to capture baseline image, aborting session")
		return nil, "", false
	}

	path := filepath.Join(s.cfg.ImagesDir, fmt.Sprintf("baseline_%s_%s.jpg", sess.id, time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, baseline, 0644); err != nil {
		log.Error().Err(err).Str("session_id", sess.id).Msg("Failed to store baseline image, aborting session")
		return nil, "", false
	}

	s.mu.Lock()
	if s.sessionID == sess.id {
		s.baselinePath = path
	}
	s.mu.Unlock()

	log.Info().Str("session_id", sess.id).Str("path", path).Msg("Baseline established")
	return baseline, path, true
}

// runCycle captures the current frame, analyzes it against the baseline and
// publishes exactly one record. Returns false only when the session was
// stopped mid-cycle.
func (s *Service) runCycle(ctx context.Context, sess session, cycle int, baseline []byte, baselinePath, videoPath string) bool {
	// Current frame, retried in place on failure without advancing the
	// cycle. The pipeline lock is released between attempts.
	var current []byte
	for {
		var err error
		s.pipelineMu.Lock()
		current, err = s.camera.Capture(ctx)
		s.pipelineMu.Unlock()
		if err == nil {
			break
		}
		log.Warn().Err(err).Str("session_id", sess.id).Int("cycle", cycle).Msg("Failed to capture image, retrying")
		if !s.wait(ctx, captureRetryDelay) {
			return false
		}
	}

	currentPath := filepath.Join(s.cfg.ImagesDir, fmt.Sprintf("current_%s_%s.jpg", sess.id, time.Now().Format("20060102_150405")))
	if err := os.WriteFile(currentPath, current, 0644); err != nil {
		log.Error().Err(err).Str("session_id", sess.id).Int("cycle", cycle).Msg("Failed to store current image")
		return s.isActive(ctx)
	}

	prompt := analysis.GeneratePrompt(sess.monitoringType, sess.promptStyle, sess.customContext)

	s.pipelineMu.Lock()
	response := s.analyzer.Analyze(ctx, baseline, current, prompt)
	result := analysis.Parse(response)
	s.pipelineMu.Unlock()

	log.Info().
		Str("session_id", sess.id).
		Int("cycle", cycle).
		Str("status", result.Status).
		Float64("confidence", result.Confidence).
		Int("threat_level", result.ThreatLevel).
		Msg("Analysis completed")

	rec := &models.Record{
		Timestamp:      time.Now(),
		SessionID:      sess.id,
		BaselinePath:   baselinePath,
		CurrentPath:    currentPath,
		VideoPath:      videoPath,
		MonitoringType: sess.monitoringType,
		PromptStyle:    sess.promptStyle,
		CustomContext:  sess.customContext,
		PromptUsed:     prompt,
		AIResponse:     response,
		Status:         result.Status,
		Confidence:     result.Confidence,
		ThreatLevel:    result.ThreatLevel,
		Summary:        result.Summary,
		Keywords:       result.Action,
	}

	if err := s.sink.Save(ctx, rec); err != nil {
		log.Error().Err(err).Str("session_id", sess.id).Int("cycle", cycle).Msg("Failed to persist cycle result")
	}

	if result.ThreatLevel >= s.cfg.ThreatLevelThreshold {
		log.Warn().
			Str("session_id", sess.id).
			Int("cycle", cycle).
			Int("threat_level", result.ThreatLevel).
			Msg("HIGH THREAT DETECTED")
		if videoPath != "" {
			log.Info().Str("video_path", videoPath).Msg("Video recorded for threat analysis")
		}
	}

	// Best-effort fan-out. Failures are logged, never propagated.
	if s.notifier != nil {
		if !s.notifier.SendResult(rec) {
			log.Debug().Str("session_id", sess.id).Int("cycle", cycle).Msg("Notification not sent")
		}
	}
	if s.alerts != nil && result.ThreatLevel >= s.cfg.ThreatLevelThreshold {
		if err := s.alerts.PublishResult(rec); err != nil {
			log.Error().Err(err).Str("session_id", sess.id).Msg("Failed to publish alert")
		}
	}

	log.Info().Str("session_id", sess.id).Int("cycle", cycle).Str("status", result.Status).Msg("Cycle completed")
	return true
}

// finish is the loop's terminal cleanup: the recorder is forced idle and
// the session snapshot cleared, unless a newer session already replaced it.
func (s *Service) finish(sess session) {
	s.recorder.StopRecording()

	s.mu.Lock()
	if s.sessionID == sess.id {
		s.active = false
		s.sessionID = ""
		s.baselinePath = ""
		s.cancel = nil
	}
	s.mu.Unlock()

	log.Info().Str("session_id", sess.id).Msg("Monitoring session ended")
}

func (s *Service) isActive(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// wait sleeps for d, returning false immediately if the session is
// cancelled first. This bounds stop latency independently of the interval.
func (s *Service) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
