package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/msmahdinejad/smart-monitoring-system/internal/analysis"
	"github.com/msmahdinejad/smart-monitoring-system/internal/config"
	"github.com/msmahdinejad/smart-monitoring-system/internal/models"
	"github.com/msmahdinejad/smart-monitoring-system/internal/monitor"
)

// recorderStatus exposes the recorder's instantaneous state to handlers.
type recorderStatus interface {
	IsRecording() bool
}

type notifierStatus interface {
	Enabled() bool
}

type MonitorHandler struct {
	cfg      *config.Config
	svc      *monitor.Service
	ai       *analysis.Client
	recorder recorderStatus
	notifier notifierStatus
}

func NewMonitorHandler(cfg *config.Config, svc *monitor.Service, ai *analysis.Client, rec recorderStatus, notifier notifierStatus) *MonitorHandler {
	return &MonitorHandler{cfg: cfg, svc: svc, ai: ai, recorder: rec, notifier: notifier}
}

// Start launches a monitoring session.
func (h *MonitorHandler) Start(c *gin.Context) {
	req := models.SessionRequest{
		Interval:       h.cfg.DefaultInterval,
		MonitoringType: "security",
		PromptStyle:    "formal",
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid start request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Start(req.Interval, req.MonitoringType, req.PromptStyle, req.CustomContext); err != nil {
		if errors.Is(err, monitor.ErrAlreadyActive) {
			c.JSON(http.StatusConflict, gin.H{"error": "Monitoring already active"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

// Stop signals the active session to end and briefly waits for
// confirmation before answering.
func (h *MonitorHandler) Stop(c *gin.Context) {
	if !h.svc.State().Active {
		c.JSON(http.StatusOK, gin.H{
			"status":  "not_active",
			"message": "No active monitoring session to stop",
		})
		return
	}

	log.Info().Msg("Immediate stop request received")
	h.svc.Stop()

	if h.svc.WaitForInactive(3 * time.Second) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "stopped",
			"message": "Monitoring stopped immediately",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "timeout",
		"message": "Stop request timed out - monitoring may still be stopping",
	})
}

// Status reports the session snapshot plus service states.
func (h *MonitorHandler) Status(c *gin.Context) {
	state := h.svc.State()

	aiStatus := "Real AI"
	if h.ai.TestModeActive() {
		aiStatus = "Test Mode"
	}

	c.JSON(http.StatusOK, gin.H{
		"active":          state.Active,
		"session_id":      state.SessionID,
		"baseline_image":  state.BaselinePath,
		"video_recording": h.recorder.IsRecording(),
		"telegram_status": h.notifier.Enabled(),
		"ai_status":       aiStatus,
		"test_mode": gin.H{
			"test_mode":           h.ai.TestModeActive(),
			"pattern":             h.cfg.TestPattern,
			"available_responses": analysis.TestScenarioKeys(),
		},
		"config": gin.H{
			"camera_url":   h.cfg.CameraURL,
			"min_interval": h.cfg.MinInterval,
			"max_interval": h.cfg.MaxInterval,
		},
	})
}
