package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/msmahdinejad/smart-monitoring-system/internal/camera"
	"github.com/msmahdinejad/smart-monitoring-system/internal/monitor"
)

type CameraHandler struct {
	camera  *camera.Client
	monitor *monitor.Service
}

func NewCameraHandler(cam *camera.Client, mon *monitor.Service) *CameraHandler {
	return &CameraHandler{camera: cam, monitor: mon}
}

// TestCapture performs an ad hoc capture and returns the JPEG directly.
// It goes through the session controller's pipeline lock so it never
// interleaves with a cycle's own camera use.
func (h *CameraHandler) TestCapture(c *gin.Context) {
	image, err := h.monitor.CaptureNow(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Test capture failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", image)
}

// Info reports camera connectivity and endpoints.
func (h *CameraHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected":  h.camera.Probe(),
		"stream_url": h.camera.StreamURL(),
	})
}
