package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/msmahdinejad/smart-monitoring-system/internal/notify"
)

type SystemHandler struct {
	telegram  *notify.Telegram
	startedAt time.Time
}

func NewSystemHandler(tg *notify.Telegram) *SystemHandler {
	return &SystemHandler{telegram: tg, startedAt: time.Now()}
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	})
}

// TestTelegram sends a probe message through the configured bot so the
// operator can verify chat wiring without triggering a real alert.
func (h *SystemHandler) TestTelegram(c *gin.Context) {
	if !h.telegram.Enabled() {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Telegram notifications are disabled"})
		return
	}
	ok, msg := h.telegram.TestConnection()
	if ok {
		ok = h.telegram.SendMessage("🔔 Test notification from smart monitoring system", false)
		if ok {
			msg = "Test message sent"
		} else {
			msg = "Connection OK but sending failed"
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": ok, "message": msg})
}
