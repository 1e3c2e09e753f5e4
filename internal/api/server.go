package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/msmahdinejad/smart-monitoring-system/internal/analysis"
	"github.com/msmahdinejad/smart-monitoring-system/internal/api/handlers"
	"github.com/msmahdinejad/smart-monitoring-system/internal/api/middleware"
	"github.com/msmahdinejad/smart-monitoring-system/internal/camera"
	"github.com/msmahdinejad/smart-monitoring-system/internal/config"
	"github.com/msmahdinejad/smart-monitoring-system/internal/monitor"
	"github.com/msmahdinejad/smart-monitoring-system/internal/notify"
	"github.com/msmahdinejad/smart-monitoring-system/internal/recorder"
	"github.com/msmahdinejad/smart-monitoring-system/internal/store"
)

type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server

	monitorHandler *handlers.MonitorHandler
	recordsHandler *handlers.RecordsHandler
	cameraHandler  *handlers.CameraHandler
	systemHandler  *handlers.SystemHandler
}

func NewServer(cfg *config.Config, mon *monitor.Service, st *store.Store, cam *camera.Client, ai *analysis.Client, rec *recorder.Recorder, tg *notify.Telegram) *Server {
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		config:         cfg,
		router:         gin.New(),
		monitorHandler: handlers.NewMonitorHandler(cfg, mon, ai, rec, tg),
		recordsHandler: handlers.NewRecordsHandler(st),
		cameraHandler:  handlers.NewCameraHandler(cam, mon),
		systemHandler:  handlers.NewSystemHandler(tg),
	}
}

func (s *Server) Setup() {
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
}

func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("Starting monitoring API")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown() error {
	log.Info().Msg("Stopping monitoring API")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
