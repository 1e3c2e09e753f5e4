package api

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.systemHandler.Health)

	api := s.router.Group("/api")
	{
		api.POST("/start", s.monitorHandler.Start)
		api.POST("/stop", s.monitorHandler.Stop)
		api.GET("/status", s.monitorHandler.Status)

		api.GET("/records", s.recordsHandler.List)

		api.GET("/test-capture", s.cameraHandler.TestCapture)
		api.GET("/camera-info", s.cameraHandler.Info)
		api.GET("/test-telegram", s.systemHandler.TestTelegram)
	}
}
