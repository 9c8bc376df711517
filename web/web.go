package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pasarfleet/p-ui/api"
	"github.com/pasarfleet/p-ui/config"
	"github.com/pasarfleet/p-ui/logger"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(apiService *api.ApiService) *Server {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	apiGroup := engine.Group("/api")
	api.NewAPIHandler(apiGroup, apiService)

	return &Server{
		httpServer: &http.Server{
			Addr:    config.GetListen(),
			Handler: engine,
		},
	}
}

func (s *Server) Start() error {
	go func() {
		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Error("web server:", err)
		}
	}()
	logger.Info("web server listening on", s.httpServer.Addr)
	return nil
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
