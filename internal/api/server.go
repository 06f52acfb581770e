// Package api implements the read-only HTTP monitoring surface: health
// checks, host/process stats, and the list of every registered session
// (in any state, not only Active ones). There is no
// administrative or control surface here (spec.md §1 places the
// administrative CLI out of scope as an external collaborator, and no
// control-plane API exists to pair with one).
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/DaCodeChick/rhxd/internal/broadcast"
	"github.com/DaCodeChick/rhxd/internal/config"
	"github.com/DaCodeChick/rhxd/internal/session"
	"github.com/DaCodeChick/rhxd/internal/util"
)

// Server is the read-only monitoring HTTP server. Grounded on the
// teacher's api.Server (internal/api/server.go): gin engine, cors
// middleware, graceful shutdown on context cancellation.
type Server struct {
	cfg      *config.Config
	registry *session.Registry
	hub      *broadcast.Hub
	sysInfo  util.SystemInfo

	startedAt  time.Time
	httpServer *http.Server
	router     *gin.Engine
}

// NewServer creates a monitoring server backed by registry and hub.
func NewServer(cfg *config.Config, registry *session.Registry, hub *broadcast.Hub) *Server {
	if cfg.Snapshot().Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Server{
		cfg:       cfg,
		registry:  registry,
		hub:       hub,
		sysInfo:   util.GetSystemInfo(),
		startedAt: time.Now(),
	}
}

// Start builds the router and serves it until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	apiCfg := s.cfg.Snapshot().API
	addr := fmt.Sprintf("%s:%d", apiCfg.Addr, apiCfg.Port)

	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("monitoring API listen: %w", err)
	}

	log.Info().Str("addr", addr).Msg("monitoring API starting")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("monitoring API error: %w", err)
	}
	return nil
}

// Stop gracefully shuts the HTTP server down.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/healthz", s.handleHealthz)
	router.GET("/stats", s.handleStats)
	router.GET("/sessions", s.handleSessions)
	return router
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startedAt).String(),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	cfg := s.cfg.Snapshot()

	resp := gin.H{
		"server_name":     cfg.ServerName,
		"server_version":  cfg.ServerVersion,
		"active_sessions": s.registry.Count(),
		"max_connections": cfg.MaxConnections,
		"chat_dropped":    s.hub.ChatDropped(),
		"platform":        s.sysInfo.Platform,
		"cpu_model":       s.sysInfo.CPUModel,
		"cpu_cores":       s.sysInfo.CPUCores,
		"total_memory_mb": s.sysInfo.TotalMemory,
	}

	if cpuPct, err := util.GetCPUUsage(); err == nil {
		resp["cpu_percent"] = cpuPct
	}
	if mem, err := util.GetMemoryUsage(); err == nil {
		resp["memory_used_mb"] = mem.Used
		resp["memory_used_percent"] = mem.UsedPercent
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSessions(c *gin.Context) {
	snapshot := s.registry.Snapshot()
	sessions := make([]gin.H, 0, len(snapshot))
	for _, sess := range snapshot {
		sessions = append(sessions, gin.H{
			"user_id":  sess.UserID,
			"nickname": sess.Nickname,
			"icon_id":  sess.IconID,
			"flags":    sess.Flags,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}
