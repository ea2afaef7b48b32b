// Package api exposes the tutor over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/talkie/internal/logger"
	"github.com/abhisek/talkie/internal/speech"
	"github.com/abhisek/talkie/internal/telemetry"
	"github.com/abhisek/talkie/internal/tutor"
)

// Config wires the router.
type Config struct {
	Tutor        *tutor.Tutor
	Logger       *logger.Logger
	AllowOrigins []string
	// AudioDir is served under /audio/. Empty disables the route.
	AudioDir string
}

// NewRouter builds the engine with every route mounted.
func NewRouter(cfg Config) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	h := NewHandler(cfg.Tutor, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(telemetry.ServiceName))
	r.Use(RequestLogger(log))
	r.Use(CORS(cfg.AllowOrigins))

	r.GET("/healthz", h.Health)
	if cfg.AudioDir != "" {
		r.Static(strings.TrimSuffix(speech.URLPrefix, "/"), cfg.AudioDir)
	}

	api := r.Group("/api")
	{
		api.GET("/badges", h.Badges)

		api.POST("/users", h.CreateUser)
		api.DELETE("/users/:id", h.DeleteUser)
		api.GET("/users/:id/progress", h.Progress)
		api.GET("/users/:id/suggestions", h.Suggestions)

		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions/:sid/content/:category", h.Content)
		api.POST("/sessions/:sid/attempts", h.Attempt)
		api.POST("/sessions/:sid/coach", h.Coach)
		api.POST("/sessions/:sid/roleplay", h.Roleplay)
		api.GET("/sessions/:sid/meaning", h.Meaning)
	}
	return r
}

// Server runs the router until its context ends.
type Server struct {
	srv *http.Server
	log *logger.Logger
}

// NewServer returns a Server listening on addr.
func NewServer(addr string, cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
