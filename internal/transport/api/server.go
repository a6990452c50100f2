package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/pkg/log"
)

type Chatter interface {
	Run(ctx context.Context, sessionID, input string) (chat.Reply, error)
	Reset(ctx context.Context, sessionID string)
	SessionCount() int
}

type ChunkCounter interface {
	Len() int
}

type Server struct {
	cfg    *config.HTTPConfig
	chat   Chatter
	chunks ChunkCounter
	turns  core.TurnReader
	debug  bool

	srv *http.Server
}

// NewServer builds the HTTP API. turns may be nil, in which case the debug
// inspection route is not registered.
func NewServer(cfg *config.HTTPConfig, chat Chatter, chunks ChunkCounter, turns core.TurnReader, debug bool) *Server {
	s := &Server{
		cfg:    cfg,
		chat:   chat,
		chunks: chunks,
		turns:  turns,
		debug:  debug,
	}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), corsPolicy(s.cfg.CORSOrigin))

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := r.Group("/", rateLimit(s.cfg.RateRPS, s.cfg.RateBurst), requireAPIKey(s.cfg.APIKey))
	limited.POST("/chat", s.handleChat)
	limited.POST("/sessions/:sessionId/reset", s.handleReset)

	if s.debug && s.turns != nil {
		r.GET("/debug/sessions/:sessionId/turns", s.handleTurns)
	}

	return r
}

func (s *Server) Start(ctx context.Context) error {
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }
	log.FromCtx(ctx).Info().Str("addr", s.srv.Addr).Msg("starting http server")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
